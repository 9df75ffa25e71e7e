package ui

import "github.com/charmbracelet/lipgloss"

// Palette is one color theme.
type Palette struct {
	Key   string
	Label string

	BG      lipgloss.Color
	Panel   lipgloss.Color
	Card    lipgloss.Color
	Border  lipgloss.Color
	Accent  lipgloss.Color
	Accent2 lipgloss.Color
	HoverBG lipgloss.Color
	Text    lipgloss.Color
	Sub     lipgloss.Color
	Green   lipgloss.Color
	Red     lipgloss.Color
	AltRow  lipgloss.Color
}

// Palettes lists the themes in the order they are offered.
var Palettes = []Palette{
	{
		Key: "original", Label: "Original (Escuro roxo)",
		BG: "#0F1115", Panel: "#121723", Card: "#161A22", Border: "#232A3A",
		Accent: "#6C63FF", Accent2: "#5B54F0", HoverBG: "#1A2233",
		Text: "#E6E6E6", Sub: "#9AA0A6", Green: "#35D07F", Red: "#FF4D4D",
		AltRow: "#151C2B",
	},
	{
		Key: "rosa_branco", Label: "Rosa + Branco (Claro)",
		BG: "#FFF7FB", Panel: "#FFFFFF", Card: "#FFFFFF", Border: "#F1D7E6",
		Accent: "#E84AA6", Accent2: "#D93A95", HoverBG: "#FFE7F3",
		Text: "#2B1E2A", Sub: "#7B6273", Green: "#1E9E68", Red: "#D94141",
		AltRow: "#FFF1F8",
	},
	{
		Key: "azul_noite", Label: "Azul Noite (Escuro)",
		BG: "#0B1020", Panel: "#111A33", Card: "#141F3D", Border: "#24335E",
		Accent: "#4DA3FF", Accent2: "#2F8BFF", HoverBG: "#1B2A52",
		Text: "#EAF2FF", Sub: "#9CB0D1", Green: "#35D07F", Red: "#FF5C5C",
		AltRow: "#0F1730",
	},
	{
		Key: "verde_musgo", Label: "Verde Musgo (Escuro)",
		BG: "#0E1412", Panel: "#121A16", Card: "#16221B", Border: "#24362B",
		Accent: "#48C78E", Accent2: "#39B27B", HoverBG: "#1B2A22",
		Text: "#E7F4ED", Sub: "#9BB2A7", Green: "#48C78E", Red: "#FF6B6B",
		AltRow: "#101A16",
	},
	{
		Key: "laranja_creme", Label: "Laranja Creme (Claro)",
		BG: "#FFF8F0", Panel: "#FFFFFF", Card: "#FFFFFF", Border: "#F0D6C0",
		Accent: "#F28C28", Accent2: "#E07B18", HoverBG: "#FFE9D4",
		Text: "#2A2017", Sub: "#7A6656", Green: "#1E9E68", Red: "#D94141",
		AltRow: "#FFF1E4",
	},
	{
		Key: "cinza_lavanda", Label: "Cinza Lavanda (Claro)",
		BG: "#F5F6FA", Panel: "#FFFFFF", Card: "#FFFFFF", Border: "#DADDEA",
		Accent: "#6C63FF", Accent2: "#5B54F0", HoverBG: "#EFF0FF",
		Text: "#1D2130", Sub: "#6A7287", Green: "#1E9E68", Red: "#D94141",
		AltRow: "#F3F4FF",
	},
}

// LookupPalette returns the palette for key and whether it exists.
func LookupPalette(key string) (Palette, bool) {
	for _, p := range Palettes {
		if p.Key == key {
			return p, true
		}
	}
	return Palette{}, false
}

// PaletteFor returns the palette for key. The store keeps whatever key it is
// given, so an unknown key falls back to the first palette here.
func PaletteFor(key string) Palette {
	if p, ok := LookupPalette(key); ok {
		return p
	}
	return Palettes[0]
}
