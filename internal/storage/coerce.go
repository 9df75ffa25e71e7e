package storage

import (
	"context"
	"database/sql"
	"log/slog"
	"strings"

	"github.com/shopspring/decimal"
)

// coerceCents reads a numeric column that may hold an integer, a real or a
// stray string. Anything that does not parse as a number counts as zero.
func coerceCents(ctx context.Context, column string, v sql.NullString) int64 {
	if !v.Valid {
		return 0
	}
	s := strings.TrimSpace(v.String)
	if s == "" {
		return 0
	}
	d, err := decimal.NewFromString(strings.ReplaceAll(s, ",", "."))
	if err != nil {
		slog.WarnContext(ctx, "Malformed numeric value read as zero",
			"column", column,
			"value", v.String)
		return 0
	}
	return d.Round(0).IntPart()
}

func coerceBool(ctx context.Context, column string, v sql.NullString) bool {
	return coerceCents(ctx, column, v) != 0
}

// coerceReais converts a legacy REAL amount in reais to centavos.
func coerceReais(ctx context.Context, column string, v sql.NullString) int64 {
	if !v.Valid || strings.TrimSpace(v.String) == "" {
		return 0
	}
	d, err := decimal.NewFromString(strings.ReplaceAll(strings.TrimSpace(v.String), ",", "."))
	if err != nil {
		slog.WarnContext(ctx, "Malformed legacy amount read as zero",
			"column", column,
			"value", v.String)
		return 0
	}
	return d.Shift(2).Round(0).IntPart()
}
