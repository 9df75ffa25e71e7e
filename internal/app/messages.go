package app

import (
	"errors"
	"strings"

	"virtum/internal/core"
)

const (
	msgInvalidExpense       = "Dados inválidos. Valor e data precisam estar corretos."
	msgMissingExpenseFields = "Informe categoria e valor."
	msgInvalidSalary        = "Salário inválido."
	msgInvalidAmount        = "Valor inválido."
	msgSelectCharge         = "Selecione um fixo na lista."
	msgUnknownTheme         = "Tema desconhecido. Veja \"virtum themes\"."
	msgImportUnsupported    = "Importação disponível apenas com o banco SQLite."
)

// Error carries a message meant for the user next to the underlying cause.
type Error struct {
	Msg string
	Err error
}

func (e *Error) Error() string {
	if e.Err == nil {
		return e.Msg
	}
	return e.Msg + ": " + e.Err.Error()
}

func (e *Error) Unwrap() error { return e.Err }

func userError(msg string, err error) error {
	return &Error{Msg: msg, Err: err}
}

// UserMessage turns err into the Portuguese text shown to the user.
func UserMessage(err error) string {
	if err == nil {
		return ""
	}
	var ue *Error
	if errors.As(err, &ue) {
		return ue.Msg
	}
	switch {
	case errors.Is(err, core.ErrNotFound):
		return "Registro não encontrado."
	case errors.Is(err, core.ErrInvalidAmount):
		return msgInvalidAmount
	case errors.Is(err, core.ErrNegativeAmount):
		return "O valor não pode ser negativo."
	case errors.Is(err, core.ErrInvalidDate):
		return "Data inválida. Use DD/MM/AAAA."
	case errors.Is(err, core.ErrInvalidMonth):
		return "Mês inválido. Use AAAA-MM."
	case errors.Is(err, core.ErrUnknownCategory):
		return "Categoria inválida. Opções: " + strings.Join(core.Categories, ", ") + "."
	case errors.Is(err, core.ErrDescriptionTooLong):
		return "Descrição muito longa (máximo 200 caracteres)."
	default:
		return "Erro: " + err.Error()
	}
}
