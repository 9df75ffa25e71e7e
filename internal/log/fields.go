package log

// Common field names for structured logging
const (
	FieldComponent   = "component"
	FieldCommand     = "command"
	FieldError       = "error"
	FieldOperation   = "operation"
	FieldMonth       = "month"
	FieldExpenseID   = "expense_id"
	FieldChargeID    = "charge_id"
	FieldCategory    = "category"
	FieldAmountCents = "amount_cents"
	FieldDescription = "description"
	FieldTheme       = "theme"
	FieldPath        = "path"
)

// Components defines standard component names
const (
	ComponentApp     = "app"
	ComponentCLI     = "cli"
	ComponentStorage = "storage"
	ComponentBackend = "backend"
	ComponentExport  = "export"
	ComponentUI      = "ui"
)

// Operations defines standard operation names
const (
	OpCreate  = "create"
	OpRead    = "read"
	OpUpdate  = "update"
	OpDelete  = "delete"
	OpList    = "list"
	OpApply   = "apply"
	OpClose   = "close"
	OpExport  = "export"
	OpImport  = "import"
	OpRender  = "render"
	OpStartup = "startup"
)

// LogFields provides a builder pattern for structured log fields
type LogFields map[string]any

// NewFields creates a new LogFields instance
func NewFields() LogFields {
	return make(LogFields)
}

// WithComponent adds component field
func (f LogFields) WithComponent(component string) LogFields {
	f[FieldComponent] = component
	return f
}

// WithError adds error field
func (f LogFields) WithError(err error) LogFields {
	if err != nil {
		f[FieldError] = err.Error()
	}
	return f
}

// WithOperation adds operation field
func (f LogFields) WithOperation(op string) LogFields {
	f[FieldOperation] = op
	return f
}

// WithCommand adds the sub-command being run
func (f LogFields) WithCommand(cmd string) LogFields {
	f[FieldCommand] = cmd
	return f
}

// WithMonth adds the YYYY-MM month key
func (f LogFields) WithMonth(month string) LogFields {
	f[FieldMonth] = month
	return f
}

// WithExpense adds expense-related fields
func (f LogFields) WithExpense(id int64, category string, amountCents int64) LogFields {
	if id != 0 {
		f[FieldExpenseID] = id
	}
	f[FieldCategory] = category
	f[FieldAmountCents] = amountCents
	return f
}

// ToSlice converts LogFields to a slice for slog
func (f LogFields) ToSlice() []any {
	slice := make([]any, 0, len(f)*2)
	for k, v := range f {
		slice = append(slice, k, v)
	}
	return slice
}
