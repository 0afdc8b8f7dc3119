package log

import "github.com/shopspring/decimal"

// Common field names for structured logging
const (
	FieldComponent  = "component"
	FieldError      = "error"
	FieldOperation  = "operation"
	FieldMonth      = "month"
	FieldCategoryID = "category_id"
	FieldExpenseID  = "expense_id"
	FieldAmount     = "amount"
	FieldGenerated  = "generated"
	FieldFilename   = "filename"
	FieldDuration   = "duration_ms"
)

// Component names
const (
	ComponentApp       = "app"
	ComponentLedger    = "ledger"
	ComponentRecurring = "recurring"
	ComponentStorage   = "storage"
	ComponentAMQP      = "amqp"
	ComponentNotify    = "notify"
	ComponentExport    = "export"
	ComponentWorker    = "worker"
	ComponentBackend   = "backend"
)

// Operation names
const (
	OpCreate     = "create"
	OpUpdate     = "update"
	OpDelete     = "delete"
	OpSummary    = "summary"
	OpCloseMonth = "close_month"
	OpExport     = "export"
	OpRecurring  = "recurring"
	OpSettings   = "settings"
	OpStartup    = "startup"
	OpShutdown   = "shutdown"
)

// LogFields provides a builder for structured log fields.
type LogFields map[string]any

func NewFields() LogFields {
	return make(LogFields)
}

func (f LogFields) WithComponent(component string) LogFields {
	f[FieldComponent] = component
	return f
}

func (f LogFields) WithOperation(op string) LogFields {
	f[FieldOperation] = op
	return f
}

// WithError adds the error message; nil errors are skipped.
func (f LogFields) WithError(err error) LogFields {
	if err != nil {
		f[FieldError] = err.Error()
	}
	return f
}

func (f LogFields) WithMonth(monthKey string) LogFields {
	f[FieldMonth] = monthKey
	return f
}

// WithExpense adds the identifying fields of an expense.
func (f LogFields) WithExpense(id, categoryID string, amount decimal.Decimal) LogFields {
	f[FieldExpenseID] = id
	f[FieldCategoryID] = categoryID
	f[FieldAmount] = amount.StringFixed(2)
	return f
}

// ToSlice converts LogFields to key/value pairs for slog.
func (f LogFields) ToSlice() []any {
	slice := make([]any, 0, len(f)*2)
	for k, v := range f {
		slice = append(slice, k, v)
	}
	return slice
}
