package log

// Common field names for structured logging
const (
	FieldComponent = "component"
	FieldError     = "error"
	FieldOperation = "operation"
	FieldPath      = "path"
	FieldBackend   = "backend"
	FieldCount     = "count"
	FieldCommitID  = "commit_id"
	FieldMirror    = "mirror"
	FieldKind      = "kind"
	FieldAmount    = "amount"
	FieldCategory  = "category"
	FieldPosition  = "position"
	FieldBalance   = "balance"
	FieldDuration  = "duration_ms"
	FieldSuccess   = "success"
	FieldVersion   = "schema_version"
)

// Components defines standard component names
const (
	ComponentApp     = "app"
	ComponentLedger  = "ledger"
	ComponentStorage = "storage"
	ComponentShell   = "shell"
	ComponentMirror  = "mirror"
	ComponentAMQP    = "amqp"
	ComponentSheets  = "sheets"
	ComponentConfig  = "config"
)

// Operations defines standard operation names
const (
	OpLoad     = "load"
	OpCommit   = "commit"
	OpAppend   = "append"
	OpDelete   = "delete"
	OpClear    = "clear"
	OpMirror   = "mirror"
	OpMigrate  = "migrate"
	OpShutdown = "shutdown"
	OpStartup  = "startup"
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

// WithTransaction adds the fields describing one ledger entry.
// The amount is logged as decimal text.
func (f LogFields) WithTransaction(kind, amount, category string) LogFields {
	f[FieldKind] = kind
	f[FieldAmount] = amount
	f[FieldCategory] = category
	return f
}

// WithCommit adds commit bookkeeping fields.
func (f LogFields) WithCommit(id string, count int) LogFields {
	f[FieldCommitID] = id
	f[FieldCount] = count
	return f
}

// WithPosition adds the 1-based ledger position
func (f LogFields) WithPosition(position int) LogFields {
	f[FieldPosition] = position
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
