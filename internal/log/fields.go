package log

// Common field names for structured logging
const (
	FieldComponent    = "component"
	FieldError        = "error"
	FieldOperation    = "operation"
	FieldDuration     = "duration_ms"
	FieldSuccess      = "success"
	FieldCollection   = "collection"
	FieldRecordID     = "record_id"
	FieldCount        = "count"
	FieldPeriodKind   = "period_kind"
	FieldPeriodStart  = "period_start"
	FieldPeriodEnd    = "period_end"
	FieldGroupID      = "installment_group_id"
	FieldInstallments = "installments"
	FieldValue        = "value"
	FieldStatus       = "status"
	FieldCategory     = "category"
	FieldSheetsRef    = "sheets_ref"
)

// Components defines standard component names
const (
	ComponentApp     = "app"
	ComponentCLI     = "cli"
	ComponentLedger  = "ledger"
	ComponentReview  = "review"
	ComponentReport  = "report"
	ComponentStorage = "storage"
	ComponentAMQP    = "amqp"
	ComponentWorker  = "worker"
	ComponentSheets  = "sheets"
	ComponentCache   = "cache"
	ComponentBackend = "backend"
)

// Operations defines standard operation names
const (
	OpCreate     = "create"
	OpRead       = "read"
	OpUpdate     = "update"
	OpDelete     = "delete"
	OpList       = "list"
	OpExpand     = "expand"
	OpCompensate = "compensate"
	OpAggregate  = "aggregate"
	OpReview     = "review"
	OpExport     = "export"
	OpInvalidate = "invalidate"
	OpPublish    = "publish"
	OpValidate   = "validate"
	OpShutdown   = "shutdown"
	OpStartup    = "startup"
)

// ErrorTypes defines standard error type categories
const (
	ErrorTypeValidation    = "validation_error"
	ErrorTypeConfiguration = "configuration_error"
	ErrorTypeDatabase      = "database_error"
	ErrorTypeNetwork       = "network_error"
	ErrorTypeTimeout       = "timeout_error"
	ErrorTypeNotFound      = "not_found_error"
	ErrorTypeInternal      = "internal_error"
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

// WithRecord adds the collection and, when known, the record id
func (f LogFields) WithRecord(collection, id string) LogFields {
	f[FieldCollection] = collection
	if id != "" {
		f[FieldRecordID] = id
	}
	return f
}

// WithPeriod adds the resolved period bounds; unbounded periods only log the kind
func (f LogFields) WithPeriod(kind, start, end string) LogFields {
	f[FieldPeriodKind] = kind
	if start != "" {
		f[FieldPeriodStart] = start
		f[FieldPeriodEnd] = end
	}
	return f
}

// WithInstallments adds installment group fields
func (f LogFields) WithInstallments(groupID string, count int) LogFields {
	f[FieldGroupID] = groupID
	f[FieldInstallments] = count
	return f
}

// WithEntry adds ledger entry fields
func (f LogFields) WithEntry(value, status, category string) LogFields {
	f[FieldValue] = value
	f[FieldStatus] = status
	f[FieldCategory] = category
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
