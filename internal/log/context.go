package log

import "context"

// StructuredLogger provides structured logging methods with context awareness
type StructuredLogger struct {
	logger *Logger
}

// NewStructuredLogger creates a new structured logger
func NewStructuredLogger(logger *Logger) *StructuredLogger {
	return &StructuredLogger{
		logger: logger,
	}
}

// LogRecordWritten logs a successful repository write
func (sl *StructuredLogger) LogRecordWritten(ctx context.Context, operation, collection, id string) {
	fields := NewFields().
		WithRecord(collection, id).
		WithOperation(operation).
		WithComponent(ComponentStorage)

	sl.logger.InfoContext(ctx, "Record written", fields.ToSlice()...)
}

// LogInstallmentsCreated logs a fully persisted installment group
func (sl *StructuredLogger) LogInstallmentsCreated(ctx context.Context, groupID string, count int, value string) {
	fields := NewFields().
		WithInstallments(groupID, count).
		WithOperation(OpExpand).
		WithComponent(ComponentLedger)
	fields[FieldValue] = value

	sl.logger.InfoContext(ctx, "Installments created", fields.ToSlice()...)
}

// LogError logs an error with structured context
func (sl *StructuredLogger) LogError(ctx context.Context, msg string, err error, component string, operation string, fields LogFields) {
	if fields == nil {
		fields = NewFields()
	}
	allFields := fields.
		WithError(err).
		WithOperation(operation).
		WithComponent(component)

	sl.logger.ErrorContext(ctx, msg, allFields.ToSlice()...)
}
