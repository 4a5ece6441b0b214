// Package sheets renders period reports as spreadsheet rows and defines the
// outbound port the report exporters implement.
package sheets

import (
	"context"
)

// Ports for outbound adapters.
type (
	// ReportWriter replaces the report sheet with rows and returns a
	// reference to the written range.
	ReportWriter interface {
		WriteReport(ctx context.Context, rows [][]any) (ref string, err error)
	}
)
