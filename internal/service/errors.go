package service

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrNoData              = errors.New("csv has no data rows")
	ErrNoRows              = errors.New("csv produced no importable rows")
	ErrNothingImported     = errors.New("no transactions could be imported")
	ErrExportCancelled     = errors.New("export cancelled")
	ErrProductNotFound     = errors.New("product not found")
	ErrProductInUse        = errors.New("product is referenced by transactions or tracked items")
	ErrTransactionNotFound = errors.New("transaction not found")
	ErrInvalidStatus       = errors.New("invalid transaction status")
	ErrInvalidFormat       = errors.New("unsupported export format")
)

// RowError describes one CSV line that was not imported.
type RowError struct {
	Line   int    `json:"line"`
	Label  string `json:"label"`
	Reason string `json:"reason"`
}

func (e RowError) String() string {
	if e.Reason == "" {
		return fmt.Sprintf("line %d: %s", e.Line, e.Label)
	}
	return fmt.Sprintf("line %d: %s (%s)", e.Line, e.Label, e.Reason)
}

func joinRowErrors(rows []RowError) string {
	parts := make([]string, len(rows))
	for i, r := range rows {
		parts[i] = r.String()
	}
	return strings.Join(parts, ", ")
}

// ImportError aborts an import in which every candidate row failed.
type ImportError struct {
	Rows []RowError
}

func (e *ImportError) Error() string {
	return fmt.Sprintf("%s: %s", ErrNothingImported.Error(), joinRowErrors(e.Rows))
}

func (e *ImportError) Unwrap() error {
	return ErrNothingImported
}
