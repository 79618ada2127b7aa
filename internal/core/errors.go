package core

import (
	"errors"
	"fmt"
)

// Error categories surfaced by the ledger. Callers match them with errors.Is;
// concrete errors wrap one of these with context.
var (
	ErrValidation   = errors.New("validation error")
	ErrDuplicate    = errors.New("duplicate")
	ErrNotFound     = errors.New("not found")
	ErrImportFormat = errors.New("import format error")
	ErrPersistence  = errors.New("persistence error")
)

var (
	ErrInvalidAmount = fmt.Errorf("%w: amount must be greater than zero", ErrValidation)
	ErrEmptyCategory = fmt.Errorf("%w: empty category", ErrValidation)
	ErrInvalidKind   = fmt.Errorf("%w: invalid transaction type", ErrValidation)
	ErrMissingDate   = fmt.Errorf("%w: missing date", ErrValidation)
)
