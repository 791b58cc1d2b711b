package compiler

import (
	"errors"
	"fmt"

	"github.com/dgallion1/docforge/internal/content"
)

var (
	ErrRecordNotFound = errors.New("record not found")
	ErrInvalidContent = content.ErrInvalid
	ErrContentTooDeep = content.ErrTooDeep
	ErrPackaging      = errors.New("packaging failed")
)

// Error reports which step of a compile failed and for which record.
type Error struct {
	Op    string // load, decode, walk, layout, package
	DocID string
	Err   error
}

func (e *Error) Error() string {
	if e.DocID == "" {
		return fmt.Sprintf("%s: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("%s %s: %v", e.Op, e.DocID, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// IsContentError reports whether err was caused by the input content
// rather than by the service.
func IsContentError(err error) bool {
	return errors.Is(err, ErrInvalidContent) || errors.Is(err, ErrContentTooDeep)
}
