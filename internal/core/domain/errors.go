package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrCorpusLoad is fatal at startup: the service must not answer
	// queries over a partially loaded corpus.
	ErrCorpusLoad   = errors.New("corpus load failure")
	ErrInvalidInput = errors.New("invalid input")
	ErrEncoding     = errors.New("embedding failure")
	ErrGeneration   = errors.New("generation failure")
	ErrTemporary    = errors.New("temporary failure")
)

// WrapError preserves typed semantic errors with operation context.
func WrapError(kind error, operation string, err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w: %w", operation, kind, err)
}

func IsKind(err error, kind error) bool {
	return errors.Is(err, kind)
}
