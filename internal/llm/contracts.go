package llm

import (
	"context"
	"errors"
	"fmt"

	"github.com/Prishashn/Hrextractor/internal/entity"
)

type ExtractRequest struct {
	// Text is the merged recognition output for one submission.
	Text string
}

// FieldExtractor is the interface the finalize pipeline depends on.
// The []byte return is the raw JSON the backend produced, for logging and
// archival; it is non-nil even when the error is ErrUnparseable.
type FieldExtractor interface {
	ExtractFields(ctx context.Context, req ExtractRequest) (entity.ProfileFields, []byte, error)
}

// ErrUnparseable marks backend output that could not be parsed as the
// profile schema. Callers match it with errors.Is and degrade to an empty
// candidate record; it is distinct from transport failures, which abort the
// submission.
var ErrUnparseable = errors.New("llm: response not parseable as profile schema")

// UnparseableError carries the offending raw response alongside the cause.
type UnparseableError struct {
	Raw   []byte
	Cause error
}

func (e *UnparseableError) Error() string {
	return fmt.Sprintf("llm: response not parseable as profile schema: %v", e.Cause)
}

func (e *UnparseableError) Unwrap() error { return e.Cause }

func (e *UnparseableError) Is(target error) bool { return target == ErrUnparseable }
