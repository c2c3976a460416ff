package extract

import (
	"context"
	"errors"
	"fmt"

	"github.com/dgallion1/finsight/internal/report"
)

// Backend sends one prompt to one model and returns the raw completion text.
type Backend interface {
	Complete(ctx context.Context, model, prompt string) (string, error)
}

// Kind classifies why a chunk failed under a model.
type Kind string

const (
	// KindModelUnavailable means the model is unknown or not accessible.
	KindModelUnavailable Kind = "model_unavailable"
	// KindTransient covers rate limits, server errors, timeouts and network failures.
	KindTransient Kind = "transient"
	// KindSchemaInvalid means the response did not decode to the expected shape.
	KindSchemaInvalid Kind = "schema_invalid"
)

// BackendError is a classified failure from a backend call or response decode.
type BackendError struct {
	Kind       Kind
	Model      string
	StatusCode int
	Message    string
	Err        error
}

func (e *BackendError) Error() string {
	msg := e.Message
	if msg == "" && e.Err != nil {
		msg = e.Err.Error()
	}
	if e.StatusCode != 0 {
		return fmt.Sprintf("%s (status %d): %s", e.Kind, e.StatusCode, report.Truncate(msg, 200))
	}
	return fmt.Sprintf("%s: %s", e.Kind, report.Truncate(msg, 200))
}

func (e *BackendError) Unwrap() error { return e.Err }

// KindOf returns the failure kind carried by err. Deadline errors and
// unclassified errors are treated as transient.
func KindOf(err error) Kind {
	var be *BackendError
	if errors.As(err, &be) {
		return be.Kind
	}
	return KindTransient
}

// ChunkError records the failure of one chunk under one model.
type ChunkError struct {
	Model       string
	ChunkIndex  int
	TotalChunks int
	Kind        Kind
	Err         error
}

func (e *ChunkError) Error() string {
	return fmt.Sprintf("model %s chunk %d/%d: %v", e.Model, e.ChunkIndex+1, e.TotalChunks, e.Err)
}

func (e *ChunkError) Unwrap() error { return e.Err }

// ErrModelsExhausted is matched by every ExhaustedError.
var ErrModelsExhausted = errors.New("all models failed")

// ExhaustedError reports that no configured model processed every chunk.
type ExhaustedError struct {
	Document string
	Attempts []*ChunkError
}

func (e *ExhaustedError) Error() string {
	msg := fmt.Sprintf("document %s: %s", e.Document, ErrModelsExhausted)
	for _, a := range e.Attempts {
		msg += "; " + a.Error()
	}
	return msg
}

func (e *ExhaustedError) Is(target error) bool { return target == ErrModelsExhausted }

