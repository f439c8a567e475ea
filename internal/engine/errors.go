// Package engine provides the bounded conversation loop and its types.
// This file contains the error taxonomy for the loop.

package engine

import (
	"errors"
	"fmt"
	"strings"
)

// ModelInvocationError indicates that a model call failed. It is fatal:
// the loop aborts immediately and no partial session result is produced.
// Retry and circuit-breaking belong to the LLMClient implementation, not
// to the loop.
type ModelInvocationError struct {
	Model string
	Turn  int
	Err   error
}

func (e *ModelInvocationError) Error() string {
	return fmt.Sprintf("model invocation failed (model=%s turn=%d): %v", e.Model, e.Turn, e.Err)
}

func (e *ModelInvocationError) Unwrap() error {
	return e.Err
}

// IsModelInvocationError reports whether err wraps a ModelInvocationError.
func IsModelInvocationError(err error) bool {
	var me *ModelInvocationError
	return errors.As(err, &me)
}

// ToolValidationError indicates that tool arguments failed JSON schema
// validation. It is never surfaced to the caller; it becomes a structured
// tool result the model can read and correct.
type ToolValidationError struct {
	ToolName string
	Errors   []string
}

func (e *ToolValidationError) Error() string {
	return fmt.Sprintf("invalid arguments for tool %s: %s", e.ToolName, strings.Join(e.Errors, "; "))
}
