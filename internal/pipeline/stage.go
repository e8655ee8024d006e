// Package pipeline drives a repository's working tree through the eight
// documentation stages (spec §4.E/§4.F): README, directory catalogue,
// classification, mind map, overview, catalogue outline, per-document
// content, and change log. Stage order and persistence contracts are
// fixed; re-entry after a crash resumes from whatever store state shows
// as not yet done.
package pipeline

import (
	"context"
	"errors"
	"fmt"
)

// StageErrorKind classifies a stage failure for the retry wrapper and for
// the Worker Loop's single terminal status write (spec §7 error taxonomy).
type StageErrorKind string

const (
	// KindFatal means retrying will not help; the repository's run stops
	// and the row is marked Failed with the underlying message.
	KindFatal StageErrorKind = "fatal"
	// KindTransient covers flaky LLM transport (timeouts, 5xx, connection
	// resets) — spec's TransientLLM — worth retrying with back-off.
	KindTransient StageErrorKind = "transient"
	// KindClassificationParse marks RepositoryClassification output that
	// didn't parse against the enum; per spec this is not fatal — the
	// stage leaves Repository.Classify unset and continues.
	KindClassificationParse StageErrorKind = "classification_parse"
)

// StageError wraps a stage failure with its classification, mirroring the
// pack's StageError{Kind,Stage,Err}/.Transient() shape (inful-docbuilder's
// hugo.StageError), generalized to spec §7's taxonomy instead of a static
// site build's.
type StageError struct {
	Kind  StageErrorKind
	Stage string
	Err   error
}

func (e *StageError) Error() string {
	return fmt.Sprintf("%s stage %s: %v", e.Kind, e.Stage, e.Err)
}

func (e *StageError) Unwrap() error { return e.Err }

// Transient reports whether the retry wrapper should attempt this stage
// again.
func (e *StageError) Transient() bool {
	return e != nil && e.Kind == KindTransient
}

func newFatalError(stage string, err error) *StageError {
	return &StageError{Kind: KindFatal, Stage: stage, Err: err}
}

func newTransientError(stage string, err error) *StageError {
	return &StageError{Kind: KindTransient, Stage: stage, Err: err}
}

// Stage is one deterministic, safely re-invokable pipeline step.
type Stage func(ctx context.Context, rc *RunContext) error

// asStageError unwraps err into a *StageError if the stage returned one
// directly, otherwise classifies it as fatal — an LLM call or store write
// that fails with an error type no stage recognizes is never assumed
// transient.
func asStageError(stage string, err error) *StageError {
	if err == nil {
		return nil
	}
	var se *StageError
	if errors.As(err, &se) {
		return se
	}
	return newFatalError(stage, err)
}
