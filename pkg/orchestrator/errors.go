package orchestrator

import (
	"errors"
	"fmt"
)

// Failure kinds. Every one of them ends the run.
var (
	ErrCompile        = errors.New("compilation failed")
	ErrArtifactLaunch = errors.New("failed to run shader compiler")
	ErrArtifactExit   = errors.New("shader compiler exited with an error")
	ErrShaderCompile  = errors.New("SPIR-V compilation failed")
)

// StageError reports which stage failed and on what. Use errors.Is against the
// Err* kinds to classify it.
type StageError struct {
	Kind     error
	Path     string
	ExitCode int
	Err      error
}

func (e *StageError) Error() string {
	msg := e.Kind.Error()
	if e.Path != "" {
		msg = fmt.Sprintf("%s: %s", msg, e.Path)
	}
	if e.Err != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.Err)
	}
	return msg
}

func (e *StageError) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.Err}
}
