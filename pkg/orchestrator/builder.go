// Package orchestrator builds the shader compiler, runs it, and compiles the
// GLSL it generates to SPIR-V. The stages run strictly in order and the first
// failure ends the run.
package orchestrator

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"shader-tools/pkg/logbowl"
	"shader-tools/pkg/toolchain"
)

// Builder drives one build. stdout and stderr receive the console output of
// the external tools.
type Builder struct {
	cfg    toolchain.Config
	log    logbowl.Logger
	stdout io.Writer
	stderr io.Writer
}

func New(cfg toolchain.Config, log logbowl.Logger, stdout, stderr io.Writer) *Builder {
	return &Builder{cfg: cfg, log: log, stdout: stdout, stderr: stderr}
}

// Run prepares the output directory, compiles and runs the shader compiler,
// then compiles its GLSL output to SPIR-V. It returns the .spv paths written.
func (b *Builder) Run(ctx context.Context) ([]string, error) {
	artifact, err := b.PrepareOutput()
	if err != nil {
		return nil, err
	}
	if err := b.Compile(ctx, artifact); err != nil {
		return nil, err
	}
	if err := b.RunArtifact(ctx, artifact); err != nil {
		return nil, err
	}
	return b.CompileShaders(ctx)
}

// PrepareOutput makes sure the output directory exists and returns the
// absolute path the artifact will be written to. The path is absolute so
// running it never falls back to a PATH lookup.
func (b *Builder) PrepareOutput() (string, error) {
	if err := os.MkdirAll(b.cfg.OutputDir, 0755); err != nil {
		return "", fmt.Errorf("failed to create output directory %s: %w", b.cfg.OutputDir, err)
	}
	artifact, err := filepath.Abs(b.cfg.ArtifactPath())
	if err != nil {
		return "", err
	}
	b.log.Debug("toolchain", "prepare", "ok", "Output directory ready", "dir", b.cfg.OutputDir, "artifact", artifact)
	return artifact, nil
}
