package orchestrator

import (
	"context"
	"os/exec"
)

// Compile builds the shader compiler into artifact. A partially written
// artifact is left behind on failure.
func (b *Builder) Compile(ctx context.Context, artifact string) error {
	args := b.cfg.CompilerArgs(artifact)
	b.log.Info("compiler", "compile", "progress", "Compiling shader compiler...")
	b.log.Debug("compiler", "compile", "debug", "Invoking C++ compiler", "cmd", b.cfg.CXX, "args", args)

	cmd := exec.CommandContext(ctx, b.cfg.CXX, args...)
	cmd.Stdout = b.stdout
	cmd.Stderr = b.stderr
	if err := cmd.Run(); err != nil {
		serr := &StageError{Kind: ErrCompile, Path: b.cfg.Source, ExitCode: exitCode(err), Err: err}
		b.log.Error("compiler", "compile", "failure", "Compilation failed.", "source", b.cfg.Source, "error", err)
		return serr
	}
	b.log.Info("compiler", "compile", "success", "Compilation succeeded.", "artifact", artifact)
	return nil
}

// exitCode extracts a process exit status, or -1 if the process never ran.
func exitCode(err error) int {
	if exitErr, ok := err.(*exec.ExitError); ok {
		return exitErr.ExitCode()
	}
	return -1
}
