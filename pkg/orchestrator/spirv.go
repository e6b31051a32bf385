package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"

	"github.com/bmatcuk/doublestar/v4"

	"shader-tools/pkg/toolchain"
)

// ShaderFiles lists the files in the shader directory whose names match the
// configured pattern, in directory order. Subdirectories are never matched.
func (b *Builder) ShaderFiles() ([]string, error) {
	entries, err := os.ReadDir(b.cfg.ShaderDir)
	if err != nil {
		return nil, fmt.Errorf("failed to list shader directory %s: %w", b.cfg.ShaderDir, err)
	}
	var files []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		match, err := doublestar.Match(b.cfg.ShaderPattern, entry.Name())
		if err != nil {
			return nil, err
		}
		if !match {
			b.log.Debug("shader", "scan", "skip", "Ignoring non-shader file", "name", entry.Name())
			continue
		}
		files = append(files, filepath.Join(b.cfg.ShaderDir, entry.Name()))
	}
	return files, nil
}

// CompileShaders runs the SPIR-V compiler over every shader file and returns
// the .spv paths written. It stops at the first failure unless KeepGoing is
// set, in which case all failures are returned together.
func (b *Builder) CompileShaders(ctx context.Context) ([]string, error) {
	files, err := b.ShaderFiles()
	if err != nil {
		return nil, err
	}
	if len(files) == 0 {
		b.log.Warn("spirv", "scan", "skip", "No shader files to compile", "dir", b.cfg.ShaderDir, "pattern", b.cfg.ShaderPattern)
	}

	var written []string
	var failures []error
	for _, in := range files {
		out, err := b.compileSpirv(ctx, in)
		if err != nil {
			if !b.cfg.KeepGoing {
				return written, err
			}
			failures = append(failures, err)
			continue
		}
		written = append(written, out)
	}
	if len(failures) > 0 {
		b.log.Error("spirv", "compile", "failure", "Some shaders failed to compile", "failed", len(failures), "total", len(files))
		return written, errors.Join(failures...)
	}
	b.log.Info("spirv", "finish", "complete", "All shaders compiled to SPIR-V", "count", len(written))
	return written, nil
}

func (b *Builder) compileSpirv(ctx context.Context, in string) (string, error) {
	out := toolchain.SpirvOutputPath(in)
	b.log.Info("spirv", "compile", "progress", fmt.Sprintf("Compiling %s to SPIR-V...", in))

	cmd := exec.CommandContext(ctx, b.cfg.SpirvTool, toolchain.SpirvArgs(in, out)...)
	cmd.Stdout = b.stdout
	cmd.Stderr = b.stderr
	if err := cmd.Run(); err != nil {
		b.log.Error("spirv", "compile", "failure", fmt.Sprintf("Failed to compile %s to SPIR-V", in), "error", err)
		return "", &StageError{Kind: ErrShaderCompile, Path: in, ExitCode: exitCode(err), Err: err}
	}
	b.log.Info("spirv", "compile", "success", fmt.Sprintf("SPIR-V binary written to %s", out))
	return out, nil
}
