package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestShaderFilesMatchesOnlyComputeShaders(t *testing.T) {
	f := newFixture(t, quietArtifact)
	f.addShaders(t, "blur_0.comp", "blur_0.spv", "reflection.json", "tone.vert", "old.comp.bak", "UPPER.COMP", "sum_1.comp")
	require.NoError(t, os.Mkdir(filepath.Join(f.cfg.ShaderDir, "nested.comp"), 0755))

	files, err := f.builder().ShaderFiles()
	require.NoError(t, err)
	assert.Equal(t, []string{
		filepath.Join(f.cfg.ShaderDir, "blur_0.comp"),
		filepath.Join(f.cfg.ShaderDir, "sum_1.comp"),
	}, files)
}

func TestCompileShadersWithNoMatches(t *testing.T) {
	f := newFixture(t, quietArtifact)
	f.addShaders(t, "reflection.json")

	written, err := f.builder().CompileShaders(context.Background())
	require.NoError(t, err)
	assert.Empty(t, written)
	assert.Empty(t, readLog(t, f.spirvLog))
}

func TestCompileShadersAllSucceed(t *testing.T) {
	f := newFixture(t, quietArtifact)
	names := []string{"a_0.comp", "b_0.comp", "c_0.comp", "notes.txt"}
	f.addShaders(t, names...)

	written, err := f.builder().CompileShaders(context.Background())
	require.NoError(t, err)

	calls := readLog(t, f.spirvLog)
	require.Len(t, calls, 3)
	for i, base := range []string{"a_0", "b_0", "c_0"} {
		in := filepath.Join(f.cfg.ShaderDir, base+".comp")
		out := filepath.Join(f.cfg.ShaderDir, base+".spv")
		assert.Equal(t, fmt.Sprintf("-V %s -o %s", in, out), calls[i])
		assert.Equal(t, out, written[i])
		assert.FileExists(t, out)
		assert.Contains(t, f.logs.String(), "SPIR-V binary written to "+out)
	}
}

func TestCompileShadersStopsAtFirstFailure(t *testing.T) {
	f := newFixture(t, quietArtifact)
	f.addShaders(t, "a_0.comp", "b_bad.comp", "c_0.comp", "d_0.comp")

	written, err := f.builder().CompileShaders(context.Background())
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrShaderCompile))

	var serr *StageError
	require.True(t, errors.As(err, &serr))
	badPath := filepath.Join(f.cfg.ShaderDir, "b_bad.comp")
	assert.Equal(t, badPath, serr.Path)
	assert.Equal(t, 2, serr.ExitCode)
	assert.Contains(t, err.Error(), badPath)

	assert.Len(t, readLog(t, f.spirvLog), 2, "files after the failing one are never attempted")
	assert.Equal(t, []string{filepath.Join(f.cfg.ShaderDir, "a_0.spv")}, written)
	assert.NoFileExists(t, filepath.Join(f.cfg.ShaderDir, "c_0.spv"))
	assert.Contains(t, f.stderr.String(), "cannot compile "+badPath)
}

func TestCompileShadersKeepGoingReportsEveryFailure(t *testing.T) {
	f := newFixture(t, quietArtifact)
	f.cfg.KeepGoing = true
	f.addShaders(t, "a_bad.comp", "b_0.comp", "c_bad.comp")

	written, err := f.builder().CompileShaders(context.Background())
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrShaderCompile))
	assert.Contains(t, err.Error(), "a_bad.comp")
	assert.Contains(t, err.Error(), "c_bad.comp")
	assert.Equal(t, 2, strings.Count(err.Error(), ErrShaderCompile.Error()))

	assert.Len(t, readLog(t, f.spirvLog), 3)
	assert.Equal(t, []string{filepath.Join(f.cfg.ShaderDir, "b_0.spv")}, written)
}

func TestCompileShadersMissingDirectory(t *testing.T) {
	f := newFixture(t, quietArtifact)
	f.cfg.ShaderDir = filepath.Join(f.dir, "nowhere")

	_, err := f.builder().CompileShaders(context.Background())
	require.Error(t, err)
	assert.True(t, errors.Is(err, os.ErrNotExist))

	var serr *StageError
	assert.False(t, errors.As(err, &serr), "a missing directory is not a per-file failure")
}

func TestCompileShadersMissingTool(t *testing.T) {
	f := newFixture(t, quietArtifact)
	f.cfg.SpirvTool = filepath.Join(f.dir, "no-glslang")
	f.addShaders(t, "a_0.comp", "b_0.comp")

	_, err := f.builder().CompileShaders(context.Background())
	assert.True(t, errors.Is(err, ErrShaderCompile))

	var serr *StageError
	require.True(t, errors.As(err, &serr))
	assert.Equal(t, -1, serr.ExitCode)
}
