package orchestrator

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"

	"shader-tools/pkg/logbowl"
	"shader-tools/pkg/toolchain"

	"github.com/stretchr/testify/require"
)

// fixture wires a Builder to fake tools living in a temp directory. The fake
// C++ compiler installs artifactBody as the shader compiler; the fake SPIR-V
// compiler fails on any input whose name contains "bad".
type fixture struct {
	dir      string
	cfg      toolchain.Config
	stdout   *bytes.Buffer
	stderr   *bytes.Buffer
	logs     *bytes.Buffer
	cxxLog   string
	spirvLog string
}

func newFixture(t *testing.T, artifactBody string) *fixture {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("fake toolchain uses /bin/sh scripts")
	}
	dir := t.TempDir()
	f := &fixture{
		dir:      dir,
		stdout:   &bytes.Buffer{},
		stderr:   &bytes.Buffer{},
		logs:     &bytes.Buffer{},
		cxxLog:   filepath.Join(dir, "cxx.log"),
		spirvLog: filepath.Join(dir, "spirv.log"),
	}

	artifactSrc := filepath.Join(dir, "artifact.sh")
	f.setArtifact(t, artifactBody)

	cxx := writeScript(t, dir, "fake-cxx", fmt.Sprintf(`echo "$@" >> '%s'
out=""
while [ $# -gt 0 ]; do
  if [ "$1" = "-o" ]; then out="$2"; fi
  shift
done
cp '%s' "$out"
chmod +x "$out"
`, f.cxxLog, artifactSrc))

	spirv := writeScript(t, dir, "fake-glslang", fmt.Sprintf(`echo "$@" >> '%s'
case "$2" in
  *bad*) echo "ERROR: cannot compile $2" >&2; exit 2 ;;
esac
echo "SPIRV" > "$4"
`, f.spirvLog))

	shaderDir := filepath.Join(dir, "assets", "compiled_shaders")
	require.NoError(t, os.MkdirAll(shaderDir, 0755))

	f.cfg = toolchain.Default()
	f.cfg.CXX = cxx
	f.cfg.SpirvTool = spirv
	f.cfg.OutputDir = filepath.Join(dir, "sc_out")
	f.cfg.ShaderDir = shaderDir
	f.cfg.SlangInclude = "/opt/slang/include"
	f.cfg.SlangLib = "/opt/slang/lib"
	return f
}

func (f *fixture) builder() *Builder {
	return New(f.cfg, logbowl.New("test", f.logs), f.stdout, f.stderr)
}

// setArtifact replaces the script the fake C++ compiler installs.
func (f *fixture) setArtifact(t *testing.T, body string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(f.dir, "artifact.sh"), []byte("#!/bin/sh\n"+body), 0644))
}

func (f *fixture) addShaders(t *testing.T, names ...string) {
	t.Helper()
	for _, name := range names {
		require.NoError(t, os.WriteFile(filepath.Join(f.cfg.ShaderDir, name), []byte("#version 460\nvoid main() {}\n"), 0644))
	}
}

func writeScript(t *testing.T, dir, name, body string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte("#!/bin/sh\n"+body), 0755))
	return path
}

// readLog returns the non-empty lines of a fake tool's invocation log.
func readLog(t *testing.T, path string) []string {
	t.Helper()
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil
	}
	require.NoError(t, err)
	var lines []string
	for _, l := range strings.Split(string(data), "\n") {
		if l != "" {
			lines = append(lines, l)
		}
	}
	return lines
}

func outputLines(buf *bytes.Buffer) (stdout, stderr []string) {
	for _, l := range strings.Split(buf.String(), "\n") {
		switch {
		case l == "":
		case strings.HasPrefix(l, StderrPrefix+" "):
			stderr = append(stderr, l)
		default:
			stdout = append(stdout, l)
		}
	}
	return stdout, stderr
}
