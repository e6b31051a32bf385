// Package toolchain holds the paths and commands used to build the shader
// compiler and to turn its GLSL output into SPIR-V.
package toolchain

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
)

// Environment variable names
const (
	SlangDirEnvVar     = "SLANG_DIR"
	SlangIncludeEnvVar = "SLANG_INCLUDE_PATH"
	SlangLibEnvVar     = "SLANG_LIB_PATH"
	CXXEnvVar          = "SHADER_BUILDER_CXX"
	SourceEnvVar       = "SHADER_BUILDER_SOURCE"
	OutDirEnvVar       = "SHADER_BUILDER_OUT_DIR"
	SpirvToolEnvVar    = "SHADER_BUILDER_SPIRV_TOOL"
	ShaderDirEnvVar    = "SHADER_BUILDER_SHADER_DIR"
)

const (
	DefaultSlangDir      = "/usr/local/slang"
	DefaultCXX           = "g++"
	DefaultSource        = "shader_compiler.cpp"
	DefaultOutputDir     = "sc_out"
	DefaultArtifactName  = "shader_compiler"
	DefaultStd           = "c++17"
	DefaultJSONInclude   = "/usr/include/nlohmann"
	DefaultSpirvTool     = "glslangValidator"
	DefaultShaderDir     = "assets/compiled_shaders"
	DefaultShaderPattern = "*.comp"
	SpirvExt             = ".spv"
)

// Config is the toolchain configuration. It is resolved once at startup and
// treated as read-only afterwards.
type Config struct {
	CXX           string   `json:"cxx"`
	Source        string   `json:"source"`
	OutputDir     string   `json:"output_dir"`
	ArtifactName  string   `json:"artifact_name"`
	Std           string   `json:"std"`
	SlangInclude  string   `json:"slang_include"`
	SlangLib      string   `json:"slang_lib"`
	JSONInclude   string   `json:"json_include"`
	Libs          []string `json:"libs"`
	SpirvTool     string   `json:"spirv_tool"`
	ShaderDir     string   `json:"shader_dir"`
	ShaderPattern string   `json:"shader_pattern"`
	KeepGoing     bool     `json:"keep_going"`
}

// Default returns the configuration the build has always used.
func Default() Config {
	return Config{
		CXX:           DefaultCXX,
		Source:        DefaultSource,
		OutputDir:     DefaultOutputDir,
		ArtifactName:  DefaultArtifactName,
		Std:           DefaultStd,
		SlangInclude:  filepath.Join(DefaultSlangDir, "include"),
		SlangLib:      filepath.Join(DefaultSlangDir, "lib"),
		JSONInclude:   DefaultJSONInclude,
		Libs:          []string{"slang", "stdc++"},
		SpirvTool:     DefaultSpirvTool,
		ShaderDir:     DefaultShaderDir,
		ShaderPattern: DefaultShaderPattern,
	}
}

// LoadFile overlays the JSON file at path onto c. Keys absent from the file
// leave the current values untouched.
func (c *Config) LoadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file %s: %w", path, err)
	}
	if err := json.Unmarshal(data, c); err != nil {
		return fmt.Errorf("failed to parse config file %s: %w", path, err)
	}
	return nil
}

// ApplyEnv overlays environment variables onto c. SLANG_DIR sets both Slang
// paths; SLANG_INCLUDE_PATH and SLANG_LIB_PATH win over it.
func (c *Config) ApplyEnv(getenv func(string) string) {
	if dir := getenv(SlangDirEnvVar); dir != "" {
		c.SlangInclude = filepath.Join(dir, "include")
		c.SlangLib = filepath.Join(dir, "lib")
	}
	set := func(dst *string, key string) {
		if v := getenv(key); v != "" {
			*dst = v
		}
	}
	set(&c.SlangInclude, SlangIncludeEnvVar)
	set(&c.SlangLib, SlangLibEnvVar)
	set(&c.CXX, CXXEnvVar)
	set(&c.Source, SourceEnvVar)
	set(&c.OutputDir, OutDirEnvVar)
	set(&c.SpirvTool, SpirvToolEnvVar)
	set(&c.ShaderDir, ShaderDirEnvVar)
}

// Validate reports the first unusable setting.
func (c Config) Validate() error {
	required := []struct{ name, value string }{
		{"cxx", c.CXX},
		{"source", c.Source},
		{"output_dir", c.OutputDir},
		{"artifact_name", c.ArtifactName},
		{"std", c.Std},
		{"spirv_tool", c.SpirvTool},
		{"shader_dir", c.ShaderDir},
		{"shader_pattern", c.ShaderPattern},
	}
	for _, r := range required {
		if strings.TrimSpace(r.value) == "" {
			return fmt.Errorf("config: %s must not be empty", r.name)
		}
	}
	if !doublestar.ValidatePattern(c.ShaderPattern) {
		return fmt.Errorf("config: invalid shader_pattern %q", c.ShaderPattern)
	}
	return nil
}

// ExeSuffix is the executable file suffix for goos.
func ExeSuffix(goos string) string {
	if goos == "windows" {
		return ".exe"
	}
	return ""
}

// ArtifactPath is where the compiled shader compiler is written.
func (c Config) ArtifactPath() string {
	return filepath.Join(c.OutputDir, c.ArtifactName+ExeSuffix(runtime.GOOS))
}

// CompilerArgs is the argument list passed to CXX to build artifact.
func (c Config) CompilerArgs(artifact string) []string {
	args := []string{
		c.Source,
		"-o", artifact,
		"-std=" + c.Std,
		"-I", c.SlangInclude,
		"-I", c.JSONInclude,
		"-L", c.SlangLib,
	}
	for _, lib := range c.Libs {
		args = append(args, "-l"+lib)
	}
	return append(args, "-Wl,-rpath,"+c.SlangLib)
}

// SpirvOutputPath swaps the extension of a GLSL file for .spv. Leading dots of
// the base name are not an extension, so ".comp" becomes ".comp.spv".
func SpirvOutputPath(glslPath string) string {
	ext := filepath.Ext(strings.TrimLeft(filepath.Base(glslPath), "."))
	return strings.TrimSuffix(glslPath, ext) + SpirvExt
}

// SpirvArgs is the glslangValidator argument list: compile in to Vulkan
// SPIR-V and write it to out.
func SpirvArgs(in, out string) []string {
	return []string{"-V", in, "-o", out}
}
