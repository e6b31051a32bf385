package cmd

import (
	"os"

	"shader-tools/pkg/toolchain"

	"github.com/spf13/cobra"
)

// toolchainFlags holds the command-line overrides for toolchain.Config.
// Only flags the user actually set are applied.
type toolchainFlags struct {
	cxx          string
	source       string
	outDir       string
	std          string
	slangInclude string
	slangLib     string
	jsonInclude  string
	spirvTool    string
	shaderDir    string
	pattern      string
	keepGoing    bool
}

func bindToolchainFlags(c *cobra.Command, f *toolchainFlags, withCompiler bool) {
	d := toolchain.Default()
	flags := c.Flags()
	if withCompiler {
		flags.StringVar(&f.cxx, "cxx", d.CXX, "C++ compiler used to build the shader compiler.")
		flags.StringVar(&f.source, "source", d.Source, "Shader compiler source file.")
		flags.StringVar(&f.outDir, "out-dir", d.OutputDir, "Directory the shader compiler binary is written to.")
		flags.StringVar(&f.std, "std", d.Std, "C++ language standard.")
		flags.StringVar(&f.slangInclude, "slang-include", d.SlangInclude, "Slang include directory.")
		flags.StringVar(&f.slangLib, "slang-lib", d.SlangLib, "Slang library directory, also embedded as the runtime search path.")
		flags.StringVar(&f.jsonInclude, "json-include", d.JSONInclude, "nlohmann/json include directory.")
	}
	flags.StringVar(&f.spirvTool, "spirv-tool", d.SpirvTool, "GLSL to SPIR-V compiler.")
	flags.StringVar(&f.shaderDir, "shader-dir", d.ShaderDir, "Directory holding the generated GLSL.")
	flags.StringVar(&f.pattern, "pattern", d.ShaderPattern, "Glob selecting the shader files to compile.")
	flags.BoolVar(&f.keepGoing, "keep-going", false, "Compile every shader and report all failures instead of stopping at the first.")
}

// resolveConfig layers defaults, the config file, the environment and the
// command's flags, in that order.
func resolveConfig(c *cobra.Command, f *toolchainFlags) (toolchain.Config, error) {
	cfg := toolchain.Default()
	if configFile != "" {
		if err := cfg.LoadFile(configFile); err != nil {
			return cfg, err
		}
	}
	cfg.ApplyEnv(os.Getenv)

	flags := c.Flags()
	set := func(name string, dst *string, value string) {
		if flags.Changed(name) {
			*dst = value
		}
	}
	set("cxx", &cfg.CXX, f.cxx)
	set("source", &cfg.Source, f.source)
	set("out-dir", &cfg.OutputDir, f.outDir)
	set("std", &cfg.Std, f.std)
	set("slang-include", &cfg.SlangInclude, f.slangInclude)
	set("slang-lib", &cfg.SlangLib, f.slangLib)
	set("json-include", &cfg.JSONInclude, f.jsonInclude)
	set("spirv-tool", &cfg.SpirvTool, f.spirvTool)
	set("shader-dir", &cfg.ShaderDir, f.shaderDir)
	set("pattern", &cfg.ShaderPattern, f.pattern)
	if flags.Changed("keep-going") {
		cfg.KeepGoing = f.keepGoing
	}

	log.Debug("config", "load", "ok", "Toolchain configuration resolved", "config", cfg)
	return cfg, cfg.Validate()
}
