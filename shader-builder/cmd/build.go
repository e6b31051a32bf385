package cmd

import (
	"shader-tools/pkg/orchestrator"
	"shader-tools/pkg/shaderpack"

	"github.com/spf13/cobra"
)

var (
	buildFlags  toolchainFlags
	buildBundle string
)

var buildCmd = &cobra.Command{
	Use:   "build",
	Short: "Compiles and runs the shader compiler, then compiles its output to SPIR-V.",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		exitOnError("system", "run", runBuild(cmd, &buildFlags, buildBundle))
	},
}

func init() {
	rootCmd.AddCommand(buildCmd)
	bindToolchainFlags(buildCmd, &buildFlags, true)
	buildCmd.Flags().StringVar(&buildBundle, "bundle", "", "Pack the compiled shaders into this bundle after a successful build.")
}

func runBuild(cmd *cobra.Command, f *toolchainFlags, bundlePath string) error {
	cfg, err := resolveConfig(cmd, f)
	if err != nil {
		return err
	}

	b := orchestrator.New(cfg, log, cmd.OutOrStdout(), cmd.ErrOrStderr())
	written, err := b.Run(cmd.Context())
	if err != nil {
		return err
	}
	log.Info("system", "finish", "success", "Shader build complete", "spirv_files", len(written))

	if bundlePath != "" {
		if _, err := shaderpack.Pack(log, cfg.ShaderDir, bundlePath, shaderpack.Options{}); err != nil {
			return err
		}
	}
	return nil
}
