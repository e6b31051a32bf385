package cmd

import (
	"shader-tools/pkg/orchestrator"

	"github.com/spf13/cobra"
)

var spirvFlags toolchainFlags

var spirvCmd = &cobra.Command{
	Use:   "spirv",
	Short: "Compiles the generated GLSL shaders to SPIR-V without rebuilding the shader compiler.",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		exitOnError("spirv", "compile", runSpirv(cmd, &spirvFlags))
	},
}

func init() {
	rootCmd.AddCommand(spirvCmd)
	bindToolchainFlags(spirvCmd, &spirvFlags, false)
}

func runSpirv(cmd *cobra.Command, f *toolchainFlags) error {
	cfg, err := resolveConfig(cmd, f)
	if err != nil {
		return err
	}
	_, err = orchestrator.New(cfg, log, cmd.OutOrStdout(), cmd.ErrOrStderr()).CompileShaders(cmd.Context())
	return err
}
