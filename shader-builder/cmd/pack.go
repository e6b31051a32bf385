package cmd

import (
	"fmt"
	"os"

	"shader-tools/pkg/shaderpack"
	"shader-tools/pkg/toolchain"

	"github.com/spf13/cobra"
)

var (
	packOutPath         string
	packIncludePatterns []string
	packExcludePatterns []string
)

var packCmd = &cobra.Command{
	Use:   "pack [compiled_shader_dir]",
	Short: "Packs compiled SPIR-V shaders and reflection data into a checksummed bundle.",
	Args:  cobra.MaximumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		exitOnError("bundle", "pack", runPack(cmd, args))
	},
}

func init() {
	rootCmd.AddCommand(packCmd)
	packCmd.Flags().StringVarP(&packOutPath, "out", "o", "", "Path for the bundle file.")
	packCmd.Flags().StringArrayVar(&packIncludePatterns, "include", []string{}, "Glob patterns selecting files to bundle (default **/*.spv and reflection.json).")
	packCmd.Flags().StringArrayVar(&packExcludePatterns, "exclude", []string{}, "Glob patterns to exclude from the bundle.")
}

func runPack(cmd *cobra.Command, args []string) error {
	if packOutPath == "" {
		return fmt.Errorf("--out is required")
	}
	dir := ""
	if len(args) == 1 {
		dir = args[0]
	} else {
		cfg := toolchain.Default()
		if configFile != "" {
			if err := cfg.LoadFile(configFile); err != nil {
				return err
			}
		}
		cfg.ApplyEnv(os.Getenv)
		dir = cfg.ShaderDir
	}

	manifest, err := shaderpack.Pack(log, dir, packOutPath, shaderpack.Options{Include: packIncludePatterns, Exclude: packExcludePatterns})
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Packed %d files from %s into %s\n", len(manifest.Files), dir, packOutPath)
	return nil
}
