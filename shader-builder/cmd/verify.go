package cmd

import (
	"fmt"

	"shader-tools/pkg/shaderpack"

	"github.com/spf13/cobra"
)

var verifyCmd = &cobra.Command{
	Use:   "verify <bundle_file>",
	Short: "Verifies every checksum in a shader bundle's manifest.",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		exitOnError("bundle", "verify", runVerify(cmd, args[0]))
	},
}

func init() {
	rootCmd.AddCommand(verifyCmd)
}

func runVerify(cmd *cobra.Command, path string) error {
	log.Info("bundle", "verify", "progress", "Verifying shader bundle", "path", path)
	manifest, err := shaderpack.Verify(log, path)
	if err != nil {
		return fmt.Errorf("shader bundle %s failed verification: %w", path, err)
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Shader bundle: %s\n", path)
	for _, f := range manifest.Files {
		fmt.Fprintf(out, "  %-40s %8d bytes  %s\n", f.Path, f.Size, f.Sha256)
	}
	log.Info("bundle", "finish", "success", "Shader bundle verification successful.", "files", len(manifest.Files))
	return nil
}
