package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"shader-tools/pkg/reflection"
	"shader-tools/pkg/toolchain"

	"github.com/spf13/cobra"
)

var infoStrict bool

var infoCmd = &cobra.Command{
	Use:   "info [reflection.json]",
	Short: "Summarises the entry points and resource bindings the shader compiler reflected.",
	Args:  cobra.MaximumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		exitOnError("reflection", "info", runInfo(cmd, args))
	},
}

func init() {
	rootCmd.AddCommand(infoCmd)
	infoCmd.Flags().BoolVar(&infoStrict, "strict", false, "Fail if two resources in one shader share a binding.")
}

func runInfo(cmd *cobra.Command, args []string) error {
	path := ""
	if len(args) == 1 {
		path = args[0]
	} else {
		cfg := toolchain.Default()
		if configFile != "" {
			if err := cfg.LoadFile(configFile); err != nil {
				return err
			}
		}
		cfg.ApplyEnv(os.Getenv)
		path = filepath.Join(cfg.ShaderDir, reflection.FileName)
	}

	shaders, err := reflection.Load(path)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Reflection data for: %s\n", path)
	conflicts := 0
	for _, s := range shaders {
		fmt.Fprintf(out, "Shader: %s\n", s.ShaderName)
		for _, ep := range s.EntryPoints {
			fmt.Fprintf(out, "  Entry point: %s (%s)\n", ep.Name, reflection.StageName(ep.Stage))
		}
		for _, b := range s.Bindings() {
			fmt.Fprintf(out, "  Binding: space %d binding %d  %s %s\n", b.Space, b.Binding, b.Name, b.Type)
		}
		for _, c := range s.Conflicts() {
			conflicts++
			log.Warn("reflection", "validate", "warning", "Binding conflict", "shader", s.ShaderName, "conflict", c.String())
		}
	}

	if infoStrict && conflicts > 0 {
		return fmt.Errorf("%d binding conflicts in %s", conflicts, path)
	}
	return nil
}
