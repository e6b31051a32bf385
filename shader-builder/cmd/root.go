package cmd

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"shader-tools/pkg/logbowl"
	"shader-tools/pkg/orchestrator"

	"github.com/spf13/cobra"
)

var (
	log        logbowl.Logger
	configFile string
	rootFlags  toolchainFlags
	rootBundle string
)

var rootCmd = &cobra.Command{
	Use:   "shader-builder",
	Short: "Builds the Slang shader compiler, runs it, and compiles its GLSL output to SPIR-V.",
	Long: `Without a subcommand shader-builder runs the full build: compile
shader_compiler.cpp, run the result, then compile every generated .comp file
in assets/compiled_shaders to SPIR-V.`,
	Args: cobra.NoArgs,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		log = logbowl.Create("shader-builder")
	},
	Run: func(cmd *cobra.Command, args []string) {
		exitOnError("system", "run", runBuild(cmd, &rootFlags, rootBundle))
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "Path to a JSON toolchain config file.")
	bindToolchainFlags(rootCmd, &rootFlags, true)
	rootCmd.Flags().StringVar(&rootBundle, "bundle", "", "Pack the compiled shaders into this bundle after a successful build.")
}

func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		if log.Logger != nil {
			log.Error("system", "stop", "error", "Failed to execute command", "error", err)
		}
		stop()
		os.Exit(1)
	}
}

// exitOnError ends the process with status 1 if err is set. Stage failures
// have already been reported by the orchestrator.
func exitOnError(domain, action string, err error) {
	if err == nil {
		return
	}
	var serr *orchestrator.StageError
	if !errors.As(err, &serr) {
		log.Error(domain, action, "error", "Command failed", "error", err)
	}
	os.Exit(1)
}
