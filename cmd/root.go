package cmd

import (
	"errors"
	"os"

	"github.com/spf13/cobra"

	"github.com/nullpx/pypm/internal/domain"
	"github.com/nullpx/pypm/internal/logging"
	"github.com/nullpx/pypm/pkg/version"
)

var (
	verbose bool
	noColor bool
)

var rootCmd = &cobra.Command{
	Use:     "pypm",
	Short:   "Infer third-party PyPI dependencies from a Python project's imports",
	Long:    "pypm scans a Python project, classifies every import it finds, and resolves\neach one to the PyPI distribution that provides it. It reports what it\nfound; it never installs anything or touches your manifest unless you\nrun a subcommand that says so explicitly.",
	Version: version.Version,
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose output")
	rootCmd.PersistentFlags().BoolVar(&noColor, "no-color", false, "disable colored output")
	rootCmd.SilenceErrors = true
	cobra.OnInitialize(func() {
		logging.Init(noColor)
		logging.SetVerbose(verbose)
	})
}

// Execute runs the root command and exits with code 1 on error.
// ExitError is handled specially: its Code is used as the exit code.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		var exitErr *domain.ExitError
		if errors.As(err, &exitErr) {
			logging.L().Error(exitErr.Message)
			os.Exit(exitErr.Code)
		}
		logging.L().Error(err.Error())
		os.Exit(1)
	}
}
