package cmd

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/nullpx/pypm/internal/config"
	"github.com/nullpx/pypm/internal/domain"
	"github.com/nullpx/pypm/internal/logging"
	"github.com/nullpx/pypm/pkg/pypm"
)

var scanConfigPath string

var scanCmd = &cobra.Command{
	Use:   "scan <directory>",
	Short: "List every Python source file pypm would parse",
	Long: `Scan walks a project directory and lists every eligible Python
source file, honoring .gitignore and the usual virtualenv/build-output
exclusions. It performs no parsing or resolution -- use "pypm infer"
for the full pipeline.`,
	Args:         cobra.ExactArgs(1),
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		dir, err := filepath.Abs(args[0])
		if err != nil {
			return fmt.Errorf("cannot resolve path: %w", err)
		}

		opts := domain.Options{Verbose: verbose}
		projectCfg, err := config.Load(dir, scanConfigPath)
		if err != nil {
			return err
		}
		projectCfg.ApplyToOptions(&opts)

		paths, err := pypm.Scan(cmd.Context(), dir, opts)
		if err != nil {
			return &domain.ExitError{Code: 1, Message: fmt.Sprintf("scan %s: %s", dir, err)}
		}

		for _, p := range paths {
			fmt.Fprintln(cmd.OutOrStdout(), p)
		}
		logging.L().Debugf("found %d file(s)", len(paths))
		return nil
	},
}

func init() {
	scanCmd.Flags().StringVar(&scanConfigPath, "config", "", "path to a .pypmrc.yml file (default: auto-detect in <directory>)")
	rootCmd.AddCommand(scanCmd)
}
