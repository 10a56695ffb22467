package cmd

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/nullpx/pypm/internal/domain"
	"github.com/nullpx/pypm/internal/install"
	"github.com/nullpx/pypm/internal/logging"
	"github.com/nullpx/pypm/internal/manifest"
)

var (
	installBinary string
	installDryRun bool
)

var installCmd = &cobra.Command{
	Use:   "install <directory>",
	Short: "Install the dependencies already declared in the project manifest",
	Long: `Install reads the project's pyproject.toml or requirements.txt and
hands its declared dependencies to pip (or another installer binary
via --binary). It does not run inference first -- use
"pypm infer --write" beforehand to populate the manifest.`,
	Args:         cobra.ExactArgs(1),
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		dir, err := filepath.Abs(args[0])
		if err != nil {
			return fmt.Errorf("cannot resolve path: %w", err)
		}

		path := manifest.Detect(dir)
		m, err := manifest.Load(path)
		if err != nil {
			return &domain.ExitError{Code: 1, Message: fmt.Sprintf("load manifest: %s", err)}
		}
		if len(m.Dependencies) == 0 {
			logging.L().Info("no dependencies declared in %s", path)
			return nil
		}

		installer := &install.Installer{Binary: installBinary}
		if err := installer.Install(cmd.Context(), m.Dependencies, installDryRun); err != nil {
			return &domain.ExitError{Code: 1, Message: fmt.Sprintf("install: %s", err)}
		}
		return nil
	},
}

func init() {
	installCmd.Flags().StringVar(&installBinary, "binary", "", "installer executable to invoke (default: pip)")
	installCmd.Flags().BoolVar(&installDryRun, "dry-run", false, "print the install command instead of running it")
	rootCmd.AddCommand(installCmd)
}
