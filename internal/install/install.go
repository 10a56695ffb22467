// Package install shells out to pip to install resolved dependencies.
// It is a fixed-interface collaborator the inference pipeline never
// calls directly.
package install

import (
	"context"
	"fmt"
	"os"
	"os/exec"

	"github.com/nullpx/pypm/internal/validate"
	"github.com/nullpx/pypm/pkg/pypm"
)

// Installer invokes a package installer binary with validated
// dependency names only.
type Installer struct {
	// Binary is the installer executable, e.g. "pip" or "uv". Defaults
	// to "pip" when empty.
	Binary string
}

// Install runs `<binary> install <deps...>`, or just prints the
// command when dryRun is set. Every dependency name is checked
// against the shell-safe validator before it is ever placed in argv;
// a single unsafe name aborts the whole call rather than installing
// a partial, surprising subset.
func (i *Installer) Install(ctx context.Context, deps []pypm.Dependency, dryRun bool) error {
	binary := i.Binary
	if binary == "" {
		binary = "pip"
	}

	args := make([]string, 0, len(deps)+1)
	args = append(args, "install")
	for _, d := range deps {
		spec := d.String()
		if ok, reason := validate.ShellSafe(string(d.Name)); !ok {
			return fmt.Errorf("refusing to install %q: %s", d.Name, reason)
		}
		args = append(args, spec)
	}

	if dryRun {
		fmt.Printf("%s %s\n", binary, joinArgs(args))
		return nil
	}

	// exec.Command takes args as a slice, never through a shell, so
	// none of these names is interpreted for metacharacters even if
	// the validator above were somehow bypassed.
	cmd := exec.CommandContext(ctx, binary, args...)
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	return cmd.Run()
}

func joinArgs(args []string) string {
	out := ""
	for i, a := range args {
		if i > 0 {
			out += " "
		}
		out += a
	}
	return out
}
