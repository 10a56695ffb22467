package resolve

import (
	"os"
	"path/filepath"
	"strings"
)

// sourceExtensions are the file extensions whose basename (minus
// extension) counts as a local top-level module name.
var sourceExtensions = buildSet(".py", ".pyi", ".pyx", ".pyd", ".so")

// localModules scans root non-recursively and returns the set of
// top-level module names it defines: every source file's basename,
// and every subdirectory that contains a package-init file.
func localModules(root string) map[string]struct{} {
	names := make(map[string]struct{})

	entries, err := os.ReadDir(root)
	if err != nil {
		return names
	}

	for _, entry := range entries {
		if entry.IsDir() {
			if hasPackageInit(filepath.Join(root, entry.Name())) {
				names[entry.Name()] = struct{}{}
			}
			continue
		}
		ext := strings.ToLower(filepath.Ext(entry.Name()))
		if _, ok := sourceExtensions[ext]; !ok {
			continue
		}
		base := strings.TrimSuffix(entry.Name(), filepath.Ext(entry.Name()))
		names[base] = struct{}{}
	}
	return names
}

func hasPackageInit(dir string) bool {
	for _, name := range []string{"__init__.py", "__init__.pyi"} {
		if _, err := os.Stat(filepath.Join(dir, name)); err == nil {
			return true
		}
	}
	return false
}
