// Package scan implements the Scanner: a directory walk that yields every
// source file eligible for parsing, filtering out virtual environments,
// build/cache/VCS/IDE directories, symlinks, and oversized files.
package scan

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/dustin/go-humanize"
	ignore "github.com/sabhiram/go-gitignore"

	"github.com/nullpx/pypm/internal/domain"
)

// MaxFileSize is the hard cap above which a file is skipped, never opened
// for parsing.
const MaxFileSize = 10 * 1024 * 1024 // 10 MiB

// DefaultExtensions is the recognized source extension set in the
// reference domain. Callers may override via Options.Extensions.
var DefaultExtensions = map[string]bool{
	".py":    true,
	".ipynb": true,
}

// ignoreDirs lists literal directory names skipped everywhere in the tree.
var ignoreDirs = map[string]bool{
	// virtual environments
	"venv": true, ".venv": true, "env": true, ".env": true, "virtualenv": true,
	// package-ecosystem build/cache
	"node_modules": true, "dist": true, "build": true,
	".tox": true, ".nox": true, ".eggs": true,
	".mypy_cache": true, ".ruff_cache": true, ".pytest_cache": true,
	// VCS
	".git": true, ".hg": true, ".svn": true,
	// IDE
	".idea": true, ".vscode": true,
	// tool state
	".terraform": true, ".serverless": true,
}

// Warner receives a structured warning for a recovered, non-fatal error.
// The scan package never logs directly; it reports through this hook so
// the caller controls rendering (verbose-only, colorized, etc).
type Warner func(domain.Warning)

// Walker discovers and filters eligible source files under a project root.
type Walker struct {
	Extensions map[string]bool
	ExtraDirs  map[string]bool
	Warn       Warner
}

// New creates a Walker using the default extension set and ignore set,
// optionally extended by opts.
func New(opts domain.Options) *Walker {
	exts := DefaultExtensions
	if len(opts.Extensions) > 0 {
		exts = opts.Extensions
	}
	w := &Walker{Extensions: exts, ExtraDirs: opts.ExtraIgnoreDirs, Warn: func(domain.Warning) {}}
	return w
}

// Scan walks root and returns every eligible source file path, sorted
// lexicographically for stable downstream processing. Traversal order
// itself carries no meaning; only the final sort does.
func (w *Walker) Scan(root string) ([]domain.FilePath, error) {
	info, err := os.Lstat(root)
	if err != nil {
		return nil, &domain.ExitError{Code: 1, Message: fmt.Sprintf("cannot access root directory: %s", err)}
	}
	if !info.IsDir() {
		return nil, &domain.ExitError{Code: 1, Message: fmt.Sprintf("%s is not a directory", root)}
	}

	var gitIgnore *ignore.GitIgnore
	gitignorePath := filepath.Join(root, ".gitignore")
	if _, err := os.Stat(gitignorePath); err == nil {
		gitIgnore, err = ignore.CompileIgnoreFile(gitignorePath)
		if err != nil {
			w.warn(domain.WarnMalformed, gitignorePath, fmt.Sprintf("failed to parse .gitignore: %s", err))
			gitIgnore = nil
		}
	}

	var out []domain.FilePath

	walkErr := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			w.warn(domain.WarnPermission, path, err.Error())
			if d != nil && d.IsDir() {
				return fs.SkipDir
			}
			return nil
		}

		// Symlinks, files or directories, are never followed or returned.
		if d.Type()&fs.ModeSymlink != 0 {
			if d.IsDir() {
				return fs.SkipDir
			}
			return nil
		}

		name := d.Name()

		if d.IsDir() {
			if path != root && (ignoreDirs[name] || w.ExtraDirs[name] || strings.HasSuffix(name, ".egg-info")) {
				return fs.SkipDir
			}
			if path != root && isVenvDir(path) {
				return fs.SkipDir
			}
			return nil
		}

		ext := strings.ToLower(filepath.Ext(name))
		if !w.Extensions[ext] {
			return nil
		}

		relPath, relErr := filepath.Rel(root, path)
		if relErr != nil {
			relPath = path
		}
		if gitIgnore != nil && gitIgnore.MatchesPath(relPath) {
			return nil
		}

		fi, statErr := d.Info()
		if statErr != nil {
			w.warn(domain.WarnPermission, path, statErr.Error())
			return nil
		}
		if fi.Size() > MaxFileSize {
			w.warn(domain.WarnMalformed, path, fmt.Sprintf("file too large (%s > %s), skipped", humanize.Bytes(uint64(fi.Size())), humanize.Bytes(MaxFileSize)))
			return nil
		}

		out = append(out, domain.FilePath(path))
		return nil
	})
	if walkErr != nil {
		return nil, fmt.Errorf("walk error: %w", walkErr)
	}

	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out, nil
}

func (w *Walker) warn(kind domain.WarningKind, subject, message string) {
	if w.Warn == nil {
		return
	}
	w.Warn(domain.Warning{Kind: kind, Subject: subject, Message: message})
}

// isVenvDir reports whether dir looks like a virtual environment root,
// regardless of its name: a pyvenv.cfg file, or a bin/activate or
// Scripts/activate entry.
func isVenvDir(dir string) bool {
	if fileExists(filepath.Join(dir, "pyvenv.cfg")) {
		return true
	}
	if fileExists(filepath.Join(dir, "bin", "activate")) {
		return true
	}
	if fileExists(filepath.Join(dir, "Scripts", "activate")) {
		return true
	}
	return false
}

func fileExists(path string) bool {
	info, err := os.Lstat(path)
	return err == nil && info.Mode()&fs.ModeSymlink == 0 && !info.IsDir()
}
