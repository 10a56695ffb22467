// Package manifest reads, merges, and writes the project files that
// declare Python dependencies: pyproject.toml (PEP 621 [project]
// table) and requirements.txt. It is a thin, fixed-interface
// collaborator -- the inference pipeline never calls it directly; a
// CLI command does, after Infer has produced a dependency list.
package manifest

import (
	"bufio"
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/pelletier/go-toml/v2"

	"github.com/nullpx/pypm/internal/validate"
	"github.com/nullpx/pypm/pkg/pypm"
)

// Format identifies which manifest file a Manifest was loaded from,
// so Write knows which serializer to use.
type Format int

const (
	FormatPyproject Format = iota
	FormatRequirements
)

// Manifest is an in-memory view of a project's declared dependencies,
// independent of which file format backs it.
type Manifest struct {
	Format       Format
	Path         string
	Dependencies []pypm.Dependency

	// raw is the full decoded pyproject.toml document, preserved so
	// Write only touches the [project].dependencies key and leaves
	// every other table (build-system, tool.*, ...) untouched.
	raw map[string]interface{}
}

// Detect finds the preferred manifest file under root, in the order
// pyproject.toml, requirements.txt, falling back to the path of
// root/pyproject.toml if neither exists.
func Detect(root string) string {
	for _, name := range []string{"pyproject.toml", "requirements.txt"} {
		p := filepath.Join(root, name)
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}
	return filepath.Join(root, "pyproject.toml")
}

// Load reads and parses the manifest at path. A missing file returns
// an empty Manifest of the format implied by the extension, not an
// error -- Infer callers typically create a manifest from nothing.
func Load(path string) (*Manifest, error) {
	format := formatOf(path)
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return &Manifest{Format: format, Path: path, raw: map[string]interface{}{}}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read manifest %s: %w", path, err)
	}

	if format == FormatRequirements {
		deps, err := parseRequirements(data)
		if err != nil {
			return nil, fmt.Errorf("parse %s: %w", path, err)
		}
		return &Manifest{Format: format, Path: path, Dependencies: deps}, nil
	}

	var raw map[string]interface{}
	if err := toml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return &Manifest{Format: format, Path: path, Dependencies: extractPyprojectDeps(raw), raw: raw}, nil
}

func formatOf(path string) Format {
	if strings.EqualFold(filepath.Base(path), "requirements.txt") {
		return FormatRequirements
	}
	return FormatPyproject
}

func extractPyprojectDeps(raw map[string]interface{}) []pypm.Dependency {
	project, _ := raw["project"].(map[string]interface{})
	if project == nil {
		return nil
	}
	list, _ := project["dependencies"].([]interface{})
	var deps []pypm.Dependency
	for _, v := range list {
		s, ok := v.(string)
		if !ok {
			continue
		}
		deps = append(deps, parseRequirementLine(s))
	}
	return deps
}

func parseRequirements(data []byte) ([]pypm.Dependency, error) {
	var deps []pypm.Dependency
	scanner := bufio.NewScanner(bytes.NewReader(data))
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") || strings.HasPrefix(line, "-") {
			continue
		}
		deps = append(deps, parseRequirementLine(line))
	}
	return deps, scanner.Err()
}

// parseRequirementLine extracts the bare distribution name and extras
// from a pip requirement line or PEP 621 dependency string, dropping
// any version specifier and environment marker.
func parseRequirementLine(line string) pypm.Dependency {
	line = strings.SplitN(line, ";", 2)[0]
	line = strings.TrimSpace(line)

	name := line
	var extras []string
	if i := strings.IndexByte(line, '['); i >= 0 {
		if j := strings.IndexByte(line[i:], ']'); j >= 0 {
			name = line[:i]
			extras = strings.Split(line[i+1:i+j], ",")
			for k := range extras {
				extras[k] = strings.TrimSpace(extras[k])
			}
		}
	}

	for _, sep := range []string{"===", "==", ">=", "<=", "~=", "!=", ">", "<"} {
		if i := strings.Index(name, sep); i >= 0 {
			name = name[:i]
			break
		}
	}
	return pypm.Dependency{Name: pypm.DistributionName(strings.TrimSpace(name)), Extras: extras}
}

// Merge combines existing manifest dependencies with newly inferred
// ones. A name already present (case-insensitively) keeps its
// existing version specifier implicitly by being left alone; Merge
// only adds names the manifest didn't already declare.
func Merge(m *Manifest, inferred []pypm.Dependency) *Manifest {
	present := make(map[string]bool, len(m.Dependencies))
	for _, d := range m.Dependencies {
		present[strings.ToLower(string(d.Name))] = true
	}

	merged := &Manifest{Format: m.Format, Path: m.Path, raw: m.raw, Dependencies: append([]pypm.Dependency(nil), m.Dependencies...)}
	for _, d := range inferred {
		key := strings.ToLower(string(d.Name))
		if present[key] {
			continue
		}
		present[key] = true
		merged.Dependencies = append(merged.Dependencies, d)
	}
	sort.Slice(merged.Dependencies, func(i, j int) bool {
		return merged.Dependencies[i].Name < merged.Dependencies[j].Name
	})
	return merged
}

// Write serializes m back to its Path, preserving every pyproject.toml
// table untouched except [project].dependencies. Every dependency name
// is re-checked against the shell-safe validator before it is
// serialized -- the third boundary a name crosses, after the index
// lookup and the installer invocation, including names that came
// straight from the bundled mapping table or a hand-edited manifest.
func Write(m *Manifest) error {
	lines := make([]string, len(m.Dependencies))
	for i, d := range m.Dependencies {
		if ok, reason := validate.ShellSafe(string(d.Name)); !ok {
			return fmt.Errorf("refusing to write manifest: dependency %q: %s", d.Name, reason)
		}
		lines[i] = d.String()
	}

	if m.Format == FormatRequirements {
		var buf bytes.Buffer
		for _, l := range lines {
			buf.WriteString(l)
			buf.WriteByte('\n')
		}
		return os.WriteFile(m.Path, buf.Bytes(), 0o644)
	}

	raw := m.raw
	if raw == nil {
		raw = map[string]interface{}{}
	}
	project, _ := raw["project"].(map[string]interface{})
	if project == nil {
		project = map[string]interface{}{}
		raw["project"] = project
	}
	depsAny := make([]interface{}, len(lines))
	for i, l := range lines {
		depsAny[i] = l
	}
	project["dependencies"] = depsAny

	data, err := toml.Marshal(raw)
	if err != nil {
		return fmt.Errorf("encode %s: %w", m.Path, err)
	}
	return os.WriteFile(m.Path, data, 0o644)
}
