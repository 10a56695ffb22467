// Package validate holds the two name validators that guard the
// trust boundaries where a string derived from source code crosses
// into a network request or a subprocess invocation.
package validate

import "regexp"

// urlSafePattern matches distribution names safe to interpolate into
// an Index Client request path: alphanumeric-bounded, with only
// dots, hyphens, and underscores in between, up to 200 characters.
var urlSafePattern = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9._-]{0,198}[A-Za-z0-9]$`)

// urlSafeForbidden are substrings that, even if they somehow matched
// urlSafePattern on a shorter prefix, must never appear in a name
// bound for URL construction.
var urlSafeForbidden = []string{"/", "?", "#", "&", "=", "..", "%"}

// URLSafe reports whether name may be interpolated into an Index
// Client request path. A false result comes with a human-readable
// reason suitable for a Warning message.
func URLSafe(name string) (bool, string) {
	if !urlSafePattern.MatchString(name) {
		return false, "name does not match the URL-safe distribution name pattern"
	}
	for _, bad := range urlSafeForbidden {
		if contains(name, bad) {
			return false, "name contains a forbidden URL sequence: " + bad
		}
	}
	return true, ""
}

// pep508Pattern is the PEP 508 distribution-name grammar: a letter or
// digit, optionally followed by any run of letters, digits, dots,
// hyphens, or underscores that ends in a letter or digit (i.e. no
// leading/trailing separator; doubled separators are accepted).
var pep508Pattern = regexp.MustCompile(`^[A-Za-z0-9]([A-Za-z0-9._-]*[A-Za-z0-9])?$`)

// shellMetacharacters are rejected outright wherever a name is bound
// for subprocess argument construction, even though passing argv
// slices to exec.Command (rather than a shell) already prevents
// interpretation of these characters. Defense in depth: a name that
// looks like an injection attempt is refused before it ever reaches
// the installer, regardless of how it is invoked.
const shellMetacharacters = ";&|`$(){}<>\n\r"

// ShellSafe reports whether name may be passed as a package-install
// argument. A false result comes with a human-readable reason.
func ShellSafe(name string) (bool, string) {
	if !pep508Pattern.MatchString(name) {
		return false, "name does not match the PEP 508 distribution name grammar"
	}
	for _, r := range name {
		if r == ' ' || r == '\t' {
			return false, "name contains whitespace"
		}
		for _, bad := range shellMetacharacters {
			if r == bad {
				return false, "name contains shell metacharacter: " + string(bad)
			}
		}
	}
	return true, ""
}

func contains(s, substr string) bool {
	if len(substr) == 0 {
		return false
	}
	for i := 0; i+len(substr) <= len(s); i++ {
		if s[i:i+len(substr)] == substr {
			return true
		}
	}
	return false
}
