package validate

import "testing"

func TestURLSafe(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want bool
	}{
		{"simple", "requests", true},
		{"hyphenated", "scikit-learn", true},
		{"dotted", "zope.interface", true},
		{"single char", "a", false}, // pattern requires at least 2 chars
		{"path traversal", "../../etc/passwd", false},
		{"slash", "foo/bar", false},
		{"query string", "foo?x=1", false},
		{"percent encoding", "foo%2e%2e", false},
		{"double dot", "foo..bar", false},
		{"leading dot", ".foo", false},
		{"trailing hyphen", "foo-", false},
		{"too long", string(make([]byte, 250)), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, reason := URLSafe(tt.in)
			if got != tt.want {
				t.Errorf("URLSafe(%q) = %v (%s), want %v", tt.in, got, reason, tt.want)
			}
			if !got && reason == "" {
				t.Error("expected a reason when rejecting")
			}
		})
	}
}

func TestShellSafe(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want bool
	}{
		{"simple", "requests", true},
		{"hyphenated", "scikit-learn", true},
		{"semicolon injection", "requests; rm -rf /", false},
		{"backtick injection", "`whoami`", false},
		{"dollar subshell", "$(whoami)", false},
		{"pipe", "foo|bar", false},
		{"redirect", "foo>bar", false},
		{"whitespace", "foo bar", false},
		{"newline", "foo\nbar", false},
		{"leading hyphen", "-rf", false}, // PEP 508 names must start alphanumeric
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, reason := ShellSafe(tt.in)
			if got != tt.want {
				t.Errorf("ShellSafe(%q) = %v (%s), want %v", tt.in, got, reason, tt.want)
			}
		})
	}
}
