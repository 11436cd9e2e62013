package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestExpandEnvVars(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		envVars  map[string]string
		expected string
	}{
		{
			name:     "no variables",
			input:    "hello world",
			expected: "hello world",
		},
		{
			name:     "simple variable",
			input:    "url: http://${MW_HOST}/ip",
			envVars:  map[string]string{"MW_HOST": "x.com"},
			expected: "url: http://x.com/ip",
		},
		{
			name:     "variable with default - value exists",
			input:    "times: ${MW_TIMES:-1}",
			envVars:  map[string]string{"MW_TIMES": "3"},
			expected: "times: 3",
		},
		{
			name:     "variable with default - value missing",
			input:    "times: ${MW_TIMES:-1}",
			expected: "times: 1",
		},
		{
			name:     "variable with empty default",
			input:    "token: ${MW_TOKEN:-}",
			expected: "token: ",
		},
		{
			name:     "mixed with and without defaults",
			input:    "url: ${MW_PROTO:-http}://${MW_HOST}:${MW_PORT:-80}",
			envVars:  map[string]string{"MW_HOST": "example.com"},
			expected: "url: http://example.com:80",
		},
		{
			name:     "variable not set without default",
			input:    "key: ${MW_MISSING}",
			expected: "key: ",
		},
		{
			name:     "not a reference",
			input:    "body: $HOME and ${not valid}",
			expected: "body: $HOME and ${not valid}",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for k, v := range tt.envVars {
				t.Setenv(k, v)
			}

			result := ExpandEnvVars(tt.input)
			if result != tt.expected {
				t.Errorf("ExpandEnvVars(%q) = %q, want %q", tt.input, result, tt.expected)
			}
		})
	}
}

func TestResolvePath(t *testing.T) {
	abs, _ := filepath.Abs("/tmp/mocks.yaml")
	if got := ResolvePath("/base", abs); got != abs {
		t.Errorf("absolute path changed: %q", got)
	}
	if got := ResolvePath("/base", "sub/mocks.yaml"); got != filepath.Join("/base", "sub/mocks.yaml") {
		t.Errorf("relative path: got %q", got)
	}
	home, err := os.UserHomeDir()
	if err == nil {
		if got := ResolvePath("/base", "~/mocks.yaml"); got != filepath.Join(home, "mocks.yaml") {
			t.Errorf("home path: got %q", got)
		}
	}
}
