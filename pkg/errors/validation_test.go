package errors

import (
	"testing"
)

func TestValidatePackageName(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{"valid simple", "mqtt", false},
		{"valid with dash", "lf-utils", false},
		{"valid with underscore", "lf_utils", false},
		{"valid with dot", "lf.utils", false},

		{"empty", "", true},
		{"dot", ".", true},
		{"too long", string(make([]byte, 300)), true},
		{"path traversal ..", "..", true},
		{"separator", "foo/bar", true},
		{"null byte", "foo\x00bar", true},
		{"backslash", "foo\\bar", true},
		{"control char", "foo\x01bar", true},
		{"newline", "foo\nbar", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidatePackageName(tt.input)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidatePackageName(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if err != nil && !Is(err, ErrCodeInvalidPackage) {
				t.Errorf("code = %v, want %v", GetCode(err), ErrCodeInvalidPackage)
			}
		})
	}
}

func TestValidatePath(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{"simple", "src/lib/Foo.lf", false},
		{"dotted name", "src/..hidden/x", false},
		{"current dir", "./Lingo.toml", false},

		{"empty", "", true},
		{"absolute", "/etc/passwd", true},
		{"traversal", "../outside", true},
		{"nested traversal", "a/../../b", true},
		{"backslash", "a\\b", true},
		{"null byte", "a\x00b", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidatePath(tt.input)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidatePath(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
		})
	}
}

func TestValidateURL(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{"https", "https://example.com/lib.tar.gz", false},
		{"http", "http://example.com/lib.tar.gz", false},

		{"empty", "", true},
		{"ftp", "ftp://example.com", true},
		{"file", "file:///etc/passwd", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateURL(tt.input)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateURL(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
		})
	}
}

func TestValidateGitRev(t *testing.T) {
	tests := []struct {
		input   string
		wantErr bool
	}{
		{"6f1e2b3", false},
		{"6f1e2b3c4d5e6f708192a3b4c5d6e7f801234567", false},
		{"", true},
		{"main", true},
		{"6F1E2B3", true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			err := ValidateGitRev(tt.input)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateGitRev(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
		})
	}
}
