package manifest

import (
	"fmt"
	"strings"
)

// TargetLanguage is the code generation target of an app or library.
type TargetLanguage string

// Supported target languages.
const (
	C          TargetLanguage = "C"
	Cpp        TargetLanguage = "Cpp"
	Rust       TargetLanguage = "Rust"
	TypeScript TargetLanguage = "TypeScript"
	Python     TargetLanguage = "Python"
)

// TargetLanguages lists every supported target in declaration order.
var TargetLanguages = []TargetLanguage{C, Cpp, Rust, TypeScript, Python}

// ParseTargetLanguage parses a target name case-insensitively. The common
// aliases "cpp", "c++", "ts" and "py" are accepted.
func ParseTargetLanguage(s string) (TargetLanguage, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "c":
		return C, nil
	case "cpp", "c++":
		return Cpp, nil
	case "rust", "rs":
		return Rust, nil
	case "typescript", "ts":
		return TypeScript, nil
	case "python", "py":
		return Python, nil
	}
	return "", fmt.Errorf("unknown target language %q", s)
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (t *TargetLanguage) UnmarshalText(text []byte) error {
	parsed, err := ParseTargetLanguage(string(text))
	if err != nil {
		return err
	}
	*t = parsed
	return nil
}

// Platform is the deployment platform of an app.
type Platform string

// Supported platforms.
const (
	Native Platform = "Native"
	Zephyr Platform = "Zephyr"
	RP2040 Platform = "RP2040"
)

// ParsePlatform parses a platform name case-insensitively.
func ParsePlatform(s string) (Platform, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "native":
		return Native, nil
	case "zephyr":
		return Zephyr, nil
	case "rp2040":
		return RP2040, nil
	}
	return "", fmt.Errorf("unknown platform %q", s)
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (p *Platform) UnmarshalText(text []byte) error {
	parsed, err := ParsePlatform(string(text))
	if err != nil {
		return err
	}
	*p = parsed
	return nil
}
