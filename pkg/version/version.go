// Package version wraps semantic versions and version requirements as they
// appear in Lingo.toml and Lingo.lock.
//
// Requirements use the usual operator syntax ("^1.0", "~1.2", ">=2.0, <3.0",
// "1.4.2", "*"); an empty requirement matches every version. Both types
// implement encoding.TextMarshaler and encoding.TextUnmarshaler so they can be
// used directly as TOML values.
package version

import (
	"fmt"
	"strings"

	"github.com/Masterminds/semver/v3"
)

// Any is the requirement string that matches every version.
const Any = "*"

// Version is a parsed semantic version. The zero value is invalid; use
// [Parse] or [MustParse].
type Version struct {
	v *semver.Version
}

// Parse parses a semantic version. Missing minor or patch components are
// filled with zero ("1.2" is 1.2.0).
func Parse(s string) (Version, error) {
	v, err := semver.NewVersion(strings.TrimSpace(s))
	if err != nil {
		return Version{}, fmt.Errorf("invalid version %q: %w", s, err)
	}
	return Version{v: v}, nil
}

// MustParse is like [Parse] but panics on error. Intended for tests and
// package-level constants.
func MustParse(s string) Version {
	v, err := Parse(s)
	if err != nil {
		panic(err)
	}
	return v
}

// IsZero reports whether v was never set.
func (v Version) IsZero() bool { return v.v == nil }

// String returns the canonical form of the version.
func (v Version) String() string {
	if v.v == nil {
		return ""
	}
	return v.v.String()
}

// Compare returns -1, 0 or +1 depending on whether v is lower than, equal to
// or greater than o. The zero Version sorts before every valid version.
func (v Version) Compare(o Version) int {
	switch {
	case v.v == nil && o.v == nil:
		return 0
	case v.v == nil:
		return -1
	case o.v == nil:
		return 1
	}
	return v.v.Compare(o.v)
}

// Equal reports whether v and o denote the same version.
func (v Version) Equal(o Version) bool { return v.Compare(o) == 0 }

// MarshalText implements encoding.TextMarshaler.
func (v Version) MarshalText() ([]byte, error) {
	if v.v == nil {
		return nil, fmt.Errorf("cannot marshal empty version")
	}
	return []byte(v.v.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (v *Version) UnmarshalText(text []byte) error {
	parsed, err := Parse(string(text))
	if err != nil {
		return err
	}
	*v = parsed
	return nil
}

// Requirement is a parsed version constraint together with its source text.
// The zero value matches every version.
type Requirement struct {
	raw string
	c   *semver.Constraints
}

// ParseRequirement parses a version constraint. An empty string is
// equivalent to [Any].
func ParseRequirement(s string) (Requirement, error) {
	raw := strings.TrimSpace(s)
	if raw == "" {
		raw = Any
	}
	c, err := semver.NewConstraint(raw)
	if err != nil {
		return Requirement{}, fmt.Errorf("invalid version requirement %q: %w", s, err)
	}
	return Requirement{raw: raw, c: c}, nil
}

// MustParseRequirement is like [ParseRequirement] but panics on error.
func MustParseRequirement(s string) Requirement {
	r, err := ParseRequirement(s)
	if err != nil {
		panic(err)
	}
	return r
}

// Matches reports whether v satisfies the requirement. The zero Version
// satisfies nothing.
func (r Requirement) Matches(v Version) bool {
	if v.v == nil {
		return false
	}
	if r.c == nil {
		return true
	}
	return r.c.Check(v.v)
}

// String returns the requirement as written.
func (r Requirement) String() string {
	if r.raw == "" {
		return Any
	}
	return r.raw
}

// MarshalText implements encoding.TextMarshaler.
func (r Requirement) MarshalText() ([]byte, error) {
	return []byte(r.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (r *Requirement) UnmarshalText(text []byte) error {
	parsed, err := ParseRequirement(string(text))
	if err != nil {
		return err
	}
	*r = parsed
	return nil
}

// Max returns the greatest of vs, or the zero Version if vs is empty.
func Max(vs ...Version) Version {
	var best Version
	for _, v := range vs {
		if v.Compare(best) > 0 {
			best = v
		}
	}
	return best
}

// SatisfiesAll reports whether v matches every requirement in reqs.
func SatisfiesAll(v Version, reqs []Requirement) bool {
	for _, r := range reqs {
		if !r.Matches(v) {
			return false
		}
	}
	return true
}
