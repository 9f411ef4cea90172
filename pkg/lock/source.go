package lock

import (
	"fmt"
	"strings"

	"github.com/lingo-build/lingo/pkg/errors"
	"github.com/lingo-build/lingo/pkg/manifest"
)

// SourceKind is the scheme of a lock source descriptor.
type SourceKind string

const (
	SourceRegistry SourceKind = "registry"
	SourceGit      SourceKind = "git"
	SourceTar      SourceKind = "tar"
	SourcePath     SourceKind = "path"
)

// SourceDescriptor records where a locked package came from. Its text form
// is "<kind>+<uri>", followed by "#<rev>" for git sources.
type SourceDescriptor struct {
	Kind SourceKind
	URI  string
	Rev  string // git only, required
}

// ParseSourceDescriptor parses the text form of a descriptor.
func ParseSourceDescriptor(s string) (SourceDescriptor, error) {
	kind, uri, ok := strings.Cut(s, "+")
	if !ok {
		return SourceDescriptor{}, errors.New(errors.ErrCodeInvalidLock, "source %q: missing kind", s)
	}
	d := SourceDescriptor{Kind: SourceKind(kind), URI: uri}
	switch d.Kind {
	case SourceGit:
		url, rev, ok := strings.Cut(uri, "#")
		if !ok || rev == "" {
			return SourceDescriptor{}, errors.New(errors.ErrCodeInvalidLock, "source %q: git source requires a revision", s)
		}
		if err := errors.ValidateGitRev(rev); err != nil {
			return SourceDescriptor{}, errors.Wrap(errors.ErrCodeInvalidLock, err, "source %q", s)
		}
		d.URI, d.Rev = url, rev
	case SourceRegistry, SourceTar, SourcePath:
	default:
		return SourceDescriptor{}, errors.New(errors.ErrCodeInvalidLock, "source %q: unknown kind %q", s, kind)
	}
	if d.URI == "" {
		return SourceDescriptor{}, errors.New(errors.ErrCodeInvalidLock, "source %q: empty uri", s)
	}
	return d, nil
}

// String returns the text form of d.
func (d SourceDescriptor) String() string {
	s := string(d.Kind) + "+" + d.URI
	if d.Kind == SourceGit {
		s += "#" + d.Rev
	}
	return s
}

// MarshalText implements encoding.TextMarshaler. A git descriptor without a
// revision cannot be written.
func (d SourceDescriptor) MarshalText() ([]byte, error) {
	if d.Kind == SourceGit && d.Rev == "" {
		return nil, errors.New(errors.ErrCodeInvalidLock, "git source %s has no revision", d.URI)
	}
	return []byte(d.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (d *SourceDescriptor) UnmarshalText(text []byte) error {
	parsed, err := ParseSourceDescriptor(string(text))
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// DescriptorFor converts resolved package details into a descriptor.
func DescriptorFor(details manifest.PackageDetails) (SourceDescriptor, error) {
	switch details.Source.Kind {
	case manifest.SourceGit:
		if details.ResolvedRev == "" {
			return SourceDescriptor{}, errors.New(errors.ErrCodeInvalidLock, "git source %s has no resolved revision", details.Source.URI)
		}
		return SourceDescriptor{Kind: SourceGit, URI: details.Source.URI, Rev: details.ResolvedRev}, nil
	case manifest.SourceTarball:
		return SourceDescriptor{Kind: SourceTar, URI: details.Source.URI}, nil
	case manifest.SourcePath:
		return SourceDescriptor{Kind: SourcePath, URI: details.Source.URI}, nil
	default:
		return SourceDescriptor{}, fmt.Errorf("unknown source kind %v", details.Source.Kind)
	}
}

// Details converts d into package details that refetch exactly the locked
// content: git sources are pinned to the recorded revision.
func (d SourceDescriptor) Details() (manifest.PackageDetails, error) {
	switch d.Kind {
	case SourceGit:
		return manifest.PackageDetails{
			Source:      manifest.GitSource(d.URI),
			Lock:        &manifest.VersionLock{Kind: manifest.LockRev, Name: d.Rev},
			ResolvedRev: d.Rev,
		}, nil
	case SourceTar:
		return manifest.PackageDetails{Source: manifest.TarballSource(d.URI)}, nil
	case SourcePath:
		return manifest.PackageDetails{Source: manifest.PathSource(d.URI)}, nil
	case SourceRegistry:
		return manifest.PackageDetails{}, errors.New(errors.ErrCodeUnsupported, "registry sources are not supported (%s)", d.URI)
	default:
		return manifest.PackageDetails{}, errors.New(errors.ErrCodeInvalidLock, "unknown source kind %q", d.Kind)
	}
}
