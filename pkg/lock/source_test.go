package lock

import (
	"testing"

	"github.com/lingo-build/lingo/pkg/errors"
	"github.com/lingo-build/lingo/pkg/manifest"
)

func TestParseSourceDescriptor(t *testing.T) {
	tests := []struct {
		in      string
		want    SourceDescriptor
		wantErr errors.Code
	}{
		{in: "git+https://example.com/a.git#0123abc", want: SourceDescriptor{Kind: SourceGit, URI: "https://example.com/a.git", Rev: "0123abc"}},
		{in: "tar+https://example.com/a.tar.gz", want: SourceDescriptor{Kind: SourceTar, URI: "https://example.com/a.tar.gz"}},
		{in: "path+../libs/a", want: SourceDescriptor{Kind: SourcePath, URI: "../libs/a"}},
		{in: "path+dir#with-hash", want: SourceDescriptor{Kind: SourcePath, URI: "dir#with-hash"}},
		{in: "registry+mqtt", want: SourceDescriptor{Kind: SourceRegistry, URI: "mqtt"}},
		{in: "git+https://example.com/a.git", wantErr: errors.ErrCodeInvalidLock},
		{in: "git+https://example.com/a.git#", wantErr: errors.ErrCodeInvalidLock},
		{in: "git+https://example.com/a.git#main", wantErr: errors.ErrCodeInvalidLock},
		{in: "git+https://example.com/a.git#0123ABC", wantErr: errors.ErrCodeInvalidLock},
		{in: "svn+https://example.com/a", wantErr: errors.ErrCodeInvalidLock},
		{in: "no-kind", wantErr: errors.ErrCodeInvalidLock},
		{in: "path+", wantErr: errors.ErrCodeInvalidLock},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseSourceDescriptor(tt.in)
			if tt.wantErr != "" {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("err = %v, want %s", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatal(err)
			}
			if got != tt.want {
				t.Errorf("got %+v, want %+v", got, tt.want)
			}
			if got.String() != tt.in {
				t.Errorf("String() = %q, want %q", got.String(), tt.in)
			}
		})
	}
}

func TestMarshalGitWithoutRev(t *testing.T) {
	_, err := SourceDescriptor{Kind: SourceGit, URI: "https://example.com/a.git"}.MarshalText()
	if !errors.Is(err, errors.ErrCodeInvalidLock) {
		t.Fatalf("err = %v, want INVALID_LOCK", err)
	}
}

func TestDescriptorDetails(t *testing.T) {
	d := SourceDescriptor{Kind: SourceGit, URI: "https://example.com/a.git", Rev: "abc1234"}
	details, err := d.Details()
	if err != nil {
		t.Fatal(err)
	}
	if details.Source != manifest.GitSource(d.URI) || details.Lock == nil || details.Lock.Kind != manifest.LockRev || details.Lock.Name != "abc1234" {
		t.Errorf("details = %+v", details)
	}

	back, err := DescriptorFor(details)
	if err != nil {
		t.Fatal(err)
	}
	if back != d {
		t.Errorf("DescriptorFor = %+v, want %+v", back, d)
	}

	if _, err := (SourceDescriptor{Kind: SourceRegistry, URI: "mqtt"}).Details(); !errors.Is(err, errors.ErrCodeUnsupported) {
		t.Errorf("registry err = %v, want UNSUPPORTED", err)
	}
	if _, err := DescriptorFor(manifest.PackageDetails{Source: manifest.GitSource("x")}); !errors.Is(err, errors.ErrCodeInvalidLock) {
		t.Errorf("unresolved git err = %v, want INVALID_LOCK", err)
	}
}
