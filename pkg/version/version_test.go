package version

import (
	"testing"

	"github.com/BurntSushi/toml"
)

func TestParse(t *testing.T) {
	tests := []struct {
		input   string
		want    string
		wantErr bool
	}{
		{"1.2.3", "1.2.3", false},
		{"1.2", "1.2.0", false},
		{" 0.1.0 ", "0.1.0", false},
		{"1.0.0-rc.1", "1.0.0-rc.1", false},
		{"", "", true},
		{"latest", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			v, err := Parse(tt.input)
			if (err != nil) != tt.wantErr {
				t.Fatalf("Parse(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if err == nil && v.String() != tt.want {
				t.Errorf("Parse(%q) = %s, want %s", tt.input, v, tt.want)
			}
		})
	}
}

func TestCompare(t *testing.T) {
	tests := []struct {
		a, b string
		want int
	}{
		{"1.2.0", "1.3.0", -1},
		{"1.3.0", "1.2.0", 1},
		{"1.2", "1.2.0", 0},
		{"1.10.0", "1.9.0", 1},
		{"1.0.0-rc.1", "1.0.0", -1},
	}
	for _, tt := range tests {
		if got := MustParse(tt.a).Compare(MustParse(tt.b)); got != tt.want {
			t.Errorf("Compare(%s, %s) = %d, want %d", tt.a, tt.b, got, tt.want)
		}
	}

	if (Version{}).Compare(MustParse("0.0.1")) != -1 {
		t.Error("zero version should sort first")
	}
}

func TestRequirementMatches(t *testing.T) {
	tests := []struct {
		req     string
		version string
		want    bool
	}{
		{"^1.0", "1.2.0", true},
		{"^1.0", "1.3.0", true},
		{"^1.0", "2.0.0", false},
		{">=2.0, <3.0", "1.9.0", false},
		{">=2.0, <3.0", "2.5.1", true},
		{"~1.2", "1.2.9", true},
		{"~1.2", "1.3.0", false},
		{"1.4.2", "1.4.2", true},
		{"1.4.2", "1.4.3", false},
		{"*", "0.0.1", true},
		{"", "42.0.0", true},
	}

	for _, tt := range tests {
		t.Run(tt.req+" "+tt.version, func(t *testing.T) {
			r := MustParseRequirement(tt.req)
			if got := r.Matches(MustParse(tt.version)); got != tt.want {
				t.Errorf("%q.Matches(%s) = %v, want %v", tt.req, tt.version, got, tt.want)
			}
		})
	}
}

func TestRequirementZeroValue(t *testing.T) {
	var r Requirement
	if !r.Matches(MustParse("3.1.4")) {
		t.Error("zero requirement should match any version")
	}
	if r.Matches(Version{}) {
		t.Error("zero version should match nothing")
	}
	if r.String() != Any {
		t.Errorf("String() = %q, want %q", r.String(), Any)
	}
}

func TestParseRequirementInvalid(t *testing.T) {
	for _, bad := range []string{">= banana", "not a version"} {
		if _, err := ParseRequirement(bad); err == nil {
			t.Errorf("ParseRequirement(%q) expected error", bad)
		}
	}
}

func TestMaxAndSatisfiesAll(t *testing.T) {
	vs := []Version{MustParse("1.2.0"), MustParse("1.3.0"), MustParse("1.2.9")}
	if got := Max(vs...); got.String() != "1.3.0" {
		t.Errorf("Max = %s, want 1.3.0", got)
	}
	if !Max().IsZero() {
		t.Error("Max() of nothing should be zero")
	}

	reqs := []Requirement{MustParseRequirement("^1.0"), MustParseRequirement("<1.3")}
	if !SatisfiesAll(MustParse("1.2.9"), reqs) {
		t.Error("1.2.9 should satisfy ^1.0 and <1.3")
	}
	if SatisfiesAll(MustParse("1.3.0"), reqs) {
		t.Error("1.3.0 should not satisfy <1.3")
	}
}

func TestTOMLText(t *testing.T) {
	type doc struct {
		Version Version     `toml:"version"`
		Req     Requirement `toml:"req"`
	}

	var d doc
	if _, err := toml.Decode("version = \"1.2\"\nreq = \">=1.0, <2.0\"\n", &d); err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if d.Version.String() != "1.2.0" {
		t.Errorf("Version = %s, want 1.2.0", d.Version)
	}
	if d.Req.String() != ">=1.0, <2.0" {
		t.Errorf("Req = %q", d.Req)
	}

	out, err := toml.Marshal(d)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	var back doc
	if _, err := toml.Decode(string(out), &back); err != nil {
		t.Fatalf("Decode round trip: %v", err)
	}
	if !back.Version.Equal(d.Version) || back.Req.String() != d.Req.String() {
		t.Errorf("round trip mismatch: %+v vs %+v", back, d)
	}

	if _, err := toml.Decode("version = \"nope\"\n", &d); err == nil {
		t.Error("expected error for invalid version")
	}
}
