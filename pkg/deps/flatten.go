package deps

import (
	"sort"
	"strings"

	"github.com/lingo-build/lingo/pkg/errors"
	"github.com/lingo-build/lingo/pkg/version"
)

// Flatten selects one node per package name from the pulled trees. The
// result is sorted by name and contains shallow clones.
//
// Every requirement declared for a name must hold for the selected version.
// If no candidate satisfies all of them Flatten fails with
// NO_VIABLE_VERSION. Among satisfying candidates the highest version wins;
// ties go to the shallowest candidate, then the first pulled.
func Flatten(roots []*TreeNode) ([]*TreeNode, error) {
	return flatten(roots, false)
}

// FlattenStrict is like [Flatten] but fails with AMBIGUOUS_VERSION when
// candidates with different content tie for the highest version.
func FlattenStrict(roots []*TreeNode) ([]*TreeNode, error) {
	return flatten(roots, true)
}

type group struct {
	name       string
	reqs       []version.Requirement
	candidates []*TreeNode
}

func flatten(roots []*TreeNode, strict bool) ([]*TreeNode, error) {
	groups := make(map[string]*group)
	var names []string
	for _, n := range AggregateAll(roots) {
		g, ok := groups[n.Name]
		if !ok {
			g = &group{name: n.Name}
			groups[n.Name] = g
			names = append(names, n.Name)
		}
		g.reqs = append(g.reqs, n.Requirements...)
		g.candidates = append(g.candidates, n)
	}
	sort.Strings(names)

	selection := make([]*TreeNode, 0, len(names))
	for _, name := range names {
		n, err := groups[name].choose(strict)
		if err != nil {
			return nil, err
		}
		selection = append(selection, n)
	}
	return selection, nil
}

func (g *group) choose(strict bool) (*TreeNode, error) {
	var viable []*TreeNode
	for _, c := range g.candidates {
		if version.SatisfiesAll(c.Version, g.reqs) {
			viable = append(viable, c)
		}
	}
	if len(viable) == 0 {
		return nil, errors.New(errors.ErrCodeNoViableVersion,
			"no version of %s satisfies all of %s (candidates: %s)",
			g.name, joinReqs(g.reqs), joinVersions(g.candidates))
	}

	sort.SliceStable(viable, func(i, j int) bool {
		a, b := viable[i], viable[j]
		if c := a.Version.Compare(b.Version); c != 0 {
			return c > 0
		}
		if a.Depth != b.Depth {
			return a.Depth < b.Depth
		}
		return a.Order < b.Order
	})

	best := viable[0]
	if strict {
		for _, c := range viable[1:] {
			if c.Version.Equal(best.Version) && c.Hash != best.Hash {
				return nil, errors.New(errors.ErrCodeAmbiguousVersion,
					"%s %s is provided by both %s and %s", g.name, best.Version, best.Details.Source, c.Details.Source)
			}
		}
	}
	return best, nil
}

func joinReqs(reqs []version.Requirement) string {
	seen := make(map[string]bool)
	var parts []string
	for _, r := range reqs {
		s := r.String()
		if !seen[s] {
			seen[s] = true
			parts = append(parts, s)
		}
	}
	return strings.Join(parts, ", ")
}

func joinVersions(nodes []*TreeNode) string {
	parts := make([]string, len(nodes))
	for i, n := range nodes {
		parts[i] = n.Version.String()
	}
	return strings.Join(parts, ", ")
}
