package engine

import (
	"fmt"
	"os"
	"strings"

	"golang.org/x/text/unicode/norm"
	"gopkg.in/yaml.v3"
)

// ShopGroup names a set of shops by case-insensitive substring match.
// A residual group matches every shop no other group matches.
type ShopGroup struct {
	Name     string   `yaml:"name"`
	Contains []string `yaml:"contains,omitempty"`
	Residual bool     `yaml:"residual,omitempty"`
}

// ShopGroups is the shop-group configuration for a deployment.
type ShopGroups struct {
	Groups []ShopGroup `yaml:"groups"`
}

// DefaultShopGroups mirrors the retail chains the dashboard ships with.
// Shop names arrive in both Latin and CJK spellings.
func DefaultShopGroups() *ShopGroups {
	return &ShopGroups{Groups: []ShopGroup{
		{Name: "Bala Group", Contains: []string{"Bala", "巴拉"}},
		{Name: "Semir Group", Contains: []string{"Semir", "森马"}},
		{Name: "Others Group", Residual: true},
	}}
}

// LoadShopGroups reads a shop-group YAML file.
func LoadShopGroups(path string) (*ShopGroups, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read shop groups: %w", err)
	}
	var sg ShopGroups
	if err := yaml.Unmarshal(data, &sg); err != nil {
		return nil, fmt.Errorf("parse shop groups: %w", err)
	}
	if len(sg.Groups) == 0 {
		return nil, fmt.Errorf("shop groups %s: no groups defined", path)
	}
	return &sg, nil
}

// FilterFor returns the ShopFilter for a named group, or an error when
// the name is unknown. An empty name means no filtering (nil filter).
func (sg *ShopGroups) FilterFor(name string) (ShopFilter, error) {
	if name == "" {
		return nil, nil
	}

	var residualExclude []string
	for _, g := range sg.Groups {
		if !g.Residual {
			residualExclude = append(residualExclude, g.Contains...)
		}
	}

	for _, g := range sg.Groups {
		if g.Name != name {
			continue
		}
		if g.Residual {
			return &substringFilter{exclude: foldAll(residualExclude)}, nil
		}
		return &substringFilter{include: foldAll(g.Contains)}, nil
	}

	return nil, fmt.Errorf("unknown shop group %q", name)
}

// GroupNames returns the configured group names in declaration order.
func (sg *ShopGroups) GroupNames() []string {
	names := make([]string, 0, len(sg.Groups))
	for _, g := range sg.Groups {
		names = append(names, g.Name)
	}
	return names
}

// substringFilter matches shop names by folded substring. With include
// terms it matches any of them; otherwise it matches names containing
// none of the exclude terms.
type substringFilter struct {
	include []string
	exclude []string
}

func (f *substringFilter) Match(shopName string) bool {
	folded := foldShopName(shopName)
	if len(f.include) > 0 {
		for _, term := range f.include {
			if strings.Contains(folded, term) {
				return true
			}
		}
		return false
	}
	for _, term := range f.exclude {
		if strings.Contains(folded, term) {
			return false
		}
	}
	return true
}

// foldShopName prepares a shop name for substring matching. CJK names
// arrive in mixed normalization forms depending on the upstream export,
// so match on the NFC form, case-insensitively.
func foldShopName(s string) string {
	return strings.ToLower(norm.NFC.String(s))
}

func foldAll(terms []string) []string {
	out := make([]string, len(terms))
	for i, t := range terms {
		out[i] = foldShopName(t)
	}
	return out
}
