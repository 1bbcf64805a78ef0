// Package heritage reassigns cultural-heritage tags on name rows and
// reports how names are distributed across heritages.
//
// All operations work on in-memory CSV rows and never touch the store.
package heritage

import (
	"bytes"
	_ "embed"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed rules.yaml
var defaultRulesYAML []byte

// TagPrefix is the prefix shared by every heritage tag.
const TagPrefix = "Blades - "

// Rule matches names belonging to one heritage.
type Rule struct {
	Heritage  string   `yaml:"heritage"`
	Names     []string `yaml:"names,omitempty"`
	Suffixes  []string `yaml:"suffixes,omitempty"`
	Prefixes  []string `yaml:"prefixes,omitempty"`
	Fragments []string `yaml:"fragments,omitempty"`

	names map[string]bool
}

// Match reports whether the lowercased name satisfies any of the rule's patterns.
func (r *Rule) Match(lower string) bool {
	if r.names == nil {
		r.index()
	}
	if r.names[lower] {
		return true
	}
	for _, s := range r.Suffixes {
		if strings.HasSuffix(lower, s) {
			return true
		}
	}
	for _, p := range r.Prefixes {
		if strings.HasPrefix(lower, p) {
			return true
		}
	}
	for _, f := range r.Fragments {
		if strings.Contains(lower, f) {
			return true
		}
	}
	return false
}

func (r *Rule) index() {
	r.names = make(map[string]bool, len(r.Names))
	for _, n := range r.Names {
		r.names[n] = true
	}
}

// RuleSet is an ordered list of rules. The first matching rule wins.
type RuleSet struct {
	// Default is the heritage whose names are candidates for reassignment.
	Default string `yaml:"default"`
	// TagPrefix turns a heritage into its tag name ("Blades - " + "Skovlan").
	TagPrefix string `yaml:"tag_prefix"`
	Rules     []Rule `yaml:"rules"`
}

// DefaultRules returns the embedded rule table. Each call returns a fresh copy.
func DefaultRules() *RuleSet {
	rs, err := LoadRules(bytes.NewReader(defaultRulesYAML))
	if err != nil {
		panic(fmt.Sprintf("embedded heritage rules: %v", err))
	}
	return rs
}

// LoadRules parses and validates a YAML rule table.
func LoadRules(r io.Reader) (*RuleSet, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)

	var rs RuleSet
	if err := dec.Decode(&rs); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, errors.New("heritage rules: empty document")
		}
		return nil, fmt.Errorf("heritage rules: %w", err)
	}
	rs.normalize()
	if err := rs.Validate(); err != nil {
		return nil, err
	}
	return &rs, nil
}

// LoadRulesFile reads a rule table from path.
func LoadRulesFile(path string) (*RuleSet, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	rs, err := LoadRules(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return rs, nil
}

// normalize lowercases every pattern, since names are matched lowercased.
func (rs *RuleSet) normalize() {
	rs.Default = strings.TrimSpace(rs.Default)
	if rs.TagPrefix == "" {
		rs.TagPrefix = TagPrefix
	}
	for i := range rs.Rules {
		r := &rs.Rules[i]
		r.Heritage = strings.TrimSpace(r.Heritage)
		for _, list := range [][]string{r.Names, r.Suffixes, r.Prefixes, r.Fragments} {
			for j, v := range list {
				list[j] = strings.ToLower(strings.TrimSpace(v))
			}
		}
		r.index()
	}
}

// Validate checks that the rule table can be applied.
func (rs *RuleSet) Validate() error {
	if rs.Default == "" {
		return errors.New("heritage rules: default heritage is empty")
	}
	if len(rs.Rules) == 0 {
		return errors.New("heritage rules: no rules")
	}

	seen := make(map[string]bool, len(rs.Rules))
	for i, r := range rs.Rules {
		switch {
		case r.Heritage == "":
			return fmt.Errorf("heritage rules: rule %d has no heritage", i+1)
		case r.Heritage == rs.Default:
			return fmt.Errorf("heritage rules: rule %d reassigns to the default heritage %q", i+1, r.Heritage)
		case seen[r.Heritage]:
			return fmt.Errorf("heritage rules: duplicate heritage %q", r.Heritage)
		}
		seen[r.Heritage] = true

		if len(r.Names)+len(r.Suffixes)+len(r.Prefixes)+len(r.Fragments) == 0 {
			return fmt.Errorf("heritage rules: %s has no patterns", r.Heritage)
		}
		for _, list := range [][]string{r.Names, r.Suffixes, r.Prefixes, r.Fragments} {
			for _, v := range list {
				if v == "" {
					return fmt.Errorf("heritage rules: %s has an empty pattern", r.Heritage)
				}
			}
		}
	}
	return nil
}

// Heritages returns the rule heritages in priority order.
func (rs *RuleSet) Heritages() []string {
	out := make([]string, len(rs.Rules))
	for i, r := range rs.Rules {
		out[i] = r.Heritage
	}
	return out
}

// Tag returns the tag name for a heritage.
func (rs *RuleSet) Tag(heritage string) string {
	return rs.TagPrefix + heritage
}

// DefaultTag returns the tag name of the default heritage.
func (rs *RuleSet) DefaultTag() string {
	return rs.Tag(rs.Default)
}

// Match returns the first heritage whose rule matches name, or "" when none does.
func (rs *RuleSet) Match(name string) string {
	lower := strings.ToLower(name)
	for i := range rs.Rules {
		if rs.Rules[i].Match(lower) {
			return rs.Rules[i].Heritage
		}
	}
	return ""
}

// Conflicts lists every heritage whose rule matches name, in priority order.
// More than one entry means the rule order decided the outcome.
func (rs *RuleSet) Conflicts(name string) []string {
	lower := strings.ToLower(name)
	var out []string
	for i := range rs.Rules {
		if rs.Rules[i].Match(lower) {
			out = append(out, rs.Rules[i].Heritage)
		}
	}
	return out
}
