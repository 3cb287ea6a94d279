// Package knowledge holds the static tables the personality engine samples
// from: knowledge domains, belief skeletons, vocabularies, name pools,
// contradiction patterns and collapse themes.
package knowledge

import (
	_ "embed"
	"fmt"
	"os"
	"sort"
	"strings"
	"sync"

	"github.com/Harshitk-cp/ghostprotocol/internal/domain"
	"gopkg.in/yaml.v3"
)

//go:embed catalog.yaml
var defaultCatalog []byte

type BeliefSkeleton struct {
	Proposition string  `yaml:"proposition"`
	Controversy float64 `yaml:"controversy"`
}

type DomainProfile struct {
	ID              domain.KnowledgeDomain `yaml:"id"`
	Name            string                 `yaml:"name"`
	Description     string                 `yaml:"description"`
	InterestKeyword []string               `yaml:"interest_keywords"`
	Vocabulary      []string               `yaml:"vocabulary"`
	Beliefs         []BeliefSkeleton       `yaml:"beliefs"`
}

// ConvictionRule decides the starting conviction of an initial belief.
// When ControversyAbove is set it replaces the keyword match.
type ConvictionRule struct {
	Keywords         []string `yaml:"keywords"`
	ControversyAbove *float64 `yaml:"controversy_above"`
	Match            float64  `yaml:"match"`
	Default          float64  `yaml:"default"`
}

// Conviction applies the rule to a skeleton.
func (r ConvictionRule) Conviction(b BeliefSkeleton) float64 {
	if r.ControversyAbove != nil {
		if b.Controversy > *r.ControversyAbove {
			return r.Match
		}
		return r.Default
	}
	lower := strings.ToLower(b.Proposition)
	for _, kw := range r.Keywords {
		if strings.Contains(lower, kw) {
			return r.Match
		}
	}
	return r.Default
}

type PhilosophyProfile struct {
	ID         domain.Philosophy        `yaml:"id"`
	Labels     []string                 `yaml:"labels"`
	Vocabulary []string                 `yaml:"vocabulary"`
	Styles     []domain.LinguisticStyle `yaml:"styles"`
	Conviction ConvictionRule           `yaml:"conviction"`
}

// PolarityPair is a phrase and its negation. Two propositions contradict
// when one contains Affirm and the other contains Negate.
type PolarityPair [2]string

func (p PolarityPair) Affirm() string { return p[0] }
func (p PolarityPair) Negate() string { return p[1] }

type CollapseTheme struct {
	Theme        string              `yaml:"theme"`
	Keywords     []string            `yaml:"keywords"`
	Philosophies []domain.Philosophy `yaml:"philosophies"`
}

type Catalog struct {
	Domains               []DomainProfile     `yaml:"domains"`
	Philosophies          []PhilosophyProfile `yaml:"philosophies"`
	ContradictionPatterns []PolarityPair      `yaml:"contradiction_patterns"`
	CounterPrefixes       []string            `yaml:"counter_prefixes"`
	CollapseThemes        []CollapseTheme     `yaml:"collapse_themes"`

	domainIndex     map[domain.KnowledgeDomain]*DomainProfile
	philosophyIndex map[domain.Philosophy]*PhilosophyProfile
}

var (
	defaultOnce sync.Once
	defaultCat  *Catalog
)

// Default returns the embedded catalog. It panics if the embedded file is
// invalid, which can only happen at build time.
func Default() *Catalog {
	defaultOnce.Do(func() {
		c, err := Parse(defaultCatalog)
		if err != nil {
			panic(fmt.Sprintf("embedded knowledge catalog: %v", err))
		}
		defaultCat = c
	})
	return defaultCat
}

// Load reads a catalog from path, or returns the embedded one when path is empty.
func Load(path string) (*Catalog, error) {
	if path == "" {
		return Default(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read knowledge catalog: %w", err)
	}
	return Parse(data)
}

func Parse(data []byte) (*Catalog, error) {
	var c Catalog
	if err := yaml.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("parse knowledge catalog: %w", err)
	}
	if err := c.index(); err != nil {
		return nil, err
	}
	return &c, nil
}

func (c *Catalog) index() error {
	c.domainIndex = make(map[domain.KnowledgeDomain]*DomainProfile, len(c.Domains))
	for i := range c.Domains {
		d := &c.Domains[i]
		if !d.ID.IsValid() {
			return fmt.Errorf("unknown knowledge domain %q", d.ID)
		}
		if len(d.Beliefs) == 0 {
			return fmt.Errorf("domain %s has no belief skeletons", d.ID)
		}
		c.domainIndex[d.ID] = d
	}
	for _, id := range domain.AllKnowledgeDomains() {
		if _, ok := c.domainIndex[id]; !ok {
			return fmt.Errorf("knowledge domain %s missing", id)
		}
	}

	c.philosophyIndex = make(map[domain.Philosophy]*PhilosophyProfile, len(c.Philosophies))
	for i := range c.Philosophies {
		p := &c.Philosophies[i]
		if !p.ID.IsValid() {
			return fmt.Errorf("unknown philosophy %q", p.ID)
		}
		if len(p.Labels) == 0 {
			return fmt.Errorf("philosophy %s has no labels", p.ID)
		}
		c.philosophyIndex[p.ID] = p
	}
	for _, id := range domain.AllPhilosophies() {
		if _, ok := c.philosophyIndex[id]; !ok {
			return fmt.Errorf("philosophy %s missing", id)
		}
	}

	for _, t := range c.CollapseThemes {
		for _, p := range t.Philosophies {
			if !p.IsValid() {
				return fmt.Errorf("collapse theme %s: unknown philosophy %q", t.Theme, p)
			}
		}
	}
	if len(c.CounterPrefixes) == 0 {
		return fmt.Errorf("at least one counter prefix is required")
	}
	return nil
}

func (c *Catalog) Domain(id domain.KnowledgeDomain) *DomainProfile {
	return c.domainIndex[id]
}

func (c *Catalog) Philosophy(id domain.Philosophy) *PhilosophyProfile {
	return c.philosophyIndex[id]
}

// RankDomains counts keyword hits per domain using a case-insensitive
// substring match and returns the matched domains, most matches first.
// Ties keep catalog order.
func (c *Catalog) RankDomains(tags []string) []domain.KnowledgeDomain {
	type scored struct {
		id    domain.KnowledgeDomain
		count int
		order int
	}
	var ranked []scored
	for i, d := range c.Domains {
		n := 0
		for _, tag := range tags {
			lower := strings.ToLower(tag)
			for _, kw := range d.InterestKeyword {
				if strings.Contains(lower, kw) {
					n++
				}
			}
		}
		if n > 0 {
			ranked = append(ranked, scored{id: d.ID, count: n, order: i})
		}
	}
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].count > ranked[j].count
	})

	out := make([]domain.KnowledgeDomain, len(ranked))
	for i, r := range ranked {
		out[i] = r.id
	}
	return out
}

// Contradicts reports whether two propositions hit opposite sides of a polarity pair.
func (c *Catalog) Contradicts(a, b string) bool {
	la, lb := strings.ToLower(a), strings.ToLower(b)
	for _, p := range c.ContradictionPatterns {
		if (strings.Contains(la, p.Affirm()) && strings.Contains(lb, p.Negate())) ||
			(strings.Contains(la, p.Negate()) && strings.Contains(lb, p.Affirm())) {
			return true
		}
	}
	return false
}

// ClassifyTheme scores each theme by how many texts mention at least one of
// its keywords and returns the top theme, or nil when nothing matched.
// Ties keep catalog order.
func (c *Catalog) ClassifyTheme(texts []string) *CollapseTheme {
	var best *CollapseTheme
	bestCount := 0
	for i := range c.CollapseThemes {
		t := &c.CollapseThemes[i]
		n := 0
		for _, text := range texts {
			lower := strings.ToLower(text)
			for _, kw := range t.Keywords {
				if strings.Contains(lower, kw) {
					n++
					break
				}
			}
		}
		if n > bestCount {
			best, bestCount = t, n
		}
	}
	return best
}
