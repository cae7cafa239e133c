// Package skills canonicalizes free-text skill names and job titles.
//
// Skill matching is substring based: a token that contains any variant phrase
// of a canonical skill maps to that skill, scanning the alias table in order.
// An exact hit on a variant or canonical name wins over the scan, which keeps
// normalization idempotent. Tokens that match nothing pass through lower-cased
// and trimmed.
package skills

import (
	"strings"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/okian/staffwise/internal/domain/model"
	"github.com/okian/staffwise/pkg/metrics"
)

const defaultCacheSize = 4096

// Alias lists the variant phrases that collapse into one canonical skill.
type Alias struct {
	Canonical string   `koanf:"canonical" yaml:"canonical"`
	Variants  []string `koanf:"variants" yaml:"variants"`
}

// DefaultAliases returns the built-in alias table. Order matters for the
// substring scan.
func DefaultAliases() []Alias {
	return []Alias{
		{Canonical: "python", Variants: []string{"python", "python3", "python programming", "python basics"}},
		{Canonical: "java", Variants: []string{"java", "java basics", "java programming"}},
		{Canonical: "javascript", Variants: []string{"javascript", "js", "js programming"}},
		{Canonical: "html", Variants: []string{"html", "html5"}},
		{Canonical: "css", Variants: []string{"css", "css3"}},
		{Canonical: "figma", Variants: []string{"figma", "ui/ux design tool"}},
		{Canonical: "kotlin", Variants: []string{"kotlin", "kotlin programming"}},
		{Canonical: "api_integration", Variants: []string{"api integration", "api design", "rest api", "rest api integration"}},
		{Canonical: "ui", Variants: []string{"ui", "ui design", "user interface"}},
		{Canonical: "ux", Variants: []string{"ux", "ux design", "user experience"}},
	}
}

// DefaultManagerRoles returns the built-in manager title phrases.
func DefaultManagerRoles() []string {
	return []string{"pm", "project manager", "proj. mgr.", "rm", "resource manager", "resource lead"}
}

// Option configures a Normalizer.
type Option func(*Normalizer)

// WithAliases replaces the alias table. Empty tables are ignored.
func WithAliases(aliases []Alias) Option {
	return func(n *Normalizer) {
		if len(aliases) > 0 {
			n.aliases = aliases
		}
	}
}

// WithManagerRoles replaces the manager title phrases. Empty lists are ignored.
func WithManagerRoles(roles []string) Option {
	return func(n *Normalizer) {
		if len(roles) > 0 {
			n.managerRoles = roles
		}
	}
}

// WithCacheSize bounds the memo cache. Zero or negative disables caching.
func WithCacheSize(size int) Option {
	return func(n *Normalizer) {
		n.cacheSize = size
	}
}

type entry struct {
	canonical string
	variants  []string
}

// Normalizer maps skill tokens and job titles onto a fixed vocabulary.
// It is immutable after construction and safe for concurrent use.
type Normalizer struct {
	aliases      []Alias
	managerRoles []string
	cacheSize    int

	table   []entry
	inverse map[string]string
	roles   []string

	skillCache *lru.Cache[string, string]
	roleCache  *lru.Cache[string, model.Role]
}

// New builds a Normalizer from the default tables plus options.
func New(opts ...Option) *Normalizer {
	n := &Normalizer{
		aliases:      DefaultAliases(),
		managerRoles: DefaultManagerRoles(),
		cacheSize:    defaultCacheSize,
	}
	for _, opt := range opts {
		opt(n)
	}

	n.table = make([]entry, 0, len(n.aliases))
	n.inverse = make(map[string]string)
	// Canonical names always resolve to themselves, even when another entry
	// lists them as a variant.
	for _, a := range n.aliases {
		if canonical := clean(a.Canonical); canonical != "" {
			n.inverse[canonical] = canonical
		}
	}
	for _, a := range n.aliases {
		canonical := clean(a.Canonical)
		if canonical == "" {
			continue
		}
		e := entry{canonical: canonical}
		for _, v := range a.Variants {
			v = clean(v)
			if v == "" {
				continue
			}
			e.variants = append(e.variants, v)
			if _, ok := n.inverse[v]; !ok {
				n.inverse[v] = canonical
			}
		}
		n.table = append(n.table, e)
	}
	for _, r := range n.managerRoles {
		if r = clean(r); r != "" {
			n.roles = append(n.roles, r)
		}
	}

	if n.cacheSize > 0 {
		// lru.New only fails on a non-positive size.
		n.skillCache, _ = lru.New[string, string](n.cacheSize)
		n.roleCache, _ = lru.New[string, model.Role](n.cacheSize)
	}
	return n
}

// Skill returns the canonical form of a skill token.
func (n *Normalizer) Skill(token string) string {
	if n.skillCache != nil {
		if v, ok := n.skillCache.Get(token); ok {
			metrics.RecordNormalizerHit()
			return v
		}
		metrics.RecordNormalizerMiss()
	}
	v := n.skill(token)
	if n.skillCache != nil {
		n.skillCache.Add(token, v)
	}
	return v
}

func (n *Normalizer) skill(token string) string {
	t := clean(token)
	if c, ok := n.inverse[t]; ok {
		return c
	}
	for _, e := range n.table {
		for _, v := range e.variants {
			if strings.Contains(t, v) {
				return e.canonical
			}
		}
	}
	return t
}

// Skills normalizes every token of a list, preserving order and duplicates.
func (n *Normalizer) Skills(tokens []string) []string {
	out := make([]string, len(tokens))
	for i, t := range tokens {
		out[i] = n.Skill(t)
	}
	return out
}

// Role classifies a job title; any title containing a manager phrase is a manager.
func (n *Normalizer) Role(title string) model.Role {
	if n.roleCache != nil {
		if v, ok := n.roleCache.Get(title); ok {
			return v
		}
	}
	v := n.role(title)
	if n.roleCache != nil {
		n.roleCache.Add(title, v)
	}
	return v
}

func (n *Normalizer) role(title string) model.Role {
	t := clean(title)
	for _, r := range n.roles {
		if strings.Contains(t, r) {
			return model.RoleManager
		}
	}
	return model.RoleEmployee
}

// Vocabulary lists the canonical skills in table order.
func (n *Normalizer) Vocabulary() []string {
	out := make([]string, len(n.table))
	for i, e := range n.table {
		out[i] = e.canonical
	}
	return out
}

func clean(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

var defaultNormalizer = New()

// NormalizeSkill canonicalizes a token with the default tables.
func NormalizeSkill(token string) string { return defaultNormalizer.Skill(token) }

// NormalizeRole classifies a title with the default manager phrases.
func NormalizeRole(title string) model.Role { return defaultNormalizer.Role(title) }
