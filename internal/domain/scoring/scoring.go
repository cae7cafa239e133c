// Package scoring ranks eligible employees against one project requirement.
package scoring

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/okian/staffwise/internal/domain/model"
)

// Default scoring configuration constants.
const (
	defaultTierWeight = 1
)

// Option applies a configuration option to the TierScorer.
type Option func(*TierScorer)

// WithTierWeights sets tier weights from a configuration map. Keys are
// matched ignoring case; non-positive weights are ignored.
func WithTierWeights(weights map[string]int, defaultWeight int) Option {
	return func(s *TierScorer) {
		if len(weights) > 0 {
			// Copy the weights map to avoid external modifications
			s.tierWeights = make(map[string]int, len(weights))
			for tier, weight := range weights {
				if weight > 0 {
					s.tierWeights[strings.ToLower(strings.TrimSpace(tier))] = weight
				}
			}
		}
		if defaultWeight > 0 {
			s.defaultWeight = defaultWeight
		}
	}
}

// Candidate is an employee that survived the tier gate and skill overlap check.
type Candidate struct {
	Employee   model.Employee
	MatchCount int
	Score      int
}

// Scorer selects the best candidates for a requirement. Skills on both the
// requirement and the pool are expected to be canonical already.
type Scorer interface {
	// Rank returns at most req.QuantityNeeded candidates, best first.
	Rank(ctx context.Context, req model.Requirement, pool []model.Employee) ([]Candidate, error)
}

// TierScorer implements Scorer with a hard experience tier gate and a
// match_count * tier_weight score.
type TierScorer struct {
	tierWeights   map[string]int
	defaultWeight int
}

// NewTierScorer creates a scorer with the default 1/2/3 tier weights.
func NewTierScorer(opts ...Option) *TierScorer {
	s := &TierScorer{
		tierWeights:   model.DefaultTierWeights(),
		defaultWeight: defaultTierWeight,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Weight returns the multiplier for a tier.
func (s *TierScorer) Weight(tier model.ExperienceTier) int {
	if w, ok := s.tierWeights[strings.ToLower(string(tier))]; ok {
		return w
	}
	return s.defaultWeight
}

// Rank implements Scorer. Ties keep the order of the pool, so identical
// snapshots always produce identical results.
func (s *TierScorer) Rank(ctx context.Context, req model.Requirement, pool []model.Employee) ([]Candidate, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("rank cancelled: %w", err)
	}
	if req.QuantityNeeded <= 0 || len(pool) == 0 {
		return []Candidate{}, nil
	}

	required := model.NewSkillSet(req.RequiredSkills)
	weight := s.Weight(req.ExperienceLevel)

	candidates := make([]Candidate, 0, len(pool))
	for _, e := range pool {
		if !e.ExperienceLevel.Matches(req.ExperienceLevel) {
			continue
		}
		matches := model.NewSkillSet(e.Skills).Overlap(required)
		if matches == 0 {
			continue
		}
		candidates = append(candidates, Candidate{
			Employee:   e,
			MatchCount: matches,
			Score:      matches * weight,
		})
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].Score > candidates[j].Score
	})

	if len(candidates) > req.QuantityNeeded {
		candidates = candidates[:req.QuantityNeeded]
	}
	return candidates, nil
}
