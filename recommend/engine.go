// Package recommend decides which projects are worth bidding on and what the
// bid should look like. Judgment is delegated to the LLM collaborator; every
// AI path has a deterministic degradation so the pipeline keeps moving
// without the dependency.
package recommend

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"math"
	"sort"
	"time"

	"github.com/Peerapatfc/freelancer-auto-bid/config"
	"github.com/Peerapatfc/freelancer-auto-bid/currency"
	"github.com/Peerapatfc/freelancer-auto-bid/llm"
	"github.com/Peerapatfc/freelancer-auto-bid/models"
)

// fallbackBidFloor is used when a degraded score has no parsed budget to
// anchor on.
const fallbackBidFloor = 100

// Engine scores projects against the profile. gen may be nil, in which case
// every AI-backed decision uses its deterministic fallback.
type Engine struct {
	gen     llm.Generator
	profile *config.Profile
	delay   time.Duration
}

func NewEngine(gen llm.Generator, profile *config.Profile, delay time.Duration) *Engine {
	return &Engine{gen: gen, profile: profile, delay: delay}
}

// RecommendProjects scores each project in strict sequence with a fixed
// inter-request delay. A project whose scoring fails gets a degraded
// zero-score entry instead of aborting the batch. Results are sorted by
// score descending.
func (e *Engine) RecommendProjects(ctx context.Context, projects []models.Project) []models.ProjectScore {
	scores := make([]models.ProjectScore, 0, len(projects))
	for i, p := range projects {
		log.Printf("[score] %d/%d — %s", i+1, len(projects), p.Title)

		score, err := e.scoreProject(ctx, p)
		if err != nil {
			log.Printf("[score] ⚠ %s: %v (using fallback)", p.ID, err)
			score = e.fallbackScore(p)
		}
		scores = append(scores, score)

		if i+1 < len(projects) {
			time.Sleep(e.delay)
		}
	}

	sort.SliceStable(scores, func(i, j int) bool {
		return scores[i].Score > scores[j].Score
	})
	return scores
}

// scoreResponse is the JSON shape the model is asked to produce.
type scoreResponse struct {
	Score      float64            `json:"score"`
	Reasoning  string             `json:"reasoning"`
	BidAmount  float64            `json:"bidAmount"`
	BidPeriod  int                `json:"bidPeriod"`
	Milestones []models.Milestone `json:"milestones"`
}

func (e *Engine) scoreProject(ctx context.Context, p models.Project) (models.ProjectScore, error) {
	if e.gen == nil {
		return models.ProjectScore{}, fmt.Errorf("no generator configured")
	}

	raw, err := e.gen.Generate(ctx, buildScorePrompt(e.profile, p))
	if err != nil {
		return models.ProjectScore{}, err
	}

	resp, err := parseScoreResponse(raw)
	if err != nil {
		return models.ProjectScore{}, err
	}

	return models.ProjectScore{
		Project:    p,
		Score:      resp.Score,
		Reasoning:  resp.Reasoning,
		Suggestion: e.normalizeSuggestion(p, resp),
	}, nil
}

// parseScoreResponse decodes and sanity-checks the model output. Malformed
// output is an error, the same class as a failed call — never a silent zero.
func parseScoreResponse(raw string) (scoreResponse, error) {
	var resp scoreResponse
	if err := json.Unmarshal([]byte(llm.StripCodeFence(raw)), &resp); err != nil {
		return resp, fmt.Errorf("malformed score response: %w", err)
	}
	if resp.Score < 0 || resp.Score > 100 {
		return resp, fmt.Errorf("score %v out of range", resp.Score)
	}
	if resp.BidAmount <= 0 {
		return resp, fmt.Errorf("non-positive bid amount %v", resp.BidAmount)
	}
	return resp, nil
}

// normalizeSuggestion applies the bid post-processing contract: clamp the
// amount into the budget range, force milestone sums to match exactly, and
// synthesize a 35/45/remainder split when the model gave none.
func (e *Engine) normalizeSuggestion(p models.Project, resp scoreResponse) models.BidSuggestion {
	amount := clamp(resp.BidAmount, p.Budget.Min, p.Budget.Max)

	period := resp.BidPeriod
	if period <= 0 {
		period = e.profile.DefaultDaysToDeliver
	}

	milestones := resp.Milestones
	if len(milestones) > 0 {
		var sum float64
		for _, m := range milestones {
			sum += m.Amount
		}
		if diff := amount - sum; diff != 0 {
			// The last milestone absorbs the discrepancy, even when that
			// drives it negative — callers see the exact-sum invariant.
			milestones[len(milestones)-1].Amount += diff
		}
	} else {
		first := math.Round(amount * 0.35)
		second := math.Round(amount * 0.45)
		milestones = []models.Milestone{
			{Description: "Initial implementation", Amount: first},
			{Description: "Core functionality complete", Amount: second},
			{Description: "Final delivery and revisions", Amount: amount - first - second},
		}
	}

	return models.BidSuggestion{
		Amount:     amount,
		AmountUSD:  currency.ConvertToUSD(amount, p.Budget.Currency),
		Period:     period,
		Milestones: milestones,
	}
}

// fallbackScore is the degraded entry substituted after scoring fails.
func (e *Engine) fallbackScore(p models.Project) models.ProjectScore {
	amount := p.Budget.Min
	if amount == 0 {
		amount = fallbackBidFloor
	}
	return models.ProjectScore{
		Project:   p,
		Score:     0,
		Reasoning: "Unable to analyze this project automatically",
		Suggestion: models.BidSuggestion{
			Amount:    amount,
			AmountUSD: currency.ConvertToUSD(amount, p.Budget.Currency),
			Period:    e.profile.DefaultDaysToDeliver,
		},
	}
}

// FilterByScore returns the scores at or above minScore, order preserved.
func FilterByScore(scores []models.ProjectScore, minScore float64) []models.ProjectScore {
	filtered := make([]models.ProjectScore, 0, len(scores))
	for _, s := range scores {
		if s.Score >= minScore {
			filtered = append(filtered, s)
		}
	}
	return filtered
}

func clamp(v, lo, hi float64) float64 {
	return math.Min(math.Max(v, lo), hi)
}
