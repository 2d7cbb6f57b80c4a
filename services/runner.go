// Package services sequences the scrape → score → bid pipeline over the
// single shared browser session.
package services

import (
	"context"
	"fmt"
	"log"
	"net/url"
	"time"

	"github.com/google/uuid"

	"github.com/Peerapatfc/freelancer-auto-bid/bidder"
	"github.com/Peerapatfc/freelancer-auto-bid/cache"
	"github.com/Peerapatfc/freelancer-auto-bid/config"
	"github.com/Peerapatfc/freelancer-auto-bid/models"
	"github.com/Peerapatfc/freelancer-auto-bid/recommend"
	"github.com/Peerapatfc/freelancer-auto-bid/scraper"
	"github.com/Peerapatfc/freelancer-auto-bid/storage"
)

// Pipeline wires the components for one run. Cache and Store are optional;
// nil simply disables that layer.
type Pipeline struct {
	Cfg     config.Config
	Profile *config.Profile
	Scraper *scraper.Scraper
	Engine  *recommend.Engine
	Bidder  *bidder.Bidder
	Cache   *cache.SeenCache
	Store   *storage.PostgresStore
}

// RunOutcome is everything a run produced, for reporting.
type RunOutcome struct {
	Scores  []models.ProjectScore `json:"scores"`
	Results []models.BidResult    `json:"bidResults"`
}

// Run executes one full scrape-score-bid cycle. The only hard stops are an
// exhausted bid allowance and an empty scrape; everything else degrades and
// continues.
func (p *Pipeline) Run(ctx context.Context) (*RunOutcome, error) {
	allowance, err := p.Scraper.ScrapeBidAllowance(ctx)
	if err != nil {
		log.Printf("[run] ⚠ bid allowance check failed: %v (assuming available)", err)
		allowance = p.Cfg.MaxBids
	}
	if allowance == 0 {
		return nil, fmt.Errorf("no bid allowance remaining")
	}

	searchURL := fmt.Sprintf("%s/search/projects?q=%s",
		scraper.BaseURL, url.QueryEscape(p.Cfg.SearchQuery))
	projects, err := p.Scraper.ScrapeProjects(ctx, searchURL, p.Cfg.MaxProjects, p.Cfg.MaxPages)
	if err != nil {
		return nil, fmt.Errorf("scrape projects: %w", err)
	}

	projects = p.dropAlreadyBid(ctx, projects)
	if len(projects) == 0 {
		return nil, fmt.Errorf("no projects found")
	}
	log.Printf("[run] %d project(s) to evaluate", len(projects))

	if p.Cfg.FetchDetails {
		projects = p.Scraper.EnrichProjectsWithDetails(ctx, projects, p.Cfg.MaxBids*2, p.Cfg.DetailDelay)
	}

	scores := p.Engine.RecommendProjects(ctx, projects)
	matches := recommend.FilterByScore(scores, p.Cfg.MinScore)
	log.Printf("[run] %d of %d project(s) scored ≥ %.0f", len(matches), len(scores), p.Cfg.MinScore)

	var runID uuid.UUID
	if p.Store != nil {
		if runID, err = p.Store.BeginRun(ctx, p.Cfg.SearchQuery, p.Cfg.DryRun); err != nil {
			log.Printf("[run] ⚠ archive run: %v", err)
		} else if n, err := p.Store.SaveScores(ctx, runID, scores); err != nil {
			log.Printf("[run] ⚠ archive scores: %v", err)
		} else {
			log.Printf("[run] archived %d score(s)", n)
		}
	}

	maxBids := p.Cfg.MaxBids
	if allowance < maxBids {
		maxBids = allowance
	}

	outcome := &RunOutcome{Scores: scores}
	for i, match := range matches {
		if i >= maxBids {
			break
		}

		bid := models.BidData{
			ProjectID:  match.Project.ID,
			Amount:     match.Suggestion.Amount,
			Currency:   match.Project.Budget.Currency,
			Period:     match.Suggestion.Period,
			Proposal:   p.proposalFor(ctx, match.Project),
			Milestones: match.Suggestion.Milestones,
		}

		result := p.Bidder.PlaceBid(ctx, match.Project.URL, bid)
		outcome.Results = append(outcome.Results, result)

		if result.Submitted && p.Cache != nil {
			if err := p.Cache.MarkBid(ctx, match.Project.ID, result); err != nil {
				log.Printf("[run] ⚠ cache mark %s: %v", match.Project.ID, err)
			}
		}
		if p.Store != nil && runID != uuid.Nil {
			if err := p.Store.SaveBidAttempt(ctx, runID, result, bid.Amount, bid.Currency); err != nil {
				log.Printf("[run] ⚠ archive attempt %s: %v", match.Project.ID, err)
			}
		}

		if i+1 < len(matches) && i+1 < maxBids {
			time.Sleep(p.Cfg.PageDelay)
		}
	}

	return outcome, nil
}

// ImproveBids scrapes insights, finds bids in a losing position and applies
// edit suggestions to each.
func (p *Pipeline) ImproveBids(ctx context.Context) (*RunOutcome, error) {
	insights, err := p.Scraper.ScrapeInsights(ctx)
	if err != nil {
		return nil, fmt.Errorf("scrape insights: %w", err)
	}

	stats := recommend.AnalyzeCompetition(insights)
	log.Printf("[improve] %d active bid(s) — avg rank %d, sealed %d, avg competitors %.1f, sealed rate %.0f%%",
		len(insights), stats.AvgRank, stats.SealedCount, stats.AvgTotalBids, stats.WinRate)

	candidates := recommend.FindEditCandidates(insights)
	if len(candidates) == 0 {
		log.Printf("[improve] no bids in a poor position — nothing to edit")
		return &RunOutcome{}, nil
	}
	log.Printf("[improve] %d bid(s) worth editing", len(candidates))

	outcome := &RunOutcome{}
	for i, in := range candidates {
		suggestion := p.Engine.SuggestBidEdit(ctx, in.ProjectTitle, in.BidAmount, in.Currency,
			in.Rank, in.TotalBids, in.TimeRemaining)
		log.Printf("[improve] %s: #%d of %d → %s cut to %.0f %s (%s)",
			in.ProjectTitle, in.Rank, in.TotalBids, suggestion.Strategy,
			suggestion.SuggestedAmount, in.Currency, suggestion.Reasoning)

		result := p.Bidder.EditBid(ctx, in.ProjectURL, suggestion.SuggestedAmount, "", p.Cfg.DryRun, in.BidAmount)
		outcome.Results = append(outcome.Results, result)

		if i+1 < len(candidates) {
			time.Sleep(p.Cfg.PageDelay)
		}
	}
	return outcome, nil
}

// dropAlreadyBid filters out projects the cache remembers bidding on.
func (p *Pipeline) dropAlreadyBid(ctx context.Context, projects []models.Project) []models.Project {
	if p.Cache == nil {
		return projects
	}
	kept := projects[:0]
	for _, proj := range projects {
		if p.Cache.HasBid(ctx, proj.ID) {
			log.Printf("[run] skipping %s — already bid", proj.ID)
			continue
		}
		kept = append(kept, proj)
	}
	return kept
}

// proposalFor generates the proposal text, preferring the model when the
// -ai path is on and falling back to the profile template.
func (p *Pipeline) proposalFor(ctx context.Context, project models.Project) string {
	if p.Cfg.UseAI {
		if text, err := p.Engine.GenerateProposal(ctx, project); err == nil {
			return text
		}
		log.Printf("[run] ⚠ proposal generation failed for %s — using template", project.ID)
	}
	return recommend.TemplateProposal(p.Profile, project)
}
