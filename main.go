package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/Peerapatfc/freelancer-auto-bid/bidder"
	"github.com/Peerapatfc/freelancer-auto-bid/browser"
	"github.com/Peerapatfc/freelancer-auto-bid/cache"
	"github.com/Peerapatfc/freelancer-auto-bid/config"
	"github.com/Peerapatfc/freelancer-auto-bid/llm"
	"github.com/Peerapatfc/freelancer-auto-bid/recommend"
	"github.com/Peerapatfc/freelancer-auto-bid/scraper"
	"github.com/Peerapatfc/freelancer-auto-bid/services"
	"github.com/Peerapatfc/freelancer-auto-bid/storage"
	"github.com/Peerapatfc/freelancer-auto-bid/utils"
)

func main() {
	cfg := config.Default()

	flag.StringVar(&cfg.SearchQuery, "query", cfg.SearchQuery, "Project search query")
	flag.IntVar(&cfg.MaxProjects, "max", cfg.MaxProjects, "Maximum projects to scrape")
	flag.IntVar(&cfg.MaxPages, "pages", cfg.MaxPages, "Search-result pages to scrape")
	flag.IntVar(&cfg.MaxBids, "bids", cfg.MaxBids, "Maximum bids to place per run")
	flag.Float64Var(&cfg.MinScore, "min-score", cfg.MinScore, "Minimum match score to bid on")
	flag.BoolVar(&cfg.DryRun, "dry-run", cfg.DryRun, "Fill forms but never submit")
	flag.BoolVar(&cfg.Headless, "headless", cfg.Headless, "Run Chrome headless (false = visible window)")
	flag.BoolVar(&cfg.FetchDetails, "details", cfg.FetchDetails, "Fetch each project's detail and proposals pages")
	flag.BoolVar(&cfg.UseAI, "ai", cfg.UseAI, "Use the model for scoring and proposals (false = deterministic only)")
	flag.BoolVar(&cfg.AutoConfirm, "auto-confirm", cfg.AutoConfirm, "Submit without the interactive Y/N prompt")
	improve := flag.Bool("improve", false, "Edit existing losing bids instead of placing new ones")
	auto := flag.Bool("auto", false, "Keep running on a schedule")
	flag.IntVar(&cfg.IntervalHours, "interval", cfg.IntervalHours, "Hours between scheduled runs (with -auto)")
	flag.StringVar(&cfg.ProfilePath, "profile", cfg.ProfilePath, "Freelancer profile JSON")
	flag.StringVar(&cfg.ReportFile, "out", cfg.ReportFile, "Run report JSON filename")
	flag.Parse()

	log.Printf("╔═══════════════════════════════════════════════════╗")
	log.Printf("║         Freelancer Auto-Bid Assistant             ║")
	log.Printf("╚═══════════════════════════════════════════════════╝")
	log.Printf("Query    : %s", cfg.SearchQuery)
	log.Printf("Projects : up to %d across %d page(s)", cfg.MaxProjects, cfg.MaxPages)
	log.Printf("Bids     : up to %d (min score %.0f)", cfg.MaxBids, cfg.MinScore)
	log.Printf("Dry run  : %v", cfg.DryRun)
	log.Printf("AI       : %v", cfg.UseAI)
	log.Printf("Mode     : %s", modeName(*improve, *auto))

	profile, err := config.LoadProfile(cfg.ProfilePath)
	if err != nil {
		log.Fatalf("✗ load profile: %v", err)
	}
	log.Printf("✓ profile loaded — %d skill(s)", len(profile.Skills))

	rootCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	session, err := browser.NewSession(rootCtx, cfg)
	if err != nil {
		log.Fatalf("✗ start browser: %v", err)
	}
	defer session.Close()

	if err := ensureLoggedIn(rootCtx, session, cfg); err != nil {
		log.Fatalf("✗ %v", err)
	}

	pipeline := buildPipeline(session, cfg, profile)
	if pipeline.Cache != nil {
		defer pipeline.Cache.Close()
	}
	if pipeline.Store != nil {
		defer pipeline.Store.Close()
	}

	switch {
	case *auto:
		sched := services.NewScheduler(func(ctx context.Context) {
			runOnce(ctx, pipeline, cfg, *improve)
		}, cfg.IntervalHours)
		if err := sched.Start(rootCtx); err != nil {
			log.Fatalf("✗ start scheduler: %v", err)
		}
		<-rootCtx.Done()
		sched.Stop()
	default:
		runOnce(rootCtx, pipeline, cfg, *improve)
	}
}

func modeName(improve, auto bool) string {
	switch {
	case improve && auto:
		return "improve bids (scheduled)"
	case improve:
		return "improve bids"
	case auto:
		return "place bids (scheduled)"
	default:
		return "place bids"
	}
}

// buildPipeline constructs every collaborator. Cache, store and the model
// client are optional — missing credentials just disable the layer.
func buildPipeline(session *browser.Session, cfg config.Config, profile *config.Profile) *services.Pipeline {
	var gen llm.Generator
	if cfg.UseAI && cfg.GeminiAPIKey != "" {
		gen = llm.New(cfg.GeminiAPIKey, cfg.GeminiModel)
		log.Printf("✓ model client ready (%s)", cfg.GeminiModel)
	} else {
		log.Printf("⚠ no model configured — deterministic scoring and template proposals")
	}

	p := &services.Pipeline{
		Cfg:     cfg,
		Profile: profile,
		Scraper: scraper.New(session, cfg),
		Engine:  recommend.NewEngine(gen, profile, cfg.ScoreDelay),
		Bidder:  bidder.New(session, cfg),
	}

	if cfg.RedisURL != "" {
		seen, err := cache.New(cfg.RedisURL, cfg.SeenTTL)
		if err != nil {
			log.Printf("⚠ redis unavailable: %v (duplicate-bid guard off)", err)
		} else {
			p.Cache = seen
			log.Printf("✓ redis connected")
		}
	}
	if cfg.DatabaseURL != "" {
		store, err := storage.NewPostgresStore(cfg.DatabaseURL)
		if err != nil {
			log.Printf("⚠ postgres unavailable: %v (archive off)", err)
		} else {
			p.Store = store
			log.Printf("✓ postgres connected")
		}
	}
	return p
}

// ensureLoggedIn navigates home and probes the session. Headless with no
// session is fatal; a visible window waits for a manual login.
func ensureLoggedIn(ctx context.Context, session *browser.Session, cfg config.Config) error {
	if err := session.Navigate(ctx, scraper.BaseURL, cfg.SettleDelay); err != nil {
		return fmt.Errorf("open %s: %w", scraper.BaseURL, err)
	}
	if session.IsLoggedIn(ctx) {
		log.Printf("✓ logged in")
		return nil
	}
	if cfg.Headless {
		return fmt.Errorf("not logged in — run once with -headless=false to establish a session")
	}

	fmt.Print("Log in to your account in the browser window, then press Enter... ")
	bufio.NewReader(os.Stdin).ReadString('\n')
	if !session.IsLoggedIn(ctx) {
		return fmt.Errorf("still not logged in")
	}
	log.Printf("✓ logged in")
	return nil
}

// runOnce executes one cycle, then prints and persists the summary.
func runOnce(ctx context.Context, pipeline *services.Pipeline, cfg config.Config, improve bool) {
	runCtx, cancel := context.WithTimeout(ctx, cfg.GlobalTimeout)
	defer cancel()

	var (
		outcome *services.RunOutcome
		err     error
	)
	if improve {
		outcome, err = pipeline.ImproveBids(runCtx)
	} else {
		outcome, err = pipeline.Run(runCtx)
	}
	if err != nil {
		log.Printf("✗ run failed: %v", err)
		return
	}

	printSummary(outcome)

	if n, err := utils.WriteReport(cfg.ReportFile, cfg.SearchQuery, cfg.DryRun, outcome.Scores, outcome.Results); err != nil {
		log.Printf("⚠ write report: %v", err)
	} else {
		log.Printf("✓ report written to %s (%d scored project(s))", cfg.ReportFile, n)
	}
}

func printSummary(outcome *services.RunOutcome) {
	stats := utils.BuildRunStats(outcome.Scores, outcome.Results)

	log.Printf("╔═══════════════════════════════════════════════════╗")
	log.Printf("║                   Run Summary                     ║")
	log.Printf("╚═══════════════════════════════════════════════════╝")
	log.Printf("Scored    : %d (avg %.1f)", stats.ProjectsScored, stats.AverageScore)
	log.Printf("Bids      : %d submitted, %d skipped, %d failed",
		stats.BidsSubmitted, stats.BidsSkipped, stats.BidsFailed)
	if stats.BestMatch != nil {
		log.Printf("Best match: %s (%.0f) — bid %.0f %s",
			stats.BestMatch.Project.Title, stats.BestMatch.Score,
			stats.BestMatch.Suggestion.Amount, stats.BestMatch.Project.Budget.Currency)
	}
	for i, m := range stats.TopMatches {
		log.Printf("  %d. [%.0f] %s", i+1, m.Score, m.Project.Title)
	}
	for _, r := range outcome.Results {
		marker := "✓"
		detail := "submitted"
		switch {
		case r.Skipped:
			marker, detail = "→", "skipped: "+r.Reason
		case !r.Submitted:
			marker, detail = "✗", r.Reason
		}
		log.Printf("  %s %s — %s", marker, r.ProjectID, detail)
	}
}
