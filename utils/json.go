package utils

import (
	"encoding/json"
	"os"
	"time"

	"github.com/Peerapatfc/freelancer-auto-bid/models"
)

// RunReport is the JSON artifact persisted after a run.
type RunReport struct {
	GeneratedAt time.Time             `json:"generatedAt"`
	Query       string                `json:"query"`
	DryRun      bool                  `json:"dryRun"`
	Stats       RunStats              `json:"stats"`
	Scores      []models.ProjectScore `json:"scores"`
	BidResults  []models.BidResult    `json:"bidResults"`
}

// WriteReport writes the run report as indented JSON. Returns the number of
// scored projects written.
func WriteReport(filename, query string, dryRun bool, scores []models.ProjectScore, results []models.BidResult) (int, error) {
	report := RunReport{
		GeneratedAt: time.Now().UTC(),
		Query:       query,
		DryRun:      dryRun,
		Stats:       BuildRunStats(scores, results),
		Scores:      scores,
		BidResults:  results,
	}

	f, err := os.Create(filename)
	if err != nil {
		return 0, err
	}
	defer f.Close()

	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	if err := enc.Encode(report); err != nil {
		return 0, err
	}

	return len(scores), nil
}
