package utils

import (
	"sort"

	"github.com/Peerapatfc/freelancer-auto-bid/models"
)

type SkillCount struct {
	Skill string `json:"skill"`
	Count int    `json:"count"`
}

// RunStats summarises one run for the report and the end-of-run banner.
type RunStats struct {
	ProjectsScored int                   `json:"projectsScored"`
	AverageScore   float64               `json:"averageScore"`
	BestMatch      *models.ProjectScore  `json:"bestMatch,omitempty"`
	BidsSubmitted  int                   `json:"bidsSubmitted"`
	BidsSkipped    int                   `json:"bidsSkipped"`
	BidsFailed     int                   `json:"bidsFailed"`
	SkillDemand    []SkillCount          `json:"skillDemand,omitempty"`
	TopMatches     []models.ProjectScore `json:"topMatches,omitempty"`
}

// BuildRunStats aggregates scores and bid outcomes.
func BuildRunStats(scores []models.ProjectScore, results []models.BidResult) RunStats {
	stats := RunStats{ProjectsScored: len(scores)}

	for _, r := range results {
		switch {
		case r.Submitted:
			stats.BidsSubmitted++
		case r.Skipped:
			stats.BidsSkipped++
		default:
			stats.BidsFailed++
		}
	}

	if len(scores) == 0 {
		return stats
	}

	var total float64
	skillCounts := make(map[string]int)
	best := scores[0]
	for _, s := range scores {
		total += s.Score
		if s.Score > best.Score {
			best = s
		}
		for _, skill := range s.Project.Skills {
			skillCounts[skill]++
		}
	}
	stats.AverageScore = total / float64(len(scores))
	bestCopy := best
	stats.BestMatch = &bestCopy

	demand := make([]SkillCount, 0, len(skillCounts))
	for skill, count := range skillCounts {
		demand = append(demand, SkillCount{Skill: skill, Count: count})
	}
	sort.Slice(demand, func(i, j int) bool {
		if demand[i].Count == demand[j].Count {
			return demand[i].Skill < demand[j].Skill
		}
		return demand[i].Count > demand[j].Count
	})
	if len(demand) > 10 {
		demand = demand[:10]
	}
	stats.SkillDemand = demand

	top := make([]models.ProjectScore, len(scores))
	copy(top, scores)
	sort.SliceStable(top, func(i, j int) bool { return top[i].Score > top[j].Score })
	if len(top) > 5 {
		top = top[:5]
	}
	stats.TopMatches = top

	return stats
}
