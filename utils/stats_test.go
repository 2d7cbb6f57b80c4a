package utils

import (
	"testing"

	"github.com/Peerapatfc/freelancer-auto-bid/models"
)

func score(id string, value float64, skills ...string) models.ProjectScore {
	return models.ProjectScore{
		Project: models.Project{ID: id, Title: id, Skills: skills},
		Score:   value,
	}
}

func TestBuildRunStats(t *testing.T) {
	scores := []models.ProjectScore{
		score("a", 80, "Golang", "PostgreSQL"),
		score("b", 60, "Golang"),
		score("c", 40, "React"),
	}
	results := []models.BidResult{
		{ProjectID: "a", Submitted: true},
		{ProjectID: "b", Skipped: true, Reason: "existing bid detected"},
		{ProjectID: "c", Reason: "navigate: timeout"},
	}

	stats := BuildRunStats(scores, results)

	if stats.ProjectsScored != 3 {
		t.Errorf("ProjectsScored = %d, want 3", stats.ProjectsScored)
	}
	if stats.AverageScore != 60 {
		t.Errorf("AverageScore = %v, want 60", stats.AverageScore)
	}
	if stats.BestMatch == nil || stats.BestMatch.Project.ID != "a" {
		t.Errorf("BestMatch = %+v, want project a", stats.BestMatch)
	}
	if stats.BidsSubmitted != 1 || stats.BidsSkipped != 1 || stats.BidsFailed != 1 {
		t.Errorf("bid counts = %d/%d/%d, want 1/1/1",
			stats.BidsSubmitted, stats.BidsSkipped, stats.BidsFailed)
	}
	if len(stats.SkillDemand) == 0 || stats.SkillDemand[0].Skill != "Golang" || stats.SkillDemand[0].Count != 2 {
		t.Errorf("SkillDemand = %v, want Golang first with count 2", stats.SkillDemand)
	}
	if len(stats.TopMatches) != 3 || stats.TopMatches[0].Score != 80 {
		t.Errorf("TopMatches = %v", stats.TopMatches)
	}
}

func TestBuildRunStats_Empty(t *testing.T) {
	stats := BuildRunStats(nil, nil)
	if stats.ProjectsScored != 0 || stats.BestMatch != nil || stats.AverageScore != 0 {
		t.Errorf("empty stats = %+v", stats)
	}
}
