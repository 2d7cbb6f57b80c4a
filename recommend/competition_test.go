package recommend

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/Peerapatfc/freelancer-auto-bid/models"
)

func TestAnalyzeCompetition_Empty(t *testing.T) {
	require.Equal(t, models.CompetitionStats{}, AnalyzeCompetition(nil))
}

func TestAnalyzeCompetition(t *testing.T) {
	insights := []models.BidInsight{
		{Rank: 2, TotalBids: 10, Status: models.BidStatusActive},
		{Rank: 8, TotalBids: 20, Status: models.BidStatusSealed},
		{Rank: 0, TotalBids: 0, Status: models.BidStatusSealed}, // sealed, rank unknown
	}
	stats := AnalyzeCompetition(insights)

	require.Equal(t, 5, stats.AvgRank, "averages only known ranks")
	require.Equal(t, 2, stats.SealedCount)
	require.Equal(t, 10.0, stats.AvgTotalBids, "averages across all entries")
	require.InDelta(t, 66.7, stats.WinRate, 0.1, "sealed fraction")
}

func TestClassifyPosition(t *testing.T) {
	cases := []struct {
		rank, total int
		want        string
	}{
		{1, 10, PositionGood},  // 10%
		{5, 20, PositionGood},  // exactly 25%
		{5, 10, PositionOK},    // exactly 50%
		{6, 10, PositionPoor},  // 60%
		{10, 10, PositionPoor}, // 100%
		{0, 10, PositionPoor},  // unknown rank displays as poor
		{3, 0, PositionPoor},   // unknown total displays as poor
	}
	for _, c := range cases {
		require.Equal(t, c.want, ClassifyPosition(c.rank, c.total),
			"rank %d of %d", c.rank, c.total)
	}
}

func TestFindEditCandidates(t *testing.T) {
	insights := []models.BidInsight{
		{ProjectTitle: "good", Rank: 1, TotalBids: 10},
		{ProjectTitle: "borderline", Rank: 5, TotalBids: 10}, // exactly 50% — not a candidate
		{ProjectTitle: "losing", Rank: 8, TotalBids: 10},
		{ProjectTitle: "unknown", Rank: 0, TotalBids: 0}, // displays poor but is NOT editable
	}
	candidates := FindEditCandidates(insights)
	require.Len(t, candidates, 1)
	require.Equal(t, "losing", candidates[0].ProjectTitle)
}

func TestPositionPercent_UnknownIsWorstCase(t *testing.T) {
	require.Equal(t, 100.0, PositionPercent(0, 10))
	require.Equal(t, 100.0, PositionPercent(3, 0))
	require.Equal(t, 30.0, PositionPercent(3, 10))
}
