package recommend

import (
	"math"

	"github.com/Peerapatfc/freelancer-auto-bid/models"
)

// Position buckets for an existing bid's competitive rank.
const (
	PositionGood = "good"
	PositionOK   = "ok"
	PositionPoor = "poor"
)

// AnalyzeCompetition summarises the user's outstanding bids.
//
// WinRate is the sealed fraction, not true wins: the insights page exposes no
// outcomes, so sealed status is the only proxy available. AvgRank averages
// only entries with a known (non-zero) rank; AvgTotalBids averages across
// everything, rank-unknown entries included.
func AnalyzeCompetition(insights []models.BidInsight) models.CompetitionStats {
	if len(insights) == 0 {
		return models.CompetitionStats{}
	}

	rankSum, ranked := 0, 0
	totalSum := 0
	sealed := 0
	for _, in := range insights {
		if in.Rank > 0 {
			rankSum += in.Rank
			ranked++
		}
		totalSum += in.TotalBids
		if in.Status == models.BidStatusSealed {
			sealed++
		}
	}

	stats := models.CompetitionStats{
		SealedCount:  sealed,
		AvgTotalBids: float64(totalSum) / float64(len(insights)),
		WinRate:      float64(sealed) / float64(len(insights)) * 100,
	}
	if ranked > 0 {
		stats.AvgRank = int(math.Round(float64(rankSum) / float64(ranked)))
	}
	return stats
}

// PositionPercent is rank over total as a percentage; lower is more
// competitive. Unknown rank or total yields 100 (worst case).
func PositionPercent(rank, total int) float64 {
	if rank <= 0 || total <= 0 {
		return 100
	}
	return float64(rank) / float64(total) * 100
}

// ClassifyPosition buckets a bid's standing for display. Unknown positions
// classify as poor — worst case until proven otherwise.
func ClassifyPosition(rank, total int) string {
	if rank <= 0 || total <= 0 {
		return PositionPoor
	}
	pct := PositionPercent(rank, total)
	switch {
	case pct <= 25:
		return PositionGood
	case pct <= 50:
		return PositionOK
	default:
		return PositionPoor
	}
}

// FindEditCandidates returns the insights whose position is poor enough to
// warrant a bid edit. Unlike ClassifyPosition, rows with unknown rank or
// total are EXCLUDED here — a bid we can't place is not the same as a bid we
// know is losing, so display treats unknown as poor while editing skips it.
func FindEditCandidates(insights []models.BidInsight) []models.BidInsight {
	var candidates []models.BidInsight
	for _, in := range insights {
		if in.Rank <= 0 || in.TotalBids <= 0 {
			continue
		}
		if PositionPercent(in.Rank, in.TotalBids) > 50 {
			candidates = append(candidates, in)
		}
	}
	return candidates
}
