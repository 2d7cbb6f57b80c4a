package recommend

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/Peerapatfc/freelancer-auto-bid/config"
	"github.com/Peerapatfc/freelancer-auto-bid/models"
)

func buildScorePrompt(profile *config.Profile, p models.Project) string {
	var b strings.Builder

	b.WriteString("You are a bidding assistant for a freelancer. Evaluate how well this project matches the freelancer's profile.\n\n")

	fmt.Fprintf(&b, "FREELANCER PROFILE\nSkills: %s\nExperience: %s\nBid range: $%.0f–$%.0f USD\n\n",
		strings.Join(profile.Skills, ", "), profile.Experience, profile.MinBidUSD, profile.MaxBidUSD)

	fmt.Fprintf(&b, "PROJECT\nTitle: %s\nBudget: %s (%s)\nSkills wanted: %s\nBids so far: %d\n",
		p.Title, p.BudgetText, p.Budget.Currency, strings.Join(p.Skills, ", "), p.BidCount)

	desc := p.FullDescription
	if desc == "" {
		desc = p.Description
	}
	fmt.Fprintf(&b, "Description: %s\n", desc)

	if p.ClientInfo != nil {
		fmt.Fprintf(&b, "Client: location=%s, member since %s, verified=%v, rating=%.1f\n",
			p.ClientInfo.Location, p.ClientInfo.MemberSince, p.ClientInfo.Verified, p.ClientRating)
	}
	if len(p.Deliverables) > 0 {
		fmt.Fprintf(&b, "Deliverables: %s\n", strings.Join(p.Deliverables, "; "))
	}
	if block := competitionBlock(p.CompetitorBids); block != "" {
		b.WriteString(block)
	}

	fmt.Fprintf(&b, `
Respond with ONLY a JSON object, no prose:
{
  "score": <0-100 match score>,
  "reasoning": "<one paragraph>",
  "bidAmount": <amount in %s>,
  "bidPeriod": <delivery days>,
  "milestones": [{"description": "...", "amount": <number>}]
}
`, p.Budget.Currency)

	return b.String()
}

func buildProposalPrompt(profile *config.Profile, p models.Project) string {
	var b strings.Builder

	b.WriteString("Write a short, specific proposal (120-180 words) for this freelance project. Plain text only, no markdown, no placeholders, no sign-off name.\n\n")

	fmt.Fprintf(&b, "FREELANCER\nSkills: %s\nExperience: %s\n\n",
		strings.Join(profile.Skills, ", "), profile.Experience)

	desc := p.FullDescription
	if desc == "" {
		desc = p.Description
	}
	fmt.Fprintf(&b, "PROJECT\nTitle: %s\nSkills wanted: %s\nDescription: %s\n",
		p.Title, strings.Join(p.Skills, ", "), desc)

	b.WriteString("\nOpen by addressing the client's actual problem, name the relevant experience, and close with a concrete first step.\n")
	return b.String()
}

// competitionBlock summarises competitor bids for the prompt: average, min
// and max amounts, verified fraction, mean rating, and the top 3 bidders.
func competitionBlock(bids []models.CompetitorBid) string {
	if len(bids) == 0 {
		return ""
	}

	var sum, minBid, maxBid, ratingSum float64
	verified := 0
	minBid = math.Inf(1)
	for _, bid := range bids {
		sum += bid.BidAmount
		ratingSum += bid.Rating
		if bid.BidAmount < minBid {
			minBid = bid.BidAmount
		}
		if bid.BidAmount > maxBid {
			maxBid = bid.BidAmount
		}
		if bid.Verified {
			verified++
		}
	}

	var b strings.Builder
	fmt.Fprintf(&b, "\nCOMPETITION (%d bids visible)\nAverage bid: %.0f, range %.0f–%.0f\nVerified freelancers: %.0f%%\nAverage rating: %.2f\n",
		len(bids), sum/float64(len(bids)), minBid, maxBid,
		float64(verified)/float64(len(bids))*100, ratingSum/float64(len(bids)))

	top := make([]models.CompetitorBid, len(bids))
	copy(top, bids)
	sort.SliceStable(top, func(i, j int) bool { return top[i].Rating > top[j].Rating })
	if len(top) > 3 {
		top = top[:3]
	}
	for i, bid := range top {
		fmt.Fprintf(&b, "Top %d: %s — %.0f %s in %d days, rating %.1f (%d reviews)\n",
			i+1, bid.FreelancerName, bid.BidAmount, bid.Currency, bid.DeliveryDays, bid.Rating, bid.ReviewCount)
	}
	return b.String()
}
