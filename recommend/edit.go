package recommend

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"math"

	"github.com/Peerapatfc/freelancer-auto-bid/models"
)

// SuggestBidEdit recommends an adjustment for an existing bid based on its
// observed competitive position. With a generator configured it asks the
// model; any call or parse failure falls back to the deterministic rule
// table, so both paths produce a strategy label consistent with the
// reduction they computed.
func (e *Engine) SuggestBidEdit(ctx context.Context, title string, currentBid float64, currencyCode string, rank, total int, timeRemaining string) models.BidEditSuggestion {
	if e.gen == nil {
		return ruleBasedEdit(currentBid, rank, total)
	}

	prompt := buildEditPrompt(title, currentBid, currencyCode, rank, total, timeRemaining)
	raw, err := e.gen.Generate(ctx, prompt)
	if err != nil {
		log.Printf("[edit] ⚠ model call failed: %v (using rule table)", err)
		return ruleBasedEdit(currentBid, rank, total)
	}

	var resp struct {
		SuggestedAmount float64 `json:"suggestedAmount"`
		Strategy        string  `json:"strategy"`
		Reasoning       string  `json:"reasoning"`
	}
	obj := extractJSONObject(raw)
	if obj == "" {
		log.Printf("[edit] ⚠ no JSON object in response (using rule table)")
		return ruleBasedEdit(currentBid, rank, total)
	}
	if err := json.Unmarshal([]byte(obj), &resp); err != nil || resp.SuggestedAmount <= 0 {
		log.Printf("[edit] ⚠ unusable edit response (using rule table)")
		return ruleBasedEdit(currentBid, rank, total)
	}

	reduction := (1 - resp.SuggestedAmount/currentBid) * 100
	return models.BidEditSuggestion{
		SuggestedAmount: math.Round(resp.SuggestedAmount),
		ReductionPct:    math.Round(reduction*10) / 10,
		Strategy:        strategyFor(reduction),
		Reasoning:       resp.Reasoning,
	}
}

// ruleBasedEdit is the deterministic policy: the further down the ranking,
// the bigger the cut.
func ruleBasedEdit(currentBid float64, rank, total int) models.BidEditSuggestion {
	pct := PositionPercent(rank, total)

	var reduction float64
	switch {
	case pct > 75:
		reduction = 15
	case pct > 50:
		reduction = 10
	default:
		reduction = 5
	}

	return models.BidEditSuggestion{
		SuggestedAmount: math.Round(currentBid * (1 - reduction/100)),
		ReductionPct:    reduction,
		Strategy:        strategyFor(reduction),
		Reasoning: fmt.Sprintf("Ranked #%d of %d (position %.0f%%); reducing bid by %.0f%%",
			rank, total, pct, reduction),
	}
}

func strategyFor(reductionPct float64) string {
	switch {
	case reductionPct >= 15:
		return "aggressive"
	case reductionPct >= 10:
		return "moderate"
	default:
		return "conservative"
	}
}

func buildEditPrompt(title string, currentBid float64, currencyCode string, rank, total int, timeRemaining string) string {
	return fmt.Sprintf(`An existing bid needs review.
Project: %s
Current bid: %.0f %s
Position: ranked #%d of %d bids
Time remaining: %s

Guidance:
- position worse than 75%%: aggressive reduction (~15%%)
- position worse than 50%%: moderate reduction (~10%%)
- position worse than 25%%: small reduction (~5%%)
- otherwise: hold the current amount

Respond with ONLY a JSON object:
{"suggestedAmount": <number>, "strategy": "<aggressive|moderate|conservative>", "reasoning": "<short>"}`,
		title, currentBid, currencyCode, rank, total, timeRemaining)
}

// extractJSONObject returns the first balanced-brace substring of text, or
// "" when none closes.
func extractJSONObject(text string) string {
	start := -1
	depth := 0
	inString := false
	escaped := false

	for i, r := range text {
		if start >= 0 && inString {
			switch {
			case escaped:
				escaped = false
			case r == '\\':
				escaped = true
			case r == '"':
				inString = false
			}
			continue
		}
		switch r {
		case '{':
			if start < 0 {
				start = i
			}
			depth++
		case '}':
			if start >= 0 {
				depth--
				if depth == 0 {
					return text[start : i+1]
				}
			}
		case '"':
			if start >= 0 {
				inString = true
			}
		}
	}
	return ""
}
