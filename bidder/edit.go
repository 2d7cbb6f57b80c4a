package bidder

import (
	"context"
	"fmt"
	"log"
	"math"
	"time"

	"github.com/Peerapatfc/freelancer-auto-bid/models"
	"github.com/Peerapatfc/freelancer-auto-bid/scraper"
)

// EditBid opens an existing bid's edit form, updates the amount and
// proposal, and rescales every milestone to the new amount. Fails closed
// when the edit or save control is missing. Screenshots are captured before
// save, and again on error.
func (b *Bidder) EditBid(ctx context.Context, projectURL string, newAmount float64, newProposal string, dryRun bool, originalAmount float64) models.BidResult {
	result := models.BidResult{ProjectID: projectURL}

	if err := b.page.Navigate(ctx, projectURL, b.cfg.SettleDelay); err != nil {
		result.Reason = fmt.Sprintf("navigate: %v", err)
		return result
	}

	if err := b.page.Click(ctx, scraper.EditBidButton); err != nil {
		result.Reason = "edit control not found"
		return result
	}
	time.Sleep(b.cfg.SettleDelay)

	if dryRun {
		log.Printf("[edit] dry run — would change bid to %.0f (was %.0f)", newAmount, originalAmount)
		result.Reason = "dry run — not saved"
		return result
	}

	if err := b.page.Fill(ctx, scraper.BidAmountInput, formatAmount(newAmount)); err != nil {
		if err := b.page.Fill(ctx, scraper.BidAmountInputAlt, formatAmount(newAmount)); err != nil {
			log.Printf("[edit] ⚠ amount field: %v", err)
		}
	}

	if newAmount > 0 && originalAmount > 0 {
		b.rescaleMilestoneInputs(ctx, newAmount/originalAmount, newAmount)
	}

	if newProposal != "" {
		if err := b.page.Fill(ctx, scraper.BidProposalInput, newProposal); err != nil {
			log.Printf("[edit] ⚠ proposal field: %v", err)
		}
	}

	shot := b.screenshotPath(projectURL, "edit")
	if err := b.page.Screenshot(ctx, shot); err != nil {
		log.Printf("[edit] ⚠ pre-save screenshot: %v", err)
	} else {
		result.Screenshot = shot
	}

	if err := b.page.Click(ctx, scraper.SaveBidButton); err != nil {
		result.Reason = "save control not found"
		if err := b.page.Screenshot(ctx, b.screenshotPath(projectURL, "edit_error")); err != nil {
			log.Printf("[edit] ⚠ error screenshot: %v", err)
		}
		return result
	}
	time.Sleep(b.cfg.SettleDelay)

	result.Submitted = true
	return result
}

// rescaleMilestoneInputs reads each existing milestone amount input,
// rescales the set, and writes the values back by positional index.
func (b *Bidder) rescaleMilestoneInputs(ctx context.Context, ratio, target float64) {
	var amounts []float64
	for i := 0; ; i++ {
		sel := fmt.Sprintf(scraper.MilestoneAmtInputFmt, i)
		ok, err := b.page.Exists(ctx, sel)
		if err != nil || !ok {
			break
		}
		text, err := b.page.Text(ctx, sel)
		if err != nil {
			break
		}
		var v float64
		fmt.Sscanf(text, "%f", &v)
		amounts = append(amounts, v)
	}
	if len(amounts) == 0 {
		return
	}

	rescaled := RescaleMilestones(amounts, ratio, target)
	for i, v := range rescaled {
		sel := fmt.Sprintf(scraper.MilestoneAmtInputFmt, i)
		if err := b.page.Fill(ctx, sel, formatAmount(v)); err != nil {
			log.Printf("[edit] ⚠ milestone %d amount: %v", i, err)
		}
	}
}

// RescaleMilestones multiplies every amount by ratio (rounded, minimum 1 per
// milestone) and forces the sum to equal target exactly by adjusting the
// last milestone, which never drops below 1.
func RescaleMilestones(amounts []float64, ratio, target float64) []float64 {
	out := make([]float64, len(amounts))
	var sum float64
	for i, a := range amounts {
		v := math.Round(a * ratio)
		if v < 1 {
			v = 1
		}
		out[i] = v
		sum += v
	}
	if len(out) > 0 && sum != target {
		last := out[len(out)-1] + (target - sum)
		if last < 1 {
			last = 1
		}
		out[len(out)-1] = last
	}
	return out
}
