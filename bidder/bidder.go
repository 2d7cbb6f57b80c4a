// Package bidder fills and submits the marketplace bid form. Missing form
// fields are warnings, not failures: a partially filled form still gets its
// submission attempt, because the marketplace validates server-side anyway.
package bidder

import (
	"bufio"
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/Peerapatfc/freelancer-auto-bid/browser"
	"github.com/Peerapatfc/freelancer-auto-bid/config"
	"github.com/Peerapatfc/freelancer-auto-bid/models"
	"github.com/Peerapatfc/freelancer-auto-bid/scraper"
)

// Phrases in page text that mean a bid already exists for this project.
var existingBidPhrases = []string{
	"You have already placed a bid",
	"Your bid has been placed",
}

// fieldTarget is one form field with its fallback selector chain.
type fieldTarget struct {
	name      string
	selectors []string
	value     string
}

// Bidder drives the bid form on the shared page.
type Bidder struct {
	page browser.Page
	cfg  config.Config

	// confirm asks the operator before a live submit. Replaced in tests;
	// defaults to a stdin Y/N prompt.
	confirm func(prompt string) bool
}

func New(page browser.Page, cfg config.Config) *Bidder {
	return &Bidder{page: page, cfg: cfg, confirm: stdinConfirm}
}

// PlaceBid navigates to the project page and fills/submits the bid form.
// In dry-run mode the filled form is screenshotted and left unsubmitted.
func (b *Bidder) PlaceBid(ctx context.Context, projectURL string, bid models.BidData) models.BidResult {
	result := models.BidResult{ProjectID: bid.ProjectID}

	if err := b.page.Navigate(ctx, projectURL, b.cfg.SettleDelay); err != nil {
		result.Reason = fmt.Sprintf("navigate: %v", err)
		return result
	}

	if b.hasExistingBid(ctx) {
		result.Skipped = true
		result.Reason = "existing bid detected"
		log.Printf("[bid] %s — skip, bid already placed", bid.ProjectID)
		return result
	}

	b.fillFields(ctx, []fieldTarget{
		{"amount", []string{scraper.BidAmountInput, scraper.BidAmountInputAlt}, formatAmount(bid.Amount)},
		{"period", []string{scraper.BidPeriodInput, scraper.BidPeriodInputAlt}, fmt.Sprintf("%d", bid.Period)},
		{"proposal", []string{scraper.BidProposalInput, scraper.BidProposalInputAlt}, bid.Proposal},
	})
	b.fillMilestones(ctx, bid.Milestones)

	if b.cfg.DryRun {
		shot := b.screenshotPath(bid.ProjectID, "preview")
		if err := b.page.Screenshot(ctx, shot); err != nil {
			log.Printf("[bid] ⚠ preview screenshot: %v", err)
		} else {
			result.Screenshot = shot
		}
		if msg, _ := b.page.Text(ctx, scraper.ValidationErrorSel); msg != "" {
			log.Printf("[bid] ⚠ validation message on form: %s", msg)
		}
		result.Reason = "dry run — not submitted"
		return result
	}

	if !b.cfg.AutoConfirm {
		prompt := fmt.Sprintf("Submit bid of %s %s on %s? [y/N] ", formatAmount(bid.Amount), bid.Currency, bid.ProjectID)
		if !b.confirm(prompt) {
			result.Skipped = true
			result.Reason = "declined at confirmation"
			return result
		}
	}

	if err := b.page.Click(ctx, scraper.BidSubmitButton); err != nil {
		result.Reason = fmt.Sprintf("submit click: %v", err)
		return result
	}
	time.Sleep(b.cfg.SettleDelay)

	if msg, _ := b.page.Text(ctx, scraper.PostSubmitErrorSel); msg != "" {
		result.Reason = fmt.Sprintf("rejected: %s", msg)
		return result
	}

	result.Submitted = true
	log.Printf("[bid] ✓ submitted %s %s on %s", formatAmount(bid.Amount), bid.Currency, bid.ProjectID)
	return result
}

// hasExistingBid checks marker elements first, then two fixed phrases in the
// page text.
func (b *Bidder) hasExistingBid(ctx context.Context) bool {
	if ok, _ := b.page.Exists(ctx, scraper.ExistingBidSel); ok {
		return true
	}
	pageText, err := b.page.Text(ctx, "body")
	if err != nil {
		return false
	}
	for _, phrase := range existingBidPhrases {
		if strings.Contains(pageText, phrase) {
			return true
		}
	}
	return false
}

// fillFields tries each field's selector chain in order, logging which one
// matched. An unfillable field is skipped with a warning.
func (b *Bidder) fillFields(ctx context.Context, fields []fieldTarget) {
	for _, f := range fields {
		filled := false
		for _, sel := range f.selectors {
			if err := b.page.Fill(ctx, sel, f.value); err == nil {
				log.Printf("[bid] filled %s via %s", f.name, sel)
				filled = true
				break
			}
		}
		if !filled {
			log.Printf("[bid] ⚠ could not locate %s field — continuing without it", f.name)
		}
	}
}

// fillMilestones fills the first milestone row, then clicks the add-row
// control for each extra milestone. If the control is missing the remaining
// milestones are dropped — an under-filled bid is tolerated.
func (b *Bidder) fillMilestones(ctx context.Context, milestones []models.Milestone) {
	for i, m := range milestones {
		if i > 0 {
			if err := b.page.Click(ctx, scraper.AddMilestoneButton); err != nil {
				log.Printf("[bid] ⚠ add-milestone control unavailable, dropping %d remaining milestone(s)",
					len(milestones)-i)
				return
			}
		}
		descSel := fmt.Sprintf(scraper.MilestoneDescInputFmt, i)
		amtSel := fmt.Sprintf(scraper.MilestoneAmtInputFmt, i)
		if err := b.page.Fill(ctx, descSel, m.Description); err != nil {
			log.Printf("[bid] ⚠ milestone %d description: %v", i, err)
		}
		if err := b.page.Fill(ctx, amtSel, formatAmount(m.Amount)); err != nil {
			log.Printf("[bid] ⚠ milestone %d amount: %v", i, err)
		}
	}
}

func (b *Bidder) screenshotPath(projectID, kind string) string {
	name := fmt.Sprintf("%s_%s_%d.png", browser.Slug(projectID), kind, time.Now().Unix())
	return filepath.Join(b.cfg.ScreenshotDir, name)
}

func formatAmount(v float64) string {
	return fmt.Sprintf("%.0f", v)
}

func stdinConfirm(prompt string) bool {
	fmt.Print(prompt)
	reader := bufio.NewReader(os.Stdin)
	line, err := reader.ReadString('\n')
	if err != nil {
		return false
	}
	answer := strings.ToLower(strings.TrimSpace(line))
	return answer == "y" || answer == "yes"
}
