package scraper

import (
	"context"
	"fmt"
	"log"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/Peerapatfc/freelancer-auto-bid/currency"
	"github.com/Peerapatfc/freelancer-auto-bid/models"
)

const InsightsURL = BaseURL + "/insights/bids"

var (
	rankRe     = regexp.MustCompile(`#(\d+)\s+of\s+(\d+)\s+bids`)
	flagRe     = regexp.MustCompile(`/flags/([a-z]{2})\.`)
	bidsLeftRe = regexp.MustCompile(`(\d+)\s*bids?\s*(?:left|remaining)`)
)

// ScrapeInsights loads the insights page and parses the user's outstanding
// bids.
func (s *Scraper) ScrapeInsights(ctx context.Context) ([]models.BidInsight, error) {
	if err := s.page.Navigate(ctx, InsightsURL, s.cfg.SettleDelay); err != nil {
		return nil, fmt.Errorf("navigate insights: %w", err)
	}
	html, err := s.page.HTML(ctx, "html")
	if err != nil {
		return nil, fmt.Errorf("snapshot insights: %w", err)
	}
	return ParseInsights(html), nil
}

// ParseInsights extracts bid insights from an insights-page snapshot.
// Only primary table rows are considered; expandable detail sub-rows are
// excluded by the row selector. Rows without a project title are skipped
// silently.
func ParseInsights(html string) []models.BidInsight {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		log.Printf("[insights] ⚠ parse: %v", err)
		return nil
	}

	var insights []models.BidInsight
	doc.Find(InsightRowSelector).Each(func(_ int, row *goquery.Selection) {
		titleLink := row.Find(InsightTitleSelector).First()
		title := strings.TrimSpace(titleLink.Text())
		if title == "" {
			return
		}
		href, _ := titleLink.Attr("href")

		cells := row.Find("td")
		rowText := row.Text()

		rank, total := 0, 0
		if m := rankRe.FindStringSubmatch(rowText); m != nil {
			fmt.Sscanf(m[1], "%d", &rank)
			fmt.Sscanf(m[2], "%d", &total)
		}

		bidCell := cells.Eq(4).Text()
		amount, code := parseOwnBid(bidCell)

		status := models.BidStatusActive
		if row.Find(InsightSealedBadgeSel).Length() > 0 ||
			strings.Contains(strings.ToLower(bidCell), "sealed") {
			status = models.BidStatusSealed
		}

		country := ""
		if src, ok := row.Find(`img[src*="/flags/"]`).First().Attr("src"); ok {
			if m := flagRe.FindStringSubmatch(src); m != nil {
				country = strings.ToUpper(m[1])
			}
		}

		insights = append(insights, models.BidInsight{
			ProjectTitle:  title,
			ProjectURL:    absoluteURL(href),
			TimeRemaining: strings.TrimSpace(cells.Eq(1).Text()),
			Rank:          rank,
			TotalBids:     total,
			BidAmount:     amount,
			Currency:      code,
			Status:        status,
			ClientCountry: country,
			ClientRating:  parseRatingText(row.Find(InsightRatingSelector).First().Text()),
		})
	})
	return insights
}

// ownBidSymbols is the four-way symbol table the insights cell uses.
var ownBidSymbols = map[string]string{
	"£": "GBP",
	"$": "USD",
	"₹": "INR",
	"€": "EUR",
}

// parseOwnBid reads the user's own bid amount from an insights cell.
// An explicit ISO code wins; otherwise the symbol decides; otherwise USD.
func parseOwnBid(text string) (float64, string) {
	amount, code := currency.ParseAmount(text)
	for sym, symCode := range ownBidSymbols {
		if strings.Contains(text, sym) && !hasExplicitCode(text) {
			return amount, symCode
		}
	}
	return amount, code
}

var isoCodeRe = regexp.MustCompile(`\b[A-Z]{3}\b`)

func hasExplicitCode(text string) bool {
	return isoCodeRe.MatchString(text)
}

// ScrapeBidAllowance reads the remaining bid count from the dashboard.
// Returns 0 when the counter cannot be found — callers treat that as a hard
// stop before any bidding work begins.
func (s *Scraper) ScrapeBidAllowance(ctx context.Context) (int, error) {
	if err := s.page.Navigate(ctx, BaseURL+"/dashboard", s.cfg.SettleDelay); err != nil {
		return 0, fmt.Errorf("navigate dashboard: %w", err)
	}
	text, err := s.page.Text(ctx, BidAllowanceSelector)
	if err != nil {
		return 0, fmt.Errorf("read bid allowance: %w", err)
	}
	if m := bidsLeftRe.FindStringSubmatch(text); m != nil {
		var n int
		fmt.Sscanf(m[1], "%d", &n)
		return n, nil
	}
	return 0, nil
}
