package scraper

import (
	"context"
	"log"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/Peerapatfc/freelancer-auto-bid/currency"
	"github.com/Peerapatfc/freelancer-auto-bid/models"
)

const (
	maxFullDescriptionLen = 3000
	maxCompetitorBids     = 10
)

// Phrases that mark a verified client when no badge element is present.
var verificationPhrases = []string{
	"Payment method verified",
	"Identity verified",
}

var (
	reviewCountRe  = regexp.MustCompile(`(\d+)\s*review`)
	completionRe   = regexp.MustCompile(`(\d+)\s*%`)
	deliveryDaysRe = regexp.MustCompile(`(?i)in\s+(\d+)\s+days?`)
	ratingValueRe  = regexp.MustCompile(`\d+(?:\.\d+)?`)
)

// projectDetail is what the detail + proposals pages add onto a Project.
type projectDetail struct {
	AverageBid      float64
	FullDescription string
	Deliverables    []string
	ClientInfo      *models.ClientInfo
	CompetitorBids  []models.CompetitorBid
}

// EnrichProject fetches a project's details and proposals pages and merges
// the extra fields onto p. The merge is additive: existing fields survive,
// and FullDescription falls back to the short description when extraction
// comes up empty.
func (s *Scraper) EnrichProject(ctx context.Context, p *models.Project) error {
	if err := s.page.Navigate(ctx, p.URL+"/details", s.cfg.SettleDelay); err != nil {
		return err
	}
	html, err := s.page.HTML(ctx, "html")
	if err != nil {
		return err
	}
	detail := ParseDetail(html)

	if err := s.page.Navigate(ctx, p.URL+"/proposals", s.cfg.SettleDelay); err != nil {
		return err
	}
	proposalsHTML, err := s.page.HTML(ctx, "html")
	if err != nil {
		return err
	}
	detail.CompetitorBids = ParseCompetitorBids(proposalsHTML)

	mergeDetail(p, detail)
	return nil
}

// EnrichProjectsWithDetails enriches the first maxToEnrich projects in strict
// sequence with delay between requests. A failure on one project keeps the
// original un-enriched record and continues; the operation never aborts.
func (s *Scraper) EnrichProjectsWithDetails(ctx context.Context, projects []models.Project, maxToEnrich int, delay time.Duration) []models.Project {
	for i := range projects {
		if i >= maxToEnrich {
			break
		}
		log.Printf("[detail] %d/%d — %s", i+1, min(maxToEnrich, len(projects)), projects[i].Title)
		if err := s.EnrichProject(ctx, &projects[i]); err != nil {
			log.Printf("[detail] ⚠ %s: %v (keeping listing data)", projects[i].ID, err)
		}
		if i+1 < maxToEnrich && i+1 < len(projects) {
			time.Sleep(delay)
		}
	}
	return projects
}

// ParseDetail extracts the extended fields from a detail-page snapshot.
// Every miss resolves to a zero value, never an error.
func ParseDetail(html string) projectDetail {
	var d projectDetail
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		log.Printf("[detail] ⚠ parse: %v", err)
		return d
	}

	if text := doc.Find(AverageBidSelector).First().Text(); text != "" {
		d.AverageBid, _ = currency.ParseAmount(text)
	}

	for _, sel := range detailDescriptionSelectors {
		if text := strings.TrimSpace(doc.Find(sel).First().Text()); text != "" {
			d.FullDescription = truncate(text, maxFullDescriptionLen)
			break
		}
	}

	doc.Find(DeliverablesSelector).Each(func(_ int, li *goquery.Selection) {
		if item := strings.TrimSpace(li.Text()); item != "" {
			d.Deliverables = append(d.Deliverables, item)
		}
	})

	verified := doc.Find(VerifiedBadgeSel).Length() > 0
	if !verified {
		pageText := doc.Text()
		for _, phrase := range verificationPhrases {
			if strings.Contains(pageText, phrase) {
				verified = true
				break
			}
		}
	}

	if section := doc.Find(ClientSectionSel).First(); section.Length() > 0 || verified {
		d.ClientInfo = &models.ClientInfo{
			Location:    strings.TrimSpace(section.Find(ClientLocationSel).First().Text()),
			MemberSince: strings.TrimSpace(section.Find(ClientMemberSinceSel).First().Text()),
			Verified:    verified,
		}
	}

	return d
}

// ParseCompetitorBids extracts up to the first 10 competitor-bid cards from a
// proposals-page snapshot. Cards that cannot be parsed are skipped.
func ParseCompetitorBids(html string) []models.CompetitorBid {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		log.Printf("[detail] ⚠ parse proposals: %v", err)
		return nil
	}

	var bids []models.CompetitorBid
	doc.Find(BidCardSelector).EachWithBreak(func(_ int, card *goquery.Selection) bool {
		if len(bids) >= maxCompetitorBids {
			return false
		}

		name := strings.TrimSpace(card.Find(BidNameSelector).First().Text())
		if name == "" {
			name = "Unknown"
		}

		cardText := card.Text()
		amountText := card.Find(BidAmountSelector).First().Text()
		amount, code := currency.ParseAmount(amountText)
		// A bare rupee glyph with no explicit code means INR on this
		// marketplace; anything else unlabelled is USD.
		if code == "USD" && strings.Contains(amountText, "₹") {
			code = "INR"
		}

		days := 7
		if m := deliveryDaysRe.FindStringSubmatch(cardText); m != nil {
			if n, err := strconv.Atoi(m[1]); err == nil {
				days = n
			}
		}

		bids = append(bids, models.CompetitorBid{
			FreelancerName: name,
			Rating:         parseRatingText(card.Find(BidRatingSelector).First().Text()),
			ReviewCount:    firstInt(reviewCountRe, cardText),
			CompletionRate: float64(firstInt(completionRe, cardText)),
			BidAmount:      amount,
			Currency:       code,
			DeliveryDays:   days,
			Verified:       card.Find(BidVerifiedBadgeSel).Length() > 0,
			Preferred:      card.Find(BidPreferredBadgeSel).Length() > 0,
		})
		return true
	})
	return bids
}

func mergeDetail(p *models.Project, d projectDetail) {
	if d.AverageBid > 0 {
		p.AverageBid = d.AverageBid
	}
	if d.FullDescription != "" {
		p.FullDescription = d.FullDescription
	} else if p.FullDescription == "" {
		p.FullDescription = p.Description
	}
	if len(d.Deliverables) > 0 {
		p.Deliverables = d.Deliverables
	}
	if d.ClientInfo != nil {
		p.ClientInfo = d.ClientInfo
	}
	if len(d.CompetitorBids) > 0 {
		p.CompetitorBids = d.CompetitorBids
	}
}

func parseRatingText(text string) float64 {
	if m := ratingValueRe.FindString(text); m != "" {
		if v, err := strconv.ParseFloat(m, 64); err == nil {
			return v
		}
	}
	return 0
}

func firstInt(re *regexp.Regexp, text string) int {
	if m := re.FindStringSubmatch(text); m != nil {
		if n, err := strconv.Atoi(m[1]); err == nil {
			return n
		}
	}
	return 0
}
