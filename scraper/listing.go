// Package scraper extracts structured marketplace data from rendered pages.
// Navigation goes through browser.Page; all extraction runs on HTML
// snapshots via goquery so the parsing logic is testable against fixtures.
package scraper

import (
	"context"
	"fmt"
	"log"
	"regexp"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/PuerkitoBio/goquery"

	"github.com/Peerapatfc/freelancer-auto-bid/browser"
	"github.com/Peerapatfc/freelancer-auto-bid/config"
	"github.com/Peerapatfc/freelancer-auto-bid/currency"
	"github.com/Peerapatfc/freelancer-auto-bid/models"
)

const BaseURL = "https://www.freelancer.com"

const maxDescriptionLen = 500

var (
	projectIDRe = regexp.MustCompile(`/projects/[^/]+/([^/?#]+)`)
	bidCountRe  = regexp.MustCompile(`(\d+)\s*bids?\b`)
	perHourRe   = regexp.MustCompile(`(?i)per hour`)
	rangeRe     = regexp.MustCompile(`(NZ\$|A\$|C\$|S\$|[$€£₹])?\s*([\d,]+(?:\.\d+)?)\s*[-–]\s*(NZ\$|A\$|C\$|S\$|[$€£₹])?\s*([\d,]+(?:\.\d+)?)\s*([A-Z]{3})?`)
)

// Scraper drives the shared page through the marketplace and parses what it
// finds.
type Scraper struct {
	page browser.Page
	cfg  config.Config
}

func New(page browser.Page, cfg config.Config) *Scraper {
	return &Scraper{page: page, cfg: cfg}
}

// ScrapeProjects iterates search result pages 1..maxPages, collecting up to
// maxProjects distinct projects. Page URLs get a page=N query parameter;
// duplicates (by id) across pages are dropped. The final slice is truncated
// to maxProjects after budget conversion.
func (s *Scraper) ScrapeProjects(ctx context.Context, searchURL string, maxProjects, maxPages int) ([]models.Project, error) {
	var projects []models.Project
	seen := make(map[string]bool)

	for page := 1; page <= maxPages && len(projects) < maxProjects; page++ {
		url := pageURL(searchURL, page)
		log.Printf("[scrape] search page %d/%d", page, maxPages)

		if err := s.page.Navigate(ctx, url, s.cfg.SettleDelay); err != nil {
			return nil, fmt.Errorf("navigate %s: %w", url, err)
		}

		html, err := s.page.HTML(ctx, "html")
		if err != nil {
			return nil, fmt.Errorf("snapshot page %d: %w", page, err)
		}

		found := ParseListings(html, maxProjects)
		added := 0
		for _, p := range found {
			if seen[p.ID] {
				continue
			}
			seen[p.ID] = true
			projects = append(projects, p)
			added++
		}
		log.Printf("[scrape] page %d → %d cards, %d new (running total: %d)",
			page, len(found), added, len(projects))

		if page < maxPages && len(projects) < maxProjects {
			time.Sleep(s.cfg.PageDelay)
		}
	}

	for i := range projects {
		projects[i].Budget = ParseBudget(projects[i].BudgetText)
	}
	if len(projects) > maxProjects {
		projects = projects[:maxProjects]
	}
	return projects, nil
}

// ParseListings extracts up to max project summaries from a search-results
// snapshot. Cards without a title are discarded silently and do not count
// against max. Budget text is captured raw; ParseBudget converts it later.
func ParseListings(html string, max int) []models.Project {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		log.Printf("[scrape] ⚠ parse listings: %v", err)
		return nil
	}

	var projects []models.Project
	doc.Find(ListingCardSelector).EachWithBreak(func(i int, card *goquery.Selection) bool {
		if len(projects) >= max {
			return false
		}

		title := strings.TrimSpace(card.Find(ListingTitleSelector).First().Text())
		if title == "" {
			return true
		}

		href, _ := card.Find(ListingTitleSelector).First().Attr("href")
		if href == "" {
			href, _ = card.Find(`a[href*="/projects/"]`).First().Attr("href")
		}

		id := extractProjectID(href)
		if id == "" {
			id = fmt.Sprintf("proj_%d", i)
		}

		projects = append(projects, models.Project{
			ID:           id,
			Title:        title,
			Description:  cleanDescription(card.Find(ListingDescSelector).First().Text()),
			BudgetText:   strings.TrimSpace(card.Find(ListingPriceSelector).First().Text()),
			Skills:       extractSkills(card),
			BidCount:     extractBidCount(card.Text()),
			ClientRating: extractRating(card),
			PostedTime:   strings.TrimSpace(card.Find(ListingTimeSelector).First().Text()),
			URL:          absoluteURL(href),
		})
		return true
	})
	return projects
}

// ParseBudget converts raw budget text into a structured range. Unparseable
// text yields a zero Min/Max in USD, signalling "unparsed" downstream.
func ParseBudget(text string) models.Budget {
	b := models.Budget{Currency: "USD", IsHourly: perHourRe.MatchString(text)}

	if m := rangeRe.FindStringSubmatch(text); m != nil {
		min, err1 := strconv.ParseFloat(strings.ReplaceAll(m[2], ",", ""), 64)
		max, err2 := strconv.ParseFloat(strings.ReplaceAll(m[4], ",", ""), 64)
		if err1 == nil && err2 == nil {
			switch {
			case m[5] != "":
				b.Currency = strings.ToUpper(m[5])
			case m[1] != "":
				b.Currency = currency.DetectCurrency(m[1])
			case m[3] != "":
				b.Currency = currency.DetectCurrency(m[3])
			}
			b.Min, b.Max = min, max
		}
	} else if amount, code := currency.ParseAmount(text); amount > 0 {
		// Single-figure budgets ("$500 USD") collapse to a point range.
		b.Min, b.Max = amount, amount
		b.Currency = code
	}

	b.MinUSD = currency.ConvertToUSD(b.Min, b.Currency)
	b.MaxUSD = currency.ConvertToUSD(b.Max, b.Currency)
	return b
}

func extractProjectID(href string) string {
	if m := projectIDRe.FindStringSubmatch(href); m != nil {
		return m[1]
	}
	return ""
}

func cleanDescription(text string) string {
	text = strings.TrimSpace(text)
	text = strings.TrimSuffix(text, "more")
	text = strings.TrimSpace(text)
	return truncate(text, maxDescriptionLen)
}

// truncate cuts s to at most max bytes without splitting a multi-byte rune.
func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	cut := max
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return s[:cut]
}

func extractSkills(card *goquery.Selection) []string {
	var skills []string
	seen := make(map[string]bool)
	card.Find(ListingSkillSelector).Each(func(_ int, tag *goquery.Selection) {
		skill := strings.TrimSpace(tag.Text())
		if skill != "" && !seen[skill] {
			seen[skill] = true
			skills = append(skills, skill)
		}
	})
	return skills
}

func extractBidCount(text string) int {
	if m := bidCountRe.FindStringSubmatch(text); m != nil {
		n, err := strconv.Atoi(m[1])
		if err == nil {
			return n
		}
	}
	return 0
}

func extractRating(card *goquery.Selection) float64 {
	if v, ok := card.Find(`[data-star-rating]`).First().Attr("data-star-rating"); ok {
		if rating, err := strconv.ParseFloat(strings.TrimSpace(v), 64); err == nil {
			return rating
		}
	}
	return 0
}

func absoluteURL(href string) string {
	if href == "" || strings.HasPrefix(href, "http") {
		return href
	}
	return BaseURL + href
}

func pageURL(searchURL string, page int) string {
	if page == 1 {
		return searchURL
	}
	sep := "?"
	if strings.Contains(searchURL, "?") {
		sep = "&"
	}
	return fmt.Sprintf("%s%spage=%d", searchURL, sep, page)
}
