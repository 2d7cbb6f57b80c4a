package scraper

import (
	"context"
	"fmt"
	"reflect"
	"strings"
	"testing"
	"time"

	"github.com/Peerapatfc/freelancer-auto-bid/config"
	"github.com/Peerapatfc/freelancer-auto-bid/models"
)

// fakePage serves canned HTML per URL. Navigating to failOn returns an error.
type fakePage struct {
	docs      map[string]string
	failOn    string
	current   string
	textValue string
}

func (f *fakePage) Navigate(_ context.Context, url string, _ time.Duration) error {
	if f.failOn != "" && strings.Contains(url, f.failOn) {
		return fmt.Errorf("navigate %s: timeout", url)
	}
	f.current = url
	return nil
}

func (f *fakePage) Location(context.Context) (string, error) { return f.current, nil }

func (f *fakePage) HTML(context.Context, string) (string, error) {
	return f.docs[f.current], nil
}

func (f *fakePage) Text(context.Context, string) (string, error) { return f.textValue, nil }

func (f *fakePage) Exists(context.Context, string) (bool, error) { return false, nil }

func (f *fakePage) Click(context.Context, string) error { return nil }

func (f *fakePage) Fill(context.Context, string, string) error { return nil }

func (f *fakePage) Screenshot(context.Context, string) error { return nil }

const detailFixture = `
<html><body>
<div class="ProjectViewDetails-budget">Avg bid: $425 USD</div>
<div class="ProjectDescription-text">Full description of the project with every requirement spelled out.</div>
<div class="ProjectDescription-deliverables"><ul>
  <li>API server</li>
  <li>Test suite</li>
</ul></div>
<div class="AboutTheClient">
  <span class="AboutTheClient-location">Sydney, Australia</span>
  <span class="AboutTheClient-memberSince">Member since 2019</span>
</div>
<p>Payment method verified</p>
</body></html>`

func TestParseDetail(t *testing.T) {
	d := ParseDetail(detailFixture)

	if d.AverageBid != 425 {
		t.Errorf("AverageBid = %v, want 425", d.AverageBid)
	}
	if !strings.HasPrefix(d.FullDescription, "Full description") {
		t.Errorf("FullDescription = %q", d.FullDescription)
	}
	if len(d.Deliverables) != 2 || d.Deliverables[0] != "API server" {
		t.Errorf("Deliverables = %v", d.Deliverables)
	}
	if d.ClientInfo == nil {
		t.Fatal("ClientInfo is nil")
	}
	if d.ClientInfo.Location != "Sydney, Australia" {
		t.Errorf("Location = %q", d.ClientInfo.Location)
	}
	if !d.ClientInfo.Verified {
		t.Error("Verified = false, want true (phrase match without badge)")
	}
}

func TestParseDetail_VerifiedPhraseWithoutClientSection(t *testing.T) {
	d := ParseDetail(`<html><body><p>Identity verified</p></body></html>`)
	if d.ClientInfo == nil || !d.ClientInfo.Verified {
		t.Fatalf("ClientInfo = %+v, want Verified=true", d.ClientInfo)
	}
}

func TestParseDetail_EmptyPage(t *testing.T) {
	d := ParseDetail("<html><body></body></html>")
	if d.AverageBid != 0 || d.FullDescription != "" || d.ClientInfo != nil {
		t.Errorf("empty page should produce zero detail, got %+v", d)
	}
}

const proposalsFixture = `
<html><body>
<div class="Bid-item">
  <span class="Bid-name">dev_anna</span>
  <span class="Rating-value">4.9</span>
  <span class="Bid-amount">₹12,000</span>
  <span>in 5 days — 120 reviews, 97% complete</span>
  <i class="Badge--verified"></i>
  <i class="Badge--preferred"></i>
</div>
<div class="Bid-item">
  <span class="Bid-amount">$300 USD</span>
</div>
</body></html>`

func TestParseCompetitorBids(t *testing.T) {
	bids := ParseCompetitorBids(proposalsFixture)
	if len(bids) != 2 {
		t.Fatalf("got %d bids, want 2", len(bids))
	}

	first := bids[0]
	if first.FreelancerName != "dev_anna" {
		t.Errorf("FreelancerName = %q", first.FreelancerName)
	}
	if first.Rating != 4.9 || first.ReviewCount != 120 || first.CompletionRate != 97 {
		t.Errorf("stats = rating %v, reviews %d, completion %v", first.Rating, first.ReviewCount, first.CompletionRate)
	}
	if first.BidAmount != 12000 || first.Currency != "INR" {
		t.Errorf("bid = %v %s, want 12000 INR (bare rupee glyph)", first.BidAmount, first.Currency)
	}
	if first.DeliveryDays != 5 {
		t.Errorf("DeliveryDays = %d, want 5", first.DeliveryDays)
	}
	if !first.Verified || !first.Preferred {
		t.Errorf("badges = verified %v, preferred %v", first.Verified, first.Preferred)
	}

	second := bids[1]
	if second.FreelancerName != "Unknown" {
		t.Errorf("missing name should default to Unknown, got %q", second.FreelancerName)
	}
	if second.DeliveryDays != 7 {
		t.Errorf("missing delivery should default to 7 days, got %d", second.DeliveryDays)
	}
	if second.BidAmount != 300 || second.Currency != "USD" {
		t.Errorf("bid = %v %s, want 300 USD", second.BidAmount, second.Currency)
	}
}

func TestParseCompetitorBids_CapsAtTen(t *testing.T) {
	var b strings.Builder
	b.WriteString("<html><body>")
	for i := 0; i < 14; i++ {
		fmt.Fprintf(&b, `<div class="Bid-item"><span class="Bid-name">dev%d</span></div>`, i)
	}
	b.WriteString("</body></html>")

	bids := ParseCompetitorBids(b.String())
	if len(bids) != maxCompetitorBids {
		t.Errorf("got %d bids, want %d", len(bids), maxCompetitorBids)
	}
}

func TestEnrichProject_FailureLeavesProjectUntouched(t *testing.T) {
	original := models.Project{
		ID:          "p1",
		Title:       "Original",
		Description: "short",
		URL:         "https://x.test/projects/go/p1",
		Skills:      []string{"Golang"},
	}
	project := original

	// Detail page loads fine; the proposals fetch fails. Nothing may merge.
	page := &fakePage{
		docs:   map[string]string{"https://x.test/projects/go/p1/details": detailFixture},
		failOn: "/proposals",
	}
	s := New(page, config.Config{})

	if err := s.EnrichProject(context.Background(), &project); err == nil {
		t.Fatal("expected an error from the failed proposals fetch")
	}
	if !reflect.DeepEqual(project, original) {
		t.Errorf("project mutated on failed enrichment:\n got %+v\nwant %+v", project, original)
	}
}

func TestEnrichProject_MergeKeepsListingFields(t *testing.T) {
	project := models.Project{
		ID:          "p1",
		Title:       "Original",
		Description: "short description",
		URL:         "https://x.test/projects/go/p1",
	}
	page := &fakePage{docs: map[string]string{
		"https://x.test/projects/go/p1/details":   detailFixture,
		"https://x.test/projects/go/p1/proposals": proposalsFixture,
	}}
	s := New(page, config.Config{})

	if err := s.EnrichProject(context.Background(), &project); err != nil {
		t.Fatalf("EnrichProject: %v", err)
	}
	if project.Title != "Original" || project.Description != "short description" {
		t.Errorf("listing fields overwritten: %+v", project)
	}
	if project.AverageBid != 425 {
		t.Errorf("AverageBid = %v, want 425", project.AverageBid)
	}
	if len(project.CompetitorBids) != 2 {
		t.Errorf("CompetitorBids = %d, want 2", len(project.CompetitorBids))
	}
}

func TestEnrichProjectsWithDetails_BatchContinuesPastFailure(t *testing.T) {
	docs := map[string]string{}
	var projects []models.Project
	for _, id := range []string{"p1", "p2", "p3", "p4", "p5"} {
		url := "https://x.test/projects/go/" + id
		projects = append(projects, models.Project{ID: id, Title: id, Description: "short " + id, URL: url})
		docs[url+"/details"] = detailFixture
		docs[url+"/proposals"] = proposalsFixture
	}
	original := make([]models.Project, len(projects))
	copy(original, projects)

	// Third project's detail fetch fails; cutoff leaves the fifth untouched.
	page := &fakePage{docs: docs, failOn: "/p3/"}
	s := New(page, config.Config{})

	out := s.EnrichProjectsWithDetails(context.Background(), projects, 4, 0)
	if len(out) != 5 {
		t.Fatalf("got %d projects, want 5", len(out))
	}
	for _, i := range []int{0, 1, 3} {
		if out[i].AverageBid != 425 || len(out[i].CompetitorBids) != 2 {
			t.Errorf("project %s not enriched: %+v", out[i].ID, out[i])
		}
	}
	if !reflect.DeepEqual(out[2], original[2]) {
		t.Errorf("failed project mutated:\n got %+v\nwant %+v", out[2], original[2])
	}
	if !reflect.DeepEqual(out[4], original[4]) {
		t.Errorf("beyond-cutoff project mutated:\n got %+v\nwant %+v", out[4], original[4])
	}
}

func TestMergeDetail_FullDescriptionFallsBackToShort(t *testing.T) {
	p := models.Project{Description: "short"}
	mergeDetail(&p, projectDetail{})
	if p.FullDescription != "short" {
		t.Errorf("FullDescription = %q, want fallback to short description", p.FullDescription)
	}
}
