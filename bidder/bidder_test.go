package bidder

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/Peerapatfc/freelancer-auto-bid/config"
	"github.com/Peerapatfc/freelancer-auto-bid/models"
)

// formPage records fills and clicks against a canned form.
type formPage struct {
	bodyText    string
	existingBid bool
	failFill    map[string]bool // selector substring → Fill fails
	failClick   map[string]bool
	inputValues map[string]string // selector → value for Text/Exists

	fills   map[string]string
	clicks  []string
	navErr  error
	shotErr error
}

func newFormPage() *formPage {
	return &formPage{
		failFill:    map[string]bool{},
		failClick:   map[string]bool{},
		inputValues: map[string]string{},
		fills:       map[string]string{},
	}
}

func (f *formPage) Navigate(_ context.Context, _ string, _ time.Duration) error { return f.navErr }

func (f *formPage) Location(context.Context) (string, error) { return "", nil }

func (f *formPage) HTML(context.Context, string) (string, error) { return "", nil }

func (f *formPage) Text(_ context.Context, selector string) (string, error) {
	if selector == "body" {
		return f.bodyText, nil
	}
	return f.inputValues[selector], nil
}

func (f *formPage) Exists(_ context.Context, selector string) (bool, error) {
	if strings.Contains(selector, "own-bid") || strings.Contains(selector, "BidCard--own") {
		return f.existingBid, nil
	}
	_, ok := f.inputValues[selector]
	return ok, nil
}

func (f *formPage) Click(_ context.Context, selector string) error {
	for sub := range f.failClick {
		if strings.Contains(selector, sub) {
			return fmt.Errorf("no element for %s", selector)
		}
	}
	f.clicks = append(f.clicks, selector)
	return nil
}

func (f *formPage) Fill(_ context.Context, selector, value string) error {
	for sub := range f.failFill {
		if strings.Contains(selector, sub) {
			return fmt.Errorf("no element for %s", selector)
		}
	}
	f.fills[selector] = value
	if _, tracked := f.inputValues[selector]; tracked {
		f.inputValues[selector] = value
	}
	return nil
}

func (f *formPage) Screenshot(context.Context, string) error { return f.shotErr }

func testBid() models.BidData {
	return models.BidData{
		ProjectID: "p1",
		Amount:    500,
		Currency:  "USD",
		Period:    7,
		Proposal:  "I can build this.",
		Milestones: []models.Milestone{
			{Description: "start", Amount: 175},
			{Description: "finish", Amount: 325},
		},
	}
}

func TestPlaceBid_DryRunNeverSubmits(t *testing.T) {
	page := newFormPage()
	b := New(page, config.Config{DryRun: true, ScreenshotDir: t.TempDir()})

	result := b.PlaceBid(context.Background(), "https://x.test/projects/go/p1", testBid())
	require.False(t, result.Submitted)
	require.False(t, result.Skipped)
	require.Equal(t, "dry run — not submitted", result.Reason)
	require.NotContains(t, strings.Join(page.clicks, " "), "submit", "dry run must not click submit")
	require.Equal(t, "500", page.fills[`input[name="bidAmount"], input#bidAmount`])
	require.Equal(t, "175", page.fills[`input[name="milestoneAmount[0]"]`])
}

func TestPlaceBid_SkipsExistingBidMarker(t *testing.T) {
	page := newFormPage()
	page.existingBid = true
	b := New(page, config.Config{})

	result := b.PlaceBid(context.Background(), "https://x.test/projects/go/p1", testBid())
	require.True(t, result.Skipped)
	require.Equal(t, "existing bid detected", result.Reason)
	require.Empty(t, page.fills, "no form interaction after the skip")
}

func TestPlaceBid_SkipsExistingBidPhrase(t *testing.T) {
	page := newFormPage()
	page.bodyText = "Great news! You have already placed a bid on this project."
	b := New(page, config.Config{})

	result := b.PlaceBid(context.Background(), "https://x.test/projects/go/p1", testBid())
	require.True(t, result.Skipped)
}

func TestPlaceBid_MissingFieldStillSubmits(t *testing.T) {
	page := newFormPage()
	page.failFill["bidPeriod"] = true
	page.failFill["days"] = true
	b := New(page, config.Config{AutoConfirm: true, ScreenshotDir: t.TempDir()})

	result := b.PlaceBid(context.Background(), "https://x.test/projects/go/p1", testBid())
	require.True(t, result.Submitted, "a missing field is a warning, not a failure")
}

func TestPlaceBid_ConfirmationDeclined(t *testing.T) {
	page := newFormPage()
	b := New(page, config.Config{})
	b.confirm = func(string) bool { return false }

	result := b.PlaceBid(context.Background(), "https://x.test/projects/go/p1", testBid())
	require.True(t, result.Skipped)
	require.Equal(t, "declined at confirmation", result.Reason)
	require.NotContains(t, strings.Join(page.clicks, " "), "submit")
}

func TestPlaceBid_MilestonesDroppedWhenAddControlMissing(t *testing.T) {
	page := newFormPage()
	page.failClick["milestone"] = true
	b := New(page, config.Config{DryRun: true, ScreenshotDir: t.TempDir()})

	b.PlaceBid(context.Background(), "https://x.test/projects/go/p1", testBid())
	require.Equal(t, "175", page.fills[`input[name="milestoneAmount[0]"]`], "first row fills without the add control")
	require.NotContains(t, page.fills, `input[name="milestoneAmount[1]"]`, "remaining rows dropped")
}

func TestEditBid_FailsClosedWithoutEditControl(t *testing.T) {
	page := newFormPage()
	page.failClick["edit-bid"] = true
	b := New(page, config.Config{})

	result := b.EditBid(context.Background(), "https://x.test/projects/go/p1", 400, "", false, 500)
	require.False(t, result.Submitted)
	require.Equal(t, "edit control not found", result.Reason)
	require.Empty(t, page.fills, "nothing filled when the form never opened")
}

func TestEditBid_DryRun(t *testing.T) {
	page := newFormPage()
	b := New(page, config.Config{})

	result := b.EditBid(context.Background(), "https://x.test/projects/go/p1", 400, "", true, 500)
	require.False(t, result.Submitted)
	require.Equal(t, "dry run — not saved", result.Reason)
	require.Empty(t, page.fills)
}

func TestEditBid_RescalesMilestoneInputs(t *testing.T) {
	page := newFormPage()
	page.inputValues[`input[name="milestoneAmount[0]"]`] = "350"
	page.inputValues[`input[name="milestoneAmount[1]"]`] = "450"
	page.inputValues[`input[name="milestoneAmount[2]"]`] = "200"
	b := New(page, config.Config{ScreenshotDir: t.TempDir()})

	result := b.EditBid(context.Background(), "https://x.test/projects/go/p1", 900, "", false, 1000)
	require.True(t, result.Submitted)
	require.Equal(t, "315", page.fills[`input[name="milestoneAmount[0]"]`])
	require.Equal(t, "405", page.fills[`input[name="milestoneAmount[1]"]`])
	require.Equal(t, "180", page.fills[`input[name="milestoneAmount[2]"]`])
}

func TestRescaleMilestones(t *testing.T) {
	cases := []struct {
		name    string
		amounts []float64
		ratio   float64
		target  float64
		want    []float64
	}{
		{"clean scale", []float64{350, 450, 200}, 0.9, 900, []float64{315, 405, 180}},
		{"rounding pushed to last", []float64{333, 333, 334}, 0.85, 850, []float64{283, 283, 284}},
		{"tiny amounts floor at one", []float64{2, 2, 996}, 0.1, 100, []float64{1, 1, 98}},
		{"last never below one", []float64{999, 1}, 0.5, 100, []float64{500, 1}},
	}
	for _, c := range cases {
		got := RescaleMilestones(c.amounts, c.ratio, c.target)
		require.Equal(t, c.want, got, c.name)
	}
}

func TestRescaleMilestones_SumMatchesTarget(t *testing.T) {
	got := RescaleMilestones([]float64{100, 250, 333}, 0.77, 526)
	var sum float64
	for _, v := range got {
		sum += v
	}
	require.Equal(t, 526.0, sum)
}
