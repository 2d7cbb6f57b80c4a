package recommend

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRuleBasedEdit(t *testing.T) {
	cases := []struct {
		rank, total  int
		wantAmount   float64
		wantStrategy string
	}{
		{9, 10, 850, "aggressive"},   // 90% → 15% cut
		{6, 10, 900, "moderate"},     // 60% → 10% cut
		{3, 10, 950, "conservative"}, // 30% → 5% cut
		{0, 10, 850, "aggressive"},   // unknown = worst case
	}
	for _, c := range cases {
		s := ruleBasedEdit(1000, c.rank, c.total)
		require.Equal(t, c.wantAmount, s.SuggestedAmount, "rank %d of %d", c.rank, c.total)
		require.Equal(t, c.wantStrategy, s.Strategy, "rank %d of %d", c.rank, c.total)
	}
}

func TestSuggestBidEdit_NoGeneratorUsesRuleTable(t *testing.T) {
	e := NewEngine(nil, testProfile(), 0)

	// 80% position → 15% cut.
	s := e.SuggestBidEdit(context.Background(), "Project", 1000, "USD", 8, 10, "2 days")
	require.Equal(t, 850.0, s.SuggestedAmount)
	require.Equal(t, "aggressive", s.Strategy)

	// 60% position → 10% cut.
	s = e.SuggestBidEdit(context.Background(), "Project", 1000, "USD", 6, 10, "2 days")
	require.Equal(t, 900.0, s.SuggestedAmount)
	require.Equal(t, "moderate", s.Strategy)
}

func TestSuggestBidEdit_ModelResponse(t *testing.T) {
	gen := &stubGen{responses: []string{
		`Here is my suggestion: {"suggestedAmount": 880, "strategy": "whatever", "reasoning": "undercut the median"}`,
	}}
	e := NewEngine(gen, testProfile(), 0)

	s := e.SuggestBidEdit(context.Background(), "Project", 1000, "USD", 8, 10, "2 days")
	require.Equal(t, 880.0, s.SuggestedAmount)
	require.Equal(t, 12.0, s.ReductionPct)
	require.Equal(t, "moderate", s.Strategy, "strategy derives from the actual reduction, not the model's label")
	require.Equal(t, "undercut the median", s.Reasoning)
}

func TestSuggestBidEdit_ModelFailureFallsBack(t *testing.T) {
	cases := []*stubGen{
		{err: fmt.Errorf("api down")},
		{responses: []string{`no json here`}},
		{responses: []string{`{"suggestedAmount": 0}`}},
		{responses: []string{`{"suggestedAmount": -50}`}},
	}
	for _, gen := range cases {
		e := NewEngine(gen, testProfile(), 0)
		s := e.SuggestBidEdit(context.Background(), "Project", 1000, "USD", 9, 10, "")
		require.Equal(t, 850.0, s.SuggestedAmount, "falls back to the 15%% rule")
	}
}

func TestExtractJSONObject(t *testing.T) {
	cases := []struct {
		text string
		want string
	}{
		{`{"a": 1}`, `{"a": 1}`},
		{`prose before {"a": {"b": 2}} prose after`, `{"a": {"b": 2}}`},
		{`{"s": "brace in string: { }"}`, `{"s": "brace in string: { }"}`},
		{`{"s": "escaped quote: \" }"}`, `{"s": "escaped quote: \" }"}`},
		{`{"unclosed": 1`, ""},
		{`no braces at all`, ""},
	}
	for _, c := range cases {
		require.Equal(t, c.want, extractJSONObject(c.text), "text: %s", c.text)
	}
}
