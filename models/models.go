package models

// Budget holds a project's parsed budget range. Min and Max are both zero when
// the budget text could not be parsed.
type Budget struct {
	Min      float64 `json:"min"`
	Max      float64 `json:"max"`
	Currency string  `json:"currency"`
	MinUSD   float64 `json:"minUSD"`
	MaxUSD   float64 `json:"maxUSD"`
	IsHourly bool    `json:"isHourly"`
}

// ClientInfo holds the optional "about the client" block from a detail page.
type ClientInfo struct {
	Location    string `json:"location,omitempty"`
	MemberSince string `json:"memberSince,omitempty"`
	Verified    bool   `json:"verified"`
}

// CompetitorBid is a single rival bid attached to a project snapshot.
type CompetitorBid struct {
	FreelancerName string  `json:"freelancerName"`
	Rating         float64 `json:"rating"`
	ReviewCount    int     `json:"reviewCount"`
	CompletionRate float64 `json:"completionRate"`
	BidAmount      float64 `json:"bidAmount"`
	Currency       string  `json:"currency"`
	DeliveryDays   int     `json:"deliveryDays"`
	Verified       bool    `json:"verified"`
	Preferred      bool    `json:"preferred"`
}

// Project is a marketplace listing. Created by the listing parser and
// enriched in place by the detail parser — enrichment only adds fields.
type Project struct {
	ID              string          `json:"id"`
	Title           string          `json:"title"`
	Description     string          `json:"description"`
	FullDescription string          `json:"fullDescription,omitempty"`
	BudgetText      string          `json:"budgetText"`
	Budget          Budget          `json:"budget"`
	Skills          []string        `json:"skills"`
	BidCount        int             `json:"bidCount"`
	AverageBid      float64         `json:"averageBid,omitempty"`
	ClientRating    float64         `json:"clientRating"`
	ClientInfo      *ClientInfo     `json:"clientInfo,omitempty"`
	Deliverables    []string        `json:"deliverables,omitempty"`
	CompetitorBids  []CompetitorBid `json:"competitorBids,omitempty"`
	PostedTime      string          `json:"postedTime"`
	URL             string          `json:"url"`
}

// Milestone is a partial payment tied to a deliverable phase of one bid.
type Milestone struct {
	Description string  `json:"description"`
	Amount      float64 `json:"amount"`
}

// BidSuggestion is the engine's proposed bid for a project.
type BidSuggestion struct {
	Amount     float64     `json:"amount"`
	AmountUSD  float64     `json:"amountUSD"`
	Period     int         `json:"period"`
	Milestones []Milestone `json:"milestones,omitempty"`
}

// ProjectScore pairs a project with its 0–100 match score and bid suggestion.
// Sum of milestone amounts always equals Suggestion.Amount.
type ProjectScore struct {
	Project    Project       `json:"project"`
	Score      float64       `json:"score"`
	Reasoning  string        `json:"reasoning"`
	Suggestion BidSuggestion `json:"bidSuggestion"`
}

// BidData is the payload submitted to the bid form. Constructed per-submission.
type BidData struct {
	ProjectID  string      `json:"projectId"`
	Amount     float64     `json:"amount"`
	Currency   string      `json:"currency"`
	Period     int         `json:"period"`
	Proposal   string      `json:"proposal"`
	Milestones []Milestone `json:"milestones,omitempty"`
}

// BidResult reports what happened to one submission attempt.
type BidResult struct {
	ProjectID  string `json:"projectId"`
	Submitted  bool   `json:"submitted"`
	Skipped    bool   `json:"skipped"`
	Reason     string `json:"reason,omitempty"`
	Screenshot string `json:"screenshot,omitempty"`
}

// Bid insight status values. Won and Lost exist for completeness but the
// insights page never exposes outcomes, so the parser only ever assigns
// Active or Sealed.
const (
	BidStatusActive = "active"
	BidStatusSealed = "sealed"
	BidStatusWon    = "won"
	BidStatusLost   = "lost"
)

// BidInsight is one of the user's outstanding bids as observed on the
// insights page. Rank and TotalBids are a point-in-time snapshot.
type BidInsight struct {
	ProjectTitle  string  `json:"projectTitle"`
	ProjectURL    string  `json:"projectUrl"`
	TimeRemaining string  `json:"timeRemaining"`
	Rank          int     `json:"rank"`
	TotalBids     int     `json:"totalBids"`
	BidAmount     float64 `json:"bidAmount"`
	Currency      string  `json:"currency"`
	Status        string  `json:"status"`
	ClientCountry string  `json:"clientCountry,omitempty"`
	ClientRating  float64 `json:"clientRating"`
}

// CompetitionStats summarises the user's outstanding bids.
// WinRate is the fraction of sealed bids, not confirmed wins — the insights
// page hides outcomes, so sealed is the only proxy signal available.
type CompetitionStats struct {
	AvgRank      int     `json:"avgRank"`
	SealedCount  int     `json:"sealedCount"`
	AvgTotalBids float64 `json:"avgTotalBids"`
	WinRate      float64 `json:"winRate"`
}

// BidEditSuggestion is the recommended adjustment for an existing bid.
type BidEditSuggestion struct {
	SuggestedAmount float64 `json:"suggestedAmount"`
	ReductionPct    float64 `json:"reductionPercent"`
	Strategy        string  `json:"strategy"` // aggressive, moderate, conservative
	Reasoning       string  `json:"reasoning,omitempty"`
}
