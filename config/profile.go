package config

import (
	"encoding/json"
	"fmt"
	"os"
)

// Profile describes the freelancer the bot bids on behalf of. Loaded once at
// startup and never mutated during a run.
type Profile struct {
	Name                 string   `json:"name"`
	Skills               []string `json:"skills"`
	Experience           string   `json:"experience"`
	PortfolioLinks       []string `json:"portfolioLinks,omitempty"`
	HourlyRateUSD        float64  `json:"hourlyRateUSD"`
	MinBidUSD            float64  `json:"minBidUSD"`
	MaxBidUSD            float64  `json:"maxBidUSD"`
	DefaultDaysToDeliver int      `json:"defaultDaysToDeliver"`
}

// LoadProfile reads and validates the profile JSON at path.
func LoadProfile(path string) (*Profile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read profile %s: %w", path, err)
	}

	var p Profile
	if err := json.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("parse profile %s: %w", path, err)
	}

	if len(p.Skills) == 0 {
		return nil, fmt.Errorf("profile %s: skills must not be empty", path)
	}
	if p.DefaultDaysToDeliver <= 0 {
		p.DefaultDaysToDeliver = 7
	}
	return &p, nil
}
