package recommend

import (
	"context"
	"fmt"
	"strings"

	"github.com/Peerapatfc/freelancer-auto-bid/config"
	"github.com/Peerapatfc/freelancer-auto-bid/llm"
	"github.com/Peerapatfc/freelancer-auto-bid/models"
)

// GenerateProposal writes the cover letter with the model. Callers fall back
// to TemplateProposal on any error.
func (e *Engine) GenerateProposal(ctx context.Context, p models.Project) (string, error) {
	if e.gen == nil {
		return "", fmt.Errorf("no generator configured")
	}
	raw, err := e.gen.Generate(ctx, buildProposalPrompt(e.profile, p))
	if err != nil {
		return "", err
	}
	text := strings.TrimSpace(llm.StripCodeFence(raw))
	if text == "" {
		return "", fmt.Errorf("empty proposal")
	}
	return text, nil
}

// TemplateProposal renders a proposal from the profile without the model —
// the -ai=false path and the degradation target when generation fails.
func TemplateProposal(profile *config.Profile, p models.Project) string {
	relevant := matchingSkills(profile.Skills, p.Skills)
	if len(relevant) == 0 {
		relevant = profile.Skills
	}
	if len(relevant) > 4 {
		relevant = relevant[:4]
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Hi, I read through \"%s\" and it lines up well with my background in %s.\n\n",
		p.Title, strings.Join(relevant, ", "))
	if profile.Experience != "" {
		fmt.Fprintf(&b, "%s\n\n", profile.Experience)
	}
	if len(profile.PortfolioLinks) > 0 {
		fmt.Fprintf(&b, "Recent work: %s\n\n", strings.Join(profile.PortfolioLinks, " "))
	}
	b.WriteString("I can start right away and will keep you updated at every milestone. Happy to discuss details before you commit.")
	return b.String()
}

func matchingSkills(mine, wanted []string) []string {
	wantedSet := make(map[string]bool, len(wanted))
	for _, s := range wanted {
		wantedSet[strings.ToLower(s)] = true
	}
	var out []string
	for _, s := range mine {
		if wantedSet[strings.ToLower(s)] {
			out = append(out, s)
		}
	}
	return out
}
