package scraper

// CSS selectors used across the scraper.
// Centralising them makes future updates trivial.
const (
	// Search results page
	ListingCardSelector  = `.JobSearchCard-item`
	ListingTitleSelector = `.JobSearchCard-primary-heading-link`
	ListingDescSelector  = `.JobSearchCard-primary-description`
	ListingPriceSelector = `.JobSearchCard-secondary-price`
	ListingSkillSelector = `.JobSearchCard-primary-tagsLink`
	ListingTimeSelector  = `.JobSearchCard-primary-heading-days`

	// Detail page
	AverageBidSelector   = `.ProjectViewDetails-budget, .PageProjectViewLogout-projectInfo-byLine`
	DeliverablesSelector = `.PageProjectViewLogout-detail-deliverables li, .ProjectDescription-deliverables li`
	VerifiedBadgeSel     = `.ClientBadge--verified, .online-offline-indicator--verified, .IconVerified`
	ClientSectionSel     = `.AboutTheClient, .ClientInfoCard`
	ClientLocationSel    = `.AboutTheClient-location, .ClientInfoCard-location`
	ClientMemberSinceSel = `.AboutTheClient-memberSince, .ClientInfoCard-memberSince`

	// Proposals page
	BidCardSelector      = `.Bid-item, .ProposalCard`
	BidNameSelector      = `.Bid-name, .ProposalCard-name`
	BidRatingSelector    = `.Rating-value, .ProposalCard-rating`
	BidAmountSelector    = `.Bid-amount, .ProposalCard-amount`
	BidVerifiedBadgeSel  = `.Badge--verified, .IconVerified`
	BidPreferredBadgeSel = `.Badge--preferred, .PreferredFreelancerBadge`

	// Insights page
	InsightRowSelector    = `tr.InsightRow:not(.InsightRow--detail)`
	InsightTitleSelector  = `a.InsightRow-title, td a[href*="/projects/"]`
	InsightSealedBadgeSel = `.SealedBadge, .Icon--sealed`
	InsightRatingSelector = `.Rating-value`

	// Bid form
	BidAmountInput      = `input[name="bidAmount"], input#bidAmount`
	BidAmountInputAlt   = `input[type="number"]`
	BidPeriodInput      = `input[name="bidPeriod"], input#bidPeriod`
	BidPeriodInputAlt   = `input[placeholder*="days" i]`
	BidProposalInput    = `textarea[name="bidDescription"], textarea#bidDescription`
	BidProposalInputAlt = `textarea`
	BidSubmitButton     = `button[type="submit"], .BidForm-submit`
	AddMilestoneButton  = `.MilestoneForm-add, button[data-add-milestone]`
	EditBidButton       = `.BidCard-edit, button[data-edit-bid], a[href*="/edit-bid"]`
	SaveBidButton       = `button[type="submit"], .BidEditForm-save`
	ValidationErrorSel  = `.ValidationError, .FormError, [role="alert"]`
	PostSubmitErrorSel  = `.AlertBanner--error, .BidForm-error`
	ExistingBidSel      = `.BidCard--own, [data-own-bid], .YourBidCard`

	// Dashboard
	BidAllowanceSelector = `.BidAllowance, [data-bids-remaining]`
)

// Milestone row inputs are indexed by position; format with the row number.
const (
	MilestoneDescInputFmt = `input[name="milestoneDescription[%d]"]`
	MilestoneAmtInputFmt  = `input[name="milestoneAmount[%d]"]`
)

// Full-description fallback chain, tried in order on the detail page.
var detailDescriptionSelectors = []string{
	`.ProjectDescription-text`,
	`.PageProjectViewLogout-detail-description`,
	`[data-project-description]`,
	`.project-description`,
}
