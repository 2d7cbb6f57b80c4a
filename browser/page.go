package browser

import (
	"context"
	"time"
)

// Page is the narrow page-automation capability the rest of the system
// depends on. Parsers and the bid filler take a Page so tests can substitute
// a fixture-backed fake instead of a live Chrome tab.
type Page interface {
	// Navigate loads url, waits for the body, then sleeps settle to let
	// dynamic content render.
	Navigate(ctx context.Context, url string, settle time.Duration) error

	// Location returns the current page URL.
	Location(ctx context.Context) (string, error)

	// HTML returns the outer HTML of the first element matching selector,
	// or "" when nothing matches. Selector "html" snapshots the document.
	HTML(ctx context.Context, selector string) (string, error)

	// Text returns the trimmed inner text of the first match, or "".
	// Form inputs report their current value instead.
	Text(ctx context.Context, selector string) (string, error)

	// Exists reports whether any element matches selector.
	Exists(ctx context.Context, selector string) (bool, error)

	// Click clicks the first element matching selector.
	Click(ctx context.Context, selector string) error

	// Fill overwrites the value of the first matching input/textarea.
	Fill(ctx context.Context, selector, value string) error

	// Screenshot captures the viewport to path.
	Screenshot(ctx context.Context, path string) error
}
