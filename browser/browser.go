// Package browser owns the single Chrome session the whole run shares: the
// exec allocator, the tab context, cookie persistence and the login probe.
package browser

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/chromedp/cdproto/cdp"
	"github.com/chromedp/cdproto/network"
	"github.com/chromedp/chromedp"

	"github.com/Peerapatfc/freelancer-auto-bid/config"
)

// Session wraps one allocator + one tab. All page operations run in the tab;
// nothing in the design supports a second concurrent page.
type Session struct {
	tabCtx      context.Context
	cancelTab   context.CancelFunc
	cancelAlloc context.CancelFunc
	sessionPath string
	pageTimeout time.Duration
}

// NewSession launches Chrome and opens a single tab. Cookies from
// cfg.SessionPath are restored when the file exists.
func NewSession(parent context.Context, cfg config.Config) (*Session, error) {
	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", cfg.Headless),
		chromedp.Flag("no-sandbox", true),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("disable-blink-features", "AutomationControlled"),
		chromedp.UserAgent(cfg.UserAgent),
		chromedp.WindowSize(1440, 900),
	)

	allocCtx, cancelAlloc := chromedp.NewExecAllocator(parent, opts...)
	tabCtx, cancelTab := chromedp.NewContext(allocCtx)

	s := &Session{
		tabCtx:      tabCtx,
		cancelTab:   cancelTab,
		cancelAlloc: cancelAlloc,
		sessionPath: cfg.SessionPath,
		pageTimeout: cfg.PageTimeout,
	}

	// Start the browser process before cookies are set.
	if err := chromedp.Run(tabCtx); err != nil {
		s.Close()
		return nil, fmt.Errorf("start browser: %w", err)
	}

	if err := s.restoreCookies(); err != nil {
		// A missing or stale session file is not fatal — the run continues
		// logged out and the login probe reports it.
		fmt.Fprintf(os.Stderr, "session restore: %v\n", err)
	}

	return s, nil
}

// Close saves cookies, then tears down the tab and the browser process.
// Safe to call exactly once from a deferred cleanup.
func (s *Session) Close() {
	if s.tabCtx != nil {
		if err := s.saveCookies(); err != nil {
			fmt.Fprintf(os.Stderr, "session save: %v\n", err)
		}
	}
	if s.cancelTab != nil {
		s.cancelTab()
	}
	if s.cancelAlloc != nil {
		s.cancelAlloc()
	}
}

// loggedInMarkerSel identifies an authenticated page. Lives here rather than
// with the scraper selectors because scraper already depends on this package.
const loggedInMarkerSel = `[data-logged-in="true"], .UserProfileMenu, a[href*="/logout"]`

// IsLoggedIn probes the current page for a logged-in marker.
func (s *Session) IsLoggedIn(ctx context.Context) bool {
	ok, err := s.Exists(ctx, loggedInMarkerSel)
	return err == nil && ok
}

// ── Page implementation ───────────────────────────────────────────────────────

func (s *Session) Navigate(ctx context.Context, url string, settle time.Duration) error {
	return s.run(ctx,
		chromedp.Navigate(url),
		chromedp.WaitVisible("body", chromedp.ByQuery),
		chromedp.Sleep(settle),
	)
}

func (s *Session) Location(ctx context.Context) (string, error) {
	var url string
	err := s.run(ctx, chromedp.Location(&url))
	return url, err
}

func (s *Session) HTML(ctx context.Context, selector string) (string, error) {
	var html string
	js := fmt.Sprintf(`(() => {
		const el = document.querySelector(%q);
		return el ? el.outerHTML : '';
	})()`, selector)
	if err := s.run(ctx, chromedp.Evaluate(js, &html)); err != nil {
		return "", fmt.Errorf("html %q: %w", selector, err)
	}
	return html, nil
}

func (s *Session) Text(ctx context.Context, selector string) (string, error) {
	var text string
	js := fmt.Sprintf(`(() => {
		const el = document.querySelector(%q);
		if (!el) return '';
		if (el.value !== undefined && el.value !== null) return String(el.value).trim();
		return (el.innerText || '').trim();
	})()`, selector)
	if err := s.run(ctx, chromedp.Evaluate(js, &text)); err != nil {
		return "", fmt.Errorf("text %q: %w", selector, err)
	}
	return text, nil
}

func (s *Session) Exists(ctx context.Context, selector string) (bool, error) {
	var found bool
	js := fmt.Sprintf(`document.querySelector(%q) !== null`, selector)
	if err := s.run(ctx, chromedp.Evaluate(js, &found)); err != nil {
		return false, fmt.Errorf("exists %q: %w", selector, err)
	}
	return found, nil
}

func (s *Session) Click(ctx context.Context, selector string) error {
	return s.run(ctx,
		chromedp.WaitVisible(selector, chromedp.ByQuery),
		chromedp.Click(selector, chromedp.ByQuery),
	)
}

func (s *Session) Fill(ctx context.Context, selector, value string) error {
	return s.run(ctx,
		chromedp.WaitVisible(selector, chromedp.ByQuery),
		chromedp.SetValue(selector, value, chromedp.ByQuery),
	)
}

func (s *Session) Screenshot(ctx context.Context, path string) error {
	var buf []byte
	if err := s.run(ctx, chromedp.CaptureScreenshot(&buf)); err != nil {
		return fmt.Errorf("capture screenshot: %w", err)
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("screenshot dir: %w", err)
		}
	}
	if err := os.WriteFile(path, buf, 0o644); err != nil {
		return fmt.Errorf("write screenshot %s: %w", path, err)
	}
	return nil
}

// run executes actions in the tab, bounded by the sooner of the caller's
// deadline and the per-operation page timeout. A hung navigation therefore
// costs at most pageTimeout, never the whole run budget.
func (s *Session) run(ctx context.Context, actions ...chromedp.Action) error {
	runCtx := s.tabCtx
	if deadline, ok := opDeadline(ctx, s.pageTimeout, time.Now()); ok {
		var cancel context.CancelFunc
		runCtx, cancel = context.WithDeadline(s.tabCtx, deadline)
		defer cancel()
	}
	return chromedp.Run(runCtx, actions...)
}

// opDeadline picks the deadline for one page operation. Zero pageTimeout
// defers entirely to the caller's context.
func opDeadline(ctx context.Context, pageTimeout time.Duration, now time.Time) (time.Time, bool) {
	callerDeadline, hasCaller := ctx.Deadline()
	if pageTimeout <= 0 {
		return callerDeadline, hasCaller
	}
	opLimit := now.Add(pageTimeout)
	if hasCaller && callerDeadline.Before(opLimit) {
		return callerDeadline, true
	}
	return opLimit, true
}

// ── Cookie persistence ────────────────────────────────────────────────────────

type storedCookie struct {
	Name     string  `json:"name"`
	Value    string  `json:"value"`
	Domain   string  `json:"domain"`
	Path     string  `json:"path"`
	Expires  float64 `json:"expires"`
	Secure   bool    `json:"secure"`
	HTTPOnly bool    `json:"httpOnly"`
}

func (s *Session) saveCookies() error {
	var cookies []*network.Cookie
	err := chromedp.Run(s.tabCtx, chromedp.ActionFunc(func(ctx context.Context) error {
		var err error
		cookies, err = network.GetCookies().Do(ctx)
		return err
	}))
	if err != nil {
		return fmt.Errorf("get cookies: %w", err)
	}

	stored := make([]storedCookie, 0, len(cookies))
	for _, c := range cookies {
		stored = append(stored, storedCookie{
			Name:     c.Name,
			Value:    c.Value,
			Domain:   c.Domain,
			Path:     c.Path,
			Expires:  c.Expires,
			Secure:   c.Secure,
			HTTPOnly: c.HTTPOnly,
		})
	}
	return writeJSONFile(s.sessionPath, stored)
}

func (s *Session) restoreCookies() error {
	stored, err := readCookieFile(s.sessionPath)
	if err != nil {
		return err
	}
	if len(stored) == 0 {
		return nil
	}

	return chromedp.Run(s.tabCtx, chromedp.ActionFunc(func(ctx context.Context) error {
		for _, c := range stored {
			expires := cdp.TimeSinceEpoch(time.Unix(int64(c.Expires), 0))
			err := network.SetCookie(c.Name, c.Value).
				WithDomain(c.Domain).
				WithPath(c.Path).
				WithSecure(c.Secure).
				WithHTTPOnly(c.HTTPOnly).
				WithExpires(&expires).
				Do(ctx)
			if err != nil {
				return fmt.Errorf("set cookie %s: %w", c.Name, err)
			}
		}
		return nil
	}))
}

// Slug turns a title into a filesystem-safe screenshot name fragment.
func Slug(s string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(s) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
		case r == ' ' || r == '-' || r == '_':
			b.WriteRune('_')
		}
	}
	out := b.String()
	if len(out) > 40 {
		out = out[:40]
	}
	if out == "" {
		out = "bid"
	}
	return out
}
