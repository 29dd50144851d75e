package crawl

import (
	"context"
	"fmt"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"
)

// Renderer fetches fully rendered page HTML for marketplaces that gate their
// plain HTTP endpoints behind JavaScript checks.
type Renderer interface {
	RenderHTML(ctx context.Context, pageURL string) (string, error)
	Close() error
}

// rodRenderer drives a headless Chromium via go-rod.
type rodRenderer struct {
	browser  *rod.Browser
	launcher *launcher.Launcher
}

// NewRodRenderer launches a headless browser for page rendering.
func NewRodRenderer() (Renderer, error) {
	l := launcher.New().
		Headless(true).
		NoSandbox(true)

	controlURL, err := l.Launch()
	if err != nil {
		return nil, fmt.Errorf("failed to launch browser: %w", err)
	}

	browser := rod.New().ControlURL(controlURL)
	if err := browser.Connect(); err != nil {
		l.Cleanup()
		return nil, fmt.Errorf("failed to connect to browser: %w", err)
	}

	return &rodRenderer{browser: browser, launcher: l}, nil
}

// RenderHTML loads the page, waits for the load event, and returns the
// rendered document.
func (r *rodRenderer) RenderHTML(ctx context.Context, pageURL string) (string, error) {
	page, err := r.browser.Page(proto.TargetCreateTarget{URL: pageURL})
	if err != nil {
		return "", fmt.Errorf("failed to open page: %w", err)
	}
	defer func() { _ = page.Close() }()

	page = page.Context(ctx)

	if err := page.WaitLoad(); err != nil {
		return "", fmt.Errorf("page load failed: %w", err)
	}

	html, err := page.HTML()
	if err != nil {
		return "", fmt.Errorf("failed to read page HTML: %w", err)
	}
	return html, nil
}

// Close shuts the browser down and cleans up the launcher.
func (r *rodRenderer) Close() error {
	err := r.browser.Close()
	r.launcher.Cleanup()
	return err
}
