package scraper

import (
	"context"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/playwright-community/playwright-go"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"nyc_buildings/config"
	"nyc_buildings/extract"
	"nyc_buildings/identity"
	"nyc_buildings/models"
)

const (
	userAgent       = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"
	footprintCanvas = "canvas.mapboxgl-canvas"
)

// BrowserProvider renders MarketProof pages in Chromium via playwright. It
// keeps one page open so the footprint can be captured from the view that
// was fetched last.
type BrowserProvider struct {
	cfg    config.BrowserConfig
	debug  DebugSink
	logger *zap.Logger
	now    func() time.Time

	mu          sync.Mutex
	pw          *playwright.Playwright
	browser     playwright.Browser
	context     playwright.BrowserContext
	page        playwright.Page
	initialized bool
}

func NewBrowserProvider(cfg config.BrowserConfig, debug DebugSink, logger *zap.Logger) *BrowserProvider {
	if debug == nil {
		debug = NopDebugSink{}
	}
	if logger == nil {
		logger = zap.L()
	}
	return &BrowserProvider{cfg: cfg, debug: debug, logger: logger, now: time.Now}
}

func (b *BrowserProvider) ensureBrowser() error {
	if b.initialized {
		return nil
	}

	var err error
	b.pw, err = playwright.Run()
	if err != nil {
		return eris.Wrap(err, "browser: start playwright")
	}

	b.browser, err = b.pw.Chromium.Launch(playwright.BrowserTypeLaunchOptions{
		Headless: playwright.Bool(b.cfg.Headless),
		Args: []string{
			"--disable-blink-features=AutomationControlled",
			"--disable-dev-shm-usage",
			"--no-sandbox",
		},
	})
	if err != nil {
		b.pw.Stop()
		return eris.Wrap(err, "browser: launch chromium")
	}

	b.context, err = b.browser.NewContext(playwright.BrowserNewContextOptions{
		UserAgent: playwright.String(userAgent),
		Viewport:  &playwright.Size{Width: 1920, Height: 1080},
	})
	if err != nil {
		b.browser.Close()
		b.pw.Stop()
		return eris.Wrap(err, "browser: new context")
	}

	b.page, err = b.context.NewPage()
	if err != nil {
		b.browser.Close()
		b.pw.Stop()
		return eris.Wrap(err, "browser: new page")
	}

	b.initialized = true
	return nil
}

// Close shuts the browser down. It is safe to call more than once.
func (b *BrowserProvider) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.page != nil {
		b.page.Close()
		b.page = nil
	}
	if b.context != nil {
		b.context.Close()
		b.context = nil
	}
	if b.browser != nil {
		b.browser.Close()
		b.browser = nil
	}
	if b.pw != nil {
		b.pw.Stop()
		b.pw = nil
	}
	b.initialized = false
}

// FetchView navigates to the requested tab of pageURL and reads the body
// text, first h1 and every div's text.
func (b *BrowserProvider) FetchView(ctx context.Context, pageURL string, kind models.ViewKind) (*extract.View, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := b.ensureBrowser(); err != nil {
		return nil, err
	}

	tabURL := identity.TabURL(pageURL, string(kind))
	b.logger.Info("browser: navigating", zap.String("view", string(kind)), zap.String("url", tabURL))

	_, err := b.page.Goto(tabURL, playwright.PageGotoOptions{
		Timeout:   playwright.Float(float64(b.cfg.NavigationTimeout.Milliseconds())),
		WaitUntil: playwright.WaitUntilStateDomcontentloaded,
	})
	if err != nil {
		if !onTab(b.page.URL(), kind) {
			b.saveDebug(kind)
			return nil, eris.Wrapf(ErrNoPage, "browser: navigate to %s: %v", tabURL, err)
		}
		b.logger.Warn("browser: navigation error (continuing)", zap.Error(err))
	}
	b.page.WaitForTimeout(float64(b.cfg.PageWait.Milliseconds()))

	body, err := b.page.Locator("body").InnerText()
	if err != nil {
		b.saveDebug(kind)
		return nil, eris.Wrapf(ErrNoPage, "browser: read body of %s: %v", tabURL, err)
	}

	view := &extract.View{
		Kind:    kind,
		URL:     b.page.URL(),
		Text:    body,
		Heading: b.firstText("h1"),
	}
	if kind == models.ViewOverview {
		blocks, err := b.page.Locator("div").AllInnerTexts()
		if err != nil {
			b.logger.Warn("browser: read div texts", zap.Error(err))
		}
		view.Blocks = blocks
	}

	b.saveDebug(kind)
	return view, nil
}

// onTab reports whether current is a page URL showing the kind tab. A failed
// navigation usually leaves Chromium on its own error page.
func onTab(current string, kind models.ViewKind) bool {
	u, err := url.Parse(current)
	if err != nil || u.Scheme == "chrome-error" {
		return false
	}
	return u.Query().Get("tab") == string(kind)
}

func (b *BrowserProvider) firstText(selector string) string {
	loc := b.page.Locator(selector)
	if n, err := loc.Count(); err != nil || n == 0 {
		return ""
	}
	text, err := loc.First().InnerText()
	if err != nil {
		return ""
	}
	return strings.TrimSpace(text)
}

func (b *BrowserProvider) saveDebug(kind models.ViewKind) {
	if _, ok := b.debug.(NopDebugSink); ok {
		return
	}
	content, _ := b.page.Content()
	shot, _ := b.page.Screenshot(playwright.PageScreenshotOptions{FullPage: playwright.Bool(true)})
	if err := b.debug.SavePage(kind, []byte(content), shot); err != nil {
		b.logger.Warn("browser: could not save debug artifacts", zap.Error(err))
	}
}

// CaptureFootprint screenshots the map canvas of the current page, crops off
// the map controls strip and writes the PNG under dir.
func (b *BrowserProvider) CaptureFootprint(ctx context.Context, dir string) (string, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return "", err
	}
	if !b.initialized {
		return "", eris.Wrap(ErrNoPage, "browser: no page open")
	}

	b.page.WaitForTimeout(float64(b.cfg.MapWait.Milliseconds()))

	canvas := b.page.Locator(footprintCanvas)
	if n, err := canvas.Count(); err != nil || n == 0 {
		return "", eris.Errorf("browser: no map canvas (%s) on page", footprintCanvas)
	}

	shot, err := canvas.First().Screenshot()
	if err != nil {
		return "", eris.Wrap(err, "browser: screenshot canvas")
	}
	b.logger.Info("browser: captured footprint screenshot", zap.Int("bytes", len(shot)))

	return SaveFootprint(shot, b.cfg.FootprintCropPx, dir, b.now())
}
