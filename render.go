package certify

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/launcher/flags"
	"github.com/go-rod/rod/lib/proto"
)

// pdfConverter abstracts HTML to PDF conversion to allow different backends.
type pdfConverter interface {
	ToPDF(ctx context.Context, htmlContent string) ([]byte, error)
	Close() error
}

// renderSession is one live browser engine. A session is obtained per
// invocation and must be released before the invocation returns.
type renderSession interface {
	render(ctx context.Context, htmlContent string) ([]byte, error)
	release()
}

// Compile-time interface checks
var (
	_ pdfConverter  = (*rodConverter)(nil)
	_ renderSession = (*rodSession)(nil)
)

// A4 page dimensions in inches.
const (
	paperWidthInches  = 8.27
	paperHeightInches = 11.69
)

// browserBinEnv overrides browser executable resolution in the packaged
// profile (Docker/serverless images with a pre-installed browser).
const browserBinEnv = "CERTIFY_BROWSER_BIN"

// localLaunchFlags disable sandboxing for unprivileged local execution.
// The packaged profile relies on launcher defaults instead.
var localLaunchFlags = []string{
	"disable-gpu",
	"disable-dev-shm-usage",
	"disable-setuid-sandbox",
	"no-first-run",
	"no-sandbox",
	"no-zygote",
	"single-process",
}

// launchConfig selects browser startup parameters. Resolved once at
// converter construction, not per render.
type launchConfig struct {
	profile LaunchProfile
	bin     string // explicit executable path, optional
}

// buildLauncher constructs the rod launcher for the configured profile.
// Dispatch runs on the normalized value, so any case variant that passes
// Validate selects the same flag set. Both profiles yield identical page
// layout; only process setup differs.
func buildLauncher(cfg launchConfig) *launcher.Launcher {
	l := launcher.New().Headless(true)

	switch cfg.profile.normalized() {
	case ProfileLocal:
		for _, f := range localLaunchFlags {
			l = l.Set(flags.Flag(f))
		}
	default: // ProfilePackaged
		if bin := resolveBrowserBin(cfg.bin); bin != "" {
			l = l.Bin(bin)
		}
	}

	return l
}

// resolveBrowserBin picks the browser executable for the packaged profile:
// explicit config, then environment, then system lookup. An empty result
// lets rod fall back to its managed browser download.
func resolveBrowserBin(explicit string) string {
	if explicit != "" {
		return explicit
	}
	if bin := os.Getenv(browserBinEnv); bin != "" {
		return bin
	}
	if bin, ok := launcher.LookPath(); ok {
		return bin
	}
	return ""
}

// rodConverter converts HTML to PDF using headless Chromium via go-rod.
// Engines are short-lived: one browser process is launched per ToPDF call
// and always released before the call returns, matching the serverless
// execution lifetime of the pipeline.
type rodConverter struct {
	cfg     launchConfig
	timeout time.Duration

	// open acquires a render session. Test seam; production sessions
	// launch a real browser via openBrowser.
	open func(ctx context.Context) (renderSession, error)
}

// newRodConverter creates a rodConverter with the given launch config.
func newRodConverter(cfg launchConfig, timeout time.Duration) *rodConverter {
	c := &rodConverter{cfg: cfg, timeout: timeout}
	c.open = c.openBrowser
	return c
}

// ToPDF renders the HTML string to paginated PDF bytes. The converter
// timeout bounds the whole invocation, browser launch included; the session
// is torn down on every exit path.
func (c *rodConverter) ToPDF(ctx context.Context, htmlContent string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	sess, err := c.open(ctx)
	if err != nil {
		return nil, err
	}
	defer sess.release()

	return sess.render(ctx, htmlContent)
}

// openBrowser launches and connects a headless browser bound to ctx, so a
// hung launch or connect is cut off by the invocation deadline.
func (c *rodConverter) openBrowser(ctx context.Context) (renderSession, error) {
	l := buildLauncher(c.cfg).Context(ctx)
	u, err := l.Launch()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBrowserLaunch, err)
	}

	browser := rod.New().ControlURL(u).Context(ctx)
	if err := browser.Connect(); err != nil {
		releaseBrowser(nil, l)
		return nil, fmt.Errorf("%w: %v", ErrBrowserConnect, err)
	}

	return &rodSession{browser: browser, launcher: l}, nil
}

// Close is a no-op: the converter holds no browser between invocations.
func (c *rodConverter) Close() error {
	return nil
}

// rodSession drives one launched browser process.
type rodSession struct {
	browser  *rod.Browser
	launcher *launcher.Launcher
}

// render sets the content directly into a fresh page, no network navigation
// happens, and exports the paginated PDF.
func (s *rodSession) render(ctx context.Context, htmlContent string) ([]byte, error) {
	page, err := s.browser.Page(proto.TargetCreateTarget{})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPageCreate, err)
	}
	defer page.Close()

	if err := page.SetDocumentContent(htmlContent); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrContentSet, err)
	}

	if deadline, ok := ctx.Deadline(); ok {
		remaining := time.Until(deadline)
		if remaining <= 0 {
			return nil, context.DeadlineExceeded
		}
		page = page.Timeout(remaining)
	}

	if err := page.WaitLoad(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrContentSet, err)
	}

	reader, err := page.PDF(printOptions())
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPDFExport, err)
	}

	pdfBuf, err := io.ReadAll(reader)
	if err != nil {
		return nil, fmt.Errorf("%w: reading PDF stream: %v", ErrPDFExport, err)
	}

	return pdfBuf, nil
}

// release tears the engine down unconditionally.
func (s *rodSession) release() {
	releaseBrowser(s.browser, s.launcher)
}

// printOptions returns the fixed print parameters for certificates:
// A4 paper, landscape, printed backgrounds, CSS-declared page size
// preferred over the paper dimensions when the template sets one.
func printOptions() *proto.PagePrintToPDF {
	return &proto.PagePrintToPDF{
		Landscape:         true,
		PrintBackground:   true,
		PreferCSSPageSize: true,
		PaperWidth:        floatPtr(paperWidthInches),
		PaperHeight:       floatPtr(paperHeightInches),
		MarginTop:         floatPtr(0),
		MarginBottom:      floatPtr(0),
		MarginLeft:        floatPtr(0),
		MarginRight:       floatPtr(0),
	}
}

// releaseBrowser kills the browser process tree. browser may be nil when
// connect failed after a successful launch.
func releaseBrowser(browser *rod.Browser, l *launcher.Launcher) {
	if browser != nil {
		_ = browser.Close()
	}
	pid := l.PID()
	l.Kill()
	if pid > 0 {
		killProcessGroup(pid)
	}
}

// floatPtr returns a pointer to a float64 value.
func floatPtr(v float64) *float64 {
	return &v
}
