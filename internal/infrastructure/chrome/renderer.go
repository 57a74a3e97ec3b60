// Package chrome prints HTML documents to PDF with headless Chrome.
package chrome

import (
	"context"
	"fmt"
	"sync"

	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/chromedp"
)

// A4 in inches with half-inch margins.
const (
	paperWidth  = 8.27
	paperHeight = 11.69
	margin      = 0.5
)

// Renderer shares one headless browser across calls and prints each document
// in its own tab. The browser starts on first use and exits when the context
// given to NewRenderer is done. A browser that fails is replaced on the next call.
type Renderer struct {
	parent   context.Context
	execPath string

	mu      sync.Mutex
	browser context.Context
	cancel  context.CancelFunc
}

func NewRenderer(ctx context.Context, execPath string) *Renderer {
	return &Renderer{parent: ctx, execPath: execPath}
}

func (r *Renderer) allocatorOptions() []chromedp.ExecAllocatorOption {
	opts := append([]chromedp.ExecAllocatorOption{}, chromedp.DefaultExecAllocatorOptions[:]...)
	opts = append(opts, chromedp.NoSandbox, chromedp.DisableGPU)
	if r.execPath != "" {
		opts = append(opts, chromedp.ExecPath(r.execPath))
	}
	return opts
}

// browserContext returns the live browser, starting one if needed.
func (r *Renderer) browserContext() (context.Context, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.browser != nil && r.browser.Err() == nil {
		return r.browser, nil
	}
	if err := r.parent.Err(); err != nil {
		return nil, fmt.Errorf("start chrome: %w", err)
	}

	allocCtx, cancelAlloc := chromedp.NewExecAllocator(r.parent, r.allocatorOptions()...)
	browserCtx, cancelBrowser := chromedp.NewContext(allocCtx)
	if err := chromedp.Run(browserCtx); err != nil {
		cancelBrowser()
		cancelAlloc()
		return nil, fmt.Errorf("start chrome: %w", err)
	}
	r.browser = browserCtx
	r.cancel = func() {
		cancelBrowser()
		cancelAlloc()
	}
	return browserCtx, nil
}

// discard shuts down b if it is still the current browser.
func (r *Renderer) discard(b context.Context) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.browser != b {
		return
	}
	r.cancel()
	r.browser, r.cancel = nil, nil
}

// Close stops the browser. Later calls start a new one.
func (r *Renderer) Close() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.cancel != nil {
		r.cancel()
	}
	r.browser, r.cancel = nil, nil
}

// RenderPDF loads html into a new tab and prints it. Cancelling ctx closes the tab.
func (r *Renderer) RenderPDF(ctx context.Context, html string) ([]byte, error) {
	browser, err := r.browserContext()
	if err != nil {
		return nil, err
	}
	tabCtx, cancelTab := chromedp.NewContext(browser)
	defer cancelTab()
	stop := context.AfterFunc(ctx, cancelTab)
	defer stop()

	var buf []byte
	err = chromedp.Run(tabCtx,
		chromedp.Navigate("about:blank"),
		chromedp.ActionFunc(func(ctx context.Context) error {
			tree, err := page.GetFrameTree().Do(ctx)
			if err != nil {
				return err
			}
			return page.SetDocumentContent(tree.Frame.ID, html).Do(ctx)
		}),
		chromedp.WaitReady("body", chromedp.ByQuery),
		chromedp.ActionFunc(func(ctx context.Context) error {
			var err error
			buf, _, err = page.PrintToPDF().
				WithPrintBackground(true).
				WithPaperWidth(paperWidth).
				WithPaperHeight(paperHeight).
				WithMarginTop(margin).
				WithMarginBottom(margin).
				WithMarginLeft(margin).
				WithMarginRight(margin).
				WithPreferCSSPageSize(true).
				Do(ctx)
			return err
		}),
	)
	if err != nil {
		if cerr := ctx.Err(); cerr != nil {
			return nil, fmt.Errorf("print pdf: %w", cerr)
		}
		r.discard(browser)
		return nil, fmt.Errorf("print pdf: %w", err)
	}
	return buf, nil
}
