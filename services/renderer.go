package services

import (
	"context"
	"encoding/base64"
	"fmt"
	"log/slog"
	"time"

	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/chromedp"
)

// PDFRenderer renders report HTML to PDF through headless Chrome.
// A fresh browser context is allocated per render; report downloads
// are rare enough that keeping a warm browser is not worth the memory.
type PDFRenderer struct {
	timeout time.Duration
}

func NewPDFRenderer() *PDFRenderer {
	return &PDFRenderer{timeout: 60 * time.Second}
}

// RenderHTML loads the document into a headless page and prints it.
func (r *PDFRenderer) RenderHTML(ctx context.Context, html string) ([]byte, error) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.NoSandbox,
		chromedp.Flag("disable-gpu", true),
	)
	allocCtx, allocCancel := chromedp.NewExecAllocator(ctx, opts...)
	defer allocCancel()

	browserCtx, browserCancel := chromedp.NewContext(allocCtx)
	defer browserCancel()

	dataURL := "data:text/html;base64," + base64.StdEncoding.EncodeToString([]byte(html))

	var pdfData []byte
	err := chromedp.Run(browserCtx,
		chromedp.Navigate(dataURL),
		chromedp.ActionFunc(func(ctx context.Context) error {
			var err error
			pdfData, _, err = page.PrintToPDF().
				WithPrintBackground(true).
				WithPaperWidth(8.27).
				WithPaperHeight(11.69).
				Do(ctx)
			return err
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: PDF rendering failed: %v", ErrAdapterFailure, err)
	}

	slog.Info("Report rendered to PDF", "html_size", len(html), "pdf_size", len(pdfData))
	return pdfData, nil
}
