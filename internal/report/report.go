// Package report renders hospital audit reports as HTML and converts them to
// PDF through a headless browser.
package report

import (
	"bytes"
	"context"
	"fmt"
	"html/template"
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/chromedp"

	"github.com/pawan/claimlens/internal/claims"
)

// DefaultTimeout bounds one PDF conversion.
const DefaultTimeout = 30 * time.Second

// TemplateError represents an error executing the report template.
type TemplateError struct {
	Message string
	Cause   error
}

func (e *TemplateError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("template error: %s: %v", e.Message, e.Cause)
	}
	return fmt.Sprintf("template error: %s", e.Message)
}

func (e *TemplateError) Unwrap() error {
	return e.Cause
}

// PDFError represents a failed HTML-to-PDF conversion, typically because no
// Chrome/Chromium binary is installed.
type PDFError struct {
	Message string
	Cause   error
}

func (e *PDFError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("pdf error: %s: %v", e.Message, e.Cause)
	}
	return fmt.Sprintf("pdf error: %s", e.Message)
}

func (e *PDFError) Unwrap() error {
	return e.Cause
}

// Data is everything the report template needs.
type Data struct {
	Stats       claims.AuditStats
	Narrative   string
	GeneratedAt time.Time
}

var reportTemplate = template.Must(template.New("audit-report").Parse(`<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<title>Audit Report {{.Stats.HospitalID}}</title>
<style>
body { font-family: Helvetica, Arial, sans-serif; margin: 40px; color: #1a1a2e; }
h1 { border-bottom: 3px solid #0f3460; padding-bottom: 8px; }
.meta { color: #555; font-size: 13px; margin-bottom: 24px; }
table { border-collapse: collapse; width: 100%; margin: 16px 0; }
th, td { border: 1px solid #ccc; padding: 8px 12px; text-align: left; font-size: 14px; }
th { background: #0f3460; color: #fff; }
.badge { display: inline-block; padding: 2px 10px; border-radius: 4px; color: #fff; }
.badge.High, .badge.Critical { background: #c0392b; }
.badge.Medium { background: #e67e22; }
.badge.Low { background: #27ae60; }
.narrative { background: #f4f6f8; padding: 16px; border-left: 4px solid #0f3460; line-height: 1.5; }
</style>
</head>
<body>
<h1>PM-JAY Claims Audit Report</h1>
<div class="meta">Hospital {{.Stats.HospitalID}} &middot; {{.Stats.State}} &middot; Generated {{.GeneratedAt.Format "02 Jan 2006 15:04 MST"}}</div>

<h2>Risk Profile <span class="badge {{.Stats.RiskCategory}}">{{.Stats.RiskCategory}}</span></h2>
<table>
<tr><th>Metric</th><th>Value</th></tr>
<tr><td>Total claims reviewed</td><td>{{.Stats.TotalClaims}}</td></tr>
<tr><td>Claims flagged as fraudulent</td><td>{{.Stats.FraudCount}}</td></tr>
<tr><td>Image reuse cases</td><td>{{.Stats.ImageReuseCount}}</td></tr>
<tr><td>Duplicate submissions</td><td>{{.Stats.DuplicateCount}}</td></tr>
<tr><td>Concurrent multi-hospital claims</td><td>{{.Stats.ConcurrentCount}}</td></tr>
<tr><td>Ghost beneficiary claims</td><td>{{.Stats.GhostCount}}</td></tr>
<tr><td>Average risk score</td><td>{{printf "%.2f" .Stats.AvgRiskScore}} / 100</td></tr>
<tr><td>Average billing deviation</td><td>{{printf "%.2f" .Stats.AvgClaimDeviation}}%</td></tr>
</table>

<h2>Auditor Summary</h2>
<div class="narrative">{{.Narrative}}</div>
</body>
</html>
`))

// RenderHTML executes the report template.
func RenderHTML(data Data) ([]byte, error) {
	if data.GeneratedAt.IsZero() {
		data.GeneratedAt = time.Now().UTC()
	}
	var buf bytes.Buffer
	if err := reportTemplate.Execute(&buf, data); err != nil {
		return nil, &TemplateError{Message: "failed to execute report template", Cause: err}
	}
	return buf.Bytes(), nil
}

// HTMLToPDF prints HTML to PDF in a headless browser. Requires
// Chrome/Chromium on the system.
func HTMLToPDF(ctx context.Context, html []byte) ([]byte, error) {
	// Chrome needs a navigable URL; stage the HTML on disk.
	dir, err := os.MkdirTemp("", "claimlens-report-*")
	if err != nil {
		return nil, &PDFError{Message: "failed to stage report", Cause: err}
	}
	defer os.RemoveAll(dir)

	htmlPath := filepath.Join(dir, "report.html")
	if err := os.WriteFile(htmlPath, html, 0o644); err != nil {
		return nil, &PDFError{Message: "failed to stage report", Cause: err}
	}

	allocCtx, cancel := chromedp.NewExecAllocator(ctx,
		append(chromedp.DefaultExecAllocatorOptions[:],
			chromedp.Flag("headless", true),
			chromedp.Flag("disable-gpu", true),
			chromedp.Flag("no-sandbox", true),
			chromedp.Flag("disable-dev-shm-usage", true),
		)...,
	)
	defer cancel()

	browserCtx, cancel := chromedp.NewContext(allocCtx)
	defer cancel()

	browserCtx, cancel = context.WithTimeout(browserCtx, DefaultTimeout)
	defer cancel()

	var pdf []byte
	err = chromedp.Run(browserCtx,
		chromedp.Navigate("file://"+htmlPath),
		chromedp.WaitReady("body"),
		chromedp.ActionFunc(func(ctx context.Context) error {
			var printErr error
			pdf, _, printErr = page.PrintToPDF().
				WithPrintBackground(true).
				WithPaperWidth(8.27).
				WithPaperHeight(11.69).
				Do(ctx)
			return printErr
		}),
	)
	if err != nil {
		return nil, &PDFError{Message: "headless browser conversion failed", Cause: err}
	}

	log.Printf("[REPORT] Rendered PDF: %d bytes", len(pdf))
	return pdf, nil
}

// Generate renders the full report and converts it to PDF.
func Generate(ctx context.Context, data Data) ([]byte, error) {
	html, err := RenderHTML(data)
	if err != nil {
		return nil, err
	}
	return HTMLToPDF(ctx, html)
}
