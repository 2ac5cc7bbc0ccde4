// Package extract implements the model-driven ingestion path: download a
// registered link, ask the extraction model for a JSON array of
// opportunities, normalize and store what comes back.
package extract

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	readability "github.com/go-shiori/go-readability"
	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
)

// minContentChars is the threshold below which a fetched page is
// considered empty and never sent to the model.
const minContentChars = 100

const maxBodyBytes = 10 << 20

// Fetcher downloads a page and reduces it to plain text.
type Fetcher struct {
	client *http.Client
}

// NewFetcher creates a page fetcher.
func NewFetcher(timeout time.Duration) *Fetcher {
	if timeout == 0 {
		timeout = 30 * time.Second
	}
	return &Fetcher{client: &http.Client{Timeout: timeout}}
}

// FetchPage downloads the URL and returns its text content. PDF bodies
// are text-extracted page by page; HTML goes through readability with a
// plain-text fallback; anything else passes through as-is. A result
// below minContentChars is an error: there is nothing worth extracting.
func (f *Fetcher) FetchPage(ctx context.Context, pageURL string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, "GET", pageURL, nil)
	if err != nil {
		return "", fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("User-Agent", "Mozilla/5.0 (compatible; grantwatch/1.0)")

	resp, err := f.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("fetching %s: %w", pageURL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return "", fmt.Errorf("fetching %s: status %d", pageURL, resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return "", fmt.Errorf("reading %s: %w", pageURL, err)
	}

	contentType := resp.Header.Get("Content-Type")
	var text string
	switch {
	case isPDF(contentType, body):
		text, err = pdfText(body)
		if err != nil {
			return "", fmt.Errorf("extracting pdf text: %w", err)
		}
	case strings.Contains(contentType, "html"), contentType == "":
		text = htmlText(body, pageURL)
	default:
		text = string(body)
	}

	text = strings.TrimSpace(text)
	if len(text) < minContentChars {
		return "", fmt.Errorf("page %s too short (%d chars)", pageURL, len(text))
	}
	return text, nil
}

func isPDF(contentType string, body []byte) bool {
	if strings.Contains(contentType, "pdf") {
		return true
	}
	return bytes.HasPrefix(body, []byte("%PDF-"))
}

// htmlText extracts the main article content, falling back to the whole
// document's text when readability finds nothing usable.
func htmlText(body []byte, pageURL string) string {
	parsedURL, _ := url.Parse(pageURL)
	article, err := readability.FromReader(bytes.NewReader(body), parsedURL)
	if err == nil && len(strings.TrimSpace(article.TextContent)) >= minContentChars {
		return article.TextContent
	}

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return ""
	}
	doc.Find("script, style, noscript").Remove()
	return strings.Join(strings.Fields(doc.Text()), " ")
}

// pdfText extracts text from every page and concatenates the results.
func pdfText(body []byte) (string, error) {
	conf := model.NewDefaultConfiguration()
	ctx, err := api.ReadValidateAndOptimize(bytes.NewReader(body), conf)
	if err != nil {
		return "", fmt.Errorf("pdfcpu read: %w", err)
	}

	var sb strings.Builder
	for pageNr := 1; pageNr <= ctx.PageCount; pageNr++ {
		pageText := pdfPageText(ctx, pageNr)
		if pageText == "" {
			continue
		}
		if sb.Len() > 0 {
			sb.WriteByte('\n')
		}
		sb.WriteString(pageText)
	}

	if sb.Len() == 0 {
		return "", fmt.Errorf("no text content found in PDF")
	}
	return sb.String(), nil
}

func pdfPageText(ctx *model.Context, pageNr int) string {
	r, err := pdfcpu.ExtractPageContent(ctx, pageNr)
	if err != nil {
		return ""
	}
	data, err := io.ReadAll(r)
	if err != nil || len(data) == 0 {
		return ""
	}
	return textFromStream(data)
}

// textFromStream pulls string literals out of text-showing operators in a
// PDF content stream. Tj and TJ cover the overwhelming majority of
// generated documents.
func textFromStream(data []byte) string {
	var sb strings.Builder
	for _, line := range bytes.Split(data, []byte{'\n'}) {
		line = bytes.TrimSpace(line)
		if len(line) == 0 {
			continue
		}
		if bytes.HasSuffix(line, []byte("Tj")) || bytes.HasSuffix(line, []byte("TJ")) {
			for _, m := range pdfStringRe.FindAllSubmatch(line, -1) {
				if text := decodePDFString(m[1]); text != "" {
					sb.WriteString(text)
					sb.WriteByte(' ')
				}
			}
		}
	}
	return strings.Join(strings.Fields(sb.String()), " ")
}
