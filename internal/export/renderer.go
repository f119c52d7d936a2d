package export

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
)

// Renderer converts an HTML document into PDF bytes.
type Renderer interface {
	RenderPDF(ctx context.Context, html string) ([]byte, error)
}

// HTTPRenderer delegates PDF generation to an external headless-browser
// rendering service: it posts the HTML body and streams back the PDF.
type HTTPRenderer struct {
	url    string
	client *http.Client
}

func NewHTTPRenderer(url string, client *http.Client) *HTTPRenderer {
	if client == nil {
		client = http.DefaultClient
	}
	return &HTTPRenderer{
		url:    url,
		client: client,
	}
}

func (r *HTTPRenderer) RenderPDF(ctx context.Context, html string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, r.url, strings.NewReader(html))
	if err != nil {
		return nil, fmt.Errorf("build render request: %w", err)
	}
	req.Header.Set("Content-Type", "text/html; charset=utf-8")
	req.Header.Set("Accept", "application/pdf")

	resp, err := r.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("call renderer: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("renderer returned status %d", resp.StatusCode)
	}

	pdf, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read rendered pdf: %w", err)
	}
	return pdf, nil
}

var _ Renderer = (*HTTPRenderer)(nil)
