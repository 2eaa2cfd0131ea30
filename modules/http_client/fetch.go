package http_client

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/vk/mediagrid/internal/artifact"
	"github.com/vk/mediagrid/internal/ctxlog"
	"github.com/vk/mediagrid/internal/params"
)

// Input defines the params of the http generator.
type Input struct {
	URL     string            `param:"url"`
	Method  string            `param:"method"`
	Headers map[string]string `param:"headers"`
}

// Generate downloads the image at the url param.
func (m *Module) Generate(ctx context.Context, p map[string]any) (*artifact.Artifact, error) {
	in := Input{Method: http.MethodGet}
	if err := params.Decode(p, &in); err != nil {
		return nil, err
	}
	if in.URL == "" {
		return nil, fmt.Errorf("missing required param %q", "url")
	}
	u, err := url.Parse(in.URL)
	if err != nil {
		return nil, fmt.Errorf("invalid url: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("url %q must use http or https", in.URL)
	}

	logger := ctxlog.FromContext(ctx).With("method", in.Method, "url", u.Redacted())
	logger.Debug("Making HTTP request.")

	req, err := http.NewRequestWithContext(ctx, strings.ToUpper(in.Method), u.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	for k, v := range in.Headers {
		req.Header.Set(k, v)
	}

	resp, err := m.client().Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to execute request: %w", err)
	}
	defer resp.Body.Close()

	logger.Debug("Received HTTP response.", "status", resp.Status, "content_type", resp.Header.Get("Content-Type"))
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("unexpected status %s", resp.Status)
	}

	limit := m.MaxBytes
	if limit <= 0 {
		limit = DefaultMaxBytes
	}
	body, err := io.ReadAll(io.LimitReader(resp.Body, limit+1))
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}
	if int64(len(body)) > limit {
		return nil, fmt.Errorf("response body exceeds %d bytes", limit)
	}
	return artifact.FromBytes(body)
}
