package hwp

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// Bridge talks to the HWP automation agent over HTTP. The agent runs next
// to the word processor and translates these calls onto its COM surface.
type Bridge struct {
	baseURL string
	client  *http.Client
}

// NewBridge creates a bridge client for the agent at baseURL.
func NewBridge(baseURL string, timeout time.Duration) *Bridge {
	if timeout <= 0 {
		timeout = 2 * time.Minute
	}
	return &Bridge{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  &http.Client{Timeout: timeout},
	}
}

type bridgeError struct {
	Error string `json:"error"`
}

// post sends a JSON request to the agent and decodes the JSON reply into
// out (when out is non-nil). Agent-side failures come back as HTTP >= 400
// with an error body.
func (b *Bridge) post(ctx context.Context, path string, in, out any) error {
	var body io.Reader
	if in != nil {
		buf, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		body = bytes.NewReader(buf)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, b.baseURL+path, body)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := b.client.Do(req)
	if err != nil {
		return fmt.Errorf("bridge call %s: %w", path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		var be bridgeError
		if err := json.NewDecoder(resp.Body).Decode(&be); err == nil && be.Error != "" {
			return fmt.Errorf("bridge call %s: %s", path, be.Error)
		}
		return fmt.Errorf("bridge call %s: HTTP %d", path, resp.StatusCode)
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response from %s: %w", path, err)
	}
	return nil
}

func (b *Bridge) Ping(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, b.baseURL+"/healthz", nil)
	if err != nil {
		return err
	}
	resp, err := b.client.Do(req)
	if err != nil {
		return fmt.Errorf("automation bridge unreachable: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 400 {
		return fmt.Errorf("automation bridge unhealthy: HTTP %d", resp.StatusCode)
	}
	return nil
}

func (b *Bridge) Open(ctx context.Context, path string) error {
	return b.post(ctx, "/documents/open", map[string]string{"path": path}, nil)
}

func (b *Bridge) SaveAs(ctx context.Context, path string, format Format) error {
	return b.post(ctx, "/documents/save-as", map[string]string{
		"path":   path,
		"format": string(format),
	}, nil)
}

func (b *Bridge) Close(ctx context.Context) error {
	return b.post(ctx, "/documents/close", nil, nil)
}

func (b *Bridge) ExtractLinks(ctx context.Context) ([]LinkItem, error) {
	var out struct {
		Links []LinkItem `json:"links"`
	}
	if err := b.post(ctx, "/documents/links", nil, &out); err != nil {
		return nil, err
	}
	return out.Links, nil
}

func (b *Bridge) ExportHTML(ctx context.Context) ([]byte, error) {
	var out struct {
		HTML string `json:"html"`
	}
	if err := b.post(ctx, "/documents/export-html", nil, &out); err != nil {
		return nil, err
	}
	return []byte(out.HTML), nil
}

func (b *Bridge) FieldNames(ctx context.Context) ([]string, error) {
	var out struct {
		Fields []string `json:"fields"`
	}
	if err := b.post(ctx, "/documents/fields", nil, &out); err != nil {
		return nil, err
	}
	return out.Fields, nil
}

func (b *Bridge) InjectFields(ctx context.Context, values map[string]string) error {
	return b.post(ctx, "/documents/fields/inject", map[string]any{"values": values}, nil)
}

func (b *Bridge) ApplyWatermark(ctx context.Context, spec WatermarkSpec) error {
	return b.post(ctx, "/documents/watermark", spec, nil)
}

func (b *Bridge) StripMetadata(ctx context.Context) error {
	return b.post(ctx, "/documents/metadata/strip", nil, nil)
}

func (b *Bridge) SetHeaderFooter(ctx context.Context, spec HeaderFooterSpec) error {
	return b.post(ctx, "/documents/header-footer", spec, nil)
}

func (b *Bridge) MaskPattern(ctx context.Context, pattern, replacement string) (int, error) {
	var out struct {
		Count int `json:"count"`
	}
	err := b.post(ctx, "/documents/mask", map[string]string{
		"pattern":     pattern,
		"replacement": replacement,
	}, &out)
	if err != nil {
		return 0, err
	}
	return out.Count, nil
}

func (b *Bridge) MergeInto(ctx context.Context, paths []string) error {
	return b.post(ctx, "/documents/merge", map[string]any{"paths": paths}, nil)
}

func (b *Bridge) SplitPages(ctx context.Context, outputDir string) ([]string, error) {
	var out struct {
		Paths []string `json:"paths"`
	}
	if err := b.post(ctx, "/documents/split", map[string]string{"output_dir": outputDir}, &out); err != nil {
		return nil, err
	}
	return out.Paths, nil
}

var _ Handler = (*Bridge)(nil)
