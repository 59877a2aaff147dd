// Package remote forwards metadata extraction and caption burning to the
// configured processing backend over authenticated HTTP, translating the
// remote JSON shapes back into the pipeline's own types so callers cannot
// tell which backend served them.
package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/clipforge/clipforge/internal/domain/captions"
	"github.com/clipforge/clipforge/internal/mediatool"
	"github.com/clipforge/clipforge/internal/types"
)

const requestTimeout = 90 * time.Second

// BackendError is a non-2xx reply from the processing backend. The remote
// message is surfaced verbatim.
type BackendError struct {
	Status  int
	Message string
}

func (e *BackendError) Error() string {
	return fmt.Sprintf("processing backend status %d: %s", e.Status, e.Message)
}

type Client struct {
	baseURL string
	secret  string
	client  *http.Client
	tmpDir  string
}

// New builds a proxy client. Caption burning can take minutes on long clips,
// hence the generous client timeout; individual JSON calls get a tighter
// per-request deadline.
func New(baseURL, secret, tmpDir string) *Client {
	if tmpDir == "" {
		tmpDir = os.TempDir()
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		secret:  secret,
		client:  &http.Client{Timeout: 15 * time.Minute},
		tmpDir:  tmpDir,
	}
}

// Configured reports whether a backend is reachable by configuration.
func (c *Client) Configured() bool { return c.baseURL != "" && c.secret != "" }

// Extract asks the backend for source metadata.
func (c *Client) Extract(ctx context.Context, sourceURL string) (types.Metadata, error) {
	reqCtx, cancel := context.WithTimeout(ctx, requestTimeout)
	defer cancel()

	resp, err := c.postJSON(reqCtx, "/metadata", map[string]string{"url": sourceURL})
	if err != nil {
		return types.Metadata{}, err
	}
	defer resp.Body.Close()

	if err := c.checkStatus(resp); err != nil {
		return types.Metadata{}, err
	}
	var meta types.Metadata
	if err := json.NewDecoder(resp.Body).Decode(&meta); err != nil {
		return types.Metadata{}, fmt.Errorf("decode remote metadata: %w", err)
	}
	return meta, nil
}

// Apply forwards a caption-burn request and streams the resulting binary
// back into a local temp file the caller owns.
func (c *Client) Apply(ctx context.Context, videoSource string, payload types.CaptionPayload, clipID string) (types.RenderedClip, error) {
	body := map[string]any{
		"videoUrl":    videoSource,
		"captionData": payload.Captions,
		"fontKey":     payload.FontKey,
		"clipId":      clipID,
		"position":    payload.Position,
	}
	resp, err := c.postJSON(ctx, "/apply-captions", body)
	if err != nil {
		return types.RenderedClip{}, err
	}
	defer resp.Body.Close()

	if err := c.checkStatus(resp); err != nil {
		return types.RenderedClip{}, err
	}

	name := fmt.Sprintf("clip_%s_captioned.mp4", clipID)
	outPath := filepath.Join(c.tmpDir, name)
	f, err := os.Create(outPath)
	if err != nil {
		return types.RenderedClip{}, fmt.Errorf("create output file: %w", err)
	}
	n, err := io.Copy(f, resp.Body)
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		os.Remove(outPath)
		return types.RenderedClip{}, fmt.Errorf("stream captioned clip: %w", err)
	}
	return types.RenderedClip{
		Path:      outPath,
		FileName:  name,
		SizeBytes: n,
	}, nil
}

// Fonts lists the caption fonts the backend supports.
func (c *Client) Fonts(ctx context.Context) ([]captions.Font, error) {
	reqCtx, cancel := context.WithTimeout(ctx, requestTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(reqCtx, http.MethodGet, c.baseURL+"/fonts", nil)
	if err != nil {
		return nil, err
	}
	c.authorize(req)

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if err := c.checkStatus(resp); err != nil {
		return nil, err
	}
	var out []struct {
		Key         string `json:"key"`
		Family      string `json:"family"`
		Description string `json:"description"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("decode fonts: %w", err)
	}
	fonts := make([]captions.Font, 0, len(out))
	for _, f := range out {
		fonts = append(fonts, captions.Font{Key: f.Key, Family: f.Family, Description: f.Description})
	}
	return fonts, nil
}

func (c *Client) postJSON(ctx context.Context, path string, body any) (*http.Response, error) {
	b, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(b))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	c.authorize(req)
	return c.client.Do(req)
}

func (c *Client) authorize(req *http.Request) {
	req.Header.Set("Authorization", "Bearer "+c.secret)
}

// checkStatus turns a non-2xx reply into a BackendError carrying the remote
// message verbatim, with secrets scrubbed.
func (c *Client) checkStatus(resp *http.Response) error {
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return nil
	}
	rb, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))

	msg := strings.TrimSpace(string(rb))
	var payload struct {
		Error   string `json:"error"`
		Message string `json:"message"`
	}
	if err := json.Unmarshal(rb, &payload); err == nil {
		if payload.Error != "" {
			msg = payload.Error
		} else if payload.Message != "" {
			msg = payload.Message
		}
	}
	return &BackendError{
		Status:  resp.StatusCode,
		Message: redactSecrets(mediatool.Truncate(msg, 400), c.secret),
	}
}

var bearerTokenRE = regexp.MustCompile(`(?i)\bBearer\s+[A-Za-z0-9._-]+\b`)

func redactSecrets(s, secret string) string {
	if secret != "" {
		s = strings.ReplaceAll(s, secret, "[REDACTED]")
	}
	return bearerTokenRE.ReplaceAllString(s, "Bearer [REDACTED]")
}
