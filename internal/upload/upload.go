// Package upload sends photo evidence to the external image host and
// returns stable URLs. The host's API is a single multipart POST with a
// preset identifier; there is no delete or update.
package upload

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"time"
)

// Uploader is a client for the image-hosting upload endpoint.
type Uploader struct {
	endpoint string
	preset   string
	client   *http.Client
}

// New creates an Uploader for the given endpoint and upload preset.
func New(endpoint, preset string) *Uploader {
	return &Uploader{
		endpoint: endpoint,
		preset:   preset,
		client:   &http.Client{Timeout: 60 * time.Second},
	}
}

// uploadResponse is the subset of the host's response we use.
type uploadResponse struct {
	SecureURL string `json:"secure_url"`
}

// Upload sends one encoded image and returns its permanent URL.
func (u *Uploader) Upload(ctx context.Context, encoded string) (string, error) {
	var body bytes.Buffer
	w := multipart.NewWriter(&body)

	if err := w.WriteField("file", encoded); err != nil {
		return "", fmt.Errorf("writing file field: %w", err)
	}
	if err := w.WriteField("upload_preset", u.preset); err != nil {
		return "", fmt.Errorf("writing preset field: %w", err)
	}
	if err := w.Close(); err != nil {
		return "", fmt.Errorf("finalizing multipart body: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, u.endpoint, &body)
	if err != nil {
		return "", fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", w.FormDataContentType())

	resp, err := u.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("executing upload: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("reading upload response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", fmt.Errorf("upload failed with status %d: %s", resp.StatusCode, string(respBody))
	}

	var result uploadResponse
	if err := json.Unmarshal(respBody, &result); err != nil {
		return "", fmt.Errorf("decoding upload response: %w", err)
	}
	if result.SecureURL == "" {
		return "", fmt.Errorf("upload response missing url")
	}

	return result.SecureURL, nil
}

// UploadAll uploads photos sequentially, continuing past individual
// failures. It returns the URLs that succeeded and the count that failed;
// one bad photo never blocks the rest of the batch.
func (u *Uploader) UploadAll(ctx context.Context, photos []string) ([]string, int) {
	urls := make([]string, 0, len(photos))
	failed := 0
	for _, p := range photos {
		url, err := u.Upload(ctx, p)
		if err != nil {
			failed++
			continue
		}
		urls = append(urls, url)
	}
	return urls, failed
}
