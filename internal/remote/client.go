package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/nhle/crewcheck/internal/model"
)

// Header names of the document-bin wire protocol. The credential is an
// opaque bearer-style secret; the store assigns document identifiers.
const (
	headerMasterKey = "X-Master-Key"
	headerStoreName = "X-Store-Name"
)

// HTTPClient is the HTTP implementation of Client.
type HTTPClient struct {
	baseURL    string
	httpClient *http.Client
}

// NewHTTPClient creates a client for the document store rooted at baseURL.
func NewHTTPClient(baseURL string) *HTTPClient {
	return &HTTPClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// createResponse is the body returned by the store on document creation.
type createResponse struct {
	Metadata struct {
		ID string `json:"id"`
	} `json:"metadata"`
}

// fetchResponse wraps the stored document under a record field.
type fetchResponse struct {
	Record model.SystemData `json:"record"`
}

// Create provisions a new document seeded with doc.
func (c *HTTPClient) Create(
	ctx context.Context,
	apiKey string,
	doc model.SystemData,
	name string,
) (*model.RemoteConfig, error) {
	body, err := json.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("marshaling document: %w", err)
	}

	req, err := http.NewRequestWithContext(
		ctx, http.MethodPost, c.baseURL, bytes.NewReader(body),
	)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(headerMasterKey, apiKey)
	req.Header.Set(headerStoreName, name)

	respBody, err := c.do(req, "create")
	if err != nil {
		return nil, err
	}

	var result createResponse
	if err := json.Unmarshal(respBody, &result); err != nil {
		return nil, fmt.Errorf("decoding create response: %w", err)
	}
	if result.Metadata.ID == "" {
		return nil, fmt.Errorf("create response missing document id")
	}

	return &model.RemoteConfig{
		StoreID:   result.Metadata.ID,
		APIKey:    apiKey,
		StoreName: name,
	}, nil
}

// Fetch retrieves the full current document.
func (c *HTTPClient) Fetch(
	ctx context.Context,
	cfg model.RemoteConfig,
) (*model.SystemData, error) {
	req, err := http.NewRequestWithContext(
		ctx, http.MethodGet, c.baseURL+"/"+cfg.StoreID, nil,
	)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set(headerMasterKey, cfg.APIKey)

	respBody, err := c.do(req, "fetch")
	if err != nil {
		return nil, err
	}

	var result fetchResponse
	if err := json.Unmarshal(respBody, &result); err != nil {
		return nil, fmt.Errorf("decoding fetch response: %w", err)
	}
	return &result.Record, nil
}

// Replace overwrites the full document in a single PUT.
func (c *HTTPClient) Replace(
	ctx context.Context,
	cfg model.RemoteConfig,
	doc model.SystemData,
) error {
	body, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("marshaling document: %w", err)
	}

	req, err := http.NewRequestWithContext(
		ctx, http.MethodPut, c.baseURL+"/"+cfg.StoreID, bytes.NewReader(body),
	)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(headerMasterKey, cfg.APIKey)

	_, err = c.do(req, "replace")
	return err
}

// do executes the request and triages the response status into the client's
// error taxonomy: *AuthError for credential rejections, ErrNotFound for
// missing documents, and wrapped errors for everything else.
func (c *HTTPClient) do(req *http.Request, op string) ([]byte, error) {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("executing %s request: %w", op, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading %s response: %w", op, err)
	}

	switch {
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return nil, &AuthError{
			Op:      op,
			Message: fmt.Sprintf("credential rejected (%d)", resp.StatusCode),
		}
	case resp.StatusCode == http.StatusNotFound:
		return nil, fmt.Errorf("%s %s: %w", op, req.URL.Path, ErrNotFound)
	case resp.StatusCode < 200 || resp.StatusCode >= 300:
		return nil, fmt.Errorf(
			"unexpected status %d on %s: %s",
			resp.StatusCode, op, string(respBody),
		)
	}

	return respBody, nil
}
