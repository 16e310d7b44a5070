// Package steward implements HTTP clients for the platform's content
// services: the Librarian, which resolves content metadata, and the Content
// Steward, which serves parsed file payloads. Only the embedding creator is
// expected to call into this package.
package steward

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/hashicorp/go-retryablehttp"

	"github.com/getsema/sema/internal"
	"github.com/getsema/sema/pkg/models"
)

var log = internal.GetLogger()

const (
	defaultTimeoutSeconds = 30
	defaultRetryMax       = 3
)

// Client talks to the steward service over its REST API. It implements both
// the Librarian and ContentSteward collaborator interfaces.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

var _ models.Librarian = &Client{}
var _ models.ContentSteward = &Client{}

// NewClient returns a steward client for the given base URL. Zero timeout
// or retry values fall back to defaults.
func NewClient(baseURL string, timeoutSeconds, retryMax int) *Client {
	if timeoutSeconds <= 0 {
		timeoutSeconds = defaultTimeoutSeconds
	}
	if retryMax <= 0 {
		retryMax = defaultRetryMax
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: NewRetryableHTTPClient(
			retryMax,
			time.Duration(timeoutSeconds)*time.Second,
		),
	}
}

// NewRetryableHTTPClient returns a new retryable HTTP client with the given retryMax and timeout.
func NewRetryableHTTPClient(retryMax int, timeout time.Duration) *http.Client {
	retryableHTTPClient := retryablehttp.NewClient()
	retryableHTTPClient.RetryMax = retryMax
	retryableHTTPClient.HTTPClient.Timeout = timeout
	retryableHTTPClient.Logger = internal.NewLeveledLogrus(log)
	retryableHTTPClient.Backoff = retryablehttp.DefaultBackoff
	retryableHTTPClient.CheckRetry = retryablehttp.DefaultRetryPolicy

	return retryableHTTPClient.StandardClient()
}

// GetContentMetadata resolves the metadata of an ingested content artifact,
// including the parsed file identifier used for payload retrieval.
func (c *Client) GetContentMetadata(
	ctx context.Context,
	rctx *models.RequestContext,
	contentID string,
) (*models.ContentMetadata, error) {
	url := fmt.Sprintf("%s/api/v1/contents/%s/metadata", c.baseURL, contentID)
	var metadata models.ContentMetadata
	if err := c.getJSON(ctx, rctx, url, contentID, &metadata); err != nil {
		return nil, err
	}
	return &metadata, nil
}

// GetParsedFile retrieves the parsed payload of a file. The payload is
// treated as opaque here; interpretation happens in the tabular normalizer.
func (c *Client) GetParsedFile(
	ctx context.Context,
	rctx *models.RequestContext,
	parsedFileID string,
) (*models.RawParsedPayload, error) {
	url := fmt.Sprintf("%s/api/v1/parsed-files/%s", c.baseURL, parsedFileID)
	var payload models.RawParsedPayload
	if err := c.getJSON(ctx, rctx, url, parsedFileID, &payload); err != nil {
		return nil, err
	}
	return &payload, nil
}

func (c *Client) getJSON(
	ctx context.Context,
	rctx *models.RequestContext,
	url string,
	resourceID string,
	out interface{},
) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if rctx != nil {
		if rctx.TenantID != "" {
			req.Header.Set("X-Tenant-ID", rctx.TenantID)
		}
		if rctx.UserID != "" {
			req.Header.Set("X-User-ID", rctx.UserID)
		}
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("steward request failed: %w", err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return models.NewContentNotFoundError(resourceID, nil)
	case resp.StatusCode != http.StatusOK:
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return fmt.Errorf(
			"steward returned status %d: %s", resp.StatusCode, string(body),
		)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode steward response: %w", err)
	}
	return nil
}
