package userctx

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"soko/internal/platform/config"
	"soko/pkg/domain"
	dErrors "soko/pkg/domain-errors"
)

// Client is the HTTP implementation of Provider against the data service.
type Client struct {
	baseURL        string
	publishableKey string
	http           *http.Client
}

// NewClient builds a data service client from startup configuration.
func NewClient(cfg config.DataServiceConfig) *Client {
	return &Client{
		baseURL:        strings.TrimSuffix(cfg.BaseURL, "/"),
		publishableKey: cfg.PublishableKey,
		http:           &http.Client{Timeout: cfg.Timeout},
	}
}

// Lookup fetches the user context. There is deliberately no retry here:
// retries, if desired, belong to the data service client configuration,
// and the caller treats any failure as "no record" (fail closed).
func (c *Client) Lookup(ctx context.Context, userID domain.UserID) (*UserContext, error) {
	url := fmt.Sprintf("%s/v1/users/%s/context", c.baseURL, userID)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, dErrors.Wrap(dErrors.CodeInternal, "build user context request", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.publishableKey)
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, dErrors.Wrap(dErrors.CodeUnavailable, "user context fetch failed", err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusOK:
		// Fall through to decode.
	case resp.StatusCode == http.StatusNotFound:
		return nil, dErrors.New(dErrors.CodeNotFound, "user has no profile record")
	default:
		return nil, dErrors.New(dErrors.CodeUnavailable,
			fmt.Sprintf("user context fetch returned status %d", resp.StatusCode))
	}

	var uc UserContext
	if err := json.NewDecoder(resp.Body).Decode(&uc); err != nil {
		return nil, dErrors.Wrap(dErrors.CodeUnavailable, "decode user context", err)
	}
	if uc.Role == "" && uc.BusinessType == "" {
		// An empty record is as useless as a missing one.
		return nil, dErrors.New(dErrors.CodeNotFound, "user profile record is empty")
	}
	return &uc, nil
}
