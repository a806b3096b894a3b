package jira

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
)

const maxRetries = 3

// Config holds the authentication and connection settings. Jira Cloud
// authenticates with email plus API token; self-hosted Data Center
// instances use a personal access token instead.
type Config struct {
	BaseURL       string
	Email         string
	APIToken      string
	PersonalToken string
	Timeout       time.Duration
}

// Validate reports whether the config can reach a tracker at all.
func (c Config) Validate() error {
	if c.BaseURL == "" {
		return fmt.Errorf("JIRA_BASE_URL is not set")
	}
	if c.PersonalToken != "" {
		return nil
	}
	if c.Email == "" || c.APIToken == "" {
		return fmt.Errorf("set JIRA_EMAIL and JIRA_API_TOKEN, or JIRA_PERSONAL_TOKEN for self-hosted instances")
	}
	return nil
}

// Client is a minimal Jira REST client with bounded retry and backoff on
// rate limits and server errors. The v2 endpoints it touches are the same
// on Cloud and Data Center, only the auth scheme differs.
type Client struct {
	cfg        Config
	httpClient *http.Client
	retryBase  time.Duration
}

func NewClient(cfg Config) *Client {
	if cfg.Timeout == 0 {
		cfg.Timeout = 30 * time.Second
	}
	return &Client{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: cfg.Timeout},
		retryBase:  time.Second,
	}
}

// SearchIssues runs one page of a JQL search.
func (c *Client) SearchIssues(ctx context.Context, jql string, startAt, maxResults int, fields []string, expand string) (*SearchResponse, error) {
	params := url.Values{}
	params.Set("jql", jql)
	params.Set("startAt", strconv.Itoa(startAt))
	params.Set("maxResults", strconv.Itoa(maxResults))
	params.Set("fields", strings.Join(fields, ","))
	if expand != "" {
		params.Set("expand", expand)
	}

	log.Debug().Str("jql", jql).Int("startAt", startAt).Msg("Requesting issues from Jira")
	var result SearchResponse
	if err := c.get(ctx, "/rest/api/2/search", params, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// GetChangelog fetches one page of an issue's full changelog.
func (c *Client) GetChangelog(ctx context.Context, issueKey string, startAt, maxResults int) (*ChangelogPageDTO, error) {
	params := url.Values{}
	params.Set("startAt", strconv.Itoa(startAt))
	params.Set("maxResults", strconv.Itoa(maxResults))

	var page ChangelogPageDTO
	path := fmt.Sprintf("/rest/api/2/issue/%s/changelog", url.PathEscape(issueKey))
	if err := c.get(ctx, path, params, &page); err != nil {
		return nil, err
	}
	return &page, nil
}

// GetStatuses fetches every status the tracker knows, with its category.
func (c *Client) GetStatuses(ctx context.Context) ([]StatusDTO, error) {
	var statuses []StatusDTO
	if err := c.get(ctx, "/rest/api/2/status", nil, &statuses); err != nil {
		return nil, err
	}
	return statuses, nil
}

func (c *Client) get(ctx context.Context, path string, params url.Values, out any) error {
	requestURL := strings.TrimRight(c.cfg.BaseURL, "/") + path
	if len(params) > 0 {
		requestURL += "?" + params.Encode()
	}

	var lastErr error
	wait := c.retryBase
	for attempt := 0; attempt <= maxRetries; attempt++ {
		if attempt > 0 {
			log.Debug().Dur("wait", wait).Int("attempt", attempt).Msg("Retrying Jira request")
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(wait):
			}
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, requestURL, nil)
		if err != nil {
			return err
		}
		if c.cfg.PersonalToken != "" {
			req.Header.Set("Authorization", "Bearer "+c.cfg.PersonalToken)
		} else {
			req.SetBasicAuth(c.cfg.Email, c.cfg.APIToken)
		}
		req.Header.Set("Accept", "application/json")

		resp, err := c.httpClient.Do(req)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			lastErr = err
			wait = c.backoff(nil, attempt)
			continue
		}

		switch {
		case resp.StatusCode == http.StatusOK:
			err := json.NewDecoder(resp.Body).Decode(out)
			resp.Body.Close()
			if err != nil {
				return fmt.Errorf("failed to decode Jira response: %w", err)
			}
			return nil
		case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
			resp.Body.Close()
			return fmt.Errorf("Jira authentication failed (%d), check JIRA_EMAIL/JIRA_API_TOKEN or JIRA_PERSONAL_TOKEN", resp.StatusCode)
		case resp.StatusCode == http.StatusNotFound:
			resp.Body.Close()
			return fmt.Errorf("Jira resource %s not found", path)
		case resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500:
			resp.Body.Close()
			lastErr = fmt.Errorf("Jira API returned status %d", resp.StatusCode)
			wait = c.backoff(resp, attempt)
		default:
			resp.Body.Close()
			return fmt.Errorf("Jira API returned status %d for %s", resp.StatusCode, path)
		}
	}
	return fmt.Errorf("Jira request failed after %d attempts: %w", maxRetries+1, lastErr)
}

// backoff doubles per attempt, except when the server names its own
// Retry-After delay.
func (c *Client) backoff(resp *http.Response, attempt int) time.Duration {
	if resp != nil {
		if s := resp.Header.Get("Retry-After"); s != "" {
			if secs, err := strconv.Atoi(s); err == nil && secs > 0 {
				return time.Duration(secs) * time.Second
			}
		}
	}
	return time.Duration(1<<(attempt+1)) * c.retryBase
}
