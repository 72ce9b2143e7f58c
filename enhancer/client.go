// Package enhancer talks to a remote text-generation job service: jobs are
// created, polled to a terminal state and their free-text output coerced
// into structured product data and content rewrites.
package enhancer

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/shopaudit/backend/errs"
	"github.com/shopaudit/backend/logging"
	"github.com/shopaudit/backend/retry"
)

const (
	defaultPollInterval = time.Second
	defaultPollTimeout  = 150 * time.Second
	requestTimeout      = 30 * time.Second
)

// JobRequest describes one text-generation job.
type JobRequest struct {
	Prompt          string
	SystemPrompt    string
	MaxTokens       int
	Verbosity       string
	ReasoningEffort string
}

// Client drives the create+poll protocol against the job service.
type Client struct {
	apiKey       string
	baseURL      string
	model        string
	modelVersion string
	http         *http.Client
	log          logging.Logger
	policy       retry.Policy
	pollInterval time.Duration
	pollTimeout  time.Duration
}

// Option mutates a Client during construction.
type Option func(*Client)

// WithBaseURL points the client at a different endpoint, used by tests.
func WithBaseURL(u string) Option {
	return func(c *Client) { c.baseURL = strings.TrimSuffix(u, "/") }
}

// WithHTTPClient substitutes the HTTP client.
func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) { c.http = h }
}

// WithRetryPolicy substitutes the retry policy.
func WithRetryPolicy(p retry.Policy) Option {
	return func(c *Client) { c.policy = p }
}

// WithPollInterval shrinks the polling cadence, used by tests.
func WithPollInterval(interval, timeout time.Duration) Option {
	return func(c *Client) {
		c.pollInterval = interval
		c.pollTimeout = timeout
	}
}

// NewClient creates a job service client. The credential is a hard
// requirement: a missing key fails here, not at first use.
func NewClient(apiKey, baseURL, model string, log logging.Logger, opts ...Option) (*Client, error) {
	if strings.TrimSpace(apiKey) == "" {
		return nil, &errs.ConfigurationError{Reason: "text-generation credential is missing"}
	}
	c := &Client{
		apiKey:       apiKey,
		baseURL:      strings.TrimSuffix(baseURL, "/"),
		model:        model,
		http:         &http.Client{Timeout: requestTimeout},
		log:          log.With("enhancer"),
		policy:       retry.Default(),
		pollInterval: defaultPollInterval,
		pollTimeout:  defaultPollTimeout,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

type jobState struct {
	ID     string      `json:"id"`
	Status string      `json:"status"`
	Output interface{} `json:"output"`
	Error  string      `json:"error"`
}

// Generate runs one job to completion and returns its normalized text
// output. The whole create+poll sequence is retried under the shared policy
// for transient failures only.
func (c *Client) Generate(ctx context.Context, req JobRequest) (string, error) {
	var out string
	err := c.policy.Do(ctx, c.log, "enhancer/generate", func(ctx context.Context) error {
		text, err := c.runJob(ctx, req)
		if err != nil {
			return err
		}
		out = text
		return nil
	})
	return out, err
}

func (c *Client) runJob(ctx context.Context, req JobRequest) (string, error) {
	version, err := c.resolveModelVersion(ctx)
	if err != nil {
		return "", err
	}

	id, err := c.createJob(ctx, version, req)
	if err != nil {
		return "", err
	}

	return c.pollJob(ctx, id)
}

// createJob submits the job description and returns the job id.
func (c *Client) createJob(ctx context.Context, version string, req JobRequest) (string, error) {
	input := map[string]interface{}{
		"prompt": req.Prompt,
	}
	if req.SystemPrompt != "" {
		input["system_prompt"] = req.SystemPrompt
	}
	if req.MaxTokens > 0 {
		input["max_completion_tokens"] = req.MaxTokens
	}
	if req.Verbosity != "" {
		input["verbosity"] = req.Verbosity
	}
	if req.ReasoningEffort != "" {
		input["reasoning_effort"] = req.ReasoningEffort
	}

	body, err := json.Marshal(map[string]interface{}{
		"version": version,
		"input":   input,
	})
	if err != nil {
		return "", err
	}

	state, err := c.doJSON(ctx, http.MethodPost, c.baseURL+"/predictions", bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	if state.ID == "" {
		return "", &errs.RemoteJobError{State: errs.JobFailed, Detail: "creation returned no job id"}
	}
	c.log.Debug("job created", logging.Fields{"job_id": state.ID, "status": state.Status})
	return state.ID, nil
}

// pollJob polls at a fixed interval until the job reaches a terminal state
// or the polling window closes.
func (c *Client) pollJob(ctx context.Context, id string) (string, error) {
	deadline := time.Now().Add(c.pollTimeout)
	ticker := time.NewTicker(c.pollInterval)
	defer ticker.Stop()

	for {
		state, err := c.doJSON(ctx, http.MethodGet, c.baseURL+"/predictions/"+id, nil)
		if err != nil {
			return "", err
		}

		switch state.Status {
		case "succeeded":
			return normalizeOutput(state.Output), nil
		case "failed":
			return "", &errs.RemoteJobError{State: errs.JobFailed, Detail: state.Error}
		case "canceled":
			return "", &errs.RemoteJobError{State: errs.JobCanceled}
		}

		if time.Now().After(deadline) {
			return "", &errs.RemoteJobError{State: errs.JobTimedOut, Detail: fmt.Sprintf("job %s still %q after %s", id, state.Status, c.pollTimeout)}
		}

		select {
		case <-ctx.Done():
			return "", ctx.Err()
		case <-ticker.C:
		}
	}
}

// resolveModelVersion resolves the configured model identifier to a version
// id, trying the model detail endpoint then the versions listing. Both
// failing is a configuration problem, not a transient one.
func (c *Client) resolveModelVersion(ctx context.Context) (string, error) {
	if c.modelVersion != "" {
		return c.modelVersion, nil
	}

	if v := c.fetchLatestVersion(ctx, c.baseURL+"/models/"+c.model); v != "" {
		c.modelVersion = v
		return v, nil
	}
	if v := c.fetchVersionList(ctx, c.baseURL+"/models/"+c.model+"/versions"); v != "" {
		c.modelVersion = v
		return v, nil
	}
	return "", &errs.ConfigurationError{Reason: "model identifier " + c.model + " could not be resolved"}
}

func (c *Client) fetchLatestVersion(ctx context.Context, url string) string {
	var payload struct {
		LatestVersion struct {
			ID string `json:"id"`
		} `json:"latest_version"`
	}
	if err := c.getInto(ctx, url, &payload); err != nil {
		c.log.Debug("model detail lookup failed", logging.Fields{"url": url, "error": err.Error()})
		return ""
	}
	return payload.LatestVersion.ID
}

func (c *Client) fetchVersionList(ctx context.Context, url string) string {
	var payload struct {
		Results []struct {
			ID string `json:"id"`
		} `json:"results"`
	}
	if err := c.getInto(ctx, url, &payload); err != nil {
		c.log.Debug("model version listing failed", logging.Fields{"url": url, "error": err.Error()})
		return ""
	}
	if len(payload.Results) == 0 {
		return ""
	}
	return payload.Results[0].ID
}

func (c *Client) doJSON(ctx context.Context, method, url string, body io.Reader) (*jobState, error) {
	req, err := http.NewRequestWithContext(ctx, method, url, body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, &errs.FetchError{URL: url, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		io.Copy(io.Discard, resp.Body)
		return nil, &errs.FetchError{URL: url, StatusCode: resp.StatusCode}
	}

	var state jobState
	if err := json.NewDecoder(resp.Body).Decode(&state); err != nil {
		return nil, fmt.Errorf("job response parse: %w", err)
	}
	return &state, nil
}

func (c *Client) getInto(ctx context.Context, url string, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		io.Copy(io.Discard, resp.Body)
		return fmt.Errorf("status %d from %s", resp.StatusCode, url)
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

// normalizeOutput collapses the job output into one string. The service may
// return a list of token fragments, a bare string, or an object carrying the
// text under a few known keys.
func normalizeOutput(output interface{}) string {
	switch v := output.(type) {
	case string:
		return v
	case []interface{}:
		var b strings.Builder
		for _, fragment := range v {
			if s, ok := fragment.(string); ok {
				b.WriteString(s)
			}
		}
		return b.String()
	case map[string]interface{}:
		for _, key := range []string{"text", "content", "output"} {
			if s, ok := v[key].(string); ok && s != "" {
				return s
			}
		}
	}
	return ""
}
