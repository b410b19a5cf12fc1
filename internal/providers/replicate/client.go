// Package replicate wraps the hosted prediction gateway: submit a job,
// poll it, and stream generated files. All model execution happens on the
// remote service; this client only shapes requests and responses.
package replicate

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"personastudio/internal/domain"
	"personastudio/internal/infra"
)

const tokenPrefix = "r8_"

var (
	// ErrMissingAPIToken indicates the client was configured without a
	// gateway token. Checked before any network call.
	ErrMissingAPIToken = errors.New("replicate: api token is required")
	// ErrMalformedAPIToken indicates a token that does not carry the
	// expected r8_ prefix.
	ErrMalformedAPIToken = errors.New("replicate: api token is malformed")
	// ErrNoModels indicates an empty fallback chain.
	ErrNoModels = errors.New("replicate: no models configured")
)

// APIError is a non-success response from the gateway with the upstream
// detail preserved.
type APIError struct {
	StatusCode int
	Detail     string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("replicate: status %d: %s", e.StatusCode, e.Detail)
}

// IsNotFound reports whether err is a gateway 404.
func IsNotFound(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusNotFound
}

// Options configures the gateway client.
type Options struct {
	APIToken       string
	BaseURL        string
	HTTPClient     *http.Client
	Logger         *infra.Logger
	RequestTimeout time.Duration
}

// Client performs HTTP calls against the prediction gateway.
type Client struct {
	token      string
	baseURL    string
	httpClient *http.Client
	logger     *infra.Logger
}

// Prediction mirrors the gateway's job record. Output is kept raw because
// its shape varies per backend model.
type Prediction struct {
	ID          string                  `json:"id"`
	Model       string                  `json:"model,omitempty"`
	Version     string                  `json:"version,omitempty"`
	Status      domain.PredictionStatus `json:"status"`
	Input       map[string]any          `json:"input,omitempty"`
	Output      json.RawMessage         `json:"output,omitempty"`
	Error       any                     `json:"error,omitempty"`
	Logs        string                  `json:"logs,omitempty"`
	URLs        map[string]string       `json:"urls,omitempty"`
	CreatedAt   time.Time               `json:"created_at,omitzero"`
	CompletedAt time.Time               `json:"completed_at,omitzero"`
}

// DecodedOutput unmarshals the raw output payload for extraction. Returns
// nil when the payload is empty or not valid JSON.
func (p *Prediction) DecodedOutput() any {
	if len(p.Output) == 0 {
		return nil
	}
	var out any
	if err := json.Unmarshal(p.Output, &out); err != nil {
		return nil
	}
	return out
}

// ErrorMessage renders the gateway error field, which may be a string or a
// structured object depending on the model.
func (p *Prediction) ErrorMessage() string {
	switch v := p.Error.(type) {
	case nil:
		return ""
	case string:
		return v
	default:
		raw, err := json.Marshal(v)
		if err != nil {
			return fmt.Sprintf("%v", v)
		}
		return string(raw)
	}
}

// NewClient constructs a client with sane defaults and injected
// dependencies.
func NewClient(opts Options) *Client {
	httpClient := opts.HTTPClient
	if httpClient == nil {
		timeout := opts.RequestTimeout
		if timeout <= 0 {
			timeout = 60 * time.Second
		}
		httpClient = &http.Client{Timeout: timeout}
	}
	baseURL := strings.TrimRight(opts.BaseURL, "/")
	if baseURL == "" {
		baseURL = "https://api.replicate.com/v1"
	}
	var logger *infra.Logger
	if opts.Logger != nil {
		logger = opts.Logger
	} else {
		discard := zerolog.New(io.Discard)
		l := infra.Logger(discard)
		logger = &l
	}
	return &Client{
		token:      strings.TrimSpace(opts.APIToken),
		baseURL:    baseURL,
		httpClient: httpClient,
		logger:     logger,
	}
}

// HasCredentials reports whether the client can perform remote calls.
func (c *Client) HasCredentials() bool {
	return c.token != ""
}

func (c *Client) validateToken() error {
	if c.token == "" {
		return ErrMissingAPIToken
	}
	if !strings.HasPrefix(c.token, tokenPrefix) {
		return ErrMalformedAPIToken
	}
	return nil
}

// IsConfigError reports whether err stems from a missing or malformed
// gateway token rather than a remote failure.
func IsConfigError(err error) bool {
	return errors.Is(err, ErrMissingAPIToken) || errors.Is(err, ErrMalformedAPIToken)
}

// Create submits a prediction against a single model identifier and
// returns the issued job handle.
func (c *Client) Create(ctx context.Context, model string, input map[string]any) (*Prediction, error) {
	if err := c.validateToken(); err != nil {
		return nil, err
	}
	model = strings.Trim(strings.TrimSpace(model), "/")
	if model == "" {
		return nil, errors.New("replicate: model identifier is required")
	}
	body, err := json.Marshal(map[string]any{"input": input})
	if err != nil {
		return nil, fmt.Errorf("replicate: encode request: %w", err)
	}
	endpoint := fmt.Sprintf("%s/models/%s/predictions", c.baseURL, model)
	pred, err := c.do(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	c.logger.Debug().
		Str("model", model).
		Str("prediction_id", pred.ID).
		Str("status", string(pred.Status)).
		Msg("replicate: prediction created")
	return pred, nil
}

// CreateWithFallback tries each model identifier in order and returns the
// first successful handle. Intermediate failures are absorbed; when every
// attempt fails, the error from the last model is propagated.
func (c *Client) CreateWithFallback(ctx context.Context, models []string, input map[string]any) (*Prediction, error) {
	if err := c.validateToken(); err != nil {
		return nil, err
	}
	if len(models) == 0 {
		return nil, ErrNoModels
	}
	var lastErr error
	for _, model := range models {
		pred, err := c.Create(ctx, model, input)
		if err == nil {
			return pred, nil
		}
		c.logger.Debug().Err(err).Str("model", model).Msg("replicate: model attempt failed")
		lastErr = err
		if ctx.Err() != nil {
			break
		}
	}
	return nil, lastErr
}

// Get polls a prediction by id. A failed or canceled status is data, not
// an error; only transport and gateway-level failures are returned as
// errors.
func (c *Client) Get(ctx context.Context, id string) (*Prediction, error) {
	if err := c.validateToken(); err != nil {
		return nil, err
	}
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, errors.New("replicate: prediction id is required")
	}
	return c.do(ctx, http.MethodGet, c.baseURL+"/predictions/"+id, nil)
}

// FetchFile requests a generated file, forwarding an optional Range
// header. The raw response is returned for streaming; the caller owns
// closing the body.
func (c *Client) FetchFile(ctx context.Context, id, rangeHeader string) (*http.Response, error) {
	if err := c.validateToken(); err != nil {
		return nil, err
	}
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, errors.New("replicate: file id is required")
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/files/"+id+"/download", nil)
	if err != nil {
		return nil, fmt.Errorf("replicate: build request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.token)
	if rangeHeader != "" {
		req.Header.Set("Range", rangeHeader)
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("replicate: http request: %w", err)
	}
	if resp.StatusCode >= 300 {
		defer resp.Body.Close()
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return nil, &APIError{StatusCode: resp.StatusCode, Detail: strings.TrimSpace(string(raw))}
	}
	return resp, nil
}

func (c *Client) do(ctx context.Context, method, endpoint string, body io.Reader) (*Prediction, error) {
	req, err := http.NewRequestWithContext(ctx, method, endpoint, body)
	if err != nil {
		return nil, fmt.Errorf("replicate: build request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.token)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("replicate: http request: %w", err)
	}
	defer resp.Body.Close()
	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("replicate: read response: %w", err)
	}
	if resp.StatusCode >= 300 {
		detail := strings.TrimSpace(string(raw))
		var decoded struct {
			Detail string `json:"detail"`
		}
		if err := json.Unmarshal(raw, &decoded); err == nil && decoded.Detail != "" {
			detail = decoded.Detail
		}
		return nil, &APIError{StatusCode: resp.StatusCode, Detail: detail}
	}
	var pred Prediction
	if err := json.Unmarshal(raw, &pred); err != nil {
		return nil, fmt.Errorf("replicate: decode response: %w", err)
	}
	return &pred, nil
}
