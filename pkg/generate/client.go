package generate

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/sony/gobreaker"

	"github.com/kobex777/anymaps/pkg/cache"
	errs "github.com/kobex777/anymaps/pkg/errors"
	"github.com/kobex777/anymaps/pkg/httputil"
	"github.com/kobex777/anymaps/pkg/observability"
	"github.com/kobex777/anymaps/pkg/topology"
)

// Default client settings.
const (
	DefaultBaseURL         = "http://localhost:8000"
	DefaultGenerateTimeout = 60 * time.Second
	DefaultEnhanceTimeout  = 120 * time.Second
	DefaultAttempts        = 3
	DefaultRetryDelay      = time.Second
	DefaultCacheTTL        = 24 * time.Hour
)

// =============================================================================
// Options
// =============================================================================

// ClientOptions configures a [Client].
type ClientOptions struct {
	// BaseURL is the generation service root, e.g. http://localhost:8000.
	BaseURL string `json:"base_url"`

	// GenerateTimeout bounds one full generation call including retries.
	GenerateTimeout time.Duration `json:"generate_timeout"`

	// EnhanceTimeout bounds one enhancement call including retries.
	EnhanceTimeout time.Duration `json:"enhance_timeout"`

	// Attempts is the retry budget for transient failures.
	Attempts int `json:"attempts"`

	// RetryDelay is the initial backoff, doubled after each attempt.
	RetryDelay time.Duration `json:"retry_delay"`

	// Cache stores successful responses. Nil disables caching.
	Cache cache.Cache `json:"-"`

	// CacheTTL is the lifetime of cached responses.
	CacheTTL time.Duration `json:"cache_ttl"`

	// HTTPClient overrides the default HTTP client.
	HTTPClient *http.Client `json:"-"`

	// Logger for request logging.
	Logger *log.Logger `json:"-"`

	validated bool
}

// ValidateAndSetDefaults validates options and applies defaults.
// This method is idempotent.
func (o *ClientOptions) ValidateAndSetDefaults() error {
	if o.validated {
		return nil
	}
	if o.BaseURL == "" {
		o.BaseURL = DefaultBaseURL
	}
	o.BaseURL = strings.TrimRight(o.BaseURL, "/")
	if err := errs.ValidateURL(o.BaseURL); err != nil {
		return err
	}
	if o.GenerateTimeout <= 0 {
		o.GenerateTimeout = DefaultGenerateTimeout
	}
	if o.EnhanceTimeout <= 0 {
		o.EnhanceTimeout = DefaultEnhanceTimeout
	}
	if o.Attempts <= 0 {
		o.Attempts = DefaultAttempts
	}
	if o.RetryDelay <= 0 {
		o.RetryDelay = DefaultRetryDelay
	}
	if o.CacheTTL <= 0 {
		o.CacheTTL = DefaultCacheTTL
	}
	if o.Cache == nil {
		o.Cache = cache.NewNullCache()
	}
	if o.HTTPClient == nil {
		// Per-call deadlines come from the context.
		o.HTTPClient = &http.Client{}
	}
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
	o.validated = true
	return nil
}

// =============================================================================
// Wire Format
// =============================================================================

type fullRequest struct {
	UserPrompt  string `json:"user_prompt"`
	ImageBase64 string `json:"image_base64,omitempty"`
}

type fullResponse struct {
	Success       bool           `json:"success"`
	PlannerSpec   *topology.Spec `json:"planner_spec"`
	MermaidSyntax string         `json:"mermaid_syntax"`
	Error         string         `json:"error"`
}

type enhanceRequest struct {
	CurrentSpec   *topology.Spec `json:"current_spec"`
	EnhancePrompt string         `json:"enhance_prompt"`
	EnhanceMode   Mode           `json:"enhance_mode"`
}

type enhanceResponse struct {
	Success        bool           `json:"success"`
	PlannerSpec    *topology.Spec `json:"planner_spec"`
	ChangesSummary string         `json:"changes_summary"`
	Error          string         `json:"error"`
}

// Health is the generation service health report.
type Health struct {
	Status  string `json:"status"`
	Version string `json:"version"`
}

// =============================================================================
// Client
// =============================================================================

// Client talks to the generation service over HTTP.
type Client struct {
	opts    ClientOptions
	breaker *gobreaker.CircuitBreaker
	keyer   cache.Keyer
}

// NewClient creates a Client.
func NewClient(opts ClientOptions) (*Client, error) {
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, err
	}
	logger := opts.Logger
	breaker := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "generation",
		MaxRequests: 1,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn("circuit breaker state changed", "name", name, "from", from.String(), "to", to.String())
		},
		// Only transient failures count against the service.
		IsSuccessful: func(err error) bool {
			return err == nil || !httputil.IsRetryable(err)
		},
	})
	return &Client{
		opts:    opts,
		breaker: breaker,
		keyer:   cache.NewScopedKeyer(cache.NewDefaultKeyer(), opts.BaseURL+"|"),
	}, nil
}

// Generate requests a new map for the prompt.
func (c *Client) Generate(ctx context.Context, req Request) (*Result, error) {
	if err := errs.ValidatePrompt(req.Prompt); err != nil {
		return nil, err
	}
	key := c.keyer.GenerateKey(req.Prompt, req.ImageBase64)
	if res := c.cached(ctx, "generate", key); res != nil {
		return res, nil
	}

	ctx, cancel := context.WithTimeout(ctx, c.opts.GenerateTimeout)
	defer cancel()

	var resp fullResponse
	body := fullRequest{UserPrompt: req.Prompt, ImageBase64: req.ImageBase64}
	if err := c.post(ctx, "/generate/full", body, &resp); err != nil {
		return nil, errs.Wrap(errs.ErrCodeGeneration, err, "generation request failed")
	}
	if !resp.Success {
		return nil, serviceError(resp.Error, "generation failed")
	}

	res := &Result{Spec: resp.PlannerSpec, Syntax: topology.CleanSyntax(resp.MermaidSyntax)}
	if err := checkResult(res, true); err != nil {
		return nil, err
	}
	c.store(ctx, "generate", key, res)
	c.opts.Logger.Debug("generated map", "nodes", res.NodeCount(), "syntax_bytes", len(res.Syntax))
	return res, nil
}

// Enhance requests changes to req.Current.
func (c *Client) Enhance(ctx context.Context, req EnhanceRequest) (*Result, error) {
	if req.Current == nil {
		return nil, errs.New(errs.ErrCodeInvalidInput, "enhance requires a current spec")
	}
	if err := errs.ValidatePrompt(req.Prompt); err != nil {
		return nil, err
	}
	mode, err := ParseMode(string(req.Mode))
	if err != nil {
		return nil, err
	}
	specJSON, err := json.Marshal(req.Current)
	if err != nil {
		return nil, fmt.Errorf("marshal spec: %w", err)
	}
	key := c.keyer.EnhanceKey(specJSON, req.Prompt, string(mode))
	if res := c.cached(ctx, "enhance", key); res != nil {
		return res, nil
	}

	ctx, cancel := context.WithTimeout(ctx, c.opts.EnhanceTimeout)
	defer cancel()

	var resp enhanceResponse
	body := enhanceRequest{CurrentSpec: req.Current, EnhancePrompt: req.Prompt, EnhanceMode: mode}
	if err := c.post(ctx, "/generate/enhance", body, &resp); err != nil {
		return nil, errs.Wrap(errs.ErrCodeGeneration, err, "enhancement request failed")
	}
	if !resp.Success {
		return nil, serviceError(resp.Error, "enhancement failed")
	}

	res := &Result{Spec: resp.PlannerSpec, ChangesSummary: resp.ChangesSummary}
	if err := checkResult(res, false); err != nil {
		return nil, err
	}
	c.store(ctx, "enhance", key, res)
	c.opts.Logger.Debug("enhanced map", "mode", mode, "nodes", res.NodeCount())
	return res, nil
}

// Health queries the service health endpoint.
func (c *Client) Health(ctx context.Context) (*Health, error) {
	var h Health
	if err := c.do(ctx, http.MethodGet, "/health", nil, &h); err != nil {
		return nil, err
	}
	return &h, nil
}

func serviceError(msg, fallback string) error {
	if msg == "" {
		msg = fallback
	}
	return errs.New(errs.ErrCodeGeneration, "%s", msg)
}

// checkResult validates a decoded result. Full generation may return syntax
// without a spec; enhancement must return a spec.
func checkResult(res *Result, syntaxOK bool) error {
	if res.Spec == nil {
		if syntaxOK && res.Syntax != "" {
			return nil
		}
		return errs.New(errs.ErrCodeGeneration, "service returned no map")
	}
	if err := errs.ValidateStruct(res.Spec); err != nil {
		return errs.Wrap(errs.ErrCodeGeneration, err, "invalid spec from service")
	}
	return nil
}

// =============================================================================
// Caching
// =============================================================================

func (c *Client) cached(ctx context.Context, keyType, key string) *Result {
	data, ok, err := c.opts.Cache.Get(ctx, key)
	if err != nil || !ok {
		observability.Cache().OnCacheMiss(ctx, keyType)
		return nil
	}
	var res Result
	if err := json.Unmarshal(data, &res); err != nil {
		observability.Cache().OnCacheMiss(ctx, keyType)
		return nil
	}
	observability.Cache().OnCacheHit(ctx, keyType)
	c.opts.Logger.Debug("cache hit", "type", keyType)
	return &res
}

func (c *Client) store(ctx context.Context, keyType, key string, res *Result) {
	data, err := json.Marshal(res)
	if err != nil {
		return
	}
	if err := c.opts.Cache.Set(ctx, key, data, c.opts.CacheTTL); err != nil {
		c.opts.Logger.Warn("cache write failed", "type", keyType, "error", err)
		return
	}
	observability.Cache().OnCacheSet(ctx, keyType, len(data))
}

// =============================================================================
// Transport
// =============================================================================

// post sends a JSON request through the circuit breaker with retries.
func (c *Client) post(ctx context.Context, path string, in, out any) error {
	body, err := json.Marshal(in)
	if err != nil {
		return fmt.Errorf("marshal request: %w", err)
	}
	err = httputil.Retry(ctx, c.opts.Attempts, c.opts.RetryDelay, func() error {
		_, err := c.breaker.Execute(func() (any, error) {
			return nil, c.do(ctx, http.MethodPost, path, body, out)
		})
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			return errs.Wrap(errs.ErrCodeUnavailable, err, "generation service unavailable")
		}
		return err
	})
	if errors.Is(err, context.DeadlineExceeded) {
		return errs.Wrap(errs.ErrCodeTimeout, err, "%s timed out", path)
	}
	return err
}

func (c *Client) do(ctx context.Context, method, path string, body []byte, out any) error {
	u, err := url.JoinPath(c.opts.BaseURL, path)
	if err != nil {
		return errs.Wrap(errs.ErrCodeInvalidConfig, err, "build url")
	}
	var rdr io.Reader
	if body != nil {
		rdr = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, u, rdr)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	hooks := observability.HTTP()
	hooks.OnRequest(ctx, method, req.URL.Host, path)
	start := time.Now()

	resp, err := c.opts.HTTPClient.Do(req)
	if err != nil {
		hooks.OnError(ctx, method, req.URL.Host, path, err)
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return httputil.Transport(err)
	}
	defer resp.Body.Close()
	hooks.OnResponse(ctx, method, req.URL.Host, path, resp.StatusCode, time.Since(start))

	if err := httputil.CheckStatus(resp.StatusCode); err != nil {
		c.opts.Logger.Debug("generation service error", "path", path, "status", resp.StatusCode)
		return err
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return errs.Wrap(errs.ErrCodeInvalidFormat, err, "decode %s response", path)
	}
	return nil
}

var _ Generator = (*Client)(nil)
