package gateway

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
	"sync"
	"time"

	"github.com/rivo/uniseg"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/time/rate"

	"github.com/photonhq/photon/internal/dataset"
	"github.com/photonhq/photon/internal/log"
	"github.com/photonhq/photon/internal/notebook"
	"github.com/photonhq/photon/internal/tracing"
)

const (
	pathSearch   = "/query/"
	pathGenerate = "/workflow/generate"
	pathExecute  = "/execute/notebook"
	pathHealth   = "/health"

	apiKeyHeader = "x-api-key"

	DefaultRequestTimeout     = 30 * time.Second
	DefaultRateLimitPerMinute = 120
	DefaultMaxResponseBytes   = 32 << 20
)

// Config configures the HTTP client.
type Config struct {
	BaseURL string
	APIKey  string

	// RequestTimeout bounds search, generate and health calls. Execute is
	// bounded only by the caller's context and the remote timeout.
	RequestTimeout time.Duration

	// RateLimitPerMinute paces outgoing requests. Zero or less disables it.
	RateLimitPerMinute int

	// MaxResponseBytes caps response bodies; larger bodies are an
	// InvalidResponse.
	MaxResponseBytes int64

	HTTPClient *http.Client
	Tracer     trace.Tracer
	UserAgent  string
}

// Client talks to the remote services over HTTP. It is safe for concurrent
// use.
type Client struct {
	mu             sync.RWMutex
	baseURL        string
	apiKey         string
	requestTimeout time.Duration
	limiter        *rate.Limiter

	http      *http.Client
	tracer    trace.Tracer
	maxBody   int64
	userAgent string
}

var _ Gateway = (*Client)(nil)

// New validates cfg and returns a client.
func New(cfg Config) (*Client, error) {
	base, err := normalizeBaseURL(cfg.BaseURL)
	if err != nil {
		return nil, err
	}

	c := &Client{
		baseURL:        base,
		apiKey:         cfg.APIKey,
		requestTimeout: cfg.RequestTimeout,
		limiter:        newLimiter(cfg.RateLimitPerMinute),
		http:           cfg.HTTPClient,
		tracer:         cfg.Tracer,
		maxBody:        cfg.MaxResponseBytes,
		userAgent:      cfg.UserAgent,
	}
	if c.requestTimeout <= 0 {
		c.requestTimeout = DefaultRequestTimeout
	}
	if c.http == nil {
		c.http = &http.Client{}
	}
	if c.tracer == nil {
		c.tracer = tracing.DefaultTracer()
	}
	if c.maxBody <= 0 {
		c.maxBody = DefaultMaxResponseBytes
	}
	if c.userAgent == "" {
		c.userAgent = "photon"
	}
	return c, nil
}

// Reconfigure swaps the connection settings used by subsequent calls. Calls
// already in flight keep the settings they started with.
func (c *Client) Reconfigure(cfg Config) error {
	base, err := normalizeBaseURL(cfg.BaseURL)
	if err != nil {
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.baseURL = base
	c.apiKey = cfg.APIKey
	if cfg.RequestTimeout > 0 {
		c.requestTimeout = cfg.RequestTimeout
	}
	c.limiter = newLimiter(cfg.RateLimitPerMinute)

	log.Info(log.CatGateway, "gateway reconfigured", "base_url", base, "rate_limit", cfg.RateLimitPerMinute)
	return nil
}

// BaseURL returns the current service root.
func (c *Client) BaseURL() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.baseURL
}

func normalizeBaseURL(raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", errors.New("gateway: base URL is required")
	}
	u, err := url.Parse(raw)
	if err != nil {
		return "", fmt.Errorf("gateway: parse base URL: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return "", fmt.Errorf("gateway: base URL must be http or https, got %q", raw)
	}
	if u.Host == "" {
		return "", fmt.Errorf("gateway: base URL has no host: %q", raw)
	}
	return strings.TrimRight(u.String(), "/"), nil
}

func newLimiter(perMinute int) *rate.Limiter {
	if perMinute <= 0 {
		return nil
	}
	// Allow a short burst so a search followed by generate is not delayed.
	burst := perMinute / 10
	if burst < 1 {
		burst = 1
	}
	return rate.NewLimiter(rate.Every(time.Minute/time.Duration(perMinute)), burst)
}

// Search implements Gateway.
func (c *Client) Search(ctx context.Context, query string, limit int) ([]dataset.SearchResult, error) {
	const op = "search"
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, rejected(op, 0, "query is required")
	}
	if limit < 1 {
		return nil, rejected(op, 0, fmt.Sprintf("limit must be at least 1, got %d", limit))
	}

	var resp searchResponse
	err := c.do(ctx, call{
		op:      op,
		method:  http.MethodPost,
		path:    pathSearch,
		body:    searchRequest{Query: query, TopK: limit},
		out:     &resp,
		bounded: true,
		attrs:   []attribute.KeyValue{attribute.Int(tracing.AttrSearchLimit, limit)},
	})
	if err != nil {
		return nil, err
	}
	if resp.Results == nil {
		return nil, invalidResponse(op, http.StatusOK, errors.New("results field is missing"))
	}

	results := make([]dataset.SearchResult, 0, len(*resp.Results))
	for _, r := range *resp.Results {
		id := ""
		if r.ID != nil {
			id = fmt.Sprint(r.ID)
		}
		results = append(results, dataset.SearchResult{ID: id, Score: r.Score, Meta: r.Meta})
	}
	log.Debug(log.CatGateway, "search complete", "query", query, "limit", limit, "results", len(results))
	return results, nil
}

// GenerateArtifact implements Gateway.
func (c *Client) GenerateArtifact(ctx context.Context, ref dataset.Reference) (notebook.Artifact, error) {
	const op = "generate"
	if err := ref.Validate(); err != nil {
		return notebook.Artifact{}, rejected(op, 0, err.Error())
	}

	title := strings.TrimSpace(ref.Title)
	if title == "" {
		title = DefaultTitle
	}

	var resp struct {
		Notebook json.RawMessage `json:"notebook"`
	}
	err := c.do(ctx, call{
		op:     op,
		method: http.MethodPost,
		path:   pathGenerate,
		body: generateRequest{
			DatasetURL:    strings.TrimSpace(ref.URL),
			DatasetFormat: ref.Format.String(),
			Variable:      strings.TrimSpace(ref.Variable),
			Title:         title,
		},
		out:     &resp,
		bounded: true,
		attrs: []attribute.KeyValue{
			attribute.String(tracing.AttrDatasetURL, ref.URL),
			attribute.String(tracing.AttrDatasetFormat, ref.Format.String()),
		},
	})
	if err != nil {
		return notebook.Artifact{}, err
	}

	raw := bytes.TrimSpace(resp.Notebook)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return notebook.Artifact{}, invalidResponse(op, http.StatusOK, errors.New("notebook field is missing"))
	}
	art, err := notebook.Parse(json.RawMessage(raw))
	if err != nil {
		return notebook.Artifact{}, invalidResponse(op, http.StatusOK, err)
	}
	log.Debug(log.CatGateway, "notebook generated",
		"blocks", len(art.Blocks),
		"executable", art.Count(notebook.KindExecutable))
	return art, nil
}

// ExecuteCode implements Gateway.
func (c *Client) ExecuteCode(ctx context.Context, source string, timeoutSeconds int) (ExecutionResult, error) {
	const op = "execute"
	if timeoutSeconds < 1 {
		return ExecutionResult{}, rejected(op, 0, fmt.Sprintf("timeout must be at least 1 second, got %d", timeoutSeconds))
	}

	var resp executeResponse
	err := c.do(ctx, call{
		op:     op,
		method: http.MethodPost,
		path:   pathExecute,
		body:   executeRequest{Code: source, Timeout: timeoutSeconds},
		out:    &resp,
	})
	if err != nil {
		return ExecutionResult{}, err
	}
	if resp.ExitCode == nil {
		return ExecutionResult{}, invalidResponse(op, http.StatusOK, errors.New("exit_code field is missing"))
	}

	result := ExecutionResult{
		ExitCode: *resp.ExitCode,
		Stdout:   resp.Stdout,
		Stderr:   resp.Stderr,
		Images:   resp.Images,
	}
	if result.Images == nil {
		result.Images = []Image{}
	}
	log.Debug(log.CatGateway, "execution complete",
		"exit_code", result.ExitCode,
		"stdout_bytes", len(result.Stdout),
		"stderr_bytes", len(result.Stderr),
		"images", len(result.Images))
	return result, nil
}

// Health implements Gateway.
func (c *Client) Health(ctx context.Context) error {
	return c.do(ctx, call{
		op:      "health",
		method:  http.MethodGet,
		path:    pathHealth,
		bounded: true,
	})
}

type call struct {
	op     string
	method string
	path   string
	body   any
	out    any
	// bounded applies the configured request timeout.
	bounded bool
	attrs   []attribute.KeyValue
}

func (c *Client) do(ctx context.Context, cl call) (err error) {
	c.mu.RLock()
	base, apiKey, timeout, limiter := c.baseURL, c.apiKey, c.requestTimeout, c.limiter
	c.mu.RUnlock()

	attrs := append([]attribute.KeyValue{
		attribute.String(tracing.AttrGatewayOp, cl.op),
		attribute.String(tracing.AttrHTTPMethod, cl.method),
		attribute.String(tracing.AttrURLPath, cl.path),
	}, cl.attrs...)
	ctx, span := tracing.StartClientSpan(ctx, c.tracer, tracing.SpanPrefixGateway+cl.op, attrs...)
	status := 0
	defer func() {
		end := []attribute.KeyValue{attribute.Int(tracing.AttrHTTPStatus, status)}
		if k := KindOf(err); k != "" {
			end = append(end, attribute.String(tracing.AttrErrorKind, string(k)))
		}
		tracing.EndSpan(span, err, end...)
	}()

	if limiter != nil {
		if werr := limiter.Wait(ctx); werr != nil {
			return unavailable(cl.op, 0, "rate limit wait interrupted", werr)
		}
	}

	if cl.bounded {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	var body io.Reader
	if cl.body != nil {
		b, merr := json.Marshal(cl.body)
		if merr != nil {
			return fmt.Errorf("%s: encode request: %w", cl.op, merr)
		}
		body = bytes.NewReader(b)
	}

	req, rerr := http.NewRequestWithContext(ctx, cl.method, base+cl.path, body)
	if rerr != nil {
		return fmt.Errorf("%s: build request: %w", cl.op, rerr)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.userAgent)
	if cl.body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if apiKey != "" {
		req.Header.Set(apiKeyHeader, apiKey)
	}

	start := time.Now()
	log.Debug(log.CatGateway, "request", "op", cl.op, "method", cl.method, "path", cl.path, "trace_id", tracing.TraceID(ctx))

	resp, derr := c.http.Do(req)
	if derr != nil {
		log.Warn(log.CatGateway, "request failed", "op", cl.op, "error", derr, "duration", time.Since(start))
		return unavailable(cl.op, 0, "", derr)
	}
	defer resp.Body.Close()
	status = resp.StatusCode

	data, rerr := io.ReadAll(io.LimitReader(resp.Body, c.maxBody+1))
	if rerr != nil {
		return unavailable(cl.op, status, "reading response body", rerr)
	}
	log.Debug(log.CatGateway, "response", "op", cl.op, "status", status, "bytes", len(data), "duration", time.Since(start))

	if status < 200 || status > 299 {
		return classify(cl.op, status, detailMessage(data))
	}
	if int64(len(data)) > c.maxBody {
		return invalidResponse(cl.op, status, fmt.Errorf("response body exceeds %d bytes", c.maxBody))
	}
	if cl.out == nil {
		return nil
	}

	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	if jerr := dec.Decode(cl.out); jerr != nil {
		return invalidResponse(cl.op, status, fmt.Errorf("decode response: %w", jerr))
	}
	return nil
}

// classify maps a non-2xx status to an error kind.
func classify(op string, status int, msg string) *Error {
	switch {
	case status == http.StatusRequestTimeout, status == http.StatusTooManyRequests, status >= 500:
		return unavailable(op, status, msg, nil)
	case status >= 400:
		return rejected(op, status, msg)
	default:
		return invalidResponse(op, status, fmt.Errorf("unexpected status %d", status))
	}
}

const maxDetailLen = 300

// detailMessage extracts the service's error detail. The detail is either a
// string or a list of validation entries carrying a msg field.
func detailMessage(body []byte) string {
	var er errorResponse
	if err := json.Unmarshal(body, &er); err == nil && er.Detail != nil {
		switch d := er.Detail.(type) {
		case string:
			return d
		case []any:
			msgs := make([]string, 0, len(d))
			for _, item := range d {
				if m, ok := item.(map[string]any); ok {
					if s, ok := m["msg"].(string); ok {
						if loc := locationOf(m["loc"]); loc != "" {
							s = loc + ": " + s
						}
						msgs = append(msgs, s)
					}
				}
			}
			if len(msgs) > 0 {
				return strings.Join(msgs, "; ")
			}
		}
	}

	text := strings.TrimSpace(string(body))
	if len(text) > maxDetailLen {
		text = truncateBytes(text, maxDetailLen) + "..."
	}
	return text
}

// truncateBytes returns the longest prefix of s that fits in limit bytes
// without splitting a grapheme cluster.
func truncateBytes(s string, limit int) string {
	end := 0
	state := -1
	rest := s
	for len(rest) > 0 {
		var cluster string
		cluster, rest, _, state = uniseg.FirstGraphemeClusterInString(rest, state)
		if end+len(cluster) > limit {
			break
		}
		end += len(cluster)
	}
	return s[:end]
}

func locationOf(v any) string {
	parts, ok := v.([]any)
	if !ok {
		return ""
	}
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if s := fmt.Sprint(p); s != "body" {
			out = append(out, s)
		}
	}
	return strings.Join(out, ".")
}
