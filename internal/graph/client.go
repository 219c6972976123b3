package graph

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// Microsoft Graph API base URLs.
const (
	stableBaseURL  = "https://graph.microsoft.com/v1.0"
	previewBaseURL = "https://graph.microsoft.com/beta"
)

// Request describes one Graph call. Constructed per call, never persisted.
type Request struct {
	Method string
	Path   string
	// Query parameters are stringified and URL-encoded; entries whose value
	// is nil or an empty string are dropped.
	Query map[string]any
	// Body is serialised as JSON for body-carrying verbs.
	Body any
	// Beta selects the preview surface instead of the stable one.
	Beta bool
}

// Response is the success outcome of a Graph call.
type Response struct {
	StatusCode int
	// NoContent is set for 202/204 responses and for any response with an
	// empty body: the call succeeded but produced nothing to parse.
	NoContent bool
	Body      map[string]any
}

// Client executes Graph calls: it builds the target URL, attaches the
// current bearer token, performs the request, and classifies the result so
// operation handlers never see an unclassified failure.
type Client struct {
	http    *http.Client
	tokens  TokenProvider
	baseURL string
	betaURL string
	log     zerolog.Logger
}

// ClientOption configures a Client.
type ClientOption func(*Client)

// WithHTTPClient sets the HTTP client used for Graph calls.
func WithHTTPClient(c *http.Client) ClientOption {
	return func(cl *Client) { cl.http = c }
}

// WithBaseURLs overrides the stable and preview origins. Used by tests.
func WithBaseURLs(stable, preview string) ClientOption {
	return func(cl *Client) {
		cl.baseURL = stable
		cl.betaURL = preview
	}
}

// WithLogger sets the logger for per-call observability.
func WithLogger(l zerolog.Logger) ClientOption {
	return func(cl *Client) { cl.log = l }
}

// NewClient creates a Graph client backed by the given token provider.
func NewClient(tokens TokenProvider, opts ...ClientOption) *Client {
	c := &Client{
		http:    &http.Client{},
		tokens:  tokens,
		baseURL: stableBaseURL,
		betaURL: previewBaseURL,
		log:     zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Do executes one Graph call and classifies the response.
func (c *Client) Do(ctx context.Context, req Request) (*Response, error) {
	target := c.buildURL(req)

	token, err := c.tokens.Token(ctx)
	if err != nil {
		return nil, err
	}

	var body io.Reader = http.NoBody
	if req.Body != nil && bodyVerb(req.Method) {
		data, err := json.Marshal(req.Body)
		if err != nil {
			return nil, fmt.Errorf("encode request body: %w", err)
		}
		body = bytes.NewReader(data)
	}

	httpReq, err := http.NewRequestWithContext(ctx, req.Method, target, body)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	requestID := uuid.New().String()
	httpReq.Header.Set("Authorization", "Bearer "+token)
	httpReq.Header.Set("Accept", "application/json")
	httpReq.Header.Set("client-request-id", requestID)
	if body != http.NoBody {
		httpReq.Header.Set("Content-Type", "application/json")
	}

	start := time.Now()
	resp, err := c.http.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("graph request: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	c.log.Debug().
		Str("method", req.Method).
		Str("path", req.Path).
		Int("status", resp.StatusCode).
		Dur("elapsed", time.Since(start)).
		Str("request_id", requestID).
		Msg("graph call")

	return classify(resp.StatusCode, data)
}

// Download fetches content from a pre-authorized URL such as
// @microsoft.graph.downloadUrl. No bearer header is attached; these URLs
// are self-authorizing.
func (c *Client) Download(ctx context.Context, contentURL string) ([]byte, error) {
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, contentURL, http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	resp, err := c.http.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("download request: %w", err)
	}
	defer resp.Body.Close()

	if !successStatus(resp.StatusCode) {
		return nil, &APIError{
			Kind:       KindDownloadFailed,
			StatusCode: resp.StatusCode,
			Code:       "UNKNOWN",
			Message:    "content download failed",
		}
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read download: %w", err)
	}
	return data, nil
}

// Text fetches non-JSON content (transcripts, captions) from the stable
// surface using the caller-specified accept header.
func (c *Client) Text(ctx context.Context, path, accept string) (string, error) {
	token, err := c.tokens.Token(ctx)
	if err != nil {
		return "", err
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+normalizePath(path), http.NoBody)
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	httpReq.Header.Set("Authorization", "Bearer "+token)
	httpReq.Header.Set("Accept", accept)

	resp, err := c.http.Do(httpReq)
	if err != nil {
		return "", fmt.Errorf("text request: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("read response: %w", err)
	}

	if !successStatus(resp.StatusCode) {
		return "", &APIError{
			Kind:       KindTextFetchFailed,
			StatusCode: resp.StatusCode,
			Code:       "UNKNOWN",
			Message:    snippet(data, 100),
		}
	}
	return string(data), nil
}

// buildURL concatenates the selected origin, the normalized path, and the
// encoded query string.
func (c *Client) buildURL(req Request) string {
	base := c.baseURL
	if req.Beta {
		base = c.betaURL
	}
	target := base + normalizePath(req.Path)
	if q := encodeQuery(req.Query); q != "" {
		target += "?" + q
	}
	return target
}

// normalizePath ensures the path begins with exactly one separator.
func normalizePath(p string) string {
	return "/" + strings.TrimLeft(p, "/")
}

// encodeQuery stringifies and URL-encodes the defined parameters in sorted
// key order. Nil and empty-string values never appear in the result.
func encodeQuery(params map[string]any) string {
	if len(params) == 0 {
		return ""
	}
	keys := make([]string, 0, len(params))
	for k := range params {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	values := url.Values{}
	for _, k := range keys {
		s, ok := stringifyParam(params[k])
		if !ok {
			continue
		}
		values.Set(k, s)
	}
	return values.Encode()
}

// stringifyParam converts a parameter value to its query representation.
// Returns false for values that should be omitted.
func stringifyParam(val any) (string, bool) {
	switch v := val.(type) {
	case nil:
		return "", false
	case string:
		if v == "" {
			return "", false
		}
		return v, true
	case bool:
		return strconv.FormatBool(v), true
	case int:
		return strconv.Itoa(v), true
	case int64:
		return strconv.FormatInt(v, 10), true
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64), true
	default:
		return fmt.Sprint(v), true
	}
}

// bodyVerb reports whether the method carries a request body.
func bodyVerb(method string) bool {
	switch method {
	case http.MethodPost, http.MethodPatch, http.MethodPut:
		return true
	default:
		return false
	}
}

func successStatus(code int) bool {
	return code >= http.StatusOK && code < http.StatusMultipleChoices
}

// classify turns a raw status and body into a Response or a typed error.
// Order matters: no-content statuses and empty bodies are success, an
// unparsable body is an invalid response, and a parsed error object or a
// non-success status is an upstream error.
func classify(status int, body []byte) (*Response, error) {
	if status == http.StatusAccepted || status == http.StatusNoContent {
		return &Response{StatusCode: status, NoContent: true}, nil
	}
	if len(bytes.TrimSpace(body)) == 0 {
		return &Response{StatusCode: status, NoContent: true}, nil
	}

	var parsed map[string]any
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, &APIError{
			Kind:       KindInvalidResponse,
			StatusCode: status,
			Code:       "UNKNOWN",
			Message:    snippet(body, 100),
		}
	}

	errObj, hasError := parsed["error"].(map[string]any)
	if hasError || !successStatus(status) {
		return nil, upstreamError(status, errObj)
	}

	return &Response{StatusCode: status, Body: parsed}, nil
}

// upstreamError builds the classified error for a structured Graph failure.
// errObj may be nil when the status was non-success without an error body.
func upstreamError(status int, errObj map[string]any) *APIError {
	apiErr := &APIError{
		Kind:       KindUpstream,
		StatusCode: status,
		Code:       "UNKNOWN",
		Message:    "request failed",
	}
	if errObj == nil {
		return apiErr
	}
	if code, ok := errObj["code"].(string); ok && code != "" {
		apiErr.Code = code
	}
	if msg, ok := errObj["message"].(string); ok && msg != "" {
		apiErr.Message = msg
	}
	if inner, ok := errObj["innerError"].(map[string]any); ok {
		if id, ok := inner["request-id"].(string); ok {
			apiErr.RequestID = id
		}
	}
	return apiErr
}
