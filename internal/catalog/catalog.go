// SPDX-License-Identifier: MPL-2.0

package catalog

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strings"

	"devs-cli/internal/profile"

	"github.com/charmbracelet/log"
)

const (
	// DefaultBaseURL is the command description endpoint used when none is configured.
	DefaultBaseURL = "https://catalog.devs-cli.dev/v1/command/describe"

	// maxJSONResponseBytes bounds the size of a catalog response (4 MB).
	maxJSONResponseBytes = 4 << 20
)

var (
	// ErrUnexpectedStatus is wrapped when the catalog answers with a non-2xx status.
	ErrUnexpectedStatus = errors.New("unexpected catalog status")
	// ErrMalformedResponse is wrapped when the catalog body is not the expected shape.
	ErrMalformedResponse = errors.New("malformed catalog response")
)

type (
	// CommandDescriptor is one subcommand advertised by a component.
	CommandDescriptor struct {
		Name string
		Desc string
	}

	// Fetcher looks up subcommand descriptions for a component.
	Fetcher interface {
		CommandDetail(ctx context.Context, name, provider, version string) []CommandDescriptor
	}

	// Client queries the remote command catalog.
	Client struct {
		httpClient *http.Client
		baseURL    string
		userAgent  string
		locale     profile.LocaleSource
		logger     *log.Logger
		onError    func(error)
	}

	// ClientOption configures a Client during construction.
	ClientOption func(*Client)

	// catalogEnvelope is the JSON wire format of a catalog answer. Some
	// deployments wrap it in a "data" object, so both layouts are accepted.
	catalogEnvelope struct {
		Data     *catalogEnvelope `json:"data"`
		Response *struct {
			Command json.RawMessage `json:"Command"`
		} `json:"Response"`
	}

	fixedLocale string
)

func (l fixedLocale) Locale() (string, error) { return string(l), nil }

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(hc *http.Client) ClientOption {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// WithBaseURL overrides the catalog endpoint.
func WithBaseURL(base string) ClientOption {
	return func(c *Client) {
		if base != "" {
			c.baseURL = base
		}
	}
}

// WithUserAgent sets the User-Agent header sent with every request.
func WithUserAgent(ua string) ClientOption {
	return func(c *Client) {
		c.userAgent = ua
	}
}

// WithLocaleSource sets where the request locale is read from.
func WithLocaleSource(src profile.LocaleSource) ClientOption {
	return func(c *Client) {
		c.locale = src
	}
}

// WithLocale pins the request locale.
func WithLocale(locale string) ClientOption {
	return WithLocaleSource(fixedLocale(locale))
}

// WithLogger sets the logger that receives lookup failures.
func WithLogger(l *log.Logger) ClientOption {
	return func(c *Client) {
		c.logger = l
	}
}

// WithErrorHandler sets a function called with every failed lookup after it
// is logged. Lookups run concurrently, so fn must be safe for concurrent use.
func WithErrorHandler(fn func(error)) ClientOption {
	return func(c *Client) {
		c.onError = fn
	}
}

// NewClient creates a Client. Defaults: DefaultBaseURL, http.DefaultClient,
// locale "en", and a stderr logger.
func NewClient(opts ...ClientOption) *Client {
	c := &Client{
		httpClient: http.DefaultClient,
		baseURL:    DefaultBaseURL,
		userAgent:  "devs/dev",
		locale:     fixedLocale(profile.DefaultLocale),
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.logger == nil {
		c.logger = log.NewWithOptions(os.Stderr, log.Options{Prefix: "catalog"})
	}
	return c
}

// CommandDetail returns the subcommands the catalog lists for the component
// name at provider and version. It never fails: any error is logged once and
// an empty slice is returned.
func (c *Client) CommandDetail(ctx context.Context, name, provider, version string) []CommandDescriptor {
	descriptors, err := c.fetch(ctx, name, provider, version)
	if err != nil {
		c.logger.Error("command description lookup failed", "component", name, "provider", provider, "err", err)
		if c.onError != nil {
			c.onError(err)
		}
		return []CommandDescriptor{}
	}
	return descriptors
}

func (c *Client) fetch(ctx context.Context, name, provider, version string) ([]CommandDescriptor, error) {
	lang := c.lang()

	reqURL, err := url.Parse(c.baseURL)
	if err != nil {
		return nil, fmt.Errorf("parse catalog url: %w", err)
	}
	q := reqURL.Query()
	q.Set("lang", lang)
	q.Set("name", name)
	q.Set("provider", provider)
	q.Set("version", version)
	reqURL.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL.String(), http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("executing request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }() // read-only response body

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("%w: %d", ErrUnexpectedStatus, resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxJSONResponseBytes))
	if err != nil {
		return nil, fmt.Errorf("reading response: %w", err)
	}
	return parseResponse(body)
}

// lang resolves the request locale, falling back to the default on any error.
func (c *Client) lang() string {
	locale, err := c.locale.Locale()
	if err != nil {
		c.logger.Debug("profile locale unavailable, using default", "err", err)
		return profile.DefaultLocale
	}
	if strings.TrimSpace(locale) == "" {
		return profile.DefaultLocale
	}
	return locale
}

// parseResponse decodes a catalog body into descriptors, keeping the order in
// which subcommands appear in the JSON object. A body without a Response
// section yields an empty list.
func parseResponse(body []byte) ([]CommandDescriptor, error) {
	var env catalogEnvelope
	if err := json.Unmarshal(body, &env); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMalformedResponse, err)
	}
	if env.Response == nil && env.Data != nil {
		env = *env.Data
	}
	if env.Response == nil || len(env.Response.Command) == 0 || string(env.Response.Command) == "null" {
		return []CommandDescriptor{}, nil
	}
	return decodeOrderedCommands(env.Response.Command)
}

func decodeOrderedCommands(raw json.RawMessage) ([]CommandDescriptor, error) {
	dec := json.NewDecoder(bytes.NewReader(raw))

	tok, err := dec.Token()
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMalformedResponse, err)
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return nil, fmt.Errorf("%w: Command must be an object", ErrMalformedResponse)
	}

	descriptors := []CommandDescriptor{}
	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrMalformedResponse, err)
		}
		key, ok := keyTok.(string)
		if !ok {
			return nil, fmt.Errorf("%w: unexpected key %v", ErrMalformedResponse, keyTok)
		}

		var value json.RawMessage
		if err := dec.Decode(&value); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrMalformedResponse, err)
		}
		descriptors = append(descriptors, CommandDescriptor{Name: key, Desc: describe(value)})
	}

	return descriptors, nil
}

// describe renders a description value. Strings are used as-is; other JSON
// values keep their literal text.
func describe(value json.RawMessage) string {
	var s string
	if err := json.Unmarshal(value, &s); err == nil {
		return s
	}
	if string(value) == "null" {
		return ""
	}
	return string(value)
}
