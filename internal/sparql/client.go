// Package sparql queries a SPARQL 1.1 endpoint (by default the Wikidata Query
// Service) for direct property claims of a set of items.
package sparql

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rshade/wikilink/internal/engine"
	"github.com/rshade/wikilink/internal/logging"
	"github.com/rshade/wikilink/pkg/version"
)

// Client defaults.
const (
	DefaultEndpoint = "https://query.wikidata.org/sparql"
	DefaultTimeout  = 60 * time.Second

	resultsMediaType = "application/sparql-results+json"
	maxErrorBody     = 512
)

// DefaultUserAgent identifies this build to the endpoint.
var DefaultUserAgent = version.UserAgent() //nolint:gochecknoglobals // derived from build version

// ErrUnexpectedStatus indicates a non-2xx response from the endpoint.
var ErrUnexpectedStatus = errors.New("unexpected response status")

// Client executes queries against a SPARQL endpoint over HTTP.
type Client struct {
	Endpoint   string
	UserAgent  string
	HTTPClient *http.Client
}

// NewClient creates a client for endpoint with the default user agent and timeout.
// An empty endpoint selects DefaultEndpoint.
func NewClient(endpoint string) *Client {
	if endpoint == "" {
		endpoint = DefaultEndpoint
	}
	return &Client{
		Endpoint:   endpoint,
		UserAgent:  DefaultUserAgent,
		HTTPClient: &http.Client{Timeout: DefaultTimeout},
	}
}

// LookupProperty implements engine.BindingSource. Malformed codes are left out
// of the query; when none remain no request is sent.
func (c *Client) LookupProperty(ctx context.Context, codes []string, property string) ([]engine.PropertyBinding, error) {
	log := logging.FromContext(ctx)

	if err := ValidateProperty(property); err != nil {
		return nil, err
	}

	valid := FilterCodes(codes)
	if skipped := len(codes) - len(valid); skipped > 0 {
		log.Debug().Ctx(ctx).
			Str("component", "sparql").
			Int("skipped_codes", skipped).
			Msg("ignoring malformed or duplicate entity codes")
	}
	if len(valid) == 0 {
		return nil, nil
	}

	query, err := BuildPropertyQuery(valid, property)
	if err != nil {
		return nil, err
	}

	res, err := c.Query(ctx, query)
	if err != nil {
		return nil, err
	}

	bindings := make([]engine.PropertyBinding, 0, len(res.Results.Bindings))
	for _, row := range res.Results.Bindings {
		item, okItem := row[VarItem]
		value, okValue := row[VarValue]
		if !okItem || !okValue {
			continue
		}
		bindings = append(bindings, engine.PropertyBinding{
			EntityCode:    entityCodeFromIRI(item.Value),
			PropertyValue: value.Value,
		})
	}

	log.Debug().Ctx(ctx).
		Str("component", "sparql").
		Str("property", property).
		Int("codes", len(valid)).
		Int("bindings", len(bindings)).
		Msg("property lookup complete")

	return bindings, nil
}

// Query posts query to the endpoint and decodes the JSON results.
func (c *Client) Query(ctx context.Context, query string) (*Results, error) {
	log := logging.FromContext(ctx)

	form := url.Values{"query": {query}}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.Endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Accept", resultsMediaType)
	if c.UserAgent != "" {
		req.Header.Set("User-Agent", c.UserAgent)
	}

	httpClient := c.HTTPClient
	if httpClient == nil {
		httpClient = http.DefaultClient
	}

	start := time.Now()
	resp, err := httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("querying %s: %w", c.Endpoint, err)
	}
	defer resp.Body.Close()

	log.Debug().Ctx(ctx).
		Str("component", "sparql").
		Str("endpoint", c.Endpoint).
		Int("status", resp.StatusCode).
		Dur("duration", time.Since(start)).
		Msg("query executed")

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return nil, fmt.Errorf("%w: %s: %s", ErrUnexpectedStatus, resp.Status, strings.TrimSpace(string(body)))
	}

	return DecodeResults(resp.Body)
}

// entityCodeFromIRI returns the local name of an entity IRI such as
// http://www.wikidata.org/entity/Q42.
func entityCodeFromIRI(iri string) string {
	if i := strings.LastIndex(iri, "/"); i >= 0 {
		return iri[i+1:]
	}
	return iri
}
