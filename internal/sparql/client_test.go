package sparql

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rshade/wikilink/internal/engine"
)

const ulanResults = `{
  "head": {"vars": ["item", "prop_value"]},
  "results": {"bindings": [
    {"item": {"type": "uri", "value": "http://www.wikidata.org/entity/Q5598"},
     "prop_value": {"type": "literal", "value": "500011051"}},
    {"item": {"type": "uri", "value": "http://www.wikidata.org/entity/Q41264"},
     "prop_value": {"type": "literal", "value": "500032927"}},
    {"item": {"type": "uri", "value": "http://www.wikidata.org/entity/Q41264"},
     "prop_value": {"type": "literal", "value": "500032928"}}
  ]}
}`

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	client := NewClient(server.URL)
	client.HTTPClient = server.Client()
	return client
}

func TestLookupProperty(t *testing.T) {
	var gotQuery, gotAccept, gotUA, gotContentType string
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseForm())
		gotQuery = r.PostForm.Get("query")
		gotAccept = r.Header.Get("Accept")
		gotUA = r.Header.Get("User-Agent")
		gotContentType = r.Header.Get("Content-Type")
		w.Header().Set("Content-Type", resultsMediaType)
		fmt.Fprint(w, ulanResults)
	})
	client.UserAgent = "wikilink-test/1.0"

	bindings, err := client.LookupProperty(context.Background(), []string{"Q5598", "Q41264", "Q1"}, "P245")
	require.NoError(t, err)

	assert.Equal(t, []engine.PropertyBinding{
		{EntityCode: "Q5598", PropertyValue: "500011051"},
		{EntityCode: "Q41264", PropertyValue: "500032927"},
		{EntityCode: "Q41264", PropertyValue: "500032928"},
	}, bindings)

	assert.Contains(t, gotQuery, "VALUES ?item { wd:Q5598 wd:Q41264 wd:Q1 }")
	assert.Contains(t, gotQuery, "?item wdt:P245 ?prop_value .")
	assert.Equal(t, resultsMediaType, gotAccept)
	assert.Equal(t, "wikilink-test/1.0", gotUA)
	assert.Equal(t, "application/x-www-form-urlencoded", gotContentType)
}

func TestLookupProperty_SkipsMalformedCodes(t *testing.T) {
	var requests int32
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&requests, 1)
		require.NoError(t, r.ParseForm())
		query := r.PostForm.Get("query")
		assert.Contains(t, query, "{ wd:Q1 }")
		assert.NotContains(t, query, "bad")
		fmt.Fprint(w, `{"head":{"vars":[]},"results":{"bindings":[]}}`)
	})

	bindings, err := client.LookupProperty(context.Background(), []string{"bad code", "Q1", "", "Q1"}, "P245")
	require.NoError(t, err)
	assert.Empty(t, bindings)
	assert.Equal(t, int32(1), atomic.LoadInt32(&requests))

	bindings, err = client.LookupProperty(context.Background(), []string{"x", "y"}, "P245")
	require.NoError(t, err)
	assert.Empty(t, bindings)
	assert.Equal(t, int32(1), atomic.LoadInt32(&requests), "no request for a batch without valid codes")
}

func TestLookupProperty_InvalidProperty(t *testing.T) {
	client := newTestClient(t, func(http.ResponseWriter, *http.Request) {
		t.Fatal("no request expected")
	})

	_, err := client.LookupProperty(context.Background(), []string{"Q1"}, "P245 } DROP")
	assert.ErrorIs(t, err, ErrInvalidProperty)
}

func TestLookupProperty_IgnoresIncompleteRows(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprint(w, `{"head":{"vars":["item","prop_value"]},"results":{"bindings":[
			{"item":{"type":"uri","value":"http://www.wikidata.org/entity/Q1"}},
			{"item":{"type":"uri","value":"http://www.wikidata.org/entity/Q2"},
			 "prop_value":{"type":"uri","value":"http://viaf.org/viaf/113230702"}}
		]}}`)
	})

	bindings, err := client.LookupProperty(context.Background(), []string{"Q1", "Q2"}, "P214")
	require.NoError(t, err)
	assert.Equal(t, []engine.PropertyBinding{
		{EntityCode: "Q2", PropertyValue: "http://viaf.org/viaf/113230702"},
	}, bindings)
}

func TestQuery_Errors(t *testing.T) {
	t.Run("non-2xx status", func(t *testing.T) {
		client := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
			http.Error(w, "Too Many Requests", http.StatusTooManyRequests)
		})
		_, err := client.LookupProperty(context.Background(), []string{"Q1"}, "P245")
		require.ErrorIs(t, err, ErrUnexpectedStatus)
		assert.Contains(t, err.Error(), "429")
		assert.Contains(t, err.Error(), "Too Many Requests")
	})

	t.Run("malformed body", func(t *testing.T) {
		client := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
			fmt.Fprint(w, "<html>not json</html>")
		})
		_, err := client.LookupProperty(context.Background(), []string{"Q1"}, "P245")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "decoding SPARQL results")
	})

	t.Run("timeout", func(t *testing.T) {
		client := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
			time.Sleep(200 * time.Millisecond)
			fmt.Fprint(w, `{}`)
		})
		client.HTTPClient.Timeout = 20 * time.Millisecond
		_, err := client.LookupProperty(context.Background(), []string{"Q1"}, "P245")
		assert.Error(t, err)
	})

	t.Run("cancelled context", func(t *testing.T) {
		client := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
			fmt.Fprint(w, `{}`)
		})
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		_, err := client.Query(ctx, "SELECT * WHERE {}")
		assert.ErrorIs(t, err, context.Canceled)
	})
}

func TestBuildPropertyQuery(t *testing.T) {
	q, err := BuildPropertyQuery([]string{"Q1", "Q2"}, "P650")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(q, "PREFIX wd: <http://www.wikidata.org/entity/>\n"))
	assert.Contains(t, q, "PREFIX wdt: <http://www.wikidata.org/prop/direct/>")
	assert.Contains(t, q, "SELECT ?item ?prop_value")
	assert.Contains(t, q, "VALUES ?item { wd:Q1 wd:Q2 }")
	assert.Contains(t, q, "?item wdt:P650 ?prop_value .")

	_, err = BuildPropertyQuery([]string{"Q1"}, "245")
	assert.ErrorIs(t, err, ErrInvalidProperty)
}

func TestIdentifiers(t *testing.T) {
	assert.True(t, IsEntityCode("Q42"))
	assert.False(t, IsEntityCode("q42"))
	assert.False(t, IsEntityCode("Q"))
	assert.False(t, IsEntityCode("Q42 "))
	assert.False(t, IsEntityCode("P245"))

	assert.True(t, IsPropertyID("P1871"))
	assert.False(t, IsPropertyID("Q1"))
	assert.False(t, IsPropertyID(""))

	assert.Equal(t, []string{"Q1", "Q2"}, FilterCodes([]string{"Q1", "Q1", "x", "Q2"}))
	assert.Equal(t, "Q42", entityCodeFromIRI("http://www.wikidata.org/entity/Q42"))
}

func TestNewClientDefaults(t *testing.T) {
	c := NewClient("")
	assert.Equal(t, DefaultEndpoint, c.Endpoint)
	assert.Equal(t, DefaultUserAgent, c.UserAgent)
	assert.Equal(t, DefaultTimeout, c.HTTPClient.Timeout)
}

var _ engine.BindingSource = (*Client)(nil)
