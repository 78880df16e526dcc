package websearch

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

const resultsPage = `<html><body>
<div class="serp__results">
  <div class="result results_links results_links_deep web-result">
    <a class="result__a" href="//duckduckgo.com/l/?uddg=https%3A%2F%2Fgo.dev%2Fdoc%2F&amp;rut=abc">Go Documentation</a>
    <a class="result__snippet" href="https://go.dev/doc/">Official <b>Go</b> documentation.</a>
  </div>
  <div class="result results_links results_links_deep web-result">
    <a class="result__a" href="https://gobyexample.com/">Go by Example</a>
    <a class="result__snippet" href="https://gobyexample.com/">Hands-on introduction.</a>
  </div>
  <div class="result results_links web-result">
    <a class="result__a" href="">No URL result dropped</a>
  </div>
</div>
</body></html>`

func TestParseResults(t *testing.T) {
	t.Parallel()

	results, err := parseResults(resultsPage, 10)
	if err != nil {
		t.Fatalf("parseResults: %v", err)
	}
	if len(results) != 2 {
		t.Fatalf("parsed %d results, want 2", len(results))
	}

	first := results[0]
	if first.Title != "Go Documentation" {
		t.Errorf("title = %q", first.Title)
	}
	if first.URL != "https://go.dev/doc/" {
		t.Errorf("redirect URL not decoded: %q", first.URL)
	}
	if !strings.Contains(first.Snippet, "Go documentation") {
		t.Errorf("snippet = %q", first.Snippet)
	}

	if results[1].URL != "https://gobyexample.com/" {
		t.Errorf("plain URL mangled: %q", results[1].URL)
	}
}

func TestParseResultsRespectsLimit(t *testing.T) {
	t.Parallel()

	results, err := parseResults(resultsPage, 1)
	if err != nil {
		t.Fatalf("parseResults: %v", err)
	}
	if len(results) != 1 {
		t.Errorf("parsed %d results, want 1", len(results))
	}
}

func TestClientSearch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Query().Get("q"); got != "golang channels" {
			t.Errorf("query param = %q", got)
		}
		w.Write([]byte(resultsPage))
	}))
	defer srv.Close()

	c := NewClient(nil)
	c.endpoint = srv.URL

	results, err := c.Search(context.Background(), "golang channels", 10)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(results) != 2 {
		t.Errorf("Search returned %d results, want 2", len(results))
	}

	if _, err := c.Search(context.Background(), "  ", 10); err == nil {
		t.Error("blank query accepted")
	}
}

func TestSearchToolRun(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(resultsPage))
	}))
	defer srv.Close()

	c := NewClient(nil)
	c.endpoint = srv.URL
	tool := NewSearchTool(c)

	out, err := tool.InvokableRun(context.Background(), `{"query":"go"}`)
	if err != nil {
		t.Fatalf("InvokableRun: %v", err)
	}
	if !strings.Contains(out, "Go Documentation") || !strings.Contains(out, "https://go.dev/doc/") {
		t.Errorf("formatted output missing result fields:\n%s", out)
	}

	if _, err := tool.InvokableRun(context.Background(), `{}`); err == nil {
		t.Error("missing query accepted")
	}
	if _, err := tool.InvokableRun(context.Background(), `not json`); err == nil {
		t.Error("malformed arguments accepted")
	}
}

func TestFormatResultsEmpty(t *testing.T) {
	t.Parallel()

	out := FormatResults("obscure query", nil)
	if !strings.Contains(out, "No results found") {
		t.Errorf("empty results formatting = %q", out)
	}
}
