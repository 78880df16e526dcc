package webcontent

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

const samplePage = `<!DOCTYPE html>
<html>
<head><title>Sample</title><script>var tracked = true;</script></head>
<body>
  <header>Site header</header>
  <nav>Home | About</nav>
  <main>
    <h1>Go Concurrency</h1>
    <p>Goroutines are lightweight threads.</p>
    <p>Channels connect them.</p>
  </main>
  <aside>Related links</aside>
  <footer>Copyright</footer>
</body>
</html>`

func serve(t *testing.T, handler http.HandlerFunc) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return srv
}

func TestFetchURLContentExtractsMain(t *testing.T) {
	srv := serve(t, func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("User-Agent"); !strings.Contains(got, "Mozilla/5.0") {
			t.Errorf("User-Agent = %q, want a browser UA", got)
		}
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.Write([]byte(samplePage))
	})

	e := NewExtractor(nil)
	text, ok := e.FetchURLContent(context.Background(), srv.URL)
	if !ok {
		t.Fatal("extraction reported absent for a valid page")
	}

	for _, want := range []string{"Go Concurrency", "Goroutines are lightweight threads.", "Channels connect them."} {
		if !strings.Contains(text, want) {
			t.Errorf("extracted text missing %q:\n%s", want, text)
		}
	}
	for _, boiler := range []string{"Site header", "Home | About", "Related links", "Copyright", "var tracked"} {
		if strings.Contains(text, boiler) {
			t.Errorf("extracted text contains boilerplate %q:\n%s", boiler, text)
		}
	}

	// Block elements become separate lines.
	lines := strings.Split(text, "\n")
	if len(lines) < 3 {
		t.Errorf("expected one line per block, got %d lines: %q", len(lines), text)
	}
}

func TestFetchURLContentClassFallback(t *testing.T) {
	page := `<html><body>
		<div class="sidebar">Ads here</div>
		<div class="main-content"><p>The real text.</p></div>
	</body></html>`
	srv := serve(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		w.Write([]byte(page))
	})

	e := NewExtractor(nil)
	text, ok := e.FetchURLContent(context.Background(), srv.URL)
	if !ok {
		t.Fatal("extraction reported absent")
	}
	if !strings.Contains(text, "The real text.") {
		t.Errorf("content region not found: %q", text)
	}
}

func TestFetchURLContentAbsentCases(t *testing.T) {
	tests := []struct {
		name    string
		handler http.HandlerFunc
	}{
		{
			name: "http error status",
			handler: func(w http.ResponseWriter, r *http.Request) {
				http.Error(w, "gone", http.StatusNotFound)
			},
		},
		{
			name: "non-html content type",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.Header().Set("Content-Type", "application/pdf")
				w.Write([]byte("%PDF-1.4"))
			},
		},
		{
			name: "missing content type",
			handler: func(w http.ResponseWriter, r *http.Request) {
				// Suppress net/http content sniffing so the response truly
				// carries no Content-Type header.
				w.Header()["Content-Type"] = nil
				w.Write([]byte(samplePage))
			},
		},
		{
			name: "page with no text",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.Header().Set("Content-Type", "text/html")
				w.Write([]byte(`<html><body><script>x()</script></body></html>`))
			},
		},
	}

	e := NewExtractor(nil)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := serve(t, tt.handler)
			if text, ok := e.FetchURLContent(context.Background(), srv.URL); ok {
				t.Errorf("expected absent, got %q", text)
			}
		})
	}
}

func TestFetchURLContentUppercaseContentType(t *testing.T) {
	srv := serve(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "TEXT/HTML; charset=utf-8")
		w.Write([]byte(samplePage))
	})

	e := NewExtractor(nil)
	text, ok := e.FetchURLContent(context.Background(), srv.URL)
	if !ok {
		t.Fatal("uppercase media type rejected; matching must be case-insensitive")
	}
	if !strings.Contains(text, "Go Concurrency") {
		t.Errorf("extracted text missing content: %q", text)
	}
}

func TestFetchURLContentUnreachable(t *testing.T) {
	e := NewExtractor(nil)
	if _, ok := e.FetchURLContent(context.Background(), "http://127.0.0.1:1"); ok {
		t.Error("unreachable host reported content")
	}
	if _, ok := e.FetchURLContent(context.Background(), "   "); ok {
		t.Error("blank URL reported content")
	}
}

func TestFetchURLContentSchemeDefaulting(t *testing.T) {
	srv := serve(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		w.Write([]byte(`<html><body><p>ok</p></body></html>`))
	})

	bare := strings.TrimPrefix(srv.URL, "http://")
	e := NewExtractor(nil)
	if _, ok := e.FetchURLContent(context.Background(), bare); !ok {
		t.Error("scheme-less URL was not fetched as http://")
	}
}
