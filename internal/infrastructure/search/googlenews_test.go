package search

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

const sampleFeed = `<?xml version="1.0" encoding="UTF-8"?>
<rss version="2.0">
  <channel>
    <title>"Acme" - Google News</title>
    <item>
      <title>Acme fined over emissions</title>
      <link>https://news.example/acme-fined</link>
      <pubDate>Mon, 04 Mar 2024 10:30:00 GMT</pubDate>
      <description>&lt;a href="https://news.example/acme-fined"&gt;Acme fined&lt;/a&gt;&lt;p&gt;Regulators fined Acme over reporting failures.&lt;/p&gt;</description>
    </item>
    <item>
      <title> Acme plants trees </title>
      <link>https://news.example/acme-trees</link>
      <description></description>
    </item>
  </channel>
</rss>`

func TestSearchParsesFeed(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/rss/search" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if got := r.URL.Query().Get("q"); got != "Acme" {
			t.Errorf("expected q=Acme, got %q", got)
		}
		if got := r.URL.Query().Get("hl"); got != "en" {
			t.Errorf("expected hl=en, got %q", got)
		}
		w.Header().Set("Content-Type", "application/xml")
		w.Write([]byte(sampleFeed))
	}))
	defer server.Close()

	client := NewClient(server.URL, "en", server.Client())

	articles, err := client.Search(context.Background(), "Acme")
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if len(articles) != 2 {
		t.Fatalf("expected 2 articles, got %d", len(articles))
	}

	first := articles[0]
	if first.Title != "Acme fined over emissions" {
		t.Fatalf("unexpected title %q", first.Title)
	}
	if strings.Contains(first.Body, "<") {
		t.Fatalf("description markup not stripped, got %q", first.Body)
	}
	if !strings.Contains(first.Body, "Regulators fined Acme over reporting failures.") {
		t.Fatalf("description text lost while flattening, got %q", first.Body)
	}
	want := time.Date(2024, 3, 4, 10, 30, 0, 0, time.UTC)
	if !first.PublishedAt.Equal(want) {
		t.Fatalf("expected pubDate %v, got %v", want, first.PublishedAt)
	}

	second := articles[1]
	if second.Title != "Acme plants trees" {
		t.Fatalf("title not trimmed, got %q", second.Title)
	}
	if second.Body != "" {
		t.Fatalf("expected empty body, got %q", second.Body)
	}
	if second.PublishedAt.IsZero() {
		t.Fatal("missing pubDate must fall back to the current time")
	}
}

func TestSearchNonOKStatus(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer server.Close()

	client := NewClient(server.URL, "en", server.Client())
	if _, err := client.Search(context.Background(), "Acme"); err == nil {
		t.Fatal("expected error on non-200 response")
	}
}

func TestFetchFullTextExtractsArticle(t *testing.T) {
	t.Parallel()

	page := `<!DOCTYPE html>
<html>
<head><title>Acme fined</title></head>
<body>
  <nav>Home | News | About</nav>
  <article>
    <h1>Acme fined over emissions</h1>
    <p>Regulators fined Acme for greenhouse gas reporting failures stretching back years.</p>
    <p>The company said it would appeal the decision and review its disclosures.</p>
  </article>
</body>
</html>`

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		w.Write([]byte(page))
	}))
	defer server.Close()

	client := NewClient(server.URL, "en", server.Client())

	text, err := client.FetchFullText(context.Background(), server.URL+"/acme-fined")
	if err != nil {
		t.Fatalf("fetch full text: %v", err)
	}
	if text == "" {
		t.Fatal("expected extracted text")
	}
	if !strings.Contains(text, "greenhouse gas reporting failures") {
		t.Fatalf("extraction missing article body, got %q", text)
	}
}

func TestFetchFullTextErrorStatus(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	}))
	defer server.Close()

	client := NewClient(server.URL, "en", server.Client())
	if _, err := client.FetchFullText(context.Background(), server.URL+"/gone"); err == nil {
		t.Fatal("expected error on 404")
	}
}

func TestFlattenHTML(t *testing.T) {
	t.Parallel()

	if got := flattenHTML(""); got != "" {
		t.Fatalf("expected empty result, got %q", got)
	}
	if got := flattenHTML("<b>bold</b> and plain"); got != "bold and plain" {
		t.Fatalf("markup not stripped, got %q", got)
	}
}
