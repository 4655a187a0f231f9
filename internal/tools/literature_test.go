package tools

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func fakeEutils(t *testing.T) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case strings.Contains(r.URL.Path, "esearch"):
			if r.URL.Query().Get("db") != "pubmed" {
				t.Errorf("unexpected db: %s", r.URL.Query().Get("db"))
			}
			w.Write([]byte(`{"esearchresult": {"idlist": ["111", "222"]}}`))
		case strings.Contains(r.URL.Path, "esummary"):
			w.Write([]byte(`{"result": {
				"111": {"title": "Ginsenosides and cognition", "fulljournalname": "Phytomedicine",
					"pubdate": "2024 Jan", "authors": [{"name": "Li W"}, {"name": "Chen J"}]},
				"222": {"title": "Astragalus polysaccharides review", "fulljournalname": "J Ethnopharmacol",
					"pubdate": "2023 Nov", "authors": [{"name": "Wang Y"}]}
			}}`))
		default:
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
	}))
}

func TestPubmedSearch(t *testing.T) {
	server := fakeEutils(t)
	defer server.Close()

	reg, err := BuildRegistry(RegistryOptions{
		HTTPClient:        server.Client(),
		LiteratureBaseURL: server.URL,
	})
	if err != nil {
		t.Fatalf("build registry: %v", err)
	}

	// With a configured client the literature tools are ready.
	_, status, _ := reg.Lookup("literature.pubmed_search")
	if status != StatusReady {
		t.Fatalf("status: %s", status)
	}

	payload := execTool(t, reg, "literature.pubmed_search", map[string]any{
		"query": "ginseng cognition",
	})
	if payload["status"] != "found" {
		t.Fatalf("status: %v", payload["status"])
	}
	if payload["count"] != 2 {
		t.Fatalf("count: %v", payload["count"])
	}
	articles := payload["articles"].([]map[string]any)
	if articles[0]["pmid"] != "111" {
		t.Fatalf("first pmid: %v", articles[0]["pmid"])
	}
	if articles[0]["authors"] != "Li W, Chen J" {
		t.Fatalf("authors: %v", articles[0]["authors"])
	}
	if !strings.Contains(articles[0]["url"].(string), "pubmed.ncbi.nlm.nih.gov/111") {
		t.Fatalf("url: %v", articles[0]["url"])
	}
}

func TestPubmedSearchNoResults(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"esearchresult": {"idlist": []}}`))
	}))
	defer server.Close()

	reg, err := BuildRegistry(RegistryOptions{
		HTTPClient:        server.Client(),
		LiteratureBaseURL: server.URL,
	})
	if err != nil {
		t.Fatalf("build registry: %v", err)
	}

	payload := execTool(t, reg, "literature.pubmed_search", map[string]any{
		"query": "nothing matches this",
	})
	if payload["status"] != "no_results" {
		t.Fatalf("status: %v", payload["status"])
	}
}

func TestSystematicReviewAddsFilters(t *testing.T) {
	var seenTerm string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if strings.Contains(r.URL.Path, "esearch") {
			seenTerm = r.URL.Query().Get("term")
		}
		w.Write([]byte(`{"esearchresult": {"idlist": []}, "result": {}}`))
	}))
	defer server.Close()

	reg, err := BuildRegistry(RegistryOptions{
		HTTPClient:        server.Client(),
		LiteratureBaseURL: server.URL,
	})
	if err != nil {
		t.Fatalf("build registry: %v", err)
	}

	execTool(t, reg, "literature.systematic_review", map[string]any{"topic": "berberine diabetes"})
	if !strings.Contains(seenTerm, "systematic review[pt]") {
		t.Fatalf("review filter missing from term: %s", seenTerm)
	}
	if !strings.Contains(seenTerm, "berberine diabetes") {
		t.Fatalf("topic missing from term: %s", seenTerm)
	}
}
