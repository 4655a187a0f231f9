package tools

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/tidwall/gjson"
)

const defaultEutilsBaseURL = "https://eutils.ncbi.nlm.nih.gov/entrez/eutils"

// literatureClient queries the NCBI E-utilities endpoints. The HTTP
// client is injected so the agent core never owns transport details and
// tests can point it at a fake server.
type literatureClient struct {
	httpClient *http.Client
	baseURL    string
}

func newLiteratureClient(httpClient *http.Client, baseURL string) *literatureClient {
	if baseURL == "" {
		baseURL = defaultEutilsBaseURL
	}
	return &literatureClient{
		httpClient: httpClient,
		baseURL:    strings.TrimRight(baseURL, "/"),
	}
}

func (c *literatureClient) get(ctx context.Context, endpoint string, params url.Values) (gjson.Result, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+endpoint+"?"+params.Encode(), nil)
	if err != nil {
		return gjson.Result{}, err
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return gjson.Result{}, err
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return gjson.Result{}, err
	}
	if resp.StatusCode != http.StatusOK {
		return gjson.Result{}, fmt.Errorf("eutils returned http %d", resp.StatusCode)
	}
	return gjson.ParseBytes(body), nil
}

// search runs esearch then esummary and flattens the article summaries.
func (c *literatureClient) search(ctx context.Context, query string, maxResults int) (map[string]any, error) {
	if maxResults <= 0 {
		maxResults = 5
	}
	if maxResults > 20 {
		maxResults = 20
	}

	searchParams := url.Values{
		"db":      {"pubmed"},
		"term":    {query},
		"retmax":  {fmt.Sprintf("%d", maxResults)},
		"retmode": {"json"},
	}
	searchResult, err := c.get(ctx, "/esearch.fcgi", searchParams)
	if err != nil {
		return nil, fmt.Errorf("pubmed search failed: %w", err)
	}

	var ids []string
	for _, id := range searchResult.Get("esearchresult.idlist").Array() {
		ids = append(ids, id.String())
	}
	if len(ids) == 0 {
		return map[string]any{
			"status":  "no_results",
			"query":   query,
			"message": "No PubMed articles found.",
		}, nil
	}

	summaryParams := url.Values{
		"db":      {"pubmed"},
		"id":      {strings.Join(ids, ",")},
		"retmode": {"json"},
	}
	summaryResult, err := c.get(ctx, "/esummary.fcgi", summaryParams)
	if err != nil {
		return nil, fmt.Errorf("pubmed summary fetch failed: %w", err)
	}

	articles := make([]map[string]any, 0, len(ids))
	for _, pmid := range ids {
		article := summaryResult.Get("result." + pmid)
		if !article.Exists() {
			continue
		}
		var authors []string
		for i, a := range article.Get("authors.#.name").Array() {
			if i == 3 {
				break
			}
			authors = append(authors, a.String())
		}
		articles = append(articles, map[string]any{
			"pmid":     pmid,
			"title":    article.Get("title").String(),
			"authors":  strings.Join(authors, ", "),
			"journal":  article.Get("fulljournalname").String(),
			"pub_date": article.Get("pubdate").String(),
			"url":      fmt.Sprintf("https://pubmed.ncbi.nlm.nih.gov/%s/", pmid),
		})
	}

	return map[string]any{
		"status":   "found",
		"query":    query,
		"count":    len(articles),
		"articles": articles,
	}, nil
}

func literatureTools(client *literatureClient) []Tool {
	pubmedSearch := &funcTool{
		name:        "literature.pubmed_search",
		description: "Search PubMed for research articles on TCM topics. Returns titles, journals, and PMIDs.",
		schema: objectSchema(map[string]any{
			"query":       stringProp("Search query"),
			"max_results": numberProp("Maximum results (default 5)"),
		}, "query"),
		fn: func(ctx context.Context, args map[string]any) (any, error) {
			query, err := stringArg(args, "query")
			if err != nil {
				return nil, err
			}
			maxResults := 5
			if _, ok := args["max_results"]; ok {
				f, err := floatArg(args, "max_results")
				if err != nil {
					return nil, err
				}
				maxResults = int(f)
			}
			return client.search(ctx, query, maxResults)
		},
	}

	cnkiSearch := &funcTool{
		name:        "literature.cnki_search",
		description: "Search CNKI (China National Knowledge Infrastructure) for Chinese-language TCM research.",
		schema:      objectSchema(map[string]any{"query": stringProp("Search query (Chinese or English)")}, "query"),
		fn: func(ctx context.Context, args map[string]any) (any, error) {
			query, err := stringArg(args, "query")
			if err != nil {
				return nil, err
			}
			return map[string]any{
				"status": "info",
				"query":  query,
				"message": "CNKI search requires institutional access. Visit https://www.cnki.net/ to search directly. " +
					"Alternative: use literature.pubmed_search with Chinese medicine keywords.",
			}, nil
		},
	}

	systematicReview := &funcTool{
		name:        "literature.systematic_review",
		description: "Find systematic reviews and meta-analyses for a TCM topic on PubMed.",
		schema:      objectSchema(map[string]any{"topic": stringProp("Research topic")}, "topic"),
		fn: func(ctx context.Context, args map[string]any) (any, error) {
			topic, err := stringArg(args, "topic")
			if err != nil {
				return nil, err
			}
			query := fmt.Sprintf("(%s) AND (systematic review[pt] OR meta-analysis[pt]) AND (traditional Chinese medicine OR herbal medicine)", topic)
			return client.search(ctx, query, 10)
		},
	}

	return []Tool{pubmedSearch, cnkiSearch, systematicReview}
}
