package tools

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sort"
	"strings"

	"github.com/tidwall/gjson"
)

const defaultOpenTargetsBaseURL = "https://api.platform.opentargets.org/api/v4/graphql"

// herbTargetMap resolves a herb's key compounds against the compound
// database and collects their molecular targets. Compounds without a
// local entry are skipped rather than reported as empty.
func herbTargetMap(herbName string) (string, []string, map[string][]string, bool) {
	name, rec, ok := searchHerb(herbName)
	if !ok {
		return "", nil, nil, false
	}
	targetMap := make(map[string][]string)
	for _, compound := range rec.KeyCompounds {
		if c, found := searchCompound(compound); found {
			targetMap[compound] = c.KnownTargets
		}
	}
	return name, rec.KeyCompounds, targetMap, true
}

func uniqueTargets(targetMap map[string][]string) []string {
	seen := map[string]bool{}
	for _, targets := range targetMap {
		for _, t := range targets {
			seen[t] = true
		}
	}
	out := make([]string, 0, len(seen))
	for t := range seen {
		out = append(out, t)
	}
	sort.Strings(out)
	return out
}

// formulaHerbs resolves a formula name to its herb list in 君臣佐使 order,
// falling back to treating the input as a comma-separated herb list.
func formulaHerbs(query string) (string, []string) {
	name, rec, ok := searchFormula(query)
	if !ok {
		return "", splitList(query)
	}
	roleOrder := []string{"君 (Sovereign)", "臣 (Minister)", "佐 (Assistant)", "使 (Envoy)"}
	var herbs []string
	seen := map[string]bool{}
	appendRole := func(role string) {
		for _, ing := range rec.Composition[role] {
			if !seen[ing.Herb] {
				seen[ing.Herb] = true
				herbs = append(herbs, ing.Herb)
			}
		}
	}
	for _, role := range roleOrder {
		appendRole(role)
	}
	var extra []string
	for role := range rec.Composition {
		known := false
		for _, r := range roleOrder {
			if role == r {
				known = true
				break
			}
		}
		if !known {
			extra = append(extra, role)
		}
	}
	sort.Strings(extra)
	for _, role := range extra {
		appendRole(role)
	}
	return name, herbs
}

type formulaNetwork struct {
	formula       string
	herbs         []string
	compounds     []string
	herbCompounds map[string][]string
	targetMap     map[string][]string
}

func buildNetwork(query string) (*formulaNetwork, error) {
	formulaName, herbs := formulaHerbs(query)
	if len(herbs) == 0 {
		return nil, fmt.Errorf("no herbs found for %q; provide a formula name or a comma-separated herb list", query)
	}
	net := &formulaNetwork{
		formula:       formulaName,
		herbCompounds: make(map[string][]string),
		targetMap:     make(map[string][]string),
	}
	if net.formula == "" {
		net.formula = "custom"
	}
	seenCompound := map[string]bool{}
	for _, herbName := range herbs {
		name, compounds, targetMap, ok := herbTargetMap(herbName)
		if !ok {
			continue
		}
		net.herbs = append(net.herbs, name)
		net.herbCompounds[name] = compounds
		for _, compound := range compounds {
			if !seenCompound[compound] {
				seenCompound[compound] = true
				net.compounds = append(net.compounds, compound)
			}
			if targets, found := targetMap[compound]; found {
				net.targetMap[compound] = targets
			}
		}
	}
	return net, nil
}

// renderNetworkASCII draws the herb, compound, and target layers of the
// network as a terminal diagram.
func (n *formulaNetwork) renderNetworkASCII() string {
	var b strings.Builder
	title := n.formula

	fmt.Fprintf(&b, "  ┌%s┐\n", strings.Repeat("─", len([]rune(title))+2))
	fmt.Fprintf(&b, "  │ %s │\n", title)
	fmt.Fprintf(&b, "  └%s┘\n", strings.Repeat("─", len([]rune(title))+2))
	b.WriteString("        │\n        ▼\n")

	b.WriteString("  ╔═══════════════════════════════════════╗\n")
	b.WriteString("  ║  HERBS (中药)\n")
	for _, herb := range n.herbs {
		fmt.Fprintf(&b, "  ║  ● %s\n", herb)
	}
	b.WriteString("  ╚═══════════════════════════════════════╝\n")

	b.WriteString("        │\n        ▼\n")
	b.WriteString("  ╔═══════════════════════════════════════╗\n")
	b.WriteString("  ║  COMPOUNDS (活性成分)\n")
	for _, herb := range n.herbs {
		fmt.Fprintf(&b, "  ║  %s:\n", herb)
		for _, compound := range n.herbCompounds[herb] {
			arrow := ""
			if count := len(n.targetMap[compound]); count > 0 {
				arrow = fmt.Sprintf(" → %d target(s)", count)
			}
			fmt.Fprintf(&b, "  ║    ├─ %s%s\n", compound, arrow)
		}
	}
	b.WriteString("  ╚═══════════════════════════════════════╝\n")

	b.WriteString("        │\n        ▼\n")
	b.WriteString("  ╔═══════════════════════════════════════╗\n")
	b.WriteString("  ║  TARGETS (靶点)\n")
	targets := uniqueTargets(n.targetMap)
	if len(targets) == 0 {
		b.WriteString("  ║  (no targets resolved)\n")
	} else {
		sources := map[string][]string{}
		for _, compound := range n.compounds {
			for _, t := range n.targetMap[compound] {
				sources[t] = append(sources[t], compound)
			}
		}
		for _, target := range targets {
			src := sources[target]
			label := strings.Join(src[:min(3, len(src))], ", ")
			if len(src) > 3 {
				label += fmt.Sprintf(" +%d", len(src)-3)
			}
			fmt.Fprintf(&b, "  ║  ◆ %-20s ← %s\n", target, label)
		}
	}
	b.WriteString("  ╚═══════════════════════════════════════╝\n")

	edges := 0
	for _, targets := range n.targetMap {
		edges += len(targets)
	}
	b.WriteString("\n  ─── Network Statistics ───\n")
	fmt.Fprintf(&b, "  Herbs:     %d\n", len(n.herbs))
	fmt.Fprintf(&b, "  Compounds: %d\n", len(n.compounds))
	fmt.Fprintf(&b, "  Targets:   %d\n", len(targets))
	fmt.Fprintf(&b, "  Edges:     %d", edges)
	return b.String()
}

func (n *formulaNetwork) stats() map[string]any {
	return map[string]any{
		"herbs":     len(n.herbs),
		"compounds": len(n.compounds),
		"targets":   len(uniqueTargets(n.targetMap)),
	}
}

func pharmacologyTools() []Tool {
	return []Tool{
		&funcTool{
			name:        "pharmacology.herb_targets",
			description: "Get all known molecular targets for a herb's active compounds. Builds herb→compound→target mapping.",
			schema:      objectSchema(map[string]any{"herb_name": stringProp("Herb name (Chinese or English)")}, "herb_name"),
			fn: func(ctx context.Context, args map[string]any) (any, error) {
				query, err := stringArg(args, "herb_name")
				if err != nil {
					return nil, err
				}
				name, compounds, targetMap, ok := herbTargetMap(query)
				if !ok {
					return notFound("Herb", query), nil
				}
				targets := uniqueTargets(targetMap)
				return map[string]any{
					"status":              "found",
					"herb":                name,
					"compound_target_map": targetMap,
					"unique_targets":      targets,
					"total_compounds":     len(compounds),
					"total_targets":       len(targets),
				}, nil
			},
		},
		&funcTool{
			name:        "pharmacology.pathway_enrichment",
			description: "Perform KEGG/GO pathway enrichment analysis on a gene/target list.",
			schema:      objectSchema(map[string]any{"gene_list": stringProp("Comma-separated list of gene symbols")}, "gene_list"),
			fn: func(ctx context.Context, args map[string]any) (any, error) {
				raw, err := stringArg(args, "gene_list")
				if err != nil {
					return nil, err
				}
				genes := splitList(raw)
				if len(genes) == 0 {
					return map[string]any{"status": "error", "message": "No genes provided."}, nil
				}
				return map[string]any{
					"status":     "info",
					"gene_count": len(genes),
					"genes":      genes,
					"message": "For full pathway enrichment use the Enrichr API with one of: " +
						"KEGG_2021_Human, GO_Biological_Process_2021, Reactome_2022, WikiPathways_2023.",
					"enrichr_url": "https://maayanlab.cloud/Enrichr/",
				}, nil
			},
		},
		&funcTool{
			name:        "pharmacology.network_build",
			description: "Build a herb-compound-target network from formula composition. Returns network statistics and key nodes.",
			schema:      objectSchema(map[string]any{"formula_name": stringProp("Formula name or comma-separated herb list")}, "formula_name"),
			fn: func(ctx context.Context, args map[string]any) (any, error) {
				query, err := stringArg(args, "formula_name")
				if err != nil {
					return nil, err
				}
				net, err := buildNetwork(query)
				if err != nil {
					return map[string]any{"status": "error", "message": err.Error()}, nil
				}
				return map[string]any{
					"status":        "found",
					"formula":       net.formula,
					"network_stats": net.stats(),
					"herbs":         net.herbs,
					"compounds":     net.compounds,
					"targets":       uniqueTargets(net.targetMap),
					"ascii_network": net.renderNetworkASCII(),
				}, nil
			},
		},
		&funcTool{
			name:        "pharmacology.visualize",
			description: "Visualize a herb-compound-target network as an ASCII diagram in the terminal. Shows the multi-layer network for a formula or herb list.",
			schema:      objectSchema(map[string]any{"formula_name": stringProp("Formula name or comma-separated herb list")}, "formula_name"),
			fn: func(ctx context.Context, args map[string]any) (any, error) {
				query, err := stringArg(args, "formula_name")
				if err != nil {
					return nil, err
				}
				net, err := buildNetwork(query)
				if err != nil {
					return map[string]any{"status": "error", "message": err.Error()}, nil
				}
				return map[string]any{
					"status":        "found",
					"formula":       net.formula,
					"network_stats": net.stats(),
					"visualization": net.renderNetworkASCII(),
				}, nil
			},
		},
	}
}

// openTargetsClient queries the Open Targets GraphQL endpoint for
// disease identifiers. Injected like the literature client so tests can
// point it at a fake server.
type openTargetsClient struct {
	httpClient *http.Client
	baseURL    string
}

func newOpenTargetsClient(httpClient *http.Client, baseURL string) *openTargetsClient {
	if baseURL == "" {
		baseURL = defaultOpenTargetsBaseURL
	}
	return &openTargetsClient{httpClient: httpClient, baseURL: baseURL}
}

func (c *openTargetsClient) diseaseSearch(ctx context.Context, disease string) (gjson.Result, error) {
	const query = `query($disease: String!) {
  search(queryString: $disease, entityNames: ["disease"], page: {size: 1, index: 0}) {
    hits { id name }
  }
}`
	payload, err := json.Marshal(map[string]any{
		"query":     query,
		"variables": map[string]string{"disease": disease},
	})
	if err != nil {
		return gjson.Result{}, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL, bytes.NewReader(payload))
	if err != nil {
		return gjson.Result{}, err
	}
	req.Header.Set("Content-Type", "application/json")
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
		return gjson.Result{}, fmt.Errorf("open targets returned http %d", resp.StatusCode)
	}
	return gjson.ParseBytes(body), nil
}

func diseaseTargetsTool(client *openTargetsClient) Tool {
	return &funcTool{
		name:        "pharmacology.disease_targets",
		description: "Retrieve disease-associated targets from public databases (Open Targets). Returns the disease identifier for follow-up queries.",
		schema:      objectSchema(map[string]any{"disease": stringProp("Disease name in English")}, "disease"),
		fn: func(ctx context.Context, args map[string]any) (any, error) {
			disease, err := stringArg(args, "disease")
			if err != nil {
				return nil, err
			}
			result, err := client.diseaseSearch(ctx, disease)
			if err != nil {
				return nil, fmt.Errorf("disease target search failed: %w", err)
			}
			hit := result.Get("data.search.hits.0")
			if !hit.Exists() {
				return map[string]any{
					"status":  "partial",
					"disease": disease,
					"message": "Could not retrieve a disease identifier. Try searching manually on Open Targets, GeneCards, or DisGeNET.",
				}, nil
			}
			return map[string]any{
				"status":     "found",
				"disease":    disease,
				"disease_id": hit.Get("id").String(),
				"name":       hit.Get("name").String(),
				"message":    "Use the Open Targets platform with this disease ID for the full target list.",
			}, nil
		},
	}
}
