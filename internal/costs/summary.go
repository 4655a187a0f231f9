package costs

import (
	"fmt"
	"sort"
	"strings"
)

// GroupTotals aggregates the records that share one provider/model pair.
type GroupTotals struct {
	Provider     string
	Model        string
	Calls        int
	Failures     int
	InputTokens  int
	OutputTokens int
	TotalTokens  int
	CostUSD      float64
}

// Summary aggregates the in-memory records by provider and model, in
// stable provider-then-model order.
func (l *Ledger) Summary() []GroupTotals {
	byKey := make(map[string]*GroupTotals)
	for _, rec := range l.Records() {
		key := rec.Provider + "\x00" + rec.Model
		g, ok := byKey[key]
		if !ok {
			g = &GroupTotals{Provider: rec.Provider, Model: rec.Model}
			byKey[key] = g
		}
		g.Calls++
		if rec.Status != StatusOK {
			g.Failures++
		}
		g.InputTokens += rec.InputTokens
		g.OutputTokens += rec.OutputTokens
		g.TotalTokens += rec.TotalTokens
		g.CostUSD += rec.CostUSD
	}

	out := make([]GroupTotals, 0, len(byKey))
	for _, g := range byKey {
		out = append(out, *g)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Provider != out[j].Provider {
			return out[i].Provider < out[j].Provider
		}
		return out[i].Model < out[j].Model
	})
	return out
}

// FormatSummary renders the per-model totals as a readable report.
func (l *Ledger) FormatSummary() string {
	groups := l.Summary()
	if len(groups) == 0 {
		return "no usage recorded"
	}

	var b strings.Builder
	var totalCalls, totalTokens int
	var totalCost float64
	b.WriteString("Usage by model:\n")
	for _, g := range groups {
		fmt.Fprintf(&b, "  %s/%s: %d calls", g.Provider, g.Model, g.Calls)
		if g.Failures > 0 {
			fmt.Fprintf(&b, " (%d failed)", g.Failures)
		}
		fmt.Fprintf(&b, ", %d in / %d out tokens, $%.4f\n",
			g.InputTokens, g.OutputTokens, g.CostUSD)
		totalCalls += g.Calls
		totalTokens += g.TotalTokens
		totalCost += g.CostUSD
	}
	fmt.Fprintf(&b, "Total: %d calls, %d tokens, $%.4f", totalCalls, totalTokens, totalCost)
	return b.String()
}
