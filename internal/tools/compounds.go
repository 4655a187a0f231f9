package tools

import (
	"context"
	"fmt"
	"strings"
)

// compoundRecord is one active compound in the offline knowledge base.
// OB is oral bioavailability percent, DL the drug-likeness index, both
// as reported by TCMSP.
type compoundRecord struct {
	Name             string   `json:"name"`
	ChineseName      string   `json:"chinese_name"`
	SourceHerbs      []string `json:"source_herbs"`
	MolecularFormula string   `json:"molecular_formula"`
	MolecularWeight  float64  `json:"molecular_weight"`
	OBPercent        float64  `json:"ob_percent"`
	DL               float64  `json:"dl"`
	KnownTargets     []string `json:"known_targets"`
	Actions          []string `json:"pharmacological_actions"`
}

var compoundDB = map[string]compoundRecord{
	"berberine": {
		Name:             "Berberine",
		ChineseName:      "小檗碱",
		SourceHerbs:      []string{"黄连 (Coptis)", "黄柏 (Phellodendron)"},
		MolecularFormula: "C20H18NO4+",
		MolecularWeight:  336.36,
		OBPercent:        36.86,
		DL:               0.78,
		KnownTargets:     []string{"DPP4", "AChE", "PTGS2", "HMGCR", "AMPK"},
		Actions: []string{
			"Anti-inflammatory", "Antimicrobial", "Hypoglycemic",
			"Lipid-lowering", "Neuroprotective",
		},
	},
	"ginsenoside rg1": {
		Name:             "Ginsenoside Rg1",
		ChineseName:      "人参皂苷Rg1",
		SourceHerbs:      []string{"人参 (Ginseng)"},
		MolecularFormula: "C42H72O14",
		MolecularWeight:  801.01,
		OBPercent:        12.28,
		DL:               0.84,
		KnownTargets:     []string{"ESR1", "AR", "GR", "PPARG"},
		Actions: []string{
			"Neuroprotective", "Anti-fatigue", "Immunomodulatory", "Cardioprotective",
		},
	},
	"astragaloside iv": {
		Name:             "Astragaloside IV",
		ChineseName:      "黄芪甲苷",
		SourceHerbs:      []string{"黄芪 (Astragalus)"},
		MolecularFormula: "C41H68O14",
		MolecularWeight:  784.97,
		OBPercent:        17.74,
		DL:               0.15,
		KnownTargets:     []string{"TLR4", "NF-κB", "PI3K", "AKT"},
		Actions: []string{
			"Cardioprotective", "Anti-inflammatory", "Immunomodulatory", "Anti-fibrotic",
		},
	},
	"glycyrrhizin": {
		Name:             "Glycyrrhizin",
		ChineseName:      "甘草酸",
		SourceHerbs:      []string{"甘草 (Licorice)"},
		MolecularFormula: "C42H62O16",
		MolecularWeight:  822.93,
		OBPercent:        19.62,
		DL:               0.11,
		KnownTargets:     []string{"HMGB1", "NR3C1", "TNF"},
		Actions: []string{
			"Anti-inflammatory", "Hepatoprotective", "Antiviral", "Mineralocorticoid-like",
		},
	},
	"saikosaponin a": {
		Name:             "Saikosaponin A",
		ChineseName:      "柴胡皂苷A",
		SourceHerbs:      []string{"柴胡 (Bupleurum)"},
		MolecularFormula: "C42H68O13",
		MolecularWeight:  780.98,
		OBPercent:        32.39,
		DL:               0.1,
		KnownTargets:     []string{"NF-κB", "STAT3", "CASP3"},
		Actions: []string{
			"Anti-inflammatory", "Hepatoprotective", "Antidepressant-like",
		},
	},
}

// searchCompound matches by compound name, Chinese name, or source herb.
func searchCompound(query string) (compoundRecord, bool) {
	q := strings.ToLower(strings.TrimSpace(query))
	for key, rec := range compoundDB {
		if strings.Contains(key, q) || strings.Contains(strings.ToLower(rec.ChineseName), q) {
			return rec, true
		}
	}
	for _, rec := range compoundDB {
		for _, herb := range rec.SourceHerbs {
			if strings.Contains(strings.ToLower(herb), q) {
				return rec, true
			}
		}
	}
	return compoundRecord{}, false
}

func compoundTools() []Tool {
	return []Tool{
		&funcTool{
			name:        "compounds.search",
			description: "Search for active compounds by name or herb source. Returns molecular properties and known targets.",
			schema:      objectSchema(map[string]any{"query": stringProp("Compound name or herb source")}, "query"),
			fn: func(ctx context.Context, args map[string]any) (any, error) {
				query, err := stringArg(args, "query")
				if err != nil {
					return nil, err
				}
				rec, ok := searchCompound(query)
				if !ok {
					return map[string]any{
						"status":  "not_found",
						"message": fmt.Sprintf("Compound %q not found in local database. Try literature.pubmed_search for published data.", query),
					}, nil
				}
				return map[string]any{"status": "found", "compound": rec}, nil
			},
		},
		&funcTool{
			name:        "compounds.admet",
			description: "Predict ADMET (Absorption, Distribution, Metabolism, Excretion, Toxicity) properties for a compound.",
			schema:      objectSchema(map[string]any{"compound_name": stringProp("Compound name")}, "compound_name"),
			fn: func(ctx context.Context, args map[string]any) (any, error) {
				name, err := stringArg(args, "compound_name")
				if err != nil {
					return nil, err
				}
				result := map[string]any{
					"status":   "info",
					"compound": name,
					"message":  "Full ADMET prediction requires an online TCMSP or SwissADME lookup. Screen against the general criteria below.",
					"general_criteria": map[string]any{
						"OB_threshold":  ">=30% (oral bioavailability)",
						"DL_threshold":  ">=0.18 (drug-likeness)",
						"Lipinski_rule": "MW<=500, LogP<=5, HBD<=5, HBA<=10",
					},
				}
				if rec, ok := searchCompound(name); ok {
					result["known_properties"] = map[string]any{
						"molecular_weight": rec.MolecularWeight,
						"ob_percent":       rec.OBPercent,
						"dl":               rec.DL,
						"passes_ob":        rec.OBPercent >= 30,
						"passes_dl":        rec.DL >= 0.18,
					}
				}
				return result, nil
			},
		},
		&funcTool{
			name:        "compounds.targets",
			description: "Retrieve known molecular targets for a compound.",
			schema:      objectSchema(map[string]any{"compound_name": stringProp("Compound name")}, "compound_name"),
			fn: func(ctx context.Context, args map[string]any) (any, error) {
				name, err := stringArg(args, "compound_name")
				if err != nil {
					return nil, err
				}
				rec, ok := searchCompound(name)
				if !ok {
					return notFound("Compound", name), nil
				}
				return map[string]any{
					"status":                  "found",
					"compound":                rec.Name,
					"targets":                 rec.KnownTargets,
					"pharmacological_actions": rec.Actions,
				}, nil
			},
		},
	}
}
