package tools

import (
	"context"
	"fmt"
	"strings"
)

// Classical incompatibilities (十八反).
var eighteenIncompatibilities = map[string][]string{
	"甘草": {"海藻", "大戟", "甘遂", "芫花"},
	"乌头": {"贝母", "瓜蒌", "半夏", "白蔹", "白及"},
	"藜芦": {"人参", "沙参", "丹参", "玄参", "苦参", "细辛", "芍药"},
}

// Classical mutual fears (十九畏). The first member may list alternates
// separated by "/".
var nineteenFears = [][2]string{
	{"硫黄", "朴硝"}, {"水银", "砒霜"}, {"狼毒", "密陀僧"},
	{"巴豆", "牵牛子"}, {"丁香", "郁金"}, {"川乌/草乌", "犀角"},
	{"牙硝", "三棱"}, {"官桂", "赤石脂"}, {"人参", "五灵脂"},
}

type herbDrugInteraction struct {
	Herb        string `json:"herb"`
	Drug        string `json:"drug"`
	Interaction string `json:"interaction"`
	Severity    string `json:"severity"`
	Mechanism   string `json:"mechanism"`
}

var herbDrugInteractions = []herbDrugInteraction{
	{
		Herb:        "人参 (Ginseng)",
		Drug:        "Warfarin",
		Interaction: "May decrease anticoagulant effect",
		Severity:    "moderate",
		Mechanism:   "CYP enzyme induction, platelet aggregation effects",
	},
	{
		Herb:        "甘草 (Licorice)",
		Drug:        "Digoxin",
		Interaction: "Hypokalemia from licorice may potentiate digoxin toxicity",
		Severity:    "major",
		Mechanism:   "Mineralocorticoid effect causing potassium loss",
	},
	{
		Herb:        "当归 (Angelica)",
		Drug:        "Warfarin",
		Interaction: "May increase anticoagulant effect and bleeding risk",
		Severity:    "major",
		Mechanism:   "Coumarin derivatives in Angelica potentiate anticoagulation",
	},
	{
		Herb:        "黄连 (Coptis/Berberine)",
		Drug:        "Metformin",
		Interaction: "Additive hypoglycemic effect, may enhance blood sugar lowering",
		Severity:    "moderate",
		Mechanism:   "Both activate AMPK pathway",
	},
	{
		Herb:        "柴胡 (Bupleurum)",
		Drug:        "Interferon",
		Interaction: "May have additive immunomodulatory effects",
		Severity:    "minor",
		Mechanism:   "Both modulate immune response pathways",
	},
}

// checkHerbPairs runs the classical incompatibility tables over a herb
// list and returns structured warnings.
func checkHerbPairs(herbs []string) []map[string]any {
	present := make(map[string]bool, len(herbs))
	for _, h := range herbs {
		present[h] = true
	}

	var warnings []map[string]any
	for keyHerb, incompatible := range eighteenIncompatibilities {
		if !present[keyHerb] {
			continue
		}
		for _, inc := range incompatible {
			if present[inc] {
				warnings = append(warnings, map[string]any{
					"type":        "十八反 (18 Incompatibilities)",
					"herbs":       []string{keyHerb, inc},
					"severity":    "contraindicated",
					"description": fmt.Sprintf("%s is classically incompatible with %s", keyHerb, inc),
				})
			}
		}
	}

	for _, pair := range nineteenFears {
		first := false
		for _, alt := range strings.Split(pair[0], "/") {
			if present[alt] {
				first = true
				break
			}
		}
		if first && present[pair[1]] {
			warnings = append(warnings, map[string]any{
				"type":        "十九畏 (19 Mutual Fears)",
				"herbs":       []string{pair[0], pair[1]},
				"severity":    "caution",
				"description": fmt.Sprintf("%s and %s are classically considered mutually antagonistic", pair[0], pair[1]),
			})
		}
	}
	return warnings
}

func checkHerbsResult(herbs []string) map[string]any {
	warnings := checkHerbPairs(herbs)
	if len(warnings) > 0 {
		return map[string]any{
			"status":   "warnings",
			"count":    len(warnings),
			"warnings": warnings,
		}
	}
	return map[string]any{
		"status":  "safe",
		"message": "No classical incompatibilities found between the listed herbs.",
	}
}

func interactionTools() []Tool {
	return []Tool{
		&funcTool{
			name:        "interactions.check_herbs",
			description: "Check for classical incompatibilities (十八反/十九畏) between two or more herbs.",
			schema:      objectSchema(map[string]any{"herbs": stringProp("Comma-separated list of herb names (Chinese)")}, "herbs"),
			fn: func(ctx context.Context, args map[string]any) (any, error) {
				raw, err := stringArg(args, "herbs")
				if err != nil {
					return nil, err
				}
				return checkHerbsResult(splitList(raw)), nil
			},
		},
		&funcTool{
			name:        "interactions.herb_drug",
			description: "Check for known interactions between a Chinese herb and a Western drug.",
			schema: objectSchema(map[string]any{
				"herb": stringProp("Herb name"),
				"drug": stringProp("Drug name"),
			}, "herb", "drug"),
			fn: func(ctx context.Context, args map[string]any) (any, error) {
				herb, err := stringArg(args, "herb")
				if err != nil {
					return nil, err
				}
				drug, err := stringArg(args, "drug")
				if err != nil {
					return nil, err
				}
				herbLower := strings.ToLower(herb)
				drugLower := strings.ToLower(drug)
				var matches []herbDrugInteraction
				for _, hd := range herbDrugInteractions {
					if strings.Contains(strings.ToLower(hd.Herb), herbLower) &&
						strings.Contains(strings.ToLower(hd.Drug), drugLower) {
						matches = append(matches, hd)
					}
				}
				if len(matches) > 0 {
					return map[string]any{"status": "found", "interactions": matches}, nil
				}
				return map[string]any{
					"status":  "not_found",
					"message": fmt.Sprintf("No known interactions found between %q and %q in local database. Consider consulting a pharmacist.", herb, drug),
				}, nil
			},
		},
		&funcTool{
			name:        "interactions.formula_safety",
			description: "Run a comprehensive safety check on a formula's herb combination. Checks both classical and modern interactions.",
			schema:      objectSchema(map[string]any{"herbs": stringProp("Comma-separated list of herbs")}, "herbs"),
			fn: func(ctx context.Context, args map[string]any) (any, error) {
				raw, err := stringArg(args, "herbs")
				if err != nil {
					return nil, err
				}
				return map[string]any{
					"status":            "complete",
					"herb_interactions": checkHerbsResult(splitList(raw)),
					"note":              "This checks classical TCM incompatibilities. For herb-drug interactions, use interactions.herb_drug for each herb-drug pair.",
				}, nil
			},
		},
	}
}
