package tools

import (
	"context"
	"fmt"
)

type toxicityProfile struct {
	Toxicity       string   `json:"toxicity"`
	ToxicCompounds []string `json:"toxic_compounds"`
	MaxDosage      string   `json:"max_dosage"`
	Notes          string   `json:"notes"`
}

var toxicHerbs = map[string]toxicityProfile{
	"附子": {
		Toxicity:       "有毒 (Toxic)",
		ToxicCompounds: []string{"Aconitine"},
		MaxDosage:      "3-15g (processed)",
		Notes:          "Must be processed (炮制). Raw aconite is extremely toxic.",
	},
	"半夏": {
		Toxicity:       "有毒 (Toxic)",
		ToxicCompounds: []string{"3,4-dihydroxybenzaldehyde"},
		MaxDosage:      "3-9g (processed)",
		Notes:          "Must use processed form (制半夏). Raw is irritating and toxic.",
	},
	"马钱子": {
		Toxicity:       "大毒 (Very Toxic)",
		ToxicCompounds: []string{"Strychnine", "Brucine"},
		MaxDosage:      "0.3-0.6g (processed)",
		Notes:          "Extremely narrow therapeutic window. External use preferred.",
	},
	"雷公藤": {
		Toxicity:       "大毒 (Very Toxic)",
		ToxicCompounds: []string{"Triptolide", "Celastrol"},
		MaxDosage:      "10-25g (root, decocted 2h+)",
		Notes:          "Hepatotoxic, nephrotoxic, gonadotoxic. Requires careful monitoring.",
	},
	"细辛": {
		Toxicity:       "有毒 (Toxic)",
		ToxicCompounds: []string{"Aristolochic acid (in root)"},
		MaxDosage:      "1-3g",
		Notes:          "Use above-ground parts only. Root contains aristolochic acid (carcinogenic).",
	},
}

var pregnancyContraindicated = []string{
	"附子", "大黄", "芒硝", "巴豆", "牵牛子", "芫花", "大戟", "甘遂",
	"麝香", "三棱", "莪术", "水蛭", "虻虫", "马钱子", "雷公藤",
}

var pregnancyCaution = []string{
	"桃仁", "红花", "牛膝", "王不留行", "川芎", "丹参", "半夏",
	"薏苡仁", "肉桂", "枳实", "干姜",
}

func safetyTools() []Tool {
	return []Tool{
		&funcTool{
			name:        "safety.toxicity_check",
			description: "Check if a herb has known toxicity. Returns toxicity level, toxic compounds, and safe dosage range.",
			schema:      objectSchema(map[string]any{"herb_name": stringProp("Herb name (Chinese)")}, "herb_name"),
			fn: func(ctx context.Context, args map[string]any) (any, error) {
				herb, err := stringArg(args, "herb_name")
				if err != nil {
					return nil, err
				}
				if profile, ok := toxicHerbs[herb]; ok {
					return map[string]any{
						"status":          "toxic",
						"herb":            herb,
						"toxicity":        profile.Toxicity,
						"toxic_compounds": profile.ToxicCompounds,
						"max_dosage":      profile.MaxDosage,
						"notes":           profile.Notes,
					}, nil
				}
				return map[string]any{
					"status":  "not_toxic",
					"herb":    herb,
					"message": "No known toxicity in standard pharmacopoeia dosages.",
				}, nil
			},
		},
		&funcTool{
			name:        "safety.pregnancy_check",
			description: "Check if herbs are safe during pregnancy. Identifies contraindicated and cautionary herbs.",
			schema:      objectSchema(map[string]any{"herbs": stringProp("Comma-separated list of herb names")}, "herbs"),
			fn: func(ctx context.Context, args map[string]any) (any, error) {
				raw, err := stringArg(args, "herbs")
				if err != nil {
					return nil, err
				}
				herbs := splitList(raw)
				var contraindicated, caution, safe []string
				for _, h := range herbs {
					switch {
					case containsString(pregnancyContraindicated, h):
						contraindicated = append(contraindicated, h)
					case containsString(pregnancyCaution, h):
						caution = append(caution, h)
					default:
						safe = append(safe, h)
					}
				}
				status := "safe"
				if len(contraindicated) > 0 {
					status = "contraindicated"
				} else if len(caution) > 0 {
					status = "caution"
				}
				return map[string]any{
					"status":          status,
					"contraindicated": contraindicated,
					"caution":         caution,
					"safe":            safe,
				}, nil
			},
		},
		&funcTool{
			name:        "safety.dosage_validate",
			description: "Validate if a herb dosage is within the recommended range.",
			schema: objectSchema(map[string]any{
				"herb_name": stringProp("Herb name"),
				"dosage_g":  numberProp("Dosage in grams"),
			}, "herb_name", "dosage_g"),
			fn: func(ctx context.Context, args map[string]any) (any, error) {
				herb, err := stringArg(args, "herb_name")
				if err != nil {
					return nil, err
				}
				dosage, err := floatArg(args, "dosage_g")
				if err != nil {
					return nil, err
				}
				name, rec, ok := searchHerb(herb)
				if !ok {
					return map[string]any{
						"status":  "unknown",
						"message": fmt.Sprintf("Herb %q not found for dosage validation.", herb),
					}, nil
				}
				return map[string]any{
					"status":            "info",
					"herb":              name,
					"requested_dosage":  fmt.Sprintf("%gg", dosage),
					"recommended_range": rec.Dosage,
					"message":           "Compare requested dosage against the recommended range. Adjust based on patient condition and formula context.",
				}, nil
			},
		},
	}
}

func containsString(list []string, target string) bool {
	for _, item := range list {
		if item == target {
			return true
		}
	}
	return false
}
