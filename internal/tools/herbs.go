package tools

import (
	"context"
	"fmt"
	"strings"
)

// herbRecord is one materia medica entry in the offline knowledge base.
type herbRecord struct {
	Pinyin            string   `json:"pinyin"`
	Latin             string   `json:"latin"`
	English           string   `json:"english"`
	Nature            string   `json:"nature"`
	Flavor            string   `json:"flavor"`
	Meridians         []string `json:"meridians"`
	Category          string   `json:"category"`
	Functions         []string `json:"functions"`
	Dosage            string   `json:"dosage"`
	Contraindications string   `json:"contraindications"`
	KeyCompounds      []string `json:"key_compounds"`
}

var herbDB = map[string]herbRecord{
	"人参": {
		Pinyin:  "Rén Shēn",
		Latin:   "Radix et Rhizoma Ginseng",
		English: "Ginseng",
		Nature:  "微温 (Slightly Warm)",
		Flavor:  "甘、微苦 (Sweet, Slightly Bitter)",
		Meridians: []string{
			"脾 (Spleen)", "肺 (Lung)", "心 (Heart)", "肾 (Kidney)",
		},
		Category: "补气药 (Qi-Tonifying)",
		Functions: []string{
			"大补元气 (Greatly tonifies original Qi)",
			"复脉固脱 (Restores pulse and prevents collapse)",
			"补脾益肺 (Tonifies Spleen and benefits Lung)",
			"生津养血 (Generates fluids and nourishes Blood)",
			"安神益智 (Calms spirit and benefits intelligence)",
		},
		Dosage:            "3-9g; 15-30g for rescue from collapse",
		Contraindications: "Not for excess heat or Qi stagnation. Incompatible with 藜芦 (Veratrum).",
		KeyCompounds:      []string{"Ginsenoside Rg1", "Ginsenoside Rb1", "Ginsenoside Re"},
	},
	"黄芪": {
		Pinyin:    "Huáng Qí",
		Latin:     "Radix Astragali",
		English:   "Astragalus",
		Nature:    "微温 (Slightly Warm)",
		Flavor:    "甘 (Sweet)",
		Meridians: []string{"脾 (Spleen)", "肺 (Lung)"},
		Category:  "补气药 (Qi-Tonifying)",
		Functions: []string{
			"补气升阳 (Tonifies Qi and raises Yang)",
			"固表止汗 (Consolidates exterior and stops sweating)",
			"利水消肿 (Promotes urination and reduces edema)",
			"生津养血 (Generates fluids and nourishes Blood)",
			"托毒排脓 (Expels toxins and drains pus)",
		},
		Dosage:            "9-30g",
		Contraindications: "Not for excess exterior or Qi stagnation with food retention.",
		KeyCompounds:      []string{"Astragaloside IV", "Cycloastragenol", "Calycosin"},
	},
	"当归": {
		Pinyin:    "Dāng Guī",
		Latin:     "Radix Angelicae Sinensis",
		English:   "Chinese Angelica",
		Nature:    "温 (Warm)",
		Flavor:    "甘、辛 (Sweet, Acrid)",
		Meridians: []string{"肝 (Liver)", "心 (Heart)", "脾 (Spleen)"},
		Category:  "补血药 (Blood-Tonifying)",
		Functions: []string{
			"补血活血 (Tonifies and activates Blood)",
			"调经止痛 (Regulates menstruation and relieves pain)",
			"润肠通便 (Moistens intestines and unblocks bowels)",
		},
		Dosage:            "6-12g",
		Contraindications: "Not for diarrhea due to dampness or abdominal fullness.",
		KeyCompounds:      []string{"Ligustilide", "Ferulic acid", "Angelica polysaccharides"},
	},
	"甘草": {
		Pinyin:  "Gān Cǎo",
		Latin:   "Radix et Rhizoma Glycyrrhizae",
		English: "Licorice",
		Nature:  "平 (Neutral)",
		Flavor:  "甘 (Sweet)",
		Meridians: []string{
			"心 (Heart)", "肺 (Lung)", "脾 (Spleen)", "胃 (Stomach)",
		},
		Category: "补气药 (Qi-Tonifying)",
		Functions: []string{
			"补脾益气 (Tonifies Spleen and benefits Qi)",
			"清热解毒 (Clears heat and resolves toxins)",
			"祛痰止咳 (Expels phlegm and stops coughing)",
			"缓急止痛 (Relaxes urgency and relieves pain)",
			"调和诸药 (Harmonizes other herbs)",
		},
		Dosage:            "2-10g",
		Contraindications: "Prolonged high-dose use may cause edema and hypertension.",
		KeyCompounds:      []string{"Glycyrrhizin", "Liquiritin", "Isoliquiritigenin"},
	},
	"黄连": {
		Pinyin:  "Huáng Lián",
		Latin:   "Rhizoma Coptidis",
		English: "Coptis",
		Nature:  "寒 (Cold)",
		Flavor:  "苦 (Bitter)",
		Meridians: []string{
			"心 (Heart)", "脾 (Spleen)", "胃 (Stomach)", "肝 (Liver)",
			"胆 (Gallbladder)", "大肠 (Large Intestine)",
		},
		Category: "清热燥湿药 (Heat-Clearing, Dampness-Drying)",
		Functions: []string{
			"清热燥湿 (Clears heat and dries dampness)",
			"泻火解毒 (Drains fire and resolves toxins)",
		},
		Dosage:            "2-5g",
		Contraindications: "Not for Spleen and Stomach deficiency cold.",
		KeyCompounds:      []string{"Berberine", "Coptisine", "Palmatine"},
	},
	"柴胡": {
		Pinyin:    "Chái Hú",
		Latin:     "Radix Bupleuri",
		English:   "Bupleurum",
		Nature:    "微寒 (Slightly Cold)",
		Flavor:    "辛、苦 (Acrid, Bitter)",
		Meridians: []string{"肝 (Liver)", "胆 (Gallbladder)", "肺 (Lung)"},
		Category:  "解表药 (Exterior-Releasing)",
		Functions: []string{
			"和解表里 (Harmonizes exterior and interior)",
			"疏肝升阳 (Courses Liver and raises Yang)",
			"退热 (Reduces fever)",
		},
		Dosage:            "3-10g",
		Contraindications: "Not for Liver-Wind-moving or Yin deficiency with fire.",
		KeyCompounds:      []string{"Saikosaponin A", "Saikosaponin D", "Bupleurumol"},
	},
	"白术": {
		Pinyin:    "Bái Zhú",
		Latin:     "Rhizoma Atractylodis Macrocephalae",
		English:   "White Atractylodes",
		Nature:    "温 (Warm)",
		Flavor:    "甘、苦 (Sweet, Bitter)",
		Meridians: []string{"脾 (Spleen)", "胃 (Stomach)"},
		Category:  "补气药 (Qi-Tonifying)",
		Functions: []string{
			"健脾益气 (Strengthens Spleen and benefits Qi)",
			"燥湿利水 (Dries dampness and promotes urination)",
			"止汗 (Stops sweating)",
			"安胎 (Calms fetus)",
		},
		Dosage:            "6-12g",
		Contraindications: "Not for Yin deficiency with internal heat.",
		KeyCompounds:      []string{"Atractylenolide I", "Atractylenolide III", "Atractylone"},
	},
	"茯苓": {
		Pinyin:  "Fú Líng",
		Latin:   "Poria",
		English: "Poria",
		Nature:  "平 (Neutral)",
		Flavor:  "甘、淡 (Sweet, Bland)",
		Meridians: []string{
			"心 (Heart)", "肺 (Lung)", "脾 (Spleen)", "肾 (Kidney)",
		},
		Category: "利水渗湿药 (Dampness-Draining)",
		Functions: []string{
			"利水渗湿 (Promotes urination and drains dampness)",
			"健脾 (Strengthens Spleen)",
			"宁心安神 (Calms heart and tranquilizes spirit)",
		},
		Dosage:            "10-15g",
		Contraindications: "Not for frequent urination due to deficiency cold.",
		KeyCompounds:      []string{"Pachymic acid", "Poricoic acid", "Beta-pachyman"},
	},
}

// searchHerb matches by Chinese name, pinyin, English name, or a Latin
// substring.
func searchHerb(query string) (string, herbRecord, bool) {
	q := strings.ToLower(strings.TrimSpace(query))
	for name, rec := range herbDB {
		if q == strings.ToLower(name) ||
			q == strings.ToLower(rec.Pinyin) ||
			q == strings.ToLower(rec.English) ||
			strings.Contains(strings.ToLower(rec.Latin), q) {
			return name, rec, true
		}
	}
	return "", herbRecord{}, false
}

func herbTools() []Tool {
	return []Tool{
		&funcTool{
			name:        "herbs.lookup",
			description: "Look up a Chinese herb by name (Chinese, pinyin, English, or Latin). Returns properties, functions, dosage, and key compounds.",
			schema:      objectSchema(map[string]any{"query": stringProp("Herb name to search for")}, "query"),
			fn: func(ctx context.Context, args map[string]any) (any, error) {
				query, err := stringArg(args, "query")
				if err != nil {
					return nil, err
				}
				name, rec, ok := searchHerb(query)
				if !ok {
					return map[string]any{
						"status":  "not_found",
						"message": fmt.Sprintf("Herb %q not found in local database. Try literature.pubmed_search for online evidence.", query),
					}, nil
				}
				return map[string]any{
					"status": "found",
					"herb":   herbPayload(name, rec),
				}, nil
			},
		},
		&funcTool{
			name:        "herbs.properties",
			description: "Classify herb by its Four Natures (四气) and Five Flavors (五味). Returns nature, flavor, and meridian tropism.",
			schema:      objectSchema(map[string]any{"herb_name": stringProp("Herb name (Chinese or English)")}, "herb_name"),
			fn: func(ctx context.Context, args map[string]any) (any, error) {
				query, err := stringArg(args, "herb_name")
				if err != nil {
					return nil, err
				}
				name, rec, ok := searchHerb(query)
				if !ok {
					return notFound("Herb", query), nil
				}
				return map[string]any{
					"status":    "found",
					"herb":      name,
					"nature":    rec.Nature,
					"flavor":    rec.Flavor,
					"meridians": rec.Meridians,
					"category":  rec.Category,
				}, nil
			},
		},
		&funcTool{
			name:        "herbs.by_category",
			description: "List herbs in a specific therapeutic category (e.g., 补气药, 清热药, 活血化瘀药).",
			schema:      objectSchema(map[string]any{"category": stringProp("Therapeutic category name (Chinese or English)")}, "category"),
			fn: func(ctx context.Context, args map[string]any) (any, error) {
				category, err := stringArg(args, "category")
				if err != nil {
					return nil, err
				}
				q := strings.ToLower(category)
				var matches []map[string]any
				for name, rec := range herbDB {
					if strings.Contains(strings.ToLower(rec.Category), q) {
						matches = append(matches, map[string]any{
							"chinese_name": name,
							"pinyin":       rec.Pinyin,
							"english":      rec.English,
							"category":     rec.Category,
						})
					}
				}
				if len(matches) == 0 {
					return notFound("No herbs found in category", category), nil
				}
				return map[string]any{"status": "found", "count": len(matches), "herbs": matches}, nil
			},
		},
		&funcTool{
			name:        "herbs.by_meridian",
			description: "Find herbs that enter a specific meridian/channel (e.g., 肝经, 心经, Liver, Heart).",
			schema:      objectSchema(map[string]any{"meridian": stringProp("Meridian name (Chinese or English)")}, "meridian"),
			fn: func(ctx context.Context, args map[string]any) (any, error) {
				meridian, err := stringArg(args, "meridian")
				if err != nil {
					return nil, err
				}
				q := strings.ToLower(meridian)
				var matches []map[string]any
				for name, rec := range herbDB {
					for _, m := range rec.Meridians {
						if strings.Contains(strings.ToLower(m), q) {
							matches = append(matches, map[string]any{
								"chinese_name": name,
								"pinyin":       rec.Pinyin,
								"english":      rec.English,
								"meridians":    rec.Meridians,
							})
							break
						}
					}
				}
				if len(matches) == 0 {
					return notFound("No herbs found for meridian", meridian), nil
				}
				return map[string]any{"status": "found", "count": len(matches), "herbs": matches}, nil
			},
		},
		&funcTool{
			name:        "herbs.compounds",
			description: "List key active compounds for a given herb.",
			schema:      objectSchema(map[string]any{"herb_name": stringProp("Herb name")}, "herb_name"),
			fn: func(ctx context.Context, args map[string]any) (any, error) {
				query, err := stringArg(args, "herb_name")
				if err != nil {
					return nil, err
				}
				name, rec, ok := searchHerb(query)
				if !ok {
					return notFound("Herb", query), nil
				}
				return map[string]any{
					"status":        "found",
					"herb":          name,
					"english":       rec.English,
					"key_compounds": rec.KeyCompounds,
				}, nil
			},
		},
	}
}

func herbPayload(name string, rec herbRecord) map[string]any {
	return map[string]any{
		"chinese_name":      name,
		"pinyin":            rec.Pinyin,
		"latin":             rec.Latin,
		"english":           rec.English,
		"nature":            rec.Nature,
		"flavor":            rec.Flavor,
		"meridians":         rec.Meridians,
		"category":          rec.Category,
		"functions":         rec.Functions,
		"dosage":            rec.Dosage,
		"contraindications": rec.Contraindications,
		"key_compounds":     rec.KeyCompounds,
	}
}

func notFound(what, query string) map[string]any {
	return map[string]any{
		"status":  "not_found",
		"message": fmt.Sprintf("%s %q not found.", what, query),
	}
}
