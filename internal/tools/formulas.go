package tools

import (
	"context"
	"strings"
)

type formulaIngredient struct {
	Herb   string `json:"herb"`
	Dosage string `json:"dosage"`
	Role   string `json:"role"`
}

// formulaRecord is one classical prescription with its 君臣佐使 roles.
type formulaRecord struct {
	Pinyin        string                         `json:"pinyin"`
	English       string                         `json:"english"`
	Source        string                         `json:"source"`
	Category      string                         `json:"category"`
	Composition   map[string][]formulaIngredient `json:"composition"`
	Functions     string                         `json:"functions"`
	Indications   string                         `json:"indications"`
	Modifications map[string]string              `json:"modifications"`
}

var formulaDB = map[string]formulaRecord{
	"四君子汤": {
		Pinyin:   "Sì Jūn Zǐ Tāng",
		English:  "Four Gentlemen Decoction",
		Source:   "《太平惠民和剂局方》(Taiping Huimin Heji Ju Fang)",
		Category: "补益剂-补气 (Tonifying - Qi-Supplementing)",
		Composition: map[string][]formulaIngredient{
			"君 (Sovereign)": {{Herb: "人参", Dosage: "9g", Role: "Greatly tonifies original Qi"}},
			"臣 (Minister)":  {{Herb: "白术", Dosage: "9g", Role: "Strengthens Spleen, dries dampness"}},
			"佐 (Assistant)": {{Herb: "茯苓", Dosage: "9g", Role: "Drains dampness, assists Spleen"}},
			"使 (Envoy)":     {{Herb: "甘草", Dosage: "6g", Role: "Harmonizes formula, tonifies Qi"}},
		},
		Functions:   "益气健脾 (Augments Qi and strengthens Spleen)",
		Indications: "Spleen Qi deficiency: pale complexion, soft voice, reduced appetite, loose stools, fatigue",
		Modifications: map[string]string{
			"加陈皮 → 异功散":       "Add Chenpi for Qi stagnation with dampness",
			"加陈皮半夏 → 六君子汤":    "Add Chenpi + Banxia for phlegm-dampness",
			"加木香砂仁 → 香砂六君子汤": "Add Muxiang + Sharen for severe Qi stagnation",
		},
	},
	"小柴胡汤": {
		Pinyin:   "Xiǎo Chái Hú Tāng",
		English:  "Minor Bupleurum Decoction",
		Source:   "《伤寒论》(Shanghan Lun)",
		Category: "和解剂 (Harmonizing)",
		Composition: map[string][]formulaIngredient{
			"君 (Sovereign)": {{Herb: "柴胡", Dosage: "24g", Role: "Harmonizes Shaoyang, relieves exterior"}},
			"臣 (Minister)":  {{Herb: "黄芩", Dosage: "9g", Role: "Clears Shaoyang heat"}},
			"佐 (Assistant)": {
				{Herb: "半夏", Dosage: "9g", Role: "Harmonizes Stomach, descends rebellious Qi"},
				{Herb: "人参", Dosage: "9g", Role: "Supports healthy Qi"},
				{Herb: "生姜", Dosage: "9g", Role: "Assists in harmonizing Stomach"},
				{Herb: "大枣", Dosage: "4 pieces", Role: "Nourishes Qi and Blood"},
			},
			"使 (Envoy)": {{Herb: "甘草", Dosage: "9g", Role: "Harmonizes all herbs"}},
		},
		Functions:   "和解少阳 (Harmonizes Shaoyang)",
		Indications: "Shaoyang syndrome: alternating chills and fever, bitter taste, dry throat, dizziness, chest fullness",
		Modifications: map[string]string{
			"去参枣加桂枝 → 柴胡桂枝汤": "For concurrent Taiyang symptoms",
			"加芒硝 → 大柴胡汤":      "For concurrent Yangming symptoms",
		},
	},
	"补中益气汤": {
		Pinyin:   "Bǔ Zhōng Yì Qì Tāng",
		English:  "Tonify the Middle and Augment Qi Decoction",
		Source:   "《脾胃论》(Pi Wei Lun)",
		Category: "补益剂-补气 (Tonifying - Qi-Supplementing)",
		Composition: map[string][]formulaIngredient{
			"君 (Sovereign)": {{Herb: "黄芪", Dosage: "15-20g", Role: "Tonifies Qi, raises Yang"}},
			"臣 (Minister)": {
				{Herb: "人参", Dosage: "9g", Role: "Tonifies Spleen Qi"},
				{Herb: "白术", Dosage: "9g", Role: "Strengthens Spleen"},
			},
			"佐 (Assistant)": {
				{Herb: "当归", Dosage: "6g", Role: "Nourishes Blood"},
				{Herb: "陈皮", Dosage: "6g", Role: "Regulates Qi"},
				{Herb: "升麻", Dosage: "3g", Role: "Raises Yang Qi"},
				{Herb: "柴胡", Dosage: "3g", Role: "Raises Yang Qi"},
			},
			"使 (Envoy)": {{Herb: "甘草", Dosage: "6g", Role: "Harmonizes formula"}},
		},
		Functions:     "补中益气，升阳举陷 (Tonifies the middle, augments Qi, raises Yang, lifts sinking)",
		Indications:   "Spleen Qi sinking: organ prolapse, chronic diarrhea, fatigue, shortness of breath, spontaneous sweating",
		Modifications: map[string]string{},
	},
	"六味地黄丸": {
		Pinyin:   "Liù Wèi Dì Huáng Wán",
		English:  "Six-Ingredient Rehmannia Pill",
		Source:   "《小儿药证直诀》(Xiao Er Yao Zheng Zhi Jue)",
		Category: "补益剂-补阴 (Tonifying - Yin-Supplementing)",
		Composition: map[string][]formulaIngredient{
			"君 (Sovereign)": {{Herb: "熟地黄", Dosage: "24g", Role: "Nourishes Kidney Yin, fills essence"}},
			"臣 (Minister)": {
				{Herb: "山茱萸", Dosage: "12g", Role: "Nourishes Liver and Kidney"},
				{Herb: "山药", Dosage: "12g", Role: "Tonifies Spleen and Kidney"},
			},
			"佐 (Assistant)": {
				{Herb: "泽泻", Dosage: "9g", Role: "Drains Kidney fire, prevents stagnation"},
				{Herb: "牡丹皮", Dosage: "9g", Role: "Clears Liver fire"},
				{Herb: "茯苓", Dosage: "9g", Role: "Drains dampness, strengthens Spleen"},
			},
		},
		Functions:   "滋补肝肾 (Nourishes and tonifies Liver and Kidney)",
		Indications: "Kidney Yin deficiency: soreness of lower back and knees, dizziness, tinnitus, night sweats, heat in palms and soles",
		Modifications: map[string]string{
			"加知母黄柏 → 知柏地黄丸": "For Yin deficiency with fire",
			"加枸杞菊花 → 杞菊地黄丸": "For Liver/Kidney Yin deficiency affecting eyes",
			"加麦冬五味子 → 麦味地黄丸": "For Lung-Kidney Yin deficiency",
		},
	},
}

func searchFormula(query string) (string, formulaRecord, bool) {
	q := strings.ToLower(strings.TrimSpace(query))
	for name, rec := range formulaDB {
		if q == strings.ToLower(name) ||
			q == strings.ToLower(rec.Pinyin) ||
			q == strings.ToLower(rec.English) {
			return name, rec, true
		}
	}
	return "", formulaRecord{}, false
}

func formulaTools() []Tool {
	return []Tool{
		&funcTool{
			name:        "formulas.search",
			description: "Search for a classical TCM formula by name (Chinese, pinyin, or English). Returns full composition, functions, and indications.",
			schema:      objectSchema(map[string]any{"query": stringProp("Formula name to search for")}, "query"),
			fn: func(ctx context.Context, args map[string]any) (any, error) {
				query, err := stringArg(args, "query")
				if err != nil {
					return nil, err
				}
				name, rec, ok := searchFormula(query)
				if !ok {
					return notFound("Formula", query), nil
				}
				return map[string]any{
					"status": "found",
					"formula": map[string]any{
						"chinese_name":  name,
						"pinyin":        rec.Pinyin,
						"english":       rec.English,
						"source":        rec.Source,
						"category":      rec.Category,
						"composition":   rec.Composition,
						"functions":     rec.Functions,
						"indications":   rec.Indications,
						"modifications": rec.Modifications,
					},
				}, nil
			},
		},
		&funcTool{
			name:        "formulas.composition",
			description: "Analyze a formula's composition using the 君臣佐使 (Sovereign-Minister-Assistant-Envoy) framework.",
			schema:      objectSchema(map[string]any{"formula_name": stringProp("Formula name")}, "formula_name"),
			fn: func(ctx context.Context, args map[string]any) (any, error) {
				query, err := stringArg(args, "formula_name")
				if err != nil {
					return nil, err
				}
				name, rec, ok := searchFormula(query)
				if !ok {
					return notFound("Formula", query), nil
				}
				return map[string]any{
					"status":      "found",
					"formula":     name,
					"composition": rec.Composition,
					"functions":   rec.Functions,
				}, nil
			},
		},
		&funcTool{
			name:        "formulas.modifications",
			description: "List classical modifications/variations of a formula.",
			schema:      objectSchema(map[string]any{"formula_name": stringProp("Formula name")}, "formula_name"),
			fn: func(ctx context.Context, args map[string]any) (any, error) {
				query, err := stringArg(args, "formula_name")
				if err != nil {
					return nil, err
				}
				name, rec, ok := searchFormula(query)
				if !ok {
					return notFound("Formula", query), nil
				}
				return map[string]any{
					"status":        "found",
					"formula":       name,
					"modifications": rec.Modifications,
				}, nil
			},
		},
		&funcTool{
			name:        "formulas.by_category",
			description: "List formulas in a specific category (e.g., 补益剂, 和解剂, 清热剂).",
			schema:      objectSchema(map[string]any{"category": stringProp("Formula category name")}, "category"),
			fn: func(ctx context.Context, args map[string]any) (any, error) {
				category, err := stringArg(args, "category")
				if err != nil {
					return nil, err
				}
				q := strings.ToLower(category)
				var matches []map[string]any
				for name, rec := range formulaDB {
					if strings.Contains(strings.ToLower(rec.Category), q) {
						matches = append(matches, map[string]any{
							"chinese_name": name,
							"pinyin":       rec.Pinyin,
							"english":      rec.English,
							"category":     rec.Category,
							"functions":    rec.Functions,
						})
					}
				}
				if len(matches) == 0 {
					return notFound("No formulas found in category", category), nil
				}
				return map[string]any{"status": "found", "count": len(matches), "formulas": matches}, nil
			},
		},
	}
}
