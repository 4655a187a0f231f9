package tools

import (
	"context"
	"sort"
	"strings"
)

type syndromeRecord struct {
	Pinyin                 string   `json:"pinyin"`
	English                string   `json:"english"`
	Category               string   `json:"category"`
	Symptoms               []string `json:"symptoms"`
	TreatmentPrinciple     string   `json:"treatment_principle"`
	RepresentativeFormulas []string `json:"representative_formulas"`
	KeyHerbs               []string `json:"key_herbs"`
}

var syndromeDB = map[string]syndromeRecord{
	"脾气虚": {
		Pinyin:   "Pí Qì Xū",
		English:  "Spleen Qi Deficiency",
		Category: "脏腑辨证 (Organ Pattern)",
		Symptoms: []string{
			"食少纳呆 (poor appetite)", "腹胀 (abdominal distension)",
			"便溏 (loose stools)", "面色萎黄 (sallow complexion)",
			"神疲乏力 (fatigue)", "少气懒言 (shortness of breath, reluctance to speak)",
			"舌淡苔白 (pale tongue, white coating)", "脉缓弱 (slow, weak pulse)",
		},
		TreatmentPrinciple:     "健脾益气 (Strengthen Spleen and augment Qi)",
		RepresentativeFormulas: []string{"四君子汤", "补中益气汤"},
		KeyHerbs:               []string{"人参", "黄芪", "白术", "茯苓", "甘草"},
	},
	"肝气郁结": {
		Pinyin:   "Gān Qì Yù Jié",
		English:  "Liver Qi Stagnation",
		Category: "脏腑辨证 (Organ Pattern)",
		Symptoms: []string{
			"胸胁胀痛 (distending pain in chest and hypochondria)",
			"情志抑郁 (emotional depression)", "善太息 (frequent sighing)",
			"咽中如有物梗阻 (sensation of a lump in throat)",
			"月经不调 (irregular menstruation)", "乳房胀痛 (breast distension)",
			"脉弦 (wiry pulse)",
		},
		TreatmentPrinciple:     "疏肝理气 (Course Liver and regulate Qi)",
		RepresentativeFormulas: []string{"逍遥散", "柴胡疏肝散"},
		KeyHerbs:               []string{"柴胡", "白芍", "香附", "川芎", "枳壳"},
	},
	"肾阴虚": {
		Pinyin:   "Shèn Yīn Xū",
		English:  "Kidney Yin Deficiency",
		Category: "脏腑辨证 (Organ Pattern)",
		Symptoms: []string{
			"腰膝酸软 (soreness of lower back and knees)",
			"头晕耳鸣 (dizziness and tinnitus)",
			"失眠多梦 (insomnia with many dreams)",
			"五心烦热 (heat in palms, soles, and chest)",
			"盗汗 (night sweats)", "口干咽燥 (dry mouth and throat)",
			"舌红少苔 (red tongue with little coating)",
			"脉细数 (thin, rapid pulse)",
		},
		TreatmentPrinciple:     "滋补肾阴 (Nourish and supplement Kidney Yin)",
		RepresentativeFormulas: []string{"六味地黄丸", "左归丸"},
		KeyHerbs:               []string{"熟地黄", "山茱萸", "山药", "枸杞子", "女贞子"},
	},
	"风寒表证": {
		Pinyin:   "Fēng Hán Biǎo Zhèng",
		English:  "Wind-Cold Exterior Pattern",
		Category: "六经辨证 (Six-Channel Pattern)",
		Symptoms: []string{
			"恶寒重发热轻 (severe chills, mild fever)",
			"无汗 (no sweating)", "头身疼痛 (headache and body aches)",
			"鼻塞流清涕 (nasal congestion, clear discharge)",
			"咳嗽 (cough)", "舌苔薄白 (thin white tongue coating)",
			"脉浮紧 (floating, tight pulse)",
		},
		TreatmentPrinciple:     "辛温解表 (Release exterior with warm, acrid herbs)",
		RepresentativeFormulas: []string{"麻黄汤", "桂枝汤"},
		KeyHerbs:               []string{"麻黄", "桂枝", "紫苏叶", "生姜", "防风"},
	},
	"湿热蕴脾": {
		Pinyin:   "Shī Rè Yùn Pí",
		English:  "Damp-Heat in Spleen",
		Category: "脏腑辨证 (Organ Pattern)",
		Symptoms: []string{
			"脘腹胀满 (epigastric and abdominal fullness)",
			"恶心呕吐 (nausea and vomiting)",
			"口苦口粘 (bitter taste, sticky sensation in mouth)",
			"大便溏臭 (loose, foul-smelling stools)",
			"小便短黄 (scant, yellow urine)",
			"身重困倦 (heavy body, fatigue)",
			"舌红苔黄腻 (red tongue, yellow greasy coating)",
			"脉濡数 (soggy, rapid pulse)",
		},
		TreatmentPrinciple:     "清热化湿 (Clear heat and resolve dampness)",
		RepresentativeFormulas: []string{"茵陈蒿汤", "三仁汤"},
		KeyHerbs:               []string{"黄连", "黄芩", "茵陈", "薏苡仁", "藿香"},
	},
}

func searchSyndrome(query string) (string, syndromeRecord, bool) {
	q := strings.ToLower(strings.TrimSpace(query))
	for name, rec := range syndromeDB {
		if q == strings.ToLower(name) || q == strings.ToLower(rec.English) {
			return name, rec, true
		}
	}
	return "", syndromeRecord{}, false
}

func syndromeTools() []Tool {
	return []Tool{
		&funcTool{
			name:        "syndromes.identify",
			description: "Given a list of symptoms, identify matching TCM syndromes/patterns. Returns syndrome name, treatment principle, and recommended formulas.",
			schema:      objectSchema(map[string]any{"symptoms": stringProp("Comma-separated list of symptoms")}, "symptoms"),
			fn: func(ctx context.Context, args map[string]any) (any, error) {
				raw, err := stringArg(args, "symptoms")
				if err != nil {
					return nil, err
				}
				symptoms := splitList(strings.ToLower(raw))
				var matches []map[string]any
				for name, rec := range syndromeDB {
					score := 0
					for _, user := range symptoms {
						for _, syn := range rec.Symptoms {
							lower := strings.ToLower(syn)
							if strings.Contains(lower, user) || strings.Contains(user, lower) {
								score++
								break
							}
						}
					}
					if score > 0 {
						matches = append(matches, map[string]any{
							"syndrome":                name,
							"english":                 rec.English,
							"match_score":             score,
							"total_symptoms":          len(rec.Symptoms),
							"treatment_principle":     rec.TreatmentPrinciple,
							"representative_formulas": rec.RepresentativeFormulas,
						})
					}
				}
				sort.Slice(matches, func(i, j int) bool {
					return matches[i]["match_score"].(int) > matches[j]["match_score"].(int)
				})
				if len(matches) == 0 {
					return map[string]any{
						"status":  "no_match",
						"message": "No matching syndromes found for the given symptoms.",
					}, nil
				}
				return map[string]any{"status": "found", "matches": matches}, nil
			},
		},
		&funcTool{
			name:        "syndromes.lookup",
			description: "Look up a specific TCM syndrome/pattern by name. Returns symptoms, treatment principle, and formulas.",
			schema:      objectSchema(map[string]any{"syndrome_name": stringProp("Syndrome name (Chinese or English)")}, "syndrome_name"),
			fn: func(ctx context.Context, args map[string]any) (any, error) {
				query, err := stringArg(args, "syndrome_name")
				if err != nil {
					return nil, err
				}
				name, rec, ok := searchSyndrome(query)
				if !ok {
					return notFound("Syndrome", query), nil
				}
				return map[string]any{
					"status": "found",
					"syndrome": map[string]any{
						"name":                    name,
						"pinyin":                  rec.Pinyin,
						"english":                 rec.English,
						"category":                rec.Category,
						"symptoms":                rec.Symptoms,
						"treatment_principle":     rec.TreatmentPrinciple,
						"representative_formulas": rec.RepresentativeFormulas,
						"key_herbs":               rec.KeyHerbs,
					},
				}, nil
			},
		},
		&funcTool{
			name:        "syndromes.treatment",
			description: "Get the treatment principle and recommended herbs/formulas for a TCM syndrome.",
			schema:      objectSchema(map[string]any{"syndrome_name": stringProp("Syndrome name")}, "syndrome_name"),
			fn: func(ctx context.Context, args map[string]any) (any, error) {
				query, err := stringArg(args, "syndrome_name")
				if err != nil {
					return nil, err
				}
				name, rec, ok := searchSyndrome(query)
				if !ok {
					return notFound("Syndrome", query), nil
				}
				return map[string]any{
					"status":                  "found",
					"syndrome":                name,
					"treatment_principle":     rec.TreatmentPrinciple,
					"representative_formulas": rec.RepresentativeFormulas,
					"key_herbs":               rec.KeyHerbs,
				}, nil
			},
		},
	}
}
