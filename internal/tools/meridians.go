package tools

import (
	"context"
	"sort"
	"strings"
)

type meridianRecord struct {
	Pinyin  string `json:"pinyin"`
	English string `json:"english"`
	Element string `json:"element"`
	YinYang string `json:"yin_yang"`
	Paired  string `json:"paired"`
}

var meridianDB = map[string]meridianRecord{
	"肝经":  {Pinyin: "Gān Jīng", English: "Liver Meridian", Element: "木 (Wood)", YinYang: "Yin", Paired: "胆经"},
	"心经":  {Pinyin: "Xīn Jīng", English: "Heart Meridian", Element: "火 (Fire)", YinYang: "Yin", Paired: "小肠经"},
	"脾经":  {Pinyin: "Pí Jīng", English: "Spleen Meridian", Element: "土 (Earth)", YinYang: "Yin", Paired: "胃经"},
	"肺经":  {Pinyin: "Fèi Jīng", English: "Lung Meridian", Element: "金 (Metal)", YinYang: "Yin", Paired: "大肠经"},
	"肾经":  {Pinyin: "Shèn Jīng", English: "Kidney Meridian", Element: "水 (Water)", YinYang: "Yin", Paired: "膀胱经"},
	"胆经":  {Pinyin: "Dǎn Jīng", English: "Gallbladder Meridian", Element: "木 (Wood)", YinYang: "Yang", Paired: "肝经"},
	"小肠经": {Pinyin: "Xiǎo Cháng Jīng", English: "Small Intestine Meridian", Element: "火 (Fire)", YinYang: "Yang", Paired: "心经"},
	"胃经":  {Pinyin: "Wèi Jīng", English: "Stomach Meridian", Element: "土 (Earth)", YinYang: "Yang", Paired: "脾经"},
	"大肠经": {Pinyin: "Dà Cháng Jīng", English: "Large Intestine Meridian", Element: "金 (Metal)", YinYang: "Yang", Paired: "肺经"},
	"膀胱经": {Pinyin: "Páng Guāng Jīng", English: "Bladder Meridian", Element: "水 (Water)", YinYang: "Yang", Paired: "肾经"},
	"心包经": {Pinyin: "Xīn Bāo Jīng", English: "Pericardium Meridian", Element: "火 (Fire)", YinYang: "Yin", Paired: "三焦经"},
	"三焦经": {Pinyin: "Sān Jiāo Jīng", English: "Triple Burner Meridian", Element: "火 (Fire)", YinYang: "Yang", Paired: "心包经"},
}

func meridianPayload(name string, rec meridianRecord) map[string]any {
	return map[string]any{
		"name":     name,
		"pinyin":   rec.Pinyin,
		"english":  rec.English,
		"element":  rec.Element,
		"yin_yang": rec.YinYang,
		"paired":   rec.Paired,
	}
}

func meridianTools() []Tool {
	return []Tool{
		&funcTool{
			name:        "meridians.lookup",
			description: "Look up meridian information by name. Returns Five Element association, Yin/Yang, and paired meridian.",
			schema:      objectSchema(map[string]any{"meridian": stringProp("Meridian name (Chinese or English)")}, "meridian"),
			fn: func(ctx context.Context, args map[string]any) (any, error) {
				query, err := stringArg(args, "meridian")
				if err != nil {
					return nil, err
				}
				q := strings.ToLower(query)
				for name, rec := range meridianDB {
					if strings.Contains(strings.ToLower(name), q) ||
						strings.Contains(strings.ToLower(rec.English), q) {
						return map[string]any{"status": "found", "meridian": meridianPayload(name, rec)}, nil
					}
				}
				return notFound("Meridian", query), nil
			},
		},
		&funcTool{
			name:        "meridians.list_all",
			description: "List all 12 primary meridians with their Five Element associations.",
			schema:      objectSchema(map[string]any{}),
			fn: func(ctx context.Context, args map[string]any) (any, error) {
				names := make([]string, 0, len(meridianDB))
				for name := range meridianDB {
					names = append(names, name)
				}
				sort.Strings(names)
				meridians := make([]map[string]any, 0, len(names))
				for _, name := range names {
					meridians = append(meridians, meridianPayload(name, meridianDB[name]))
				}
				return map[string]any{"status": "found", "count": len(meridians), "meridians": meridians}, nil
			},
		},
		&funcTool{
			name:        "meridians.by_element",
			description: "Find meridians associated with a specific Five Element (五行): Wood, Fire, Earth, Metal, Water.",
			schema:      objectSchema(map[string]any{"element": stringProp("Five Element name (Chinese or English)")}, "element"),
			fn: func(ctx context.Context, args map[string]any) (any, error) {
				element, err := stringArg(args, "element")
				if err != nil {
					return nil, err
				}
				q := strings.ToLower(element)
				var matches []map[string]any
				for name, rec := range meridianDB {
					if strings.Contains(strings.ToLower(rec.Element), q) {
						matches = append(matches, meridianPayload(name, rec))
					}
				}
				if len(matches) == 0 {
					return notFound("No meridians found for element", element), nil
				}
				return map[string]any{"status": "found", "element": element, "meridians": matches}, nil
			},
		},
	}
}
