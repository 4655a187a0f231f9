package agent

import (
	"fmt"
	"strings"

	"github.com/shennong-ai/shennong/internal/session"
)

const plannerSystem = `You are Shennong, an expert Traditional Chinese Medicine (TCM) research assistant with access to computational TCM research tools.

Work step by step:
1. Call only the tools needed to answer the question; later calls may reference earlier results with "$stepN.output.<field>".
2. When a question involves herbs or formulas, check interactions and safety before recommending anything.
3. When you have enough evidence, answer directly without further tool calls.
4. Cite every tool-derived claim inline as (tool: category.tool_name).
5. Note contraindications and safety concerns explicitly; never omit a warning a tool reported.
6. If results are incomplete, acknowledge the limitation.
7. End with 2-3 suggested follow-up questions.`

func plannerPrompt(lang session.Language) string {
	return plannerSystem + "\n\n" + langInstructions(lang)
}

func langInstructions(lang session.Language) string {
	switch lang {
	case session.LangChinese:
		return strings.Join([]string{
			"OUTPUT LANGUAGE:",
			"- 仅用中文回答，不要包含英文。",
			"- 标题与结构使用中文，例如 '## 关键信息'、'## 建议的下一步'。",
			"- 术语使用中医术语，必要时给出现代医学对照。",
		}, "\n")
	case session.LangBilingual:
		return strings.Join([]string{
			"OUTPUT LANGUAGE:",
			"- 提供中英双语内容，先中文段落，再对应的英文段落。",
			"- 每个主要标题使用并列标题，例如 '## 关键信息 | Key Findings'。",
			"- 在要点层面对齐中英文内容。",
		}, "\n")
	default:
		return strings.Join([]string{
			"OUTPUT LANGUAGE:",
			"- Answer in English only (no Chinese characters unless quoted from sources).",
			"- Use English headings such as '## Key Findings' and '## Suggested Next Steps'.",
			"- Include pinyin in parentheses when helpful, e.g. Ren Shen (ginseng).",
		}, "\n")
	}
}

// correctiveInstruction turns validator flags into a redraft request the
// model sees as the next user turn.
func correctiveInstruction(flags []string) string {
	var b strings.Builder
	b.WriteString("Your draft answer failed validation:\n")
	for _, f := range flags {
		fmt.Fprintf(&b, "- %s\n", f)
	}
	b.WriteString("Revise the answer. Cite only tools whose results appear above, and state every contraindication the tools reported.")
	return b.String()
}
