package agent

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	gmtext "github.com/yuin/goldmark/text"

	"github.com/shennong-ai/shennong/internal/provider"
	"github.com/shennong-ai/shennong/internal/session"
)

// synthesize renders the validated draft in the session language. The
// language instructions already shape generation, so en and zh drafts
// pass through; bilingual drafts are audited for paired sections and
// reformatted once if the pairing is broken.
func (a *Agent) synthesize(ctx context.Context, sess *session.Session, draft string, usage *provider.TokenUsage) (string, []string, error) {
	if sess.Language() != session.LangBilingual {
		return draft, nil, nil
	}
	auditErr := AuditBilingual(draft)
	if auditErr == nil {
		return draft, nil, nil
	}

	sess.AppendUser(fmt.Sprintf(
		"Reformat your answer as paired bilingual sections: %v. Every top-level heading must read '## 中文标题 | English Heading' with the section content in both languages. Do not add or drop information.",
		auditErr,
	))
	resp, err := a.completer.Complete(ctx, provider.ChatRequest{
		Model:        sess.Model(),
		SystemPrompt: plannerPrompt(session.LangBilingual),
		Messages:     sess.History(),
		Temperature:  planningTemperature,
	})
	if err != nil {
		return draft, nil, err
	}
	addUsage(usage, resp.Usage)

	answer := resp.Content
	sess.AppendAssistant(answer, nil)
	if err := AuditBilingual(answer); err != nil {
		return answer, []string{fmt.Sprintf("bilingual pairing misaligned after reformat: %v", err)}, nil
	}
	return answer, nil, nil
}

// AuditBilingual verifies that every top-level section heading pairs a
// Chinese half with an English half, which guarantees both language
// halves carry the same number of sections in the same order.
func AuditBilingual(markdown string) error {
	headings := topLevelHeadings(markdown)
	if len(headings) == 0 {
		return errors.New("no top-level section headings to pair")
	}
	for _, h := range headings {
		zh, en, found := strings.Cut(h, "|")
		if !found || strings.TrimSpace(zh) == "" || strings.TrimSpace(en) == "" {
			return fmt.Errorf("section heading %q lacks a paired counterpart", h)
		}
	}
	return nil
}

func topLevelHeadings(markdown string) []string {
	src := []byte(markdown)
	doc := goldmark.New().Parser().Parse(gmtext.NewReader(src))

	var out []string
	ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		if h, ok := n.(*ast.Heading); ok && h.Level == 2 {
			out = append(out, string(nodeText(h, src)))
		}
		return ast.WalkContinue, nil
	})
	return out
}

func nodeText(n ast.Node, src []byte) []byte {
	var buf bytes.Buffer
	for c := n.FirstChild(); c != nil; c = c.NextSibling() {
		if t, ok := c.(*ast.Text); ok {
			buf.Write(t.Segment.Value(src))
			continue
		}
		buf.Write(nodeText(c, src))
	}
	return buf.Bytes()
}
