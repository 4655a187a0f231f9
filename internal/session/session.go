// Package session holds the conversational state of a research run: the
// ordered transcript of user prompts, assistant turns, and tool
// observations, plus the model and language the run is pinned to.
package session

import (
	"fmt"
	"sync"

	"github.com/google/uuid"

	"github.com/shennong-ai/shennong/internal/provider"
	"github.com/shennong-ai/shennong/internal/tools"
)

// Language selects the output language for synthesized answers.
type Language string

const (
	LangEnglish   Language = "en"
	LangChinese   Language = "zh"
	LangBilingual Language = "bi"
)

// ParseLanguage validates a user-supplied language code.
func ParseLanguage(s string) (Language, error) {
	switch Language(s) {
	case LangEnglish, LangChinese, LangBilingual:
		return Language(s), nil
	}
	return "", fmt.Errorf("unknown language %q (want en, zh, or bi)", s)
}

// Kind distinguishes transcript entries.
type Kind string

const (
	KindUser        Kind = "user"
	KindAssistant   Kind = "assistant"
	KindObservation Kind = "observation"
)

// Turn is one transcript entry. Observations carry the tool name and the
// call ID they answer; assistant turns may carry tool call requests.
type Turn struct {
	Kind       Kind                `json:"kind"`
	Content    string              `json:"content,omitempty"`
	Tool       string              `json:"tool,omitempty"`
	ToolCallID string              `json:"tool_call_id,omitempty"`
	ToolCalls  []provider.ToolCall `json:"tool_calls,omitempty"`
}

// Session is an append-only transcript bound to a model and language.
// All methods are safe for concurrent use.
type Session struct {
	ID string

	mu    sync.Mutex
	model string
	lang  Language
	turns []Turn
}

func New(model string, lang Language) *Session {
	return &Session{ID: uuid.NewString(), model: model, lang: lang}
}

func (s *Session) Model() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.model
}

func (s *Session) SetModel(model string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.model = model
}

func (s *Session) Language() Language {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lang
}

func (s *Session) SetLanguage(lang Language) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lang = lang
}

// AppendUser records a user prompt or a corrective instruction.
func (s *Session) AppendUser(content string) Turn {
	return s.append(Turn{Kind: KindUser, Content: content})
}

// AppendAssistant records a model turn, including any tool call requests.
func (s *Session) AppendAssistant(content string, calls []provider.ToolCall) Turn {
	return s.append(Turn{Kind: KindAssistant, Content: content, ToolCalls: calls})
}

// AppendObservation records a tool result keyed to the call it answers.
// Failed observations are recorded the same way so the model sees them.
func (s *Session) AppendObservation(obs tools.Observation) Turn {
	return s.append(Turn{
		Kind:       KindObservation,
		Content:    obs.Content(),
		Tool:       obs.Tool,
		ToolCallID: obs.CallID,
	})
}

func (s *Session) append(t Turn) Turn {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.turns = append(s.turns, t)
	return t
}

// Turns returns a copy of the transcript.
func (s *Session) Turns() []Turn {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Turn, len(s.turns))
	copy(out, s.turns)
	return out
}

// Len reports the transcript length.
func (s *Session) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.turns)
}

// Reset drops the transcript but keeps the session identity, model and
// language.
func (s *Session) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.turns = nil
}

// History converts the transcript into provider chat messages in order.
func (s *Session) History() []provider.ChatMessage {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]provider.ChatMessage, 0, len(s.turns))
	for _, t := range s.turns {
		switch t.Kind {
		case KindUser:
			out = append(out, provider.ChatMessage{Role: provider.RoleUser, Content: t.Content})
		case KindAssistant:
			out = append(out, provider.ChatMessage{
				Role:      provider.RoleAssistant,
				Content:   t.Content,
				ToolCalls: t.ToolCalls,
			})
		case KindObservation:
			out = append(out, provider.ChatMessage{
				Role:       provider.RoleTool,
				Content:    t.Content,
				ToolCallID: t.ToolCallID,
			})
		}
	}
	return out
}
