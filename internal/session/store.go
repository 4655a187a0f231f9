package session

import (
	"bufio"
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/shennong-ai/shennong/internal/store"
)

// record is the JSONL persistence form. The first line of a session file
// is a meta record carrying the session identity; every other line is a
// transcript turn.
type record struct {
	Kind     Kind   `json:"kind"`
	ID       string `json:"id,omitempty"`
	Model    string `json:"model,omitempty"`
	Language string `json:"language,omitempty"`
	Turn     *Turn  `json:"turn,omitempty"`
}

const kindMeta Kind = "meta"

// Path returns the transcript file for a session ID under home.
func Path(home, id string) string {
	return filepath.Join(home, store.SessionsDirPath, id+".jsonl")
}

// Store persists one session as a JSONL file.
type Store struct {
	path string
}

func NewStore(path string) *Store {
	return &Store{path: path}
}

// Save rewrites the full transcript. Used after state changes that an
// append cannot express, such as a model switch or a reset.
func (s *Store) Save(sess *Session) error {
	var buf bytes.Buffer
	meta := record{Kind: kindMeta, ID: sess.ID, Model: sess.Model(), Language: string(sess.Language())}
	if err := writeRecord(&buf, meta); err != nil {
		return err
	}
	for _, t := range sess.Turns() {
		turn := t
		if err := writeRecord(&buf, record{Kind: t.Kind, Turn: &turn}); err != nil {
			return err
		}
	}
	return store.WriteFile(s.path, buf.Bytes())
}

// AppendTurn persists one new turn. The file must already hold the
// session meta line, written by Save.
func (s *Store) AppendTurn(t Turn) error {
	var buf bytes.Buffer
	turn := t
	if err := writeRecord(&buf, record{Kind: t.Kind, Turn: &turn}); err != nil {
		return err
	}
	return store.AppendFile(s.path, buf.Bytes())
}

// Load reconstructs the session from disk. Malformed lines are skipped
// so one bad write does not lose the whole transcript.
func (s *Store) Load() (*Session, error) {
	data, err := store.ReadFile(s.path)
	if err != nil {
		return nil, err
	}

	sess := &Session{lang: LangEnglish}
	scanner := bufio.NewScanner(strings.NewReader(data))
	scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		var rec record
		if err := json.Unmarshal([]byte(line), &rec); err != nil {
			continue
		}
		if rec.Kind == kindMeta {
			sess.ID = rec.ID
			sess.model = rec.Model
			if lang, err := ParseLanguage(rec.Language); err == nil {
				sess.lang = lang
			}
			continue
		}
		if rec.Turn == nil {
			continue
		}
		turn := *rec.Turn
		turn.Kind = rec.Kind
		sess.turns = append(sess.turns, turn)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read session %s: %w", s.path, err)
	}
	if sess.ID == "" {
		return nil, fmt.Errorf("session file %s has no meta record", s.path)
	}
	return sess, nil
}

func writeRecord(buf *bytes.Buffer, rec record) error {
	data, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("encode session record: %w", err)
	}
	buf.Write(data)
	buf.WriteByte('\n')
	return nil
}

// List returns the session IDs found under home, newest first.
func List(home string) ([]string, error) {
	dir := filepath.Join(home, store.SessionsDirPath)
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}
	type stamped struct {
		id  string
		mod int64
	}
	var found []stamped
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".jsonl") {
			continue
		}
		info, err := e.Info()
		if err != nil {
			continue
		}
		found = append(found, stamped{
			id:  strings.TrimSuffix(e.Name(), ".jsonl"),
			mod: info.ModTime().UnixNano(),
		})
	}
	sort.Slice(found, func(i, j int) bool { return found[i].mod > found[j].mod })
	ids := make([]string, len(found))
	for i, f := range found {
		ids[i] = f.id
	}
	return ids, nil
}
