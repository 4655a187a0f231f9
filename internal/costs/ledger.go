// Package costs keeps the append-only usage ledger: one record per
// provider call attempt, successful or not, with token counts and an
// estimated spend.
package costs

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/shennong-ai/shennong/internal/store"
)

// StatusOK marks a record for an attempt that returned a usable response.
// Failed attempts carry the error code instead, with zero token counts.
const StatusOK = "ok"

// Record is one ledger entry. Failed attempts have zero tokens and zero
// cost but still carry the duration and the failure status.
type Record struct {
	Timestamp    time.Time `json:"timestamp"`
	Provider     string    `json:"provider"`
	Model        string    `json:"model"`
	InputTokens  int       `json:"input_tokens"`
	OutputTokens int       `json:"output_tokens"`
	TotalTokens  int       `json:"total_tokens"`
	CostUSD      float64   `json:"cost_usd"`
	DurationMS   int64     `json:"duration_ms"`
	Status       string    `json:"status"`
}

// Ledger accumulates records in memory and, when a path is configured,
// mirrors each one to a JSONL file. Records are never rewritten.
type Ledger struct {
	mu      sync.Mutex
	path    string
	records []Record
}

// NewLedger returns a ledger. An empty path keeps it in-memory only.
func NewLedger(path string) *Ledger {
	return &Ledger{path: path}
}

// Append adds one record. The in-memory copy is kept even when the JSONL
// write fails, so a full disk never loses the session's running totals.
func (l *Ledger) Append(ctx context.Context, rec Record) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if rec.Timestamp.IsZero() {
		rec.Timestamp = time.Now()
	}
	if rec.Status == "" {
		rec.Status = StatusOK
	}

	l.mu.Lock()
	l.records = append(l.records, rec)
	path := l.path
	l.mu.Unlock()

	if path == "" {
		return nil
	}
	encoded, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("marshal usage record: %w", err)
	}
	if err := store.AppendFile(path, append(encoded, '\n')); err != nil {
		return fmt.Errorf("append usage record: %w", err)
	}
	return nil
}

// Records returns a copy of all in-memory records in append order.
func (l *Ledger) Records() []Record {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]Record, len(l.records))
	copy(out, l.records)
	return out
}

// Spend holds aggregated spend totals in USD.
type Spend struct {
	TodayUSD float64
	MonthUSD float64
}

// Spend reads the JSONL file and returns today's and this month's totals.
// A missing file means zero spend, not an error.
func (l *Ledger) Spend(ctx context.Context, now time.Time) (Spend, error) {
	totals := Spend{}

	if err := ctx.Err(); err != nil {
		return Spend{}, err
	}
	l.mu.Lock()
	path := l.path
	l.mu.Unlock()
	if path == "" {
		return Spend{}, errors.New("usage ledger path is required")
	}
	if now.IsZero() {
		now = time.Now()
	}

	f, err := os.Open(path)
	if errors.Is(err, os.ErrNotExist) {
		return totals, nil
	}
	if err != nil {
		return Spend{}, fmt.Errorf("open usage ledger: %w", err)
	}
	defer f.Close()

	nowLocal := now.In(time.Local)
	todayYear, todayMonth, todayDay := nowLocal.Date()

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		if err := ctx.Err(); err != nil {
			return Spend{}, err
		}
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}
		var rec Record
		if err := json.Unmarshal(line, &rec); err != nil {
			continue
		}
		recLocal := rec.Timestamp.In(time.Local)
		y, m, d := recLocal.Date()
		if y == todayYear && m == todayMonth {
			totals.MonthUSD += rec.CostUSD
			if d == todayDay {
				totals.TodayUSD += rec.CostUSD
			}
		}
	}
	if err := scanner.Err(); err != nil {
		return Spend{}, fmt.Errorf("scan usage ledger: %w", err)
	}

	return totals, nil
}
