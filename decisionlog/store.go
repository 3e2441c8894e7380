// Package decisionlog is an append-only SQLite audit of AI decisions. The
// decision engine never reads it; it exists for replay and analysis.
package decisionlog

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"math"
	"math/rand"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
	_ "modernc.org/sqlite"

	"github.com/nstehr/venture/venture-core/model"
)

// Entry is one recorded decision.
type Entry struct {
	ID        string         `json:"id"`
	TickID    string         `json:"tickId"`
	CompanyID string         `json:"companyId"`
	Intent    model.Intent   `json:"intent"`
	Score     float64        `json:"score"`
	Reason    string         `json:"reason,omitempty"`
	Signals   *model.Signals `json:"signals,omitempty"`
	CreatedAt time.Time      `json:"createdAt"`
}

// Stats summarizes the log.
type Stats struct {
	Ticks     int            `json:"ticks"`
	Decisions int            `json:"decisions"`
	Companies int            `json:"companies"`
	ByIntent  map[string]int `json:"byIntent"`
}

// Store implements agent.Recorder on SQLite. IDs are monotonic ULIDs, so
// ordering by id is insertion order.
type Store struct {
	db *sql.DB

	mu      sync.Mutex // guards entropy
	entropy *ulid.MonotonicEntropy
}

// Open opens or creates the log at path.
func Open(path string) (*Store, error) {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create db dir: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path+"?_pragma=journal_mode(wal)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}

	s := &Store{
		db:      db,
		entropy: ulid.Monotonic(rand.New(rand.NewSource(time.Now().UnixNano())), 0),
	}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return s, nil
}

func (s *Store) Close() error { return s.db.Close() }

func (s *Store) newID(t time.Time) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return ulid.MustNew(ulid.Timestamp(t), s.entropy).String()
}

func (s *Store) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS decisions (
		id          TEXT PRIMARY KEY,
		tick_id     TEXT NOT NULL,
		seq         INTEGER NOT NULL,
		company_id  TEXT NOT NULL,
		intent      TEXT NOT NULL,
		score       REAL NOT NULL,
		reason      TEXT,
		signals     TEXT,
		created_at  TEXT NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_decisions_company ON decisions(company_id, created_at DESC);
	CREATE INDEX IF NOT EXISTS idx_decisions_tick ON decisions(tick_id, seq);
	`
	_, err := s.db.Exec(schema)
	return err
}

// Record appends every decision of a tick in one transaction.
func (s *Store) Record(ctx context.Context, tickID string, decisions []model.Decision) error {
	if len(decisions) == 0 {
		return nil
	}
	now := time.Now().UTC()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO decisions (id, tick_id, seq, company_id, intent, score, reason, signals, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("prepare insert: %w", err)
	}
	defer stmt.Close()

	for i, d := range decisions {
		var signals sql.NullString
		if d.Signals != nil {
			b, err := json.Marshal(d.Signals)
			if err != nil {
				return fmt.Errorf("marshal signals: %w", err)
			}
			signals = sql.NullString{String: string(b), Valid: true}
		}
		// SQLite has no NaN; a NaN score (all candidates degenerate) is stored as 0.
		score := d.Score
		if math.IsNaN(score) {
			score = 0
		}
		if _, err := stmt.ExecContext(ctx,
			s.newID(now), tickID, i, d.CompanyID, d.Intent.String(), score,
			nullable(d.Reason), signals, now.Format(time.RFC3339Nano),
		); err != nil {
			return fmt.Errorf("insert decision %s: %w", d.CompanyID, err)
		}
	}
	return tx.Commit()
}

// History returns a company's most recent decisions, newest first.
func (s *Store) History(ctx context.Context, companyID string, limit int) ([]Entry, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, tick_id, company_id, intent, score, reason, signals, created_at
		FROM decisions WHERE company_id = ?
		ORDER BY id DESC LIMIT ?`, companyID, limit)
	if err != nil {
		return nil, fmt.Errorf("query history: %w", err)
	}
	defer rows.Close()

	var out []Entry
	for rows.Next() {
		var (
			e       Entry
			intent  string
			reason  sql.NullString
			signals sql.NullString
			created string
		)
		if err := rows.Scan(&e.ID, &e.TickID, &e.CompanyID, &intent, &e.Score, &reason, &signals, &created); err != nil {
			return nil, fmt.Errorf("scan decision: %w", err)
		}
		if e.Intent, err = model.ParseIntent(intent); err != nil {
			return nil, fmt.Errorf("decision %s: %w", e.ID, err)
		}
		e.Reason = reason.String
		if signals.Valid {
			e.Signals = &model.Signals{}
			if err := json.Unmarshal([]byte(signals.String), e.Signals); err != nil {
				return nil, fmt.Errorf("decision %s signals: %w", e.ID, err)
			}
		}
		if e.CreatedAt, err = time.Parse(time.RFC3339Nano, created); err != nil {
			return nil, fmt.Errorf("decision %s created_at: %w", e.ID, err)
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

// Stats counts ticks, decisions, companies, and decisions per intent.
func (s *Store) Stats(ctx context.Context) (*Stats, error) {
	st := &Stats{ByIntent: make(map[string]int)}
	err := s.db.QueryRowContext(ctx, `
		SELECT COUNT(DISTINCT tick_id), COUNT(*), COUNT(DISTINCT company_id) FROM decisions`,
	).Scan(&st.Ticks, &st.Decisions, &st.Companies)
	if err != nil {
		return nil, fmt.Errorf("count decisions: %w", err)
	}

	rows, err := s.db.QueryContext(ctx, `SELECT intent, COUNT(*) FROM decisions GROUP BY intent`)
	if err != nil {
		return nil, fmt.Errorf("count intents: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var intent string
		var n int
		if err := rows.Scan(&intent, &n); err != nil {
			return nil, fmt.Errorf("scan intent count: %w", err)
		}
		st.ByIntent[intent] = n
	}
	return st, rows.Err()
}

func nullable(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
