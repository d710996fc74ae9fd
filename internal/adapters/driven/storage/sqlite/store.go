package sqlite

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"github.com/draftmill/draftmill-cli/internal/core/domain"
	"github.com/draftmill/draftmill-cli/internal/core/ports/driven"
)

// Ensure Store implements the interfaces.
var (
	_ driven.UnitStore       = (*Store)(nil)
	_ driven.CheckpointStore = (*Store)(nil)
)

// schema creates the run-state tables. rowid preserves insertion order
// for ListTerminal; upserts keep the original rowid.
const schema = `
CREATE TABLE IF NOT EXISTS units (
	path             TEXT PRIMARY KEY,
	id               TEXT NOT NULL,
	chapter_title    TEXT NOT NULL,
	section_title    TEXT NOT NULL,
	subsection_title TEXT NOT NULL DEFAULT '',
	state            TEXT NOT NULL,
	draft_text       TEXT NOT NULL DEFAULT '',
	visual_json      TEXT NOT NULL DEFAULT '',
	artifact_ref     TEXT NOT NULL DEFAULT '',
	final_text       TEXT NOT NULL DEFAULT '',
	quality_score    REAL NOT NULL DEFAULT 0,
	feedback         TEXT NOT NULL DEFAULT '',
	refinement_round INTEGER NOT NULL DEFAULT 0,
	fail_reason      TEXT NOT NULL DEFAULT '',
	updated_at       TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS checkpoints (
	id                 INTEGER PRIMARY KEY AUTOINCREMENT,
	last_chapter_index INTEGER NOT NULL,
	last_chapter_title TEXT NOT NULL,
	executive_summary  TEXT NOT NULL DEFAULT '',
	global_thesis      TEXT NOT NULL DEFAULT '',
	created_at         TEXT NOT NULL
);
`

// Store persists generation units and checkpoints in SQLite.
type Store struct {
	db *sql.DB
}

// NewStore opens (or creates) the database at dbPath and applies the
// schema. WAL mode keeps readers unblocked during unit writes.
func NewStore(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("apply schema: %w", err)
	}

	return &Store{db: db}, nil
}

// Close releases the database handle.
func (s *Store) Close() error {
	return s.db.Close()
}

// SaveUnit writes a unit keyed by its path, replacing any existing row.
func (s *Store) SaveUnit(unit domain.GenerationUnit) error {
	visualJSON := ""
	if unit.Visual != nil {
		data, err := json.Marshal(unit.Visual)
		if err != nil {
			return fmt.Errorf("marshal visual: %w", err)
		}
		visualJSON = string(data)
	}

	_, err := s.db.Exec(`
		INSERT INTO units (
			path, id, chapter_title, section_title, subsection_title,
			state, draft_text, visual_json, artifact_ref, final_text,
			quality_score, feedback, refinement_round, fail_reason, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(path) DO UPDATE SET
			id = excluded.id,
			state = excluded.state,
			draft_text = excluded.draft_text,
			visual_json = excluded.visual_json,
			artifact_ref = excluded.artifact_ref,
			final_text = excluded.final_text,
			quality_score = excluded.quality_score,
			feedback = excluded.feedback,
			refinement_round = excluded.refinement_round,
			fail_reason = excluded.fail_reason,
			updated_at = excluded.updated_at`,
		unit.Path(), unit.ID, unit.ChapterTitle, unit.SectionTitle, unit.SubsectionTitle,
		unit.State.String(), unit.DraftText, visualJSON, unit.ArtifactRef, unit.FinalText,
		unit.QualityScore, unit.Feedback, unit.RefinementRound, unit.FailReason,
		unit.UpdatedAt.UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("save unit: %w", err)
	}
	return nil
}

// GetUnit returns the persisted unit for a path.
func (s *Store) GetUnit(path string) (*domain.GenerationUnit, error) {
	row := s.db.QueryRow(`
		SELECT id, chapter_title, section_title, subsection_title,
			state, draft_text, visual_json, artifact_ref, final_text,
			quality_score, feedback, refinement_round, fail_reason, updated_at
		FROM units WHERE path = ?`, path)

	var unit domain.GenerationUnit
	var state, visualJSON, updatedAt string
	err := row.Scan(
		&unit.ID, &unit.ChapterTitle, &unit.SectionTitle, &unit.SubsectionTitle,
		&state, &unit.DraftText, &visualJSON, &unit.ArtifactRef, &unit.FinalText,
		&unit.QualityScore, &unit.Feedback, &unit.RefinementRound, &unit.FailReason, &updatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get unit: %w", err)
	}

	unit.State = domain.UnitState(state)
	if visualJSON != "" {
		var visual domain.VisualSpec
		if err := json.Unmarshal([]byte(visualJSON), &visual); err != nil {
			return nil, fmt.Errorf("unmarshal visual: %w", err)
		}
		unit.Visual = &visual
	}
	if ts, err := time.Parse(time.RFC3339Nano, updatedAt); err == nil {
		unit.UpdatedAt = ts
	}
	return &unit, nil
}

// ListTerminal returns the paths of all finalized or failed units in
// insertion order.
func (s *Store) ListTerminal() ([]string, error) {
	rows, err := s.db.Query(`
		SELECT path FROM units
		WHERE state IN (?, ?)
		ORDER BY rowid`,
		domain.UnitStateFinalized.String(), domain.UnitStateFailed.String())
	if err != nil {
		return nil, fmt.Errorf("list terminal units: %w", err)
	}
	defer rows.Close()

	var paths []string
	for rows.Next() {
		var path string
		if err := rows.Scan(&path); err != nil {
			return nil, fmt.Errorf("scan unit path: %w", err)
		}
		paths = append(paths, path)
	}
	return paths, rows.Err()
}

// SaveCheckpoint appends a checkpoint.
func (s *Store) SaveCheckpoint(cp domain.Checkpoint) error {
	_, err := s.db.Exec(`
		INSERT INTO checkpoints (
			last_chapter_index, last_chapter_title,
			executive_summary, global_thesis, created_at
		) VALUES (?, ?, ?, ?, ?)`,
		cp.LastCompletedChapterIndex, cp.LastCompletedChapterTitle,
		cp.ExecutiveSummary, cp.GlobalThesis,
		cp.Timestamp.UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("save checkpoint: %w", err)
	}
	return nil
}

// LatestCheckpoint returns the most recent checkpoint.
func (s *Store) LatestCheckpoint() (*domain.Checkpoint, error) {
	row := s.db.QueryRow(`
		SELECT last_chapter_index, last_chapter_title,
			executive_summary, global_thesis, created_at
		FROM checkpoints ORDER BY id DESC LIMIT 1`)

	var cp domain.Checkpoint
	var createdAt string
	err := row.Scan(
		&cp.LastCompletedChapterIndex, &cp.LastCompletedChapterTitle,
		&cp.ExecutiveSummary, &cp.GlobalThesis, &createdAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get checkpoint: %w", err)
	}

	if ts, err := time.Parse(time.RFC3339Nano, createdAt); err == nil {
		cp.Timestamp = ts
	}
	return &cp, nil
}
