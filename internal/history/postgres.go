package history

import (
	"context"
	"fmt"
	"strings"
	"time"

	"imgprompt/internal/domain"
	"imgprompt/internal/infra"
	"imgprompt/internal/sqlinline"
)

// PostgresStore keeps history in the prompt_history table.
type PostgresStore struct {
	sql   infra.SQLExecutor
	limit int
}

func NewPostgresStore(sql infra.SQLExecutor, limit int) *PostgresStore {
	if limit <= 0 {
		limit = DefaultLimit
	}
	return &PostgresStore{sql: sql, limit: limit}
}

func (s *PostgresStore) Add(ctx context.Context, entry domain.HistoryEntry) (domain.HistoryEntry, error) {
	entry, err := prepare(entry)
	if err != nil {
		return domain.HistoryEntry{}, err
	}
	if _, err := s.sql.Exec(ctx, sqlinline.QInsertHistoryEntry, entry.ID, entry.Owner, entry.ImageRef, entry.Prompt, string(entry.Backend), entry.Timestamp); err != nil {
		return domain.HistoryEntry{}, fmt.Errorf("history: insert: %w", err)
	}
	if _, err := s.sql.Exec(ctx, sqlinline.QTrimHistory, entry.Owner, s.limit); err != nil {
		return domain.HistoryEntry{}, fmt.Errorf("history: trim: %w", err)
	}
	return entry, nil
}

func (s *PostgresStore) List(ctx context.Context, owner string) ([]domain.HistoryEntry, error) {
	owner = strings.TrimSpace(owner)
	rows, err := s.sql.Query(ctx, sqlinline.QSelectHistory, owner, s.limit)
	if err != nil {
		return nil, fmt.Errorf("history: select: %w", err)
	}
	defer rows.Close()

	var out []domain.HistoryEntry
	for rows.Next() {
		var (
			entry     domain.HistoryEntry
			backend   string
			createdAt time.Time
		)
		if err := rows.Scan(&entry.ID, &entry.ImageRef, &entry.Prompt, &backend, &createdAt); err != nil {
			return nil, fmt.Errorf("history: scan: %w", err)
		}
		entry.Owner = owner
		entry.Backend = domain.Backend(backend)
		entry.Timestamp = createdAt.UTC()
		out = append(out, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("history: rows: %w", err)
	}
	return out, nil
}

func (s *PostgresStore) Clear(ctx context.Context, owner string) error {
	if _, err := s.sql.Exec(ctx, sqlinline.QClearHistory, strings.TrimSpace(owner)); err != nil {
		return fmt.Errorf("history: clear: %w", err)
	}
	return nil
}

var _ Store = (*PostgresStore)(nil)

// EnsureSchema creates the history and token tables when they are missing.
func EnsureSchema(ctx context.Context, sql infra.SQLExecutor) error {
	if _, err := sql.Exec(ctx, sqlinline.QEnsureSchema); err != nil {
		return fmt.Errorf("history: ensure schema: %w", err)
	}
	return nil
}
