package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"devlogger/internal/domain"
	"devlogger/internal/repository"
)

const createLogsTable = `
CREATE TABLE IF NOT EXISTS logs (
	id TEXT PRIMARY KEY,
	title TEXT NOT NULL,
	content TEXT NOT NULL,
	tags TEXT NOT NULL DEFAULT '[]',
	owner_id TEXT NOT NULL,
	created_at DATETIME NOT NULL,
	updated_at DATETIME NOT NULL,
	FOREIGN KEY(owner_id) REFERENCES users(id)
);
`

const createLogsOwnerIndex = `
CREATE INDEX IF NOT EXISTS idx_logs_owner_id ON logs(owner_id);
`

type LogRepository struct {
	db *sql.DB
}

func NewLogRepository(db *sql.DB) repository.LogRepository {
	return &LogRepository{db: db}
}

func (r *LogRepository) Init(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, createLogsTable); err != nil {
		return fmt.Errorf("create logs table: %w", err)
	}
	if _, err := r.db.ExecContext(ctx, createLogsOwnerIndex); err != nil {
		return fmt.Errorf("create logs owner index: %w", err)
	}
	return nil
}

func (r *LogRepository) Create(ctx context.Context, log *domain.Log) error {
	now := time.Now().UTC()
	log.CreatedAt = now
	log.UpdatedAt = now

	tags, err := encodeTags(log.Tags)
	if err != nil {
		return err
	}

	_, err = r.db.ExecContext(ctx, `
INSERT INTO logs (id, title, content, tags, owner_id, created_at, updated_at)
VALUES (?, ?, ?, ?, ?, ?, ?)`,
		log.ID,
		log.Title,
		log.Content,
		tags,
		log.OwnerID,
		log.CreatedAt,
		log.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert log: %w", err)
	}
	return nil
}

func (r *LogRepository) Get(ctx context.Context, ownerID, id string) (*domain.Log, error) {
	row := r.db.QueryRowContext(ctx, `
SELECT id, title, content, tags, owner_id, created_at, updated_at
FROM logs
WHERE id = ? AND owner_id = ?`,
		id,
		ownerID,
	)
	return scanLog(row)
}

func (r *LogRepository) List(ctx context.Context, ownerID string) ([]domain.Log, error) {
	rows, err := r.db.QueryContext(ctx, `
SELECT id, title, content, tags, owner_id, created_at, updated_at
FROM logs
WHERE owner_id = ?
ORDER BY created_at DESC`,
		ownerID,
	)
	if err != nil {
		return nil, fmt.Errorf("query logs: %w", err)
	}
	defer rows.Close()

	return collectLogs(rows)
}

func (r *LogRepository) ListByIDs(ctx context.Context, ownerID string, ids []string) ([]domain.Log, error) {
	if len(ids) == 0 {
		return []domain.Log{}, nil
	}

	placeholders := make([]string, len(ids))
	args := make([]any, 0, len(ids)+1)
	for i, id := range ids {
		placeholders[i] = "?"
		args = append(args, id)
	}
	args = append(args, ownerID)

	query := fmt.Sprintf(`
SELECT id, title, content, tags, owner_id, created_at, updated_at
FROM logs
WHERE id IN (%s) AND owner_id = ?
ORDER BY created_at DESC`, strings.Join(placeholders, ","))

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query logs by ids: %w", err)
	}
	defer rows.Close()

	return collectLogs(rows)
}

func (r *LogRepository) Update(ctx context.Context, log *domain.Log) error {
	log.UpdatedAt = time.Now().UTC()

	tags, err := encodeTags(log.Tags)
	if err != nil {
		return err
	}

	res, err := r.db.ExecContext(ctx, `
UPDATE logs
SET title=?, content=?, tags=?, updated_at=?
WHERE id=? AND owner_id=?`,
		log.Title,
		log.Content,
		tags,
		log.UpdatedAt,
		log.ID,
		log.OwnerID,
	)
	if err != nil {
		return fmt.Errorf("update log: %w", err)
	}
	aff, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("log update rows affected: %w", err)
	}
	if aff == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *LogRepository) Delete(ctx context.Context, ownerID, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM logs WHERE id=? AND owner_id=?`, id, ownerID)
	if err != nil {
		return fmt.Errorf("delete log: %w", err)
	}
	aff, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("log delete rows affected: %w", err)
	}
	if aff == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func collectLogs(rows *sql.Rows) ([]domain.Log, error) {
	var logs []domain.Log
	for rows.Next() {
		log, err := scanLog(rows)
		if err != nil {
			return nil, err
		}
		logs = append(logs, *log)
	}
	return logs, rows.Err()
}

func scanLog(scanner interface {
	Scan(dest ...any) error
}) (*domain.Log, error) {
	var (
		log       domain.Log
		tags      string
		createdAt time.Time
		updatedAt time.Time
	)

	if err := scanner.Scan(
		&log.ID,
		&log.Title,
		&log.Content,
		&tags,
		&log.OwnerID,
		&createdAt,
		&updatedAt,
	); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("scan log: %w", err)
	}

	log.CreatedAt = createdAt.UTC()
	log.UpdatedAt = updatedAt.UTC()
	if err := json.Unmarshal([]byte(tags), &log.Tags); err != nil {
		return nil, fmt.Errorf("decode log tags: %w", err)
	}
	if log.Tags == nil {
		log.Tags = []string{}
	}

	return &log, nil
}

func encodeTags(tags []string) (string, error) {
	if tags == nil {
		tags = []string{}
	}
	b, err := json.Marshal(tags)
	if err != nil {
		return "", fmt.Errorf("encode log tags: %w", err)
	}
	return string(b), nil
}
