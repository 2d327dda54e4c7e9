package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"note-app/src/database"
	"note-app/src/domain"
	"note-app/src/security"

	"github.com/sirupsen/logrus"
)

// NoteRepository implements domain.NoteRepository backed by PostgreSQL
type NoteRepository struct {
	db           *database.DB
	logger       *logrus.Logger
	sqlSanitizer *security.SQLSanitizer
}

// NewNoteRepository creates a new note repository
func NewNoteRepository(db *database.DB, logger *logrus.Logger) domain.NoteRepository {
	return &NoteRepository{
		db:           db,
		logger:       logger,
		sqlSanitizer: security.NewSQLSanitizer(),
	}
}

const noteColumns = `id, user_id, title, content, topic, difficulty, deleted, created_at, updated_at`

func scanNote(row interface{ Scan(...any) error }) (*domain.Note, error) {
	note := &domain.Note{}
	err := row.Scan(
		&note.ID, &note.UserID, &note.Title, &note.Content,
		&note.Topic, &note.Difficulty, &note.Deleted,
		&note.CreatedAt, &note.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return note, nil
}

// Create creates a new note owned by userID
func (r *NoteRepository) Create(ctx context.Context, userID int, note *domain.Note) (*domain.Note, error) {
	now := time.Now()

	query := `
		INSERT INTO notes (user_id, title, content, topic, difficulty, deleted, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, FALSE, $6, $7)
		RETURNING ` + noteColumns

	created, err := scanNote(r.db.QueryRowContext(ctx, query,
		userID, note.Title, note.Content, note.Topic, note.Difficulty.String(), now, now,
	))
	if err != nil {
		r.logger.WithError(err).Error("ノートの作成に失敗")
		return nil, fmt.Errorf("failed to create note: %w", err)
	}

	r.logger.WithFields(logrus.Fields{
		"note_id": created.ID,
		"user_id": userID,
	}).Info("ノートを作成しました")
	return created, nil
}

// GetByID retrieves a non-deleted note owned by userID
func (r *NoteRepository) GetByID(ctx context.Context, id int, userID int) (*domain.Note, error) {
	query := `
		SELECT ` + noteColumns + `
		FROM notes
		WHERE id = $1 AND user_id = $2 AND deleted = FALSE`

	note, err := scanNote(r.db.QueryRowContext(ctx, query, id, userID))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("note not found")
		}
		return nil, fmt.Errorf("failed to get note: %w", err)
	}

	return note, nil
}

// List retrieves non-deleted notes owned by userID, newest update first.
// フィルタはAND結合、検索はタイトルと本文に対するOR結合の部分一致。
func (r *NoteRepository) List(ctx context.Context, userID int, filter domain.NoteFilter) ([]domain.Note, error) {
	query := `
		SELECT ` + noteColumns + `
		FROM notes
		WHERE user_id = $1 AND deleted = FALSE`
	args := []any{userID}

	if filter.Topic != "" {
		args = append(args, filter.Topic)
		query += fmt.Sprintf(" AND topic = $%d", len(args))
	}
	if filter.Difficulty != "" {
		args = append(args, filter.Difficulty.String())
		query += fmt.Sprintf(" AND difficulty = $%d", len(args))
	}
	if filter.Search != "" {
		if err := r.sqlSanitizer.ValidateSearchQuery(filter.Search); err != nil {
			return nil, fmt.Errorf("invalid search query: %w", err)
		}
		pattern := "%" + r.sqlSanitizer.SanitizeSearchQuery(filter.Search) + "%"
		args = append(args, pattern)
		query += fmt.Sprintf(` AND (title ILIKE $%d ESCAPE '\' OR content ILIKE $%d ESCAPE '\')`, len(args), len(args))
	}

	query += " ORDER BY updated_at DESC"

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		r.logger.WithError(err).Error("ノートリストの取得に失敗")
		return nil, fmt.Errorf("failed to list notes: %w", err)
	}
	defer rows.Close()

	notes := []domain.Note{}
	for rows.Next() {
		note, err := scanNote(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan note: %w", err)
		}
		notes = append(notes, *note)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate notes: %w", err)
	}

	return notes, nil
}

// Update updates a non-deleted note owned by userID
func (r *NoteRepository) Update(ctx context.Context, id int, userID int, note *domain.Note) (*domain.Note, error) {
	query := `
		UPDATE notes
		SET title = $3, content = $4, topic = $5, difficulty = $6, updated_at = $7
		WHERE id = $1 AND user_id = $2 AND deleted = FALSE
		RETURNING ` + noteColumns

	updated, err := scanNote(r.db.QueryRowContext(ctx, query,
		id, userID, note.Title, note.Content, note.Topic, note.Difficulty.String(), time.Now(),
	))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("note not found")
		}
		r.logger.WithError(err).WithField("note_id", id).Error("ノートの更新に失敗")
		return nil, fmt.Errorf("failed to update note: %w", err)
	}

	return updated, nil
}

// SoftDelete marks a non-deleted note as deleted and returns it
func (r *NoteRepository) SoftDelete(ctx context.Context, id int, userID int) (*domain.Note, error) {
	query := `
		UPDATE notes
		SET deleted = TRUE, updated_at = $3
		WHERE id = $1 AND user_id = $2 AND deleted = FALSE
		RETURNING ` + noteColumns

	note, err := scanNote(r.db.QueryRowContext(ctx, query, id, userID, time.Now()))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("note not found")
		}
		r.logger.WithError(err).WithField("note_id", id).Error("ノートのソフトデリートに失敗")
		return nil, fmt.Errorf("failed to delete note: %w", err)
	}

	return note, nil
}

// Restore clears the deleted flag of a deleted note and returns it.
// 削除済みのノートのみが対象。
func (r *NoteRepository) Restore(ctx context.Context, id int, userID int) (*domain.Note, error) {
	query := `
		UPDATE notes
		SET deleted = FALSE, updated_at = $3
		WHERE id = $1 AND user_id = $2 AND deleted = TRUE
		RETURNING ` + noteColumns

	note, err := scanNote(r.db.QueryRowContext(ctx, query, id, userID, time.Now()))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("note not found")
		}
		r.logger.WithError(err).WithField("note_id", id).Error("ノートの復元に失敗")
		return nil, fmt.Errorf("failed to restore note: %w", err)
	}

	return note, nil
}
