package usecase

import (
	"context"
	"errors"
	"strings"
	"time"

	"note-app/src/domain"
)

var (
	ErrNoteNotFound      = errors.New("note not found")
	ErrInvalidTitle      = errors.New("title is required and must be less than 200 characters")
	ErrInvalidContent    = errors.New("content is required")
	ErrInvalidTopic      = errors.New("topic is required and must be less than 50 characters")
	ErrInvalidDifficulty = errors.New("difficulty must be Easy, Medium, or Hard")
)

// CreateNoteRequest represents input for creating a note.
// 4つのフィールドはすべて必須。
type CreateNoteRequest struct {
	Title      string
	Content    string
	Topic      string
	Difficulty string
}

// UpdateNoteRequest represents input for updating a note
type UpdateNoteRequest struct {
	Title      *string
	Content    *string
	Topic      *string
	Difficulty *string
}

// NoteUsecase defines the interface for note business logic
type NoteUsecase interface {
	CreateNote(ctx context.Context, userID int, req CreateNoteRequest) (*domain.Note, error)
	GetNote(ctx context.Context, id int, userID int) (*domain.Note, error)
	ListNotes(ctx context.Context, userID int, filter domain.NoteFilter) ([]domain.Note, error)
	UpdateNote(ctx context.Context, id int, userID int, req UpdateNoteRequest) (*domain.Note, error)
	DeleteNote(ctx context.Context, id int, userID int) (*domain.Note, error)
	RestoreNote(ctx context.Context, id int, userID int) (*domain.Note, error)
}

type noteUsecase struct {
	noteRepo domain.NoteRepository
}

// NewNoteUsecase creates a new note usecase
func NewNoteUsecase(noteRepo domain.NoteRepository) NoteUsecase {
	return &noteUsecase{
		noteRepo: noteRepo,
	}
}

// CreateNote creates a new note
func (u *noteUsecase) CreateNote(ctx context.Context, userID int, req CreateNoteRequest) (*domain.Note, error) {
	if err := u.validateCreateRequest(req); err != nil {
		return nil, err
	}

	note := &domain.Note{
		Title:      req.Title,
		Content:    req.Content,
		Topic:      req.Topic,
		Difficulty: domain.Difficulty(req.Difficulty),
		Deleted:    false,
		CreatedAt:  time.Now(),
		UpdatedAt:  time.Now(),
	}

	return u.noteRepo.Create(ctx, userID, note)
}

// GetNote retrieves a note by ID
func (u *noteUsecase) GetNote(ctx context.Context, id int, userID int) (*domain.Note, error) {
	note, err := u.noteRepo.GetByID(ctx, id, userID)
	if err != nil {
		if strings.Contains(err.Error(), "note not found") {
			return nil, ErrNoteNotFound
		}
		return nil, err
	}
	return note, nil
}

// ListNotes retrieves non-deleted notes with filtering
func (u *noteUsecase) ListNotes(ctx context.Context, userID int, filter domain.NoteFilter) ([]domain.Note, error) {
	if filter.Difficulty != "" && !filter.Difficulty.IsValid() {
		return nil, ErrInvalidDifficulty
	}

	return u.noteRepo.List(ctx, userID, filter)
}

// UpdateNote updates an existing note with partial fields
func (u *noteUsecase) UpdateNote(ctx context.Context, id int, userID int, req UpdateNoteRequest) (*domain.Note, error) {
	if err := u.validateUpdateRequest(req); err != nil {
		return nil, err
	}

	// 既存のノートを取得（削除済みは対象外）
	existing, err := u.noteRepo.GetByID(ctx, id, userID)
	if err != nil {
		if strings.Contains(err.Error(), "note not found") {
			return nil, ErrNoteNotFound
		}
		return nil, err
	}

	// 指定されたフィールドのみ適用
	updated := *existing

	if req.Title != nil {
		updated.Title = *req.Title
	}
	if req.Content != nil {
		updated.Content = *req.Content
	}
	if req.Topic != nil {
		updated.Topic = *req.Topic
	}
	if req.Difficulty != nil {
		updated.Difficulty = domain.Difficulty(*req.Difficulty)
	}

	updated.UpdatedAt = time.Now()

	return u.noteRepo.Update(ctx, id, userID, &updated)
}

// DeleteNote soft-deletes a note and returns it
func (u *noteUsecase) DeleteNote(ctx context.Context, id int, userID int) (*domain.Note, error) {
	note, err := u.noteRepo.SoftDelete(ctx, id, userID)
	if err != nil {
		if strings.Contains(err.Error(), "note not found") {
			return nil, ErrNoteNotFound
		}
		return nil, err
	}
	return note, nil
}

// RestoreNote restores a soft-deleted note and returns it
func (u *noteUsecase) RestoreNote(ctx context.Context, id int, userID int) (*domain.Note, error) {
	note, err := u.noteRepo.Restore(ctx, id, userID)
	if err != nil {
		if strings.Contains(err.Error(), "note not found") {
			return nil, ErrNoteNotFound
		}
		return nil, err
	}
	return note, nil
}

// validateCreateRequest validates create note request
func (u *noteUsecase) validateCreateRequest(req CreateNoteRequest) error {
	if req.Title == "" || len(req.Title) > 200 {
		return ErrInvalidTitle
	}
	if req.Content == "" {
		return ErrInvalidContent
	}
	if req.Topic == "" || len(req.Topic) > 50 {
		return ErrInvalidTopic
	}
	if !domain.Difficulty(req.Difficulty).IsValid() {
		return ErrInvalidDifficulty
	}
	return nil
}

// validateUpdateRequest validates update note request
func (u *noteUsecase) validateUpdateRequest(req UpdateNoteRequest) error {
	if req.Title != nil && (*req.Title == "" || len(*req.Title) > 200) {
		return ErrInvalidTitle
	}
	if req.Content != nil && *req.Content == "" {
		return ErrInvalidContent
	}
	if req.Topic != nil && (*req.Topic == "" || len(*req.Topic) > 50) {
		return ErrInvalidTopic
	}
	if req.Difficulty != nil && !domain.Difficulty(*req.Difficulty).IsValid() {
		return ErrInvalidDifficulty
	}
	return nil
}
