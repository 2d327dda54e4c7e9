package handler

import (
	"time"
)

// CreateNoteRequestDTO represents HTTP request for creating a note
type CreateNoteRequestDTO struct {
	Title      string `json:"title" binding:"required,max=200" validate:"required,max=200,min=1,safe_text"`
	Content    string `json:"content" binding:"required" validate:"required,min=1,safe_text"`
	Topic      string `json:"topic" binding:"required,max=50" validate:"required,max=50,safe_topic"`
	Difficulty string `json:"difficulty" binding:"required,oneof=Easy Medium Hard" validate:"required,oneof=Easy Medium Hard"`
}

// UpdateNoteRequestDTO represents HTTP request for updating a note
type UpdateNoteRequestDTO struct {
	Title      *string `json:"title,omitempty" binding:"omitempty,max=200" validate:"omitempty,max=200,min=1,safe_text"`
	Content    *string `json:"content,omitempty" validate:"omitempty,min=1,safe_text"`
	Topic      *string `json:"topic,omitempty" binding:"omitempty,max=50" validate:"omitempty,max=50,safe_topic"`
	Difficulty *string `json:"difficulty,omitempty" binding:"omitempty,oneof=Easy Medium Hard" validate:"omitempty,oneof=Easy Medium Hard"`
}

// NoteResponseDTO represents HTTP response for a note
type NoteResponseDTO struct {
	ID         int       `json:"id"`
	UserID     int       `json:"user_id"`
	Title      string    `json:"title"`
	Content    string    `json:"content"`
	Topic      string    `json:"topic"`
	Difficulty string    `json:"difficulty"`
	Deleted    bool      `json:"deleted"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// NoteEnvelopeDTO wraps a single note response
type NoteEnvelopeDTO struct {
	Note NoteResponseDTO `json:"note"`
}

// NoteListResponseDTO represents HTTP response for note list
type NoteListResponseDTO struct {
	Notes []NoteResponseDTO `json:"notes"`
}

// NoteFilterDTO represents HTTP query parameters for filtering notes
type NoteFilterDTO struct {
	Topic      string `form:"topic" validate:"omitempty,max=50,safe_topic"`
	Difficulty string `form:"difficulty" binding:"omitempty,oneof=Easy Medium Hard" validate:"omitempty,oneof=Easy Medium Hard"`
	Search     string `form:"search" validate:"omitempty,max=200,safe_text,no_sql_injection"`
}

// ErrorResponseDTO represents HTTP error response
type ErrorResponseDTO struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}
