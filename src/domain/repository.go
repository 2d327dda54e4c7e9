package domain

import "context"

// NoteRepository defines the interface for note data operations.
// すべての操作は所有ユーザーのIDでスコープされる。
type NoteRepository interface {
	Create(ctx context.Context, userID int, note *Note) (*Note, error)
	GetByID(ctx context.Context, id int, userID int) (*Note, error)
	List(ctx context.Context, userID int, filter NoteFilter) ([]Note, error)
	Update(ctx context.Context, id int, userID int, note *Note) (*Note, error)
	SoftDelete(ctx context.Context, id int, userID int) (*Note, error)
	Restore(ctx context.Context, id int, userID int) (*Note, error)
}
