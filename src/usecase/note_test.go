package usecase_test

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"note-app/src/domain"
	"note-app/src/usecase"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

// MockNoteRepository は domain.NoteRepository のモック実装
type MockNoteRepository struct {
	mock.Mock
}

func (m *MockNoteRepository) Create(ctx context.Context, userID int, note *domain.Note) (*domain.Note, error) {
	args := m.Called(ctx, userID, note)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Note), args.Error(1)
}

func (m *MockNoteRepository) GetByID(ctx context.Context, id int, userID int) (*domain.Note, error) {
	args := m.Called(ctx, id, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Note), args.Error(1)
}

func (m *MockNoteRepository) List(ctx context.Context, userID int, filter domain.NoteFilter) ([]domain.Note, error) {
	args := m.Called(ctx, userID, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Note), args.Error(1)
}

func (m *MockNoteRepository) Update(ctx context.Context, id int, userID int, note *domain.Note) (*domain.Note, error) {
	args := m.Called(ctx, id, userID, note)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Note), args.Error(1)
}

func (m *MockNoteRepository) SoftDelete(ctx context.Context, id int, userID int) (*domain.Note, error) {
	args := m.Called(ctx, id, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Note), args.Error(1)
}

func (m *MockNoteRepository) Restore(ctx context.Context, id int, userID int) (*domain.Note, error) {
	args := m.Called(ctx, id, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Note), args.Error(1)
}

func TestNoteUsecase_CreateNote(t *testing.T) {
	tests := []struct {
		name          string
		request       usecase.CreateNoteRequest
		mockSetup     func(*MockNoteRepository)
		expectedError error
	}{
		{
			name: "successful creation",
			request: usecase.CreateNoteRequest{
				Title:      "Kadane's",
				Content:    "Running max of prefix sums.",
				Topic:      "Array",
				Difficulty: "Medium",
			},
			mockSetup: func(m *MockNoteRepository) {
				m.On("Create", mock.Anything, 1, mock.AnythingOfType("*domain.Note")).Return(&domain.Note{
					ID:         1,
					UserID:     1,
					Title:      "Kadane's",
					Content:    "Running max of prefix sums.",
					Topic:      "Array",
					Difficulty: domain.DifficultyMedium,
					CreatedAt:  time.Now(),
					UpdatedAt:  time.Now(),
				}, nil)
			},
			expectedError: nil,
		},
		{
			name: "missing title",
			request: usecase.CreateNoteRequest{
				Content:    "content",
				Topic:      "Tree",
				Difficulty: "Hard",
			},
			mockSetup:     func(m *MockNoteRepository) {},
			expectedError: usecase.ErrInvalidTitle,
		},
		{
			name: "missing content",
			request: usecase.CreateNoteRequest{
				Title:      "BFS",
				Topic:      "Graph",
				Difficulty: "Easy",
			},
			mockSetup:     func(m *MockNoteRepository) {},
			expectedError: usecase.ErrInvalidContent,
		},
		{
			name: "missing topic",
			request: usecase.CreateNoteRequest{
				Title:      "BFS",
				Content:    "content",
				Difficulty: "Easy",
			},
			mockSetup:     func(m *MockNoteRepository) {},
			expectedError: usecase.ErrInvalidTopic,
		},
		{
			name: "invalid difficulty",
			request: usecase.CreateNoteRequest{
				Title:      "BFS",
				Content:    "content",
				Topic:      "Graph",
				Difficulty: "Impossible",
			},
			mockSetup:     func(m *MockNoteRepository) {},
			expectedError: usecase.ErrInvalidDifficulty,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockRepo := new(MockNoteRepository)
			tt.mockSetup(mockRepo)

			u := usecase.NewNoteUsecase(mockRepo)
			note, err := u.CreateNote(context.Background(), 1, tt.request)

			if tt.expectedError != nil {
				assert.ErrorIs(t, err, tt.expectedError)
				assert.Nil(t, note)
			} else {
				assert.NoError(t, err)
				assert.NotNil(t, note)
				assert.False(t, note.Deleted)
			}

			mockRepo.AssertExpectations(t)
		})
	}
}

func TestNoteUsecase_GetNote(t *testing.T) {
	t.Run("not found is mapped to sentinel error", func(t *testing.T) {
		mockRepo := new(MockNoteRepository)
		mockRepo.On("GetByID", mock.Anything, 42, 1).Return(nil, fmt.Errorf("note not found"))

		u := usecase.NewNoteUsecase(mockRepo)
		note, err := u.GetNote(context.Background(), 42, 1)

		assert.ErrorIs(t, err, usecase.ErrNoteNotFound)
		assert.Nil(t, note)
	})

	t.Run("other errors pass through", func(t *testing.T) {
		mockRepo := new(MockNoteRepository)
		dbErr := errors.New("connection reset")
		mockRepo.On("GetByID", mock.Anything, 42, 1).Return(nil, dbErr)

		u := usecase.NewNoteUsecase(mockRepo)
		_, err := u.GetNote(context.Background(), 42, 1)

		assert.ErrorIs(t, err, dbErr)
	})
}

func TestNoteUsecase_UpdateNote(t *testing.T) {
	existing := &domain.Note{
		ID:         7,
		UserID:     1,
		Title:      "Old title",
		Content:    "Old content",
		Topic:      "Array",
		Difficulty: domain.DifficultyEasy,
		CreatedAt:  time.Now().Add(-time.Hour),
		UpdatedAt:  time.Now().Add(-time.Hour),
	}

	t.Run("only supplied fields are applied", func(t *testing.T) {
		mockRepo := new(MockNoteRepository)
		mockRepo.On("GetByID", mock.Anything, 7, 1).Return(existing, nil)
		mockRepo.On("Update", mock.Anything, 7, 1, mock.MatchedBy(func(n *domain.Note) bool {
			return n.Title == "New title" &&
				n.Content == "Old content" &&
				n.Topic == "Array" &&
				n.Difficulty == domain.DifficultyEasy &&
				n.UpdatedAt.After(existing.UpdatedAt)
		})).Return(&domain.Note{ID: 7, Title: "New title"}, nil)

		u := usecase.NewNoteUsecase(mockRepo)
		title := "New title"
		note, err := u.UpdateNote(context.Background(), 7, 1, usecase.UpdateNoteRequest{Title: &title})

		assert.NoError(t, err)
		assert.Equal(t, "New title", note.Title)
		mockRepo.AssertExpectations(t)
	})

	t.Run("empty title is rejected before repository access", func(t *testing.T) {
		mockRepo := new(MockNoteRepository)

		u := usecase.NewNoteUsecase(mockRepo)
		empty := ""
		_, err := u.UpdateNote(context.Background(), 7, 1, usecase.UpdateNoteRequest{Title: &empty})

		assert.ErrorIs(t, err, usecase.ErrInvalidTitle)
		mockRepo.AssertNotCalled(t, "GetByID")
	})

	t.Run("deleted note is not found", func(t *testing.T) {
		mockRepo := new(MockNoteRepository)
		mockRepo.On("GetByID", mock.Anything, 7, 1).Return(nil, fmt.Errorf("note not found"))

		u := usecase.NewNoteUsecase(mockRepo)
		title := "New title"
		_, err := u.UpdateNote(context.Background(), 7, 1, usecase.UpdateNoteRequest{Title: &title})

		assert.ErrorIs(t, err, usecase.ErrNoteNotFound)
	})
}

func TestNoteUsecase_ListNotes(t *testing.T) {
	t.Run("invalid difficulty filter is rejected", func(t *testing.T) {
		mockRepo := new(MockNoteRepository)

		u := usecase.NewNoteUsecase(mockRepo)
		_, err := u.ListNotes(context.Background(), 1, domain.NoteFilter{Difficulty: "Trivial"})

		assert.ErrorIs(t, err, usecase.ErrInvalidDifficulty)
		mockRepo.AssertNotCalled(t, "List")
	})

	t.Run("filter is passed through", func(t *testing.T) {
		mockRepo := new(MockNoteRepository)
		filter := domain.NoteFilter{Topic: "Tree", Difficulty: domain.DifficultyHard, Search: "binary"}
		mockRepo.On("List", mock.Anything, 1, filter).Return([]domain.Note{}, nil)

		u := usecase.NewNoteUsecase(mockRepo)
		notes, err := u.ListNotes(context.Background(), 1, filter)

		assert.NoError(t, err)
		assert.Empty(t, notes)
		mockRepo.AssertExpectations(t)
	})
}

func TestNoteUsecase_DeleteAndRestore(t *testing.T) {
	t.Run("delete returns the soft-deleted note", func(t *testing.T) {
		mockRepo := new(MockNoteRepository)
		mockRepo.On("SoftDelete", mock.Anything, 3, 1).Return(&domain.Note{ID: 3, Deleted: true}, nil)

		u := usecase.NewNoteUsecase(mockRepo)
		note, err := u.DeleteNote(context.Background(), 3, 1)

		assert.NoError(t, err)
		assert.True(t, note.Deleted)
	})

	t.Run("restore returns the restored note", func(t *testing.T) {
		mockRepo := new(MockNoteRepository)
		mockRepo.On("Restore", mock.Anything, 3, 1).Return(&domain.Note{ID: 3, Deleted: false}, nil)

		u := usecase.NewNoteUsecase(mockRepo)
		note, err := u.RestoreNote(context.Background(), 3, 1)

		assert.NoError(t, err)
		assert.False(t, note.Deleted)
	})

	t.Run("restore of a non-deleted note is not found", func(t *testing.T) {
		mockRepo := new(MockNoteRepository)
		mockRepo.On("Restore", mock.Anything, 3, 1).Return(nil, fmt.Errorf("note not found"))

		u := usecase.NewNoteUsecase(mockRepo)
		_, err := u.RestoreNote(context.Background(), 3, 1)

		assert.ErrorIs(t, err, usecase.ErrNoteNotFound)
	})
}
