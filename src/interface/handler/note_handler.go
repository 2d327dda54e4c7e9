package handler

import (
	"net/http"
	"strconv"

	"note-app/src/domain"
	"note-app/src/usecase"
	"note-app/src/validator"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// NoteHandler handles HTTP requests for note operations
type NoteHandler struct {
	noteUsecase usecase.NoteUsecase
	validator   *validator.CustomValidator
	logger      *logrus.Logger
}

// NewNoteHandler creates a new note handler
func NewNoteHandler(noteUsecase usecase.NoteUsecase, cv *validator.CustomValidator, logger *logrus.Logger) *NoteHandler {
	return &NoteHandler{
		noteUsecase: noteUsecase,
		validator:   cv,
		logger:      logger,
	}
}

// userIDFromContext 認証ミドルウェアが設定したユーザーIDを取り出す
func (h *NoteHandler) userIDFromContext(c *gin.Context) (int, bool) {
	value, exists := c.Get("user_id")
	if !exists {
		c.JSON(http.StatusUnauthorized, ErrorResponseDTO{Error: "Authentication required"})
		return 0, false
	}

	userID, ok := value.(int)
	if !ok {
		c.JSON(http.StatusUnauthorized, ErrorResponseDTO{Error: "Authentication required"})
		return 0, false
	}

	return userID, true
}

// noteIDFromPath パスパラメータからノートIDを取り出す
func (h *NoteHandler) noteIDFromPath(c *gin.Context) (int, bool) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponseDTO{
			Error:   "Invalid note ID",
			Message: "Note ID must be a number",
		})
		return 0, false
	}
	return id, true
}

// CreateNote creates a new note
func (h *NoteHandler) CreateNote(c *gin.Context) {
	userID, ok := h.userIDFromContext(c)
	if !ok {
		return
	}

	var req CreateNoteRequestDTO
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.WithError(err).Error("リクエストのバインドに失敗")
		c.JSON(http.StatusBadRequest, ErrorResponseDTO{
			Error:   "Invalid request format",
			Message: err.Error(),
		})
		return
	}

	// カスタムバリデーション（危険な文字列の排除）
	if err := h.validator.Validate(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponseDTO{
			Error:   "Validation failed",
			Message: err.Error(),
		})
		return
	}

	note, err := h.noteUsecase.CreateNote(c.Request.Context(), userID, usecase.CreateNoteRequest{
		Title:      req.Title,
		Content:    req.Content,
		Topic:      req.Topic,
		Difficulty: req.Difficulty,
	})
	if err != nil {
		h.logger.WithError(err).Error("ノートの作成に失敗")

		status := http.StatusInternalServerError
		if err == usecase.ErrInvalidTitle || err == usecase.ErrInvalidContent ||
			err == usecase.ErrInvalidTopic || err == usecase.ErrInvalidDifficulty {
			status = http.StatusBadRequest
		}

		c.JSON(status, ErrorResponseDTO{
			Error:   "Failed to create note",
			Message: err.Error(),
		})
		return
	}

	h.logger.WithFields(logrus.Fields{
		"note_id": note.ID,
		"user_id": userID,
	}).Info("ノートを作成しました")
	c.JSON(http.StatusCreated, NoteEnvelopeDTO{Note: h.toNoteResponseDTO(note)})
}

// GetNote retrieves a note by ID
func (h *NoteHandler) GetNote(c *gin.Context) {
	userID, ok := h.userIDFromContext(c)
	if !ok {
		return
	}

	id, ok := h.noteIDFromPath(c)
	if !ok {
		return
	}

	note, err := h.noteUsecase.GetNote(c.Request.Context(), id, userID)
	if err != nil {
		status := http.StatusInternalServerError
		if err == usecase.ErrNoteNotFound {
			status = http.StatusNotFound
		} else {
			h.logger.WithError(err).WithField("note_id", id).Error("ノートの取得に失敗")
		}

		c.JSON(status, ErrorResponseDTO{
			Error: "Note not found",
		})
		return
	}

	c.JSON(http.StatusOK, NoteEnvelopeDTO{Note: h.toNoteResponseDTO(note)})
}

// ListNotes retrieves non-deleted notes with filtering,
// ordered by updated_at descending
func (h *NoteHandler) ListNotes(c *gin.Context) {
	userID, ok := h.userIDFromContext(c)
	if !ok {
		return
	}

	var filterDTO NoteFilterDTO
	if err := c.ShouldBindQuery(&filterDTO); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponseDTO{
			Error:   "Invalid query parameters",
			Message: err.Error(),
		})
		return
	}

	if err := h.validator.Validate(&filterDTO); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponseDTO{
			Error:   "Validation failed",
			Message: err.Error(),
		})
		return
	}

	filter := domain.NoteFilter{
		Topic:      filterDTO.Topic,
		Difficulty: domain.Difficulty(filterDTO.Difficulty),
		Search:     filterDTO.Search,
	}

	notes, err := h.noteUsecase.ListNotes(c.Request.Context(), userID, filter)
	if err != nil {
		h.logger.WithError(err).Error("ノートリストの取得に失敗")

		status := http.StatusInternalServerError
		if err == usecase.ErrInvalidDifficulty {
			status = http.StatusBadRequest
		}

		c.JSON(status, ErrorResponseDTO{
			Error:   "Failed to get notes",
			Message: err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, NoteListResponseDTO{Notes: h.toNoteResponseDTOs(notes)})
}

// UpdateNote updates an existing note with partial fields
func (h *NoteHandler) UpdateNote(c *gin.Context) {
	userID, ok := h.userIDFromContext(c)
	if !ok {
		return
	}

	id, ok := h.noteIDFromPath(c)
	if !ok {
		return
	}

	var req UpdateNoteRequestDTO
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.WithError(err).Error("リクエストのバインドに失敗")
		c.JSON(http.StatusBadRequest, ErrorResponseDTO{
			Error:   "Invalid request format",
			Message: err.Error(),
		})
		return
	}

	if err := h.validator.Validate(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponseDTO{
			Error:   "Validation failed",
			Message: err.Error(),
		})
		return
	}

	note, err := h.noteUsecase.UpdateNote(c.Request.Context(), id, userID, usecase.UpdateNoteRequest{
		Title:      req.Title,
		Content:    req.Content,
		Topic:      req.Topic,
		Difficulty: req.Difficulty,
	})
	if err != nil {
		h.logger.WithError(err).WithField("note_id", id).Error("ノートの更新に失敗")

		status := http.StatusInternalServerError
		if err == usecase.ErrNoteNotFound {
			status = http.StatusNotFound
		} else if err == usecase.ErrInvalidTitle || err == usecase.ErrInvalidContent ||
			err == usecase.ErrInvalidTopic || err == usecase.ErrInvalidDifficulty {
			status = http.StatusBadRequest
		}

		c.JSON(status, ErrorResponseDTO{
			Error:   "Failed to update note",
			Message: err.Error(),
		})
		return
	}

	h.logger.WithField("note_id", id).Info("ノートを更新しました")
	c.JSON(http.StatusOK, NoteEnvelopeDTO{Note: h.toNoteResponseDTO(note)})
}

// DeleteNote soft-deletes a note and returns the deleted note
func (h *NoteHandler) DeleteNote(c *gin.Context) {
	userID, ok := h.userIDFromContext(c)
	if !ok {
		return
	}

	id, ok := h.noteIDFromPath(c)
	if !ok {
		return
	}

	note, err := h.noteUsecase.DeleteNote(c.Request.Context(), id, userID)
	if err != nil {
		status := http.StatusInternalServerError
		if err == usecase.ErrNoteNotFound {
			status = http.StatusNotFound
		} else {
			h.logger.WithError(err).WithField("note_id", id).Error("ノートの削除に失敗")
		}

		c.JSON(status, ErrorResponseDTO{
			Error: "Failed to delete note",
		})
		return
	}

	h.logger.WithField("note_id", id).Info("ノートをソフトデリートしました")
	c.JSON(http.StatusOK, NoteEnvelopeDTO{Note: h.toNoteResponseDTO(note)})
}

// RestoreNote restores a soft-deleted note
func (h *NoteHandler) RestoreNote(c *gin.Context) {
	userID, ok := h.userIDFromContext(c)
	if !ok {
		return
	}

	id, ok := h.noteIDFromPath(c)
	if !ok {
		return
	}

	note, err := h.noteUsecase.RestoreNote(c.Request.Context(), id, userID)
	if err != nil {
		status := http.StatusInternalServerError
		if err == usecase.ErrNoteNotFound {
			status = http.StatusNotFound
		} else {
			h.logger.WithError(err).WithField("note_id", id).Error("ノートの復元に失敗")
		}

		c.JSON(status, ErrorResponseDTO{
			Error: "Failed to restore note",
		})
		return
	}

	h.logger.WithField("note_id", id).Info("ノートを復元しました")
	c.JSON(http.StatusOK, NoteEnvelopeDTO{Note: h.toNoteResponseDTO(note)})
}

// Helper methods for conversion

func (h *NoteHandler) toNoteResponseDTO(note *domain.Note) NoteResponseDTO {
	return NoteResponseDTO{
		ID:         note.ID,
		UserID:     note.UserID,
		Title:      note.Title,
		Content:    note.Content,
		Topic:      note.Topic,
		Difficulty: note.Difficulty.String(),
		Deleted:    note.Deleted,
		CreatedAt:  note.CreatedAt,
		UpdatedAt:  note.UpdatedAt,
	}
}

func (h *NoteHandler) toNoteResponseDTOs(notes []domain.Note) []NoteResponseDTO {
	result := make([]NoteResponseDTO, len(notes))
	for i, note := range notes {
		result[i] = h.toNoteResponseDTO(&note)
	}
	return result
}
