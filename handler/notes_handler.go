package handler

import (
	"context"
	"errors"

	"quicknotes/dto"
	"quicknotes/metrics"
	"quicknotes/model"
	"quicknotes/usecase"
	"quicknotes/utils"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"
)

// NotesService is the part of the notes use case the HTTP layer serves.
type NotesService interface {
	ListByCategory(ctx context.Context, filter string) ([]*model.Note, error)
	Get(ctx context.Context, noteID string) (*model.Note, error)
	Create(ctx context.Context, input model.CreateNoteInput) (*model.Note, error)
	Update(ctx context.Context, input model.UpdateNoteInput) (*model.Note, error)
	Delete(ctx context.Context, noteID string) error
}

type NotesHandler struct {
	Service NotesService
}

func NewNotesHandler(service NotesService) *NotesHandler {
	return &NotesHandler{Service: service}
}

// ListNotes serves GET /notes, optionally filtered by ?category=.
func (h *NotesHandler) ListNotes(c *gin.Context) {
	filter := c.Query("category")

	notes, err := h.Service.ListByCategory(c.Request.Context(), filter)
	if err != nil {
		writeNoteError(c, err)
		return
	}

	category, ok, _ := model.ParseCategoryFilter(filter)
	if !ok {
		category = model.CategoryAll
	}

	baseURL := utils.GetBaseURL(c)
	utils.Success(c, dto.NotesListResponse{
		Notes: dto.ToNoteResponses(notes, func(n *model.Note) map[string]dto.NoteLink {
			return dto.NoteLinks(baseURL, n)
		}),
		Count:    len(notes),
		Category: category,
	})
}

func (h *NotesHandler) GetNote(c *gin.Context) {
	note, err := h.Service.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeNoteError(c, err)
		return
	}

	utils.Success(c, dto.ToNoteResponse(note, dto.NoteLinks(utils.GetBaseURL(c), note)))
}

func (h *NotesHandler) CreateNote(c *gin.Context) {
	var req dto.CreateNoteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequest(c, "Invalid request body")
		return
	}

	note, err := h.Service.Create(c.Request.Context(), req.ToInput())
	if err != nil {
		writeNoteError(c, err)
		return
	}

	utils.Created(c, dto.ToNoteResponse(note, dto.NoteLinks(utils.GetBaseURL(c), note)))
}

// UpdateNote serves PATCH and PUT; absent fields are left untouched either way.
func (h *NotesHandler) UpdateNote(c *gin.Context) {
	var req dto.UpdateNoteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequest(c, "Invalid request body")
		return
	}

	note, err := h.Service.Update(c.Request.Context(), req.ToInput(c.Param("id")))
	if err != nil {
		writeNoteError(c, err)
		return
	}

	utils.Success(c, dto.ToNoteResponse(note, dto.NoteLinks(utils.GetBaseURL(c), note)))
}

func (h *NotesHandler) DeleteNote(c *gin.Context) {
	if err := h.Service.Delete(c.Request.Context(), c.Param("id")); err != nil {
		writeNoteError(c, err)
		return
	}

	utils.Deleted(c, "Note deleted successfully")
}

func writeNoteError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, usecase.ErrUnauthenticated):
		utils.Unauthorized(c, "Authentication required")
	case errors.Is(err, usecase.ErrNotFoundOrUnauthorized):
		utils.NotFound(c, usecase.ErrNotFoundOrUnauthorized.Error())
	case errors.Is(err, usecase.ErrInvalidInput):
		metrics.TrackError("validation")
		utils.BadRequest(c, err.Error())
	default:
		metrics.TrackError("store")
		_ = c.Error(err)
		log.WithError(err).WithField("request_id", c.GetString("request_id")).Error("note request failed")
		utils.InternalError(c, "Failed to process note request")
	}
}
