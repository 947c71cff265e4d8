package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"quicknotes/metrics"
	"quicknotes/model"
	"quicknotes/services"
	"quicknotes/utils"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
)

var (
	ErrUnauthenticated = errors.New("unauthenticated")
	// ErrNotFoundOrUnauthorized covers both a missing note and a note owned by
	// someone else, so callers cannot probe for foreign ids.
	ErrNotFoundOrUnauthorized = errors.New("note not found or unauthorized")
	ErrInvalidInput           = errors.New("invalid input")
)

// NotesStore is the owner-scoped persistence the service needs.
type NotesStore interface {
	FindAll(ctx context.Context, userID string) ([]*model.Note, error)
	FindByCategory(ctx context.Context, userID string, category model.Category) ([]*model.Note, error)
	FindOne(ctx context.Context, noteID, userID string) (*model.Note, error)
	Insert(ctx context.Context, note *model.Note) error
	Update(ctx context.Context, noteID, userID string, patch model.NotePatch) (*model.Note, error)
	Remove(ctx context.Context, noteID, userID string) (bool, error)
}

type NotesService struct {
	Store    NotesStore
	Sessions services.SessionAccessor

	Now   func() time.Time
	NewID func() string
}

var validate = utils.NewValidator()

func NewNotesService(store NotesStore, sessions services.SessionAccessor) *NotesService {
	return &NotesService{
		Store:    store,
		Sessions: sessions,
		Now:      func() time.Time { return time.Now().UTC() },
		NewID:    uuid.NewString,
	}
}

func (svc *NotesService) List(ctx context.Context) ([]*model.Note, error) {
	session, err := svc.session(ctx)
	if err != nil {
		return nil, err
	}

	notes, err := svc.Store.FindAll(ctx, session.UserID)
	if err != nil {
		return nil, fmt.Errorf("failed to list notes: %w", err)
	}
	return notes, nil
}

// ListByCategory lists the user's notes of one category. An empty or "all"
// filter lists everything.
func (svc *NotesService) ListByCategory(ctx context.Context, filter string) ([]*model.Note, error) {
	category, ok, err := model.ParseCategoryFilter(filter)
	if err != nil {
		return nil, fmt.Errorf("%w: unknown category %q", ErrInvalidInput, filter)
	}
	if !ok {
		return svc.List(ctx)
	}

	session, err := svc.session(ctx)
	if err != nil {
		return nil, err
	}

	notes, err := svc.Store.FindByCategory(ctx, session.UserID, category)
	if err != nil {
		return nil, fmt.Errorf("failed to list notes: %w", err)
	}
	return notes, nil
}

func (svc *NotesService) Get(ctx context.Context, noteID string) (*model.Note, error) {
	session, err := svc.session(ctx)
	if err != nil {
		return nil, err
	}

	note, err := svc.Store.FindOne(ctx, noteID, session.UserID)
	if err != nil {
		return nil, fmt.Errorf("failed to get note: %w", err)
	}
	if note == nil {
		return nil, ErrNotFoundOrUnauthorized
	}
	return note, nil
}

func (svc *NotesService) Create(ctx context.Context, input model.CreateNoteInput) (*model.Note, error) {
	session, err := svc.session(ctx)
	if err != nil {
		return nil, err
	}
	if err := svc.validateInput(input); err != nil {
		return nil, err
	}

	now := svc.now()
	note := &model.Note{
		ID:        svc.newID(),
		UserID:    session.UserID,
		Title:     input.Title,
		Content:   input.Content,
		Category:  input.Category,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := svc.Store.Insert(ctx, note); err != nil {
		return nil, fmt.Errorf("failed to create note: %w", err)
	}

	metrics.TrackNoteOperation("create")
	log.WithFields(log.Fields{
		"user_id": session.UserID,
		"note_id": note.ID,
	}).Debug("note created")

	return note, nil
}

// Update merges the supplied fields into the caller's note. An update with no
// fields only refreshes UpdatedAt.
func (svc *NotesService) Update(ctx context.Context, input model.UpdateNoteInput) (*model.Note, error) {
	session, err := svc.session(ctx)
	if err != nil {
		return nil, err
	}
	if err := svc.validateInput(input); err != nil {
		return nil, err
	}
	// omitempty lets a pointer to "" through
	if input.Category != nil && !input.Category.IsValid() {
		return nil, fmt.Errorf("%w: unknown category %q", ErrInvalidInput, *input.Category)
	}

	existing, err := svc.Store.FindOne(ctx, input.ID, session.UserID)
	if err != nil {
		return nil, fmt.Errorf("failed to update note: %w", err)
	}
	if existing == nil {
		return nil, ErrNotFoundOrUnauthorized
	}

	updatedAt := svc.now()
	if updatedAt.Before(existing.UpdatedAt) {
		updatedAt = existing.UpdatedAt
	}

	patch := model.NotePatch{
		Title:     input.Title,
		Content:   input.Content,
		Category:  input.Category,
		UpdatedAt: updatedAt,
	}

	note, err := svc.Store.Update(ctx, input.ID, session.UserID, patch)
	if err != nil {
		return nil, fmt.Errorf("failed to update note: %w", err)
	}
	if note == nil {
		// removed between lookup and write
		return nil, ErrNotFoundOrUnauthorized
	}

	metrics.TrackNoteOperation("update")
	log.WithFields(log.Fields{
		"user_id": session.UserID,
		"note_id": note.ID,
	}).Debug("note updated")

	return note, nil
}

func (svc *NotesService) Delete(ctx context.Context, noteID string) error {
	session, err := svc.session(ctx)
	if err != nil {
		return err
	}

	removed, err := svc.Store.Remove(ctx, noteID, session.UserID)
	if err != nil {
		return fmt.Errorf("failed to delete note: %w", err)
	}
	if !removed {
		return ErrNotFoundOrUnauthorized
	}

	metrics.TrackNoteOperation("delete")
	log.WithFields(log.Fields{
		"user_id": session.UserID,
		"note_id": noteID,
	}).Debug("note deleted")

	return nil
}

func (svc *NotesService) session(ctx context.Context) (*model.Session, error) {
	if svc.Sessions == nil {
		return nil, ErrUnauthenticated
	}
	session, err := svc.Sessions.CurrentSession(ctx)
	if err != nil {
		log.WithError(err).Warn("session lookup failed")
		return nil, fmt.Errorf("%w: %v", ErrUnauthenticated, err)
	}
	if session == nil || session.UserID == "" {
		return nil, ErrUnauthenticated
	}
	return session, nil
}

func (svc *NotesService) validateInput(input interface{}) error {
	err := validate.Struct(input)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		field := strings.ToLower(fe.Field())
		switch fe.Tag() {
		case "required":
			msgs = append(msgs, field+" is required")
		case "max":
			msgs = append(msgs, fmt.Sprintf("%s exceeds maximum length of %s", field, fe.Param()))
		case "category":
			msgs = append(msgs, "category must be one of random, school, personal")
		default:
			msgs = append(msgs, field+" is invalid")
		}
	}
	return fmt.Errorf("%w: %s", ErrInvalidInput, strings.Join(msgs, "; "))
}

func (svc *NotesService) now() time.Time {
	if svc.Now != nil {
		return svc.Now()
	}
	return time.Now().UTC()
}

func (svc *NotesService) newID() string {
	if svc.NewID != nil {
		return svc.NewID()
	}
	return uuid.NewString()
}
