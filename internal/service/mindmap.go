package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"mindcanvas/internal/codec"
	"mindcanvas/internal/domain"
	"mindcanvas/internal/repository"
)

// ErrValidation is wrapped by every input validation failure
var ErrValidation = errors.New("validation failed")

// MindmapService provides business logic for stored mind maps
type MindmapService struct {
	repo     repository.Repository
	eventBus *EventBus
	validate *validator.Validate
	logger   *zap.Logger
}

// NewMindmapService creates a new mindmap service
func NewMindmapService(repo repository.Repository, eventBus *EventBus, logger *zap.Logger) *MindmapService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &MindmapService{
		repo:     repo,
		eventBus: eventBus,
		validate: validator.New(),
		logger:   logger.Named("mindmaps"),
	}
}

// Get retrieves a single mindmap by ID
func (s *MindmapService) Get(ctx context.Context, id int64) (*domain.Mindmap, error) {
	return s.repo.GetMindmap(ctx, id)
}

// List returns all mindmaps
func (s *MindmapService) List(ctx context.Context) ([]domain.Mindmap, error) {
	return s.repo.ListMindmaps(ctx)
}

// ListByProject returns the mindmaps of one project
func (s *MindmapService) ListByProject(ctx context.Context, projectID int64) ([]domain.Mindmap, error) {
	return s.repo.ListMindmapsByProject(ctx, projectID)
}

// Create validates and stores a new mindmap. A mindmap without a document
// gets a single root node labeled with its title.
func (s *MindmapService) Create(ctx context.Context, m *domain.Mindmap) error {
	m.Title = strings.TrimSpace(m.Title)
	if err := s.check(m); err != nil {
		return err
	}
	if isEmptyDocument(m.Data) {
		m.Data = domain.NewDocument("root", m.Title)
	}

	if err := s.repo.CreateMindmap(ctx, m); err != nil {
		return err
	}

	s.logger.Info("mindmap created", zap.Int64("id", m.ID), zap.String("title", m.Title))
	s.publish(EventMindmapCreated, m.ID)
	return nil
}

// Update applies a partial update
func (s *MindmapService) Update(ctx context.Context, id int64, upd domain.MindmapUpdate) (*domain.Mindmap, error) {
	if upd.Title != nil {
		title := strings.TrimSpace(*upd.Title)
		upd.Title = &title
	}
	if err := s.check(upd); err != nil {
		return nil, err
	}

	m, err := s.repo.GetMindmap(ctx, id)
	if err != nil {
		return nil, err
	}
	upd.Apply(m)

	if err := s.repo.UpdateMindmap(ctx, m); err != nil {
		return nil, err
	}

	s.publish(EventMindmapUpdated, id)
	return m, nil
}

// Delete removes a mindmap
func (s *MindmapService) Delete(ctx context.Context, id int64) error {
	if err := s.repo.DeleteMindmap(ctx, id); err != nil {
		return err
	}

	s.logger.Info("mindmap deleted", zap.Int64("id", id))
	s.publish(EventMindmapDeleted, id)
	return nil
}

// SaveDocument stores an editor export. It is the save callback of editor
// sessions.
func (s *MindmapService) SaveDocument(ctx context.Context, id int64, doc domain.Document) error {
	if err := s.repo.SaveDocument(ctx, id, doc); err != nil {
		return fmt.Errorf("save mindmap %d: %w", id, err)
	}

	s.publish(EventMindmapSaved, id)
	return nil
}

// Export writes the document of a mindmap in the given format
func (s *MindmapService) Export(ctx context.Context, id int64, format string, w io.Writer) error {
	c, err := codec.Lookup(format)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrValidation, err)
	}

	m, err := s.repo.GetMindmap(ctx, id)
	if err != nil {
		return err
	}

	return c.Export(&m.Data, w)
}

// Import replaces the document of a mindmap with one parsed from r
func (s *MindmapService) Import(ctx context.Context, id int64, format string, r io.Reader) (*domain.Mindmap, error) {
	doc, err := s.parse(format, r)
	if err != nil {
		return nil, err
	}

	m, err := s.Update(ctx, id, domain.MindmapUpdate{Data: doc})
	if err != nil {
		return nil, err
	}

	s.publish(EventMindmapImported, id)
	return m, nil
}

// ImportNew creates a mindmap from a document parsed from r. An empty title
// falls back to the root label.
func (s *MindmapService) ImportNew(ctx context.Context, title string, projectID int64, format string, r io.Reader) (*domain.Mindmap, error) {
	doc, err := s.parse(format, r)
	if err != nil {
		return nil, err
	}

	if strings.TrimSpace(title) == "" {
		title = doc.Text
	}
	m := domain.NewMindmap(title, projectID)
	m.Data = *doc

	if err := s.Create(ctx, m); err != nil {
		return nil, err
	}

	s.publish(EventMindmapImported, m.ID)
	return m, nil
}

func (s *MindmapService) parse(format string, r io.Reader) (*domain.Document, error) {
	c, err := codec.Lookup(format)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrValidation, err)
	}
	doc, err := c.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrValidation, err)
	}
	return doc, nil
}

func (s *MindmapService) publish(t EventType, id int64) {
	if s.eventBus == nil {
		return
	}
	s.eventBus.Publish(Event{
		Type:    t,
		Payload: map[string]int64{"mindmap_id": id},
	})
}

// Validation helpers

func (s *MindmapService) check(v interface{}) error {
	err := s.validate.Struct(v)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return fmt.Errorf("%w: %v", ErrValidation, err)
	}

	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		msgs = append(msgs, fmt.Sprintf("%s: failed %s", strings.ToLower(fe.Field()), fe.Tag()))
	}
	return fmt.Errorf("%w: %s", ErrValidation, strings.Join(msgs, ", "))
}

func isEmptyDocument(d domain.Document) bool {
	return d.ID == "" && d.Text == "" && len(d.Children) == 0
}
