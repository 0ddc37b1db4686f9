package notes

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"note-updater/core/batch"
	"note-updater/feature/notes/models"

	"gorm.io/gorm"
)

// Store is the gorm-backed note store. It implements batch.NoteStore:
// SetField stages values in memory and Flush persists one note's staged
// fields as a single UPDATE. Batches run single-writer, but the mutex keeps
// concurrent read-only server requests safe.
type Store struct {
	db *gorm.DB

	mu      sync.Mutex
	pending map[string]models.FieldValues
}

// NewStore creates a store over the given database.
func NewStore(db *gorm.DB) *Store {
	return &Store{
		db:      db,
		pending: make(map[string]models.FieldValues),
	}
}

// Migrate creates or updates the note store tables.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(&models.NoteModel{}, &models.Note{})
}

// Get returns the note with the given native id, staged values included.
func (s *Store) Get(ctx context.Context, id string) (*batch.Note, error) {
	row, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}

	fields := make(map[string]string, len(row.Fields))
	for k, v := range row.Fields {
		fields[k] = v
	}
	s.mu.Lock()
	for k, v := range s.pending[id] {
		fields[k] = v
	}
	s.mu.Unlock()

	return &batch.Note{ID: row.ID, ModelID: row.ModelID, Fields: fields}, nil
}

// SetField stages a new value for one field. The value is visible to Get
// immediately and durable after Flush.
func (s *Store) SetField(ctx context.Context, id, field, value string) error {
	if _, err := s.load(ctx, id); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.pending[id] == nil {
		s.pending[id] = make(models.FieldValues)
	}
	s.pending[id][field] = value
	return nil
}

// Flush persists all staged fields of one note as one UPDATE. A note with
// nothing staged flushes as a no-op.
func (s *Store) Flush(ctx context.Context, id string) error {
	s.mu.Lock()
	staged := s.pending[id]
	delete(s.pending, id)
	s.mu.Unlock()
	if len(staged) == 0 {
		return nil
	}

	row, err := s.load(ctx, id)
	if err != nil {
		return err
	}
	if row.Fields == nil {
		row.Fields = make(models.FieldValues)
	}
	for k, v := range staged {
		row.Fields[k] = v
	}

	result := s.db.WithContext(ctx).
		Model(&models.Note{}).
		Where("id = ?", id).
		Update("fields", row.Fields)
	if result.Error != nil {
		return fmt.Errorf("failed to flush note %s: %w", id, result.Error)
	}
	return nil
}

// SchemaOf returns the model id of one note.
func (s *Store) SchemaOf(ctx context.Context, id string) (string, error) {
	row, err := s.load(ctx, id)
	if err != nil {
		return "", err
	}
	return row.ModelID, nil
}

// FieldNames returns the ordered field names of a model.
func (s *Store) FieldNames(ctx context.Context, modelID string) ([]string, error) {
	var model models.NoteModel
	err := s.db.WithContext(ctx).First(&model, "id = ?", modelID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("model %s not found", modelID)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load model %s: %w", modelID, err)
	}
	return model.Fields, nil
}

// ListIDs returns the ids of every stored note, in primary key order. It
// provides the candidate scope when a batch runs against the whole store.
func (s *Store) ListIDs(ctx context.Context) ([]string, error) {
	var ids []string
	err := s.db.WithContext(ctx).
		Model(&models.Note{}).
		Order("id").
		Pluck("id", &ids).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list note ids: %w", err)
	}
	return ids, nil
}

func (s *Store) load(ctx context.Context, id string) (*models.Note, error) {
	var row models.Note
	err := s.db.WithContext(ctx).First(&row, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("note %s: %w", id, batch.ErrNoteNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load note %s: %w", id, err)
	}
	return &row, nil
}
