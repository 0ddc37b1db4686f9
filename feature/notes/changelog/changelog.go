package changelog

import (
	"context"
	"fmt"

	"note-updater/core/batch"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Entry is one committed audit record in the change_log table. Entries are
// append-only; nothing in the application mutates or deletes them.
type Entry struct {
	ID      uint   `gorm:"primaryKey;autoIncrement" json:"id"`
	BatchID string `gorm:"column:batch_id;index" json:"batch_id"`
	Kind    string `gorm:"column:kind" json:"kind"`
	BatchTS int64  `gorm:"column:batch_ts" json:"batch_ts"`
	TS      int64  `gorm:"column:ts" json:"ts"`
	NoteID  string `gorm:"column:note_id;index" json:"note_id"`
	Field   string `gorm:"column:field" json:"field"`
	Old     string `gorm:"column:old;type:text" json:"old"`
	New     string `gorm:"column:new;type:text" json:"new"`
}

// TableName overrides the gorm default.
func (Entry) TableName() string {
	return "change_log"
}

// ChangeLog buffers audit entries for one batch and writes them as a single
// unit at Commit. It implements batch.ChangeLog. One ChangeLog serves one
// batch; acquire a fresh one per apply action and Close it on every exit
// path.
type ChangeLog struct {
	db      *gorm.DB
	batchID string
	buf     []Entry
	closed  bool
}

// New acquires a change log handle for one batch.
func New(db *gorm.DB) *ChangeLog {
	return &ChangeLog{db: db, batchID: uuid.NewString()}
}

// Migrate creates or updates the change_log table.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(&Entry{})
}

// BatchID returns the unique id assigned to this batch.
func (l *ChangeLog) BatchID() string {
	return l.batchID
}

// Record buffers one audit entry. Nothing touches the database until Commit.
func (l *ChangeLog) Record(ctx context.Context, kind string, entry batch.AuditEntry) error {
	if l.closed {
		return fmt.Errorf("change log for batch %s is closed", l.batchID)
	}
	l.buf = append(l.buf, Entry{
		BatchID: l.batchID,
		Kind:    kind,
		BatchTS: entry.BatchTS,
		TS:      entry.TS,
		NoteID:  entry.NoteID,
		Field:   entry.Field,
		Old:     entry.Old,
		New:     entry.New,
	})
	return nil
}

// Commit writes every buffered entry inside one transaction. On failure the
// buffer is kept, so a caller may retry, but note mutations applied by the
// executor are not rolled back here.
func (l *ChangeLog) Commit(ctx context.Context) error {
	if len(l.buf) == 0 {
		return nil
	}
	err := l.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return tx.Create(&l.buf).Error
	})
	if err != nil {
		return fmt.Errorf("failed to commit %d audit entries for batch %s: %w", len(l.buf), l.batchID, err)
	}
	l.buf = nil
	return nil
}

// Close releases the handle. Buffered entries that were never committed are
// dropped.
func (l *ChangeLog) Close() error {
	l.closed = true
	l.buf = nil
	return nil
}
