package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
)

// FieldList is an ordered list of field names stored as a JSON column.
type FieldList []string

// Value implements driver.Valuer.
func (l FieldList) Value() (driver.Value, error) {
	return json.Marshal(l)
}

// Scan implements sql.Scanner.
func (l *FieldList) Scan(value any) error {
	return scanJSON(value, l)
}

// FieldValues maps field names to text values, stored as a JSON column.
type FieldValues map[string]string

// Value implements driver.Valuer.
func (v FieldValues) Value() (driver.Value, error) {
	return json.Marshal(v)
}

// Scan implements sql.Scanner.
func (v *FieldValues) Scan(value any) error {
	return scanJSON(value, v)
}

func scanJSON(value, dest any) error {
	switch data := value.(type) {
	case []byte:
		return json.Unmarshal(data, dest)
	case string:
		return json.Unmarshal([]byte(data), dest)
	case nil:
		return nil
	default:
		return fmt.Errorf("unsupported column type %T", value)
	}
}

// NoteModel is the schema a note follows: a stable id, a display name, and
// the ordered list of field names every note of this model carries.
type NoteModel struct {
	ID     string    `gorm:"primaryKey;column:id" json:"id"`
	Name   string    `gorm:"column:name" json:"name"`
	Fields FieldList `gorm:"column:fields;type:json" json:"fields"`
}

// TableName overrides the gorm default.
func (NoteModel) TableName() string {
	return "note_models"
}

// Note is one stored note row.
type Note struct {
	ID      string      `gorm:"primaryKey;column:id" json:"id"`
	ModelID string      `gorm:"column:model_id;index" json:"model_id"`
	Fields  FieldValues `gorm:"column:fields;type:json" json:"fields"`
}

// TableName overrides the gorm default.
func (Note) TableName() string {
	return "notes"
}
