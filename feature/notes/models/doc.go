// Package models defines the persistence models for the note store: note
// rows with JSON field maps and the note models (schemas) that name their
// fields.
package models
