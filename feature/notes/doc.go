// Package notes connects the batch update engine to its collaborators: the
// gorm-backed note store, the append-only audit change log, object storage
// for published diff reports, and the HTTP surface.
//
// The Service is the single action boundary. Every action — validate, diff,
// apply — runs the same pipeline (load records, resolve mapping, join,
// compute changes) and differs only in what it does with the resulting
// change set. Failures are reported through the line-oriented result log
// with an ERROR line and never crash the host process.
package notes
