// Package changelog persists the append-only audit trail of applied batch
// updates. Entries buffer in memory per batch and are written as one
// transaction at commit, tagged with a batch id and the shared batch start
// timestamp.
package changelog
