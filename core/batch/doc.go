// Package batch implements the reconciliation engine behind bulk note
// updates: joining an external CSV snapshot against stored notes, computing
// field-level change sets, rendering HTML diff reports, and applying updates
// with an append-only audit trail.
//
// # Pipeline
//
// One action runs four stages, each feeding the next:
//
//  1. Selections/Resolve validate the user-chosen field mapping and join
//     key pair. Mutual exclusion keeps the mapping injective after every
//     selection event, not just at commit.
//  2. Joiner indexes file rows by join key and resolves each key value to a
//     note id, either directly (native id join) or through a secondary
//     index built over the candidate notes.
//  3. Differ compares mapped file values against current note values with
//     exact string equality and collects an ordered ChangeSet.
//  4. Executor consumes the ChangeSet in one of three modes: validate (no
//     side effects), diff (WriteReport), or apply (mutate notes, write
//     audit entries).
//
// # Failure discipline
//
// Join failures are exhaustive: the whole input is scanned and every
// offending value is listed, so an operator can repair the source file in
// one pass. Apply offers no transactional guarantee spanning the note store
// and the audit log; if the audit commit fails after notes were flushed,
// the note mutations stay applied.
//
// The engine is single-threaded and runs to completion once started; the
// only suspension point is the caller-side confirmation before apply.
package batch
