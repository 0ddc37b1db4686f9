package batch

// NativeIDField is the reserved field name that addresses a note by its
// native identifier. It may appear in the file as a column and may only be
// used as a join key, never as a mapping target.
const NativeIDField = "nid"

// NothingValue is the sentinel for a file field that maps to no note field.
const NothingValue = "-Nothing-"

// Record is one row of the external file, keyed by header name.
type Record map[string]string

// Source is the immutable snapshot of the external file: the ordered header
// and every row in file order. It is read once per action.
type Source struct {
	Fields []string
	Rows   []Record
}

// FieldPair maps one file field to one note field.
type FieldPair struct {
	FileField string
	NoteField string
}

// FieldMapping is an ordered, injective mapping from file fields to note
// fields. The order follows the file header and is preserved through change
// computation and rendering.
type FieldMapping []FieldPair

// NoteFields returns the note-side targets in mapping order.
func (m FieldMapping) NoteFields() []string {
	fields := make([]string, 0, len(m))
	for _, p := range m {
		fields = append(fields, p.NoteField)
	}
	return fields
}

// JoinKeySpec names the field pair used to correlate file rows to notes.
// NoteField is either NativeIDField or an ordinary note field.
type JoinKeySpec struct {
	FileField string
	NoteField string
}

// ByNativeID reports whether rows join directly on the note id, with no
// secondary index.
func (k JoinKeySpec) ByNativeID() bool {
	return k.NoteField == NativeIDField
}

// NoteChange is one proposed field mutation. Values are carried verbatim.
type NoteChange struct {
	NoteID string
	Field  string
	Old    string
	New    string
}

// ChangeSet groups pending changes by note id. Both the note order and the
// per-note change order are insertion order, i.e. the order changes were
// discovered.
type ChangeSet struct {
	order   []string
	changes map[string][]NoteChange
}

// NewChangeSet returns an empty change set.
func NewChangeSet() *ChangeSet {
	return &ChangeSet{changes: make(map[string][]NoteChange)}
}

// Add appends a change to its note's list, registering the note on first use.
func (cs *ChangeSet) Add(c NoteChange) {
	if _, ok := cs.changes[c.NoteID]; !ok {
		cs.order = append(cs.order, c.NoteID)
	}
	cs.changes[c.NoteID] = append(cs.changes[c.NoteID], c)
}

// NoteIDs returns the ids of all notes with changes, in discovery order.
func (cs *ChangeSet) NoteIDs() []string {
	return cs.order
}

// Changes returns the ordered change list for one note.
func (cs *ChangeSet) Changes(noteID string) []NoteChange {
	return cs.changes[noteID]
}

// Len returns the number of notes with at least one change.
func (cs *ChangeSet) Len() int {
	return len(cs.order)
}

// Total returns the number of individual field changes.
func (cs *ChangeSet) Total() int {
	n := 0
	for _, list := range cs.changes {
		n += len(list)
	}
	return n
}

// Empty reports whether no changes were discovered.
func (cs *ChangeSet) Empty() bool {
	return len(cs.order) == 0
}

// Summary carries the aggregate counters derived while computing changes.
type Summary struct {
	// NotesChanged is the number of notes with at least one change.
	NotesChanged int `json:"notes_changed"`

	// FieldChanges is the total number of individual field changes.
	FieldChanges int `json:"field_changes"`

	// EmptyFieldChanges counts changes whose note field was empty beforehand.
	EmptyFieldChanges int `json:"empty_field_changes"`

	// NotesWithEmptyFields counts notes containing at least one such change.
	NotesWithEmptyFields int `json:"notes_with_empty_fields"`
}
