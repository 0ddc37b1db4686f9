package batch

// Selections is the full set of user choices for one batch: the join key
// pair plus one target per non-reserved file field. It is a value type; the
// Set* methods return an updated copy with mutual exclusion re-applied, so a
// caller can replay any sequence of selection events and always hold a
// consistent state. The windowed picker that drives these events lives
// outside the engine.
type Selections struct {
	// FileFields is the file header, in file order.
	FileFields []string
	// NoteFields is the note model's field list, in schema order.
	NoteFields []string

	// FileJoinKey is the file-side join field.
	FileJoinKey string
	// NoteJoinKey is the note-side join field, NativeIDField by default.
	NoteJoinKey string

	// Targets maps each non-reserved file field to a note field, or to
	// NothingValue for fields that are ignored.
	Targets map[string]string
}

// DefaultSelections seeds selections the way the picker opens: the file join
// key prefers the reserved nid column, the note join key mirrors the file
// join key when a note field of that name exists, and every file field
// premaps to the same-named note field unless that field is the current
// note join key.
func DefaultSelections(fileFields, noteFields []string) Selections {
	s := Selections{
		FileFields:  fileFields,
		NoteFields:  noteFields,
		FileJoinKey: "",
		NoteJoinKey: NativeIDField,
		Targets:     make(map[string]string),
	}

	if len(fileFields) > 0 {
		s.FileJoinKey = fileFields[0]
	}
	for _, f := range fileFields {
		if f == NativeIDField {
			s.FileJoinKey = NativeIDField
			break
		}
	}

	if s.FileJoinKey != NativeIDField && contains(noteFields, s.FileJoinKey) {
		s.NoteJoinKey = s.FileJoinKey
	}

	for _, f := range fileFields {
		if f == NativeIDField {
			continue
		}
		if contains(noteFields, f) && f != s.NoteJoinKey {
			s.Targets[f] = f
		} else {
			s.Targets[f] = NothingValue
		}
	}

	return s
}

// SetFileJoinKey records a new file-side join key. The file join key never
// competes with note-side selections, so no exclusion runs.
func (s Selections) SetFileJoinKey(field string) Selections {
	s = s.clone()
	s.FileJoinKey = field
	return s
}

// SetNoteJoinKey records a new note-side join key and clears any mapping
// target that currently holds the same note field.
func (s Selections) SetNoteJoinKey(field string) Selections {
	s = s.clone()
	s.NoteJoinKey = field
	if field != NativeIDField {
		for file, target := range s.Targets {
			if target == field {
				s.Targets[file] = NothingValue
			}
		}
	}
	return s
}

// SetTarget records a mapping target for one file field. When the target is
// a concrete note field, every other selection holding that field is reset:
// the note join key falls back to the native id, and any other mapping
// target falls back to NothingValue. Multiple fields may map to
// NothingValue, so nothing is cleared in that case.
func (s Selections) SetTarget(fileField, noteField string) Selections {
	s = s.clone()
	s.Targets[fileField] = noteField
	if noteField == NothingValue {
		return s
	}
	if s.NoteJoinKey == noteField {
		s.NoteJoinKey = NativeIDField
	}
	for file, target := range s.Targets {
		if file != fileField && target == noteField {
			s.Targets[file] = NothingValue
		}
	}
	return s
}

// Resolve validates the current selections and produces the ordered field
// mapping and join key spec. It fails with a ValidationError when no file
// field maps to any note field, or when a reserved name leaks into the
// mapping.
func (s Selections) Resolve() (FieldMapping, JoinKeySpec, error) {
	key := JoinKeySpec{FileField: s.FileJoinKey, NoteField: s.NoteJoinKey}
	if key.FileField == "" {
		return nil, key, &ValidationError{Reason: "no file join key selected"}
	}

	var mapping FieldMapping
	seen := make(map[string]string)
	for _, fileField := range s.FileFields {
		if fileField == NativeIDField {
			continue
		}
		target, ok := s.Targets[fileField]
		if !ok || target == NothingValue {
			continue
		}
		if target == NativeIDField {
			return nil, key, &ValidationError{
				Reason: "field " + fileField + " maps to the reserved " + NativeIDField + " field",
			}
		}
		if !key.ByNativeID() && target == key.NoteField {
			return nil, key, &ValidationError{
				Reason: "field " + fileField + " maps to the note join key " + target,
			}
		}
		if prev, dup := seen[target]; dup {
			return nil, key, &ValidationError{
				Reason: "fields " + prev + " and " + fileField + " both map to " + target,
			}
		}
		seen[target] = fileField
		mapping = append(mapping, FieldPair{FileField: fileField, NoteField: target})
	}

	if len(mapping) == 0 {
		return nil, key, &ValidationError{Reason: "no mappings selected"}
	}

	return mapping, key, nil
}

func (s Selections) clone() Selections {
	targets := make(map[string]string, len(s.Targets))
	for k, v := range s.Targets {
		targets[k] = v
	}
	s.Targets = targets
	return s
}

func contains(list []string, v string) bool {
	for _, item := range list {
		if item == v {
			return true
		}
	}
	return false
}
