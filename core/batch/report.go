package batch

import (
	"fmt"
	"io"

	"note-updater/core/diff"
)

// Fixed boilerplate for the diff report: monospace text, green insertions,
// pink deletions.
const reportHeader = `<html>
<head>
<style>
p {
    font-family: "Lucida Console", Monaco, monospace;
}
ins {
    background-color: lightgreen;
    text-decoration: none;
}
del {
    background-color: lightpink;
    text-decoration: none;
}
</style>
</head>
<body>`

const reportFooter = `</body>
</html>
`

// WriteReport renders the change set as a self-contained HTML document: one
// block per note, one line per changed field with an inline diff of the old
// and new value. It is a pure function of the change set and mutates
// nothing.
func WriteReport(cs *ChangeSet, w io.Writer) error {
	if _, err := io.WriteString(w, reportHeader); err != nil {
		return fmt.Errorf("failed to write report header: %w", err)
	}

	for _, noteID := range cs.NoteIDs() {
		if _, err := fmt.Fprintf(w, "<p>note %s:</p>\n", noteID); err != nil {
			return fmt.Errorf("failed to write note block: %w", err)
		}
		for _, change := range cs.Changes(noteID) {
			rendered, err := diff.RenderHTML(change.Old, change.New)
			if err != nil {
				// Only an unrecognized opcode lands here, which is an
				// engine invariant violation.
				return &InternalError{Msg: "diff rendering failed", Err: err}
			}
			if _, err := fmt.Fprintf(w, "<p>%s: %s</p>\n", change.Field, rendered); err != nil {
				return fmt.Errorf("failed to write change line: %w", err)
			}
		}
	}

	if _, err := io.WriteString(w, reportFooter); err != nil {
		return fmt.Errorf("failed to write report footer: %w", err)
	}
	return nil
}
