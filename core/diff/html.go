package diff

import (
	"fmt"
	"html"
	"strings"
)

// ErrUnknownOpcode is returned when the opcode walker produces a tag outside
// the four recognized kinds. This is an engine bug, not a user error, and
// callers treat it as fatal.
type ErrUnknownOpcode struct {
	Tag Tag
}

func (e *ErrUnknownOpcode) Error() string {
	return fmt.Sprintf("unexpected diff opcode %q", string(e.Tag))
}

// RenderHTML renders an inline HTML diff of old against new. Insertions are
// wrapped in <ins> and deletions in <del>; equal spans pass through verbatim.
//
// Both inputs are HTML-escaped before alignment, so the marker tags inserted
// here are never themselves escaped.
func RenderHTML(old, new string) (string, error) {
	a := []rune(html.EscapeString(old))
	b := []rune(html.EscapeString(new))

	var out strings.Builder
	for _, op := range Opcodes(string(a), string(b)) {
		switch op.Tag {
		case TagEqual:
			out.WriteString(string(a[op.A1:op.A2]))
		case TagInsert:
			out.WriteString("<ins>")
			out.WriteString(string(b[op.B1:op.B2]))
			out.WriteString("</ins>")
		case TagDelete:
			out.WriteString("<del>")
			out.WriteString(string(a[op.A1:op.A2]))
			out.WriteString("</del>")
		case TagReplace:
			out.WriteString("<del>")
			out.WriteString(string(a[op.A1:op.A2]))
			out.WriteString("</del>")
			out.WriteString("<ins>")
			out.WriteString(string(b[op.B1:op.B2]))
			out.WriteString("</ins>")
		default:
			return "", &ErrUnknownOpcode{Tag: op.Tag}
		}
	}
	return out.String(), nil
}
