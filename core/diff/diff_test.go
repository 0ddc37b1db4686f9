package diff

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// rebuild reassembles one side of an opcode sequence: the new string from
// equal+insert spans, or the old string from equal+delete spans.
func rebuild(a, b string, ops []Opcode, side string) string {
	ra := []rune(a)
	rb := []rune(b)
	var out []rune
	for _, op := range ops {
		switch op.Tag {
		case TagEqual:
			out = append(out, ra[op.A1:op.A2]...)
		case TagInsert, TagReplace:
			if side == "new" {
				out = append(out, rb[op.B1:op.B2]...)
			}
			if side == "old" && op.Tag == TagReplace {
				out = append(out, ra[op.A1:op.A2]...)
			}
		case TagDelete:
			if side == "old" {
				out = append(out, ra[op.A1:op.A2]...)
			}
		}
	}
	return string(out)
}

func TestOpcodes_RoundTrip(t *testing.T) {
	pairs := [][2]string{
		{"", ""},
		{"", "abc"},
		{"abc", ""},
		{"cat", "car"},
		{"Hallo", "Hello"},
		{"same", "same"},
		{"abcdef", "axcyef"},
		{"the quick brown fox", "the slow brown dog"},
		{"über", "uber"},
		{"日本語のテキスト", "日本語テキストです"},
		{"a", "aaaa"},
		{"aaaa", "a"},
	}

	for _, p := range pairs {
		ops := Opcodes(p[0], p[1])
		assert.Equal(t, p[0], rebuild(p[0], p[1], ops, "old"), "old side for %q -> %q", p[0], p[1])
		assert.Equal(t, p[1], rebuild(p[0], p[1], ops, "new"), "new side for %q -> %q", p[0], p[1])
	}
}

func TestOpcodes_ReplaceNotSplit(t *testing.T) {
	// A contiguous mismatch on both sides must come out as one replace,
	// not a delete followed by an insert.
	ops := Opcodes("cat", "car")
	require.Len(t, ops, 2)
	assert.Equal(t, TagEqual, ops[0].Tag)
	assert.Equal(t, "ca", string([]rune("cat")[ops[0].A1:ops[0].A2]))
	assert.Equal(t, TagReplace, ops[1].Tag)
}

func TestOpcodes_IdenticalStrings(t *testing.T) {
	ops := Opcodes("unchanged", "unchanged")
	require.Len(t, ops, 1)
	assert.Equal(t, TagEqual, ops[0].Tag)
	assert.Equal(t, 0, ops[0].A1)
	assert.Equal(t, len("unchanged"), ops[0].A2)
}

func TestOpcodes_InsertOnly(t *testing.T) {
	ops := Opcodes("ab", "axb")
	for _, op := range ops {
		assert.NotEqual(t, TagReplace, op.Tag, "pure insertion should not produce a replace")
	}
	assert.Equal(t, "axb", rebuild("ab", "axb", ops, "new"))
}
