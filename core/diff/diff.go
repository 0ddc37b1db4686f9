package diff

// Tag classifies one aligned span of two strings.
type Tag string

const (
	// TagEqual marks a span present in both strings.
	TagEqual Tag = "equal"
	// TagInsert marks a span present only in the new string.
	TagInsert Tag = "insert"
	// TagDelete marks a span present only in the old string.
	TagDelete Tag = "delete"
	// TagReplace marks a contiguous mismatch on both sides.
	TagReplace Tag = "replace"
)

// Opcode describes how to turn a[A1:A2] into b[B1:B2].
// Indices are rune offsets, matching the slices returned by Opcodes.
type Opcode struct {
	Tag    Tag
	A1, A2 int
	B1, B2 int
}

// Opcodes aligns a and b character-by-character using a longest common
// subsequence and returns the ordered opcode sequence. Adjacent mismatched
// spans on both sides are emitted as a single replace, never as a separate
// delete followed by an insert.
func Opcodes(a, b string) []Opcode {
	ra := []rune(a)
	rb := []rune(b)

	matches := lcsPairs(ra, rb)

	var ops []Opcode
	ai, bi := 0, 0

	flush := func(a2, b2 int) {
		switch {
		case ai < a2 && bi < b2:
			ops = append(ops, Opcode{Tag: TagReplace, A1: ai, A2: a2, B1: bi, B2: b2})
		case ai < a2:
			ops = append(ops, Opcode{Tag: TagDelete, A1: ai, A2: a2, B1: bi, B2: b2})
		case bi < b2:
			ops = append(ops, Opcode{Tag: TagInsert, A1: ai, A2: a2, B1: bi, B2: b2})
		}
	}

	i := 0
	for i < len(matches) {
		ma, mb := matches[i][0], matches[i][1]

		// Emit the mismatched gap before this match, if any.
		flush(ma, mb)
		ai, bi = ma, mb

		// Extend the equal run across consecutive matches.
		j := i
		for j+1 < len(matches) && matches[j+1][0] == matches[j][0]+1 && matches[j+1][1] == matches[j][1]+1 {
			j++
		}
		a2, b2 := matches[j][0]+1, matches[j][1]+1
		ops = append(ops, Opcode{Tag: TagEqual, A1: ai, A2: a2, B1: bi, B2: b2})
		ai, bi = a2, b2
		i = j + 1
	}

	// Trailing mismatch after the last equal run.
	flush(len(ra), len(rb))

	return ops
}

// lcsPairs returns the index pairs (i, j) of a longest common subsequence
// of a and b, in increasing order.
func lcsPairs(a, b []rune) [][2]int {
	n, m := len(a), len(b)
	if n == 0 || m == 0 {
		return nil
	}

	// Standard dynamic program over suffix lengths.
	table := make([][]int, n+1)
	for i := range table {
		table[i] = make([]int, m+1)
	}
	for i := n - 1; i >= 0; i-- {
		for j := m - 1; j >= 0; j-- {
			if a[i] == b[j] {
				table[i][j] = table[i+1][j+1] + 1
			} else if table[i+1][j] >= table[i][j+1] {
				table[i][j] = table[i+1][j]
			} else {
				table[i][j] = table[i][j+1]
			}
		}
	}

	pairs := make([][2]int, 0, table[0][0])
	i, j := 0, 0
	for i < n && j < m {
		switch {
		case a[i] == b[j]:
			pairs = append(pairs, [2]int{i, j})
			i++
			j++
		case table[i+1][j] >= table[i][j+1]:
			i++
		default:
			j++
		}
	}
	return pairs
}
