// Package diff provides character-level string alignment and HTML diff
// rendering for the batch update report.
//
// The alignment is based on a longest common subsequence over runes. Its
// output is an ordered sequence of opcodes (equal, insert, delete, replace)
// with the invariant that reassembling the equal and insert spans yields the
// new string, and reassembling the equal and delete spans yields the old one.
//
// RenderHTML escapes both inputs before aligning them, so markup-significant
// characters in note fields are displayed literally while the <ins>/<del>
// markers emitted by the renderer stay intact.
package diff
