package batch

import (
	"fmt"
	"strings"
)

// Log collects the ordered, line-oriented progress output of one action.
// Lines written before an abort stay visible; aborts append a line with a
// clearly marked ERROR prefix. The engine is single-threaded, so Log does
// no locking.
type Log struct {
	lines []string
}

// Printf appends one formatted line.
func (l *Log) Printf(format string, args ...any) {
	l.lines = append(l.lines, fmt.Sprintf(format, args...))
}

// Errorf appends one formatted line with an "ERROR: " prefix.
func (l *Log) Errorf(format string, args ...any) {
	l.lines = append(l.lines, "ERROR: "+fmt.Sprintf(format, args...))
}

// Lines returns every line appended so far.
func (l *Log) Lines() []string {
	return l.lines
}

func (l *Log) String() string {
	return strings.Join(l.lines, "\n")
}
