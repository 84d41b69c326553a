package pathutil

import (
	"strconv"
	"strings"
	"sync"
)

// PathBuilder builds payload property paths incrementally.
// Segments are joined with dots, array indices are rendered as "[i]".
// The full string is only materialized when String() is called.
type PathBuilder struct {
	segments []string
}

// Push adds a property segment to the path.
func (p *PathBuilder) Push(segment string) {
	p.segments = append(p.segments, segment)
}

// PushIndex adds an array index segment: "[0]", "[1]", etc.
func (p *PathBuilder) PushIndex(i int) {
	p.segments = append(p.segments, "["+strconv.Itoa(i)+"]")
}

// Pop removes the last segment.
func (p *PathBuilder) Pop() {
	if len(p.segments) == 0 {
		return
	}
	p.segments = p.segments[:len(p.segments)-1]
}

// Len returns the number of segments.
func (p *PathBuilder) Len() int {
	return len(p.segments)
}

// Reset clears the builder for reuse.
func (p *PathBuilder) Reset() {
	p.segments = p.segments[:0]
}

// String materializes the full path.
func (p *PathBuilder) String() string {
	return p.with("")
}

// Child returns the path of a property below the current path
// without modifying the builder.
func (p *PathBuilder) Child(name string) string {
	return p.with(name)
}

func (p *PathBuilder) with(extra string) string {
	var b strings.Builder
	for _, seg := range p.segments {
		writeSegment(&b, seg)
	}
	if extra != "" {
		writeSegment(&b, extra)
	}
	return b.String()
}

func writeSegment(b *strings.Builder, seg string) {
	if b.Len() > 0 && (len(seg) == 0 || seg[0] != '[') {
		b.WriteByte('.')
	}
	b.WriteString(seg)
}

const maxPathCap = 64

var pathBuilderPool = sync.Pool{
	New: func() any {
		return &PathBuilder{segments: make([]string, 0, 8)}
	},
}

// Get retrieves a reset PathBuilder from the pool.
func Get() *PathBuilder {
	p := pathBuilderPool.Get().(*PathBuilder)
	p.Reset()
	return p
}

// Put returns a PathBuilder to the pool unless it grew oversized.
func Put(p *PathBuilder) {
	if p == nil || cap(p.segments) > maxPathCap {
		return
	}
	pathBuilderPool.Put(p)
}
