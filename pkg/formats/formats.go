// Package formats decodes third-party model files into plain record
// structs. Decoders validate headers and record sizes; they do not build
// renderable meshes.
package formats

import (
	"errors"
	"fmt"
)

// Error classes shared by every decoder. Specific errors wrap one of
// these, so callers can test with errors.Is.
var (
	// ErrIO reports unreadable input or a record cut short.
	ErrIO = errors.New("model I/O error")
	// ErrFormat reports input that is not the expected format or version.
	ErrFormat = errors.New("model format error")
)

// IssueKind classifies a recoverable data inconsistency.
type IssueKind int

const (
	IssueFrameRate IssueKind = iota
	IssueMaterialIndex
	IssueGroupIndex
	IssueVertexIndex
	IssueTriangleIndex
	IssueBoneIndex
	IssueColorRange
	IssueJointParent
)

// String returns a short name for the issue kind.
func (k IssueKind) String() string {
	switch k {
	case IssueFrameRate:
		return "frame-rate"
	case IssueMaterialIndex:
		return "material-index"
	case IssueGroupIndex:
		return "group-index"
	case IssueVertexIndex:
		return "vertex-index"
	case IssueTriangleIndex:
		return "triangle-index"
	case IssueBoneIndex:
		return "bone-index"
	case IssueColorRange:
		return "color-range"
	case IssueJointParent:
		return "joint-parent"
	default:
		return fmt.Sprintf("Unknown(%d)", int(k))
	}
}

// Issue is a data inconsistency that was repaired instead of failing the
// load, such as an out-of-range index replaced with a default.
type Issue struct {
	Kind   IssueKind
	Index  int    // record the issue was found on
	Detail string // human-readable repair description
}

// String formats the issue for logs.
func (i Issue) String() string {
	return fmt.Sprintf("%s[%d]: %s", i.Kind, i.Index, i.Detail)
}
