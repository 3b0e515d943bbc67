package mapping

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"stage-mapper/internal/common"
)

// SourceKind identifies which variant a Source is.
type SourceKind int

const (
	SourcePathLookup SourceKind = iota + 1
	SourceLiteral
	SourceComputed
)

// String returns the kind name.
func (k SourceKind) String() string {
	switch k {
	case SourcePathLookup:
		return "path_lookup"
	case SourceLiteral:
		return "literal"
	case SourceComputed:
		return "computed"
	default:
		return common.UnknownStr
	}
}

// Source is the value source of a column. The set of implementations is
// closed: PathLookup, Literal and Computed.
type Source interface {
	Kind() SourceKind
	sealed()
}

// PathLookup reads the column from the source document.
type PathLookup struct {
	Path FieldPath
}

// Literal is a constant, already coerced to the column datatype.
type Literal struct {
	Value any
}

// Computed is evaluated when rows are emitted.
type Computed struct {
	Func ComputedFunc
}

func (PathLookup) Kind() SourceKind { return SourcePathLookup }
func (Literal) Kind() SourceKind    { return SourceLiteral }
func (Computed) Kind() SourceKind   { return SourceComputed }

func (PathLookup) sealed() {}
func (Literal) sealed()    {}
func (Computed) sealed()   {}

// ComputedFunc names a function evaluated at bind time.
type ComputedFunc string

// FuncCurrentTimestamp is the engine invocation time.
const FuncCurrentTimestamp ComputedFunc = "current_timestamp"

// ComputedFuncs lists every recognized function.
var ComputedFuncs = []ComputedFunc{FuncCurrentTimestamp}

var callPattern = regexp.MustCompile(`^\s*([A-Za-z_][A-Za-z0-9_]*)\s*\(\s*\)\s*$`)

// parseCall reports whether s is written as a zero-argument call and returns
// the lower-cased function name.
func parseCall(s string) (string, bool) {
	m := callPattern.FindStringSubmatch(s)
	if m == nil {
		return "", false
	}

	return strings.ToLower(m[1]), true
}

func knownFunc(name string) (ComputedFunc, bool) {
	for _, f := range ComputedFuncs {
		if string(f) == name {
			return f, true
		}
	}

	return "", false
}

// EmptyAxisPolicy decides what an absent or empty array contributes to the rows.
type EmptyAxisPolicy string

const (
	// EmptyAxisDrop emits no rows for an absent or empty array.
	EmptyAxisDrop EmptyAxisPolicy = "drop"
	// EmptyAxisNull emits one row whose fields from that array are null.
	EmptyAxisNull EmptyAxisPolicy = "null"
)

// JoinType decides what happens when a driving element has no match.
type JoinType string

const (
	// JoinLeft keeps the driving row with null correlated fields.
	JoinLeft JoinType = "left"
	// JoinInner drops the driving row.
	JoinInner JoinType = "inner"
)

// TiesPolicy decides what happens when a driving element has several matches.
type TiesPolicy string

const (
	// TiesAll emits one row per match.
	TiesAll TiesPolicy = "all"
	// TiesFirst keeps the first match in source order and reports the rest.
	TiesFirst TiesPolicy = "first"
	// TiesError fails the document.
	TiesError TiesPolicy = "error"
)

// DefaultTimestampPrecision is the truncation applied to computed timestamps.
const DefaultTimestampPrecision = time.Microsecond

// Options are the resolved per-table settings.
type Options struct {
	EmptyAxis          EmptyAxisPolicy
	InferJoins         bool
	TimestampPrecision time.Duration
}

func parseEmptyAxis(s string) (EmptyAxisPolicy, error) {
	switch EmptyAxisPolicy(strings.ToLower(s)) {
	case "", EmptyAxisDrop:
		return EmptyAxisDrop, nil
	case EmptyAxisNull:
		return EmptyAxisNull, nil
	default:
		return "", fmt.Errorf("unknown empty_axis policy %q (expected drop or null)", s)
	}
}

func parseJoinType(s string) (JoinType, error) {
	switch JoinType(strings.ToLower(s)) {
	case "", JoinLeft:
		return JoinLeft, nil
	case JoinInner:
		return JoinInner, nil
	default:
		return "", fmt.Errorf("unknown join type %q (expected left or inner)", s)
	}
}

func parseTies(s string) (TiesPolicy, error) {
	switch TiesPolicy(strings.ToLower(s)) {
	case "", TiesAll:
		return TiesAll, nil
	case TiesFirst:
		return TiesFirst, nil
	case TiesError:
		return TiesError, nil
	default:
		return "", fmt.Errorf("unknown ties policy %q (expected all, first or error)", s)
	}
}
