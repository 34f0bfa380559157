package sheet

// Kind is the tag of a cell's value.
type Kind int

const (
	KindEmpty Kind = iota
	KindNumber
	KindText
	KindFormula
)

// ErrorKind is the taxonomy of formula evaluation errors (spec §7).
type ErrorKind int

const (
	ErrorNone ErrorKind = iota
	ErrorDivZero
	ErrorRef
	ErrorValue
	ErrorParse
	ErrorNA
)

func (e ErrorKind) String() string {
	switch e {
	case ErrorNone:
		return ""
	case ErrorDivZero:
		return "#DIV/0!"
	case ErrorRef:
		return "#REF!"
	case ErrorValue:
		return "#VALUE!"
	case ErrorParse:
		return "#PARSE!"
	case ErrorNA:
		return "#N/A!"
	default:
		return "#ERROR!"
	}
}

// FormatKind selects the display format family for a cell.
type FormatKind int

const (
	FormatGeneral FormatKind = iota
	FormatNumber
	FormatPercentage
	FormatCurrency
	FormatDate
	FormatTime
	FormatDateTime
)

// Format is a cell's display format descriptor: a kind plus a style
// sub-selector meaningful within that kind (e.g. "MM/DD/YYYY", "24hr").
type Format struct {
	Kind  FormatKind
	Style string
}

// Alignment is horizontal text alignment.
type Alignment int

const (
	AlignDefault Alignment = iota // right for numbers, left for text
	AlignLeft
	AlignCenter
	AlignRight
)

const (
	DefaultColumnWidth = 10
	MinColumnWidth     = 1
	MaxColumnWidth     = 50

	DefaultRowHeight = 1
	MinRowHeight     = 1
	MaxRowHeight     = 10

	// MaxRangeValues caps how many elements a single range evaluation
	// collects; further elements are silently ignored.
	MaxRangeValues = 1000

	// FloatEpsilon is the absolute tolerance for numeric equality and MODE
	// bucketing.
	FloatEpsilon = 1e-10
)

// Cell is one addressable grid slot. A nil *Cell (an unallocated slot) is
// distinct from an allocated Cell with Kind == KindEmpty; Sheet.Get returns
// a read-only empty sentinel for the former without allocating.
type Cell struct {
	Row, Col int

	Kind Kind

	Number float64 // meaningful when Kind == KindNumber, or a formula's cached scalar
	Text   string  // meaningful when Kind == KindText, or a formula's raw source text

	// Formula cell fields. The formula source itself lives in Text, in its
	// original "=..." form for display/CSV preservation.
	CachedText   string // valid only when IsTextResult
	IsTextResult bool
	Err          ErrorKind

	Dependencies []Ref // cells this formula reads from, deduplicated
	Dependents   []Ref // cells whose formulas read this one

	Format Format

	Width     int // display width override; 0 means "use column width"
	Precision int
	Align     Alignment
	TextColor int // -1 = inherit
	BgColor   int // -1 = inherit

	RowHeight int // per-cell row height override; 0 means "use sheet row height"
}

func newCell(row, col int) *Cell {
	return &Cell{
		Row: row, Col: col,
		TextColor: -1,
		BgColor:   -1,
		Precision: 2,
	}
}

func emptyCellAt(row, col int) *Cell {
	c := newCell(row, col)
	return c
}

// clone deep-copies a cell, used by the clipboard and range copy/paste.
// The copy's Dependencies/Dependents are cleared: they are recomputed by
// the recalculation engine once the copy is placed on a sheet.
func (c *Cell) clone() *Cell {
	cp := *c
	cp.Dependencies = nil
	cp.Dependents = nil
	return &cp
}
