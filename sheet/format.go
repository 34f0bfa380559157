package sheet

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
)

// dateBase is the epoch for the inherited 1900-serial-date quirk: the
// reference implementation's base_time is 1899-12-30T00:00:00Z (not
// 1900-01-01), which is what actually reproduces the Excel/Lotus leap-year
// bug rather than a clean 1900-01-01 epoch.
var dateBase = time.Date(1899, 12, 30, 0, 0, 0, 0, time.UTC)

// Display renders ref's cell to its display text per its format.
func (s *Sheet) Display(ref Ref) string {
	return FormatCell(s.Get(ref))
}

// FormatCell renders a cell's value to display text, dispatching on kind
// and format.
func FormatCell(c *Cell) string {
	switch c.Kind {
	case KindEmpty:
		return ""
	case KindText:
		return c.Text
	case KindFormula:
		if c.Err != ErrorNone {
			return c.Err.String()
		}
		if c.IsTextResult {
			return c.CachedText
		}
		return formatNumber(c.Number, c.Format, c.Precision)
	case KindNumber:
		return formatNumber(c.Number, c.Format, c.Precision)
	default:
		return ""
	}
}

func formatNumber(v float64, f Format, precision int) string {
	switch f.Kind {
	case FormatPercentage:
		// Unlike general/number, the original's format_number_as_percentage
		// (sheet.c:927) keeps trailing zeros ("%.*f%%"); spec §4.6 only
		// mandates stripping for general/number, so percentage is left as-is.
		return strconv.FormatFloat(v*100, 'f', precision, 64) + "%"
	case FormatCurrency:
		sign := ""
		av := v
		if v < 0 {
			sign = "-"
			av = -v
		}
		return sign + "$" + strconv.FormatFloat(av, 'f', 2, 64)
	case FormatDate:
		return formatDate(v, f.Style)
	case FormatTime:
		return formatTime(v, f.Style)
	case FormatDateTime:
		return formatDateTime(v, f.Style)
	case FormatNumber, FormatGeneral:
		fallthrough
	default:
		return stripTrailingZeros(strconv.FormatFloat(v, 'f', precision, 64))
	}
}

func stripTrailingZeros(s string) string {
	if !strings.Contains(s, ".") {
		return s
	}
	s = strings.TrimRight(s, "0")
	s = strings.TrimRight(s, ".")
	return s
}

func serialToTime(v float64) (time.Time, bool) {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return time.Time{}, false
	}
	return dateBase.Add(time.Duration(v * float64(86400) * float64(time.Second))), true
}

func formatDate(v float64, style string) string {
	t, ok := serialToTime(v)
	if !ok {
		return "#DATE!"
	}
	switch style {
	case "DD/MM/YYYY":
		return t.Format("02/01/2006")
	case "YYYY-MM-DD":
		return t.Format("2006-01-02")
	case "Mon DD, YYYY":
		return t.Format("Jan 2, 2006")
	case "MM/DD/YY":
		return t.Format("01/02/06")
	case "MM/DD/YYYY", "":
		return t.Format("01/02/2006")
	default:
		return t.Format("01/02/2006")
	}
}

func formatTime(v float64, style string) string {
	t, ok := serialToTime(v)
	if !ok {
		return "#DATE!"
	}
	switch style {
	case "24hr":
		return t.Format("15:04")
	case "12hr-sec":
		return t.Format("03:04:05 PM")
	case "HH:MM:SS":
		return t.Format("15:04:05")
	case "12hr", "":
		return t.Format("03:04 PM")
	default:
		return t.Format("03:04 PM")
	}
}

func formatDateTime(v float64, style string) string {
	t, ok := serialToTime(v)
	if !ok {
		return "#DATE!"
	}
	switch style {
	case "long":
		return t.Format("Monday, January 2, 2006 03:04:05 PM")
	case "ISO":
		return t.Format(time.RFC3339)
	case "short", "":
		return t.Format("01/02/2006 03:04 PM")
	default:
		return t.Format("01/02/2006 03:04 PM")
	}
}

// 16-colour palette: indices 0-7 are the base ANSI colours, 8-15 are their
// bright variants. Index -1 means "use default".
var colorNames = map[string]int{
	"black":   0,
	"red":     1,
	"green":   2,
	"yellow":  3,
	"blue":    4,
	"magenta": 5,
	"cyan":    6,
	"white":   7,
}

var palette = [16][3]int{
	{0, 0, 0}, {128, 0, 0}, {0, 128, 0}, {128, 128, 0},
	{0, 0, 128}, {128, 0, 128}, {0, 128, 128}, {192, 192, 192},
	{128, 128, 128}, {255, 0, 0}, {0, 255, 0}, {255, 255, 0},
	{0, 0, 255}, {255, 0, 255}, {0, 255, 255}, {255, 255, 255},
}

// ParseColor accepts a base colour name (black, red, green, yellow, blue,
// magenta, cyan, white) or a "#RRGGBB" hex string, mapping hex to the
// nearest of the 16-colour palette by squared Euclidean distance.
func ParseColor(s string) (int, error) {
	s = strings.TrimSpace(strings.ToLower(s))
	if idx, ok := colorNames[s]; ok {
		return idx, nil
	}
	if strings.HasPrefix(s, "#") && len(s) == 7 {
		r, err1 := strconv.ParseInt(s[1:3], 16, 32)
		g, err2 := strconv.ParseInt(s[3:5], 16, 32)
		b, err3 := strconv.ParseInt(s[5:7], 16, 32)
		if err1 != nil || err2 != nil || err3 != nil {
			return 0, fmt.Errorf("invalid color %q", s)
		}
		return nearestColor(int(r), int(g), int(b)), nil
	}
	return 0, fmt.Errorf("unknown color %q", s)
}

func nearestColor(r, g, b int) int {
	best := 0
	bestDist := math.MaxInt64
	for i, p := range palette {
		dr, dg, db := r-p[0], g-p[1], b-p[2]
		dist := dr*dr + dg*dg + db*db
		if dist < bestDist {
			bestDist = dist
			best = i
		}
	}
	return best
}
