// Package mapstring decodes the map strings stored in OWT mask files.
//
// A map string lists the die positions that are NOT part of the map, e.g.
//
//	"1,1; 1,2; 1,3; 2,1"
//
// Each entry is a 1-based "row,col" pair. Decoding inverts the list over the
// full rectangular grid so callers work with inclusion sets.
package mapstring

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// Coord is a 1-based die position on the wafer grid.
type Coord struct {
	Row int
	Col int
}

func (c Coord) String() string {
	return fmt.Sprintf("%d,%d", c.Row, c.Col)
}

// Bounds limits the grid a map is inverted over. A zero field is inferred
// from the largest row or column present in the exclusion list.
type Bounds struct {
	Rows int
	Cols int
}

// ParseError reports a map string that cannot be decoded.
type ParseError struct {
	Token  string // offending token; empty when the whole string is empty
	Reason string
	Err    error
}

func (e *ParseError) Error() string {
	if e.Token == "" {
		return "map string: " + e.Reason
	}
	return fmt.Sprintf("map string: token %q: %s", e.Token, e.Reason)
}

func (e *ParseError) Unwrap() error { return e.Err }

const (
	entrySep = ";"
	fieldSep = ","
)

// MaxDies caps the rows×cols grid a map string may be inverted over. The
// largest real masks are a few thousand die; a coordinate far beyond that is
// a typo in the mask file.
const MaxDies = 1 << 20

// Decode parses raw as an exclusion list and returns the inclusion set over
// the grid described by bounds. The result is ordered row-major but callers
// should treat it as a set.
func Decode(raw string, bounds Bounds) ([]Coord, error) {
	excluded, tokens, err := parseExclusions(raw)
	if err != nil {
		return nil, err
	}
	if err := checkGrid(excluded, tokens, bounds); err != nil {
		return nil, err
	}
	return Invert(excluded, bounds), nil
}

// ParseExclusions parses raw into the listed coordinates without inverting.
func ParseExclusions(raw string) ([]Coord, error) {
	coords, _, err := parseExclusions(raw)
	return coords, err
}

// parseExclusions also returns the trimmed token each coordinate came from.
func parseExclusions(raw string) ([]Coord, []string, error) {
	body := strings.TrimSpace(stripDelimiters(strings.TrimSpace(raw)))
	if body == "" {
		return nil, nil, &ParseError{Reason: "empty map"}
	}

	tokens := strings.Split(body, entrySep)
	coords := make([]Coord, 0, len(tokens))
	for i, tok := range tokens {
		tokens[i] = strings.TrimSpace(tok)
		c, err := parseToken(tokens[i])
		if err != nil {
			return nil, nil, err
		}
		coords = append(coords, c)
	}
	return coords, tokens, nil
}

// checkGrid rejects grids larger than MaxDies, naming the token with the
// largest coordinate.
func checkGrid(excluded []Coord, tokens []string, bounds Bounds) error {
	rows, cols := gridSize(excluded, bounds)
	if rows == 0 || cols <= MaxDies/rows {
		return nil
	}

	worst, tok := 0, ""
	for i, c := range excluded {
		if m := max(c.Row, c.Col); m > worst {
			worst, tok = m, tokens[i]
		}
	}
	return &ParseError{
		Token:  tok,
		Reason: fmt.Sprintf("grid of %d rows by %d columns exceeds %d die", rows, cols, MaxDies),
	}
}

// gridSize resolves bounds, inferring zero fields from excluded.
func gridSize(excluded []Coord, bounds Bounds) (rows, cols int) {
	rows, cols = bounds.Rows, bounds.Cols
	if rows == 0 || cols == 0 {
		maxRow, maxCol := Extent(excluded)
		if rows == 0 {
			rows = maxRow
		}
		if cols == 0 {
			cols = maxCol
		}
	}
	return rows, cols
}

func parseToken(tok string) (Coord, error) {
	fields := strings.Split(tok, fieldSep)
	if len(fields) != 2 {
		return Coord{}, &ParseError{Token: tok, Reason: fmt.Sprintf("expected row,col, got %d fields", len(fields))}
	}

	row, err := strconv.Atoi(strings.TrimSpace(fields[0]))
	if err != nil {
		return Coord{}, &ParseError{Token: tok, Reason: "invalid row", Err: err}
	}
	col, err := strconv.Atoi(strings.TrimSpace(fields[1]))
	if err != nil {
		return Coord{}, &ParseError{Token: tok, Reason: "invalid column", Err: err}
	}
	if row < 1 || col < 1 {
		return Coord{}, &ParseError{Token: tok, Reason: "coordinates are 1-based"}
	}
	return Coord{Row: row, Col: col}, nil
}

// stripDelimiters removes one matching pair of quote characters wrapping s.
func stripDelimiters(s string) string {
	if len(s) >= 2 {
		first, last := s[0], s[len(s)-1]
		if first == last && (first == '"' || first == '\'') {
			return s[1 : len(s)-1]
		}
	}
	return s
}

// Invert returns every grid position not present in excluded. It does not
// limit the grid size; Decode does.
func Invert(excluded []Coord, bounds Bounds) []Coord {
	rows, cols := gridSize(excluded, bounds)

	skip := make(map[Coord]struct{}, len(excluded))
	for _, c := range excluded {
		skip[c] = struct{}{}
	}

	included := make([]Coord, 0, rows*cols)
	for r := 1; r <= rows; r++ {
		for c := 1; c <= cols; c++ {
			pos := Coord{Row: r, Col: c}
			if _, ok := skip[pos]; !ok {
				included = append(included, pos)
			}
		}
	}
	return included
}

// Extent returns the largest row and column in coords.
func Extent(coords []Coord) (maxRow, maxCol int) {
	for _, c := range coords {
		if c.Row > maxRow {
			maxRow = c.Row
		}
		if c.Col > maxCol {
			maxCol = c.Col
		}
	}
	return maxRow, maxCol
}

// Encode renders coords in the quoted form used by mask files, sorted
// row-major: "r,c; r,c; ...".
func Encode(coords []Coord) string {
	sorted := make([]Coord, len(coords))
	copy(sorted, coords)
	sort.Slice(sorted, func(i, j int) bool {
		if sorted[i].Row != sorted[j].Row {
			return sorted[i].Row < sorted[j].Row
		}
		return sorted[i].Col < sorted[j].Col
	})

	parts := make([]string, len(sorted))
	for i, c := range sorted {
		parts[i] = c.String()
	}
	return `"` + strings.Join(parts, entrySep+" ") + `"`
}

// Complement returns the exclusion list that decodes to included over a
// rows×cols grid. It is the inverse of Decode when the grid's far corner
// rows and columns are excluded at least once.
func Complement(included []Coord, rows, cols int) []Coord {
	return Invert(included, Bounds{Rows: rows, Cols: cols})
}
