package equation

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/vovakirdan/casim/internal/geom"
)

var (
	// a[dx,dy] or v[dx,dy] read a neighbor.
	neighborRef = regexp.MustCompile(`\b[av]\[\s*(-?\d+)\s*,\s*(-?\d+)\s*\]`)
	// bare v is the cell itself.
	selfRef = regexp.MustCompile(`\bv\b`)
	// x or y used as a free variable.
	positionRef = regexp.MustCompile(`\b[xy]\b`)
	// assignment targets: v, v[dx,dy], a[dx,dy].
	targetRef = regexp.MustCompile(`^\s*[av](?:\[\s*(-?\d+)\s*,\s*(-?\d+)\s*\])?\s*$`)
)

// statement is one assignment of the program before compilation.
type statement struct {
	target geom.Point
	expr   string // rewritten right-hand side
	reads  []geom.Point
}

// split breaks a program into statements. "v[dx,dy] := e" assigns the
// footprint cell (dx,dy); a bare expression assigns the cell itself.
func split(source string) ([]statement, error) {
	var stmts []statement
	for i, part := range strings.Split(source, ";") {
		if strings.TrimSpace(part) == "" {
			continue
		}
		st, err := parseStatement(part)
		if err != nil {
			return nil, fmt.Errorf("statement %d: %w", i+1, err)
		}
		stmts = append(stmts, st)
	}
	if len(stmts) == 0 {
		return nil, fmt.Errorf("empty equation")
	}
	return stmts, nil
}

func parseStatement(part string) (statement, error) {
	var st statement
	rhs := part
	if lhs, r, ok := strings.Cut(part, ":="); ok {
		m := targetRef.FindStringSubmatch(lhs)
		if m == nil {
			return st, fmt.Errorf("cannot assign to %q", strings.TrimSpace(lhs))
		}
		if m[1] != "" {
			x, _ := strconv.Atoi(m[1])
			y, _ := strconv.Atoi(m[2])
			st.target = geom.Pt(x, y)
		}
		rhs = r
	}
	if strings.TrimSpace(rhs) == "" {
		return st, fmt.Errorf("missing expression")
	}
	st.expr, st.reads = rewrite(rhs)
	return st, nil
}

// rewrite replaces neighbor references with plain identifiers and returns
// the offsets read.
func rewrite(rhs string) (string, []geom.Point) {
	var reads []geom.Point
	out := neighborRef.ReplaceAllStringFunc(rhs, func(ref string) string {
		m := neighborRef.FindStringSubmatch(ref)
		x, _ := strconv.Atoi(m[1])
		y, _ := strconv.Atoi(m[2])
		p := geom.Pt(x, y)
		reads = append(reads, p)
		return varName(p)
	})
	if selfRef.MatchString(out) {
		reads = append(reads, geom.Point{})
		out = selfRef.ReplaceAllString(out, varName(geom.Point{}))
	}
	return out, reads
}

// varName maps an offset to its identifier, e.g. (-1,0) -> a_m1_0.
func varName(p geom.Point) string {
	return "a_" + coord(p.X) + "_" + coord(p.Y)
}

func coord(v int) string {
	if v < 0 {
		return "m" + strconv.Itoa(-v)
	}
	return strconv.Itoa(v)
}
