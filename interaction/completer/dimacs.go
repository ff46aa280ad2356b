package completer

import (
	"bufio"
	"fmt"
	"io"
	"os"

	"github.com/go-air/gini/dimacs"
	"github.com/go-air/gini/z"

	"github.com/example/faultloc-lite/interaction/domain"
)

// Model is a feature model in conjunctive normal form.
type Model struct {
	// NumVars is the number of variables, numbered 1..NumVars.
	NumVars int

	// Clauses hold DIMACS literals without the terminating 0.
	Clauses [][]int
}

// NewModel creates a model and checks that every literal is in range.
func NewModel(numVars int, clauses [][]int) (*Model, error) {
	if numVars < 1 {
		return nil, fmt.Errorf("%w: model needs at least one variable", domain.ErrInvalidConfig)
	}
	for i, c := range clauses {
		for _, l := range c {
			if l == 0 || l > numVars || -l > numVars {
				return nil, fmt.Errorf("%w: clause %d has literal %d outside 1..%d",
					domain.ErrInvalidLiteral, i, l, numVars)
			}
		}
	}
	return &Model{NumVars: numVars, Clauses: clauses}, nil
}

// ReadCnf reports this many variables when the problem line is missing.
const missingHeaderVars = 8192

// cnfCollector implements dimacs.CnfVis.
type cnfCollector struct {
	headerVars int
	maxVar     int
	clauses    [][]int
	current    []int
}

func (c *cnfCollector) Init(v, _ int) {
	c.headerVars = v
}

func (c *cnfCollector) numVars() int {
	if c.headerVars == missingHeaderVars && c.maxVar < missingHeaderVars {
		return c.maxVar
	}
	return max(c.headerVars, c.maxVar)
}

func (c *cnfCollector) Add(m z.Lit) {
	if m == z.LitNull {
		c.clauses = append(c.clauses, c.current)
		c.current = nil
		return
	}
	c.current = append(c.current, m.Dimacs())
	if v := int(m.Var()); v > c.maxVar {
		c.maxVar = v
	}
}

func (c *cnfCollector) Eof() {
	if len(c.current) > 0 {
		c.clauses = append(c.clauses, c.current)
		c.current = nil
	}
}

func readCnf(r io.Reader) (*cnfCollector, error) {
	vis := &cnfCollector{}
	if err := dimacs.ReadCnf(r, vis); err != nil {
		return nil, fmt.Errorf("reading dimacs: %w", err)
	}
	return vis, nil
}

// ReadModel parses a DIMACS CNF model.
func ReadModel(r io.Reader) (*Model, error) {
	vis, err := readCnf(r)
	if err != nil {
		return nil, err
	}
	return NewModel(vis.numVars(), vis.clauses)
}

// ReadModelFile parses a DIMACS CNF model from disk.
func ReadModelFile(path string) (*Model, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return ReadModel(bufio.NewReader(f))
}

// WriteModel writes m in DIMACS CNF format.
func WriteModel(w io.Writer, m *Model) error {
	return writeCnf(w, m.NumVars, m.Clauses)
}

// ReadAssignments parses a list of assignments stored one per line in
// DIMACS clause syntax. Samples and interaction files use this format.
func ReadAssignments(r io.Reader) (numVars int, out []domain.Assignment, err error) {
	vis, err := readCnf(r)
	if err != nil {
		return 0, nil, err
	}
	out = make([]domain.Assignment, 0, len(vis.clauses))
	for i, c := range vis.clauses {
		a, err := domain.FromInts(c)
		if err != nil {
			return 0, nil, fmt.Errorf("line %d: %w", i+1, err)
		}
		out = append(out, a)
	}
	return vis.numVars(), out, nil
}

// ReadAssignmentsFile reads assignments from disk.
func ReadAssignmentsFile(path string) (int, []domain.Assignment, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, nil, err
	}
	defer f.Close()
	return ReadAssignments(bufio.NewReader(f))
}

// WriteAssignments writes assignments in the format ReadAssignments reads.
func WriteAssignments(w io.Writer, numVars int, list []domain.Assignment) error {
	rows := make([][]int, len(list))
	for i, a := range list {
		rows[i] = a.Ints()
	}
	return writeCnf(w, numVars, rows)
}

func writeCnf(w io.Writer, numVars int, rows [][]int) error {
	bw := bufio.NewWriter(w)
	fmt.Fprintf(bw, "p cnf %d %d\n", numVars, len(rows))
	for _, row := range rows {
		for _, l := range row {
			fmt.Fprintf(bw, "%d ", l)
		}
		bw.WriteString("0\n")
	}
	return bw.Flush()
}
