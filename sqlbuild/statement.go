package sqlbuild

import (
	"sort"
	"strings"
)

// Statement is an incrementally built query: a base table, joins, WHERE
// predicates, optional grouping, a distinct flag and ordered output columns.
//
// A Statement is not safe for concurrent use; build it on one goroutine and
// hand the rendered text to the execution engine.
type Statement struct {
	firstTable string
	joins      []Join
	wheres     []string
	groupBy    string
	distinct   bool
	columns    []Column
}

// SetFirstTable proposes a base table for the statement. When a base table
// has already been proposed, the one with the higher registered priority is
// kept, so the outcome does not depend on command order.
func (s *Statement) SetFirstTable(table string) {
	if table == "" {
		return
	}
	if s.firstTable == "" || TablePriority(table) > TablePriority(s.firstTable) {
		s.firstTable = table
	}
}

// FirstTable returns the current base table, which may still be empty before
// AutoJoin runs.
func (s *Statement) FirstTable() string {
	return s.firstTable
}

// AddJoin adds a join. A second join on the same table is ignored; commands
// freely re-add the joins they depend on.
func (s *Statement) AddJoin(j Join) {
	for _, existing := range s.joins {
		if existing.Table() == j.Table() {
			return
		}
	}
	s.joins = append(s.joins, j)
}

// Joins returns the joins in their resolved order.
func (s *Statement) Joins() []Join {
	return s.joins
}

// AddWhere appends a WHERE predicate. Predicates are anded together.
func (s *Statement) AddWhere(cond string) {
	if cond == "" {
		return
	}
	s.wheres = append(s.wheres, cond)
}

// Wheres returns the WHERE predicates in insertion order.
func (s *Statement) Wheres() []string {
	return s.wheres
}

// SetGroupBy sets the GROUP BY expression. An empty expression clears it.
func (s *Statement) SetGroupBy(expr string) {
	s.groupBy = expr
}

// GroupBy returns the GROUP BY expression.
func (s *Statement) GroupBy() string {
	return s.groupBy
}

// SetDistinct sets the DISTINCT flag.
func (s *Statement) SetDistinct(on bool) {
	s.distinct = on
}

// Distinct reports whether the DISTINCT flag is set.
func (s *Statement) Distinct() bool {
	return s.distinct
}

// AddColumn inserts an output column at the given position. Positions beyond
// the current column count append.
func (s *Statement) AddColumn(c Column, pos int) {
	if pos < 0 {
		pos = 0
	}
	if pos >= len(s.columns) {
		s.columns = append(s.columns, c)
		return
	}
	s.columns = append(s.columns[:pos], append([]Column{c}, s.columns[pos:]...)...)
}

// Columns returns the output columns in order.
func (s *Statement) Columns() []Column {
	return s.columns
}

// LeftColumn returns the id column of the base table, the join key every
// other table is matched against. It is only meaningful once a base table
// has been resolved.
func (s *Statement) LeftColumn() Column {
	if s.firstTable == "" {
		return Column{}
	}
	return NewColumn(s.firstTable, "id")
}

// AutoJoin resolves the base table and the join order. When no base table
// was proposed, the joined table with the highest registered priority
// becomes the base. The join targeting the base table itself is removed and
// the remaining joins are ordered by descending priority (stable).
func (s *Statement) AutoJoin() {
	if s.firstTable == "" {
		best := -1
		for i, j := range s.joins {
			if best < 0 || j.Priority() > s.joins[best].Priority() {
				best = i
			}
		}
		if best >= 0 {
			s.firstTable = s.joins[best].Table()
		}
	}

	kept := s.joins[:0]
	for _, j := range s.joins {
		if j.Table() != s.firstTable {
			kept = append(kept, j)
		}
	}
	s.joins = kept

	sort.SliceStable(s.joins, func(i, k int) bool {
		return s.joins[i].Priority() > s.joins[k].Priority()
	})
}

// SQL renders the statement. The output is what the external execution
// engine receives; it is also convenient for tests and logging.
func (s *Statement) SQL() string {
	var b strings.Builder

	b.WriteString("select ")
	if s.distinct {
		b.WriteString("distinct ")
	}
	if len(s.columns) == 0 {
		b.WriteString("*")
	} else {
		for i, c := range s.columns {
			if i > 0 {
				b.WriteString(", ")
			}
			b.WriteString(c.String())
		}
	}

	b.WriteString(" from ")
	b.WriteString(s.firstTable)

	left := s.LeftColumn()
	for _, j := range s.joins {
		b.WriteString(" ")
		b.WriteString(j.Type.String())
		b.WriteString(" ")
		b.WriteString(j.Table())
		b.WriteString(" on ")
		b.WriteString(j.Key.String())
		b.WriteString(" = ")
		b.WriteString(left.String())
		if j.On != "" {
			b.WriteString(" and ")
			b.WriteString(j.On)
		}
	}

	if len(s.wheres) > 0 {
		b.WriteString(" where ")
		b.WriteString(strings.Join(s.wheres, " and "))
	}

	if s.groupBy != "" {
		b.WriteString(" group by ")
		b.WriteString(s.groupBy)
	}

	return b.String()
}
