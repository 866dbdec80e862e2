package search

import (
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/lexibase/lexibase/entry"
	"github.com/lexibase/lexibase/reldate"
	"github.com/lexibase/lexibase/sqlbuild"
)

// Table priorities steer auto-join base-table resolution. They are
// process-wide and registered exactly once, before any compiler use.
var tablePrioritiesOnce sync.Once

func registerTablePriorities() {
	tablePrioritiesOnce.Do(func() {
		sqlbuild.RegisterTablePriority("training", -100)
		sqlbuild.RegisterTablePriority("notes", -40)
		sqlbuild.RegisterTablePriority("notesText", -45)
		sqlbuild.RegisterTablePriority("taggedEntries", -50)
		sqlbuild.RegisterTablePriority("tags", -55)
	})
}

// CompilerOptions configures a Compiler.
type CompilerOptions struct {
	// Now supplies the reference time for relative-date arguments.
	// Defaults to time.Now.
	Now func() time.Time
}

// Compiler turns parsed commands into predicates, joins and output columns
// on a Statement scoped to one entry kind.
type Compiler struct {
	kind entry.Kind
	now  func() time.Time
}

// NewCompiler creates a Compiler for the given entry kind.
func NewCompiler(kind entry.Kind, optFns ...func(o *CompilerOptions)) *Compiler {
	registerTablePriorities()

	opts := CompilerOptions{
		Now: time.Now,
	}
	for _, fn := range optFns {
		fn(&opts)
	}

	return &Compiler{kind: kind, now: opts.Now}
}

// Kind returns the entry kind the compiler is scoped to.
func (c *Compiler) Kind() entry.Kind {
	return c.kind
}

// BuildStatement compiles the commands it understands into stmt and returns
// the commands it does not, so the caller can treat them as unrecognized.
// Commands with malformed arguments (wrong arity, non-numeric score) are
// consumed and dropped without error.
func (c *Compiler) BuildStatement(commands []Command, stmt *sqlbuild.Statement) []Command {
	var leftover []Command
	var noteTerms, tagTerms []string

	for _, cmd := range commands {
		switch cmd.Name {
		case "study":
			if len(cmd.Args) > 2 {
				continue
			}
			stmt.SetFirstTable("training")
			c.dateWindow(stmt, cmd.Args, "training.dateAdded", false)

		case "nostudy":
			stmt.AddWhere("training.dateAdded is null")

		case "lasttrained":
			if len(cmd.Args) > 2 {
				continue
			}
			c.dateWindow(stmt, cmd.Args, "training.dateLastTrain", true)

		case "mistaken":
			if len(cmd.Args) > 2 {
				continue
			}
			c.dateWindow(stmt, cmd.Args, "training.dateLastMistake", false)

		case "score":
			if len(cmd.Args) != 1 && len(cmd.Args) != 2 {
				continue
			}
			from, err := strconv.Atoi(cmd.Args[0])
			if err != nil {
				continue
			}
			if len(cmd.Args) == 1 {
				stmt.AddWhere(fmt.Sprintf("training.score = %d", from))
				continue
			}
			to, err := strconv.Atoi(cmd.Args[1])
			if err != nil {
				continue
			}
			stmt.AddWhere(fmt.Sprintf("training.score between %d and %d", from, to))

		case "note":
			stmt.AddJoin(sqlbuild.NewJoin(
				sqlbuild.NewColumn("notes", "id"),
				fmt.Sprintf("notes.type = %d", c.kind),
				sqlbuild.LeftJoin,
			))
			if len(cmd.Args) == 0 {
				stmt.AddWhere("notes.dateAdded not null")
			} else {
				for _, arg := range cmd.Args {
					noteTerms = append(noteTerms, `"`+arg+`"`)
				}
			}
			stmt.SetFirstTable("notes")

		case "tag":
			stmt.AddJoin(sqlbuild.NewJoin(
				sqlbuild.NewColumn("taggedEntries", "id"),
				fmt.Sprintf("taggedEntries.type = %d", c.kind),
				sqlbuild.LeftJoin,
			))
			allTagsHandled := false
			if len(cmd.Args) == 0 {
				stmt.AddWhere("taggedEntries.date not null")
				allTagsHandled = true
			}
			for _, arg := range cmd.Args {
				// The "*" tag cannot be indexed by the text-search engine;
				// requiring the association row to exist gives the same result.
				if arg != "*" {
					tagTerms = append(tagTerms, `"`+arg+`"`)
				} else if !allTagsHandled {
					stmt.AddWhere("taggedEntries.date not null")
					allTagsHandled = true
				}
			}
			stmt.SetFirstTable("taggedEntries")

		case "untagged":
			stmt.AddJoin(sqlbuild.NewJoin(
				sqlbuild.NewColumn("taggedEntries", "id"),
				fmt.Sprintf("taggedEntries.type = %d", c.kind),
				sqlbuild.LeftJoin,
			))
			stmt.AddWhere("taggedEntries.date is null")

		default:
			leftover = append(leftover, cmd)
		}
	}

	if len(noteTerms) > 0 {
		stmt.AddWhere(fmt.Sprintf(
			"notes.noteId in (select docid from notesText where note match '%s')",
			strings.Join(noteTerms, " "),
		))
	}
	if len(tagTerms) > 0 {
		tagTerms = dedupeFold(tagTerms)
		// Intersection over tags: match any term, then require the count of
		// matched association rows per entry to equal the term count.
		stmt.AddWhere(fmt.Sprintf(
			"taggedEntries.id in (select id from taggedEntries where type = %d and tagId in (select docid from tags where tag match '%s') group by id having count(id) == %d)",
			c.kind, strings.Join(tagTerms, " OR "), len(tagTerms),
		))
	}

	return leftover
}

// dateWindow emits the bounds of a relative-date window on column. An
// unresolvable lower or upper expression simply omits that bound; when
// neither bound resolves, the column is required to be non-null. With
// orNullUpper the upper bound also admits null values.
func (c *Compiler) dateWindow(stmt *sqlbuild.Statement, args []string, column string, orNullUpper bool) {
	var s1, s2 string
	if len(args) >= 1 {
		s1 = args[0]
	}
	if len(args) >= 2 {
		s2 = args[1]
	}

	now := c.now()
	lower, lowerOK := reldate.Parse(s1, now)
	upper, upperOK := reldate.Parse(s2, now)

	if lowerOK {
		stmt.AddWhere(fmt.Sprintf("%s >= %d", column, lower.Unix()))
	}
	if upperOK {
		if orNullUpper {
			stmt.AddWhere(fmt.Sprintf("(%s < %d or %s is null)", column, upper.Unix(), column))
		} else {
			stmt.AddWhere(fmt.Sprintf("%s < %d", column, upper.Unix()))
		}
	}
	if !lowerOK && !upperOK {
		stmt.AddWhere(column + " not null")
	}
}

// CanSort resolves a named sort key to a comparable column. Unknown names
// map to the constant column "0", leaving the order stable.
func (c *Compiler) CanSort(name string, stmt *sqlbuild.Statement) sqlbuild.Column {
	switch name {
	case "study":
		return sqlbuild.NewColumn("training", "dateAdded is null")
	case "score":
		return sqlbuild.NewColumn("training", "score")
	}
	return sqlbuild.Literal("0")
}

// SetColumns finalizes the statement: DISTINCT output, the training join
// every search depends on, auto-join resolution, and exactly two output
// columns (the literal entry kind and the entry id), grouped by the id to
// collapse rows multiplied by one-to-many joins.
func (c *Compiler) SetColumns(stmt *sqlbuild.Statement) {
	stmt.SetDistinct(true)
	stmt.AddJoin(sqlbuild.NewJoin(
		sqlbuild.NewColumn("training", "id"),
		fmt.Sprintf("training.type = %d", c.kind),
		sqlbuild.LeftJoin,
	))
	stmt.AutoJoin()

	stmt.AddColumn(sqlbuild.Literal(strconv.Itoa(int(c.kind))), 0)
	left := stmt.LeftColumn()
	stmt.AddColumn(left, 1)
	stmt.SetGroupBy(left.String())
}

func dedupeFold(terms []string) []string {
	seen := make(map[string]struct{}, len(terms))
	out := terms[:0]
	for _, t := range terms {
		t = strings.ToLower(t)
		if _, ok := seen[t]; ok {
			continue
		}
		seen[t] = struct{}{}
		out = append(out, t)
	}
	return out
}
