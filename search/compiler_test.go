package search

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lexibase/lexibase/entry"
	"github.com/lexibase/lexibase/sqlbuild"
)

const kindVocab = entry.Kind(2)

// 2024-05-15 is a Wednesday.
var fixedNow = time.Date(2024, time.May, 15, 13, 45, 0, 0, time.UTC)

func utcDay(year int, month time.Month, day int) int64 {
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC).Unix()
}

func compile(t *testing.T, tokens ...string) *sqlbuild.Statement {
	t.Helper()

	p := NewParser()
	cmds, err := p.Parse(tokens)
	require.NoError(t, err)

	c := NewCompiler(kindVocab, func(o *CompilerOptions) {
		o.Now = func() time.Time { return fixedNow }
	})
	stmt := &sqlbuild.Statement{}
	leftover := c.BuildStatement(cmds, stmt)
	require.Empty(t, leftover)
	return stmt
}

func TestBuildStatement_Score(t *testing.T) {
	stmt := compile(t, "score:80")
	assert.Equal(t, []string{"training.score = 80"}, stmt.Wheres())

	stmt = compile(t, "score:80,100")
	assert.Equal(t, []string{"training.score between 80 and 100"}, stmt.Wheres())
}

func TestBuildStatement_MalformedScoreIsDropped(t *testing.T) {
	// Malformed arguments consume the command without emitting a predicate
	// and without failing the search.
	for _, tokens := range [][]string{
		{"score:eighty"},
		{"score:80,high"},
		{"score:1,2,3"},
		{"score:"},
	} {
		stmt := compile(t, tokens...)
		assert.Empty(t, stmt.Wheres(), "tokens %v", tokens)
	}
}

func TestBuildStatement_StudyWindow(t *testing.T) {
	stmt := compile(t, "study:2024-05-01,2024-05-10")
	assert.Equal(t, "training", stmt.FirstTable())
	assert.Equal(t, []string{
		fmt.Sprintf("training.dateAdded >= %d", utcDay(2024, time.May, 1)),
		fmt.Sprintf("training.dateAdded < %d", utcDay(2024, time.May, 10)),
	}, stmt.Wheres())
}

func TestBuildStatement_StudyBare(t *testing.T) {
	stmt := compile(t, "study")
	assert.Equal(t, "training", stmt.FirstTable())
	assert.Equal(t, []string{"training.dateAdded not null"}, stmt.Wheres())
}

func TestBuildStatement_StudyUnresolvableBoundsFallBackToNotNull(t *testing.T) {
	stmt := compile(t, "study:gibberish,alsobad")
	assert.Equal(t, []string{"training.dateAdded not null"}, stmt.Wheres())
}

func TestBuildStatement_StudyTooManyArgsIsDropped(t *testing.T) {
	stmt := compile(t, "study:1,2,3")
	assert.Empty(t, stmt.Wheres())
	assert.Empty(t, stmt.FirstTable())
}

func TestBuildStatement_NoStudy(t *testing.T) {
	stmt := compile(t, "nostudy")
	assert.Equal(t, []string{"training.dateAdded is null"}, stmt.Wheres())
}

func TestBuildStatement_LastTrainedUpperAdmitsNull(t *testing.T) {
	// "more than a week ago" keeps never-trained entries in the result.
	stmt := compile(t, "lasttrained:,7")
	weekAgo := utcDay(2024, time.May, 8)
	assert.Equal(t, []string{
		fmt.Sprintf("(training.dateLastTrain < %d or training.dateLastTrain is null)", weekAgo),
	}, stmt.Wheres())
}

func TestBuildStatement_MistakenWindow(t *testing.T) {
	stmt := compile(t, "mistaken:thisweek")
	monday := utcDay(2024, time.May, 13)
	assert.Equal(t, []string{
		fmt.Sprintf("training.dateLastMistake >= %d", monday),
	}, stmt.Wheres())
}

func TestBuildStatement_TagIntersection(t *testing.T) {
	stmt := compile(t, "tag:jlpt1", "tag:verb")

	assert.Equal(t, "taggedEntries", stmt.FirstTable())
	require.Len(t, stmt.Joins(), 1, "repeated tag joins are deduplicated")

	require.Len(t, stmt.Wheres(), 1)
	assert.Equal(t,
		`taggedEntries.id in (select id from taggedEntries where type = 2 and tagId in (select docid from tags where tag match '"jlpt1" OR "verb"') group by id having count(id) == 2)`,
		stmt.Wheres()[0])
}

func TestBuildStatement_TagCaseFoldDeduplication(t *testing.T) {
	stmt := compile(t, "tag:Verb", "tag:verb")

	require.Len(t, stmt.Wheres(), 1)
	assert.Equal(t,
		`taggedEntries.id in (select id from taggedEntries where type = 2 and tagId in (select docid from tags where tag match '"verb"') group by id having count(id) == 1)`,
		stmt.Wheres()[0])
}

func TestBuildStatement_TagStar(t *testing.T) {
	stmt := compile(t, "tag:*")
	assert.Equal(t, []string{"taggedEntries.date not null"}, stmt.Wheres())

	// A second "*" does not duplicate the predicate; real terms still match.
	stmt = compile(t, "tag:*,*,jlpt1")
	assert.Equal(t, []string{
		"taggedEntries.date not null",
		`taggedEntries.id in (select id from taggedEntries where type = 2 and tagId in (select docid from tags where tag match '"jlpt1"') group by id having count(id) == 1)`,
	}, stmt.Wheres())
}

func TestBuildStatement_TagBare(t *testing.T) {
	stmt := compile(t, "tag")
	assert.Equal(t, []string{"taggedEntries.date not null"}, stmt.Wheres())
}

func TestBuildStatement_Untagged(t *testing.T) {
	stmt := compile(t, "untagged")
	assert.Equal(t, []string{"taggedEntries.date is null"}, stmt.Wheres())
	require.Len(t, stmt.Joins(), 1)
	assert.Equal(t, "taggedEntries", stmt.Joins()[0].Table())
}

func TestBuildStatement_NoteTerms(t *testing.T) {
	stmt := compile(t, "note:foo,bar")

	assert.Equal(t, "notes", stmt.FirstTable())
	assert.Equal(t, []string{
		`notes.noteId in (select docid from notesText where note match '"foo" "bar"')`,
	}, stmt.Wheres())
}

func TestBuildStatement_NoteBare(t *testing.T) {
	stmt := compile(t, "note")
	assert.Equal(t, []string{"notes.dateAdded not null"}, stmt.Wheres())
}

func TestBuildStatement_UnknownCommandsAreReturned(t *testing.T) {
	c := NewCompiler(kindVocab)
	stmt := &sqlbuild.Statement{}

	leftover := c.BuildStatement([]Command{
		{Name: "score", Args: []string{"50"}},
		{Name: "word", Args: []string{"犬"}},
	}, stmt)

	require.Len(t, leftover, 1)
	assert.Equal(t, "word", leftover[0].Name)
	assert.Equal(t, []string{"training.score = 50"}, stmt.Wheres())
}

func TestBuildStatement_BaseTableFollowsPriorityNotOrder(t *testing.T) {
	// notes outranks taggedEntries regardless of which command came first.
	first := compile(t, "tag:jlpt1", "note:foo")
	second := compile(t, "note:foo", "tag:jlpt1")

	assert.Equal(t, "notes", first.FirstTable())
	assert.Equal(t, "notes", second.FirstTable())
}

func TestCanSort(t *testing.T) {
	c := NewCompiler(kindVocab)
	stmt := &sqlbuild.Statement{}

	assert.Equal(t, "training.dateAdded is null", c.CanSort("study", stmt).String())
	assert.Equal(t, "training.score", c.CanSort("score", stmt).String())
	assert.Equal(t, "0", c.CanSort("unknown", stmt).String())
}

func TestSetColumns(t *testing.T) {
	stmt := compile(t, "tag:jlpt1")

	c := NewCompiler(kindVocab)
	c.SetColumns(stmt)

	assert.True(t, stmt.Distinct())
	assert.Equal(t, "taggedEntries", stmt.FirstTable())
	assert.Equal(t, "taggedEntries.id", stmt.GroupBy())

	cols := stmt.Columns()
	require.Len(t, cols, 2)
	assert.Equal(t, "2", cols[0].String())
	assert.Equal(t, "taggedEntries.id", cols[1].String())

	// The training join is always present; the base table's own join is gone.
	require.Len(t, stmt.Joins(), 1)
	assert.Equal(t, "training", stmt.Joins()[0].Table())

	sql := stmt.SQL()
	assert.Contains(t, sql, "select distinct 2, taggedEntries.id from taggedEntries")
	assert.Contains(t, sql, "left join training on training.id = taggedEntries.id and training.type = 2")
	assert.Contains(t, sql, "group by taggedEntries.id")
}

func TestSetColumns_EmptySearchUsesTrainingBase(t *testing.T) {
	stmt := &sqlbuild.Statement{}
	c := NewCompiler(kindVocab)
	c.SetColumns(stmt)

	// With no command proposing a base, the only join becomes the base table.
	assert.Equal(t, "training", stmt.FirstTable())
	assert.Empty(t, stmt.Joins())
	assert.Equal(t,
		"select distinct 2, training.id from training group by training.id",
		stmt.SQL())
}
