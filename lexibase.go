// Package lexibase provides the embedded core of a dictionary study
// application: an identity cache that guarantees a single live,
// reference-counted instance per entry, and a compiler that turns the
// textual search language into a relational statement for the backing
// store.
//
// # Quick start
//
//	ctx := context.Background()
//	lx, err := lexibase.New[*myapp.Entry](
//	    cache.LoaderFunc[*myapp.Entry](loadFromDB),
//	    lexibase.WithCacheSize(200),
//	)
//	if err != nil {
//	    panic(err)
//	}
//
//	h, err := lx.Acquire(ctx, entry.NewRef(kindVocab, 42))
//	if err != nil {
//	    // errors.Is(err, lexibase.ErrNotFound)
//	}
//	defer h.Release()
//
//	compiled, err := lx.CompileSearch(ctx, kindVocab, []string{"tag:jlpt1", "score:80,100"})
//	if err != nil {
//	    // errors.Is(err, lexibase.ErrInvalidSearch)
//	}
//	rows := store.Query(compiled.Statement.SQL())
//
// All entry loading must go through the cache; that rule is what makes the
// single-instance guarantee hold. The compiled statement is handed to an
// external execution engine, it is never executed here.
package lexibase

import (
	"context"
	"time"

	"github.com/RoaringBitmap/roaring/v2"

	"github.com/lexibase/lexibase/cache"
	"github.com/lexibase/lexibase/entry"
	"github.com/lexibase/lexibase/search"
	"github.com/lexibase/lexibase/sqlbuild"
	"github.com/lexibase/lexibase/textindex"
)

// Lexibase ties the entry cache and the search compiler together with
// logging, metrics and the text-search facility behind full-text match
// sub-queries.
type Lexibase[T any] struct {
	cache   *cache.Cache[T]
	parser  *search.Parser
	tags    *textindex.Index
	notes   *textindex.Index
	logger  *Logger
	metrics MetricsCollector
	now     func() time.Time
}

// New creates a Lexibase instance backed by the given loader.
func New[T any](loader cache.Loader[T], optFns ...Option) (*Lexibase[T], error) {
	opts := applyOptions(optFns)

	if opts.throttle != nil {
		loader = cache.NewThrottledLoader(loader, *opts.throttle)
	}

	lx := &Lexibase[T]{
		parser: search.NewParser(func(o *search.ParserOptions) {
			o.Word = opts.word
		}),
		tags:    textindex.New(),
		notes:   textindex.New(),
		logger:  opts.logger,
		metrics: opts.metrics,
		now:     opts.now,
	}

	lx.cache = cache.New(loader, func(o *cache.Options[T]) {
		o.Capacity = opts.cacheSize
		o.OnEvict = func(ref entry.Ref, _ T) {
			lx.metrics.RecordEvict()
			lx.logger.LogEvict(ref)
		}
	})

	return lx, nil
}

// Acquire returns a handle to the single live record for ref, loading it
// through the cache if necessary. The handle must be released exactly once.
func (lx *Lexibase[T]) Acquire(ctx context.Context, ref entry.Ref) (*cache.Handle[T], error) {
	start := time.Now()
	hit := lx.cache.Contains(ref)

	h, err := lx.cache.Acquire(ctx, ref)
	err = translateError(err)

	lx.metrics.RecordAcquire(hit, time.Since(start), err)
	lx.logger.LogAcquire(ctx, ref, err)
	return h, err
}

// SetCacheSize changes the retention bound of the entry cache at runtime.
// Lowering it evicts immediately down to the new bound.
func (lx *Lexibase[T]) SetCacheSize(n int) {
	lx.cache.SetCapacity(n)
	lx.logger.LogCacheResize(n)
}

// CacheSize returns the current retention bound.
func (lx *Lexibase[T]) CacheSize() int {
	return lx.cache.Capacity()
}

// CacheStats returns a snapshot of the cache counters.
func (lx *Lexibase[T]) CacheStats() cache.Stats {
	return lx.cache.Stats()
}

// CompiledSearch is the result of compiling a search: the statement for the
// execution engine plus the commands the compiler did not understand, which
// the caller may hand to another compiler or report.
type CompiledSearch struct {
	Statement *sqlbuild.Statement
	Unhandled []search.Command
}

// CompileSearch parses the search tokens and compiles them into a statement
// scoped to the given entry kind. A token outside the command vocabulary
// that no word recognizer accepts rejects the whole search with
// ErrInvalidSearch.
func (lx *Lexibase[T]) CompileSearch(ctx context.Context, kind entry.Kind, tokens []string) (*CompiledSearch, error) {
	start := time.Now()

	commands, err := lx.parser.Parse(tokens)
	if err != nil {
		err = translateError(err)
		lx.metrics.RecordCompile(time.Since(start), err)
		lx.logger.LogCompile(ctx, len(tokens), 0, 0, err)
		return nil, err
	}

	compiler := search.NewCompiler(kind, func(o *search.CompilerOptions) {
		o.Now = lx.now
	})

	stmt := &sqlbuild.Statement{}
	unhandled := compiler.BuildStatement(commands, stmt)
	compiler.SetColumns(stmt)

	lx.metrics.RecordCompile(time.Since(start), nil)
	lx.logger.LogCompile(ctx, len(tokens), len(stmt.Wheres()), len(unhandled), nil)

	return &CompiledSearch{Statement: stmt, Unhandled: unhandled}, nil
}

// SortColumn resolves a named sort key to a comparable column for the given
// kind. Unknown names resolve to a constant column, leaving the order
// stable.
func (lx *Lexibase[T]) SortColumn(kind entry.Kind, name string, stmt *sqlbuild.Statement) sqlbuild.Column {
	compiler := search.NewCompiler(kind)
	return compiler.CanSort(name, stmt)
}

// IndexTags indexes an entry's tags for full-text matching.
func (lx *Lexibase[T]) IndexTags(id uint32, text string) {
	lx.tags.Add(id, text)
}

// IndexNote indexes an entry's note text for full-text matching.
func (lx *Lexibase[T]) IndexNote(id uint32, text string) {
	lx.notes.Add(id, text)
}

// MatchTags evaluates a tag match query (union semantics) against the tag
// index. The query is the form the compiled statement embeds in its tag
// sub-query.
func (lx *Lexibase[T]) MatchTags(query string) *roaring.Bitmap {
	return lx.tags.Match(query)
}

// MatchAllTags evaluates intersection semantics over the query terms,
// mirroring the count-equals-terms predicate of compiled tag searches.
func (lx *Lexibase[T]) MatchAllTags(query string) *roaring.Bitmap {
	return lx.tags.MatchAll(query)
}

// MatchNotes evaluates a note match query (union semantics) against the
// note index.
func (lx *Lexibase[T]) MatchNotes(query string) *roaring.Bitmap {
	return lx.notes.Match(query)
}

// TagIndex exposes the tag text index, e.g. for snapshot persistence.
func (lx *Lexibase[T]) TagIndex() *textindex.Index {
	return lx.tags
}

// NoteIndex exposes the note text index, e.g. for snapshot persistence.
func (lx *Lexibase[T]) NoteIndex() *textindex.Index {
	return lx.notes
}
