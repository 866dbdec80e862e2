package sqlbuild

import "sync"

// JoinType selects the join flavor.
type JoinType int

const (
	// LeftJoin keeps rows of the base table without a match.
	LeftJoin JoinType = iota
	// InnerJoin keeps only matched rows.
	InnerJoin
)

// String renders the join keyword.
func (t JoinType) String() string {
	if t == InnerJoin {
		return "join"
	}
	return "left join"
}

// Join describes a join to another table. Key is the join-key column on the
// joined table; it is matched against the same-named column of the base
// table. On is an extra condition anded into the join clause.
type Join struct {
	Key  Column
	On   string
	Type JoinType
}

// NewJoin creates a join on the given key column with an extra condition.
func NewJoin(key Column, on string, typ JoinType) Join {
	return Join{Key: key, On: on, Type: typ}
}

// Table returns the joined table.
func (j Join) Table() string {
	return j.Key.Table
}

// Priority returns the registered priority of the joined table.
func (j Join) Priority() int {
	return TablePriority(j.Table())
}

var (
	prioMu          sync.RWMutex
	tablePriorities = make(map[string]int)
)

// RegisterTablePriority records the priority used to pick a statement's base
// table during auto-join resolution. Higher priority wins. Registering a
// table that already has a priority is a no-op, so process-wide
// initialization may safely run more than once.
func RegisterTablePriority(table string, priority int) {
	prioMu.Lock()
	defer prioMu.Unlock()
	if _, ok := tablePriorities[table]; ok {
		return
	}
	tablePriorities[table] = priority
}

// TablePriority returns the registered priority of a table, or 0 when the
// table is unknown.
func TablePriority(table string) int {
	prioMu.RLock()
	defer prioMu.RUnlock()
	return tablePriorities[table]
}
