package reconcile

import (
	"sort"

	"github.com/samber/lo"
)

// Row is what a view displays for one entry.
type Row struct {
	Name      string
	Code      string
	Remaining uint64
	Invalid   bool
}

// View is a name-indexed set of rows that Diff output can be applied to.
// It is not safe for concurrent use; each consumer owns its own View.
type View struct {
	rows map[string]Row
}

// NewView returns an empty View.
func NewView() *View {
	return &View{rows: make(map[string]Row)}
}

// Apply applies ops in order. Removing an absent row is a no-op.
func (v *View) Apply(ops []Op) {
	for _, op := range ops {
		switch op.Kind {
		case Upsert:
			v.rows[op.Name] = Row{
				Name:      op.Name,
				Code:      op.Code,
				Remaining: op.Remaining,
				Invalid:   op.Err != nil,
			}
		case Remove:
			delete(v.rows, op.Name)
		}
	}
}

// Names returns the rendered names in sorted order.
func (v *View) Names() []string {
	names := lo.Keys(v.rows)
	sort.Strings(names)
	return names
}

// Rows returns the rows sorted by name.
func (v *View) Rows() []Row {
	rows := lo.Values(v.rows)
	sort.Slice(rows, func(i, j int) bool { return rows[i].Name < rows[j].Name })
	return rows
}

// Row returns the row for name.
func (v *View) Row(name string) (Row, bool) {
	r, ok := v.rows[name]
	return r, ok
}

// Len returns the number of rows.
func (v *View) Len() int {
	return len(v.rows)
}
