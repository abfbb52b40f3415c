// Package reconcile computes the row operations that bring a rendered list
// of codes in line with the credential store.
//
// Rows are identified by entry name, never by position, so a view can keep
// its own index and update rows in place instead of rebuilding the list on
// every tick.
package reconcile

import (
	"sort"

	"github.com/samber/lo"

	"github.com/semmy-space/auth/internal/totp"
)

// InvalidCode is shown in place of a code when an entry's secret cannot be
// decoded.
const InvalidCode = "invalid"

// Kind tells a view what to do with a row.
type Kind uint8

const (
	// Upsert creates the row or refreshes its code and countdown.
	Upsert Kind = iota + 1
	// Remove deletes the row.
	Remove
)

func (k Kind) String() string {
	switch k {
	case Upsert:
		return "upsert"
	case Remove:
		return "remove"
	default:
		return "unknown"
	}
}

// Op is a single row operation.
type Op struct {
	Kind      Kind
	Name      string
	Code      string
	Remaining uint64
	// Err is set on an Upsert whose secret failed to decode; Code is then
	// InvalidCode.
	Err error
}

// CodeSource derives the current code for a secret.
type CodeSource interface {
	Code(secret string, unixTime uint64) (string, error)
}

// Diff returns the operations for one refresh at unixTime.
//
// Every entry outside editing yields an Upsert; every rendered name that is
// no longer an entry yields a Remove. Names in editing yield nothing at all,
// so a row under rename keeps whatever the user has typed. Upserts come
// first, each group sorted by name, which makes the result a pure function
// of its inputs.
func Diff(entries map[string]string, rendered []string, editing map[string]struct{}, unixTime uint64, src CodeSource) []Op {
	remaining := totp.Remaining(unixTime)

	names := lo.Keys(entries)
	sort.Strings(names)

	ops := make([]Op, 0, len(names))
	for _, name := range names {
		if _, busy := editing[name]; busy {
			continue
		}
		op := Op{Kind: Upsert, Name: name, Remaining: remaining}
		code, err := src.Code(entries[name], unixTime)
		if err != nil {
			op.Code = InvalidCode
			op.Err = err
		} else {
			op.Code = code
		}
		ops = append(ops, op)
	}

	stale := lo.Uniq(lo.Filter(rendered, func(name string, _ int) bool {
		_, present := entries[name]
		_, busy := editing[name]
		return !present && !busy
	}))
	sort.Strings(stale)
	for _, name := range stale {
		ops = append(ops, Op{Kind: Remove, Name: name})
	}

	return ops
}
