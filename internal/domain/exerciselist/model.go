// Package exerciselist reconciles a locally edited exercise list against
// server snapshots without discarding edits that have not round-tripped yet.
package exerciselist

import (
	"slices"
	"strconv"
	"strings"

	"fitdash/internal/domain/program"
)

// Fingerprint identifies the id set of an exercise list, independent of order.
type Fingerprint string

// FingerprintOf returns the fingerprint of the exercises' id set.
func FingerprintOf(exercises []program.Exercise) Fingerprint {
	ids := make([]int64, 0, len(exercises))
	for _, e := range exercises {
		ids = append(ids, e.ExerciseID)
	}
	slices.Sort(ids)
	ids = slices.Compact(ids)

	parts := make([]string, len(ids))
	for i, id := range ids {
		parts[i] = strconv.FormatInt(id, 10)
	}
	return Fingerprint(strings.Join(parts, ","))
}

// List is the reconciliation state for one program's exercises.
// INVARIANT: fingerprint changes only in Sync, when no local mutation is pending
// and the snapshot's id set differs from the last accepted one.
// List is not safe for concurrent use; callers serialise access.
type List struct {
	items       []program.Exercise
	fingerprint Fingerprint
	pending     bool
}

// New creates a List whose first server snapshot is initial.
func New(initial []program.Exercise) *List {
	return &List{
		items:       slices.Clone(initial),
		fingerprint: FingerprintOf(initial),
	}
}

// Sync offers a server snapshot to the list.
// PRE: snapshot is the server's current view of the program's exercises
// POST: If a local mutation was pending, the flag is cleared and the snapshot discarded.
// Otherwise the snapshot replaces local state when its id set differs from the fingerprint.
// Returns true when local state was replaced.
func (l *List) Sync(snapshot []program.Exercise) bool {
	if l.pending {
		l.pending = false
		return false
	}
	fp := FingerprintOf(snapshot)
	if fp == l.fingerprint {
		return false
	}
	l.items = slices.Clone(snapshot)
	l.fingerprint = fp
	return true
}

// Add appends an exercise to local state and marks a local mutation.
func (l *List) Add(e program.Exercise) {
	l.items = append(l.items, e)
	l.pending = true
}

// Replace swaps the exercise with the same id and marks a local mutation.
// Returns false, leaving state untouched, when no exercise has that id.
func (l *List) Replace(e program.Exercise) bool {
	i := l.index(e.ExerciseID)
	if i < 0 {
		return false
	}
	l.items[i] = e
	l.pending = true
	return true
}

// Remove drops the exercise with the given id and marks a local mutation.
// Returns false when no exercise has that id.
func (l *List) Remove(id int64) bool {
	i := l.index(id)
	if i < 0 {
		return false
	}
	l.items = slices.Delete(l.items, i, i+1)
	l.pending = true
	return true
}

// Get returns the exercise with the given id.
func (l *List) Get(id int64) (program.Exercise, bool) {
	i := l.index(id)
	if i < 0 {
		return program.Exercise{}, false
	}
	return l.items[i], true
}

// Items returns a copy of the local list in order.
func (l *List) Items() []program.Exercise {
	return slices.Clone(l.items)
}

// Pending reports whether a local mutation is waiting to be confirmed by a snapshot.
func (l *List) Pending() bool {
	return l.pending
}

// Fingerprint returns the id-set fingerprint of the last accepted server snapshot.
func (l *List) Fingerprint() Fingerprint {
	return l.fingerprint
}

func (l *List) index(id int64) int {
	return slices.IndexFunc(l.items, func(e program.Exercise) bool {
		return e.ExerciseID == id
	})
}
