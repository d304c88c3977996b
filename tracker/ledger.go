package tracker

import "sort"

// Prune drops every entry above limit from an ascending-sorted ledger and
// returns the retained prefix. The result aliases the input's backing array,
// so callers use it append-style: ledger = Prune(ledger, limit). Behaviour
// on an unsorted ledger is undefined; Prune never sorts.
func Prune(ledger []uint64, limit uint64) []uint64 {
	n := sort.Search(len(ledger), func(i int) bool {
		return ledger[i] > limit
	})
	return ledger[:n]
}

// Retire is the complement of Prune: it drops every entry at or below limit
// and returns the remaining suffix. Used to drop tracked entries once they
// fall behind a finality cutoff. Same preconditions as Prune.
func Retire(ledger []uint64, limit uint64) []uint64 {
	n := sort.Search(len(ledger), func(i int) bool {
		return ledger[i] > limit
	})
	return ledger[n:]
}
