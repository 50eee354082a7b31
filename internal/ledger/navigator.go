package ledger

import "sort"

// AdjacentDates locates the lesson dates immediately before and after
// ref within the class's recorded dates. If ref itself has no scores
// yet it is slotted in without being persisted, so navigation works for
// a lesson that is being created right now. Either neighbour may be nil
// at the ends of the sequence.
func AdjacentDates(dates []string, ref string) (prev, next *string) {
	all := make([]string, 0, len(dates)+1)
	seen := false
	for _, d := range dates {
		if d == ref {
			seen = true
		}
		all = append(all, d)
	}
	if !seen {
		all = append(all, ref)
	}
	sort.Strings(all)

	idx := sort.SearchStrings(all, ref)
	if idx > 0 {
		p := all[idx-1]
		prev = &p
	}
	if idx+1 < len(all) {
		n := all[idx+1]
		next = &n
	}
	return prev, next
}
