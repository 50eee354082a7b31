package ledger

// ComputeStreaks walks lesson dates in ascending order counting
// consecutive present dates. The returned current streak is the run
// ending at the most recent evaluated lesson, so a final absence
// resets it to zero.
func ComputeStreaks(lessonDates []string, presentDates map[string]bool) (longest, current int) {
	for _, d := range lessonDates {
		if presentDates[d] {
			current++
			if current > longest {
				longest = current
			}
		} else {
			current = 0
		}
	}
	return longest, current
}
