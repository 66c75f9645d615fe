package crawler

// ItemOutcome records how a single product card fared during harvesting.
// Skips carry an explicit reason so the skip-vs-fatal policy stays visible
// to callers and tests instead of hiding inside error scopes.
type ItemOutcome struct {
	SrcID   string
	Name    string
	Skipped bool
	Reason  string
	Err     error
}

func okOutcome(srcID, name string) ItemOutcome {
	return ItemOutcome{SrcID: srcID, Name: name}
}

func skipOutcome(srcID, name, reason string, err error) ItemOutcome {
	return ItemOutcome{SrcID: srcID, Name: name, Skipped: true, Reason: reason, Err: err}
}

// CountSkipped returns the number of skipped outcomes.
func CountSkipped(outcomes []ItemOutcome) int {
	n := 0
	for _, o := range outcomes {
		if o.Skipped {
			n++
		}
	}
	return n
}
