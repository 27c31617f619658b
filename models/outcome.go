package models

// Outcome records how a single skip-and-continue step resolved.
type Outcome struct {
	OK     bool
	Reason string
}

// Done is the successful outcome.
func Done() Outcome {
	return Outcome{OK: true}
}

// Skipped marks a step that was passed over with the reason why.
func Skipped(reason string) Outcome {
	return Outcome{Reason: reason}
}
