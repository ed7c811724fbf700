package modehandler

// Status is the outcome kind of processing keys.
type Status uint8

const (
	// Applied means the keys were processed; a domain error may still have
	// cancelled the command.
	Applied Status = iota
	// Aborted means a remap replay must stop.
	Aborted
)

// Result is returned at every replay frame so an abort unwinds visibly.
type Result struct {
	Status Status
	Reason string
}

// Done is the Applied result.
func Done() Result {
	return Result{Status: Applied}
}

// Abort returns an Aborted result.
func Abort(reason string) Result {
	return Result{Status: Aborted, Reason: reason}
}

// IsAborted reports whether r stops the enclosing replay.
func (r Result) IsAborted() bool {
	return r.Status == Aborted
}

func (s Status) String() string {
	if s == Aborted {
		return "aborted"
	}
	return "applied"
}
