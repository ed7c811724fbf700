// Package history provides change tracking and undo/redo for one document.
//
// The Tracker works by checkpoints rather than by recording every edit. The
// modal core calls AddChange after each action; when the document text differs
// from the last checkpoint, the difference joins the open undo step.
// FinishCurrentStep closes the step, so everything between two
// FinishCurrentStep calls undoes together:
//
//	tr := history.NewTracker(buf, 1000)
//	// ... edits ...
//	tr.AddChange(cursorStops)
//	// ... more edits ...
//	tr.AddChange(cursorStops)
//	tr.FinishCurrentStep() // one undo step for both
//
// IgnoreChange absorbs the current text into the checkpoint without recording
// it, for content the user should not be able to undo into (a reload, or the
// result of undo itself).
//
// # Marks
//
// The tracker also keeps named marks. The "." mark is updated on every
// recorded change and points at the primary cursor after it.
package history
