// Package document provides the document accessor used by the modal core and
// a line-oriented in-memory buffer that implements it.
//
// The core never owns document content. Every query it makes goes through the
// Document interface against a snapshot that stays immutable for the duration
// of one key:
//
//	buf := document.NewBufferFromString("hello\nworld")
//	snap := buf.Snapshot()
//	snap.LineLength(1)             // 5
//	snap.Clamp(cursor.Pos(9, 9))   // (1:5)
//
// Columns count runes, not bytes.
//
// Thread Safety:
//
// Buffer methods are safe for concurrent use. Snapshots are immutable.
package document
