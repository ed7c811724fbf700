// Package key provides key types and Vim-style key notation.
//
// The modal core dispatches on keys written in Vim notation: printable
// characters stand for themselves ("d", "W", "0", " ") and everything else is
// bracketed ("<Esc>", "<C-r>", "<BS>"). Hosts that receive structured key
// presses (a terminal, a GUI toolkit) build an Event and convert it with
// Event.Notation.
//
// # Key Specifications
//
// Key specifications can be written in multiple formats:
//
//   - Simple keys: "a", "A", "1"
//   - With modifiers: "Ctrl+S", "Alt+F4"
//   - Vim-style: "<C-s>", "<A-f>", "<CR>", "<Esc>", "<lt>"
//
// # Key Sequences
//
// Split turns a continuous string such as "d2w<C-r>" into the individual
// keys ["d", "2", "w", "<C-r>"]; Join is its inverse.
//
// # Synthetic Keys
//
// Some keys are never typed: TimeoutFinished is posted when the
// disambiguation timer for buffered keys fires, Copy stands in for the
// platform copy gesture after aliasing.
package key
