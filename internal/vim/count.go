package vim

import "math"

// maxCount caps typed counts instead of overflowing.
const maxCount = math.MaxInt32

// AccumulateDigit appends a typed digit to a count.
// '0' cannot start a count; it is reported as not accepted.
func AccumulateDigit(count int, digit string) (int, bool) {
	if len(digit) != 1 || digit[0] < '0' || digit[0] > '9' {
		return count, false
	}
	d := int(digit[0] - '0')
	if count == 0 && d == 0 {
		return count, false
	}
	if count > (maxCount-d)/10 {
		return maxCount, true
	}
	return count*10 + d, true
}

// CountInProgress reports whether s has a partially typed count.
func CountInProgress(s *State, _ []string) bool {
	return s.Recorded.Count > 0
}

// NoCountInProgress reports whether no count is being typed.
func NoCountInProgress(s *State, _ []string) bool {
	return s.Recorded.Count == 0
}

// NoOperatorPending reports whether no operator awaits a motion.
func NoOperatorPending(s *State, _ []string) bool {
	return !s.Recorded.HasPendingOperator()
}
