package timex

import "time"

// Period returns the duration of one cycle at freqHz.
// freqHz==0 is coerced to 1 to avoid division by zero.
func Period(freqHz uint32) time.Duration {
	if freqHz == 0 {
		freqHz = 1
	}
	return time.Second / time.Duration(freqHz)
}

// Sleeper is the sleep hook drivers take so tests can observe delays.
type Sleeper func(time.Duration)

// Or returns s, or time.Sleep when s is nil.
func (s Sleeper) Or() Sleeper {
	if s == nil {
		return time.Sleep
	}
	return s
}
