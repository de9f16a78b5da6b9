package tracker

import "time"

// Timed runs fn and returns its result together with the elapsed wall time.
func Timed[T any](fn func() (T, error)) (T, time.Duration, error) {
	start := time.Now()
	v, err := fn()
	return v, time.Since(start), err
}
