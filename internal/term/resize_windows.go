//go:build windows

package term

// Windows has no SIGWINCH; resizes are picked up on the next size query.
func notifyResize(ch chan<- struct{}, stop <-chan struct{}) {}
