package panicerr

import "runtime/debug"

// Catch calls f on the current goroutine, converting any panic into a non-nil
// error return. Errors passed to panic remain reachable through errors.As.
func Catch(name string, f func() error) (err error) {
	defer func() {
		if e := recover(); e != nil {
			err = panicError{name, e, debug.Stack()}
		}
	}()
	return f()
}

// Recover runs f in a new goroutine, converting any panic or runtime.Goexit
// into a non-nil error return.
func Recover(name string, f func() error) error {
	errch := make(chan error, 1)
	go func() {
		defer close(errch)
		defer func() {
			select {
			case errch <- exitError(name):
			default:
				// the normal path already sent a (maybe nil) result
			}
		}()
		errch <- Catch(name, f)
	}()
	return <-errch
}
