//go:build !linux && !windows

package serial

func classify(err error) ErrorKind {
	return KindIO
}

func isBusy(err error) bool {
	return false
}
