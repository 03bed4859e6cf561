//go:build !linux && !windows

package serial

func openNativeDevice(path string) (device, error) {
	return nil, &Error{Kind: KindUnknown, Op: "open " + path, Err: ErrNotImplemented}
}
