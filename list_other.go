//go:build !linux && !windows

package serial

func nativePortEntries() ([]portEntry, error) {
	return nil, &Error{Kind: KindUnknown, Op: "enumerate ports", Err: ErrNotImplemented}
}

func samePath(a, b string) bool { return a == b }
