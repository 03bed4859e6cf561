package serial

import (
	"errors"
	"fmt"
	"io"
	"testing"
)

func TestErrorKindMatching(t *testing.T) {
	tests := []struct {
		err     error
		target  error
		matches bool
	}{
		{&Error{Kind: KindNoDevice, Op: "open"}, ErrDeviceNotFound, true},
		{closedError("read"), ErrDeviceNotFound, true},
		{closedError("read"), ErrPortClosed, true},
		{invalidInput("configure", "bad"), ErrInvalidInput, true},
		{invalidInput("configure", "bad"), ErrDeviceNotFound, false},
		{&Error{Kind: KindIO, Op: "read", Err: io.ErrUnexpectedEOF}, ErrIO, true},
		{&Error{Kind: KindIO, Op: "read", Err: io.ErrUnexpectedEOF}, io.ErrUnexpectedEOF, true},
		{&Error{Kind: KindUnknown, Op: "set comm state"}, ErrUnknown, true},
		{fmt.Errorf("wrapped: %w", closedError("write")), ErrDeviceNotFound, true},
	}

	for _, tt := range tests {
		if got := errors.Is(tt.err, tt.target); got != tt.matches {
			t.Errorf("errors.Is(%v, %v) = %v, expected %v", tt.err, tt.target, got, tt.matches)
		}
	}
}

func TestKindOf(t *testing.T) {
	if KindOf(closedError("x")) != KindNoDevice {
		t.Error("Expected KindNoDevice for closed port")
	}
	if KindOf(fmt.Errorf("ctx: %w", invalidInput("x", "y"))) != KindInvalidInput {
		t.Error("Expected KindInvalidInput through wrapping")
	}
	if KindOf(io.EOF) != KindIO {
		t.Error("Expected foreign errors to be KindIO")
	}
	if KindOf(nil) != KindUnknown {
		t.Error("Expected KindUnknown for nil")
	}
}

func TestOSErrorWithoutCause(t *testing.T) {
	err := osError("get comm state", nil)
	if KindOf(err) != KindUnknown {
		t.Errorf("Expected KindUnknown, got %v", KindOf(err))
	}
	if err.Error() != "serial: get comm state: unknown" {
		t.Errorf("Unexpected message %q", err.Error())
	}
}

func TestOSErrorKeepsClassifiedErrors(t *testing.T) {
	inner := invalidInput("configure", "1.5 stop bits")
	if got := osError("open", inner); got != inner {
		t.Errorf("osError re-wrapped an *Error: %v", got)
	}
}
