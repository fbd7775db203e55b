package eventloop

import (
	"errors"
	"io"
	"testing"
)

func TestPanicError_Error(t *testing.T) {
	tests := []struct {
		name string
		err  PanicError
		want string
	}{
		{
			name: "string value",
			err:  PanicError{Value: "boom"},
			want: "eventloop: panic: boom",
		},
		{
			name: "error value",
			err:  PanicError{Value: io.EOF},
			want: "eventloop: panic: EOF",
		},
		{
			name: "nil value",
			err:  PanicError{},
			want: "eventloop: panic: <nil>",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.err.Error(); got != tt.want {
				t.Errorf("Error() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestPanicError_Unwrap(t *testing.T) {
	var err error = PanicError{Value: io.EOF}
	if !errors.Is(err, io.EOF) {
		t.Error("errors.Is should find the wrapped error")
	}

	err = PanicError{Value: 42}
	if errors.Unwrap(err) != nil {
		t.Error("non-error values should not unwrap")
	}

	var pe PanicError
	if !errors.As(err, &pe) || pe.Value != 42 {
		t.Errorf("errors.As failed: %#v", pe)
	}
}
