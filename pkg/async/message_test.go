package async

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
)

type userErr struct{ msg string }

func (e *userErr) Error() string   { return "api: " + e.msg }
func (e *userErr) Message() string { return e.msg }

type onlyMessage struct{}

func (onlyMessage) Message() string { return "from messager" }

func TestMessage(t *testing.T) {
	tcs := []struct {
		name string
		in   any
		want string
	}{
		{"nil", nil, FallbackMessage},
		{"plain error", errors.New("store down"), "store down"},
		{"empty error", errors.New("  "), FallbackMessage},
		{"messager preferred", &userErr{msg: "body is required"}, "body is required"},
		{"wrapped messager", fmt.Errorf("submit: %w", &userErr{msg: "postId is required"}), "postId is required"},
		{"messager with empty message", &userErr{}, "api:"},
		{"non-error messager", onlyMessage{}, "from messager"},
		{"string", "boom", "boom"},
		{"empty string", "", FallbackMessage},
		{"int", 42, FallbackMessage},
		{"panic with error", &PanicError{Value: errors.New("inner")}, "inner"},
		{"panic with int", &PanicError{Value: 1}, FallbackMessage},
		{"wrapped panic", fmt.Errorf("x: %w", &PanicError{Value: "oops"}), "oops"},
	}

	for _, tc := range tcs {
		t.Run(tc.name, func(t *testing.T) {
			require.Equal(t, tc.want, Message(tc.in))
		})
	}
}
