package async

import (
	"errors"
	"fmt"
	"strings"
)

// FallbackMessage - сообщение для ошибок без человекочитаемого текста.
const FallbackMessage = "Something went wrong"

// Messager реализуют ошибки, несущие отдельное сообщение для пользователя
// (например, тело ошибки HTTP API).
type Messager interface {
	Message() string
}

// PanicError - паника внутри операции или колбэка успеха, перехваченная Tracker.
type PanicError struct {
	Value any
}

func (e *PanicError) Error() string {
	return fmt.Sprintf("panic: %v", e.Value)
}

func (e *PanicError) Unwrap() error {
	if err, ok := e.Value.(error); ok {
		return err
	}
	return nil
}

// Message нормализует сбой в человекочитаемое сообщение:
//  1. Messager в цепочке ошибок с непустым Message();
//  2. непустой error.Error() (для паники - только если паниковали ошибкой или строкой);
//  3. иначе FallbackMessage.
func Message(v any) string {
	switch x := v.(type) {
	case *PanicError:
		return Message(x.Value)
	case error:
		var m Messager
		if errors.As(x, &m) {
			if s := strings.TrimSpace(m.Message()); s != "" {
				return s
			}
		}

		var p *PanicError
		if errors.As(x, &p) {
			return Message(p.Value)
		}

		if s := strings.TrimSpace(x.Error()); s != "" {
			return s
		}
	case Messager:
		if s := strings.TrimSpace(x.Message()); s != "" {
			return s
		}
	case string:
		if s := strings.TrimSpace(x); s != "" {
			return s
		}
	}

	return FallbackMessage
}
