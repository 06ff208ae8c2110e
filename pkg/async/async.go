// Package async оборачивает произвольную асинхронную операцию в наблюдаемый
// жизненный цикл {data, error, loading}.
//
// Tracker принадлежит одному месту вызова (форма отправки комментария, CLI-команда
// и т.п.): его состояние не разделяется между несвязанными вызывающими.
//
// Состояния:
//   - Idle - начальное: Loading=false, Error="";
//   - Pending - Loading=true; входим синхронно при вызове, до завершения операции;
//   - Settled - Loading=false; при успехе Data=результат и Error="", при ошибке
//     Error=нормализованное сообщение, Data сохраняет прежнее значение.
//
// Ошибки операции никогда не пробрасываются наружу из Trigger/Go: вызывающий
// получает (zero, false) и читает сообщение через Error().
package async

import (
	"context"
	"sync"
)

// Func - оборачиваемая операция. Несколько аргументов передаются одной структурой.
type Func[P, R any] func(ctx context.Context, params P) (R, error)

// State - снимок состояния жизненного цикла.
type State[R any] struct {
	Data    R
	HasData bool
	Error   string
	Loading bool
}

// Outcome - результат запуска через Go.
type Outcome[R any] struct {
	Result R
	OK     bool
}

// Tracker - конечный автомат Idle -> Pending -> Settled поверх Func.
//
// Параллельные вызовы не координируются: каждый завершившийся вызов перезаписывает
// Data/Error в порядке завершения (последний завершившийся побеждает).
// Loading=true, пока в полёте есть хотя бы один вызов.
type Tracker[P, R any] struct {
	fn        Func[P, R]
	onSuccess func(R)
	onError   func(error)
	message   func(any) string

	mu       sync.Mutex
	inflight int
	data     R
	hasData  bool
	errMsg   string
}

// New создаёт Tracker для операции fn в состоянии Idle.
func New[P, R any](fn Func[P, R]) *Tracker[P, R] {
	return &Tracker[P, R]{
		fn:      fn,
		message: Message,
	}
}

// WithOnSuccess задаёт колбэк, вызываемый с результатом успешной операции.
// Настраивать Tracker нужно до первого вызова.
func (t *Tracker[P, R]) WithOnSuccess(fn func(R)) *Tracker[P, R] {
	t.onSuccess = fn
	return t
}

// WithOnError задаёт колбэк, получающий «сырую» ошибку операции.
func (t *Tracker[P, R]) WithOnError(fn func(error)) *Tracker[P, R] {
	t.onError = fn
	return t
}

// WithMessage подменяет политику нормализации ошибок (по умолчанию Message).
func (t *Tracker[P, R]) WithMessage(fn func(any) string) *Tracker[P, R] {
	if fn != nil {
		t.message = fn
	}
	return t
}

// Trigger синхронно переводит автомат в Pending, выполняет операцию и возвращает
// её результат. При ошибке возвращает (zero, false); ошибка доступна через Error().
func (t *Tracker[P, R]) Trigger(ctx context.Context, params P) (R, bool) {
	t.begin()
	return t.run(ctx, params)
}

// Go синхронно переводит автомат в Pending и выполняет операцию в отдельной
// горутине. Канал получает ровно один Outcome и закрывается.
func (t *Tracker[P, R]) Go(ctx context.Context, params P) <-chan Outcome[R] {
	t.begin()

	out := make(chan Outcome[R], 1)
	go func() {
		defer close(out)
		res, ok := t.run(ctx, params)
		out <- Outcome[R]{Result: res, OK: ok}
	}()

	return out
}

// State возвращает согласованный снимок состояния.
func (t *Tracker[P, R]) State() State[R] {
	t.mu.Lock()
	defer t.mu.Unlock()

	return State[R]{
		Data:    t.data,
		HasData: t.hasData,
		Error:   t.errMsg,
		Loading: t.inflight > 0,
	}
}

// Data возвращает последний успешный результат.
func (t *Tracker[P, R]) Data() (R, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()

	return t.data, t.hasData
}

// Error возвращает нормализованное сообщение последней ошибки ("" - ошибки нет).
func (t *Tracker[P, R]) Error() string {
	t.mu.Lock()
	defer t.mu.Unlock()

	return t.errMsg
}

// Loading сообщает, выполняется ли сейчас хотя бы один вызов.
func (t *Tracker[P, R]) Loading() bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	return t.inflight > 0
}

func (t *Tracker[P, R]) begin() {
	t.mu.Lock()
	t.inflight++
	t.errMsg = ""
	t.mu.Unlock()
}

func (t *Tracker[P, R]) end() {
	t.mu.Lock()
	t.inflight--
	t.mu.Unlock()
}

func (t *Tracker[P, R]) run(ctx context.Context, params P) (R, bool) {
	defer t.end()

	res, err := t.call(ctx, params)
	if err != nil {
		t.fail(err)

		var zero R
		return zero, false
	}

	return res, true
}

// call выполняет операцию и колбэк успеха; паника в любом из них превращается в ошибку.
func (t *Tracker[P, R]) call(ctx context.Context, params P) (res R, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			err = &PanicError{Value: rec}
		}
	}()

	res, err = t.fn(ctx, params)
	if err != nil {
		return res, err
	}

	t.mu.Lock()
	t.data = res
	t.hasData = true
	t.errMsg = ""
	t.mu.Unlock()

	if t.onSuccess != nil {
		t.onSuccess(res)
	}

	return res, nil
}

func (t *Tracker[P, R]) fail(err error) {
	if t.onError != nil {
		func() {
			defer func() { _ = recover() }()
			t.onError(err)
		}()
	}

	msg := t.message(err)
	if msg == "" {
		msg = FallbackMessage
	}

	t.mu.Lock()
	t.errMsg = msg
	t.mu.Unlock()
}
