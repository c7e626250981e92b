package render

import (
	"context"
	"errors"
	"sync"

	"go.uber.org/zap"
)

var ErrLoaderClosed = errors.New("render loader is closed")

// EngineFactory создаёт движок рендеринга. Вызывается максимум один раз
// на успешную инициализацию.
type EngineFactory func() (Engine, error)

// Loader лениво инициализирует движок рендеринга ровно один раз на процесс.
// Повторные вызовы возвращают готовый движок, параллельные вызовы ждут одну
// общую инициализацию. После неудачной попытки следующий вызов начинает новую:
// временный сбой загрузки не кэшируется навсегда.
type Loader struct {
	factory EngineFactory
	logger  *zap.Logger

	mu     sync.Mutex
	engine Engine
	load   *loadAttempt
	closed bool
}

// loadAttempt одна инициализация, разделяемая всеми ожидающими
type loadAttempt struct {
	done   chan struct{}
	engine Engine
	err    error
}

// NewLoader создаёт загрузчик движка рендеринга
func NewLoader(factory EngineFactory, logger *zap.Logger) *Loader {
	return &Loader{
		factory: factory,
		logger:  logger,
	}
}

// Engine возвращает движок, инициализируя его при первом обращении.
// Отмена контекста прерывает только ожидание вызвавшего: общая инициализация
// продолжается, и её результат достаётся остальным.
func (l *Loader) Engine(ctx context.Context) (Engine, error) {
	l.mu.Lock()
	if l.closed {
		l.mu.Unlock()
		return nil, ErrLoaderClosed
	}
	if l.engine != nil {
		l.mu.Unlock()
		return l.engine, nil
	}
	attempt := l.load
	if attempt == nil {
		attempt = &loadAttempt{done: make(chan struct{})}
		l.load = attempt
		go l.run(attempt)
	}
	l.mu.Unlock()

	select {
	case <-attempt.done:
		return attempt.engine, attempt.err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// run выполняет единственную инициализацию и раздаёт результат ожидающим
func (l *Loader) run(attempt *loadAttempt) {
	engine, err := l.factory()

	l.mu.Lock()
	closed := l.closed
	if err == nil && !closed {
		l.engine = engine
	}
	// Сбрасываем попытку: после сбоя следующий вызов запустит новую
	l.load = nil
	l.mu.Unlock()

	if closed && engine != nil {
		_ = engine.Close()
		engine, err = nil, ErrLoaderClosed
	}

	attempt.engine = engine
	attempt.err = err
	close(attempt.done)

	if err != nil {
		l.logger.Error("render engine initialization failed", zap.Error(err))
		return
	}
	l.logger.Info("render engine initialized")
}

// Close закрывает загрузчик и движок, если тот был создан
func (l *Loader) Close() error {
	l.mu.Lock()
	l.closed = true
	engine := l.engine
	l.engine = nil
	l.mu.Unlock()

	if engine != nil {
		return engine.Close()
	}
	return nil
}
