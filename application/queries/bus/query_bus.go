package bus

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"sync"
	"time"

	"peoplenet/pkg/observability"

	"go.uber.org/zap"
)

// Query represents a read-only query
type Query interface {
	Validate() error
}

// QueryHandler handles a specific query type
type QueryHandler interface {
	Handle(ctx context.Context, query Query) (interface{}, error)
}

// QueryBus dispatches queries to their handlers
type QueryBus struct {
	handlers    map[reflect.Type]QueryHandler
	middlewares []Middleware
	mu          sync.RWMutex
}

// NewQueryBus creates a new query bus; middlewares wrap every handler
func NewQueryBus(middlewares ...Middleware) *QueryBus {
	return &QueryBus{
		handlers:    make(map[reflect.Type]QueryHandler),
		middlewares: middlewares,
	}
}

// Register registers a handler for a query type
func (b *QueryBus) Register(queryType Query, handler QueryHandler) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	t := reflect.TypeOf(queryType)
	if _, exists := b.handlers[t]; exists {
		return fmt.Errorf("handler already registered for query type %s", t.Name())
	}

	for i := len(b.middlewares) - 1; i >= 0; i-- {
		handler = b.middlewares[i](handler)
	}
	b.handlers[t] = handler
	return nil
}

// Ask dispatches a query to its handler and returns the result
func (b *QueryBus) Ask(ctx context.Context, query Query) (interface{}, error) {
	if err := query.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrValidationFailed, err)
	}

	b.mu.RLock()
	handler, exists := b.handlers[reflect.TypeOf(query)]
	b.mu.RUnlock()

	if !exists {
		return nil, fmt.Errorf("%w: %T", ErrHandlerNotFound, query)
	}

	return handler.Handle(ctx, query)
}

// AskAs dispatches a query and asserts the result type
func AskAs[R any](ctx context.Context, b *QueryBus, query Query) (R, error) {
	var zero R
	result, err := b.Ask(ctx, query)
	if err != nil {
		return zero, err
	}
	typed, ok := result.(R)
	if !ok {
		return zero, fmt.Errorf("%w: got %T", ErrUnexpectedResult, result)
	}
	return typed, nil
}

// QueryHandlerFunc is an adapter to allow functions to be used as handlers
type QueryHandlerFunc func(ctx context.Context, query Query) (interface{}, error)

// Handle implements QueryHandler
func (f QueryHandlerFunc) Handle(ctx context.Context, query Query) (interface{}, error) {
	return f(ctx, query)
}

// For adapts a typed handler function to QueryHandler
func For[Q Query, R any](fn func(ctx context.Context, query Q) (R, error)) QueryHandler {
	return QueryHandlerFunc(func(ctx context.Context, query Query) (interface{}, error) {
		typed, ok := query.(Q)
		if !ok {
			return nil, fmt.Errorf("%w: got %T", ErrUnexpectedQuery, query)
		}
		return fn(ctx, typed)
	})
}

// Middleware defines query middleware
type Middleware func(next QueryHandler) QueryHandler

// LoggingMiddleware logs failed queries
func LoggingMiddleware(logger *zap.Logger) Middleware {
	return func(next QueryHandler) QueryHandler {
		return QueryHandlerFunc(func(ctx context.Context, query Query) (interface{}, error) {
			result, err := next.Handle(ctx, query)
			if err != nil {
				logger.Warn("Query failed",
					zap.String("type", reflect.TypeOf(query).Name()),
					zap.Error(err),
				)
			}
			return result, err
		})
	}
}

// TracingMiddleware runs each query in its own X-Ray subsegment
func TracingMiddleware(tracer *observability.Tracer) Middleware {
	return func(next QueryHandler) QueryHandler {
		return QueryHandlerFunc(func(ctx context.Context, query Query) (interface{}, error) {
			var result interface{}
			err := tracer.TraceFunction(ctx, "query."+reflect.TypeOf(query).Name(), func(ctx context.Context) error {
				var err error
				result, err = next.Handle(ctx, query)
				return err
			})
			return result, err
		})
	}
}

// MetricsMiddleware reports latency and outcome of every query
func MetricsMiddleware(recorder observability.Recorder) Middleware {
	return func(next QueryHandler) QueryHandler {
		return QueryHandlerFunc(func(ctx context.Context, query Query) (interface{}, error) {
			start := time.Now()
			result, err := next.Handle(ctx, query)
			recorder.RecordOperation(ctx, "query", reflect.TypeOf(query).Name(), time.Since(start), err)
			return result, err
		})
	}
}

// Errors
var (
	ErrHandlerNotFound  = errors.New("query handler not found")
	ErrValidationFailed = errors.New("query validation failed")
	ErrUnexpectedQuery  = errors.New("unexpected query type")
	ErrUnexpectedResult = errors.New("unexpected query result type")
)
