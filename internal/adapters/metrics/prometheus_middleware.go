package metrics

import (
	"context"
	"errors"
	"reflect"
	"strings"
	"time"

	"github.com/andrescamacho/outpost-go/internal/application/mediator"
)

// PrometheusMiddleware times every command and query sent through the
// mediator. Failures are labelled with the error type, so a rejected
// StartCraftCommand shows up as result="InsufficientResourcesError".
func PrometheusMiddleware(collector *CommandMetricsCollector) mediator.Middleware {
	return func(ctx context.Context, request mediator.Request, next mediator.HandlerFunc) (mediator.Response, error) {
		if collector == nil {
			return next(ctx, request)
		}

		start := time.Now()
		response, err := next(ctx, request)
		collector.RecordCommandExecution(shortTypeName(request, "UnknownCommand"), time.Since(start).Seconds(), resultLabel(err))

		return response, err
	}
}

func resultLabel(err error) string {
	if err == nil {
		return "ok"
	}
	// look through fmt.Errorf wrapping to the error the handler raised
	for {
		inner := errors.Unwrap(err)
		if inner == nil || !strings.HasPrefix(reflect.TypeOf(err).String(), "*fmt.") {
			break
		}
		err = inner
	}
	return shortTypeName(err, "error")
}

// shortTypeName turns *game.MovePlayerCommand into MovePlayerCommand
func shortTypeName(v interface{}, fallback string) string {
	if v == nil {
		return fallback
	}
	name := strings.TrimPrefix(reflect.TypeOf(v).String(), "*")
	if i := strings.LastIndex(name, "."); i >= 0 {
		name = name[i+1:]
	}
	return name
}
