package logging

import (
	"context"
	"fmt"
	"reflect"
	"strings"
	"time"

	"github.com/andrescamacho/outpost-go/internal/application/mediator"
)

// Middleware logs every request at DEBUG and failures at WARNING. It also
// injects logger into the context so handlers can pick it up.
func Middleware(logger Logger) mediator.Middleware {
	return func(ctx context.Context, request mediator.Request, next mediator.HandlerFunc) (mediator.Response, error) {
		if logger == nil {
			return next(ctx, request)
		}
		ctx = WithLogger(ctx, logger)

		name := requestName(request)
		start := time.Now()
		resp, err := next(ctx, request)
		elapsed := time.Since(start)

		if err != nil {
			logger.Log("WARNING", fmt.Sprintf("%s failed", name), map[string]interface{}{
				"request":     name,
				"duration_ms": elapsed.Milliseconds(),
				"error":       err.Error(),
			})
			return resp, err
		}

		logger.Log("DEBUG", fmt.Sprintf("%s handled", name), map[string]interface{}{
			"request":     name,
			"duration_ms": elapsed.Milliseconds(),
		})
		return resp, nil
	}
}

func requestName(request mediator.Request) string {
	if request == nil {
		return "UnknownRequest"
	}
	name := strings.TrimPrefix(reflect.TypeOf(request).String(), "*")
	if i := strings.LastIndex(name, "."); i >= 0 {
		return name[i+1:]
	}
	return name
}
