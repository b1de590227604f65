package log

import (
	"context"
	"fmt"
	"reflect"
	"strings"

	"github.com/mwantia/fabric/pkg/container"
)

const loggerTag = "logger"

var loggerServiceType = reflect.TypeOf((*LoggerService)(nil)).Elem()

// LoggerTagProcessor injects loggers into struct fields tagged
// `fabric:"logger"` (the base logger) or `fabric:"logger:<name>"` (the base
// logger Named(name)).
type LoggerTagProcessor struct{}

func NewLoggerTagProcessor() *LoggerTagProcessor {
	return &LoggerTagProcessor{}
}

// GetPriority runs the processor ahead of the default inject processor.
func (ltp *LoggerTagProcessor) GetPriority() int {
	return 50
}

func (ltp *LoggerTagProcessor) CanProcess(value string) bool {
	_, ok := loggerName(value)
	return ok
}

func (ltp *LoggerTagProcessor) Process(ctx context.Context, sc *container.ServiceContainer, field reflect.StructField, value string) (any, error) {
	name, ok := loggerName(value)
	if !ok {
		return nil, fmt.Errorf("unsupported logger tag '%s' on field '%s'", value, field.Name)
	}

	ok, resolved := sc.ResolveByType(ctx, loggerServiceType)
	if !ok {
		return nil, fmt.Errorf("failed to resolve LoggerService for field '%s': no logger service registered", field.Name)
	}

	base, ok := resolved.(LoggerService)
	if !ok {
		return nil, fmt.Errorf("resolved %T for field '%s' is not a LoggerService", resolved, field.Name)
	}

	if name != "" {
		return base.Named(name), nil
	}
	return base, nil
}

// loggerName splits "logger" and "logger:<name>", case-insensitive on the
// tag itself.
func loggerName(value string) (string, bool) {
	head, name, found := strings.Cut(strings.TrimSpace(value), ":")
	if !strings.EqualFold(head, loggerTag) {
		return "", false
	}
	if !found {
		return "", true
	}
	return strings.TrimSpace(name), true
}
