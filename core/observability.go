package core

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"
)

func (r *Resource) observe(
	ctx context.Context,
	startedAt time.Time,
	operation string,
	method string,
	url string,
	statusCode int,
	err error,
) {
	if r == nil {
		return
	}
	fields := map[string]any{
		"resource": r.config.Name,
		"method":   method,
		"url":      url,
	}
	if statusCode > 0 {
		fields["status_code"] = statusCode
	}
	if rc, ok := RequestContextFrom(ctx); ok {
		fields["request_id"] = rc.RequestID
	}
	observeOperation(ctx, r.logger, r.metrics, startedAt, operation, err, fields)
}

// observeOperation records a counter and a duration histogram for operation
// and logs the outcome with the given fields.
func observeOperation(
	ctx context.Context,
	logger Logger,
	metrics MetricsRecorder,
	startedAt time.Time,
	operation string,
	err error,
	fields map[string]any,
) {
	operation = normalizeOperation(operation)
	if operation == "" {
		operation = "unknown"
	}
	status := "success"
	if err != nil {
		status = "failure"
	}

	contextFields := cloneFields(fields)
	contextFields["event_type"] = operation
	contextFields["status"] = status
	contextFields["duration_ms"] = time.Since(startedAt).Milliseconds()
	if err != nil {
		contextFields["error"] = err.Error()
	}

	tags := map[string]string{
		"operation": operation,
		"status":    status,
	}
	for _, key := range []string{"resource", "method"} {
		if value := strings.TrimSpace(fmt.Sprint(contextFields[key])); value != "" && value != "<nil>" {
			tags[key] = value
		}
	}

	if metrics != nil {
		metrics.IncCounter(ctx, "resources."+operation+".total", 1, cloneTags(tags))
		metrics.ObserveHistogram(ctx, "resources."+operation+".duration_ms", float64(time.Since(startedAt).Milliseconds()), cloneTags(tags))
	}

	if err != nil {
		logWithLevel(ctx, logger, "error", operation+" failed", contextFields)
		return
	}
	logWithLevel(ctx, logger, "info", operation+" succeeded", contextFields)
}

func logWithLevel(ctx context.Context, logger Logger, level string, message string, fields map[string]any) {
	if logger == nil {
		return
	}
	if ctx != nil {
		logger = logger.WithContext(ctx)
	}
	if fieldsLogger, ok := logger.(FieldsLogger); ok {
		logger = fieldsLogger.WithFields(cloneFields(fields))
	}
	args := flattenFields(fields)
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "error":
		logger.Error(message, args...)
	case "debug":
		logger.Debug(message, args...)
	default:
		logger.Info(message, args...)
	}
}

func cloneFields(fields map[string]any) map[string]any {
	if len(fields) == 0 {
		return map[string]any{}
	}
	copied := make(map[string]any, len(fields))
	for key, value := range fields {
		copied[key] = value
	}
	return copied
}

func flattenFields(fields map[string]any) []any {
	if len(fields) == 0 {
		return nil
	}
	keys := make([]string, 0, len(fields))
	for key := range fields {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	args := make([]any, 0, len(keys)*2)
	for _, key := range keys {
		args = append(args, key, fields[key])
	}
	return args
}

func normalizeOperation(operation string) string {
	operation = strings.TrimSpace(strings.ToLower(operation))
	operation = strings.ReplaceAll(operation, " ", "_")
	operation = strings.ReplaceAll(operation, "-", "_")
	return operation
}

type NopMetricsRecorder struct{}

func (NopMetricsRecorder) IncCounter(context.Context, string, int64, map[string]string) {}

func (NopMetricsRecorder) ObserveHistogram(context.Context, string, float64, map[string]string) {}

func cloneTags(tags map[string]string) map[string]string {
	copied := make(map[string]string, len(tags))
	for key, value := range tags {
		copied[key] = value
	}
	return copied
}

var _ MetricsRecorder = NopMetricsRecorder{}
