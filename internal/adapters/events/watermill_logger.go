package events

import (
	"github.com/ThreeDotsLabs/watermill"

	"github.com/0xcro3dile/docqa-go/internal/pkg/logger"
)

// watermillLogger routes watermill's internal logs into the app logger.
// Trace goes to Debug.
type watermillLogger struct {
	logger logger.ILogger
	fields watermill.LogFields
}

func NewWatermillLogger(log logger.ILogger) watermill.LoggerAdapter {
	return &watermillLogger{logger: log, fields: watermill.LogFields{}}
}

func (l *watermillLogger) details(fields watermill.LogFields) map[string]interface{} {
	merged := make(map[string]interface{}, len(l.fields)+len(fields))
	for k, v := range l.fields {
		merged[k] = v
	}
	for k, v := range fields {
		merged[k] = v
	}
	return merged
}

func (l *watermillLogger) Error(msg string, err error, fields watermill.LogFields) {
	details := l.details(fields)
	if err != nil {
		details["error"] = err.Error()
	}
	l.logger.Error(moduleEvents, msg, details)
}

func (l *watermillLogger) Info(msg string, fields watermill.LogFields) {
	l.logger.Info(moduleEvents, msg, l.details(fields))
}

func (l *watermillLogger) Debug(msg string, fields watermill.LogFields) {
	l.logger.Debug(moduleEvents, msg, l.details(fields))
}

func (l *watermillLogger) Trace(msg string, fields watermill.LogFields) {
	l.logger.Debug(moduleEvents, msg, l.details(fields))
}

func (l *watermillLogger) With(fields watermill.LogFields) watermill.LoggerAdapter {
	return &watermillLogger{logger: l.logger, fields: l.details(fields)}
}
