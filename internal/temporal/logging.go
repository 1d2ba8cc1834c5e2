package temporal

import (
	"github.com/rs/zerolog"
	"go.temporal.io/sdk/log"
)

// ZerologAdapter routes Temporal SDK logs through zerolog.
type ZerologAdapter struct {
	logger zerolog.Logger
}

var (
	_ log.Logger     = (*ZerologAdapter)(nil)
	_ log.WithLogger = (*ZerologAdapter)(nil)
)

func NewZerologAdapter(logger zerolog.Logger) *ZerologAdapter {
	return &ZerologAdapter{
		logger: logger.With().Str("component", "temporal-sdk").Logger(),
	}
}

func fields(ctx zerolog.Context, keyvals []interface{}) zerolog.Context {
	if len(keyvals)%2 != 0 {
		keyvals = append(keyvals, "MISSING_VALUE")
	}
	for i := 0; i < len(keyvals); i += 2 {
		key, ok := keyvals[i].(string)
		if !ok {
			key = "INVALID_KEY"
		}
		ctx = ctx.Interface(key, keyvals[i+1])
	}
	return ctx
}

func (a *ZerologAdapter) emit(level zerolog.Level, msg string, keyvals []interface{}) {
	if len(keyvals) == 0 {
		a.logger.WithLevel(level).Msg(msg)
		return
	}
	l := fields(a.logger.With(), keyvals).Logger()
	l.WithLevel(level).Msg(msg)
}

func (a *ZerologAdapter) Debug(msg string, keyvals ...interface{}) {
	a.emit(zerolog.DebugLevel, msg, keyvals)
}

func (a *ZerologAdapter) Info(msg string, keyvals ...interface{}) {
	a.emit(zerolog.InfoLevel, msg, keyvals)
}

func (a *ZerologAdapter) Warn(msg string, keyvals ...interface{}) {
	a.emit(zerolog.WarnLevel, msg, keyvals)
}

func (a *ZerologAdapter) Error(msg string, keyvals ...interface{}) {
	a.emit(zerolog.ErrorLevel, msg, keyvals)
}

// With returns an adapter that adds keyvals to every entry.
func (a *ZerologAdapter) With(keyvals ...interface{}) log.Logger {
	return &ZerologAdapter{logger: fields(a.logger.With(), keyvals).Logger()}
}
