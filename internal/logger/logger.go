package logger

import (
	"context"
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
	zlog "github.com/rs/zerolog/log"

	pkgctx "github.com/baechuer/admin-dashboard/services/account-service/internal/pkg/context"
)

const serviceName = "account-service"

var Logger = zerolog.Nop()

func Init() {
	InitWithWriter(os.Stdout)
}

// InitWithWriter configures the package logger from LOG_LEVEL and LOG_FORMAT
// ("json" or "console", default console).
func InitWithWriter(w io.Writer) {
	logLevel := os.Getenv("LOG_LEVEL")
	if logLevel == "" {
		logLevel = "info"
	}
	level, err := zerolog.ParseLevel(logLevel)
	if err != nil {
		level = zerolog.InfoLevel
	}

	format := os.Getenv("LOG_FORMAT")
	if format == "" {
		format = "console"
	}

	out := w
	if format != "json" {
		out = zerolog.ConsoleWriter{Out: w, TimeFormat: time.RFC3339}
	}
	Logger = zerolog.New(out).With().
		Timestamp().
		Str("service", serviceName).
		Logger().
		Level(level)

	zlog.Logger = Logger
}

// WithCtx returns the package logger enriched with request-scoped fields.
func WithCtx(ctx context.Context) *zerolog.Logger {
	l := Logger
	c := l.With()
	if rid := pkgctx.GetRequestID(ctx); rid != "" {
		c = c.Str("request_id", rid)
	}
	if actor := pkgctx.GetActorID(ctx); actor != "" {
		c = c.Str("actor_id", actor)
	}
	l = c.Logger()
	return &l
}
