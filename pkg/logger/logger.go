// Package logger logger estructurado de la API y del CLI de operación.
package logger

import (
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Config opciones para el logger.
type Config struct {
	Env     string    // development -> consola legible; otro -> JSON
	Level   string    // trace, debug, info, warn, error (inválido = info)
	Service string    // campo fijo "service"; vacío = sin campo
	Output  io.Writer // nil = os.Stdout
}

// Logger wrapper sobre zerolog. Los componentes reciben el zerolog.Logger de Zerolog().
type Logger struct {
	zl zerolog.Logger
}

// New crea el logger y redirige el logger global de zerolog.
func New(cfg Config) *Logger {
	out := cfg.Output
	if out == nil {
		out = os.Stdout
	}
	if cfg.Env == "development" {
		out = zerolog.ConsoleWriter{Out: out, TimeFormat: time.TimeOnly}
	}

	ctx := zerolog.New(out).Level(ParseLevel(cfg.Level)).With().Timestamp()
	if cfg.Service != "" {
		ctx = ctx.Str("service", cfg.Service)
	}
	zl := ctx.Logger()
	log.Logger = zl

	return &Logger{zl: zl}
}

// ParseLevel interpreta el nivel sin distinguir mayúsculas. Vacío o desconocido = info.
func ParseLevel(s string) zerolog.Level {
	lvl, err := zerolog.ParseLevel(strings.ToLower(strings.TrimSpace(s)))
	if err != nil || lvl == zerolog.NoLevel {
		return zerolog.InfoLevel
	}
	return lvl
}

func (l *Logger) Info() *zerolog.Event  { return l.zl.Info() }
func (l *Logger) Error() *zerolog.Event { return l.zl.Error() }
func (l *Logger) Fatal() *zerolog.Event { return l.zl.Fatal() }

// Zerolog devuelve el logger para inyectarlo en los componentes.
func (l *Logger) Zerolog() zerolog.Logger {
	return l.zl
}
