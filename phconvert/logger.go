package main

// https://stackoverflow.com/questions/77422213/how-to-hide-all-keys-when-using-slog-in-golang

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"sync"
)

// logHandler prints "[time] [module] message" lines instead of slog's
// key=value output.
type logHandler struct {
	mu  *sync.Mutex
	out io.Writer
}

func newLogHandler(o io.Writer) *logHandler {
	return &logHandler{out: o, mu: &sync.Mutex{}}
}

func (h *logHandler) Enabled(_ context.Context, level slog.Level) bool {
	return level >= slog.LevelInfo
}

// The CLI never calls With or WithGroup; per-record attrs carry the module.
func (h *logHandler) WithAttrs([]slog.Attr) slog.Handler { return h }
func (h *logHandler) WithGroup(string) slog.Handler      { return h }

func (h *logHandler) Handle(_ context.Context, r slog.Record) error {
	strs := []string{r.Time.Format("[2006/01/02 15:04:05]")}
	r.Attrs(func(a slog.Attr) bool {
		strs = append(strs, fmt.Sprintf("[%s]", a.Value.String()))
		return true
	})
	strs = append(strs, r.Message, "\n")

	h.mu.Lock()
	defer h.mu.Unlock()

	_, err := h.out.Write([]byte(strings.Join(strs, " ")))
	return err
}

// cliLogger adapts the slog handler to the library's Logger interface.
type cliLogger struct {
	log *slog.Logger
}

func newCLILogger() *cliLogger {
	return &cliLogger{log: slog.New(newLogHandler(os.Stderr))}
}

func (l *cliLogger) Info(message string, module string) {
	l.log.Info(message, "module", module)
}

func (l *cliLogger) Error(message string) {
	l.log.Error(message)
}
