// Package xlog funnels the warning/error reporting spec.md's content-handler
// contract calls for through one place, so tests can capture it and callers
// get consistent formatting. The teacher leans on the stdlib log package
// directly (see core/grammar.go); this keeps that idiom rather than adding a
// structured-logging dependency no repo in the example pack demonstrates.
package xlog

import "log"

// Logger is the minimal surface the schema generator needs.
type Logger interface {
	Warning(format string, args ...any)
	Error(format string, args ...any)
	Info(format string, args ...any)
}

type stdLogger struct {
	prefix string
}

// New returns a Logger that writes through the standard library's log
// package, tagging every line with prefix.
func New(prefix string) Logger {
	return &stdLogger{prefix: prefix}
}

func (l *stdLogger) Warning(format string, args ...any) {
	log.Printf(l.prefix+"WARN "+format, args...)
}

func (l *stdLogger) Error(format string, args ...any) {
	log.Printf(l.prefix+"ERROR "+format, args...)
}

func (l *stdLogger) Info(format string, args ...any) {
	log.Printf(l.prefix+"INFO "+format, args...)
}

// Default is the package-wide logger used where a caller hasn't supplied
// its own.
var Default Logger = New("exip: ")
