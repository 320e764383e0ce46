// Package zaplog adapts a zap.Logger to the pdfimg log.Logger interface.
// It is the only package in this module importing go.uber.org/zap directly;
// core decode logic never depends on a concrete logging backend, it only
// ever writes to the named loggers in package log.
package zaplog

import "go.uber.org/zap"

// Adapter wraps a *zap.SugaredLogger so it satisfies log.Logger.
type Adapter struct {
	sugar *zap.SugaredLogger
	level zap.AtomicLevel
}

// New wraps z. It takes no level: Printf and Println log at info level,
// Fatalf at error level.
func New(z *zap.Logger) *Adapter {
	return &Adapter{sugar: z.Sugar()}
}

// Printf logs a formatted message at info level.
func (a *Adapter) Printf(format string, args ...interface{}) {
	a.sugar.Infof(format, args...)
}

// Println logs a line at info level.
func (a *Adapter) Println(args ...interface{}) {
	a.sugar.Info(args...)
}

// Fatalf logs at error level; it does not terminate the process, unlike
// the standard library's log.Fatalf, since a library must never call
// os.Exit on a caller's behalf.
func (a *Adapter) Fatalf(format string, args ...interface{}) {
	a.sugar.Errorf(format, args...)
}
