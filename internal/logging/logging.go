// Package logging provides the structured logger shared across the
// driver components, matching the teacher's own use of
// logrus.FieldLogger (see emissions/slca/bea/eioserve.Server.Log in
// the reference InMAP codebase).
package logging

import (
	"io"
	"os"
	"path/filepath"

	"github.com/sirupsen/logrus"
)

// New returns a standalone logger at the given level, writing to w
// (os.Stderr if w is nil). Components that don't receive an explicit
// Log field default to logrus.StandardLogger() instead of calling
// this constructor.
func New(level logrus.Level, w io.Writer) logrus.FieldLogger {
	l := logrus.New()
	l.SetLevel(level)
	if w != nil {
		l.SetOutput(w)
	}
	return l
}

// RunFile opens (creating if necessary) a run-scoped log file under
// dir, e.g. for the eps_cnstr_<i>.log files the original MSUCast
// solver emits per ε-constraint step.
func RunFile(dir, name string) (*os.File, error) {
	return os.OpenFile(filepath.Join(dir, name), os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
}
