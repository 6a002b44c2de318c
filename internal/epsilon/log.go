package epsilon

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/sirupsen/logrus"
)

// stepLogger opens a run-scoped output file for one sweep step,
// creating dir first if it does not exist, mirroring the original's per-step eps_cnstr_<i>.log
// (original_source/eps_cnstr/eps_cnstr.cpp) as a logrus.Logger with a
// file-backed io.Writer rather than stdout (spec.md §4.6 step 2).
func stepLogger(dir string, step int) (logrus.FieldLogger, *os.File, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, nil, fmt.Errorf("epsilon: creating step log dir %s: %w", dir, err)
	}
	path := filepath.Join(dir, fmt.Sprintf("eps_cnstr_%d.log", step))
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, nil, fmt.Errorf("epsilon: opening step log %s: %w", path, err)
	}
	l := logrus.New()
	l.SetOutput(f)
	return l.WithField("step", step), f, nil
}
