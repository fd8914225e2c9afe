package sink

import (
	"io"

	"github.com/pkg/browser"
	"go.uber.org/zap"
)

// openFile is swapped out in tests.
var openFile = browser.OpenFile

// Open asks the desktop to open path with its default application. Failures
// are logged and never fail the run.
func Open(log *zap.Logger, path string) bool {
	if log == nil {
		log = zap.NewNop()
	}
	browser.Stdout, browser.Stderr = io.Discard, io.Discard
	if err := openFile(path); err != nil {
		log.Warn("could not open output", zap.String("path", path), zap.Error(err))
		return false
	}
	log.Info("opened output", zap.String("path", path))
	return true
}
