// pkg/logutil/log.go
package logutil

import (
	"github.com/pingcap/errors"
	"github.com/pingcap/log"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"shareable/pkg/config"
)

// SetupLogger builds the process logger from cfg and installs it as the
// global pingcap/log logger.
func SetupLogger(cfg config.LogConfig) (*zap.Logger, error) {
	lc := log.Config{
		Level:  cfg.Level,
		Format: cfg.Format,
		File:   log.FileLogConfig{Filename: cfg.File},
	}
	lg, props, err := log.InitLogger(&lc, zap.AddStacktrace(zapcore.FatalLevel))
	if err != nil {
		return nil, errors.Annotate(err, "init logger")
	}
	log.ReplaceGlobals(lg, props)
	return lg, nil
}

// LogPanic logs the panic reason and stack, then exits the process.
// Commonly used with a `defer`.
func LogPanic() {
	if e := recover(); e != nil {
		log.Fatal("panic", zap.Reflect("recover", e))
	}
}
