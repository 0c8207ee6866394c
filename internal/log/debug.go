package log

import (
	"go.uber.org/zap"

	"github.com/rootnroll/go-sdk/internal/env"
)

func defaultLogger() *zap.Logger {
	if isDebug, _ := env.DebugFromEnvironment(); !isDebug {
		return zap.NewNop()
	}
	l, err := New(true)
	if err != nil {
		return zap.NewNop()
	}
	return l
}
