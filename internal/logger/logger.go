package logger

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/dancehub/event-registration/internal/config"
)

// Init replaces zap's global logger; call sites use zap.L().
func Init(environment string) error {
	var (
		l   *zap.Logger
		err error
	)

	switch environment {
	case config.EnvProduction:
		l, err = zap.NewProduction()
	default:
		l, err = zap.NewDevelopment()
	}
	if err != nil {
		return fmt.Errorf("zap.New -> %w", err)
	}

	zap.ReplaceGlobals(l)

	return nil
}
