package config_test

import (
	"errors"
	"testing"

	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/gt"
	"github.com/plugsmith/plugsmith/pkg/cli/config"
)

func TestConfigErrors_SentinelIdentification(t *testing.T) {
	sentinels := []error{
		config.ErrConfigNotFound,
		config.ErrInvalidConfig,
		config.ErrDuplicateProvider,
		config.ErrUnknownBackend,
		config.ErrMissingFlag,
	}

	for _, sentinel := range sentinels {
		t.Run(sentinel.Error(), func(t *testing.T) {
			err := goerr.Wrap(sentinel, "wrapped", goerr.V(config.BackendKey, "x"))
			gt.Bool(t, errors.Is(err, sentinel)).True()

			for _, other := range sentinels {
				if other == sentinel {
					continue
				}
				gt.Bool(t, errors.Is(err, other)).False()
			}
		})
	}
}

func TestConfigErrors_Values(t *testing.T) {
	err := goerr.Wrap(config.ErrUnknownBackend, "invalid storage backend", goerr.V(config.BackendKey, "s3"))

	var ge *goerr.Error
	gt.Bool(t, errors.As(err, &ge)).True()
	gt.Value(t, ge.Values()[config.BackendKey]).Equal("s3")
}
