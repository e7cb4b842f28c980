package platform

import (
	"context"
	"fmt"

	"github.com/aretw0/seoagent/pkg/adapters/fs"
	"github.com/aretw0/seoagent/pkg/core"
)

// Init builds and initializes the storage adapter for path.
// An injected repository is returned as is.
func Init(path string, opts ...Option) (core.Repository, error) {
	o := defaultOptions()
	for _, opt := range opts {
		opt(o)
	}
	return initRepository(path, o)
}

func initRepository(path string, o *options) (core.Repository, error) {
	if o.repository != nil {
		return o.repository, nil
	}

	var repo core.Repository
	var err error

	switch o.adapter {
	case "fs", "":
		repo, err = initFS(path, o)
	default:
		return nil, fmt.Errorf("unknown adapter: %s", o.adapter)
	}
	if err != nil {
		return nil, err
	}

	if err := repo.Initialize(context.Background()); err != nil {
		return nil, err
	}
	return repo, nil
}

// initFS handles the configuration of the filesystem adapter.
func initFS(path string, o *options) (core.Repository, error) {
	if o.logger != nil && o.readOnly {
		o.logger.Debug("running in READ-ONLY mode", "path", path)
	}

	repo, err := fs.NewRepository(fs.Config{
		Path:         path,
		MustExist:    o.mustExist,
		ReadOnly:     o.readOnly,
		Logger:       o.logger,
		Format:       o.format,
		DisableCache: !o.parseCache,
		ErrorHandler: o.errorHandler,
	})
	if err != nil {
		return nil, err
	}
	return repo, nil
}
