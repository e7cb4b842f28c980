package platform

import (
	"github.com/aretw0/seoagent/pkg/core"
)

// New wires the storage adapter and the article service.
//
//	svc, err := seoagent.New("./articles_data", seoagent.WithFormat("yaml"))
func New(path string, opts ...Option) (*core.Service, error) {
	o := defaultOptions()
	for _, opt := range opts {
		opt(o)
	}

	repo, err := initRepository(path, o)
	if err != nil {
		return nil, err
	}

	return core.NewService(repo,
		core.WithServiceLogger(o.logger),
		core.WithClock(o.clock),
		core.WithEventBuffer(o.eventBuffer),
	), nil
}
