package instagram

import (
	"context"

	"igmirror/pkg/errors"
	"igmirror/pkg/logger"
	"igmirror/pkg/models"
	"igmirror/pkg/pacing"
)

// Strategy is one self-contained attempt to retrieve and parse upstream
// data in one known shape.
type Strategy interface {
	Name() string
	Attempt(ctx context.Context, username string) ([]models.Post, error)
}

// Chain tries extraction strategies in priority order and commits to the
// first one that yields a non-empty candidate list. Partial output from a
// failed strategy never leaks through.
type Chain struct {
	strategies []Strategy
	pacer      pacing.Policy
	logger     logger.Logger
}

// NewChain creates a Chain over the given strategies
func NewChain(strategies []Strategy, pacer pacing.Policy, log logger.Logger) *Chain {
	if log == nil {
		log = logger.GetLogger()
	}
	return &Chain{
		strategies: strategies,
		pacer:      pacer,
		logger:     log,
	}
}

// NewDefaultChain wires the strategies in most-likely-to-succeed order:
// the JSON API, the GraphQL query, then the profile HTML fallback.
func NewDefaultChain(client *Client, pacer pacing.Policy, log logger.Logger) *Chain {
	return NewChain([]Strategy{
		NewWebProfileStrategy(client),
		NewGraphQLStrategy(client),
		NewProfileHTMLStrategy(client),
	}, pacer, log)
}

// Extract produces the ordered candidate list for a profile. When every
// strategy fails it returns a typed exhausted error; the caller treats
// that as zero new posts, not as a crash.
func (c *Chain) Extract(ctx context.Context, username string) ([]models.Post, error) {
	for _, strategy := range c.strategies {
		c.pacer.BeforeCall(pacing.CallExtract)

		posts, err := strategy.Attempt(ctx, username)
		if err != nil {
			c.logger.WarnWithFields("extraction strategy failed", map[string]interface{}{
				"strategy": strategy.Name(),
				"username": username,
				"kind":     string(errors.TypeOf(err)),
				"error":    err.Error(),
			})
			if errors.IsRetryable(errors.TypeOf(err)) {
				c.pacer.OnFailure(pacing.CallExtract)
			}
			continue
		}

		if len(posts) == 0 {
			c.logger.DebugWithFields("extraction strategy yielded nothing", map[string]interface{}{
				"strategy": strategy.Name(),
				"username": username,
			})
			continue
		}

		c.pacer.OnSuccess()
		c.logger.InfoWithFields("extraction strategy succeeded", map[string]interface{}{
			"strategy": strategy.Name(),
			"username": username,
			"posts":    len(posts),
		})
		return posts, nil
	}

	return nil, errors.Newf(errors.ErrorTypeExhausted,
		"all %d extraction strategies failed for %s", len(c.strategies), username)
}
