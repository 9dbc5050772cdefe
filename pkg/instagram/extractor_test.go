package instagram

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"igmirror/pkg/errors"
	"igmirror/pkg/models"
	"igmirror/pkg/pacing"
)

// stubStrategy is a canned Strategy for chain tests.
type stubStrategy struct {
	name  string
	posts []models.Post
	err   error

	attempts int
}

func (s *stubStrategy) Name() string { return s.name }

func (s *stubStrategy) Attempt(ctx context.Context, username string) ([]models.Post, error) {
	s.attempts++
	return s.posts, s.err
}

// stubPacer records pacing hooks without sleeping.
type stubPacer struct {
	before   []pacing.CallKind
	failures []pacing.CallKind
	success  int
}

func (p *stubPacer) BeforeCall(kind pacing.CallKind) { p.before = append(p.before, kind) }
func (p *stubPacer) OnFailure(kind pacing.CallKind)  { p.failures = append(p.failures, kind) }
func (p *stubPacer) OnSuccess()                      { p.success++ }

func somePosts(n int) []models.Post {
	posts := make([]models.Post, n)
	for i := range posts {
		posts[i] = models.Post{
			Shortcode: string(rune('A' + i)),
			MediaURL:  "https://cdn.test/x.jpg",
			PostedAt:  time.Now().UTC(),
		}
	}
	return posts
}

func TestChainReturnsFirstNonEmptyResult(t *testing.T) {
	first := &stubStrategy{name: "first", posts: somePosts(3)}
	second := &stubStrategy{name: "second", posts: somePosts(5)}
	pacer := &stubPacer{}

	chain := NewChain([]Strategy{first, second}, pacer, nil)
	posts, err := chain.Extract(context.Background(), "testuser")

	require.NoError(t, err)
	assert.Len(t, posts, 3)
	assert.Equal(t, 1, first.attempts)
	assert.Zero(t, second.attempts, "later strategies are not consulted after a success")
	assert.Equal(t, 1, pacer.success)
}

func TestChainFallsThroughOnFailure(t *testing.T) {
	first := &stubStrategy{name: "first", err: errors.New(errors.ErrorTypeSchemaMismatch, "no shape matched")}
	second := &stubStrategy{name: "second", posts: somePosts(2)}
	pacer := &stubPacer{}

	chain := NewChain([]Strategy{first, second}, pacer, nil)
	posts, err := chain.Extract(context.Background(), "testuser")

	require.NoError(t, err)
	assert.Len(t, posts, 2)
	assert.Empty(t, pacer.failures, "a schema mismatch is not a transient failure")
}

func TestChainEscalatesPacingOnRetryableFailure(t *testing.T) {
	first := &stubStrategy{name: "first", err: errors.New(errors.ErrorTypeRateLimit, "slow down")}
	second := &stubStrategy{name: "second", posts: somePosts(1)}
	pacer := &stubPacer{}

	chain := NewChain([]Strategy{first, second}, pacer, nil)
	_, err := chain.Extract(context.Background(), "testuser")

	require.NoError(t, err)
	assert.Equal(t, []pacing.CallKind{pacing.CallExtract}, pacer.failures)
}

func TestChainSkipsEmptyResults(t *testing.T) {
	first := &stubStrategy{name: "first"} // succeeds with nothing
	second := &stubStrategy{name: "second", posts: somePosts(4)}

	chain := NewChain([]Strategy{first, second}, &stubPacer{}, nil)
	posts, err := chain.Extract(context.Background(), "testuser")

	require.NoError(t, err)
	assert.Len(t, posts, 4)
}

func TestChainExhaustedWhenEveryStrategyFails(t *testing.T) {
	strategies := []Strategy{
		&stubStrategy{name: "first", err: errors.New(errors.ErrorTypeTransport, "down")},
		&stubStrategy{name: "second", err: errors.New(errors.ErrorTypeAuth, "login wall")},
		&stubStrategy{name: "third"},
	}

	chain := NewChain(strategies, &stubPacer{}, nil)
	posts, err := chain.Extract(context.Background(), "testuser")

	assert.Nil(t, posts)
	require.Error(t, err)
	assert.Equal(t, errors.ErrorTypeExhausted, errors.TypeOf(err))
}

func TestChainPacesEveryAttempt(t *testing.T) {
	strategies := []Strategy{
		&stubStrategy{name: "first", err: errors.New(errors.ErrorTypeSchemaMismatch, "nope")},
		&stubStrategy{name: "second", posts: somePosts(1)},
	}
	pacer := &stubPacer{}

	chain := NewChain(strategies, pacer, nil)
	_, err := chain.Extract(context.Background(), "testuser")

	require.NoError(t, err)
	assert.Equal(t, []pacing.CallKind{pacing.CallExtract, pacing.CallExtract}, pacer.before)
}
