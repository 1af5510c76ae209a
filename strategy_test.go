package lifecycle_test

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	lifecycle "github.com/stateforward/go-lifecycle"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func guarded(name string, fn func(ctx context.Context) (bool, error)) *lifecycle.Screen {
	return lifecycle.NewScreen(name, lifecycle.Guard(fn))
}

func allow(ctx context.Context) (bool, error) { return true, nil }
func deny(ctx context.Context) (bool, error)  { return false, nil }

func TestCloseStrategyPartialClose(t *testing.T) {
	a, b, c := guarded("A", allow), guarded("B", deny), guarded("C", allow)
	result, err := lifecycle.DefaultCloseStrategy[*lifecycle.Screen]().Execute(context.Background(), []*lifecycle.Screen{a, b, c})
	require.NoError(t, err)
	assert.False(t, result.CloseCanOccur)
	assert.Equal(t, []*lifecycle.Screen{a, c}, result.Children)
}

func TestCloseStrategyAllConsent(t *testing.T) {
	a, b := guarded("A", allow), lifecycle.NewScreen("B")
	result, err := lifecycle.DefaultCloseStrategy[*lifecycle.Screen]().Execute(context.Background(), []*lifecycle.Screen{a, b})
	require.NoError(t, err)
	assert.True(t, result.CloseCanOccur)
	assert.Equal(t, []*lifecycle.Screen{a, b}, result.Children)
}

func TestCloseStrategyEmpty(t *testing.T) {
	result, err := lifecycle.DefaultCloseStrategy[*lifecycle.Screen]().Execute(context.Background(), nil)
	require.NoError(t, err)
	assert.True(t, result.CloseCanOccur)
	assert.Empty(t, result.Children)
}

func TestCloseStrategyNonGuardCandidates(t *testing.T) {
	result, err := lifecycle.DefaultCloseStrategy[string]().Execute(context.Background(), []string{"x", "", "y"})
	require.NoError(t, err)
	assert.True(t, result.CloseCanOccur)
	assert.Equal(t, []string{"x", "", "y"}, result.Children)
}

func TestCloseStrategyGuardError(t *testing.T) {
	boom := errors.New("boom")
	a := guarded("A", allow)
	b := guarded("B", func(ctx context.Context) (bool, error) { return false, boom })
	result, err := lifecycle.DefaultCloseStrategy[*lifecycle.Screen]().Execute(context.Background(), []*lifecycle.Screen{a, b})
	require.Error(t, err)
	assert.ErrorIs(t, err, boom)
	var guardErr *lifecycle.GuardError[*lifecycle.Screen]
	require.ErrorAs(t, err, &guardErr)
	assert.Equal(t, 1, guardErr.Index)
	assert.Same(t, b, guardErr.Item)
	assert.Contains(t, guardErr.Error(), `"B"`)
	assert.False(t, result.CloseCanOccur)
	assert.Empty(t, result.Children)
}

func TestCloseStrategyCancelledCheckIsUnanswered(t *testing.T) {
	a := guarded("A", allow)
	b := guarded("B", func(ctx context.Context) (bool, error) { return false, context.Canceled })
	c := guarded("C", allow)
	result, err := lifecycle.DefaultCloseStrategy[*lifecycle.Screen]().Execute(context.Background(), []*lifecycle.Screen{a, b, c})
	require.NoError(t, err)
	assert.False(t, result.CloseCanOccur)
	assert.Equal(t, []*lifecycle.Screen{a, c}, result.Children)
}

func TestCloseStrategyCancelledMidway(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	a := guarded("A", func(ctx context.Context) (bool, error) {
		cancel()
		return true, nil
	})
	b := guarded("B", func(ctx context.Context) (bool, error) {
		<-ctx.Done()
		return false, ctx.Err()
	})
	result, err := lifecycle.DefaultCloseStrategy[*lifecycle.Screen]().Execute(ctx, []*lifecycle.Screen{a, b})
	assert.ErrorIs(t, err, context.Canceled)
	assert.False(t, result.CloseCanOccur)
	assert.Equal(t, []*lifecycle.Screen{a}, result.Children)
}

func TestCloseStrategyGuardTimeout(t *testing.T) {
	strategy := lifecycle.NewCloseStrategy[*lifecycle.Screen](lifecycle.Config{GuardTimeout: 10 * time.Millisecond})
	a := guarded("A", allow)
	b := guarded("B", func(ctx context.Context) (bool, error) {
		<-ctx.Done()
		return false, ctx.Err()
	})
	result, err := strategy.Execute(context.Background(), []*lifecycle.Screen{a, b})
	require.NoError(t, err)
	assert.False(t, result.CloseCanOccur)
	assert.Equal(t, []*lifecycle.Screen{a}, result.Children)
}

func TestCloseStrategyGuardConcurrency(t *testing.T) {
	var running, peak atomic.Int32
	check := func(ctx context.Context) (bool, error) {
		n := running.Add(1)
		defer running.Add(-1)
		for {
			current := peak.Load()
			if n <= current || peak.CompareAndSwap(current, n) {
				break
			}
		}
		time.Sleep(time.Millisecond)
		return true, nil
	}
	candidates := []*lifecycle.Screen{guarded("A", check), guarded("B", check), guarded("C", check), guarded("D", check)}
	strategy := lifecycle.NewCloseStrategy[*lifecycle.Screen](lifecycle.Config{GuardConcurrency: 1})
	result, err := strategy.Execute(context.Background(), candidates)
	require.NoError(t, err)
	assert.True(t, result.CloseCanOccur)
	assert.Equal(t, candidates, result.Children)
	assert.Equal(t, int32(1), peak.Load())
}

func TestCloseStrategyRunsChecksConcurrently(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	aStarted, bStarted := make(chan struct{}), make(chan struct{})
	barrier := func(mine, theirs chan struct{}) func(ctx context.Context) (bool, error) {
		return func(ctx context.Context) (bool, error) {
			close(mine)
			select {
			case <-theirs:
				return true, nil
			case <-ctx.Done():
				return false, ctx.Err()
			}
		}
	}
	a := guarded("A", barrier(aStarted, bStarted))
	b := guarded("B", barrier(bStarted, aStarted))
	result, err := lifecycle.DefaultCloseStrategy[*lifecycle.Screen]().Execute(ctx, []*lifecycle.Screen{a, b})
	require.NoError(t, err)
	assert.True(t, result.CloseCanOccur)
}
