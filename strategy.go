package lifecycle

import (
	"context"
	"errors"
	"fmt"

	"golang.org/x/sync/errgroup"
)

// CloseResult is the outcome of a close negotiation. Children holds the
// candidates that consented, in candidate order, even when CloseCanOccur is
// false.
type CloseResult[T comparable] struct {
	CloseCanOccur bool
	Children      []T
}

type CloseStrategy[T comparable] interface {
	Execute(ctx context.Context, candidates []T) (CloseResult[T], error)
}

type answer uint8

const (
	unanswered answer = iota
	consented
	vetoed
)

type closeStrategy[T comparable] struct {
	config Config
}

// DefaultCloseStrategy returns the stateless strategy configured with
// DefaultConfig. It holds no mutable state and may be shared freely.
func DefaultCloseStrategy[T comparable]() CloseStrategy[T] {
	return closeStrategy[T]{config: DefaultConfig}
}

func NewCloseStrategy[T comparable](config ...Config) CloseStrategy[T] {
	strategy := closeStrategy[T]{config: DefaultConfig}
	if len(config) > 0 {
		strategy.config = config[0]
	}
	return strategy
}

// Execute runs CanClose on every candidate concurrently. Candidates without a
// guard consent. A check cancelled or timed out counts as unanswered and does
// not stop the others; any other error cancels the remaining checks and is
// returned as a *GuardError.
func (strategy closeStrategy[T]) Execute(ctx context.Context, candidates []T) (result CloseResult[T], err error) {
	end := strategy.config.trace(ctx, "CloseStrategy.Execute", len(candidates))
	defer func() { end(err) }()
	var zero T
	answers := make([]answer, len(candidates))
	group, groupCtx := errgroup.WithContext(ctx)
	if strategy.config.GuardConcurrency > 0 {
		group.SetLimit(strategy.config.GuardConcurrency)
	}
	for index, candidate := range candidates {
		group.Go(func() error {
			guard, ok := any(candidate).(GuardClosable)
			if candidate == zero || !ok {
				answers[index] = consented
				return nil
			}
			checkCtx := groupCtx
			if strategy.config.GuardTimeout > 0 {
				var cancel context.CancelFunc
				checkCtx, cancel = context.WithTimeout(groupCtx, strategy.config.GuardTimeout)
				defer cancel()
			}
			canClose, err := guard.CanClose(checkCtx)
			switch {
			case err == nil && canClose:
				answers[index] = consented
			case err == nil:
				answers[index] = vetoed
			case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
				answers[index] = unanswered
			default:
				return &GuardError[T]{Index: index, Item: candidate, Err: err}
			}
			return nil
		})
	}
	if err := group.Wait(); err != nil {
		strategy.config.logger().ErrorContext(ctx, "close strategy aborted", "error", err)
		return CloseResult[T]{}, err
	}
	result.CloseCanOccur = true
	for index, candidate := range candidates {
		if answers[index] == consented {
			result.Children = append(result.Children, candidate)
			continue
		}
		result.CloseCanOccur = false
	}
	if err := ctx.Err(); err != nil {
		return result, fmt.Errorf("close strategy: %w", err)
	}
	if !result.CloseCanOccur {
		strategy.config.logger().DebugContext(ctx, "close vetoed", "candidates", len(candidates), "consented", len(result.Children))
	}
	return result, nil
}
