// File: optimize/invoker.go

package optimize

import (
	"context"
	"math"
	"time"

	"github.com/cenkalti/backoff/v4"

	"github.com/optillm/optillm/backend"
	"github.com/optillm/optillm/utils"
)

// backoffInvoker wraps the single backend call with bounded retries. With
// maxRetries = k the backend is invoked at most k+1 times, and the delay
// before retry n is retryDelay * 2^(n-1). No engine lock is ever held here;
// the only blocking points of a generate call are the backend invocation and
// these delays.
type backoffInvoker struct {
	client     backend.Client
	maxRetries int
	retryDelay time.Duration
	logger     utils.Logger
}

// invoke runs the backend call under the retry policy and reports how many
// attempts were made. Cancellation during a delay surfaces as the context
// error.
func (inv *backoffInvoker) invoke(ctx context.Context, prompt string, params map[string]any) (string, int, error) {
	policy := backoff.NewExponentialBackOff()
	policy.InitialInterval = inv.retryDelay
	policy.Multiplier = 2
	policy.RandomizationFactor = 0
	policy.MaxInterval = time.Duration(math.MaxInt64 / 2)
	policy.MaxElapsedTime = 0
	policy.Reset()

	attempts := 0
	var result string
	operation := func() error {
		attempts++
		text, err := inv.client.Invoke(ctx, prompt, params)
		if err != nil {
			inv.logger.Warn("Generation attempt failed", "attempt", attempts, "error", err)
			return err
		}
		result = text
		return nil
	}

	wrapped := backoff.WithContext(backoff.WithMaxRetries(policy, uint64(inv.maxRetries)), ctx)
	if err := backoff.Retry(operation, wrapped); err != nil {
		return "", attempts, err
	}
	return result, attempts, nil
}
