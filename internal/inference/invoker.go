// ABOUTME: Bounded-latency invocation of the text generation provider
// ABOUTME: Dispatches the call off the request flow and classifies outcomes

package inference

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"google.golang.org/genai"
)

// Kind identifies how an invocation ended.
type Kind int

const (
	// KindSuccess means the provider returned generated text.
	KindSuccess Kind = iota
	// KindRateLimited means the provider signaled a 429 rate limit.
	KindRateLimited
	// KindTimeout means the wall-clock deadline elapsed before the
	// provider returned. The in-flight call is abandoned, not killed.
	KindTimeout
	// KindFailure covers every other provider error.
	KindFailure
)

// String returns the outcome kind for logging.
func (k Kind) String() string {
	switch k {
	case KindSuccess:
		return "success"
	case KindRateLimited:
		return "rate_limited"
	case KindTimeout:
		return "timeout"
	case KindFailure:
		return "failure"
	default:
		return "unknown"
	}
}

// Outcome is the classified result of a single invocation. Exactly one
// invocation produces exactly one outcome; the invoker never retries.
type Outcome struct {
	Kind Kind
	Text string // generated text, set only for KindSuccess
	Err  string // raw provider error text, set only for KindFailure
}

// Provider is the boundary to the remote generation service.
type Provider interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// Invoker calls a Provider with a hard wall-clock deadline. The call runs
// on its own goroutine so the deadline holds even if the provider's own
// timeout behavior misbehaves; a call that outlives the deadline has its
// result discarded (best-effort abandonment - the context is canceled,
// but the goroutine is not forcibly killed).
type Invoker struct {
	provider Provider
	timeout  time.Duration
	logger   *slog.Logger
}

// NewInvoker creates an invoker with the given wall-clock timeout.
func NewInvoker(provider Provider, timeout time.Duration, logger *slog.Logger) *Invoker {
	if logger == nil {
		logger = slog.Default()
	}
	return &Invoker{
		provider: provider,
		timeout:  timeout,
		logger:   logger.With("component", "inference"),
	}
}

// generateResult carries the provider's answer back from the dispatch
// goroutine. The channel is buffered so an abandoned call can still
// complete its send and exit.
type generateResult struct {
	text string
	err  error
}

// Invoke sends the prompt to the provider and waits at most the
// configured timeout for a result.
func (iv *Invoker) Invoke(ctx context.Context, prompt string) Outcome {
	callCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	resultCh := make(chan generateResult, 1)
	started := time.Now()

	go func() {
		text, err := iv.provider.Generate(callCtx, prompt)
		resultCh <- generateResult{text: text, err: err}
	}()

	timer := time.NewTimer(iv.timeout)
	defer timer.Stop()

	select {
	case res := <-resultCh:
		if res.err != nil {
			outcome := Classify(res.err)
			iv.logger.Warn("generation failed",
				"kind", outcome.Kind.String(),
				"elapsed", time.Since(started),
				"error", res.err,
			)
			return outcome
		}
		iv.logger.Debug("generation complete",
			"elapsed", time.Since(started),
			"response_len", len(res.text),
		)
		return Outcome{Kind: KindSuccess, Text: res.text}

	case <-timer.C:
		iv.logger.Warn("generation deadline elapsed, abandoning call",
			"timeout", iv.timeout,
		)
		return Outcome{Kind: KindTimeout}

	case <-ctx.Done():
		iv.logger.Warn("generation canceled by caller", "elapsed", time.Since(started))
		return Outcome{Kind: KindFailure, Err: ctx.Err().Error()}
	}
}

// Classify maps a provider error to an outcome. A structured 429 code is
// checked first; the "429" substring match on the stringified error is a
// fallback for providers whose error shape is not structured.
func Classify(err error) Outcome {
	var apiErr genai.APIError
	if errors.As(err, &apiErr) && apiErr.Code == 429 {
		return Outcome{Kind: KindRateLimited}
	}

	if strings.Contains(err.Error(), "429") {
		return Outcome{Kind: KindRateLimited}
	}

	return Outcome{Kind: KindFailure, Err: err.Error()}
}
