// Package inference invokes the remote text generation provider with a
// hard wall-clock deadline and classifies the outcome.
//
// The invoker dispatches each call on its own goroutine and selects on
// the result, a timer, and the caller's context. A call that misses the
// deadline is abandoned: its context is canceled and its eventual result
// is discarded. No retries happen here; retry policy belongs to the
// caller.
//
// Outcome classification is the one place rate limits are detected. A
// structured 429 code on the provider error wins; matching "429" as a
// substring of the stringified error is the documented fallback for
// unstructured error shapes.
package inference
