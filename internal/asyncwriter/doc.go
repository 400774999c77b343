// Package asyncwriter runs persistence work off the request path.
//
// The gateway hands completed chat turns to a Writer and returns the
// response to the client without waiting. The queue is bounded: under
// sustained backend outage or load spikes, excess writes are dropped
// with a warning rather than letting memory or latency grow. Chat
// history here is best-effort by contract.
package asyncwriter
