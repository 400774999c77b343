// Package store persists chat turns and synced conversations in MongoDB.
//
// The store is an optional dependency of the gateway: every method
// degrades to ErrUnavailable instead of blocking when the backend is
// unreachable, and MongoStore redials lazily so a backend that comes up
// after the gateway (or drops mid-flight) is picked up without a
// restart. With no URI configured the store reports disconnected
// forever and the gateway runs local-only.
//
// Two collections are used: chat_turns receives one insert per
// successful exchange, conversations holds client-synced records
// upserted by their id field with a server-stamped last_synced time.
package store
