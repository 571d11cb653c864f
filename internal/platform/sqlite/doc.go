// Package sqlite provides SQLite implementations of the store
// interfaces, backed by the embedded modernc.org/sqlite driver. It is
// the zero-dependency deployment option and the backend the engine
// integration tests run against (with a :memory: DSN).
package sqlite
