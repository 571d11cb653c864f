// Package store defines the persistence contracts of the engine and
// shared transaction helpers. Implementations live under
// internal/platform.
package store
