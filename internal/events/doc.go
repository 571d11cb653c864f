// Package events provides types and interfaces for scheduler event
// notifications.
//
// The scheduler emits events for conditions callers may want to react
// to (currently leech detection) without the engine knowing who
// listens. Handlers register with an emitter; the engine only depends
// on the EventEmitter interface.
package events
