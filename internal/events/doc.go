// Package events carries bot activity between the Discord adapter and the
// components that react to it.
//
// The adapter translates gateway events into ActivityEvents and emits them;
// handlers registered on an EventEmitter (the per-user task pool in
// production) process them without the adapter knowing who listens.
//
// The primary components are:
// - ActivityEvent: a user action with a typed JSON payload
// - EventHandler: interface for components that can handle events
// - EventEmitter: interface for components that can emit events
package events
