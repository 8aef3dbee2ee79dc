// Package task runs activity processing in the background without blocking
// the Discord gateway.
//
// A KeyedPool owns a fixed set of workers, each draining its own bounded
// queue. Tasks are routed to a worker by a hash of their key, so every task
// of one user executes sequentially and in submission order while different
// users progress in parallel.
package task
