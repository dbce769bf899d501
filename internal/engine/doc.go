// Package engine is the authoritative simulation of Neon Domination.
//
// It owns every live room, seats players, resolves tile interactions, runs
// the fixed-tick game loop and decides winners. All mutation of a room
// happens under that room's lock; outbound notifications are queued on the
// room's outbox and handed to an events.Dispatcher before the lock is
// released, so every recipient sees a room's events in mutation order.
package engine
