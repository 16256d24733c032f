// Package lock implements the gesture lock state machine.
//
// A Controller owns the enrolled gesture, the failed-attempt counter and the
// lockout window. It is driven by a single Runner goroutine that polls an
// Input each cycle; nothing else mutates controller state. Everything the
// controller does is reported to a Sink as an Event, which is how LEDs, logs
// and the event journal learn about it.
package lock
