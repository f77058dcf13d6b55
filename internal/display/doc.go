// Package display arbitrates the shared SID row between the vehicle side and
// messages sent by the bridge.
//
// The Scheduler owns all display state: the priority table, the reassembly
// of vehicle broadcasts, the last vehicle and outgoing buffers, and who
// currently owns the row. The Dispatcher routes decoded bus frames into it.
//
// # Lifecycle of a user message
//
//  1. SendUserMessage checks write permission, encodes the text and writes
//     the three sub-frames 10ms apart. Ownership becomes user.
//  2. When the vehicle side broadcasts a fresh update while the message is
//     still inside its window, the last outgoing buffer is resent once.
//  3. Tick scrolls text longer than 12 characters one step per scroll delay.
//  4. When the window elapses (or CancelUserMessage is called) Tick writes
//     the last vehicle content back and ownership returns to the vehicle.
//
// # Usage
//
//	sched := display.NewScheduler(display.DefaultConfig(), bus, display.SystemClock{})
//	disp := display.NewDispatcher(sched, listener)
//
//	for {
//	    if frame, ok, _ := bus.Receive(); ok {
//	        disp.OnBusFrame(frame)
//	    }
//	    sched.Tick(time.Now())
//	}
//
// Denied writes are the normal outcome of contention with other devices and
// are reported as a false return, never as an error.
package display
