// Package canbus connects the bridge to the I-Bus.
//
// A Bus sends and polls 8-byte frames. Drivers register themselves by name
// and are selected at runtime with Open:
//
//	bus, err := canbus.Open("socketcan", "can0")
//	if err != nil {
//	    return err
//	}
//	defer bus.Close()
//
// # Drivers
//
// socketcan (Linux only) opens a non-blocking raw CAN socket on a network
// interface. The I-Bus runs at 47.619 kbit/s and the interface must be
// configured before the bridge starts:
//
//	ip link set can0 type can bitrate 47619
//	ip link set can0 up
//
// virtual is an in-process hub. Every endpoint opened on the same channel
// name receives the frames sent by the others. The simulator and the tests
// use it in place of a car.
package canbus
