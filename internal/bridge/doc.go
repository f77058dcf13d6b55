// Package bridge runs the SID bridge: a single cooperative loop that drains
// frames from the bus into the display dispatcher and ticks the display
// scheduler once per iteration.
//
// Buttons, light level and speed frames go to Actions, which reproduces the
// behavior of the head unit replacement:
//
//   - SRC toggles the Bluetooth module.
//   - SEEK UP / SEEK DOWN, while Bluetooth is on, pulse the next or previous
//     track line and show "NEXT TRACK" / "PREV TRACK" for 800ms.
//   - NPANEL toggles night panel, which turns the LEDs off.
//   - Double tapping SET or CLR within 500ms enables or disables the LED strips.
//   - The ambient light level sets LED brightness between 20 and 255.
//
// The Simulator plays the vehicle side on a virtual bus for desk testing.
package bridge
