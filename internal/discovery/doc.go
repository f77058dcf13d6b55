// Package discovery finds sidbridge monitors on the local network.
//
// A running bridge advertises its monitor API as a "_sidbridge._tcp" mDNS
// service. TXT records carry the bridge version, the display row it writes
// and its device id.
//
// # Usage Example
//
//	bridge, err := discovery.FindFirst(ctx, 3*time.Second)
//	if err != nil {
//	    return err
//	}
//	fmt.Println("monitor at", bridge.BaseURL())
package discovery
