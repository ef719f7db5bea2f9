//go:build rp2040 || rp2350

package firmware

import "context"

// The board has no network interface; the web front end is host only.
func startWeb(_ context.Context, sys *System) {
	if sys.Config.Web.Enabled {
		log.Println("web enabled in config but no network on this board")
	}
}
