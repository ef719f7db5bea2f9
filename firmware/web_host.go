//go:build !rp2040 && !rp2350

package firmware

import (
	"context"

	"ledstack-go/mailbox"
	"ledstack-go/services/webapi"
)

func startWeb(ctx context.Context, sys *System) {
	wc := sys.Config.Web
	if !wc.Enabled {
		return
	}
	srv := webapi.New(sys.DisplayBox.Producer("web", mailbox.BlockTimeout(wc.EnqueueTimeout)), sys.Keeper, sys.Store,
		webapi.Config{User: wc.User, Password: wc.Password}, sys.DisplayBox, sys.StorageBox)
	go func() {
		if err := srv.ListenAndServe(ctx, wc.Listen); err != nil {
			log.Println("web stopped:", err.Error())
		}
	}()
}
