package flow

import (
	"context"
	"net/http"
	"time"
)

// StartProbe launches the periodic session check: while the mirror believes
// a user is signed in, a harmless authenticated call is issued every probe
// interval. A 401 funnels through the gateway's implicit-logout hook like
// any other authenticated call; other failures are logged and ignored.
// The probe stops when ctx is canceled.
func (c *Controller) StartProbe(ctx context.Context) {
	go func() {
		ticker := time.NewTicker(c.probeInterval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				c.probeOnce(ctx)
			}
		}
	}()
}

func (c *Controller) probeOnce(ctx context.Context) {
	if !c.sess.IsAuthenticated() {
		return
	}

	if _, err := c.gw.Send(ctx, http.MethodGet, "/account/settings", nil, nil); err != nil {
		// The 401 case already ran the implicit-logout path inside Send.
		c.logger.Debug("auth probe failed", "err", err)
	}
}
