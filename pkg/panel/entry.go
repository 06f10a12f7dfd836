package panel

import (
	"context"

	"github.com/rs/zerolog/log"
	"github.com/urmzd/hubpanel/pkg/cache"
	"github.com/urmzd/hubpanel/pkg/device"
	"github.com/urmzd/hubpanel/pkg/view"
)

// kindsFor lists the collections a screen renders from.
func kindsFor(s view.Screen) []cache.Kind {
	switch s {
	case view.ScreenDevices:
		return []cache.Kind{cache.KindDevices}
	case view.ScreenDeviceDetail:
		return []cache.Kind{cache.KindDevices, cache.KindGroups, cache.KindRules}
	case view.ScreenGroups, view.ScreenGroupDetail:
		return []cache.Kind{cache.KindGroups, cache.KindDevices}
	case view.ScreenRules, view.ScreenRuleDetail:
		return []cache.Kind{cache.KindRules, cache.KindDevices, cache.KindGroups}
	default:
		return nil
	}
}

// enter runs the entry cycle of s: fetch what the screen needs, then set up
// screen-local state. Results for a view that is no longer current are
// dropped. reopen discards an open rule form; a plain refresh keeps it.
func (p *Panel) enter(ctx context.Context, s view.State, reopen bool) {
	if s.Screen != view.ScreenLogs {
		p.stopLogPoller()
	}
	if s.Screen != view.ScreenRuleDetail || reopen {
		p.discardForm()
	}

	if !reopen {
		p.router.SetBanner(s.Epoch, "")
	}

	if err := p.cache.Refresh(ctx, kindsFor(s.Screen)...); err != nil {
		p.banner(s, err)
		return
	}

	switch s.Screen {
	case view.ScreenRuleDetail:
		if reopen || !p.hasForm(s.Epoch) {
			p.openForm(s)
		}
	case view.ScreenLogs:
		if err := p.fetchLogs(ctx, s.Epoch); err != nil {
			p.banner(s, err)
		}
		// The poller keeps retrying after a failed first fetch.
		if reopen {
			p.startLogPoller(s.Epoch)
		}
	}
}

func (p *Panel) banner(s view.State, err error) {
	msg := device.UserMessage(err)
	if p.router.SetBanner(s.Epoch, msg) {
		log.Warn().Err(err).Str("screen", s.String()).Msg("Screen entry failed")
		return
	}
	log.Debug().Err(err).Str("screen", s.String()).Msg("Dropped failure for a superseded view")
}
