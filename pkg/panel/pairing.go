package panel

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/urmzd/hubpanel/pkg/cache"
	"github.com/urmzd/hubpanel/pkg/view"
)

type pairingWindow struct {
	active bool
	until  time.Time
	gen    uint64
	stop   chan struct{}
}

func (p *Panel) pairingStatus() view.Pairing {
	p.pairMu.Lock()
	defer p.pairMu.Unlock()
	if !p.pairing.active {
		return view.Pairing{}
	}
	remaining := time.Until(p.pairing.until).Round(time.Second)
	if remaining < 0 {
		remaining = 0
	}
	return view.Pairing{Active: true, Remaining: int(remaining / time.Second)}
}

// StartPairing opens the hub's discovery window. It closes by itself after
// the configured window; the countdown is broadcast every second.
func (p *Panel) StartPairing(ctx context.Context) error {
	if err := p.gw.SetPairing(ctx, true); err != nil {
		return p.dispatchFailure("Start pairing", err)
	}

	window := p.settings.PairingWindow
	p.pairMu.Lock()
	p.closeWindowLocked()
	p.pairing.active = true
	p.pairing.until = time.Now().Add(window)
	p.pairing.stop = make(chan struct{})
	gen, stop := p.pairing.gen, p.pairing.stop
	p.pairMu.Unlock()

	log.Info().Dur("window", window).Msg("Pairing started")
	go p.runPairing(gen, window, stop)
	p.broadcast()
	return nil
}

func (p *Panel) runPairing(gen uint64, window time.Duration, stop <-chan struct{}) {
	deadline := time.NewTimer(window)
	defer deadline.Stop()
	tick := time.NewTicker(time.Second)
	defer tick.Stop()
	for {
		select {
		case <-stop:
			return
		case <-tick.C:
			p.broadcast()
		case <-deadline.C:
			ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			if err := p.finishPairing(ctx, gen); err != nil {
				log.Warn().Err(err).Msg("Failed to close pairing window")
			}
			cancel()
			return
		}
	}
}

// StopPairing closes the discovery window early. The hub is told to stop
// even when the panel has no window open.
func (p *Panel) StopPairing(ctx context.Context) error {
	p.pairMu.Lock()
	p.closeWindowLocked()
	p.pairMu.Unlock()
	return p.pairingClosed(ctx)
}

// finishPairing closes window gen when its countdown runs out.
func (p *Panel) finishPairing(ctx context.Context, gen uint64) error {
	p.pairMu.Lock()
	if p.pairing.gen != gen || !p.pairing.active {
		p.pairMu.Unlock()
		return nil
	}
	p.closeWindowLocked()
	p.pairMu.Unlock()
	return p.pairingClosed(ctx)
}

func (p *Panel) closeWindowLocked() {
	p.pairing.gen++
	if p.pairing.stop != nil {
		close(p.pairing.stop)
		p.pairing.stop = nil
	}
	p.pairing.active = false
}

// pairingClosed tells the hub and refreshes devices so newly paired ones appear.
func (p *Panel) pairingClosed(ctx context.Context) error {
	if err := p.gw.SetPairing(ctx, false); err != nil {
		return p.dispatchFailure("Stop pairing", err)
	}
	log.Info().Msg("Pairing finished")
	if err := p.cache.Refresh(ctx, cache.KindDevices); err != nil {
		log.Warn().Err(err).Msg("Device refresh after pairing failed")
	}
	p.notices.Info("Pairing finished. Check the device list.")
	p.broadcast()
	return nil
}

func (p *Panel) cancelPairing() {
	p.pairMu.Lock()
	defer p.pairMu.Unlock()
	p.closeWindowLocked()
}
