package panel

import (
	"context"
	"slices"
	"time"

	"github.com/rs/zerolog/log"
)

// Logs fetches the most recent hub log lines, newest first.
func (p *Panel) Logs(ctx context.Context) ([]string, error) {
	lines, err := p.gw.Logs(ctx, p.settings.LogLines)
	if err != nil {
		return nil, err
	}
	out := slices.Clone(lines)
	slices.Reverse(out)
	return out, nil
}

// fetchLogs refreshes the Logs screen buffer if epoch is still current.
func (p *Panel) fetchLogs(ctx context.Context, epoch uint64) error {
	lines, err := p.Logs(ctx)
	if err != nil {
		return err
	}
	p.logMu.Lock()
	defer p.logMu.Unlock()
	if !p.router.Current(epoch) {
		return nil
	}
	p.logs = lines
	return nil
}

// startLogPoller polls logs while the view identified by epoch is current.
func (p *Panel) startLogPoller(epoch uint64) {
	interval := p.settings.LogPollInterval
	if interval <= 0 {
		return
	}
	ctx, cancel := context.WithCancel(context.Background())

	p.logMu.Lock()
	if p.stopPoll != nil {
		p.stopPoll()
	}
	p.stopPoll = cancel
	p.logMu.Unlock()

	go func() {
		defer cancel()
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
			}
			if !p.router.Current(epoch) {
				log.Debug().Uint64("epoch", epoch).Msg("Log poller stopped")
				return
			}
			reqCtx, done := context.WithTimeout(ctx, interval)
			err := p.fetchLogs(reqCtx, epoch)
			done()
			if err != nil {
				log.Debug().Err(err).Msg("Log poll failed")
				continue
			}
			p.router.SetBanner(epoch, "")
			p.broadcast()
		}
	}()
}

func (p *Panel) stopLogPoller() {
	p.logMu.Lock()
	defer p.logMu.Unlock()
	if p.stopPoll != nil {
		p.stopPoll()
		p.stopPoll = nil
	}
	p.logs = nil
}
