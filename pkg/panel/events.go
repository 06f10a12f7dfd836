package panel

import "github.com/urmzd/hubpanel/pkg/view"

// Update tells a subscriber that the page changed and should be re-rendered.
type Update struct {
	Screen view.Screen `json:"screen"`
	Epoch  uint64      `json:"epoch"`
}

// Subscribe registers for render updates. Updates are coalesced: a slow
// subscriber only ever sees the latest one.
func (p *Panel) Subscribe() chan Update {
	ch := make(chan Update, 1)
	p.subMu.Lock()
	p.subs[ch] = struct{}{}
	p.subMu.Unlock()
	return ch
}

// Unsubscribe removes and closes a subscription.
func (p *Panel) Unsubscribe(ch chan Update) {
	p.subMu.Lock()
	defer p.subMu.Unlock()
	if _, ok := p.subs[ch]; ok {
		delete(p.subs, ch)
		close(ch)
	}
}

func (p *Panel) broadcast() {
	s := p.router.State()
	u := Update{Screen: s.Screen, Epoch: s.Epoch}

	p.subMu.Lock()
	defer p.subMu.Unlock()
	for ch := range p.subs {
		select {
		case ch <- u:
		default:
			// Drop the pending update in favor of the newer one.
			select {
			case <-ch:
			default:
			}
			select {
			case ch <- u:
			default:
			}
		}
	}
}
