package view

import (
	"sync"

	"github.com/rs/zerolog/log"
	"github.com/urmzd/hubpanel/pkg/cache"
)

// Router owns the View-State. Every transition builds a complete new State
// and swaps it in under the lock, so readers never see a half-applied screen.
type Router struct {
	mu    sync.RWMutex
	state State
}

// NewRouter creates a router at the initial screen.
func NewRouter() *Router {
	return &Router{state: Initial()}
}

// Restore replaces the state with a persisted one. An invalid state is
// ignored and the router stays where it is. The epoch keeps increasing.
func (r *Router) Restore(s State) bool {
	if err := s.Validate(); err != nil {
		log.Warn().Err(err).Msg("Ignoring persisted view state")
		return false
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	s.Epoch = r.state.Epoch + 1
	s.Banner = ""
	r.state = s
	return true
}

// State returns the current View-State.
func (r *Router) State() State {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.state
}

// Navigate activates the target screen.
func (r *Router) Navigate(t Target) (State, error) {
	if err := t.Validate(); err != nil {
		return r.State(), err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.state = transition(r.state, t)
	log.Debug().
		Str("screen", string(r.state.Screen)).
		Uint64("epoch", r.state.Epoch).
		Msg("Navigated")
	return r.state, nil
}

// transition computes the state entered from cur for t. Focus references
// not used by the new screen are dropped.
func transition(cur State, t Target) State {
	next := State{Screen: t.Screen, Epoch: cur.Epoch + 1}
	switch t.Screen {
	case ScreenDeviceDetail:
		next.DeviceID = t.ID
		switch {
		case cur.Screen == ScreenGroupDetail:
			next.Origin = ScreenGroupDetail
			next.GroupID = cur.GroupID
		case cur.Screen == ScreenDeviceDetail && cur.Origin == ScreenGroupDetail:
			next.Origin = ScreenGroupDetail
			next.GroupID = cur.GroupID
		default:
			next.Origin = ScreenDevices
		}
	case ScreenGroupDetail:
		next.GroupID = t.ID
	case ScreenRuleDetail:
		next.RuleID = t.ID
		if t.ID == "" {
			next.Prefill = t.Prefill
		}
	}
	return next
}

// BackTarget returns where the back affordance of s leads.
func BackTarget(s State) (Target, bool) {
	switch s.Screen {
	case ScreenDeviceDetail:
		if s.Origin == ScreenGroupDetail && s.GroupID != "" {
			return Target{Screen: ScreenGroupDetail, ID: s.GroupID}, true
		}
		return Target{Screen: ScreenDevices}, true
	case ScreenGroupDetail:
		return Target{Screen: ScreenGroups}, true
	case ScreenRuleDetail:
		return Target{Screen: ScreenRules}, true
	default:
		return Target{}, false
	}
}

// Back returns to the screen the current detail screen was entered from.
// On top-level screens it is a no-op and reports false.
func (r *Router) Back() (State, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	t, ok := BackTarget(r.state)
	if !ok {
		return r.state, false
	}
	r.state = transition(r.state, t)
	return r.state, true
}

// Current reports whether epoch still identifies the active view.
func (r *Router) Current(epoch uint64) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.state.Epoch == epoch
}

// SetBanner records an inline error for the view identified by epoch. It is
// dropped when that view is no longer current.
func (r *Router) SetBanner(epoch uint64, msg string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.state.Epoch != epoch {
		return false
	}
	r.state.Banner = msg
	return true
}

// Forget drops focus references to a deleted entity. When the active screen
// was showing it, the router moves to that screen's back target.
func (r *Router) Forget(kind cache.Kind, id string) (State, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	cur := r.state
	switch kind {
	case cache.KindDevices:
		if cur.Screen == ScreenDeviceDetail && cur.DeviceID == id {
			t, _ := BackTarget(cur)
			r.state = transition(cur, t)
			return r.state, true
		}
	case cache.KindGroups:
		if cur.GroupID != id {
			break
		}
		if cur.Screen == ScreenGroupDetail {
			r.state = transition(cur, Target{Screen: ScreenGroups})
			return r.state, true
		}
		// DeviceDetail keeps showing the device; back now leads to the list.
		cur.Origin = ScreenDevices
		cur.GroupID = ""
		r.state = cur
		return r.state, false
	case cache.KindRules:
		if cur.Screen == ScreenRuleDetail && cur.RuleID == id {
			r.state = transition(cur, Target{Screen: ScreenRules})
			return r.state, true
		}
	}
	return r.state, false
}
