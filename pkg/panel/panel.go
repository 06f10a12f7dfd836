// Package panel wires the view router, entity cache, rule builder and action
// dispatcher into the control panel served by the web and MCP surfaces.
package panel

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/urmzd/hubpanel/pkg/cache"
	"github.com/urmzd/hubpanel/pkg/device"
	"github.com/urmzd/hubpanel/pkg/device/schema"
	"github.com/urmzd/hubpanel/pkg/dispatch"
	"github.com/urmzd/hubpanel/pkg/hub"
	"github.com/urmzd/hubpanel/pkg/notice"
	"github.com/urmzd/hubpanel/pkg/rule"
	"github.com/urmzd/hubpanel/pkg/view"
)

// ErrNoForm is returned when a rule form operation runs outside rule_detail.
var ErrNoForm = errors.New("no rule form is open")

// Settings are the tunables of a panel.
type Settings struct {
	MapURL          string
	LogLines        int
	LogPollInterval time.Duration
	PairingWindow   time.Duration
	RefreshDelay    time.Duration
	NoticeTTL       time.Duration
}

// DefaultSettings returns the settings used when nothing is configured.
func DefaultSettings() Settings {
	return Settings{
		LogLines:        100,
		LogPollInterval: 5 * time.Second,
		PairingWindow:   60 * time.Second,
		RefreshDelay:    dispatch.DefaultRefreshDelay,
		NoticeTTL:       notice.DefaultTTL,
	}
}

// StateStore persists the View-State across restarts.
type StateStore interface {
	SaveViewState(ctx context.Context, s view.State) error
	LoadViewState(ctx context.Context) (view.State, bool, error)
}

// Panel is safe for concurrent use by HTTP handlers and MCP tools.
type Panel struct {
	gw        hub.Gateway
	settings  Settings
	router    *view.Router
	cache     *cache.Cache
	builder   *rule.Builder
	dispatch  *dispatch.Dispatcher
	notices   *notice.Board
	validator *schema.Validator
	store     StateStore

	formMu    sync.Mutex
	form      *rule.Form
	formEpoch uint64

	logMu    sync.Mutex
	logs     []string
	stopPoll context.CancelFunc

	pairMu  sync.Mutex
	pairing pairingWindow

	subMu sync.Mutex
	subs  map[chan Update]struct{}
}

// Option configures a Panel.
type Option func(*Panel)

// WithSettings replaces DefaultSettings.
func WithSettings(s Settings) Option {
	return func(p *Panel) { p.settings = s }
}

// WithStateStore enables View-State persistence.
func WithStateStore(store StateStore) Option {
	return func(p *Panel) { p.store = store }
}

// New creates a panel talking to the hub through gw.
func New(gw hub.Gateway, opts ...Option) *Panel {
	p := &Panel{
		gw:        gw,
		settings:  DefaultSettings(),
		router:    view.NewRouter(),
		validator: schema.NewValidator(),
		subs:      make(map[chan Update]struct{}),
	}
	for _, opt := range opts {
		opt(p)
	}
	p.cache = cache.New(gw)
	p.notices = notice.NewBoard(p.settings.NoticeTTL)
	p.builder = rule.NewBuilder(gw, rule.WithCheck(func(r rule.Rule) error {
		return p.validator.ValidateRule(r)
	}))
	p.dispatch = dispatch.New(gw, p.notices,
		dispatch.WithValidator(p.validator),
		dispatch.WithRefreshDelay(p.settings.RefreshDelay),
		dispatch.WithRerender(p.afterMutation),
	)
	return p
}

// Start restores the persisted View-State and enters the active screen.
func (p *Panel) Start(ctx context.Context) {
	if p.store != nil {
		s, ok, err := p.store.LoadViewState(ctx)
		switch {
		case err != nil:
			log.Warn().Err(err).Msg("Failed to load view state")
		case ok:
			p.router.Restore(s)
		}
	}
	p.enter(ctx, p.router.State(), true)
	p.broadcast()
}

// Close stops background work.
func (p *Panel) Close() {
	p.stopLogPoller()
	p.cancelPairing()
}

// Settings returns the active settings.
func (p *Panel) Settings() Settings { return p.settings }

// Configured reports whether a hub is configured.
func (p *Panel) Configured() bool { return p.gw.IsConfigured() }

// Cache exposes the entity cache for read-only callers.
func (p *Panel) Cache() *cache.Cache { return p.cache }

// Dispatcher exposes the action dispatcher.
func (p *Panel) Dispatcher() *dispatch.Dispatcher { return p.dispatch }

// Notices exposes the notice board.
func (p *Panel) Notices() *notice.Board { return p.notices }

// State returns the current View-State.
func (p *Panel) State() view.State { return p.router.State() }

// Page renders the current screen.
func (p *Panel) Page() view.Page {
	s := p.router.State()
	x := view.Extras{
		MapURL:  p.settings.MapURL,
		Pairing: p.pairingStatus(),
		Notices: p.notices.Messages(),
	}
	if s.Screen == view.ScreenRuleDetail {
		p.formMu.Lock()
		if p.form != nil && p.formEpoch == s.Epoch {
			fv := p.form.View()
			x.Form = &fv
		}
		p.formMu.Unlock()
	}
	if s.Screen == view.ScreenLogs {
		p.logMu.Lock()
		x.Logs = append([]string(nil), p.logs...)
		p.logMu.Unlock()
	}
	return view.Render(s, p.cache.Snapshot(), x)
}

// Navigate activates target, runs its entry cycle and returns the new page.
func (p *Panel) Navigate(ctx context.Context, target view.Target) (view.Page, error) {
	s, err := p.router.Navigate(target)
	if err != nil {
		return p.Page(), p.dispatchFailure("Navigate", err)
	}
	p.persist(ctx, s)
	p.enter(ctx, s, true)
	p.broadcast()
	return p.Page(), nil
}

// Back returns to the screen the current detail screen was entered from.
func (p *Panel) Back(ctx context.Context) view.Page {
	s, moved := p.router.Back()
	if moved {
		p.persist(ctx, s)
		p.enter(ctx, s, true)
		p.broadcast()
	}
	return p.Page()
}

// Refresh refetches the data of the current screen without leaving it.
func (p *Panel) Refresh(ctx context.Context) view.Page {
	p.enter(ctx, p.router.State(), false)
	p.broadcast()
	return p.Page()
}

// Toggle flips a device or group, looking its current state up in the cache.
// An id unknown to the hub is reported as device.ErrNotFound; a sensor as
// device.ErrValidation.
func (p *Panel) Toggle(ctx context.Context, id string) (string, error) {
	lookup := func() (string, bool, error) {
		if d, ok := p.cache.Device(id); ok {
			if !d.Controllable() {
				return "", false, uncontrollable(id)
			}
			return d.Power(), false, nil
		}
		if g, ok := p.cache.Group(id); ok {
			return g.Power(p.cache.Device), true, nil
		}
		return "", false, fmt.Errorf("%q: %w", id, device.ErrNotFound)
	}
	power, group, err := lookup()
	if errors.Is(err, device.ErrNotFound) {
		if err := p.cache.Refresh(ctx, cache.KindDevices, cache.KindGroups); err != nil {
			return "", p.dispatchFailure("Toggle", err)
		}
		power, group, err = lookup()
	}
	if err != nil {
		return "", p.dispatchFailure("Toggle", err)
	}
	if group {
		action := dispatch.Inverse(power)
		if err := p.notify(p.dispatch.ToggleGroup(ctx, id, action)); err != nil {
			return "", err
		}
		return action, nil
	}
	action, err := p.dispatch.Toggle(ctx, id, power)
	return action, p.notify(err)
}

func (p *Panel) dispatchFailure(op string, err error) error {
	p.notices.Failure(op, err)
	p.broadcast()
	return err
}

// afterMutation is the dispatcher's rerender hook: it drops focus on deleted
// entities, then refreshes the current screen.
func (p *Panel) afterMutation(ctx context.Context, ev dispatch.Event) {
	if ev.Deleted {
		if s, moved := p.router.Forget(ev.Kind, ev.ID); moved {
			p.persist(ctx, s)
			p.enter(ctx, s, true)
			p.broadcast()
			return
		}
	}
	p.Refresh(ctx)
}

func (p *Panel) persist(ctx context.Context, s view.State) {
	if p.store == nil {
		return
	}
	if err := p.store.SaveViewState(ctx, s); err != nil {
		log.Warn().Err(err).Msg("Failed to save view state")
	}
}
