package panel

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"
	"github.com/urmzd/hubpanel/pkg/cache"
	"github.com/urmzd/hubpanel/pkg/device"
	"github.com/urmzd/hubpanel/pkg/rule"
	"github.com/urmzd/hubpanel/pkg/view"
)

// openForm opens the rule form for the rule_detail state s. A rule missing
// from the cache leaves no form; the page renders it as missing.
func (p *Panel) openForm(s view.State) {
	snap := p.cache.Snapshot()

	var f *rule.Form
	if s.Creating() {
		f = p.builder.OpenForCreate(snap.Devices, snap.Groups, s.Prefill)
	} else {
		r, ok := snap.Rule(s.RuleID)
		if !ok {
			return
		}
		f = p.builder.OpenForEdit(r, snap.Devices, snap.Groups)
	}

	p.formMu.Lock()
	defer p.formMu.Unlock()
	if !p.router.Current(s.Epoch) {
		return
	}
	p.form = f
	p.formEpoch = s.Epoch
}

func (p *Panel) hasForm(epoch uint64) bool {
	p.formMu.Lock()
	defer p.formMu.Unlock()
	return p.form != nil && p.formEpoch == epoch
}

func (p *Panel) discardForm() {
	p.formMu.Lock()
	defer p.formMu.Unlock()
	p.form = nil
	p.formEpoch = 0
}

// OpenRuleForm navigates to rule_detail. An empty ruleID opens a new rule,
// optionally with its action target preselected.
func (p *Panel) OpenRuleForm(ctx context.Context, ruleID, prefillTargetID string) (view.Page, error) {
	return p.Navigate(ctx, view.Target{Screen: view.ScreenRuleDetail, ID: ruleID, Prefill: prefillTargetID})
}

// UpdateRuleForm applies a partial update to the open form.
func (p *Panel) UpdateRuleForm(ctx context.Context, in rule.Input) (view.Page, error) {
	epoch := p.router.State().Epoch

	p.formMu.Lock()
	if p.form == nil || p.formEpoch != epoch {
		p.formMu.Unlock()
		return p.Page(), p.dispatchFailure("Rule", ErrNoForm)
	}
	err := p.form.Apply(in)
	p.formMu.Unlock()

	if err != nil {
		return p.Page(), p.dispatchFailure("Rule", err)
	}
	p.broadcast()
	return p.Page(), nil
}

// SubmitRule creates or updates the open rule on the hub, then returns to
// the rules list. On failure the form stays open with its input intact.
func (p *Panel) SubmitRule(ctx context.Context) (rule.Rule, error) {
	epoch := p.router.State().Epoch

	p.formMu.Lock()
	if p.form == nil || p.formEpoch != epoch {
		p.formMu.Unlock()
		return rule.Rule{}, p.dispatchFailure("Save rule", ErrNoForm)
	}
	mode := p.form.Mode()
	r, err := p.builder.Prepare(p.form)
	p.formMu.Unlock()
	if err != nil {
		return rule.Rule{}, p.dispatchFailure("Save rule", err)
	}

	if err := p.builder.Save(ctx, mode, r); err != nil {
		return rule.Rule{}, p.dispatchFailure("Save rule", err)
	}
	log.Info().Str("rule", r.ID).Msg("Saved rule")

	if p.router.Current(epoch) {
		if _, err := p.Navigate(ctx, view.Target{Screen: view.ScreenRules}); err != nil {
			return r, err
		}
	} else {
		p.Refresh(ctx)
	}
	return r, nil
}

// CreateRule builds a new rule from in without touching the screen form.
func (p *Panel) CreateRule(ctx context.Context, in rule.Input) (rule.Rule, error) {
	if err := p.cache.Refresh(ctx, cache.KindDevices, cache.KindGroups); err != nil {
		return rule.Rule{}, p.dispatchFailure("Create rule", err)
	}
	snap := p.cache.Snapshot()
	f := p.builder.OpenForCreate(snap.Devices, snap.Groups, "")
	return p.submitDetached(ctx, "Create rule", f, in)
}

// UpdateRule applies in on top of the stored rule id and saves it.
func (p *Panel) UpdateRule(ctx context.Context, id string, in rule.Input) (rule.Rule, error) {
	if err := p.cache.Refresh(ctx, cache.KindRules, cache.KindDevices, cache.KindGroups); err != nil {
		return rule.Rule{}, p.dispatchFailure("Update rule", err)
	}
	snap := p.cache.Snapshot()
	r, ok := snap.Rule(id)
	if !ok {
		return rule.Rule{}, p.dispatchFailure("Update rule", fmt.Errorf("rule %q: %w", id, device.ErrNotFound))
	}
	f := p.builder.OpenForEdit(r, snap.Devices, snap.Groups)
	return p.submitDetached(ctx, "Update rule", f, in)
}

func (p *Panel) submitDetached(ctx context.Context, op string, f *rule.Form, in rule.Input) (rule.Rule, error) {
	if err := f.Apply(in); err != nil {
		return rule.Rule{}, p.dispatchFailure(op, err)
	}
	r, err := p.builder.Submit(ctx, f)
	if err != nil {
		return rule.Rule{}, p.dispatchFailure(op, err)
	}
	p.Refresh(ctx)
	return r, nil
}

