package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/urmzd/hubpanel/pkg/api/types"
	"github.com/urmzd/hubpanel/pkg/device"
	"github.com/urmzd/hubpanel/pkg/hub"
	"github.com/urmzd/hubpanel/pkg/hub/hubtest"
	"github.com/urmzd/hubpanel/pkg/panel"
	"github.com/urmzd/hubpanel/pkg/view"
)

type fixture struct {
	hub   *hubtest.Hub
	panel *panel.Panel
	h     http.Handler
}

func setup(t *testing.T) *fixture {
	t.Helper()
	h := hubtest.New(t)
	h.SetDevices(
		device.Device{ID: "d1", Name: "Lamp", Type: device.TypeLight, State: device.State{"state": "OFF"}},
		device.Device{ID: "d2", Name: "Plug", Type: device.TypeSocket, State: device.State{"state": "ON"}},
	)
	h.SetGroups(device.Group{ID: "kitchen", Name: "Kitchen", Members: []string{"d1"}})

	s := panel.DefaultSettings()
	s.RefreshDelay = 0
	s.LogPollInterval = 0
	p := panel.New(hub.NewClient(h.URL()), panel.WithSettings(s))
	t.Cleanup(p.Close)
	p.Start(context.Background())

	r, err := NewRouter(p)
	require.NoError(t, err)
	return &fixture{hub: h, panel: p, h: r.Handler()}
}

func (f *fixture) do(t *testing.T, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	f.h.ServeHTTP(w, req)
	return w
}

func (f *fixture) form(t *testing.T, path string, values url.Values) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(values.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	w := httptest.NewRecorder()
	f.h.ServeHTTP(w, req)
	return w
}

func TestHealth(t *testing.T) {
	f := setup(t)

	w := f.do(t, http.MethodGet, "/health", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var resp types.HealthResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "healthy", resp.Status)
	assert.Equal(t, "configured", resp.Hub)
	assert.NotEmpty(t, w.Header().Get(RequestIDHeader))
}

func TestHealth_NoHub(t *testing.T) {
	p := panel.New(hub.NewNullGateway())
	t.Cleanup(p.Close)
	r, err := NewRouter(p)
	require.NoError(t, err)

	w := httptest.NewRecorder()
	r.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/health", nil))
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}

func TestListDevices(t *testing.T) {
	f := setup(t)

	w := f.do(t, http.MethodGet, "/api/v1/devices", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var resp types.ListDevicesResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, 2, resp.Count)
}

func TestToggleDevice(t *testing.T) {
	f := setup(t)

	w := f.do(t, http.MethodPost, "/api/v1/devices/d1/toggle", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var resp types.ToggleResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, device.ActionTurnOn, resp.Action)

	actions := f.hub.Actions()
	require.Len(t, actions, 1)
	assert.Equal(t, "d1", actions[0].DeviceID)
}

func TestToggleUnknownDevice(t *testing.T) {
	f := setup(t)

	w := f.do(t, http.MethodPost, "/api/v1/devices/nope/toggle", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Empty(t, f.hub.Actions())
}

func TestNavigate(t *testing.T) {
	f := setup(t)

	w := f.do(t, http.MethodPost, "/api/v1/view/navigate", view.Target{Screen: view.ScreenGroupDetail, ID: "kitchen"})
	require.Equal(t, http.StatusOK, w.Code)

	var page view.Page
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &page))
	assert.Equal(t, view.ScreenGroupDetail, page.Screen)
	require.NotNil(t, page.Group)
	assert.Equal(t, "Kitchen", page.Group.Name)
}

func TestNavigate_InvalidScreen(t *testing.T) {
	f := setup(t)

	w := f.do(t, http.MethodPost, "/api/v1/view/navigate", map[string]string{"screen": "bogus"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = f.do(t, http.MethodPost, "/api/v1/view/navigate", map[string]string{})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestRenameDevice(t *testing.T) {
	f := setup(t)

	w := f.do(t, http.MethodPut, "/api/v1/devices/d1/name", types.RenameDeviceRequest{Name: "Desk lamp"})
	require.Equal(t, http.StatusNoContent, w.Code)

	d, ok := f.hub.Device("d1")
	require.True(t, ok)
	assert.Equal(t, "Desk lamp", d.Name)

	w = f.do(t, http.MethodPut, "/api/v1/devices/d1/name", map[string]string{})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestCreateGroup(t *testing.T) {
	f := setup(t)

	w := f.do(t, http.MethodPost, "/api/v1/groups", types.CreateGroupRequest{Name: "Living Room", Members: []string{"d2"}})
	require.Equal(t, http.StatusCreated, w.Code)

	var resp types.GroupResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "Living Room", resp.Group.Name)
	assert.Equal(t, []string{"d2"}, resp.Group.Members)
	assert.Len(t, f.hub.Groups(), 2)
}

func TestCreateRule(t *testing.T) {
	f := setup(t)

	body := map[string]any{
		"name":         "Morning",
		"trigger_type": "time",
		"time":         "07:30",
		"target":       "d1",
		"command":      "turn_on",
	}
	w := f.do(t, http.MethodPost, "/api/v1/rules", body)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	rules := f.hub.Rules()
	require.Len(t, rules, 1)
	assert.Equal(t, "Morning", rules[0].Name)
	assert.Equal(t, "d1", rules[0].Action.DeviceID)
}

func TestCreateRule_Invalid(t *testing.T) {
	f := setup(t)

	body := map[string]any{"name": "Bad", "trigger_type": "time", "time": "25:00", "target": "d1"}
	w := f.do(t, http.MethodPost, "/api/v1/rules", body)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Empty(t, f.hub.Rules())
}

func TestHubFailureMapsToBadGateway(t *testing.T) {
	f := setup(t)
	f.hub.Fail("POST /devices/action", http.StatusInternalServerError)

	w := f.do(t, http.MethodPost, "/api/v1/devices/d1/toggle", nil)
	assert.Equal(t, http.StatusBadGateway, w.Code)
	assert.NotEmpty(t, f.panel.Notices().Messages())
}

func TestUI_PageRenders(t *testing.T) {
	f := setup(t)

	w := httptest.NewRecorder()
	f.h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Lamp")
	assert.Contains(t, w.Body.String(), "/ui/devices/d1/toggle")
}

func TestUI_PostRedirects(t *testing.T) {
	f := setup(t)

	w := f.form(t, "/ui/nav/group_detail/kitchen", nil)
	assert.Equal(t, http.StatusSeeOther, w.Code)
	assert.Equal(t, "/", w.Header().Get("Location"))
	assert.Equal(t, view.ScreenGroupDetail, f.panel.State().Screen)

	w = f.form(t, "/ui/groups/kitchen/toggle", nil)
	assert.Equal(t, http.StatusSeeOther, w.Code)
	require.Len(t, f.hub.Actions(), 1)
	assert.Equal(t, "kitchen", f.hub.Actions()[0].DeviceID)
}

func TestUI_FailureBecomesNotice(t *testing.T) {
	f := setup(t)

	w := f.form(t, "/ui/devices/d1/rename", url.Values{"name": {"  "}})
	assert.Equal(t, http.StatusSeeOther, w.Code)
	assert.NotEmpty(t, f.panel.Notices().Messages())
}

func TestUI_RuleForm(t *testing.T) {
	f := setup(t)

	w := f.form(t, "/ui/nav/rule_detail", url.Values{"prefill": {"d1"}})
	require.Equal(t, http.StatusSeeOther, w.Code)
	require.Equal(t, view.ScreenRuleDetail, f.panel.State().Screen)

	w = f.form(t, "/ui/rules/form/submit", url.Values{
		"name":           {"Evening"},
		"active":         {"true", "false"},
		"trigger_type":   {"time"},
		"time":           {"19:00"},
		"trigger_device": {""},
		"command":        {"turn_off"},
	})
	require.Equal(t, http.StatusSeeOther, w.Code)

	rules := f.hub.Rules()
	require.Len(t, rules, 1)
	assert.Equal(t, "Evening", rules[0].Name)
	assert.True(t, rules[0].Active)
	assert.Equal(t, "d1", rules[0].Action.DeviceID)
}
