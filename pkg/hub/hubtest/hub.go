// Package hubtest provides an in-memory hub served over httptest for tests.
package hubtest

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"slices"
	"strconv"
	"sync"
	"testing"

	"github.com/urmzd/hubpanel/pkg/device"
	"github.com/urmzd/hubpanel/pkg/rule"
)

// Action is one recorded POST /devices/action call.
type Action struct {
	DeviceID string `json:"device_id"`
	Action   string `json:"action"`
	Value    any    `json:"value,omitempty"`
}

// Hub is a fake hub holding devices, groups and rules in memory. It applies
// actions to device state the way the real hub reports them back.
type Hub struct {
	mu       sync.Mutex
	devices  []device.Device
	groups   []device.Group
	rules    []rule.Rule
	logs     []string
	actions  []Action
	requests []string
	pairing  []bool
	failures map[string]int

	server *httptest.Server
}

// New starts a fake hub and closes it when the test ends.
func New(t testing.TB) *Hub {
	t.Helper()
	h := &Hub{failures: map[string]int{}}
	h.server = httptest.NewServer(h.routes())
	t.Cleanup(h.server.Close)
	return h
}

// URL returns the hub base URL.
func (h *Hub) URL() string { return h.server.URL }

// Close stops the server so later requests fail at the transport level.
func (h *Hub) Close() { h.server.Close() }

// SetDevices replaces the device list.
func (h *Hub) SetDevices(devices ...device.Device) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.devices = slices.Clone(devices)
}

// SetGroups replaces the group list.
func (h *Hub) SetGroups(groups ...device.Group) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.groups = slices.Clone(groups)
}

// SetRules replaces the rule list.
func (h *Hub) SetRules(rules ...rule.Rule) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.rules = slices.Clone(rules)
}

// SetLogs replaces the log lines (oldest first).
func (h *Hub) SetLogs(lines ...string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.logs = slices.Clone(lines)
}

// Fail makes every request matching "METHOD /path" answer with status.
// A zero status clears the failure.
func (h *Hub) Fail(route string, status int) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if status == 0 {
		delete(h.failures, route)
		return
	}
	h.failures[route] = status
}

// Actions returns the recorded action calls.
func (h *Hub) Actions() []Action {
	h.mu.Lock()
	defer h.mu.Unlock()
	return slices.Clone(h.actions)
}

// Requests returns "METHOD path" for every request received.
func (h *Hub) Requests() []string {
	h.mu.Lock()
	defer h.mu.Unlock()
	return slices.Clone(h.requests)
}

// Pairing returns the pairing toggles received, in order.
func (h *Hub) Pairing() []bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return slices.Clone(h.pairing)
}

// Rules returns the stored rules.
func (h *Hub) Rules() []rule.Rule {
	h.mu.Lock()
	defer h.mu.Unlock()
	return slices.Clone(h.rules)
}

// Groups returns the stored groups.
func (h *Hub) Groups() []device.Group {
	h.mu.Lock()
	defer h.mu.Unlock()
	return slices.Clone(h.groups)
}

// Device returns a stored device.
func (h *Hub) Device(id string) (device.Device, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	i := h.deviceIndex(id)
	if i < 0 {
		return device.Device{}, false
	}
	return h.devices[i], true
}

func (h *Hub) deviceIndex(id string) int {
	return slices.IndexFunc(h.devices, func(d device.Device) bool { return d.ID == id })
}

func (h *Hub) groupIndex(id string) int {
	return slices.IndexFunc(h.groups, func(g device.Group) bool { return g.ID == id })
}

func (h *Hub) ruleIndex(id string) int {
	return slices.IndexFunc(h.rules, func(r rule.Rule) bool { return r.ID == id })
}

func (h *Hub) routes() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /devices", h.listDevices)
	mux.HandleFunc("POST /devices/action", h.action)
	mux.HandleFunc("PUT /devices/{id}/rename", h.rename)
	mux.HandleFunc("DELETE /devices/{id}", h.removeDevice)
	mux.HandleFunc("GET /groups", h.listGroups)
	mux.HandleFunc("POST /groups", h.createGroup)
	mux.HandleFunc("DELETE /groups/{id}", h.deleteGroup)
	mux.HandleFunc("POST /groups/{id}/devices/{deviceId}", h.addMember)
	mux.HandleFunc("DELETE /groups/{id}/devices/{deviceId}", h.removeMember)
	mux.HandleFunc("GET /rules", h.listRules)
	mux.HandleFunc("POST /rules", h.createRule)
	mux.HandleFunc("PUT /rules/{id}", h.updateRule)
	mux.HandleFunc("DELETE /rules/{id}", h.deleteRule)
	mux.HandleFunc("POST /system/pairing/{enable}", h.setPairing)
	mux.HandleFunc("GET /logs", h.getLogs)

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		route := r.Method + " " + r.URL.Path
		h.mu.Lock()
		h.requests = append(h.requests, route)
		status, failing := h.failures[route]
		h.mu.Unlock()
		if failing {
			writeDetail(w, status, fmt.Sprintf("forced failure for %s", route))
			return
		}
		mux.ServeHTTP(w, r)
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeDetail(w http.ResponseWriter, status int, detail string) {
	writeJSON(w, status, map[string]string{"detail": detail})
}

func ok(w http.ResponseWriter) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "success"})
}

func (h *Hub) listDevices(w http.ResponseWriter, r *http.Request) {
	h.mu.Lock()
	defer h.mu.Unlock()
	writeJSON(w, http.StatusOK, map[string]any{"devices": h.devices})
}

func (h *Hub) action(w http.ResponseWriter, r *http.Request) {
	var req Action
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeDetail(w, http.StatusUnprocessableEntity, "invalid body")
		return
	}
	h.mu.Lock()
	defer h.mu.Unlock()

	var targets []string
	if gi := h.groupIndex(req.DeviceID); gi >= 0 {
		targets = h.groups[gi].Members
	} else if h.deviceIndex(req.DeviceID) >= 0 {
		targets = []string{req.DeviceID}
	} else {
		writeDetail(w, http.StatusNotFound, fmt.Sprintf("Device %s not found", req.DeviceID))
		return
	}
	h.actions = append(h.actions, req)
	for _, id := range targets {
		i := h.deviceIndex(id)
		if i < 0 {
			continue
		}
		d := h.devices[i]
		state := device.State{}
		for k, v := range d.State {
			state[k] = v
		}
		switch req.Action {
		case device.ActionTurnOn:
			state["state"] = device.PowerOn
		case device.ActionTurnOff:
			state["state"] = device.PowerOff
		case device.ActionSetBrightness:
			state["brightness"] = req.Value
		}
		d.State = state
		h.devices[i] = d
	}
	ok(w)
}

func (h *Hub) rename(w http.ResponseWriter, r *http.Request) {
	var req struct {
		NewName string `json:"new_name"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.NewName == "" {
		writeDetail(w, http.StatusUnprocessableEntity, "new_name is required")
		return
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	i := h.deviceIndex(r.PathValue("id"))
	if i < 0 {
		writeDetail(w, http.StatusNotFound, "device not found")
		return
	}
	h.devices[i].Name = req.NewName
	ok(w)
}

func (h *Hub) removeDevice(w http.ResponseWriter, r *http.Request) {
	h.mu.Lock()
	defer h.mu.Unlock()
	i := h.deviceIndex(r.PathValue("id"))
	if i < 0 {
		writeDetail(w, http.StatusNotFound, "device not found")
		return
	}
	h.devices = slices.Delete(h.devices, i, i+1)
	ok(w)
}

func (h *Hub) listGroups(w http.ResponseWriter, r *http.Request) {
	h.mu.Lock()
	defer h.mu.Unlock()
	writeJSON(w, http.StatusOK, map[string]any{"groups": h.groups})
}

func (h *Hub) createGroup(w http.ResponseWriter, r *http.Request) {
	var g device.Group
	if err := json.NewDecoder(r.Body).Decode(&g); err != nil || g.ID == "" {
		writeDetail(w, http.StatusUnprocessableEntity, "invalid group")
		return
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.groupIndex(g.ID) >= 0 {
		writeDetail(w, http.StatusConflict, "group exists")
		return
	}
	h.groups = append(h.groups, g)
	ok(w)
}

func (h *Hub) deleteGroup(w http.ResponseWriter, r *http.Request) {
	h.mu.Lock()
	defer h.mu.Unlock()
	i := h.groupIndex(r.PathValue("id"))
	if i < 0 {
		writeDetail(w, http.StatusNotFound, "group not found")
		return
	}
	h.groups = slices.Delete(h.groups, i, i+1)
	ok(w)
}

func (h *Hub) addMember(w http.ResponseWriter, r *http.Request) {
	h.mu.Lock()
	defer h.mu.Unlock()
	i := h.groupIndex(r.PathValue("id"))
	if i < 0 {
		writeDetail(w, http.StatusNotFound, "group not found")
		return
	}
	id := r.PathValue("deviceId")
	if !slices.Contains(h.groups[i].Members, id) {
		h.groups[i].Members = append(slices.Clone(h.groups[i].Members), id)
	}
	ok(w)
}

func (h *Hub) removeMember(w http.ResponseWriter, r *http.Request) {
	h.mu.Lock()
	defer h.mu.Unlock()
	i := h.groupIndex(r.PathValue("id"))
	if i < 0 {
		writeDetail(w, http.StatusNotFound, "group not found")
		return
	}
	id := r.PathValue("deviceId")
	h.groups[i].Members = slices.DeleteFunc(slices.Clone(h.groups[i].Members), func(m string) bool { return m == id })
	ok(w)
}

func (h *Hub) listRules(w http.ResponseWriter, r *http.Request) {
	h.mu.Lock()
	defer h.mu.Unlock()
	rules := h.rules
	if rules == nil {
		rules = []rule.Rule{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"rules": rules})
}

func (h *Hub) createRule(w http.ResponseWriter, r *http.Request) {
	var rl rule.Rule
	if err := json.NewDecoder(r.Body).Decode(&rl); err != nil {
		writeDetail(w, http.StatusUnprocessableEntity, err.Error())
		return
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.ruleIndex(rl.ID) >= 0 {
		writeDetail(w, http.StatusConflict, fmt.Sprintf("Rule %s already exists.", rl.ID))
		return
	}
	h.rules = append(h.rules, rl)
	writeJSON(w, http.StatusOK, map[string]string{"status": "success", "id": rl.ID})
}

func (h *Hub) updateRule(w http.ResponseWriter, r *http.Request) {
	var rl rule.Rule
	if err := json.NewDecoder(r.Body).Decode(&rl); err != nil {
		writeDetail(w, http.StatusUnprocessableEntity, err.Error())
		return
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	i := h.ruleIndex(r.PathValue("id"))
	if i < 0 {
		writeDetail(w, http.StatusNotFound, "rule not found")
		return
	}
	h.rules[i] = rl
	ok(w)
}

func (h *Hub) deleteRule(w http.ResponseWriter, r *http.Request) {
	h.mu.Lock()
	defer h.mu.Unlock()
	i := h.ruleIndex(r.PathValue("id"))
	if i < 0 {
		writeDetail(w, http.StatusNotFound, "rule not found")
		return
	}
	h.rules = slices.Delete(h.rules, i, i+1)
	ok(w)
}

func (h *Hub) setPairing(w http.ResponseWriter, r *http.Request) {
	enable, err := strconv.ParseBool(r.PathValue("enable"))
	if err != nil {
		writeDetail(w, http.StatusBadRequest, "enable must be true or false")
		return
	}
	h.mu.Lock()
	h.pairing = append(h.pairing, enable)
	h.mu.Unlock()
	ok(w)
}

func (h *Hub) getLogs(w http.ResponseWriter, r *http.Request) {
	n, err := strconv.Atoi(r.URL.Query().Get("lines"))
	if err != nil || n <= 0 {
		n = 100
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	lines := h.logs
	if len(lines) > n {
		lines = lines[len(lines)-n:]
	}
	if lines == nil {
		lines = []string{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"logs": lines})
}
