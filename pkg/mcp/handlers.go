package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/urmzd/hubpanel/pkg/cache"
	"github.com/urmzd/hubpanel/pkg/device"
	"github.com/urmzd/hubpanel/pkg/rule"
	"github.com/urmzd/hubpanel/pkg/view"
)

func (s *Server) handleGetHealth(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	out := GetHealthOutput{
		Status:    "degraded",
		Hub:       "unconfigured",
		Screen:    s.panel.State().String(),
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	}
	if s.panel.Configured() {
		out.Status = "healthy"
		out.Hub = "configured"
	}
	return mcp.NewToolResultText(formatJSON(out)), nil
}

func (s *Server) handleGetView(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return mcp.NewToolResultText(formatJSON(s.panel.Page())), nil
}

func (s *Server) handleNavigate(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	name, err := requiredString(request, "screen")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	screen, err := view.ParseScreen(name)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	page, err := s.panel.Navigate(ctx, view.Target{
		Screen:  screen,
		ID:      optionalString(request, "id"),
		Prefill: optionalString(request, "prefill"),
	})
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to navigate: %s", device.UserMessage(err))), nil
	}
	return mcp.NewToolResultText(formatJSON(page)), nil
}

func (s *Server) handleListDevices(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	devices, err := s.panel.Cache().RefreshDevices(ctx)
	if err != nil && !cache.IsStale(err) {
		return mcp.NewToolResultError(fmt.Sprintf("failed to list devices: %s", device.UserMessage(err))), nil
	}

	infos := make([]DeviceInfo, 0, len(devices))
	for _, d := range devices {
		infos = append(infos, DeviceToInfo(d))
	}

	out := ListDevicesOutput{
		Devices: infos,
		Count:   len(infos),
	}
	return mcp.NewToolResultText(formatJSON(out)), nil
}

func (s *Server) handleListGroups(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	if err := s.panel.Cache().Refresh(ctx, cache.KindDevices, cache.KindGroups); err != nil && !cache.IsStale(err) {
		return mcp.NewToolResultError(fmt.Sprintf("failed to list groups: %s", device.UserMessage(err))), nil
	}
	snap := s.panel.Cache().Snapshot()

	infos := make([]GroupInfo, 0, len(snap.Groups))
	for _, g := range snap.Groups {
		infos = append(infos, GroupInfo{
			ID:      g.ID,
			Name:    g.Name,
			Power:   g.Power(snap.Device),
			Members: g.Members,
		})
	}
	return mcp.NewToolResultText(formatJSON(ListGroupsOutput{Groups: infos, Count: len(infos)})), nil
}

func (s *Server) handleListRules(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	if err := s.panel.Cache().Refresh(ctx, cache.KindDevices, cache.KindGroups, cache.KindRules); err != nil && !cache.IsStale(err) {
		return mcp.NewToolResultError(fmt.Sprintf("failed to list rules: %s", device.UserMessage(err))), nil
	}
	snap := s.panel.Cache().Snapshot()

	infos := make([]RuleInfo, 0, len(snap.Rules))
	for _, r := range snap.Rules {
		info := RuleInfo{
			ID:      r.ID,
			Name:    r.Name,
			Active:  r.Active,
			Summary: r.Describe(snap.Name),
		}
		if r.Trigger != nil {
			info.Trigger = r.Trigger.Kind()
		}
		infos = append(infos, info)
	}
	return mcp.NewToolResultText(formatJSON(ListRulesOutput{Rules: infos, Count: len(infos)})), nil
}

func (s *Server) handleToggle(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := requiredString(request, "id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	action, err := s.panel.Toggle(ctx, id)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to toggle %q: %s", id, device.UserMessage(err))), nil
	}
	return mcp.NewToolResultText(formatJSON(ToggleOutput{ID: id, Action: action})), nil
}

func (s *Server) handleRenameDevice(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := requiredString(request, "id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	newName, err := requiredString(request, "new_name")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	if err := s.panel.RenameDevice(ctx, id, newName); err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to rename device: %s", device.UserMessage(err))), nil
	}
	return success(fmt.Sprintf("Device %q renamed to %q", id, newName)), nil
}

func (s *Server) handleRemoveDevice(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := requiredString(request, "id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	if err := s.panel.RemoveDevice(ctx, id); err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to remove device: %s", device.UserMessage(err))), nil
	}
	return success(fmt.Sprintf("Device %q removed from the hub", id)), nil
}

func (s *Server) handleCreateGroup(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	name, err := requiredString(request, "name")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	var members []string
	if raw, ok := request.GetArguments()["members"].([]any); ok {
		for _, m := range raw {
			if id, ok := m.(string); ok && id != "" {
				members = append(members, id)
			}
		}
	}

	g, err := s.panel.CreateGroup(ctx, name, members)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to create group: %s", device.UserMessage(err))), nil
	}
	return mcp.NewToolResultText(formatJSON(GroupOutput{Group: g})), nil
}

func (s *Server) handleDeleteGroup(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := requiredString(request, "id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	if err := s.panel.DeleteGroup(ctx, id); err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to delete group: %s", device.UserMessage(err))), nil
	}
	return success(fmt.Sprintf("Group %q deleted", id)), nil
}

func (s *Server) handleAddGroupMember(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	groupID, deviceID, err := memberArgs(request)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	if err := s.panel.AddMember(ctx, groupID, deviceID); err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to add member: %s", device.UserMessage(err))), nil
	}
	return success(fmt.Sprintf("Device %q added to group %q", deviceID, groupID)), nil
}

func (s *Server) handleRemoveGroupMember(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	groupID, deviceID, err := memberArgs(request)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	if err := s.panel.RemoveMember(ctx, groupID, deviceID); err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to remove member: %s", device.UserMessage(err))), nil
	}
	return success(fmt.Sprintf("Device %q removed from group %q", deviceID, groupID)), nil
}

func (s *Server) handleCreateTimeRule(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	in, err := ruleInput(request, rule.TriggerTime, "name", "time", "target")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return s.createRule(ctx, in)
}

func (s *Server) handleCreateStateRule(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	in, err := ruleInput(request, rule.TriggerState, "name", "trigger_device", "key", "value", "target")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return s.createRule(ctx, in)
}

func (s *Server) createRule(ctx context.Context, in rule.Input) (*mcp.CallToolResult, error) {
	r, err := s.panel.CreateRule(ctx, in)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to create rule: %s", device.UserMessage(err))), nil
	}
	return mcp.NewToolResultText(formatJSON(RuleOutput{Rule: r})), nil
}

func (s *Server) handleDeleteRule(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := requiredString(request, "id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	if err := s.panel.DeleteRule(ctx, id); err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to delete rule: %s", device.UserMessage(err))), nil
	}
	return success(fmt.Sprintf("Rule %q deleted", id)), nil
}

func (s *Server) handleStartPairing(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	if err := s.panel.StartPairing(ctx); err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to start pairing: %s", device.UserMessage(err))), nil
	}
	p := s.panel.Page().Pairing
	return mcp.NewToolResultText(formatJSON(PairingOutput{Active: p.Active, RemainingSeconds: p.Remaining})), nil
}

func (s *Server) handleStopPairing(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	if err := s.panel.StopPairing(ctx); err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to stop pairing: %s", device.UserMessage(err))), nil
	}
	return mcp.NewToolResultText(formatJSON(PairingOutput{})), nil
}

func (s *Server) handleGetLogs(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	lines, err := s.panel.Logs(ctx)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to fetch logs: %s", device.UserMessage(err))), nil
	}
	return mcp.NewToolResultText(formatJSON(LogsOutput{Lines: lines, Count: len(lines)})), nil
}

// --- helpers ---

func requiredString(request mcp.CallToolRequest, key string) (string, error) {
	args := request.GetArguments()
	v, ok := args[key]
	if !ok || v == nil {
		return "", fmt.Errorf("required parameter %q is missing", key)
	}
	s, ok := v.(string)
	if !ok || s == "" {
		return "", fmt.Errorf("parameter %q must be a non-empty string", key)
	}
	return s, nil
}

func optionalString(request mcp.CallToolRequest, key string) string {
	s, _ := request.GetArguments()[key].(string)
	return s
}

func memberArgs(request mcp.CallToolRequest) (string, string, error) {
	groupID, err := requiredString(request, "group_id")
	if err != nil {
		return "", "", err
	}
	deviceID, err := requiredString(request, "device_id")
	if err != nil {
		return "", "", err
	}
	return groupID, deviceID, nil
}

// ruleInput collects the rule form fields of a create tool. required names the
// arguments the tool cannot do without; the others fall back to form defaults.
func ruleInput(request mcp.CallToolRequest, kind rule.TriggerType, required ...string) (rule.Input, error) {
	vals := map[string]*string{}
	for _, key := range required {
		v, err := requiredString(request, key)
		if err != nil {
			return rule.Input{}, err
		}
		vals[key] = &v
	}
	for _, key := range []string{"operator", "command", "action_value"} {
		if v := optionalString(request, key); v != "" {
			vals[key] = &v
		}
	}

	trigger := string(kind)
	in := rule.Input{
		Name:          vals["name"],
		TriggerType:   &trigger,
		Time:          vals["time"],
		TriggerDevice: vals["trigger_device"],
		Key:           vals["key"],
		Operator:      vals["operator"],
		Value:         vals["value"],
		Target:        vals["target"],
		Command:       vals["command"],
		ActionValue:   vals["action_value"],
	}
	if active, ok := request.GetArguments()["active"].(bool); ok {
		in.Active = &active
	}
	return in, nil
}

func success(msg string) *mcp.CallToolResult {
	return mcp.NewToolResultText(formatJSON(ActionOutput{Success: true, Message: msg}))
}

func formatJSON(v any) string {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Sprintf(`{"error":"failed to marshal response: %s"}`, err)
	}
	return string(b)
}
