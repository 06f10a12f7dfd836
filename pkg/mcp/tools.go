package mcp

import "github.com/mark3labs/mcp-go/mcp"

// registerTools registers all MCP tools with the server
func (s *Server) registerTools() {
	s.mcpServer.AddTool(
		mcp.NewTool("get_health",
			mcp.WithDescription("Report whether a hub is configured and which screen the panel shows"),
		),
		s.handleGetHealth,
	)

	// Screens
	s.mcpServer.AddTool(
		mcp.NewTool("get_view",
			mcp.WithDescription("Return the render model of the current screen, including notices and the open rule form"),
		),
		s.handleGetView,
	)
	s.mcpServer.AddTool(
		mcp.NewTool("navigate",
			mcp.WithDescription("Switch the panel to a screen and return its page"),
			mcp.WithString("screen",
				mcp.Required(),
				mcp.Enum("devices", "device_detail", "groups", "group_detail", "rules", "rule_detail", "map", "logs"),
				mcp.Description("Screen to open"),
			),
			mcp.WithString("id",
				mcp.Description("Device, group or rule id for detail screens; empty rule id opens a new rule"),
			),
			mcp.WithString("prefill",
				mcp.Description("Device or group id to preselect in a new rule"),
			),
		),
		s.handleNavigate,
	)

	// Listings
	s.mcpServer.AddTool(
		mcp.NewTool("list_devices",
			mcp.WithDescription("List all hub devices with their current state"),
		),
		s.handleListDevices,
	)
	s.mcpServer.AddTool(
		mcp.NewTool("list_groups",
			mcp.WithDescription("List all device groups with their members"),
		),
		s.handleListGroups,
	)
	s.mcpServer.AddTool(
		mcp.NewTool("list_rules",
			mcp.WithDescription("List all automation rules"),
		),
		s.handleListRules,
	)

	// Devices
	s.mcpServer.AddTool(
		mcp.NewTool("toggle",
			mcp.WithDescription("Turn a device or group off when it is ON, on otherwise"),
			mcp.WithString("id",
				mcp.Required(),
				mcp.Description("Device or group id"),
			),
		),
		s.handleToggle,
	)
	s.mcpServer.AddTool(
		mcp.NewTool("rename_device",
			mcp.WithDescription("Change a device's name on the hub"),
			mcp.WithString("id",
				mcp.Required(),
				mcp.Description("Device id"),
			),
			mcp.WithString("new_name",
				mcp.Required(),
				mcp.Description("New name for the device"),
			),
		),
		s.handleRenameDevice,
	)
	s.mcpServer.AddTool(
		mcp.NewTool("remove_device",
			mcp.WithDescription("Remove a device from the hub"),
			mcp.WithString("id",
				mcp.Required(),
				mcp.Description("Device id"),
			),
		),
		s.handleRemoveDevice,
	)

	// Groups
	s.mcpServer.AddTool(
		mcp.NewTool("create_group",
			mcp.WithDescription("Create a group; its id is derived from the name"),
			mcp.WithString("name",
				mcp.Required(),
				mcp.Description("Group name"),
			),
			mcp.WithArray("members",
				mcp.Description("Initial member device ids"),
				mcp.Items(map[string]any{"type": "string"}),
			),
		),
		s.handleCreateGroup,
	)
	s.mcpServer.AddTool(
		mcp.NewTool("delete_group",
			mcp.WithDescription("Delete a group"),
			mcp.WithString("id",
				mcp.Required(),
				mcp.Description("Group id"),
			),
		),
		s.handleDeleteGroup,
	)
	s.mcpServer.AddTool(
		mcp.NewTool("add_group_member",
			mcp.WithDescription("Add a device to a group"),
			mcp.WithString("group_id", mcp.Required(), mcp.Description("Group id")),
			mcp.WithString("device_id", mcp.Required(), mcp.Description("Device id")),
		),
		s.handleAddGroupMember,
	)
	s.mcpServer.AddTool(
		mcp.NewTool("remove_group_member",
			mcp.WithDescription("Remove a device from a group"),
			mcp.WithString("group_id", mcp.Required(), mcp.Description("Group id")),
			mcp.WithString("device_id", mcp.Required(), mcp.Description("Device id")),
		),
		s.handleRemoveGroupMember,
	)

	// Rules
	s.mcpServer.AddTool(
		mcp.NewTool("create_time_rule",
			mcp.WithDescription("Create a rule that runs an action every day at a fixed time"),
			mcp.WithString("name", mcp.Required(), mcp.Description("Rule name")),
			mcp.WithString("time", mcp.Required(), mcp.Description("Time of day as HH:MM")),
			mcp.WithString("target", mcp.Required(), mcp.Description("Device or group id the action is sent to")),
			mcp.WithString("command",
				mcp.Enum("turn_on", "turn_off", "set_brightness"),
				mcp.Description("Action command (default turn_on)"),
			),
			mcp.WithString("action_value", mcp.Description("Value for commands that take one, e.g. brightness")),
			mcp.WithBoolean("active", mcp.Description("Whether the rule is enabled (default true)")),
		),
		s.handleCreateTimeRule,
	)
	s.mcpServer.AddTool(
		mcp.NewTool("create_state_rule",
			mcp.WithDescription("Create a rule that runs an action when a device state key matches a condition"),
			mcp.WithString("name", mcp.Required(), mcp.Description("Rule name")),
			mcp.WithString("trigger_device", mcp.Required(), mcp.Description("Device whose state is watched")),
			mcp.WithString("key", mcp.Required(), mcp.Description("State key, e.g. temperature")),
			mcp.WithString("operator",
				mcp.Enum("eq", "neq", "gt", "lt", "gte", "lte"),
				mcp.Description("Comparison operator (default eq)"),
			),
			mcp.WithString("value", mcp.Required(), mcp.Description("Value to compare against; numbers and booleans are detected")),
			mcp.WithString("target", mcp.Required(), mcp.Description("Device or group id the action is sent to")),
			mcp.WithString("command",
				mcp.Enum("turn_on", "turn_off", "set_brightness"),
				mcp.Description("Action command (default turn_on)"),
			),
			mcp.WithString("action_value", mcp.Description("Value for commands that take one, e.g. brightness")),
			mcp.WithBoolean("active", mcp.Description("Whether the rule is enabled (default true)")),
		),
		s.handleCreateStateRule,
	)
	s.mcpServer.AddTool(
		mcp.NewTool("delete_rule",
			mcp.WithDescription("Delete an automation rule"),
			mcp.WithString("id", mcp.Required(), mcp.Description("Rule id")),
		),
		s.handleDeleteRule,
	)

	// System
	s.mcpServer.AddTool(
		mcp.NewTool("start_pairing",
			mcp.WithDescription("Open the hub's pairing window so new devices can join; it closes by itself"),
		),
		s.handleStartPairing,
	)
	s.mcpServer.AddTool(
		mcp.NewTool("stop_pairing",
			mcp.WithDescription("Close the pairing window early"),
		),
		s.handleStopPairing,
	)
	s.mcpServer.AddTool(
		mcp.NewTool("get_logs",
			mcp.WithDescription("Return the most recent hub log lines, newest first"),
		),
		s.handleGetLogs,
	)
}
