package mcp

import (
	"context"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/meltforce/practiceboard/internal/board"
	"github.com/meltforce/practiceboard/internal/models"
	"github.com/meltforce/practiceboard/internal/schedule"
)

var laneEnum = mcp.Enum(string(schedule.LaneGlobal), string(schedule.Lane1), string(schedule.Lane2))

// --- Tool definitions ---

var toolListMenus = mcp.NewTool("list_menus",
	mcp.WithDescription("List every practice menu in catalog order with category, default duration and participant thresholds (minP, minIF, minOF, minTotal, minPlusIF)."),
)

var toolListEligibleMenus = mcp.NewTool("list_eligible_menus",
	mcp.WithDescription("List the menus whose thresholds are met by the current participant counts, in catalog order."),
	mcp.WithString("category", mcp.Description("Restrict to one short category label (e.g. '守', '打'). Empty or 'all' means no filter.")),
)

var toolSetCounts = mcp.NewTool("set_counts",
	mcp.WithDescription("Enter participant counts directly: pitchers (P), infielders (IF) and outfielders (OF). Switches the board to direct-count mode."),
	mcp.WithNumber("p", mcp.Required(), mcp.Description("Number of pitchers"), mcp.Min(0)),
	mcp.WithNumber("if", mcp.Required(), mcp.Description("Number of infielders"), mcp.Min(0)),
	mcp.WithNumber("of", mcp.Required(), mcp.Description("Number of outfielders"), mcp.Min(0)),
	mcp.WithNumber("total", mcp.Description("Headcount including members without a position. Defaults to P+IF+OF."), mcp.Min(0)),
)

var toolSelectRoster = mcp.NewTool("select_roster",
	mcp.WithDescription("Derive participant counts from the roster members who are present. Switches the board to roster mode."),
	mcp.WithArray("player_ids", mcp.Required(), mcp.Description("IDs of the present roster members"), mcp.WithStringItems()),
)

var toolGetSchedule = mcp.NewTool("get_schedule",
	mcp.WithDescription("Get the whole board: session, display window and slots, lanes, placed blocks, overlaps and counts."),
)

var toolSetSession = mcp.NewTool("set_session",
	mcp.WithDescription("Set the session date, time window and location. Blank start or end leaves that end of the window open."),
	mcp.WithString("date", mcp.Description("Session date YYYY-MM-DD")),
	mcp.WithString("start", mcp.Description("Window start HH:MM")),
	mcp.WithString("end", mcp.Description("Window end HH:MM")),
	mcp.WithString("location", mcp.Description("Free-text location")),
)

var toolPlaceBlock = mcp.NewTool("place_block",
	mcp.WithDescription("Place a block on a lane. With menu_id the title and duration default to the menu's. Overlapping placements are allowed but block export."),
	mcp.WithString("menu_id", mcp.Description("Menu to place. Omit for a manual block, which then needs a title.")),
	mcp.WithString("title", mcp.Description("Block title. Defaults to the menu name.")),
	mcp.WithString("lane", mcp.Description("Lane id. Defaults to global."), laneEnum),
	mcp.WithString("start", mcp.Description("Start HH:MM. Defaults to the session start or 09:00.")),
	mcp.WithNumber("duration", mcp.Description("Duration in minutes. Defaults to the menu's default duration."), mcp.Min(1)),
)

var toolMoveBlock = mcp.NewTool("move_block",
	mcp.WithDescription("Move and/or resize a placed block. Omitted fields are kept. Duration must be at least one slot."),
	mcp.WithString("id", mcp.Required(), mcp.Description("Block id")),
	mcp.WithString("lane", mcp.Description("New lane id"), laneEnum),
	mcp.WithString("start", mcp.Description("New start HH:MM")),
	mcp.WithNumber("duration", mcp.Description("New duration in minutes")),
)

var toolRemoveBlock = mcp.NewTool("remove_block",
	mcp.WithDescription("Remove a placed block."),
	mcp.WithString("id", mcp.Required(), mcp.Description("Block id")),
)

var toolFindOverlaps = mcp.NewTool("find_overlaps",
	mcp.WithDescription("List every pair of blocks that overlap in time within the same lane. Export is possible only when this is empty."),
)

var toolRenameLane = mcp.NewTool("rename_lane",
	mcp.WithDescription("Rename lane1 or lane2 (1-20 characters). The global lane cannot be renamed; invalid names are ignored and reported as changed=false."),
	mcp.WithString("lane", mcp.Required(), mcp.Description("Lane id"), laneEnum),
	mcp.WithString("name", mcp.Required(), mcp.Description("New lane name")),
)

var toolResetLane = mcp.NewTool("reset_lane",
	mcp.WithDescription("Restore the default name of lane1 or lane2."),
	mcp.WithString("lane", mcp.Required(), mcp.Description("Lane id"), laneEnum),
)

// --- Tool handlers ---

func (h *handlers) listMenus(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return jsonResult(h.board.Menus())
}

func (h *handlers) listEligibleMenus(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	menus := h.board.Candidates(req.GetString("category", ""))
	return jsonResult(map[string]any{
		"counts": h.board.Counts(),
		"menus":  menus,
	})
}

func (h *handlers) setCounts(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	c := models.Counts{
		P:  req.GetInt("p", 0),
		IF: req.GetInt("if", 0),
		OF: req.GetInt("of", 0),
	}
	if _, ok := req.GetArguments()["total"]; ok {
		total := req.GetInt("total", 0)
		c.Total = &total
	}

	st, err := h.board.SetCounts(c)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(st)
}

func (h *handlers) selectRoster(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	ids, err := req.RequireStringSlice("player_ids")
	if err != nil {
		return mcp.NewToolResultError("player_ids parameter is required"), nil
	}
	return jsonResult(h.board.SelectRoster(ids))
}

func (h *handlers) getSchedule(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	snap, err := h.board.Snapshot()
	if err != nil {
		h.log.Error("mcp get_schedule", "error", err)
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(snap)
}

func (h *handlers) setSession(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sess, err := h.board.SetSession(schedule.Session{
		Date:     req.GetString("date", ""),
		Start:    req.GetString("start", ""),
		End:      req.GetString("end", ""),
		Location: req.GetString("location", ""),
	})
	if err != nil {
		return mcp.NewToolResultError("invalid session: " + err.Error()), nil
	}
	return jsonResult(sess)
}

func (h *handlers) placeBlock(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	blk, err := h.board.Place(board.Placement{
		MenuID:      req.GetString("menu_id", ""),
		Title:       req.GetString("title", ""),
		LaneID:      schedule.LaneID(req.GetString("lane", "")),
		Start:       req.GetString("start", ""),
		DurationMin: req.GetInt("duration", 0),
	})
	if err != nil {
		return mcp.NewToolResultError("place failed: " + err.Error()), nil
	}
	h.log.Info("mcp block placed", "id", blk.ID, "menu", blk.MenuID, "by", UserFromContext(ctx))
	return jsonResult(map[string]any{
		"block":    blk,
		"overlaps": h.board.Overlaps(),
	})
}

func (h *handlers) moveBlock(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := req.RequireString("id")
	if err != nil {
		return mcp.NewToolResultError("id parameter is required"), nil
	}

	var c board.Change
	args := req.GetArguments()
	if _, ok := args["lane"]; ok {
		lane := schedule.LaneID(req.GetString("lane", ""))
		c.LaneID = &lane
	}
	if _, ok := args["start"]; ok {
		start := req.GetString("start", "")
		c.Start = &start
	}
	if _, ok := args["duration"]; ok {
		dur := req.GetInt("duration", 0)
		c.DurationMin = &dur
	}

	blk, err := h.board.Update(id, c)
	if err != nil {
		return mcp.NewToolResultError("move failed: " + err.Error()), nil
	}
	return jsonResult(map[string]any{
		"block":    blk,
		"overlaps": h.board.Overlaps(),
	})
}

func (h *handlers) removeBlock(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := req.RequireString("id")
	if err != nil {
		return mcp.NewToolResultError("id parameter is required"), nil
	}
	if err := h.board.Remove(id); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	h.log.Info("mcp block removed", "id", id, "by", UserFromContext(ctx))
	return jsonResult(map[string]any{
		"removed":  id,
		"overlaps": h.board.Overlaps(),
	})
}

func (h *handlers) findOverlaps(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return jsonResult(h.board.Overlaps())
}

func (h *handlers) renameLane(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	lane, err := req.RequireString("lane")
	if err != nil {
		return mcp.NewToolResultError("lane parameter is required"), nil
	}
	name, err := req.RequireString("name")
	if err != nil {
		return mcp.NewToolResultError("name parameter is required"), nil
	}

	l, changed, err := h.board.RenameLane(schedule.LaneID(lane), name)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(map[string]any{"lane": l, "changed": changed})
}

func (h *handlers) resetLane(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	lane, err := req.RequireString("lane")
	if err != nil {
		return mcp.NewToolResultError("lane parameter is required"), nil
	}

	l, changed, err := h.board.ResetLane(schedule.LaneID(lane))
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(map[string]any{"lane": l, "changed": changed})
}

func jsonResult(v any) (*mcp.CallToolResult, error) {
	result, err := mcp.NewToolResultJSON(v)
	if err != nil {
		return mcp.NewToolResultError("serialization failed"), nil
	}
	return result, nil
}
