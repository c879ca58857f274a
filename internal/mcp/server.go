package mcp

import (
	"context"
	"log/slog"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

type contextKey int

const userKey contextKey = iota

// UserFromContext extracts the login injected by the transport layer.
func UserFromContext(ctx context.Context) string {
	if login, ok := ctx.Value(userKey).(string); ok {
		return login
	}
	return "local"
}

// WithUser returns a context carrying the caller's login.
func WithUser(ctx context.Context, login string) context.Context {
	return context.WithValue(ctx, userKey, login)
}

// New creates an MCP server with all tools and resources registered.
func New(b Board, version string, log *slog.Logger) *server.MCPServer {
	s := server.NewMCPServer("PracticeBoard", version,
		server.WithToolCapabilities(false),
		server.WithResourceCapabilities(false, false),
		server.WithInstructions("Practice schedule board. Set participant counts, list eligible practice menus, place blocks on the global/lane1/lane2 lanes and check for overlaps. Export is refused while any blocks in a lane overlap."),
	)

	h := &handlers{board: b, log: log}

	// Tools
	s.AddTools(
		server.ServerTool{Tool: toolListMenus, Handler: h.listMenus},
		server.ServerTool{Tool: toolListEligibleMenus, Handler: h.listEligibleMenus},
		server.ServerTool{Tool: toolSetCounts, Handler: h.setCounts},
		server.ServerTool{Tool: toolSelectRoster, Handler: h.selectRoster},
		server.ServerTool{Tool: toolGetSchedule, Handler: h.getSchedule},
		server.ServerTool{Tool: toolSetSession, Handler: h.setSession},
		server.ServerTool{Tool: toolPlaceBlock, Handler: h.placeBlock},
		server.ServerTool{Tool: toolMoveBlock, Handler: h.moveBlock},
		server.ServerTool{Tool: toolRemoveBlock, Handler: h.removeBlock},
		server.ServerTool{Tool: toolFindOverlaps, Handler: h.findOverlaps},
		server.ServerTool{Tool: toolRenameLane, Handler: h.renameLane},
		server.ServerTool{Tool: toolResetLane, Handler: h.resetLane},
	)

	// Resources
	s.AddResources(
		server.ServerResource{Resource: resSchedule, Handler: h.schedule},
		server.ServerResource{Resource: resMenuCatalog, Handler: h.menuCatalog},
		server.ServerResource{Resource: resRoster, Handler: h.roster},
	)

	return s
}

// handlers holds dependencies for MCP tool/resource handlers.
type handlers struct {
	board Board
	log   *slog.Logger
}

// --- Resource definitions ---

var resSchedule = mcp.NewResource(
	"practiceboard://schedule",
	"Schedule",
	mcp.WithResourceDescription("Session, display window, lanes, placed blocks, overlaps and counts"),
	mcp.WithMIMEType("application/json"),
)

var resMenuCatalog = mcp.NewResource(
	"practiceboard://menu_catalog",
	"Menu Catalog",
	mcp.WithResourceDescription("All practice menus with categories, default durations and participant thresholds"),
	mcp.WithMIMEType("application/json"),
)

var resRoster = mcp.NewResource(
	"practiceboard://roster",
	"Roster",
	mcp.WithResourceDescription("Team members with positions"),
	mcp.WithMIMEType("application/json"),
)
