package mcpserver

import (
	"context"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"

	"blocksgraph/internal/domain"
	"blocksgraph/internal/layout"
)

func (s *Server) registerGraphTools() {
	// ── create_block ───────────────────────────────────
	s.mcp.AddTool(mcp.NewTool("create_block",
		mcp.WithDescription("Create a new block on the canvas. Position is auto-calculated if not provided."),
		mcp.WithNumber("x", mcp.Description("X position (optional, auto-layout if omitted)")),
		mcp.WithNumber("y", mcp.Description("Y position (optional, auto-layout if omitted)")),
		mcp.WithNumber("width", mcp.Description("Width (default 300)")),
		mcp.WithNumber("height", mcp.Description("Height (default 200)")),
		mcp.WithString("label", mcp.Description("Block label (optional)")),
		mcp.WithString("kind", mcp.Description("Block kind tag (optional)")),
	), s.handleCreateBlock)

	// ── move_block ─────────────────────────────────────
	s.mcp.AddTool(mcp.NewTool("move_block",
		mcp.WithDescription("Move a block to a new position on the canvas"),
		mcp.WithString("blockId", mcp.Description("Block ID"), mcp.Required()),
		mcp.WithNumber("x", mcp.Description("New X position"), mcp.Required()),
		mcp.WithNumber("y", mcp.Description("New Y position"), mcp.Required()),
	), s.handleMoveBlock)

	// ── resize_block ───────────────────────────────────
	s.mcp.AddTool(mcp.NewTool("resize_block",
		mcp.WithDescription("Resize a block"),
		mcp.WithString("blockId", mcp.Description("Block ID"), mcp.Required()),
		mcp.WithNumber("width", mcp.Description("New width"), mcp.Required()),
		mcp.WithNumber("height", mcp.Description("New height"), mcp.Required()),
	), s.handleResizeBlock)

	// ── batch_move_blocks ──────────────────────────────
	s.mcp.AddTool(mcp.NewTool("batch_move_blocks",
		mcp.WithDescription("Move multiple blocks by a relative offset (dx, dy) in one atomic commit"),
		mcp.WithString("blockIds",
			mcp.Description("Comma-separated block IDs"),
			mcp.Required(),
		),
		mcp.WithNumber("dx", mcp.Description("Horizontal offset"), mcp.Required()),
		mcp.WithNumber("dy", mcp.Description("Vertical offset"), mcp.Required()),
	), s.handleBatchMoveBlocks)

	// ── delete_block ───────────────────────────────────
	s.mcp.AddTool(mcp.NewTool("delete_block",
		mcp.WithDescription("Delete a block and every connection attached to it"),
		mcp.WithString("blockId", mcp.Description("Block ID to delete"), mcp.Required()),
		mcp.WithToolAnnotation(mcp.ToolAnnotation{DestructiveHint: boolPtr(true)}),
	), s.handleDeleteBlock)

	// ── list_blocks ────────────────────────────────────
	s.mcp.AddTool(mcp.NewTool("list_blocks",
		mcp.WithDescription("List all blocks in z-order, optionally filtered by kind"),
		mcp.WithString("kind", mcp.Description("Filter by block kind (optional)")),
	), s.handleListBlocks)

	// ── connect_blocks ─────────────────────────────────
	s.mcp.AddTool(mcp.NewTool("connect_blocks",
		mcp.WithDescription("Create a directed connection between two blocks"),
		mcp.WithString("sourceId", mcp.Description("Source block ID"), mcp.Required()),
		mcp.WithString("targetId", mcp.Description("Target block ID"), mcp.Required()),
		mcp.WithString("label", mcp.Description("Connection label (optional)")),
		mcp.WithString("style", mcp.Description("Connection style: solid, dashed, dotted (optional)")),
	), s.handleConnectBlocks)

	// ── disconnect ─────────────────────────────────────
	s.mcp.AddTool(mcp.NewTool("disconnect",
		mcp.WithDescription("Remove a connection"),
		mcp.WithString("connectionId", mcp.Description("Connection ID"), mcp.Required()),
		mcp.WithToolAnnotation(mcp.ToolAnnotation{DestructiveHint: boolPtr(true)}),
	), s.handleDisconnect)

	// ── list_connections ───────────────────────────────
	s.mcp.AddTool(mcp.NewTool("list_connections",
		mcp.WithDescription("List all connections, optionally only those touching a block"),
		mcp.WithString("blockId", mcp.Description("Filter by block ID (optional)")),
	), s.handleListConnections)

	// ── hit_test ───────────────────────────────────────
	s.mcp.AddTool(mcp.NewTool("hit_test",
		mcp.WithDescription("Return block IDs under a point (topmost first) or intersecting a rectangle"),
		mcp.WithNumber("x", mcp.Description("X coordinate"), mcp.Required()),
		mcp.WithNumber("y", mcp.Description("Y coordinate"), mcp.Required()),
		mcp.WithNumber("width", mcp.Description("Rectangle width (omit for a point query)")),
		mcp.WithNumber("height", mcp.Description("Rectangle height (omit for a point query)")),
	), s.handleHitTest)

	// ── arrange_blocks ─────────────────────────────────
	s.mcp.AddTool(mcp.NewTool("arrange_blocks",
		mcp.WithDescription("Auto-arrange all blocks into a grid layout"),
		mcp.WithNumber("startX", mcp.Description("Starting X position (default 0)")),
		mcp.WithNumber("startY", mcp.Description("Starting Y position (default 0)")),
	), s.handleArrangeBlocks)

	// ── route_connection ───────────────────────────────
	s.mcp.AddTool(mcp.NewTool("route_connection",
		mcp.WithDescription("Compute the obstacle-aware orthogonal polyline for a connection"),
		mcp.WithString("connectionId", mcp.Description("Connection ID"), mcp.Required()),
	), s.handleRouteConnection)
}

func boolPtr(v bool) *bool { return &v }

// ── Handlers ───────────────────────────────────────────────

func (s *Server) handleCreateBlock(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := req.GetArguments()

	w := getFloat(args, "width", 300)
	h := getFloat(args, "height", 200)

	var x, y float64
	_, hasX := args["x"]
	_, hasY := args["y"]
	if hasX && hasY {
		x = getFloat(args, "x", 0)
		y = getFloat(args, "y", 0)
	} else {
		x, y = s.layout.NextPosition(s.graph.ListBlocks(), w, h)
	}

	label, _ := args["label"].(string)
	kind, _ := args["kind"].(string)

	b, err := s.graph.AddBlock(domain.Geometry{X: x, Y: y, Width: w, Height: h},
		domain.BlockMeta{Label: label, Kind: kind})
	if err != nil {
		return nil, err
	}
	return jsonResult(b)
}

func (s *Server) handleMoveBlock(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := req.GetArguments()
	id, err := getString(args, "blockId")
	if err != nil {
		return nil, err
	}
	b, ok := s.graph.GetBlock(id)
	if !ok {
		return nil, fmt.Errorf("block %s not found", id)
	}
	g := b.Geometry
	g.X = getFloat(args, "x", g.X)
	g.Y = getFloat(args, "y", g.Y)
	if err := s.graph.MoveBlock(id, g); err != nil {
		return nil, err
	}
	return textResult(fmt.Sprintf("Moved %s to (%.0f, %.0f)", id, g.X, g.Y)), nil
}

func (s *Server) handleResizeBlock(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := req.GetArguments()
	id, err := getString(args, "blockId")
	if err != nil {
		return nil, err
	}
	b, ok := s.graph.GetBlock(id)
	if !ok {
		return nil, fmt.Errorf("block %s not found", id)
	}
	g := b.Geometry
	g.Width = getFloat(args, "width", g.Width)
	g.Height = getFloat(args, "height", g.Height)
	if err := s.graph.MoveBlock(id, g); err != nil {
		return nil, err
	}
	return textResult(fmt.Sprintf("Resized %s to %.0fx%.0f", id, g.Width, g.Height)), nil
}

func (s *Server) handleBatchMoveBlocks(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := req.GetArguments()
	idsRaw, err := getString(args, "blockIds")
	if err != nil {
		return nil, err
	}
	dx := getFloat(args, "dx", 0)
	dy := getFloat(args, "dy", 0)

	moves := map[string]domain.Geometry{}
	for _, id := range strings.Split(idsRaw, ",") {
		id = strings.TrimSpace(id)
		if id == "" {
			continue
		}
		b, ok := s.graph.GetBlock(id)
		if !ok {
			return nil, fmt.Errorf("block %s not found", id)
		}
		g := b.Geometry
		g.X += dx
		g.Y += dy
		moves[id] = g
	}
	if err := s.graph.MoveBlocks(moves); err != nil {
		return nil, err
	}
	return textResult(fmt.Sprintf("Moved %d blocks by (%.0f, %.0f)", len(moves), dx, dy)), nil
}

func (s *Server) handleDeleteBlock(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := getString(req.GetArguments(), "blockId")
	if err != nil {
		return nil, err
	}
	if err := s.graph.RemoveBlock(id); err != nil {
		return nil, err
	}
	return textResult(fmt.Sprintf("Deleted block %s (connections cascaded)", id)), nil
}

func (s *Server) handleListBlocks(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	kind, _ := req.GetArguments()["kind"].(string)
	blocks := s.graph.ListBlocks()
	if kind != "" {
		filtered := blocks[:0]
		for _, b := range blocks {
			if b.Kind == kind {
				filtered = append(filtered, b)
			}
		}
		blocks = filtered
	}
	return jsonResult(blocks)
}

func (s *Server) handleConnectBlocks(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := req.GetArguments()
	sourceID, err := getString(args, "sourceId")
	if err != nil {
		return nil, err
	}
	targetID, err := getString(args, "targetId")
	if err != nil {
		return nil, err
	}
	label, _ := args["label"].(string)
	style, _ := args["style"].(string)

	c, err := s.graph.Connect(sourceID, targetID, domain.ConnectionMeta{
		Label: label,
		Style: domain.ConnectionStyle(style),
	})
	if err != nil {
		return nil, err
	}
	return jsonResult(c)
}

func (s *Server) handleDisconnect(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := getString(req.GetArguments(), "connectionId")
	if err != nil {
		return nil, err
	}
	if err := s.graph.Disconnect(id); err != nil {
		return nil, err
	}
	return textResult(fmt.Sprintf("Removed connection %s", id)), nil
}

func (s *Server) handleListConnections(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	blockID, _ := req.GetArguments()["blockId"].(string)
	if blockID != "" {
		return jsonResult(s.graph.ConnectionsFor(blockID))
	}
	return jsonResult(s.graph.ListConnections())
}

func (s *Server) handleHitTest(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := req.GetArguments()
	x := getFloat(args, "x", 0)
	y := getFloat(args, "y", 0)
	w := getFloat(args, "width", 0)
	h := getFloat(args, "height", 0)

	if w > 0 && h > 0 {
		return jsonResult(s.graph.QueryRect(domain.Geometry{X: x, Y: y, Width: w, Height: h}))
	}
	return jsonResult(s.graph.QueryPoint(x, y))
}

func (s *Server) handleArrangeBlocks(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := req.GetArguments()
	startX := getFloat(args, "startX", 0)
	startY := getFloat(args, "startY", 0)

	moves := s.layout.ArrangeGrid(s.graph.ListBlocks(), startX, startY)
	if err := s.graph.MoveBlocks(moves); err != nil {
		return nil, err
	}
	return textResult(fmt.Sprintf("Arranged %d blocks", len(moves))), nil
}

func (s *Server) handleRouteConnection(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := getString(req.GetArguments(), "connectionId")
	if err != nil {
		return nil, err
	}
	c, ok := s.graph.GetConnection(id)
	if !ok {
		return nil, fmt.Errorf("connection %s not found", id)
	}
	src, ok := s.graph.GetBlock(c.SourceID)
	if !ok {
		return nil, fmt.Errorf("block %s not found", c.SourceID)
	}
	dst, ok := s.graph.GetBlock(c.TargetID)
	if !ok {
		return nil, fmt.Errorf("block %s not found", c.TargetID)
	}
	obstacles := s.graph.Obstacles(c.SourceID, c.TargetID)
	return jsonResult(layout.Route(src, dst, c.SourceAnchor, c.TargetAnchor, obstacles))
}
