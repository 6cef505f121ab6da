package canvas

// Tool selects the active pointer interaction on the sketch canvas. The
// dispatch over tools is an exhaustive switch, so adding a tool is a
// compile-time-checked change.
type Tool int

const (
	ToolPen Tool = iota
	ToolMarker
	ToolEraser
	ToolMaskPen
	ToolLine
	ToolCurve
	ToolEllipse
	ToolAnchor
	ToolAnchorDelete
	ToolPerspective
	ToolCrop
	ToolPan
	ToolZoom
)

var toolNames = []string{
	ToolPen:          "pen",
	ToolMarker:       "marker",
	ToolEraser:       "eraser",
	ToolMaskPen:      "mask pen",
	ToolLine:         "line",
	ToolCurve:        "curve",
	ToolEllipse:      "ellipse",
	ToolAnchor:       "anchor",
	ToolAnchorDelete: "anchor delete",
	ToolPerspective:  "perspective",
	ToolCrop:         "crop",
	ToolPan:          "pan",
	ToolZoom:         "zoom",
}

func (t Tool) String() string {
	if int(t) < len(toolNames) {
		return toolNames[t]
	}
	return "unknown"
}

// Tools returns every tool in toolbar order.
func Tools() []Tool {
	tools := make([]Tool, len(toolNames))
	for i := range tools {
		tools[i] = Tool(i)
	}
	return tools
}

// IsFreehand reports whether the tool consumes a continuous sample stream
// (one BeginStroke per gesture, re-rendered live on every pointer move).
func (t Tool) IsFreehand() bool {
	switch t {
	case ToolPen, ToolMarker, ToolEraser, ToolMaskPen:
		return true
	case ToolLine, ToolCurve, ToolEllipse, ToolAnchor, ToolAnchorDelete,
		ToolPerspective, ToolCrop, ToolPan, ToolZoom:
		return false
	}
	return false
}

// Draws reports whether the tool mutates the active layer's raster. Used to
// gate the history snapshot and undo availability.
func (t Tool) Draws() bool {
	switch t {
	case ToolPen, ToolMarker, ToolEraser, ToolMaskPen, ToolLine, ToolCurve,
		ToolEllipse:
		return true
	case ToolAnchor, ToolAnchorDelete, ToolPerspective, ToolCrop, ToolPan,
		ToolZoom:
		return false
	}
	return false
}
