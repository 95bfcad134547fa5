package mindmap

import "math"

// LayoutConfig sizes the grid used for nodes without a remembered
// position.
type LayoutConfig struct {
	NodeWidth  float64
	NodeHeight float64
	Margin     float64
}

// DefaultLayoutConfig matches the editor's standard node card size.
func DefaultLayoutConfig() LayoutConfig {
	return LayoutConfig{
		NodeWidth:  160,
		NodeHeight: 90,
		Margin:     24,
	}
}

// GridLayout places node ids on a fixed-width grid in the order given.
// Column count is floor(containerWidth / (nodeWidth+margin)), at least 1.
// Ids that already have a position keep it; only unplaced ids get a slot.
func GridLayout(nodeIDs []string, existing map[string]Point, bounds Bounds, cfg LayoutConfig) map[string]Point {
	cellW := cfg.NodeWidth + cfg.Margin
	cellH := cfg.NodeHeight + cfg.Margin

	cols := 1
	if cellW > 0 {
		if c := int(math.Floor(bounds.Width / cellW)); c > 1 {
			cols = c
		}
	}

	positions := make(map[string]Point, len(nodeIDs))
	slot := 0
	for _, id := range nodeIDs {
		if pos, ok := existing[id]; ok {
			positions[id] = pos
			continue
		}
		row := slot / cols
		col := slot % cols
		positions[id] = Point{
			X: cfg.Margin + float64(col)*cellW,
			Y: cfg.Margin + float64(row)*cellH,
		}
		slot++
	}
	return positions
}
