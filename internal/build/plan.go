// Package build plans and executes small block structures over the
// controller core: per-block verified placement, pillar-up for rows above
// eye height, side-face fallbacks, and a final verification scan.
package build

// Plan is an ordered list of voxels to place. Order matters: lower layers
// first, so later blocks have support under them.
type Plan struct {
	Name   string
	Item   string
	Blocks [][3]int
}

// WallPlan is a 3×3 vertical wall at fixed x: columns z0..z0+2, rows
// y0..y0+2, built row by row bottom-up.
func WallPlan(item string, x, y0, z0 int) Plan {
	p := Plan{Name: "wall", Item: item}
	for row := 0; row < 3; row++ {
		for col := 0; col < 3; col++ {
			p.Blocks = append(p.Blocks, [3]int{x, y0 + row, z0 + col})
		}
	}
	return p
}

// HutPlan is a rectangular shell: perimeter walls of the given height on
// y0..y0+height-1, then a full roof slab on top.
func HutPlan(item string, minX, minZ, maxX, maxZ, y0, height int) Plan {
	p := Plan{Name: "hut", Item: item}
	for layer := 0; layer < height; layer++ {
		y := y0 + layer
		for x := minX; x <= maxX; x++ {
			for z := minZ; z <= maxZ; z++ {
				if x == minX || x == maxX || z == minZ || z == maxZ {
					p.Blocks = append(p.Blocks, [3]int{x, y, z})
				}
			}
		}
	}
	roofY := y0 + height
	for x := minX; x <= maxX; x++ {
		for z := minZ; z <= maxZ; z++ {
			p.Blocks = append(p.Blocks, [3]int{x, roofY, z})
		}
	}
	return p
}

// Layers groups a plan's blocks by Y, ascending. Block order within a layer
// follows the plan.
func (p Plan) Layers() [][][3]int {
	byY := map[int][][3]int{}
	minY, maxY := 0, 0
	for i, b := range p.Blocks {
		if i == 0 || b[1] < minY {
			minY = b[1]
		}
		if i == 0 || b[1] > maxY {
			maxY = b[1]
		}
		byY[b[1]] = append(byY[b[1]], b)
	}
	var out [][][3]int
	for y := minY; y <= maxY; y++ {
		if blocks := byY[y]; len(blocks) > 0 {
			out = append(out, blocks)
		}
	}
	return out
}
