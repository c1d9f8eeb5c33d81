package rwg

import "fmt"

// Geometry aggregates the surfaces of a scattering problem. Each surface
// records the index of the material region on its exterior side, and
// BFIndexOffset maps a surface's local edge numbering into the shared
// solution vector covering all surfaces.
type Geometry struct {
	Surfaces      []*Surface
	RegionIndex   []int // exterior region of each surface
	BFIndexOffset []int
	TotalBFs      int
}

// NewGeometry assembles surfaces into a geometry. regionIndex gives the
// exterior material region of each surface; nil places every surface in
// region 0. Basis-function offsets are cumulative in surface order.
func NewGeometry(surfaces []*Surface, regionIndex []int) (*Geometry, error) {
	if len(surfaces) == 0 {
		return nil, fmt.Errorf("geometry needs at least one surface")
	}
	if regionIndex == nil {
		regionIndex = make([]int, len(surfaces))
	}
	if len(regionIndex) != len(surfaces) {
		return nil, fmt.Errorf("have %d surfaces but %d region indices",
			len(surfaces), len(regionIndex))
	}
	for i, r := range regionIndex {
		if r < 0 {
			return nil, fmt.Errorf("surface %d: negative region index %d", i, r)
		}
	}

	g := &Geometry{
		Surfaces:      surfaces,
		RegionIndex:   regionIndex,
		BFIndexOffset: make([]int, len(surfaces)),
	}
	offset := 0
	for i, s := range surfaces {
		g.BFIndexOffset[i] = offset
		offset += s.NumBFs()
	}
	g.TotalBFs = offset
	return g, nil
}

// NumSurfaces returns the number of surfaces in the geometry.
func (g *Geometry) NumSurfaces() int { return len(g.Surfaces) }

// SurfaceByLabel returns the surface with the given label and its index,
// or (nil, -1) if no surface carries the label.
func (g *Geometry) SurfaceByLabel(label string) (*Surface, int) {
	for i, s := range g.Surfaces {
		if s.Label == label {
			return s, i
		}
	}
	return nil, -1
}
