// Package rwg implements Rao-Wilton-Glisson surface-current geometry:
// triangulated surfaces, the edges that support RWG basis functions, and
// the closed-form overlap integrals between pairs of basis functions.
package rwg

import (
	"fmt"

	"gonum.org/v1/gonum/spatial/r3"
)

// Panel is one flat triangular element of a discretized surface.
type Panel struct {
	VI       [3]int // global vertex indices
	EI       [3]int // edge index opposite each vertex; negative codes mark exterior edges
	ZHat     r3.Vec // unit normal
	Centroid r3.Vec
	Area     float64
	Index    int
}

// Edge supports one RWG basis function. The basis function lives on the
// positive panel and, unless the edge lies on the mesh boundary, on the
// negative panel; PIndex and MIndex are the local slots of the free
// vertices opposite the shared edge within each panel.
type Edge struct {
	IV1, IV2 int // endpoint vertex indices
	IQP      int // free vertex on the positive panel
	IQM      int // free vertex on the negative panel, -1 for a half-RWG edge
	IPPanel  int
	IMPanel  int // -1 for a half-RWG (boundary) edge
	PIndex   int
	MIndex   int // -1 for a half-RWG edge
	Length   float64
	Centroid r3.Vec
	Index    int
}

// Surface is a triangulated surface carrying RWG basis functions.
type Surface struct {
	Label    string
	Vertices []r3.Vec
	Panels   []*Panel
	Edges    []*Edge
	IsPEC    bool

	// NumExteriorEdges counts boundary edges that were not promoted to
	// half-RWG basis functions.
	NumExteriorEdges int
}

// SurfaceOptions selects optional features of surface construction.
type SurfaceOptions struct {
	// IsPEC marks the surface as a perfect electric conductor, carrying
	// only electric surface currents (one basis function per edge).
	IsPEC bool

	// UseHalfRWGEdges promotes boundary edges to half-RWG basis
	// functions with no negative panel.
	UseHalfRWGEdges bool
}

const minPanelCross = 1e-30

// NewSurface builds a surface from a vertex list and a triangle soup,
// matching shared edges between triangles to construct the RWG edge
// list. Interior edges are numbered first, in order of the panel that
// closes them; with UseHalfRWGEdges, boundary edges follow in panel
// order. Triangles must be consistently oriented; degenerate panels are
// rejected.
func NewSurface(label string, vertices []r3.Vec, triangles [][3]int, opts SurfaceOptions) (*Surface, error) {
	if len(vertices) < 3 || len(triangles) < 1 {
		return nil, fmt.Errorf("surface %s: need at least 3 vertices and 1 triangle, got %d and %d",
			label, len(vertices), len(triangles))
	}

	s := &Surface{
		Label:    label,
		Vertices: vertices,
		IsPEC:    opts.IsPEC,
	}

	s.Panels = make([]*Panel, len(triangles))
	for np, tri := range triangles {
		for _, iv := range tri {
			if iv < 0 || iv >= len(vertices) {
				return nil, fmt.Errorf("surface %s: panel %d references vertex %d, have %d vertices",
					label, np, iv, len(vertices))
			}
		}
		v0, v1, v2 := vertices[tri[0]], vertices[tri[1]], vertices[tri[2]]
		cr := r3.Cross(r3.Sub(v1, v0), r3.Sub(v2, v0))
		nrm := r3.Norm(cr)
		if nrm < minPanelCross {
			return nil, fmt.Errorf("surface %s: panel %d is degenerate", label, np)
		}
		s.Panels[np] = &Panel{
			VI:       tri,
			EI:       [3]int{-1, -1, -1},
			ZHat:     r3.Scale(1/nrm, cr),
			Centroid: r3.Scale(1.0/3.0, r3.Add(v0, r3.Add(v1, v2))),
			Area:     0.5 * nrm,
			Index:    np,
		}
	}

	if err := s.initEdgeList(opts.UseHalfRWGEdges); err != nil {
		return nil, err
	}
	return s, nil
}

// halfEdge records one panel-side occurrence of a mesh edge.
type halfEdge struct {
	panel int
	slot  int // local slot of the opposite (free) vertex
}

// edgeKey returns the canonical (sorted) endpoint pair of the edge
// opposite the given slot of a panel.
func (p *Panel) edgeKey(slot int) [2]int {
	a, b := p.VI[(slot+1)%3], p.VI[(slot+2)%3]
	if a > b {
		a, b = b, a
	}
	return [2]int{a, b}
}

func (s *Surface) initEdgeList(useHalfRWG bool) error {
	occ := make(map[[2]int][]halfEdge, 3*len(s.Panels)/2)
	for np, p := range s.Panels {
		for slot := 0; slot < 3; slot++ {
			key := p.edgeKey(slot)
			if len(occ[key]) == 2 {
				return fmt.Errorf("surface %s: edge (%d,%d) shared by more than two panels",
					s.Label, key[0], key[1])
			}
			occ[key] = append(occ[key], halfEdge{panel: np, slot: slot})
		}
	}

	// Interior edges, numbered in order of the panel that closes them.
	for np, p := range s.Panels {
		for slot := 0; slot < 3; slot++ {
			key := p.edgeKey(slot)
			hes := occ[key]
			if len(hes) != 2 || hes[1].panel != np || hes[1].slot != slot {
				continue
			}
			s.addEdge(hes[0], hes[1])
		}
	}

	// Boundary edges, in panel order.
	nExterior := 0
	for np, p := range s.Panels {
		for slot := 0; slot < 3; slot++ {
			key := p.edgeKey(slot)
			if len(occ[key]) != 1 {
				continue
			}
			if useHalfRWG {
				s.addEdge(halfEdge{panel: np, slot: slot}, halfEdge{panel: -1, slot: -1})
			} else {
				s.Panels[np].EI[slot] = -(nExterior + 1)
				nExterior++
			}
		}
	}
	s.NumExteriorEdges = nExterior

	if len(s.Edges) == 0 {
		return fmt.Errorf("surface %s: mesh has no RWG edges", s.Label)
	}
	return nil
}

func (s *Surface) addEdge(pos, neg halfEdge) {
	pp := s.Panels[pos.panel]
	e := &Edge{
		IV1:     pp.VI[(pos.slot+1)%3],
		IV2:     pp.VI[(pos.slot+2)%3],
		IQP:     pp.VI[pos.slot],
		IQM:     -1,
		IPPanel: pos.panel,
		IMPanel: -1,
		PIndex:  pos.slot,
		MIndex:  -1,
		Index:   len(s.Edges),
	}
	v1, v2 := s.Vertices[e.IV1], s.Vertices[e.IV2]
	e.Length = r3.Norm(r3.Sub(v2, v1))
	e.Centroid = r3.Scale(0.5, r3.Add(v1, v2))
	pp.EI[pos.slot] = e.Index

	if neg.panel >= 0 {
		pm := s.Panels[neg.panel]
		e.IMPanel = neg.panel
		e.MIndex = neg.slot
		e.IQM = pm.VI[neg.slot]
		pm.EI[neg.slot] = e.Index
	}

	s.Edges = append(s.Edges, e)
}

// NumEdges returns the number of RWG basis functions on the surface.
func (s *Surface) NumEdges() int { return len(s.Edges) }

// NumPanels returns the number of triangular panels.
func (s *Surface) NumPanels() int { return len(s.Panels) }

// NumBFs returns the number of surface-current unknowns: one per edge
// for PEC surfaces, two (electric and magnetic) otherwise.
func (s *Surface) NumBFs() int {
	if s.IsPEC {
		return len(s.Edges)
	}
	return 2 * len(s.Edges)
}
