package rwg

import (
	"fmt"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"gonum.org/v1/gonum/spatial/r3"
)

// quad4 is a degree-3 quadrature rule on the triangle (barycentric
// points and weights normalized to unit area). It integrates the cubic
// torque-overlap integrands exactly.
var quad4 = []struct {
	l0, l1, l2, w float64
}{
	{1.0 / 3.0, 1.0 / 3.0, 1.0 / 3.0, -27.0 / 48.0},
	{0.6, 0.2, 0.2, 25.0 / 48.0},
	{0.2, 0.6, 0.2, 25.0 / 48.0},
	{0.2, 0.2, 0.6, 25.0 / 48.0},
}

// edgeOnPanel returns the sign and free vertex of edge e's basis
// function on panel np, or ok=false if the edge does not occupy it.
func edgeOnPanel(s *Surface, e *Edge, np int) (sign float64, q r3.Vec, ok bool) {
	switch np {
	case e.IPPanel:
		return 1, s.Vertices[e.IQP], true
	case e.IMPanel:
		return -1, s.Vertices[e.IQM], true
	}
	return 0, r3.Vec{}, false
}

// refOverlaps computes all 20 overlap integrals by direct quadrature of
// the RWG basis-function definition, independently of the closed-form
// kernel.
func refOverlaps(s *Surface, nea, neb int) Overlaps {
	var ov Overlaps
	ea, eb := s.Edges[nea], s.Edges[neb]

	for np, p := range s.Panels {
		sa, qa, okA := edgeOnPanel(s, ea, np)
		sb, qb, okB := edgeOnPanel(s, eb, np)
		if !okA || !okB {
			continue
		}

		v0 := s.Vertices[p.VI[0]]
		v1 := s.Vertices[p.VI[1]]
		v2 := s.Vertices[p.VI[2]]
		diva := sa * ea.Length / p.Area
		divb := sb * eb.Length / p.Area

		for _, qp := range quad4 {
			r := r3.Add(r3.Scale(qp.l0, v0), r3.Add(r3.Scale(qp.l1, v1), r3.Scale(qp.l2, v2)))
			fa := r3.Scale(sa*ea.Length/(2*p.Area), r3.Sub(r, qa))
			fb := r3.Scale(sb*eb.Length/(2*p.Area), r3.Sub(r, qb))

			faDotFb := r3.Dot(fa, fb)
			nxfa := r3.Cross(p.ZHat, fa)
			nxfb := r3.Cross(p.ZHat, fb)

			n := vec3(p.ZHat)
			nxfaArr := vec3(nxfa)
			rxn := vec3(r3.Cross(r, p.ZHat))
			rxnxfa := vec3(r3.Cross(r, nxfa))

			w := qp.w * p.Area
			ov[OvBullet] += w * faDotFb
			ov[OvCross] += w * r3.Dot(fa, nxfb)
			for d := 0; d < 3; d++ {
				ov[ovBulletBase+3*d] += w * n[d] * faDotFb
				ov[ovNablaNablaBase+3*d] += w * n[d] * diva * divb
				ov[ovTimesNablaBase+3*d] += w * nxfaArr[d] * divb
				ov[ovRxBulletBase+3*d] += w * rxn[d] * faDotFb
				ov[ovRxNablaNablaBase+3*d] += w * rxn[d] * diva * divb
				ov[ovRxTimesNablaBase+3*d] += w * rxnxfa[d] * divb
			}
		}
	}
	return ov
}

func assertOverlapsMatch(t *testing.T, s *Surface, nea, neb int) {
	t.Helper()
	got := s.GetOverlaps(nea, neb)
	want := refOverlaps(s, nea, neb)
	for slot := 0; slot < NumOverlaps; slot++ {
		tol := 1e-12 * math.Max(1, math.Abs(want[slot]))
		assert.InDelta(t, want[slot], got[slot], tol,
			fmt.Sprintf("edges (%d,%d) slot %d", nea, neb, slot))
	}
}

func TestOverlapsAgainstQuadratureClosed(t *testing.T) {
	s := tetMesh(t, SurfaceOptions{})
	for nea := range s.Edges {
		for neb := range s.Edges {
			assertOverlapsMatch(t, s, nea, neb)
		}
	}
}

func TestOverlapsAgainstQuadratureOpen(t *testing.T) {
	// Half-RWG promotion exercises the single-sided boundary-edge
	// contribution (no negative panel).
	s := diamondMesh(t, SurfaceOptions{UseHalfRWGEdges: true})
	for nea := range s.Edges {
		for neb := range s.Edges {
			assertOverlapsMatch(t, s, nea, neb)
		}
	}
}

func TestOverlapSymmetry(t *testing.T) {
	s := tetMesh(t, SurfaceOptions{})
	for nea := range s.Edges {
		for neb := range s.Edges {
			oAB, xAB := s.GetOverlap(nea, neb)
			oBA, xBA := s.GetOverlap(neb, nea)
			assert.InDelta(t, oAB, oBA, 1e-14, "bullet overlap is symmetric")
			assert.InDelta(t, xAB, -xBA, 1e-14, "cross overlap is antisymmetric")
		}
	}
}

func TestOverlapLocality(t *testing.T) {
	s := tetMesh(t, SurfaceOptions{})

	sharePanel := func(a, b *Edge) bool {
		return a.IPPanel == b.IPPanel || a.IPPanel == b.IMPanel ||
			a.IMPanel == b.IPPanel || (a.IMPanel != -1 && a.IMPanel == b.IMPanel)
	}

	disjoint := 0
	for nea, ea := range s.Edges {
		for neb, eb := range s.Edges {
			if sharePanel(ea, eb) {
				continue
			}
			disjoint++
			ov := s.GetOverlaps(nea, neb)
			assert.Equal(t, Overlaps{}, ov, "edges (%d,%d) share no panel", nea, neb)
			assert.NotContains(t, s.OverlappingEdges(nea), neb)
		}
	}
	// A tetrahedron has three pairs of opposite edges.
	assert.Equal(t, 6, disjoint)
}

func TestSelfOverlapPositive(t *testing.T) {
	for _, s := range []*Surface{
		tetMesh(t, SurfaceOptions{}),
		diamondMesh(t, SurfaceOptions{UseHalfRWGEdges: true}),
	} {
		for nea := range s.Edges {
			oSelf, xSelf := s.GetOverlap(nea, nea)
			assert.Greater(t, oSelf, 0.0, "surface %s edge %d", s.Label, nea)
			assert.InDelta(t, 0.0, xSelf, 1e-14)
		}
	}
}

func TestGetOverlapMatchesSlots(t *testing.T) {
	s := tetMesh(t, SurfaceOptions{})
	ov := s.GetOverlaps(0, 1)
	oBullet, oCross := s.GetOverlap(0, 1)
	assert.Equal(t, ov[OvBullet], oBullet)
	assert.Equal(t, ov[OvCross], oCross)
}

func TestDiamondSelfOverlapClosedForm(t *testing.T) {
	// For the symmetric diamond, the self bullet overlap is 13/24 and
	// the divergence-divergence z overlap is 4 (two unit-length edges,
	// panel areas 1/2, normals +z).
	s := diamondMesh(t, SurfaceOptions{})
	ov := s.GetOverlaps(0, 0)
	assert.InDelta(t, 13.0/24.0, ov[OvBullet], 1e-14)
	assert.InDelta(t, 13.0/24.0, ov.Bullet(2), 1e-14)
	assert.InDelta(t, 4.0, ov.NablaNabla(2), 1e-14)
	assert.InDelta(t, 0.0, ov.Bullet(0), 1e-14)
	assert.InDelta(t, 0.0, ov.Bullet(1), 1e-14)
}
