package rwg

import "gonum.org/v1/gonum/spatial/r3"

// NumOverlaps is the number of distinct overlap integrals between a pair
// of RWG basis functions needed for power, force, and torque.
const NumOverlaps = 20

// Slot layout of the Overlaps array. Slot 0 is the plain dot overlap
// Int f_a . f_b and slot 1 the crossed overlap Int f_a . (n x f_b).
// Slots 2..10 hold, per Cartesian axis d, the triple
//
//	Int n_d (f_a . f_b)
//	Int n_d (div f_a)(div f_b)
//	Int (n x f_a)_d (div f_b)
//
// and slots 11..19 the same triple with an extra factor of (r x n) for
// torque about the coordinate origin of the surface definition.
const (
	OvBullet = 0
	OvCross  = 1

	ovBulletBase       = 2
	ovNablaNablaBase   = 3
	ovTimesNablaBase   = 4
	ovRxBulletBase     = 11
	ovRxNablaNablaBase = 12
	ovRxTimesNablaBase = 13
)

// Overlaps holds the overlap integrals for one pair of basis functions.
type Overlaps [NumOverlaps]float64

// Bullet returns Int n_d (f_a . f_b) for axis d (0=x, 1=y, 2=z).
func (o *Overlaps) Bullet(d int) float64 { return o[ovBulletBase+3*d] }

// NablaNabla returns Int n_d (div f_a)(div f_b) for axis d.
func (o *Overlaps) NablaNabla(d int) float64 { return o[ovNablaNablaBase+3*d] }

// TimesNabla returns Int (n x f_a)_d (div f_b) for axis d.
func (o *Overlaps) TimesNabla(d int) float64 { return o[ovTimesNablaBase+3*d] }

// RxBullet returns Int (r x n)_d (f_a . f_b) for axis d.
func (o *Overlaps) RxBullet(d int) float64 { return o[ovRxBulletBase+3*d] }

// RxNablaNabla returns Int (r x n)_d (div f_a)(div f_b) for axis d.
func (o *Overlaps) RxNablaNabla(d int) float64 { return o[ovRxNablaNablaBase+3*d] }

// RxTimesNabla returns Int (r x (n x f_a))_d (div f_b) for axis d.
func (o *Overlaps) RxTimesNabla(d int) float64 { return o[ovRxTimesNablaBase+3*d] }

func vec3(v r3.Vec) [3]float64 { return [3]float64{v.X, v.Y, v.Z} }

// addOverlapContributions accumulates the contribution of a single
// shared panel to the overlap integrals between two basis functions
// whose free vertices occupy local slots iQa and iQb of the panel. The
// sign is +1 when both basis functions reference the panel in the same
// role (positive/positive or negative/negative) and -1 when crossed;
// ll is the product of the two edge lengths.
func (s *Surface) addOverlapContributions(p *Panel, iQa, iQb int, sign, ll float64, ov *Overlaps) {
	qa := s.Vertices[p.VI[iQa]]
	qaP1 := s.Vertices[p.VI[(iQa+1)%3]]
	qaP2 := s.Vertices[p.VI[(iQa+2)%3]]
	qb := s.Vertices[p.VI[iQb]]

	l1 := r3.Sub(qaP1, qa)
	l2 := r3.Sub(qaP2, qaP1)
	dq := r3.Sub(qa, qb)

	zxL1v := r3.Cross(p.ZHat, l1)
	zxL2v := r3.Cross(p.ZHat, l2)
	zxDQ := r3.Cross(p.ZHat, dq)

	zHat := vec3(p.ZHat)
	zxL1 := vec3(zxL1v)
	zxL2 := vec3(zxL2v)
	zxQa := vec3(r3.Cross(p.ZHat, qa))
	qaxZxL1 := vec3(r3.Cross(qa, zxL1v))
	qaxZxL2 := vec3(r3.Cross(qa, zxL2v))

	preFac := sign * ll / (2.0 * p.Area)

	l1dL1 := r3.Dot(l1, l1)
	l1dL2 := r3.Dot(l1, l2)
	l1dDQ := r3.Dot(l1, dq)
	l2dL2 := r3.Dot(l2, l2)
	l2dDQ := r3.Dot(l2, dq)

	// Exact polynomial moments of the affine/quadratic integrands over
	// the panel, normalized to unit area.
	timesFactor := r3.Dot(r3.Add(r3.Scale(2, l1), l2), zxDQ) / 6.0
	bulletFactor1 := (l1dL1+l1dL2)/4.0 + l1dDQ/3.0 + l2dL2/12.0 + l2dDQ/6.0
	bulletFactor2 := (l1dL1+l1dL2)/5.0 + l1dDQ/4.0 + l2dL2/15.0 + l2dDQ/8.0
	bulletFactor3 := l1dL1/10.0 + 2.0*l1dL2/15.0 + l1dDQ/8.0 + l2dL2/20.0 + l2dDQ/12.0
	nablaCrossFactor := (l1dL1+l1dL2)/2.0 + l2dL2/6.0

	ov[OvBullet] += preFac * bulletFactor1
	ov[OvCross] += preFac * timesFactor

	for d := 0; d < 3; d++ {
		ov[ovBulletBase+3*d] += preFac * zHat[d] * bulletFactor1
		ov[ovNablaNablaBase+3*d] += preFac * zHat[d] * 2.0
		ov[ovTimesNablaBase+3*d] += preFac * (2.0*zxL1[d] + zxL2[d]) / 3.0

		ov[ovRxBulletBase+3*d] -= preFac * (zxQa[d]*bulletFactor1 + zxL1[d]*bulletFactor2 + zxL2[d]*bulletFactor3)
		ov[ovRxNablaNablaBase+3*d] -= preFac * (2.0*zxQa[d] + 4.0*zxL1[d]/3.0 + 2.0*zxL2[d]/3.0)
		ov[ovRxTimesNablaBase+3*d] += preFac * (zHat[d]*nablaCrossFactor + 2.0*qaxZxL1[d]/3.0 + qaxZxL2[d]/3.0)
	}
}

// GetOverlaps computes the overlap integrals between the RWG basis
// functions on edges neAlpha and neBeta (which may coincide). Two basis
// functions interact only on panels both occupy, so up to four signed
// panel contributions enter; the result is all-zero when the edges share
// no panel.
func (s *Surface) GetOverlaps(neAlpha, neBeta int) Overlaps {
	eAlpha := s.Edges[neAlpha]
	eBeta := s.Edges[neBeta]

	ll := eAlpha.Length * eBeta.Length

	var ov Overlaps
	if eAlpha.IPPanel == eBeta.IPPanel {
		s.addOverlapContributions(s.Panels[eAlpha.IPPanel], eAlpha.PIndex, eBeta.PIndex, 1.0, ll, &ov)
	}
	if eBeta.IMPanel != -1 && eAlpha.IPPanel == eBeta.IMPanel {
		s.addOverlapContributions(s.Panels[eAlpha.IPPanel], eAlpha.PIndex, eBeta.MIndex, -1.0, ll, &ov)
	}
	if eAlpha.IMPanel != -1 && eAlpha.IMPanel == eBeta.IPPanel {
		s.addOverlapContributions(s.Panels[eAlpha.IMPanel], eAlpha.MIndex, eBeta.PIndex, -1.0, ll, &ov)
	}
	if eAlpha.IMPanel != -1 && eAlpha.IMPanel == eBeta.IMPanel {
		s.addOverlapContributions(s.Panels[eAlpha.IMPanel], eAlpha.MIndex, eBeta.MIndex, 1.0, ll, &ov)
	}
	return ov
}

// GetOverlap returns the plain dot overlap Int f_a . f_b and the crossed
// overlap Int f_a . (n x f_b) between two basis functions.
func (s *Surface) GetOverlap(neAlpha, neBeta int) (oBullet, oCross float64) {
	ov := s.GetOverlaps(neAlpha, neBeta)
	return ov[OvBullet], ov[OvCross]
}

// OverlappingEdges returns the indices of the basis functions with
// potentially nonzero overlap with edge nea: the edge itself, the other
// edges of its positive panel, and (if present) the other edges of its
// negative panel. Panel slots holding exterior edges without basis
// functions are skipped, so the result has at most 5 entries.
func (s *Surface) OverlappingEdges(nea int) []int {
	e := s.Edges[nea]

	out := make([]int, 1, 5)
	out[0] = nea

	pp := s.Panels[e.IPPanel]
	for k := 1; k <= 2; k++ {
		if ne := pp.EI[(e.PIndex+k)%3]; ne >= 0 {
			out = append(out, ne)
		}
	}

	if e.IMPanel == -1 {
		return out
	}
	pm := s.Panels[e.IMPanel]
	for k := 1; k <= 2; k++ {
		if ne := pm.EI[(e.MIndex+k)%3]; ne >= 0 {
			out = append(out, ne)
		}
	}
	return out
}
