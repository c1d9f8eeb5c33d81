// Package pft computes electromagnetic power, force, and torque exerted
// on a discretized surface from overlap integrals between RWG basis
// functions and a solved surface-current representation.
package pft

import (
	"fmt"
	"math/cmplx"

	"go.uber.org/zap"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/Kevin035/scuff-em/hmat"
	"github.com/Kevin035/scuff-em/matprop"
	"github.com/Kevin035/scuff-em/rwg"
)

// ZVac is the impedance of free space in ohms.
const ZVac = 376.73031346177

// TenThirds converts 1 watt/c into nanonewtons in the solver's unit
// system (lengths in microns, fields in volts/micron):
// 1 watt/c = (1 joule/s)*(1e-8 s/m)/3 = (10/3) nN.
const TenThirds = 10.0 / 3.0

// Indices into a PFT result.
const (
	PFTPAbs = iota
	PFTXForce
	PFTYForce
	PFTZForce
	PFTXTorque
	PFTYTorque
	PFTZTorque

	NumPFT
)

// PFT holds absorbed power (watts), force (nanonewtons), and torque
// (nanonewton-microns) for one surface.
type PFT [NumPFT]float64

// Absorbed returns the absorbed power.
func (p *PFT) Absorbed() float64 { return p[PFTPAbs] }

// Force returns the force vector.
func (p *PFT) Force() r3.Vec {
	return r3.Vec{X: p[PFTXForce], Y: p[PFTYForce], Z: p[PFTZForce]}
}

// Torque returns the torque vector about the surface-definition origin.
func (p *PFT) Torque() r3.Vec {
	return r3.Vec{X: p[PFTXTorque], Y: p[PFTYTorque], Z: p[PFTZTorque]}
}

// ByEdge holds optional per-edge breakdowns of each PFT quantity,
// indexed like PFT. A nil slice disables the breakdown for that
// quantity; non-nil slices must have one entry per surface edge. The sum
// of a breakdown equals the corresponding total.
type ByEdge [NumPFT][]float64

func (b *ByEdge) zero() {
	if b == nil {
		return
	}
	for _, buf := range b {
		for i := range buf {
			buf[i] = 0
		}
	}
}

func (b *ByEdge) add(nq, nea int, d float64) {
	if b == nil || b[nq] == nil {
		return
	}
	b[nq][nea] += d
}

// ComplexVector is indexed read access to a complex vector.
type ComplexVector interface {
	Len() int
	At(i int) complex128
}

// ComplexMatrix is indexed read access to a complex matrix.
type ComplexMatrix interface {
	Dims() (r, c int)
	At(i, j int) complex128
}

var (
	_ ComplexVector = (*hmat.Vector)(nil)
	_ ComplexMatrix = (*mat.CDense)(nil)
)

// CurrentData is the surface-current representation consumed by GetOPFT:
// either a solved current vector (SolvedCurrents) or a precomputed
// correlation matrix (Correlation). The two are mutually exclusive by
// construction.
type CurrentData interface {
	// products returns the four bilinear current-current products
	// (electric-electric, electric-magnetic, magnetic-electric,
	// magnetic-magnetic) for an edge pair.
	products(offset, nea, neb int, pec bool) (kk, kn, nk, nn complex128)
}

// SolvedCurrents feeds GetOPFT from a solved surface-current vector.
// Magnetic unknowns carry the solver's internal normalization and are
// rescaled by -ZVac to restore physical units. RHS, if non-nil, is the
// excitation vector and enables the extinction computation.
type SolvedCurrents struct {
	KN  ComplexVector
	RHS ComplexVector
}

func (sc *SolvedCurrents) products(offset, nea, neb int, pec bool) (kk, kn, nk, nn complex128) {
	if pec {
		kAlpha := sc.KN.At(offset + nea)
		kBeta := sc.KN.At(offset + neb)
		return cmplx.Conj(kAlpha) * kBeta, 0, 0, 0
	}
	kAlpha := sc.KN.At(offset + 2*nea + 0)
	nAlpha := -ZVac * sc.KN.At(offset+2*nea+1)
	kBeta := sc.KN.At(offset + 2*neb + 0)
	nBeta := -ZVac * sc.KN.At(offset+2*neb+1)
	kk = cmplx.Conj(kAlpha) * kBeta
	kn = cmplx.Conj(kAlpha) * nBeta
	nk = cmplx.Conj(nAlpha) * kBeta
	nn = cmplx.Conj(nAlpha) * nBeta
	return kk, kn, nk, nn
}

// Correlation feeds GetOPFT from a correlation matrix of expectation
// values of current-current products. Entries are assumed pre-normalized
// with conjugation folded in, so the electric-magnetic products read
// with row/column roles swapped relative to the vector representation;
// this asymmetry is part of the matrix convention.
type Correlation struct {
	Sigma ComplexMatrix
}

func (co *Correlation) products(offset, nea, neb int, pec bool) (kk, kn, nk, nn complex128) {
	if pec {
		return co.Sigma.At(offset+neb, offset+nea), 0, 0, 0
	}
	kk = co.Sigma.At(offset+2*neb+0, offset+2*nea+0)
	kn = co.Sigma.At(offset+2*neb+1, offset+2*nea+0)
	nk = co.Sigma.At(offset+2*neb+0, offset+2*nea+1)
	nn = co.Sigma.At(offset+2*neb+1, offset+2*nea+1)
	return kk, kn, nk, nn
}

// RegionResolver maps a material region and complex angular frequency to
// relative permittivity and permeability.
type RegionResolver interface {
	GetEpsMu(region int, omega complex128) (eps, mu complex128)
}

// RegionMaterials resolves regions from a flat list of materials.
type RegionMaterials []*matprop.MatProp

// GetEpsMu implements RegionResolver.
func (rm RegionMaterials) GetEpsMu(region int, omega complex128) (eps, mu complex128) {
	return rm[region].GetEpsMu(omega)
}

// Calculator computes overlap-integral PFT for the surfaces of a
// geometry. It holds no mutable state across calls; inputs are read-only
// for the duration of a call.
type Calculator struct {
	Geom    *rwg.Geometry
	Regions RegionResolver
	log     *zap.Logger
}

// Option configures a Calculator.
type Option func(*Calculator)

// WithLogger sets the warning logger.
func WithLogger(l *zap.Logger) Option {
	return func(c *Calculator) { c.log = l }
}

// NewCalculator creates a PFT calculator for the given geometry and
// region material resolver.
func NewCalculator(geom *rwg.Geometry, regions RegionResolver, opts ...Option) (*Calculator, error) {
	if geom == nil {
		return nil, fmt.Errorf("pft: nil geometry")
	}
	if regions == nil {
		return nil, fmt.Errorf("pft: nil region resolver")
	}
	c := &Calculator{Geom: geom, Regions: regions, log: zap.NewNop()}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// GetOPFT computes the PFT totals for one surface at a complex angular
// frequency, accumulating optional per-edge breakdowns into byEdge (may
// be nil). The returned extinction (total power removed from the
// incident field) is nonzero only when src is a SolvedCurrents carrying
// an excitation vector.
//
// An out-of-range surface index is not fatal: it logs a warning,
// zero-fills the result and any supplied per-edge buffers, and returns.
func (c *Calculator) GetOPFT(surfaceIndex int, omega complex128, src CurrentData, byEdge *ByEdge) (PFT, float64) {
	var pft PFT
	if surfaceIndex < 0 || surfaceIndex >= c.Geom.NumSurfaces() {
		c.log.Warn("GetOPFT called for unknown surface",
			zap.Int("surfaceIndex", surfaceIndex),
			zap.Int("numSurfaces", c.Geom.NumSurfaces()))
		byEdge.zero()
		return pft, 0
	}

	s := c.Geom.Surfaces[surfaceIndex]
	offset := c.Geom.BFIndexOffset[surfaceIndex]
	numEdges := s.NumEdges()

	// Exterior-medium normalization: wave impedance and squared
	// wavenumber at this frequency.
	eps, mu := c.Regions.GetEpsMu(c.Geom.RegionIndex[surfaceIndex], omega)
	k2 := omega * omega * eps * mu
	zz := ZVac * cmplx.Sqrt(mu/eps)
	iOmega := 1i * omega

	byEdge.zero()

	for nea := 0; nea < numEdges; nea++ {
		for _, neb := range s.OverlappingEdges(nea) {
			ov := s.GetOverlaps(nea, neb)
			kk, kn, nk, nn := src.products(offset, nea, neb, s.IsPEC)

			dPAbs := 0.25 * real((kn-nk)*complex(ov[rwg.OvCross], 0))
			pft[PFTPAbs] += dPAbs
			byEdge.add(PFTPAbs, nea, dPAbs)

			zkk := -(kk*zz + nn/zz)
			dkn := (nk - kn) * 2.0
			for d := 0; d < 3; d++ {
				bullet := complex(ov.Bullet(d), 0) - complex(ov.NablaNabla(d), 0)/k2
				dF := 0.25 * TenThirds * real(zkk*bullet+dkn*complex(ov.TimesNabla(d), 0)/iOmega)
				pft[PFTXForce+d] += dF
				byEdge.add(PFTXForce+d, nea, dF)

				rxBullet := complex(ov.RxBullet(d), 0) - complex(ov.RxNablaNabla(d), 0)/k2
				dTau := 0.25 * TenThirds * real(zkk*rxBullet+dkn*complex(ov.RxTimesNabla(d), 0)/iOmega)
				pft[PFTXTorque+d] += dTau
				byEdge.add(PFTXTorque+d, nea, dTau)
			}
		}
	}

	return pft, c.extinction(s, offset, src)
}

// extinction computes the total extinguished power 0.5*Re[conj(j)*v]
// summed over basis functions, available only in the solved-currents
// representation with an excitation vector. PEC surfaces carry no
// magnetic contribution.
func (c *Calculator) extinction(s *rwg.Surface, offset int, src CurrentData) float64 {
	sc, ok := src.(*SolvedCurrents)
	if !ok || sc.RHS == nil {
		return 0
	}

	ext := 0.0
	nbf := offset
	for ne := 0; ne < s.NumEdges(); ne++ {
		kAlpha := sc.KN.At(nbf)
		vE := -ZVac * sc.RHS.At(nbf)
		nbf++
		ext += 0.5 * real(cmplx.Conj(kAlpha)*vE)
		if s.IsPEC {
			continue
		}

		nAlpha := -ZVac * sc.KN.At(nbf)
		vH := -1.0 * sc.RHS.At(nbf)
		nbf++
		ext += 0.5 * real(cmplx.Conj(nAlpha)*vH)
	}
	return ext
}
