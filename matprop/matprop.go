// Package matprop models frequency-dependent electromagnetic material
// properties: relative permittivity and permeability as functions of a
// (possibly complex) angular frequency.
package matprop

import "math"

// EpsMuFunc computes relative permittivity and permeability at a complex
// angular frequency, supporting lossy and causal media.
type EpsMuFunc func(omega complex128) (eps, mu complex128)

type materialKind uint8

const (
	kindVacuum materialKind = iota
	kindPEC
	kindConstant
	kindFunc
)

// MatProp is a material-property model.
type MatProp struct {
	Name string

	kind    materialKind
	eps, mu complex128
	fn      EpsMuFunc
}

// Vacuum returns the vacuum material (eps = mu = 1).
func Vacuum() *MatProp {
	return &MatProp{Name: "VACUUM", kind: kindVacuum, eps: 1, mu: 1}
}

// PEC returns a perfect electric conductor. Its nominal permittivity is
// +Inf; PEC surfaces are handled by the IsPEC flag rather than through
// GetEpsMu.
func PEC() *MatProp {
	return &MatProp{Name: "PEC", kind: kindPEC, eps: complex(math.Inf(1), 0), mu: 1}
}

// Constant returns a frequency-independent material. A lossy medium is
// expressed through a complex permittivity or permeability.
func Constant(name string, eps, mu complex128) *MatProp {
	return &MatProp{Name: name, kind: kindConstant, eps: eps, mu: mu}
}

// FromFunc returns a material whose properties are computed by fn.
func FromFunc(name string, fn EpsMuFunc) *MatProp {
	return &MatProp{Name: name, kind: kindFunc, fn: fn}
}

// GetEpsMu returns the relative permittivity and permeability at the
// given complex angular frequency.
func (m *MatProp) GetEpsMu(omega complex128) (eps, mu complex128) {
	if m.kind == kindFunc {
		return m.fn(omega)
	}
	return m.eps, m.mu
}

// IsPEC reports whether the material is a perfect electric conductor.
func (m *MatProp) IsPEC() bool { return m.kind == kindPEC }
