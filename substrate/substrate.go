// Package substrate describes layered material substrates: a stack of
// homogeneous regions separated by planar interfaces at fixed z
// coordinates, optionally terminated by a ground plane. It resolves
// material properties per region and frequency for the PFT assembler.
//
// Substrate definitions use a line-oriented text format:
//
//	MEDIUM  MaterialName     # upper half-space medium (default VACUUM)
//	zValue  MaterialName     # interface at z, material below it
//	zValue  GROUNDPLANE      # ground plane at z, below all layers
//
// Interfaces must appear in order of decreasing z; '#' starts a comment.
package substrate

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/Kevin035/scuff-em/matprop"
)

// PathEnvVar names the environment variable holding a list of
// directories searched for substrate definition files.
const PathEnvVar = "SCUFF_SUBSTRATE_PATH"

// Library maps material names to property models. Lookups are
// case-insensitive; VACUUM and PEC are always available.
type Library map[string]*matprop.MatProp

func (l Library) lookup(name string) (*matprop.MatProp, bool) {
	for k, mp := range l {
		if strings.EqualFold(k, name) {
			return mp, true
		}
	}
	switch strings.ToUpper(name) {
	case "VACUUM":
		return matprop.Vacuum(), true
	case "PEC":
		return matprop.PEC(), true
	}
	return nil, false
}

// LayeredSubstrate is a stack of material layers. Region 0 is the upper
// half-space; region n (1 <= n <= NumInterfaces) lies below the n-th
// interface.
type LayeredSubstrate struct {
	layers     []*matprop.MatProp // layers[0] = upper half-space medium
	zInterface []float64          // decreasing
	zGP        float64
	hasGP      bool

	epsLayer   []complex128
	muLayer    []complex128
	omegaCache complex128
	cacheValid bool

	log *zap.Logger
}

// Option configures a LayeredSubstrate.
type Option func(*LayeredSubstrate)

// WithLogger sets the logger used while reading substrate definitions.
func WithLogger(l *zap.Logger) Option {
	return func(s *LayeredSubstrate) { s.log = l }
}

// Parse reads a substrate definition. name is used in error messages.
func Parse(name string, r io.Reader, lib Library, opts ...Option) (*LayeredSubstrate, error) {
	s := &LayeredSubstrate{
		layers: []*matprop.MatProp{matprop.Vacuum()},
		log:    zap.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}

	scanner := bufio.NewScanner(r)
	lineNum := 0
	for scanner.Scan() {
		lineNum++
		line := scanner.Text()
		if i := strings.IndexByte(line, '#'); i >= 0 {
			line = line[:i]
		}
		tokens := strings.Fields(line)
		if len(tokens) == 0 {
			continue
		}
		if len(tokens) != 2 {
			return nil, fmt.Errorf("%s:%d: syntax error", name, lineNum)
		}

		if strings.EqualFold(tokens[0], "MEDIUM") {
			mp, ok := lib.lookup(tokens[1])
			if !ok {
				return nil, fmt.Errorf("%s:%d: unknown material %s", name, lineNum, tokens[1])
			}
			s.layers[0] = mp
			s.log.Info("setting upper half-space medium", zap.String("material", mp.Name))
			continue
		}

		z, err := strconv.ParseFloat(tokens[0], 64)
		if err != nil {
			return nil, fmt.Errorf("%s:%d: bad z-value %s", name, lineNum, tokens[0])
		}

		if strings.EqualFold(tokens[1], "GROUNDPLANE") {
			s.zGP = z
			s.hasGP = true
			s.log.Info("ground plane", zap.Float64("z", z))
			continue
		}

		if n := len(s.zInterface); n > 0 && z > s.zInterface[n-1] {
			return nil, fmt.Errorf("%s:%d: z coordinate lies above previous layer", name, lineNum)
		}
		mp, ok := lib.lookup(tokens[1])
		if !ok {
			return nil, fmt.Errorf("%s:%d: unknown material %s", name, lineNum, tokens[1])
		}
		s.layers = append(s.layers, mp)
		s.zInterface = append(s.zInterface, z)
		s.log.Info("layer", zap.Int("index", len(s.zInterface)),
			zap.String("material", mp.Name), zap.Float64("z", z))
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", name, err)
	}

	if s.hasGP && len(s.zInterface) > 0 && s.zGP > s.zInterface[len(s.zInterface)-1] {
		return nil, fmt.Errorf("%s: ground plane must lie below all dielectric layers", name)
	}

	s.epsLayer = make([]complex128, len(s.layers))
	s.muLayer = make([]complex128, len(s.layers))
	return s, nil
}

// NewFromFile reads a substrate definition from the named file,
// searching the directories listed in SCUFF_SUBSTRATE_PATH when the file
// is not directly accessible. A .env file in the working directory is
// honored if present.
func NewFromFile(filename string, lib Library, opts ...Option) (*LayeredSubstrate, error) {
	_ = godotenv.Load()

	f, err := os.Open(filename)
	if err != nil && !filepath.IsAbs(filename) {
		for _, dir := range filepath.SplitList(os.Getenv(PathEnvVar)) {
			if dir == "" {
				continue
			}
			if g, gerr := os.Open(filepath.Join(dir, filename)); gerr == nil {
				f, err = g, nil
				break
			}
		}
	}
	if err != nil {
		return nil, fmt.Errorf("could not open file %s: %w", filename, err)
	}
	defer f.Close()

	return Parse(filename, f, lib, opts...)
}

// NumInterfaces returns the number of planar interfaces.
func (s *LayeredSubstrate) NumInterfaces() int { return len(s.zInterface) }

// NumRegions returns the number of material regions (interfaces + 1).
func (s *LayeredSubstrate) NumRegions() int { return len(s.layers) }

// GroundPlane returns the ground-plane z coordinate, if one is present.
func (s *LayeredSubstrate) GroundPlane() (z float64, ok bool) { return s.zGP, s.hasGP }

// GetRegionIndex returns the region containing height z.
func (s *LayeredSubstrate) GetRegionIndex(z float64) int {
	for ni, zi := range s.zInterface {
		if z > zi {
			return ni
		}
	}
	return len(s.zInterface)
}

// updateCachedEpsMu refreshes the per-layer property cache when the
// frequency changes.
func (s *LayeredSubstrate) updateCachedEpsMu(omega complex128) {
	if s.cacheValid && omega == s.omegaCache {
		return
	}
	for n, mp := range s.layers {
		s.epsLayer[n], s.muLayer[n] = mp.GetEpsMu(omega)
	}
	s.omegaCache = omega
	s.cacheValid = true
}

// GetEpsMu returns the relative permittivity and permeability of the
// given region at a complex angular frequency. It implements the region
// resolver consumed by the PFT assembler.
func (s *LayeredSubstrate) GetEpsMu(region int, omega complex128) (eps, mu complex128) {
	if region < 0 || region >= len(s.layers) {
		panic(fmt.Sprintf("substrate: region %d out of range [0,%d)", region, len(s.layers)))
	}
	s.updateCachedEpsMu(omega)
	return s.epsLayer[region], s.muLayer[region]
}
