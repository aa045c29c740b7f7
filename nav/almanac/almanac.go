// The almanac package defines the almanac record, the coarse orbit of a
// satellite as relayed by any satellite in the constellation.
package almanac

import "fmt"

// Almanac holds the almanac of one satellite.
type Almanac struct {
	// PRN is the satellite that the almanac describes, not the satellite
	// that sent it.
	PRN int

	SVHealth     int
	Eccentricity float64

	// TOA is the reference time, seconds.
	TOA float64

	// WNA is the reference week, modulo 256.
	WNA int

	DeltaI   float64
	OmegaDot float64
	SqrtA    float64
	Omega0   float64
	Omega    float64
	M0       float64
	AF0      float64
	AF1      float64

	Valid bool
}

// String returns a readable version of the almanac.
func (a *Almanac) String() string {
	display := fmt.Sprintf("almanac PRN %d health %d toa %.0f WNa %d valid %v\n",
		a.PRN, a.SVHealth, a.TOA, a.WNA, a.Valid)
	display += fmt.Sprintf("e %g delta i %g OmegaDot %g sqrt A %.4f\n",
		a.Eccentricity, a.DeltaI, a.OmegaDot, a.SqrtA)
	display += fmt.Sprintf("Omega0 %g omega %g M0 %g af0 %g af1 %g\n",
		a.Omega0, a.Omega, a.M0, a.AF0, a.AF1)
	return display
}
