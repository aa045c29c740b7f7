// The ephemeris package defines the ephemeris record that the decoder
// hands to the orbit propagator.  It's assembled from subframes 1, 2 and 3.
package ephemeris

import "fmt"

// Ephemeris holds the orbit and clock parameters of one satellite.  Angles
// are in radians, times in seconds.
type Ephemeris struct {
	// PRN is the satellite number.
	PRN int

	// TOW is the time of week of the most recent subframe, seconds.
	TOW float64

	// Subframe 1.
	WeekNumber  int
	CodeOnL2    int
	L2PDataFlag bool
	URAIndex    int
	SVHealth    int
	TGD         float64
	IODC        int
	TOC         float64
	AF0         float64
	AF1         float64
	AF2         float64

	// Subframe 2.
	IODESubframe2 int
	CRS           float64
	DeltaN        float64
	M0            float64
	CUC           float64
	Eccentricity  float64
	CUS           float64
	SqrtA         float64
	TOE           float64
	FitInterval   bool
	AODO          int

	// Subframe 3.
	CIC           float64
	Omega0        float64
	CIS           float64
	I0            float64
	CRC           float64
	Omega         float64
	OmegaDot      float64
	IODESubframe3 int
	IDOT          float64

	// Flags from the HOW word.
	Integrity bool
	Alert     bool
	AntiSpoof bool

	// Valid is true if the record was consistent when it was taken and
	// had not already been delivered.
	Valid bool
}

// String returns a readable version of the ephemeris.
func (e *Ephemeris) String() string {
	display := fmt.Sprintf("ephemeris PRN %d week %d TOW %.0f valid %v\n",
		e.PRN, e.WeekNumber, e.TOW, e.Valid)
	display += fmt.Sprintf("IODC %d IODE %d/%d, health %d, URA index %d, fit interval %v, AODO %d\n",
		e.IODC, e.IODESubframe2, e.IODESubframe3, e.SVHealth, e.URAIndex, e.FitInterval, e.AODO)
	display += fmt.Sprintf("toc %.0f af0 %g af1 %g af2 %g TGD %g\n",
		e.TOC, e.AF0, e.AF1, e.AF2, e.TGD)
	display += fmt.Sprintf("toe %.0f sqrt A %.6f e %.10f M0 %.10f delta n %g\n",
		e.TOE, e.SqrtA, e.Eccentricity, e.M0, e.DeltaN)
	display += fmt.Sprintf("Omega0 %.10f i0 %.10f omega %.10f OmegaDot %g IDOT %g\n",
		e.Omega0, e.I0, e.Omega, e.OmegaDot, e.IDOT)
	display += fmt.Sprintf("Cuc %g Cus %g Crc %g Crs %g Cic %g Cis %g\n",
		e.CUC, e.CUS, e.CRC, e.CRS, e.CIC, e.CIS)
	return display
}
