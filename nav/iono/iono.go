// The iono package defines the record holding the broadcast ionospheric
// model (the Klobuchar model) parameters.
package iono

import "fmt"

// Iono holds the coefficients of the ionospheric model.
type Iono struct {
	Alpha0, Alpha1, Alpha2, Alpha3 float64
	Beta0, Beta1, Beta2, Beta3     float64
	Valid                          bool
}

// String returns a readable version of the ionospheric model.
func (i *Iono) String() string {
	return fmt.Sprintf("iono alpha %g %g %g %g beta %g %g %g %g valid %v\n",
		i.Alpha0, i.Alpha1, i.Alpha2, i.Alpha3,
		i.Beta0, i.Beta1, i.Beta2, i.Beta3, i.Valid)
}
