/*
 * names.go, part of gtcout
 *
 * Copyright 2024 The gtcout Authors
 *
 * This program is free software; you can redistribute it and/or modify
 * it under the terms of the GNU Lesser General Public License  as published by
 * the Free Software Foundation; either version 2.1 of the License, or
 * (at your option) any later version.
 *
 * This program is distributed in the hope that it will be useful,
 * but WITHOUT ANY WARRANTY; without even the implied warranty of
 * MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
 * GNU General Public License for more details.
 *
 * You should have received a copy of the GNU Lesser General Public License
 * along with this program; if not, write to the Free Software
 * Foundation, Inc., 51 Franklin Street, Fifth Floor, Boston,
 * MA 02110-1301, USA.
 */

package grammar

import "fmt"

var fieldNames = []string{"phi", "apara", "fluidne"}

//FieldName returns the name of the i-th (0-based) electromagnetic field.
func FieldName(i int) string {
	if i >= 0 && i < len(fieldNames) {
		return fieldNames[i]
	}
	return fmt.Sprintf("field%d", i+1)
}

//Names of the radial profiles in equilibrium files, in file order.
var profileNames = []string{
	"psi", "sqrtpsi", "minor", "major",
	"Te", "dlnTe", "ne", "dlnne",
	"Ti", "dlnTi", "ni", "dlnni",
	"Tf", "dlnTf", "nf", "dlnnf",
	"zeff", "rotation", "er", "q", "dlnq",
	"gcurrent", "pressure", "minor2", "torflux",
	"rgpsi", "psitor", "psirg", "splcos", "splsin",
}

//ProfileName returns the name of the i-th (0-based) radial profile of an equilibrium file.
func ProfileName(i int) string {
	if i >= 0 && i < len(profileNames) {
		return profileNames[i]
	}
	return fmt.Sprintf("profile%d", i+1)
}

//Names of the poloidal plane quantities in equilibrium files.
var planeNames = []string{"x", "z", "b", "J", "i", "zeta2phi", "delb"}

//PlaneName returns the name of the i-th (0-based) poloidal plane quantity of an equilibrium file.
func PlaneName(i int) string {
	if i >= 0 && i < len(planeNames) {
		return "2d/" + planeNames[i]
	}
	return fmt.Sprintf("2d/plane%d", i+1)
}
