/*
 * radialtime.go, part of gtcout
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

import (
	"strconv"

	"github.com/rmera/gtcout"
)

func radialTime() *Descriptor {
	return &Descriptor{
		Kind: gtcout.RadialTime,
		Phases: []Phase{
			{
				Fields: []Field{
					{"ndstep", Int}, {"mpsi", Int}, {"nspecies", Int},
					{"mpdata1d", Int}, {"nfield", Int}, {"mfdata1d", Int},
				},
				Derive: checkSpecies,
			},
			{Layout: radialTimeStep},
		},
		Repeat:   true,
		Expected: "ndstep",
	}
}

//radialTimeStep is one time step: a radial profile per present species and plot type,
//then one per field and plot type. Both loops are over the outer quantity first.
func radialTimeStep(h gtcout.Header, sp gtcout.Species) (Layout, error) {
	n, err := ints(h, "mpsi", "mpdata1d", "nfield", "mfdata1d")
	if err != nil {
		return Layout{}, err
	}
	mpsi, mpdata, nfield, mfdata := n[0], n[1], n[2], n[3]
	if err := arrayCount(gtcout.NSpecies+nfield, max(mpdata, mfdata)); err != nil {
		return Layout{}, err
	}
	var L Layout
	add := func(prefix string, k int) {
		name := prefix + "/" + strconv.Itoa(k)
		L.Arrays = append(L.Arrays, ArraySpec{Name: name, Shape: []int{mpsi}})
		L.Segments = append(L.Segments, Segment{Targets: []string{name}, Count: mpsi, Type: Float})
	}
	for _, s := range sp.Present() {
		for k := 0; k < mpdata; k++ {
			add(s, k)
		}
	}
	for i := 0; i < nfield; i++ {
		for k := 0; k < mfdata; k++ {
			add(FieldName(i), k)
		}
	}
	return L, nil
}
