/*
 * history.go, part of gtcout
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
	"log/slog"

	"github.com/rmera/gtcout"
)

func history() *Descriptor {
	return &Descriptor{
		Kind: gtcout.History,
		Phases: []Phase{
			{
				Fields: []Field{
					{"ndstep", Int}, {"nspecies", Int}, {"mpdiag", Int},
					{"nfield", Int}, {"modes", Int}, {"mfdiag", Int},
					{"tstep", Float},
				},
				Derive: checkSpecies,
			},
			{Layout: historyStep},
		},
		Repeat:   true,
		Expected: "ndstep",
	}
}

//checkSpecies warns when the species count written in the file does not match the run
//configuration. The configuration wins: it says which species blocks are really there.
func checkSpecies(h gtcout.Header, sp gtcout.Species, log *slog.Logger) error {
	n, err := h.Int("nspecies")
	if err != nil {
		return err
	}
	if n != sp.Count() {
		log.Warn("species count in the header differs from the configured species", "header", n, "configured", sp.Count(), "species", sp.String())
	}
	return nil
}

//historyStep is one time step: the diagnostics of each present species, then, for
//each field, its diagnostics and its modes as (real, imaginary) pairs.
func historyStep(h gtcout.Header, sp gtcout.Species) (Layout, error) {
	n, err := ints(h, "mpdiag", "nfield", "modes", "mfdiag")
	if err != nil {
		return Layout{}, err
	}
	mpdiag, nfield, modes, mfdiag := n[0], n[1], n[2], n[3]
	if err := arrayCount(3, nfield); err != nil {
		return Layout{}, err
	}
	var L Layout
	for _, s := range sp.Present() {
		L.Arrays = append(L.Arrays, ArraySpec{Name: s, Shape: []int{mpdiag}})
		L.Segments = append(L.Segments, Segment{Targets: []string{s}, Count: mpdiag, Type: Float})
	}
	for i := 0; i < nfield; i++ {
		f := FieldName(i)
		diag, re, im := f+"/diag", f+"/real", f+"/imag"
		L.Arrays = append(L.Arrays,
			ArraySpec{Name: diag, Shape: []int{mfdiag}},
			ArraySpec{Name: re, Shape: []int{modes}},
			ArraySpec{Name: im, Shape: []int{modes}})
		L.Segments = append(L.Segments,
			Segment{Targets: []string{diag}, Count: mfdiag, Type: Float},
			Segment{Targets: []string{re, im}, Count: modes, Type: Float})
	}
	return L, nil
}
