/*
 * snapshot.go, part of gtcout
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
	"fmt"
	"log/slog"

	"github.com/rmera/gtcout"
)

//Per species profiles in snapshot files. Each has a full row and a perturbed row.
var (
	radialProfiles   = []string{"density", "flow", "energy"}
	velocityProfiles = []string{"pdf_energy", "pdf_pitch"}
)

func snapshot() *Descriptor {
	return &Descriptor{
		Kind: gtcout.Snapshot,
		Phases: []Phase{
			{
				Fields: []Field{
					{"nspecies", Int}, {"nfield", Int}, {"nvgrid", Int},
					{"mpsi", Int}, {"mtgrid", Int}, {"mtoroidal", Int},
					{"tmax", Float},
				},
				Derive: snapshotDerive,
				Layout: snapshotLayout,
			},
		},
	}
}

//The file declares the number of poloidal points including the periodic one.
func snapshotDerive(h gtcout.Header, sp gtcout.Species, log *slog.Logger) error {
	if err := checkSpecies(h, sp, log); err != nil {
		return err
	}
	m, err := h.Int("mtgrid")
	if err != nil {
		return err
	}
	if m < 1 {
		return fmt.Errorf("mtgrid must be at least 1, got %d", m)
	}
	h["mtgrid"] = float64(m - 1)
	return nil
}

func snapshotLayout(h gtcout.Header, sp gtcout.Species) (Layout, error) {
	n, err := ints(h, "nfield", "nvgrid", "mpsi", "mtgrid", "mtoroidal")
	if err != nil {
		return Layout{}, err
	}
	nfield, nvgrid, mpsi, mtgrid, mtoroidal := n[0], n[1], n[2], n[3], n[4]
	if err := arrayCount(2*nfield + 2); err != nil {
		return Layout{}, err
	}
	for _, shape := range [][]int{{mpsi, mtgrid + 1}, {mtoroidal, mtgrid + 1}} {
		if _, err := product(shape...); err != nil {
			return Layout{}, err
		}
	}
	var L Layout
	add := func(name string, shape ...int) {
		L.Arrays = append(L.Arrays, ArraySpec{Name: name, Shape: shape})
		L.Segments = append(L.Segments, Segment{Targets: []string{name}, Count: shape[0] * shape[1], Type: Float})
	}
	for _, s := range sp.Present() {
		for _, p := range radialProfiles {
			add(s+"/"+p, 2, mpsi)
		}
		for _, p := range velocityProfiles {
			add(s+"/"+p, 2, nvgrid)
		}
	}
	planes := make([]string, 0, nfield+2)
	for i := 0; i < nfield; i++ {
		planes = append(planes, FieldName(i))
	}
	planes = append(planes, "x", "z")
	for _, p := range planes {
		add("poloidal/"+p, mpsi, mtgrid+1)
	}
	for i := 0; i < nfield; i++ {
		add("flux/"+FieldName(i), mtoroidal, mtgrid+1)
	}
	return L, nil
}
