/*
 * equilibrium.go, part of gtcout
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

import "github.com/rmera/gtcout"

//Equilibrium files hold nplot1d radial profiles of lsp points each, then, optionally,
//nplot2d poloidal plane quantities on an lst x lsp2d grid.
func equilibrium() *Descriptor {
	return &Descriptor{
		Kind: gtcout.Equilibrium,
		Phases: []Phase{
			{
				Fields: []Field{{"nplot1d", Int}, {"lsp", Int}},
				Layout: equilibriumProfiles,
			},
			{
				Fields:   []Field{{"nplot2d", Int}, {"lst", Int}, {"lsp2d", Int}},
				Layout:   equilibriumPlanes,
				Optional: true,
			},
		},
	}
}

func equilibriumProfiles(h gtcout.Header, _ gtcout.Species) (Layout, error) {
	n, err := ints(h, "nplot1d", "lsp")
	if err != nil {
		return Layout{}, err
	}
	if err := arrayCount(n[0]); err != nil {
		return Layout{}, err
	}
	var L Layout
	for i := 0; i < n[0]; i++ {
		name := ProfileName(i)
		L.Arrays = append(L.Arrays, ArraySpec{Name: name, Shape: []int{n[1]}})
		L.Segments = append(L.Segments, Segment{Targets: []string{name}, Count: n[1], Type: Float})
	}
	return L, nil
}

func equilibriumPlanes(h gtcout.Header, _ gtcout.Species) (Layout, error) {
	n, err := ints(h, "nplot2d", "lst", "lsp2d")
	if err != nil {
		return Layout{}, err
	}
	if err := arrayCount(n[0]); err != nil {
		return Layout{}, err
	}
	size, err := product(n[1], n[2])
	if err != nil {
		return Layout{}, err
	}
	var L Layout
	for i := 0; i < n[0]; i++ {
		name := PlaneName(i)
		L.Arrays = append(L.Arrays, ArraySpec{Name: name, Shape: []int{n[1], n[2]}})
		L.Segments = append(L.Segments, Segment{Targets: []string{name}, Count: size, Type: Float})
	}
	return L, nil
}
