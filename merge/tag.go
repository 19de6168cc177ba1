/*
 * tag.go, part of gtcout
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

package merge

import (
	"fmt"
	"slices"
)

//Tag identifies a tracked particle. It is the same in every process and every step.
type Tag [2]int64

func (t Tag) String() string {
	return fmt.Sprintf("(%d,%d)", t[0], t[1])
}

//Compare orders tags by their first component, then by the second.
//It returns -1, 0 or 1.
func Compare(a, b Tag) int {
	for i := range a {
		switch {
		case a[i] < b[i]:
			return -1
		case a[i] > b[i]:
			return 1
		}
	}
	return 0
}

//Particle is one record of a tracking step.
type Particle struct {
	Tag    Tag
	Coords []float64
}

//SortParticles sorts particles by tag. Particles with equal tags keep their order.
func SortParticles(p []Particle) {
	slices.SortStableFunc(p, func(a, b Particle) int { return Compare(a.Tag, b.Tag) })
}

//firstDuplicate returns the index of the first particle whose tag equals that of the
//previous one, or -1. p must be sorted.
func firstDuplicate(p []Particle) int {
	for i := 1; i < len(p); i++ {
		if Compare(p[i-1].Tag, p[i].Tag) == 0 {
			return i
		}
	}
	return -1
}
