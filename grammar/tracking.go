/*
 * tracking.go, part of gtcout
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

//Names of the arrays of a tracking file.
const (
	TrackStep   = "step"
	TrackCount  = "count"
	TrackCoords = "coords"
	TrackTags   = "tags"
)

//tracking is the grammar of one per-process particle tracking file: no header, and
//each step is a step number, a particle count, and for each particle its dims coordinates
//and the two integers of its tag.
func tracking(dims int) *Descriptor {
	record := []Segment{
		{Targets: []string{TrackCoords}, Count: dims, Type: Float},
		{Targets: []string{TrackTags}, Count: 2, Type: Int},
	}
	step := func(h gtcout.Header, _ gtcout.Species) (Layout, error) {
		n, err := ints(h, TrackCount)
		if err != nil {
			return Layout{}, err
		}
		L := Layout{
			Arrays: []ArraySpec{
				{Name: TrackCoords, Shape: []int{dims}, Ragged: true},
				{Name: TrackTags, Shape: []int{2}, Ragged: true},
			},
		}
		if n[0] > 0 {
			L.Segments, L.Repeat = record, n[0]
		}
		return L, nil
	}
	return &Descriptor{
		Kind: gtcout.Tracking,
		Phases: []Phase{
			{
				Fields: []Field{{TrackStep, Int}, {TrackCount, Int}},
				Layout: step,
			},
		},
		Repeat: true,
	}
}
