/*
 * trajectory.go, part of gtcout
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
	"strings"

	"gonum.org/v1/gonum/mat"

	"github.com/rmera/gtcout"
)

//Trajectory holds the merged tracking data of a run. Slot i holds the same
//particle, Tags[i], in every step.
type Trajectory struct {
	Dims    int
	Steps   []int    //step numbers, in file order
	Tags    []Tag    //sorted
	Sources []string //the per-process files
	coords  [][]float64
}

func newTrajectory(dims int, sources []string) *Trajectory {
	return &Trajectory{Dims: dims, Sources: sources}
}

//add appends a step. The particles must be sorted by tag. The first step sets the slots.
func (T *Trajectory) add(step int, p []Particle) error {
	if len(T.Steps) == 0 {
		T.Tags = make([]Tag, len(p))
		T.coords = make([][]float64, len(p))
		for i := range p {
			T.Tags[i] = p[i].Tag
		}
	}
	if len(p) != len(T.Tags) {
		return fmt.Errorf("%d particles, the first step had %d", len(p), len(T.Tags))
	}
	for i := range p {
		if Compare(p[i].Tag, T.Tags[i]) != 0 {
			return fmt.Errorf("particle %s takes slot %d, which belongs to %s", p[i].Tag, i, T.Tags[i])
		}
		if len(p[i].Coords) != T.Dims {
			return fmt.Errorf("particle %s has %d coordinates, expected %d", p[i].Tag, len(p[i].Coords), T.Dims)
		}
	}
	for i := range p {
		T.coords[i] = append(T.coords[i], p[i].Coords...)
	}
	T.Steps = append(T.Steps, step)
	return nil
}

//Len returns the number of particles (slots).
func (T *Trajectory) Len() int { return len(T.Tags) }

//NSteps returns the number of merged steps.
func (T *Trajectory) NSteps() int { return len(T.Steps) }

//Slot returns the coordinates of the particle in slot i, one row per step.
//It returns nil if there are no steps.
func (T *Trajectory) Slot(i int) *mat.Dense {
	if i < 0 || i >= len(T.Tags) {
		panic(fmt.Sprintf("merge.Trajectory.Slot: slot %d out of range [0,%d)", i, len(T.Tags)))
	}
	if len(T.Steps) == 0 || T.Dims == 0 {
		return nil
	}
	return mat.NewDense(len(T.Steps), T.Dims, append([]float64(nil), T.coords[i]...))
}

//Frame returns the coordinates of every particle at the step with index s (not
//the step number), one row per slot. It returns nil if there are no particles.
func (T *Trajectory) Frame(s int) *mat.Dense {
	if s < 0 || s >= len(T.Steps) {
		panic(fmt.Sprintf("merge.Trajectory.Frame: step index %d out of range [0,%d)", s, len(T.Steps)))
	}
	if len(T.Tags) == 0 || T.Dims == 0 {
		return nil
	}
	F := mat.NewDense(len(T.Tags), T.Dims, nil)
	for i := range T.Tags {
		F.SetRow(i, T.coords[i][s*T.Dims:(s+1)*T.Dims])
	}
	return F
}

//SlotOf returns the slot of the particle with the given tag, or -1.
func (T *Trajectory) SlotOf(t Tag) int {
	lo, hi := 0, len(T.Tags)
	for lo < hi {
		m := (lo + hi) / 2
		switch Compare(T.Tags[m], t) {
		case 0:
			return m
		case -1:
			lo = m + 1
		default:
			hi = m
		}
	}
	return -1
}

//Record returns the trajectory as a frozen tracking record with the arrays "steps" (step numbers),
//"tags" (slots x 2) and "trajectory" (slots x steps x dims).
func (T *Trajectory) Record() *gtcout.Record {
	R := gtcout.NewRecord(gtcout.Tracking, strings.Join(T.Sources, ","))
	steps := gtcout.NewArray("steps", len(T.Steps))
	for i, s := range T.Steps {
		steps.Set(i, float64(s))
	}
	tags := gtcout.NewArray("tags", len(T.Tags), 2)
	for i, t := range T.Tags {
		tags.Set(2*i, float64(t[0]))
		tags.Set(2*i+1, float64(t[1]))
	}
	traj := gtcout.NewArray("trajectory", len(T.Tags), len(T.Steps), T.Dims)
	w := len(T.Steps) * T.Dims
	for i, c := range T.coords {
		for j, v := range c {
			traj.Set(i*w+j, v)
		}
	}
	for _, A := range []*gtcout.Array{steps, tags, traj} {
		R.Add(A)
	}
	R.SetField("processes", float64(len(T.Sources)))
	R.SetField("dims", float64(T.Dims))
	R.SetField("particles", float64(len(T.Tags)))
	R.Steps = len(T.Steps)
	R.Completeness = gtcout.CompletenessFromSteps(len(T.Steps), 0, false)
	R.Freeze()
	return R
}
