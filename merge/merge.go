/*
 * merge.go, part of gtcout
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

//Package merge puts together the per-process particle tracking files of a run.
//Each process writes, every tracking step, the particles it holds at the time, in no
//particular order. The merge reads one step from every file in turn, sorts the
//particles of the step by tag and appends each one to its slot, so a slot follows
//one particle through the whole run.
package merge

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/rmera/gtcout"
	"github.com/rmera/gtcout/grammar"
	"github.com/rmera/gtcout/tokens"
)

//Options for a merge.
type Options struct {
	Expected int //number of per-process files of the run
	Dims     int //coordinates per particle, grammar.DefaultDims if 0
}

func (o Options) dims() int {
	if o.Dims <= 0 {
		return grammar.DefaultDims
	}
	return o.Dims
}

//Merge merges the tracking streams of all the processes of a run. The number of sources
//must be opts.Expected, otherwise a *SetupError is returned before anything is read.
//The merge ends when all the sources end in the same round. If only some of them end,
//or if they disagree on the step number of a round, a *DesyncError is returned.
func Merge(ctx context.Context, sources []gtcout.TokenSource, opts Options) (*Trajectory, error) {
	if len(sources) != opts.Expected || opts.Expected <= 0 {
		return nil, &SetupError{Expected: opts.Expected, Got: len(sources)}
	}
	gopts := grammar.Options{Dims: opts.dims(), Discard: true}
	d, err := grammar.Lookup(gtcout.Tracking, gopts)
	if err != nil {
		return nil, err
	}
	names := make([]string, len(sources))
	streams := make([]*grammar.Stream, len(sources))
	for i, src := range sources {
		names[i] = src.Name()
		if streams[i], err = grammar.NewStream(src, d, gopts); err != nil {
			return nil, err
		}
	}
	T := newTrajectory(opts.dims(), names)
	blocks := make([]grammar.Block, len(streams))
	ended := make([]bool, len(streams))
	for round := 0; ; round++ {
		nended := 0
		for i, S := range streams {
			act, err := S.Advance(ctx)
			if err != nil {
				return nil, err
			}
			ended[i] = act == grammar.Done
			if ended[i] {
				nended++
				continue
			}
			blocks[i] = S.Engine().Block()
		}
		if nended == len(streams) {
			break
		}
		if nended > 0 {
			E := &DesyncError{Round: round}
			for i, e := range ended {
				if e {
					E.Ended = append(E.Ended, names[i])
				} else {
					E.Going = append(E.Going, names[i])
				}
			}
			return nil, E
		}
		step, err := sameStep(round, names, blocks)
		if err != nil {
			return nil, err
		}
		p := particles(blocks, opts.dims())
		SortParticles(p)
		if i := firstDuplicate(p); i >= 0 {
			return nil, &Error{Round: round, Step: step, message: fmt.Sprintf("tag %s appears more than once", p[i].Tag)}
		}
		if err := T.add(step, p); err != nil {
			return nil, &Error{Round: round, Step: step, message: err.Error()}
		}
	}
	for _, S := range streams {
		R, err := S.Finish()
		if err != nil {
			return nil, err
		}
		if R.Completeness.Discarded > 0 {
			slog.Warn("unfinished tracking step dropped", "file", R.Source, "tokens", R.Completeness.Discarded)
		}
	}
	return T, nil
}

//sameStep checks that all the blocks of a round carry the same step number, and returns it.
func sameStep(round int, names []string, blocks []grammar.Block) (int, error) {
	steps := make(map[string]int, len(blocks))
	first := int(blocks[0].Fields[grammar.TrackStep])
	ok := true
	for i, b := range blocks {
		s := int(b.Fields[grammar.TrackStep])
		steps[names[i]] = s
		if s != first {
			ok = false
		}
	}
	if !ok {
		return 0, &DesyncError{Round: round, Steps: steps, message: fmt.Sprintf("files report different step numbers: %v", steps)}
	}
	return first, nil
}

//particles collects the particles of all the blocks of a round, file after file.
func particles(blocks []grammar.Block, dims int) []Particle {
	n := 0
	for _, b := range blocks {
		n += len(b.Values[grammar.TrackTags]) / 2
	}
	ret := make([]Particle, 0, n)
	for _, b := range blocks {
		tags, coords := b.Values[grammar.TrackTags], b.Values[grammar.TrackCoords]
		for j := 0; j < len(tags)/2; j++ {
			ret = append(ret, Particle{
				Tag:    Tag{int64(tags[2*j]), int64(tags[2*j+1])},
				Coords: coords[j*dims : (j+1)*dims],
			})
		}
	}
	return ret
}

//MergeFiles opens the tracking files, merges them and closes them.
//Compressed files are recognized by their extension.
func MergeFiles(ctx context.Context, paths []string, opts Options) (*Trajectory, error) {
	if len(paths) != opts.Expected || opts.Expected <= 0 {
		return nil, &SetupError{Expected: opts.Expected, Got: len(paths)}
	}
	sources := make([]gtcout.TokenSource, 0, len(paths))
	defer func() {
		for _, s := range sources {
			s.(*tokens.File).Close()
		}
	}()
	for _, p := range paths {
		f, err := tokens.Open(p)
		if err != nil {
			return nil, err
		}
		sources = append(sources, f)
	}
	return Merge(ctx, sources, opts)
}
