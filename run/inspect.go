/*
 * inspect.go, part of gtcout
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

//Package run decodes all the output files of a simulation run. Each file is decoded
//on its own: a file that fails does not stop the others, and every file that decodes
//gets its completeness reported.
package run

import (
	"context"
	"fmt"
	"log/slog"
	"runtime"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/rmera/gtcout"
	"github.com/rmera/gtcout/config"
	"github.com/rmera/gtcout/grammar"
	"github.com/rmera/gtcout/merge"
	"github.com/rmera/gtcout/tokens"
)

//File is a file to decode. Tracking entries list all the per-process files in Paths,
//and are merged into one record.
type File struct {
	Kind  gtcout.Kind
	Path  string
	Paths []string
}

//Name returns the path of the file, or the joined paths for tracking entries.
func (f File) Name() string {
	if len(f.Paths) > 0 {
		return strings.Join(f.Paths, ",")
	}
	return f.Path
}

//Options for Inspect.
type Options struct {
	Species   gtcout.Species
	Dims      int
	Processes int //per-process tracking files each tracking entry must have
	Workers   int //files decoded at the same time, runtime.NumCPU() if 0
}

//Report is the outcome of decoding one File.
type Report struct {
	File         File
	Record       *gtcout.Record
	Completeness gtcout.Completeness
	Tokens       int //tokens read, for single files
	Elapsed      time.Duration
	Err          error
}

func (r Report) String() string {
	if r.Err != nil {
		return fmt.Sprintf("%s %s: error: %v", r.File.Kind, r.File.Name(), r.Err)
	}
	return fmt.Sprintf("%s %s: %s", r.File.Kind, r.File.Name(), r.Completeness)
}

//FromConfig returns the files and the options described by a run configuration.
func FromConfig(cfg *config.Run) ([]File, Options) {
	files := make([]File, 0, len(cfg.Files))
	for _, f := range cfg.Files {
		F := File{Kind: f.ParsedKind()}
		if f.Path != "" {
			F.Path = cfg.Resolve(f.Path)
		}
		for _, p := range f.Paths {
			F.Paths = append(F.Paths, cfg.Resolve(p))
		}
		files = append(files, F)
	}
	opts := Options{
		Species:   cfg.SpeciesSet(),
		Dims:      cfg.Tracking.Dims,
		Processes: cfg.Tracking.Processes,
		Workers:   cfg.Workers,
	}
	return files, opts
}

//Inspect decodes the files, several at a time, and returns one report per file, in
//the same order. Errors are returned in the reports, never instead of them.
func Inspect(ctx context.Context, files []File, opts Options) []Report {
	reports := make([]Report, len(files))
	workers := opts.Workers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	var g errgroup.Group
	g.SetLimit(workers)
	for i, f := range files {
		i, f := i, f
		g.Go(func() error {
			reports[i] = inspectOne(ctx, f, opts)
			return nil
		})
	}
	g.Wait()
	return reports
}

func inspectOne(ctx context.Context, f File, opts Options) Report {
	start := time.Now()
	r := Report{File: f}
	if f.Kind == gtcout.Tracking && len(f.Paths) > 0 {
		T, err := merge.MergeFiles(ctx, f.Paths, merge.Options{Expected: opts.Processes, Dims: opts.Dims})
		if err == nil {
			r.Record = T.Record()
		}
		r.Err = err
	} else {
		r.Record, r.Tokens, r.Err = decode(ctx, f, opts)
	}
	if r.Record != nil {
		r.Completeness = r.Record.Completeness
	}
	r.Elapsed = time.Since(start)
	if r.Err != nil {
		slog.Error("decode failed", "kind", string(f.Kind), "file", f.Name(), "error", r.Err)
	} else {
		slog.Debug("decoded", "kind", string(f.Kind), "file", f.Name(), "status", string(r.Completeness.Status), "steps", r.Completeness.Observed, "elapsed", r.Elapsed)
	}
	return r
}

func decode(ctx context.Context, f File, opts Options) (*gtcout.Record, int, error) {
	gopts := grammar.Options{Species: opts.Species, Dims: opts.Dims}
	d, err := grammar.Lookup(f.Kind, gopts)
	if err != nil {
		return nil, 0, err
	}
	src, err := tokens.Open(f.Path)
	if err != nil {
		return nil, 0, err
	}
	defer src.Close()
	R, err := grammar.Decode(ctx, src, d, gopts)
	return R, src.Count(), err
}
