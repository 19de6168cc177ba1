/*
 * config.go, part of gtcout
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

//Package config reads the description of a simulation run: which species were loaded,
//how many processes wrote tracking files, and which output files to look at.
//
//	species: {ion: true, electron: true}
//	tracking: {processes: 4, dims: 3}
//	files:
//	  - {kind: history, path: history.out}
//	  - {kind: tracking, paths: [TRACKP.00000, TRACKP.00001, TRACKP.00002, TRACKP.00003]}
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/rmera/gtcout"
)

var validate *validator.Validate

func init() {
	validate = validator.New()
	_ = validate.RegisterValidation("kind", validateKind)
}

func validateKind(fl validator.FieldLevel) bool {
	_, err := gtcout.ParseKind(fl.Field().String())
	return err == nil
}

//Species holds the load flags of the run.
type Species struct {
	Ion          bool `yaml:"ion"`
	Electron     bool `yaml:"electron"`
	FastIon      bool `yaml:"fastion"`
	FastElectron bool `yaml:"fastelectron"`
}

//Set returns the flags as a gtcout.Species.
func (s Species) Set() gtcout.Species {
	return gtcout.Species{s.Ion, s.Electron, s.FastIon, s.FastElectron}
}

//Tracking describes the particle tracking output. Processes is the number of
//per-process files every tracking entry must list. It is required if there are tracking entries.
type Tracking struct {
	Processes int `yaml:"processes" validate:"gte=0"`
	Dims      int `yaml:"dims" validate:"gte=0,lte=16"`
}

//File is one output file, or, for tracking, the set of per-process files.
type File struct {
	Kind  string   `yaml:"kind" validate:"required,kind"`
	Path  string   `yaml:"path,omitempty" validate:"required_without=Paths,excluded_with=Paths"`
	Paths []string `yaml:"paths,omitempty" validate:"omitempty,min=1,dive,required"`
}

//Run is the whole configuration.
type Run struct {
	Species  *Species `yaml:"species,omitempty"` //only ions if absent
	Tracking Tracking `yaml:"tracking"`
	Workers  int      `yaml:"workers" validate:"gte=0,lte=256"`
	Files    []File   `yaml:"files" validate:"dive"`
	dir      string
}

//Default returns a configuration with the default tracking layout and no files.
func Default() *Run {
	return &Run{Tracking: Tracking{Dims: 3}}
}

//SpeciesSet returns the loaded species.
func (R *Run) SpeciesSet() gtcout.Species {
	if R.Species == nil {
		return gtcout.Species{true, false, false, false}
	}
	return R.Species.Set()
}

//Parse reads a configuration from YAML. Unknown keys are an error.
func Parse(data []byte) (*Run, error) {
	R := Default()
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(R); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("config: %w", err)
	}
	if err := R.Validate(); err != nil {
		return nil, err
	}
	return R, nil
}

//Load reads the configuration file fname. Relative file paths in it are taken
//relative to the directory of fname.
func Load(fname string) (*Run, error) {
	data, err := os.ReadFile(fname)
	if err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	R, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", fname, err)
	}
	R.dir = filepath.Dir(fname)
	return R, nil
}

//Validate checks the configuration.
func (R *Run) Validate() error {
	if err := validate.Struct(R); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	for i, f := range R.Files {
		k, _ := gtcout.ParseKind(f.Kind)
		if k == gtcout.Tracking && len(f.Paths) == 0 {
			return fmt.Errorf("config: file %d: tracking entries need a list of paths", i)
		}
		if k == gtcout.Tracking && R.Tracking.Processes == 0 {
			return fmt.Errorf("config: file %d: tracking entries need tracking.processes, the number of processes of the run", i)
		}
		if k != gtcout.Tracking && len(f.Paths) > 0 {
			return fmt.Errorf("config: file %d: only tracking entries take several paths", i)
		}
	}
	return nil
}

//Resolve returns p, relative to the directory of the configuration file if p is relative.
func (R *Run) Resolve(p string) string {
	if R.dir == "" || filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(R.dir, p)
}

//ParsedKind returns the kind of the file.
func (f File) ParsedKind() gtcout.Kind {
	k, _ := gtcout.ParseKind(f.Kind)
	return k
}
