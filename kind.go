/*
 * kind.go, part of gtcout.
 *
 *
 * Copyright 2024 The gtcout Authors
 *
 * This program is free software; you can redistribute it and/or modify
 * it under the terms of the GNU Lesser General Public License as
 * published by the Free Software Foundation; either version 2.1 of the
 * License, or (at your option) any later version.
 *
 * This program is distributed in the hope that it will be useful,
 * but WITHOUT ANY WARRANTY; without even the implied warranty of
 * MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
 * GNU General Public License for more details.
 *
 * You should have received a copy of the GNU Lesser General
 * Public License along with this program.  If not, see
 * <http://www.gnu.org/licenses/>.
 *
 *
 */

package gtcout

import (
	"errors"
	"fmt"
	"strings"
)

// Kind labels one of the output file kinds. The caller always supplies it,
// the library never guesses it from the content.
type Kind string

const (
	Equilibrium Kind = "equilibrium"
	History     Kind = "history"
	RadialTime  Kind = "radialtime"
	Snapshot    Kind = "snapshot"
	Tracking    Kind = "tracking"
)

var (
	// ErrUnknownKind is returned when a kind label has no grammar.
	ErrUnknownKind = errors.New("unknown file kind")
	// ErrUnknownArray is returned when a caller asks a record for an array it
	// does not have. It is a caller error, not a decoding failure.
	ErrUnknownArray = errors.New("unknown array")
)

// Kinds returns all known kinds, in a stable order.
func Kinds() []Kind {
	return []Kind{Equilibrium, History, RadialTime, Snapshot, Tracking}
}

// ParseKind turns a label into a Kind. It is case-insensitive.
func ParseKind(s string) (Kind, error) {
	k := Kind(strings.ToLower(strings.TrimSpace(s)))
	for _, v := range Kinds() {
		if k == v {
			return k, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownKind, s)
}

// Repeating reports whether files of this kind carry a repeating step block.
func (k Kind) Repeating() bool {
	switch k {
	case History, RadialTime, Tracking:
		return true
	}
	return false
}

// The canonical particle species, as indexes into Species.
const (
	Ion = iota
	Electron
	FastIon
	FastElectron
	NSpecies
)

var speciesNames = [NSpecies]string{"ion", "electron", "fastion", "fastelectron"}

// Species says which of the four canonical particle species were loaded in
// a run. It comes from the run configuration, never from the files.
type Species [NSpecies]bool

// AllSpecies has every species present.
var AllSpecies = Species{true, true, true, true}

// SpeciesName returns the canonical name of species i.
func SpeciesName(i int) string {
	if i < 0 || i >= NSpecies {
		return fmt.Sprintf("species%d", i)
	}
	return speciesNames[i]
}

// Count returns the number of present species.
func (s Species) Count() int {
	n := 0
	for _, v := range s {
		if v {
			n++
		}
	}
	return n
}

// Present returns the names of the present species in canonical order.
func (s Species) Present() []string {
	ret := make([]string, 0, NSpecies)
	for i, v := range s {
		if v {
			ret = append(ret, speciesNames[i])
		}
	}
	return ret
}

func (s Species) String() string {
	p := s.Present()
	if len(p) == 0 {
		return "none"
	}
	return strings.Join(p, ",")
}

// ParseSpecies reads a comma-separated list of species names, such as
// "ion,electron". Names are case-insensitive. An empty string means no species.
func ParseSpecies(s string) (Species, error) {
	var ret Species
	for _, f := range strings.Split(s, ",") {
		f = strings.ToLower(strings.TrimSpace(f))
		if f == "" {
			continue
		}
		found := false
		for i, n := range speciesNames {
			if f == n {
				ret[i] = true
				found = true
			}
		}
		if !found {
			return ret, fmt.Errorf("unknown species %q, known ones are %s", f, strings.Join(speciesNames[:], ","))
		}
	}
	return ret, nil
}

// SpeciesFromFlags builds a Species from load flags, as written in run
// parameter files: any nonzero flag means the species is present.
func SpeciesFromFlags(ion, electron, fastion, fastelectron int) Species {
	return Species{ion != 0, electron != 0, fastion != 0, fastelectron != 0}
}

// Header maps the scalar header fields of a file to their values.
type Header map[string]float64

// Int returns the named field as an int.
func (h Header) Int(name string) (int, error) {
	v, ok := h[name]
	if !ok {
		return 0, fmt.Errorf("header has no field %q", name)
	}
	return int(v), nil
}

// Float returns the named field.
func (h Header) Float(name string) (float64, error) {
	v, ok := h[name]
	if !ok {
		return 0, fmt.Errorf("header has no field %q", name)
	}
	return v, nil
}

// Copy returns an independent copy of the header.
func (h Header) Copy() Header {
	ret := make(Header, len(h))
	for k, v := range h {
		ret[k] = v
	}
	return ret
}
