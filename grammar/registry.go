/*
 * registry.go, part of gtcout
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

	"github.com/rmera/gtcout"
)

//The grammars that do not depend on options, built once.
var registry = map[gtcout.Kind]*Descriptor{
	gtcout.Equilibrium: equilibrium(),
	gtcout.History:     history(),
	gtcout.RadialTime:  radialTime(),
	gtcout.Snapshot:    snapshot(),
	gtcout.Tracking:    tracking(DefaultDims),
}

func init() {
	for k, d := range registry {
		if err := d.Validate(); err != nil {
			panic(fmt.Sprintf("grammar: invalid built-in grammar %s: %v", k, err))
		}
	}
}

//Lookup returns the grammar for files of the given kind. Only the number of
//tracking dimensions in opts is used.
func Lookup(kind gtcout.Kind, opts Options) (*Descriptor, error) {
	if kind == gtcout.Tracking && opts.dims() != DefaultDims {
		return tracking(opts.dims()), nil
	}
	d, ok := registry[kind]
	if !ok {
		return nil, fmt.Errorf("grammar.Lookup: %w: %q", gtcout.ErrUnknownKind, kind)
	}
	return d, nil
}

//Kinds returns the built-in grammars, in the order of gtcout.Kinds.
func Kinds() []*Descriptor {
	ret := make([]*Descriptor, 0, len(registry))
	for _, k := range gtcout.Kinds() {
		ret = append(ret, registry[k])
	}
	return ret
}
