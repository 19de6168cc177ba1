/*
 * descriptor.go, part of gtcout
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
	"strconv"
	"strings"

	"github.com/rmera/gtcout"
)

//Type is the numeric type a token must parse as.
type Type int

const (
	Int Type = iota
	Float
)

func (t Type) String() string {
	if t == Int {
		return "int"
	}
	return "float"
}

//parse turns a token into a number of the given type.
//Floats written by Fortran programs are accepted: a D exponent
//(1.0D+03) and an exponent without letter (1.0-103).
func parse(tok string, t Type) (float64, error) {
	if t == Int {
		i, err := strconv.ParseInt(tok, 10, 64)
		return float64(i), err
	}
	f, err := strconv.ParseFloat(tok, 64)
	if err == nil {
		return f, nil
	}
	fixed := strings.Map(func(r rune) rune {
		if r == 'd' || r == 'D' {
			return 'E'
		}
		return r
	}, tok)
	if !strings.ContainsAny(fixed, "eE") {
		if i := strings.LastIndexAny(fixed, "+-"); i > 0 && fixed[i-1] >= '0' && fixed[i-1] <= '9' {
			fixed = fixed[:i] + "E" + fixed[i:]
		}
	}
	if fixed == tok {
		return 0, err
	}
	f, err2 := strconv.ParseFloat(fixed, 64)
	if err2 != nil {
		return 0, err
	}
	return f, nil
}

//Field is a scalar read from the file into the header (or, in a repeating
//phase, into a per-step array named after the field).
type Field struct {
	Name string
	Type Type
}

//Segment is a run of tokens going to one or more arrays. With several targets the values
//are interleaved: token i goes to Targets[i%len(Targets)]. Count is the number of
//values each target receives, so a segment spans Count*len(Targets) tokens.
type Segment struct {
	Targets []string
	Count   int
	Type    Type
}

//Len returns the number of tokens in the segment.
func (s Segment) Len() int {
	return s.Count * len(s.Targets)
}

//ArraySpec declares an array. In a fixed phase Shape is the shape of the whole array.
//In a repeating phase Shape is the shape of the part added by each step, and the
//array gets an extra leading step dimension. A Ragged array (repeating phases only)
//gets a variable number of rows of shape Shape each step.
type ArraySpec struct {
	Name   string
	Shape  []int
	Ragged bool
}

//Limits on what a header may declare. Headers of corrupt or shifted files tend to
//declare absurd sizes, which must end as a decode error.
const (
	MaxTokens = 1 << 40 //tokens in the body of one phase or step
	MaxArrays = 1 << 16 //arrays declared by one phase
)

//product multiplies dimensions, failing if the result exceeds MaxTokens.
func product(dims ...int) (int, error) {
	p := 1
	for _, v := range dims {
		if v < 0 {
			return 0, fmt.Errorf("negative dimension in %v", dims)
		}
		if v != 0 && p > MaxTokens/v {
			return 0, fmt.Errorf("dimensions %v hold more than %d values", dims, MaxTokens)
		}
		p *= v
	}
	return p, nil
}

//arrayCount fails if a phase would declare more than MaxArrays arrays.
func arrayCount(counts ...int) error {
	n, err := product(counts...)
	if err != nil || n > MaxArrays {
		return fmt.Errorf("header declares %v arrays, at most %d are allowed", counts, MaxArrays)
	}
	return nil
}

func (a ArraySpec) size() (int, error) {
	n, err := product(a.Shape...)
	if err != nil {
		return 0, fmt.Errorf("array %s: %w", a.Name, err)
	}
	return n, nil
}

//Layout is the body of a phase: the arrays it declares and the order in which
//its tokens fill them. The segments are read Repeat times in a row (once if Repeat is
//less than 2), as for the records of a tracking step.
type Layout struct {
	Arrays   []ArraySpec
	Segments []Segment
	Repeat   int
}

//perPass returns the number of tokens in one reading of the segments.
func (L Layout) perPass() int {
	n := 0
	for _, s := range L.Segments {
		n += s.Len()
	}
	return n
}

//passes returns how many times the segments are read.
func (L Layout) passes() int {
	if L.Repeat < 2 || L.perPass() == 0 {
		return 1
	}
	return L.Repeat
}

//Tokens returns the number of tokens in the layout.
func (L Layout) Tokens() int {
	return L.perPass() * L.passes()
}

//check verifies that every segment writes to a declared array, and that every array gets exactly
//as many values as its shape asks for (or a whole number of rows, for ragged arrays).
func (L Layout) check(repeating bool) error {
	got := make(map[string]int, len(L.Arrays))
	specs := make(map[string]ArraySpec, len(L.Arrays))
	for _, a := range L.Arrays {
		if _, ok := specs[a.Name]; ok {
			return fmt.Errorf("array %s declared twice", a.Name)
		}
		for _, v := range a.Shape {
			if v < 0 {
				return fmt.Errorf("array %s has a negative dimension %v", a.Name, a.Shape)
			}
		}
		if a.Ragged && !repeating {
			return fmt.Errorf("array %s is ragged outside a repeating phase", a.Name)
		}
		specs[a.Name] = a
		got[a.Name] = 0
	}
	if len(L.Arrays) > MaxArrays {
		return fmt.Errorf("%d arrays declared, at most %d are allowed", len(L.Arrays), MaxArrays)
	}
	if L.Repeat < 0 {
		return fmt.Errorf("segments repeated a negative number of times (%d)", L.Repeat)
	}
	reps := L.passes()
	total := 0
	for _, s := range L.Segments {
		if s.Count < 0 {
			return fmt.Errorf("segment for %v has a negative count %d", s.Targets, s.Count)
		}
		if len(s.Targets) == 0 && s.Count > 0 {
			return fmt.Errorf("segment of %d values has no targets", s.Count)
		}
		n, err := product(s.Count, len(s.Targets), reps)
		if err != nil {
			return fmt.Errorf("segment for %v: %w", s.Targets, err)
		}
		if total += n; total > MaxTokens {
			return fmt.Errorf("body holds more than %d tokens", MaxTokens)
		}
		for _, t := range s.Targets {
			if _, ok := specs[t]; !ok {
				return fmt.Errorf("segment writes to undeclared array %s", t)
			}
			got[t] += s.Count * reps
		}
	}
	for _, a := range L.Arrays {
		want, err := a.size()
		if err != nil {
			return err
		}
		n := got[a.Name]
		if a.Ragged {
			if want == 0 || n%want != 0 {
				return fmt.Errorf("ragged array %s gets %d values, not a whole number of rows of %d", a.Name, n, want)
			}
			continue
		}
		if n != want {
			return fmt.Errorf("array %s of shape %v gets %d values", a.Name, a.Shape, n)
		}
	}
	return nil
}

//Phase is one part of a file: some header fields, then a body.
//Derive, if not nil, is called once the fields have been read, and may adjust the header.
//Layout, if not nil, returns the body of the phase given the header read so far.
//An Optional phase may be entirely absent: the stream may end right where it starts.
type Phase struct {
	Fields   []Field
	Derive   func(h gtcout.Header, sp gtcout.Species, log *slog.Logger) error
	Layout   func(h gtcout.Header, sp gtcout.Species) (Layout, error)
	Optional bool
}

//Descriptor is the grammar of one file kind. Phases are read in order. If Repeat
//is true the last phase, fields and body, is read again and again until the stream ends,
//each pass being one step. Expected, if not empty, names the header field declaring
//how many steps the file should have.
//Descriptors are built once and must not be modified.
type Descriptor struct {
	Kind     gtcout.Kind
	Phases   []Phase
	Repeat   bool
	Expected string
}

//Validate checks the parts of the descriptor that do not depend on the file.
func (d *Descriptor) Validate() error {
	if len(d.Phases) == 0 {
		return fmt.Errorf("grammar %s has no phases", d.Kind)
	}
	names := map[string]bool{}
	for i, p := range d.Phases {
		for _, f := range p.Fields {
			if names[f.Name] {
				return fmt.Errorf("grammar %s: field %s declared twice", d.Kind, f.Name)
			}
			names[f.Name] = true
		}
		if d.Repeat && i == len(d.Phases)-1 && p.Layout == nil && len(p.Fields) == 0 {
			return fmt.Errorf("grammar %s: the repeating phase is empty", d.Kind)
		}
	}
	if d.Expected != "" {
		found := false
		for _, f := range d.HeaderFields() {
			if f.Name == d.Expected {
				found = true
			}
		}
		if !found {
			return fmt.Errorf("grammar %s: expected step count field %s is not a header field", d.Kind, d.Expected)
		}
	}
	return nil
}

//HeaderFields returns the fields read once, in file order.
func (d *Descriptor) HeaderFields() []Field {
	var ret []Field
	for i, p := range d.Phases {
		if d.Repeat && i == len(d.Phases)-1 {
			break
		}
		ret = append(ret, p.Fields...)
	}
	return ret
}

//StepFields returns the fields read at the beginning of every step.
func (d *Descriptor) StepFields() []Field {
	if !d.Repeat {
		return nil
	}
	return d.Phases[len(d.Phases)-1].Fields
}

//ints reads non-negative integer header values, in the given order.
//Values above MaxTokens cannot be sizes and are rejected.
func ints(h gtcout.Header, names ...string) ([]int, error) {
	ret := make([]int, len(names))
	for i, n := range names {
		v, err := h.Float(n)
		if err != nil {
			return nil, err
		}
		if v < 0 {
			return nil, fmt.Errorf("header field %s is negative (%g)", n, v)
		}
		if v > MaxTokens {
			return nil, fmt.Errorf("header field %s is too large (%g)", n, v)
		}
		ret[i] = int(v)
	}
	return ret, nil
}
