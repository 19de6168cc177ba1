/*
 * record.go, part of gtcout.
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
	"encoding/json"
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"
)

// Array is a named, row-major, multi-dimensional array of float64.
// Arrays are written only while a file is decoded, and are read-only once
// the Record that owns them is frozen.
type Array struct {
	name   string
	shape  []int
	data   []float64
	series bool //the first dimension grows with Append
	frozen bool
}

func product(s []int) int {
	p := 1
	for _, v := range s {
		p *= v
	}
	return p
}

// NewArray returns a zero-filled array with the given shape.
func NewArray(name string, shape ...int) *Array {
	for _, v := range shape {
		if v < 0 {
			panic(fmt.Sprintf("gtcout.NewArray: negative dimension in %v for %s", shape, name))
		}
	}
	s := append([]int(nil), shape...)
	return &Array{name: name, shape: s, data: make([]float64, product(s))}
}

// NewArrayFrom returns an array with the given shape holding data, which it
// takes over. The length of data must match the shape.
func NewArrayFrom(name string, data []float64, shape ...int) (*Array, error) {
	for _, v := range shape {
		if v < 0 {
			return nil, fmt.Errorf("negative dimension in %v for %s", shape, name)
		}
	}
	s := append([]int(nil), shape...)
	if len(data) != product(s) {
		return nil, fmt.Errorf("array %s of shape %v cannot hold %d values", name, s, len(data))
	}
	if data == nil {
		data = []float64{}
	}
	return &Array{name: name, shape: s, data: data}, nil
}

// NewSeries returns an empty array whose first dimension grows as blocks of
// shape inner are appended to it.
func NewSeries(name string, inner ...int) *Array {
	s := append([]int{0}, inner...)
	return &Array{name: name, shape: s, series: true}
}

// Name returns the name of the array.
func (A *Array) Name() string { return A.name }

// Shape returns a copy of the dimensions of the array.
func (A *Array) Shape() []int { return append([]int(nil), A.shape...) }

// Len returns the total number of elements.
func (A *Array) Len() int { return len(A.data) }

// Set sets the i-th element in row-major order.
func (A *Array) Set(i int, v float64) {
	if A.frozen {
		panic("gtcout.Array.Set: array " + A.name + " is read-only")
	}
	A.data[i] = v
}

// Append appends whole blocks to a series. The number of values must be a
// multiple of the block size. A block size of zero counts as one block per call.
func (A *Array) Append(vals ...float64) {
	if A.frozen {
		panic("gtcout.Array.Append: array " + A.name + " is read-only")
	}
	if !A.series {
		panic("gtcout.Array.Append: array " + A.name + " has a fixed shape")
	}
	unit := product(A.shape[1:])
	if unit == 0 {
		A.shape[0]++
		return
	}
	if len(vals)%unit != 0 {
		panic(fmt.Sprintf("gtcout.Array.Append: %d values is not a multiple of the block size %d of %s", len(vals), unit, A.name))
	}
	A.data = append(A.data, vals...)
	A.shape[0] += len(vals) / unit
}

func (A *Array) index(idx []int) int {
	if len(idx) != len(A.shape) {
		panic(fmt.Sprintf("gtcout.Array: %d indexes given for %d dimensions", len(idx), len(A.shape)))
	}
	flat := 0
	for d, i := range idx {
		if i < 0 || i >= A.shape[d] {
			panic(fmt.Sprintf("gtcout.Array: index %d out of range in dimension %d of %s", i, d, A.name))
		}
		flat = flat*A.shape[d] + i
	}
	return flat
}

// At returns the element at the given indexes.
func (A *Array) At(idx ...int) float64 {
	return A.data[A.index(idx)]
}

// Row returns a copy of the i-th slice along the first dimension.
func (A *Array) Row(i int) []float64 {
	if len(A.shape) == 0 || i < 0 || i >= A.shape[0] {
		panic(fmt.Sprintf("gtcout.Array.Row: row %d out of range for %s", i, A.name))
	}
	w := product(A.shape[1:])
	return append([]float64(nil), A.data[i*w:(i+1)*w]...)
}

// Data returns a copy of all the elements in row-major order.
func (A *Array) Data() []float64 {
	return append([]float64(nil), A.data...)
}

// Dense returns a copy of a 2-dimensional array as a gonum matrix.
// 1-dimensional arrays are returned as a single row.
func (A *Array) Dense() (*mat.Dense, error) {
	var r, c int
	switch len(A.shape) {
	case 1:
		r, c = 1, A.shape[0]
	case 2:
		r, c = A.shape[0], A.shape[1]
	default:
		return nil, fmt.Errorf("array %s has %d dimensions, a matrix needs 1 or 2", A.name, len(A.shape))
	}
	if r == 0 || c == 0 {
		return nil, fmt.Errorf("array %s is empty", A.name)
	}
	return mat.NewDense(r, c, A.Data()), nil
}

// Summary holds a few descriptive numbers about an array.
type Summary struct {
	Min, Max, Mean float64
	NaNs           int
}

// Summary returns the minimum, maximum and mean of the finite elements of the
// array, and how many elements are NaN.
func (A *Array) Summary() Summary {
	var s Summary
	finite := make([]float64, 0, len(A.data))
	for _, v := range A.data {
		if math.IsNaN(v) {
			s.NaNs++
			continue
		}
		finite = append(finite, v)
	}
	if len(finite) == 0 {
		s.Min, s.Max, s.Mean = math.NaN(), math.NaN(), math.NaN()
		return s
	}
	s.Min = floats.Min(finite)
	s.Max = floats.Max(finite)
	s.Mean = stat.Mean(finite, nil)
	return s
}

// Nested returns the array as nested slices, one level per dimension.
// NaN and infinite values become nil, so the result can always be encoded
// as JSON.
func (A *Array) Nested() interface{} {
	if len(A.shape) == 0 {
		if len(A.data) == 0 {
			return nil
		}
		return jsonFloat(A.data[0])
	}
	return nest(A.data, A.shape)
}

func jsonFloat(v float64) interface{} {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return nil
	}
	return v
}

func nest(data []float64, shape []int) []interface{} {
	ret := make([]interface{}, shape[0])
	if len(shape) == 1 {
		for i := range ret {
			ret[i] = jsonFloat(data[i])
		}
		return ret
	}
	w := product(shape[1:])
	for i := range ret {
		ret[i] = nest(data[i*w:(i+1)*w], shape[1:])
	}
	return ret
}

func (A *Array) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Name  string      `json:"name"`
		Shape []int       `json:"shape"`
		Data  interface{} `json:"data"`
	}{A.name, A.shape, A.Nested()})
}

// Record is the result of decoding one file (or merging one set of tracking
// files): the scalar header plus named arrays. A Record is filled in while
// decoding and frozen afterwards, after which neither its header fields nor its
// arrays can change.
type Record struct {
	Kind         Kind
	Source       string
	header       Header
	Steps        int //committed repeat blocks, 0 for non-repeating kinds
	Completeness Completeness
	arrays       map[string]*Array
	order        []string
	frozen       bool
}

// NewRecord returns an empty, writable record.
func NewRecord(kind Kind, source string) *Record {
	return &Record{Kind: kind, Source: source, header: Header{}, arrays: map[string]*Array{}}
}

// Header returns a copy of the header fields.
func (R *Record) Header() Header { return R.header.Copy() }

// SetField sets a header field. It panics if the record is frozen.
func (R *Record) SetField(name string, v float64) {
	if R.frozen {
		panic("gtcout.Record.SetField: record " + R.Source + " is read-only")
	}
	R.header[name] = v
}

// Add adds an array to the record. Names must be unique.
func (R *Record) Add(A *Array) error {
	if R.frozen {
		return fmt.Errorf("record %s is read-only", R.Source)
	}
	if _, ok := R.arrays[A.name]; ok {
		return fmt.Errorf("array %s defined twice in record %s", A.name, R.Source)
	}
	R.arrays[A.name] = A
	R.order = append(R.order, A.name)
	return nil
}

// Array returns the named array. Asking for an array that the record does not
// contain returns an error wrapping ErrUnknownArray.
func (R *Record) Array(name string) (*Array, error) {
	A, ok := R.arrays[name]
	if !ok {
		return nil, fmt.Errorf("%w %q in %s record %s", ErrUnknownArray, name, R.Kind, R.Source)
	}
	return A, nil
}

// Names returns the names of the arrays, in the order they were declared.
func (R *Record) Names() []string {
	return append([]string(nil), R.order...)
}

// Freeze makes the record and all its arrays read-only.
func (R *Record) Freeze() {
	R.frozen = true
	for _, A := range R.arrays {
		A.frozen = true
	}
}

// Frozen reports whether the record is read-only.
func (R *Record) Frozen() bool { return R.frozen }

// Equal reports whether two records have the same header, the same arrays
// and bit-identical values.
func (R *Record) Equal(O *Record) bool {
	if R.Kind != O.Kind || R.Steps != O.Steps || R.Completeness != O.Completeness {
		return false
	}
	if len(R.header) != len(O.header) || len(R.order) != len(O.order) {
		return false
	}
	for k, v := range R.header {
		w, ok := O.header[k]
		if !ok || math.Float64bits(v) != math.Float64bits(w) {
			return false
		}
	}
	for i, name := range R.order {
		if O.order[i] != name {
			return false
		}
		a, b := R.arrays[name], O.arrays[name]
		if len(a.shape) != len(b.shape) || len(a.data) != len(b.data) {
			return false
		}
		for j := range a.shape {
			if a.shape[j] != b.shape[j] {
				return false
			}
		}
		for j := range a.data {
			if math.Float64bits(a.data[j]) != math.Float64bits(b.data[j]) {
				return false
			}
		}
	}
	return true
}

func (R *Record) MarshalJSON() ([]byte, error) {
	arrays := make(map[string]interface{}, len(R.arrays))
	for name, A := range R.arrays {
		arrays[name] = struct {
			Shape []int       `json:"shape"`
			Data  interface{} `json:"data"`
		}{A.shape, A.Nested()}
	}
	header := make(map[string]interface{}, len(R.header))
	for k, v := range R.header {
		header[k] = jsonFloat(v)
	}
	var expected interface{}
	if R.Completeness.HasExpected {
		expected = R.Completeness.Expected
	}
	return json.Marshal(struct {
		Kind              Kind                   `json:"kind"`
		Source            string                 `json:"source"`
		Header            map[string]interface{} `json:"header"`
		Arrays            map[string]interface{} `json:"arrays"`
		Order             []string               `json:"order"`
		StepCount         int                    `json:"stepCount"`
		ExpectedStepCount interface{}            `json:"expectedStepCount"`
		Status            Status                 `json:"status"`
	}{R.Kind, R.Source, header, arrays, R.order, R.Completeness.Observed, expected, R.Completeness.Status})
}
