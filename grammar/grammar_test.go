/*
 * grammar_test.go, part of gtcout
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
 */

package grammar

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"testing"
	"testing/iotest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rmera/gtcout"
	"github.com/rmera/gtcout/tokens"
)

//join writes values the way the simulation does: a few per line.
func join(vals ...interface{}) string {
	var b strings.Builder
	for i, v := range vals {
		if i > 0 {
			if i%5 == 0 {
				b.WriteString("\n")
			} else {
				b.WriteString("  ")
			}
		}
		fmt.Fprint(&b, v)
	}
	b.WriteString("\n")
	return b.String()
}

func source(name, text string) *tokens.Scanner {
	return tokens.NewScanner(strings.NewReader(text), name)
}

var ionElectron = gtcout.Species{true, true, false, false}

//historyFile returns a history file with the given declared step count, full steps,
//and extra tokens of an unfinished step.
//Header: 2 species with 2 diagnostics each, 1 field with 1 diagnostic and 2 modes.
//Each step is 9 tokens; value j of step s is 100*s+j+1.
func historyFile(declared, steps, extra int) []interface{} {
	vals := []interface{}{declared, 2, 2, 1, 2, 1, "1.0000E-02"}
	for s := 0; s < steps; s++ {
		for j := 0; j < 9; j++ {
			vals = append(vals, fmt.Sprintf("%.4E", float64(100*s+j+1)))
		}
	}
	for j := 0; j < extra; j++ {
		vals = append(vals, float64(100*steps+j+1))
	}
	return vals
}

func decodeHistory(Te *testing.T, vals []interface{}) *gtcout.Record {
	d, err := Lookup(gtcout.History, Options{})
	require.NoError(Te, err)
	R, err := Decode(context.Background(), source("history.out", join(vals...)), d, Options{Species: ionElectron})
	require.NoError(Te, err)
	return R
}

func TestHistoryComplete(Te *testing.T) {
	R := decodeHistory(Te, historyFile(3, 3, 0))
	assert.True(Te, R.Frozen())
	assert.Equal(Te, gtcout.Complete, R.Completeness.Status)
	assert.Equal(Te, 3, R.Completeness.Observed)
	assert.Equal(Te, 3, R.Completeness.Expected)
	assert.Equal(Te, 3, R.Steps)
	assert.Equal(Te, 0.01, R.Header()["tstep"])
	assert.Equal(Te, []string{"ion", "electron", "phi/diag", "phi/real", "phi/imag"}, R.Names())

	ion, err := R.Array("ion")
	require.NoError(Te, err)
	assert.Equal(Te, []int{3, 2}, ion.Shape())
	assert.Equal(Te, []float64{201, 202}, ion.Row(2))
	el, _ := R.Array("electron")
	assert.Equal(Te, []float64{103, 104}, el.Row(1))
	diag, _ := R.Array("phi/diag")
	assert.Equal(Te, []float64{5, 105, 205}, diag.Data())
	re, _ := R.Array("phi/real")
	im, _ := R.Array("phi/imag")
	assert.Equal(Te, []float64{106, 108}, re.Row(1))
	assert.Equal(Te, []float64{107, 109}, im.Row(1))
}

func TestHistoryTruncated(Te *testing.T) {
	for extra := 1; extra < 9; extra++ {
		R := decodeHistory(Te, historyFile(3, 2, extra))
		assert.Equal(Te, gtcout.Partial, R.Completeness.Status, "extra %d", extra)
		assert.Equal(Te, 2, R.Completeness.Observed)
		assert.Equal(Te, 3, R.Completeness.Expected)
		assert.Equal(Te, extra, R.Completeness.Discarded)
		assert.Equal(Te, 2, R.Steps)
		for _, name := range R.Names() {
			A, err := R.Array(name)
			require.NoError(Te, err)
			assert.Equal(Te, 2, A.Shape()[0], name)
		}
		ion, _ := R.Array("ion")
		assert.Equal(Te, []float64{1, 2, 101, 102}, ion.Data())
	}
}

func TestNoSteps(Te *testing.T) {
	R := decodeHistory(Te, historyFile(5, 0, 0))
	assert.Equal(Te, gtcout.Partial, R.Completeness.Status)
	assert.Equal(Te, 0, R.Completeness.Observed)
	assert.Equal(Te, 5, R.Completeness.Expected)
	ion, err := R.Array("ion")
	require.NoError(Te, err)
	assert.Equal(Te, []int{0, 2}, ion.Shape())

	R = decodeHistory(Te, historyFile(0, 0, 0))
	assert.Equal(Te, gtcout.Complete, R.Completeness.Status)
	assert.Equal(Te, 0, R.Completeness.Observed)
}

func TestMoreStepsThanDeclared(Te *testing.T) {
	R := decodeHistory(Te, historyFile(2, 3, 0))
	assert.Equal(Te, gtcout.Partial, R.Completeness.Status)
	assert.Equal(Te, 3, R.Completeness.Observed)
	assert.Equal(Te, 2, R.Completeness.Expected)
}

func TestIdempotent(Te *testing.T) {
	text := join(historyFile(4, 3, 5)...)
	d, _ := Lookup(gtcout.History, Options{})
	opts := Options{Species: ionElectron}
	R1, err := Decode(context.Background(), source("a", text), d, opts)
	require.NoError(Te, err)
	R2, err := Decode(context.Background(), source("a", text), d, opts)
	require.NoError(Te, err)
	assert.True(Te, R1.Equal(R2))
	//A byte-at-a-time reader must not change anything.
	R3, err := Decode(context.Background(), tokens.NewScanner(iotest.OneByteReader(strings.NewReader(text)), "a"), d, opts)
	require.NoError(Te, err)
	assert.True(Te, R1.Equal(R3))
	R4 := decodeHistory(Te, historyFile(4, 2, 5))
	assert.False(Te, R1.Equal(R4))
}

func TestSpeciesFlags(Te *testing.T) {
	//Only the ion is loaded: the header still says 2 species, but only one block is there.
	vals := []interface{}{1, 2, 2, 1, 2, 1, 0.5, 1, 2, 3, 4, 5, 6, 7}
	d, _ := Lookup(gtcout.History, Options{})
	R, err := Decode(context.Background(), source("h", join(vals...)), d, Options{Species: gtcout.Species{true, false, false, false}})
	require.NoError(Te, err)
	assert.Equal(Te, gtcout.Complete, R.Completeness.Status)
	_, err = R.Array("electron")
	assert.ErrorIs(Te, err, gtcout.ErrUnknownArray)
	diag, _ := R.Array("phi/diag")
	assert.Equal(Te, []float64{3}, diag.Data())
}

func TestEquilibrium1D(Te *testing.T) {
	d, err := Lookup(gtcout.Equilibrium, Options{})
	require.NoError(Te, err)
	src := source("equilibrium.out", join(2, 3, 1.5, 2.5, 3.5, -4.0, "5.0D+00", 6))
	R, err := Decode(context.Background(), src, d, Options{})
	require.NoError(Te, err)
	assert.Equal(Te, []string{"psi", "sqrtpsi"}, R.Names())
	psi, _ := R.Array("psi")
	sq, _ := R.Array("sqrtpsi")
	assert.Equal(Te, []float64{1.5, 2.5, 3.5}, psi.Data())
	assert.Equal(Te, []float64{-4, 5, 6}, sq.Data())
	assert.Equal(Te, 8, src.Count())
	assert.Equal(Te, gtcout.Complete, R.Completeness.Status)
	assert.False(Te, R.Completeness.HasExpected)
}

func TestEquilibriumStopsAtEnd(Te *testing.T) {
	d, _ := Lookup(gtcout.Equilibrium, Options{})
	src := source("equilibrium.out", join(2, 3, 1, 2, 3, 4, 5, 6, 0, 0, 0, "trailing", "junk"))
	R, err := Decode(context.Background(), src, d, Options{})
	require.NoError(Te, err)
	assert.Equal(Te, 11, src.Count())
	tok, err := src.Next()
	require.NoError(Te, err)
	assert.Equal(Te, "trailing", tok)
	assert.Equal(Te, 2, len(R.Names()))
}

func TestEquilibrium2D(Te *testing.T) {
	d, _ := Lookup(gtcout.Equilibrium, Options{})
	vals := []interface{}{1, 2, 10, 20, 2, 2, 3}
	for i := 0; i < 12; i++ {
		vals = append(vals, i)
	}
	R, err := Decode(context.Background(), source("eq", join(vals...)), d, Options{})
	require.NoError(Te, err)
	assert.Equal(Te, []string{"psi", "2d/x", "2d/z"}, R.Names())
	x, _ := R.Array("2d/x")
	z, _ := R.Array("2d/z")
	assert.Equal(Te, []int{2, 3}, x.Shape())
	assert.Equal(Te, 5.0, x.At(1, 2))
	assert.Equal(Te, 7.0, z.At(0, 1))
	m, err := z.Dense()
	require.NoError(Te, err)
	assert.Equal(Te, 11.0, m.At(1, 2))
	assert.Equal(Te, 3.0, R.Header()["lsp2d"])
}

func TestTruncatedFixedPart(Te *testing.T) {
	d, _ := Lookup(gtcout.Equilibrium, Options{})
	tests := []struct {
		name string
		vals []interface{}
	}{
		{"header", []interface{}{2}},
		{"profiles", []interface{}{2, 3, 1, 2, 3, 4, 5}},
		{"planes header", []interface{}{1, 1, 1, 1, 1}},
		{"planes", []interface{}{1, 1, 1, 1, 2, 2, 1, 1, 1}},
	}
	for _, t := range tests {
		_, err := Decode(context.Background(), source("eq", join(t.vals...)), d, Options{})
		require.Error(Te, err, t.name)
		var derr *DecodeError
		require.ErrorAs(Te, err, &derr, t.name)
		assert.Equal(Te, Truncated, derr.Message(), t.name)
		assert.Equal(Te, len(t.vals), derr.Offset, t.name)
	}
	hd, _ := Lookup(gtcout.History, Options{})
	_, err := Decode(context.Background(), source("h", ""), hd, Options{})
	var derr *DecodeError
	require.ErrorAs(Te, err, &derr)
	assert.Equal(Te, Truncated, derr.Message())
}

func TestMalformed(Te *testing.T) {
	vals := historyFile(3, 3, 0)
	vals[7+11] = "1.0.0"
	d, _ := Lookup(gtcout.History, Options{})
	_, err := Decode(context.Background(), source("history.out", join(vals...)), d, Options{Species: ionElectron})
	require.Error(Te, err)
	var derr *DecodeError
	require.ErrorAs(Te, err, &derr)
	assert.Equal(Te, Malformed, derr.Message())
	assert.Equal(Te, gtcout.History, derr.Kind)
	assert.Equal(Te, "history.out", derr.FileName())
	assert.Equal(Te, 19, derr.Offset)
	assert.Equal(Te, "1.0.0", derr.Token)
	assert.True(Te, derr.Critical())
	var ferr gtcout.FileError
	assert.ErrorAs(Te, err, &ferr)

	//Integer fields do not take floats.
	vals = historyFile(3, 1, 0)
	vals[0] = "3.0"
	_, err = Decode(context.Background(), source("history.out", join(vals...)), d, Options{Species: ionElectron})
	require.ErrorAs(Te, err, &derr)
	assert.Equal(Te, 1, derr.Offset)
}

func TestBadLayout(Te *testing.T) {
	d, _ := Lookup(gtcout.Equilibrium, Options{})
	_, err := Decode(context.Background(), source("eq", join(-2, 3)), d, Options{})
	var derr *DecodeError
	require.ErrorAs(Te, err, &derr)
	assert.Equal(Te, BadLayout, derr.Message())

	//A history file where nothing is written per step.
	hd, _ := Lookup(gtcout.History, Options{})
	_, err = Decode(context.Background(), source("h", join(1, 0, 0, 0, 0, 0, 0.1)), hd, Options{})
	require.ErrorAs(Te, err, &derr)
	assert.Equal(Te, BadLayout, derr.Message())
}

//Corrupt headers declare absurd sizes. Nothing is allocated for them, and the decode
//fails with a DecodeError.
func TestHugeDeclaredSizes(Te *testing.T) {
	cases := []struct {
		name string
		kind gtcout.Kind
		text string
		msg  string
	}{
		{"profile length", gtcout.Equilibrium, join(1, "100000000000000", 1, 2, 3), BadLayout},
		{"plausible length", gtcout.Equilibrium, join(1, 1000000000, 1, 2, 3), Truncated},
		{"profile count", gtcout.Equilibrium, join(100000000, 3), BadLayout},
		{"plane overflow", gtcout.Equilibrium, join(0, 1, 1, 3000000000, 3000000000), BadLayout},
		{"poloidal overflow", gtcout.Snapshot, join(1, 1, 2, "1000000000000", "1000000000000", 1, 0.1), BadLayout},
		{"particle count", gtcout.Tracking, join(0, "4000000000000", 1, 2, 3), BadLayout},
		{"field count", gtcout.History, join(1, 1, 1, "900000000000", 1, 1, 0.1), BadLayout},
	}
	for _, c := range cases {
		d, err := Lookup(c.kind, Options{})
		require.NoError(Te, err)
		var R *gtcout.Record
		require.NotPanics(Te, func() {
			R, err = Decode(context.Background(), source(c.name, c.text), d, Options{Species: gtcout.Species{true}})
		}, c.name)
		assert.Nil(Te, R, c.name)
		var derr *DecodeError
		require.ErrorAs(Te, err, &derr, c.name)
		assert.Equal(Te, c.msg, derr.Message(), c.name)
	}
}

//A shifted tracking file may read a tag as a particle count. The step never
//completes and is dropped, without allocating room for the particles.
func TestTrackingCountFromShiftedFile(Te *testing.T) {
	d, _ := Lookup(gtcout.Tracking, Options{})
	R, err := Decode(context.Background(), source("TRACKP.00003", join(0, 100000000, 1.5, 2.5, 3.5, 7, 1)), d, Options{})
	require.NoError(Te, err)
	assert.Equal(Te, 0, R.Steps)
	assert.Equal(Te, 7, R.Completeness.Discarded)
}

func TestRadialTime(Te *testing.T) {
	//ndstep mpsi nspecies mpdata1d nfield mfdata1d
	vals := []interface{}{2, 3, 1, 2, 2, 1}
	for i := 0; i < 2*(1*2*3+2*1*3); i++ {
		vals = append(vals, i)
	}
	d, _ := Lookup(gtcout.RadialTime, Options{})
	R, err := Decode(context.Background(), source("data1d.out", join(vals...)), d, Options{Species: gtcout.Species{false, false, true, false}})
	require.NoError(Te, err)
	assert.Equal(Te, []string{"fastion/0", "fastion/1", "phi/0", "apara/0"}, R.Names())
	assert.Equal(Te, gtcout.Complete, R.Completeness.Status)
	ap, _ := R.Array("apara/0")
	assert.Equal(Te, []int{2, 3}, ap.Shape())
	assert.Equal(Te, []float64{21, 22, 23}, ap.Row(1))
	f1, _ := R.Array("fastion/1")
	assert.Equal(Te, []float64{3, 4, 5}, f1.Row(0))
}

func TestSnapshot(Te *testing.T) {
	//nspecies nfield nvgrid mpsi mtgrid mtoroidal tmax
	vals := []interface{}{1, 1, 2, 3, 3, 2, 10.5}
	n := 3*2*3 + 2*2*2 + 3*3*3 + 2*3
	for i := 0; i < n; i++ {
		vals = append(vals, i)
	}
	d, _ := Lookup(gtcout.Snapshot, Options{})
	src := source("snap0001.out", join(append(vals, 999)...))
	R, err := Decode(context.Background(), src, d, Options{Species: gtcout.Species{false, true, false, false}})
	require.NoError(Te, err)
	assert.Equal(Te, len(vals), src.Count())
	assert.Equal(Te, 2.0, R.Header()["mtgrid"])
	assert.Equal(Te, 10.5, R.Header()["tmax"])
	assert.Equal(Te, []string{
		"electron/density", "electron/flow", "electron/energy", "electron/pdf_energy", "electron/pdf_pitch",
		"poloidal/phi", "poloidal/x", "poloidal/z", "flux/phi",
	}, R.Names())
	flow, _ := R.Array("electron/flow")
	assert.Equal(Te, []int{2, 3}, flow.Shape())
	assert.Equal(Te, []float64{9, 10, 11}, flow.Row(1))
	pitch, _ := R.Array("electron/pdf_pitch")
	assert.Equal(Te, []float64{22, 23, 24, 25}, pitch.Data())
	pol, _ := R.Array("poloidal/x")
	assert.Equal(Te, []int{3, 3}, pol.Shape())
	assert.Equal(Te, 35.0, pol.At(0, 0))
	flux, _ := R.Array("flux/phi")
	assert.Equal(Te, []int{2, 3}, flux.Shape())
	assert.Equal(Te, float64(n-1), flux.At(1, 2))
}

func trackingFile() string {
	return join(
		10, 2,
		0.1, 0.2, 0.3, 4, 1,
		1.1, 1.2, 1.3, 2, 1,
		20, 1,
		2.1, 2.2, 2.3, 4, 1,
		30, 2,
		3.1, 3.2,
	)
}

func TestTracking(Te *testing.T) {
	d, err := Lookup(gtcout.Tracking, Options{})
	require.NoError(Te, err)
	R, err := Decode(context.Background(), source("TRACKP.00000", trackingFile()), d, Options{})
	require.NoError(Te, err)
	assert.Equal(Te, 2, R.Steps)
	assert.Equal(Te, gtcout.Complete, R.Completeness.Status)
	assert.False(Te, R.Completeness.HasExpected)
	assert.Equal(Te, 4, R.Completeness.Discarded)
	assert.Equal(Te, []string{TrackStep, TrackCount, TrackCoords, TrackTags}, R.Names())
	steps, _ := R.Array(TrackStep)
	assert.Equal(Te, []float64{10, 20}, steps.Data())
	coords, _ := R.Array(TrackCoords)
	assert.Equal(Te, []int{3, 3}, coords.Shape())
	assert.Equal(Te, []float64{2.1, 2.2, 2.3}, coords.Row(2))
	tags, _ := R.Array(TrackTags)
	assert.Equal(Te, []float64{2, 1}, tags.Row(1))
}

func TestTrackingDiscard(Te *testing.T) {
	opts := Options{Dims: 2, Discard: true}
	d, err := Lookup(gtcout.Tracking, opts)
	require.NoError(Te, err)
	src := source("t", join(5, 2, 0.5, 0.6, 1, 1, 0.7, 0.8, 1, 2))
	S, err := NewStream(src, d, opts)
	require.NoError(Te, err)
	act, err := S.Advance(context.Background())
	require.NoError(Te, err)
	assert.Equal(Te, StepDone, act)
	B := S.Engine().Block()
	assert.Equal(Te, 0, B.Index)
	assert.Equal(Te, 5.0, B.Fields[TrackStep])
	assert.Equal(Te, []float64{0.5, 0.6, 0.7, 0.8}, B.Values[TrackCoords])
	assert.Equal(Te, []float64{1, 1, 1, 2}, B.Values[TrackTags])
	act, err = S.Advance(context.Background())
	require.NoError(Te, err)
	assert.Equal(Te, Done, act)
	R, err := S.Finish()
	require.NoError(Te, err)
	assert.Equal(Te, 1, R.Steps)
	_, err = R.Array(TrackCoords)
	assert.ErrorIs(Te, err, gtcout.ErrUnknownArray)
}

func TestTrackingTagsAreIntegers(Te *testing.T) {
	d, _ := Lookup(gtcout.Tracking, Options{})
	_, err := Decode(context.Background(), source("t", join(1, 1, 0.1, 0.2, 0.3, 1.5, 2)), d, Options{})
	var derr *DecodeError
	require.ErrorAs(Te, err, &derr)
	assert.Equal(Te, Malformed, derr.Message())
	assert.Equal(Te, 6, derr.Offset)
}

func TestCancel(Te *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	d, _ := Lookup(gtcout.History, Options{})
	_, err := Decode(ctx, source("h", join(historyFile(3, 3, 0)...)), d, Options{Species: ionElectron})
	assert.ErrorIs(Te, err, context.Canceled)
}

func TestSourceError(Te *testing.T) {
	r := io.MultiReader(strings.NewReader(join(historyFile(3, 1, 0)...)), iotest.ErrReader(errors.New("disk on fire")))
	d, _ := Lookup(gtcout.History, Options{})
	_, err := Decode(context.Background(), tokens.NewScanner(r, "h"), d, Options{Species: ionElectron})
	var derr *DecodeError
	require.ErrorAs(Te, err, &derr)
	assert.Equal(Te, SourceFailed, derr.Message())
	assert.Contains(Te, err.Error(), "disk on fire")
}

func TestTokensLostBehindTheEngine(Te *testing.T) {
	d, _ := Lookup(gtcout.History, Options{})
	src := source("h", join(historyFile(3, 2, 0)...))
	S, err := NewStream(src, d, Options{Species: ionElectron})
	require.NoError(Te, err)
	for {
		act, err := S.Advance(context.Background())
		require.NoError(Te, err)
		if act == Done {
			break
		}
	}
	_, err = completeness(S.Engine(), src.Count()+9)
	assert.Error(Te, err)
	_, err = completeness(S.Engine(), src.Count()+4)
	assert.Error(Te, err)
	c, err := completeness(S.Engine(), src.Count())
	require.NoError(Te, err)
	assert.Equal(Te, 2, c.Observed)
}

func TestFeedAfterDone(Te *testing.T) {
	d, _ := Lookup(gtcout.Equilibrium, Options{})
	E, err := NewEngine(d, "eq", Options{})
	require.NoError(Te, err)
	for _, tok := range []string{"1", "1", "7", "0", "0", "0"} {
		_, err := E.Feed(tok)
		require.NoError(Te, err)
	}
	assert.True(Te, E.Finished())
	_, err = E.Feed("8")
	var derr *DecodeError
	require.ErrorAs(Te, err, &derr)
	assert.Equal(Te, TrailingData, derr.Message())
}

func TestParseFortran(Te *testing.T) {
	tests := []struct {
		tok  string
		want float64
	}{
		{"1.0D+03", 1000},
		{"-2.5d-1", -0.25},
		{"1.5-100", 1.5e-100},
		{"0.25+101", 0.25e101},
		{"3", 3},
	}
	for _, t := range tests {
		v, err := parse(t.tok, Float)
		require.NoError(Te, err, t.tok)
		assert.InDelta(Te, t.want, v, 1e-9*abs(t.want), t.tok)
	}
	for _, bad := range []string{"", "-", "1e", "x1", "1..2"} {
		_, err := parse(bad, Float)
		assert.Error(Te, err, bad)
	}
}

func abs(x float64) float64 {
	if x < 0 {
		return -x
	}
	return x
}

func TestRegistry(Te *testing.T) {
	ds := Kinds()
	require.Len(Te, ds, len(gtcout.Kinds()))
	for i, k := range gtcout.Kinds() {
		assert.Equal(Te, k, ds[i].Kind)
		assert.NoError(Te, ds[i].Validate())
	}
	_, err := Lookup("restart", Options{})
	assert.ErrorIs(Te, err, gtcout.ErrUnknownKind)
	assert.Equal(Te, []Field{{"step", Int}, {"count", Int}}, registry[gtcout.Tracking].StepFields())
	assert.Len(Te, registry[gtcout.History].HeaderFields(), 7)
	assert.Empty(Te, registry[gtcout.Snapshot].StepFields())
}
