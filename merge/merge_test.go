/*
 * merge_test.go, part of gtcout
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

package merge

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/klauspost/compress/zstd"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rmera/gtcout"
	"github.com/rmera/gtcout/grammar"
	"github.com/rmera/gtcout/tokens"
)

//rec is one tracked particle as written in a file.
type rec struct {
	tag [2]int
	x   [3]float64
}

//coordsOf gives every particle a position that depends on its tag and the step,
//so a particle in the wrong slot shows.
func coordsOf(tag [2]int, step int) [3]float64 {
	base := float64(10*tag[0] + tag[1])
	return [3]float64{base, base + 0.5, float64(step)}
}

func trackFile(steps []int, perStep [][][2]int) string {
	var b strings.Builder
	for i, s := range steps {
		fmt.Fprintf(&b, "%d %d\n", s, len(perStep[i]))
		for _, t := range perStep[i] {
			c := coordsOf(t, s)
			fmt.Fprintf(&b, "%.6E %.6E %.6E %d %d\n", c[0], c[1], c[2], t[0], t[1])
		}
	}
	return b.String()
}

func sources(texts ...string) []gtcout.TokenSource {
	ret := make([]gtcout.TokenSource, len(texts))
	for i, t := range texts {
		ret[i] = tokens.NewScanner(strings.NewReader(t), fmt.Sprintf("TRACKP.%05d", i))
	}
	return ret
}

//Two processes, 3 particles in all, exchanged between processes and written in
//a different order every step.
func twoProcesses() []string {
	steps := []int{0, 10, 20}
	a := trackFile(steps, [][][2]int{
		{{2, 1}, {1, 7}},
		{{1, 2}},
		{{1, 7}, {1, 2}, {2, 1}},
	})
	b := trackFile(steps, [][][2]int{
		{{1, 2}},
		{{2, 1}, {1, 7}},
		{},
	})
	return []string{a, b}
}

func TestMergeSlotsFollowTags(Te *testing.T) {
	T, err := Merge(context.Background(), sources(twoProcesses()...), Options{Expected: 2})
	require.NoError(Te, err)
	assert.Equal(Te, []int{0, 10, 20}, T.Steps)
	assert.Equal(Te, []Tag{{1, 2}, {1, 7}, {2, 1}}, T.Tags)
	require.Equal(Te, 3, T.Len())
	for i, tag := range T.Tags {
		S := T.Slot(i)
		r, c := S.Dims()
		require.Equal(Te, 3, r)
		require.Equal(Te, 3, c)
		for s, step := range T.Steps {
			want := coordsOf([2]int{int(tag[0]), int(tag[1])}, step)
			assert.InDelta(Te, want[0], S.At(s, 0), 1e-9, "slot %d step %d", i, step)
			assert.InDelta(Te, want[1], S.At(s, 1), 1e-9)
			assert.InDelta(Te, want[2], S.At(s, 2), 1e-9)
		}
	}
	assert.Equal(Te, 1, T.SlotOf(Tag{1, 7}))
	assert.Equal(Te, -1, T.SlotOf(Tag{7, 1}))
	F := T.Frame(1)
	assert.Equal(Te, 21.0, F.At(2, 0))
	assert.Equal(Te, 10.0, F.At(2, 2))
}

func TestMergeRecord(Te *testing.T) {
	T, err := Merge(context.Background(), sources(twoProcesses()...), Options{Expected: 2})
	require.NoError(Te, err)
	R := T.Record()
	assert.True(Te, R.Frozen())
	assert.Equal(Te, gtcout.Tracking, R.Kind)
	assert.Equal(Te, 3, R.Steps)
	assert.Equal(Te, "TRACKP.00000,TRACKP.00001", R.Source)
	tr, err := R.Array("trajectory")
	require.NoError(Te, err)
	assert.Equal(Te, []int{3, 3, 3}, tr.Shape())
	assert.Equal(Te, 17.0, tr.At(1, 2, 0))
	assert.Equal(Te, 20.0, tr.At(1, 2, 2))
	tags, _ := R.Array("tags")
	assert.Equal(Te, []float64{2, 1}, tags.Row(2))
	steps, _ := R.Array("steps")
	assert.Equal(Te, []float64{0, 10, 20}, steps.Data())
}

func TestSortParticlesIsStable(Te *testing.T) {
	p := []Particle{
		{Tag{3, 0}, []float64{0}},
		{Tag{1, 5}, []float64{1}},
		{Tag{1, 5}, []float64{2}},
		{Tag{1, -4}, []float64{3}},
		{Tag{-2, 9}, []float64{4}},
	}
	SortParticles(p)
	got := make([]float64, len(p))
	for i := range p {
		got[i] = p[i].Coords[0]
	}
	assert.Equal(Te, []float64{4, 3, 1, 2, 0}, got)
	assert.Equal(Te, 2, firstDuplicate(p))
	assert.Equal(Te, 0, Compare(Tag{1, 1}, Tag{1, 1}))
	assert.Equal(Te, -1, Compare(Tag{1, 9}, Tag{2, 0}))
	assert.Equal(Te, 1, Compare(Tag{1, 9}, Tag{1, 8}))
}

func TestMergeFileCount(Te *testing.T) {
	src := sources(twoProcesses()...)
	_, err := Merge(context.Background(), src, Options{Expected: 3})
	var serr *SetupError
	require.ErrorAs(Te, err, &serr)
	assert.Equal(Te, 3, serr.Expected)
	assert.Equal(Te, 2, serr.Got)
	for _, s := range src {
		assert.Equal(Te, 0, s.Count(), "nothing should be read")
	}
	_, err = Merge(context.Background(), nil, Options{})
	assert.ErrorAs(Te, err, &serr)

	//Files are not even opened.
	_, err = MergeFiles(context.Background(), []string{"/does/not/exist"}, Options{Expected: 2})
	assert.ErrorAs(Te, err, &serr)
}

func TestMergeDesyncEnd(Te *testing.T) {
	a := trackFile([]int{0, 1}, [][][2]int{{{1, 1}}, {{1, 1}}})
	b := trackFile([]int{0}, [][][2]int{{{2, 2}}})
	_, err := Merge(context.Background(), sources(a, b), Options{Expected: 2})
	var derr *DesyncError
	require.ErrorAs(Te, err, &derr)
	assert.Equal(Te, 1, derr.Round)
	assert.Equal(Te, []string{"TRACKP.00001"}, derr.Ended)
	assert.Equal(Te, []string{"TRACKP.00000"}, derr.Going)
}

func TestMergeDesyncStep(Te *testing.T) {
	a := trackFile([]int{0, 5}, [][][2]int{{{1, 1}}, {{1, 1}}})
	b := trackFile([]int{0, 6}, [][][2]int{{{2, 2}}, {{2, 2}}})
	_, err := Merge(context.Background(), sources(a, b), Options{Expected: 2})
	var derr *DesyncError
	require.ErrorAs(Te, err, &derr)
	assert.Equal(Te, 1, derr.Round)
	assert.Equal(Te, map[string]int{"TRACKP.00000": 5, "TRACKP.00001": 6}, derr.Steps)
}

func TestMergeParticleSetChanges(Te *testing.T) {
	a := trackFile([]int{0, 1}, [][][2]int{{{1, 1}}, {{1, 1}}})
	b := trackFile([]int{0, 1}, [][][2]int{{{2, 2}}, {{3, 3}}})
	_, err := Merge(context.Background(), sources(a, b), Options{Expected: 2})
	var merr *Error
	require.ErrorAs(Te, err, &merr)
	assert.Equal(Te, 1, merr.Step)

	c := trackFile([]int{0, 1}, [][][2]int{{{2, 2}}, {}})
	_, err = Merge(context.Background(), sources(a, c), Options{Expected: 2})
	require.ErrorAs(Te, err, &merr)
}

func TestMergeDuplicateTags(Te *testing.T) {
	a := trackFile([]int{0}, [][][2]int{{{1, 1}}})
	b := trackFile([]int{0}, [][][2]int{{{1, 1}}})
	_, err := Merge(context.Background(), sources(a, b), Options{Expected: 2})
	var merr *Error
	require.ErrorAs(Te, err, &merr)
	assert.Contains(Te, err.Error(), "(1,1)")
}

func TestMergeTruncatedLastStep(Te *testing.T) {
	texts := twoProcesses()
	//Both processes were writing step 30 when the run was stopped.
	texts[0] += "30 1\n1.0 2.0"
	texts[1] += "30 2\n"
	T, err := Merge(context.Background(), sources(texts...), Options{Expected: 2})
	require.NoError(Te, err)
	assert.Equal(Te, []int{0, 10, 20}, T.Steps)
}

func TestMergeMalformed(Te *testing.T) {
	texts := twoProcesses()
	texts[1] = strings.Replace(texts[1], "1 2\n", "1 x\n", 1)
	_, err := Merge(context.Background(), sources(texts...), Options{Expected: 2})
	var derr *grammar.DecodeError
	require.ErrorAs(Te, err, &derr)
	assert.Equal(Te, "TRACKP.00001", derr.FileName())
}

func TestMergeFiles(Te *testing.T) {
	dir := Te.TempDir()
	texts := twoProcesses()
	plain := filepath.Join(dir, "TRACKP.00000")
	require.NoError(Te, os.WriteFile(plain, []byte(texts[0]), 0o644))
	compressed := filepath.Join(dir, "TRACKP.00001.zst")
	f, err := os.Create(compressed)
	require.NoError(Te, err)
	w, err := zstd.NewWriter(f)
	require.NoError(Te, err)
	_, err = w.Write([]byte(texts[1]))
	require.NoError(Te, err)
	require.NoError(Te, w.Close())
	require.NoError(Te, f.Close())

	T, err := MergeFiles(context.Background(), []string{plain, compressed}, Options{Expected: 2})
	require.NoError(Te, err)
	assert.Equal(Te, 3, T.Len())
	assert.Equal(Te, []string{plain, compressed}, T.Sources)
}

func TestMergeDims(Te *testing.T) {
	a := "0 1\n0.5 0.25 1 1\n"
	b := "0 1\n0.75 0.125 0 3\n"
	T, err := Merge(context.Background(), sources(a, b), Options{Expected: 2, Dims: 2})
	require.NoError(Te, err)
	assert.Equal(Te, []Tag{{0, 3}, {1, 1}}, T.Tags)
	assert.Equal(Te, 0.125, T.Slot(0).At(0, 1))
}
