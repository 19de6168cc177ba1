/*
 * output.go, part of gtcout
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

package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sort"
	"strconv"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/mattn/go-isatty"

	"github.com/rmera/gtcout"
	"github.com/rmera/gtcout/grammar"
	"github.com/rmera/gtcout/merge"
	"github.com/rmera/gtcout/run"
)

var headerStyle = lipgloss.NewStyle().Bold(true).Padding(0, 1)
var cellStyle = lipgloss.NewStyle().Padding(0, 1)

//wantJSON is true when the output is not a terminal or JSON was asked for.
func wantJSON(w io.Writer) bool {
	if jsonOut {
		return true
	}
	f, ok := w.(*os.File)
	if !ok {
		return true
	}
	return !isatty.IsTerminal(f.Fd()) && !isatty.IsCygwinTerminal(f.Fd())
}

func newTable(headers ...string) *table.Table {
	return table.New().
		Border(lipgloss.RoundedBorder()).
		Headers(headers...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			return cellStyle
		})
}

func printJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func num(v float64) string {
	return strconv.FormatFloat(v, 'g', 6, 64)
}

func printKinds(w io.Writer, ds []*grammar.Descriptor) error {
	if wantJSON(w) {
		type kind struct {
			Kind     gtcout.Kind `json:"kind"`
			Header   []string    `json:"header"`
			Step     []string    `json:"step,omitempty"`
			Repeat   bool        `json:"repeat"`
			Expected string      `json:"expected,omitempty"`
		}
		out := make([]kind, 0, len(ds))
		for _, d := range ds {
			k := kind{Kind: d.Kind, Repeat: d.Repeat, Expected: d.Expected}
			for _, f := range d.HeaderFields() {
				k.Header = append(k.Header, f.Name)
			}
			for _, f := range d.StepFields() {
				k.Step = append(k.Step, f.Name)
			}
			out = append(out, k)
		}
		return printJSON(w, out)
	}
	t := newTable("kind", "header fields", "step fields", "repeats", "step count in")
	for _, d := range ds {
		t.Row(string(d.Kind), fieldList(d.HeaderFields()), fieldList(d.StepFields()), strconv.FormatBool(d.Repeat), d.Expected)
	}
	_, err := fmt.Fprintln(w, t)
	return err
}

func fieldList(fs []grammar.Field) string {
	s := ""
	for i, f := range fs {
		if i > 0 {
			s += " "
		}
		s += f.Name
	}
	return s
}

func printRecord(w io.Writer, R *gtcout.Record) error {
	if wantJSON(w) {
		return printJSON(w, R)
	}
	header := R.Header()
	keys := make([]string, 0, len(header))
	for k := range header {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	h := newTable("field", "value")
	for _, k := range keys {
		h.Row(k, num(header[k]))
	}
	a := newTable("array", "shape", "min", "max", "mean", "NaN")
	for _, name := range R.Names() {
		A, err := R.Array(name)
		if err != nil {
			return err
		}
		s := A.Summary()
		a.Row(name, fmt.Sprint(A.Shape()), num(s.Min), num(s.Max), num(s.Mean), strconv.Itoa(s.NaNs))
	}
	_, err := fmt.Fprintf(w, "%s %s\n%s\n%s\n%s\n", R.Kind, R.Source, h, a, R.Completeness)
	return err
}

func printTrajectory(w io.Writer, T *merge.Trajectory) error {
	if wantJSON(w) {
		return printJSON(w, T.Record())
	}
	t := newTable("slot", "tag", "first position", "last position")
	for i, tag := range T.Tags {
		first, last := "", ""
		if S := T.Slot(i); S != nil {
			r, _ := S.Dims()
			first = fmt.Sprint(S.RawRowView(0))
			last = fmt.Sprint(S.RawRowView(r - 1))
		}
		t.Row(strconv.Itoa(i), tag.String(), first, last)
	}
	_, err := fmt.Fprintf(w, "%d particles, %d steps, from %d files\n%s\n", T.Len(), T.NSteps(), len(T.Sources), t)
	return err
}

func printReports(w io.Writer, reports []run.Report) error {
	if wantJSON(w) {
		type report struct {
			Kind     gtcout.Kind   `json:"kind"`
			File     string        `json:"file"`
			Status   gtcout.Status `json:"status,omitempty"`
			Steps    int           `json:"stepCount"`
			Expected interface{}   `json:"expectedStepCount"`
			Tokens   int           `json:"tokens"`
			Error    string        `json:"error,omitempty"`
		}
		out := make([]report, 0, len(reports))
		for _, r := range reports {
			o := report{Kind: r.File.Kind, File: r.File.Name(), Tokens: r.Tokens}
			if r.Err != nil {
				o.Error = r.Err.Error()
			} else {
				o.Status = r.Completeness.Status
				o.Steps = r.Completeness.Observed
				if r.Completeness.HasExpected {
					o.Expected = r.Completeness.Expected
				}
			}
			out = append(out, o)
		}
		return printJSON(w, out)
	}
	t := newTable("kind", "file", "status", "steps", "expected", "error")
	for _, r := range reports {
		if r.Err != nil {
			t.Row(string(r.File.Kind), r.File.Name(), "", "", "", r.Err.Error())
			continue
		}
		c := r.Completeness
		exp := ""
		if c.HasExpected {
			exp = strconv.Itoa(c.Expected)
		}
		t.Row(string(r.File.Kind), r.File.Name(), string(c.Status), strconv.Itoa(c.Observed), exp, "")
	}
	_, err := fmt.Fprintln(w, t)
	return err
}
