/*
 * engine.go, part of gtcout
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

	"github.com/rmera/gtcout"
)

//Action tells the driver what happened with the last token fed to an Engine.
type Action int

const (
	NeedToken Action = iota //give me another token
	StepDone                //a step was committed
	Done                    //the grammar is over, do not feed more tokens
)

func (a Action) String() string {
	switch a {
	case NeedToken:
		return "need token"
	case StepDone:
		return "step done"
	case Done:
		return "done"
	}
	return fmt.Sprintf("action(%d)", int(a))
}

type state int

const (
	stateHeader state = iota
	stateBody
	stateDone
)

//Block is one committed step of a repeating grammar.
type Block struct {
	Index  int                  //0-based step number in the file
	Fields map[string]float64   //the step fields
	Values map[string][]float64 //the values of each array for this step. Only set when steps are discarded.
}

//Engine decodes one token stream following a Descriptor. It is fed one token at a
//time and never asks for more than the grammar needs, so the caller decides where the
//tokens come from. An Engine is not safe for concurrent use.
type Engine struct {
	d       *Descriptor
	sp      gtcout.Species
	discard bool
	log     *slog.Logger
	rec     *gtcout.Record
	header  gtcout.Header //includes the step fields of the current step
	err     error         //sticky

	state state
	phase int
	field int
	seg   int
	pos   int
	rep   int //pass over the segments of the layout

	layout      Layout
	stage       map[string][]float64 //values read for the current phase or step
	stageFields []float64
	series      map[string]*gtcout.Array
	declared    []ArraySpec //arrays of the repeating phase, as first declared

	consumed     int
	phaseTokens  int
	pending      int //tokens of the step being read
	headerTokens int
	blockSize    int
	steps        int
	block        Block
}

//NewEngine returns an engine ready for the first token of a stream.
//source names the stream in errors and in the resulting record.
func NewEngine(d *Descriptor, source string, opts Options) (*Engine, error) {
	if err := d.Validate(); err != nil {
		return nil, err
	}
	E := &Engine{
		d:       d,
		sp:      opts.Species,
		discard: opts.Discard,
		log:     slog.Default().With("kind", string(d.Kind), "file", source),
		rec:     gtcout.NewRecord(d.Kind, source),
		header:  gtcout.Header{},
		stage:   map[string][]float64{},
		series:  map[string]*gtcout.Array{},
	}
	E.enterPhase(0)
	if _, err := E.settle(); err != nil {
		return nil, err
	}
	return E, nil
}

func (E *Engine) repeating() bool {
	return E.d.Repeat && E.phase == len(E.d.Phases)-1
}

func (E *Engine) current() *Phase {
	return &E.d.Phases[E.phase]
}

func (E *Engine) fail(msg, tok string, err error) error {
	E.err = &DecodeError{Kind: E.d.Kind, File: E.rec.Source, Offset: E.consumed, Token: tok, message: msg, err: err}
	return E.err
}

func (E *Engine) enterPhase(i int) {
	E.phase = i
	E.field = 0
	E.seg, E.pos, E.rep = 0, 0, 0
	E.phaseTokens = 0
	E.state = stateHeader
	if !E.repeating() || E.stageFields != nil {
		return
	}
	E.headerTokens = E.consumed
	fields := E.current().Fields
	E.stageFields = make([]float64, len(fields))
	if E.discard {
		return
	}
	for _, f := range fields {
		A := gtcout.NewSeries(f.Name)
		E.series[f.Name] = A
		E.rec.Add(A)
	}
}

//enterBody is called once all the fields of the current phase have been read.
func (E *Engine) enterBody() error {
	p := E.current()
	if p.Derive != nil && (!E.repeating() || len(p.Fields) > 0 || E.steps == 0) {
		if err := p.Derive(E.header, E.sp, E.log); err != nil {
			return E.fail(BadLayout, "", err)
		}
		if !E.repeating() {
			for k, v := range E.header {
				E.rec.SetField(k, v)
			}
		}
	}
	if E.repeating() && len(p.Fields) == 0 && E.steps > 0 {
		//Same layout for every step, already set.
		E.state, E.seg, E.pos, E.rep = stateBody, 0, 0, 0
		return nil
	}
	var L Layout
	if p.Layout != nil {
		var err error
		if L, err = p.Layout(E.header, E.sp); err != nil {
			return E.fail(BadLayout, "", err)
		}
	}
	if err := L.check(E.repeating()); err != nil {
		return E.fail(BadLayout, "", err)
	}
	E.layout = L
	E.state, E.seg, E.pos, E.rep = stateBody, 0, 0, 0
	if !E.repeating() {
		//The arrays are built when the phase is complete, so a header declaring
		//huge sizes costs nothing until the tokens are really there.
		return nil
	}
	if len(p.Fields) == 0 {
		E.blockSize = L.Tokens()
		if E.blockSize == 0 {
			return E.fail(BadLayout, "", fmt.Errorf("a step holds no tokens"))
		}
	}
	if E.declared == nil {
		E.declared = L.Arrays
		if E.declared == nil {
			E.declared = []ArraySpec{}
		}
		if !E.discard {
			for _, a := range L.Arrays {
				A := gtcout.NewSeries(a.Name, a.Shape...)
				if err := E.rec.Add(A); err != nil {
					return E.fail(BadLayout, "", err)
				}
				E.series[a.Name] = A
			}
		}
		return nil
	}
	if err := sameArrays(E.declared, L.Arrays); err != nil {
		return E.fail(BadLayout, "", err)
	}
	return nil
}

func sameArrays(a, b []ArraySpec) error {
	if len(a) != len(b) {
		return fmt.Errorf("step declares %d arrays, the first step declared %d", len(b), len(a))
	}
	for i := range a {
		if a[i].Name != b[i].Name || a[i].Ragged != b[i].Ragged || fmt.Sprint(a[i].Shape) != fmt.Sprint(b[i].Shape) {
			return fmt.Errorf("step declares array %s %v, the first step declared %s %v", b[i].Name, b[i].Shape, a[i].Name, a[i].Shape)
		}
	}
	return nil
}

func (E *Engine) commit() {
	fields := E.current().Fields
	B := Block{Index: E.steps, Fields: make(map[string]float64, len(fields))}
	for i, f := range fields {
		B.Fields[f.Name] = E.stageFields[i]
	}
	if E.discard {
		B.Values = make(map[string][]float64, len(E.declared))
		for _, a := range E.declared {
			B.Values[a.Name] = append([]float64(nil), E.stage[a.Name]...)
		}
	} else {
		for i, f := range fields {
			E.series[f.Name].Append(E.stageFields[i])
		}
		for _, a := range E.declared {
			E.series[a.Name].Append(E.stage[a.Name]...)
		}
	}
	for k := range E.stage {
		E.stage[k] = E.stage[k][:0]
	}
	E.block = B
	E.steps++
	E.pending = 0
}

//adopt moves the values read in a fixed phase into new arrays of the record.
func (E *Engine) adopt() error {
	for _, a := range E.layout.Arrays {
		A, err := gtcout.NewArrayFrom(a.Name, E.stage[a.Name], a.Shape...)
		if err == nil {
			err = E.rec.Add(A)
		}
		if err != nil {
			return E.fail(BadLayout, "", err)
		}
	}
	E.stage = map[string][]float64{}
	return nil
}

//finishPhase is called when the body of the current phase has been read.
func (E *Engine) finishPhase() (Action, error) {
	if E.repeating() {
		E.commit()
		E.enterPhase(E.phase)
		return StepDone, nil
	}
	if err := E.adopt(); err != nil {
		return NeedToken, err
	}
	if E.phase == len(E.d.Phases)-1 {
		E.state = stateDone
		return Done, nil
	}
	E.enterPhase(E.phase + 1)
	return NeedToken, nil
}

//settle moves the engine past everything that needs no tokens: phases without
//fields, empty segments, finished phases.
func (E *Engine) settle() (Action, error) {
	act := NeedToken
	for {
		switch E.state {
		case stateDone:
			return Done, nil
		case stateHeader:
			if E.field < len(E.current().Fields) {
				return act, nil
			}
			if err := E.enterBody(); err != nil {
				return act, err
			}
		case stateBody:
			for E.seg < len(E.layout.Segments) && E.pos >= E.layout.Segments[E.seg].Len() {
				E.seg++
				E.pos = 0
				if E.seg == len(E.layout.Segments) && E.rep+1 < E.layout.passes() {
					E.seg = 0
					E.rep++
				}
			}
			if E.seg < len(E.layout.Segments) {
				return act, nil
			}
			a, err := E.finishPhase()
			if err != nil {
				return act, err
			}
			if a != NeedToken {
				act = a
			}
		}
	}
}

func (E *Engine) write(name string, v float64) {
	E.stage[name] = append(E.stage[name], v)
}

//Feed gives the next token of the stream to the engine. It returns StepDone when the
//token completed a step, Done when the grammar needs no more tokens, and NeedToken
//otherwise. A token that does not parse as the type the grammar expects is a fatal error,
//and so is any token fed after Done.
func (E *Engine) Feed(tok string) (Action, error) {
	if E.err != nil {
		return NeedToken, E.err
	}
	if E.state == stateDone {
		E.consumed++
		return Done, E.fail(TrailingData, tok, nil)
	}
	E.consumed++
	E.phaseTokens++
	if E.repeating() {
		E.pending++
	}
	switch E.state {
	case stateHeader:
		f := E.current().Fields[E.field]
		v, err := parse(tok, f.Type)
		if err != nil {
			return NeedToken, E.fail(Malformed, tok, fmt.Errorf("field %s should be %s", f.Name, f.Type))
		}
		E.header[f.Name] = v
		if E.repeating() {
			E.stageFields[E.field] = v
		} else {
			E.rec.SetField(f.Name, v)
		}
		E.field++
	case stateBody:
		s := &E.layout.Segments[E.seg]
		v, err := parse(tok, s.Type)
		if err != nil {
			return NeedToken, E.fail(Malformed, tok, fmt.Errorf("value for %s should be %s", s.Targets[E.pos%len(s.Targets)], s.Type))
		}
		E.write(s.Targets[E.pos%len(s.Targets)], v)
		E.pos++
	}
	return E.settle()
}

//End tells the engine that the stream is over. A step left unfinished is dropped.
//Ending inside a fixed phase is an error, unless the phase is optional and had not
//started yet.
func (E *Engine) End() error {
	if E.err != nil {
		return E.err
	}
	switch {
	case E.state == stateDone:
		return nil
	case E.repeating():
		if E.pending > 0 {
			E.log.Debug("dropping unfinished step", "tokens", E.pending, "step", E.steps)
		}
	case E.phaseTokens == 0 && E.current().Optional:
	case E.phase == 0 && E.state == stateHeader:
		return E.fail(Truncated, "", fmt.Errorf("stream ended inside the header"))
	default:
		return E.fail(Truncated, "", fmt.Errorf("stream ended in phase %d", E.phase+1))
	}
	E.state = stateDone
	return nil
}

//Finished reports whether the engine wants no more tokens.
func (E *Engine) Finished() bool { return E.state == stateDone }

//Steps returns the number of committed steps.
func (E *Engine) Steps() int { return E.steps }

//Consumed returns the number of tokens fed to the engine.
func (E *Engine) Consumed() int { return E.consumed }

//HeaderTokens returns the number of tokens read before the first step.
func (E *Engine) HeaderTokens() int { return E.headerTokens }

//BlockSize returns the number of tokens in one step, or 0 if the size changes from step to step
//or the grammar does not repeat.
func (E *Engine) BlockSize() int { return E.blockSize }

//Pending returns the number of tokens of the step being read, which will be dropped if
//the stream ends now.
func (E *Engine) Pending() int { return E.pending }

//Block returns the last committed step.
func (E *Engine) Block() Block { return E.block }

//Descriptor returns the grammar followed by the engine.
func (E *Engine) Descriptor() *Descriptor { return E.d }

//Header returns the header read so far.
func (E *Engine) Header() gtcout.Header { return E.rec.Header() }

//Expected returns the step count declared by the header, if the grammar has one
//and it has been read.
func (E *Engine) Expected() (int, bool) {
	if E.d.Expected == "" {
		return 0, false
	}
	v, err := E.rec.Header().Int(E.d.Expected)
	if err != nil {
		return 0, false
	}
	return v, true
}

//Record returns the record being filled. It is not frozen.
func (E *Engine) Record() *gtcout.Record { return E.rec }
