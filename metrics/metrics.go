/*
 * metrics.go, part of gtcout
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

//Package metrics exports the progress of a run as Prometheus metrics, so a running
//simulation can be watched from a node exporter textfile collector.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/rmera/gtcout"
	"github.com/rmera/gtcout/run"
)

//Collector holds the metrics of one run, in its own registry.
type Collector struct {
	reg *prometheus.Registry

	ObservedSteps *prometheus.GaugeVec
	ExpectedSteps *prometheus.GaugeVec
	FileComplete  *prometheus.GaugeVec
	Tokens        *prometheus.CounterVec
	DecodeErrors  *prometheus.CounterVec
	DecodeSeconds *prometheus.HistogramVec
}

//New returns a Collector with all its metrics registered.
func New() *Collector {
	reg := prometheus.NewRegistry()
	f := promauto.With(reg)
	return &Collector{
		reg: reg,
		ObservedSteps: f.NewGaugeVec(prometheus.GaugeOpts{
			Name: "gtcout_observed_steps",
			Help: "Whole steps found in the file",
		}, []string{"kind", "file"}),
		ExpectedSteps: f.NewGaugeVec(prometheus.GaugeOpts{
			Name: "gtcout_expected_steps",
			Help: "Steps declared by the header of the file",
		}, []string{"kind", "file"}),
		FileComplete: f.NewGaugeVec(prometheus.GaugeOpts{
			Name: "gtcout_file_complete",
			Help: "1 if the file holds all the steps it declares, 0 otherwise",
		}, []string{"kind", "file"}),
		Tokens: f.NewCounterVec(prometheus.CounterOpts{
			Name: "gtcout_tokens_total",
			Help: "Tokens read, by file kind",
		}, []string{"kind"}),
		DecodeErrors: f.NewCounterVec(prometheus.CounterOpts{
			Name: "gtcout_decode_errors_total",
			Help: "Files that failed to decode, by file kind",
		}, []string{"kind"}),
		DecodeSeconds: f.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "gtcout_decode_duration_seconds",
			Help:    "Time spent decoding one file",
			Buckets: prometheus.ExponentialBuckets(0.001, 4, 10), // 1ms to ~4min
		}, []string{"kind"}),
	}
}

//Registry returns the registry holding the metrics.
func (C *Collector) Registry() *prometheus.Registry { return C.reg }

//Observe updates the metrics with the outcome of decoding one file.
func (C *Collector) Observe(r run.Report) {
	kind, file := string(r.File.Kind), r.File.Name()
	C.DecodeSeconds.WithLabelValues(kind).Observe(r.Elapsed.Seconds())
	C.Tokens.WithLabelValues(kind).Add(float64(r.Tokens))
	if r.Err != nil {
		C.DecodeErrors.WithLabelValues(kind).Inc()
		C.FileComplete.DeleteLabelValues(kind, file)
		C.ObservedSteps.DeleteLabelValues(kind, file)
		C.ExpectedSteps.DeleteLabelValues(kind, file)
		return
	}
	c := r.Completeness
	C.ObservedSteps.WithLabelValues(kind, file).Set(float64(c.Observed))
	if c.HasExpected {
		C.ExpectedSteps.WithLabelValues(kind, file).Set(float64(c.Expected))
	} else {
		C.ExpectedSteps.DeleteLabelValues(kind, file)
	}
	complete := 0.0
	if c.Status == gtcout.Complete {
		complete = 1
	}
	C.FileComplete.WithLabelValues(kind, file).Set(complete)
}

//WriteTextfile writes all the metrics to fname in the Prometheus text format.
//The file is replaced atomically.
func (C *Collector) WriteTextfile(fname string) error {
	return prometheus.WriteToTextfile(fname, C.reg)
}
