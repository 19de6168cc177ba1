/*
 * watch.go, part of gtcout
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
	"context"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"

	"github.com/rmera/gtcout/metrics"
	"github.com/rmera/gtcout/run"
)

var (
	textfile string
	settle   time.Duration

	watchCmd = &cobra.Command{
		Use:   "watch --config RUN.yaml",
		Short: "Inspect the files of a running simulation again each time they change",
		Args:  cobra.NoArgs,
		RunE:  runWatch,
	}
)

func init() {
	watchCmd.Flags().StringVarP(&textfile, "textfile", "t", "", "write Prometheus metrics to this file after each pass")
	watchCmd.Flags().DurationVar(&settle, "settle", 2*time.Second, "wait this long after the last change before inspecting")
}

//watched returns the files to track for changes, and the directories holding them.
func watched(files []run.File) (map[string]bool, []string) {
	names := make(map[string]bool)
	dirs := make(map[string]bool)
	var list []string
	add := func(p string) {
		p = filepath.Clean(p)
		names[p] = true
		d := filepath.Dir(p)
		if !dirs[d] {
			dirs[d] = true
			list = append(list, d)
		}
	}
	for _, f := range files {
		if f.Path != "" {
			add(f.Path)
		}
		for _, p := range f.Paths {
			add(p)
		}
	}
	return names, list
}

func runWatch(cmd *cobra.Command, args []string) error {
	files, opts, err := loadRun(cmd)
	if err != nil {
		return err
	}
	ctx := cmd.Context()
	C := metrics.New()
	pass := func() {
		reports := run.Inspect(ctx, files, opts)
		for _, r := range reports {
			C.Observe(r)
		}
		if err := printReports(cmd.OutOrStdout(), reports); err != nil {
			slog.Error("printing reports", "error", err)
		}
		if textfile != "" {
			if err := C.WriteTextfile(textfile); err != nil {
				slog.Error("writing metrics", "file", textfile, "error", err)
			}
		}
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer watcher.Close()
	names, dirs := watched(files)
	for _, d := range dirs {
		if err := watcher.Add(d); err != nil {
			return err
		}
	}
	pass()
	return watchLoop(ctx, watcher, names, settle, pass)
}

//watchLoop calls pass once the watched files stop changing for the settle time,
//until ctx is done.
func watchLoop(ctx context.Context, w *fsnotify.Watcher, names map[string]bool, settle time.Duration, pass func()) error {
	timer := time.NewTimer(settle)
	timer.Stop()
	defer timer.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-w.Events:
			if !ok {
				return nil
			}
			if !names[filepath.Clean(event.Name)] {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			slog.Debug("file changed", "file", event.Name, "op", event.Op.String())
			timer.Reset(settle)
		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			slog.Warn("watcher error", "error", err)
		case <-timer.C:
			pass()
		}
	}
}
