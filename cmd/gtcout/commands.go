/*
 * commands.go, part of gtcout
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
	"fmt"

	"github.com/spf13/cobra"

	"github.com/rmera/gtcout"
	"github.com/rmera/gtcout/config"
	"github.com/rmera/gtcout/grammar"
	"github.com/rmera/gtcout/merge"
	"github.com/rmera/gtcout/run"
)

var (
	kindArg    string
	processes  int
	configFile string
	workers    int

	kindsCmd = &cobra.Command{
		Use:   "kinds",
		Short: "List the file kinds that can be decoded",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return printKinds(cmd.OutOrStdout(), grammar.Kinds())
		},
	}

	decodeCmd = &cobra.Command{
		Use:   "decode --kind KIND FILE",
		Short: "Decode one output file and tell whether it is complete",
		Args:  cobra.ExactArgs(1),
		RunE:  runDecode,
	}

	mergeCmd = &cobra.Command{
		Use:   "merge --processes N FILE...",
		Short: "Merge the per-process particle tracking files into one trajectory",
		Args:  cobra.MinimumNArgs(1),
		RunE:  runMerge,
	}

	inspectCmd = &cobra.Command{
		Use:   "inspect --config RUN.yaml",
		Short: "Decode all the files of a run and report their completeness",
		Args:  cobra.NoArgs,
		RunE:  runInspect,
	}
)

func init() {
	decodeCmd.Flags().StringVarP(&kindArg, "kind", "k", "", "kind of the file (see the kinds command)")
	decodeCmd.MarkFlagRequired("kind")
	mergeCmd.Flags().IntVarP(&processes, "processes", "n", 0, "number of processes of the run, all their files must be given")
	mergeCmd.MarkFlagRequired("processes")
	for _, c := range []*cobra.Command{inspectCmd, watchCmd} {
		c.Flags().StringVarP(&configFile, "config", "c", "", "run configuration file")
		c.MarkFlagRequired("config")
		c.Flags().IntVarP(&workers, "workers", "w", 0, "files decoded at the same time, overrides the configuration")
	}
}

func runDecode(cmd *cobra.Command, args []string) error {
	kind, err := gtcout.ParseKind(kindArg)
	if err != nil {
		return err
	}
	sp, err := species()
	if err != nil {
		return err
	}
	R, err := grammar.DecodeFile(cmd.Context(), args[0], kind, grammar.Options{Species: sp, Dims: dims})
	if err != nil {
		return err
	}
	return printRecord(cmd.OutOrStdout(), R)
}

func runMerge(cmd *cobra.Command, args []string) error {
	T, err := merge.MergeFiles(cmd.Context(), args, merge.Options{Expected: processes, Dims: dims})
	if err != nil {
		return err
	}
	return printTrajectory(cmd.OutOrStdout(), T)
}

//loadRun reads the configuration and applies the command line overrides to it.
func loadRun(cmd *cobra.Command) ([]run.File, run.Options, error) {
	cfg, err := config.Load(configFile)
	if err != nil {
		return nil, run.Options{}, err
	}
	files, opts := run.FromConfig(cfg)
	if cmd.Flags().Changed("workers") {
		opts.Workers = workers
	}
	if cmd.Flags().Changed("dims") {
		opts.Dims = dims
	}
	if cmd.Flags().Changed("species") {
		if opts.Species, err = species(); err != nil {
			return nil, run.Options{}, err
		}
	}
	return files, opts, nil
}

func runInspect(cmd *cobra.Command, args []string) error {
	files, opts, err := loadRun(cmd)
	if err != nil {
		return err
	}
	reports := run.Inspect(cmd.Context(), files, opts)
	if err := printReports(cmd.OutOrStdout(), reports); err != nil {
		return err
	}
	failed := 0
	for _, r := range reports {
		if r.Err != nil {
			failed++
		}
	}
	if failed > 0 {
		return fmt.Errorf("%d of %d files could not be decoded", failed, len(reports))
	}
	return nil
}
