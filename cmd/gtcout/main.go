/*
 * main.go, part of gtcout
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

//gtcout decodes the output files of a gyrokinetic simulation run, tells whether
//they are complete, and merges the per-process particle tracking files.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/rmera/gtcout"
)

var (
	logLevel   string
	jsonOut    bool
	speciesArg string
	dims       int

	rootCmd = &cobra.Command{
		Use:           "gtcout",
		Short:         "Decode and check the output files of a simulation run",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return setupLogging(logLevel)
		},
	}
)

func init() {
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "debug, info, warn or error")
	rootCmd.PersistentFlags().BoolVar(&jsonOut, "json", false, "print JSON even on a terminal")
	rootCmd.PersistentFlags().StringVar(&speciesArg, "species", "ion", "loaded species, comma separated (ion,electron,fastion,fastelectron)")
	rootCmd.PersistentFlags().IntVar(&dims, "dims", 3, "coordinates per particle in tracking files")
	rootCmd.AddCommand(kindsCmd, decodeCmd, mergeCmd, inspectCmd, watchCmd)
}

func setupLogging(level string) error {
	var l slog.Level
	switch strings.ToLower(level) {
	case "debug":
		l = slog.LevelDebug
	case "info", "":
		l = slog.LevelInfo
	case "warn", "warning":
		l = slog.LevelWarn
	case "error":
		l = slog.LevelError
	default:
		return fmt.Errorf("unknown log level %q", level)
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: l})))
	return nil
}

//species returns the species given in the command line.
func species() (gtcout.Species, error) {
	return gtcout.ParseSpecies(speciesArg)
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "gtcout:", err)
		stop()
		os.Exit(1)
	}
}
