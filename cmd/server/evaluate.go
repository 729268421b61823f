package main

import (
	"fmt"
	"io"
	"os"
	"sort"
	"text/tabwriter"

	"github.com/goccy/go-json"
	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/warp/incentive-engine/engine"
	"github.com/warp/incentive-engine/factory"
	"github.com/warp/incentive-engine/generic"
)

// -- evaluate --

var evaluateCmd = &cobra.Command{
	Use:   "evaluate",
	Short: "Evaluate an input document offline",
	Long:  "Evaluates a JSON or YAML input document against the default parameters and optional system and org layer files, then prints the report.",
	RunE: func(cmd *cobra.Command, _ []string) error {
		input, _ := cmd.Flags().GetString("input")
		systemFile, _ := cmd.Flags().GetString("system")
		orgFile, _ := cmd.Flags().GetString("org")
		summary, _ := cmd.Flags().GetBool("summary")

		snap, err := loadSnapshot(systemFile, orgFile)
		if err != nil {
			return err
		}
		data, err := os.ReadFile(input)
		if err != nil {
			return eris.Wrapf(err, "read input %s", input)
		}
		in, err := factory.ParseInput(data, factory.FormatFromPath(input))
		if err != nil {
			return err
		}

		report, err := engine.Default().Evaluate(cmd.Context(), in, snap)
		if err != nil {
			return err
		}
		zap.L().Debug("evaluation complete",
			zap.String("input", input),
			zap.String("total", report.Total.String()),
			zap.Int("warnings", len(report.Warnings)),
			zap.Int("failures", len(report.Failures)),
		)

		if summary {
			formatSummary(cmd.OutOrStdout(), report)
			return nil
		}
		return writeIndented(cmd.OutOrStdout(), report)
	},
}

func init() {
	evaluateCmd.Flags().String("input", "", "input document (.json, .yaml)")
	evaluateCmd.Flags().String("system", "", "system layer file")
	evaluateCmd.Flags().String("org", "", "org layer file")
	evaluateCmd.Flags().Bool("summary", false, "print a table of premiums instead of the JSON report")
	_ = evaluateCmd.MarkFlagRequired("input")
	rootCmd.AddCommand(evaluateCmd)
}

// loadSnapshot builds a snapshot from optional layer files. An empty path
// contributes an empty layer.
func loadSnapshot(systemFile, orgFile string) (*generic.Snapshot, error) {
	system, err := loadLayerFile(generic.LayerSystem, systemFile)
	if err != nil {
		return nil, err
	}
	org, err := loadLayerFile(generic.LayerOrg, orgFile)
	if err != nil {
		return nil, err
	}
	return factory.Snapshot(system, org), nil
}

func loadLayerFile(name generic.LayerName, path string) (generic.Layer, error) {
	if path == "" {
		return generic.NewLayer(name), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return generic.Layer{}, eris.Wrapf(err, "read %s layer %s", name, path)
	}
	layer, err := factory.ParseLayer(name, data, factory.FormatFromPath(path))
	if err != nil {
		return generic.Layer{}, fmt.Errorf("%s layer %s: %w", name, path, err)
	}
	return layer, nil
}

func writeIndented(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// formatSummary prints per-POS premiums, track totals and issues.
func formatSummary(w io.Writer, r *engine.Report) {
	tracks := make([]generic.TrackID, 0, len(r.TrackTotals))
	for t := range r.TrackTotals {
		tracks = append(tracks, t)
	}
	sort.Slice(tracks, func(i, j int) bool { return tracks[i] < tracks[j] })

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintf(tw, "POS\tENTITY")
	for _, t := range tracks {
		fmt.Fprintf(tw, "\t%s", t)
	}
	fmt.Fprintln(tw, "\tPREMIUM")
	for _, sp := range r.SellPoints {
		fmt.Fprintf(tw, "%s\t%s", sp.Code, sp.LegalEntity)
		for _, t := range tracks {
			fmt.Fprintf(tw, "\t%s", sp.ByTrack[t].StringFixed(2))
		}
		fmt.Fprintf(tw, "\t%s\n", sp.Premium.StringFixed(2))
	}
	fmt.Fprintf(tw, "TOTAL\t")
	for _, t := range tracks {
		fmt.Fprintf(tw, "\t%s", r.TrackTotals[t].StringFixed(2))
	}
	fmt.Fprintf(tw, "\t%s\n", r.Total.StringFixed(2))
	tw.Flush() //nolint:errcheck

	for _, is := range r.Warnings {
		fmt.Fprintf(w, "warning: %s %s: %s\n", is.Track, is.Scope, is.Message)
	}
	for _, is := range r.Failures {
		fmt.Fprintf(w, "failure: %s %s: %s\n", is.Track, is.Scope, is.Message)
	}
}
