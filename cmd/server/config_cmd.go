package main

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/warp/incentive-engine/factory"
	"github.com/warp/incentive-engine/generic"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Inspect incentive parameters",
	Long:  "Commands for resolving parameters through the default, system and org layers.",
}

// -- config resolve --

var configResolveCmd = &cobra.Command{
	Use:   "resolve <path>",
	Short: "Print the effective value of one parameter",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		snap, err := snapshotFromFlags(cmd)
		if err != nil {
			return err
		}
		v, src, ok := snap.Lookup(args[0])
		if !ok {
			return &generic.ConfigMissingError{Path: args[0]}
		}
		return writeIndented(cmd.OutOrStdout(), map[string]any{
			"path":       args[0],
			"value":      factory.ValueDocument(v),
			"source":     src,
			"overridden": snap.IsOverridden(args[0]),
		})
	},
}

// -- config list --

var configListCmd = &cobra.Command{
	Use:   "list [prefix]",
	Short: "List effective parameters with their source layer",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		snap, err := snapshotFromFlags(cmd)
		if err != nil {
			return err
		}
		prefix := ""
		if len(args) == 1 {
			prefix = args[0]
		}
		formatEffective(cmd.OutOrStdout(), snap.Effective(), prefix)
		return nil
	},
}

// -- config dump --

var configDumpCmd = &cobra.Command{
	Use:   "dump",
	Short: "Print the default layer as a JSON document",
	RunE: func(cmd *cobra.Command, _ []string) error {
		data, err := factory.MarshalLayer(factory.DefaultLayer())
		if err != nil {
			return err
		}
		_, err = fmt.Fprintln(cmd.OutOrStdout(), string(data))
		return err
	},
}

func init() {
	for _, c := range []*cobra.Command{configResolveCmd, configListCmd} {
		c.Flags().String("system", "", "system layer file")
		c.Flags().String("org", "", "org layer file")
	}
	configCmd.AddCommand(configResolveCmd)
	configCmd.AddCommand(configListCmd)
	configCmd.AddCommand(configDumpCmd)
	rootCmd.AddCommand(configCmd)
}

func snapshotFromFlags(cmd *cobra.Command) (*generic.Snapshot, error) {
	systemFile, _ := cmd.Flags().GetString("system")
	orgFile, _ := cmd.Flags().GetString("org")
	return loadSnapshot(systemFile, orgFile)
}

func formatEffective(w io.Writer, values []generic.EffectiveValue, prefix string) {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "PATH\tVALUE\tSOURCE\tOVERRIDDEN")
	for _, ev := range values {
		if prefix != "" && ev.Path != prefix && !strings.HasPrefix(ev.Path, prefix+".") {
			continue
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%t\n", ev.Path, formatValue(ev.Value), ev.Source, ev.Overridden)
	}
	tw.Flush() //nolint:errcheck
}

func formatValue(v generic.Value) string {
	if !v.IsLadder {
		return v.Scalar.String()
	}
	parts := make([]string, len(v.Ladder))
	for i, d := range v.Ladder {
		parts[i] = d.String()
	}
	return "[" + strings.Join(parts, ", ") + "]"
}
