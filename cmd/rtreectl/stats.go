package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

// statsCmd summarises the shape of a tree file
var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Print entry count, height and node fill of a tree",
	RunE: func(cmd *cobra.Command, args []string) error {
		path, _ := cmd.Flags().GetString("tree")
		if path == "" {
			return fmt.Errorf("--tree is required")
		}
		t, err := loadTree(path)
		if err != nil {
			return err
		}

		cfg := t.Config()
		s := t.Stats()
		w := cmd.OutOrStdout()
		fmt.Fprintf(w, "dims:      %d\n", cfg.Dims)
		fmt.Fprintf(w, "fan-out:   [%d, %d]\n", cfg.MinEntries, cfg.MaxEntries)
		fmt.Fprintf(w, "split:     %s\n", cfg.Split)
		fmt.Fprintf(w, "entries:   %d\n", s.Entries)
		fmt.Fprintf(w, "height:    %d\n", s.Height)
		fmt.Fprintf(w, "nodes:     %d\n", s.Nodes)
		fmt.Fprintf(w, "leaves:    %d\n", s.Leaves)
		fmt.Fprintf(w, "mean fill: %.1f%%\n", 100*s.MeanFill)
		if ext, ok := t.Extent(); ok {
			fmt.Fprintf(w, "extent:    %v\n", ext)
		}
		return nil
	},
}

func init() {
	statsCmd.Flags().String("tree", "", "Tree file")
	rootCmd.AddCommand(statsCmd)
}
