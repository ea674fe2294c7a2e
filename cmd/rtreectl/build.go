package main

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/peterstace/rtree/v2"
	"github.com/peterstace/rtree/v2/internal/xlog"
)

// buildCmd indexes the boxes of a CSV file and writes the tree
var buildCmd = &cobra.Command{
	Use:   "build",
	Short: "Build a tree from a CSV file of id,mins...,maxes... rows",
	RunE: func(cmd *cobra.Command, args []string) error {
		input, _ := cmd.Flags().GetString("input")
		out, _ := cmd.Flags().GetString("out")
		bulk, _ := cmd.Flags().GetBool("bulk")
		if input == "" || out == "" {
			return fmt.Errorf("--input and --out are required")
		}

		f, err := os.Open(filepath.Clean(input))
		if err != nil {
			return err
		}
		defer f.Close()

		entries, err := readEntries(f)
		if err != nil {
			return fmt.Errorf("%s: %w", input, err)
		}
		if len(entries) == 0 {
			return fmt.Errorf("%s: no rows", input)
		}

		cfg, err := baseConfig(entries[0].BBox.Dim())
		if err != nil {
			return err
		}
		t, err := buildTree(cfg, entries, bulk)
		if err != nil {
			return err
		}
		if err := rtree.WriteFile(out, t, rtree.StringCodec{}); err != nil {
			return err
		}

		logger := xlog.New("rtreectl")
		logger.Info().
			Str("file", out).
			Int("entries", t.Len()).
			Int("height", t.Height()).
			Str("split", cfg.Split.String()).
			Msg("tree built")
		return nil
	},
}

func init() {
	buildCmd.Flags().String("input", "", "CSV file to index")
	buildCmd.Flags().String("out", "", "Tree file to write")
	buildCmd.Flags().Bool("bulk", false, "Pack the tree bottom up instead of inserting one by one")
	rootCmd.AddCommand(buildCmd)
}

func buildTree(cfg rtree.Config, entries []rtree.Entry, bulk bool) (*rtree.Tree, error) {
	if bulk {
		return rtree.BulkLoad(cfg, entries)
	}
	t, err := rtree.New(cfg)
	if err != nil {
		return nil, err
	}
	for _, e := range entries {
		if err := t.Insert(e.BBox, e.Object); err != nil {
			return nil, fmt.Errorf("insert %v: %w", e.Object, err)
		}
	}
	return t, nil
}

// readEntries parses rows of the form id,min1,...,minN,max1,...,maxN. Lines
// starting with # are skipped.
func readEntries(r io.Reader) ([]rtree.Entry, error) {
	cr := csv.NewReader(r)
	cr.Comment = '#'
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	var entries []rtree.Entry
	for {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			return entries, nil
		}
		if err != nil {
			return nil, err
		}
		line, _ := cr.FieldPos(0)
		if len(rec) < 3 {
			return nil, fmt.Errorf("line %d: want an id and at least two coordinates", line)
		}
		bb, err := parseCoords(rec[1:])
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		if len(entries) > 0 && bb.Dim() != entries[0].BBox.Dim() {
			return nil, fmt.Errorf("line %d: %w", line, rtree.ErrDimensionMismatch)
		}
		entries = append(entries, rtree.Entry{BBox: bb, Object: rec[0]})
	}
}
