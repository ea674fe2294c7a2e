package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/peterstace/rtree/v2"
)

// searchCmd prints the entries of a tree that meet a query box
var searchCmd = &cobra.Command{
	Use:   "search",
	Short: "Print entries intersecting (or within) a box",
	RunE: func(cmd *cobra.Command, args []string) error {
		path, _ := cmd.Flags().GetString("tree")
		box, _ := cmd.Flags().GetString("box")
		within, _ := cmd.Flags().GetBool("within")
		limit, _ := cmd.Flags().GetInt("limit")
		if path == "" || box == "" {
			return fmt.Errorf("--tree and --box are required")
		}

		query, err := parseBox(box)
		if err != nil {
			return fmt.Errorf("--box: %w", err)
		}
		t, err := loadTree(path)
		if err != nil {
			return err
		}
		n, err := search(cmd.OutOrStdout(), t, query, within, limit)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%d matches\n", n)
		return nil
	},
}

func init() {
	searchCmd.Flags().String("tree", "", "Tree file")
	searchCmd.Flags().String("box", "", "Query box as min1,...,minN,max1,...,maxN")
	searchCmd.Flags().Bool("within", false, "Only report entries fully inside the box")
	searchCmd.Flags().Int("limit", 0, "Stop after this many matches (0 for all)")
	rootCmd.AddCommand(searchCmd)
}

// search writes one line per match and returns the number of matches.
func search(w io.Writer, t *rtree.Tree, query rtree.BBox, within bool, limit int) (int, error) {
	var count rtree.Counter
	var v rtree.Visitor = rtree.VisitorFunc(func(e rtree.Entry) error {
		fmt.Fprintf(w, "%v\t%v\n", e.Object, e.BBox)
		return count.Visit(e)
	})
	if limit > 0 {
		v = rtree.Limit(limit, v)
	}
	if within {
		v = rtree.Within(query, v)
	}
	if err := t.Search(query, v); err != nil {
		return 0, err
	}
	return count.N, nil
}
