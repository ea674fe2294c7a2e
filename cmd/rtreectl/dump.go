package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/peterstace/rtree/v2"
)

var (
	nodeStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#4589ff")).Bold(true)
	leafStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#3ddbd9"))
	boxStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#8d8d8d"))
	entryStyle = lipgloss.NewStyle().Italic(true)
)

// dumpCmd prints every node of a tree as an indented outline
var dumpCmd = &cobra.Command{
	Use:   "dump",
	Short: "Print the node structure of a tree",
	RunE: func(cmd *cobra.Command, args []string) error {
		path, _ := cmd.Flags().GetString("tree")
		if path == "" {
			return fmt.Errorf("--tree is required")
		}
		t, err := loadTree(path)
		if err != nil {
			return err
		}
		dump(cmd.OutOrStdout(), t)
		return nil
	},
}

func init() {
	dumpCmd.Flags().String("tree", "", "Tree file")
	rootCmd.AddCommand(dumpCmd)
}

func dump(w io.Writer, t *rtree.Tree) {
	root, ok := t.Root()
	if !ok {
		fmt.Fprintln(w, "(empty)")
		return
	}
	dumpNode(w, root, 0)
}

func dumpNode(w io.Writer, n rtree.Node, depth int) {
	indent := strings.Repeat("  ", depth)
	if n.IsLeaf() {
		fmt.Fprintf(w, "%s%s %s\n", indent, leafStyle.Render(fmt.Sprintf("leaf (%d)", n.ChildCount())), boxStyle.Render(n.Boundary().String()))
		for i := 0; i < n.ChildCount(); i++ {
			e := n.Entry(i)
			fmt.Fprintf(w, "%s  %s %s\n", indent, entryStyle.Render(fmt.Sprint(e.Object)), boxStyle.Render(e.BBox.String()))
		}
		return
	}
	fmt.Fprintf(w, "%s%s %s\n", indent, nodeStyle.Render(fmt.Sprintf("node L%d (%d)", n.Level(), n.ChildCount())), boxStyle.Render(n.Boundary().String()))
	for i := 0; i < n.ChildCount(); i++ {
		dumpNode(w, n.Child(i), depth+1)
	}
}
