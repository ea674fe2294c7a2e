package main

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/google/shlex"
	"github.com/spf13/cobra"

	"github.com/peterstace/rtree/v2"
	"github.com/peterstace/rtree/v2/internal/xlog"
)

// execCmd runs a script of tree commands against a tree file
var execCmd = &cobra.Command{
	Use:   "exec [script]",
	Short: "Run insert/delete/search/count/save commands from a script (or stdin)",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		path, _ := cmd.Flags().GetString("tree")
		dims, _ := cmd.Flags().GetInt("dims")
		if path == "" {
			return fmt.Errorf("--tree is required")
		}

		in := cmd.InOrStdin()
		if len(args) == 1 && args[0] != "-" {
			f, err := os.Open(filepath.Clean(args[0]))
			if err != nil {
				return err
			}
			defer f.Close()
			in = f
		}

		t, err := openOrCreate(path, dims)
		if err != nil {
			return err
		}
		s := &session{tree: t, path: path, out: cmd.OutOrStdout()}
		return s.runScript(in)
	},
}

func init() {
	execCmd.Flags().String("tree", "", "Tree file, created on save if missing")
	execCmd.Flags().Int("dims", 2, "Dimensions of a new tree")
	rootCmd.AddCommand(execCmd)
}

// session holds the tree a script operates on.
type session struct {
	tree *rtree.Tree
	path string
	out  io.Writer
}

// runScript executes one command per line. Blank lines and # comments are
// ignored. The first failing command stops the script.
func (s *session) runScript(r io.Reader) error {
	log := xlog.New("rtreectl")
	sc := bufio.NewScanner(r)
	line := 0
	for sc.Scan() {
		line++
		parts, err := shlex.Split(sc.Text())
		if err != nil {
			return fmt.Errorf("line %d: %w", line, err)
		}
		if len(parts) == 0 {
			continue
		}
		if err := s.processCommand(parts); err != nil {
			log.Error().Int("line", line).Str("cmd", parts[0]).Err(err).Msg("command failed")
			return fmt.Errorf("line %d: %w", line, err)
		}
	}
	return sc.Err()
}

func (s *session) processCommand(parts []string) error {
	switch parts[0] {
	case "insert":
		if len(parts) < 4 {
			return fmt.Errorf("usage: insert ID MIN... MAX...")
		}
		bb, err := parseCoords(parts[2:])
		if err != nil {
			return err
		}
		if err := s.tree.Insert(bb, parts[1]); err != nil {
			return err
		}
		fmt.Fprintf(s.out, "inserted %s %v\n", parts[1], bb)
	case "delete":
		if len(parts) < 4 {
			return fmt.Errorf("usage: delete ID MIN... MAX...")
		}
		bb, err := parseCoords(parts[2:])
		if err != nil {
			return err
		}
		found, err := s.tree.Delete(bb, parts[1])
		if err != nil {
			return err
		}
		if found {
			fmt.Fprintf(s.out, "deleted %s\n", parts[1])
		} else {
			fmt.Fprintf(s.out, "not found %s\n", parts[1])
		}
	case "search", "within":
		if len(parts) < 3 {
			return fmt.Errorf("usage: %s MIN... MAX...", parts[0])
		}
		bb, err := parseCoords(parts[1:])
		if err != nil {
			return err
		}
		n, err := search(s.out, s.tree, bb, parts[0] == "within", 0)
		if err != nil {
			return err
		}
		fmt.Fprintf(s.out, "%d matches\n", n)
	case "count":
		fmt.Fprintf(s.out, "%d\n", s.tree.Len())
	case "save":
		if err := rtree.WriteFile(s.path, s.tree, rtree.StringCodec{}); err != nil {
			return err
		}
		fmt.Fprintf(s.out, "saved %d entries to %s\n", s.tree.Len(), s.path)
	default:
		return fmt.Errorf("unrecognized command: %s", parts[0])
	}
	return nil
}
