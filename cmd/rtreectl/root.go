package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/peterstace/rtree/v2"
	"github.com/peterstace/rtree/v2/internal/xlog"
)

var (
	logLevel   string
	logFile    string
	configPath string
)

// rootCmd is the entry point; every subcommand hangs off it.
var rootCmd = &cobra.Command{
	Use:          "rtreectl",
	Short:        "Build, query and inspect serialized R-trees",
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return xlog.InitWithConfig(xlog.Config{Level: logLevel, File: logFile})
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "Log level (trace, debug, info, warn, error)")
	rootCmd.PersistentFlags().StringVar(&logFile, "log-file", "", "Also write JSON logs to this rotated file")
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "JSON file with tree settings")
}

// baseConfig returns the tree settings from --config, falling back to the
// defaults for the given number of dimensions.
func baseConfig(dims int) (rtree.Config, error) {
	raw := map[string]any{}
	if configPath != "" {
		data, err := os.ReadFile(filepath.Clean(configPath))
		if err != nil {
			return rtree.Config{}, fmt.Errorf("read config: %w", err)
		}
		if err := json.Unmarshal(data, &raw); err != nil {
			return rtree.Config{}, fmt.Errorf("parse config: %w", err)
		}
	}
	if _, ok := raw["dims"]; !ok {
		raw["dims"] = dims
	}
	cfg, err := rtree.DecodeConfig(raw)
	if err != nil {
		return rtree.Config{}, err
	}
	cfg.Logger = xlog.New("rtree")
	return cfg, nil
}

// loadTree reads a tree file, configuring the tree from the file header.
func loadTree(path string) (*rtree.Tree, error) {
	f, err := os.Open(filepath.Clean(path))
	if err != nil {
		return nil, err
	}
	defer f.Close()

	r := rtree.NewReader(f, rtree.StringCodec{})
	h, err := r.Header()
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	base, err := baseConfig(h.Dims)
	if err != nil {
		return nil, err
	}
	t, err := rtree.New(h.Apply(base))
	if err != nil {
		return nil, err
	}
	if err := r.Read(t); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return t, nil
}

// openOrCreate loads the tree at path, or creates an empty one with the
// given number of dimensions if the file does not exist yet.
func openOrCreate(path string, dims int) (*rtree.Tree, error) {
	t, err := loadTree(path)
	if err == nil || !errors.Is(err, os.ErrNotExist) {
		return t, err
	}
	cfg, err := baseConfig(dims)
	if err != nil {
		return nil, err
	}
	return rtree.New(cfg)
}

// parseBox parses "min1,...,minN,max1,...,maxN".
func parseBox(s string) (rtree.BBox, error) {
	return parseCoords(strings.Split(s, ","))
}

// parseCoords turns 2N numbers (all mins, then all maxes) into a box.
func parseCoords(fields []string) (rtree.BBox, error) {
	coords := make([]float64, len(fields))
	for i, f := range fields {
		v, err := strconv.ParseFloat(strings.TrimSpace(f), 64)
		if err != nil {
			return rtree.BBox{}, fmt.Errorf("coordinate %d: %w", i+1, err)
		}
		coords[i] = v
	}
	if len(coords) == 0 || len(coords)%2 != 0 {
		return rtree.BBox{}, fmt.Errorf("need an even number of coordinates, got %d", len(coords))
	}
	n := len(coords) / 2
	return rtree.NewBBox(coords[:n], coords[n:])
}
