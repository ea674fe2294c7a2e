package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/peterstace/rtree/v2"
)

const sampleCSV = `# id,minx,miny,maxx,maxy
a,0,0,1,1
b,2,2,3,3
c,0.5,0.5,2.5,2.5
d,10,10,11,11
`

func TestParseBox(t *testing.T) {
	bb, err := parseBox("0,1,2,3")
	require.NoError(t, err)
	assert.Equal(t, []float64{0, 1}, bb.Min)
	assert.Equal(t, []float64{2, 3}, bb.Max)

	_, err = parseBox("0,1,2")
	assert.Error(t, err)
	_, err = parseBox("3,0,1,1")
	assert.ErrorIs(t, err, rtree.ErrInvalidBBox)
	_, err = parseBox("x,0,1,1")
	assert.Error(t, err)
}

func TestReadEntries(t *testing.T) {
	entries, err := readEntries(strings.NewReader(sampleCSV))
	require.NoError(t, err)
	require.Len(t, entries, 4)
	assert.Equal(t, "c", entries[2].Object)
	assert.Equal(t, []float64{0.5, 0.5}, entries[2].BBox.Min)

	_, err = readEntries(strings.NewReader("a,0,0,1,1\nb,0,0,0,1,1,1\n"))
	assert.ErrorIs(t, err, rtree.ErrDimensionMismatch)
}

func TestSession(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tree.bin")
	tree, err := openOrCreate(path, 2)
	require.NoError(t, err)

	var out bytes.Buffer
	s := &session{tree: tree, path: path, out: &out}
	script := `
# two boxes and a point
insert a 0 0 1 1
insert b 5 5 6 6
insert "c d" 0.5 0.5 0.5 0.5
count
search 0 0 2 2
delete a 0 0 1 1
delete a 0 0 1 1
count
save
`
	require.NoError(t, s.runScript(strings.NewReader(script)))
	got := out.String()
	assert.Contains(t, got, "inserted c d")
	assert.Contains(t, got, "2 matches")
	assert.Contains(t, got, "deleted a")
	assert.Contains(t, got, "not found a")
	assert.Contains(t, got, "saved 2 entries")

	reloaded, err := loadTree(path)
	require.NoError(t, err)
	assert.Equal(t, 2, reloaded.Len())

	t.Run("UnknownCommand", func(t *testing.T) {
		err := s.runScript(strings.NewReader("count\nfrobnicate\n"))
		assert.ErrorContains(t, err, "line 2")
	})
}

func TestBuildAndInspect(t *testing.T) {
	dir := t.TempDir()
	input := filepath.Join(dir, "boxes.csv")
	tree := filepath.Join(dir, "tree.bin")
	require.NoError(t, os.WriteFile(input, []byte(sampleCSV), 0o600))

	run := func(args ...string) string {
		var out bytes.Buffer
		rootCmd.SetOut(&out)
		rootCmd.SetArgs(args)
		require.NoError(t, rootCmd.Execute())
		return out.String()
	}

	run("build", "--input", input, "--out", tree, "--bulk")

	stats := run("stats", "--tree", tree)
	assert.Contains(t, stats, "entries:   4")
	assert.Contains(t, stats, "height:    1")

	found := run("search", "--tree", tree, "--box", "0,0,2,2")
	assert.Contains(t, found, "3 matches")

	inside := run("search", "--tree", tree, "--box", "0,0,2,2", "--within")
	assert.Contains(t, inside, "1 matches")

	dumped := run("dump", "--tree", tree)
	assert.Contains(t, dumped, "leaf (4)")
}
