package main

import (
	"bytes"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/benoitkugler/svglayer/svgicon"
	"github.com/gogpu/gg"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testIcon = `<svg width="10" height="10" viewBox="0 0 10 10">
	<rect x="2" y="2" width="6" height="6" fill="red"/>
	<circle cx="5" cy="5" r="2" stroke="blue" fill="none"/>
</svg>`

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	buf := new(bytes.Buffer)
	cmd := newRootCmd()
	cmd.SetOut(buf)
	cmd.SetErr(buf)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return buf.String(), err
}

func pngSize(t *testing.T, path string) (int, int) {
	t.Helper()
	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()
	cfg, err := png.DecodeConfig(f)
	require.NoError(t, err)
	return cfg.Width, cfg.Height
}

func TestLoadConfig(t *testing.T) {
	dir := t.TempDir()

	cfg, err := loadConfig("")
	require.NoError(t, err)
	assert.Equal(t, Config{}, cfg)

	path := writeFile(t, dir, "config.toml", "width = 32.0\nheight = 16.0\nbackend = \"canvas\"\nstrict = true\n")
	cfg, err = loadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, Config{Width: 32, Height: 16, Backend: "canvas", Strict: true}, cfg)

	path = writeFile(t, dir, "bad.toml", "backend = \"svg\"\n")
	_, err = loadConfig(path)
	assert.Error(t, err)

	path = writeFile(t, dir, "invalid.toml", "width = \n")
	_, err = loadConfig(path)
	assert.Error(t, err)

	_, err = loadConfig(filepath.Join(dir, "missing.toml"))
	assert.Error(t, err)
}

func TestResolveOutput(t *testing.T) {
	for _, test := range []struct {
		output, backend         string
		wantBackend, wantOutput string
		wantErr                 bool
	}{
		{"", "", "raster", "icon.png", false},
		{"", "pdf", "pdf", "icon.pdf", false},
		{"", "canvas", "canvas", "icon.png", false},
		{"out.PDF", "", "pdf", "out.PDF", false},
		{"out.png", "canvas", "canvas", "out.png", false},
		{"out.png", "pdf", "", "", true},
		{"out.pdf", "raster", "", "", true},
		{"out.png", "svg", "", "", true},
	} {
		backend, output, err := resolveOutput("icon.svg", test.output, test.backend)
		if test.wantErr {
			assert.Error(t, err, test)
			continue
		}
		require.NoError(t, err)
		assert.Equal(t, test.wantBackend, backend)
		assert.Equal(t, test.wantOutput, output)
	}
}

func TestRenderCmd(t *testing.T) {
	dir := t.TempDir()
	input := writeFile(t, dir, "icon.svg", testIcon)

	out, err := execute(t, "render", input)
	require.NoError(t, err)
	assert.Contains(t, out, "icon.png written (raster)")
	w, h := pngSize(t, filepath.Join(dir, "icon.png"))
	assert.Equal(t, 10, w)
	assert.Equal(t, 10, h)

	output := filepath.Join(dir, "canvas.png")
	_, err = execute(t, "render", input, "-b", "canvas", "-o", output, "--width", "20", "--height", "30")
	require.NoError(t, err)
	w, h = pngSize(t, output)
	assert.Equal(t, 20, w)
	assert.Equal(t, 30, h)

	output = filepath.Join(dir, "icon.pdf")
	_, err = execute(t, "render", input, "-o", output)
	require.NoError(t, err)
	content, err := os.ReadFile(output)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(content, []byte("%PDF")))

	_, err = execute(t, "render", filepath.Join(dir, "missing.svg"))
	assert.Error(t, err)

	_, err = execute(t, "render", input, "-b", "pdf", "-o", filepath.Join(dir, "out.png"))
	assert.Error(t, err)
}

func TestRenderConfig(t *testing.T) {
	t.Cleanup(func() {
		svgicon.SetLogger(nil)
		gg.SetLogger(nil)
	})

	dir := t.TempDir()
	input := writeFile(t, dir, "icon.svg", testIcon)
	config := writeFile(t, dir, "config.toml", "width = 40.0\nheight = 20.0\nverbose = true\n")
	output := filepath.Join(dir, "out.png")

	_, err := execute(t, "render", input, "--config", config, "-o", output)
	require.NoError(t, err)
	w, h := pngSize(t, output)
	assert.Equal(t, 40, w)
	assert.Equal(t, 20, h)

	// flags take precedence
	_, err = execute(t, "render", input, "--config", config, "-o", output, "--width", "8")
	require.NoError(t, err)
	w, h = pngSize(t, output)
	assert.Equal(t, 8, w)
	assert.Equal(t, 20, h)
}

func TestStrictMode(t *testing.T) {
	dir := t.TempDir()
	input := writeFile(t, dir, "icon.svg", `<svg width="10" height="10"><rect width="5" height="5" fill="nocolor"/></svg>`)

	_, err := execute(t, "render", input, "-o", filepath.Join(dir, "lenient.png"))
	require.NoError(t, err)

	_, err = execute(t, "render", input, "--strict", "-o", filepath.Join(dir, "strict.png"))
	assert.Error(t, err)
}

func TestDumpCmd(t *testing.T) {
	dir := t.TempDir()
	input := writeFile(t, dir, "icon.svg", testIcon)

	out, err := execute(t, "dump", input)
	require.NoError(t, err)
	assert.Contains(t, out, "SetFillColor(rgba(255, 0, 0, 1))")
	assert.Contains(t, out, "Stroke(")
	assert.Contains(t, out, "# commands: ")

	out, err = execute(t, "dump", input, "--no-cost")
	require.NoError(t, err)
	assert.NotContains(t, out, "# commands: ")
}
