package presets

import (
	"errors"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/gogpu/fractal"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func TestBuiltin(t *testing.T) {
	ps, err := Builtin()
	require.NoError(t, err)
	require.NotEmpty(t, ps)

	seen := map[string]bool{}
	kinds := map[fractal.Kind]bool{}
	for _, p := range ps {
		assert.NoError(t, p.Validate(), p.Name)
		assert.False(t, seen[p.Name], "duplicate %q", p.Name)
		seen[p.Name] = true
		kinds[p.Kind] = true
	}
	for _, k := range fractal.Kinds() {
		assert.True(t, kinds[k], "no built-in preset for %v", k)
	}

	// Builtin hands out copies.
	ps[0].Name = "changed"
	again, err := Builtin()
	require.NoError(t, err)
	assert.Equal(t, "overview", again[0].Name)
}

func TestBuiltinFields(t *testing.T) {
	ps, err := Builtin()
	require.NoError(t, err)
	byName := map[string]Preset{}
	for _, p := range ps {
		byName[p.Name] = p
	}

	sea := byName["seahorse valley"].Params()
	assert.Equal(t, fractal.Mandelbrot, sea.Kind)
	assert.Equal(t, [2]float64{-0.7453, 0.1127}, sea.Center)
	assert.Equal(t, 900, sea.MaxIter)
	assert.Equal(t, "ocean", sea.Palette.Name)

	bulb := byName["bulb power 4"]
	require.NotNil(t, bulb.Camera)
	assert.Equal(t, float32(2.4), bulb.Camera.Distance)
	assert.Equal(t, 4.0, bulb.Params().Power)

	// Omitted fields keep the kind's defaults.
	plain := byName["mandelbulb"].Params()
	assert.Equal(t, fractal.DefaultCamera(), plain.Camera)
	assert.Equal(t, fractal.DefaultParams(fractal.Mandelbulb).MaxIter, plain.MaxIter)
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name    string
		doc     string
		invalid bool
		mention string
	}{
		{"missing name", "[[preset]]\nkind = \"julia\"\n", true, "missing name"},
		{"unknown palette", "[[preset]]\nname = \"a\"\npalette = \"plaid\"\n", true, `"a"`},
		{"negative zoom", "[[preset]]\nname = \"b\"\nzoom = -2.0\n", true, `"b"`},
		{"too many iterations", "[[preset]]\nname = \"c\"\nmax_iter = 99999\n", true, `"c"`},
		{"duplicate", "[[preset]]\nname = \"d\"\n[[preset]]\nname = \"d\"\n", true, "duplicate"},
		{"unknown kind", "[[preset]]\nname = \"e\"\nkind = \"sierpinski\"\n", false, "decode"},
		{"bad toml", "[[preset]\nname = 1", false, "decode"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.doc))
			require.Error(t, err)
			assert.Equal(t, tt.invalid, errors.Is(err, ErrInvalid))
			assert.Contains(t, err.Error(), tt.mention)
		})
	}
}

func TestParseEmpty(t *testing.T) {
	ps, err := Parse(nil)
	require.NoError(t, err)
	assert.Empty(t, ps)
}

func TestFromParams(t *testing.T) {
	params := fractal.DefaultParams(fractal.Julia)
	params.Center = [2]float64{0.1, -0.2}
	params.Zoom = 3.5
	params.MaxIter = 640
	params.JuliaC = [2]float64{-0.7269, 0.1889}
	params.Palette, _ = fractal.PaletteByName("fire")

	p := FromParams("mine", params)
	require.NoError(t, p.Validate())
	assert.Nil(t, p.Camera, "2D presets do not store a camera")
	if diff := cmp.Diff(params, p.Params()); diff != "" {
		t.Errorf("Params() mismatch (-want +got):\n%s", diff)
	}

	bulb := fractal.DefaultParams(fractal.Mandelbulb)
	bulb.Camera.Yaw = 2
	p = FromParams("bulb", bulb)
	assert.Nil(t, p.Center)
	assert.Nil(t, p.JuliaC)
	if diff := cmp.Diff(bulb, p.Params()); diff != "" {
		t.Errorf("Params() mismatch (-want +got):\n%s", diff)
	}
}

func TestMarshalRoundTrip(t *testing.T) {
	want, err := Builtin()
	require.NoError(t, err)

	data, err := Marshal(want)
	require.NoError(t, err)
	got, err := Parse(data)
	require.NoError(t, err)
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("round trip mismatch (-want +got):\n%s", diff)
	}
}

func TestSaveLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "mine.toml")
	want := []Preset{FromParams("saved", fractal.DefaultParams(fractal.Tricorn))}
	require.NoError(t, Save(path, want))

	got, err := Load(path)
	require.NoError(t, err)
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Load mismatch (-want +got):\n%s", diff)
	}

	_, err = Load(filepath.Join(t.TempDir(), "missing.toml"))
	assert.Error(t, err)
}

func TestApplyKeepsDisplay(t *testing.T) {
	params := fractal.DefaultParams(fractal.Mandelbrot)
	params.Exposure = 1.7
	params.ColorShift = 0.3
	params.Smooth = false
	params.AutoRotate = true

	p := Preset{Name: "x", Kind: fractal.Julia, Zoom: 2}
	p.Apply(&params)

	assert.Equal(t, fractal.Julia, params.Kind)
	assert.Equal(t, 2.0, params.Zoom)
	assert.Equal(t, 1.7, params.Exposure)
	assert.Equal(t, 0.3, params.ColorShift)
	assert.False(t, params.Smooth)
	assert.True(t, params.AutoRotate)
}

func TestMerge(t *testing.T) {
	base := []Preset{{Name: "a", Zoom: 1}, {Name: "b", Zoom: 2}}
	override := []Preset{{Name: "c", Zoom: 3}, {Name: "a", Zoom: 9}}

	got := Merge(base, override)
	assert.Equal(t, []string{"a", "b", "c"}, Names(got))
	assert.Equal(t, 9.0, got[0].Zoom)
	assert.Equal(t, 1.0, base[0].Zoom, "base is not modified")
}
