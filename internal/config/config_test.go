package config

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/chewxy/math32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"oasis-map/internal/camera"
	"oasis-map/internal/geom"
	"oasis-map/internal/layout"
)

func TestDefaultIsValid(t *testing.T) {
	require.NoError(t, Default().Validate())
}

func TestLoadMissingReturnsDefault(t *testing.T) {
	c, err := Load(filepath.Join(t.TempDir(), "none.yaml"))
	require.NoError(t, err)
	assert.Equal(t, Default(), c)
}

func TestLoadUnsupportedExtension(t *testing.T) {
	_, err := Load("config.ini")
	assert.Error(t, err)
}

func TestLoadFormats(t *testing.T) {
	dir := t.TempDir()
	files := map[string]string{
		"c.yaml": "remote_url: http://yaml\nlayout:\n  policy: ring\n  radius: 20\ncamera:\n  bounds: {min_x: -5, max_x: 5, min_z: -6, max_z: 6}\n  eye: [1, 2, 3]\n",
		"c.toml": "remote_url = \"http://toml\"\n[layout]\npolicy = \"ring\"\nradius = 20\n[camera]\neye = [1, 2, 3]\n[camera.bounds]\nmin_x = -5\nmax_x = 5\nmin_z = -6\nmax_z = 6\n",
		"c.json": `{"remote_url":"http://json","layout":{"policy":"ring","radius":20},"camera":{"bounds":{"min_x":-5,"max_x":5,"min_z":-6,"max_z":6},"eye":[1,2,3]}}`,
	}
	for name, body := range files {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(dir, name)
			require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
			c, err := Load(path)
			require.NoError(t, err)
			assert.Equal(t, "http://"+filepath.Ext(name)[1:], c.RemoteURL)
			assert.Equal(t, camera.Bounds{MinX: -5, MaxX: 5, MinZ: -6, MaxZ: 6}, c.Camera.Bounds)
			assert.Equal(t, geom.Vec3{1, 2, 3}, c.Camera.Eye)
			assert.Equal(t, float32(camera.DefaultStep), c.Camera.Step, "unset keys keep defaults")

			gen, err := c.Generator()
			require.NoError(t, err)
			assert.Equal(t, layout.Ring{Radius: 20}, gen)
		})
	}
}

func TestLoadMalformed(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.json")
	require.NoError(t, os.WriteFile(path, []byte("{"), 0o644))
	c, err := Load(path)
	assert.Error(t, err)
	assert.Equal(t, Default(), c)
}

func TestSaveRoundTrip(t *testing.T) {
	for _, ext := range []string{".yaml", ".toml", ".json"} {
		t.Run(ext, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "nested", "c"+ext)
			want := Default()
			want.Background.AnchorBeforeRotation = true
			want.Background.Rotation = geom.Vec3{0, 90, 0}
			require.NoError(t, Save(path, want))
			got, err := Load(path)
			require.NoError(t, err)
			assert.Equal(t, want, got)
		})
	}
}

func TestValidate(t *testing.T) {
	c := Default()
	c.Camera.Bounds = camera.Bounds{MinX: 1, MaxX: 0, MinZ: 0, MaxZ: 1}
	c.Camera.Step = 0
	c.Background.AnchorX = "left"
	c.Layout.Policy = "spiral"
	err := c.Validate()
	require.Error(t, err)
	assert.ErrorIs(t, err, camera.ErrBounds)
	assert.Contains(t, err.Error(), "camera.step")
	assert.Contains(t, err.Error(), "anchor_x")
	assert.Contains(t, err.Error(), "spiral")
}

func TestAnchorSpec(t *testing.T) {
	c := Default()
	c.Background.Rotation = geom.Vec3{0, 180, 0}
	c.Background.AnchorX = "min"
	spec, err := c.AnchorSpec()
	require.NoError(t, err)
	assert.InDelta(t, math32.Pi, spec.Rotation.Y(), 1e-5)
	assert.Equal(t, geom.EdgeMin, spec.AnchorX)
	assert.Equal(t, geom.EdgeMax, spec.AnchorZ)
}

func TestWatchReportsInvalidConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "c.yaml")
	require.NoError(t, os.WriteFile(path, []byte("remote_url: http://one\n"), 0o644))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	errs := make(chan error, 8)
	require.NoError(t, Watch(ctx, path, func(_ Config, err error) {
		if err != nil {
			errs <- err
		}
	}))

	body := "remote_url: http://one\nbackground:\n  target_width: 0\n"
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	select {
	case err := <-errs:
		assert.Contains(t, err.Error(), "target_width")
	case <-time.After(5 * time.Second):
		t.Fatal("invalid config was not reported")
	}
}

func TestReload(t *testing.T) {
	path := filepath.Join(t.TempDir(), "c.yaml")
	require.NoError(t, os.WriteFile(path, []byte("background:\n  target_width: -3\n"), 0o644))
	_, err := Reload(path)
	assert.Error(t, err)

	require.NoError(t, os.WriteFile(path, []byte("background:\n  target_width: 40\n"), 0o644))
	c, err := Reload(path)
	require.NoError(t, err)
	assert.Equal(t, float32(40), c.Background.TargetWidth)
}

func TestDetailRoute(t *testing.T) {
	assert.Equal(t, "/oasis/a1", Default().DetailRoute("a1"))
	assert.Equal(t, "/oasis/a%2Fb%20c", Default().DetailRoute("a/b c"))
	c := Default()
	c.DetailURL = "https://oasis.example/lists/{id}/view"
	assert.Equal(t, "https://oasis.example/lists/x%3Fy/view", c.DetailRoute("x?y"))
}

func TestDotEnvAndApplyEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".env")
	body := "# comment\n\nOASIS_REMOTE_URL=\"http://env\"\nexport OASIS_CACHE_DIR='/tmp/oasis'\nOASIS_LOG_LEVEL=debug\nBROKEN\n"
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	for _, k := range []string{EnvRemoteURL, EnvCacheDir, EnvLogLevel} {
		t.Setenv(k, "")
		require.NoError(t, os.Unsetenv(k))
	}
	t.Setenv(EnvLogLevel, "warn")

	require.NoError(t, LoadDotEnv(path))
	c := ApplyEnv(Default())
	assert.Equal(t, "http://env", c.RemoteURL)
	assert.Equal(t, "/tmp/oasis", c.CacheDir)
	assert.Equal(t, "warn", c.LogLevel, "already set variables win")
}

func TestLoadDotEnvMissing(t *testing.T) {
	assert.NoError(t, LoadDotEnv(filepath.Join(t.TempDir(), ".env")))
}

func TestWatchReloads(t *testing.T) {
	path := filepath.Join(t.TempDir(), "c.yaml")
	require.NoError(t, os.WriteFile(path, []byte("remote_url: http://one\n"), 0o644))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	got := make(chan Config, 8)
	require.NoError(t, Watch(ctx, path, func(c Config, err error) {
		if err == nil {
			got <- c
		}
	}))

	require.NoError(t, os.WriteFile(path, []byte("remote_url: http://two\n"), 0o644))
	deadline := time.After(5 * time.Second)
	for {
		select {
		case c := <-got:
			if c.RemoteURL == "http://two" {
				return
			}
		case <-deadline:
			t.Fatal("no reload seen")
		}
	}
}
