package app

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/suxatcode/concentric-layout/db"
	"github.com/suxatcode/concentric-layout/layout"
)

func TestGetEnvConfig(t *testing.T) {
	assert := assert.New(t)
	t.Setenv("PRODUCTION", "true")
	t.Setenv("LAYOUT_SEED", "99")
	t.Setenv("ALLOWED_ORIGINS", "http://a,http://b")
	conf := GetEnvConfig()
	assert.True(conf.Production)
	assert.Equal(uint64(99), conf.Seed)
	assert.Equal([]string{"http://a", "http://b"}, conf.AllowedOrigins)
	assert.Equal("8080", conf.Port)
	assert.Equal(5*time.Second, conf.HTTPTimeout)
}

func TestConfig_SimulationConfig(t *testing.T) {
	for _, test := range []struct {
		Name      string
		Config    Config
		ExpLayout layout.InitialLayout
		ExpErr    bool
	}{
		{Name: "defaults", Config: Config{}, ExpLayout: layout.DefaultSimulationConfig.InitialLayout},
		{Name: "phyllotaxis", Config: Config{InitialLayout: "phyllotaxis", Seed: 3}, ExpLayout: layout.InitialLayoutPhyllotaxis},
		{Name: "unknown layout", Config: Config{InitialLayout: "spiral"}, ExpErr: true},
	} {
		t.Run(test.Name, func(t *testing.T) {
			assert := assert.New(t)
			sim, err := test.Config.SimulationConfig()
			if test.ExpErr {
				assert.Error(err)
				return
			}
			assert.NoError(err)
			assert.Equal(test.ExpLayout, sim.InitialLayout)
			assert.Equal(test.Config.Seed, sim.Seed)
			assert.Equal(layout.DefaultSimulationConfig.Rect, sim.Rect)
		})
	}
}

func TestLoadForceConfig(t *testing.T) {
	dir := t.TempDir()
	write := func(name, content string) string {
		path := filepath.Join(dir, name)
		assert.NoError(t, os.WriteFile(path, []byte(content), 0o644))
		return path
	}
	partial := write("partial.yaml", `
charge:
  strength: -30
radial:
  enabled: true
  categoryRadius: [100, 200]
`)
	broken := write("broken.yaml", "charge: [")
	t.Run("defaults", func(t *testing.T) {
		forces, err := LoadForceConfig("")
		assert.NoError(t, err)
		assert.Equal(t, layout.DefaultForceConfig(), forces)
	})
	t.Run("partial file keeps other defaults", func(t *testing.T) {
		assert := assert.New(t)
		forces, err := LoadForceConfig(partial)
		assert.NoError(err)
		assert.Equal(-30.0, forces.Charge.Strength)
		assert.True(forces.Charge.Enabled)
		assert.Equal(1000.0, forces.Charge.DistanceMax)
		assert.True(forces.Radial.Enabled)
		assert.Equal([]float64{100, 200}, forces.Radial.CategoryRadius)
		assert.Equal(layout.DefaultForceConfig().Collide, forces.Collide)
	})
	t.Run("broken file", func(t *testing.T) {
		_, err := LoadForceConfig(broken)
		assert.ErrorContains(t, err, "broken.yaml")
	})
	t.Run("missing file", func(t *testing.T) {
		_, err := LoadForceConfig(filepath.Join(dir, "missing.yaml"))
		assert.Error(t, err)
	})
}

func TestRetryAtIntervals(t *testing.T) {
	for _, test := range []struct {
		Name     string
		Failures int
		ExpCalls int
		ExpErr   bool
	}{
		{Name: "first call succeeds", Failures: 0, ExpCalls: 1},
		{Name: "succeeds on retry", Failures: 2, ExpCalls: 3},
		{Name: "gives up", Failures: 10, ExpCalls: 4, ExpErr: true},
	} {
		t.Run(test.Name, func(t *testing.T) {
			assert := assert.New(t)
			calls := 0
			err := RetryAtIntervals(func() error {
				calls++
				if calls <= test.Failures {
					return errors.New("not yet")
				}
				return nil
			}, []time.Duration{time.Millisecond, time.Millisecond, time.Millisecond})
			assert.Equal(test.ExpCalls, calls)
			if test.ExpErr {
				assert.Error(err)
			} else {
				assert.NoError(err)
			}
		})
	}
}

func TestNewDataSource(t *testing.T) {
	for _, test := range []struct {
		Name    string
		Config  db.Config
		ExpType any
		ExpErr  bool
	}{
		{Name: "file", Config: db.Config{DataSource: db.KindFile, File: "x.json"}, ExpType: &db.FileSource{}},
		{Name: "cached file", Config: db.Config{DataSource: db.KindFile, File: "x.json", CacheSize: 2}, ExpType: &db.CachedSource{}},
		{Name: "remote", Config: db.Config{DataSource: db.KindRemote, RemoteURL: "http://localhost:1"}, ExpType: nil},
		{Name: "unknown", Config: db.Config{DataSource: "ftp"}, ExpErr: true},
	} {
		t.Run(test.Name, func(t *testing.T) {
			assert := assert.New(t)
			source, err := NewDataSource(test.Config)
			if test.ExpErr {
				assert.Error(err)
				return
			}
			assert.NoError(err)
			assert.NotNil(source)
			if test.ExpType != nil {
				assert.IsType(test.ExpType, source)
			}
		})
	}
	t.Run("importer requires postgres", func(t *testing.T) {
		_, err := NewImporter(db.Config{DataSource: db.KindFile})
		assert.Error(t, err)
	})
}
