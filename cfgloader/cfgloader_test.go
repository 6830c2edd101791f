package cfgloader_test

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/code19m/errx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rise-and-shine/tabletop/cfgloader"
)

type dbConfig struct {
	Path     string        `yaml:"path"     validate:"required"`
	Password string        `yaml:"password" mask:"true"`
	Timeout  time.Duration `yaml:"timeout"  default:"5s"`
}

type testConfig struct {
	Name     string   `yaml:"name"     validate:"required"`
	Port     int      `yaml:"port"     default:"8080"`
	Database dbConfig `yaml:"database"`
}

func TestMustLoad(t *testing.T) {
	dir := t.TempDir()
	content := []byte("name: tabletop\ndatabase:\n  path: ${TABLETOP_DB_PATH}\n  password: secret\n")
	require.NoError(t, os.WriteFile(filepath.Join(dir, "test.yaml"), content, 0o600))

	t.Setenv("ENVIRONMENT", cfgloader.EnvTest)
	t.Setenv("TABLETOP_DB_PATH", "/tmp/tabletop.db")

	cfg := cfgloader.MustLoad[testConfig](cfgloader.WithConfigDir(dir), cfgloader.WithSilent())

	assert.Equal(t, "tabletop", cfg.Name)
	assert.Equal(t, 8080, cfg.Port)
	assert.Equal(t, "/tmp/tabletop.db", cfg.Database.Path)
	assert.Equal(t, "secret", cfg.Database.Password)
	assert.Equal(t, 5*time.Second, cfg.Database.Timeout)
}

func TestLoad_Errors(t *testing.T) {
	tests := []struct {
		name    string
		env     string
		content string
		code    string
	}{
		{name: "unknown environment", env: "qa", code: cfgloader.CodeInvalidEnvironment},
		{name: "missing file", env: cfgloader.EnvTest, code: cfgloader.CodeConfigNotFound},
		{name: "required field", env: cfgloader.EnvTest, content: "port: 9000\n", code: cfgloader.CodeInvalidConfig},
		{name: "broken yaml", env: cfgloader.EnvTest, content: "name: [\n", code: cfgloader.CodeInvalidConfig},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			if tt.content != "" {
				require.NoError(t, os.WriteFile(filepath.Join(dir, "test.yaml"), []byte(tt.content), 0o600))
			}
			t.Setenv("ENVIRONMENT", tt.env)

			_, err := cfgloader.Load[testConfig](cfgloader.WithConfigDir(dir), cfgloader.WithSilent())

			require.Error(t, err)
			assert.Equal(t, tt.code, errx.AsErrorX(err).Code())
		})
	}
}

func TestPrint_MasksSecrets(t *testing.T) {
	cfg := testConfig{
		Name:     "tabletop",
		Database: dbConfig{Path: "/var/lib/tabletop.db", Password: "hunter2"},
	}

	var buf bytes.Buffer
	require.NoError(t, cfgloader.Print(&buf, cfg))

	out := buf.String()
	assert.Contains(t, out, "Loaded config:")
	assert.Contains(t, out, "/var/lib/tabletop.db")
	assert.Contains(t, out, "*******")
	assert.NotContains(t, out, "hunter2")
	assert.Equal(t, "hunter2", cfg.Database.Password)
}
