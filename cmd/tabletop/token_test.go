package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/code19m/errx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rise-and-shine/tabletop/cfgloader"
	"github.com/rise-and-shine/tabletop/token"
)

func TestTokenCmd(t *testing.T) {
	const secret = "0123456789abcdef0123"

	dir := t.TempDir()
	content := "http:\n  host: 127.0.0.1\n  port: 8080\nauth:\n  hmac_secret: " + secret + "\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, "test.yaml"), []byte(content), 0o600))
	t.Setenv("ENVIRONMENT", cfgloader.EnvTest)

	var out bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&out)
	cmd.SetArgs([]string{"--config-dir", dir, "token", "--sub", "user-7", "--username", "bard"})
	require.NoError(t, cmd.Execute())

	verifier, err := token.NewVerifier(token.Config{HMACSecret: secret})
	require.NoError(t, err)

	claims, err := verifier.Verify(strings.TrimSpace(out.String()))
	require.NoError(t, err)
	assert.Equal(t, "user-7", claims.Subject)
	assert.Equal(t, "bard", claims.Username())
}

func TestTokenCmd_RequiresSubject(t *testing.T) {
	cmd := newRootCmd()
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs([]string{"token"})
	assert.Error(t, cmd.Execute())
}

func TestTokenCmd_ConfigErrors(t *testing.T) {
	tests := []struct {
		name    string
		content string
		code    string
	}{
		{name: "missing config file", code: cfgloader.CodeConfigNotFound},
		{name: "no hmac secret", content: "http:\n  host: 127.0.0.1\n  port: 8080\n", code: token.CodeInvalidConfig},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			if tt.content != "" {
				require.NoError(t, os.WriteFile(filepath.Join(dir, "test.yaml"), []byte(tt.content), 0o600))
			}
			t.Setenv("ENVIRONMENT", cfgloader.EnvTest)

			cmd := newRootCmd()
			cmd.SetOut(&bytes.Buffer{})
			cmd.SetErr(&bytes.Buffer{})
			cmd.SetArgs([]string{"--config-dir", dir, "token", "--sub", "user-7"})

			err := cmd.Execute()
			require.Error(t, err)
			assert.Equal(t, tt.code, errx.AsErrorX(err).Code())
		})
	}
}
