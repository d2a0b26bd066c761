package main

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"domainfactor/internal/platform/config"
)

func useTestConfig(t *testing.T) {
	t.Helper()
	prev := loadAdminConfig
	loadAdminConfig = func() config.AdminConfig {
		return config.AdminConfig{JWTSigningKey: "test-key", JWTIssuer: "test-issuer", JWTAudience: "test-aud"}
	}
	t.Cleanup(func() { loadAdminConfig = prev })
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&out)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestIssueThenVerify(t *testing.T) {
	useTestConfig(t)

	token, err := execute(t, "issue", "--subject", "ops@example.com")
	require.NoError(t, err)
	token = strings.TrimSpace(token)
	require.NotEmpty(t, token)

	out, err := execute(t, "verify", token)
	require.NoError(t, err)
	assert.Equal(t, "subject=ops@example.com role=admin\n", out)
}

func TestIssueRequiresSubject(t *testing.T) {
	useTestConfig(t)

	_, err := execute(t, "issue")
	assert.ErrorContains(t, err, "--subject is required")
}

func TestVerifyRejectsForeignToken(t *testing.T) {
	useTestConfig(t)
	token, err := execute(t, "issue", "--subject", "ops")
	require.NoError(t, err)

	loadAdminConfig = func() config.AdminConfig {
		return config.AdminConfig{JWTSigningKey: "other-key", JWTIssuer: "test-issuer", JWTAudience: "test-aud"}
	}
	_, err = execute(t, "verify", strings.TrimSpace(token))
	assert.Error(t, err)
}

func TestIssueRequiresSigningKey(t *testing.T) {
	prev := loadAdminConfig
	loadAdminConfig = func() config.AdminConfig { return config.AdminConfig{} }
	t.Cleanup(func() { loadAdminConfig = prev })

	_, err := execute(t, "issue", "--subject", "ops")
	assert.ErrorContains(t, err, "ADMIN_JWT_SIGNING_KEY")
}
