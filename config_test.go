package accounts_test

import (
	"runtime"
	"testing"
	"time"

	accounts "github.com/goliatone/go-accounts"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig_Defaults(t *testing.T) {
	cfg, err := accounts.LoadConfig(map[string]string{
		"SECURE_KEY": "a-secret-that-is-long-enough",
	})
	require.NoError(t, err)

	assert.Equal(t, "a-secret-that-is-long-enough", cfg.GetSigningKey())
	assert.Equal(t, 10, cfg.GetWorkFactor())
	assert.Equal(t, 7*24*time.Hour, cfg.GetLoginTokenTTL())
	assert.Equal(t, 24*time.Hour, cfg.GetActivationTokenTTL())
	assert.Equal(t, 15*time.Minute, cfg.GetPasswordResetTokenTTL())
	assert.Equal(t, 8, cfg.GetPasswordMinLength())
	assert.Zero(t, cfg.GetPasswordMinEntropyBits())
	assert.False(t, cfg.GetLoginRequiresActive())
	assert.False(t, cfg.GetHashidAccountIDs())
	assert.Equal(t, runtime.GOMAXPROCS(0), cfg.GetMaxConcurrentHashes())
	assert.True(t, cfg.Mail.SandboxMode)
	assert.Equal(t, 3000, cfg.Port)
}

func TestLoadConfig_Overrides(t *testing.T) {
	cfg, err := accounts.LoadConfig(map[string]string{
		"SECURE_KEY":                    "a-secret-that-is-long-enough",
		"SALT_WORK_FACTOR":              "12",
		"JWT_LOGIN_EXPIRES_IN":          "1h",
		"JWT_ACTIVATION_EXPIRES_IN":     "2h",
		"JWT_PASSWORD_RESET_EXPIRES_IN": "5m",
		"PASSWORD_MIN_LENGTH":           "10",
		"LOGIN_REQUIRES_ACTIVE":         "true",
		"MAX_CONCURRENT_HASHES":         "3",
		"EMAIL_SANDBOX_MODE":            "false",
		"EMAIL_ACTIVATION_URL":          "https://example.com/activate",
	})
	require.NoError(t, err)

	assert.Equal(t, 12, cfg.GetWorkFactor())
	assert.Equal(t, time.Hour, cfg.GetLoginTokenTTL())
	assert.Equal(t, 2*time.Hour, cfg.GetActivationTokenTTL())
	assert.Equal(t, 5*time.Minute, cfg.GetPasswordResetTokenTTL())
	assert.Equal(t, 10, cfg.GetPasswordMinLength())
	assert.True(t, cfg.GetLoginRequiresActive())
	assert.Equal(t, 3, cfg.GetMaxConcurrentHashes())
	assert.False(t, cfg.Mail.SandboxMode)
	assert.Equal(t, "https://example.com/activate", cfg.Mail.ActivationURL)
}

func TestLoadConfig_Invalid(t *testing.T) {
	tests := []struct {
		name  string
		env   map[string]string
		field string
	}{
		{name: "missing secret", env: map[string]string{}, field: "SigningKey"},
		{name: "short secret", env: map[string]string{"SECURE_KEY": "short"}, field: "SigningKey"},
		{
			name:  "work factor out of range",
			env:   map[string]string{"SECURE_KEY": "a-secret-that-is-long-enough", "SALT_WORK_FACTOR": "40"},
			field: "WorkFactor",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, err := accounts.LoadConfig(tt.env)
			assert.Nil(t, cfg)

			vErr, ok := accounts.AsValidationError(err)
			require.True(t, ok, "expected validation error, got %v", err)
			assert.NotEmpty(t, vErr.Field(tt.field))
		})
	}
}

func TestLoadConfig_ParseError(t *testing.T) {
	_, err := accounts.LoadConfig(map[string]string{
		"SECURE_KEY":       "a-secret-that-is-long-enough",
		"SALT_WORK_FACTOR": "ten",
	})
	require.Error(t, err)

	_, ok := accounts.AsValidationError(err)
	assert.False(t, ok)
}

func TestLoadConfig_DayDurations(t *testing.T) {
	cfg, err := accounts.LoadConfig(map[string]string{
		"SECURE_KEY":                    "a-secret-that-is-long-enough",
		"JWT_LOGIN_EXPIRES_IN":          "7d",
		"JWT_ACTIVATION_EXPIRES_IN":     "1d",
		"JWT_PASSWORD_RESET_EXPIRES_IN": "0.5d",
	})
	require.NoError(t, err)

	assert.Equal(t, 7*24*time.Hour, cfg.GetLoginTokenTTL())
	assert.Equal(t, 24*time.Hour, cfg.GetActivationTokenTTL())
	assert.Equal(t, 12*time.Hour, cfg.GetPasswordResetTokenTTL())

	for _, bad := range []string{"d", "xd", "7days", "1w"} {
		_, err := accounts.LoadConfig(map[string]string{
			"SECURE_KEY":           "a-secret-that-is-long-enough",
			"JWT_LOGIN_EXPIRES_IN": bad,
		})
		assert.Error(t, err, bad)
	}
}
