package accounts

import (
	"reflect"
	"runtime"
	"strconv"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/goliatone/go-errors"
	"golang.org/x/crypto/bcrypt"
)

const (
	DefaultLoginTokenTTL         = 7 * 24 * time.Hour
	DefaultActivationTokenTTL    = 24 * time.Hour
	DefaultPasswordResetTokenTTL = 15 * time.Minute
	DefaultPasswordMinLength     = 8
	minSigningKeyLength          = 16
)

// EnvConfig is the environment backed Config. Zero values fall back to the
// package defaults through the getters.
type EnvConfig struct {
	SigningKey             string        `env:"SECURE_KEY"`
	Issuer                 string        `env:"JWT_ISSUER"`
	WorkFactor             int           `env:"SALT_WORK_FACTOR" envDefault:"10"`
	LoginTokenTTL          time.Duration `env:"JWT_LOGIN_EXPIRES_IN" envDefault:"168h"`
	ActivationTokenTTL     time.Duration `env:"JWT_ACTIVATION_EXPIRES_IN" envDefault:"24h"`
	PasswordResetTokenTTL  time.Duration `env:"JWT_PASSWORD_RESET_EXPIRES_IN" envDefault:"15m"`
	PasswordMinLength      int           `env:"PASSWORD_MIN_LENGTH" envDefault:"8"`
	PasswordMinEntropyBits float64       `env:"PASSWORD_MIN_ENTROPY_BITS" envDefault:"0"`
	LoginRequiresActive    bool          `env:"LOGIN_REQUIRES_ACTIVE" envDefault:"false"`
	MaxConcurrentHashes    int           `env:"MAX_CONCURRENT_HASHES" envDefault:"0"`
	HashidAccountIDs       bool          `env:"ACCOUNT_HASHID_IDS" envDefault:"false"`

	ServiceName string `env:"SERVICE_NAME" envDefault:"accounts"`
	Port        int    `env:"PORT" envDefault:"3000"`
	DatabaseURL string `env:"DATABASE_URL" envDefault:"file:accounts.db?cache=shared"`
	LogLevel    string `env:"LOG_LEVEL" envDefault:"info"`
	LogFormat   string `env:"LOG_FORMAT" envDefault:"json"`

	Mail MailConfig
}

// MailConfig holds the outbound email settings.
type MailConfig struct {
	SandboxMode      bool   `env:"EMAIL_SANDBOX_MODE" envDefault:"true"`
	From             string `env:"FROM_EMAIL" envDefault:"no-reply@localhost"`
	ActivationURL    string `env:"EMAIL_ACTIVATION_URL" envDefault:"http://localhost:3000/activate"`
	PasswordResetURL string `env:"EMAIL_PASSWORD_RESET_URL" envDefault:"http://localhost:3000/password-reset"`
	SMTPHost         string `env:"SMTP_HOST" envDefault:"localhost"`
	SMTPPort         int    `env:"SMTP_PORT" envDefault:"587"`
	SMTPUsername     string `env:"SMTP_USERNAME"`
	SMTPPassword     string `env:"SMTP_PASSWORD"`
}

// LoadConfig reads an EnvConfig from environ, or from the process
// environment when environ is nil, and validates it.
func LoadConfig(environ map[string]string) (*EnvConfig, error) {
	cfg := &EnvConfig{}
	opts := env.Options{
		Environment: environ,
		FuncMap: map[reflect.Type]env.ParserFunc{
			reflect.TypeOf(time.Duration(0)): parseDuration,
		},
	}
	if err := env.ParseWithOptions(cfg, opts); err != nil {
		return nil, errors.Wrap(err, errors.CategoryBadInput, "failed to parse environment config")
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// parseDuration accepts Go durations and a day count such as "7d" or
// "1.5d".
func parseDuration(v string) (any, error) {
	v = strings.TrimSpace(v)
	if days, ok := strings.CutSuffix(v, "d"); ok {
		n, err := strconv.ParseFloat(days, 64)
		if err != nil {
			return nil, errors.Wrap(err, errors.CategoryBadInput, "invalid day duration "+strconv.Quote(v))
		}
		return time.Duration(n * float64(24*time.Hour)), nil
	}
	return time.ParseDuration(v)
}

// Validate checks the settings an Auther cannot run without.
func (c *EnvConfig) Validate() error {
	return NewValidationError(validation.ValidateStruct(c,
		validation.Field(&c.SigningKey, validation.Required, validation.Length(minSigningKeyLength, 0)),
		validation.Field(&c.WorkFactor, validation.Min(bcrypt.MinCost), validation.Max(bcrypt.MaxCost)),
		validation.Field(&c.LoginTokenTTL, validation.Min(time.Duration(0))),
		validation.Field(&c.ActivationTokenTTL, validation.Min(time.Duration(0))),
		validation.Field(&c.PasswordResetTokenTTL, validation.Min(time.Duration(0))),
		validation.Field(&c.PasswordMinLength, validation.Min(1), validation.Max(maxPasswordBytes)),
		validation.Field(&c.PasswordMinEntropyBits, validation.Min(float64(0))),
		validation.Field(&c.MaxConcurrentHashes, validation.Min(0)),
	))
}

func (c *EnvConfig) GetSigningKey() string { return c.SigningKey }

func (c *EnvConfig) GetIssuer() string { return c.Issuer }

func (c *EnvConfig) GetWorkFactor() int {
	if c.WorkFactor == 0 {
		return DefaultWorkFactor
	}
	return c.WorkFactor
}

func (c *EnvConfig) GetLoginTokenTTL() time.Duration {
	return durationOr(c.LoginTokenTTL, DefaultLoginTokenTTL)
}

func (c *EnvConfig) GetActivationTokenTTL() time.Duration {
	return durationOr(c.ActivationTokenTTL, DefaultActivationTokenTTL)
}

func (c *EnvConfig) GetPasswordResetTokenTTL() time.Duration {
	return durationOr(c.PasswordResetTokenTTL, DefaultPasswordResetTokenTTL)
}

func (c *EnvConfig) GetPasswordMinLength() int {
	if c.PasswordMinLength <= 0 {
		return DefaultPasswordMinLength
	}
	return c.PasswordMinLength
}

func (c *EnvConfig) GetPasswordMinEntropyBits() float64 { return c.PasswordMinEntropyBits }

func (c *EnvConfig) GetLoginRequiresActive() bool { return c.LoginRequiresActive }

// GetMaxConcurrentHashes defaults to GOMAXPROCS.
func (c *EnvConfig) GetMaxConcurrentHashes() int {
	if c.MaxConcurrentHashes <= 0 {
		return runtime.GOMAXPROCS(0)
	}
	return c.MaxConcurrentHashes
}

func (c *EnvConfig) GetHashidAccountIDs() bool { return c.HashidAccountIDs }

func durationOr(d, def time.Duration) time.Duration {
	if d <= 0 {
		return def
	}
	return d
}
