package config

import (
	"os"
	"path/filepath"
	"strings"
	"time"
	"unicode"

	"github.com/go-viper/mapstructure/v2"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env/v2"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
	"github.com/pkg/errors"
	"github.com/slighter12/go-lib/database/postgres"
)

const (
	defaultPath               = "."
	defaultMaxRequestBodySize = "100KB"
)

type Config struct {
	Env struct {
		Env         string `json:"env" yaml:"env"`
		ServiceName string `json:"serviceName" yaml:"serviceName"`
		Debug       bool   `json:"debug" yaml:"debug"`
		Log         Log    `json:"log" yaml:"log"`
	} `json:"env" yaml:"env"`

	HTTP struct {
		Port               int    `json:"port" yaml:"port"`
		MaxRequestBodySize string `json:"maxRequestBodySize" yaml:"maxRequestBodySize"`
		Timeouts           struct {
			ReadTimeout       time.Duration `json:"readTimeout" yaml:"readTimeout"`
			ReadHeaderTimeout time.Duration `json:"readHeaderTimeout" yaml:"readHeaderTimeout"`
			WriteTimeout      time.Duration `json:"writeTimeout" yaml:"writeTimeout"`
			IdleTimeout       time.Duration `json:"idleTimeout" yaml:"idleTimeout"`
		} `json:"timeouts" yaml:"timeouts"`
	} `json:"http" yaml:"http"`

	Postgres *postgres.DBConn `json:"postgres" yaml:"postgres" mapstructure:"postgres"`

	JWT *JWTConfig `json:"jwt" yaml:"jwt"`

	Otp *OtpConfig `json:"otp" yaml:"otp"`

	Totp *TotpConfig `json:"totp" yaml:"totp"`

	WebAuthn *WebAuthnConfig `json:"webauthn" yaml:"webauthn"`

	Lockout *LockoutConfig `json:"lockout" yaml:"lockout"`

	RateLimit *RateLimitConfig `json:"rateLimit" yaml:"rateLimit"`

	// QRCode configuration for TOTP provisioning images
	QRCode *QRCodeConfig `json:"qrcode" yaml:"qrcode"`
}

// JWTConfig defines token issuance parameters. The RSA signing keypair is
// generated per process; only lifetimes and the issuer name are configured.
type JWTConfig struct {
	Issuer          string        `json:"issuer" yaml:"issuer"`
	AccessTokenTTL  time.Duration `json:"accessTokenTtl" yaml:"accessTokenTtl"`
	RefreshTokenTTL time.Duration `json:"refreshTokenTtl" yaml:"refreshTokenTtl"`
}

// OtpConfig defines one-time code generation and challenge lifecycle.
type OtpConfig struct {
	Length         int           `json:"length" yaml:"length"`
	UseDigits      bool          `json:"useDigits" yaml:"useDigits"`
	UseLetters     bool          `json:"useLetters" yaml:"useLetters"`
	TTL            time.Duration `json:"ttl" yaml:"ttl"`
	ResendCooldown time.Duration `json:"resendCooldown" yaml:"resendCooldown"`
	MaxAttempts    int           `json:"maxAttempts" yaml:"maxAttempts"`
	BcryptCost     int           `json:"bcryptCost" yaml:"bcryptCost"`
}

// TotpConfig defines the RFC 6238 parameters shared with authenticator apps.
type TotpConfig struct {
	Issuer string `json:"issuer" yaml:"issuer"`
	Period uint   `json:"period" yaml:"period"`
	Digits int    `json:"digits" yaml:"digits"`
	Skew   uint   `json:"skew" yaml:"skew"`
}

// WebAuthnConfig defines the relying party identity.
type WebAuthnConfig struct {
	RPDisplayName  string        `json:"rpDisplayName" yaml:"rpDisplayName"`
	RPID           string        `json:"rpId" yaml:"rpId"`
	RPOrigins      []string      `json:"rpOrigins" yaml:"rpOrigins"`
	CeremonyTTL    time.Duration `json:"ceremonyTtl" yaml:"ceremonyTtl"`
	AllowZeroCount bool          `json:"allowZeroCount" yaml:"allowZeroCount"`
}

// LockoutConfig defines the failed-attempt lockout policy.
type LockoutConfig struct {
	Threshold int           `json:"threshold" yaml:"threshold"`
	Duration  time.Duration `json:"duration" yaml:"duration"`
}

// RateLimitConfig defines the default per-app budgets. Each registered app
// may override these at registration time.
type RateLimitConfig struct {
	DefaultPerMinute int `json:"defaultPerMinute" yaml:"defaultPerMinute"`
	DefaultPerHour   int `json:"defaultPerHour" yaml:"defaultPerHour"`
}

// QRCodeConfig defines QR code generation configuration
type QRCodeConfig struct {
	Size                 int    `json:"size" yaml:"size"`
	ErrorCorrectionLevel string `json:"errorCorrectionLevel" yaml:"errorCorrectionLevel"`
}

type Log struct {
	Pretty bool   `json:"pretty" yaml:"pretty"`
	Level  string `json:"level" yaml:"level"`
}

// LoadWithEnv loads .yaml files through koanf.
func LoadWithEnv[T any](currEnv string, configPath ...string) (*T, error) {
	cfg := new(T)
	koanfInstance := koanf.New(".")

	// Build list of paths to search for config file
	searchPaths := []string{defaultPath}
	if len(configPath) != 0 {
		pwd, err := os.Getwd()
		if err != nil {
			return nil, errors.Wrap(err, "os.Getwd")
		}
		for _, path := range configPath {
			abs := filepath.Join(pwd, path)
			searchPaths = append(searchPaths, abs)
		}
	}

	// Try to find and load the config file
	var configFile string
	var found bool
	for _, path := range searchPaths {
		candidate := filepath.Join(path, currEnv+".yaml")
		if _, err := os.Stat(candidate); err == nil {
			configFile = candidate
			found = true

			break
		}
	}

	if !found {
		return nil, errors.Errorf("config file %s.yaml not found in any search path", currEnv)
	}

	// Load YAML config file
	if err := koanfInstance.Load(file.Provider(configFile), yaml.Parser()); err != nil {
		return nil, errors.Wrapf(err, "read %s config failed", currEnv)
	}

	existingConfigMap := koanfInstance.Raw()

	// Load environment variables
	if err := koanfInstance.Load(env.Provider(".", env.Opt{
		TransformFunc: func(k, v string) (string, any) {
			// Convert ENV_VAR_NAME to path and align each segment with existing YAML keys.
			// Example: POSTGRES_SSLMODE -> postgres.sslMode (not postgres.sslmode)
			key := canonicalizeEnvKey(k, existingConfigMap)

			return key, v
		},
	}), nil); err != nil {
		return nil, errors.Wrap(err, "load env variables failed")
	}

	// Unmarshal into the config struct (case-insensitive to match env vars)
	if err := koanfInstance.UnmarshalWithConf("", cfg, koanf.UnmarshalConf{
		DecoderConfig: &mapstructure.DecoderConfig{
			Result:           cfg,
			WeaklyTypedInput: true,
			DecodeHook: mapstructure.ComposeDecodeHookFunc(
				mapstructure.StringToTimeDurationHookFunc(),
			),
			MatchName: func(mapKey, fieldName string) bool {
				// Case-insensitive matching for env var overrides
				return strings.EqualFold(mapKey, fieldName)
			},
		},
	}); err != nil {
		return nil, errors.Wrapf(err, "unmarshal %s config failed", currEnv)
	}

	return cfg, nil
}

func New() (*Config, error) {
	cfg, err := LoadWithEnv[Config]("config", "config", "../config", "../../config")
	if err != nil {
		return nil, err
	}

	if strings.TrimSpace(cfg.HTTP.MaxRequestBodySize) == "" {
		cfg.HTTP.MaxRequestBodySize = defaultMaxRequestBodySize
	}

	return cfg, nil
}

func canonicalizeEnvKey(rawKey string, existing map[string]any) string {
	segments := strings.Split(strings.ToLower(rawKey), "_")
	canonical := make([]string, 0, len(segments))
	current := existing

	for _, segment := range segments {
		if segment == "" {
			continue
		}

		if matched, next, ok := findExistingSegment(current, segment); ok {
			canonical = append(canonical, matched)
			current = next
		} else {
			canonical = append(canonical, segment)
			current = nil
		}
	}

	return strings.Join(canonical, ".")
}

func findExistingSegment(current map[string]any, segment string) (matched string, next map[string]any, ok bool) {
	if len(current) == 0 {
		return "", nil, false
	}

	needle := normalizeToken(segment)
	for key, value := range current {
		if normalizeToken(key) != needle {
			continue
		}

		child, _ := value.(map[string]any)

		return key, child, true
	}

	return "", nil, false
}

func normalizeToken(s string) string {
	var normalized strings.Builder
	normalized.Grow(len(s))

	for _, r := range s {
		if !unicode.IsLetter(r) && !unicode.IsDigit(r) {
			continue
		}
		normalized.WriteRune(unicode.ToLower(r))
	}

	return normalized.String()
}
