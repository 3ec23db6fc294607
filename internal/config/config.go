package config

import (
	"fmt"
	"time"

	"github.com/stringerc/syncscript-gateway/internal/utils"
)

// ConfigError reports a missing or invalid required configuration value.
// It is surfaced either at startup (strict mode) or on first use of the
// affected endpoint, never as a scattered per-handler nil check.
type ConfigError struct {
	Field  string
	Reason string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("configuration error: %s %s", e.Field, e.Reason)
}

func missing(field string) *ConfigError {
	return &ConfigError{Field: field, Reason: "is not set"}
}

// Config is the complete, immutable application configuration. It is built
// once at process start and passed into every handler constructor; nothing
// mutates it during request handling.
type Config struct {
	Server   ServerConfig
	DeepSeek DeepSeekConfig
	TTS      TTSConfig
	Supabase SupabaseConfig
	Twilio   TwilioConfig
	Cron     CronConfig
}

// ServerConfig holds the HTTP server configuration
type ServerConfig struct {
	Host         string
	Port         int
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration
}

// Addr is the listen address in host:port form
func (c ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// DeepSeekConfig holds the chat-completion upstream configuration
type DeepSeekConfig struct {
	APIKey  string
	BaseURL string
	Model   string
	Timeout time.Duration
}

// Check reports whether the chat upstream is usable
func (c DeepSeekConfig) Check() error {
	if c.APIKey == "" {
		return missing("DEEPSEEK_API_KEY")
	}
	if c.BaseURL == "" {
		return missing("DEEPSEEK_BASE_URL")
	}
	return nil
}

// TTSConfig holds the speech-synthesis upstream configuration
type TTSConfig struct {
	APIKey        string
	BaseURL       string
	Timeout       time.Duration
	MaxTextLength int
	DefaultVoice  string
	DefaultSpeed  float64
}

// Check reports whether the speech upstream is usable
func (c TTSConfig) Check() error {
	if c.APIKey == "" {
		return missing("TTS_API_KEY")
	}
	if c.BaseURL == "" {
		return missing("TTS_BASE_URL")
	}
	return nil
}

// SupabaseConfig holds the identity provider and function-invocation
// configuration
type SupabaseConfig struct {
	URL        string
	AnonKey    string
	ServiceKey string
	Timeout    time.Duration
}

// CheckAuth reports whether bearer-session resolution is usable
func (c SupabaseConfig) CheckAuth() error {
	if c.URL == "" {
		return missing("SUPABASE_URL")
	}
	if c.AnonKey == "" {
		return missing("SUPABASE_ANON_KEY")
	}
	return nil
}

// CheckFunctions reports whether server-side function invocation is usable
func (c SupabaseConfig) CheckFunctions() error {
	if c.URL == "" {
		return missing("SUPABASE_URL")
	}
	if c.ServiceKey == "" {
		return missing("SUPABASE_SERVICE_KEY")
	}
	return nil
}

// FunctionURL builds the invocation URL for a named edge function
func (c SupabaseConfig) FunctionURL(name string) string {
	return c.URL + "/functions/v1/" + name
}

// TwilioConfig holds the telephony upstream configuration
type TwilioConfig struct {
	AccountSID string
	AuthToken  string
	FromNumber string
	ToNumber   string
	Greeting   string
	BaseURL    string
	Timeout    time.Duration
}

// Check reports whether the telephony upstream is usable
func (c TwilioConfig) Check() error {
	if c.AccountSID == "" {
		return missing("TWILIO_ACCOUNT_SID")
	}
	if c.AuthToken == "" {
		return missing("TWILIO_AUTH_TOKEN")
	}
	if c.FromNumber == "" {
		return missing("TWILIO_FROM_NUMBER")
	}
	if c.ToNumber == "" {
		return missing("WAKEUP_TO_NUMBER")
	}
	return nil
}

// CallsURL builds the call-creation endpoint for the configured account
func (c TwilioConfig) CallsURL() string {
	return fmt.Sprintf("%s/2010-04-01/Accounts/%s/Calls.json", c.BaseURL, c.AccountSID)
}

// CronConfig holds the scheduled-trigger authentication configuration.
// SecretRequired is an explicit mode: when true (the default), an
// unconfigured secret rejects every cron trigger instead of silently
// letting them through.
type CronConfig struct {
	Secret         string
	SecretRequired bool
}

// Check reports whether the cron gate is usable
func (c CronConfig) Check() error {
	if c.SecretRequired && c.Secret == "" {
		return missing("CRON_SECRET")
	}
	return nil
}

// Load builds the configuration from the environment. It never fails:
// missing required values become ConfigErrors when the affected endpoint
// is first used, and Validate lists them for startup logging.
func Load() *Config {
	return &Config{
		Server: ServerConfig{
			Host:         utils.GetEnvString("HOST", "0.0.0.0"),
			Port:         utils.GetEnvPort("PORT", 8080),
			ReadTimeout:  utils.GetEnvDuration("SERVER_READ_TIMEOUT", 15*time.Second),
			WriteTimeout: utils.GetEnvDuration("SERVER_WRITE_TIMEOUT", 60*time.Second),
			IdleTimeout:  utils.GetEnvDuration("SERVER_IDLE_TIMEOUT", 60*time.Second),
		},
		DeepSeek: DeepSeekConfig{
			APIKey:  utils.GetEnvString("DEEPSEEK_API_KEY", ""),
			BaseURL: utils.GetEnvString("DEEPSEEK_BASE_URL", "https://api.deepseek.com"),
			Model:   utils.GetEnvString("DEEPSEEK_MODEL", "deepseek-chat"),
			Timeout: utils.GetEnvDuration("UPSTREAM_TIMEOUT", 30*time.Second),
		},
		TTS: TTSConfig{
			APIKey:        utils.GetEnvString("TTS_API_KEY", ""),
			BaseURL:       utils.GetEnvString("TTS_BASE_URL", ""),
			Timeout:       utils.GetEnvDuration("TTS_TIMEOUT", 15*time.Second),
			MaxTextLength: utils.GetEnvInt("TTS_MAX_TEXT_LENGTH", 2000),
			DefaultVoice:  utils.GetEnvString("TTS_DEFAULT_VOICE", "alloy"),
			DefaultSpeed:  1.0,
		},
		Supabase: SupabaseConfig{
			URL:        utils.GetEnvString("SUPABASE_URL", ""),
			AnonKey:    utils.GetEnvString("SUPABASE_ANON_KEY", ""),
			ServiceKey: utils.GetEnvString("SUPABASE_SERVICE_KEY", ""),
			Timeout:    utils.GetEnvDuration("SUPABASE_TIMEOUT", 10*time.Second),
		},
		Twilio: TwilioConfig{
			AccountSID: utils.GetEnvString("TWILIO_ACCOUNT_SID", ""),
			AuthToken:  utils.GetEnvString("TWILIO_AUTH_TOKEN", ""),
			FromNumber: utils.GetEnvString("TWILIO_FROM_NUMBER", ""),
			ToNumber:   utils.GetEnvString("WAKEUP_TO_NUMBER", ""),
			Greeting:   utils.GetEnvString("WAKEUP_MESSAGE", "Good morning! This is your SyncScript wake-up call. Time to start your day."),
			BaseURL:    utils.GetEnvString("TWILIO_BASE_URL", "https://api.twilio.com"),
			Timeout:    utils.GetEnvDuration("UPSTREAM_TIMEOUT", 30*time.Second),
		},
		Cron: CronConfig{
			Secret:         utils.GetEnvString("CRON_SECRET", ""),
			SecretRequired: utils.GetEnvBool("CRON_SECRET_REQUIRED", true),
		},
	}
}

// Validate returns every ConfigError for integrations that are not fully
// configured. Callers decide whether these are fatal (strict startup) or
// logged warnings (lazy mode, errors surface on first use).
func (c *Config) Validate() []error {
	var errs []error
	for _, check := range []error{
		c.DeepSeek.Check(),
		c.TTS.Check(),
		c.Supabase.CheckAuth(),
		c.Supabase.CheckFunctions(),
		c.Twilio.Check(),
		c.Cron.Check(),
	} {
		if check != nil {
			errs = append(errs, check)
		}
	}
	return errs
}
