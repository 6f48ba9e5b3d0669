package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/bnema/nodepay-cli/internal/application"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	EnvPrefix  = "NP"
	configName = "config"
	configType = "toml"
	configDir  = ".config/np"
)

const (
	KeyConfigFile         = "config"
	KeyEnvFile            = "env_file"
	KeyTokensPath         = "tokens.path"
	KeyProxiesPath        = "proxies.path"
	KeyProxiesEnabled     = "proxies.enabled"
	KeyAccountsPath       = "accounts.path"
	KeySessionEndpoint    = "api.session_endpoint"
	KeyPingEndpoints      = "api.ping_endpoints"
	KeyMissionEndpoint    = "api.mission_endpoint"
	KeyAPITimeout         = "api.timeout"
	KeyRetryAfterFallback = "api.retry_after_fallback"
	KeyHeaders            = "api.headers"
	KeyHeartbeatInterval  = "heartbeat.interval"
	KeyPingTimeout        = "heartbeat.ping_timeout"
	KeyProtocolVersion    = "heartbeat.version"
	KeyRetryCeiling       = "heartbeat.retry_ceiling"
	KeySmoothZeroScore    = "heartbeat.smooth_zero_score"
	KeyClaimEnabled       = "claim.enabled"
	KeyClaimAt            = "claim.at"
	KeyClaimTimezone      = "claim.timezone"
	KeyClaimOnStart       = "claim.on_start"
	KeyClaimMissionID     = "claim.mission_id"
	KeyClaimPace          = "claim.pace"
	KeyLogLevel           = "log.level"
	KeyLogFormat          = "log.format"
)

const (
	defaultSessionEndpoint    = "http://api.nodepay.ai/api/auth/session"
	defaultPingEndpoint       = "https://nw.nodepay.org/api/network/ping"
	defaultMissionEndpoint    = "https://api.nodepay.org/api/mission/complete-mission"
	defaultClaimTimezone      = "Asia/Jakarta"
	defaultProtocolVersion    = "2.2.7"
	defaultRetryCeiling       = 3
	defaultClaimAt            = "00:05"
	defaultClaimMissionID     = "1"
	defaultAPITimeout         = 30 * time.Second
	defaultRetryAfterFallback = 60 * time.Second
	defaultHeartbeatInterval  = 60 * time.Second
	defaultPingTimeout        = 60 * time.Second
	defaultClaimPace          = 2 * time.Second
)

type Settings struct {
	TokensPath     string
	ProxiesPath    string
	ProxiesEnabled bool
	AccountsPath   string
	API            APISettings
	Heartbeat      HeartbeatSettings
	Claim          ClaimSettings
	Log            LogSettings
}

type APISettings struct {
	SessionEndpoint    string
	PingEndpoints      []string
	MissionEndpoint    string
	Timeout            time.Duration
	RetryAfterFallback time.Duration
	Headers            map[string]string
}

type HeartbeatSettings struct {
	Interval        time.Duration
	PingTimeout     time.Duration
	ProtocolVersion string
	RetryCeiling    int
	SmoothZeroScore bool
}

type ClaimSettings struct {
	Enabled   bool
	At        string
	Timezone  string
	OnStart   bool
	MissionID string
	Pace      time.Duration
}

type LogSettings struct {
	Level  string
	Format string
}

// New returns a viper instance with every default set and NP_* environment
// overrides enabled.
func New() *viper.Viper {
	v := viper.New()

	v.SetDefault(KeyEnvFile, ".env")
	v.SetDefault(KeyTokensPath, "token.txt")
	v.SetDefault(KeyProxiesPath, "proxy.txt")
	v.SetDefault(KeyProxiesEnabled, true)
	v.SetDefault(KeyAccountsPath, "")
	v.SetDefault(KeySessionEndpoint, defaultSessionEndpoint)
	v.SetDefault(KeyPingEndpoints, []string{defaultPingEndpoint})
	v.SetDefault(KeyMissionEndpoint, defaultMissionEndpoint)
	v.SetDefault(KeyAPITimeout, defaultAPITimeout)
	v.SetDefault(KeyRetryAfterFallback, defaultRetryAfterFallback)
	v.SetDefault(KeyHeartbeatInterval, defaultHeartbeatInterval)
	v.SetDefault(KeyPingTimeout, defaultPingTimeout)
	v.SetDefault(KeyProtocolVersion, defaultProtocolVersion)
	v.SetDefault(KeyRetryCeiling, defaultRetryCeiling)
	v.SetDefault(KeySmoothZeroScore, true)
	v.SetDefault(KeyClaimEnabled, false)
	v.SetDefault(KeyClaimAt, defaultClaimAt)
	v.SetDefault(KeyClaimTimezone, defaultClaimTimezone)
	v.SetDefault(KeyClaimOnStart, true)
	v.SetDefault(KeyClaimMissionID, defaultClaimMissionID)
	v.SetDefault(KeyClaimPace, defaultClaimPace)
	v.SetDefault(KeyLogLevel, "info")
	v.SetDefault(KeyLogFormat, "console")

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	return v
}

// Load reads the .env file and the config file into v, then resolves the
// settings. Both files are optional unless a config file was named
// explicitly.
func Load(v *viper.Viper) (Settings, error) {
	if err := loadEnvFile(v.GetString(KeyEnvFile)); err != nil {
		return Settings{}, err
	}

	if err := readConfigFile(v); err != nil {
		return Settings{}, err
	}

	settings := Settings{
		TokensPath:     v.GetString(KeyTokensPath),
		ProxiesPath:    v.GetString(KeyProxiesPath),
		ProxiesEnabled: v.GetBool(KeyProxiesEnabled),
		AccountsPath:   v.GetString(KeyAccountsPath),
		API: APISettings{
			SessionEndpoint:    v.GetString(KeySessionEndpoint),
			PingEndpoints:      splitList(v.GetStringSlice(KeyPingEndpoints)),
			MissionEndpoint:    v.GetString(KeyMissionEndpoint),
			Timeout:            v.GetDuration(KeyAPITimeout),
			RetryAfterFallback: v.GetDuration(KeyRetryAfterFallback),
			Headers:            v.GetStringMapString(KeyHeaders),
		},
		Heartbeat: HeartbeatSettings{
			Interval:        v.GetDuration(KeyHeartbeatInterval),
			PingTimeout:     v.GetDuration(KeyPingTimeout),
			ProtocolVersion: v.GetString(KeyProtocolVersion),
			RetryCeiling:    v.GetInt(KeyRetryCeiling),
			SmoothZeroScore: v.GetBool(KeySmoothZeroScore),
		},
		Claim: ClaimSettings{
			Enabled:   v.GetBool(KeyClaimEnabled),
			At:        v.GetString(KeyClaimAt),
			Timezone:  v.GetString(KeyClaimTimezone),
			OnStart:   v.GetBool(KeyClaimOnStart),
			MissionID: v.GetString(KeyClaimMissionID),
			Pace:      v.GetDuration(KeyClaimPace),
		},
		Log: LogSettings{
			Level:  v.GetString(KeyLogLevel),
			Format: v.GetString(KeyLogFormat),
		},
	}

	if err := settings.Validate(); err != nil {
		return Settings{}, err
	}

	return settings, nil
}

func (s Settings) Validate() error {
	switch {
	case strings.TrimSpace(s.TokensPath) == "" && strings.TrimSpace(s.AccountsPath) == "":
		return errors.New("tokens path is empty")
	case strings.TrimSpace(s.API.SessionEndpoint) == "":
		return errors.New("session endpoint is empty")
	case len(s.API.PingEndpoints) == 0:
		return errors.New("no ping endpoints configured")
	case s.Heartbeat.Interval <= 0:
		return fmt.Errorf("heartbeat interval must be positive, got %s", s.Heartbeat.Interval)
	case s.Heartbeat.PingTimeout <= 0:
		return fmt.Errorf("ping timeout must be positive, got %s", s.Heartbeat.PingTimeout)
	case s.Heartbeat.RetryCeiling <= 0:
		return fmt.Errorf("retry ceiling must be positive, got %d", s.Heartbeat.RetryCeiling)
	case s.API.Timeout <= 0:
		return fmt.Errorf("api timeout must be positive, got %s", s.API.Timeout)
	}

	if _, _, err := application.ParseClockTime(s.Claim.At); err != nil {
		return err
	}
	if _, err := s.Claim.Location(); err != nil {
		return err
	}

	return nil
}

// Location resolves the claim time zone.
func (c ClaimSettings) Location() (*time.Location, error) {
	name := strings.TrimSpace(c.Timezone)
	if name == "" {
		return time.UTC, nil
	}

	loc, err := time.LoadLocation(name)
	if err != nil {
		return nil, fmt.Errorf("load claim timezone %q: %w", name, err)
	}

	return loc, nil
}

func loadEnvFile(path string) error {
	if strings.TrimSpace(path) == "" {
		return nil
	}

	if err := godotenv.Load(path); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("load env file: %w", err)
	}

	return nil
}

func readConfigFile(v *viper.Viper) error {
	if file := v.GetString(KeyConfigFile); file != "" {
		v.SetConfigFile(file)
		if err := v.ReadInConfig(); err != nil {
			return fmt.Errorf("read config file: %w", err)
		}
		return nil
	}

	v.SetConfigName(configName)
	v.SetConfigType(configType)
	v.AddConfigPath(".")
	if homeDir, err := os.UserHomeDir(); err == nil {
		v.AddConfigPath(filepath.Join(homeDir, configDir))
	}

	if err := v.ReadInConfig(); err != nil {
		var configNotFound viper.ConfigFileNotFoundError
		if !errors.As(err, &configNotFound) {
			return fmt.Errorf("read config file: %w", err)
		}
	}

	return nil
}

// splitList flattens comma separated entries, as given through env vars.
func splitList(values []string) []string {
	out := make([]string, 0, len(values))
	for _, value := range values {
		for _, part := range strings.Split(value, ",") {
			if trimmed := strings.TrimSpace(part); trimmed != "" {
				out = append(out, trimmed)
			}
		}
	}

	return out
}
