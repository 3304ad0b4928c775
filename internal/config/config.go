// File: backend/internal/config/config.go
package config

import (
	"encoding/json"
	"fmt"
	"log"
	"os"
	"time"
)

const (
	DefaultSystemAPIKeyPlaceholder = "SET_A_REAL_KEY_IN_CONFIG_OR_ENV_4fb0a2c6e1d94fb0"
	DefaultAttemptTimeoutSeconds   = 8
	DefaultMaxRedirects            = 7
	DefaultMaxURLsPerRequest       = 5000
	DefaultDNSQueryTimeoutSeconds  = 5
	DefaultRateLimitBurst          = 3
)

type AppConfig struct {
	Server         ServerConfig
	Checker        CheckerConfig
	DNS            DNSCheckerConfig
	Logging        LoggingConfig
	loadedFromPath string
}

func (ac *AppConfig) GetLoadedFromPath() string { return ac.loadedFromPath }

type ServerConfig struct {
	Port   string `json:"port"`
	APIKey string `json:"apiKey"`
}

type LoggingConfig struct {
	Level string `json:"level"`
}

// CheckerConfig is the runtime form of the checker settings; timeouts are
// time.Duration here and plain seconds in CheckerConfigJSON.
type CheckerConfig struct {
	UserAgents        []string
	DefaultHeaders    map[string]string
	AttemptTimeout    time.Duration
	MaxRedirects      int
	MaxURLsPerRequest int
	AllowInsecureTLS  bool
	RateLimitRPS      float64
	RateLimitBurst    int

	AttemptTimeoutSeconds int `json:"-"`
}

type CheckerConfigJSON struct {
	UserAgents            []string          `json:"userAgents"`
	DefaultHeaders        map[string]string `json:"defaultHeaders"`
	AttemptTimeoutSeconds int               `json:"attemptTimeoutSeconds"`
	MaxRedirects          int               `json:"maxRedirects"`
	MaxURLsPerRequest     int               `json:"maxUrlsPerRequest"`
	AllowInsecureTLS      bool              `json:"allowInsecureTLS"`
	RateLimitRPS          float64           `json:"rateLimitRps,omitempty"`
	RateLimitBurst        int               `json:"rateLimitBurst,omitempty"`
}

type DNSCheckerConfig struct {
	Enabled      bool
	Resolvers    []string
	QueryTimeout time.Duration

	QueryTimeoutSeconds int `json:"-"`
}

type DNSCheckerConfigJSON struct {
	Enabled             bool     `json:"enabled"`
	Resolvers           []string `json:"resolvers"`
	QueryTimeoutSeconds int      `json:"queryTimeoutSeconds"`
}

type AppConfigJSON struct {
	Server  ServerConfig         `json:"server"`
	Checker CheckerConfigJSON    `json:"checker"`
	DNS     DNSCheckerConfigJSON `json:"dns"`
	Logging LoggingConfig        `json:"logging"`
}

// Load reads the main config file. A missing file is not fatal: defaults are
// used and saved back so the operator has a file to edit. The read or parse
// error, if any, is returned alongside the usable config.
func Load(mainConfigPath string) (*AppConfig, error) {
	if mainConfigPath == "" {
		mainConfigPath = "config.json"
		log.Printf("Config: Main config path empty, using default: %s", mainConfigPath)
	}
	log.Printf("Config: Attempting to load main config from: %s", mainConfigPath)

	appCfgJSON := DefaultAppConfigJSON()
	var originalLoadError error

	data, err := os.ReadFile(mainConfigPath)
	if err != nil {
		originalLoadError = err
		if os.IsNotExist(err) {
			log.Printf("Config: Main config file '%s' not found. Using defaults and attempting to save.", mainConfigPath)
			defaultAppCfg := ConvertJSONToAppConfig(appCfgJSON)
			defaultAppCfg.loadedFromPath = mainConfigPath
			if saveErr := Save(defaultAppCfg, mainConfigPath); saveErr != nil {
				log.Printf("Config: Failed to save default config file '%s': %v", mainConfigPath, saveErr)
			} else {
				log.Printf("Config: Saved default config to '%s'", mainConfigPath)
			}
		} else {
			log.Printf("Config: Error reading main config '%s': %v. Using defaults.", mainConfigPath, err)
		}
	} else {
		if errUnmarshal := json.Unmarshal(data, &appCfgJSON); errUnmarshal != nil {
			log.Printf("Config: Error unmarshalling main config '%s': %v. Using defaults for unparsed fields.", mainConfigPath, errUnmarshal)
			originalLoadError = errUnmarshal
		}
	}

	appConfig := ConvertJSONToAppConfig(appCfgJSON)
	appConfig.loadedFromPath = mainConfigPath
	return appConfig, originalLoadError
}

func ConvertJSONToCheckerConfig(jsonCfg CheckerConfigJSON) CheckerConfig {
	cfg := CheckerConfig{
		UserAgents:            jsonCfg.UserAgents,
		DefaultHeaders:        jsonCfg.DefaultHeaders,
		AttemptTimeout:        time.Duration(jsonCfg.AttemptTimeoutSeconds) * time.Second,
		MaxRedirects:          jsonCfg.MaxRedirects,
		MaxURLsPerRequest:     jsonCfg.MaxURLsPerRequest,
		AllowInsecureTLS:      jsonCfg.AllowInsecureTLS,
		RateLimitRPS:          jsonCfg.RateLimitRPS,
		RateLimitBurst:        jsonCfg.RateLimitBurst,
		AttemptTimeoutSeconds: jsonCfg.AttemptTimeoutSeconds,
	}
	if cfg.AttemptTimeoutSeconds <= 0 {
		cfg.AttemptTimeoutSeconds = DefaultAttemptTimeoutSeconds
		cfg.AttemptTimeout = time.Duration(DefaultAttemptTimeoutSeconds) * time.Second
	}
	if cfg.MaxRedirects <= 0 {
		cfg.MaxRedirects = DefaultMaxRedirects
	}
	if cfg.MaxURLsPerRequest <= 0 {
		cfg.MaxURLsPerRequest = DefaultMaxURLsPerRequest
	}
	if cfg.RateLimitRPS < 0 {
		cfg.RateLimitRPS = 0
	}
	if cfg.RateLimitRPS > 0 && cfg.RateLimitBurst <= 0 {
		cfg.RateLimitBurst = DefaultRateLimitBurst
	}
	return cfg
}

func ConvertCheckerConfigToJSON(cfg CheckerConfig) CheckerConfigJSON {
	seconds := cfg.AttemptTimeoutSeconds
	if seconds <= 0 {
		seconds = int(cfg.AttemptTimeout / time.Second)
	}
	return CheckerConfigJSON{
		UserAgents:            cfg.UserAgents,
		DefaultHeaders:        cfg.DefaultHeaders,
		AttemptTimeoutSeconds: seconds,
		MaxRedirects:          cfg.MaxRedirects,
		MaxURLsPerRequest:     cfg.MaxURLsPerRequest,
		AllowInsecureTLS:      cfg.AllowInsecureTLS,
		RateLimitRPS:          cfg.RateLimitRPS,
		RateLimitBurst:        cfg.RateLimitBurst,
	}
}

func ConvertJSONToDNSConfig(jsonCfg DNSCheckerConfigJSON) DNSCheckerConfig {
	cfg := DNSCheckerConfig{
		Enabled:             jsonCfg.Enabled,
		Resolvers:           jsonCfg.Resolvers,
		QueryTimeout:        time.Duration(jsonCfg.QueryTimeoutSeconds) * time.Second,
		QueryTimeoutSeconds: jsonCfg.QueryTimeoutSeconds,
	}
	if cfg.QueryTimeoutSeconds <= 0 {
		cfg.QueryTimeoutSeconds = DefaultDNSQueryTimeoutSeconds
		cfg.QueryTimeout = time.Duration(DefaultDNSQueryTimeoutSeconds) * time.Second
	}
	if len(cfg.Resolvers) == 0 {
		cfg.Resolvers = []string{"1.1.1.1:53", "8.8.8.8:53"}
	}
	return cfg
}

func ConvertDNSConfigToJSON(cfg DNSCheckerConfig) DNSCheckerConfigJSON {
	seconds := cfg.QueryTimeoutSeconds
	if seconds <= 0 {
		seconds = int(cfg.QueryTimeout / time.Second)
	}
	return DNSCheckerConfigJSON{
		Enabled:             cfg.Enabled,
		Resolvers:           cfg.Resolvers,
		QueryTimeoutSeconds: seconds,
	}
}

func ConvertJSONToAppConfig(jsonCfg AppConfigJSON) *AppConfig {
	return &AppConfig{
		Server:  jsonCfg.Server,
		Checker: ConvertJSONToCheckerConfig(jsonCfg.Checker),
		DNS:     ConvertJSONToDNSConfig(jsonCfg.DNS),
		Logging: jsonCfg.Logging,
	}
}

func ConvertAppConfigToJSON(appCfg *AppConfig) AppConfigJSON {
	return AppConfigJSON{
		Server:  appCfg.Server,
		Checker: ConvertCheckerConfigToJSON(appCfg.Checker),
		DNS:     ConvertDNSConfigToJSON(appCfg.DNS),
		Logging: appCfg.Logging,
	}
}

func Save(cfg *AppConfig, filePath string) error {
	if filePath == "" {
		return fmt.Errorf("cannot save config, file path is empty")
	}
	appCfgJSON := ConvertAppConfigToJSON(cfg)
	data, err := json.MarshalIndent(appCfgJSON, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal app config to JSON: %w", err)
	}
	if err := os.WriteFile(filePath, data, 0644); err != nil {
		return fmt.Errorf("failed to write app config to file '%s': %w", filePath, err)
	}
	log.Printf("Config: Successfully saved main configuration to '%s'", filePath)
	return nil
}

func DefaultAppConfigJSON() AppConfigJSON {
	return AppConfigJSON{
		Server: ServerConfig{
			Port:   "8080",
			APIKey: DefaultSystemAPIKeyPlaceholder,
		},
		Checker: CheckerConfigJSON{
			UserAgents: []string{
				"Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/91.0.4472.124 Safari/537.36",
			},
			DefaultHeaders:        map[string]string{"Accept-Language": "en-US,en;q=0.9"},
			AttemptTimeoutSeconds: DefaultAttemptTimeoutSeconds,
			MaxRedirects:          DefaultMaxRedirects,
			MaxURLsPerRequest:     DefaultMaxURLsPerRequest,
			AllowInsecureTLS:      false,
		},
		DNS: DNSCheckerConfigJSON{
			Enabled:             true,
			Resolvers:           []string{"1.1.1.1:53", "8.8.8.8:53"},
			QueryTimeoutSeconds: DefaultDNSQueryTimeoutSeconds,
		},
		Logging: LoggingConfig{
			Level: "INFO",
		},
	}
}

func DefaultConfig() *AppConfig { return ConvertJSONToAppConfig(DefaultAppConfigJSON()) }
