package config

import (
	"errors"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	BrowserModeBrowserbase = "browserbase"
	BrowserModeLocal       = "local"
)

type Config struct {
	Target      TargetConfig      `mapstructure:"target"`
	Bootstrap   BootstrapConfig   `mapstructure:"bootstrap"`
	Agent       AgentConfig       `mapstructure:"agent"`
	LLM         LLMConfig         `mapstructure:"llm"`
	Browser     BrowserConfig     `mapstructure:"browser"`
	Browserbase BrowserbaseConfig `mapstructure:"browserbase"`
	Log         LogConfig         `mapstructure:"log"`
	Artifacts   ArtifactsConfig   `mapstructure:"artifacts"`
}

type TargetConfig struct {
	StartURL       string   `mapstructure:"start_url"`
	AllowedOrigins []string `mapstructure:"allowed_origins"`
	AnswerSelector string   `mapstructure:"answer_selector"`
	AskUserInput   string   `mapstructure:"ask_user_input"`
	AskUserSubmit  string   `mapstructure:"ask_user_submit"`
}

type BootstrapConfig struct {
	LoadTimeout       time.Duration `mapstructure:"load_timeout"`
	SignInLink        string        `mapstructure:"sign_in_link"`
	SignInLoadTimeout time.Duration `mapstructure:"sign_in_load_timeout"`
	ReadyMarker       string        `mapstructure:"ready_marker"`
	OAuthButton       string        `mapstructure:"oauth_button"`
	PopupTimeout      time.Duration `mapstructure:"popup_timeout"`
	EmailField        string        `mapstructure:"email_field"`
	PasswordField     string        `mapstructure:"password_field"`
	NextButton        string        `mapstructure:"next_button"`
	PasswordTimeout   time.Duration `mapstructure:"password_timeout"`
	PopupCloseTimeout time.Duration `mapstructure:"popup_close_timeout"`
	SettleDelay       time.Duration `mapstructure:"settle_delay"`
	Email             string        `mapstructure:"email"`
	Password          string        `mapstructure:"password"`
}

type AgentConfig struct {
	MaxSteps         int           `mapstructure:"max_steps"`
	SnapshotMaxChars int           `mapstructure:"snapshot_max_chars"`
	ObservationWait  time.Duration `mapstructure:"observation_wait"`
	SystemPrompt     string        `mapstructure:"system_prompt"`
}

type LLMConfig struct {
	APIKey     string `mapstructure:"api_key"`
	Model      string `mapstructure:"model"`
	BaseURL    string `mapstructure:"base_url"`
	LogTraffic bool   `mapstructure:"log_traffic"`
}

type BrowserConfig struct {
	Mode              string        `mapstructure:"mode"`
	Headless          bool          `mapstructure:"headless"`
	NoSandbox         bool          `mapstructure:"no_sandbox"`
	Timeout           time.Duration `mapstructure:"timeout"`
	NavigationTimeout time.Duration `mapstructure:"navigation_timeout"`
	SlowMotion        time.Duration `mapstructure:"slow_motion"`
	// Bin overrides the Chrome binary used in local mode.
	Bin string `mapstructure:"bin"`
}

type BrowserbaseConfig struct {
	APIKey    string `mapstructure:"api_key"`
	ProjectID string `mapstructure:"project_id"`
	BaseURL   string `mapstructure:"base_url"`
}

type LogConfig struct {
	Level      string `mapstructure:"level"`
	Format     string `mapstructure:"format"`
	File       string `mapstructure:"file"`
	MaxSizeMB  int    `mapstructure:"max_size_mb"`
	MaxBackups int    `mapstructure:"max_backups"`
	MaxAgeDays int    `mapstructure:"max_age_days"`
}

type ArtifactsConfig struct {
	Dir string `mapstructure:"dir"`
}

// envAliases are the well-known variable names accepted next to OPERATOR_*.
var envAliases = map[string][]string{
	"llm.api_key":            {"OPENAI_API_KEY"},
	"llm.model":              {"OPENAI_MODEL"},
	"browserbase.api_key":    {"BROWSERBASE_API_KEY"},
	"browserbase.project_id": {"BROWSERBASE_PROJECT_ID"},
	"bootstrap.email":        {"OPERATOR_EMAIL"},
	"bootstrap.password":     {"OPERATOR_PASSWORD"},
}

func SetDefaults(v *viper.Viper) {
	v.SetDefault("target.start_url", "https://manus.im/login")
	v.SetDefault("target.allowed_origins", []string{"https://manus.im"})
	v.SetDefault("target.answer_selector", "div.MarkdownProse")
	v.SetDefault("target.ask_user_input", "textarea")
	v.SetDefault("target.ask_user_submit", "//button[contains(normalize-space(.), 'Run')]")

	v.SetDefault("bootstrap.load_timeout", 10*time.Second)
	v.SetDefault("bootstrap.sign_in_link", "//a[contains(normalize-space(.), 'Already have an account')]")
	v.SetDefault("bootstrap.sign_in_load_timeout", 8*time.Second)
	v.SetDefault("bootstrap.ready_marker", "//button[contains(normalize-space(.), 'Run')]")
	v.SetDefault("bootstrap.oauth_button", "//button[contains(normalize-space(.), 'Sign up with Google') or contains(normalize-space(.), 'Continue with Google')]")
	v.SetDefault("bootstrap.popup_timeout", 15*time.Second)
	v.SetDefault("bootstrap.email_field", "input[type='email']")
	v.SetDefault("bootstrap.password_field", "input[type='password']")
	v.SetDefault("bootstrap.next_button", "//button[contains(normalize-space(.), 'Next')]")
	v.SetDefault("bootstrap.password_timeout", 12*time.Second)
	v.SetDefault("bootstrap.popup_close_timeout", 30*time.Second)
	v.SetDefault("bootstrap.settle_delay", 2*time.Second)
	v.SetDefault("bootstrap.email", "")
	v.SetDefault("bootstrap.password", "")

	v.SetDefault("agent.max_steps", 0)
	v.SetDefault("agent.snapshot_max_chars", 4000)
	v.SetDefault("agent.observation_wait", 2*time.Second)
	v.SetDefault("agent.system_prompt", "")

	v.SetDefault("llm.model", "gpt-4o-mini")
	v.SetDefault("llm.base_url", "https://api.openai.com/v1")
	v.SetDefault("llm.log_traffic", false)

	v.SetDefault("browser.mode", BrowserModeBrowserbase)
	v.SetDefault("browser.headless", true)
	v.SetDefault("browser.no_sandbox", false)
	v.SetDefault("browser.timeout", 10*time.Second)
	v.SetDefault("browser.navigation_timeout", 30*time.Second)
	v.SetDefault("browser.slow_motion", time.Duration(0))
	v.SetDefault("browser.bin", "")

	v.SetDefault("browserbase.base_url", "https://api.browserbase.com")

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "console")
	v.SetDefault("log.file", "")
	v.SetDefault("log.max_size_mb", 20)
	v.SetDefault("log.max_backups", 5)
	v.SetDefault("log.max_age_days", 14)

	v.SetDefault("artifacts.dir", "artifacts")
}

// LoadDotEnv loads .env and then overlays .env.<APP_ENV>. Missing files are fine.
func LoadDotEnv() {
	appEnv := os.Getenv("APP_ENV")
	if appEnv == "" {
		appEnv = "dev"
	}

	if err := godotenv.Load(".env"); err != nil && !errors.Is(err, os.ErrNotExist) {
		log.Printf("Warning: could not load .env: %v", err)
	}

	envFile := fmt.Sprintf(".env.%s", appEnv)
	if err := godotenv.Overload(envFile); err != nil && !errors.Is(err, os.ErrNotExist) {
		log.Printf("Warning: could not load %s: %v", envFile, err)
	}
}

// NewViper returns a viper instance with defaults and environment bindings.
// path may be empty, in which case ./operator.yaml is used when present.
func NewViper(path string) (*viper.Viper, error) {
	v := viper.New()
	SetDefaults(v)

	v.SetEnvPrefix("OPERATOR")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	for key, names := range envAliases {
		bind := append([]string{key, "OPERATOR_" + strings.ToUpper(strings.ReplaceAll(key, ".", "_"))}, names...)
		if err := v.BindEnv(bind...); err != nil {
			return nil, fmt.Errorf("bind env %s: %w", key, err)
		}
	}

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.AddConfigPath(".")
		v.SetConfigName("operator")
		v.SetConfigType("yaml")
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	return v, nil
}

func FromViper(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	return &cfg, nil
}

// Load reads .env files, the optional config file and the environment.
func Load(path string) (*Config, error) {
	LoadDotEnv()

	v, err := NewViper(path)
	if err != nil {
		return nil, err
	}
	cfg, err := FromViper(v)
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	var problems []string

	if c.LLM.APIKey == "" {
		problems = append(problems, "llm.api_key (OPENAI_API_KEY) is required")
	}
	if c.LLM.Model == "" {
		problems = append(problems, "llm.model is required")
	}
	if c.Target.StartURL == "" {
		problems = append(problems, "target.start_url is required")
	}
	if len(c.Target.AllowedOrigins) == 0 {
		problems = append(problems, "target.allowed_origins must not be empty")
	}
	if c.Agent.MaxSteps < 0 {
		problems = append(problems, "agent.max_steps must not be negative")
	}

	switch c.Browser.Mode {
	case BrowserModeBrowserbase:
		if c.Browserbase.APIKey == "" {
			problems = append(problems, "browserbase.api_key (BROWSERBASE_API_KEY) is required in browserbase mode")
		}
		if c.Browserbase.ProjectID == "" {
			problems = append(problems, "browserbase.project_id (BROWSERBASE_PROJECT_ID) is required in browserbase mode")
		}
	case BrowserModeLocal:
	default:
		problems = append(problems, fmt.Sprintf("browser.mode %q is not one of browserbase, local", c.Browser.Mode))
	}

	if len(problems) > 0 {
		return fmt.Errorf("invalid config: %s", strings.Join(problems, "; "))
	}
	return nil
}
