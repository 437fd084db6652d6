package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/robfig/cron/v3"
	log "github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"
)

const defaultExternalHTTPTimeout = 30 * time.Second
const defaultExternalHTTPTimeoutSeconds = int(defaultExternalHTTPTimeout / time.Second)
const defaultGridMargin = 0.1

const (
	DefaultSheetBaseURL = "https://docs.google.com/spreadsheets/d"

	ParserNaive  = "naive"
	ParserHeader = "header"

	ResolverLookup = "lookup"
	ResolverGrid   = "grid"
)

type Config struct {
	SheetID      string `yaml:"sheet_id"`
	SheetName    string `yaml:"sheet_name"`
	SheetBaseURL string `yaml:"sheet_base_url"`

	Parser        string   `yaml:"parser"`
	IDHeaders     []string `yaml:"id_headers"`
	StatusHeaders []string `yaml:"status_headers"`
	NotesHeaders  []string `yaml:"notes_headers"`

	Resolver      string  `yaml:"resolver"`
	GridColumns   int     `yaml:"grid_columns"`
	GridMarginX   float64 `yaml:"grid_margin_x"`
	GridMarginY   float64 `yaml:"grid_margin_y"`
	PositionsPath string  `yaml:"positions_path"`

	ContainerWidth  float64 `yaml:"container_width"`
	ContainerHeight float64 `yaml:"container_height"`
	DrawingImage    string  `yaml:"drawing_image"`
	StaticDir       string  `yaml:"static_dir"`

	ListenAddr                 string `yaml:"listen_addr"`
	OutputDir                  string `yaml:"output_dir"`
	RefreshSchedule            string `yaml:"refresh_schedule"`
	ExternalHTTPTimeoutSeconds int    `yaml:"external_http_timeout_seconds"`

	HistoryDBPath  string `yaml:"history_db_path"`
	SlackBotToken  string `yaml:"slack_bot_token"`
	SlackChannelID string `yaml:"slack_channel_id"`

	LogLevel string `yaml:"log_level"`
}

// Load reads config.yaml (or CONFIG_PATH), applies env overrides and
// defaults, and validates the result.
func Load() (Config, error) {
	// Margins are seeded before the file is read since 0 is a valid margin.
	cfg := Config{GridMarginX: defaultGridMargin, GridMarginY: defaultGridMargin}

	configPath := "config.yaml"
	if envPath := os.Getenv("CONFIG_PATH"); envPath != "" {
		configPath = envPath
	}
	if data, err := os.ReadFile(configPath); err == nil {
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("error parsing %s: %w", configPath, err)
		}
		log.Printf("Loaded config from %s", configPath)
	}

	if err := applyEnv(&cfg); err != nil {
		return cfg, err
	}
	applyDefaults(&cfg)
	return cfg, cfg.Validate()
}

func applyEnv(cfg *Config) error {
	envOverride(&cfg.SheetID, "SHEET_ID")
	envOverride(&cfg.SheetName, "SHEET_NAME")
	envOverride(&cfg.SheetBaseURL, "SHEET_BASE_URL")
	envOverride(&cfg.Parser, "PARSER")
	envOverrideList(&cfg.IDHeaders, "ID_HEADERS")
	envOverrideList(&cfg.StatusHeaders, "STATUS_HEADERS")
	envOverrideList(&cfg.NotesHeaders, "NOTES_HEADERS")
	envOverride(&cfg.Resolver, "RESOLVER")
	envOverrideAllowEmpty(&cfg.PositionsPath, "POSITIONS_PATH")
	envOverride(&cfg.DrawingImage, "DRAWING_IMAGE")
	envOverrideAllowEmpty(&cfg.StaticDir, "STATIC_DIR")
	envOverride(&cfg.ListenAddr, "LISTEN_ADDR")
	envOverride(&cfg.OutputDir, "OUTPUT_DIR")
	envOverrideAllowEmpty(&cfg.RefreshSchedule, "REFRESH_SCHEDULE")
	envOverrideAllowEmpty(&cfg.HistoryDBPath, "HISTORY_DB_PATH")
	envOverride(&cfg.SlackBotToken, "SLACK_BOT_TOKEN")
	envOverride(&cfg.SlackChannelID, "SLACK_CHANNEL_ID")
	envOverride(&cfg.LogLevel, "LOG_LEVEL")

	if err := envOverrideInt(&cfg.GridColumns, "GRID_COLUMNS"); err != nil {
		return err
	}
	if err := envOverrideInt(&cfg.ExternalHTTPTimeoutSeconds, "EXTERNAL_HTTP_TIMEOUT_SECONDS"); err != nil {
		return err
	}
	for key, field := range map[string]*float64{
		"GRID_MARGIN_X":    &cfg.GridMarginX,
		"GRID_MARGIN_Y":    &cfg.GridMarginY,
		"CONTAINER_WIDTH":  &cfg.ContainerWidth,
		"CONTAINER_HEIGHT": &cfg.ContainerHeight,
	} {
		if err := envOverrideFloat(field, key); err != nil {
			return err
		}
	}
	return nil
}

func applyDefaults(cfg *Config) {
	if cfg.SheetName == "" {
		cfg.SheetName = "Sheet1"
	}
	if cfg.SheetBaseURL == "" {
		cfg.SheetBaseURL = DefaultSheetBaseURL
	}
	if cfg.Parser == "" {
		cfg.Parser = ParserHeader
	}
	if len(cfg.IDHeaders) == 0 {
		cfg.IDHeaders = []string{"Pile ID", "Pile No", "Pile", "ID"}
	}
	if len(cfg.StatusHeaders) == 0 {
		cfg.StatusHeaders = []string{"Status", "Progress", "State"}
	}
	if len(cfg.NotesHeaders) == 0 {
		cfg.NotesHeaders = []string{"Notes", "Remarks", "Comments", "Note"}
	}
	if cfg.Resolver == "" {
		cfg.Resolver = ResolverGrid
	}
	if cfg.GridColumns == 0 {
		cfg.GridColumns = 10
	}
	if cfg.ContainerWidth == 0 {
		cfg.ContainerWidth = 1000
	}
	if cfg.ContainerHeight == 0 {
		cfg.ContainerHeight = 500
	}
	if cfg.DrawingImage == "" {
		cfg.DrawingImage = "/static/drawing.png"
	}
	if cfg.ListenAddr == "" {
		cfg.ListenAddr = ":8080"
	}
	if cfg.OutputDir == "" {
		cfg.OutputDir = "./out"
	}
	if cfg.ExternalHTTPTimeoutSeconds == 0 {
		cfg.ExternalHTTPTimeoutSeconds = defaultExternalHTTPTimeoutSeconds
	}
	if cfg.LogLevel == "" {
		cfg.LogLevel = "info"
	}
}

func (c Config) Validate() error {
	if strings.TrimSpace(c.SheetID) == "" {
		return fmt.Errorf("required config 'sheet_id' is not set (via config.yaml or env var)")
	}
	switch c.Parser {
	case ParserNaive, ParserHeader:
	default:
		return fmt.Errorf("parser must be '%s' or '%s', got '%s'", ParserNaive, ParserHeader, c.Parser)
	}
	switch c.Resolver {
	case ResolverLookup, ResolverGrid:
	default:
		return fmt.Errorf("resolver must be '%s' or '%s', got '%s'", ResolverLookup, ResolverGrid, c.Resolver)
	}
	if c.GridColumns < 1 {
		return fmt.Errorf("invalid grid_columns '%d': must be >= 1", c.GridColumns)
	}
	if c.GridMarginX < 0 || c.GridMarginX >= 0.5 {
		return fmt.Errorf("invalid grid_margin_x '%f': must be in [0, 0.5)", c.GridMarginX)
	}
	if c.GridMarginY < 0 || c.GridMarginY >= 0.5 {
		return fmt.Errorf("invalid grid_margin_y '%f': must be in [0, 0.5)", c.GridMarginY)
	}
	if c.ContainerWidth <= 0 || c.ContainerHeight <= 0 {
		return fmt.Errorf("invalid container size %gx%g: both dimensions must be > 0", c.ContainerWidth, c.ContainerHeight)
	}
	if c.ExternalHTTPTimeoutSeconds < 5 {
		return fmt.Errorf("invalid external_http_timeout_seconds '%d': must be >= 5", c.ExternalHTTPTimeoutSeconds)
	}
	if s := strings.TrimSpace(c.RefreshSchedule); s != "" {
		if _, err := ScheduleParser().Parse(s); err != nil {
			return fmt.Errorf("invalid refresh_schedule '%s': %w", s, err)
		}
	}
	if _, err := log.ParseLevel(c.LogLevel); err != nil {
		return fmt.Errorf("invalid log_level '%s': %w", c.LogLevel, err)
	}
	if c.SlackBotToken != "" && c.SlackChannelID == "" {
		return fmt.Errorf("slack_bot_token is set but slack_channel_id is not")
	}
	return nil
}

// ScheduleParser accepts standard 5-field cron expressions
// (minute hour day-of-month month day-of-week).
func ScheduleParser() cron.Parser {
	return cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow)
}

func (c Config) SlackConfigured() bool {
	return c.SlackBotToken != "" && c.SlackChannelID != ""
}

func (c Config) HistoryEnabled() bool {
	return strings.TrimSpace(c.HistoryDBPath) != ""
}

func envOverride(field *string, envKey string) {
	if val := os.Getenv(envKey); val != "" {
		*field = val
	}
}

func envOverrideAllowEmpty(field *string, envKey string) {
	if val, ok := os.LookupEnv(envKey); ok {
		*field = val
	}
}

func envOverrideList(field *[]string, envKey string) {
	raw := os.Getenv(envKey)
	if raw == "" {
		return
	}
	*field = nil
	for _, item := range strings.Split(raw, ",") {
		item = strings.TrimSpace(item)
		if item != "" {
			*field = append(*field, item)
		}
	}
}

func envOverrideInt(field *int, envKey string) error {
	if val := os.Getenv(envKey); val != "" {
		parsed, err := strconv.Atoi(val)
		if err != nil {
			return fmt.Errorf("invalid %s '%s': %w", envKey, val, err)
		}
		*field = parsed
	}
	return nil
}

func envOverrideFloat(field *float64, envKey string) error {
	if val := os.Getenv(envKey); val != "" {
		parsed, err := strconv.ParseFloat(val, 64)
		if err != nil {
			return fmt.Errorf("invalid %s '%s': %w", envKey, val, err)
		}
		*field = parsed
	}
	return nil
}
