package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/creasty/defaults"
	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

type Config struct {
	Environment string `yaml:"environment" default:"development" validate:"required"`
	Log         struct {
		Level  string `yaml:"level" default:"info" validate:"oneof=debug info warn error"`
		Format string `yaml:"format" default:"json" validate:"oneof=json console"`
		Output string `yaml:"output" default:"stdout"`
	} `yaml:"log"`
	Server struct {
		Enabled         bool          `yaml:"enabled" default:"true"`
		Port            int           `yaml:"port" default:"8080" validate:"gte=1,lte=65535"`
		ReadTimeout     time.Duration `yaml:"read_timeout" default:"10s"`
		WriteTimeout    time.Duration `yaml:"write_timeout" default:"30s"`
		ShutdownTimeout time.Duration `yaml:"shutdown_timeout" default:"10s"`
	} `yaml:"server"`
	Metrics struct {
		Enabled bool   `yaml:"enabled" default:"true"`
		Path    string `yaml:"path" default:"/metrics"`
	} `yaml:"metrics"`
	Monitor Monitor `yaml:"monitor"`
	Source  struct {
		Name          string `yaml:"name" default:"csv" validate:"required"`
		CSVDir        string `yaml:"csv_dir" default:"data"`
	} `yaml:"source"`
	Analysis Analysis `yaml:"analysis"`
	Signal   struct {
		WeightAI        float64       `yaml:"weight_ai" default:"0.5" validate:"gte=0"`
		WeightAnalytics float64       `yaml:"weight_analytics" default:"0.5" validate:"gte=0"`
		Validity        time.Duration `yaml:"validity" default:"4h"`
		RecentBars      int           `yaml:"recent_bars" default:"3" validate:"gte=1"`
		MajorLegFactor  float64       `yaml:"major_leg_factor" default:"1.5" validate:"gt=0"`
	} `yaml:"signal"`
	Trades struct {
		ClosedRetention     int           `yaml:"closed_retention" default:"500" validate:"gte=0"`
		FlushInterval       time.Duration `yaml:"flush_interval" default:"2s"`
		MaxUpdatesPerSecond int           `yaml:"max_updates_per_second" default:"5" validate:"gte=0"`
	} `yaml:"trades"`
	Kafka struct {
		Enabled      bool     `yaml:"enabled"`
		Brokers      []string `yaml:"brokers"`
		AlertsTopic  string   `yaml:"alerts_topic" default:"finsignal.alerts"`
		TradesTopic  string   `yaml:"trades_topic" default:"finsignal.trades"`
		RequiredAcks int      `yaml:"required_acks" default:"-1"`
		Compression  string   `yaml:"compression" default:"gzip" validate:"oneof=gzip snappy lz4 zstd"`
		Producer     struct {
			MaxAttempts  int           `yaml:"max_attempts" default:"3"`
			Linger       time.Duration `yaml:"linger" default:"200ms"`
			BatchBytes   int           `yaml:"batch_bytes" default:"1048576"`
			BatchSize    int           `yaml:"batch_size" default:"100"`
			WriteTimeout time.Duration `yaml:"write_timeout" default:"10s"`
			ReadTimeout  time.Duration `yaml:"read_timeout" default:"10s"`
			Async        bool          `yaml:"async"`
		} `yaml:"producer"`
	} `yaml:"kafka"`
	ClickHouse struct {
		Host             string        `yaml:"host" default:"localhost"`
		Port             int           `yaml:"port" default:"9000"`
		Database         string        `yaml:"database" default:"finsignal"`
		User             string        `yaml:"user" default:"default"`
		Password         string        `yaml:"password"`
		UseHTTP          bool          `yaml:"use_http"`
		DialTimeout      time.Duration `yaml:"dial_timeout" default:"5s"`
		ReadTimeout      time.Duration `yaml:"read_timeout" default:"10s"`
		MaxExecutionTime time.Duration `yaml:"max_execution_time" default:"30s"`
	} `yaml:"clickhouse"`
	Finnhub struct {
		Enabled        bool          `yaml:"enabled"`
		APIKey         string        `yaml:"api_key"`
		WebSocketURL   string        `yaml:"websocket_url" default:"wss://ws.finnhub.io"`
		Symbols        []string      `yaml:"symbols"`
		ReconnectDelay time.Duration `yaml:"reconnect_delay" default:"5s"`
		PingInterval   time.Duration `yaml:"ping_interval" default:"20s"`
	} `yaml:"finnhub"`
	CoinGecko struct {
		BaseURL string        `yaml:"base_url" default:"https://api.coingecko.com/api/v3"`
		Timeout time.Duration `yaml:"timeout" default:"10s"`
	} `yaml:"coingecko"`
	Analytics struct {
		ModelURL string        `yaml:"model_url"`
		Timeout  time.Duration `yaml:"timeout" default:"3s"`
		Retries  int           `yaml:"retries" default:"2" validate:"gte=0"`
	} `yaml:"analytics"`
	Cache struct {
		TTL   time.Duration `yaml:"ttl" default:"30s"`
		Redis struct {
			Enabled  bool   `yaml:"enabled"`
			Addr     string `yaml:"addr" default:"localhost:6379"`
			Password string `yaml:"password"`
			DB       int    `yaml:"db"`
			Prefix   string `yaml:"prefix" default:"finsignal:"`
		} `yaml:"redis"`
	} `yaml:"cache"`
	RateLimit struct {
		Capacity     float64 `yaml:"capacity" default:"20" validate:"gt=0"`
		RefillPerSec float64 `yaml:"refill_per_sec" default:"5" validate:"gt=0"`
	} `yaml:"ratelimit"`
}

// Monitor configures the live monitoring loop.
type Monitor struct {
	Symbols      []string      `yaml:"symbols" validate:"required,min=1,dive,required"`
	Timeframes   []string      `yaml:"timeframes" default:"[\"1h\",\"4h\",\"1d\"]" validate:"min=1,dive,oneof=1m 5m 15m 30m 1h 4h 1d 1w"`
	Interval     time.Duration `yaml:"interval" default:"5m"`
	BarLimit     int           `yaml:"bar_limit" default:"500" validate:"gte=50"`
	Quorum       int           `yaml:"quorum" default:"2" validate:"gte=1"`
	FullAnalysis bool          `yaml:"full_analysis" default:"true"`
	AlertOnEmpty bool          `yaml:"alert_on_empty"`
}

// Analysis groups detector thresholds. Defaults match the documented behavior.
type Analysis struct {
	ZThreshold float64 `yaml:"z_threshold" default:"5.0" validate:"gt=0"`
	Chart      struct {
		Distance          int     `yaml:"distance" default:"5" validate:"gte=1"`
		Threshold         float64 `yaml:"threshold" default:"0.02" validate:"gt=0"`
		TriangleWindow    int     `yaml:"triangle_window" default:"20" validate:"gte=2"`
		TriangleTolerance float64 `yaml:"triangle_tolerance" default:"0.01" validate:"gt=0"`
	} `yaml:"chart"`
	Pivot struct {
		Left  int `yaml:"left" default:"3" validate:"gte=1"`
		Right int `yaml:"right" default:"3" validate:"gte=1"`
	} `yaml:"pivot"`
	DivergenceWindow int `yaml:"divergence_window" default:"20" validate:"gte=2"`
	Whale            struct {
		VolumeWindow        int     `yaml:"volume_window" default:"20" validate:"gte=1"`
		VolumeMultiple      float64 `yaml:"volume_multiple" default:"3.0" validate:"gt=0"`
		SpoofWindow         int     `yaml:"spoof_window" default:"10" validate:"gte=2"`
		SpoofVolumeMultiple float64 `yaml:"spoof_volume_multiple" default:"2.0" validate:"gt=0"`
		JumpMultiple        float64 `yaml:"jump_multiple" default:"2.0" validate:"gt=0"`
		RequireReversal     bool    `yaml:"require_reversal" default:"true"`
		WashWindow          int     `yaml:"wash_window" default:"10" validate:"gte=1"`
		WashVolumeMultiple  float64 `yaml:"wash_volume_multiple" default:"2.0" validate:"gt=0"`
		WashBodyFraction    float64 `yaml:"wash_body_fraction" default:"0.1" validate:"gt=0"`
	} `yaml:"whale"`
	Trend struct {
		EMAPeriod int     `yaml:"ema_period" default:"20" validate:"gte=1"`
		SMAPeriod int     `yaml:"sma_period" default:"50" validate:"gte=1"`
		ADXPeriod int     `yaml:"adx_period" default:"14" validate:"gte=1"`
		TrendADX  float64 `yaml:"trend_adx" default:"25"`
		RangeADX  float64 `yaml:"range_adx" default:"20"`
	} `yaml:"trend"`
}

var validate = validator.New()

// Default returns a config populated only from `default` tags.
func Default() *Config {
	var c Config
	_ = defaults.Set(&c)
	return &c
}

// Load reads and parses a YAML configuration file on top of defaults.
func Load(path string) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	return Parse(b)
}

// Parse decodes YAML bytes on top of defaults and validates the result.
func Parse(b []byte) (*Config, error) {
	var c Config
	if err := defaults.Set(&c); err != nil {
		return nil, fmt.Errorf("config defaults: %w", err)
	}
	if err := yaml.Unmarshal(b, &c); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}
	return &c, nil
}

// LoadWithEnv loads .env (if present), the YAML file, then applies environment overrides.
func LoadWithEnv(path string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	c, err := Load(path)
	if err != nil {
		return nil, err
	}
	c.applyEnv()
	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}
	return c, nil
}

func (c *Config) applyEnv() {
	if v := os.Getenv("FINNHUB_API_KEY"); v != "" {
		c.Finnhub.APIKey = v
	}
	if v := os.Getenv("SYMBOLS"); v != "" {
		c.Monitor.Symbols = splitList(v)
	}
	if v := os.Getenv("TIMEFRAMES"); v != "" {
		c.Monitor.Timeframes = splitList(v)
	}
	if v := os.Getenv("BAR_SOURCE"); v != "" {
		c.Source.Name = v
	}
	if v := os.Getenv("KAFKA_BROKERS"); v != "" {
		c.Kafka.Brokers = splitList(v)
	}
	if v := os.Getenv("MODEL_URL"); v != "" {
		c.Analytics.ModelURL = v
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		c.Log.Level = strings.ToLower(v)
	}
}

// Validate checks struct tags and cross-field rules.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return err
	}
	if c.Analysis.Trend.RangeADX > c.Analysis.Trend.TrendADX {
		return fmt.Errorf("analysis.trend.range_adx (%v) must not exceed trend_adx (%v)",
			c.Analysis.Trend.RangeADX, c.Analysis.Trend.TrendADX)
	}
	if c.Signal.WeightAI+c.Signal.WeightAnalytics == 0 {
		return fmt.Errorf("signal weights cannot both be zero")
	}
	if c.Kafka.Enabled && len(c.Kafka.Brokers) == 0 {
		return fmt.Errorf("kafka.brokers cannot be empty when kafka is enabled")
	}
	if c.Finnhub.Enabled {
		if c.Finnhub.APIKey == "" {
			return fmt.Errorf("finnhub.api_key is required when finnhub is enabled")
		}
		if len(c.Finnhub.Symbols) == 0 {
			return fmt.Errorf("finnhub.symbols cannot be empty when finnhub is enabled")
		}
	}
	return nil
}

func splitList(s string) []string {
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
