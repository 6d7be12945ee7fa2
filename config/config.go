package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Log      LogConfig      `mapstructure:"log"`
	Detector DetectorConfig `mapstructure:"detector"`
	Playback PlaybackConfig `mapstructure:"playback"`
	Redis    RedisConfig    `mapstructure:"redis"`
	Status   StatusConfig   `mapstructure:"status"`
}

type LogConfig struct {
	Mode string `mapstructure:"mode"`
}

// DetectorConfig 检测模型配置
type DetectorConfig struct {
	Engine         string  `mapstructure:"engine"` // yolo, cascade
	Model          string  `mapstructure:"model"`
	ModelConfig    string  `mapstructure:"model_config"`
	Cascade        string  `mapstructure:"cascade"`
	Backend        string  `mapstructure:"backend"` // default, opencv, cuda
	Target         string  `mapstructure:"target"`  // cpu, cuda, cuda_fp16
	InputSize      int     `mapstructure:"input_size"`
	ScoreThreshold float32 `mapstructure:"score_threshold"`
	NMSThreshold   float32 `mapstructure:"nms_threshold"`
}

type PlaybackConfig struct {
	WindowName  string  `mapstructure:"window_name"`
	QuitKey     string  `mapstructure:"quit_key"`
	FallbackFPS float64 `mapstructure:"fallback_fps"`
}

type RedisConfig struct {
	Enabled  bool          `mapstructure:"enabled"`
	Addr     string        `mapstructure:"addr"`
	Password string        `mapstructure:"password"`
	DB       int           `mapstructure:"db"`
	TTL      time.Duration `mapstructure:"ttl"`
}

type StatusConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Port    string `mapstructure:"port"`
	Mode    string `mapstructure:"mode"`
}

// Load 从 YAML 文件加载配置
func Load(configPath string) (*Config, error) {
	v := viper.New()
	v.SetConfigFile(configPath)
	v.SetConfigType("yaml")

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// New 使用默认配置路径加载配置，文件不存在时返回默认配置
func New() *Config {
	cfg, err := Load("config.yaml")
	if err != nil {
		return getDefaultConfig()
	}
	return cfg
}

// Validate 检查配置取值
func (c *Config) Validate() error {
	switch c.Detector.Engine {
	case "yolo", "cascade":
	default:
		return fmt.Errorf("unknown detector engine %q", c.Detector.Engine)
	}
	if c.Detector.InputSize <= 0 {
		return fmt.Errorf("detector.input_size must be positive, got %d", c.Detector.InputSize)
	}
	if len(c.Playback.QuitKey) != 1 {
		return fmt.Errorf("playback.quit_key must be a single character, got %q", c.Playback.QuitKey)
	}
	if c.Playback.FallbackFPS <= 0 {
		return fmt.Errorf("playback.fallback_fps must be positive")
	}
	return nil
}

func setDefaults(v *viper.Viper) {
	d := getDefaultConfig()

	v.SetDefault("log.mode", d.Log.Mode)

	v.SetDefault("detector.engine", d.Detector.Engine)
	v.SetDefault("detector.model", d.Detector.Model)
	v.SetDefault("detector.model_config", d.Detector.ModelConfig)
	v.SetDefault("detector.cascade", d.Detector.Cascade)
	v.SetDefault("detector.backend", d.Detector.Backend)
	v.SetDefault("detector.target", d.Detector.Target)
	v.SetDefault("detector.input_size", d.Detector.InputSize)
	v.SetDefault("detector.score_threshold", d.Detector.ScoreThreshold)
	v.SetDefault("detector.nms_threshold", d.Detector.NMSThreshold)

	v.SetDefault("playback.window_name", d.Playback.WindowName)
	v.SetDefault("playback.quit_key", d.Playback.QuitKey)
	v.SetDefault("playback.fallback_fps", d.Playback.FallbackFPS)

	v.SetDefault("redis.enabled", d.Redis.Enabled)
	v.SetDefault("redis.addr", d.Redis.Addr)
	v.SetDefault("redis.password", d.Redis.Password)
	v.SetDefault("redis.db", d.Redis.DB)
	v.SetDefault("redis.ttl", d.Redis.TTL)

	v.SetDefault("status.enabled", d.Status.Enabled)
	v.SetDefault("status.port", d.Status.Port)
	v.SetDefault("status.mode", d.Status.Mode)
}

func getDefaultConfig() *Config {
	return &Config{
		Log: LogConfig{
			Mode: "debug",
		},
		Detector: DetectorConfig{
			Engine:         "yolo",
			Model:          "yolov8n.onnx",
			Cascade:        "haarcascade_frontalcatface.xml",
			Backend:        "default",
			Target:         "cpu",
			InputSize:      640,
			ScoreThreshold: 0.25,
			NMSThreshold:   0.7,
		},
		Playback: PlaybackConfig{
			WindowName:  "Cat Detection",
			QuitKey:     "q",
			FallbackFPS: 30,
		},
		Redis: RedisConfig{
			Enabled: false,
			Addr:    "localhost:6379",
			DB:      0,
			TTL:     24 * time.Hour,
		},
		Status: StatusConfig{
			Enabled: false,
			Port:    ":8090",
			Mode:    "release",
		},
	}
}
