package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Redis    RedisConfig    `mapstructure:"redis"`
	Upload   UploadConfig   `mapstructure:"upload"`
	Models   ModelsConfig   `mapstructure:"models"`
	Pipeline PipelineConfig `mapstructure:"pipeline"`
	Database DatabaseConfig `mapstructure:"database"`
}

type ServerConfig struct {
	Port         string        `mapstructure:"port"`
	Mode         string        `mapstructure:"mode"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
}

type RedisConfig struct {
	Addr     string        `mapstructure:"addr"`
	Password string        `mapstructure:"password"`
	DB       int           `mapstructure:"db"`
	TTL      time.Duration `mapstructure:"ttl"`
}

type UploadConfig struct {
	MaxSize      int64    `mapstructure:"max_size"`
	UploadDir    string   `mapstructure:"upload_dir"`
	AllowedTypes []string `mapstructure:"allowed_types"`
}

// ModelsConfig 模型文件目录配置
type ModelsConfig struct {
	Dir string `mapstructure:"dir"`
}

// PipelineConfig 特征提取与推理流水线配置
type PipelineConfig struct {
	TargetSize       int           `mapstructure:"target_size"`
	ClaheClipLimit   float64       `mapstructure:"clahe_clip_limit"`
	ClaheTileSize    int           `mapstructure:"clahe_tile_size"`
	BilateralD       int           `mapstructure:"bilateral_d"`
	BilateralSigma   float64       `mapstructure:"bilateral_sigma"`
	Weights          WeightsConfig `mapstructure:"weights"`
	MaxConcurrent    int           `mapstructure:"max_concurrent"`
	QueueTimeout     int           `mapstructure:"queue_timeout"`
	CleanupTempFiles bool          `mapstructure:"cleanup_temp_files"`
}

// WeightsConfig 特征族权重，进程启动时加载一次，之后不再修改
type WeightsConfig struct {
	Color   float64 `mapstructure:"color"`
	Shape   float64 `mapstructure:"shape"`
	Texture float64 `mapstructure:"texture"`
	Edge    float64 `mapstructure:"edge"`
}

type DatabaseConfig struct {
	Path string `mapstructure:"path"`
}

// Load 从 YAML 文件加载配置
func Load(configPath string) (*Config, error) {
	v := viper.New()
	v.SetConfigFile(configPath)
	v.SetConfigType("yaml")

	// 设置默认值
	setDefaults(v)

	// 读取配置文件
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	return &cfg, nil
}

// New 使用默认配置路径加载配置
func New() *Config {
	cfg, err := Load("config.yaml")
	if err != nil {
		// 如果加载失败，返回默认配置
		return getDefaultConfig()
	}
	return cfg
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", ":8000")
	v.SetDefault("server.mode", "debug")
	v.SetDefault("server.read_timeout", 30*time.Second)
	v.SetDefault("server.write_timeout", 30*time.Second)

	v.SetDefault("redis.addr", "localhost:6379")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)
	v.SetDefault("redis.ttl", 24*time.Hour)

	v.SetDefault("upload.max_size", 10*1024*1024)
	v.SetDefault("upload.upload_dir", "./uploads")
	v.SetDefault("upload.allowed_types", []string{"image/jpeg", "image/png", "image/jpg"})

	v.SetDefault("models.dir", "./models")

	v.SetDefault("pipeline.target_size", 224)
	v.SetDefault("pipeline.clahe_clip_limit", 3.0)
	v.SetDefault("pipeline.clahe_tile_size", 8)
	v.SetDefault("pipeline.bilateral_d", 9)
	v.SetDefault("pipeline.bilateral_sigma", 75.0)
	v.SetDefault("pipeline.weights.color", 1.5)
	v.SetDefault("pipeline.weights.shape", 1.2)
	v.SetDefault("pipeline.weights.texture", 1.0)
	v.SetDefault("pipeline.weights.edge", 0.8)
	v.SetDefault("pipeline.max_concurrent", 3)
	v.SetDefault("pipeline.queue_timeout", 30)
	v.SetDefault("pipeline.cleanup_temp_files", true)

	v.SetDefault("database.path", "./database/flower_classification.db")
}

func getDefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Port:         ":8000",
			Mode:         "debug",
			ReadTimeout:  30 * time.Second,
			WriteTimeout: 30 * time.Second,
		},
		Redis: RedisConfig{
			Addr:     "localhost:6379",
			Password: "",
			DB:       0,
			TTL:      24 * time.Hour,
		},
		Upload: UploadConfig{
			MaxSize:      10 * 1024 * 1024,
			UploadDir:    "./uploads",
			AllowedTypes: []string{"image/jpeg", "image/png", "image/jpg"},
		},
		Models: ModelsConfig{
			Dir: "./models",
		},
		Pipeline: PipelineConfig{
			TargetSize:       224,
			ClaheClipLimit:   3.0,
			ClaheTileSize:    8,
			BilateralD:       9,
			BilateralSigma:   75.0,
			Weights:          WeightsConfig{Color: 1.5, Shape: 1.2, Texture: 1.0, Edge: 0.8},
			MaxConcurrent:    3,
			QueueTimeout:     30,
			CleanupTempFiles: true,
		},
		Database: DatabaseConfig{
			Path: "./database/flower_classification.db",
		},
	}
}
