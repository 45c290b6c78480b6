package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all configuration for the workflow service
type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Storage   StorageConfig   `mapstructure:"storage"`
	AI        AIConfig        `mapstructure:"ai"`
	Feed      FeedConfig      `mapstructure:"feed"`
	Webhook   WebhookConfig   `mapstructure:"webhook"`
	Telemetry TelemetryConfig `mapstructure:"telemetry"`
}

// ServerConfig contains HTTP server settings
type ServerConfig struct {
	Address string `mapstructure:"address"`
}

// StorageConfig groups the storage backends. Timeout bounds the download of
// a generated artifact before it is written to the store.
type StorageConfig struct {
	S3      S3Config      `mapstructure:"s3"`
	Timeout time.Duration `mapstructure:"timeout"`
}

// S3Config contains object storage configuration. Bucket and ResultsFolder
// together form the prefix under which every execution writes its artifacts.
type S3Config struct {
	Endpoint        string `mapstructure:"endpoint"`
	Region          string `mapstructure:"region"`
	Bucket          string `mapstructure:"bucket"`
	ResultsFolder   string `mapstructure:"results_folder"`
	AccessKeyID     string `mapstructure:"access_key_id"`
	SecretAccessKey string `mapstructure:"secret_access_key"`
}

func (s S3Config) Validate() error {
	if strings.TrimSpace(s.Bucket) == "" {
		return fmt.Errorf("storage.s3.bucket is required")
	}
	if strings.TrimSpace(s.ResultsFolder) == "" {
		return fmt.Errorf("storage.s3.results_folder is required")
	}
	return nil
}

// AIConfig identifies the generation service every workflow delegates to.
type AIConfig struct {
	InvokeURL    string        `mapstructure:"invoke_url"`
	ChatService  string        `mapstructure:"chat_service"`
	ImageService string        `mapstructure:"image_service"`
	Size         string        `mapstructure:"size"`
	Timeout      time.Duration `mapstructure:"timeout"`
}

func (a AIConfig) Validate() error {
	if strings.TrimSpace(a.InvokeURL) == "" {
		return fmt.Errorf("ai.invoke_url is required")
	}
	return nil
}

// FeedConfig contains the syndication source used by the digest workflow.
type FeedConfig struct {
	URL     string        `mapstructure:"url"`
	Timeout time.Duration `mapstructure:"timeout"`
}

// WebhookConfig contains the results endpoint settings.
type WebhookConfig struct {
	URL     string        `mapstructure:"url"`
	Timeout time.Duration `mapstructure:"timeout"`
}

func (w WebhookConfig) Validate() error {
	if strings.TrimSpace(w.URL) == "" {
		return fmt.Errorf("webhook.url is required")
	}
	return nil
}

// TelemetryConfig contains telemetry and monitoring settings
type TelemetryConfig struct {
	Enabled     bool `mapstructure:"enabled"`
	MetricsPort int  `mapstructure:"metrics_port"`
}

func (t TelemetryConfig) Validate() error {
	if t.Enabled && t.MetricsPort <= 0 {
		return fmt.Errorf("telemetry.metrics_port must be > 0 when telemetry is enabled")
	}
	return nil
}

// LoadConfig reads configuration from the given file (or the working
// directory when path is empty) and the SOCIALGEN_* environment. A missing
// config file is fine — defaults plus environment cover the deployment
// case — but an unreadable or unparsable one is fatal.
func LoadConfig(path string) *Config {
	viper.SetDefault("server.address", ":10010")
	viper.SetDefault("storage.s3.region", "us-east-1")
	viper.SetDefault("storage.timeout", 60*time.Second)
	viper.SetDefault("ai.chat_service", "chat-gpt-4o")
	viper.SetDefault("ai.image_service", "image-dall-e-3")
	viper.SetDefault("ai.size", "1x")
	viper.SetDefault("ai.timeout", 120*time.Second)
	viper.SetDefault("feed.url", "https://rss.nytimes.com/services/xml/rss/nyt/World.xml")
	viper.SetDefault("feed.timeout", 30*time.Second)
	viper.SetDefault("webhook.url", "https://promptintellect.com/wp-json/product-extension/v1/lambda-results")
	viper.SetDefault("webhook.timeout", 30*time.Second)
	viper.SetDefault("telemetry.enabled", false)
	viper.SetDefault("telemetry.metrics_port", 9090)

	if path == "" {
		viper.SetConfigName("config")
		viper.SetConfigType("yaml")
		viper.AddConfigPath("./config")
		viper.AddConfigPath(".")
	} else {
		viper.SetConfigFile(path)
	}

	viper.SetEnvPrefix("SOCIALGEN")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			panic(fmt.Errorf("fatal error config file: %w", err))
		}
	}

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		panic(fmt.Errorf("fatal error config file: %w", err))
	}

	if err := config.Storage.S3.Validate(); err != nil {
		panic(err)
	}
	if err := config.AI.Validate(); err != nil {
		panic(err)
	}
	if err := config.Webhook.Validate(); err != nil {
		panic(err)
	}
	if err := config.Telemetry.Validate(); err != nil {
		panic(err)
	}
	return &config
}
