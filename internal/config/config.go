package config

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/samber/lo"
	"gopkg.in/yaml.v3"
)

// 解读与历法的可选实现
const (
	ProviderGemini   = "gemini"
	ProviderOpenAI   = "openai"
	ProviderEmbedded = "embedded"
	ProviderKASI     = "kasi"
)

// Config 应用配置结构
type Config struct {
	// 服务器配置
	Server ServerConfig `yaml:"server" json:"server"`

	// Gemini API 配置
	Gemini GeminiConfig `yaml:"gemini" json:"gemini"`

	// 四柱解读配置
	Interpretation InterpretationConfig `yaml:"interpretation" json:"interpretation"`

	// 历法转换配置
	Calendar CalendarConfig `yaml:"calendar" json:"calendar"`

	// 论坛配置
	Forum ForumConfig `yaml:"forum" json:"forum"`

	// 安全配置
	Security SecurityConfig `yaml:"security" json:"security"`

	// HTTP 客户端配置
	HTTPClient HTTPClientConfig `yaml:"http_client" json:"http_client"`

	// 日志配置
	Logging LoggingConfig `yaml:"logging" json:"logging"`
}

// ServerConfig 服务器配置
type ServerConfig struct {
	Host            string        `yaml:"host" json:"host"`
	Port            int           `yaml:"port" json:"port"`
	ReadTimeout     time.Duration `yaml:"read_timeout" json:"read_timeout"`
	WriteTimeout    time.Duration `yaml:"write_timeout" json:"write_timeout"`
	IdleTimeout     time.Duration `yaml:"idle_timeout" json:"idle_timeout"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" json:"shutdown_timeout"`
}

// GeminiConfig Gemini API 配置
type GeminiConfig struct {
	APIKey     string `yaml:"api_key" json:"api_key"`
	TextModel  string `yaml:"text_model" json:"text_model"`
	ImageModel string `yaml:"image_model" json:"image_model"`
	BaseURL    string `yaml:"base_url" json:"base_url"`
}

// InterpretationConfig 四柱解读（文本生成）配置
type InterpretationConfig struct {
	Provider      string        `yaml:"provider" json:"provider"`
	OpenAIBaseURL string        `yaml:"openai_base_url" json:"openai_base_url"`
	OpenAIAPIKey  string        `yaml:"openai_api_key" json:"openai_api_key"`
	OpenAIModel   string        `yaml:"openai_model" json:"openai_model"`
	CacheTTL      time.Duration `yaml:"cache_ttl" json:"cache_ttl"`
	CacheSize     int           `yaml:"cache_size" json:"cache_size"`
}

// CalendarConfig 历法转换配置
type CalendarConfig struct {
	Provider       string `yaml:"provider" json:"provider"`
	KASIBaseURL    string `yaml:"kasi_base_url" json:"kasi_base_url"`
	KASIServiceKey string `yaml:"kasi_service_key" json:"kasi_service_key"`
}

// ForumConfig 论坛存储配置
type ForumConfig struct {
	DSN      string `yaml:"dsn" json:"dsn"`
	PageSize int    `yaml:"page_size" json:"page_size"`
}

// SecurityConfig 安全配置
type SecurityConfig struct {
	AdminToken       string        `yaml:"admin_token" json:"admin_token"`
	TLSSkipVerify    bool          `yaml:"tls_skip_verify" json:"tls_skip_verify"`
	RateLimitEnabled bool          `yaml:"rate_limit_enabled" json:"rate_limit_enabled"`
	RateLimitRPS     int           `yaml:"rate_limit_rps" json:"rate_limit_rps"`
	RequestTimeout   time.Duration `yaml:"request_timeout" json:"request_timeout"`
	MaxBodySize      string        `yaml:"max_body_size" json:"max_body_size"`
}

// HTTPClientConfig HTTP 客户端配置
type HTTPClientConfig struct {
	Timeout             time.Duration `yaml:"timeout" json:"timeout"`
	MaxIdleConns        int           `yaml:"max_idle_conns" json:"max_idle_conns"`
	MaxIdleConnsPerHost int           `yaml:"max_idle_conns_per_host" json:"max_idle_conns_per_host"`
	MaxConnsPerHost     int           `yaml:"max_conns_per_host" json:"max_conns_per_host"`
	RetryCount          int           `yaml:"retry_count" json:"retry_count"`
	RetryWaitTime       time.Duration `yaml:"retry_wait_time" json:"retry_wait_time"`
	RetryMaxWaitTime    time.Duration `yaml:"retry_max_wait_time" json:"retry_max_wait_time"`
}

// LoggingConfig 日志配置
type LoggingConfig struct {
	Level            string `yaml:"level" json:"level"`
	Format           string `yaml:"format" json:"format"`
	EnableRequestLog bool   `yaml:"enable_request_log" json:"enable_request_log"`
}

// Load 加载配置，优先级：环境变量 > 配置文件 > 默认值
func Load() (*Config, error) {
	// 1. 设置默认配置
	config := Default()

	// 2. 尝试加载 .env 文件
	_ = godotenv.Load()

	// 3. 尝试加载配置文件
	if err := loadConfigFile(config); err != nil {
		// 配置文件加载失败不是致命错误，继续使用环境变量和默认值
		fmt.Printf("Warning: Failed to load config file: %v\n", err)
	}

	// 4. 环境变量覆盖
	overrideWithEnv(config)

	// 5. 验证配置
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("配置验证失败: %w", err)
	}

	return config, nil
}

// Default 获取默认配置
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Host:            "0.0.0.0",
			Port:            8000,
			ReadTimeout:     30 * time.Second,
			WriteTimeout:    3 * time.Minute, // 图片生成较慢
			IdleTimeout:     60 * time.Second,
			ShutdownTimeout: 15 * time.Second,
		},
		Gemini: GeminiConfig{
			TextModel:  "gemini-2.0-flash",
			ImageModel: "gemini-2.5-flash-image",
		},
		Interpretation: InterpretationConfig{
			Provider:      ProviderGemini,
			OpenAIBaseURL: "https://api.openai.com/v1",
			OpenAIModel:   "gpt-4o-mini",
			CacheTTL:      24 * time.Hour,
			CacheSize:     1024,
		},
		Calendar: CalendarConfig{
			Provider:    ProviderEmbedded,
			KASIBaseURL: "http://apis.data.go.kr/B090041/openapi/service/LrsrCldInfoService",
		},
		Forum: ForumConfig{
			DSN:      "file:gogwan.db?_pragma=busy_timeout(5000)",
			PageSize: 20,
		},
		Security: SecurityConfig{
			TLSSkipVerify:    false,
			RateLimitEnabled: false, // 默认禁用，需要明确配置
			RateLimitRPS:     0,
			RequestTimeout:   2 * time.Minute, // 图片生成较慢
			MaxBodySize:      "20M", // base64 图片
		},
		HTTPClient: HTTPClientConfig{
			Timeout:             30 * time.Second,
			MaxIdleConns:        100,
			MaxIdleConnsPerHost: 10,
			MaxConnsPerHost:     50,
			RetryCount:          2,
			RetryWaitTime:       500 * time.Millisecond,
			RetryMaxWaitTime:    5 * time.Second,
		},
		Logging: LoggingConfig{
			Level:            "info",
			Format:           "json",
			EnableRequestLog: true,
		},
	}
}

// loadConfigFile 加载配置文件
func loadConfigFile(config *Config) error {
	// 环境变量指定的配置文件优先
	if configPath := os.Getenv("CONFIG_FILE"); configPath != "" {
		return LoadFile(configPath, config)
	}

	configPaths := []string{
		"config.yaml",
		"config.yml",
		"config.json",
		"./configs/config.yaml",
		"./configs/config.yml",
		"./configs/config.json",
	}

	for _, path := range configPaths {
		if _, err := os.Stat(path); err == nil {
			return LoadFile(path, config)
		}
	}

	return fmt.Errorf("no config file found")
}

// LoadFile 从文件加载配置
func LoadFile(path string, config *Config) error {
	file, err := os.Open(path)
	if err != nil {
		return err
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		return err
	}

	ext := strings.ToLower(filepath.Ext(path))
	switch ext {
	case ".yaml", ".yml":
		return yaml.Unmarshal(data, config)
	case ".json":
		return json.Unmarshal(data, config)
	default:
		return fmt.Errorf("unsupported config file format: %s", ext)
	}
}

// overrideWithEnv 用环境变量覆盖配置
func overrideWithEnv(config *Config) {
	// 服务器配置
	if host := os.Getenv("SERVER_HOST"); host != "" {
		config.Server.Host = host
	}
	// 兼容 PORT（容器平台常用）
	if port := os.Getenv("PORT"); port != "" {
		if p, err := strconv.Atoi(port); err == nil {
			config.Server.Port = p
		}
	}
	if port := os.Getenv("SERVER_PORT"); port != "" {
		if p, err := strconv.Atoi(port); err == nil {
			config.Server.Port = p
		}
	}
	if timeout := os.Getenv("SERVER_READ_TIMEOUT"); timeout != "" {
		if t, err := time.ParseDuration(timeout); err == nil {
			config.Server.ReadTimeout = t
		}
	}
	if timeout := os.Getenv("SERVER_WRITE_TIMEOUT"); timeout != "" {
		if t, err := time.ParseDuration(timeout); err == nil {
			config.Server.WriteTimeout = t
		}
	}

	// Gemini 配置
	if key := os.Getenv("GEMINI_API_KEY"); key != "" {
		config.Gemini.APIKey = key
	}
	if model := os.Getenv("GEMINI_TEXT_MODEL"); model != "" {
		config.Gemini.TextModel = model
	}
	if model := os.Getenv("GEMINI_IMAGE_MODEL"); model != "" {
		config.Gemini.ImageModel = model
	}
	if baseURL := os.Getenv("GEMINI_BASE_URL"); baseURL != "" {
		config.Gemini.BaseURL = baseURL
	}

	// 解读配置
	if provider := os.Getenv("INTERPRETATION_PROVIDER"); provider != "" {
		config.Interpretation.Provider = provider
	}
	if baseURL := os.Getenv("OPENAI_BASE_URL"); baseURL != "" {
		config.Interpretation.OpenAIBaseURL = baseURL
	}
	if key := os.Getenv("OPENAI_API_KEY"); key != "" {
		config.Interpretation.OpenAIAPIKey = key
	}
	if model := os.Getenv("OPENAI_MODEL"); model != "" {
		config.Interpretation.OpenAIModel = model
	}

	// 历法配置
	if provider := os.Getenv("CALENDAR_PROVIDER"); provider != "" {
		config.Calendar.Provider = provider
	}
	if key := os.Getenv("KASI_SERVICE_KEY"); key != "" {
		config.Calendar.KASIServiceKey = key
	}

	// 论坛配置
	if dsn := os.Getenv("FORUM_DSN"); dsn != "" {
		config.Forum.DSN = dsn
	}

	// 安全配置
	if token := os.Getenv("ADMIN_TOKEN"); token != "" {
		config.Security.AdminToken = token
	}
	if skipVerify := os.Getenv("TLS_SKIP_VERIFY"); skipVerify != "" {
		if skip, err := strconv.ParseBool(skipVerify); err == nil {
			config.Security.TLSSkipVerify = skip
		}
	}
	if rateLimitEnabled := os.Getenv("RATE_LIMIT_ENABLED"); rateLimitEnabled != "" {
		if enabled, err := strconv.ParseBool(rateLimitEnabled); err == nil {
			config.Security.RateLimitEnabled = enabled
		}
	}
	if rateLimitRPS := os.Getenv("RATE_LIMIT_RPS"); rateLimitRPS != "" {
		if rps, err := strconv.Atoi(rateLimitRPS); err == nil {
			config.Security.RateLimitRPS = rps
		}
	}

	// 日志配置
	if level := os.Getenv("LOG_LEVEL"); level != "" {
		config.Logging.Level = level
	}
	if format := os.Getenv("LOG_FORMAT"); format != "" {
		config.Logging.Format = format
	}
}

// Validate 验证配置
func (c *Config) Validate() error {
	var errors []string

	// 验证必要配置
	if c.Gemini.APIKey == "" {
		errors = append(errors, "GEMINI_API_KEY is required")
	}
	if c.Security.AdminToken == "" {
		errors = append(errors, "ADMIN_TOKEN is required")
	}

	// 验证端口范围
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		errors = append(errors, "SERVER_PORT must be between 1 and 65535")
	}

	// 验证超时配置
	if c.Server.ReadTimeout < 0 {
		errors = append(errors, "SERVER_READ_TIMEOUT must be positive")
	}
	if c.HTTPClient.Timeout < 0 {
		errors = append(errors, "HTTP_CLIENT_TIMEOUT must be positive")
	}

	// 解读提供方
	switch c.Interpretation.Provider {
	case ProviderGemini:
	case ProviderOpenAI:
		if c.Interpretation.OpenAIAPIKey == "" {
			errors = append(errors, "OPENAI_API_KEY is required when INTERPRETATION_PROVIDER=openai")
		}
	default:
		errors = append(errors, fmt.Sprintf("INTERPRETATION_PROVIDER must be one of: %s, %s", ProviderGemini, ProviderOpenAI))
	}
	if c.Interpretation.CacheSize < 0 {
		errors = append(errors, "interpretation cache_size must not be negative")
	}

	// 历法提供方
	switch c.Calendar.Provider {
	case ProviderEmbedded:
	case ProviderKASI:
		if c.Calendar.KASIServiceKey == "" {
			errors = append(errors, "KASI_SERVICE_KEY is required when CALENDAR_PROVIDER=kasi")
		}
	default:
		errors = append(errors, fmt.Sprintf("CALENDAR_PROVIDER must be one of: %s, %s", ProviderEmbedded, ProviderKASI))
	}

	if c.Forum.DSN == "" {
		errors = append(errors, "FORUM_DSN is required")
	}
	if c.Forum.PageSize <= 0 {
		c.Forum.PageSize = 20
	}

	// 验证限流配置
	if c.Security.RateLimitRPS <= 0 {
		// 如果RPS<=0，自动禁用限流
		c.Security.RateLimitEnabled = false
	}
	if c.Security.RateLimitRPS > 10000 {
		errors = append(errors, "RATE_LIMIT_RPS should not exceed 10000 for performance reasons")
	}

	// 验证日志级别
	validLevels := []string{"debug", "info", "warn", "error", "dpanic", "panic", "fatal"}
	if !lo.Contains(validLevels, c.Logging.Level) {
		errors = append(errors, fmt.Sprintf("LOG_LEVEL must be one of: %s", strings.Join(validLevels, ", ")))
	}

	if len(errors) > 0 {
		return fmt.Errorf("%s", strings.Join(errors, "; "))
	}

	return nil
}

// GetAddress 获取服务器监听地址
func (c *Config) GetAddress() string {
	return fmt.Sprintf("%s:%d", c.Server.Host, c.Server.Port)
}
