package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

// 默认套餐额度（配置缺省时使用）
var defaultPlanLimits = map[string]int{
	"free":       100,
	"pro":        1000,
	"team":       5000,
	"enterprise": 50000,
}

type Config struct {
	Server     ServerConfig          `mapstructure:"server"`
	Database   DatabaseConfig        `mapstructure:"database"`
	Redis      RedisConfig           `mapstructure:"redis"`
	JWT        JWTConfig             `mapstructure:"jwt"`
	Encryption EncryptionConfig      `mapstructure:"encryption"`
	OAuth      OAuthConfig           `mapstructure:"oauth"`
	CORS       CORSConfig            `mapstructure:"cors"`
	Plans      map[string]PlanConfig `mapstructure:"plans"`
	Log        LogConfig             `mapstructure:"log"`
}

type ServerConfig struct {
	Host string `mapstructure:"host"`
	Port int    `mapstructure:"port"`
	Mode string `mapstructure:"mode"`
}

type DatabaseConfig struct {
	Driver       string `mapstructure:"driver"` // mysql, postgres, sqlite
	Host         string `mapstructure:"host"`
	Port         int    `mapstructure:"port"`
	Username     string `mapstructure:"username"`
	Password     string `mapstructure:"password"`
	Database     string `mapstructure:"database"`
	SSLMode      string `mapstructure:"sslmode"`
	DSN          string `mapstructure:"dsn"` // 设置后忽略上面的连接参数
	MaxIdleConns int    `mapstructure:"max_idle_conns"`
	MaxOpenConns int    `mapstructure:"max_open_conns"`
}

type RedisConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
	PoolSize int    `mapstructure:"pool_size"`
}

type JWTConfig struct {
	Secret      string `mapstructure:"secret"`
	ExpireHours int    `mapstructure:"expire_hours"`
}

type EncryptionConfig struct {
	Secret string `mapstructure:"secret"`
}

type OAuthConfig struct {
	Google GoogleOAuthConfig `mapstructure:"google"`
}

type GoogleOAuthConfig struct {
	ClientID     string `mapstructure:"client_id"`
	ClientSecret string `mapstructure:"client_secret"`
	RedirectURI  string `mapstructure:"redirect_uri"`
	UserInfoURL  string `mapstructure:"userinfo_url"`
}

type CORSConfig struct {
	AllowedOrigins []string `mapstructure:"allowed_origins"`
	AllowedMethods []string `mapstructure:"allowed_methods"`
	AllowedHeaders []string `mapstructure:"allowed_headers"`
}

type PlanConfig struct {
	RequestsLimit int `mapstructure:"requests_limit"`
}

type LogConfig struct {
	Level string `mapstructure:"level"`
}

// RequestsLimit 返回套餐的请求额度
func (c *Config) RequestsLimit(plan string) int {
	if p, ok := c.Plans[plan]; ok && p.RequestsLimit > 0 {
		return p.RequestsLimit
	}
	if limit, ok := defaultPlanLimits[plan]; ok {
		return limit
	}
	return defaultPlanLimits["free"]
}

// Validate 检查启动必需的配置项
func (c *Config) Validate() error {
	if strings.TrimSpace(c.Encryption.Secret) == "" {
		return errors.New("encryption.secret is required")
	}
	if strings.TrimSpace(c.JWT.Secret) == "" {
		return errors.New("jwt.secret is required")
	}
	switch c.Database.Driver {
	case "", "mysql", "postgres", "sqlite":
	default:
		return fmt.Errorf("unsupported database driver %q", c.Database.Driver)
	}
	return nil
}

func Load(configPath string) (*Config, error) {
	// 优先尝试读取 config.local.yaml（包含真实密钥，不提交到git）
	dir := filepath.Dir(configPath)
	localConfigPath := filepath.Join(dir, "config.local.yaml")

	if _, err := os.Stat(localConfigPath); err == nil {
		configPath = localConfigPath
	}

	v := viper.New()
	v.SetConfigFile(configPath)
	v.SetConfigType("yaml")

	// 环境变量覆盖
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	for _, key := range []string{"jwt.secret", "database.dsn", "redis.password"} {
		_ = v.BindEnv(key)
	}
	// ENCRYPTION_KEY 是旧部署使用的变量名，已有密文依赖同一个密钥
	_ = v.BindEnv("encryption.secret", "ENCRYPTION_SECRET", "ENCRYPTION_KEY")

	v.SetDefault("server.port", 8080)
	v.SetDefault("server.mode", "debug")
	v.SetDefault("database.driver", "mysql")
	v.SetDefault("jwt.expire_hours", 168)
	v.SetDefault("log.level", "info")

	if err := v.ReadInConfig(); err != nil {
		return nil, err
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}
