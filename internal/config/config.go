package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"digitalwill-backend/pkg/logger"

	"github.com/spf13/viper"
)

// Config 应用配置
type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Database DatabaseConfig `mapstructure:"database"`
	Redis    RedisConfig    `mapstructure:"redis"`
	JWT      JWTConfig      `mapstructure:"jwt"`
	Aptos    AptosConfig    `mapstructure:"aptos"`
	Wallet   WalletConfig   `mapstructure:"wallet"`
	Will     WillConfig     `mapstructure:"will"`
	Price    PriceConfig    `mapstructure:"price"`
}

type ServerConfig struct {
	Port string `mapstructure:"port"`
	Mode string `mapstructure:"mode"`
}

type DatabaseConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	DBName   string `mapstructure:"dbname"`
	SSLMode  string `mapstructure:"sslmode"`
}

type RedisConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`

	PoolSize     int           `mapstructure:"pool_size"`
	MinIdleConns int           `mapstructure:"min_idle_conns"`
	DialTimeout  time.Duration `mapstructure:"dial_timeout"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	KeyPrefix    string        `mapstructure:"key_prefix"`
}

type JWTConfig struct {
	Secret       string        `mapstructure:"secret"`
	AccessExpiry time.Duration `mapstructure:"access_expiry"`
}

// AptosConfig 链节点与合约配置
type AptosConfig struct {
	NodeURL       string        `mapstructure:"node_url"`
	ChainID       uint8         `mapstructure:"chain_id"`
	ModuleAddress string        `mapstructure:"module_address"`
	ModuleName    string        `mapstructure:"module_name"`
	TxTimeout     time.Duration `mapstructure:"tx_timeout"`
}

// WalletAccount 本地钱包账户
type WalletAccount struct {
	Name       string `mapstructure:"name"`
	PrivateKey string `mapstructure:"private_key"`
}

// WalletConfig 本地钱包配置
type WalletConfig struct {
	Accounts []WalletAccount `mapstructure:"accounts"`
}

// WillConfig 遗嘱流程配置
type WillConfig struct {
	PollInterval   time.Duration `mapstructure:"poll_interval"`
	DefaultVariant string        `mapstructure:"default_variant"`
	CachePrefix    string        `mapstructure:"cache_prefix"`
}

// PriceConfig 价格服务配置
type PriceConfig struct {
	Provider       string        `mapstructure:"provider"`
	APIKey         string        `mapstructure:"api_key"`
	BaseURL        string        `mapstructure:"base_url"`
	CoinID         string        `mapstructure:"coin_id"`
	UpdateInterval time.Duration `mapstructure:"update_interval"`
	RequestTimeout time.Duration `mapstructure:"request_timeout"`
	CachePrefix    string        `mapstructure:"cache_prefix"`
	MaxRetry       uint          `mapstructure:"max_retry"`
	RetryDelay     time.Duration `mapstructure:"retry_delay"`
	RateLimit      float64       `mapstructure:"rate_limit"` // 每秒请求数
	HistoryDays    int           `mapstructure:"history_days"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", "8080")
	v.SetDefault("server.mode", "debug")
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.user", "digitalwill")
	v.SetDefault("database.password", "digitalwill")
	v.SetDefault("database.dbname", "digitalwill_db")
	v.SetDefault("database.sslmode", "disable")
	v.SetDefault("redis.host", "localhost")
	v.SetDefault("redis.port", 6379)
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)
	v.SetDefault("redis.pool_size", 10)
	v.SetDefault("redis.min_idle_conns", 2)
	v.SetDefault("redis.dial_timeout", "3s")
	v.SetDefault("redis.read_timeout", "2s")
	v.SetDefault("redis.key_prefix", "digitalwill:")
	v.SetDefault("jwt.secret", "digitalwill-jwt-secret-v1")
	v.SetDefault("jwt.access_expiry", time.Hour*24)

	// Aptos defaults
	v.SetDefault("aptos.node_url", "https://fullnode.devnet.aptoslabs.com/v1")
	v.SetDefault("aptos.chain_id", 0)
	v.SetDefault("aptos.module_address", "0x937faeae1a19e86a0b35bf99ce606e02b9d223a37fb1189e33bee708324345e9")
	v.SetDefault("aptos.module_name", "will")
	v.SetDefault("aptos.tx_timeout", time.Second*30)

	// Will defaults
	v.SetDefault("will.poll_interval", time.Second*10)
	v.SetDefault("will.default_variant", "create")
	v.SetDefault("will.cache_prefix", "will:")

	// Price defaults
	v.SetDefault("price.provider", "coingecko")
	v.SetDefault("price.api_key", "")
	v.SetDefault("price.base_url", "https://api.coingecko.com/api/v3")
	v.SetDefault("price.coin_id", "aptos")
	v.SetDefault("price.update_interval", time.Second*60)
	v.SetDefault("price.request_timeout", time.Second*10)
	v.SetDefault("price.cache_prefix", "price:")
	v.SetDefault("price.max_retry", 3)
	v.SetDefault("price.retry_delay", time.Second*1)
	v.SetDefault("price.rate_limit", 0.5)
	v.SetDefault("price.history_days", 20)
}

// LoadConfig 从 ./config.yaml 或 ./config/config.yaml 加载配置
func LoadConfig() (*Config, error) {
	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	return load(v)
}

// LoadConfigFile 从指定文件加载配置
func LoadConfigFile(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigFile(path)
	return load(v)
}

func load(v *viper.Viper) (*Config, error) {
	setDefaults(v)

	// Read environment variables, e.g. WILL_POLL_INTERVAL
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			logger.Error("LoadConfig Error: ", errors.New("failed to read config file"), "error: ", err)
			return nil, err
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		logger.Error("LoadConfig Error: ", errors.New("failed to unmarshal config"), "error: ", err)
		return nil, err
	}

	if err := config.Validate(); err != nil {
		logger.Error("LoadConfig Error: ", errors.New("invalid config"), "error: ", err)
		return nil, err
	}

	logger.Info("LoadConfig: ", "load config success")
	return &config, nil
}

// Validate 校验必填配置
func (c *Config) Validate() error {
	if c.Server.Port == "" {
		return errors.New("server.port is required")
	}
	if c.JWT.Secret == "" {
		return errors.New("jwt.secret is required")
	}
	if c.Aptos.NodeURL == "" {
		return errors.New("aptos.node_url is required")
	}
	if !strings.HasPrefix(c.Aptos.ModuleAddress, "0x") {
		return fmt.Errorf("aptos.module_address must start with 0x: %q", c.Aptos.ModuleAddress)
	}
	if c.Aptos.ModuleName == "" {
		return errors.New("aptos.module_name is required")
	}
	switch c.Will.DefaultVariant {
	case "create", "deposit":
	default:
		return fmt.Errorf("unsupported will.default_variant: %s", c.Will.DefaultVariant)
	}
	names := make(map[string]struct{}, len(c.Wallet.Accounts))
	for i, acc := range c.Wallet.Accounts {
		if acc.Name == "" || acc.PrivateKey == "" {
			return fmt.Errorf("wallet.accounts[%d]: name and private_key are required", i)
		}
		if _, dup := names[acc.Name]; dup {
			return fmt.Errorf("wallet.accounts: duplicate account name %q", acc.Name)
		}
		names[acc.Name] = struct{}{}
	}
	if c.Price.UpdateInterval <= 0 {
		return errors.New("price.update_interval must be positive")
	}
	if c.Price.HistoryDays <= 0 {
		return errors.New("price.history_days must be positive")
	}
	return nil
}
