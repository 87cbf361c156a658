// config/config.go
package config

import (
	"log"
	"time"

	"github.com/spf13/viper"
)

// Configuration stores all the configurations
type Configuration struct {
	Server        ServerConfiguration
	Telegram      TelegramConfiguration
	Token         TokenConfiguration
	Oracle        OracleConfiguration
	Registry      RegistryConfiguration
	Scheduler     SchedulerConfiguration
	Redis         RedisConfiguration
	Elasticsearch ElasticsearchConfiguration
}

// ServerConfiguration stores the port and other web server settings
type ServerConfiguration struct {
	Port string
}

// TelegramConfiguration stores the bot transport settings
type TelegramConfiguration struct {
	BotToken       string
	VIPChannelID   string
	VIPChannelLink string
	AdminChatID    string
	GroupChatID    string
}

// TokenConfiguration stores the gate policy: which mint, how much of it,
// and the optional grace margin around the revocation threshold
type TokenConfiguration struct {
	Mint        string
	MinAmount   float64
	GraceMargin float64
}

// OracleConfiguration stores balance source endpoints and cache settings
type OracleConfiguration struct {
	RPCURL         string
	BirdeyeURL     string
	SolscanURL     string
	RequestTimeout time.Duration
	CacheTTL       time.Duration
}

// RegistryConfiguration stores the membership store location
type RegistryConfiguration struct {
	UsersFile string
}

// SchedulerConfiguration stores the reconciliation cadences
type SchedulerConfiguration struct {
	UserSweepInterval    time.Duration
	ChannelAuditInterval time.Duration
	SweepWorkers         int
}

// RedisConfiguration stores data for Redis connection
type RedisConfiguration struct {
	Addr     string
	Password string
	DB       int
}

// ElasticsearchConfiguration stores data for Elasticsearch connection
type ElasticsearchConfiguration struct {
	URL string
}

var config *Configuration

func InitConfig() error {
	viper.AddConfigPath("config") // path to look for the config file in
	viper.SetConfigName("config") // name of the config file (without extension)
	viper.SetConfigType("yaml")   // REQUIRED if the config file does not have the extension in the name

	viper.AutomaticEnv() // read in environment variables that match

	// Set default configurations
	viper.SetDefault("server.port", "8080")
	viper.SetDefault("telegram.botToken", "")
	viper.SetDefault("telegram.vipChannelID", "")
	viper.SetDefault("telegram.vipChannelLink", "")
	viper.SetDefault("telegram.adminChatID", "")
	viper.SetDefault("telegram.groupChatID", "")
	viper.SetDefault("token.mint", "")
	viper.SetDefault("token.minAmount", 50000.0)
	viper.SetDefault("token.graceMargin", 0.0)
	viper.SetDefault("oracle.rpcURL", "https://api.mainnet-beta.solana.com")
	viper.SetDefault("oracle.birdeyeURL", "https://public-api.birdeye.so")
	viper.SetDefault("oracle.solscanURL", "https://api.solscan.io")
	viper.SetDefault("oracle.requestTimeout", "15s")
	viper.SetDefault("oracle.cacheTTL", "5m")
	viper.SetDefault("registry.usersFile", "users.json")
	viper.SetDefault("scheduler.userSweepInterval", "60m")
	viper.SetDefault("scheduler.channelAuditInterval", "2h")
	viper.SetDefault("scheduler.sweepWorkers", 4)
	viper.SetDefault("redis.addr", "")
	viper.SetDefault("elasticsearch.url", "")
	viper.SetDefault("log.dir", "logging")

	// Attempt to read the config file
	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			log.Println("No config file found. Using default settings and environment variables.")
		} else {
			return err
		}
	}

	// Unmarshal the configuration into the Configuration struct
	err := viper.Unmarshal(&config)
	if err != nil {
		return err
	}

	return nil
}

// GetConfig returns the loaded configuration
func GetConfig() *Configuration {
	return config
}

// GetString retrieves a string value from the configuration
func GetString(key string) string {
	return viper.GetString(key)
}

// GetInt retrieves an integer value from the configuration
func GetInt(key string) int {
	return viper.GetInt(key)
}

// GetFloat64 retrieves a float64 value from the configuration
func GetFloat64(key string) float64 {
	return viper.GetFloat64(key)
}

// GetDuration retrieves a duration value from the configuration
func GetDuration(key string) time.Duration {
	return viper.GetDuration(key)
}
