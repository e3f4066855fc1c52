package config

import (
	"log"

	"github.com/spf13/viper"
)

type Config struct {
	Port        string `mapstructure:"PORT"`
	DatabaseURL string `mapstructure:"DATABASE_URL"`
	JWTSecret   string `mapstructure:"JWT_SECRET"`
	FrontendURL string `mapstructure:"FRONTEND_URL"`

	RedisAddr     string `mapstructure:"REDIS_ADDR"`
	RedisPassword string `mapstructure:"REDIS_PASSWORD"`

	// Ledger tuning
	LeaderboardCacheTTL  int `mapstructure:"LEADERBOARD_CACHE_TTL"`  // seconds
	ExpirySweepInterval  int `mapstructure:"EXPIRY_SWEEP_INTERVAL"`  // minutes
	VerificationPageSize int `mapstructure:"VERIFICATION_PAGE_SIZE"` // default page limit
}

var AppConfig *Config

func LoadConfig() {
	viper.SetConfigFile(".env")
	viper.AutomaticEnv()

	viper.SetDefault("PORT", "8080")
	viper.SetDefault("LEADERBOARD_CACHE_TTL", 10)
	viper.SetDefault("EXPIRY_SWEEP_INTERVAL", 15)
	viper.SetDefault("VERIFICATION_PAGE_SIZE", 20)

	if err := viper.ReadInConfig(); err != nil {
		log.Println("No .env file found, relying on environment variables")
	}

	if err := viper.Unmarshal(&AppConfig); err != nil {
		log.Fatalf("Unable to decode config: %v", err)
	}
}
