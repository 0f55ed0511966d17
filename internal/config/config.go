package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"time"

	"chatrooms-backend/internal/models"

	"github.com/spf13/viper"
)

// Load reads the json config file at path, falling back to defaults when it
// doesn't exist. Every key can be overridden with a CHAT_ prefixed
// environment variable, e.g. CHAT_JWTSECRET.
func Load(path string) (*models.ConfigFile, error) {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("json")
	v.SetEnvPrefix("chat")
	v.AutomaticEnv()

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
		fmt.Fprintf(os.Stderr, "Config file %s not found, using defaults and environment\n", path)
	}

	var cfg models.ConfigFile
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	if cfg.JwtSecret == "" {
		return nil, fmt.Errorf("JwtSecret must be set")
	}
	if _, err := time.LoadLocation(cfg.Timezone); err != nil {
		return nil, fmt.Errorf("invalid timezone %q: %w", cfg.Timezone, err)
	}

	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("Address", "0.0.0.0")
	v.SetDefault("Port", "3000")
	v.SetDefault("PublicURL", "")
	v.SetDefault("BehindNginx", false)
	v.SetDefault("TlsCert", "")
	v.SetDefault("TlsKey", "")
	v.SetDefault("PrintHttpRequests", false)
	v.SetDefault("LogToFile", false)
	v.SetDefault("LogLevel", "info")
	v.SetDefault("JwtSecret", "")
	v.SetDefault("SnowflakeWorkerID", 0)
	v.SetDefault("SelfContained", true)
	v.SetDefault("SqlitePath", "./database.db")
	v.SetDefault("DbUser", "")
	v.SetDefault("DbPassword", "")
	v.SetDefault("DbAddress", "localhost")
	v.SetDefault("DbPort", "3306")
	v.SetDefault("DbDatabase", "chat")
	v.SetDefault("RedisAddress", "localhost:6379")
	v.SetDefault("RedisPassword", "")
	v.SetDefault("RedisDB", 0)
	v.SetDefault("SmtpUsername", "")
	v.SetDefault("SmtpPassword", "")
	v.SetDefault("SmtpServer", "")
	v.SetDefault("SmtpPort", 587)
	v.SetDefault("SmtpSender", "")
	v.SetDefault("Timezone", "Asia/Kolkata")
	v.SetDefault("TypingTimeout", "3s")
	v.SetDefault("UploadDir", "./public/uploads")
	v.SetDefault("MaxUploadBytes", 8<<20)
	v.SetDefault("PingInterval", "54s")
	v.SetDefault("PongWait", "60s")
	v.SetDefault("WriteWait", "10s")
	v.SetDefault("MaxMessageSize", 12<<20)
}
