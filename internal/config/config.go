package config

import (
	"os"
	"strconv"

	"greenhouse-data/pkg/database"
	"greenhouse-data/pkg/redis"
)

// Config greenhouse-data（HTTP API）配置
type Config struct {
	HTTP struct {
		Addr string
	}
	Database database.Config
	Redis    struct {
		redis.Config
		ReadingsStream string // 实时推送：已入库读数发布到的 Stream
	}
	MQTT   MQTTConfig
	Resend ResendConfig
	Log    struct {
		Level  string
		Format string
	}
}

// MQTTConfig MQTT 配置（网关侧遥测上报通道，默认禁用）
type MQTTConfig struct {
	Enabled  bool
	Broker   string // 如 "tcp://localhost:1883"
	ClientID string
	Username string // 可选
	Password string // 可选
	Topic    string // 订阅的主题（如 "greenhouse/readings"）
	QoS      byte
}

// ResendConfig Resend 邮件 API 配置
type ResendConfig struct {
	BaseURL string
	APIKey  string
	From    string
}

func Load() *Config {
	cfg := &Config{}
	cfg.HTTP.Addr = getEnv("HTTP_ADDR", ":8080")

	cfg.Database.Host = getEnv("DB_HOST", "localhost")
	cfg.Database.Port = parseInt(getEnv("DB_PORT", "5432"), 5432)
	cfg.Database.User = getEnv("DB_USER", "postgres")
	cfg.Database.Password = getEnv("DB_PASSWORD", "postgres")
	cfg.Database.Database = getEnv("DB_NAME", "greenhouse")
	cfg.Database.SSLMode = getEnv("DB_SSLMODE", "disable")
	cfg.Database.MaxConns = parseInt(getEnv("DB_MAX_CONNS", "20"), 20)
	cfg.Database.MaxIdle = parseInt(getEnv("DB_MAX_IDLE", "5"), 5)

	cfg.Redis.Addr = getEnv("REDIS_ADDR", "localhost:6379")
	cfg.Redis.Password = getEnv("REDIS_PASSWORD", "")
	cfg.Redis.DB = 0
	cfg.Redis.ReadingsStream = getEnv("REDIS_READINGS_STREAM", "greenhouse:readings")

	// MQTT 配置（网关遥测通道，默认禁用）
	cfg.MQTT.Enabled = getEnv("MQTT_ENABLED", "false") == "true"
	cfg.MQTT.Broker = getEnv("MQTT_BROKER", "tcp://localhost:1883")
	cfg.MQTT.ClientID = getEnv("MQTT_CLIENT_ID", "greenhouse-data")
	cfg.MQTT.Username = getEnv("MQTT_USERNAME", "")
	cfg.MQTT.Password = getEnv("MQTT_PASSWORD", "")
	cfg.MQTT.Topic = getEnv("MQTT_TOPIC", "greenhouse/readings")
	cfg.MQTT.QoS = byte(parseInt(getEnv("MQTT_QOS", "1"), 1))

	// Resend 配置
	cfg.Resend.BaseURL = getEnv("RESEND_BASE_URL", "https://api.resend.com")
	cfg.Resend.APIKey = getEnv("RESEND_API_KEY", "")
	cfg.Resend.From = getEnv("RESEND_FROM", "GreenHouse Pro <onboarding@resend.dev>")

	cfg.Log.Level = getEnv("LOG_LEVEL", "info")
	cfg.Log.Format = getEnv("LOG_FORMAT", "json")

	return cfg
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func parseInt(s string, def int) int {
	i, err := strconv.Atoi(s)
	if err != nil {
		return def
	}
	return i
}
