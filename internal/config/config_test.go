package config

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLoad_DefaultValues(t *testing.T) {
	// 清除环境变量
	os.Clearenv()

	cfg := Load()
	assert.NotNil(t, cfg)

	// 验证默认值
	assert.Equal(t, ":8080", cfg.HTTP.Addr)

	assert.Equal(t, "localhost", cfg.Database.Host)
	assert.Equal(t, 5432, cfg.Database.Port)
	assert.Equal(t, "postgres", cfg.Database.User)
	assert.Equal(t, "postgres", cfg.Database.Password)
	assert.Equal(t, "greenhouse", cfg.Database.Database)
	assert.Equal(t, "disable", cfg.Database.SSLMode)

	assert.Equal(t, "localhost:6379", cfg.Redis.Addr)
	assert.Equal(t, "", cfg.Redis.Password)
	assert.Equal(t, 0, cfg.Redis.DB)
	assert.Equal(t, "greenhouse:readings", cfg.Redis.ReadingsStream)

	assert.False(t, cfg.MQTT.Enabled)
	assert.Equal(t, "tcp://localhost:1883", cfg.MQTT.Broker)
	assert.Equal(t, "greenhouse/readings", cfg.MQTT.Topic)

	assert.Equal(t, "https://api.resend.com", cfg.Resend.BaseURL)
	assert.Equal(t, "GreenHouse Pro <onboarding@resend.dev>", cfg.Resend.From)

	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "json", cfg.Log.Format)
}

func TestLoad_EnvironmentVariables(t *testing.T) {
	// 设置环境变量
	os.Setenv("HTTP_ADDR", ":9090")
	os.Setenv("DB_HOST", "test-host")
	os.Setenv("DB_USER", "test-user")
	os.Setenv("DB_PASSWORD", "test-password")
	os.Setenv("DB_NAME", "test-db")
	os.Setenv("REDIS_ADDR", "test-redis:6380")
	os.Setenv("MQTT_ENABLED", "true")
	os.Setenv("MQTT_TOPIC", "test/readings")
	os.Setenv("RESEND_API_KEY", "re_test_key")
	os.Setenv("LOG_LEVEL", "debug")
	defer os.Clearenv()

	cfg := Load()
	assert.NotNil(t, cfg)

	// 验证环境变量覆盖
	assert.Equal(t, ":9090", cfg.HTTP.Addr)
	assert.Equal(t, "test-host", cfg.Database.Host)
	assert.Equal(t, "test-user", cfg.Database.User)
	assert.Equal(t, "test-password", cfg.Database.Password)
	assert.Equal(t, "test-db", cfg.Database.Database)
	assert.Equal(t, "test-redis:6380", cfg.Redis.Addr)
	assert.True(t, cfg.MQTT.Enabled)
	assert.Equal(t, "test/readings", cfg.MQTT.Topic)
	assert.Equal(t, "re_test_key", cfg.Resend.APIKey)
	assert.Equal(t, "debug", cfg.Log.Level)
}

func TestLoad_InvalidIntFallsBack(t *testing.T) {
	os.Clearenv()
	os.Setenv("DB_PORT", "not-a-number")
	defer os.Clearenv()

	cfg := Load()
	assert.Equal(t, 5432, cfg.Database.Port)
}
