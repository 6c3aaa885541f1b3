package common

import (
	"fmt"
	"os"
	"strconv"
	"strings"
)

type Config struct {
	HTTPPort      int
	MetricsPort   int
	DatabaseURL   string
	KafkaBrokers  []string
	LogTopic      string
	OTLPEndpoint  string
	ServiceName   string
	SESEndpoint   string
	SESAPIKey     string
	SGEndpoint    string
	SGAPIKey      string
	SMSGatewayURL string
	SMSAPIKey     string
}

func LoadConfig(service string) (*Config, error) {
	cfg := &Config{ServiceName: service}

	httpPort, err := getEnvInt("HTTP_PORT", 8080)
	if err != nil {
		return nil, err
	}
	cfg.HTTPPort = httpPort

	metricsPort, err := getEnvInt("METRICS_PORT", httpPort+1000)
	if err != nil {
		return nil, err
	}
	cfg.MetricsPort = metricsPort

	cfg.DatabaseURL = os.Getenv("DATABASE_URL")
	cfg.OTLPEndpoint = os.Getenv("OTLP_ENDPOINT")

	brokers := os.Getenv("KAFKA_BROKERS")
	if brokers == "" {
		cfg.KafkaBrokers = []string{"localhost:9092"}
	} else {
		cfg.KafkaBrokers = strings.Split(brokers, ",")
	}

	cfg.LogTopic = getEnv("LOG_TOPIC", "app-logs")
	cfg.SESEndpoint = getEnv("SES_ENDPOINT", "https://ses.local")
	cfg.SESAPIKey = os.Getenv("SES_API_KEY")
	cfg.SGEndpoint = getEnv("SENDGRID_ENDPOINT", "https://sendgrid.local")
	cfg.SGAPIKey = os.Getenv("SENDGRID_API_KEY")
	cfg.SMSGatewayURL = getEnv("SMS_GATEWAY_URL", "https://sms.local")
	cfg.SMSAPIKey = os.Getenv("SMS_API_KEY")

	return cfg, nil
}

// EnvSettings reads runtime toggles from the environment on every call so
// that flipping a flag takes effect without a restart. Nothing is cached.
type EnvSettings struct{}

func (EnvSettings) LogBroadcastEnabled() bool {
	v, err := strconv.ParseBool(os.Getenv("LOG_BROADCAST_ENABLED"))
	if err != nil {
		return false
	}
	return v
}

func (EnvSettings) DefaultChannels() []string {
	raw := os.Getenv("DEFAULT_CHANNELS")
	if raw == "" {
		return []string{"database"}
	}
	var out []string
	for _, id := range strings.Split(raw, ",") {
		if id = strings.TrimSpace(id); id != "" {
			out = append(out, id)
		}
	}
	return out
}

// ChannelEnabled consults CHANNEL_ENABLED_<ID>. Channels that need no
// global credentials default to enabled; everything else must be opted in.
// A value that does not parse as a bool falls back to the default rather
// than silently disabling the channel.
func (EnvSettings) ChannelEnabled(id string) bool {
	key := "CHANNEL_ENABLED_" + strings.ToUpper(strings.ReplaceAll(id, "-", "_"))
	if raw := os.Getenv(key); raw != "" {
		if v, err := strconv.ParseBool(raw); err == nil {
			return v
		}
	}
	return id == "database" || id == "email"
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) (int, error) {
	if v := os.Getenv(key); v != "" {
		parsed, err := strconv.Atoi(v)
		if err != nil {
			return 0, fmt.Errorf("invalid value for %s: %w", key, err)
		}
		return parsed, nil
	}
	return fallback, nil
}
