package config

import (
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	App struct {
		Name string `envconfig:"APP_NAME" default:"Invoicer"`
		Port int    `envconfig:"PORT" default:"8080"`
		// Role of the operator running the console; decides which
		// "integration not configured" message is shown.
		Role    string `envconfig:"APP_ROLE" default:"admin"`
		LogFile string `envconfig:"LOG_FILE" default:"invoicer.log"`
	}

	DataService struct {
		URL       string        `envconfig:"DATA_SERVICE_URL" default:"http://localhost:3000/api"`
		Token     string        `envconfig:"DATA_SERVICE_TOKEN"`
		JWTSecret string        `envconfig:"DATA_SERVICE_JWT_SECRET"`
		Subject   string        `envconfig:"DATA_SERVICE_SUBJECT" default:"invoicer"`
		Timeout   time.Duration `envconfig:"DATA_SERVICE_TIMEOUT" default:"20s"`
	}

	Email struct {
		SendAs string `envconfig:"EMAIL_SEND_AS" default:"company"`
	}

	Chat struct {
		Host string `envconfig:"CHAT_WEB_HOST" default:"web.whatsapp.com"`
	}

	Download struct {
		Dir string `envconfig:"DOWNLOAD_DIR" default:"./invoices"`
	}

	Print struct {
		Command string        `envconfig:"PRINT_COMMAND" default:"lp"`
		Timeout time.Duration `envconfig:"PRINT_TIMEOUT" default:"30s"`
	}

	Server struct {
		Timeout        time.Duration `envconfig:"SERVER_TIMEOUT" default:"60s"`
		AllowedOrigins []string      `envconfig:"CORS_ALLOWED_ORIGINS" default:"*"`
	}

	Telemetry struct {
		Endpoint string `envconfig:"OTEL_ENDPOINT"`
	}
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to process config: %w", err)
	}

	return &cfg, nil
}
