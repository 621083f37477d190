package config

import (
	"fmt"

	"github.com/caarlos0/env/v6"
	"github.com/joho/godotenv"
)

type AppEnv struct {
	LogLvl        string `env:"LOG_LEVEL" envDefault:"debug"`
	LogFile       string `env:"LOG_FILE"`
	LogMaxSize    int    `env:"LOG_MAX_SIZE" envDefault:"100"`
	LogMaxBackups int    `env:"LOG_MAX_BACKUPS" envDefault:"7"`
	LogMaxAge     int    `env:"LOG_MAX_AGE" envDefault:"7"`

	PgHost     string `env:"POSTGRES_HOST,notEmpty"`
	PgPort     string `env:"POSTGRES_PORT,notEmpty"`
	PgUser     string `env:"POSTGRES_USER,notEmpty"`
	PgPassword string `env:"POSTGRES_PASSWORD,notEmpty"`
	PgDbName   string `env:"POSTGRES_DB,notEmpty"`
	SSLMode    string `env:"POSTGRES_SSL_MODE" envDefault:"disable"`
	TimeZone   string `env:"POSTGRES_TIMEZONE" envDefault:"America/Sao_Paulo"`

	JWTSecret         string `env:"JWT_SECRET,notEmpty"`
	AdminUsername     string `env:"ADMIN_USERNAME" envDefault:"admin"`
	AdminPasswordHash string `env:"ADMIN_PASSWORD_HASH"`

	WhatsappAPIURL   string `env:"WHATSAPP_API_URL"`
	WhatsappAPIToken string `env:"WHATSAPP_API_TOKEN"`

	AmqpURL string `env:"AMQP_URL"`
}

// GetEnvironment reads the process environment, after loading a .env file
// when one is present.
func GetEnvironment() (AppEnv, error) {
	_ = godotenv.Load()

	var appEnv AppEnv
	if err := env.Parse(&appEnv); err != nil {
		return appEnv, fmt.Errorf("incorrect environment params: %w", err)
	}

	if (appEnv.WhatsappAPIURL == "") != (appEnv.WhatsappAPIToken == "") {
		return appEnv, fmt.Errorf("incorrect environment params: WHATSAPP_API_URL and WHATSAPP_API_TOKEN go together")
	}

	return appEnv, nil
}
