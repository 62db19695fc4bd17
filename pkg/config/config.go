package config

import (
	"fmt"
	"log"

	"github.com/caarlos0/env/v9"
	"github.com/joho/godotenv"
)

type Config struct {
	Port                    string `env:"PORT" envDefault:"8080"`
	Env                     string `env:"ENV" envDefault:"development"`
	PostgresConnStr         string `env:"POSTGRES_CONN_STR,required"`
	MongoURI                string `env:"MONGO_URI,required"`
	MongoDB                 string `env:"MONGO_DB" envDefault:"socialite"`
	JWTSecret               string `env:"JWT_SECRET" envDefault:"supersecretjwtkey"`
	FirebaseCredentialsPath string `env:"FIREBASE_CREDENTIALS_PATH"` // empty disables the FCM push leg
	RetentionDays           int    `env:"NOTIFICATION_RETENTION_DAYS" envDefault:"90"`
	WSSendBuffer            int    `env:"WS_SEND_BUFFER" envDefault:"64"`
}

// Load reads .env when present, then parses the environment.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, assuming environment variables are set.")
	}

	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse environment: %w", err)
	}
	return &cfg, nil
}
