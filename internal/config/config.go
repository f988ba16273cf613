package config

import (
	"fmt"
	"os"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config представляет структуру конфигурации для приложения.
type Config struct {
	App struct {
		Port string `mapstructure:"port"`
		Env  string `mapstructure:"env"`
	} `mapstructure:"app"`
	Database struct {
		// Пустой DSN переключает сервис на in-memory хранилище
		DSN string `mapstructure:"dsn"`
	} `mapstructure:"database"`
	Kafka struct {
		// Пустой список брокеров отключает публикацию событий
		Brokers []string `mapstructure:"brokers"`
	} `mapstructure:"kafka"`
	Stripe struct {
		// Без ключей сервис запускается, но все вызовы Stripe
		// и проверка подписи завершаются отказом (fail closed)
		APIKey        string `mapstructure:"apiKey" validate:"required"`
		WebhookSecret string `mapstructure:"webhookSecret" validate:"required"`
		SuccessURL    string `mapstructure:"successUrl" validate:"required,url"`
		CancelURL     string `mapstructure:"cancelUrl" validate:"required,url"`
	} `mapstructure:"stripe"`
	Auth struct {
		JWTSecret string `mapstructure:"jwtSecret" validate:"required"`
	} `mapstructure:"auth"`
}

// LoadConfig загружает конфигурацию из файла или переменных окружения.
func LoadConfig(path string) (*Config, error) {
	if os.Getenv("APP_ENV") != "production" {
		err := godotenv.Load(path)
		if err != nil {
			return nil, err
		}
	}

	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")

	viper.AutomaticEnv() // Чтение переменных окружения

	if err := viper.ReadInConfig(); err != nil {
		return nil, err
	}

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, err
	}

	if err := validator.New().Struct(&config); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &config, nil
}
