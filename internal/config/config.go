package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/Freeeeeet/salon_bot/internal/model"
)

const DefaultSalonConfigPath = "config/salon.yml"

type Config struct {
	TelegramToken string `validate:"required"`
	DBDSN         string `validate:"required"`
	Environment   string
	LogLevel      string
	// HTTPAddr пустой - API Mini App не поднимается
	HTTPAddr  string
	JWTSecret string `validate:"required_with=HTTPAddr"`
	// RedisAddr пустой - кэш слотов выключен
	RedisAddr     string
	RedisPassword string
	WebAppURL     string `validate:"omitempty,url"`
	MasterIDs     []int64

	File File
}

// File настройки салона из YAML
type File struct {
	Salon   SalonConfig   `yaml:"salon"`
	Reviews ReviewsConfig `yaml:"reviews"`
	API     APIConfig     `yaml:"api"`
}

type SalonConfig struct {
	Name                 string `yaml:"name" validate:"required"`
	Timezone             string `yaml:"timezone" validate:"required,timezone"`
	Currency             string `yaml:"currency" validate:"required,iso4217"`
	BookingPeriodMonths  int    `yaml:"booking_period_months" validate:"min=1,max=12"`
	SlotIntervalMinutes  int    `yaml:"slot_interval_minutes" validate:"min=5,max=240"`
	RequiresConfirmation bool   `yaml:"requires_confirmation"`
	// Schedule день недели -> "HH:MM-HH:MM" или "closed"
	Schedule map[string]string `yaml:"schedule" validate:"required,dive,keys,oneof=monday tuesday wednesday thursday friday saturday sunday,endkeys,required"`
}

type ReviewsConfig struct {
	PromptDelay   time.Duration `yaml:"prompt_delay"`
	PromptTimeout time.Duration `yaml:"prompt_timeout"`
	ScanInterval  time.Duration `yaml:"scan_interval"`
}

type APIConfig struct {
	CORSOrigins       []string      `yaml:"cors_origins"`
	RateLimitRequests int           `yaml:"rate_limit_requests" validate:"min=0"`
	RateLimitWindow   time.Duration `yaml:"rate_limit_window"`
	TokenTTL          time.Duration `yaml:"token_ttl"`
}

func Load() (*Config, error) {
	// Пытаемся загрузить .env файл (игнорируем ошибку, если файла нет)
	if err := godotenv.Load(".env"); err != nil {
		log.Println("⚠️  No .env file found, using environment variables")
	} else {
		log.Println("✅ Loaded configuration from .env file")
	}

	path := os.Getenv("SALON_CONFIG")
	if path == "" {
		path = DefaultSalonConfigPath
	}
	file, err := LoadFile(path)
	if err != nil {
		return nil, err
	}

	masterIDs, err := ParseIDs(os.Getenv("MASTER_IDS"))
	if err != nil {
		return nil, fmt.Errorf("parse MASTER_IDS: %w", err)
	}

	// Читаем напрямую из переменных окружения (после godotenv.Load они там)
	cfg := &Config{
		TelegramToken: os.Getenv("TELEGRAM_TOKEN"),
		DBDSN:         os.Getenv("DB_DSN"),
		Environment:   os.Getenv("ENV"),
		LogLevel:      os.Getenv("LOG_LEVEL"),
		HTTPAddr:      os.Getenv("HTTP_ADDR"),
		JWTSecret:     os.Getenv("JWT_SECRET"),
		RedisAddr:     os.Getenv("REDIS_ADDR"),
		RedisPassword: os.Getenv("REDIS_PASSWORD"),
		WebAppURL:     os.Getenv("WEBAPP_URL"),
		MasterIDs:     masterIDs,
		File:          *file,
	}

	// Устанавливаем дефолтные значения
	if cfg.Environment == "" {
		cfg.Environment = "development"
	}
	if cfg.LogLevel == "" {
		cfg.LogLevel = "info"
	}

	if err := validator.New().Struct(cfg); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	log.Printf("Config loaded (salon config %s)\n", path)
	return cfg, nil
}

// LoadFile читает и проверяет YAML с настройками салона
func LoadFile(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}
	return ParseFile(data)
}

// ParseFile разбирает YAML и подставляет значения по умолчанию
func ParseFile(data []byte) (*File, error) {
	var file File
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	file.applyDefaults()

	if err := validator.New().Struct(file); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}
	if _, err := file.Salon.Settings(); err != nil {
		return nil, err
	}
	return &file, nil
}

func (f *File) applyDefaults() {
	if f.Salon.BookingPeriodMonths == 0 {
		f.Salon.BookingPeriodMonths = model.DefaultBookingPeriodMonths
	}
	if f.Salon.SlotIntervalMinutes == 0 {
		f.Salon.SlotIntervalMinutes = model.DefaultSlotIntervalMinutes
	}
	if f.Salon.Timezone == "" {
		f.Salon.Timezone = model.DefaultTimezone
	}
	if f.Salon.Currency == "" {
		f.Salon.Currency = model.DefaultCurrency
	}
	if f.API.RateLimitRequests == 0 {
		f.API.RateLimitRequests = 20
	}
	if f.API.RateLimitWindow == 0 {
		f.API.RateLimitWindow = time.Second
	}
	if f.API.TokenTTL == 0 {
		f.API.TokenTTL = 24 * time.Hour
	}
	if f.Reviews.ScanInterval == 0 {
		f.Reviews.ScanInterval = 10 * time.Minute
	}
}

// Location часовой пояс салона
func (c SalonConfig) Location() (*time.Location, error) {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return nil, fmt.Errorf("load timezone %q: %w", c.Timezone, err)
	}
	return loc, nil
}

// Settings настройки салона по умолчанию, пока мастер не поменял их в боте
func (c SalonConfig) Settings() (model.SalonSettings, error) {
	schedule := make(model.WeekSchedule, len(model.Weekdays))
	for _, wd := range model.Weekdays {
		schedule[wd] = model.ClosedDay
	}
	for key, value := range c.Schedule {
		wd, ok := model.ParseWeekday(key)
		if !ok {
			return model.SalonSettings{}, fmt.Errorf("unknown weekday %q", key)
		}
		day, err := model.ParseDayRange(value)
		if err != nil {
			return model.SalonSettings{}, fmt.Errorf("parse %s hours: %w", key, err)
		}
		schedule[wd] = day
	}

	settings := model.SalonSettings{
		Name:                 c.Name,
		Timezone:             c.Timezone,
		Currency:             c.Currency,
		Schedule:             schedule,
		BookingPeriodMonths:  c.BookingPeriodMonths,
		SlotIntervalMinutes:  c.SlotIntervalMinutes,
		RequiresConfirmation: c.RequiresConfirmation,
	}
	settings.Normalize()
	return settings, nil
}

// ParseIDs разбирает список Telegram ID через запятую
func ParseIDs(raw string) ([]int64, error) {
	var ids []int64
	for _, part := range strings.Split(raw, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		id, err := strconv.ParseInt(part, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid id %q: %w", part, err)
		}
		ids = append(ids, id)
	}
	return ids, nil
}
