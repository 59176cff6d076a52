package config

import (
	"errors"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	EnvDevelopment = "development"
	EnvProduction  = "production"
)

type Config struct {
	Env  string
	Port int

	Database DatabaseConfig
	Redis    RedisConfig
	CORS     CORSConfig
	Log      LogConfig
	Teacher  TeacherConfig
	WhatsApp WhatsAppConfig
	Booking  BookingConfig
}

type DatabaseConfig struct {
	Host         string
	Port         int
	User         string
	Password     string
	Name         string
	SSLMode      string
	MaxOpenConns int
	MaxIdleConns int
}

type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
}

type CORSConfig struct {
	AllowedOrigins []string
}

type LogConfig struct {
	Level  string
	Format string
}

// TeacherConfig identifies the single tenant and the profile used when no
// teacher record exists yet.
type TeacherConfig struct {
	ID                    string
	Timezone              string
	DefaultName           string
	DefaultInstrument     string
	DefaultBio            string
	DefaultProfilePicture string
}

// WhatsAppConfig carries Meta Cloud API credentials. Empty credentials disable
// outbound messaging; bookings still succeed without it.
type WhatsAppConfig struct {
	BaseURL            string
	PhoneNumberID      string
	APIToken           string
	TemplateName       string
	TemplateLanguage   string
	DefaultCountryCode string
	Timeout            time.Duration
}

// BookingConfig tunes the booking flow.
type BookingConfig struct {
	SlotCacheTTL time.Duration
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.SetConfigFile(".env")
	v.SetConfigType("env")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, err
		}
	}

	cfg := &Config{}

	cfg.Env = v.GetString("ENV")
	cfg.Port = v.GetInt("PORT")

	cfg.Database = DatabaseConfig{
		Host:         v.GetString("DB_HOST"),
		Port:         v.GetInt("DB_PORT"),
		User:         v.GetString("DB_USER"),
		Password:     v.GetString("DB_PASSWORD"),
		Name:         v.GetString("DB_NAME"),
		SSLMode:      v.GetString("DB_SSL_MODE"),
		MaxOpenConns: v.GetInt("DB_MAX_OPEN_CONNS"),
		MaxIdleConns: v.GetInt("DB_MAX_IDLE_CONNS"),
	}

	cfg.Redis = RedisConfig{
		Host:     v.GetString("REDIS_HOST"),
		Port:     v.GetInt("REDIS_PORT"),
		Password: v.GetString("REDIS_PASSWORD"),
		DB:       v.GetInt("REDIS_DB"),
	}

	cfg.CORS = CORSConfig{AllowedOrigins: splitAndTrim(v.GetString("ALLOWED_ORIGINS"))}

	cfg.Log = LogConfig{
		Level:  v.GetString("LOG_LEVEL"),
		Format: v.GetString("LOG_FORMAT"),
	}

	cfg.Teacher = TeacherConfig{
		ID:                    v.GetString("TEACHER_ID"),
		Timezone:              v.GetString("TEACHER_TIMEZONE"),
		DefaultName:           v.GetString("TEACHER_DEFAULT_NAME"),
		DefaultInstrument:     v.GetString("TEACHER_DEFAULT_INSTRUMENT"),
		DefaultBio:            v.GetString("TEACHER_DEFAULT_BIO"),
		DefaultProfilePicture: v.GetString("TEACHER_DEFAULT_PROFILE_PICTURE"),
	}

	cfg.WhatsApp = WhatsAppConfig{
		BaseURL:            v.GetString("WHATSAPP_API_BASE_URL"),
		PhoneNumberID:      v.GetString("WHATSAPP_BUSINESS_PHONE_NUMBER_ID"),
		APIToken:           v.GetString("WHATSAPP_BUSINESS_API_TOKEN"),
		TemplateName:       v.GetString("WHATSAPP_TEMPLATE_NAME"),
		TemplateLanguage:   v.GetString("WHATSAPP_TEMPLATE_LANGUAGE"),
		DefaultCountryCode: v.GetString("WHATSAPP_DEFAULT_COUNTRY_CODE"),
		Timeout:            parseDuration(v.GetString("WHATSAPP_TIMEOUT"), 10*time.Second),
	}

	cfg.Booking = BookingConfig{
		SlotCacheTTL: parseDuration(v.GetString("SLOT_CACHE_TTL"), 30*time.Second),
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("ENV", EnvDevelopment)
	v.SetDefault("PORT", 8080)

	v.SetDefault("DB_HOST", "localhost")
	v.SetDefault("DB_PORT", 5432)
	v.SetDefault("DB_USER", "postgres")
	v.SetDefault("DB_PASSWORD", "postgres")
	v.SetDefault("DB_NAME", "sarodwala")
	v.SetDefault("DB_SSL_MODE", "disable")
	v.SetDefault("DB_MAX_OPEN_CONNS", 10)
	v.SetDefault("DB_MAX_IDLE_CONNS", 5)

	v.SetDefault("REDIS_HOST", "localhost")
	v.SetDefault("REDIS_PORT", 6379)
	v.SetDefault("REDIS_PASSWORD", "")
	v.SetDefault("REDIS_DB", 0)

	v.SetDefault("ALLOWED_ORIGINS", "")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "json")

	v.SetDefault("TEACHER_ID", "rajeeb")
	v.SetDefault("TEACHER_TIMEZONE", "Asia/Kolkata")
	v.SetDefault("TEACHER_DEFAULT_NAME", "Dr. Rajeeb Chakraborty")
	v.SetDefault("TEACHER_DEFAULT_INSTRUMENT", "Sarod")
	v.SetDefault("TEACHER_DEFAULT_BIO", "Acclaimed sarod maestro with over 30 years of performance experience across global stages. Dr. Chakraborty blends traditional techniques with innovative approaches for students of all levels.")
	v.SetDefault("TEACHER_DEFAULT_PROFILE_PICTURE", "/images/teacher_profile.jpg")

	v.SetDefault("WHATSAPP_API_BASE_URL", "https://graph.facebook.com/v18.0")
	v.SetDefault("WHATSAPP_BUSINESS_PHONE_NUMBER_ID", "")
	v.SetDefault("WHATSAPP_BUSINESS_API_TOKEN", "")
	v.SetDefault("WHATSAPP_TEMPLATE_NAME", "booking_confirmation")
	v.SetDefault("WHATSAPP_TEMPLATE_LANGUAGE", "en")
	v.SetDefault("WHATSAPP_DEFAULT_COUNTRY_CODE", "91")
	v.SetDefault("WHATSAPP_TIMEOUT", "10s")

	v.SetDefault("SLOT_CACHE_TTL", "30s")
}

func parseDuration(raw string, fallback time.Duration) time.Duration {
	if raw == "" {
		return fallback
	}

	d, err := time.ParseDuration(raw)
	if err != nil {
		return fallback
	}

	return d
}

func splitAndTrim(raw string) []string {
	if raw == "" {
		return nil
	}

	parts := strings.Split(raw, ",")
	result := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			result = append(result, trimmed)
		}
	}

	return result
}
