package config

import (
	"os"
	"strconv"
	"time"
)

type Config struct {
	Database DatabaseConfig
	Redis    RedisConfig
	Booking  BookingConfig
	Payment  PaymentConfig
}

type DatabaseConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
	SSLMode  string
}

type RedisConfig struct {
	Host     string
	Port     string
	Password string
	DB       int
}

// BookingConfig 訂票流程相關參數
type BookingConfig struct {
	PaymentWindow time.Duration // 訂單付款期限
	SweepInterval time.Duration // 過期訂單掃描間隔
	SweepBatch    int           // 每輪掃描最多處理的訂單數

	// 會員等級門檻（金額為 VND 整數）
	GoldSpend     int64
	GoldTickets   int
	SilverSpend   int64
	SilverTickets int
}

// PaymentConfig MoMo 支付閘道參數
type PaymentConfig struct {
	PartnerCode string
	AccessKey   string
	SecretKey   string
	Endpoint    string
	RedirectURL string
	IPNURL      string
	Timeout     time.Duration // 單次閘道呼叫逾時
}

var AppConfig *Config

func LoadConfig() *Config {
	AppConfig = &Config{
		Database: GetDatabaseConfig(),
		Redis:    GetRedisConfig(),
		Booking:  GetBookingConfig(),
		Payment:  GetPaymentConfig(),
	}

	return AppConfig
}

func LoadTestConfig() *Config {
	testConfig := &DatabaseConfig{
		Host:     "localhost",
		Port:     "5433", // 測試 DB 用 5433 port
		User:     "postgres",
		Password: "postgres",
		DBName:   "test_db",
		SSLMode:  "disable",
	}

	testRedisConfig := RedisConfig{
		Host:     "localhost",
		Port:     "6380", // 測試 Redis 用 6380 port
		Password: "",
		DB:       1,
	}

	testPaymentConfig := GetPaymentConfig()
	testPaymentConfig.SecretKey = "test-secret-key"

	return &Config{
		Database: *testConfig,
		Redis:    testRedisConfig,
		Booking:  GetBookingConfig(),
		Payment:  testPaymentConfig,
	}
}

func GetDatabaseConfig() DatabaseConfig {
	return DatabaseConfig{
		Host:     getEnv("DB_HOST", "localhost"),
		Port:     getEnv("DB_PORT", "5432"),
		User:     getEnv("DB_USER", "postgres"),
		Password: getEnv("DB_PASSWORD", "postgres"),
		DBName:   getEnv("DB_NAME", "postgres"),
		SSLMode:  getEnv("DB_SSL_MODE", "disable"),
	}
}

func GetRedisConfig() RedisConfig {
	db, err := strconv.Atoi(getEnv("REDIS_DB", "0"))
	if err != nil {
		panic(err)
	}

	return RedisConfig{
		Host:     getEnv("REDIS_HOST", "localhost"),
		Port:     getEnv("REDIS_PORT", "6379"),
		Password: getEnv("REDIS_PASSWORD", ""),
		DB:       db,
	}
}

func GetBookingConfig() BookingConfig {
	return BookingConfig{
		PaymentWindow: getEnvDuration("BOOKING_PAYMENT_WINDOW", 15*time.Minute),
		SweepInterval: getEnvDuration("BOOKING_SWEEP_INTERVAL", time.Minute),
		SweepBatch:    getEnvInt("BOOKING_SWEEP_BATCH", 100),

		GoldSpend:     getEnvInt64("LOYALTY_GOLD_SPEND", 1_000_000),
		GoldTickets:   getEnvInt("LOYALTY_GOLD_TICKETS", 10),
		SilverSpend:   getEnvInt64("LOYALTY_SILVER_SPEND", 500_000),
		SilverTickets: getEnvInt("LOYALTY_SILVER_TICKETS", 5),
	}
}

func GetPaymentConfig() PaymentConfig {
	return PaymentConfig{
		PartnerCode: getEnv("MOMO_PARTNER_CODE", "MOMO"),
		AccessKey:   getEnv("MOMO_ACCESS_KEY", ""),
		SecretKey:   getEnv("MOMO_SECRET_KEY", ""),
		Endpoint:    getEnv("MOMO_ENDPOINT", "https://test-payment.momo.vn"),
		RedirectURL: getEnv("MOMO_REDIRECT_URL", "http://localhost:8080/payment-success"),
		IPNURL:      getEnv("MOMO_IPN_URL", "http://localhost:8080/api/v1/payment/webhook"),
		Timeout:     getEnvDuration("MOMO_TIMEOUT", 10*time.Second),
	}
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
	}
	return fallback
}

func getEnvInt64(key string, fallback int64) int64 {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.ParseInt(value, 10, 64); err == nil {
			return n
		}
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return fallback
}
