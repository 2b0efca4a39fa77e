package config

import (
	"log"
	"os"

	"github.com/ilyakaznacheev/cleanenv"
)

type InvoiceConfig struct {
	Env          string `yaml:"env" env-default:"local"`
	Robokassa    `yaml:"robokassa"`
	HTTPServer   `yaml:"http_server"`
	ResultServer `yaml:"result_server"`
	PaymentsDB   `yaml:"payments_db"`
	Telegram     `yaml:"telegram"`
	KafkaService `yaml:"kafka-service"`
	LegacyDB     `yaml:"legacy_db"`
	LogConfig    `yaml:"log_config"`
}

type Robokassa struct {
	MerchantLogin string `yaml:"merchant_login" env:"ROBOKASSA_MERCHANT_LOGIN"`
	Password1     string `yaml:"password1" env:"ROBOKASSA_PASSWORD1"`
	Password2     string `yaml:"password2" env:"ROBOKASSA_PASSWORD2"`
	ShopSNO       string `yaml:"shop_sno" env-default:"patent"`
	Tax           string `yaml:"tax" env-default:"none"`
	CustomerEmail string `yaml:"customer_email"`
	IsTest        bool   `yaml:"is_test"`
	InvoiceAPIURL string `yaml:"invoice_api_url" env-default:"https://services.robokassa.ru/InvoiceServiceWebApi/api/CreateInvoice"`
	OpStateURL    string `yaml:"opstate_url" env-default:"https://auth.robokassa.ru/Merchant/WebService/Service.asmx/OpStateExt"`
	DebugLogPath  string `yaml:"debug_log_path" env-default:"invoice_debug.log"`
	// Проверка SignatureValue входящих ResultURL-уведомлений.
	VerifyResultSignature bool `yaml:"verify_result_signature" env-default:"true"`
}

type HTTPServer struct {
	Host string `yaml:"host" env-default:"0.0.0.0"`
	Port string `yaml:"port" env-default:"8080"`
}

type ResultServer struct {
	Host string `yaml:"host" env-default:"0.0.0.0"`
	Port string `yaml:"port" env-default:"8085"`
	Path string `yaml:"path" env-default:"/result"`
}

type PaymentsDB struct {
	Path           string `yaml:"path" env-default:"data/payments.sqlite3"`
	MigrationsPath string `yaml:"migrations_path"`
}

type Telegram struct {
	BotToken   string `yaml:"bot_token" env:"TELEGRAM_BOT_TOKEN"`
	AdminID    int64  `yaml:"admin_id"`
	UserChatID int64  `yaml:"user_chat_id"`
}

type KafkaService struct {
	Host  string `yaml:"host"`
	Port  string `yaml:"port"`
	Topic string `yaml:"topic" env-default:"payment-events"`
}

type LegacyDB struct {
	Dsn string `yaml:"dsn" env:"LEGACY_DB_DSN"`
}

type LogConfig struct {
	LogLevel  string `yaml:"log_level" env-default:"info"`
	LogFormat string `yaml:"log_format" env-default:"json"`
	LogOutput string `yaml:"log_output" env-default:"stdout"`
}

func MustLoad() *InvoiceConfig {

	// Processing env config variable and file
	configPath := os.Getenv("INVOICE_CONFIG_PATH")

	if configPath == "" {
		log.Fatalf("INVOICE_CONFIG_PATH was not found\n")
	}

	if _, err := os.Stat(configPath); err != nil {
		log.Fatalf("failed to find config file: %v\n", err)
	}

	// YAML to struct object
	var cfg InvoiceConfig
	if err := cleanenv.ReadConfig(configPath, &cfg); err != nil {
		log.Fatalf("failed to read config file: %v", err)
	}

	return &cfg
}
