package config

import (
	"log"
	"os"
	"strings"

	"github.com/spf13/viper"

	"vitrina/internal/domain"
)

type HTTP struct {
	Host            string
	Port            int
	ReadTimeoutSec  int `mapstructure:"read_timeout_sec"`
	WriteTimeoutSec int `mapstructure:"write_timeout_sec"`
	IdleTimeoutSec  int `mapstructure:"idle_timeout_sec"`
}
type AdminHTTP struct {
	Host string
	Port int
}

type App struct {
	Name  string
	Env   string
	HTTP  HTTP
	Admin AdminHTTP
}

type LogFile struct {
	Enable     bool
	Filename   string
	MaxSizeMB  int `mapstructure:"max_size_mb"`
	MaxBackups int `mapstructure:"max_backups"`
	MaxAgeDays int `mapstructure:"max_age_days"`
	Compress   bool
}

type Log struct {
	Level string
	JSON  bool
	File  LogFile
}

type JWT struct {
	Secret            string
	Issuer            string
	AccessTokenTTLMin int `mapstructure:"access_token_ttl_min"`
}

type Redis struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`

	// 关闭时使用进程内实现
	Enable bool `mapstructure:"enable"`
}

type DB struct {
	Driver             string // postgres / mysql / memory
	DSN                string
	Username           string
	Password           string
	MaxOpenConns       int    `mapstructure:"max_open_conns"`
	MaxIdleConns       int    `mapstructure:"max_idle_conns"`
	ConnMaxLifetimeMin int    `mapstructure:"conn_max_lifetime_min"`
	AutoMigrate        bool   `mapstructure:"auto_migrate"`
	LogLevel           string `mapstructure:"log_level"`
}

// Store 存储调用的超时（秒）
type Store struct {
	TimeoutSec int `mapstructure:"timeout_sec"`
}

type Image struct {
	MaxDim   int `mapstructure:"max_dim"`
	MaxBytes int `mapstructure:"max_bytes"`
}

type Registration struct {
	MaxRecordBytes int    `mapstructure:"max_record_bytes"`
	AdminEmail     string `mapstructure:"admin_email"`
	Image          Image
}

type Media struct {
	Enable          bool
	Endpoint        string
	Region          string
	Bucket          string
	AccessKeyID     string `mapstructure:"access_key_id"`
	SecretAccessKey string `mapstructure:"secret_access_key"`
	PublicBaseURL   string `mapstructure:"public_base_url"`
	UploadTTLMin    int    `mapstructure:"upload_ttl_min"`
}

type Mail struct {
	SendGridAPIKey string `mapstructure:"sendgrid_api_key"`
	FromEmail      string `mapstructure:"from_email"`
	FromName       string `mapstructure:"from_name"`
	TimeoutSec     int    `mapstructure:"timeout_sec"`
}

type Events struct {
	RabbitURL string `mapstructure:"rabbit_url"`
	Queue     string
}

// Admin 启动时确保存在的管理员账号
type Admin struct {
	Email    string
	Username string
	Password string
}

type Config struct {
	App          App
	Log          Log
	JWT          JWT
	DB           DB
	Redis        Redis `mapstructure:"redis"`
	Store        Store
	Registration Registration
	Plans        domain.Settings
	Media        Media
	Mail         Mail
	Events       Events
	Admin        Admin
}

func Load(path string) *Config {
	v := viper.New()
	if path == "" {
		path = os.Getenv("CONFIG_PATH")
		if path == "" {
			path = "./configs/config.local.yaml"
		}
	}
	setDefaults(v)
	v.SetConfigFile(path)
	v.SetConfigType("yaml")
	v.SetEnvPrefix("APP")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if err := v.ReadInConfig(); err != nil {
		log.Fatalf("read config: %v", err)
	}
	var c Config
	if err := v.Unmarshal(&c); err != nil {
		log.Fatalf("unmarshal config: %v", err)
	}
	return &c
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("app.name", "vitrina")
	v.SetDefault("app.env", "local")
	v.SetDefault("app.http.host", "0.0.0.0")
	v.SetDefault("app.http.port", 8080)
	v.SetDefault("app.http.read_timeout_sec", 10)
	v.SetDefault("app.http.write_timeout_sec", 30)
	v.SetDefault("app.http.idle_timeout_sec", 60)
	v.SetDefault("app.admin.host", "0.0.0.0")
	v.SetDefault("app.admin.port", 8081)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.file.filename", "logs/vitrina.log")
	v.SetDefault("log.file.max_size_mb", 100)
	v.SetDefault("log.file.max_backups", 7)
	v.SetDefault("log.file.max_age_days", 30)
	v.SetDefault("jwt.issuer", "vitrina")
	v.SetDefault("jwt.access_token_ttl_min", 120)
	v.SetDefault("db.driver", "memory")
	v.SetDefault("db.max_open_conns", 20)
	v.SetDefault("db.max_idle_conns", 5)
	v.SetDefault("db.conn_max_lifetime_min", 30)
	v.SetDefault("db.log_level", "warn")
	v.SetDefault("store.timeout_sec", 5)
	v.SetDefault("registration.max_record_bytes", 390*1024)
	v.SetDefault("registration.image.max_dim", 1280)
	v.SetDefault("registration.image.max_bytes", 150*1024)
	v.SetDefault("plans.tiers.vip.min", 100000)
	v.SetDefault("plans.tiers.vip.max", 199999)
	v.SetDefault("plans.tiers.premium.min", 200000)
	v.SetDefault("plans.tiers.premium.max", 0)
	v.SetDefault("plans.tiers.luxury.min", 100000)
	v.SetDefault("plans.usd_rate", 950)
	v.SetDefault("media.region", "us-east-1")
	v.SetDefault("media.upload_ttl_min", 15)
	v.SetDefault("mail.from_email", "no-reply@vitrina.local")
	v.SetDefault("mail.from_name", "Vitrina")
	v.SetDefault("mail.timeout_sec", 5)
	v.SetDefault("events.queue", "vitrina.events")
}
