package config

import (
	"fmt"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	App           AppConfig
	DB            DBConfig
	Redis         RedisConfig
	JWT           JWTConfig
	Password      PasswordConfig
	AuthRateLimit AuthRateLimitConfig
	FeatureFlags  FeatureFlagsConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.DB.ensureDSN(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

type AppConfig struct {
	Env          string `envconfig:"STOCKTRACE_APP_ENV" required:"true"`
	Port         string `envconfig:"STOCKTRACE_APP_PORT" required:"true"`
	LogLevel     string `envconfig:"STOCKTRACE_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"STOCKTRACE_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

// DBConfig accepts either a full DSN or the discrete connection vars;
// ensureDSN assembles the latter into the former after load.
type DBConfig struct {
	DSN    string `envconfig:"STOCKTRACE_DB_DSN"`
	Driver string `envconfig:"STOCKTRACE_DB_DRIVER" default:"postgres"`

	Host     string `envconfig:"STOCKTRACE_DB_HOST"`
	Port     int    `envconfig:"STOCKTRACE_DB_PORT" default:"5432"`
	User     string `envconfig:"STOCKTRACE_DB_USER"`
	Password string `envconfig:"STOCKTRACE_DB_PASSWORD"`
	Name     string `envconfig:"STOCKTRACE_DB_NAME"`
	SSLMode  string `envconfig:"STOCKTRACE_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"STOCKTRACE_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"STOCKTRACE_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"STOCKTRACE_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"STOCKTRACE_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

func (db *DBConfig) ensureDSN() error {
	if db.DSN != "" {
		return nil
	}

	var missing []string
	for env, value := range map[string]string{
		EnvDBHost: db.Host,
		EnvDBUser: db.User,
		EnvDBName: db.Name,
	} {
		if value == "" {
			missing = append(missing, env)
		}
	}
	if len(missing) > 0 {
		sort.Strings(missing)
		return fmt.Errorf("either %s or %s are required", EnvDBDSN, strings.Join(missing, ", "))
	}

	user := url.User(db.User)
	if db.Password != "" {
		user = url.UserPassword(db.User, db.Password)
	}
	assembled := url.URL{
		Scheme: "postgres",
		User:   user,
		Host:   db.Host + ":" + strconv.Itoa(db.Port),
		Path:   db.Name,
	}
	if db.SSLMode != "" {
		assembled.RawQuery = "sslmode=" + url.QueryEscape(db.SSLMode)
	}

	db.DSN = assembled.String()
	return nil
}

type RedisConfig struct {
	URL          string        `envconfig:"STOCKTRACE_REDIS_URL" required:"true"`
	Address      string        `envconfig:"STOCKTRACE_REDIS_ADDR"`
	Password     string        `envconfig:"STOCKTRACE_REDIS_PASSWORD"`
	DB           int           `envconfig:"STOCKTRACE_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"STOCKTRACE_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"STOCKTRACE_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"STOCKTRACE_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"STOCKTRACE_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"STOCKTRACE_REDIS_WRITE_TIMEOUT" default:"5s"`
}

type JWTConfig struct {
	Secret                 string `envconfig:"STOCKTRACE_JWT_SECRET" required:"true"`
	Issuer                 string `envconfig:"STOCKTRACE_JWT_ISSUER" required:"true"`
	ExpirationMinutes      int    `envconfig:"STOCKTRACE_JWT_EXPIRATION_MINUTES" required:"true"`
	RefreshTokenTTLMinutes int    `envconfig:"STOCKTRACE_REFRESH_TOKEN_TTL_MINUTES" default:"43200"`
}

func (j JWTConfig) RefreshTokenTTL() time.Duration {
	if j.RefreshTokenTTLMinutes <= 0 {
		return 0
	}
	return time.Duration(j.RefreshTokenTTLMinutes) * time.Minute
}

type PasswordConfig struct {
	ArgonMemoryKB    int `envconfig:"STOCKTRACE_ARGON_MEMORY_KB" default:"65536"`
	ArgonTime        int `envconfig:"STOCKTRACE_ARGON_TIME" default:"3"`
	ArgonParallelism int `envconfig:"STOCKTRACE_ARGON_PARALLELISM" default:"2"`
	ArgonSaltLen     int `envconfig:"STOCKTRACE_ARGON_SALT_LEN" default:"16"`
	ArgonKeyLen      int `envconfig:"STOCKTRACE_ARGON_KEY_LEN" default:"32"`
}

type AuthRateLimitConfig struct {
	LoginWindow      time.Duration `envconfig:"STOCKTRACE_AUTH_RATE_LIMIT_LOGIN_WINDOW" default:"1m"`
	LoginEmailLimit  int           `envconfig:"STOCKTRACE_AUTH_RATE_LIMIT_LOGIN_EMAIL_LIMIT" default:"5"`
	LoginIPLimit     int           `envconfig:"STOCKTRACE_AUTH_RATE_LIMIT_LOGIN_IP_LIMIT" default:"20"`
	SignupWindow     time.Duration `envconfig:"STOCKTRACE_AUTH_RATE_LIMIT_SIGNUP_WINDOW" default:"5m"`
	SignupEmailLimit int           `envconfig:"STOCKTRACE_AUTH_RATE_LIMIT_SIGNUP_EMAIL_LIMIT" default:"3"`
	SignupIPLimit    int           `envconfig:"STOCKTRACE_AUTH_RATE_LIMIT_SIGNUP_IP_LIMIT" default:"20"`
}

type FeatureFlagsConfig struct {
	UseSQLite   bool `envconfig:"STOCKTRACE_USE_SQLITE" default:"false"`
	AutoMigrate bool `envconfig:"STOCKTRACE_AUTO_MIGRATE" default:"false"`
}
