package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	defaultLiveURL     = "https://gate.payneteasy.com/"
	defaultSandboxURL  = "https://sandbox.payneteasy.com/"
	defaultHTTPTimeout = 30 * time.Second
	defaultNonceTTL    = 12 * time.Hour
)

type Config struct {
	DBHost     string
	DBUser     string
	DBPassword string
	DBName     string
	DBPort     string
	DBSSLMode  string
	AppPort    string
	AppEnv     string
	SiteURL    string

	PaynetLogin         string
	PaynetControlKey    string
	PaynetEndpointID    string
	PaynetPaymentMethod string
	PaynetSandbox       bool
	PaynetLiveURL       string
	PaynetSandboxURL    string
	PaynetNotifyURL     string
	// PaynetTransactionEnd is the order status a paid order moves to.
	PaynetTransactionEnd string
	PaynetRequireSSN     bool
	PaynetThreeDSecure   bool
	PaynetLogging        bool
	PaynetInsecureTLS    bool
	PaynetHTTPTimeout    time.Duration

	AjaxNonceSecret   string
	AjaxNonceTTL      time.Duration
	InternalSecretKey string
	JaegerEndpoint    string
}

// LoadConfig reads .env (if present) and the process environment.
func LoadConfig() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		DBHost:     os.Getenv("DB_HOST"),
		DBUser:     os.Getenv("DB_USER"),
		DBPassword: os.Getenv("DB_PASSWORD"),
		DBName:     os.Getenv("DB_NAME"),
		DBPort:     getEnv("DB_PORT", "5432"),
		DBSSLMode:  getEnv("DB_SSLMODE", "disable"),
		AppPort:    getEnv("APP_PORT", "8080"),
		AppEnv:     getEnv("APP_ENV", "development"),
		SiteURL:    os.Getenv("SITE_URL"),

		PaynetLogin:          os.Getenv("PAYNET_LOGIN"),
		PaynetControlKey:     os.Getenv("PAYNET_CONTROL_KEY"),
		PaynetEndpointID:     os.Getenv("PAYNET_ENDPOINT_ID"),
		PaynetPaymentMethod:  strings.ToLower(getEnv("PAYNET_PAYMENT_METHOD", "form")),
		PaynetLiveURL:        getEnv("PAYNET_LIVE_URL", defaultLiveURL),
		PaynetSandboxURL:     getEnv("PAYNET_SANDBOX_URL", defaultSandboxURL),
		PaynetNotifyURL:      os.Getenv("PAYNET_NOTIFY_URL"),
		PaynetTransactionEnd: strings.TrimPrefix(getEnv("PAYNET_TRANSACTION_END", "processing"), "wc-"),

		AjaxNonceSecret:   os.Getenv("AJAX_NONCE_SECRET"),
		InternalSecretKey: os.Getenv("INTERNAL_SECRET_KEY"),
		JaegerEndpoint:    os.Getenv("JAEGER_ENDPOINT"),
	}

	var errs []error
	for _, b := range []struct {
		key string
		dst *bool
	}{
		{"PAYNET_SANDBOX", &cfg.PaynetSandbox},
		{"PAYNET_REQUIRE_SSN", &cfg.PaynetRequireSSN},
		{"PAYNET_THREE_D_SECURE", &cfg.PaynetThreeDSecure},
		{"PAYNET_LOGGING", &cfg.PaynetLogging},
		{"PAYNET_INSECURE_SKIP_VERIFY", &cfg.PaynetInsecureTLS},
	} {
		v, err := envBool(b.key)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		*b.dst = v
	}

	var err error
	if cfg.PaynetHTTPTimeout, err = envDuration("PAYNET_HTTP_TIMEOUT", defaultHTTPTimeout); err != nil {
		errs = append(errs, err)
	}
	if cfg.AjaxNonceTTL, err = envDuration("AJAX_NONCE_TTL", defaultNonceTTL); err != nil {
		errs = append(errs, err)
	}

	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}
	return cfg, nil
}

// Validate reports every missing or malformed required setting at once.
func (c *Config) Validate() error {
	var errs []error
	required := map[string]string{
		"DB_HOST":            c.DBHost,
		"PAYNET_LOGIN":       c.PaynetLogin,
		"PAYNET_CONTROL_KEY": c.PaynetControlKey,
		"PAYNET_ENDPOINT_ID": c.PaynetEndpointID,
		"AJAX_NONCE_SECRET":  c.AjaxNonceSecret,
	}
	for _, key := range []string{"DB_HOST", "PAYNET_LOGIN", "PAYNET_CONTROL_KEY", "PAYNET_ENDPOINT_ID", "AJAX_NONCE_SECRET"} {
		if required[key] == "" {
			errs = append(errs, fmt.Errorf("%s is not set", key))
		}
	}

	switch c.PaynetPaymentMethod {
	case "form", "direct":
	default:
		errs = append(errs, fmt.Errorf("PAYNET_PAYMENT_METHOD must be form or direct, got %q", c.PaynetPaymentMethod))
	}
	if c.GatewayURL() == "" {
		errs = append(errs, errors.New("PAYNET gateway url is empty"))
	}

	return errors.Join(errs...)
}

// GatewayURL picks the sandbox or live base url.
func (c *Config) GatewayURL() string {
	if c.PaynetSandbox {
		return c.PaynetSandboxURL
	}
	return c.PaynetLiveURL
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// envBool accepts strconv booleans plus yes/no.
func envBool(key string) (bool, error) {
	v := strings.ToLower(strings.TrimSpace(os.Getenv(key)))
	switch v {
	case "":
		return false, nil
	case "yes", "y", "on":
		return true, nil
	case "no", "n", "off":
		return false, nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return false, fmt.Errorf("%s: invalid boolean %q", key, v)
	}
	return b, nil
}

// envDuration accepts Go durations ("45s") or plain seconds ("45").
func envDuration(key string, fallback time.Duration) (time.Duration, error) {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback, nil
	}
	if secs, err := strconv.Atoi(v); err == nil {
		if secs <= 0 {
			return 0, fmt.Errorf("%s: must be positive", key)
		}
		return time.Duration(secs) * time.Second, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil || d <= 0 {
		return 0, fmt.Errorf("%s: invalid duration %q", key, v)
	}
	return d, nil
}
