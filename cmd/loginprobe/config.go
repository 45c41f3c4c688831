package main

import (
	"bufio"
	"fmt"
	"net/url"
	"os"
	"strings"
	"time"

	"login_redirect_probe/internal/probe"
)

const (
	defaultBaseURL     = "http://127.0.0.1:8000"
	defaultInterval    = 30 * time.Second
	defaultMetricsAddr = ":2112"
)

type Config struct {
	BaseURL         string
	LoginPath       string
	Timeout         time.Duration
	CredentialsFile string
	UserAgent       string
	Interval        time.Duration
	MetricsAddr     string
}

func defaultConfig() *Config {
	return &Config{
		BaseURL:     defaultBaseURL,
		LoginPath:   probe.DefaultLoginPath,
		Timeout:     probe.DefaultTimeout,
		UserAgent:   probe.DefaultUserAgent,
		Interval:    defaultInterval,
		MetricsAddr: defaultMetricsAddr,
	}
}

var envKeys = []string{
	"LOGIN_PROBE_BASE_URL",
	"LOGIN_PROBE_LOGIN_PATH",
	"LOGIN_PROBE_TIMEOUT",
	"LOGIN_PROBE_CREDENTIALS_FILE",
	"LOGIN_PROBE_USER_AGENT",
	"LOGIN_PROBE_INTERVAL",
	"LOGIN_PROBE_METRICS_ADDR",
}

func loadEnv() (*Config, error) {
	return loadEnvFrom(".env", os.Getenv)
}

// loadEnvFrom reads the process environment first and falls back to the
// dotenv file for keys that are unset. A missing file is not an error.
func loadEnvFrom(path string, getenv func(string) string) (*Config, error) {
	values := make(map[string]string)
	for _, key := range envKeys {
		if v := strings.TrimSpace(getenv(key)); v != "" {
			values[key] = v
		}
	}

	if len(values) < len(envKeys) {
		fileValues, err := readDotEnv(path)
		if err != nil {
			return nil, err
		}
		for key, v := range fileValues {
			if _, ok := values[key]; !ok {
				values[key] = v
			}
		}
	}

	config := defaultConfig()
	if err := config.apply(values); err != nil {
		return nil, err
	}
	return config, nil
}

func readDotEnv(path string) (map[string]string, error) {
	values := make(map[string]string)

	file, err := os.Open(path)
	if err != nil {
		// No .env file is fine, defaults apply
		return values, nil
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		line = strings.TrimPrefix(line, "export ")

		parts := strings.SplitN(line, "=", 2)
		if len(parts) != 2 {
			continue
		}

		key, value := strings.TrimSpace(parts[0]), strings.TrimSpace(parts[1])
		value = strings.Trim(value, `"'`)
		if strings.HasPrefix(key, "LOGIN_PROBE_") && value != "" {
			values[key] = value
		}
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("error reading .env file: %w", err)
	}

	return values, nil
}

func (c *Config) apply(values map[string]string) error {
	for key, value := range values {
		var err error
		switch key {
		case "LOGIN_PROBE_BASE_URL":
			c.BaseURL = value
		case "LOGIN_PROBE_LOGIN_PATH":
			c.LoginPath = value
		case "LOGIN_PROBE_TIMEOUT":
			c.Timeout, err = parsePositiveDuration(key, value)
		case "LOGIN_PROBE_CREDENTIALS_FILE":
			c.CredentialsFile = value
		case "LOGIN_PROBE_USER_AGENT":
			c.UserAgent = value
		case "LOGIN_PROBE_INTERVAL":
			c.Interval, err = parsePositiveDuration(key, value)
		case "LOGIN_PROBE_METRICS_ADDR":
			c.MetricsAddr = value
		}
		if err != nil {
			return err
		}
	}
	return nil
}

func parsePositiveDuration(name, value string) (time.Duration, error) {
	d, err := time.ParseDuration(value)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", name, value, err)
	}
	if d <= 0 {
		return 0, fmt.Errorf("invalid %s %q: must be positive", name, value)
	}
	return d, nil
}

// validate checks what the prober cannot report on by itself.
func (c *Config) validate() error {
	u, err := url.Parse(c.BaseURL)
	if err != nil {
		return fmt.Errorf("invalid base URL %q: %w", c.BaseURL, err)
	}
	if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("invalid base URL %q: need http(s)://host[:port]", c.BaseURL)
	}
	if c.Timeout <= 0 {
		return fmt.Errorf("timeout must be positive, got %s", c.Timeout)
	}
	return nil
}

func (c *Config) newProber() *probe.Prober {
	return probe.NewProber(c.BaseURL,
		probe.WithLoginPath(c.LoginPath),
		probe.WithClientOptions(
			probe.WithTimeout(c.Timeout),
			probe.WithUserAgent(c.UserAgent),
		),
	)
}
