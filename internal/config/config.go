package config

import (
	"fmt"
	"log"
	"os"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"greenleaf/internal/domain"
)

const configFileEnvName = "GREENLEAF_CONFIG"

type Config struct {
	Port                 string
	DBDSN                string
	LogFile              string
	CatalogFile          string
	Pricing              domain.PricingPolicy
	AMQPURL              string
	AMQPExchange         string
	InstanceID           string
	FilterPanelThreshold int
}

// Load reads .env, an optional config file and the environment, in that
// order of increasing precedence. A bad value stops the process.
func Load() Config {
	cfg, err := Parse(os.Args[1:])
	if err != nil {
		log.Fatalf("[config] %v", err)
	}
	log.Printf("[config] PORT=%s DB_DSN=%s LOG_FILE=%s CATALOG_FILE=%s PRICING_POLICY=%s AMQP_EXCHANGE=%s AMQP=%t INSTANCE_ID=%s",
		cfg.Port, cfg.DBDSN, cfg.LogFile, cfg.CatalogFile, cfg.Pricing, cfg.AMQPExchange, cfg.AMQPURL != "", cfg.InstanceID)
	return cfg
}

func Parse(args []string) (Config, error) {
	// best-effort; a missing .env is the normal case
	_ = godotenv.Load()

	v := viper.New()
	v.SetDefault("port", "8080")
	v.SetDefault("db_dsn", "greenleaf.db")
	v.SetDefault("log_file", "")
	v.SetDefault("catalog_file", "")
	v.SetDefault("pricing_policy", "list")
	v.SetDefault("amqp_url", "")
	v.SetDefault("amqp_exchange", "greenleaf.storage")
	v.SetDefault("instance_id", "")
	v.SetDefault("filter_panel_threshold", domain.DefaultFilterPanelThreshold)
	v.AutomaticEnv()

	path, err := configFilepath(args)
	if err != nil {
		return Config{}, err
	}
	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("read config file %s: %w", path, err)
		}
	}

	policy, err := domain.ParsePricingPolicy(v.GetString("pricing_policy"))
	if err != nil {
		return Config{}, err
	}
	threshold := v.GetInt("filter_panel_threshold")
	// zero would pin the panel open; handlers read 0 as "unset"
	if threshold <= 0 {
		return Config{}, fmt.Errorf("FILTER_PANEL_THRESHOLD must be > 0, got %d", threshold)
	}
	id := v.GetString("instance_id")
	if id == "" {
		id = uuid.NewString()
	}

	return Config{
		Port:                 v.GetString("port"),
		DBDSN:                v.GetString("db_dsn"),
		LogFile:              v.GetString("log_file"),
		CatalogFile:          v.GetString("catalog_file"),
		Pricing:              policy,
		AMQPURL:              v.GetString("amqp_url"),
		AMQPExchange:         v.GetString("amqp_exchange"),
		InstanceID:           id,
		FilterPanelThreshold: threshold,
	}, nil
}

func configFilepath(args []string) (string, error) {
	cmdLine := pflag.NewFlagSet("greenleaf", pflag.ContinueOnError)
	arg := cmdLine.String("config", "", "config file (yaml, json or toml)")
	if err := cmdLine.Parse(args); err != nil {
		return "", err
	}
	if env, ok := os.LookupEnv(configFileEnvName); ok && env != "" {
		return env, nil
	}
	return *arg, nil
}
