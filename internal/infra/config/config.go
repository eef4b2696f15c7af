package config

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// Config -
type Config struct {
	Telegram TelegramConfig `mapstructure:"telegram"`
	Chain    ChainConfig    `mapstructure:"chain"`
	Pricing  PricingConfig  `mapstructure:"pricing"`
	Alert    AlertConfig    `mapstructure:"alert"`
	App      AppConfig      `mapstructure:"app"`
}

type TelegramConfig struct {
	BotToken string  `mapstructure:"bot_token"`
	ChatIDs  []int64 `mapstructure:"chat_ids"` // seed chats, merged with the persisted subscriber file
}

// ChainConfig - ZigChain node endpoints
type ChainConfig struct {
	RPCURL       string `mapstructure:"rpc_url"`
	RESTURL      string `mapstructure:"rest_url"`
	NativeDenom  string `mapstructure:"native_denom"`
	NativeSymbol string `mapstructure:"native_symbol"`
}

// WSURL derives the websocket endpoint from the RPC URL.
func (c ChainConfig) WSURL() string {
	ws := c.RPCURL
	ws = strings.Replace(ws, "https://", "wss://", 1)
	ws = strings.Replace(ws, "http://", "ws://", 1)
	return strings.TrimRight(ws, "/") + "/websocket"
}

// PricingConfig - price sources for USD enrichment
type PricingConfig struct {
	DegenterBaseURL string        `mapstructure:"degenter_base_url"`
	CMCBaseURL      string        `mapstructure:"cmc_base_url"`
	CMCAPIKey       string        `mapstructure:"cmc_api_key"`
	CMCAssetID      string        `mapstructure:"cmc_asset_id"`     // numeric CMC id, preferred over symbol when set
	CMCAssetSymbol  string        `mapstructure:"cmc_asset_symbol"` // fallback lookup key
	CacheTTL        time.Duration `mapstructure:"cache_ttl"`
	RequestTimeout  int           `mapstructure:"request_timeout"` // seconds
}

type AlertConfig struct {
	MinNativeAmount float64 `mapstructure:"min_native_amount"` // whole-unit threshold, inclusive
	BannerFile      string  `mapstructure:"banner_file"`
	ExplorerTxURL   string  `mapstructure:"explorer_tx_url"`
	TokenPageURL    string  `mapstructure:"token_page_url"`
}

// AppConfig -
type AppConfig struct {
	SubscribersFile string        `mapstructure:"subscribers_file"`
	ReconnectBase   time.Duration `mapstructure:"reconnect_base"`
	ReconnectMax    time.Duration `mapstructure:"reconnect_max"`
}

// LoadConfig layers configuration sources:
// 1. defaults
// 2. config.yaml
// 3. .env file
// 4. environment variables and flags
func LoadConfig() (*Config, error) {
	godotenv.Load(".env")

	v := viper.New()

	setDefaults(v)

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.ReadInConfig() // missing file is fine

	v.SetConfigType("env")
	v.SetConfigFile(".env")
	v.ReadInConfig() // missing file is fine

	v.AutomaticEnv()

	setupEnvAliases(v)

	setupFlags(v)

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, err
	}

	// Chat ids arrive as a comma-separated string from .env, or as a list
	// from YAML. Viper hands both over as interface values.
	chatIDs, err := parseChatIDs(v.Get("telegram.chat_ids"))
	if err != nil {
		return nil, err
	}
	config.Telegram.ChatIDs = chatIDs

	if err := validateConfig(&config); err != nil {
		return nil, err
	}

	return &config, nil
}

func parseChatIDs(raw interface{}) ([]int64, error) {
	if raw == nil {
		return []int64{}, nil
	}

	parseOne := func(s string) (int64, error) {
		id, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
		if err != nil {
			return 0, fmt.Errorf("invalid chat id %q: %w", s, err)
		}
		return id, nil
	}

	switch val := raw.(type) {
	case string:
		if strings.TrimSpace(val) == "" {
			return []int64{}, nil
		}
		parts := strings.Split(val, ",")
		ids := make([]int64, 0, len(parts))
		for _, part := range parts {
			if strings.TrimSpace(part) == "" {
				continue
			}
			id, err := parseOne(part)
			if err != nil {
				return nil, err
			}
			ids = append(ids, id)
		}
		return ids, nil
	case []interface{}:
		ids := make([]int64, 0, len(val))
		for _, item := range val {
			switch x := item.(type) {
			case int:
				ids = append(ids, int64(x))
			case int64:
				ids = append(ids, x)
			case float64:
				ids = append(ids, int64(x))
			case string:
				id, err := parseOne(x)
				if err != nil {
					return nil, err
				}
				ids = append(ids, id)
			default:
				return nil, fmt.Errorf("invalid chat id entry %v", item)
			}
		}
		return ids, nil
	case []int64:
		return val, nil
	default:
		return nil, fmt.Errorf("invalid telegram.chat_ids value %v", raw)
	}
}

func setupEnvAliases(v *viper.Viper) {
	// TELEGRAM_BOT_TOKEN -> telegram.bot_token

	// Telegram -
	v.BindEnv("telegram.bot_token", "TELEGRAM_BOT_TOKEN")
	v.BindEnv("telegram.chat_ids", "TELEGRAM_CHAT_IDS")

	// Chain -
	v.BindEnv("chain.rpc_url", "RPC_URL")
	v.BindEnv("chain.rest_url", "REST_URL")
	v.BindEnv("chain.native_denom", "NATIVE_DENOM")
	v.BindEnv("chain.native_symbol", "NATIVE_SYMBOL")

	// Pricing -
	v.BindEnv("pricing.degenter_base_url", "DEGENTER_BASE_URL")
	v.BindEnv("pricing.cmc_base_url", "CMC_BASE_URL")
	v.BindEnv("pricing.cmc_api_key", "CMC_API_KEY")
	v.BindEnv("pricing.cmc_asset_id", "CMC_ZIG_ID")
	v.BindEnv("pricing.cmc_asset_symbol", "CMC_ZIG_SYMBOL")
	v.BindEnv("pricing.request_timeout", "PRICING_REQUEST_TIMEOUT")

	// Alert -
	v.BindEnv("alert.min_native_amount", "HIGH_BUY_MIN_ZIG")
	v.BindEnv("alert.banner_file", "BANNER_FILE")
	v.BindEnv("alert.explorer_tx_url", "EXPLORER_TX_URL")
	v.BindEnv("alert.token_page_url", "TOKEN_PAGE_URL")

	// App -
	v.BindEnv("app.subscribers_file", "SUBSCRIBERS_FILE")
	v.BindEnv("app.reconnect_base", "RECONNECT_BASE")
	v.BindEnv("app.reconnect_max", "RECONNECT_MAX")
}

// setDefaults by default
func setDefaults(v *viper.Viper) {
	// Telegram
	v.SetDefault("telegram.bot_token", "")
	v.SetDefault("telegram.chat_ids", "")

	// Chain
	v.SetDefault("chain.rpc_url", "")
	v.SetDefault("chain.rest_url", "")
	v.SetDefault("chain.native_denom", "uzig")
	v.SetDefault("chain.native_symbol", "ZIG")

	// Pricing
	v.SetDefault("pricing.degenter_base_url", "https://dev-api.degenter.io")
	v.SetDefault("pricing.cmc_base_url", "https://pro-api.coinmarketcap.com")
	v.SetDefault("pricing.cmc_api_key", "")
	v.SetDefault("pricing.cmc_asset_id", "")
	v.SetDefault("pricing.cmc_asset_symbol", "ZIG")
	v.SetDefault("pricing.cache_ttl", 30*time.Second)
	v.SetDefault("pricing.request_timeout", 10)

	// Alert
	v.SetDefault("alert.min_native_amount", 100.0)
	v.SetDefault("alert.banner_file", "banner.png")
	v.SetDefault("alert.explorer_tx_url", "https://www.zigscan.org/tx/")
	v.SetDefault("alert.token_page_url", "https://app.degenter.io/token/")

	// App
	v.SetDefault("app.subscribers_file", "data_out/subscribers.json")
	v.SetDefault("app.reconnect_base", time.Second)
	v.SetDefault("app.reconnect_max", 30*time.Second)
}

func setupFlags(v *viper.Viper) {
	// Telegram
	pflag.String("telegram.bot_token", "", "Telegram bot token (env: TELEGRAM_BOT_TOKEN)")
	pflag.String("telegram.chat_ids", "", "Comma-separated seed chat ids (env: TELEGRAM_CHAT_IDS)")

	// Chain
	pflag.String("chain.rpc_url", "", "Tendermint RPC URL (env: RPC_URL)")
	pflag.String("chain.rest_url", "", "Cosmos REST (LCD) URL (env: REST_URL)")
	pflag.String("chain.native_denom", "uzig", "Native base denom (env: NATIVE_DENOM)")
	pflag.String("chain.native_symbol", "ZIG", "Native display symbol (env: NATIVE_SYMBOL)")

	// Pricing
	pflag.String("pricing.cmc_api_key", "", "CoinMarketCap API key (env: CMC_API_KEY)")
	pflag.String("pricing.cmc_asset_id", "", "CoinMarketCap asset id (env: CMC_ZIG_ID)")
	pflag.String("pricing.cmc_asset_symbol", "ZIG", "CoinMarketCap asset symbol (env: CMC_ZIG_SYMBOL)")
	pflag.Int("pricing.request_timeout", 10, "Price request timeout in seconds (env: PRICING_REQUEST_TIMEOUT)")

	// Alert
	pflag.Float64("alert.min_native_amount", 100.0, "Minimum ZIG spent to alert, inclusive (env: HIGH_BUY_MIN_ZIG)")
	pflag.String("alert.banner_file", "banner.png", "Alert banner image path (env: BANNER_FILE)")

	// App
	pflag.String("app.subscribers_file", "data_out/subscribers.json", "Subscriber persistence file (env: SUBSCRIBERS_FILE)")
	pflag.Duration("app.reconnect_base", time.Second, "Initial websocket reconnect delay (env: RECONNECT_BASE)")
	pflag.Duration("app.reconnect_max", 30*time.Second, "Maximum websocket reconnect delay (env: RECONNECT_MAX)")

	pflag.Parse()
	v.BindPFlags(pflag.CommandLine)
}

func validateConfig(cfg *Config) error {
	if cfg.Telegram.BotToken == "" {
		return fmt.Errorf("telegram.bot_token is required")
	}
	if cfg.Chain.RPCURL == "" {
		return fmt.Errorf("chain.rpc_url is required")
	}
	if cfg.Chain.NativeDenom == "" {
		return fmt.Errorf("chain.native_denom is required")
	}
	if cfg.App.ReconnectBase <= 0 {
		cfg.App.ReconnectBase = time.Second
	}
	if cfg.App.ReconnectMax < cfg.App.ReconnectBase {
		cfg.App.ReconnectMax = cfg.App.ReconnectBase
	}
	if cfg.Pricing.CacheTTL <= 0 {
		cfg.Pricing.CacheTTL = 30 * time.Second
	}
	return nil
}
