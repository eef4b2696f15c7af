package commands

// Command to run the high-buy monitor: websocket stream pipeline plus the
// Telegram command handler, with graceful shutdown on SIGINT/SIGTERM.

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"highbuy-monitor/bots_monitor"
	"highbuy-monitor/internal/alert"
	"highbuy-monitor/internal/clients_api/chainrest"
	"highbuy-monitor/internal/clients_api/cmc"
	"highbuy-monitor/internal/clients_api/degenter"
	"highbuy-monitor/internal/decimals"
	"highbuy-monitor/internal/infra/config"
	"highbuy-monitor/internal/infra/log"
	"highbuy-monitor/internal/pricing"
	"highbuy-monitor/internal/stream"
	"highbuy-monitor/internal/subscribers"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// nativeDecimals is the micro-unit precision of the chain's native coin.
const nativeDecimals = 6

var monitorCmd = &cobra.Command{
	Use:   "monitor",
	Short: "Run the high-buy monitor",
	Long:  `Connect to the chain's websocket event stream and alert subscribers about large native-funded swaps.`,
	RunE:  runMonitor,
}

func runMonitor(cmd *cobra.Command, args []string) error {
	cfg, err := config.LoadConfig()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	log.LogInfo("Starting HighBuy Monitor",
		zap.String("rpc", cfg.Chain.RPCURL),
		zap.String("ws", cfg.Chain.WSURL()),
		zap.Float64("min_native", cfg.Alert.MinNativeAmount))

	bot, err := tgbotapi.NewBotAPI(cfg.Telegram.BotToken)
	if err != nil {
		return fmt.Errorf("failed to initialize Telegram bot: %w", err)
	}
	log.LogSuccess("Bot authorized", zap.String("username", bot.Self.UserName))

	registry, err := subscribers.Load(cfg.App.SubscribersFile, cfg.Telegram.ChatIDs)
	if err != nil {
		return fmt.Errorf("failed to load subscribers: %w", err)
	}

	if err := alert.EnsureBanner(cfg.Alert.BannerFile); err != nil {
		log.LogWarn("Banner unavailable, alerts will be text-only", zap.Error(err))
	}

	// Decimals come from the node's REST endpoint when one is configured.
	var metadataSource decimals.MetadataSource
	if cfg.Chain.RESTURL != "" {
		metadataSource = chainrest.NewClient(cfg.Chain.RESTURL, cfg.Pricing.RequestTimeout)
	} else {
		log.LogWarn("REST URL not configured, non-native decimals resolve to 0")
	}
	decimalsResolver := decimals.NewResolver(metadataSource, cfg.Chain.NativeDenom, nativeDecimals)

	poolsClient := degenter.NewClient(cfg.Pricing.DegenterBaseURL, cfg.Pricing.RequestTimeout)

	// Without an API key every quote request would fail anyway; leaving the
	// source nil makes the resolver answer "unknown" without network calls.
	var quoteSource pricing.QuoteSource
	if cfg.Pricing.CMCAPIKey != "" {
		quoteSource = cmc.NewClient(cfg.Pricing.CMCBaseURL, cfg.Pricing.CMCAPIKey, cfg.Pricing.RequestTimeout)
	} else {
		log.LogWarn("CMC API key not configured, native USD prices disabled")
	}
	priceResolver := pricing.NewResolver(poolsClient, quoteSource,
		cfg.Pricing.CMCAssetID, cfg.Pricing.CMCAssetSymbol, cfg.Pricing.CacheTTL)

	alerter := &alert.Alerter{
		Registry:      registry,
		Delivery:      alert.NewTelegramDelivery(bot),
		Decimals:      decimalsResolver,
		Prices:        priceResolver,
		NativeDenom:   cfg.Chain.NativeDenom,
		NativeSymbol:  cfg.Chain.NativeSymbol,
		BannerPath:    cfg.Alert.BannerFile,
		ExplorerTxURL: cfg.Alert.ExplorerTxURL,
		TokenPageURL:  cfg.Alert.TokenPageURL,
	}

	extractor := stream.Extractor{
		NativeDenom:     cfg.Chain.NativeDenom,
		MinNativeAmount: cfg.Alert.MinNativeAmount,
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	subscriber := stream.NewSubscriber(cfg.Chain.WSURL(), cfg.App.ReconnectBase, cfg.App.ReconnectMax,
		func(events map[string][]string) {
			event, ok := extractor.Extract(events)
			if !ok {
				return
			}
			log.LogInfo("High buy detected",
				zap.String("tx_hash", event.TxHash),
				zap.String("ask_asset", event.AskAsset),
				zap.String("offer_amount", event.OfferAmountRaw))
			alerter.Send(ctx, event)
		})

	var wg sync.WaitGroup

	wg.Add(1)
	go func() {
		defer wg.Done()
		subscriber.Run(ctx)
	}()

	wg.Add(1)
	go func() {
		defer wg.Done()
		bots_monitor.RunCommandHandler(ctx, bot, registry, bots_monitor.StatusInfo{
			RPCURL:    cfg.Chain.RPCURL,
			WSURL:     cfg.Chain.WSURL(),
			MinNative: cfg.Alert.MinNativeAmount,
			Symbol:    cfg.Chain.NativeSymbol,
		})
	}()

	log.LogSuccess("HighBuy Monitor is running", zap.Int("subscribers", registry.Len()))

	<-ctx.Done()
	log.LogInfo("Shutdown signal received, gracefully stopping...")

	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		log.LogSuccess("HighBuy Monitor stopped gracefully")
	case <-time.After(10 * time.Second):
		log.LogWarn("Timeout waiting for components to stop")
	}

	return nil
}
