package alert

import (
	"context"
	"sync"

	"highbuy-monitor/internal/decimals"
	logging "highbuy-monitor/internal/infra/log"
	"highbuy-monitor/internal/pricing"
	"highbuy-monitor/internal/stream"
	"highbuy-monitor/internal/subscribers"

	"go.uber.org/zap"
)

// Alerter turns an accepted swap into a rendered alert and fans it out to
// every current subscriber.
type Alerter struct {
	Registry *subscribers.Registry
	Delivery Delivery
	Decimals *decimals.Resolver
	Prices   *pricing.Resolver

	NativeDenom  string
	NativeSymbol string

	BannerPath    string
	ExplorerTxURL string
	TokenPageURL  string
}

// Send enriches the event and delivers the alert. One recipient's failure
// never blocks the rest; a permanently rejected recipient is unsubscribed
// on the spot.
func (a *Alerter) Send(ctx context.Context, event stream.SwapEvent) {
	e := a.enrich(ctx, event)

	text := formatAlertMessage(event, e, a.NativeDenom, a.NativeSymbol)
	links := []Link{
		{Label: "🔍 View TX", URL: a.ExplorerTxURL + event.TxHash},
		{Label: "📊 Pools", URL: a.TokenPageURL + event.AskAsset},
	}

	recipients := a.Registry.ListAll()
	delivered := 0
	for _, chatID := range recipients {
		err := a.Delivery.Send(chatID, text, a.BannerPath, links)
		if err == nil {
			delivered++
			continue
		}

		if IsPermanentRejection(err) {
			a.Registry.Remove(chatID)
			logging.LogInfo("Unsubscribed unreachable chat",
				zap.Int64("chat_id", chatID),
				zap.String("reason", err.Error()))
			continue
		}

		logging.LogError("Failed to deliver alert",
			zap.Int64("chat_id", chatID),
			zap.Error(err))
	}

	logging.LogSuccess("High buy alert sent",
		zap.String("tx_hash", event.TxHash),
		zap.String("ask_asset", event.AskAsset),
		zap.Int("recipients", len(recipients)),
		zap.Int("delivered", delivered))
}

// enrich resolves decimals and prices for both sides of the swap. The five
// lookups are independent, so they run concurrently.
func (a *Alerter) enrich(ctx context.Context, event stream.SwapEvent) enrichment {
	var e enrichment
	var nativeUSD, offerTokenUSD *float64

	var wg sync.WaitGroup
	wg.Add(5)
	go func() {
		defer wg.Done()
		e.offerDecimals = a.Decimals.Resolve(ctx, event.OfferAsset)
	}()
	go func() {
		defer wg.Done()
		e.askDecimals = a.Decimals.Resolve(ctx, event.AskAsset)
	}()
	go func() {
		defer wg.Done()
		nativeUSD = a.Prices.NativePriceUSD(ctx)
	}()
	go func() {
		defer wg.Done()
		offerTokenUSD = a.Prices.TokenPriceUSD(ctx, event.OfferAsset)
	}()
	go func() {
		defer wg.Done()
		e.askUnitUSD = a.Prices.TokenPriceUSD(ctx, event.AskAsset)
	}()
	wg.Wait()

	if event.OfferAsset == a.NativeDenom {
		e.spentUnitUSD = nativeUSD
	} else {
		e.spentUnitUSD = offerTokenUSD
	}
	return e
}
