package alert

// High-buy alert message formatting for Telegram.

import (
	"fmt"
	"html"
	"strings"

	"highbuy-monitor/internal/decimals"
	"highbuy-monitor/internal/pricing"
	"highbuy-monitor/internal/stream"
)

// CleanSymbol extracts a display symbol from a denom string.
// "coin.zig15nes...karakchai" -> "KARAKCHAI", "uzig" -> "ZIG",
// "ibc/27394F..." -> "IBC-27394F".
func CleanSymbol(denom, nativeDenom, nativeSymbol string) string {
	if denom == nativeDenom {
		return nativeSymbol
	}

	if strings.Contains(denom, ".") {
		parts := strings.Split(denom, ".")
		return strings.ToUpper(parts[len(parts)-1])
	}

	if strings.HasPrefix(denom, "ibc/") {
		hash := denom[4:]
		if len(hash) > 6 {
			hash = hash[:6]
		}
		return "IBC-" + strings.ToUpper(hash)
	}

	return strings.ToUpper(denom)
}

// enrichment carries everything the template needs beyond the raw event.
type enrichment struct {
	offerDecimals uint32
	askDecimals   uint32
	spentUnitUSD  *float64
	askUnitUSD    *float64
}

// formatAlertMessage assembles the alert text for Telegram (HTML parse mode).
func formatAlertMessage(event stream.SwapEvent, e enrichment, nativeDenom, nativeSymbol string) string {
	boughtSymbol := CleanSymbol(event.AskAsset, nativeDenom, nativeSymbol)
	spentSymbol := CleanSymbol(event.OfferAsset, nativeDenom, nativeSymbol)

	spentFormatted := decimals.FormatAmount(event.OfferAmountRaw, e.offerDecimals)
	gotFormatted := decimals.FormatAmount(event.ReturnAmountRaw, e.askDecimals)

	spentTotalUSD := pricing.USDValue(event.OfferAmountRaw, e.offerDecimals, e.spentUnitUSD)
	gotTotalUSD := pricing.USDValue(event.ReturnAmountRaw, e.askDecimals, e.askUnitUSD)

	var spentSuffix, gotSuffix string
	if spentTotalUSD != nil {
		spentSuffix = fmt.Sprintf(" (%s)", pricing.FormatUSD(spentTotalUSD))
	}
	if gotTotalUSD != nil {
		gotSuffix = fmt.Sprintf(" (%s)", pricing.FormatUSD(gotTotalUSD))
	}

	lines := []string{
		fmt.Sprintf("🚀 <b>HIGH BUY — %s</b>", html.EscapeString(boughtSymbol)),
		"",
		fmt.Sprintf("💸 Spent: <b>%s %s</b>%s", spentFormatted, html.EscapeString(spentSymbol), spentSuffix),
		fmt.Sprintf("💰 Got: <b>%s %s</b>%s", gotFormatted, html.EscapeString(boughtSymbol), gotSuffix),
		"",
		fmt.Sprintf("👤 Buyer: <code>%s</code>", html.EscapeString(event.Sender)),
		fmt.Sprintf("📥 Receiver: <code>%s</code>", html.EscapeString(event.Receiver)),
		fmt.Sprintf("🔗 Pool: <code>%s</code>", html.EscapeString(event.PoolAddress)),
	}

	return strings.Join(lines, "\n")
}
