package decimals

import "strings"

// FormatAmount renders a raw base-unit amount string for display.
// With decimals > 0 the amount is shifted and shown with exactly two
// fractional digits; with decimals == 0 it stays an integer. The whole part
// is grouped with thousands separators either way.
func FormatAmount(raw string, decimals uint32) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "0"
	}
	for _, r := range raw {
		if r < '0' || r > '9' {
			return raw
		}
	}
	raw = strings.TrimLeft(raw, "0")
	if raw == "" {
		raw = "0"
	}

	if decimals == 0 {
		return groupThousands(raw)
	}

	d := int(decimals)
	var whole, frac string
	if len(raw) <= d {
		whole = "0"
		frac = strings.Repeat("0", d-len(raw)) + raw
	} else {
		whole = raw[:len(raw)-d]
		frac = raw[len(raw)-d:]
	}

	// Two fractional digits, truncated not rounded.
	frac = (frac + "00")[:2]

	return groupThousands(whole) + "." + frac
}

func groupThousands(digits string) string {
	n := len(digits)
	if n <= 3 {
		return digits
	}
	var b strings.Builder
	lead := n % 3
	if lead > 0 {
		b.WriteString(digits[:lead])
	}
	for i := lead; i < n; i += 3 {
		if b.Len() > 0 {
			b.WriteByte(',')
		}
		b.WriteString(digits[i : i+3])
	}
	return b.String()
}
