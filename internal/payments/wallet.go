package payments

import (
	"regexp"
	"strings"
	"time"
)

var (
	referenceLabelPattern = regexp.MustCompile(`(?i)\b(reference\s*(no|number|#)?|ref\.?\s*(no|number|#)?|txn\s*id|transaction\s*id)\b`)
	receiptPhrasePattern  = regexp.MustCompile(`(?i)\b(you\s+have\s+received|sent\s+money|paid\s+to|transaction\s+successful)\b`)

	labelledReferencePattern = regexp.MustCompile(`(?i)(?:reference\s*(?:no|number|#)?|ref\.?\s*(?:no|number|#)?|txn\s*id|transaction\s*id)[\s:]*([a-z0-9]{7,20})`)
	bareReferencePattern     = regexp.MustCompile(`(?i)\b([a-z0-9]{7,20})\b`)
)

// IsWalletTransferLike reports whether OCR text resembles a wallet-transfer
// receipt. At least two independent indicators must be present: a provider
// keyword, a reference-number label, or a typical receipt phrase.
func IsWalletTransferLike(text string, providerKeywords []string) bool {
	lower := strings.ToLower(text)

	indicators := 0
	for _, keyword := range providerKeywords {
		if keyword != "" && strings.Contains(lower, strings.ToLower(keyword)) {
			indicators++
			break
		}
	}
	if referenceLabelPattern.MatchString(text) {
		indicators++
	}
	if receiptPhrasePattern.MatchString(text) {
		indicators++
	}
	return indicators >= 2
}

// ExtractReferenceCode pulls the transaction reference out of OCR text.
// Labelled references win over bare alphanumeric runs. Codes are uppercased.
func ExtractReferenceCode(text string) (string, bool) {
	for _, pattern := range []*regexp.Regexp{labelledReferencePattern, bareReferencePattern} {
		match := pattern.FindStringSubmatch(text)
		if len(match) < 2 {
			continue
		}
		code := strings.TrimSpace(match[1])
		if len(code) >= 7 && len(code) <= 20 {
			return strings.ToUpper(code), true
		}
	}
	return "", false
}

// IsRecent reports whether a transaction happened within the freshness window
// ending at serverTime. Future timestamps are never recent.
func IsRecent(transactionTime, serverTime time.Time, window time.Duration) bool {
	diff := serverTime.Sub(transactionTime)
	return diff >= 0 && diff <= window
}

// MaskReferenceCode hides the middle of a reference code for logs and error
// payloads. Short codes are masked entirely.
func MaskReferenceCode(code string) string {
	if len(code) <= 6 {
		return "******"
	}
	return code[:4] + strings.Repeat("*", len(code)-6) + code[len(code)-2:]
}
