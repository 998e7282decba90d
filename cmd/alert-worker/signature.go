package main

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"
	"time"
)

// signPayload generates the signature header value for an alert delivery.
// The signed content is "{unix_timestamp}.{payload}" using HMAC-SHA256, and
// the header value is "t=<unix>,v1=<hex>". The timestamp lets receivers
// reject replayed deliveries.
func signPayload(payload []byte, secret string, now time.Time) string {
	timestamp := now.Unix()
	signedContent := fmt.Sprintf("%d.%s", timestamp, string(payload))
	return fmt.Sprintf("t=%d,v1=%s", timestamp, computeHMAC(signedContent, secret))
}

// verifySignature checks a payload against a signature header. Used by tests
// and available to receiver implementations verifying deliveries.
func verifySignature(payload []byte, header, secret string) bool {
	var timestamp, v1 string
	for _, part := range strings.Split(header, ",") {
		switch {
		case strings.HasPrefix(part, "t="):
			timestamp = strings.TrimPrefix(part, "t=")
		case strings.HasPrefix(part, "v1="):
			v1 = strings.TrimPrefix(part, "v1=")
		}
	}
	if timestamp == "" || v1 == "" {
		return false
	}

	signedContent := fmt.Sprintf("%s.%s", timestamp, string(payload))
	expected := computeHMAC(signedContent, secret)
	return hmac.Equal([]byte(expected), []byte(v1))
}

// computeHMAC returns the lowercase hex HMAC-SHA256 of content keyed by secret.
func computeHMAC(content, secret string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(content))
	return hex.EncodeToString(mac.Sum(nil))
}
