package utils

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// GenerateBillNumber returns <prefix>-<yyMMddHHmmss>-<4 hex digits>.
// The suffix alone does not guarantee uniqueness; callers check and retry.
func GenerateBillNumber(prefix string, at time.Time) (string, error) {
	var b [2]byte
	if _, err := rand.Read(b[:]); err != nil {
		return "", fmt.Errorf("bill number suffix: %w", err)
	}
	return prefix + "-" + at.Format("060102150405") + "-" + strings.ToUpper(hex.EncodeToString(b[:])), nil
}

// GenerateBatchID returns BATCH- followed by the last six digits of the Unix
// millisecond timestamp.
func GenerateBatchID(at time.Time) string {
	ms := strconv.FormatInt(at.UnixMilli(), 10)
	if len(ms) > 6 {
		ms = ms[len(ms)-6:]
	}
	return "BATCH-" + ms
}

// NormalizeCode trims a barcode or HSN code and strips inner whitespace that
// scanners sometimes emit.
func NormalizeCode(s string) string {
	return strings.Join(strings.Fields(s), "")
}
