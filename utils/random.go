package utils

import (
	"fmt"
	"math/rand"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

var mu sync.Mutex
var seededRand *rand.Rand

func init() {
	seededRand = rand.New(rand.NewSource(time.Now().UnixNano()))
}

// GenerateOrderNo returns a 32-character opaque order number:
// unix milliseconds plus a random suffix, zero-padded.
func GenerateOrderNo() string {
	mu.Lock()
	defer mu.Unlock()

	base := fmt.Sprintf("%d%06d", time.Now().UnixMilli(), seededRand.Intn(1000000))
	if len(base) >= 32 {
		return base[:32]
	}
	return base + strings.Repeat("0", 32-len(base))
}

// MockTransactionID returns an opaque provider reference for mock
// settlements, recognizable by its prefix in stored records.
func MockTransactionID() string {
	return "mock_tx_" + strings.ReplaceAll(uuid.NewString(), "-", "")[:20]
}

// MockOpenID derives a development openid from the client login code.
func MockOpenID(code string) string {
	return fmt.Sprintf("mock_%s_%s", code, uuid.NewString()[:6])
}
