package payments

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func sign(orderID, paymentID, secret string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(orderID + "|" + paymentID))
	return hex.EncodeToString(mac.Sum(nil))
}

func TestVerifySignature(t *testing.T) {
	secret := "test_key_secret"
	sig := sign("order_abc", "pay_xyz", secret)

	assert.True(t, VerifySignature("order_abc", "pay_xyz", sig, secret))
	assert.True(t, VerifySignature("order_abc", "pay_xyz", strings.ToUpper(sig), secret),
		"uppercase hex digests should still verify")
}

func TestVerifySignatureRejectsMismatch(t *testing.T) {
	secret := "test_key_secret"

	// A payment id belonging to a different order must not verify.
	sig := sign("order_other", "pay_xyz", secret)
	assert.False(t, VerifySignature("order_abc", "pay_xyz", sig, secret))

	assert.False(t, VerifySignature("order_abc", "pay_xyz", sign("order_abc", "pay_xyz", "wrong"), secret))
	assert.False(t, VerifySignature("order_abc", "pay_xyz", "deadbeef", secret))
}

func TestVerifySignatureRejectsEmptyParts(t *testing.T) {
	secret := "s"
	assert.False(t, VerifySignature("", "pay", sign("", "pay", secret), secret))
	assert.False(t, VerifySignature("order", "", sign("order", "", secret), secret))
	assert.False(t, VerifySignature("order", "pay", "", secret))
}

func TestToPaise(t *testing.T) {
	assert.Equal(t, int64(12980000), ToPaise(129800))
	assert.Equal(t, int64(100), ToPaise(1))
	assert.Equal(t, int64(99), ToPaise(0.994))
}
