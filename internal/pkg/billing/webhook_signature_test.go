package billing

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"testing"
	"time"
)

func signPayload(t *testing.T, payload []byte, secret string, ts int64) string {
	t.Helper()
	mac := hmac.New(sha256.New, []byte(secret))
	fmt.Fprintf(mac, "%d.", ts)
	mac.Write(payload)
	return hex.EncodeToString(mac.Sum(nil))
}

func TestVerifyStripeWebhookSignature(t *testing.T) {
	payload := []byte(`{"id":"evt_1","type":"invoice.payment_failed"}`)
	secret := "whsec_test"
	now := time.Unix(1700000000, 0)
	ts := now.Unix()

	valid := fmt.Sprintf("t=%d,v1=%s", ts, signPayload(t, payload, secret, ts))
	if !verifyStripeSignatureAt(payload, valid, secret, DefaultSignatureTolerance, now) {
		t.Fatalf("expected valid signature to verify")
	}

	// Extra unknown scheme entries must not break verification.
	withExtra := fmt.Sprintf("t=%d,v0=deadbeef,v1=%s", ts, signPayload(t, payload, secret, ts))
	if !verifyStripeSignatureAt(payload, withExtra, secret, DefaultSignatureTolerance, now) {
		t.Fatalf("expected signature with extra schemes to verify")
	}

	// Any matching v1 entry is enough.
	multi := fmt.Sprintf("t=%d,v1=%s,v1=%s", ts, hex.EncodeToString(make([]byte, 32)), signPayload(t, payload, secret, ts))
	if !verifyStripeSignatureAt(payload, multi, secret, DefaultSignatureTolerance, now) {
		t.Fatalf("expected one matching v1 out of several to verify")
	}
}

func TestVerifyStripeWebhookSignature_Rejects(t *testing.T) {
	payload := []byte(`{"id":"evt_1"}`)
	secret := "whsec_test"
	now := time.Unix(1700000000, 0)
	ts := now.Unix()

	tests := []struct {
		name   string
		header string
	}{
		{name: "empty header", header: ""},
		{name: "no timestamp", header: "v1=" + signPayload(t, payload, secret, ts)},
		{name: "no signature", header: fmt.Sprintf("t=%d", ts)},
		{name: "garbage timestamp", header: "t=abc,v1=" + signPayload(t, payload, secret, ts)},
		{name: "wrong secret", header: fmt.Sprintf("t=%d,v1=%s", ts, signPayload(t, payload, "whsec_other", ts))},
		{name: "tampered payload", header: fmt.Sprintf("t=%d,v1=%s", ts, signPayload(t, []byte(`{"id":"evt_2"}`), secret, ts))},
	}

	for _, tt := range tests {
		if verifyStripeSignatureAt(payload, tt.header, secret, DefaultSignatureTolerance, now) {
			t.Fatalf("%s: expected verification to fail", tt.name)
		}
	}

	if verifyStripeSignatureAt(payload, fmt.Sprintf("t=%d,v1=%s", ts, signPayload(t, payload, secret, ts)), "", DefaultSignatureTolerance, now) {
		t.Fatalf("expected empty secret to fail verification")
	}
}

func TestVerifyStripeWebhookSignature_Tolerance(t *testing.T) {
	payload := []byte(`{"id":"evt_1"}`)
	secret := "whsec_test"
	now := time.Unix(1700000000, 0)

	old := now.Add(-6 * time.Minute).Unix()
	header := fmt.Sprintf("t=%d,v1=%s", old, signPayload(t, payload, secret, old))
	if verifyStripeSignatureAt(payload, header, secret, DefaultSignatureTolerance, now) {
		t.Fatalf("expected stale timestamp to fail verification")
	}

	future := now.Add(6 * time.Minute).Unix()
	header = fmt.Sprintf("t=%d,v1=%s", future, signPayload(t, payload, secret, future))
	if verifyStripeSignatureAt(payload, header, secret, DefaultSignatureTolerance, now) {
		t.Fatalf("expected future timestamp to fail verification")
	}

	// Within the window on both sides.
	recent := now.Add(-4 * time.Minute).Unix()
	header = fmt.Sprintf("t=%d,v1=%s", recent, signPayload(t, payload, secret, recent))
	if !verifyStripeSignatureAt(payload, header, secret, DefaultSignatureTolerance, now) {
		t.Fatalf("expected timestamp inside tolerance to verify")
	}
}
