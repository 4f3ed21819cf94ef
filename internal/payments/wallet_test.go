package payments

import (
	"testing"
	"time"
)

var testKeywords = []string{"gcash"}

func TestIsWalletTransferLike(t *testing.T) {
	cases := []struct {
		name string
		text string
		want bool
	}{
		{"keyword and reference label", "GCash Reference No: 1234567890", true},
		{"keyword and receipt phrase", "GCash\nYou have received P500.00", true},
		{"label and receipt phrase", "Sent money successfully\nRef No. 9988776655", true},
		{"keyword alone", "paid with gcash", false},
		{"reference label alone", "Reference Number: 1234567890", false},
		{"unrelated text", "grocery list: eggs, rice", false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := IsWalletTransferLike(tc.text, testKeywords); got != tc.want {
				t.Fatalf("IsWalletTransferLike(%q) = %v, want %v", tc.text, got, tc.want)
			}
		})
	}
}

func TestIsWalletTransferLikeCustomKeywords(t *testing.T) {
	text := "Maya payment\nTransaction successful"
	if IsWalletTransferLike(text, testKeywords) {
		t.Fatal("expected no match for default keywords")
	}
	if !IsWalletTransferLike(text, []string{"gcash", "maya"}) {
		t.Fatal("expected match once maya is a configured keyword")
	}
}

func TestExtractReferenceCode(t *testing.T) {
	cases := []struct {
		name string
		text string
		want string
		ok   bool
	}{
		{"labelled reference", "Reference No: abc123xyz9", "ABC123XYZ9", true},
		{"ref shorthand", "Ref. # 1029384756", "1029384756", true},
		{"txn id", "Txn ID: 556677889900", "556677889900", true},
		{"bare fallback", "sent you 90817263545 po", "90817263545", true},
		{"too short", "Ref No: 123456", "", false},
		{"nothing usable", "thank you po", "", false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, ok := ExtractReferenceCode(tc.text)
			if ok != tc.ok || got != tc.want {
				t.Fatalf("ExtractReferenceCode(%q) = (%q, %v), want (%q, %v)", tc.text, got, ok, tc.want, tc.ok)
			}
		})
	}
}

func TestExtractReferenceCodePrefersLabel(t *testing.T) {
	text := "received 1111111 pesos\nReference No: 2222222"
	got, ok := ExtractReferenceCode(text)
	if !ok || got != "2222222" {
		t.Fatalf("got (%q, %v), want labelled code", got, ok)
	}
}

func TestIsRecent(t *testing.T) {
	now := time.Date(2026, time.March, 5, 12, 0, 0, 0, time.UTC)
	window := 10 * time.Minute

	if !IsRecent(now, now, window) {
		t.Fatal("timestamp equal to server time should be recent")
	}
	if !IsRecent(now.Add(-10*time.Minute), now, window) {
		t.Fatal("timestamp exactly at the window edge should be recent")
	}
	if IsRecent(now.Add(-10*time.Minute-time.Second), now, window) {
		t.Fatal("timestamp past the window should not be recent")
	}
	if IsRecent(now.Add(time.Second), now, window) {
		t.Fatal("future timestamp should never be recent")
	}
}

func TestMaskReferenceCode(t *testing.T) {
	cases := []struct {
		code string
		want string
	}{
		{"ABCD1234XY", "ABCD****XY"},
		{"1234567", "1234*67"},
		{"123456", "******"},
		{"AB", "******"},
		{"", "******"},
	}
	for _, tc := range cases {
		if got := MaskReferenceCode(tc.code); got != tc.want {
			t.Fatalf("MaskReferenceCode(%q) = %q, want %q", tc.code, got, tc.want)
		}
	}
}
