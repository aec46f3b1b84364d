package extract

import "testing"

func TestAmounts_LabelPrefixed(t *testing.T) {
	out := Amounts("Toplam: 1.234,56 TL")
	if len(out) != 1 {
		t.Fatalf("expected 1 amount, got %d: %v", len(out), out)
	}
	a := out[0]
	if a.Value != 1234.56 {
		t.Errorf("Value = %g, want 1234.56", a.Value)
	}
	if a.Currency != "TRY" {
		t.Errorf("Currency = %q, want TRY", a.Currency)
	}
	if a.Confidence != 0.95 {
		t.Errorf("Confidence = %g, want 0.95", a.Confidence)
	}
}

func TestAmounts_UngroupedThousands(t *testing.T) {
	// A bare 4+ digit run has no thousand separators; it must parse whole,
	// not stop after the first three digits.
	out := Amounts("Toplam: 1500 TL")
	if len(out) != 1 {
		t.Fatalf("expected 1 amount, got %d: %v", len(out), out)
	}
	if out[0].Value != 1500 || out[0].Currency != "TRY" {
		t.Errorf("got %v, want 1500 TRY", out[0])
	}
	if out[0].Confidence != 0.95 {
		t.Errorf("Confidence = %g, want 0.95", out[0].Confidence)
	}
}

func TestAmounts_SymbolPrefixed(t *testing.T) {
	out := Amounts("aylik ucret $99.90 olarak kesildi")
	if len(out) != 1 {
		t.Fatalf("expected 1 amount, got %d: %v", len(out), out)
	}
	if out[0].Value != 99.90 || out[0].Currency != "USD" {
		t.Errorf("got %v, want 99.90 USD", out[0])
	}
	if out[0].Confidence != 0.9 {
		t.Errorf("Confidence = %g, want 0.9", out[0].Confidence)
	}
}

func TestAmounts_USFormat(t *testing.T) {
	out := Amounts("Total: 1,234.56 USD")
	if len(out) != 1 {
		t.Fatalf("expected 1 amount, got %d: %v", len(out), out)
	}
	if out[0].Value != 1234.56 || out[0].Currency != "USD" {
		t.Errorf("got %v, want 1234.56 USD", out[0])
	}
}

func TestAmounts_NegativeParenthesized(t *testing.T) {
	out := Amounts("Toplam: (1.250,00) TL")
	if len(out) != 1 {
		t.Fatalf("expected 1 amount, got %d: %v", len(out), out)
	}
	if out[0].Value != -1250 {
		t.Errorf("Value = %g, want -1250", out[0].Value)
	}
}

func TestAmounts_DedupSameValueCurrency(t *testing.T) {
	// The cascade sees "100 TL" through two passes; the first
	// (higher-confidence) hit wins and the duplicate is dropped.
	out := Amounts("Toplam: 100 TL odendi, yine 100 TL")
	if len(out) != 1 {
		t.Fatalf("expected 1 amount, got %d: %v", len(out), out)
	}
	if out[0].Confidence != 0.95 {
		t.Errorf("Confidence = %g, want highest-pass 0.95", out[0].Confidence)
	}
}

func TestAmounts_ContextualKeyword(t *testing.T) {
	out := Amounts("fatura bedeli 1500 olarak belirlendi")
	if len(out) != 1 {
		t.Fatalf("expected 1 amount, got %d: %v", len(out), out)
	}
	if out[0].Value != 1500 || out[0].Currency != "" {
		t.Errorf("got %v, want bare 1500", out[0])
	}
	if out[0].Confidence != 0.7 {
		t.Errorf("Confidence = %g, want 0.7", out[0].Confidence)
	}
}

func TestAmounts_NoMonetaryContent(t *testing.T) {
	if out := Amounts("sozlesme maddeleri ve sartlar"); len(out) != 0 {
		t.Errorf("expected no amounts, got %v", out)
	}
}

func TestAmounts_ContextWindow(t *testing.T) {
	out := Amounts("Bu ayki Toplam: 500 TL olarak hesaplandi")
	if len(out) != 1 {
		t.Fatalf("expected 1 amount, got %d", len(out))
	}
	if out[0].Context == "" {
		t.Error("expected non-empty context window")
	}
}

func TestNormalizeCurrency(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"TL", "TRY"}, {"tl", "TRY"}, {"₺", "TRY"},
		{"$", "USD"}, {"usd", "USD"},
		{"€", "EUR"}, {"£", "GBP"},
		{"", ""},
		{"chf", "CHF"},
	}
	for _, tt := range tests {
		if got := NormalizeCurrency(tt.in); got != tt.want {
			t.Errorf("NormalizeCurrency(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestAmountString(t *testing.T) {
	a := Amount{Value: 1234.5, Currency: "TRY"}
	if got := a.String(); got != "1234.50 TRY" {
		t.Errorf("String = %q", got)
	}
	bare := Amount{Value: 10}
	if got := bare.String(); got != "10.00" {
		t.Errorf("String = %q", got)
	}
}
