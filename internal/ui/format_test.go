package ui

import "testing"

func TestFlagGlyph(t *testing.T) {
	tests := []struct {
		code string
		want string
	}{
		{"US", "\U0001F1FA\U0001F1F8"},
		{"FR", "\U0001F1EB\U0001F1F7"},
		{"us", ""},
		{"USA", ""},
		{"U", ""},
		{"", ""},
		{"U1", ""},
		{"É", ""},
	}

	for _, tt := range tests {
		t.Run(tt.code, func(t *testing.T) {
			if got := FlagGlyph(tt.code); got != tt.want {
				t.Errorf("FlagGlyph(%q) = %q, want %q", tt.code, got, tt.want)
			}
		})
	}
}

func TestFormatPrice(t *testing.T) {
	short := PriceOptions{Symbol: SymbolShort, NoCentsIfWhole: true}

	tests := []struct {
		name  string
		code  string
		cents int64
		opts  PriceOptions
		want  string
	}{
		{"whole dollars", "usd", 100000, short, "$1,000"},
		{"cents kept", "usd", 123456, short, "$1,234.56"},
		{"small cents", "usd", 5, short, "$0.05"},
		{"zero", "usd", 0, short, "$0"},
		{"whole with cents forced", "usd", 100000, PriceOptions{Symbol: SymbolShort}, "$1,000.00"},
		{"long symbol", "usd", 2500, PriceOptions{Symbol: SymbolLong, NoCentsIfWhole: true}, "US$25"},
		{"no symbol", "usd", 1234567, PriceOptions{Symbol: SymbolNone}, "12,345.67"},
		{"negative", "usd", -1050, short, "-$10.50"},
		{"zero decimal currency", "jpy", 1500, short, "¥1,500"},
		{"euro", "EUR", 999, short, "€9.99"},
		{"long yen", "jpy", 1500, PriceOptions{Symbol: SymbolLong}, "JP¥1,500"},
		{"narrow canadian", "cad", 500, short, "$5"},
		{"long canadian", "cad", 500, PriceOptions{Symbol: SymbolLong, NoCentsIfWhole: true}, "CA$5"},
		{"pound", "gbp", 1999, short, "£19.99"},
		{"unknown code", "xyz", 100, short, "XYZ 1"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := FormatPrice(tt.code, tt.cents, tt.opts); got != tt.want {
				t.Errorf("FormatPrice(%q, %d) = %q, want %q", tt.code, tt.cents, got, tt.want)
			}
		})
	}
}

func TestGroupDigits(t *testing.T) {
	tests := map[int64]string{
		0:       "0",
		999:     "999",
		1000:    "1,000",
		1234567: "1,234,567",
	}
	for n, want := range tests {
		if got := GroupDigits(n); got != want {
			t.Errorf("GroupDigits(%d) = %q, want %q", n, got, want)
		}
	}
}
