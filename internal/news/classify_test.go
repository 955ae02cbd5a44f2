package news

import (
	"reflect"
	"testing"

	"MarketTerminal/internal/model"
)

func TestClassifyImpact(t *testing.T) {
	tests := []struct {
		name    string
		title   string
		summary string
		want    string
	}{
		{"positive", "Sensex surges to record high on strong earnings", "", "positive"},
		{"negative", "Markets crash as FII outflow deepens, IT stocks slump", "", "negative"},
		{"neutral no keywords", "RBI monetary committee meets tomorrow", "", "neutral"},
		{"tie is neutral", "Nifty gains wiped out by late fall", "", "neutral"},
		{"summary counts", "Quarterly update", "profit growth beat estimates, strong inflow", "positive"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ClassifyImpact(tt.title, tt.summary); got != tt.want {
				t.Errorf("ClassifyImpact(%q) = %q, want %q", tt.title, got, tt.want)
			}
		})
	}
}

func TestClassifyCategory(t *testing.T) {
	tests := []struct {
		name    string
		title   string
		feedCat string
		want    string
	}{
		{"earnings", "TCS Q2 results: profit up 8%", "Economy", "Earnings"},
		{"policy", "RBI holds repo rate, tweaks regulation", "Economy", "Policy"},
		{"global", "Fed decision drags world markets lower", "Economy", "Global"},
		{"sector", "Pharma and metal names lead the charge", "Economy", "Sector"},
		{"fallback to feed", "Monsoon hits Kerala coast", "Economy", "Economy"},
		{"earnings beats policy", "Q4 profit jumps after tax cut", "Economy", "Earnings"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ClassifyCategory(tt.title, "", tt.feedCat); got != tt.want {
				t.Errorf("ClassifyCategory(%q) = %q, want %q", tt.title, got, tt.want)
			}
		})
	}
}

func TestDetectAffectedStocks(t *testing.T) {
	tests := []struct {
		name  string
		title string
		want  []string
	}{
		{"direct symbol", "RELIANCE hits record high", []string{"RELIANCE"}},
		{"alias mapping", "Infosys and Tata Motors lead gains", []string{"INFY", "TATAMOTORS"}},
		{"index names dropped", "NIFTY and SENSEX close flat", nil},
		{"group mention dropped", "ADANI group stocks slide", nil},
		{"sbi maps to sbin", "SBI raises lending rates", []string{"SBIN"}},
		{"none", "Gold prices steady ahead of data", nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := DetectAffectedStocks(tt.title, "")
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("DetectAffectedStocks(%q) = %v, want %v", tt.title, got, tt.want)
			}
		})
	}
}

func TestDetectAffectedStocksCap(t *testing.T) {
	title := "RELIANCE TCS HDFCBANK ICICIBANK INFY ITC MARUTI all rally"
	got := DetectAffectedStocks(title, "")
	if len(got) != 5 {
		t.Errorf("affected list should cap at 5, got %d: %v", len(got), got)
	}
}

func TestDedupeByTitlePrefix(t *testing.T) {
	long := "Sensex rallies 500 points as banking stocks surge on strong credit data"
	in := []model.NewsArticle{
		{Title: long + " - Economic Times"},
		{Title: long + " | Moneycontrol"},
		{Title: "A different headline entirely"},
	}

	got := dedupe(in)
	if len(got) != 2 {
		t.Fatalf("dedupe kept %d articles, want 2", len(got))
	}
	if got[0].Title != in[0].Title {
		t.Errorf("first occurrence should survive, got %q", got[0].Title)
	}
}
