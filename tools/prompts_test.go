package tools

import (
	"strings"
	"testing"
)

func TestPrompts_Render(t *testing.T) {
	p, ok := LookupPrompt("financial_analysis")
	if !ok {
		t.Fatal("financial_analysis not found")
	}

	text, err := p.Render(map[string]string{"ticker": " nvda "})
	if err != nil {
		t.Fatalf("Render() error: %v", err)
	}
	if !strings.Contains(text, "financial analysis of NVDA") {
		t.Errorf("ticker not substituted: %s", text)
	}
	for _, tool := range []string{"get_company_profile", "get_financial_report", "get_stock_price_history", "get_analyst_ratings"} {
		if !strings.Contains(text, tool) {
			t.Errorf("prompt does not mention %s", tool)
		}
	}
}

func TestPrompts_SectorComparison(t *testing.T) {
	p, _ := LookupPrompt("sector_comparison")

	text, err := p.Render(map[string]string{"sector": "Energy"})
	if err != nil {
		t.Fatalf("Render() error: %v", err)
	}
	if !strings.Contains(text, "sector='Energy'") {
		t.Errorf("sector not substituted: %s", text)
	}
}

func TestPrompts_RequiredArgument(t *testing.T) {
	for _, p := range Prompts {
		if _, err := p.Render(map[string]string{}); err == nil {
			t.Errorf("%s rendered without its required argument", p.Name)
		}
	}
	if _, ok := LookupPrompt("unknown"); ok {
		t.Error("unknown prompt should not be found")
	}
}
