package tools

import (
	"strings"
	"testing"
)

func TestResources(t *testing.T) {
	res := Resources()
	want := []string{"schema://companies", "schema://financial_reports", "schema://stock_prices", "schema://analyst_ratings"}

	if len(res) != len(want) {
		t.Fatalf("got %d resources, want %d", len(res), len(want))
	}
	for i, uri := range want {
		if res[i].URI != uri {
			t.Errorf("resource %d = %s, want %s", i, res[i].URI, uri)
		}
	}
}

func TestReadResource(t *testing.T) {
	text, ok := ReadResource("schema://financial_reports")
	if !ok {
		t.Fatal("financial_reports schema not found")
	}
	if !strings.Contains(text, "fiscal_quarter") || !strings.Contains(text, "ON DELETE CASCADE") {
		t.Errorf("unexpected schema text: %s", text)
	}

	for _, uri := range []string{"schema://positions", "file:///etc/passwd", "companies"} {
		if _, ok := ReadResource(uri); ok {
			t.Errorf("ReadResource(%q) should fail", uri)
		}
	}
}
