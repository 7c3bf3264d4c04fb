package i18n

import (
	"strings"
	"testing"
)

func TestTranslator_DefaultAndJapanese(t *testing.T) {
	// default is en
	if msg := T("unsupported_type", map[string]string{"path": "/Polygon/id"}); msg != "unsupported type at /Polygon/id" {
		t.Fatalf("unexpected english message: %q", msg)
	}

	SetLanguage("ja")
	if msg := T("invalid_config", map[string]string{"path": "/A"}); !strings.HasPrefix(msg, "/A ") || strings.Contains(msg, "invalid") {
		t.Fatalf("expected japanese message, got %q", msg)
	}

	// reset to en
	SetLanguage("fr")
	if msg := T("duplicate_tag_value", nil); msg != "union members share a tag value at /" {
		t.Fatalf("unknown language should fall back to english, got %q", msg)
	}
}

type upper struct{}

func (upper) Message(code string, _ map[string]string) string { return strings.ToUpper(code) }

func TestTranslator_CustomAndUnknownCode(t *testing.T) {
	if msg := T("no_such_code", nil); msg != "no_such_code" {
		t.Fatalf("unknown code should echo, got %q", msg)
	}
	SetTranslator(upper{})
	if msg := T("invalid_config", nil); msg != "INVALID_CONFIG" {
		t.Fatalf("custom translator not used: %q", msg)
	}
	SetTranslator(nil)
	if msg := T("invalid_config", nil); msg != "invalid configuration at /" {
		t.Fatalf("nil should restore english, got %q", msg)
	}
}
