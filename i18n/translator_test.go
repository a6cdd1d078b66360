package i18n

import "testing"

func TestTranslator_DefaultAndJapanese(t *testing.T) {
	if msg := T("required", nil); msg != "required field missing" {
		t.Fatalf("unexpected default message: %q", msg)
	}

	SetLanguage("ja")
	if msg := T("required", nil); msg == "required field missing" {
		t.Fatalf("expected japanese message, got %q", msg)
	}

	SetLanguage("en")
}

func TestTranslator_Placeholders(t *testing.T) {
	got := T("too_big", map[string]string{"expected": "<= 9", "actual": "12"})
	if got != "must be <= 9, got 12" {
		t.Fatalf("unexpected message: %q", got)
	}
	if got := T("unknown_key", map[string]string{"key": "bogus"}); got != "unknown field bogus" {
		t.Fatalf("unexpected message: %q", got)
	}
}

func TestTranslator_UnknownCodeFallsBackToCode(t *testing.T) {
	if got := T("no_such_code", nil); got != "no_such_code" {
		t.Fatalf("unexpected message: %q", got)
	}
}

type fixed string

func (f fixed) Message(string, map[string]string) string { return string(f) }

func TestSetTranslator(t *testing.T) {
	SetTranslator(fixed("x"))
	defer SetTranslator(nil)
	if got := T("required", nil); got != "x" {
		t.Fatalf("custom translator not used: %q", got)
	}
}
