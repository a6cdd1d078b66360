package i18n

import (
	"strings"
	"sync"
)

// Translator retrieves localized messages for Issue codes.
// data provides optional values substituted into {name} placeholders (for
// example "expected", "actual" or "key").
type Translator interface {
	Message(code string, data map[string]string) string
}

var catalogs = map[string]map[string]string{
	"en": {
		"invalid_type":          "expected {expected}, got {actual}",
		"required":              "required field missing",
		"unknown_key":           "unknown field {key}",
		"duplicate_key":         "duplicate key",
		"too_small":             "must be {expected}, got {actual}",
		"too_big":               "must be {expected}, got {actual}",
		"too_short":             "must have {expected}, got {actual}",
		"too_long":              "must have {expected}, got {actual}",
		"length_mismatch":       "length {actual} does not match {expected}",
		"pattern":               "must match {expected}, got {actual}",
		"invalid_enum":          "must be one of {expected}, got {actual}",
		"invalid_format":        "expected {expected}, got {actual}",
		"inconsistent":          "{detail}",
		"discriminator_missing": "missing discriminator {key}",
		"discriminator_unknown": "unknown variant {actual}; expected one of {expected}",
		"parse_error":           "parse error",
		"truncated":             "truncated",
	},
	"ja": {
		"invalid_type":          "型が不正です ({expected} が必要ですが {actual} でした)",
		"required":              "必須フィールドが不足しています",
		"unknown_key":           "未知のフィールドです: {key}",
		"duplicate_key":         "キーが重複しています",
		"too_small":             "{expected} である必要があります ({actual})",
		"too_big":               "{expected} である必要があります ({actual})",
		"too_short":             "短すぎます ({expected} が必要ですが {actual} でした)",
		"too_long":              "長すぎます ({expected} が必要ですが {actual} でした)",
		"length_mismatch":       "長さ {actual} が {expected} と一致しません",
		"pattern":               "{expected} に一致しません ({actual})",
		"invalid_enum":          "{expected} のいずれかである必要があります ({actual})",
		"invalid_format":        "形式が不正です ({expected} が必要ですが {actual} でした)",
		"inconsistent":          "{detail}",
		"discriminator_missing": "識別子 {key} がありません",
		"discriminator_unknown": "未知のバリアント {actual} です ({expected} のいずれか)",
		"parse_error":           "解析エラー",
		"truncated":             "打ち切られました",
	},
}

// dictTranslator is the built-in dictionary-based Translator.
type dictTranslator struct{ lang string }

func (t dictTranslator) Message(code string, data map[string]string) string {
	tmpl, ok := catalogs[t.lang][code]
	if !ok {
		tmpl, ok = catalogs["en"][code]
	}
	if !ok {
		return code
	}
	return expand(tmpl, data)
}

// expand substitutes {name} placeholders; missing data expands to "".
func expand(tmpl string, data map[string]string) string {
	if !strings.Contains(tmpl, "{") {
		return tmpl
	}
	b := &strings.Builder{}
	for {
		i := strings.IndexByte(tmpl, '{')
		if i < 0 {
			b.WriteString(tmpl)
			break
		}
		j := strings.IndexByte(tmpl[i:], '}')
		if j < 0 {
			b.WriteString(tmpl)
			break
		}
		b.WriteString(tmpl[:i])
		b.WriteString(data[tmpl[i+1:i+j]])
		tmpl = tmpl[i+j+1:]
	}
	return b.String()
}

var (
	mu                sync.RWMutex
	currentTranslator Translator = dictTranslator{lang: "en"}
)

// SetLanguage switches the built-in Translator language ("en"/"ja").
func SetLanguage(lang string) {
	if _, ok := catalogs[lang]; !ok {
		lang = "en"
	}
	mu.Lock()
	currentTranslator = dictTranslator{lang: lang}
	mu.Unlock()
}

// SetTranslator replaces the Translator implementation (not limited to the
// dictionary version). nil restores English.
func SetTranslator(tr Translator) {
	if tr == nil {
		tr = dictTranslator{lang: "en"}
	}
	mu.Lock()
	currentTranslator = tr
	mu.Unlock()
}

// T fetches a message for the given code using the current Translator.
func T(code string, data map[string]string) string {
	mu.RLock()
	tr := currentTranslator
	mu.RUnlock()
	return tr.Message(code, data)
}
