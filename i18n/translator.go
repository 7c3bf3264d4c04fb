// Package i18n localizes the headline of typeschema errors and diagnostics
// for command-line output.
package i18n

import "strings"

// Translator returns a localized headline for an error or warning code.
// data may carry "path" (the type-graph location) for interpolation.
type Translator interface {
	Message(code string, data map[string]string) string
}

var dictionaries = map[string]map[string]string{
	"en": {
		"unsupported_type":    "unsupported type at {path}",
		"invalid_config":      "invalid configuration at {path}",
		"ambiguous_tag_field": "union members disagree on the tag field at {path}",
		"duplicate_tag_value": "union members share a tag value at {path}",
	},
	"ja": {
		"unsupported_type":    "{path} の型はスキーマに変換できません",
		"invalid_config":      "{path} の設定が不正です",
		"ambiguous_tag_field": "{path} のユニオンでタグフィールドが一致しません",
		"duplicate_tag_value": "{path} のユニオンでタグ値が重複しています",
	},
}

// dictTranslator is the built-in dictionary-based Translator.
type dictTranslator struct{ lang string }

func (t dictTranslator) Message(code string, data map[string]string) string {
	msg, ok := dictionaries[t.lang][code]
	if !ok {
		return code
	}
	path := data["path"]
	if path == "" {
		path = "/"
	}
	return strings.ReplaceAll(msg, "{path}", path)
}

var currentTranslator Translator = dictTranslator{lang: "en"}

// SetLanguage switches the built-in Translator language ("en"/"ja").
// Unknown languages fall back to English.
func SetLanguage(lang string) {
	if _, ok := dictionaries[lang]; !ok {
		lang = "en"
	}
	currentTranslator = dictTranslator{lang: lang}
}

// SetTranslator replaces the Translator implementation. nil restores English.
func SetTranslator(tr Translator) {
	if tr == nil {
		currentTranslator = dictTranslator{lang: "en"}
		return
	}
	currentTranslator = tr
}

// T fetches a message for the given code using the current Translator.
func T(code string, data map[string]string) string { return currentTranslator.Message(code, data) }
