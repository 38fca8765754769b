package language

import "strings"

// Language is a language offered for transcription, translation and lessons
type Language struct {
	Code       string // ISO 639-1 code (e.g., "it", "en")
	Name       string // English name (e.g., "Italian")
	NativeName string // Native name (e.g., "Italiano"), used in prompts
}

// languages is the master list shown in the selectors
var languages = []Language{
	{Code: "ar", Name: "Arabic", NativeName: "العربية"},
	{Code: "bg", Name: "Bulgarian", NativeName: "Български"},
	{Code: "ca", Name: "Catalan", NativeName: "Català"},
	{Code: "zh", Name: "Chinese", NativeName: "中文"},
	{Code: "hr", Name: "Croatian", NativeName: "Hrvatski"},
	{Code: "cs", Name: "Czech", NativeName: "Čeština"},
	{Code: "da", Name: "Danish", NativeName: "Dansk"},
	{Code: "nl", Name: "Dutch", NativeName: "Nederlands"},
	{Code: "en", Name: "English", NativeName: "English"},
	{Code: "fi", Name: "Finnish", NativeName: "Suomi"},
	{Code: "fr", Name: "French", NativeName: "Français"},
	{Code: "de", Name: "German", NativeName: "Deutsch"},
	{Code: "el", Name: "Greek", NativeName: "Ελληνικά"},
	{Code: "he", Name: "Hebrew", NativeName: "עברית"},
	{Code: "hi", Name: "Hindi", NativeName: "हिन्दी"},
	{Code: "hu", Name: "Hungarian", NativeName: "Magyar"},
	{Code: "id", Name: "Indonesian", NativeName: "Bahasa Indonesia"},
	{Code: "it", Name: "Italian", NativeName: "Italiano"},
	{Code: "ja", Name: "Japanese", NativeName: "日本語"},
	{Code: "ko", Name: "Korean", NativeName: "한국어"},
	{Code: "no", Name: "Norwegian", NativeName: "Norsk"},
	{Code: "fa", Name: "Persian", NativeName: "فارسی"},
	{Code: "pl", Name: "Polish", NativeName: "Polski"},
	{Code: "pt", Name: "Portuguese", NativeName: "Português"},
	{Code: "ro", Name: "Romanian", NativeName: "Română"},
	{Code: "ru", Name: "Russian", NativeName: "Русский"},
	{Code: "sr", Name: "Serbian", NativeName: "Српски"},
	{Code: "sk", Name: "Slovak", NativeName: "Slovenčina"},
	{Code: "sl", Name: "Slovenian", NativeName: "Slovenščina"},
	{Code: "es", Name: "Spanish", NativeName: "Español"},
	{Code: "sv", Name: "Swedish", NativeName: "Svenska"},
	{Code: "th", Name: "Thai", NativeName: "ไทย"},
	{Code: "tr", Name: "Turkish", NativeName: "Türkçe"},
	{Code: "uk", Name: "Ukrainian", NativeName: "Українська"},
	{Code: "vi", Name: "Vietnamese", NativeName: "Tiếng Việt"},
}

// index maps lowercase codes and names to their Language
var index map[string]Language

func init() {
	index = make(map[string]Language, len(languages)*3)
	for _, lang := range languages {
		index[lang.Code] = lang
		index[strings.ToLower(lang.Name)] = lang
		index[strings.ToLower(lang.NativeName)] = lang
	}
}

// FromCode returns the Language for the given code.
func FromCode(code string) (Language, bool) {
	lang, ok := index[strings.ToLower(code)]
	if !ok || lang.Code != strings.ToLower(code) {
		return Language{}, false
	}
	return lang, true
}

// Resolve accepts a code, an English name or a native name.
func Resolve(s string) (Language, bool) {
	lang, ok := index[strings.ToLower(strings.TrimSpace(s))]
	return lang, ok
}

// PromptName returns the name sent to the models for s. Unknown values are
// passed through so free-form languages still work.
func PromptName(s string) string {
	if lang, ok := Resolve(s); ok {
		return lang.NativeName
	}
	return strings.TrimSpace(s)
}

// List returns all supported languages
func List() []Language {
	result := make([]Language, len(languages))
	copy(result, languages)
	return result
}

// Codes returns all language codes
func Codes() []string {
	codes := make([]string, len(languages))
	for i, lang := range languages {
		codes[i] = lang.Code
	}
	return codes
}

// IsValidCode returns true if the code is recognized
func IsValidCode(code string) bool {
	_, ok := FromCode(code)
	return ok
}
