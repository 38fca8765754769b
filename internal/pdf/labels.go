package pdf

import "github.com/leonardotrapani/memoscribe/internal/language"

// Labels are the fixed captions printed above the introduction and the
// conclusion.
type Labels struct {
	Introduction string
	Conclusion   string
}

var labels = map[string]Labels{
	"en": {"Introduction", "Conclusion"},
	"it": {"Introduzione", "Conclusione"},
	"es": {"Introducción", "Conclusión"},
	"fr": {"Introduction", "Conclusion"},
	"de": {"Einleitung", "Fazit"},
	"pt": {"Introdução", "Conclusão"},
}

// LabelsFor returns the captions for a language code or name, falling back
// to English.
func LabelsFor(lang string) Labels {
	if l, ok := language.Resolve(lang); ok {
		if lbl, ok := labels[l.Code]; ok {
			return lbl
		}
	}
	return labels["en"]
}
