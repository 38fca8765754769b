package apierr

// Message keys for strings that are not tied to a single error.
const (
	MsgPartialTranslation       = "partial_translation"
	MsgPartialTranslationSuffix = "partial_translation_suffix"
	MsgEmptyTranscript          = "empty_transcript"
	MsgStatusAnalysing          = "status_analysing"
	MsgStatusListening          = "status_listening"
	MsgStatusTranslating        = "status_translating"
	MsgStatusExpanding          = "status_expanding"
)

type catalog struct {
	generic map[string]string // keyed by op
	kinds   map[Kind]string
	opKinds map[string]map[Kind]string
	misc    map[string]string
}

var catalogs = map[string]catalog{
	"en": {
		generic: map[string]string{
			OpTranscribe: "An error occurred during transcription. Please try again.",
			OpTranslate:  "An error occurred during translation. Please try again.",
			OpExpand:     "An error occurred while creating the lesson. Please try again.",
			OpCapture:    "Unable to access the microphone. Check the capture permissions.",
			OpRender:     "Unable to generate the PDF. Please try again.",
			OpOpen:       "Unable to open the document. Check that a viewer is available.",
		},
		kinds: map[Kind]string{
			Quota:      "API request limit reached. Try again later.",
			Transport:  "Network error. Check your connection and try again.",
			Credential: "Invalid API key. Check the configuration.",
			Media:      "There was a problem with the audio file. Make sure it is a supported format and not corrupted.",
			Format:     "The AI returned an unexpected format. The content could not be processed for the PDF.",
			Permission: "Unable to access the microphone. Check the capture permissions.",
			Display:    "Unable to open the document. Check that a viewer is available.",
		},
		opKinds: map[string]map[Kind]string{
			OpExpand: {
				Quota:     "API request limit reached while processing the content. Try again later.",
				Transport: "Network error while processing the content. Check your connection and try again.",
			},
		},
		misc: map[string]string{
			MsgPartialTranslation:       "A partial error occurred during translation.",
			MsgPartialTranslationSuffix: " (partial translation error)",
			MsgEmptyTranscript:          "The transcript cannot be empty.",
			MsgStatusAnalysing:          "Analysing the audio file...",
			MsgStatusListening:          "Listening carefully...",
			MsgStatusTranslating:        "Consulting the dictionary...",
			MsgStatusExpanding:          "Preparing your lesson...",
		},
	},
	"it": {
		generic: map[string]string{
			OpTranscribe: "Si è verificato un errore durante la trascrizione. Riprova.",
			OpTranslate:  "Si è verificato un errore durante la traduzione. Riprova.",
			OpExpand:     "Si è verificato un errore durante la creazione della lezione. Riprova.",
			OpCapture:    "Impossibile accedere al microfono. Controlla le autorizzazioni.",
			OpRender:     "Impossibile generare il PDF. Riprova.",
			OpOpen:       "Impossibile aprire il documento. Verifica che sia disponibile un visualizzatore.",
		},
		kinds: map[Kind]string{
			Quota:      "Limite di richieste API raggiunto. Riprova più tardi.",
			Transport:  "Errore di rete. Controlla la tua connessione e riprova.",
			Credential: "Chiave API non valida. Controlla la configurazione.",
			Media:      "Si è verificato un problema con il file audio. Assicurati che sia un formato supportato e non sia corrotto.",
			Format:     "L'AI ha restituito un formato inaspettato. Non è stato possibile elaborare il contenuto per il PDF.",
			Permission: "Impossibile accedere al microfono. Controlla le autorizzazioni.",
			Display:    "Impossibile aprire il documento. Verifica che sia disponibile un visualizzatore.",
		},
		opKinds: map[string]map[Kind]string{
			OpExpand: {
				Quota:     "Limite di richieste API raggiunto per l'elaborazione del contenuto. Riprova più tardi.",
				Transport: "Errore di rete durante l'elaborazione. Controlla la tua connessione e riprova.",
			},
		},
		misc: map[string]string{
			MsgPartialTranslation:       "Si è verificato un errore parziale durante la traduzione.",
			MsgPartialTranslationSuffix: " (Errore parziale trad.)",
			MsgEmptyTranscript:          "Il campo della trascrizione non può essere vuoto.",
			MsgStatusAnalysing:          "Analisi del file audio in corso...",
			MsgStatusListening:          "Ascolto attento in corso...",
			MsgStatusTranslating:        "Consultazione del dizionario...",
			MsgStatusExpanding:          "Preparazione della lezione in corso...",
		},
	},
}

func catalogFor(lang string) catalog {
	if c, ok := catalogs[lang]; ok {
		return c
	}
	return catalogs["en"]
}

// Message returns the localized user-facing text for err.
func Message(err error, lang string) string {
	if err == nil {
		return ""
	}
	c := catalogFor(lang)
	kind := KindOf(err)
	op := OpOf(err)

	if byKind, ok := c.opKinds[op]; ok {
		if msg, ok := byKind[kind]; ok {
			return msg
		}
	}
	if msg, ok := c.kinds[kind]; ok {
		return msg
	}
	if msg, ok := c.generic[op]; ok {
		return msg
	}
	return c.generic[OpTranscribe]
}

// Text returns a localized string that is not tied to an error.
func Text(key, lang string) string {
	if msg, ok := catalogFor(lang).misc[key]; ok {
		return msg
	}
	return catalogs["en"].misc[key]
}

// Languages lists the UI languages with a message catalog.
func Languages() []string {
	return []string{"en", "it"}
}
