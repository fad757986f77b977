package namespace

import (
	"fmt"
	"strings"

	"github.com/kailas-cloud/hybridex/internal/domain"
)

// Language is a lexical tokenization/stemming profile.
// The zero value is the language-neutral profile (no stemming).
type Language string

// Neutral is the fallback profile used when no language is given.
const Neutral Language = ""

// neutralAliases all resolve to Neutral.
var neutralAliases = map[string]struct{}{
	"":        {},
	"simple":  {},
	"none":    {},
	"neutral": {},
}

// profiles lists the stemmer languages supported by the search backend, keyed by
// both full name and ISO 639-1 code.
var profiles = map[string]Language{
	"arabic": "arabic", "ar": "arabic",
	"armenian": "armenian", "hy": "armenian",
	"basque": "basque", "eu": "basque",
	"catalan": "catalan", "ca": "catalan",
	"chinese": "chinese", "zh": "chinese",
	"danish": "danish", "da": "danish",
	"dutch": "dutch", "nl": "dutch",
	"english": "english", "en": "english",
	"finnish": "finnish", "fi": "finnish",
	"french": "french", "fr": "french",
	"german": "german", "de": "german",
	"greek": "greek", "el": "greek",
	"hindi": "hindi", "hi": "hindi",
	"hungarian": "hungarian", "hu": "hungarian",
	"indonesian": "indonesian", "id": "indonesian",
	"irish": "irish", "ga": "irish",
	"italian": "italian", "it": "italian",
	"lithuanian": "lithuanian", "lt": "lithuanian",
	"nepali": "nepali", "ne": "nepali",
	"norwegian": "norwegian", "no": "norwegian",
	"portuguese": "portuguese", "pt": "portuguese",
	"romanian": "romanian", "ro": "romanian",
	"russian": "russian", "ru": "russian",
	"serbian": "serbian", "sr": "serbian",
	"spanish": "spanish", "es": "spanish",
	"swedish": "swedish", "sv": "swedish",
	"tamil": "tamil", "ta": "tamil",
	"turkish": "turkish", "tr": "turkish",
	"yiddish": "yiddish", "yi": "yiddish",
}

// ParseLanguage resolves a language name or ISO code to a profile.
func ParseLanguage(s string) (Language, error) {
	key := strings.ToLower(strings.TrimSpace(s))
	if _, ok := neutralAliases[key]; ok {
		return Neutral, nil
	}
	if l, ok := profiles[key]; ok {
		return l, nil
	}
	return Neutral, fmt.Errorf("unsupported language %q: %w", s, domain.ErrInvalidNamespace)
}

// IsNeutral reports whether l is the language-neutral profile.
func (l Language) IsNeutral() bool { return l == Neutral }

func (l Language) String() string {
	if l.IsNeutral() {
		return "simple"
	}
	return string(l)
}
