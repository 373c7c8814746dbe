package core

import (
	"strings"
	"unicode"
)

var diacriticsReplacer = strings.NewReplacer(
	"à", "a", "á", "a", "â", "a", "ä", "a", "ã", "a", "å", "a",
	"è", "e", "é", "e", "ê", "e", "ë", "e",
	"ì", "i", "í", "i", "î", "i", "ï", "i",
	"ò", "o", "ó", "o", "ô", "o", "ö", "o", "õ", "o",
	"ù", "u", "ú", "u", "û", "u", "ü", "u",
	"ç", "c", "ñ", "n",
	"·", "",
)

func stripDiacritics(val string) string {
	return diacriticsReplacer.Replace(val)
}

// NormalizeNameKey genera una clau per comparar noms: minúscules, sense accents,
// sense puntuació i amb els espais compactats.
func NormalizeNameKey(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return ""
	}
	s = strings.ToLower(s)
	s = stripDiacritics(s)
	s = strings.ReplaceAll(s, "’", "")
	s = strings.ReplaceAll(s, "'", "")
	s = strings.ReplaceAll(s, "-", " ")
	s = strings.ReplaceAll(s, ".", " ")
	s = strings.ReplaceAll(s, ",", " ")
	return strings.Join(strings.Fields(s), " ")
}

// sanitizeNameLiteral neteja un nom importat; retorna "" si no sembla un nom.
func sanitizeNameLiteral(value string) string {
	value = strings.TrimSpace(value)
	value = strings.Trim(value, "\"'“”«»/")
	value = strings.TrimSpace(value)
	if value == "" {
		return ""
	}
	if strings.ContainsAny(value, "0123456789()[]{}") {
		return ""
	}
	for _, r := range value {
		if unicode.IsLetter(r) || r == ' ' || r == '-' || r == '\'' || r == '’' || r == '·' || r == '.' {
			continue
		}
		return ""
	}
	return strings.Join(strings.Fields(value), " ")
}
