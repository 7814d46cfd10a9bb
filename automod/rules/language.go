package rules

import (
	"strings"
)

// Marks a recognizer backend as disabled for a rule.
const LanguageInvalid = "INVALID"

// Recognizer language identifiers for the two text recognition backends.
type LanguagePair struct {
	Neural    string
	Tesseract string
}

var DefaultLanguage = LanguagePair{Neural: "en", Tesseract: "eng"}

// Whether either backend is enabled.
func (lp LanguagePair) Usable() bool {
	return lp.Neural != LanguageInvalid || lp.Tesseract != LanguageInvalid
}

func (lp LanguagePair) String() string {
	return lp.Neural + "+" + lp.Tesseract
}

func setOf(vals ...string) map[string]bool {
	m := make(map[string]bool, len(vals))
	for _, v := range vals {
		m[v] = true
	}
	return m
}

var neuralLanguages = setOf(
	"ab", "abq", "ady", "af", "am", "amh", "ang", "ar", "as", "ava", "az", "be", "bg", "bh",
	"bho", "bn", "bs", "ch_pin", "ch_sim", "ch_tra", "che", "cs", "cy", "da", "dar", "de",
	"en", "es", "et", "fafr", "ga", "ge", "gom", "gre", "he", "hi", "hr", "hu", "id", "inh",
	"is", "it", "ja", "kas", "kbd", "kn", "ko", "ku", "la", "lbe", "lez", "lt", "lv", "mah",
	"mai", "mi", "ml", "mn", "mr", "ms", "mt", "my", "ne", "new", "nl", "no", "oc", "or",
	"pb", "pi", "pl", "ps", "pt", "ro", "rs_cyrillic", "rs_latin", "ru", "sck", "sh", "sk",
	"sl", "sq", "sv", "sw", "ta", "tab", "te", "th", "ti", "tjk", "tl", "tr", "ug", "uk",
	"ur", "uz", "vi",
)

var tesseractLanguages = setOf(
	"afr", "amh", "ara", "asm", "aze", "aze_cyrl", "bel", "ben", "bod", "bos", "bre", "bul",
	"cat", "ceb", "ces", "chi_sim", "chi_tra", "chr_cos", "cym", "dan", "deu", "dzo", "ell",
	"eng", "enm", "epo", "equ", "est", "eus", "fao", "fas", "fil", "fin", "fra", "frk",
	"frm", "fry", "gla", "gle", "glg", "grc", "guj", "hat", "heb", "hin", "hrv", "hun",
	"hye", "iku", "ind", "isl", "ita", "ita_old", "jav", "jpn", "kan", "kat", "kat_old",
	"kaz", "khm", "kir", "kmr", "kor", "kor_vert", "lao", "lat", "lav", "lit", "ltz", "mal",
	"mar", "mkd", "mlt", "mon", "mri", "msa", "mya", "nep", "nld", "nor", "oci", "ori",
	"osd", "pan", "pol", "por", "pus", "que", "ron", "rus", "san", "sin", "slk", "slv",
	"snd", "spa", "spa_old", "sqi", "srp", "srp_latn", "sun", "swa", "swe", "syr", "tam",
	"tat", "tel", "tgk", "tha", "tir", "ton", "tur", "uig", "ukr", "urd", "uzb", "uzb_cyrl",
	"vie", "yid", "yor",
)

// neural code -> tesseract code. The reverse direction is derived.
var neuralToTesseract = map[string]string{
	"ar":          "ara",
	"af":          "afr",
	"as":          "asm",
	"az":          "aze",
	"be":          "bel",
	"bg":          "bul",
	"bn":          "ben",
	"bs":          "bos",
	"cs":          "ces",
	"cy":          "cym",
	"da":          "dan",
	"de":          "deu",
	"en":          "eng",
	"es":          "spa",
	"et":          "est",
	"fa":          "fas",
	"ga":          "gle",
	"hi":          "hin",
	"hr":          "hrv",
	"id":          "ind",
	"is":          "isl",
	"it":          "ita",
	"ja":          "jpn",
	"kn":          "kan",
	"ko":          "kor",
	"la":          "lat",
	"lt":          "lit",
	"lv":          "lav",
	"mi":          "mri",
	"mn":          "mon",
	"mr":          "mar",
	"ms":          "msa",
	"mt":          "mlt",
	"ne":          "nep",
	"nl":          "nld",
	"no":          "nor",
	"oc":          "oci",
	"pl":          "pol",
	"pt":          "por",
	"ro":          "ron",
	"ru":          "rus",
	"rs_cyrillic": "srp",
	"rs_latin":    "srp_latn",
	"sk":          "slk",
	"sl":          "slv",
	"sq":          "sqi",
	"sv":          "swe",
	"sw":          "swa",
	"ta":          "tam",
	"te":          "tel",
	"th":          "tha",
	"tjk":         "tgk",
	"tr":          "tur",
	"ug":          "uig",
	"uk":          "ukr",
	"ur":          "urd",
	"uz":          "uzb",
	"vi":          "vie",
}

var tesseractToNeural = func() map[string]string {
	m := make(map[string]string, len(neuralToTesseract))
	for k, v := range neuralToTesseract {
		m[v] = k
	}
	return m
}()

// Resolves a user-supplied language code to per-backend identifiers.
//
// The code may come from either vocabulary. A backend with no mapping for the code is marked LanguageInvalid.
func ResolveLanguage(code string) (LanguagePair, error) {
	code = strings.TrimSpace(code)
	if code == "" {
		return DefaultLanguage, nil
	}
	if !neuralLanguages[code] && !tesseractLanguages[code] {
		return LanguagePair{}, &UnsupportedLanguageError{Code: code}
	}
	lp := LanguagePair{Neural: LanguageInvalid, Tesseract: LanguageInvalid}
	if neuralLanguages[code] {
		lp.Neural = code
	} else if n, ok := tesseractToNeural[code]; ok && neuralLanguages[n] {
		lp.Neural = n
	}
	if tesseractLanguages[code] {
		lp.Tesseract = code
	} else if t, ok := neuralToTesseract[code]; ok && tesseractLanguages[t] {
		lp.Tesseract = t
	}
	return lp, nil
}
