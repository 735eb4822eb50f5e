// Package state defines the canonical filter state for the reader runtime
// and the codecs that move it between the URL query string, persistent
// storage, and the referrer of a detail page.
//
// FilterState is always a fully-defined value. Partial carries the fields a
// single source actually provided, so precedence between sources can be
// applied without defaults clobbering real values.
package state

// Language is the closed set of publication languages plus the "all" filter.
type Language string

const (
	LangAll        Language = "all"
	LangEnglish    Language = "en"
	LangPortuguese Language = "pt"
	LangSpanish    Language = "es"
)

// languageSynonyms folds regional variants onto their canonical code.
var languageSynonyms = map[string]Language{
	"en":     LangEnglish,
	"en-us":  LangEnglish,
	"en-gb":  LangEnglish,
	"pt":     LangPortuguese,
	"pt-br":  LangPortuguese,
	"es":     LangSpanish,
	"es-419": LangSpanish,
	"all":    LangAll,
}

// ParseLanguage maps a raw code to a Language, folding regional variants.
// Unknown codes report ok=false; callers fall back to a safe default.
func ParseLanguage(code string) (Language, bool) {
	lang, ok := languageSynonyms[normalizeCode(code)]
	return lang, ok
}

// FoldLanguage is ParseLanguage with an unconditional LangAll fallback.
func FoldLanguage(code string) Language {
	if lang, ok := ParseLanguage(code); ok {
		return lang
	}
	return LangAll
}

func normalizeCode(code string) string {
	b := make([]byte, 0, len(code))
	for i := 0; i < len(code); i++ {
		c := code[i]
		if c >= 'A' && c <= 'Z' {
			c += 'a' - 'A'
		}
		if c == ' ' || c == '\t' {
			continue
		}
		b = append(b, c)
	}
	return string(b)
}

// FilterState is the single canonical value the reader runtime revolves
// around. It is always fully defined; use Default for the initial value.
type FilterState struct {
	Query string   // search text, trimmed/case-folded at comparison time
	Lang  Language // LangAll means no language filter
	Tag   string   // empty means no tag filter; at most one tag is active
	Page  int      // 1-based
}

// Default returns the fully-defined default state.
func Default() FilterState {
	return FilterState{Query: "", Lang: LangAll, Tag: "", Page: 1}
}

// IsDefault reports whether every field equals its default.
func (s FilterState) IsDefault() bool {
	return s == Default()
}

// Partial is a FilterState where each field may be absent. Absent fields are
// distinct from default-valued fields so source precedence can apply.
type Partial struct {
	Query *string
	Lang  *Language
	Tag   *string
	Page  *int
}

// IsEmpty reports whether no field was provided.
func (p Partial) IsEmpty() bool {
	return p.Query == nil && p.Lang == nil && p.Tag == nil && p.Page == nil
}

// Resolve merges partials in precedence order (earlier wins) and fills the
// remaining fields from the defaults. The result is always fully defined.
func Resolve(partials ...Partial) FilterState {
	s := Default()
	for i := len(partials) - 1; i >= 0; i-- {
		p := partials[i]
		if p.Query != nil {
			s.Query = *p.Query
		}
		if p.Lang != nil {
			s.Lang = *p.Lang
		}
		if p.Tag != nil {
			s.Tag = *p.Tag
		}
		if p.Page != nil {
			s.Page = *p.Page
		}
	}
	if s.Page < 1 {
		s.Page = 1
	}
	return s
}
