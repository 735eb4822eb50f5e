package state

import (
	"net/url"
	"strconv"
	"strings"

	"gazette/internal/logging"
)

// URL query parameter names on the list page.
const (
	paramQuery = "q"
	paramLang  = "lang"
	paramTag   = "tag"
	paramPage  = "page"
)

// Persistent storage keys. Search text and page are page-local, not
// session-local, so they are never written here.
const (
	storageKeyLang = "gazette.lang"
	storageKeyTag  = "gazette.tag"
)

// Storage is the persistent per-browser store. The zero implementation
// (a nil Storage) degrades all persistence to a no-op.
type Storage interface {
	Get(key string) (string, bool)
	Set(key, value string)
	Delete(key string)
}

// DecodeQuery reads filter fields from URL query values. Absent keys are
// omitted (not defaulted) so precedence can apply. Malformed values are
// dropped: a non-numeric or non-positive page and an unknown language code
// both behave as if the parameter were absent.
func DecodeQuery(values url.Values) Partial {
	var p Partial

	if values.Has(paramQuery) {
		q := values.Get(paramQuery)
		p.Query = &q
	}
	if values.Has(paramLang) {
		if lang, ok := ParseLanguage(values.Get(paramLang)); ok {
			p.Lang = &lang
		} else {
			logging.Debug("ignoring unknown language in URL", "lang", values.Get(paramLang))
		}
	}
	if values.Has(paramTag) {
		tag := strings.ToLower(strings.TrimSpace(values.Get(paramTag)))
		p.Tag = &tag
	}
	if values.Has(paramPage) {
		if n, err := strconv.Atoi(values.Get(paramPage)); err == nil && n >= 1 {
			p.Page = &n
		} else {
			logging.Debug("ignoring malformed page in URL", "page", values.Get(paramPage))
		}
	}

	return p
}

// EncodeQuery writes a state to URL query values. A parameter equal to its
// default is omitted entirely so shared URLs stay minimal; page 1 is always
// omitted.
func EncodeQuery(s FilterState) url.Values {
	values := url.Values{}
	if s.Query != "" {
		values.Set(paramQuery, s.Query)
	}
	if s.Lang != LangAll {
		values.Set(paramLang, string(s.Lang))
	}
	if s.Tag != "" {
		values.Set(paramTag, s.Tag)
	}
	if s.Page > 1 {
		values.Set(paramPage, strconv.Itoa(s.Page))
	}
	return values
}

// DecodeStorage reads the persisted language and tag. Absent keys are
// omitted from the Partial.
func DecodeStorage(st Storage) Partial {
	var p Partial
	if st == nil {
		return p
	}

	if raw, ok := st.Get(storageKeyLang); ok {
		if lang, parsed := ParseLanguage(raw); parsed {
			p.Lang = &lang
		}
	}
	if tag, ok := st.Get(storageKeyTag); ok {
		p.Tag = &tag
	}
	return p
}

// EncodeStorage persists language and tag. Clearing a filter removes its key
// rather than writing a sentinel value.
func EncodeStorage(st Storage, s FilterState) {
	if st == nil {
		return
	}

	if s.Lang != LangAll {
		st.Set(storageKeyLang, string(s.Lang))
	} else {
		st.Delete(storageKeyLang)
	}
	if s.Tag != "" {
		st.Set(storageKeyTag, s.Tag)
	} else {
		st.Delete(storageKeyTag)
	}
}

// DecodeReferrer extracts language and tag from the query string of a
// same-origin referrer URL. A detail page has no URL state of its own, so
// this is how filters follow the reader across a list → detail transition.
// A cross-origin referrer or an unparseable one yields an empty Partial.
func DecodeReferrer(referrer, origin string) Partial {
	if referrer == "" {
		return Partial{}
	}

	ref, err := url.Parse(referrer)
	if err != nil {
		logging.Debug("ignoring unparseable referrer", "referrer", referrer)
		return Partial{}
	}
	org, err := url.Parse(origin)
	if err != nil || ref.Scheme != org.Scheme || ref.Host != org.Host {
		return Partial{}
	}

	full := DecodeQuery(ref.Query())
	// Only the session-local fields cross pages.
	return Partial{Lang: full.Lang, Tag: full.Tag}
}

// ResolveListPage computes the initial state on a list page.
// Precedence: URL > stored value > default.
func ResolveListPage(query url.Values, st Storage) FilterState {
	return Resolve(DecodeQuery(query), DecodeStorage(st))
}

// ResolveDetailPage computes the initial state on a detail page.
// Precedence: same-origin referrer > stored value > default.
func ResolveDetailPage(referrer, origin string, st Storage) FilterState {
	return Resolve(DecodeReferrer(referrer, origin), DecodeStorage(st))
}
