package language

import (
	"context"
	"sort"
	"strings"
)

// Hypothesis is one scored candidate translation for a single text segment.
// Position 0 of a translator's output is always the primary hypothesis.
type Hypothesis struct {
	Value string
	Score float64
}

// Translator produces translation hypotheses from one fixed language into
// another. Implementations may call out to a model and can fail.
type Translator interface {
	Hypotheses(ctx context.Context, text string, count int) ([]Hypothesis, error)
}

// Language is one entry in the registry: a code, a display name and the set of
// target languages it can translate into. Immutable after registry loading.
type Language struct {
	Code string
	Name string

	targets map[string]Translator
}

func New(code, name string) *Language {
	return &Language{
		Code:    code,
		Name:    name,
		targets: make(map[string]Translator),
	}
}

// AddTarget registers a translation capability into the target code. Intended
// for registry construction only, before the language is shared.
func (l *Language) AddTarget(code string, t Translator) {
	l.targets[code] = t
}

// TranslatorTo returns the capability into the target language, or nil when
// the pair is not available.
func (l *Language) TranslatorTo(target string) Translator {
	return l.targets[target]
}

// Targets returns the reachable target codes in sorted order.
func (l *Language) Targets() []string {
	codes := make([]string, 0, len(l.targets))
	for code := range l.targets {
		codes = append(codes, code)
	}
	sort.Strings(codes)
	return codes
}

// Registry is the read-only set of loaded languages.
type Registry struct {
	langs  []*Language
	byCode map[string]*Language
}

func NewRegistry(langs ...*Language) *Registry {
	r := &Registry{
		langs:  langs,
		byCode: make(map[string]*Language, len(langs)),
	}
	for _, l := range langs {
		r.byCode[l.Code] = l
	}
	return r
}

// All returns the loaded languages in registration order.
func (r *Registry) All() []*Language {
	return r.langs
}

func (r *Registry) Lookup(code string) (*Language, bool) {
	l, ok := r.byCode[code]
	return l, ok
}

// AutoCode is the request sentinel for source auto detection.
const AutoCode = "auto"

// Source is the tagged source-language variant of a request: either a
// concrete registry language or the auto-detect sentinel. Using an explicit
// tag keeps downstream code from duck-typing a synthetic "auto" language.
type Source struct {
	auto bool
	lang *Language
}

func Concrete(l *Language) Source {
	return Source{lang: l}
}

func AutoDetect() Source {
	return Source{auto: true}
}

func (s Source) IsAuto() bool {
	return s.auto
}

// Language returns the concrete language, nil for the auto-detect variant.
func (s Source) Language() *Language {
	return s.lang
}

func (s Source) Code() string {
	if s.auto {
		return AutoCode
	}
	return s.lang.Code
}

func (s Source) Name() string {
	if s.auto {
		return "Auto Detect"
	}
	return s.lang.Name
}

// modelAliases maps common regional ISO codes onto the codes translation
// models are published under.
var modelAliases = map[string]string{
	"zh-cn": "zh",
	"zh-tw": "zt",
	"pt-br": "pt",
	"nb":    "no",
}

// NormalizeCode maps a client-supplied language code onto the registry's
// model code: lowercased, with regional aliases collapsed.
func NormalizeCode(code string) string {
	code = strings.ToLower(strings.TrimSpace(code))
	if alias, ok := modelAliases[code]; ok {
		return alias
	}
	return code
}
