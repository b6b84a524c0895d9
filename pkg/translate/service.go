package translate

import (
	"context"
	"errors"
	"unicode/utf8"

	"github.com/openlocale/lingogate/pkg/classify"
	"github.com/openlocale/lingogate/pkg/format"
	"github.com/openlocale/lingogate/pkg/language"
)

const (
	FormatText = "text"
	FormatHTML = "html"
)

var errEmptyHypotheses = errors.New("engine returned no hypotheses")

// Request is one translate call after transport decoding. Text holds the
// ordered source segments; Scalar records whether the caller sent `q` as a
// single string, which changes the admission cost model and the shape of the
// detection metadata.
type Request struct {
	Text         []string
	Scalar       bool
	Source       string // normalized language code or "auto"
	Targets      []string
	Format       string // "text" or "html", empty means "text"
	Alternatives int
	APIKey       string
}

// Cost is the admission charge for this request: the character count for a
// single-string request, the segment count for a batch, never less than 1.
func (r Request) Cost() int64 {
	var cost int
	if r.Scalar && len(r.Text) == 1 {
		cost = utf8.RuneCountInString(r.Text[0])
	} else {
		cost = len(r.Text)
	}
	if cost < 1 {
		cost = 1
	}
	return int64(cost)
}

// TotalChars is the character volume checked against the per-principal
// character ceiling.
func (r Request) TotalChars() int64 {
	var total int64
	for _, t := range r.Text {
		total += int64(utf8.RuneCountInString(t))
	}
	return total
}

// DetectedLanguage is the source-language guess attached to a response.
// Confidence is a percentage.
type DetectedLanguage struct {
	Confidence float64 `json:"confidence"`
	Language   string  `json:"language"`
}

// Result is one assembled batch: per-target output sequences in segment
// order, the per-(target, segment) alternative lists, and the detection
// metadata. Either the whole batch is present or Translate returned an error.
type Result struct {
	TranslatedText map[string][]string
	Alternatives   map[string][][]string
	Detected       DetectedLanguage

	request Request
}

// Service is the request-handling core: it validates parameters, decides
// whether the payload needs the engine at all, fans the batch out across
// targets and segments, and assembles the response. Stateless beyond the
// read-only registry; safe for concurrent use.
type Service struct {
	registry *language.Registry
	detector func([]string) (string, float64)
}

type Option func(*Service)

// WithDetector installs a source-language detector used when a request asks
// for "auto". Without one, auto requests are rejected.
func WithDetector(detect func([]string) (string, float64)) Option {
	return func(s *Service) {
		s.detector = detect
	}
}

func NewService(registry *language.Registry, opts ...Option) *Service {
	s := &Service{registry: registry}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Translate runs one batch end to end. Failures discard all partial output:
// the caller either gets the full batch or an *Error.
func (s *Service) Translate(ctx context.Context, req Request) (*Result, error) {
	if err := validate(req); err != nil {
		return nil, err
	}
	if req.Alternatives < 0 {
		req.Alternatives = 0
	}

	targets, err := s.resolveTargets(req.Targets)
	if err != nil {
		return nil, err
	}

	translatable := classify.IsTranslatable(req.Text)
	if !translatable {
		// Nothing linguistic to translate: echo the input for every target
		// without touching the engine.
		return passThrough(req, targets), nil
	}

	src, detected, err := s.resolveSource(req)
	if err != nil {
		return nil, err
	}

	result := &Result{
		TranslatedText: make(map[string][]string, len(targets)),
		Alternatives:   make(map[string][][]string, len(targets)),
		Detected:       detected,
		request:        req,
	}

	for _, tgt := range targets {
		translator := src.TranslatorTo(tgt.Code)
		if translator == nil {
			return nil, badRequestf("%s (%s) is not available as a target language from %s (%s)",
				tgt.Name, tgt.Code, src.Name, src.Code)
		}

		outputs := make([]string, 0, len(req.Text))
		alternatives := make([][]string, 0, len(req.Text))
		for _, text := range req.Text {
			translated, alts, err := s.translateSegment(ctx, translator, text, req)
			if err != nil {
				return nil, err
			}
			outputs = append(outputs, translated)
			alternatives = append(alternatives, alts)
		}
		result.TranslatedText[tgt.Code] = outputs
		result.Alternatives[tgt.Code] = alternatives
	}

	return result, nil
}

func (s *Service) translateSegment(ctx context.Context, translator language.Translator, text string, req Request) (string, []string, error) {
	if req.Format == FormatHTML {
		translated, err := format.TranslateHTML(ctx, text, func(ctx context.Context, chunk string) (string, error) {
			hypotheses, err := translator.Hypotheses(ctx, chunk, 1)
			if err != nil {
				return "", err
			}
			if len(hypotheses) == 0 {
				return "", errEmptyHypotheses
			}
			return language.Reformat(chunk, hypotheses[0].Value), nil
		})
		if err != nil {
			return "", nil, engineFailure(err, text)
		}
		// HTML mode has no meaningful whole-segment alternatives.
		return translated, []string{}, nil
	}

	hypotheses, err := translator.Hypotheses(ctx, text, req.Alternatives+1)
	if err != nil {
		return "", nil, engineFailure(err, text)
	}
	if len(hypotheses) == 0 {
		return "", nil, engineFailure(errEmptyHypotheses, text)
	}

	translated := language.Reformat(text, hypotheses[0].Value)
	alternatives := make([]string, 0, len(hypotheses)-1)
	for _, h := range hypotheses[1:] {
		alternatives = append(alternatives, language.Reformat(text, h.Value))
	}
	return translated, filterUnique(alternatives, translated), nil
}

func validate(req Request) *Error {
	if len(req.Text) == 0 {
		return badRequestf("invalid request: missing `q` parameter")
	}
	if req.Source == "" {
		return badRequestf("invalid request: missing `source` parameter")
	}
	if len(req.Targets) == 0 {
		return badRequestf("invalid request: missing `target` parameter")
	}
	if req.Format != "" && req.Format != FormatText && req.Format != FormatHTML {
		return badRequestf("invalid request: `format` must be %q or %q", FormatText, FormatHTML)
	}
	return nil
}

func (s *Service) resolveTargets(codes []string) ([]*language.Language, error) {
	targets := make([]*language.Language, 0, len(codes))
	for _, code := range codes {
		tgt, ok := s.registry.Lookup(code)
		if !ok {
			return nil, badRequestf("%s is not supported", code)
		}
		targets = append(targets, tgt)
	}
	return targets, nil
}

// resolveSource picks the concrete source language for a translatable
// request, running detection for the auto variant.
func (s *Service) resolveSource(req Request) (*language.Language, DetectedLanguage, error) {
	source, perr := s.lookupSource(req.Source)
	if perr != nil {
		return nil, DetectedLanguage{}, perr
	}

	if !source.IsAuto() {
		return source.Language(), DetectedLanguage{Confidence: 100, Language: source.Code()}, nil
	}

	if s.detector == nil {
		return nil, DetectedLanguage{}, badRequestf("source language auto-detection is not enabled")
	}
	code, confidence := s.detector(req.Text)
	src, ok := s.registry.Lookup(code)
	if !ok {
		return nil, DetectedLanguage{}, badRequestf("%s is not supported", code)
	}
	return src, DetectedLanguage{Confidence: confidence, Language: code}, nil
}

// lookupSource maps the wire code onto the tagged source variant.
func (s *Service) lookupSource(code string) (language.Source, *Error) {
	if code == language.AutoCode {
		return language.AutoDetect(), nil
	}
	l, ok := s.registry.Lookup(code)
	if !ok {
		return language.Source{}, badRequestf("%s is not supported", code)
	}
	return language.Concrete(l), nil
}

// passThrough builds the zero-engine-call result for decorative-only input:
// every target echoes the source segments verbatim.
func passThrough(req Request, targets []*language.Language) *Result {
	result := &Result{
		TranslatedText: make(map[string][]string, len(targets)),
		Alternatives:   make(map[string][][]string, len(targets)),
		Detected:       DetectedLanguage{Confidence: 0, Language: "en"},
		request:        req,
	}
	for _, tgt := range targets {
		outputs := make([]string, len(req.Text))
		copy(outputs, req.Text)
		alternatives := make([][]string, len(req.Text))
		for i := range alternatives {
			alternatives[i] = []string{}
		}
		result.TranslatedText[tgt.Code] = outputs
		result.Alternatives[tgt.Code] = alternatives
	}
	return result
}

// filterUnique keeps first-seen order while dropping duplicates, the empty
// string, and the primary translation itself.
func filterUnique(values []string, primary string) []string {
	seen := map[string]bool{primary: true, "": true}
	unique := make([]string, 0, len(values))
	for _, v := range values {
		if seen[v] {
			continue
		}
		seen[v] = true
		unique = append(unique, v)
	}
	return unique
}
