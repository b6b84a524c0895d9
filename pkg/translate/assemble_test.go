package translate

import (
	"reflect"
	"testing"
)

func TestPayloadBasics(t *testing.T) {
	req := Request{
		Text:    []string{"Hello"},
		Scalar:  true,
		Source:  "en",
		Targets: []string{"es"},
	}
	result := &Result{
		TranslatedText: map[string][]string{"es": {"Hola"}},
		Alternatives:   map[string][][]string{"es": {{"Holi"}}},
		Detected:       DetectedLanguage{Confidence: 100, Language: "en"},
		request:        req,
	}

	payload := result.Payload()
	want := map[string][]string{"es": {"Hola"}}
	if !reflect.DeepEqual(payload["translatedText"], want) {
		t.Errorf("translatedText = %v, want %v", payload["translatedText"], want)
	}
	if _, ok := payload["detectedLanguage"]; ok {
		t.Error("concrete-source request should not carry detectedLanguage")
	}
	if _, ok := payload["alternatives"]; ok {
		t.Error("request without alternatives should not carry the field")
	}
}

func TestPayloadWithAlternatives(t *testing.T) {
	req := Request{
		Text:         []string{"Hello"},
		Scalar:       true,
		Source:       "en",
		Targets:      []string{"es"},
		Alternatives: 2,
	}
	result := &Result{
		TranslatedText: map[string][]string{"es": {"Hola"}},
		Alternatives:   map[string][][]string{"es": {{"Holi", "Buenas"}}},
		request:        req,
	}

	payload := result.Payload()
	want := map[string][][]string{"es": {{"Holi", "Buenas"}}}
	if !reflect.DeepEqual(payload["alternatives"], want) {
		t.Errorf("alternatives = %v, want %v", payload["alternatives"], want)
	}
}

func TestPayloadDetectedLanguageShapes(t *testing.T) {
	detected := DetectedLanguage{Confidence: 85, Language: "en"}

	scalar := &Result{
		TranslatedText: map[string][]string{"es": {"Hola"}},
		Detected:       detected,
		request:        Request{Text: []string{"Hello"}, Scalar: true, Source: "auto", Targets: []string{"es"}},
	}
	if got := scalar.Payload()["detectedLanguage"]; !reflect.DeepEqual(got, detected) {
		t.Errorf("scalar detectedLanguage = %v, want %v", got, detected)
	}

	list := &Result{
		TranslatedText: map[string][]string{"es": {"Hola", "Adiós"}},
		Detected:       detected,
		request:        Request{Text: []string{"Hello", "Goodbye"}, Source: "auto", Targets: []string{"es"}},
	}
	got, ok := list.Payload()["detectedLanguage"].([]DetectedLanguage)
	if !ok || len(got) != 2 {
		t.Fatalf("list detectedLanguage = %v, want one entry per segment", list.Payload()["detectedLanguage"])
	}
	for _, d := range got {
		if d != detected {
			t.Errorf("detectedLanguage entry = %v, want %v", d, detected)
		}
	}
}
