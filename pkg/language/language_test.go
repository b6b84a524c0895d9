package language

import (
	"context"
	"reflect"
	"testing"
)

type staticTranslator struct{ out string }

func (s staticTranslator) Hypotheses(_ context.Context, _ string, count int) ([]Hypothesis, error) {
	return []Hypothesis{{Value: s.out, Score: 0}}, nil
}

func TestRegistryLookup(t *testing.T) {
	en := New("en", "English")
	es := New("es", "Spanish")
	en.AddTarget("es", staticTranslator{out: "hola"})

	reg := NewRegistry(en, es)

	if got, ok := reg.Lookup("en"); !ok || got != en {
		t.Fatalf("Lookup(en) = %v, %v", got, ok)
	}
	if _, ok := reg.Lookup("fr"); ok {
		t.Fatal("Lookup(fr) should miss")
	}
	if len(reg.All()) != 2 {
		t.Fatalf("All() = %d languages, want 2", len(reg.All()))
	}

	if en.TranslatorTo("es") == nil {
		t.Fatal("en->es translator should exist")
	}
	if en.TranslatorTo("fr") != nil {
		t.Fatal("en->fr translator should not exist")
	}
	if got := en.Targets(); !reflect.DeepEqual(got, []string{"es"}) {
		t.Fatalf("Targets() = %v, want [es]", got)
	}
}

func TestSourceVariants(t *testing.T) {
	en := New("en", "English")

	concrete := Concrete(en)
	if concrete.IsAuto() {
		t.Fatal("concrete source should not be auto")
	}
	if concrete.Code() != "en" || concrete.Name() != "English" {
		t.Fatalf("concrete source = %s/%s", concrete.Code(), concrete.Name())
	}
	if concrete.Language() != en {
		t.Fatal("concrete source should expose its language")
	}

	auto := AutoDetect()
	if !auto.IsAuto() {
		t.Fatal("auto source should be auto")
	}
	if auto.Code() != AutoCode {
		t.Fatalf("auto source code = %s, want %s", auto.Code(), AutoCode)
	}
	if auto.Language() != nil {
		t.Fatal("auto source has no concrete language")
	}
}

func TestDetect(t *testing.T) {
	tests := []struct {
		name     string
		segments []string
		wantCode string
	}{
		{"latin", []string{"good morning"}, "en"},
		{"cyrillic", []string{"доброе утро"}, "ru"},
		{"han", []string{"早上好"}, "zh"},
		{"hiragana", []string{"おはよう"}, "ja"},
		{"hangul", []string{"좋은 아침"}, "ko"},
		{"arabic", []string{"صباح الخير"}, "ar"},
		{"mixed leans cyrillic", []string{"привет привет ok"}, "ru"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			code, confidence := Detect(tt.segments)
			if code != tt.wantCode {
				t.Errorf("Detect(%q) = %s, want %s", tt.segments, code, tt.wantCode)
			}
			if confidence <= 0 || confidence > 100 {
				t.Errorf("Detect(%q) confidence = %f, want (0, 100]", tt.segments, confidence)
			}
		})
	}

	code, confidence := Detect([]string{"12345 !!!"})
	if code != "en" || confidence != 0 {
		t.Errorf("Detect(no letters) = %s/%f, want en/0", code, confidence)
	}
}
