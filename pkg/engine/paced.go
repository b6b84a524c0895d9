package engine

import (
	"context"

	"golang.org/x/time/rate"

	"github.com/openlocale/lingogate/pkg/language"
)

// Paced wraps a translator so every engine call first waits on the shared
// limiter. Model backends are usually single-stream-bound; pacing at the
// call boundary keeps a large batch from starving everything else. The wait
// honors context cancellation, which makes this the request's timeout hook.
func Paced(inner language.Translator, limiter *rate.Limiter) language.Translator {
	if limiter == nil {
		return inner
	}
	return &pacedTranslator{inner: inner, limiter: limiter}
}

type pacedTranslator struct {
	inner   language.Translator
	limiter *rate.Limiter
}

func (p *pacedTranslator) Hypotheses(ctx context.Context, text string, count int) ([]language.Hypothesis, error) {
	if err := p.limiter.Wait(ctx); err != nil {
		return nil, err
	}
	return p.inner.Hypotheses(ctx, text, count)
}
