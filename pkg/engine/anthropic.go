package engine

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/dgraph-io/ristretto"
	"github.com/liushuangls/go-anthropic/v2"

	"github.com/openlocale/lingogate/pkg/language"
)

var ErrRateLimitExceeded = errors.New("rate limit exceeded")

type Config struct {
	APIKey       string
	Model        string
	Temperature  float32
	MaxTokens    int
	CacheTTL     time.Duration
	CacheMaxCost int64
}

// Anthropic is the production translation engine. One instance serves every
// language pair; Pair binds it to a concrete direction. Responses are cached
// so repeated segments skip the model entirely.
type Anthropic struct {
	client *anthropic.Client
	cache  *ristretto.Cache
	config Config
}

func NewAnthropic(cfg Config) (*Anthropic, error) {
	if cfg.APIKey == "" {
		return nil, errors.New("missing anthropic api key")
	}
	if cfg.Model == "" {
		cfg.Model = anthropic.ModelClaude3Dot5Sonnet20240620
	}
	if cfg.MaxTokens == 0 {
		cfg.MaxTokens = 1000
	}
	if cfg.CacheTTL == 0 {
		cfg.CacheTTL = 15 * time.Minute
	}
	if cfg.CacheMaxCost == 0 {
		cfg.CacheMaxCost = 1e7
	}

	cache, err := ristretto.NewCache(&ristretto.Config{
		NumCounters: 1e7,
		MaxCost:     cfg.CacheMaxCost,
		BufferItems: 64,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create cache: %w", err)
	}

	return &Anthropic{
		client: anthropic.NewClient(cfg.APIKey),
		cache:  cache,
		config: cfg,
	}, nil
}

// Pair returns a translator for one direction, suitable for registration on
// a language registry entry. Source and target are display names, which
// prompt better than bare codes.
func (a *Anthropic) Pair(sourceName, targetName string) language.Translator {
	return &pairTranslator{engine: a, source: sourceName, target: targetName}
}

type pairTranslator struct {
	engine *Anthropic
	source string
	target string
}

func (p *pairTranslator) Hypotheses(ctx context.Context, text string, count int) ([]language.Hypothesis, error) {
	return p.engine.hypotheses(ctx, text, p.source, p.target, count)
}

func translationSystem(source, target string, count int) string {
	if count <= 1 {
		return fmt.Sprintf(`Translate the user's text from %[1]s to %[2]s.
Reply with the translation only, without explanations or warnings. Preserve the original punctuation and casing conventions.`, source, target)
	}
	return fmt.Sprintf(`Translate the user's text from %[1]s to %[2]s.
Produce %[3]d distinct candidate translations, best first, one per line.
Reply with the candidates only, without numbering, explanations or warnings. Preserve the original punctuation and casing conventions.`, source, target, count)
}

func (a *Anthropic) hypotheses(ctx context.Context, text, source, target string, count int) ([]language.Hypothesis, error) {
	if count < 1 {
		count = 1
	}

	cacheKey := cacheKey(text, source, target, count)
	if cached, found := a.cache.Get(cacheKey); found {
		return cached.([]language.Hypothesis), nil
	}

	resp, err := a.createMessageWithRetry(ctx, anthropic.MessagesRequest{
		Model:       a.config.Model,
		System:      translationSystem(source, target, count),
		Messages:    []anthropic.Message{anthropic.NewUserTextMessage(text)},
		Temperature: &a.config.Temperature,
		MaxTokens:   a.config.MaxTokens,
	})
	if err != nil {
		return nil, fmt.Errorf("createMessageWithRetry: %w", err)
	}
	if len(resp.Content) == 0 {
		return nil, errors.New("no translation received")
	}

	hypotheses := parseHypotheses(resp.GetFirstContentText(), count)
	if len(hypotheses) == 0 {
		return nil, errors.New("empty translation received")
	}

	a.cache.SetWithTTL(cacheKey, hypotheses, 1, a.config.CacheTTL)
	return hypotheses, nil
}

// parseHypotheses splits the model reply into at most count candidates, one
// per line, scored by position so callers can keep them ordered.
func parseHypotheses(reply string, count int) []language.Hypothesis {
	var hypotheses []language.Hypothesis
	for _, line := range strings.Split(reply, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		hypotheses = append(hypotheses, language.Hypothesis{
			Value: line,
			Score: -float64(len(hypotheses)),
		})
		if len(hypotheses) == count {
			break
		}
	}
	return hypotheses
}

func (a *Anthropic) createMessageWithRetry(ctx context.Context, req anthropic.MessagesRequest) (*anthropic.MessagesResponse, error) {
	var resp anthropic.MessagesResponse
	var err error

	for retries := 0; retries < 3; retries++ {
		resp, err = a.client.CreateMessages(ctx, req)
		if err == nil {
			return &resp, nil
		}

		var apiErr *anthropic.APIError
		if errors.As(err, &apiErr) && apiErr.IsRateLimitErr() {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(time.Duration(retries+1) * time.Second):
				continue
			}
		}

		return nil, err
	}

	return nil, fmt.Errorf("%w: %v", ErrRateLimitExceeded, err)
}

func cacheKey(text, source, target string, count int) string {
	hash := sha256.Sum256([]byte(fmt.Sprintf("%s:%s:%s:%d", text, source, target, count)))
	return hex.EncodeToString(hash[:])
}
