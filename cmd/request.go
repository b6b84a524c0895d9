package cmd

import (
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/openlocale/lingogate/pkg/language"
	"github.com/openlocale/lingogate/pkg/translate"
)

// translateBody is the flexible wire shape of a translate call: q and target
// accept both the scalar and the list form.
type translateBody struct {
	Q            any    `json:"q"`
	Source       string `json:"source"`
	Target       any    `json:"target"`
	Format       string `json:"format"`
	Alternatives any    `json:"alternatives"`
	APIKey       string `json:"api_key"`
}

func parseTranslateRequest(c *fiber.Ctx) (translate.Request, *translate.Error) {
	var body translateBody
	isJSON := strings.Contains(c.Get(fiber.HeaderContentType), fiber.MIMEApplicationJSON)
	if isJSON {
		if err := c.BodyParser(&body); err != nil {
			return translate.Request{}, translate.BadRequest("invalid JSON format")
		}
	} else {
		body = translateBody{
			Q:            formValue(c, "q"),
			Source:       c.FormValue("source"),
			Target:       formValue(c, "target"),
			Format:       c.FormValue("format"),
			Alternatives: formValue(c, "alternatives"),
			APIKey:       c.FormValue("api_key"),
		}
	}

	req := translate.Request{
		Source: language.NormalizeCode(body.Source),
		Format: body.Format,
		APIKey: body.APIKey,
	}

	switch q := body.Q.(type) {
	case nil:
	case string:
		req.Scalar = true
		if q != "" {
			if !isJSON {
				q = normalizeNewlines(q)
			}
			req.Text = []string{q}
		}
	case []any:
		texts, ok := stringSlice(q)
		if !ok {
			return translate.Request{}, translate.BadRequest("invalid request: `q` must be a string or a list of strings")
		}
		req.Text = texts
	default:
		return translate.Request{}, translate.BadRequest("invalid request: `q` must be a string or a list of strings")
	}

	switch target := body.Target.(type) {
	case nil:
	case string:
		if target != "" {
			req.Targets = []string{language.NormalizeCode(target)}
		}
	case []any:
		codes, ok := stringSlice(target)
		if !ok {
			return translate.Request{}, translate.BadRequest("invalid request: `target` must be a string or a list of strings")
		}
		for _, code := range codes {
			req.Targets = append(req.Targets, language.NormalizeCode(code))
		}
	default:
		return translate.Request{}, translate.BadRequest("invalid request: `target` must be a string or a list of strings")
	}

	alternatives, perr := parseAlternatives(body.Alternatives)
	if perr != nil {
		return translate.Request{}, perr
	}
	req.Alternatives = alternatives

	return req, nil
}

// formValue returns nil for an absent field so the zero value is
// distinguishable from an empty string.
func formValue(c *fiber.Ctx, key string) any {
	if value := c.FormValue(key); value != "" {
		return value
	}
	return nil
}

func stringSlice(values []any) ([]string, bool) {
	out := make([]string, 0, len(values))
	for _, v := range values {
		s, ok := v.(string)
		if !ok {
			return nil, false
		}
		out = append(out, s)
	}
	return out, true
}

func parseAlternatives(value any) (int, *translate.Error) {
	var alternatives int
	switch n := value.(type) {
	case nil:
	case float64:
		alternatives = int(n)
	case string:
		parsed, err := strconv.Atoi(strings.TrimSpace(n))
		if err != nil {
			return 0, translate.BadRequest("invalid request: `alternatives` parameter is not a number")
		}
		alternatives = parsed
	default:
		return 0, translate.BadRequest("invalid request: `alternatives` parameter is not a number")
	}
	if alternatives < 0 {
		alternatives = 0
	}
	return alternatives, nil
}

// normalizeNewlines rewrites whatever line endings a form submission used to
// plain line feeds.
func normalizeNewlines(s string) string {
	s = strings.ReplaceAll(s, "\r\n", "\n")
	return strings.ReplaceAll(s, "\r", "\n")
}
