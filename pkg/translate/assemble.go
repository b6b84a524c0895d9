package translate

import "github.com/openlocale/lingogate/pkg/language"

// Payload shapes the result into the wire response contract:
// translatedText maps every target code to its segment-ordered output list.
// Detection metadata appears only for auto-source requests and mirrors the
// request's scalar or list form; alternatives appear only when the caller
// asked for some.
func (r *Result) Payload() map[string]any {
	payload := map[string]any{
		"translatedText": r.TranslatedText,
	}

	if r.request.Source == language.AutoCode {
		payload["detectedLanguage"] = r.shapeDetected()
	}
	if r.request.Alternatives > 0 {
		payload["alternatives"] = r.Alternatives
	}
	return payload
}

func (r *Result) shapeDetected() any {
	if r.request.Scalar {
		return r.Detected
	}
	detected := make([]DetectedLanguage, len(r.request.Text))
	for i := range detected {
		detected[i] = r.Detected
	}
	return detected
}
