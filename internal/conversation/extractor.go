package conversation

import (
	"encoding/json"
	"strings"
	"time"
)

// ExtractionOutcome classifies what the oracle's reply turned out to be.
type ExtractionOutcome int

const (
	// OutcomeUnparseable means the reply matched neither expected shape.
	OutcomeUnparseable ExtractionOutcome = iota
	// OutcomeIncomplete means the oracle is still collecting fields.
	OutcomeIncomplete
	// OutcomeComplete means all booking fields were extracted.
	OutcomeComplete
)

// BookingFields is one completed extraction. Complete iff all three fields
// are non-empty; the extractor only ever returns it fully populated.
type BookingFields struct {
	Doctor string
	Date   string
	Time   string
}

// Extraction is the result of parsing one oracle reply. Exactly one of
// Fields (OutcomeComplete) or FollowUp (OutcomeIncomplete) is set.
type Extraction struct {
	Outcome  ExtractionOutcome
	Fields   BookingFields
	FollowUp string
}

// oraclePayload is the union of the two shapes the prompt allows.
type oraclePayload struct {
	Doctor       string `json:"doctor"`
	Date         string `json:"date"`
	Time         string `json:"time"`
	InfoRequired string `json:"info_required"`
}

// ParseOracleReply decodes the oracle's raw text into an Extraction. The
// reply must be one of the two JSON shapes the prompt demands, optionally
// wrapped in a markdown code fence. Model text is never evaluated; anything
// that fails the structural decode is OutcomeUnparseable.
func ParseOracleReply(raw string) Extraction {
	text := extractJSONObject(stripCodeFence(raw))
	if text == "" {
		return Extraction{Outcome: OutcomeUnparseable}
	}

	var payload oraclePayload
	dec := json.NewDecoder(strings.NewReader(text))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&payload); err != nil {
		return Extraction{Outcome: OutcomeUnparseable}
	}
	// Trailing garbage after the object is as suspect as a bad object.
	if dec.More() {
		return Extraction{Outcome: OutcomeUnparseable}
	}

	followUp := strings.TrimSpace(payload.InfoRequired)
	fields := BookingFields{
		Doctor: strings.TrimSpace(payload.Doctor),
		Date:   strings.TrimSpace(payload.Date),
		Time:   strings.TrimSpace(payload.Time),
	}
	hasFields := fields.Doctor != "" || fields.Date != "" || fields.Time != ""

	switch {
	case followUp != "" && !hasFields:
		return Extraction{Outcome: OutcomeIncomplete, FollowUp: followUp}
	case followUp == "" && fields.Doctor != "" && fields.Date != "" && fields.Time != "":
		if !validDate(fields.Date) || !validTime(fields.Time) {
			return Extraction{Outcome: OutcomeUnparseable}
		}
		return Extraction{Outcome: OutcomeComplete, Fields: fields}
	default:
		// Mixed, partial, or empty payloads match neither shape.
		return Extraction{Outcome: OutcomeUnparseable}
	}
}

func validDate(s string) bool {
	_, err := time.Parse("2006-01-02", s)
	return err == nil
}

func validTime(s string) bool {
	_, err := time.Parse("15:04", s)
	return err == nil
}

func stripCodeFence(text string) string {
	text = strings.TrimSpace(text)
	text = strings.TrimPrefix(text, "```json")
	text = strings.TrimPrefix(text, "```")
	text = strings.TrimSuffix(text, "```")
	return strings.TrimSpace(text)
}

// extractJSONObject isolates the outermost object so prose around the
// payload never changes the outcome; two objects still span the slice and
// fail the decode.
func extractJSONObject(text string) string {
	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")
	if start >= 0 && end > start {
		return text[start : end+1]
	}
	return text
}
