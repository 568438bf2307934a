// Package validation checks inbound movie and rating payloads.
//
// Checks run in two stages. The schema stage verifies shape: required fields
// are present and have a usable type. The range stage verifies domain bounds
// (release year, score) on values that already passed the schema stage.
// Callers run them in that order; the first failure decides the response.
package validation

import (
	"errors"
	"fmt"
	"math"
	"reflect"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/tidwall/gjson"
)

// FirstFilmYear is the earliest accepted release year.
const FirstFilmYear = 1888

// Reason classifies a validation failure.
type Reason string

const (
	ReasonNone          Reason = ""
	ReasonInvalidFields Reason = "invalid_fields"
	ReasonInvalidYear   Reason = "invalid_year"
	ReasonInvalidRating Reason = "invalid_rating"
	ReasonInvalidID     Reason = "invalid_id"
)

// Result reports the outcome of a check. Field names the offending input
// field when one is known.
type Result struct {
	OK     bool
	Reason Reason
	Field  string
}

func pass() Result { return Result{OK: true} }

func fail(reason Reason, field string) Result {
	return Result{Reason: reason, Field: field}
}

// MovieInput is a movie payload that passed the schema stage. RawYear keeps
// the original JSON value for the range stage.
type MovieInput struct {
	Title   string       `json:"title" validate:"required"`
	Genre   string       `json:"genre" validate:"required"`
	Year    float64      `json:"year"`
	RawYear gjson.Result `json:"-" validate:"-"`
}

// RatingInput is a rating payload that passed the schema stage.
type RatingInput struct {
	MovieID  int64
	Score    float64
	RawScore gjson.Result
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(field reflect.StructField) string {
		name := strings.SplitN(field.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// ValidateMovie runs the schema stage on a movie creation body. Unknown
// fields, including id, are ignored.
func ValidateMovie(body []byte) (MovieInput, Result) {
	if !gjson.ValidBytes(body) {
		return MovieInput{}, fail(ReasonInvalidFields, "")
	}
	root := gjson.ParseBytes(body)
	if !root.IsObject() {
		return MovieInput{}, fail(ReasonInvalidFields, "")
	}

	title := member(root, "title")
	if title.Type != gjson.String {
		return MovieInput{}, fail(ReasonInvalidFields, "title")
	}
	genre := member(root, "genre")
	if genre.Type != gjson.String {
		return MovieInput{}, fail(ReasonInvalidFields, "genre")
	}
	rawYear := member(root, "year")
	year, coerced := Coerce(rawYear)
	if !coerced {
		return MovieInput{}, fail(ReasonInvalidFields, "year")
	}

	input := MovieInput{
		Title:   title.Str,
		Genre:   genre.Str,
		Year:    year,
		RawYear: rawYear,
	}
	if err := validate.Struct(input); err != nil {
		return MovieInput{}, fail(ReasonInvalidFields, firstField(err))
	}
	return input, pass()
}

// ValidateRating runs the schema stage on a rating body for the given movie.
func ValidateRating(movieID int64, body []byte) (RatingInput, Result) {
	if !gjson.ValidBytes(body) {
		return RatingInput{}, fail(ReasonInvalidFields, "")
	}
	root := gjson.ParseBytes(body)
	if !root.IsObject() {
		return RatingInput{}, fail(ReasonInvalidFields, "")
	}
	rawScore := member(root, "score")
	score, coerced := Coerce(rawScore)
	if !coerced {
		return RatingInput{}, fail(ReasonInvalidFields, "score")
	}
	return RatingInput{MovieID: movieID, Score: score, RawScore: rawScore}, pass()
}

// ParseID parses a path-embedded movie identifier.
func ParseID(raw string) (int64, Result) {
	id, err := strconv.ParseInt(strings.TrimSpace(raw), 10, 64)
	if err != nil {
		return 0, fail(ReasonInvalidID, "id")
	}
	return id, pass()
}

// IsValidYear reports whether v is an integer release year between
// FirstFilmYear and the current calendar year inclusive.
func IsValidYear(v gjson.Result) bool {
	return isValidYearAt(v, time.Now())
}

func isValidYearAt(v gjson.Result, now time.Time) bool {
	year, ok := coerceInteger(v)
	if !ok {
		return false
	}
	return validate.Var(year, fmt.Sprintf("gte=%d,lte=%d", FirstFilmYear, now.Year())) == nil
}

// IsValidRating reports whether v is an integer score between 1 and 5.
// Boolean true coerces to 1 and is accepted.
func IsValidRating(v gjson.Result) bool {
	score, ok := coerceInteger(v)
	if !ok {
		return false
	}
	return validate.Var(score, "gte=1,lte=5") == nil
}

// Range checks reject null and absent values outright even though the
// schema stage coerces null to zero.
func coerceInteger(v gjson.Result) (float64, bool) {
	if v.Type == gjson.Null {
		return 0, false
	}
	f, ok := Coerce(v)
	if !ok || math.IsInf(f, 0) || f != math.Trunc(f) {
		return 0, false
	}
	return f, true
}

// Coerce converts a JSON value to a number using loose client-side rules:
// numbers pass through, strings are trimmed and parsed (empty is zero),
// booleans become 1 or 0 and null becomes 0. Absent fields, arrays, objects
// and unparseable strings are not coercible.
func Coerce(v gjson.Result) (float64, bool) {
	switch v.Type {
	case gjson.Number:
		return v.Num, true
	case gjson.True:
		return 1, true
	case gjson.False:
		return 0, true
	case gjson.Null:
		if !v.Exists() {
			return 0, false
		}
		return 0, true
	case gjson.String:
		return parseNumericString(v.Str)
	default:
		return 0, false
	}
}

func parseNumericString(raw string) (float64, bool) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return 0, true
	}
	switch s {
	case "Infinity", "+Infinity":
		return math.Inf(1), true
	case "-Infinity":
		return math.Inf(-1), true
	}
	if len(s) > 2 && s[0] == '0' {
		base := 0
		switch s[1] {
		case 'x', 'X':
			base = 16
		case 'o', 'O':
			base = 8
		case 'b', 'B':
			base = 2
		}
		if base != 0 {
			n, err := strconv.ParseUint(s[2:], base, 64)
			if err != nil || strings.Contains(s, "_") {
				return 0, false
			}
			return float64(n), true
		}
	}
	if strings.ContainsAny(s, "_xXpP") || strings.EqualFold(strings.TrimLeft(s, "+-"), "inf") ||
		strings.EqualFold(strings.TrimLeft(s, "+-"), "infinity") {
		return 0, false
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(f) {
		return 0, false
	}
	return f, true
}

// member returns the value of key in obj. When a key repeats, the last
// occurrence wins.
func member(obj gjson.Result, key string) gjson.Result {
	var found gjson.Result
	obj.ForEach(func(k, v gjson.Result) bool {
		if k.Str == key {
			found = v
		}
		return true
	})
	return found
}

func firstField(err error) string {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		return verrs[0].Field()
	}
	return ""
}
