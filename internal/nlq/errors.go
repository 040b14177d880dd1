package nlq

import (
	"fmt"
	"strings"

	"github.com/cockroachdb/errors"

	"github.com/Chrisc1124/statpad/internal/apptype"
)

// ErrorKind classifies why a query could not be answered before dispatch.
type ErrorKind int

const (
	ErrUnrecognized ErrorKind = iota
	ErrEntityNotFound
	ErrAmbiguousEntity
	ErrInvalidSeason
	ErrMissingRequiredField
)

func (k ErrorKind) String() string {
	switch k {
	case ErrEntityNotFound:
		return "entity_not_found"
	case ErrAmbiguousEntity:
		return "ambiguous_entity"
	case ErrInvalidSeason:
		return "invalid_season"
	case ErrMissingRequiredField:
		return "missing_required_field"
	default:
		return "unrecognized"
	}
}

// exampleQueries are shown whenever a query does not match any shape rule,
// so the caller learns what the engine can answer.
var exampleQueries = []string{
	`"How many points did Stephen Curry score in 2023-24?"`,
	`"Compare Stephen Curry and LeBron James in 2023-24"`,
	`"Compare Stephen Curry and LeBron James last 5 games"`,
	`"Compare Lakers and Warriors in 2023-24"`,
}

// QueryError is a structured interpretation failure. Its Error text is
// user-facing and is carried verbatim into the error envelope.
type QueryError struct {
	Kind       ErrorKind
	Span       string             // offending name fragment
	EntityKind apptype.EntityKind // pool the span failed in, empty when undecided
	Candidates []string           // tied canonical names for ambiguity
	Text       string             // rejected season text
	Field      string             // missing required field
}

func (e *QueryError) Error() string {
	switch e.Kind {
	case ErrEntityNotFound:
		switch e.EntityKind {
		case apptype.KindPlayer:
			return fmt.Sprintf("No player found matching %q.", e.Span)
		case apptype.KindTeam:
			return fmt.Sprintf("No team found matching %q.", e.Span)
		default:
			return fmt.Sprintf("No player or team found matching %q.", e.Span)
		}
	case ErrAmbiguousEntity:
		noun := "names"
		switch e.EntityKind {
		case apptype.KindPlayer:
			noun = "players"
		case apptype.KindTeam:
			noun = "teams"
		}
		return fmt.Sprintf("%q matches multiple %s: %s. Please use the full name.",
			e.Span, noun, strings.Join(e.Candidates, ", "))
	case ErrInvalidSeason:
		return fmt.Sprintf("Invalid season %q. Seasons look like 2023-24.", e.Text)
	case ErrMissingRequiredField:
		switch e.Field {
		case "season":
			return `A season is required for this query, e.g. "in 2023-24".`
		case "query":
			return "A query is required."
		default:
			return fmt.Sprintf("Missing required field %q.", e.Field)
		}
	default:
		return "Could not parse query. Please try rephrasing. Examples: " +
			strings.Join(exampleQueries, ", ")
	}
}

func newUnrecognizedError() *QueryError {
	return &QueryError{Kind: ErrUnrecognized}
}

func newEntityNotFoundError(span string, kind apptype.EntityKind) *QueryError {
	return &QueryError{Kind: ErrEntityNotFound, Span: span, EntityKind: kind}
}

func newAmbiguousEntityError(span string, kind apptype.EntityKind, candidates []string) *QueryError {
	return &QueryError{Kind: ErrAmbiguousEntity, Span: span, EntityKind: kind, Candidates: candidates}
}

func newInvalidSeasonError(text string) *QueryError {
	return &QueryError{Kind: ErrInvalidSeason, Text: text}
}

func newMissingFieldError(field string) *QueryError {
	return &QueryError{Kind: ErrMissingRequiredField, Field: field}
}

// AsQueryError unwraps err to its QueryError, if it carries one.
func AsQueryError(err error) (*QueryError, bool) {
	var qe *QueryError
	if errors.As(err, &qe) {
		return qe, true
	}
	return nil, false
}

// IsUnrecognized reports whether err is a no-rule-matched failure.
func IsUnrecognized(err error) bool {
	qe, ok := AsQueryError(err)
	return ok && qe.Kind == ErrUnrecognized
}

// IsEntityNotFound reports whether err is an unresolved-name failure.
func IsEntityNotFound(err error) bool {
	qe, ok := AsQueryError(err)
	return ok && qe.Kind == ErrEntityNotFound
}

// IsAmbiguousEntity reports whether err is a tied-candidates failure.
func IsAmbiguousEntity(err error) bool {
	qe, ok := AsQueryError(err)
	return ok && qe.Kind == ErrAmbiguousEntity
}

// IsInvalidSeason reports whether err is a malformed-season failure.
func IsInvalidSeason(err error) bool {
	qe, ok := AsQueryError(err)
	return ok && qe.Kind == ErrInvalidSeason
}

// IsMissingRequiredField reports whether err is a missing-field failure.
func IsMissingRequiredField(err error) bool {
	qe, ok := AsQueryError(err)
	return ok && qe.Kind == ErrMissingRequiredField
}
