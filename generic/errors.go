/*
errors.go - Centralized error types for the incentive engine

PURPOSE:
  All error types in one place for consistency and discoverability.
  Track packages return these errors; adapters wrap them with context.

ERROR CATEGORIES:
  1. Configuration errors - A parameter has no value at any layer (fatal for
     the affected track and scope only)
  2. Input errors - Negative or non-finite volumes, unknown categories,
     rejected at the input boundary
  3. Lookup warnings - Legal entity or sell point names that match nothing;
     the affected scope degrades to a zero result

PROPAGATION:
  Errors are scoped to a (track, scope) pair. One scope's failure never
  aborts evaluation of other scopes in the same run.

USAGE:
  if errors.Is(err, generic.ErrConfigurationMissing) {
      var cm *generic.ConfigMissingError
      errors.As(err, &cm)
      log.Printf("missing %s", cm.Path)
  }

SEE ALSO:
  - snapshot.go: Returns ConfigMissingError
  - sheet.go: Returns InvalidVolumeError
  - projection.go: Emits AmbiguousLegalEntity warnings
*/
package generic

import (
	"errors"
	"fmt"
)

// =============================================================================
// SENTINEL ERRORS - Use with errors.Is()
// =============================================================================

var (
	// ErrConfigurationMissing is returned when a required parameter has no
	// value at any configuration layer.
	ErrConfigurationMissing = errors.New("configuration missing")

	// ErrInvalidVolume is returned when a piece count is negative or not finite.
	ErrInvalidVolume = errors.New("invalid volume")

	// ErrAmbiguousLegalEntity is returned when a legal-entity name used for a
	// lookup matches no known entity after normalization.
	ErrAmbiguousLegalEntity = errors.New("ambiguous legal entity")

	// ErrInvalidLadder is returned when a threshold ladder is malformed.
	ErrInvalidLadder = errors.New("invalid tier ladder")

	// ErrUnknownCategory is returned when an input row names a category the
	// track does not define.
	ErrUnknownCategory = errors.New("unknown category")

	// ErrUnknownSellPoint is returned when volumes reference a POS code that
	// is not part of the evaluation.
	ErrUnknownSellPoint = errors.New("unknown sell point")

	// ErrInvalidInput is returned when an evaluation input is malformed.
	ErrInvalidInput = errors.New("invalid input")

	// ErrNotFound is returned by stores when a record does not exist.
	ErrNotFound = errors.New("not found")
)

// =============================================================================
// STRUCTURED ERRORS - Carry additional context
// =============================================================================

// ConfigMissingError names the parameter that could not be resolved.
type ConfigMissingError struct {
	Path string
}

func (e *ConfigMissingError) Error() string {
	return fmt.Sprintf("configuration missing: %s", e.Path)
}

func (e *ConfigMissingError) Unwrap() error {
	return ErrConfigurationMissing
}

// InvalidVolumeError describes a rejected input row.
type InvalidVolumeError struct {
	Track    TrackID
	Category string
	Cluster  string
	Reason   string
}

func (e *InvalidVolumeError) Error() string {
	key := e.Category
	if e.Cluster != "" {
		key += "." + e.Cluster
	}
	return fmt.Sprintf("invalid volume %s/%s: %s", e.Track, key, e.Reason)
}

func (e *InvalidVolumeError) Unwrap() error {
	return ErrInvalidVolume
}

// UnknownCategoryError is returned for a category code a track does not define.
type UnknownCategoryError struct {
	Track    TrackID
	Category string
}

func (e *UnknownCategoryError) Error() string {
	return fmt.Sprintf("unknown category %q for track %s", e.Category, e.Track)
}

func (e *UnknownCategoryError) Unwrap() error {
	return ErrUnknownCategory
}

// AmbiguousEntityError names the legal entity lookup that matched nothing.
type AmbiguousEntityError struct {
	Name string
	Key  string
	Use  string // What the lookup was for, e.g. "rs volumes", "extra-gara override"
}

func (e *AmbiguousEntityError) Error() string {
	return fmt.Sprintf("legal entity %q (key %s) used for %s matches no sell point", e.Name, e.Key, e.Use)
}

func (e *AmbiguousEntityError) Unwrap() error {
	return ErrAmbiguousLegalEntity
}

// IncompleteInputError reports that a cross-program calculator could not
// use an input track for a POS because that track failed there. It unwraps
// to the cause, so the failure keeps the input's error code.
type IncompleteInputError struct {
	Track TrackID
	Scope string
	Err   error
}

func (e *IncompleteInputError) Error() string {
	return fmt.Sprintf("input %s failed for %s: %v", e.Track, e.Scope, e.Err)
}

func (e *IncompleteInputError) Unwrap() error {
	return e.Err
}

// LadderError describes a malformed ladder.
type LadderError struct {
	Path   string
	Reason string
}

func (e *LadderError) Error() string {
	if e.Path == "" {
		return fmt.Sprintf("invalid tier ladder: %s", e.Reason)
	}
	return fmt.Sprintf("invalid tier ladder %s: %s", e.Path, e.Reason)
}

func (e *LadderError) Unwrap() error {
	return ErrInvalidLadder
}

// =============================================================================
// ERROR HELPERS
// =============================================================================

// IsBlocking returns true if the error should surface as a setup error
// rather than a warning.
func IsBlocking(err error) bool {
	return errors.Is(err, ErrConfigurationMissing) || errors.Is(err, ErrInvalidLadder)
}

// IsClientError returns true if the error is due to invalid caller input.
func IsClientError(err error) bool {
	return errors.Is(err, ErrInvalidVolume) ||
		errors.Is(err, ErrUnknownCategory) ||
		errors.Is(err, ErrInvalidInput)
}

// IsWarning returns true for lookup failures that degrade to a zero result.
func IsWarning(err error) bool {
	return errors.Is(err, ErrAmbiguousLegalEntity) || errors.Is(err, ErrUnknownSellPoint)
}

// ErrorCode returns a stable machine code for an engine error.
func ErrorCode(err error) string {
	switch {
	case errors.Is(err, ErrConfigurationMissing):
		return "configuration_missing"
	case errors.Is(err, ErrInvalidVolume):
		return "invalid_volume"
	case errors.Is(err, ErrAmbiguousLegalEntity):
		return "ambiguous_legal_entity"
	case errors.Is(err, ErrInvalidLadder):
		return "invalid_ladder"
	case errors.Is(err, ErrUnknownCategory):
		return "unknown_category"
	case errors.Is(err, ErrUnknownSellPoint):
		return "unknown_sell_point"
	case errors.Is(err, ErrInvalidInput):
		return "invalid_input"
	case errors.Is(err, ErrNotFound):
		return "not_found"
	default:
		return "internal"
	}
}

// =============================================================================
// REPORTED ISSUES - Errors surfaced in a report instead of aborting it
// =============================================================================

// Issue is an error scoped to one (track, scope) pair, as carried in reports.
// Warnings degrade the scope to a zero result; failures mean the scope has
// no result for the track.
type Issue struct {
	Code    string  `json:"code"`
	Track   TrackID `json:"track,omitempty"`
	Scope   string  `json:"scope,omitempty"`
	Message string  `json:"message"`
	Err     error   `json:"-"`
}

// NewIssue describes err for a track and scope.
func NewIssue(track TrackID, scope string, err error) Issue {
	return Issue{Code: ErrorCode(err), Track: track, Scope: scope, Message: err.Error(), Err: err}
}

func (i Issue) Error() string {
	if i.Scope == "" {
		return fmt.Sprintf("%s: %s", i.Track, i.Message)
	}
	return fmt.Sprintf("%s/%s: %s", i.Track, i.Scope, i.Message)
}

func (i Issue) Unwrap() error {
	return i.Err
}
