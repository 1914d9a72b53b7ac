// Package types provides type definitions for structured data used throughout the career advisor.
//
//nolint:revive // types is a standard Go package name pattern
package types

import (
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
)

// AnalysisResult is the structured career analysis for a single job title.
// Field names on the wire are part of the share-link format and must not change.
type AnalysisResult struct {
	JobTitle              string        `json:"jobTitle" validate:"required"`
	AIImpact              string        `json:"aiImpact" validate:"required"`
	SkillHistory          string        `json:"skillHistory" validate:"required"`
	CurrentAIDevelopments string        `json:"currentAiDevelopments" validate:"required"`
	RecommendedCourses    []Course      `json:"recommendedCourses" validate:"required,dive"`
	RelevantAPIs          []APIResource `json:"relevantApis" validate:"required,dive"`
	OnlineCommunities     []Community   `json:"onlineCommunities" validate:"required,dive"`
}

// Course is a recommended online course.
type Course struct {
	Name     string `json:"name" validate:"required"`
	Platform string `json:"platform" validate:"required"`
	URL      string `json:"url" validate:"required"`
	IsFree   bool   `json:"isFree"`
}

// APIResource is a public API worth exploring for the field.
type APIResource struct {
	Name        string `json:"name" validate:"required"`
	Description string `json:"description" validate:"required"`
	URL         string `json:"url" validate:"required"`
}

// Community is an online community to join.
type Community struct {
	Name     string `json:"name" validate:"required"`
	Platform string `json:"platform" validate:"required"`
	URL      string `json:"url" validate:"required"`
}

// ValidationError lists the fields of an AnalysisResult that failed validation.
type ValidationError struct {
	Fields []string
	Cause  error
}

func (e *ValidationError) Error() string {
	if len(e.Fields) == 0 {
		return fmt.Sprintf("invalid analysis result: %v", e.Cause)
	}
	return fmt.Sprintf("invalid analysis result: %s", strings.Join(e.Fields, ", "))
}

func (e *ValidationError) Unwrap() error {
	return e.Cause
}

var (
	analysisValidator     *validator.Validate
	analysisValidatorOnce sync.Once
)

func getValidator() *validator.Validate {
	analysisValidatorOnce.Do(func() {
		analysisValidator = validator.New(validator.WithRequiredStructEnabled())
	})
	return analysisValidator
}

// Validate checks that every text field is non-empty and every list is present.
// Empty lists are accepted; the number of entries is not enforced.
func (r *AnalysisResult) Validate() error {
	if r == nil {
		return &ValidationError{Cause: errors.New("analysis result is nil")}
	}

	err := getValidator().Struct(r)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return &ValidationError{Cause: err}
	}

	fields := make([]string, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		fields = append(fields, fe.Namespace())
	}
	return &ValidationError{Fields: fields, Cause: err}
}

// HasRecommendations reports whether any of the recommendation lists has entries.
func (r *AnalysisResult) HasRecommendations() bool {
	return len(r.RecommendedCourses)+len(r.RelevantAPIs)+len(r.OnlineCommunities) > 0
}
