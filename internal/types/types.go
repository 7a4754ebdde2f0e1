// Package types defines shared data types and error codes for the novel translator application.
package types

import "errors"

// Config holds application-level settings shared across projects.
// Project-specific options (languages, prompt preset, line sync) live with the
// project itself; this struct covers the LLM endpoint and runtime knobs.
type Config struct {
	OpenAIAPIKey  string `json:"openai_api_key"`
	OpenAIBaseURL string `json:"openai_base_url"` // base URL for OpenAI-compatible APIs
	OpenAIModel   string `json:"openai_model"`
	Concurrency   int    `json:"concurrency"` // parallel chapter translations, default 3
	PresetsDir    string `json:"presets_dir"` // directory of prompt preset TOML files
	LogFile       string `json:"log_file,omitempty"`
	// Recently opened project directories, most recent first.
	RecentProjects []RecentProject `json:"recent_projects,omitempty"`
}

// RecentProject records one entry of the recently-opened project list.
type RecentProject struct {
	Path      string `json:"path"`
	Name      string `json:"name"`
	Timestamp int64  `json:"timestamp"` // Unix milliseconds
}

// DefaultConfig returns the built-in defaults applied before any settings file
// or environment override is read.
func DefaultConfig() Config {
	return Config{
		OpenAIBaseURL: "https://api.openai.com/v1",
		OpenAIModel:   "gpt-4o-mini",
		Concurrency:   3,
	}
}

// ErrorCode classifies application errors.
type ErrorCode string

const (
	ErrNetwork      ErrorCode = "NETWORK_ERROR"
	ErrFileNotFound ErrorCode = "FILE_NOT_FOUND"
	ErrInvalidInput ErrorCode = "INVALID_INPUT"
	ErrAPICall      ErrorCode = "API_CALL_ERROR"
	ErrAPIAuth      ErrorCode = "API_AUTH_ERROR"
	ErrAPIRateLimit ErrorCode = "API_RATE_LIMIT"
	ErrConfig       ErrorCode = "CONFIG_ERROR"
	ErrStorage      ErrorCode = "STORAGE_ERROR"
	ErrProject      ErrorCode = "PROJECT_ERROR"
	ErrGlossary     ErrorCode = "GLOSSARY_ERROR"
	ErrTranslation  ErrorCode = "TRANSLATION_ERROR"
	ErrExtraction   ErrorCode = "EXTRACTION_ERROR"
	ErrInternal     ErrorCode = "INTERNAL_ERROR"
)

// AppError is the application error type carried across package boundaries.
type AppError struct {
	Code    ErrorCode `json:"code"`
	Message string    `json:"message"`
	Details string    `json:"details,omitempty"`
	Cause   error     `json:"-"`
}

// Error implements the error interface for AppError
func (e *AppError) Error() string {
	if e.Details != "" {
		return e.Message + ": " + e.Details
	}
	return e.Message
}

// Unwrap returns the underlying cause of the error
func (e *AppError) Unwrap() error {
	return e.Cause
}

// NewAppError creates a new AppError with the given code, message, and optional cause
func NewAppError(code ErrorCode, message string, cause error) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
		Cause:   cause,
	}
}

// NewAppErrorWithDetails creates a new AppError with details
func NewAppErrorWithDetails(code ErrorCode, message, details string, cause error) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
		Details: details,
		Cause:   cause,
	}
}

// WrapError wraps err into an AppError with the given code and message. An err
// that already is an AppError is returned unchanged so codes assigned at the
// failure site survive rewrapping at outer boundaries.
func WrapError(code ErrorCode, message string, err error) *AppError {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr
	}
	return NewAppError(code, message, err)
}
