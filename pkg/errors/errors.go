package errors

import "fmt"

// Error codes
const (
	CodeChartError = "CHART_ERROR"
	CodeConfig     = "CONFIG_ERROR"
	CodeValidation = "VALIDATION_ERROR"
	CodeStorage    = "STORAGE_ERROR"
	CodeCache      = "CACHE_ERROR"
	CodeService    = "SERVICE_ERROR"
)

type ChartError struct {
	Message string
	Code    string
	Context map[string]any
	Cause   error
}

func (e *ChartError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

func (e *ChartError) Unwrap() error {
	return e.Cause
}

func NewChartError(message, code string, context map[string]any) *ChartError {
	return &ChartError{
		Message: message,
		Code:    code,
		Context: context,
	}
}

func (e *ChartError) WithCause(cause error) *ChartError {
	e.Cause = cause
	return e
}

// ConfigError reports a missing or malformed setting. Raised at first use,
// never defaulted silently.
type ConfigError struct {
	*ChartError
	Key string
}

func NewConfigError(message, key string) *ConfigError {
	return &ConfigError{
		ChartError: &ChartError{
			Message: message,
			Code:    CodeConfig,
			Context: map[string]any{
				"key": key,
			},
		},
		Key: key,
	}
}

type ValidationError struct {
	*ChartError
	Field string
	Value interface{}
}

func NewValidationError(message, field string, value interface{}) *ValidationError {
	return &ValidationError{
		ChartError: &ChartError{
			Message: message,
			Code:    CodeValidation,
			Context: map[string]any{
				"field": field,
				"value": value,
			},
		},
		Field: field,
		Value: value,
	}
}

// StorageError wraps a failure from the database backend.
type StorageError struct {
	*ChartError
	Backend   string
	Operation string
}

func NewStorageError(message, backend, operation string, cause error) *StorageError {
	return &StorageError{
		ChartError: &ChartError{
			Message: message,
			Code:    CodeStorage,
			Context: map[string]any{
				"backend":   backend,
				"operation": operation,
			},
			Cause: cause,
		},
		Backend:   backend,
		Operation: operation,
	}
}

type CacheError struct {
	*ChartError
	Operation string
	Key       string
}

func NewCacheError(message, operation, key string, cause error) *CacheError {
	return &CacheError{
		ChartError: &ChartError{
			Message: message,
			Code:    CodeCache,
			Context: map[string]any{
				"operation": operation,
				"key":       key,
			},
			Cause: cause,
		},
		Operation: operation,
		Key:       key,
	}
}

type ServiceError struct {
	*ChartError
	Service   string
	Operation string
}

func NewServiceError(message, service, operation string, cause error) *ServiceError {
	return &ServiceError{
		ChartError: &ChartError{
			Message: message,
			Code:    CodeService,
			Context: map[string]any{
				"service":   service,
				"operation": operation,
			},
			Cause: cause,
		},
		Service:   service,
		Operation: operation,
	}
}
