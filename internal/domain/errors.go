package domain

import (
	"errors"
	"fmt"
)

// Application errors
var (
	// ErrNotFound запись не найдена
	ErrNotFound = errors.New("record not found")

	// ErrDuplicate дубликат записи
	ErrDuplicate = errors.New("duplicate record")

	// ErrInvalidInput неверные входные данные
	ErrInvalidInput = errors.New("invalid input data")

	// ErrUnauthenticated пользователь не аутентифицирован
	ErrUnauthenticated = errors.New("unauthenticated")

	// ErrInvalidSignature подпись вебхука не прошла проверку
	ErrInvalidSignature = errors.New("webhook signature verification failed")

	// ErrInvalidPriceType неподдерживаемый тип цены
	ErrInvalidPriceType = errors.New("unsupported price type")

	// ErrCustomerNotFound клиент не найден
	ErrCustomerNotFound = errors.New("customer not found")

	// ErrMissingCredentials не заданы секреты для работы с провайдером платежей
	ErrMissingCredentials = errors.New("payment provider credentials are not configured")
)

// ExternalServiceError представляет ошибку внешнего сервиса
type ExternalServiceError struct {
	Service     string
	Operation   string
	StatusCode  int
	Message     string
	OriginalErr error
}

// Error реализует интерфейс error
func (e *ExternalServiceError) Error() string {
	if e.OriginalErr != nil {
		return fmt.Sprintf("%s error in %s (status %d): %s: %v", e.Service, e.Operation, e.StatusCode, e.Message, e.OriginalErr)
	}
	return fmt.Sprintf("%s error in %s (status %d): %s", e.Service, e.Operation, e.StatusCode, e.Message)
}

// Unwrap возвращает оригинальную ошибку
func (e *ExternalServiceError) Unwrap() error {
	return e.OriginalErr
}

// NewExternalServiceError создает новую ошибку внешнего сервиса
func NewExternalServiceError(service, operation string, statusCode int, message string, err error) *ExternalServiceError {
	return &ExternalServiceError{
		Service:     service,
		Operation:   operation,
		StatusCode:  statusCode,
		Message:     message,
		OriginalErr: err,
	}
}

// NotFoundError представляет ошибку "не найдено" с контекстом сущности
type NotFoundError struct {
	Entity string
	Key    string
}

// Error реализует интерфейс error
func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s with key %s not found", e.Entity, e.Key)
}

// Is проверяет, является ли ошибка ошибкой типа "не найдено"
func (e *NotFoundError) Is(target error) bool {
	return target == ErrNotFound
}

// NewNotFoundError создает новую ошибку "не найдено"
func NewNotFoundError(entity, key string) *NotFoundError {
	return &NotFoundError{
		Entity: entity,
		Key:    key,
	}
}
