package repository

import "github.com/Dhoini/storefront-payments/internal/domain"

// Хранилища возвращают общие доменные ошибки, чтобы errors.Is работал
// одинаково для in-memory и postgres реализаций
var (
	ErrNotFound  = domain.ErrNotFound
	ErrDuplicate = domain.ErrDuplicate
)
