package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// HealthHandler обработчик проверки работоспособности сервиса
type HealthHandler struct{}

// NewHealthHandler создает новый обработчик health-check
func NewHealthHandler() *HealthHandler {
	return &HealthHandler{}
}

// Check возвращает статус сервиса
func (h *HealthHandler) Check(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
