package api

// Envelope общий формат ответа API: {success, message, data}
type Envelope[T any] struct {
	Data    T      `json:"data"`
	Message string `json:"message"`
	Success bool   `json:"success"`
}

// ErrorResponse представляет ответ с ошибкой
type ErrorResponse struct {
	Message string `json:"message"`         // человекочитаемое сообщение
	Error   string `json:"error,omitempty"` // текст HTTP статуса
	Success bool   `json:"success"`
}

// HealthResponse представляет ответ health check
type HealthResponse struct {
	Status  string `json:"status"`
	Version string `json:"version,omitempty"`
}
