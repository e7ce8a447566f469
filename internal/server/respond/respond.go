// Package respond writes the API envelope {success, message, data}.
package respond

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/iudanet/villabook/pkg/api"
)

// JSON отправляет успешный ответ в конверте
func JSON[T any](w http.ResponseWriter, status int, message string, data T) {
	write(w, status, api.Envelope[T]{
		Success: true,
		Message: message,
		Data:    data,
	})
}

// Error отправляет ответ с ошибкой: {success:false, message, error}
func Error(w http.ResponseWriter, status int, message string) {
	write(w, status, api.ErrorResponse{
		Success: false,
		Message: message,
		Error:   http.StatusText(status),
	})
}

func write(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		slog.Default().Error("failed to encode response", slog.Any("error", err))
	}
}
