package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/xela07ax/cybermarket-dashboard/internal/domain"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

// writeUpstreamError переводит ошибку API маркетплейса в ответ локального сервера.
// Невалидный запрос: 400. Статус маркетплейса отдаем как есть для 4xx, остальное: 502.
func writeUpstreamError(w http.ResponseWriter, err error) {
	var rf *domain.RequestFailedError
	switch {
	case errors.Is(err, domain.ErrInvalid):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.As(err, &rf) && rf.Status >= 400 && rf.Status < 500:
		writeError(w, rf.Status, err.Error())
	case errors.Is(err, domain.ErrRequestAborted):
		writeError(w, http.StatusGatewayTimeout, err.Error())
	default:
		writeError(w, http.StatusBadGateway, err.Error())
	}
}
