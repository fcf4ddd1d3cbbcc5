package handlers

import (
	"encoding/json"
	"net/http"
)

const msgInternalError = "внутренняя ошибка сервера"

// ErrorResponse стандартное тело ответа с ошибкой
type ErrorResponse struct {
	Message string `json:"message"`
}

// DecodeJSON декодирует JSON тело запроса в переданную структуру
func DecodeJSON(r *http.Request, v interface{}) error {
	defer r.Body.Close()
	return json.NewDecoder(r.Body).Decode(v)
}

// RespondJSON пишет JSON ответ с указанным статусом.
// body == nil дает пустое тело.
func RespondJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if body != nil {
		// Статус уже отправлен, ошибку кодирования остаётся проигнорировать
		_ = json.NewEncoder(w).Encode(body)
	}
}

// RespondError пишет JSON ответ с ошибкой и указанным статусом
func RespondError(w http.ResponseWriter, status int, message string) {
	RespondJSON(w, status, ErrorResponse{Message: message})
}

// RespondBadRequest отвечает 400 Bad Request
func RespondBadRequest(w http.ResponseWriter, message string) {
	RespondError(w, http.StatusBadRequest, message)
}

// RespondUnauthorized отвечает 401 Unauthorized
func RespondUnauthorized(w http.ResponseWriter, message string) {
	RespondError(w, http.StatusUnauthorized, message)
}

// RespondForbidden отвечает 403 Forbidden
func RespondForbidden(w http.ResponseWriter, message string) {
	RespondError(w, http.StatusForbidden, message)
}

// RespondNotFound отвечает 404 Not Found
func RespondNotFound(w http.ResponseWriter, message string) {
	RespondError(w, http.StatusNotFound, message)
}

// RespondUnavailable отвечает 503 Service Unavailable
func RespondUnavailable(w http.ResponseWriter, message string) {
	RespondError(w, http.StatusServiceUnavailable, message)
}

// RespondInternalError отвечает 500 Internal Server Error
func RespondInternalError(w http.ResponseWriter) {
	RespondError(w, http.StatusInternalServerError, msgInternalError)
}
