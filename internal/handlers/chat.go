package handlers

import (
	"encoding/json"
	"log"
	"net/http"
	"strings"

	"invagro-dashboard/internal/models"
	"invagro-dashboard/internal/services"
)

const maxMessageBytes = 16 * 1024

type ChatHandler struct {
	replier services.Replier
}

func NewChatHandler(replier services.Replier) *ChatHandler {
	return &ChatHandler{replier: replier}
}

// Reply answers POST /api/chat. Errors use the flat {"error": "..."} body the
// widget shows as an assistant turn.
func (h *ChatHandler) Reply(w http.ResponseWriter, r *http.Request) {
	var req models.ChatRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxMessageBytes)).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, models.ErrorResponse{Error: "Solicitud inválida"})
		return
	}

	message := strings.TrimSpace(req.Message)
	if message == "" {
		writeJSON(w, http.StatusBadRequest, models.ErrorResponse{Error: "El mensaje es requerido"})
		return
	}

	reply, err := h.replier.Reply(r.Context(), message)
	if err != nil {
		log.Printf("chat reply failed (model=%s, request=%s): %v", h.replier.Model(), r.Header.Get("X-Request-ID"), err)
		writeJSON(w, http.StatusBadGateway, models.ErrorResponse{Error: "No se pudo obtener respuesta del asistente"})
		return
	}

	writeJSON(w, http.StatusOK, models.ChatResponse{Reply: reply})
}

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}
