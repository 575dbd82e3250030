package handlers

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/skip2/go-qrcode"
)

// qrSize is a mobile-friendly PNG edge length
const qrSize = 320

// QRHandler serves share-link QR codes for any of the party tools
type QRHandler struct {
	appBaseURL string
}

// NewQRHandler creates a new QR handler
func NewQRHandler(appBaseURL string) *QRHandler {
	return &QRHandler{appBaseURL: strings.TrimRight(appBaseURL, "/")}
}

// Serve handles GET /api/{tool}/{id}/qr, encoding the shareable game URL
// as a PNG QR code.
func (h *QRHandler) Serve(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if id == "" {
		respondJSON(w, http.StatusBadRequest, errorResponse{Error: "Missing game id"})
		return
	}

	// We are at /api/.../{id}/qr; strip the trailing "/qr" to get the
	// shareable URL
	path := strings.TrimSuffix(r.URL.Path, "/qr")
	shareURL := h.appBaseURL + path

	png, err := qrcode.Encode(shareURL, qrcode.Medium, qrSize)
	if err != nil {
		respondWithError(w, fmt.Sprintf("Failed to encode QR for %s", shareURL), err)
		return
	}

	w.Header().Set("Content-Type", "image/png")
	_, _ = w.Write(png)
}
