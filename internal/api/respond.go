package api

import (
	"encoding/json"
	"log"
	"net/http"

	httperrors "github.com/munakata1001/jujutsukaisenapp/internal/errors"
)

func respondJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if payload == nil {
		return
	}
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		log.Printf("Error encoding response: %v", err)
	}
}

// respondDetail writes the storefront's error envelope: {"detail": "..."}.
func respondDetail(w http.ResponseWriter, status int, detail string) {
	respondJSON(w, status, map[string]string{"detail": detail})
}

// respondError maps a domain error to its HTTP status and error envelope.
func respondError(w http.ResponseWriter, err error) {
	httpErr := httperrors.FromError(err)
	if httpErr.Code >= http.StatusInternalServerError {
		log.Printf("Internal error: %v", err)
	}
	respondDetail(w, httpErr.Code, httpErr.Message)
}
