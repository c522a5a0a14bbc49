package httpx

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/ariefcatur/go-textile-inventory/internal/inventory"
)

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

// writeError maps the domain error taxonomy onto stable statuses. Anything
// outside the taxonomy is a store failure: logged in full, surfaced as the
// generic fallback so internals never leak.
func writeError(w http.ResponseWriter, err error, fallback string) {
	var ve *inventory.ValidationError
	if errors.As(err, &ve) {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": ve.Msg})
		return
	}
	var is *inventory.InsufficientStockError
	if errors.As(err, &is) {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "Insufficient stock"})
		return
	}
	var nf *inventory.NotFoundError
	if errors.As(err, &nf) {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": titleEntity(nf.Entity) + " not found"})
		return
	}
	slog.Error("request failed", slog.String("error", err.Error()))
	writeJSON(w, http.StatusInternalServerError, map[string]string{"error": fallback})
}

func titleEntity(s string) string {
	if s == "" {
		return "Resource"
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
