package billing

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/dmitrymomot/applytrack/pkg/binder"
	pkgbilling "github.com/dmitrymomot/applytrack/pkg/billing"
	"github.com/dmitrymomot/applytrack/pkg/logger"
)

// webhook acknowledges with 200 once an event is applied or safely ignored.
// Bad signatures and payloads get 400 so the processor does not retry them;
// any other failure gets 500 so it does.
func (m *Module) webhook(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := m.logger.With(logger.Component("billing_webhook"), logger.Processor(m.processor))

	if chi.URLParam(r, "processor") != m.processor {
		http.NotFound(w, r)
		return
	}

	payload, err := io.ReadAll(io.LimitReader(r.Body, binder.DefaultMaxJSONSize+1))
	if err != nil || len(payload) > binder.DefaultMaxJSONSize {
		writeStatus(w, http.StatusBadRequest, "invalid payload")
		return
	}

	err = m.syncer.HandleWebhook(ctx, payload, r.Header.Get(pkgbilling.SignatureHeader(m.processor)))
	switch {
	case err == nil:
		writeStatus(w, http.StatusOK, "received")
	case errors.Is(err, pkgbilling.ErrWebhookVerificationFailed), errors.Is(err, pkgbilling.ErrInvalidWebhookPayload):
		log.WarnContext(ctx, "webhook rejected", logger.Error(err))
		writeStatus(w, http.StatusBadRequest, "invalid webhook")
	default:
		log.ErrorContext(ctx, "webhook processing failed", logger.Error(err))
		writeStatus(w, http.StatusInternalServerError, "processing failed")
	}
}

func writeStatus(w http.ResponseWriter, code int, status string) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(map[string]string{"status": status}); err != nil {
		slog.Default().Error("failed to write webhook response", logger.Error(err))
	}
}
