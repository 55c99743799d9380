package web

import (
	"context"
	"encoding/json"
	"io"
	"log"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"golang.org/x/text/language"

	apperrors "github.com/louisbranch/tableroll/internal/platform/errors"
	"github.com/louisbranch/tableroll/internal/platform/id"
	"github.com/louisbranch/tableroll/internal/platform/requestctx"
	diceservice "github.com/louisbranch/tableroll/internal/services/dice"
)

// RequestIDHeader carries the request id on requests and responses.
const RequestIDHeader = "X-Request-Id"

// maxBodyBytes bounds roll request bodies.
const maxBodyBytes = 4 << 10

// Dice is the dice service behind the API: the in-process service or a gRPC
// client of the game server.
type Dice interface {
	Roll(ctx context.Context, req diceservice.Request) (diceservice.Outcome, error)
	ListSystems(ctx context.Context) ([]diceservice.SystemInfo, error)
}

// Handler serves the HTTP API.
type Handler struct {
	dice Dice
}

// NewHandler builds the router for the API. An empty origin list allows any origin.
func NewHandler(dice Dice, allowedOrigins []string) http.Handler {
	h := &Handler{dice: dice}
	if len(allowedOrigins) == 0 {
		allowedOrigins = []string{"*"}
	}

	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(requestID)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   allowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Accept-Language", "Content-Type", RequestIDHeader},
		ExposedHeaders:   []string{RequestIDHeader},
		AllowCredentials: false,
		MaxAge:           60 * 15,
	}))

	r.Get("/healthz", h.Health)
	r.Route("/v1/systems", func(rr chi.Router) {
		rr.Get("/", h.ListSystems)
		rr.Post("/{system}/roll", h.Roll)
	})
	return r
}

// Health reports liveness.
func (h *Handler) Health(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// ListSystems lists the registered game systems.
func (h *Handler) ListSystems(w http.ResponseWriter, r *http.Request) {
	list, err := h.dice.ListSystems(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toSystemsResponse(list))
}

// Roll evaluates one command for the system named in the path.
func (h *Handler) Roll(w http.ResponseWriter, r *http.Request) {
	var payload rollRequest
	decoder := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&payload); err != nil {
		writeError(w, r, invalidRequest("body must be a JSON object with a command", err))
		return
	}

	req := diceservice.Request{
		System:  chi.URLParam(r, "system"),
		Command: payload.Command,
	}
	if seedText := strings.TrimSpace(payload.Seed); seedText != "" {
		seed, err := strconv.ParseInt(seedText, 10, 64)
		if err != nil {
			writeError(w, r, invalidRequest("seed must be a decimal integer", err))
			return
		}
		req.Seed = &seed
	}

	outcome, err := h.dice.Roll(r.Context(), req)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toRollResponse(outcome))
}

// requestID keeps a caller supplied request id or assigns a new one.
func requestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		reqID := strings.TrimSpace(r.Header.Get(RequestIDHeader))
		if reqID == "" {
			generated, err := id.NewID()
			if err != nil {
				log.Printf("generate request id: %v", err)
			}
			reqID = generated
		}
		if reqID != "" {
			w.Header().Set(RequestIDHeader, reqID)
			r = r.WithContext(requestctx.WithRequestID(r.Context(), reqID))
		}
		next.ServeHTTP(w, r)
	})
}

// requestLocale picks the first parseable Accept-Language tag.
func requestLocale(r *http.Request) string {
	tags, _, err := language.ParseAcceptLanguage(r.Header.Get("Accept-Language"))
	if err != nil || len(tags) == 0 {
		return apperrors.DefaultLocale
	}
	return tags[0].String()
}

func writeError(w http.ResponseWriter, r *http.Request, err error) {
	code := apperrors.GetCode(err)
	status := code.HTTPStatus()
	if status >= http.StatusInternalServerError {
		log.Printf("request_id=%s path=%s error: %v", requestctx.RequestIDFromContext(r.Context()), r.URL.Path, err)
	}
	writeJSON(w, status, errorResponse{
		Code:    string(code),
		Message: apperrors.UserMessage(err, requestLocale(r)),
	})
}

func invalidRequest(reason string, cause error) error {
	return apperrors.WrapWithMetadata(apperrors.CodeRequestInvalid, reason, map[string]string{"reason": reason}, cause)
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		log.Printf("encode response: %v", err)
	}
}
