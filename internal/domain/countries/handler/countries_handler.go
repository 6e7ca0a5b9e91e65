package handler

import (
	"log/slog"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/FACorreiaa/loci-travelbot-api/internal/domain/countries"
	"github.com/FACorreiaa/loci-travelbot-api/internal/domain/countries/presenter"
)

// CountriesHandler serves the /api/countries routes.
type CountriesHandler struct {
	catalog countries.CatalogService
	summary countries.SummaryService
	logger  *slog.Logger
}

func NewCountriesHandler(catalog countries.CatalogService, summary countries.SummaryService, logger *slog.Logger) *CountriesHandler {
	return &CountriesHandler{
		catalog: catalog,
		summary: summary,
		logger:  logger,
	}
}

// Register mounts the routes on r. Fixed paths are registered before the
// {countryName} pattern so they win.
func (h *CountriesHandler) Register(r *mux.Router) {
	s := r.PathPrefix("/api/countries").Subrouter()
	s.HandleFunc("/all", h.GetAll).Methods(http.MethodGet)
	s.HandleFunc("/top5", h.GetTopFive).Methods(http.MethodGet)
	s.HandleFunc("/random", h.GetRandom).Methods(http.MethodGet)
	s.HandleFunc("/{countryName}/sun", h.GetSunTimes).Methods(http.MethodGet)
	s.HandleFunc("/{countryName}", h.GetSummary).Methods(http.MethodGet)
}

func (h *CountriesHandler) GetAll(w http.ResponseWriter, r *http.Request) {
	all, err := h.catalog.GetAll(r.Context())
	h.respond(w, r, "GetAll", all, err)
}

func (h *CountriesHandler) GetTopFive(w http.ResponseWriter, r *http.Request) {
	top, err := h.catalog.GetTopFive(r.Context())
	h.respond(w, r, "GetTopFive", top, err)
}

func (h *CountriesHandler) GetRandom(w http.ResponseWriter, r *http.Request) {
	summary, err := h.summary.GetRandomSouthernSummary(r.Context())
	h.respond(w, r, "GetRandom", summary, err)
}

func (h *CountriesHandler) GetSummary(w http.ResponseWriter, r *http.Request) {
	summary, err := h.summary.GetSummary(r.Context(), mux.Vars(r)["countryName"])
	h.respond(w, r, "GetSummary", summary, err)
}

func (h *CountriesHandler) GetSunTimes(w http.ResponseWriter, r *http.Request) {
	sun, err := h.summary.GetSunTimes(r.Context(), mux.Vars(r)["countryName"])
	h.respond(w, r, "GetSunTimes", sun, err)
}

func (h *CountriesHandler) respond(w http.ResponseWriter, r *http.Request, method string, v any, err error) {
	l := h.logger.With(slog.String("method", method))
	if err != nil {
		status, writeErr := presenter.WriteError(w, err)
		l.WarnContext(r.Context(), "Request failed", slog.Int("status", status), slog.Any("error", err))
		if writeErr != nil {
			l.ErrorContext(r.Context(), "Failed to write error response", slog.Any("error", writeErr))
		}
		return
	}
	if err := presenter.WriteJSON(w, http.StatusOK, v); err != nil {
		l.ErrorContext(r.Context(), "Failed to write response", slog.Any("error", err))
	}
}
