package api

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"kladovka/internal/database"
)

type createRentalRequest struct {
	CellID     int64  `json:"cell_id"`
	CustomerID int64  `json:"customer_id"`
	StartDate  string `json:"start_date"`
	Months     int    `json:"months"`
	AutoRenew  bool   `json:"auto_renew"`
	Notes      string `json:"notes"`
}

func (s *HTTPServer) handleRentals(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		s.listRentals(w, r)
	case http.MethodPost:
		s.createRental(w, r)
	default:
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
	}
}

func (s *HTTPServer) listRentals(w http.ResponseWriter, r *http.Request) {
	filter := database.RentalFilter{
		Status: strings.TrimSpace(r.URL.Query().Get("status")),
	}
	if raw := r.URL.Query().Get("customer_id"); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid customer_id")
			return
		}
		filter.CustomerID = id
	}
	if raw := r.URL.Query().Get("cell_id"); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid cell_id")
			return
		}
		filter.CellID = id
	}

	rentals, err := s.svc.Rentals.GetRentals(r.Context(), filter)
	if err != nil {
		s.writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"rentals": rentals})
}

func (s *HTTPServer) createRental(w http.ResponseWriter, r *http.Request) {
	var req createRentalRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if req.CellID <= 0 || req.CustomerID <= 0 {
		writeError(w, http.StatusBadRequest, "cell_id and customer_id are required")
		return
	}

	var startDate time.Time
	if req.StartDate != "" {
		var err error
		startDate, err = time.Parse("2006-01-02", req.StartDate)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid start_date format; expected YYYY-MM-DD")
			return
		}
	}

	rental, err := s.svc.Rentals.CreateRental(r.Context(), req.CellID, req.CustomerID, startDate, req.Months, req.AutoRenew, req.Notes)
	if err != nil {
		s.writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, rental)
}

func (s *HTTPServer) handleRentalSubtree(w http.ResponseWriter, r *http.Request) {
	parts := pathParts(r.URL.Path, "/api/rentals/")
	if len(parts) == 0 {
		writeError(w, http.StatusNotFound, "not found")
		return
	}

	rentalID, err := parseID(parts[0])
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	switch {
	case len(parts) == 1:
		s.handleRentalByID(w, r, rentalID)
	case len(parts) == 2 && parts[1] == "extend":
		s.extendRental(w, r, rentalID)
	case len(parts) == 2 && parts[1] == "release":
		s.releaseRental(w, r, rentalID)
	default:
		writeError(w, http.StatusNotFound, "not found")
	}
}

func (s *HTTPServer) handleRentalByID(w http.ResponseWriter, r *http.Request, rentalID int64) {
	switch r.Method {
	case http.MethodGet:
		rental, err := s.svc.Rentals.GetRental(r.Context(), rentalID)
		if err != nil {
			s.writeDomainError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, rental)
	case http.MethodDelete:
		if err := s.svc.Rentals.DeleteRental(r.Context(), rentalID); err != nil {
			s.writeDomainError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"deleted": rentalID})
	default:
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
	}
}

func (s *HTTPServer) extendRental(w http.ResponseWriter, r *http.Request, rentalID int64) {
	if r.Method != http.MethodPut {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	var req struct {
		Months int `json:"months"`
	}
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	rental, err := s.svc.Rentals.ExtendRental(r.Context(), rentalID, req.Months)
	if err != nil {
		s.writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, rental)
}

func (s *HTTPServer) releaseRental(w http.ResponseWriter, r *http.Request, rentalID int64) {
	if r.Method != http.MethodPut {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	rental, err := s.svc.Rentals.ReleaseRental(r.Context(), rentalID)
	if err != nil {
		s.writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, rental)
}
