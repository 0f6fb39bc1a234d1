package api

import (
	"net/http"
	"strings"

	"kladovka/internal/database"
	"kladovka/internal/models"
)

func (s *HTTPServer) handleCustomers(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		filter := database.CustomerFilter{
			Query: strings.TrimSpace(r.URL.Query().Get("q")),
			Type:  strings.TrimSpace(r.URL.Query().Get("type")),
		}
		customers, err := s.svc.Customers.SearchCustomers(r.Context(), filter)
		if err != nil {
			s.writeDomainError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"customers": customers})
	case http.MethodPost:
		var customer models.Customer
		if err := decodeBody(r, &customer); err != nil {
			writeError(w, http.StatusBadRequest, "invalid JSON body")
			return
		}
		if err := s.svc.Customers.CreateCustomer(r.Context(), &customer); err != nil {
			s.writeDomainError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, customer)
	default:
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
	}
}

func (s *HTTPServer) handleCustomerByID(w http.ResponseWriter, r *http.Request) {
	parts := pathParts(r.URL.Path, "/api/customers/")
	if len(parts) != 1 {
		writeError(w, http.StatusNotFound, "not found")
		return
	}

	customerID, err := parseID(parts[0])
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	switch r.Method {
	case http.MethodGet:
		customer, err := s.svc.Customers.GetCustomer(r.Context(), customerID)
		if err != nil {
			s.writeDomainError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, customer)
	case http.MethodPut:
		var upd database.CustomerUpdate
		if err := decodeBody(r, &upd); err != nil {
			writeError(w, http.StatusBadRequest, "invalid JSON body")
			return
		}
		if err := s.svc.Customers.UpdateCustomer(r.Context(), customerID, upd); err != nil {
			s.writeDomainError(w, err)
			return
		}
		customer, err := s.svc.Customers.GetCustomer(r.Context(), customerID)
		if err != nil {
			s.writeDomainError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, customer)
	case http.MethodDelete:
		if err := s.svc.Customers.DeleteCustomer(r.Context(), customerID); err != nil {
			s.writeDomainError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"deleted": customerID})
	default:
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
	}
}
