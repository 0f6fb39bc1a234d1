package api

import (
	"net/http"
	"strings"
)

func (s *HTTPServer) handleAuthSession(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	token, err := s.svc.Auth.StartSession(r.Context())
	if err != nil {
		s.writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{
		"token":      token.Token,
		"expires_at": token.ExpiresAt,
	})
}

// handleAuthConfirm привязывает клиента к коду входа. Клиента можно
// указать напрямую (customer_id) либо по телефону или telegram_id —
// так код подтверждает бот от имени уже привязанного пользователя.
func (s *HTTPServer) handleAuthConfirm(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	parts := pathParts(r.URL.Path, "/api/auth/session/")
	if len(parts) != 2 || parts[1] != "confirm" {
		writeError(w, http.StatusNotFound, "not found")
		return
	}
	token := strings.TrimSpace(parts[0])
	if token == "" {
		writeError(w, http.StatusBadRequest, "token is required")
		return
	}

	var req struct {
		CustomerID int64  `json:"customer_id"`
		Phone      string `json:"phone"`
		TelegramID int64  `json:"telegram_id"`
	}
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	customerID := req.CustomerID
	if customerID == 0 && req.Phone != "" {
		customer, err := s.svc.Customers.GetCustomerByPhone(r.Context(), req.Phone)
		if err != nil {
			s.writeDomainError(w, err)
			return
		}
		customerID = customer.ID
	}
	if customerID == 0 && req.TelegramID != 0 {
		customer, err := s.svc.Customers.GetCustomerByTelegramID(r.Context(), req.TelegramID)
		if err != nil {
			s.writeDomainError(w, err)
			return
		}
		customerID = customer.ID
	}
	if customerID == 0 {
		writeError(w, http.StatusBadRequest, "customer_id, phone or telegram_id is required")
		return
	}

	if err := s.svc.Auth.ConfirmSession(r.Context(), token, customerID); err != nil {
		s.writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"confirmed": true})
}

func (s *HTTPServer) handleVerifyToken(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	var req struct {
		Token string `json:"token"`
	}
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if strings.TrimSpace(req.Token) == "" {
		writeError(w, http.StatusBadRequest, "token is required")
		return
	}

	customer, err := s.svc.Auth.VerifyToken(r.Context(), strings.TrimSpace(req.Token))
	if err != nil {
		s.writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, customer)
}

func (s *HTTPServer) handleAuthMe(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	customerID, err := parseID(strings.TrimSpace(r.Header.Get("x-customer-id")))
	if err != nil {
		writeError(w, http.StatusUnauthorized, "x-customer-id header is required")
		return
	}

	customer, err := s.svc.Customers.GetCustomer(r.Context(), customerID)
	if err != nil {
		s.writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, customer)
}
