package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"kladovka/internal/config"
	"kladovka/internal/database"
	"kladovka/internal/models"
	"kladovka/internal/service"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	testAPIKey   = "test-key"
	testAPIExtra = "test-extra"
)

type apiResponse struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   string          `json:"error"`
}

func newTestDB(t *testing.T) *database.DB {
	t.Helper()
	db, err := database.NewDB(":memory:", zerolog.New(io.Discard))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func newTestHTTPServer(t *testing.T, db *database.DB) *HTTPServer {
	t.Helper()
	logger := zerolog.New(io.Discard)

	cfg := config.APIConfig{
		Enabled: true,
		HTTP:    config.APIHTTPConfig{Enabled: true, Port: 0},
		Auth: config.APIAuthConfig{
			Enabled:      true,
			HeaderAPIKey: "x-api-key",
			HeaderExtra:  "x-api-extra",
			APIKeys: []config.APIClientKey{
				{Key: testAPIKey, Extra: testAPIExtra, Name: "tests"},
			},
		},
		RateLimit: config.APIRateLimitConfig{RPS: 1000, Burst: 1000},
	}
	uploads := config.UploadsConfig{Path: t.TempDir(), MaxSizeBytes: models.MaxPhotoSizeBytes}

	svc := Services{
		Cells:     service.NewCellService(db, &logger),
		Customers: service.NewCustomerService(db, nil, nil, &logger),
		Rentals:   service.NewRentalService(db, nil, nil, 1500, &logger),
		Auth:      service.NewAuthService(db, 0, &logger),
		Repo:      db,
	}
	return NewHTTPServer(cfg, uploads, svc, &logger)
}

func startTestServer(t *testing.T, db *database.DB) *httptest.Server {
	t.Helper()
	server := newTestHTTPServer(t, db)
	ts := httptest.NewServer(server.server.Handler)
	t.Cleanup(ts.Close)
	return ts
}

func doRequest(t *testing.T, method, url, body string, admin bool) *http.Response {
	t.Helper()
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req, err := http.NewRequest(method, url, reader)
	require.NoError(t, err)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	if admin {
		req.Header.Set("x-api-key", testAPIKey)
		req.Header.Set("x-api-extra", testAPIExtra)
	}
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	t.Cleanup(func() { _ = resp.Body.Close() })
	return resp
}

func decodeResponse(t *testing.T, resp *http.Response, dst any) {
	t.Helper()
	var envelope apiResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&envelope))
	require.True(t, envelope.Success, "expected success envelope, got error: %s", envelope.Error)
	if dst != nil {
		require.NoError(t, json.Unmarshal(envelope.Data, dst))
	}
}

func seedCell(t *testing.T, db *database.DB, number string) *models.Cell {
	t.Helper()
	cell := &models.Cell{Number: number, Width: 1.1, Height: 2.2, Depth: 0.3, Floor: 1, MonthlyPrice: 1090}
	require.NoError(t, db.CreateCell(context.Background(), cell))
	return cell
}

func seedCustomer(t *testing.T, db *database.DB) *models.Customer {
	t.Helper()
	customer := &models.Customer{Name: "Анна Смирнова", Phone: "+79990001122"}
	require.NoError(t, db.CreateCustomer(context.Background(), customer))
	return customer
}

func TestListCellsPublic(t *testing.T) {
	db := newTestDB(t)
	seedCell(t, db, "B-02")
	seedCell(t, db, "A-01")
	ts := startTestServer(t, db)

	resp := doRequest(t, http.MethodGet, ts.URL+"/api/cells", "", false)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var body struct {
		Cells []models.Cell `json:"cells"`
	}
	decodeResponse(t, resp, &body)
	require.Len(t, body.Cells, 2)
	assert.Equal(t, "A-01", body.Cells[0].Number)
	assert.Equal(t, "B-02", body.Cells[1].Number)
}

func TestGetCellNotFound(t *testing.T) {
	ts := startTestServer(t, newTestDB(t))

	resp := doRequest(t, http.MethodGet, ts.URL+"/api/cells/999", "", false)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestCreateCellRequiresAPIKey(t *testing.T) {
	ts := startTestServer(t, newTestDB(t))
	body := `{"number":"C-03","width":1.1,"height":2.2,"depth":0.3,"floor":2}`

	resp := doRequest(t, http.MethodPost, ts.URL+"/api/cells", body, false)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	resp = doRequest(t, http.MethodPost, ts.URL+"/api/cells", body, true)
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	var cell models.Cell
	decodeResponse(t, resp, &cell)
	assert.NotZero(t, cell.ID)
	assert.Equal(t, models.CellStatusAvailable, cell.Status)
}

func TestQuoteEndpoint(t *testing.T) {
	db := newTestDB(t)
	cell := seedCell(t, db, "A-01")
	ts := startTestServer(t, db)

	resp := doRequest(t, http.MethodGet, fmt.Sprintf("%s/api/cells/%d/quote?months=6", ts.URL, cell.ID), "", false)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var quote struct {
		MonthlyPrice    int64 `json:"monthly_price"`
		DiscountPercent int64 `json:"discount_percent"`
		TotalAmount     int64 `json:"total_amount"`
	}
	decodeResponse(t, resp, &quote)
	assert.Equal(t, int64(1090), quote.MonthlyPrice)
	assert.Equal(t, int64(10), quote.DiscountPercent)
	assert.Equal(t, int64(5890), quote.TotalAmount)

	resp = doRequest(t, http.MethodGet, fmt.Sprintf("%s/api/cells/%d/quote?months=0", ts.URL, cell.ID), "", false)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestRentalLifecycle(t *testing.T) {
	db := newTestDB(t)
	cell := seedCell(t, db, "A-01")
	customer := seedCustomer(t, db)
	ts := startTestServer(t, db)

	createBody := fmt.Sprintf(`{"cell_id":%d,"customer_id":%d,"start_date":"2026-04-01","months":2}`, cell.ID, customer.ID)
	resp := doRequest(t, http.MethodPost, ts.URL+"/api/rentals", createBody, true)
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	var rental models.Rental
	decodeResponse(t, resp, &rental)
	assert.Equal(t, models.RentalStatusActive, rental.Status)
	assert.Equal(t, cell.Number, rental.CellNumber)

	// Ячейка занята, повторная аренда отклоняется конфликтом
	resp = doRequest(t, http.MethodPost, ts.URL+"/api/rentals", createBody, true)
	assert.Equal(t, http.StatusConflict, resp.StatusCode)

	resp = doRequest(t, http.MethodPut, fmt.Sprintf("%s/api/rentals/%d/extend", ts.URL, rental.ID), `{"months":1}`, true)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var extended models.Rental
	decodeResponse(t, resp, &extended)
	assert.Equal(t, int64(3), extended.Months)

	resp = doRequest(t, http.MethodPut, fmt.Sprintf("%s/api/rentals/%d/release", ts.URL, rental.ID), "", true)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var released models.Rental
	decodeResponse(t, resp, &released)
	assert.Equal(t, models.RentalStatusExpired, released.Status)

	freed, err := db.GetCellByID(context.Background(), cell.ID)
	require.NoError(t, err)
	assert.Equal(t, models.CellStatusAvailable, freed.Status)
}

func TestRentalList(t *testing.T) {
	db := newTestDB(t)
	cell := seedCell(t, db, "A-01")
	customer := seedCustomer(t, db)
	ts := startTestServer(t, db)

	createBody := fmt.Sprintf(`{"cell_id":%d,"customer_id":%d,"months":1}`, cell.ID, customer.ID)
	resp := doRequest(t, http.MethodPost, ts.URL+"/api/rentals", createBody, true)
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	resp = doRequest(t, http.MethodGet, fmt.Sprintf("%s/api/rentals?status=active&customer_id=%d", ts.URL, customer.ID), "", true)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var body struct {
		Rentals []models.Rental `json:"rentals"`
	}
	decodeResponse(t, resp, &body)
	assert.Len(t, body.Rentals, 1)
}

func TestCustomerSearchAndUpdate(t *testing.T) {
	db := newTestDB(t)
	ts := startTestServer(t, db)

	resp := doRequest(t, http.MethodPost, ts.URL+"/api/customers", `{"name":"Анна Смирнова","phone":"+79990001122"}`, true)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	var customer models.Customer
	decodeResponse(t, resp, &customer)

	resp = doRequest(t, http.MethodGet, ts.URL+"/api/customers?q=Анна", "", true)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var list struct {
		Customers []models.Customer `json:"customers"`
	}
	decodeResponse(t, resp, &list)
	require.Len(t, list.Customers, 1)

	// Частичное обновление не затирает остальные поля
	resp = doRequest(t, http.MethodPut, fmt.Sprintf("%s/api/customers/%d", ts.URL, customer.ID), `{"email":"anna@example.com"}`, true)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var updated models.Customer
	decodeResponse(t, resp, &updated)
	assert.Equal(t, "anna@example.com", updated.Email)
	assert.Equal(t, "Анна Смирнова", updated.Name)
}

func TestDeleteCustomerWithActiveRental(t *testing.T) {
	db := newTestDB(t)
	cell := seedCell(t, db, "A-01")
	customer := seedCustomer(t, db)
	ts := startTestServer(t, db)

	createBody := fmt.Sprintf(`{"cell_id":%d,"customer_id":%d,"months":1}`, cell.ID, customer.ID)
	resp := doRequest(t, http.MethodPost, ts.URL+"/api/rentals", createBody, true)
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	resp = doRequest(t, http.MethodDelete, fmt.Sprintf("%s/api/customers/%d", ts.URL, customer.ID), "", true)
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
}

func TestAuthFlow(t *testing.T) {
	db := newTestDB(t)
	customer := seedCustomer(t, db)
	ts := startTestServer(t, db)

	resp := doRequest(t, http.MethodPost, ts.URL+"/api/auth/session", "", false)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	var session struct {
		Token     string    `json:"token"`
		ExpiresAt time.Time `json:"expires_at"`
	}
	decodeResponse(t, resp, &session)
	require.NotEmpty(t, session.Token)

	// Неподтвержденный код обменять нельзя
	resp = doRequest(t, http.MethodPost, ts.URL+"/api/auth/verify-token", fmt.Sprintf(`{"token":%q}`, session.Token), false)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	confirmURL := fmt.Sprintf("%s/api/auth/session/%s/confirm", ts.URL, session.Token)
	resp = doRequest(t, http.MethodPost, confirmURL, fmt.Sprintf(`{"customer_id":%d}`, customer.ID), false)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp = doRequest(t, http.MethodPost, ts.URL+"/api/auth/verify-token", fmt.Sprintf(`{"token":%q}`, session.Token), false)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var got models.Customer
	decodeResponse(t, resp, &got)
	assert.Equal(t, customer.ID, got.ID)

	// Код одноразовый
	resp = doRequest(t, http.MethodPost, ts.URL+"/api/auth/verify-token", fmt.Sprintf(`{"token":%q}`, session.Token), false)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestAuthMe(t *testing.T) {
	db := newTestDB(t)
	customer := seedCustomer(t, db)
	ts := startTestServer(t, db)

	req, err := http.NewRequest(http.MethodGet, ts.URL+"/api/auth/me", nil)
	require.NoError(t, err)
	req.Header.Set("x-customer-id", fmt.Sprintf("%d", customer.ID))
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var got models.Customer
	decodeResponse(t, resp, &got)
	assert.Equal(t, customer.Phone, got.Phone)

	resp = doRequest(t, http.MethodGet, ts.URL+"/api/auth/me", "", false)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestPhotoUploadAndDelete(t *testing.T) {
	db := newTestDB(t)
	cell := seedCell(t, db, "A-01")
	ts := startTestServer(t, db)

	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	part, err := writer.CreateFormFile("photo", "box.png")
	require.NoError(t, err)
	_, err = part.Write([]byte("\x89PNG\r\n\x1a\nfake-image-bytes"))
	require.NoError(t, err)
	require.NoError(t, writer.Close())

	url := fmt.Sprintf("%s/api/cells/%d/photos", ts.URL, cell.ID)
	req, err := http.NewRequest(http.MethodPost, url, &buf)
	require.NoError(t, err)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	req.Header.Set("x-api-key", testAPIKey)
	req.Header.Set("x-api-extra", testAPIExtra)

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	var photo models.CellPhoto
	decodeResponse(t, resp, &photo)
	assert.Equal(t, "image/png", photo.ContentType)
	assert.Equal(t, cell.ID, photo.CellID)

	resp = doRequest(t, http.MethodDelete, fmt.Sprintf("%s/api/cells/%d/photos/%d", ts.URL, cell.ID, photo.ID), "", true)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	photos, err := db.GetCellPhotos(context.Background(), cell.ID)
	require.NoError(t, err)
	assert.Empty(t, photos)
}

func TestPhotoUploadRejectsFormat(t *testing.T) {
	db := newTestDB(t)
	cell := seedCell(t, db, "A-01")
	ts := startTestServer(t, db)

	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	part, err := writer.CreateFormFile("photo", "notes.txt")
	require.NoError(t, err)
	_, err = part.Write([]byte("plain text"))
	require.NoError(t, err)
	require.NoError(t, writer.Close())

	url := fmt.Sprintf("%s/api/cells/%d/photos", ts.URL, cell.ID)
	req, err := http.NewRequest(http.MethodPost, url, &buf)
	require.NoError(t, err)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	req.Header.Set("x-api-key", testAPIKey)
	req.Header.Set("x-api-extra", testAPIExtra)

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestCellStatusEndpoint(t *testing.T) {
	db := newTestDB(t)
	cell := seedCell(t, db, "A-01")
	ts := startTestServer(t, db)

	url := fmt.Sprintf("%s/api/cells/%d/status", ts.URL, cell.ID)

	// Без API-ключа статус менять нельзя
	resp := doRequest(t, http.MethodPut, url, `{"status":"reserved"}`, false)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	until := time.Now().AddDate(0, 0, 2).UTC().Format(time.RFC3339)
	body := fmt.Sprintf(`{"status":"reserved","reserved_until":%q}`, until)
	resp = doRequest(t, http.MethodPut, url, body, true)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var reserved models.Cell
	decodeResponse(t, resp, &reserved)
	assert.Equal(t, models.CellStatusReserved, reserved.Status)
	require.NotNil(t, reserved.ReservedUntil)

	// Снятие брони чистит reserved_until
	resp = doRequest(t, http.MethodPut, url, `{"status":"available"}`, true)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var freed models.Cell
	decodeResponse(t, resp, &freed)
	assert.Equal(t, models.CellStatusAvailable, freed.Status)
	assert.Nil(t, freed.ReservedUntil)

	// Произвольный статус не принимается
	resp = doRequest(t, http.MethodPut, url, `{"status":"occupied"}`, true)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestCellStatusOccupiedCell(t *testing.T) {
	db := newTestDB(t)
	cell := seedCell(t, db, "A-01")
	customer := seedCustomer(t, db)
	ts := startTestServer(t, db)

	createBody := fmt.Sprintf(
		`{"cell_id":%d,"customer_id":%d,"start_date":"2025-06-01","months":1}`,
		cell.ID, customer.ID,
	)
	resp := doRequest(t, http.MethodPost, ts.URL+"/api/rentals", createBody, true)
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	// Занятую ячейку вручную не перевести
	url := fmt.Sprintf("%s/api/cells/%d/status", ts.URL, cell.ID)
	resp = doRequest(t, http.MethodPut, url, `{"status":"available"}`, true)
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
}

func TestWriteDomainErrorMasksAndLogs(t *testing.T) {
	var buf bytes.Buffer
	server := &HTTPServer{log: zerolog.New(&buf)}

	rec := httptest.NewRecorder()
	server.writeDomainError(rec, fmt.Errorf("sqlite disk I/O error"))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	// Клиент видит только общее сообщение
	assert.Contains(t, rec.Body.String(), "internal error")
	assert.NotContains(t, rec.Body.String(), "sqlite")
	// А в лог попадает настоящая причина
	assert.Contains(t, buf.String(), "sqlite disk I/O error")
}

func TestHealthEndpoints(t *testing.T) {
	ts := startTestServer(t, newTestDB(t))

	resp := doRequest(t, http.MethodGet, ts.URL+"/healthz", "", false)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp = doRequest(t, http.MethodGet, ts.URL+"/readyz", "", false)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}
