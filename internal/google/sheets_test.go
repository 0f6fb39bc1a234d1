package google

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"kladovka/internal/models"
)

func TestRentalRowValues(t *testing.T) {
	start := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2025, 9, 1, 0, 0, 0, 0, time.UTC)
	createdAt := time.Date(2025, 2, 28, 10, 0, 0, 0, time.UTC)
	updatedAt := time.Date(2025, 3, 2, 11, 30, 0, 0, time.UTC)

	rental := &models.Rental{
		ID:              42,
		CellNumber:      "A-01",
		CustomerName:    "Иван Петров",
		StartDate:       start,
		EndDate:         end,
		Months:          6,
		MonthlyPrice:    1090,
		DiscountPercent: 10,
		TotalAmount:     5886,
		Status:          "active",
		CreatedAt:       createdAt,
		UpdatedAt:       updatedAt,
	}

	values := rentalRowValues(rental)

	expected := []interface{}{
		int64(42),
		"A-01",
		"Иван Петров",
		"2025-03-01",
		"2025-09-01",
		int64(6),
		int64(1090),
		int64(10),
		int64(5886),
		"active",
		"2025-02-28 10:00:00",
		"2025-03-02 11:30:00",
	}

	if len(values) != len(expected) {
		t.Fatalf("Expected %d values, got %d", len(expected), len(values))
	}

	for i, v := range values {
		if v != expected[i] {
			t.Errorf("At index %d: expected %v, got %v", i, expected[i], v)
		}
	}
}

func TestCacheOperations(t *testing.T) {
	s := &SheetsService{
		rowCache: make(map[int64]int),
	}

	s.setCachedRow(10, 3)
	if row, ok := s.getCachedRow(10); !ok || row != 3 {
		t.Errorf("expected cached row 3, got %d (ok=%v)", row, ok)
	}

	s.deleteCacheRow(10)
	if _, ok := s.getCachedRow(10); ok {
		t.Errorf("expected row removed from cache")
	}

	s.setCachedRow(11, 4)
	s.ClearCache()
	if _, ok := s.getCachedRow(11); ok {
		t.Errorf("expected cache cleared")
	}
}

func TestFindRentalRowCached(t *testing.T) {
	s := &SheetsService{rowCache: make(map[int64]int)}

	// Без ID искать нечего
	if _, err := s.FindRentalRow(context.Background(), 0); err == nil {
		t.Errorf("expected error for zero rental id")
	}

	// Попадание в кэш не требует обращения к API
	s.setCachedRow(7, 12)
	row, err := s.FindRentalRow(context.Background(), 7)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if row != 12 {
		t.Errorf("expected cached row 12, got %d", row)
	}
}

func TestGetServiceAccountEmail(t *testing.T) {
	tmpDir := t.TempDir()
	credsPath := filepath.Join(tmpDir, "creds.json")

	credsJSON := `{"type": "service_account", "client_email": "sync@kladovka.iam.gserviceaccount.com"}`
	if err := os.WriteFile(credsPath, []byte(credsJSON), 0o600); err != nil {
		t.Fatalf("failed to write creds: %v", err)
	}

	s := &SheetsService{}
	email, err := s.GetServiceAccountEmail(credsPath)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if email != "sync@kladovka.iam.gserviceaccount.com" {
		t.Errorf("unexpected email: %s", email)
	}

	if _, err := s.GetServiceAccountEmail(filepath.Join(tmpDir, "missing.json")); err == nil {
		t.Errorf("expected error for missing file")
	}
}
