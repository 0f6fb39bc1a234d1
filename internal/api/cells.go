package api

import (
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"kladovka/internal/database"
	"kladovka/internal/models"

	"github.com/google/uuid"
)

func (s *HTTPServer) handleCells(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		s.listCells(w, r)
	case http.MethodPost:
		s.createCell(w, r)
	default:
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
	}
}

func (s *HTTPServer) handleCellSubtree(w http.ResponseWriter, r *http.Request) {
	parts := pathParts(r.URL.Path, "/api/cells/")
	if len(parts) == 0 {
		writeError(w, http.StatusNotFound, "not found")
		return
	}

	cellID, err := parseID(parts[0])
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	switch {
	case len(parts) == 1:
		s.handleCellByID(w, r, cellID)
	case len(parts) == 2 && parts[1] == "quote":
		s.handleQuote(w, r, cellID)
	case len(parts) == 2 && parts[1] == "status":
		s.handleCellStatus(w, r, cellID)
	case len(parts) == 2 && parts[1] == "photos":
		s.handleCellPhotos(w, r, cellID)
	case len(parts) == 3 && parts[1] == "photos":
		photoID, err := parseID(parts[2])
		if err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		s.handleCellPhotoByID(w, r, cellID, photoID)
	default:
		writeError(w, http.StatusNotFound, "not found")
	}
}

func (s *HTTPServer) listCells(w http.ResponseWriter, r *http.Request) {
	filter := database.CellFilter{
		Status: strings.TrimSpace(r.URL.Query().Get("status")),
	}
	if raw := r.URL.Query().Get("floor"); raw != "" {
		floor, err := strconv.Atoi(raw)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid floor")
			return
		}
		filter.Floor = &floor
	}
	if raw := r.URL.Query().Get("min_volume"); raw != "" {
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid min_volume")
			return
		}
		filter.MinVolume = v
	}
	if raw := r.URL.Query().Get("max_price"); raw != "" {
		p, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid max_price")
			return
		}
		filter.MaxPrice = p
	}

	cells, err := s.svc.Cells.GetCells(r.Context(), filter)
	if err != nil {
		s.writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"cells": cells})
}

func (s *HTTPServer) createCell(w http.ResponseWriter, r *http.Request) {
	var cell models.Cell
	if err := decodeBody(r, &cell); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	if err := s.svc.Cells.CreateCell(r.Context(), &cell); err != nil {
		s.writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, cell)
}

func (s *HTTPServer) handleCellByID(w http.ResponseWriter, r *http.Request, cellID int64) {
	switch r.Method {
	case http.MethodGet:
		cell, err := s.svc.Cells.GetCell(r.Context(), cellID)
		if err != nil {
			s.writeDomainError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, cell)
	case http.MethodPut:
		var cell models.Cell
		if err := decodeBody(r, &cell); err != nil {
			writeError(w, http.StatusBadRequest, "invalid JSON body")
			return
		}
		cell.ID = cellID
		if err := s.svc.Cells.UpdateCell(r.Context(), &cell); err != nil {
			s.writeDomainError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, cell)
	case http.MethodDelete:
		if err := s.svc.Cells.DeleteCell(r.Context(), cellID); err != nil {
			s.writeDomainError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"deleted": cellID})
	default:
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
	}
}

func (s *HTTPServer) handleQuote(w http.ResponseWriter, r *http.Request, cellID int64) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	months, err := strconv.Atoi(r.URL.Query().Get("months"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "months is required")
		return
	}

	quote, err := s.svc.Rentals.Quote(r.Context(), cellID, months)
	if err != nil {
		s.writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, quote)
}

// handleCellStatus вручную переводит ячейку между available и reserved
// (бронь до оформления аренды). Статусом occupied управляет только
// жизненный цикл аренды.
func (s *HTTPServer) handleCellStatus(w http.ResponseWriter, r *http.Request, cellID int64) {
	if r.Method != http.MethodPut {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	var req struct {
		Status        string     `json:"status"`
		ReservedUntil *time.Time `json:"reserved_until,omitempty"`
	}
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	if err := s.svc.Cells.SetCellStatus(r.Context(), cellID, req.Status, req.ReservedUntil); err != nil {
		s.writeDomainError(w, err)
		return
	}

	cell, err := s.svc.Cells.GetCell(r.Context(), cellID)
	if err != nil {
		s.writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, cell)
}

// Допустимые типы фотографий ячеек.
var photoContentTypes = map[string]string{
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".png":  "image/png",
	".webp": "image/webp",
}

func (s *HTTPServer) handleCellPhotos(w http.ResponseWriter, r *http.Request, cellID int64) {
	switch r.Method {
	case http.MethodGet:
		photos, err := s.svc.Repo.GetCellPhotos(r.Context(), cellID)
		if err != nil {
			s.writeDomainError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"photos": photos})
	case http.MethodPost:
		s.uploadCellPhoto(w, r, cellID)
	default:
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
	}
}

func (s *HTTPServer) uploadCellPhoto(w http.ResponseWriter, r *http.Request, cellID int64) {
	if _, err := s.svc.Cells.GetCell(r.Context(), cellID); err != nil {
		s.writeDomainError(w, err)
		return
	}

	maxSize := s.uploads.MaxSizeBytes
	if maxSize <= 0 {
		maxSize = models.MaxPhotoSizeBytes
	}
	r.Body = http.MaxBytesReader(w, r.Body, maxSize+1024)

	if err := r.ParseMultipartForm(maxSize); err != nil {
		writeError(w, http.StatusRequestEntityTooLarge, "photo is too large")
		return
	}

	file, header, err := r.FormFile("photo")
	if err != nil {
		writeError(w, http.StatusBadRequest, "photo file is required")
		return
	}
	defer file.Close()

	if header.Size > maxSize {
		writeError(w, http.StatusRequestEntityTooLarge, "photo is too large")
		return
	}

	ext := strings.ToLower(filepath.Ext(header.Filename))
	contentType, ok := photoContentTypes[ext]
	if !ok {
		writeError(w, http.StatusBadRequest, "unsupported photo format; expected jpg, png or webp")
		return
	}

	if err := os.MkdirAll(s.uploads.Path, 0o755); err != nil {
		s.log.Error().Err(err).Msg("Не удалось создать каталог загрузок")
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}

	fileName := fmt.Sprintf("cell_%d_%s%s", cellID, uuid.New().String(), ext)
	dst, err := os.Create(filepath.Join(s.uploads.Path, fileName))
	if err != nil {
		s.log.Error().Err(err).Msg("Не удалось сохранить фотографию")
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	defer dst.Close()

	written, err := io.Copy(dst, file)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}

	sortOrder, _ := strconv.ParseInt(r.FormValue("sort_order"), 10, 64)
	photo := &models.CellPhoto{
		CellID:      cellID,
		FileName:    fileName,
		ContentType: contentType,
		SizeBytes:   written,
		SortOrder:   sortOrder,
	}
	if err := s.svc.Repo.AddCellPhoto(r.Context(), photo); err != nil {
		s.writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, photo)
}

func (s *HTTPServer) handleCellPhotoByID(w http.ResponseWriter, r *http.Request, cellID, photoID int64) {
	if r.Method != http.MethodDelete {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	photo, err := s.svc.Repo.GetPhotoByID(r.Context(), photoID)
	if err != nil {
		s.writeDomainError(w, err)
		return
	}
	if photo.CellID != cellID {
		writeError(w, http.StatusNotFound, "not found")
		return
	}

	if err := s.svc.Repo.DeleteCellPhoto(r.Context(), photoID); err != nil {
		s.writeDomainError(w, err)
		return
	}

	// Файл на диске удаляем по возможности, запись в БД первична.
	if err := os.Remove(filepath.Join(s.uploads.Path, photo.FileName)); err != nil && !os.IsNotExist(err) {
		s.log.Warn().Err(err).Str("file", photo.FileName).Msg("Не удалось удалить файл фотографии")
	}

	writeJSON(w, http.StatusOK, map[string]any{"deleted": photoID})
}
