package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"engrafo/internal/domain"
	"engrafo/internal/sqlinline"
)

func uuidParam(r *http.Request, key string) (string, bool) {
	raw := chi.URLParam(r, key)
	id, err := uuid.Parse(raw)
	if err != nil {
		return "", false
	}
	return id.String(), true
}

type documentDTO struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Category    string    `json:"category"`
	Tags        []string  `json:"tags"`
	ViewCount   int64     `json:"view_count"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func documentToDTO(d *domain.Document) documentDTO {
	tags := d.Tags
	if tags == nil {
		tags = []string{}
	}
	return documentDTO{
		ID:          d.ID,
		Title:       d.Title,
		Description: d.Description,
		Category:    d.Category,
		Tags:        tags,
		ViewCount:   d.ViewCount,
		CreatedAt:   d.CreatedAt,
		UpdatedAt:   d.UpdatedAt,
	}
}

func scanDocument(row interface{ Scan(...any) error }) (*domain.Document, error) {
	var d domain.Document
	if err := row.Scan(&d.ID, &d.Title, &d.Description, &d.Category, &d.Tags,
		&d.StorageKey, &d.ViewCount, &d.CreatedAt, &d.UpdatedAt); err != nil {
		return nil, err
	}
	return &d, nil
}

// DocumentsList is the public catalogue endpoint. Filters are optional
// and combine with AND semantics; empty strings disable them.
func (a *App) DocumentsList(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	category := strings.TrimSpace(q.Get("category"))
	tag := strings.TrimSpace(q.Get("tag"))
	search := strings.TrimSpace(q.Get("q"))

	rows, err := a.SQL.Query(r.Context(), sqlinline.QListDocuments, category, tag, search)
	if err != nil {
		a.Logger.Error().Err(err).Msg("list documents failed")
		a.error(w, http.StatusInternalServerError, "internal", "failed to list documents")
		return
	}
	defer rows.Close()

	items := []documentDTO{}
	for rows.Next() {
		d, err := scanDocument(rows)
		if err != nil {
			a.Logger.Error().Err(err).Msg("scan document row failed")
			continue
		}
		items = append(items, documentToDTO(d))
	}
	a.json(w, http.StatusOK, map[string]any{"items": items})
}

// DocumentsGet returns a single document's public metadata. The
// storage key never leaves the admin surface.
func (a *App) DocumentsGet(w http.ResponseWriter, r *http.Request) {
	id, ok := uuidParam(r, "id")
	if !ok {
		a.error(w, http.StatusBadRequest, "bad_request", "invalid document id")
		return
	}
	d, err := scanDocument(a.SQL.QueryRow(r.Context(), sqlinline.QGetDocument, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			a.error(w, http.StatusNotFound, "not_found", "Document not found")
			return
		}
		a.Logger.Error().Err(err).Msg("get document failed")
		a.error(w, http.StatusInternalServerError, "internal", "failed to load document")
		return
	}
	a.json(w, http.StatusOK, documentToDTO(d))
}

// DocumentsIncrementViews bumps the view counter. The count is a
// popularity hint, not an audit trail, so concurrent bumps may race.
func (a *App) DocumentsIncrementViews(w http.ResponseWriter, r *http.Request) {
	id, ok := uuidParam(r, "id")
	if !ok {
		a.error(w, http.StatusBadRequest, "bad_request", "invalid document id")
		return
	}
	var count int64
	if err := a.SQL.QueryRow(r.Context(), sqlinline.QIncrementDocumentViews, id).Scan(&count); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			a.error(w, http.StatusNotFound, "not_found", "Document not found")
			return
		}
		a.Logger.Error().Err(err).Msg("increment views failed")
		a.error(w, http.StatusInternalServerError, "internal", "failed to update view count")
		return
	}
	a.json(w, http.StatusOK, map[string]any{"view_count": count})
}

const maxUploadBytes = 64 << 20

// AdminDocumentCreate accepts a multipart upload: the file part plus
// metadata fields. The file is written to storage first so a failed
// insert leaves no database row pointing at nothing.
func (a *App) AdminDocumentCreate(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		a.error(w, http.StatusBadRequest, "bad_request", "invalid multipart payload")
		return
	}
	title := strings.TrimSpace(r.FormValue("title"))
	if title == "" {
		a.error(w, http.StatusBadRequest, "bad_request", "title is required")
		return
	}
	description := r.FormValue("description")
	category := strings.TrimSpace(r.FormValue("category"))
	tags := splitTags(r.FormValue("tags"))

	file, header, err := r.FormFile("file")
	if err != nil {
		a.error(w, http.StatusBadRequest, "bad_request", "file part is required")
		return
	}
	defer file.Close()

	data, err := io.ReadAll(io.LimitReader(file, maxUploadBytes))
	if err != nil {
		a.error(w, http.StatusBadRequest, "bad_request", "failed to read file")
		return
	}

	storageKey := uuid.NewString() + strings.ToLower(filepath.Ext(header.Filename))
	if _, err := a.Store.Write(r.Context(), storageKey, data); err != nil {
		a.Logger.Error().Err(err).Msg("store document file failed")
		a.error(w, http.StatusInternalServerError, "internal", "failed to store file")
		return
	}

	row := a.SQL.QueryRow(r.Context(), sqlinline.QInsertDocument,
		title, description, category, tags, storageKey)
	var id string
	var createdAt time.Time
	if err := row.Scan(&id, &createdAt); err != nil {
		a.Logger.Error().Err(err).Msg("insert document failed")
		if rmErr := a.Store.Remove(r.Context(), storageKey); rmErr != nil {
			a.Logger.Error().Err(rmErr).Str("storage_key", storageKey).Msg("orphan file cleanup failed")
		}
		a.error(w, http.StatusInternalServerError, "internal", "failed to create document")
		return
	}

	a.json(w, http.StatusCreated, map[string]any{
		"id":         id,
		"title":      title,
		"created_at": createdAt,
	})
}

type documentUpdateRequest struct {
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Category    string   `json:"category"`
	Tags        []string `json:"tags"`
}

// AdminDocumentUpdate replaces the metadata fields. The file itself is
// immutable; replacing content means deleting and re-uploading.
func (a *App) AdminDocumentUpdate(w http.ResponseWriter, r *http.Request) {
	id, ok := uuidParam(r, "id")
	if !ok {
		a.error(w, http.StatusBadRequest, "bad_request", "invalid document id")
		return
	}
	var req documentUpdateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		a.error(w, http.StatusBadRequest, "bad_request", "invalid payload")
		return
	}
	if strings.TrimSpace(req.Title) == "" {
		a.error(w, http.StatusBadRequest, "bad_request", "title is required")
		return
	}
	tags := req.Tags
	if tags == nil {
		tags = []string{}
	}

	row := a.SQL.QueryRow(r.Context(), sqlinline.QUpdateDocument,
		id, req.Title, req.Description, req.Category, tags)
	var updatedAt time.Time
	if err := row.Scan(&updatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			a.error(w, http.StatusNotFound, "not_found", "Document not found")
			return
		}
		a.Logger.Error().Err(err).Msg("update document failed")
		a.error(w, http.StatusInternalServerError, "internal", "failed to update document")
		return
	}
	a.json(w, http.StatusOK, map[string]any{
		"id":         id,
		"updated_at": updatedAt,
	})
}

// AdminDocumentDelete removes the row and then the file. A storage
// failure after the row is gone is logged and swallowed: the deletion
// must win over storage drift.
func (a *App) AdminDocumentDelete(w http.ResponseWriter, r *http.Request) {
	id, ok := uuidParam(r, "id")
	if !ok {
		a.error(w, http.StatusBadRequest, "bad_request", "invalid document id")
		return
	}
	var storageKey string
	if err := a.SQL.QueryRow(r.Context(), sqlinline.QDeleteDocument, id).Scan(&storageKey); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			a.error(w, http.StatusNotFound, "not_found", "Document not found")
			return
		}
		a.Logger.Error().Err(err).Msg("delete document failed")
		a.error(w, http.StatusInternalServerError, "internal", "failed to delete document")
		return
	}
	if err := a.Store.Remove(r.Context(), storageKey); err != nil {
		a.Logger.Error().Err(err).Str("storage_key", storageKey).Msg("remove document file failed")
	}
	a.json(w, http.StatusOK, map[string]any{"success": true})
}

// AdminDocumentFile streams the stored file itself. Donors go through
// the resolver and the public file mount; this is the operator's direct
// line to the bytes.
func (a *App) AdminDocumentFile(w http.ResponseWriter, r *http.Request) {
	id, ok := uuidParam(r, "id")
	if !ok {
		a.error(w, http.StatusBadRequest, "bad_request", "invalid document id")
		return
	}
	var docID, title, storageKey string
	if err := a.SQL.QueryRow(r.Context(), sqlinline.QGetDocumentPointer, id).Scan(&docID, &title, &storageKey); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			a.error(w, http.StatusNotFound, "not_found", "Document not found")
			return
		}
		a.Logger.Error().Err(err).Msg("get document pointer failed")
		a.error(w, http.StatusInternalServerError, "internal", "failed to load document")
		return
	}
	f, err := a.Store.Open(r.Context(), storageKey)
	if err != nil {
		a.Logger.Error().Err(err).Str("storage_key", storageKey).Msg("open stored file failed")
		a.error(w, http.StatusNotFound, "not_found", "File not found")
		return
	}
	defer f.Close()

	fi, err := f.Stat()
	if err != nil {
		a.Logger.Error().Err(err).Str("storage_key", storageKey).Msg("stat stored file failed")
		a.error(w, http.StatusInternalServerError, "internal", "failed to read file")
		return
	}
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filepath.Base(storageKey)))
	http.ServeContent(w, r, storageKey, fi.ModTime(), f)
}

func splitTags(raw string) []string {
	parts := strings.Split(raw, ",")
	tags := []string{}
	for _, p := range parts {
		if t := strings.TrimSpace(p); t != "" {
			tags = append(tags, t)
		}
	}
	return tags
}
