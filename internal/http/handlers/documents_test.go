package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http/httptest"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"

	"engrafo/internal/sqlinline"
	"engrafo/internal/storage"
)

type documentRows struct {
	TestRowsBase
	rows [][]any
	idx  int
}

func (d *documentRows) Next() bool {
	if d.idx >= len(d.rows) {
		return false
	}
	d.idx++
	return true
}

func (d *documentRows) Scan(dest ...any) error {
	if d.idx == 0 || d.idx > len(d.rows) {
		return pgx.ErrNoRows
	}
	row := d.rows[d.idx-1]
	*dest[0].(*string) = row[0].(string)
	*dest[1].(*string) = row[1].(string)
	*dest[2].(*string) = row[2].(string)
	*dest[3].(*string) = row[3].(string)
	*dest[4].(*[]string) = row[4].([]string)
	*dest[5].(*string) = row[5].(string)
	*dest[6].(*int64) = row[6].(int64)
	*dest[7].(*time.Time) = row[7].(time.Time)
	*dest[8].(*time.Time) = row[8].(time.Time)
	return nil
}

func (d *documentRows) Err() error { return nil }

func (d *documentRows) Close() {}

func TestDocumentsList_PassesFilters(t *testing.T) {
	now := time.Now()
	app := testApp(&scriptedSQL{
		query: func(query string, args []any) (pgx.Rows, error) {
			if query != sqlinline.QListDocuments {
				t.Fatalf("unexpected query: %s", query)
			}
			if args[0] != "contracts" || args[1] != "rental" || args[2] != "agreement" {
				t.Fatalf("unexpected filter args: %v", args)
			}
			return &documentRows{rows: [][]any{
				{"doc-1", "Rental agreement", "A template", "contracts", []string{"rental"}, "rental.pdf", int64(7), now, now},
			}}, nil
		},
	})

	rr := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/documents?category=contracts&tag=rental&q=agreement", nil)
	app.DocumentsList(rr, req)

	if rr.Code != 200 {
		t.Fatalf("unexpected status: got %d, want 200: %s", rr.Code, rr.Body.String())
	}
	var payload struct {
		Items []documentDTO `json:"items"`
	}
	if err := json.NewDecoder(rr.Body).Decode(&payload); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if len(payload.Items) != 1 {
		t.Fatalf("expected 1 document, got %d", len(payload.Items))
	}
	if payload.Items[0].ViewCount != 7 {
		t.Fatalf("unexpected view count: %d", payload.Items[0].ViewCount)
	}
}

func TestDocumentsGet_RejectsMalformedID(t *testing.T) {
	app := testApp(&scriptedSQL{})

	rr := httptest.NewRecorder()
	req := withURLParam(httptest.NewRequest("GET", "/documents/not-a-uuid", nil), "id", "not-a-uuid")
	app.DocumentsGet(rr, req)

	if rr.Code != 400 {
		t.Fatalf("unexpected status: got %d, want 400", rr.Code)
	}
}

func TestDocumentsIncrementViews(t *testing.T) {
	id := "11111111-2222-3333-4444-555555555555"
	app := testApp(&scriptedSQL{
		queryRow: func(query string, args []any) pgx.Row {
			if query != sqlinline.QIncrementDocumentViews {
				t.Fatalf("unexpected query: %s", query)
			}
			if args[0] != id {
				t.Fatalf("unexpected id: %v", args[0])
			}
			return NewSimpleRow(func(dest ...any) error {
				*dest[0].(*int64) = 8
				return nil
			})
		},
	})

	rr := httptest.NewRecorder()
	req := withURLParam(httptest.NewRequest("POST", "/documents/"+id+"/views", nil), "id", id)
	app.DocumentsIncrementViews(rr, req)

	if rr.Code != 200 {
		t.Fatalf("unexpected status: got %d, want 200: %s", rr.Code, rr.Body.String())
	}
	var payload struct {
		ViewCount int64 `json:"view_count"`
	}
	if err := json.NewDecoder(rr.Body).Decode(&payload); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if payload.ViewCount != 8 {
		t.Fatalf("unexpected view count: %d", payload.ViewCount)
	}
}

func TestAdminDocumentCreate_WritesFileAndRow(t *testing.T) {
	dir, err := os.MkdirTemp("", "engrafo-docs")
	if err != nil {
		t.Fatalf("temp dir: %v", err)
	}
	defer os.RemoveAll(dir)

	var insertedKey string
	app := testApp(&scriptedSQL{
		queryRow: func(query string, args []any) pgx.Row {
			if query != sqlinline.QInsertDocument {
				t.Fatalf("unexpected query: %s", query)
			}
			if args[0] != "Rental agreement" {
				t.Fatalf("unexpected title: %v", args[0])
			}
			tags := args[3].([]string)
			if len(tags) != 2 || tags[0] != "rental" || tags[1] != "housing" {
				t.Fatalf("unexpected tags: %v", tags)
			}
			insertedKey = args[4].(string)
			return NewSimpleRow(func(dest ...any) error {
				*dest[0].(*string) = "doc-1"
				*dest[1].(*time.Time) = time.Now()
				return nil
			})
		},
	})
	store, err := storage.NewFileStore(dir)
	if err != nil {
		t.Fatalf("file store: %v", err)
	}
	app.Store = store

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	_ = mw.WriteField("title", "Rental agreement")
	_ = mw.WriteField("category", "contracts")
	_ = mw.WriteField("tags", "rental, housing,")
	fw, _ := mw.CreateFormFile("file", "rental.pdf")
	_, _ = fw.Write([]byte("%PDF-1.4 test"))
	_ = mw.Close()

	rr := httptest.NewRecorder()
	req := httptest.NewRequest("POST", "/admin/documents", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	app.AdminDocumentCreate(rr, req)

	if rr.Code != 201 {
		t.Fatalf("unexpected status: got %d, want 201: %s", rr.Code, rr.Body.String())
	}
	if insertedKey == "" {
		t.Fatal("expected a storage key")
	}
	if !strings.HasSuffix(insertedKey, ".pdf") {
		t.Fatalf("storage key should keep the extension: %q", insertedKey)
	}
	f, err := store.Open(req.Context(), insertedKey)
	if err != nil {
		t.Fatalf("stored file missing: %v", err)
	}
	f.Close()
}

func TestAdminDocumentCreate_RequiresTitle(t *testing.T) {
	app := testApp(&scriptedSQL{})

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, _ := mw.CreateFormFile("file", "rental.pdf")
	_, _ = fw.Write([]byte("x"))
	_ = mw.Close()

	rr := httptest.NewRecorder()
	req := httptest.NewRequest("POST", "/admin/documents", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	app.AdminDocumentCreate(rr, req)

	if rr.Code != 400 {
		t.Fatalf("unexpected status: got %d, want 400", rr.Code)
	}
}

func TestAdminDocumentDelete_RemovesStoredFile(t *testing.T) {
	dir, err := os.MkdirTemp("", "engrafo-docs")
	if err != nil {
		t.Fatalf("temp dir: %v", err)
	}
	defer os.RemoveAll(dir)

	store, err := storage.NewFileStore(dir)
	if err != nil {
		t.Fatalf("file store: %v", err)
	}
	if _, err := store.Write(context.Background(), "doomed.pdf", []byte("bye")); err != nil {
		t.Fatalf("seed file: %v", err)
	}

	id := "11111111-2222-3333-4444-555555555555"
	app := testApp(&scriptedSQL{
		queryRow: func(query string, args []any) pgx.Row {
			if query != sqlinline.QDeleteDocument {
				t.Fatalf("unexpected query: %s", query)
			}
			return NewSimpleRow(func(dest ...any) error {
				*dest[0].(*string) = "doomed.pdf"
				return nil
			})
		},
	})
	app.Store = store

	rr := httptest.NewRecorder()
	req := withURLParam(httptest.NewRequest("DELETE", "/admin/documents/"+id, nil), "id", id)
	app.AdminDocumentDelete(rr, req)

	if rr.Code != 200 {
		t.Fatalf("unexpected status: got %d, want 200: %s", rr.Code, rr.Body.String())
	}
	if _, err := store.Open(req.Context(), "doomed.pdf"); err == nil {
		t.Fatal("file should be gone")
	}
}

func TestSplitTags(t *testing.T) {
	got := splitTags(" a, b ,, c ")
	if len(got) != 3 || got[0] != "a" || got[1] != "b" || got[2] != "c" {
		t.Fatalf("unexpected tags: %v", got)
	}
	if got := splitTags(""); len(got) != 0 {
		t.Fatalf("expected no tags, got %v", got)
	}
}
