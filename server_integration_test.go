package main

import (
	"encoding/json"
	"net/http"
	"os"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"feriaocr/pkg/ocr/ocrtest"
	"feriaocr/pkg/store"
)

func setupTestServer(t *testing.T) *gin.Engine {
	// integration tests are opt-in. Set DB_DSN_TEST=1 and DB_DSN to run them.
	if os.Getenv("DB_DSN_TEST") != "1" {
		t.Skip("integration tests are disabled; set DB_DSN_TEST=1 to enable")
	}
	st, err := store.Open(os.Getenv("DB_DSN"))
	require.NoError(t, err)
	require.NoError(t, st.Migrate())
	t.Cleanup(func() { _ = st.Close() })

	r, s := newTestRouter(t, ocrtest.Lines("palta", "1 kilo", "$ 3.990"))
	s.store = st
	return r
}

func TestFullFlow(t *testing.T) {
	r := setupTestServer(t)
	tok := token(t)
	name := "int-" + uuid.NewString() + ".png"

	// 1. Extract
	body, ct := multipartBody(t, name, signPNG(t))
	resp := performRequest(r, http.MethodPost, "/extract", body, tok, ct)
	if resp.Code != http.StatusOK {
		t.Fatalf("extract failed status=%d body=%s", resp.Code, resp.Body.String())
	}

	// 2. Fetch by file name
	resp = performRequest(r, http.MethodGet, "/extractions/"+name, nil, tok, "")
	if resp.Code != http.StatusOK {
		t.Fatalf("get failed status=%d body=%s", resp.Code, resp.Body.String())
	}
	var row map[string]any
	_ = json.Unmarshal(resp.Body.Bytes(), &row)
	if row["Price"] != "3990" || row["Product"] != "palta" {
		t.Fatalf("unexpected row: %+v", row)
	}

	// 3. List ok rows
	resp = performRequest(r, http.MethodGet, "/extractions?status=ok&limit=5", nil, tok, "")
	if resp.Code != http.StatusOK {
		t.Fatalf("list failed status=%d body=%s", resp.Code, resp.Body.String())
	}
	var list struct {
		Total int64 `json:"total"`
	}
	_ = json.Unmarshal(resp.Body.Bytes(), &list)
	if list.Total < 1 {
		t.Fatalf("expected at least one row, got %d", list.Total)
	}

	// 4. Unknown file
	resp = performRequest(r, http.MethodGet, "/extractions/missing-"+uuid.NewString()+".png", nil, tok, "")
	if resp.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", resp.Code)
	}
}
