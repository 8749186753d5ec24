package web

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/JonMunkholm/csvsearch/internal/resource"
)

func TestRespondError(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   string
		wantLevel  string
		wantMapped bool
	}{
		{
			name:       "known error keeps technical detail in the log",
			err:        fmt.Errorf("stat ghost.csv: %w", resource.ErrNotFound),
			wantStatus: http.StatusNotFound,
			wantCode:   "FILE002",
			wantLevel:  "WARN",
			wantMapped: true,
		},
		{
			name:       "unknown error falls back",
			err:        errors.New("disk on fire"),
			wantStatus: http.StatusInternalServerError,
			wantCode:   "ERR000",
			wantLevel:  "ERROR",
			wantMapped: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			prev := slog.Default()
			slog.SetDefault(slog.New(slog.NewJSONHandler(&buf, nil)))
			defer slog.SetDefault(prev)

			s := &Server{}
			rec := httptest.NewRecorder()
			s.respondError(rec, httptest.NewRequest(http.MethodGet, "/viewcsv", nil), tt.err)

			if rec.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d", rec.Code, tt.wantStatus)
			}
			var resp errorResponse
			if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
				t.Fatalf("decode response: %v", err)
			}
			if resp.Code != tt.wantCode {
				t.Errorf("code = %q, want %q", resp.Code, tt.wantCode)
			}

			var entry map[string]any
			if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
				t.Fatalf("decode log: %v (%s)", err, buf.String())
			}
			if entry["level"] != tt.wantLevel {
				t.Errorf("level = %v, want %s", entry["level"], tt.wantLevel)
			}
			if entry["error"] != tt.err.Error() {
				t.Errorf("logged error = %v, want %q", entry["error"], tt.err.Error())
			}
			if entry["user_message"] != resp.Message {
				t.Errorf("logged user_message = %v, want %q", entry["user_message"], resp.Message)
			}
			if entry["mapped"] != tt.wantMapped {
				t.Errorf("mapped = %v, want %v", entry["mapped"], tt.wantMapped)
			}
		})
	}
}
