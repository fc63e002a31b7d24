//go:build unit

package scanner_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"nightgate/internal/domain/scan"
	"nightgate/internal/scanner"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHTTPVerifierRoutesByCredentialKind(t *testing.T) {
	scannedAt := time.Date(2025, 6, 1, 23, 10, 0, 0, time.UTC)

	type seen struct {
		path       string
		auth       string
		credential string
		method     string
	}
	var got seen

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body struct {
			Credential string    `json:"credential"`
			Method     string    `json:"method"`
			ScannedAt  time.Time `json:"scanned_at"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		got = seen{path: r.URL.Path, auth: r.Header.Get("Authorization"), credential: body.Credential, method: body.Method}

		w.Header().Set("Content-Type", "application/json")
		if r.URL.Path == "/api/scans/guest-passes" {
			json.NewEncoder(w).Encode(map[string]any{"success": true, "checked_in_at": scannedAt})
			return
		}
		json.NewEncoder(w).Encode(map[string]any{"success": true, "scanned_at": scannedAt})
	}))
	defer srv.Close()

	verifier := scanner.NewHTTPVerifier(srv.URL, "device-jwt")

	tests := []struct {
		name     string
		entry    scanner.QueueEntry
		wantPath string
	}{
		{
			name:     "ticket replays through the scan endpoint",
			entry:    scanner.QueueEntry{Kind: scanner.KindTicket, Credential: "tkt_a.sig", ScannedAt: scannedAt, DeviceID: "gate-1"},
			wantPath: "/api/scans",
		},
		{
			name:     "guest pass replays through the check-in endpoint",
			entry:    scanner.QueueEntry{Kind: scanner.KindGuestPass, Credential: "gp_a.sig", ScannedAt: scannedAt, DeviceID: "gate-1"},
			wantPath: "/api/scans/guest-passes",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, err := verifier.Verify(context.Background(), tt.entry)

			require.NoError(t, err)
			assert.True(t, resp.Success)
			require.NotNil(t, resp.ScannedAt)
			assert.True(t, resp.ScannedAt.Equal(scannedAt))

			assert.Equal(t, tt.wantPath, got.path)
			assert.Equal(t, "Bearer device-jwt", got.auth)
			// The payload crosses the wire exactly as queued, signature intact.
			assert.Equal(t, tt.entry.Credential, got.credential)
			assert.Equal(t, scan.MethodQR.String(), got.method)
		})
	}
}

func TestHTTPVerifierRejectionCarriesServerScanTime(t *testing.T) {
	serverScan := time.Date(2025, 6, 1, 22, 0, 0, 0, time.UTC)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]any{
			"success": false, "reason": "already_scanned", "scanned_at": serverScan,
		})
	}))
	defer srv.Close()

	verifier := scanner.NewHTTPVerifier(srv.URL, "device-jwt")
	resp, err := verifier.Verify(context.Background(), scanner.QueueEntry{Kind: scanner.KindTicket, Credential: "tkt_a.sig"})

	require.NoError(t, err)
	assert.False(t, resp.Success)
	assert.Equal(t, scan.ReasonAlreadyScanned, resp.Reason)
	require.NotNil(t, resp.ScannedAt)
	assert.True(t, resp.ScannedAt.Equal(serverScan))
}

func TestHTTPVerifierServerErrorIsTransient(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	verifier := scanner.NewHTTPVerifier(srv.URL, "device-jwt")
	_, err := verifier.Verify(context.Background(), scanner.QueueEntry{Kind: scanner.KindTicket, Credential: "tkt_a.sig"})

	assert.Error(t, err)
}

func TestHTTPSnapshotSourceFetchesEventFeed(t *testing.T) {
	eventID := "8c2b8f07-3f8e-4a35-b6a1-000000000001"
	scannedAt := time.Date(2025, 6, 1, 22, 30, 0, 0, time.UTC)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/events/"+eventID+"/snapshot", r.URL.Path)
		assert.Equal(t, "Bearer device-jwt", r.Header.Get("Authorization"))

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode([]map[string]any{
			{"kind": "ticket", "credential_id": "t-1", "token": "tkt_a", "status": "issued", "re_entry_allowed": false},
			{"kind": "guest_pass", "credential_id": "gp-1", "token": "gp_a", "status": "checked_in", "scanned_at": scannedAt, "re_entry_allowed": true},
		})
	}))
	defer srv.Close()

	source := scanner.NewHTTPSnapshotSource(srv.URL, "device-jwt", eventID)
	creds, err := source.FetchSnapshot(context.Background())

	require.NoError(t, err)
	require.Len(t, creds, 2)

	assert.Equal(t, scanner.KindTicket, creds[0].Kind)
	assert.Equal(t, "tkt_a", creds[0].Token)

	assert.Equal(t, scanner.KindGuestPass, creds[1].Kind)
	assert.Equal(t, "gp-1", creds[1].CredentialID)
	assert.True(t, creds[1].ReEntryAllowed)
	require.NotNil(t, creds[1].ScannedAt)
	assert.True(t, creds[1].ScannedAt.Equal(scannedAt))
}
