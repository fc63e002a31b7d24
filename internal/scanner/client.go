package scanner

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"nightgate/internal/domain/scan"
	"nightgate/internal/pkg/errs"
)

const clientTimeout = 15 * time.Second

// HTTPVerifier submits queued scans to the gate server. Ticket scans replay
// through the scan endpoint, guest passes through the check-in endpoint, so
// the replay hits exactly the verification path an online scan would.
type HTTPVerifier struct {
	httpClient *http.Client
	baseURL    string
	authToken  string
}

func NewHTTPVerifier(baseURL, authToken string) *HTTPVerifier {
	return &HTTPVerifier{
		httpClient: &http.Client{Timeout: clientTimeout},
		baseURL:    baseURL,
		authToken:  authToken,
	}
}

type verifyRequest struct {
	Credential string    `json:"credential"`
	Method     string    `json:"method"`
	ScannedAt  time.Time `json:"scanned_at"`
}

type verifyResponse struct {
	Success bool   `json:"success"`
	Reason  string `json:"reason"`
	ReEntry bool   `json:"re_entry"`
	// Ticket scans answer with scanned_at, guest passes with checked_in_at.
	ScannedAt   *time.Time `json:"scanned_at"`
	CheckedInAt *time.Time `json:"checked_in_at"`
}

func (c *HTTPVerifier) Verify(ctx context.Context, entry QueueEntry) (*VerifyResponse, error) {
	payload, err := json.Marshal(verifyRequest{
		Credential: entry.Credential,
		Method:     scan.MethodQR.String(),
		ScannedAt:  entry.ScannedAt,
	})
	if err != nil {
		return nil, errs.Wrap(err, "failed to marshal scan request")
	}

	url := c.baseURL + "/api/scans"
	if entry.Kind == KindGuestPass {
		url = c.baseURL + "/api/scans/guest-passes"
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return nil, errs.Wrap(err, "failed to build scan request")
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.authToken)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, errs.Wrap(err, "scan request failed")
	}
	defer resp.Body.Close()

	// Business rejections come back as 200 with success=false; any other
	// status means the server could not render a verdict.
	if resp.StatusCode != http.StatusOK {
		return nil, errs.Newf("scan endpoint returned status %d", resp.StatusCode)
	}

	var body verifyResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, errs.Wrap(err, "failed to decode scan response")
	}

	serverAt := body.ScannedAt
	if serverAt == nil {
		serverAt = body.CheckedInAt
	}

	return &VerifyResponse{
		Success:   body.Success,
		Reason:    scan.Reason(body.Reason),
		ReEntry:   body.ReEntry,
		ScannedAt: serverAt,
	}, nil
}

var _ VerifierClient = (*HTTPVerifier)(nil)

// HTTPSnapshotSource pulls the admissible-credential snapshot for one event
// from the server's snapshot feed.
type HTTPSnapshotSource struct {
	httpClient *http.Client
	baseURL    string
	authToken  string
	eventID    string
}

func NewHTTPSnapshotSource(baseURL, authToken, eventID string) *HTTPSnapshotSource {
	return &HTTPSnapshotSource{
		httpClient: &http.Client{Timeout: clientTimeout},
		baseURL:    baseURL,
		authToken:  authToken,
		eventID:    eventID,
	}
}

type snapshotEntry struct {
	Kind           string     `json:"kind"`
	CredentialID   string     `json:"credential_id"`
	Token          string     `json:"token"`
	Status         string     `json:"status"`
	ScannedAt      *time.Time `json:"scanned_at"`
	ReEntryAllowed bool       `json:"re_entry_allowed"`
}

func (s *HTTPSnapshotSource) FetchSnapshot(ctx context.Context) ([]CachedCredential, error) {
	url := fmt.Sprintf("%s/api/events/%s/snapshot", s.baseURL, s.eventID)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, errs.Wrap(err, "failed to build snapshot request")
	}
	req.Header.Set("Authorization", "Bearer "+s.authToken)

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, errs.Wrap(err, "snapshot request failed")
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, errs.Newf("snapshot endpoint returned status %d", resp.StatusCode)
	}

	var entries []snapshotEntry
	if err := json.NewDecoder(resp.Body).Decode(&entries); err != nil {
		return nil, errs.Wrap(err, "failed to decode snapshot")
	}

	creds := make([]CachedCredential, len(entries))
	for i, e := range entries {
		creds[i] = CachedCredential{
			Kind:           CredentialKind(e.Kind),
			CredentialID:   e.CredentialID,
			Token:          e.Token,
			Status:         e.Status,
			ScannedAt:      e.ScannedAt,
			ReEntryAllowed: e.ReEntryAllowed,
		}
	}
	return creds, nil
}

var _ SnapshotSource = (*HTTPSnapshotSource)(nil)
