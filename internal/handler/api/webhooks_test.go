//go:build unit

package api_test

import (
	"bytes"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"nightgate/internal/handler/api"
	"nightgate/internal/pkg/config"
	"nightgate/internal/usecase/commands"
	commandsmock "nightgate/tests/mock/commands"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"
)

type WebhookHandlerTestSuite struct {
	suite.Suite
	router    *gin.Engine
	mockCtrl  *gomock.Controller
	mockPay   *commandsmock.MockPaymentCommands
	mockEmail *commandsmock.MockEmailWebhookCommands
	cfg       config.Config
}

func (s *WebhookHandlerTestSuite) SetupTest() {
	gin.SetMode(gin.TestMode)
	s.router = gin.New()

	s.mockCtrl = gomock.NewController(s.T())
	s.mockPay = commandsmock.NewMockPaymentCommands(s.mockCtrl)
	s.mockEmail = commandsmock.NewMockEmailWebhookCommands(s.mockCtrl)
	s.cfg = config.NewTestConfig()

	handler := api.NewWebhookHandler(s.mockPay, s.mockEmail, s.cfg.Stripe, s.cfg.Email)
	s.router.POST("/webhooks/payments", handler.HandlePayment)
	s.router.POST("/webhooks/email", handler.HandleEmail)
}

func (s *WebhookHandlerTestSuite) TearDownTest() {
	s.mockCtrl.Finish()
}

func TestWebhookHandlerSuite(t *testing.T) {
	suite.Run(t, new(WebhookHandlerTestSuite))
}

// stripeSignature builds the provider's t=...,v1=... header for a payload.
func stripeSignature(secret string, payload []byte, at time.Time) string {
	ts := at.Unix()
	mac := hmac.New(sha256.New, []byte(secret))
	fmt.Fprintf(mac, "%d.%s", ts, payload)
	return fmt.Sprintf("t=%d,v1=%s", ts, hex.EncodeToString(mac.Sum(nil)))
}

func checkoutPayload(eventUUID uuid.UUID) []byte {
	return []byte(fmt.Sprintf(`{
		"id": "evt_test_1",
		"type": "checkout.session.completed",
		"data": {
			"object": {
				"id": "cs_test_1",
				"customer_details": {"name": "Jordan", "email": "jordan@example.com"},
				"metadata": {"event_id": %q, "ga_quantity": "2"}
			}
		}
	}`, eventUUID))
}

func (s *WebhookHandlerTestSuite) TestPaymentWebhookVerifiedAndDispatched() {
	eventUUID := uuid.New()
	payload := checkoutPayload(eventUUID)

	s.mockPay.EXPECT().
		HandleCheckoutCompleted(gomock.Any(), commands.CheckoutCompletedParams{
			ProviderEventID: "evt_test_1",
			EventID:         eventUUID,
			PurchaserName:   "Jordan",
			PurchaserEmail:  "jordan@example.com",
			GAQuantity:      2,
		}).
		Return(&commands.CheckoutCompletedResult{}, nil)

	req := httptest.NewRequest(http.MethodPost, "/webhooks/payments", bytes.NewReader(payload))
	req.Header.Set("Stripe-Signature", stripeSignature(s.cfg.Stripe.WebhookSecret, payload, time.Now()))
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)

	s.Equal(http.StatusOK, w.Code)
}

func (s *WebhookHandlerTestSuite) TestPaymentWebhookBadSignature() {
	payload := checkoutPayload(uuid.New())

	req := httptest.NewRequest(http.MethodPost, "/webhooks/payments", bytes.NewReader(payload))
	req.Header.Set("Stripe-Signature", stripeSignature("whsec_wrong", payload, time.Now()))
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)

	s.Equal(http.StatusUnauthorized, w.Code)
}

func (s *WebhookHandlerTestSuite) TestPaymentWebhookIgnoresOtherEventTypes() {
	payload := []byte(`{"id": "evt_other", "type": "invoice.paid", "data": {"object": {}}}`)

	req := httptest.NewRequest(http.MethodPost, "/webhooks/payments", bytes.NewReader(payload))
	req.Header.Set("Stripe-Signature", stripeSignature(s.cfg.Stripe.WebhookSecret, payload, time.Now()))
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)

	s.Equal(http.StatusOK, w.Code)
}

// emailHeaders builds svix-style webhook headers for a payload.
func emailHeaders(secret, msgID string, payload []byte, at time.Time) map[string]string {
	ts := strconv.FormatInt(at.Unix(), 10)
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(msgID + "." + ts + "."))
	mac.Write(payload)
	return map[string]string{
		"webhook-id":        msgID,
		"webhook-timestamp": ts,
		"webhook-signature": "v1," + base64.StdEncoding.EncodeToString(mac.Sum(nil)),
	}
}

func (s *WebhookHandlerTestSuite) TestEmailWebhookVerifiedAndDispatched() {
	payload := []byte(`{"type": "email.delivered", "data": {"email_id": "msg_1"}}`)

	s.mockEmail.EXPECT().
		HandleProviderEvent(gomock.Any(), commands.ProviderEventParams{
			MessageID: "msg_1",
			Type:      "email.delivered",
			Payload:   payload,
		}).
		Return(nil)

	req := httptest.NewRequest(http.MethodPost, "/webhooks/email", bytes.NewReader(payload))
	for k, v := range emailHeaders(s.cfg.Email.WebhookSecret, "wh_1", payload, time.Now()) {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)

	s.Equal(http.StatusOK, w.Code)
}

func (s *WebhookHandlerTestSuite) TestEmailWebhookBadSignature() {
	payload := []byte(`{"type": "email.delivered", "data": {"email_id": "msg_1"}}`)

	req := httptest.NewRequest(http.MethodPost, "/webhooks/email", bytes.NewReader(payload))
	for k, v := range emailHeaders("ehsec_wrong", "wh_1", payload, time.Now()) {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)

	s.Equal(http.StatusUnauthorized, w.Code)
}

func (s *WebhookHandlerTestSuite) TestEmailWebhookStaleTimestamp() {
	payload := []byte(`{"type": "email.delivered", "data": {"email_id": "msg_1"}}`)

	req := httptest.NewRequest(http.MethodPost, "/webhooks/email", bytes.NewReader(payload))
	for k, v := range emailHeaders(s.cfg.Email.WebhookSecret, "wh_1", payload, time.Now().Add(-time.Hour)) {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)

	s.Equal(http.StatusUnauthorized, w.Code)
}

func (s *WebhookHandlerTestSuite) TestEmailWebhookMissingEmailID() {
	payload := []byte(`{"type": "email.delivered", "data": {}}`)

	req := httptest.NewRequest(http.MethodPost, "/webhooks/email", bytes.NewReader(payload))
	for k, v := range emailHeaders(s.cfg.Email.WebhookSecret, "wh_1", payload, time.Now()) {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)

	s.Equal(http.StatusBadRequest, w.Code)
}
