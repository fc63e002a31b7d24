package api

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"nightgate/internal/pkg/config"
	"nightgate/internal/usecase/commands"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	stripe "github.com/stripe/stripe-go/v72"
	"github.com/stripe/stripe-go/v72/webhook"
)

// maxWebhookBody caps inbound webhook payloads; provider events are small.
const maxWebhookBody = 1 << 16

// emailWebhookTolerance bounds the signed timestamp to stop replays of old
// provider deliveries.
const emailWebhookTolerance = 5 * time.Minute

type WebhookHandler struct {
	payments     commands.PaymentCommands
	emailEvents  commands.EmailWebhookCommands
	stripeSecret string
	emailSecret  string
}

func NewWebhookHandler(
	payments commands.PaymentCommands,
	emailEvents commands.EmailWebhookCommands,
	stripeCfg config.StripeConfig,
	emailCfg config.EmailConfig,
) *WebhookHandler {
	return &WebhookHandler{
		payments:     payments,
		emailEvents:  emailEvents,
		stripeSecret: stripeCfg.WebhookSecret,
		emailSecret:  emailCfg.WebhookSecret,
	}
}

// HandlePayment receives payment provider events. The signature gate comes
// first; an unverified payload never reaches the use case.
func (h *WebhookHandler) HandlePayment(c *gin.Context) {
	payload, err := io.ReadAll(io.LimitReader(c.Request.Body, maxWebhookBody))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Unreadable payload"})
		return
	}

	event, err := webhook.ConstructEvent(payload, c.GetHeader("Stripe-Signature"), h.stripeSecret)
	if err != nil {
		slog.Warn("payment webhook signature rejected", "error", err.Error())
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid signature"})
		return
	}

	if event.Type != "checkout.session.completed" {
		// Acknowledge everything we verified; we only act on checkouts.
		c.JSON(http.StatusOK, gin.H{"received": true})
		return
	}

	params, err := checkoutParamsFromEvent(event)
	if err != nil {
		slog.Warn("payment webhook payload rejected", "event_id", event.ID, "error", err.Error())
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid checkout payload"})
		return
	}

	result, err := h.payments.HandleCheckoutCompleted(c.Request.Context(), params)
	if err != nil {
		switch {
		case errors.Is(err, commands.ErrNothingPurchased), errors.Is(err, commands.ErrInvalidPurchaser):
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid checkout payload"})
		default:
			// 5xx makes the provider retry, which is what we want for a
			// transient store failure.
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{"received": true, "replayed": result.Replayed})
}

func checkoutParamsFromEvent(event stripe.Event) (commands.CheckoutCompletedParams, error) {
	var session stripe.CheckoutSession
	if err := json.Unmarshal(event.Data.Raw, &session); err != nil {
		return commands.CheckoutCompletedParams{}, err
	}

	eventID, err := uuid.Parse(session.Metadata["event_id"])
	if err != nil {
		return commands.CheckoutCompletedParams{}, err
	}

	params := commands.CheckoutCompletedParams{
		ProviderEventID: event.ID,
		EventID:         eventID,
	}
	if session.CustomerDetails != nil {
		params.PurchaserName = session.CustomerDetails.Name
		params.PurchaserEmail = session.CustomerDetails.Email
	}
	if qty := session.Metadata["ga_quantity"]; qty != "" {
		params.GAQuantity, _ = strconv.Atoi(qty)
	}
	if tableName := session.Metadata["vip_table_name"]; tableName != "" {
		limit, _ := strconv.Atoi(session.Metadata["vip_guest_limit"])
		table := &commands.VIPTableParams{
			TableName:  tableName,
			GuestLimit: limit,
		}
		if names := session.Metadata["vip_guest_names"]; names != "" {
			for _, name := range strings.Split(names, ",") {
				if trimmed := strings.TrimSpace(name); trimmed != "" {
					table.GuestNames = append(table.GuestNames, trimmed)
				}
			}
		}
		params.VIPTable = table
	}

	return params, nil
}

// HandleEmail receives delivery events from the email provider. Once the
// signature verifies we always answer 200, even for events we ignore, so the
// provider does not retry forever.
func (h *WebhookHandler) HandleEmail(c *gin.Context) {
	payload, err := io.ReadAll(io.LimitReader(c.Request.Body, maxWebhookBody))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Unreadable payload"})
		return
	}

	if !h.verifyEmailSignature(c, payload) {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid signature"})
		return
	}

	var body struct {
		Type string `json:"type"`
		Data struct {
			EmailID string `json:"email_id"`
			Reason  string `json:"reason"`
		} `json:"data"`
	}
	if err := json.Unmarshal(payload, &body); err != nil || body.Data.EmailID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid event payload"})
		return
	}

	err = h.emailEvents.HandleProviderEvent(c.Request.Context(), commands.ProviderEventParams{
		MessageID: body.Data.EmailID,
		Type:      body.Type,
		Reason:    body.Data.Reason,
		Payload:   payload,
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"received": true})
}

// verifyEmailSignature checks the svix-style signature scheme: base64
// HMAC-SHA256 over "id.timestamp.payload", any of the space-separated
// "v1,sig" values in webhook-signature may match.
func (h *WebhookHandler) verifyEmailSignature(c *gin.Context, payload []byte) bool {
	msgID := c.GetHeader("webhook-id")
	timestamp := c.GetHeader("webhook-timestamp")
	sigHeader := c.GetHeader("webhook-signature")
	if msgID == "" || timestamp == "" || sigHeader == "" {
		return false
	}

	ts, err := strconv.ParseInt(timestamp, 10, 64)
	if err != nil {
		return false
	}
	age := time.Since(time.Unix(ts, 0))
	if age > emailWebhookTolerance || age < -emailWebhookTolerance {
		return false
	}

	mac := hmac.New(sha256.New, []byte(h.emailSecret))
	mac.Write([]byte(msgID + "." + timestamp + "."))
	mac.Write(payload)
	expected := base64.StdEncoding.EncodeToString(mac.Sum(nil))

	for _, pair := range strings.Fields(sigHeader) {
		version, sig, found := strings.Cut(pair, ",")
		if !found || version != "v1" {
			continue
		}
		if hmac.Equal([]byte(sig), []byte(expected)) {
			return true
		}
	}
	return false
}
