package notifier

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"emr-auth/config"

	"github.com/twilio/twilio-go"
	twilioapi "github.com/twilio/twilio-go/rest/api/v2010"
)

// Channel delivers one text message to one destination
type Channel interface {
	Name() string
	Send(ctx context.Context, mobileNumber, text string) error
}

// WhatsAppChannel sends messages through a WhatsApp Business API gateway
type WhatsAppChannel struct {
	apiURL string
	apiKey string
	client *http.Client
}

// NewWhatsAppChannel creates a WhatsApp channel, or nil when unconfigured
func NewWhatsAppChannel(cfg config.Notifier) *WhatsAppChannel {
	if cfg.WhatsAppAPIURL == "" || cfg.WhatsAppAPIKey == "" {
		return nil
	}
	return &WhatsAppChannel{
		apiURL: cfg.WhatsAppAPIURL,
		apiKey: cfg.WhatsAppAPIKey,
		client: &http.Client{Timeout: cfg.SendTimeout},
	}
}

// Name returns the channel name
func (c *WhatsAppChannel) Name() string {
	return "whatsapp"
}

// Send posts the message to the gateway
func (c *WhatsAppChannel) Send(ctx context.Context, mobileNumber, text string) error {
	payload, err := json.Marshal(map[string]string{
		"to":      mobileNumber,
		"message": text,
	})
	if err != nil {
		return fmt.Errorf("failed to encode message: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.apiURL, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("whatsapp request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return fmt.Errorf("whatsapp gateway returned status %d", resp.StatusCode)
	}

	return nil
}

// SMSChannel sends plain SMS through Twilio
type SMSChannel struct {
	client     *twilio.RestClient
	fromNumber string
}

// NewSMSChannel creates a Twilio SMS channel, or nil when unconfigured
func NewSMSChannel(cfg config.Notifier) *SMSChannel {
	if cfg.TwilioAccountSID == "" || cfg.TwilioAuthToken == "" || cfg.TwilioFromNumber == "" {
		return nil
	}
	return &SMSChannel{
		client: twilio.NewRestClientWithParams(twilio.ClientParams{
			Username: cfg.TwilioAccountSID,
			Password: cfg.TwilioAuthToken,
		}),
		fromNumber: cfg.TwilioFromNumber,
	}
}

// Name returns the channel name
func (c *SMSChannel) Name() string {
	return "sms"
}

// Send submits the message to the Twilio messaging API
func (c *SMSChannel) Send(ctx context.Context, mobileNumber, text string) error {
	params := &twilioapi.CreateMessageParams{}
	params.SetTo(mobileNumber)
	params.SetFrom(c.fromNumber)
	params.SetBody(text)

	if _, err := c.client.Api.CreateMessage(params); err != nil {
		return fmt.Errorf("twilio send failed: %w", err)
	}

	return nil
}
