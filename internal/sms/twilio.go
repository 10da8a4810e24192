package sms

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/twilio/twilio-go"
	"github.com/twilio/twilio-go/client"
	openapi "github.com/twilio/twilio-go/rest/api/v2010"
)

const (
	DefaultTwilioBaseURL = "https://api.twilio.com"
	requestTimeout       = 10 * time.Second
)

// ProviderError is the error body returned by the Twilio API.
type ProviderError struct {
	Status   int
	Code     int
	Message  string
	MoreInfo string
}

func (e *ProviderError) Error() string {
	return fmt.Sprintf("twilio error %d (status %d): %s", e.Code, e.Status, e.Message)
}

type TwilioSender struct {
	accountSID string
	rest       *twilio.RestClient
}

// NewTwilioSender returns a Sender backed by the Twilio Messages API, or
// Disabled when credentials are missing. A non-default baseURL redirects
// every SDK request to that host.
func NewTwilioSender(accountSID, authToken, baseURL string) Sender {
	if accountSID == "" || authToken == "" {
		return Disabled{}
	}

	httpClient := &http.Client{Timeout: requestTimeout}
	if baseURL != "" && baseURL != DefaultTwilioBaseURL {
		if target, err := url.Parse(baseURL); err == nil && target.Host != "" {
			httpClient.Transport = hostRewriter{target: target, next: http.DefaultTransport}
		}
	}

	c := &client.Client{
		Credentials: client.NewCredentials(accountSID, authToken),
		HTTPClient:  httpClient,
	}
	c.SetAccountSid(accountSID)

	return &TwilioSender{
		accountSID: accountSID,
		rest:       twilio.NewRestClientWithParams(twilio.ClientParams{Client: c}),
	}
}

func (s *TwilioSender) Send(ctx context.Context, msg Message) (Receipt, error) {
	if msg.From == "" {
		return Receipt{}, ErrNotConfigured
	}
	if err := ctx.Err(); err != nil {
		return Receipt{}, err
	}

	params := &openapi.CreateMessageParams{}
	params.SetPathAccountSid(s.accountSID)
	params.SetTo(msg.To)
	params.SetFrom(msg.From)
	params.SetBody(msg.Body)

	resp, err := s.rest.Api.CreateMessage(params)
	if err != nil {
		var restErr *client.TwilioRestError
		if errors.As(err, &restErr) {
			return Receipt{}, &ProviderError{
				Status:   restErr.Status,
				Code:     restErr.Code,
				Message:  restErr.Message,
				MoreInfo: restErr.MoreInfo,
			}
		}
		return Receipt{}, fmt.Errorf("failed to send sms: %w", err)
	}

	var receipt Receipt
	if resp != nil && resp.Sid != nil {
		receipt.ID = *resp.Sid
	}
	return receipt, nil
}

// hostRewriter points SDK requests at a different scheme and host, keeping the path.
type hostRewriter struct {
	target *url.URL
	next   http.RoundTripper
}

func (h hostRewriter) RoundTrip(req *http.Request) (*http.Response, error) {
	out := req.Clone(req.Context())
	out.URL.Scheme = h.target.Scheme
	out.URL.Host = h.target.Host
	out.Host = h.target.Host
	return h.next.RoundTrip(out)
}
