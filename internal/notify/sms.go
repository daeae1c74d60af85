// Package notify sends SMS order/reservation confirmations. Adapted from
// the teacher's twilio.go REST client construction
// (twilio.NewRestClientWithParams), repurposed from call recording
// handling to fire-and-forget confirmation texts.
package notify

import (
	"fmt"
	"log"

	"github.com/twilio/twilio-go"
	twilioApi "github.com/twilio/twilio-go/rest/api/v2010"
)

// Notifier is invoked fire-and-forget by the Tool Dispatcher after a
// successful place_order/make_reservation call (SPEC_FULL.md "Notifications").
type Notifier interface {
	NotifyOrderPlaced(toPhone, orderID string)
	NotifyReservationPlaced(toPhone, reservationID string)
}

// TwilioNotifier sends confirmation SMS via the Twilio Messages API.
type TwilioNotifier struct {
	client *twilio.RestClient
	from   string
}

// NewTwilioNotifier builds a notifier bound to accountSID/authToken and the
// sending number.
func NewTwilioNotifier(accountSID, authToken, fromNumber string) *TwilioNotifier {
	client := twilio.NewRestClientWithParams(twilio.ClientParams{
		Username: accountSID,
		Password: authToken,
	})
	return &TwilioNotifier{client: client, from: fromNumber}
}

func (n *TwilioNotifier) NotifyOrderPlaced(toPhone, orderID string) {
	n.send(toPhone, fmt.Sprintf("Your order (#%s) has been received. Thanks for calling!", shortID(orderID)))
}

func (n *TwilioNotifier) NotifyReservationPlaced(toPhone, reservationID string) {
	n.send(toPhone, fmt.Sprintf("Your reservation (#%s) is confirmed. See you soon!", shortID(reservationID)))
}

func (n *TwilioNotifier) send(toPhone, body string) {
	params := &twilioApi.CreateMessageParams{}
	params.SetTo(toPhone)
	params.SetFrom(n.from)
	params.SetBody(body)

	if _, err := n.client.Api.CreateMessage(params); err != nil {
		log.Printf("notify: send sms to %s: %v", toPhone, err)
	}
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
