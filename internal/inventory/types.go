// Package inventory implements the number-inventory client: it fetches the
// sender-eligible numbers from the external provider and normalizes plain
// SMS-capable numbers and messaging-service-bound WhatsApp numbers into one
// uniform record shape.
package inventory

// Channel is the messaging medium a sender number is eligible for.
type Channel string

const (
	// ChannelSMS tags plain SMS-capable numbers.
	ChannelSMS Channel = "sms"
	// ChannelWhatsApp tags numbers enabled for WhatsApp through a messaging
	// service.
	ChannelWhatsApp Channel = "whatsapp"
)

// Valid reports whether the channel is one of the two known media.
func (c Channel) Valid() bool {
	return c == ChannelSMS || c == ChannelWhatsApp
}

// SenderNumber is one number usable as a message origin. Records are built
// fresh on every fetch and never mutated afterwards.
type SenderNumber struct {
	ID                 string   `json:"sid"`
	PhoneNumber        string   `json:"phoneNumber"`
	DisplayName        string   `json:"friendlyName"`
	Channel            Channel  `json:"type"`
	MessagingServiceID string   `json:"messagingServiceSid,omitempty"`
	Capabilities       []string `json:"capabilities,omitempty"`
}

// FetchResult is the outcome of an inventory fetch. A transport-level
// failure is reported through Failed/Err rather than a Go error so the
// caller owns the UI behavior.
type FetchResult struct {
	Senders []SenderNumber
	Failed  bool
	Err     string
}
