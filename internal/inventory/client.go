package inventory

import (
	"context"
	"fmt"
	"sort"

	"outbound_messaging_backend/platform/logger"

	"golang.org/x/sync/singleflight"
)

// Client fetches and normalizes the sender-eligible numbers. Concurrent
// fetches are collapsed into one provider round trip.
type Client struct {
	provider ProviderAPI
	cache    *Cache
	log      *logger.Logger
	group    singleflight.Group
}

// NewClient creates an inventory client. cache may be nil.
func NewClient(provider ProviderAPI, cache *Cache, log *logger.Logger) *Client {
	return &Client{
		provider: provider,
		cache:    cache,
		log:      log,
	}
}

// FetchSenders returns the normalized sender inventory.
//
// Plain numbers are included when SMS-capable and tagged sms. Numbers bound
// to a messaging service are included when WhatsApp-capable and tagged
// whatsapp; that enumeration is non-fatal and degrades to an empty WhatsApp
// portion. The result is SMS-then-WhatsApp, then stably sorted by phone
// number ascending. A transport failure is reported in the result, never
// raised.
func (c *Client) FetchSenders(ctx context.Context) FetchResult {
	result, _, _ := c.group.Do("senders", func() (interface{}, error) {
		return c.fetch(ctx), nil
	})
	return result.(FetchResult)
}

func (c *Client) fetch(ctx context.Context) FetchResult {
	if cached, ok := c.cache.Get(ctx); ok {
		return FetchResult{Senders: cached}
	}

	incoming, err := c.provider.ListIncomingNumbers(ctx)
	if err != nil {
		c.log.CollaboratorFailure("number-provider", err)
		return FetchResult{
			Failed: true,
			Err:    fmt.Sprintf("failed to fetch available numbers: %v", err),
		}
	}

	senders := make([]SenderNumber, 0, len(incoming))
	for _, number := range incoming {
		if !number.Capabilities.SMS {
			continue
		}
		senders = append(senders, normalizeIncoming(number))
	}

	senders = append(senders, c.fetchWhatsAppNumbers(ctx)...)

	sort.SliceStable(senders, func(i, j int) bool {
		return senders[i].PhoneNumber < senders[j].PhoneNumber
	})

	c.cache.Set(ctx, senders)
	return FetchResult{Senders: senders}
}

// fetchWhatsAppNumbers enumerates messaging services and their WhatsApp
// numbers. Any failure here leaves the SMS inventory intact.
func (c *Client) fetchWhatsAppNumbers(ctx context.Context) []SenderNumber {
	services, err := c.provider.ListMessagingServices(ctx)
	if err != nil {
		c.log.CollaboratorFailure("messaging-services", err)
		return nil
	}

	var senders []SenderNumber
	for _, service := range services {
		numbers, err := c.provider.ListServiceNumbers(ctx, service.SID)
		if err != nil {
			c.log.CollaboratorFailure("messaging-services", err)
			return senders
		}

		for _, number := range numbers {
			if !hasWhatsAppCapability(number.Capabilities) {
				continue
			}
			senders = append(senders, normalizeServiceNumber(number, service.SID))
		}
	}
	return senders
}

func normalizeIncoming(number IncomingNumber) SenderNumber {
	displayName := number.FriendlyName
	if displayName == "" {
		displayName = number.PhoneNumber
	}

	capabilities := make([]string, 0, 3)
	if number.Capabilities.Voice {
		capabilities = append(capabilities, "voice")
	}
	if number.Capabilities.SMS {
		capabilities = append(capabilities, "sms")
	}
	if number.Capabilities.MMS {
		capabilities = append(capabilities, "mms")
	}

	return SenderNumber{
		ID:           number.SID,
		PhoneNumber:  number.PhoneNumber,
		DisplayName:  displayName,
		Channel:      ChannelSMS,
		Capabilities: capabilities,
	}
}

func normalizeServiceNumber(number ServiceNumber, serviceSID string) SenderNumber {
	displayName := number.FriendlyName
	if displayName == "" {
		displayName = number.PhoneNumber + " (WhatsApp)"
	}

	return SenderNumber{
		ID:                 number.SID,
		PhoneNumber:        number.PhoneNumber,
		DisplayName:        displayName,
		Channel:            ChannelWhatsApp,
		MessagingServiceID: serviceSID,
		Capabilities:       number.Capabilities,
	}
}

func hasWhatsAppCapability(capabilities []string) bool {
	for _, capability := range capabilities {
		if capability == "whatsapp" {
			return true
		}
	}
	return false
}
