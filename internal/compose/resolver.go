package compose

import "outbound_messaging_backend/internal/inventory"

// FilterByChannel returns only the senders whose channel matches exactly.
// Filtering an already-filtered, same-channel list is a no-op.
func FilterByChannel(all []inventory.SenderNumber, channel inventory.Channel) []inventory.SenderNumber {
	filtered := make([]inventory.SenderNumber, 0, len(all))
	for _, sender := range all {
		if sender.Channel == channel {
			filtered = append(filtered, sender)
		}
	}
	return filtered
}

// PickDefault returns the first element of the filtered, already-sorted
// sequence, or nil when it is empty. Invoked only when no sender is
// currently selected.
func PickDefault(filtered []inventory.SenderNumber) *inventory.SenderNumber {
	if len(filtered) == 0 {
		return nil
	}
	sender := filtered[0]
	return &sender
}

// ValidateSender classifies a selection against the active channel.
func ValidateSender(selected *inventory.SenderNumber, channel inventory.Channel) SenderValidation {
	if selected == nil {
		return SenderValidationNone
	}
	if selected.Channel == channel {
		return SenderValidationValid
	}
	return SenderValidationChannelMismatch
}
