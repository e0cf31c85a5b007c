package shieldedrpc

import "context"

// DeliveryStatus reports how deep a shielded delivery is buried, or that
// the delivery network gave up on it.
type DeliveryStatus struct {
	Confirmations int    `json:"confirmations"`
	Failed        bool   `json:"failed"`
	Reason        string `json:"reason,omitempty"`
}

// IShieldedRPC is the delivery network's capability surface: hand over
// converted funds for a shielded recipient, then watch confirmation depth.
type IShieldedRPC interface {
	// Submit forwards the swap output identified by txHash to the
	// shielded recipient and returns the network's delivery id.
	Submit(ctx context.Context, txHash, recipientAddress, memo string) (string, error)

	Confirmations(ctx context.Context, deliveryID string) (*DeliveryStatus, error)
}
