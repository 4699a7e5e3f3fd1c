package notify

import "context"

// NopGateway заглушка издателя событий, используется при выключенном брокере
type NopGateway struct{}

func NewNopGateway() *NopGateway {
	return &NopGateway{}
}

func (NopGateway) BookingCreated(context.Context, BookingPayload) {}
func (NopGateway) BookingApproved(context.Context, BookingPayload) {}
func (NopGateway) BookingRejected(context.Context, BookingPayload) {}
func (NopGateway) BookingCancelled(context.Context, BookingPayload) {}
func (NopGateway) StepEscalated(context.Context, EscalationPayload) {}
func (NopGateway) Close() {}
