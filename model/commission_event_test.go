package model

import (
	"testing"

	"github.com/go-playground/assert/v2"
)

func TestCommissionStatusTransitions(t *testing.T) {
	tests := []struct {
		name string
		from CommissionEventStatus
		to   CommissionEventStatus
		want bool
	}{
		{name: "pending releases to available", from: CommissionEventStatusPending, to: CommissionEventStatusAvailable, want: true},
		{name: "pending cancels on reversal", from: CommissionEventStatusPending, to: CommissionEventStatusCancelled, want: true},
		{name: "pending never schedules directly", from: CommissionEventStatusPending, to: CommissionEventStatusScheduled, want: false},
		{name: "pending never pays out directly", from: CommissionEventStatusPending, to: CommissionEventStatusPaidOut, want: false},
		{name: "available schedules", from: CommissionEventStatusAvailable, to: CommissionEventStatusScheduled, want: true},
		{name: "available cancels on reversal", from: CommissionEventStatusAvailable, to: CommissionEventStatusCancelled, want: true},
		{name: "available never regresses", from: CommissionEventStatusAvailable, to: CommissionEventStatusPending, want: false},
		{name: "scheduled pays out", from: CommissionEventStatusScheduled, to: CommissionEventStatusPaidOut, want: true},
		{name: "scheduled retries via available", from: CommissionEventStatusScheduled, to: CommissionEventStatusAvailable, want: true},
		{name: "scheduled fails terminally", from: CommissionEventStatusScheduled, to: CommissionEventStatusFailed, want: true},
		{name: "scheduled cannot cancel", from: CommissionEventStatusScheduled, to: CommissionEventStatusCancelled, want: false},
		{name: "paid_out is immutable", from: CommissionEventStatusPaidOut, to: CommissionEventStatusAvailable, want: false},
		{name: "cancelled is immutable", from: CommissionEventStatusCancelled, to: CommissionEventStatusAvailable, want: false},
		{name: "failed is immutable", from: CommissionEventStatusFailed, to: CommissionEventStatusAvailable, want: false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.from.CanTransition(tt.to)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestCommissionStatusTerminal(t *testing.T) {
	tests := []struct {
		status CommissionEventStatus
		want   bool
	}{
		{CommissionEventStatusPending, false},
		{CommissionEventStatusAvailable, false},
		{CommissionEventStatusScheduled, false},
		{CommissionEventStatusPaidOut, true},
		{CommissionEventStatusFailed, true},
		{CommissionEventStatusCancelled, true},
	}
	for _, tt := range tests {
		t.Run(tt.status.String(), func(t *testing.T) {
			assert.Equal(t, tt.want, tt.status.IsTerminal())
		})
	}
}
