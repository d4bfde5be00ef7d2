package service

import (
	"testing"

	"github.com/ericlagergren/decimal"
	"github.com/go-playground/assert/v2"

	"gitlab.com/agentlink-marketplace/attribution_api/conv"
	"gitlab.com/agentlink-marketplace/attribution_api/model"
)

func money(t *testing.T, value string) *decimal.Big {
	t.Helper()
	m, ok := conv.MoneyFromString(value)
	if !ok {
		t.Fatalf("bad money literal %q", value)
	}
	return m
}

func ptr(id uint64) *uint64 {
	return &id
}

func TestComputeCommissionPlan(t *testing.T) {
	platformRate := conv.MoneyFromFloat(0.10)
	agentRate := conv.MoneyFromFloat(0.10)
	const provider = uint64(7)

	tests := []struct {
		name             string
		gross            string
		providerReferrer *uint64
		consumerReferrer *uint64
		delegate         *uint64

		fee        string
		payout     string
		commission string
		recipient  *uint64
		delegated  bool
	}{
		{
			name:  "no referrers no delegation keeps the full provider share",
			gross: "100.00",
			fee:   "10.00", payout: "90.00", commission: "0.00",
		},
		{
			name:             "provider referrer earns without delegation",
			gross:            "100.00",
			providerReferrer: ptr(11),
			consumerReferrer: ptr(12),
			fee:              "10.00", payout: "81.00", commission: "9.00",
			recipient: ptr(11),
		},
		{
			name:             "delegation applies when provider referred the consumer",
			gross:            "100.00",
			providerReferrer: ptr(11),
			consumerReferrer: ptr(provider),
			delegate:         ptr(42),
			fee:              "10.00", payout: "81.00", commission: "9.00",
			recipient: ptr(42), delegated: true,
		},
		{
			name:             "delegation cannot override someone else's referral",
			gross:            "100.00",
			providerReferrer: ptr(11),
			consumerReferrer: ptr(12),
			delegate:         ptr(42),
			fee:              "10.00", payout: "81.00", commission: "9.00",
			recipient: ptr(12),
		},
		{
			name:     "delegation with an organic consumer pays nobody",
			gross:    "100.00",
			delegate: ptr(42),
			fee:      "10.00", payout: "90.00", commission: "0.00",
		},
		{
			name:             "uneven gross rounds toward zero at each step",
			gross:            "33.33",
			providerReferrer: ptr(11),
			fee:              "3.33", payout: "27.00", commission: "3.00",
			recipient: ptr(11),
		},
		{
			name:  "zero gross produces a zero plan",
			gross: "0.00",
			fee:   "0.00", payout: "0.00", commission: "0.00",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			plan := computeCommissionPlan(money(t, tt.gross), platformRate, agentRate,
				provider, tt.providerReferrer, tt.consumerReferrer, tt.delegate)
			assert.Equal(t, tt.fee, plan.PlatformFee.String())
			assert.Equal(t, tt.payout, plan.ProviderPayout.String())
			assert.Equal(t, tt.commission, plan.CommissionAmount.String())
			assert.Equal(t, tt.recipient, plan.RecipientID)
			assert.Equal(t, tt.delegated, plan.DelegationApplied)
		})
	}
}

func TestSetDelegationSelfRejected(t *testing.T) {
	srv, mock := fraudTestService(t)

	cfg, err := srv.SetDelegation(&model.SetDelegationRequest{
		ListingID:                7,
		ServiceProviderProfileID: 9,
		DelegateToProfileID:      ptr(9),
	})
	assert.Equal(t, err, ErrSelfDelegationRejected)
	assert.Equal(t, cfg, (*model.DelegationConfig)(nil))
	// the rejection happens before any store write
	assert.Equal(t, mock.ExpectationsWereMet(), nil)
}

// fee + payout + commission must always reassemble the gross amount
func TestCommissionPlanConservation(t *testing.T) {
	platformRate := conv.MoneyFromFloat(0.10)
	agentRate := conv.MoneyFromFloat(0.10)

	for _, gross := range []string{"100.00", "33.33", "0.01", "19999.99", "7.77"} {
		g := money(t, gross)
		plan := computeCommissionPlan(g, platformRate, agentRate, 7, ptr(11), ptr(12), nil)
		sum := new(decimal.Big).Add(plan.PlatformFee, plan.ProviderPayout)
		sum.Add(sum, plan.CommissionAmount)
		assert.Equal(t, g.Cmp(sum), 0)
	}
}
