package service

import "github.com/shopspring/decimal"

// DefaultRewardRatePercent is the referral rate applied to both sides of a
// redemption: the referred customer's discount and the referrer's reward.
const DefaultRewardRatePercent = 5

var oneHundred = decimal.NewFromInt(100)

// RewardQuote is the financial outcome of applying a referral to a priced
// booking. DiscountAmount and RewardAmount are computed independently from the
// same base price and rounded half-up to 2 decimal places; after rounding they
// may differ by up to 0.01, which is accepted rather than reconciled.
type RewardQuote struct {
	DiscountAmount decimal.Decimal
	RewardAmount   decimal.Decimal
	FinalPrice     decimal.Decimal
}

// QuoteReward computes the discount/reward pair for a base price at the given
// percentage rate. Returns ErrPriceUnavailable when basePrice is not positive;
// such bookings proceed at full (or unknown) price with no referral applied.
func QuoteReward(basePrice decimal.Decimal, ratePercent int64) (RewardQuote, error) {
	if !basePrice.IsPositive() {
		return RewardQuote{}, ErrPriceUnavailable
	}

	rate := decimal.NewFromInt(ratePercent)
	// Round is half away from zero, which is half-up for non-negative money.
	discount := basePrice.Mul(rate).Div(oneHundred).Round(2)
	reward := basePrice.Mul(rate).Div(oneHundred).Round(2)

	return RewardQuote{
		DiscountAmount: discount,
		RewardAmount:   reward,
		FinalPrice:     basePrice.Sub(discount),
	}, nil
}
