package generic

import "github.com/shopspring/decimal"

// =============================================================================
// RUN RATE - Working-day normalization
// =============================================================================

// The working-day figure comes from an external calendar component; this
// file only normalizes by it. Every track reports run rates through these
// functions so figures stay comparable across tracks.

const rateScale = 4

// DailyRate returns accumulated / totalWorkingDays. A period with zero (or a
// nonsensical negative) working days yields 0, never a division error.
func DailyRate(accumulated decimal.Decimal, totalWorkingDays int) decimal.Decimal {
	if totalWorkingDays <= 0 {
		return decimal.Zero
	}
	return accumulated.Div(decimal.NewFromInt(int64(totalWorkingDays))).Round(rateScale)
}

// ForecastPercent returns accumulated as a percentage of target.
// ok is false when target <= 0: the percentage is undefined, not zero.
func ForecastPercent(accumulated, target decimal.Decimal) (percent decimal.Decimal, ok bool) {
	if !target.IsPositive() {
		return decimal.Zero, false
	}
	return accumulated.Mul(hundred).Div(target).Round(2), true
}

// ProjectToPeriodEnd extrapolates a partial-period figure linearly to the
// whole period. Returns 0 when no working day elapsed yet.
func ProjectToPeriodEnd(accumulated decimal.Decimal, elapsedDays, totalWorkingDays int) decimal.Decimal {
	if elapsedDays <= 0 || totalWorkingDays <= 0 {
		return decimal.Zero
	}
	daily := accumulated.Div(decimal.NewFromInt(int64(elapsedDays)))
	return daily.Mul(decimal.NewFromInt(int64(totalWorkingDays))).Round(rateScale)
}

// NewRunRate normalizes points and pieces by working days.
func NewRunRate(points, pieces decimal.Decimal, totalWorkingDays int) RunRate {
	return RunRate{
		PointsPerDay: DailyRate(points, totalWorkingDays),
		PiecesPerDay: DailyRate(pieces, totalWorkingDays),
	}
}
