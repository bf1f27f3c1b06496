package evaluation

import "signal-impact-lab/internal/domain"

// Excursions computes the current-window Maximum Favorable Excursion and
// Maximum Adverse Excursion as percentages of the entry price.
//
// For LONG the favorable extreme is the window high and the adverse extreme
// is the window low; for SHORT the roles mirror. Either value may be
// negative when price never moved favorably/adversely inside the window.
func Excursions(entryPrice, high, low float64, dir domain.Direction) (mfePct, maePct float64) {
	if dir == domain.DirectionShort {
		mfePct = (entryPrice - low) / entryPrice * 100
		maePct = (high - entryPrice) / entryPrice * 100
		return mfePct, maePct
	}
	mfePct = (high - entryPrice) / entryPrice * 100
	maePct = (entryPrice - low) / entryPrice * 100
	return mfePct, maePct
}

// MergeLifetime merges a freshly computed excursion into the stored
// lifetime value. Lifetime excursions never decrease across passes: they
// record the all-time best/worst point the trade reached, so a later window
// showing a smaller excursion must not shrink them.
func MergeLifetime(previous, current float64) float64 {
	if current > previous {
		return current
	}
	return previous
}

// ReturnPct is the signed percentage return of a position entered at
// entryPrice and marked at price.
func ReturnPct(entryPrice, price float64, dir domain.Direction) float64 {
	if dir == domain.DirectionShort {
		return (entryPrice - price) / entryPrice * 100
	}
	return (price - entryPrice) / entryPrice * 100
}
