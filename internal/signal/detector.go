package signal

import (
	"time"

	"ChartSignals/internal/domain/models"
	"ChartSignals/internal/indicator"
)

// Crossing and level flag names exposed in query results.
const (
	MACDCrossUp    = "macd_cross_up"
	MACDCrossDn    = "macd_cross_dn"
	EMASupportLost = "ema_support_lost"
	EMAReclaim     = "ema_reclaim"
	RSIOverbought  = "rsi_overbought"
	RSIOversold    = "rsi_oversold"
	BBSqueeze      = "bb_squeeze"
	BBBreakoutUp   = "bb_breakout_up"
	BBBreakoutDn   = "bb_breakout_dn"
)

// squeezeRatio is the band-width/price fraction under which volatility is
// considered compressed.
const squeezeRatio = 0.04

// crossingTypes is the fixed priority order used when several crossings fall
// on the same bar: the earlier entry claims the "last cross" slot.
var crossingTypes = []string{MACDCrossUp, MACDCrossDn, EMASupportLost, EMAReclaim}

// Result carries the detector output for one window.
type Result struct {
	Crossings map[string]bool
	BarsSince map[string]int
	LastCross *models.LastCross
}

// Detect derives boolean flags from the last two bars and scans the full
// window backward for bars-since distances. Flags whose indicator inputs are
// still warming up evaluate to false rather than erroring.
func Detect(bars []models.Bar, f *indicator.Frame) Result {
	res := Result{
		Crossings: make(map[string]bool, 9),
		BarsSince: make(map[string]int, 4),
	}
	n := len(bars)
	if n < 2 {
		return res
	}

	lastBar, prevBar := bars[n-1], bars[n-2]
	lastRow, prevRow := f.Last(), f.Prev()

	res.Crossings[MACDCrossUp] = crossedAbove(prevRow.MACD, prevRow.Signal, lastRow.MACD, lastRow.Signal)
	res.Crossings[MACDCrossDn] = crossedBelow(prevRow.MACD, prevRow.Signal, lastRow.MACD, lastRow.Signal)
	res.Crossings[EMAReclaim] = crossedAbove(indicator.Some(prevBar.Close), prevRow.EMA9, indicator.Some(lastBar.Close), lastRow.EMA9)
	res.Crossings[EMASupportLost] = crossedBelow(indicator.Some(prevBar.Close), prevRow.EMA9, indicator.Some(lastBar.Close), lastRow.EMA9)

	if rsi, ok := lastRow.RSI.Get(); ok {
		res.Crossings[RSIOverbought] = rsi >= 70
		res.Crossings[RSIOversold] = rsi <= 30
	} else {
		res.Crossings[RSIOverbought] = false
		res.Crossings[RSIOversold] = false
	}

	res.Crossings[BBSqueeze] = false
	if u, uok := lastRow.BBUpper.Get(); uok {
		if l, lok := lastRow.BBLower.Get(); lok {
			if m, mok := lastRow.BBMiddle.Get(); mok && m != 0 {
				res.Crossings[BBSqueeze] = (u-l)/m < squeezeRatio
			}
		}
	}
	res.Crossings[BBBreakoutUp] = definedAnd(lastRow.BBUpper, func(u float64) bool { return lastBar.Close > u })
	res.Crossings[BBBreakoutDn] = definedAnd(lastRow.BBLower, func(l float64) bool { return lastBar.Close < l })

	res.BarsSince, res.LastCross = scanBack(bars, f)
	return res
}

// scanBack walks from the most recent transition backward, recording the
// distance to the nearest prior occurrence of each crossing type. The first
// crossing found becomes the single "last cross"; a tie at the same bar goes
// to the earliest entry in crossingTypes.
func scanBack(bars []models.Bar, f *indicator.Frame) (map[string]int, *models.LastCross) {
	barsSince := make(map[string]int, len(crossingTypes))
	var lastCross *models.LastCross

	n := len(bars)
	for i := n - 1; i >= 1; i-- {
		cur, prev := f.Row(i), f.Row(i-1)
		curClose := indicator.Some(bars[i].Close)
		prevClose := indicator.Some(bars[i-1].Close)

		for _, typ := range crossingTypes {
			if _, seen := barsSince[typ]; seen {
				continue
			}
			var hit bool
			switch typ {
			case MACDCrossUp:
				hit = crossedAbove(prev.MACD, prev.Signal, cur.MACD, cur.Signal)
			case MACDCrossDn:
				hit = crossedBelow(prev.MACD, prev.Signal, cur.MACD, cur.Signal)
			case EMASupportLost:
				hit = crossedBelow(prevClose, prev.EMA9, curClose, cur.EMA9)
			case EMAReclaim:
				hit = crossedAbove(prevClose, prev.EMA9, curClose, cur.EMA9)
			}
			if !hit {
				continue
			}
			barsSince[typ] = n - 1 - i
			if lastCross == nil {
				lastCross = &models.LastCross{
					Type: typ,
					At:   time.Unix(bars[i].Timestamp, 0).UTC().Format(time.RFC3339),
				}
			}
		}
		if len(barsSince) == len(crossingTypes) {
			break
		}
	}
	return barsSince, lastCross
}

// crossedAbove reports a strict upward crossing of a over b between two bars.
// Any undefined input yields false.
func crossedAbove(prevA, prevB, curA, curB indicator.Value) bool {
	pa, ok1 := prevA.Get()
	pb, ok2 := prevB.Get()
	ca, ok3 := curA.Get()
	cb, ok4 := curB.Get()
	if !ok1 || !ok2 || !ok3 || !ok4 {
		return false
	}
	return pa <= pb && ca > cb
}

func crossedBelow(prevA, prevB, curA, curB indicator.Value) bool {
	pa, ok1 := prevA.Get()
	pb, ok2 := prevB.Get()
	ca, ok3 := curA.Get()
	cb, ok4 := curB.Get()
	if !ok1 || !ok2 || !ok3 || !ok4 {
		return false
	}
	return pa >= pb && ca < cb
}

func definedAnd(v indicator.Value, pred func(float64) bool) bool {
	x, ok := v.Get()
	return ok && pred(x)
}
