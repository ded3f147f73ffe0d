package signal

import (
	"fmt"
	"math"

	"ChartSignals/internal/domain/models"
	"ChartSignals/internal/indicator"
)

// Risk anchor strategy types.
const (
	StopATR       = "ATR"
	StopBollinger = "Bollinger"
	StopSwingLow  = "SwingLow"
	StopEMA       = "EMA"
	StopFixed     = "Fixed"
)

// swingWindow is how many trailing bars the swing-low strategy inspects.
const swingWindow = 20

// riskInput bundles what a stop strategy may look at.
type riskInput struct {
	bars  []models.Bar
	row   indicator.Row
	close float64
	trend string
}

// proposal is one strategy's stop candidate before rounding.
type proposal struct {
	price     float64
	typ       string
	reasoning string
}

// riskStrategy proposes a candidate and decides whether it may replace an
// already-chosen one. A nil override means "only when nothing chosen yet".
type riskStrategy struct {
	propose  func(in riskInput) (proposal, bool)
	override func(in riskInput, cur, cand proposal) bool
}

// Evaluated in order; first applicable wins unless a later strategy's
// override predicate fires. Structure-aware stops (swing low, EMA) may only
// tighten a bullish-trend stop, never loosen it.
var riskStrategies = []riskStrategy{
	{propose: atrStop},
	{propose: bollingerStop},
	{
		propose: swingLowStop,
		override: func(in riskInput, cur, cand proposal) bool {
			return in.trend == models.TrendBullish && cand.price > cur.price
		},
	},
	{
		propose: emaStop,
		override: func(in riskInput, cur, cand proposal) bool {
			return cand.price > cur.price && distancePct(in.close, cur.price) > 3
		},
	},
}

// CalcRiskAnchor picks one protective-stop recommendation for the window.
// It never fails: the fixed 2% stop is the terminal fallback.
func CalcRiskAnchor(bars []models.Bar, row indicator.Row, trend string) models.RiskAnchor {
	in := riskInput{bars: bars, row: row, close: lastClose(bars), trend: trend}

	var cur *proposal
	for _, s := range riskStrategies {
		cand, ok := s.propose(in)
		if !ok {
			continue
		}
		switch {
		case cur == nil:
			c := cand
			cur = &c
		case s.override != nil && s.override(in, *cur, cand):
			c := cand
			cur = &c
		}
	}
	if cur == nil {
		cur = &proposal{
			price:     in.close * 0.98,
			typ:       StopFixed,
			reasoning: "Fixed 2% stop loss",
		}
	}

	return models.RiskAnchor{
		Price:       round2(cur.price),
		Type:        cur.typ,
		DistancePct: round2(distancePct(in.close, cur.price)),
		Reasoning:   cur.reasoning,
	}
}

func atrStop(in riskInput) (proposal, bool) {
	if len(in.bars) < 14 {
		return proposal{}, false
	}
	atr, ok := in.row.ATR.Get()
	if !ok {
		return proposal{}, false
	}
	return proposal{
		price:     in.close - 2*atr,
		typ:       StopATR,
		reasoning: fmt.Sprintf("2x ATR (%.2f) below entry", atr),
	}, true
}

func bollingerStop(in riskInput) (proposal, bool) {
	lower, ok := in.row.BBLower.Get()
	if !ok {
		return proposal{}, false
	}
	return proposal{
		price:     lower * 0.995,
		typ:       StopBollinger,
		reasoning: "Below lower Bollinger Band",
	}, true
}

func swingLowStop(in riskInput) (proposal, bool) {
	if len(in.bars) < swingWindow {
		return proposal{}, false
	}
	tail := in.bars[len(in.bars)-swingWindow:]
	swing := tail[0].Low
	for _, b := range tail[1:] {
		if b.Low < swing {
			swing = b.Low
		}
	}
	if swing >= in.close {
		return proposal{}, false
	}
	return proposal{
		price:     swing * 0.995,
		typ:       StopSwingLow,
		reasoning: "Below recent swing low",
	}, true
}

func emaStop(in riskInput) (proposal, bool) {
	if in.trend != models.TrendBullish {
		return proposal{}, false
	}
	ema, ok := in.row.EMA9.Get()
	if !ok {
		return proposal{}, false
	}
	return proposal{
		price:     ema * 0.99,
		typ:       StopEMA,
		reasoning: "Below EMA9 support",
	}, true
}

func distancePct(close, stop float64) float64 {
	if close == 0 {
		return 0
	}
	return (close - stop) / close * 100
}

func lastClose(bars []models.Bar) float64 {
	if len(bars) == 0 {
		return 0
	}
	return bars[len(bars)-1].Close
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
