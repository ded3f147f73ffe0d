package indicator

import (
	"math"

	"ChartSignals/internal/domain/models"
)

// Config holds indicator parameterizations. The zero value is filled with the
// standard set: EMA9, SMA10, MACD 12/26/9, RSI14, Bollinger 20/2, ATR14.
type Config struct {
	EMALength  int
	SMALength  int
	MACDFast   int
	MACDSlow   int
	MACDSignal int
	RSILength  int
	BBLength   int
	BBStdDev   float64
	ATRLength  int
}

func (c *Config) applyDefaults() {
	if c.EMALength <= 0 {
		c.EMALength = 9
	}
	if c.SMALength <= 0 {
		c.SMALength = 10
	}
	if c.MACDFast <= 0 {
		c.MACDFast = 12
	}
	if c.MACDSlow <= 0 {
		c.MACDSlow = 26
	}
	if c.MACDSignal <= 0 {
		c.MACDSignal = 9
	}
	if c.RSILength <= 0 {
		c.RSILength = 14
	}
	if c.BBLength <= 0 {
		c.BBLength = 20
	}
	if c.BBStdDev <= 0 {
		c.BBStdDev = 2
	}
	if c.ATRLength <= 0 {
		c.ATRLength = 14
	}
}

// Frame holds per-bar-aligned indicator series over one bar window. Every
// slice has the same length as the input window; positions inside an
// indicator's warm-up are None.
type Frame struct {
	EMA9     []Value
	MA10     []Value
	MACD     []Value
	Signal   []Value
	Hist     []Value
	RSI      []Value
	BBUpper  []Value
	BBMiddle []Value
	BBLower  []Value
	VWAP     []Value
	ATR      []Value
}

// Len returns the number of bars the frame is aligned to.
func (f *Frame) Len() int { return len(f.EMA9) }

// Last returns the indicator values at the final bar.
func (f *Frame) Last() Row { return f.Row(f.Len() - 1) }

// Prev returns the indicator values at the second-to-last bar.
func (f *Frame) Prev() Row { return f.Row(f.Len() - 2) }

// Row is one bar's worth of indicator values.
type Row struct {
	EMA9     Value
	MA10     Value
	MACD     Value
	Signal   Value
	Hist     Value
	RSI      Value
	BBUpper  Value
	BBMiddle Value
	BBLower  Value
	VWAP     Value
	ATR      Value
}

// Row returns the values at index i (all None when out of range).
func (f *Frame) Row(i int) Row {
	return Row{
		EMA9:     at(f.EMA9, i),
		MA10:     at(f.MA10, i),
		MACD:     at(f.MACD, i),
		Signal:   at(f.Signal, i),
		Hist:     at(f.Hist, i),
		RSI:      at(f.RSI, i),
		BBUpper:  at(f.BBUpper, i),
		BBMiddle: at(f.BBMiddle, i),
		BBLower:  at(f.BBLower, i),
		VWAP:     at(f.VWAP, i),
		ATR:      at(f.ATR, i),
	}
}

// Compute derives the full indicator frame from a bar window. Deterministic
// and reproducible from the bar sequence alone.
func Compute(bars []models.Bar, cfg Config) *Frame {
	cfg.applyDefaults()
	n := len(bars)
	closes := make([]float64, n)
	for i, b := range bars {
		closes[i] = b.Close
	}

	f := &Frame{
		EMA9: EMA(closes, cfg.EMALength),
		MA10: SMA(closes, cfg.SMALength),
		RSI:  RSI(closes, cfg.RSILength),
		VWAP: VWAP(bars),
		ATR:  ATR(bars, cfg.ATRLength),
	}
	f.MACD, f.Signal, f.Hist = MACD(closes, cfg.MACDFast, cfg.MACDSlow, cfg.MACDSignal)
	f.BBUpper, f.BBMiddle, f.BBLower = Bollinger(closes, cfg.BBLength, cfg.BBStdDev)
	return f
}

// EMA is the exponential moving average, seeded at the first value and
// recursed over every sample; reported from index period-1.
func EMA(xs []float64, period int) []Value {
	out := make([]Value, len(xs))
	if period <= 0 || len(xs) < period {
		return out
	}
	k := 2.0 / float64(period+1)
	ema := xs[0]
	if period == 1 {
		out[0] = Some(ema)
	}
	for i := 1; i < len(xs); i++ {
		ema = (xs[i]-ema)*k + ema
		if i >= period-1 {
			out[i] = Some(ema)
		}
	}
	return out
}

// SMA is the simple moving average; defined from index period-1.
func SMA(xs []float64, period int) []Value {
	out := make([]Value, len(xs))
	if period <= 0 || len(xs) < period {
		return out
	}
	var sum float64
	for i, x := range xs {
		sum += x
		if i >= period {
			sum -= xs[i-period]
		}
		if i >= period-1 {
			out[i] = Some(sum / float64(period))
		}
	}
	return out
}

// MACD returns line (emaFast-emaSlow), signal (EMA of the line over its
// defined region) and histogram (line-signal).
func MACD(xs []float64, fast, slow, signal int) (line, sig, hist []Value) {
	n := len(xs)
	line = make([]Value, n)
	sig = make([]Value, n)
	hist = make([]Value, n)

	emaFast := EMA(xs, fast)
	emaSlow := EMA(xs, slow)
	firstLine := -1
	lineVals := make([]float64, 0, n)
	for i := 0; i < n; i++ {
		fv, fok := emaFast[i].Get()
		sv, sok := emaSlow[i].Get()
		if !fok || !sok {
			continue
		}
		if firstLine < 0 {
			firstLine = i
		}
		line[i] = Some(fv - sv)
		lineVals = append(lineVals, fv-sv)
	}
	if firstLine < 0 {
		return line, sig, hist
	}

	sigVals := EMA(lineVals, signal)
	for j, v := range sigVals {
		if sv, ok := v.Get(); ok {
			i := firstLine + j
			sig[i] = Some(sv)
			hist[i] = Some(lineVals[j] - sv)
		}
	}
	return line, sig, hist
}

// RSI is the Wilder relative strength index: the first average gain/loss is
// the simple mean of the first period deltas, then smoothed with
// (prev*(period-1)+cur)/period. Defined from index period.
func RSI(xs []float64, period int) []Value {
	out := make([]Value, len(xs))
	if period <= 0 || len(xs) <= period {
		return out
	}

	var avgGain, avgLoss float64
	for i := 1; i <= period; i++ {
		d := xs[i] - xs[i-1]
		if d > 0 {
			avgGain += d
		} else {
			avgLoss -= d
		}
	}
	avgGain /= float64(period)
	avgLoss /= float64(period)
	out[period] = Some(rsiFrom(avgGain, avgLoss))

	for i := period + 1; i < len(xs); i++ {
		d := xs[i] - xs[i-1]
		gain, loss := 0.0, 0.0
		if d > 0 {
			gain = d
		} else {
			loss = -d
		}
		avgGain = (avgGain*float64(period-1) + gain) / float64(period)
		avgLoss = (avgLoss*float64(period-1) + loss) / float64(period)
		out[i] = Some(rsiFrom(avgGain, avgLoss))
	}
	return out
}

func rsiFrom(avgGain, avgLoss float64) float64 {
	if avgLoss == 0 {
		if avgGain == 0 {
			return 50
		}
		return 100
	}
	rs := avgGain / avgLoss
	return 100 - 100/(1+rs)
}

// Bollinger returns upper/middle/lower bands: SMA(period) +- stdDev sample
// standard deviations. Defined from index period-1.
func Bollinger(xs []float64, period int, stdDev float64) (upper, middle, lower []Value) {
	n := len(xs)
	upper = make([]Value, n)
	middle = make([]Value, n)
	lower = make([]Value, n)
	if period <= 1 || n < period {
		return
	}
	for i := period - 1; i < n; i++ {
		win := xs[i-period+1 : i+1]
		var sum float64
		for _, x := range win {
			sum += x
		}
		mean := sum / float64(period)
		var ss float64
		for _, x := range win {
			d := x - mean
			ss += d * d
		}
		sd := math.Sqrt(ss / float64(period-1))
		middle[i] = Some(mean)
		upper[i] = Some(mean + stdDev*sd)
		lower[i] = Some(mean - stdDev*sd)
	}
	return
}

// VWAP is the cumulative volume-weighted average of the typical price
// (high+low+close)/3 over the whole window. It never resets inside a window;
// undefined while cumulative volume is zero.
func VWAP(bars []models.Bar) []Value {
	out := make([]Value, len(bars))
	var cumPV, cumV float64
	for i, b := range bars {
		tp := (b.High + b.Low + b.Close) / 3
		cumPV += tp * b.Volume
		cumV += b.Volume
		if cumV > 0 {
			out[i] = Some(cumPV / cumV)
		}
	}
	return out
}

// ATR is the rolling simple mean of the true range over period bars; the
// first bar's true range is high-low since no prior close exists. Defined
// from index period-1.
func ATR(bars []models.Bar, period int) []Value {
	n := len(bars)
	out := make([]Value, n)
	if period <= 0 || n < period {
		return out
	}
	tr := make([]float64, n)
	for i, b := range bars {
		hl := b.High - b.Low
		if i == 0 {
			tr[i] = hl
			continue
		}
		pc := bars[i-1].Close
		hc := math.Abs(b.High - pc)
		lc := math.Abs(b.Low - pc)
		tr[i] = math.Max(hl, math.Max(hc, lc))
	}
	var sum float64
	for i, t := range tr {
		sum += t
		if i >= period {
			sum -= tr[i-period]
		}
		if i >= period-1 {
			out[i] = Some(sum / float64(period))
		}
	}
	return out
}
