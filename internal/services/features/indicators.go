package features

// SMA returns the simple moving average of the last n values.
// With fewer than n values it averages what is there.
func SMA(values []float64, n int) float64 {
    if len(values) == 0 || n <= 0 {
        return 0
    }
    if len(values) < n {
        n = len(values)
    }
    sum := 0.0
    for _, v := range values[len(values)-n:] {
        sum += v
    }
    return sum / float64(n)
}

// EMA computes the exponential moving average seeded with the SMA of the first
// `period` values. Returns the last value if there is not enough data.
func EMA(values []float64, period int) float64 {
    if len(values) == 0 || period <= 0 {
        return 0
    }
    if len(values) < period {
        return values[len(values)-1]
    }
    sum := 0.0
    for i := 0; i < period; i++ {
        sum += values[i]
    }
    ema := sum / float64(period)
    k := 2.0 / float64(period+1)
    for i := period; i < len(values); i++ {
        ema = (values[i]-ema)*k + ema
    }
    return ema
}

// RSI computes the relative strength index with Wilder smoothing.
// Returns 50 (neutral) when fewer than period+1 values are available.
func RSI(values []float64, period int) float64 {
    if period <= 0 || len(values) < period+1 {
        return 50
    }
    var gains, losses float64
    for i := 1; i <= period; i++ {
        ch := values[i] - values[i-1]
        if ch > 0 {
            gains += ch
        } else {
            losses -= ch
        }
    }
    p := float64(period)
    avgGain, avgLoss := gains/p, losses/p
    for i := period + 1; i < len(values); i++ {
        ch := values[i] - values[i-1]
        g, l := 0.0, 0.0
        if ch > 0 {
            g = ch
        } else {
            l = -ch
        }
        avgGain = (avgGain*(p-1) + g) / p
        avgLoss = (avgLoss*(p-1) + l) / p
    }
    if avgLoss == 0 {
        return 100
    }
    rs := avgGain / avgLoss
    return 100 - 100/(1+rs)
}

// MACD returns the MACD line EMA(fast) - EMA(slow), or 0 without slow periods of data.
func MACD(values []float64, fast, slow int) float64 {
    if slow <= 0 || len(values) < slow {
        return 0
    }
    return EMA(values, fast) - EMA(values, slow)
}
