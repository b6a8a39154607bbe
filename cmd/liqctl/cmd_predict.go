package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"math"
	"strings"
	"time"

	"github.com/fatih/color"
	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"CryptoLiq/internal/domain/models"
	"CryptoLiq/internal/services/features"
	"CryptoLiq/internal/services/model"
	"CryptoLiq/internal/usecase"
	"CryptoLiq/pkg/config"
	xhttp "CryptoLiq/pkg/http"
	applogger "CryptoLiq/pkg/logger"
	"CryptoLiq/pkg/metrics"
)

var errDisclaimer = errors.New("Please accept the disclaimer to proceed.")

var (
	predictReq     models.PredictRequest
	predictDemo    bool
	predictTimeout time.Duration
)

var predictCmd = &cobra.Command{
	Use:   "predict",
	Short: "Score one market snapshot",
	Example: `  # Score the demo snapshot
  liqctl predict --demo --accept

  # Score explicit values
  liqctl predict --coin Bitcoin --open 56787.5 --high 64776.4 --low 55000 \
    --close 63000 --volume 123456.789 --accept`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.LoadWithEnv(configPath)
		if err != nil {
			return err
		}
		ctx, cancel := context.WithTimeout(cmd.Context(), predictTimeout)
		defer cancel()
		return runPredict(ctx, cmd.OutOrStdout(), cfg, predictReq, predictDemo)
	},
}

func init() {
	rootCmd.AddCommand(predictCmd)

	f := predictCmd.Flags()
	f.StringVar(&predictReq.Coin, "coin", "", "Coin name, display only")
	f.Float64Var(&predictReq.Open, "open", 0, "Open price")
	f.Float64Var(&predictReq.High, "high", 0, "High price")
	f.Float64Var(&predictReq.Low, "low", 0, "Low price")
	f.Float64Var(&predictReq.Close, "close", 0, "Close price")
	f.Float64Var(&predictReq.Volume, "volume", 0, "Traded volume")
	f.Float64Var(&predictReq.MarketCap, "market-cap", 0, "Market cap, derived from close*volume when 0")
	f.Float64Var(&predictReq.SMA5, "sma5", 0, "5 period simple moving average")
	f.Float64Var(&predictReq.EMA12, "ema12", 0, "12 period exponential moving average")
	f.Float64Var(&predictReq.RSI, "rsi", 0, "14 period relative strength index")
	f.Float64Var(&predictReq.MACD, "macd", 0, "MACD line")
	f.BoolVar(&predictReq.AcceptDisclaimer, "accept", false, "Accept that the prediction is not financial advice")
	f.BoolVar(&predictDemo, "demo", false, "Use the demo snapshot instead of the value flags")
	f.DurationVar(&predictTimeout, "timeout", 10*time.Second, "Prediction timeout")
}

func runPredict(ctx context.Context, out io.Writer, cfg *config.Config, req models.PredictRequest, demo bool) error {
	p, err := newPredictor(cfg)
	if err != nil {
		return err
	}
	if err := p.ModelErr(); err != nil {
		return err
	}
	if !req.AcceptDisclaimer {
		return errDisclaimer
	}
	s := req.Snapshot()
	if demo {
		coin := s.Coin
		s = models.DemoSnapshot()
		s.Coin = coin
	} else if errs := xhttp.Validate(&req); len(errs) > 0 {
		msgs := make([]string, 0, len(errs))
		for _, e := range errs {
			msgs = append(msgs, e.Message)
		}
		return fmt.Errorf("invalid snapshot: %s", strings.Join(msgs, "; "))
	}

	pred, err := p.Predict(ctx, s, models.SourceCLI)
	if err != nil {
		return err
	}
	renderPrediction(out, pred)
	return nil
}

// newPredictor builds a predictor without storage or sinks; the CLI only scores.
func newPredictor(cfg *config.Config) (*usecase.LiquidityPredictor, error) {
	schema, err := features.SchemaByName(cfg.Model.Schema)
	if err != nil {
		return nil, err
	}
	m, err := model.Load(cfg)
	if err != nil {
		m = model.Unavailable{Reason: err}
	}
	return usecase.NewLiquidityPredictor(m, schema, metrics.New(nil), usecase.WithPredictorLogger(applogger.Nop())), nil
}

func renderPrediction(out io.Writer, p *models.Prediction) {
	if p.Coin != "" {
		fmt.Fprintf(out, "Coin:       %s\n", p.Coin)
	}
	fmt.Fprintf(out, "Liquidity:  %s (score %.2f)\n", levelColor(p.Level).Sprint(p.Level), p.Score)
	fmt.Fprintf(out, "Trend:      %s\n", p.TrendHint)
	fmt.Fprintf(out, "Market Cap: %s\n", formatThousands(p.MarketCap, 2))
	fmt.Fprintf(out, "Model:      %s\n", p.Model)
}

func levelColor(l models.LiquidityLevel) *color.Color {
	switch l {
	case models.LiquidityHigh:
		return color.New(color.FgGreen, color.Bold)
	case models.LiquidityMedium:
		return color.New(color.FgYellow, color.Bold)
	default:
		return color.New(color.FgRed, color.Bold)
	}
}

// formatThousands renders v with the given decimals and comma separators.
func formatThousands(v float64, places int32) string {
	if math.IsInf(v, 0) || math.IsNaN(v) {
		return fmt.Sprint(v)
	}
	s := decimal.NewFromFloat(v).StringFixed(places)
	sign := ""
	if strings.HasPrefix(s, "-") {
		sign, s = "-", s[1:]
	}
	intPart, frac := s, ""
	if i := strings.IndexByte(s, '.'); i >= 0 {
		intPart, frac = s[:i], s[i:]
	}
	var b strings.Builder
	for i, r := range intPart {
		if i > 0 && (len(intPart)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(r)
	}
	return sign + b.String() + frac
}
