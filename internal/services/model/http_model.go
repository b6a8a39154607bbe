package model

import (
    "context"
    "fmt"
    "strings"
    "time"

    "CryptoLiq/internal/domain/models"
    domsvc "CryptoLiq/internal/domain/service"
    xhttp "CryptoLiq/pkg/http"
)

const predictPath = "/liquidity/predict"

// HTTPModel delegates scoring to an external model service.
type HTTPModel struct {
    baseURL string
    columns []string
    client  *xhttp.Client
}

// NewHTTPModel builds a client for the service at baseURL. columns is the
// layout the service was trained on.
func NewHTTPModel(baseURL string, columns []string, timeout time.Duration) *HTTPModel {
    if timeout <= 0 {
        timeout = 3 * time.Second
    }
    return &HTTPModel{
        baseURL: strings.TrimRight(baseURL, "/"),
        columns: append([]string(nil), columns...),
        client:  xhttp.NewClient(xhttp.WithTimeout(timeout), xhttp.WithUserAgent("cryptoliq-model-client")),
    }
}

type predictReq struct {
    Columns []string    `json:"columns"`
    Data    [][]float64 `json:"data"`
}

type predictResp struct {
    Predictions []float64 `json:"predictions"`
}

func (m *HTTPModel) Name() string { return "http:" + m.baseURL }

func (m *HTTPModel) Columns() []string { return append([]string(nil), m.columns...) }

func (m *HTTPModel) Predict(ctx context.Context, row models.FeatureRow) (float64, error) {
    if err := checkColumns(m.columns, row); err != nil {
        return 0, err
    }
    var pr predictResp
    body := predictReq{Columns: row.Columns, Data: [][]float64{row.Values}}
    if err := m.client.PostJSON(ctx, m.baseURL+predictPath, body, &pr); err != nil {
        return 0, fmt.Errorf("post %s: %w", predictPath, err)
    }
    if len(pr.Predictions) == 0 {
        return 0, fmt.Errorf("model service returned no predictions")
    }
    return pr.Predictions[0], nil
}

var _ domsvc.LiquidityModel = (*HTTPModel)(nil)
