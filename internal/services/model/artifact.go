package model

import (
    "context"
    "encoding/json"
    "fmt"
    "math"
    "os"

    "CryptoLiq/internal/domain/models"
    domsvc "CryptoLiq/internal/domain/service"
)

// Artifact is the serialized form of a trained linear liquidity regressor.
// Inputs are standardized with the scaler before the dot product.
type Artifact struct {
    Name         string    `json:"name"`
    Version      string    `json:"version"`
    Features     []string  `json:"features"`
    Intercept    float64   `json:"intercept"`
    Coefficients []float64 `json:"coefficients"`
    Scaler       *struct {
        Mean  []float64 `json:"mean"`
        Scale []float64 `json:"scale"`
    } `json:"scaler,omitempty"`
}

// Validate checks the artifact is internally consistent.
func (a *Artifact) Validate() error {
    n := len(a.Features)
    if n == 0 {
        return fmt.Errorf("artifact declares no features")
    }
    if len(a.Coefficients) != n {
        return fmt.Errorf("artifact has %d coefficients for %d features", len(a.Coefficients), n)
    }
    seen := make(map[string]struct{}, n)
    for _, f := range a.Features {
        if _, ok := seen[f]; ok {
            return fmt.Errorf("artifact lists feature %q twice", f)
        }
        seen[f] = struct{}{}
    }
    if a.Scaler != nil {
        if len(a.Scaler.Mean) != n || len(a.Scaler.Scale) != n {
            return fmt.Errorf("artifact scaler does not cover %d features", n)
        }
        for i, s := range a.Scaler.Scale {
            if s == 0 {
                return fmt.Errorf("artifact scaler has zero scale for %q", a.Features[i])
            }
        }
    }
    return nil
}

// ArtifactModel scores rows with a locally loaded Artifact.
type ArtifactModel struct {
    art Artifact
}

// LoadArtifact reads and validates an artifact file.
func LoadArtifact(path string) (*ArtifactModel, error) {
    b, err := os.ReadFile(path)
    if err != nil {
        return nil, fmt.Errorf("read artifact: %w", err)
    }
    var art Artifact
    if err := json.Unmarshal(b, &art); err != nil {
        return nil, fmt.Errorf("decode artifact %s: %w", path, err)
    }
    return NewArtifactModel(art)
}

// NewArtifactModel wraps an in-memory artifact.
func NewArtifactModel(art Artifact) (*ArtifactModel, error) {
    if err := art.Validate(); err != nil {
        return nil, err
    }
    if art.Name == "" {
        art.Name = "artifact"
    }
    return &ArtifactModel{art: art}, nil
}

func (m *ArtifactModel) Name() string {
    if m.art.Version == "" {
        return m.art.Name
    }
    return m.art.Name + "@" + m.art.Version
}

func (m *ArtifactModel) Columns() []string {
    return append([]string(nil), m.art.Features...)
}

// Predict requires the row columns to equal the artifact features, names and order.
func (m *ArtifactModel) Predict(ctx context.Context, row models.FeatureRow) (float64, error) {
    if err := ctx.Err(); err != nil {
        return 0, err
    }
    if err := checkColumns(m.art.Features, row); err != nil {
        return 0, err
    }
    score := m.art.Intercept
    for i, x := range row.Values {
        if m.art.Scaler != nil {
            x = (x - m.art.Scaler.Mean[i]) / m.art.Scaler.Scale[i]
        }
        score += m.art.Coefficients[i] * x
    }
    if math.IsNaN(score) || math.IsInf(score, 0) {
        return 0, domsvc.ErrNonFiniteScore
    }
    return score, nil
}

func checkColumns(want []string, row models.FeatureRow) error {
    if len(row.Columns) != len(want) || len(row.Values) != len(want) {
        return fmt.Errorf("%w: model expects %d columns, row has %d", domsvc.ErrSchemaMismatch, len(want), len(row.Columns))
    }
    for i, c := range want {
        if row.Columns[i] != c {
            return fmt.Errorf("%w: column %d is %q, model expects %q", domsvc.ErrSchemaMismatch, i, row.Columns[i], c)
        }
    }
    return nil
}

var _ domsvc.LiquidityModel = (*ArtifactModel)(nil)
