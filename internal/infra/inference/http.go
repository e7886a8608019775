package inference

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/DanielSensual/Videoeditor/internal/domain/port"
	"go.uber.org/zap"
)

// HTTPModel talks to a classifier sidecar over JSON. Load warms the
// sidecar's model once; after the first success it is a no-op, so the
// one instance created in main can be shared across every run.
type HTTPModel struct {
	baseURL string
	client  *http.Client
	logger  *zap.Logger

	mu     sync.Mutex
	loaded bool
}

func NewHTTPModel(baseURL string, timeout time.Duration, logger *zap.Logger) *HTTPModel {
	return &HTTPModel{
		baseURL: baseURL,
		client:  &http.Client{Timeout: timeout},
		logger:  logger,
	}
}

func (m *HTTPModel) Load(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.loaded {
		return nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, m.baseURL+"/v1/model/load", nil)
	if err != nil {
		return fmt.Errorf("build load request: %w", err)
	}
	resp, err := m.client.Do(req)
	if err != nil {
		return fmt.Errorf("load model: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("load model: status %d: %s", resp.StatusCode, string(body))
	}

	m.loaded = true
	m.logger.Info("inference model loaded", zap.String("backend", m.baseURL))
	return nil
}

type annotateResponse struct {
	Labels         []string `json:"labels"`
	Confidence     float64  `json:"confidence"`
	AestheticScore float64  `json:"aesthetic_score"`
}

func (m *HTTPModel) Annotate(ctx context.Context, payload []byte) (port.Annotation, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, m.baseURL+"/v1/annotate", bytes.NewReader(payload))
	if err != nil {
		return port.Annotation{}, fmt.Errorf("build annotate request: %w", err)
	}
	req.Header.Set("Content-Type", "application/octet-stream")

	resp, err := m.client.Do(req)
	if err != nil {
		return port.Annotation{}, fmt.Errorf("annotate: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return port.Annotation{}, fmt.Errorf("annotate: status %d: %s", resp.StatusCode, string(body))
	}

	var out annotateResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return port.Annotation{}, fmt.Errorf("decode annotation: %w", err)
	}

	return port.Annotation{
		Labels:         out.Labels,
		Confidence:     out.Confidence,
		AestheticScore: out.AestheticScore,
	}, nil
}
