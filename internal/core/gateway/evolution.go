// internal/core/gateway/evolution.go
package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/oraclewa/oraclewa/internal/template"
)

// EvolutionProvider talks to an Evolution API server. Text only: the
// Evolution channel has no native button support.
type EvolutionProvider struct {
	baseURL  string
	apiKey   string
	instance string
	client   *http.Client
}

func NewEvolutionProvider(baseURL, apiKey, instance string) *EvolutionProvider {
	return &EvolutionProvider{
		baseURL:  baseURL,
		apiKey:   apiKey,
		instance: instance,
		client: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

func (e *EvolutionProvider) GetProviderName() string { return "evolution" }

func (e *EvolutionProvider) InstanceName() string { return e.instance }

func (e *EvolutionProvider) Capabilities() template.ChannelCapabilities {
	return template.ChannelCapabilities{SupportsInteractiveAffordances: false}
}

func (e *EvolutionProvider) SendText(ctx context.Context, phone, text string) error {
	endpoint := fmt.Sprintf("%s/message/sendText/%s", e.baseURL, e.instance)

	payload := map[string]interface{}{
		"number": phone,
		"text":   text,
	}

	return e.post(ctx, endpoint, payload)
}

func (e *EvolutionProvider) SendButtons(ctx context.Context, phone, text string, buttons []template.Button) error {
	return ErrButtonsUnsupported
}

func (e *EvolutionProvider) CheckHealth(ctx context.Context) error {
	endpoint := fmt.Sprintf("%s/instance/connectionState/%s", e.baseURL, e.instance)

	body, err := e.get(ctx, endpoint)
	if err != nil {
		return err
	}

	var result struct {
		Instance struct {
			State string `json:"state"`
		} `json:"instance"`
	}
	if err := json.Unmarshal(body, &result); err != nil {
		return fmt.Errorf("failed to decode connection state: %w", err)
	}

	if result.Instance.State != "open" {
		return fmt.Errorf("instance %s not connected (state: %s)", e.instance, result.Instance.State)
	}
	return nil
}

func (e *EvolutionProvider) PairingCode(ctx context.Context) (string, error) {
	endpoint := fmt.Sprintf("%s/instance/connect/%s", e.baseURL, e.instance)

	body, err := e.get(ctx, endpoint)
	if err != nil {
		return "", err
	}

	var result struct {
		Code string `json:"code"`
	}
	if err := json.Unmarshal(body, &result); err != nil {
		return "", fmt.Errorf("failed to decode pairing code: %w", err)
	}
	if result.Code == "" {
		return "", fmt.Errorf("instance %s returned no pairing code", e.instance)
	}
	return result.Code, nil
}

func (e *EvolutionProvider) post(ctx context.Context, endpoint string, payload interface{}) error {
	jsonData, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewBuffer(jsonData))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("apikey", e.apiKey)

	resp, err := e.client.Do(req)
	if err != nil {
		return fmt.Errorf("evolution request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("evolution API returned status %d: %s", resp.StatusCode, string(body))
	}
	return nil
}

func (e *EvolutionProvider) get(ctx context.Context, endpoint string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("apikey", e.apiKey)

	resp, err := e.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("evolution request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("evolution API returned status %d: %s", resp.StatusCode, string(body))
	}
	return body, nil
}
