// internal/core/gateway/zapi.go
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

// ZAPIProvider talks to Z-API. Unlike Evolution, Z-API supports native
// button lists, so it reports interactive affordances.
type ZAPIProvider struct {
	baseURL    string
	instanceID string
	token      string
	client     *http.Client
}

func NewZAPIProvider(baseURL, instanceID, token string) *ZAPIProvider {
	if baseURL == "" {
		baseURL = "https://api.z-api.io"
	}
	return &ZAPIProvider{
		baseURL:    baseURL,
		instanceID: instanceID,
		token:      token,
		client: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

func (z *ZAPIProvider) GetProviderName() string { return "zapi" }

func (z *ZAPIProvider) InstanceName() string { return z.instanceID }

func (z *ZAPIProvider) Capabilities() template.ChannelCapabilities {
	return template.ChannelCapabilities{SupportsInteractiveAffordances: true}
}

func (z *ZAPIProvider) endpoint(path string) string {
	return fmt.Sprintf("%s/instances/%s/token/%s%s", z.baseURL, z.instanceID, z.token, path)
}

func (z *ZAPIProvider) SendText(ctx context.Context, phone, text string) error {
	payload := map[string]interface{}{
		"phone":   phone,
		"message": text,
	}
	return z.post(ctx, z.endpoint("/send-text"), payload)
}

func (z *ZAPIProvider) SendButtons(ctx context.Context, phone, text string, buttons []template.Button) error {
	buttonList := make([]map[string]string, 0, len(buttons))
	for _, b := range buttons {
		buttonList = append(buttonList, map[string]string{
			"id":    b.ID,
			"label": b.Label,
		})
	}

	payload := map[string]interface{}{
		"phone":   phone,
		"message": text,
		"buttonList": map[string]interface{}{
			"buttons": buttonList,
		},
	}
	return z.post(ctx, z.endpoint("/send-button-list"), payload)
}

func (z *ZAPIProvider) CheckHealth(ctx context.Context) error {
	body, err := z.get(ctx, z.endpoint("/status"))
	if err != nil {
		return err
	}

	var result struct {
		Connected bool   `json:"connected"`
		Error     string `json:"error"`
	}
	if err := json.Unmarshal(body, &result); err != nil {
		return fmt.Errorf("failed to decode status: %w", err)
	}
	if !result.Connected {
		return fmt.Errorf("zapi instance %s not connected: %s", z.instanceID, result.Error)
	}
	return nil
}

func (z *ZAPIProvider) PairingCode(ctx context.Context) (string, error) {
	body, err := z.get(ctx, z.endpoint("/qr-code"))
	if err != nil {
		return "", err
	}

	var result struct {
		Value string `json:"value"`
	}
	if err := json.Unmarshal(body, &result); err != nil {
		return "", fmt.Errorf("failed to decode qr-code response: %w", err)
	}
	if result.Value == "" {
		return "", fmt.Errorf("zapi instance %s returned no qr code", z.instanceID)
	}
	return result.Value, nil
}

func (z *ZAPIProvider) post(ctx context.Context, endpoint string, payload interface{}) error {
	jsonData, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewBuffer(jsonData))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := z.client.Do(req)
	if err != nil {
		return fmt.Errorf("zapi request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("Z-API returned status %d: %s", resp.StatusCode, string(body))
	}
	return nil
}

func (z *ZAPIProvider) get(ctx context.Context, endpoint string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}

	resp, err := z.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("zapi request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("Z-API returned status %d: %s", resp.StatusCode, string(body))
	}
	return body, nil
}
