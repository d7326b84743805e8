package template

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/oraclewa/oraclewa/internal/shared/utils"
)

// FileProvider reads variant sets from per-client JSON files laid out as
//
//	<root>/<clientID>/templates/variations/<event>.json
//
// where each file holds a JSON array of variants. This mirrors the
// per-client directory convention the operation already uses.
type FileProvider struct {
	root string
}

func NewFileProvider(root string) *FileProvider {
	return &FileProvider{root: root}
}

func (p *FileProvider) LoadVariantSets(ctx context.Context) ([]VariantSet, error) {
	entries, err := os.ReadDir(p.root)
	if err != nil {
		if os.IsNotExist(err) {
			// No clients directory yet is a valid empty deployment.
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read clients dir %s: %w", p.root, err)
	}

	var sets []VariantSet
	for _, entry := range entries {
		if !entry.IsDir() || strings.HasPrefix(entry.Name(), ".") {
			continue
		}
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		clientSets, err := p.loadClient(entry.Name())
		if err != nil {
			utils.LogError("failed to load client variations", err, map[string]interface{}{
				"client_id": entry.Name(),
			})
			continue
		}
		sets = append(sets, clientSets...)
	}

	return sets, nil
}

func (p *FileProvider) loadClient(clientID string) ([]VariantSet, error) {
	dir := filepath.Join(p.root, clientID, "templates", "variations")
	files, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil // client has no variations configured
		}
		return nil, err
	}

	var sets []VariantSet
	for _, file := range files {
		if file.IsDir() || !strings.HasSuffix(file.Name(), ".json") {
			continue
		}

		event := EventType(strings.TrimSuffix(file.Name(), ".json"))
		raw, err := os.ReadFile(filepath.Join(dir, file.Name()))
		if err != nil {
			return nil, err
		}

		var variants []Variant
		if err := json.Unmarshal(raw, &variants); err != nil {
			return nil, fmt.Errorf("%w: %s/%s: %v", ErrMalformedVariantSet, clientID, event, err)
		}

		sets = append(sets, VariantSet{
			ClientID: clientID,
			Event:    event,
			Variants: variants,
		})
	}

	return sets, nil
}
