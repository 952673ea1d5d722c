package schema

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/commercelens/backend/internal/domain/shared"
)

// catalogFile is the on-disk shape of a platform catalog.
type catalogFile struct {
	Platforms []*PlatformTemplate `json:"platforms"`
}

// LoadCatalog decodes platform templates from a JSON catalog. The
// decode is strict and every template is validated, so a malformed
// catalog fails at startup instead of degrading mapping quality at
// runtime.
func LoadCatalog(r io.Reader) ([]*PlatformTemplate, error) {
	dec := json.NewDecoder(r)
	dec.DisallowUnknownFields()

	var file catalogFile
	if err := dec.Decode(&file); err != nil {
		return nil, shared.NewSchemaError("decode platform catalog: %v", err)
	}
	if len(file.Platforms) == 0 {
		return nil, shared.NewSchemaError("platform catalog has no platforms")
	}
	for _, tpl := range file.Platforms {
		if err := tpl.validate(); err != nil {
			return nil, err
		}
	}
	return file.Platforms, nil
}

// LoadCatalogFile reads a JSON catalog from disk.
func LoadCatalogFile(path string) ([]*PlatformTemplate, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open platform catalog: %w", err)
	}
	defer f.Close()
	return LoadCatalog(f)
}
