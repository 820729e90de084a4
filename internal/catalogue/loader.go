package catalogue

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/wonny/investsim/internal/contracts"
	"github.com/wonny/investsim/internal/normalize"
)

// Load reads a YAML catalogue file
func Load(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read catalogue %s: %w", path, err)
	}
	return Parse(data)
}

// Parse decodes and validates a YAML catalogue.
// KnownFields(true): 오타/미사용 필드 즉시 실패
func Parse(data []byte) (*File, error) {
	var f File
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&f); err != nil {
		return nil, fmt.Errorf("decode catalogue: %w: %w", contracts.ErrInvalidCatalogue, err)
	}

	if err := Validate(&f); err != nil {
		return nil, err
	}
	return &f, nil
}

// Validate checks every product: named, unique per class, finite non-negative rate
func Validate(f *File) error {
	for _, class := range []contracts.AssetClass{contracts.ClassFixedIncome, contracts.ClassFund} {
		seen := make(map[string]bool)
		for _, p := range f.Products(class) {
			if err := normalize.ValidateProduct(p); err != nil {
				return fmt.Errorf("%s: %w", class, err)
			}
			if seen[p.Name] {
				return fmt.Errorf("%s: duplicate product %q: %w", class, p.Name, contracts.ErrInvalidCatalogue)
			}
			seen[p.Name] = true
		}
	}
	return nil
}

// Hash returns the SHA256 of the canonical JSON form, logged with each run
// so a report can be traced back to the catalogue that produced it.
func Hash(f *File) (string, error) {
	jsonBytes, err := json.Marshal(f)
	if err != nil {
		return "", err
	}

	sum := sha256.Sum256(jsonBytes)
	return hex.EncodeToString(sum[:]), nil
}
