package common

import (
	"fmt"
	"os"
	"path/filepath"

	"field-booking-go/internal/pricing"
	"field-booking-go/internal/store"

	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v2"
)

type FieldConfig struct {
	Id           string `yaml:"id"`
	Name         string `yaml:"name"`
	PricePerHour string `yaml:"price_per_hour"`
	OwnerUserId  string `yaml:"owner_user_id"`
	BusinessName string `yaml:"business_name"`
}

type FieldsConfig struct {
	Fields []FieldConfig `yaml:"fields"`
}

// LoadFieldCatalog reads the operator field catalog and returns it ready for seeding
func LoadFieldCatalog(fieldsFile string) ([]store.FieldParams, error) {
	var fieldsPath string
	if filepath.IsAbs(fieldsFile) {
		fieldsPath = fieldsFile
	} else {
		wd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("failed to get working directory: %w", err)
		}
		fieldsPath = filepath.Join(wd, fieldsFile)
	}

	data, err := os.ReadFile(fieldsPath)
	if err != nil {
		return nil, fmt.Errorf("unable to read %s: %w", fieldsFile, err)
	}

	var config FieldsConfig
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("unable to parse %s: %w", fieldsFile, err)
	}

	params := make([]store.FieldParams, len(config.Fields))
	for i, field := range config.Fields {
		if field.Id == "" {
			return nil, fmt.Errorf("field at index %d missing id", i)
		}
		if field.Name == "" {
			return nil, fmt.Errorf("field %s missing name", field.Id)
		}
		price, err := decimal.NewFromString(field.PricePerHour)
		if err != nil {
			return nil, fmt.Errorf("field %s has invalid price_per_hour %q: %w", field.Id, field.PricePerHour, err)
		}
		if !price.IsPositive() {
			return nil, fmt.Errorf("field %s price_per_hour must be positive", field.Id)
		}
		if !price.Equal(price.Round(pricing.Places)) {
			return nil, fmt.Errorf("field %s price_per_hour %s has more than %d decimal places", field.Id, field.PricePerHour, pricing.Places)
		}

		params[i] = store.FieldParams{
			Id:           field.Id,
			Name:         field.Name,
			PricePerHour: price,
			OwnerUserId:  field.OwnerUserId,
			BusinessName: field.BusinessName,
		}
	}

	return params, nil
}
