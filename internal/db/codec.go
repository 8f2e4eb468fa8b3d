package db

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/balkashynov/taskflow/internal/models"
)

// Load reads key and decodes it into a value of type T.
// Absent keys return found=false. Bad JSON or a value that fails
// validation returns an error wrapping ErrMalformedStoredData.
func Load[T any](ctx context.Context, s Store, key string) (value T, found bool, err error) {
	data, found, err := s.Get(ctx, key)
	if err != nil || !found {
		return value, found, err
	}
	value, err = Decode[T](data)
	if err != nil {
		return value, true, fmt.Errorf("%s: %w", key, err)
	}
	return value, true, nil
}

// Decode unmarshals data and validates the result.
// Slices are validated element by element.
func Decode[T any](data []byte) (T, error) {
	var value T
	if err := json.Unmarshal(data, &value); err != nil {
		return value, fmt.Errorf("%w: %v", ErrMalformedStoredData, err)
	}
	if err := validateValue(value); err != nil {
		return value, fmt.Errorf("%w: %v", ErrMalformedStoredData, err)
	}
	return value, nil
}

// Encode marshals a value for storage
func Encode(value any) ([]byte, error) {
	data, err := json.Marshal(value)
	if err != nil {
		return nil, fmt.Errorf("failed to encode value: %w", err)
	}
	return data, nil
}

// Save encodes value and writes it under key
func Save(ctx context.Context, s Store, key string, value any) error {
	data, err := Encode(value)
	if err != nil {
		return err
	}
	return s.Set(ctx, key, data)
}

func validateValue(value any) error {
	switch v := value.(type) {
	case []models.Task:
		return models.Validator().Var(v, "dive")
	case []models.Credential:
		return models.Validator().Var(v, "dive")
	case models.User, *models.User, models.Credential, models.Task:
		return models.Validate(v)
	default:
		return nil
	}
}
