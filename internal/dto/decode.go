package dto

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

var ErrMissingData = errors.New("message data is missing")

func DecodeEnvelope(raw []byte) (InboundEnvelope, error) {
	var env InboundEnvelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return InboundEnvelope{}, fmt.Errorf("decode envelope: %w", err)
	}
	if err := validate.Struct(env); err != nil {
		return InboundEnvelope{}, fmt.Errorf("invalid envelope: %s", describe(err))
	}
	return env, nil
}

// Decode unmarshals data into out and runs its validate tags.
func Decode(data json.RawMessage, out any) error {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return ErrMissingData
	}
	if err := json.Unmarshal(trimmed, out); err != nil {
		return fmt.Errorf("decode data: %w", err)
	}
	if err := validate.Struct(out); err != nil {
		return fmt.Errorf("invalid data: %s", describe(err))
	}
	return nil
}

func describe(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err.Error()
	}
	parts := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		parts = append(parts, fmt.Sprintf("%s failed %q", fe.Namespace(), fe.Tag()))
	}
	return strings.Join(parts, ", ")
}
