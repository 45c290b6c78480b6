package event

import (
	"fmt"

	"github.com/promptintellect/socialgen/utils"
)

// PlaceholderID stands in for any identifier that could not be extracted
// from the inbound event, so that a failure report can always be built.
const PlaceholderID = "unknown"

// IntakeError reports a required event field that is missing or empty.
type IntakeError struct {
	Field string
}

func (e *IntakeError) Error() string {
	return fmt.Sprintf("missing required field %q", e.Field)
}

// Identity carries the routing identifiers of one execution. It is extracted
// before any fallible step so the failure-reporting path never depends on
// successful intake.
type Identity struct {
	ExecutionID string
	UserID      string
	ProductID   string
	Token       string
}

// Request is one fully validated execution request. Immutable once parsed;
// it lives only for the duration of a single workflow run.
type Request struct {
	Identity
	CustomInputs map[string]string
}

// ExtractIdentity pulls the routing identifiers out of a raw event without
// failing: absent or empty values become PlaceholderID (empty token stays
// empty — it is an opaque pass-through, not an identifier).
func ExtractIdentity(raw map[string]interface{}) Identity {
	id := Identity{
		ExecutionID: utils.Str(raw["execution_id"]),
		UserID:      utils.Str(raw["user_id"]),
		ProductID:   utils.Str(raw["product_id"]),
		Token:       utils.Str(raw["token"]),
	}
	if id.ExecutionID == "" {
		id.ExecutionID = PlaceholderID
	}
	if id.UserID == "" {
		id.UserID = PlaceholderID
	}
	if id.ProductID == "" {
		id.ProductID = PlaceholderID
	}
	return id
}

// Parse validates the raw event and returns a Request. Every required key
// must be present and non-empty; the first missing one is reported as an
// IntakeError before any external call is made.
func Parse(raw map[string]interface{}) (Request, error) {
	for _, field := range []string{"execution_id", "user_id", "product_id", "token"} {
		if utils.Str(raw[field]) == "" {
			return Request{}, &IntakeError{Field: field}
		}
	}

	inputsRaw, ok := raw["custom_inputs"].(map[string]interface{})
	if !ok {
		return Request{}, &IntakeError{Field: "custom_inputs"}
	}
	inputs := make(map[string]string, len(inputsRaw))
	for k, v := range inputsRaw {
		inputs[k] = utils.Str(v)
	}

	return Request{
		Identity:     ExtractIdentity(raw),
		CustomInputs: inputs,
	}, nil
}
