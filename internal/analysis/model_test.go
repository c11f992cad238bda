package analysis

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidateRejectsEmptyRequest(t *testing.T) {
	err := Request{}.Validate()

	var validationErr *ValidationError
	assert.True(t, errors.As(err, &validationErr))
}

func TestValidateRejectsBlankPrompt(t *testing.T) {
	err := Request{PromptText: "   \t"}.Validate()
	assert.Error(t, err)
}

func TestValidateAcceptsPromptOnly(t *testing.T) {
	assert.NoError(t, Request{PromptText: "chicken and rice"}.Validate())
}

func TestValidateAcceptsImageOnly(t *testing.T) {
	assert.NoError(t, Request{Image: []byte{0x89, 0x50}}.Validate())
}

func TestRecipeUnmarshalFoldsSteps(t *testing.T) {
	var r Recipe
	err := json.Unmarshal([]byte(`{"title":"Soup","ingredients":["water"],"steps":["boil","serve"]}`), &r)

	assert.NoError(t, err)
	assert.Equal(t, []string{"boil", "serve"}, r.Instructions)
}

func TestRecipeUnmarshalPrefersInstructions(t *testing.T) {
	var r Recipe
	err := json.Unmarshal([]byte(`{"title":"Soup","instructions":["simmer"],"steps":["boil"]}`), &r)

	assert.NoError(t, err)
	assert.Equal(t, []string{"simmer"}, r.Instructions)
}

func TestErrorsArePermanentWhereExpected(t *testing.T) {
	assert.True(t, (&ValidationError{}).Permanent())
	assert.True(t, (&BackendError{}).Permanent())
}

func TestTransportErrorMessageFallsBackToStatus(t *testing.T) {
	err := &TransportError{Status: 502}
	assert.Contains(t, err.Error(), "502")
}
