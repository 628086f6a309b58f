package worlds

import (
	"encoding/json"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const validWorld = `{
	"imageUrl": "https://example.com/a.png",
	"name": "Alpha",
	"id": "wrld_0b7e1f4a-1234-4cde-9abc-0123456789ab",
	"authorName": "someone",
	"authorId": "usr_1",
	"capacity": 32,
	"recommendedCapacity": 16,
	"tags": ["system_approved"],
	"publicationDate": "2024-01-01T00:00:00Z",
	"updated_at": "2024-02-01T00:00:00Z",
	"description": "",
	"visits": 100,
	"favorites": 5,
	"platform": ["standalonewindows"],
	"somethingNew": {"nested": true}
}`

func TestValidate_AcceptsWellFormedRecord(t *testing.T) {
	require.NoError(t, Validate(json.RawMessage(validWorld)))
}

func TestValidate_AcceptsLegacyPrefixAndOptionalFields(t *testing.T) {
	rec := `{"id":"wld_abc","name":"Old","capacity":0,"favorites":0}`
	require.NoError(t, Validate(json.RawMessage(rec)))
}

func TestValidate_Rejects(t *testing.T) {
	tests := []struct {
		name string
		rec  string
	}{
		{"not an object", `["wrld_1"]`},
		{"string", `"wrld_1"`},
		{"empty", ``},
		{"missing id", `{"name":"a","capacity":1,"favorites":1}`},
		{"bad id prefix", `{"id":"usr_1","name":"a","capacity":1,"favorites":1}`},
		{"id with slash", `{"id":"wrld_a/b","name":"a","capacity":1,"favorites":1}`},
		{"missing name", `{"id":"wrld_1","capacity":1,"favorites":1}`},
		{"missing capacity", `{"id":"wrld_1","name":"a","favorites":1}`},
		{"negative favorites", `{"id":"wrld_1","name":"a","capacity":1,"favorites":-1}`},
		{"negative visits", `{"id":"wrld_1","name":"a","capacity":1,"favorites":1,"visits":-3}`},
		{"capacity as string", `{"id":"wrld_1","name":"a","capacity":"16","favorites":1}`},
		{"tags not strings", `{"id":"wrld_1","name":"a","capacity":1,"favorites":1,"tags":[1]}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Error(t, Validate(json.RawMessage(tt.rec)))
		})
	}
}

func TestValidateAll_ReportsIndex(t *testing.T) {
	records := []json.RawMessage{
		json.RawMessage(validWorld),
		json.RawMessage(`{"id":"nope"}`),
	}
	err := ValidateAll(records)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "worlds[1]")
}

func TestValidateAll_Limit(t *testing.T) {
	records := make([]json.RawMessage, MaxPerFolder+1)
	for i := range records {
		records[i] = json.RawMessage(fmt.Sprintf(`{"id":"wrld_%d","name":"w","capacity":1,"favorites":1}`, i))
	}
	require.Error(t, ValidateAll(records))
	require.NoError(t, ValidateAll(records[:MaxPerFolder]))
}

func TestValidateAll_Empty(t *testing.T) {
	require.NoError(t, ValidateAll(nil))
}

func TestValidator_NoNul(t *testing.T) {
	type named struct {
		Name string `validate:"nonul"`
	}
	require.NoError(t, Validator().Struct(named{Name: "plain é"}))
	require.Error(t, Validator().Struct(named{Name: "a\x00b"}))
}
