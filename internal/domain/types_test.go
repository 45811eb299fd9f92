package domain_test

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/danhigham/telefleet/internal/domain"
)

func TestKeys(t *testing.T) {
	assert.Equal(t, "session_12", domain.FormatKey(12))

	for key, want := range map[string]int{"session_1": 1, "session_40": 40} {
		n, ok := domain.ParseKey(key)
		assert.True(t, ok, key)
		assert.Equal(t, want, n, key)
	}
	for _, key := range []string{"", "session_", "session_0", "session_-3", "session_x", "acc_1"} {
		_, ok := domain.ParseKey(key)
		assert.False(t, ok, key)
	}
}

func TestSortedKeys(t *testing.T) {
	accounts := map[string]domain.Account{
		"session_10": {}, "session_2": {}, "legacy": {}, "session_1": {},
	}
	assert.Equal(t, []string{"session_1", "session_2", "session_10", "legacy"}, domain.SortedKeys(accounts))
}

func TestDisplayName(t *testing.T) {
	assert.Equal(t, "Ann Lee", domain.Account{FirstName: "Ann", LastName: "Lee"}.DisplayName())
	assert.Equal(t, "Ann", domain.Account{FirstName: "Ann", Username: "ann"}.DisplayName())
	assert.Equal(t, "@ann", domain.Account{Username: "ann"}.DisplayName())
	assert.Equal(t, "session_3", domain.Account{Key: "session_3"}.DisplayName())
}

func TestValidate(t *testing.T) {
	ok := domain.Account{Key: "session_1", APIID: 1, APIHash: "h", Session: "s"}
	require.NoError(t, ok.Validate())

	missingSession := ok
	missingSession.Session = ""
	assert.ErrorContains(t, missingSession.Validate(), "session string missing")

	missingID := ok
	missingID.APIID = 0
	assert.ErrorContains(t, missingID.Validate(), "api id missing")

	missingHash := ok
	missingHash.APIHash = ""
	assert.ErrorContains(t, missingHash.Validate(), "api hash missing")
}

func TestUnmarshalAPIID(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want int
	}{
		{"number", `{"api_id": 12345}`, 12345},
		{"string", `{"api_id": "12345"}`, 12345},
		{"padded string", `{"api_id": " 777 "}`, 777},
		{"empty string", `{"api_id": ""}`, 0},
		{"null", `{"api_id": null}`, 0},
		{"missing", `{}`, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var acc domain.Account
			require.NoError(t, json.Unmarshal([]byte(tt.raw), &acc))
			assert.Equal(t, tt.want, acc.APIID)
		})
	}

	var acc domain.Account
	assert.Error(t, json.Unmarshal([]byte(`{"api_id": "abc"}`), &acc))
}

func TestUnmarshalKeepsFields(t *testing.T) {
	var acc domain.Account
	raw := `{"id": 3, "api_hash": "h", "api_id": "9", "phone": "+1", "session": "1abc",
		"first_name": "Ann", "last_name": "Lee", "username": null, "account_id": "77"}`
	require.NoError(t, json.Unmarshal([]byte(raw), &acc))

	assert.Equal(t, domain.Account{
		ID: 3, APIHash: "h", APIID: 9, Phone: "+1", Session: "1abc",
		FirstName: "Ann", LastName: "Lee", AccountID: "77",
	}, acc)
}

func TestTerminable(t *testing.T) {
	sessions := []domain.Session{
		{Authorization: domain.Authorization{Hash: 1}},
		{Authorization: domain.Authorization{Hash: 2, Current: true}},
		{Authorization: domain.Authorization{Hash: 3}},
	}
	assert.Equal(t, []int{1, 3}, domain.Terminable(sessions))
	assert.Empty(t, domain.Terminable(nil))
}

func TestProfileUpdateEmpty(t *testing.T) {
	assert.True(t, domain.ProfileUpdate{}.Empty())
	bio := ""
	assert.False(t, domain.ProfileUpdate{Bio: &bio}.Empty())
}
