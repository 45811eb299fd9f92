package domain

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// UnmarshalJSON accepts api_id written either as a number or as a quoted
// string; older session files stored the operator's raw text input.
func (a *Account) UnmarshalJSON(data []byte) error {
	type plain Account
	var aux struct {
		plain
		APIID json.RawMessage `json:"api_id"`
	}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	*a = Account(aux.plain)

	raw := strings.TrimSpace(string(aux.APIID))
	if raw == "" || raw == "null" {
		a.APIID = 0
		return nil
	}
	if unquoted, err := strconv.Unquote(raw); err == nil {
		raw = strings.TrimSpace(unquoted)
		if raw == "" {
			a.APIID = 0
			return nil
		}
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return fmt.Errorf("api_id: %w", err)
	}
	a.APIID = n
	return nil
}
