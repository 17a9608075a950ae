package model

import (
	"bytes"
	"encoding/json"
	"strings"

	"github.com/google/uuid"
)

// ID identifies an entity. The remote API may send numeric or string IDs,
// both decode into the same string form.
type ID string

const localPrefix = "local-"

// NewLocalID returns a fresh ID for entities not yet known to the remote API.
func NewLocalID() ID {
	return ID(localPrefix + uuid.New().String())
}

// IsLocal reports whether id was minted by NewLocalID rather than the remote API.
func (id ID) IsLocal() bool { return strings.HasPrefix(string(id), localPrefix) }

// UnmarshalJSON accepts JSON strings, numbers and null.
func (id *ID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*id = ""
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*id = ID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return err
	}
	*id = ID(n.String())
	return nil
}

func (id ID) String() string { return string(id) }
