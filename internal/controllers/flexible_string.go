package controllers

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// FlexibleID accepts an id sent either as a JSON number or as a numeric
// string. null and "" leave it zero.
type FlexibleID uint

func (id *FlexibleID) UnmarshalJSON(data []byte) error {
	if id == nil {
		return fmt.Errorf("FlexibleID: nil receiver")
	}
	trimmed := bytes.TrimSpace(data)
	if bytes.Equal(trimmed, []byte("null")) {
		return nil
	}

	var raw string
	if err := json.Unmarshal(trimmed, &raw); err == nil {
		raw = strings.TrimSpace(raw)
		if raw == "" {
			return nil
		}
	} else {
		var num json.Number
		if err := json.Unmarshal(trimmed, &num); err != nil {
			return fmt.Errorf("FlexibleID: expected string or number, got %s", string(data))
		}
		raw = num.String()
	}

	v, err := strconv.ParseUint(raw, 10, 64)
	if err != nil {
		return fmt.Errorf("FlexibleID: %q is not a valid id", raw)
	}
	*id = FlexibleID(v)
	return nil
}

func (id FlexibleID) Uint() uint {
	return uint(id)
}
