package postgres

import "encoding/json"

// jsonbArg marshals v for binding to a jsonb column or operator. The value
// must reach the driver as text: lib/pq sends every []byte parameter as
// bytea hex, which the server's jsonb input parser rejects.
func jsonbArg(v any) (string, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return "", err
	}
	return string(b), nil
}
