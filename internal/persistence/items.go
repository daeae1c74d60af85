package persistence

import "encoding/json"

func marshalItems(items []OrderItem) (string, error) {
	data, err := json.Marshal(items)
	if err != nil {
		return "", err
	}
	return string(data), nil
}
