package domain

import "fmt"

// scanString extracts a non-NULL string column value for enum types.
func scanString(value any, typeName string) (string, error) {
	if value == nil {
		return "", fmt.Errorf("%s cannot be NULL", typeName)
	}

	switch v := value.(type) {
	case string:
		return v, nil
	case []byte:
		return string(v), nil
	default:
		return "", fmt.Errorf("cannot scan %T into %s", value, typeName)
	}
}
