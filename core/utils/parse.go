package utils

import (
	"fmt"
	"strconv"
	"strings"
)

// ParseBool converts user input to a bool. It accepts the usual spellings of
// a switch value: 1/0, true/false, on/off, yes/no, enable/disable.
func ParseBool(raw string) (bool, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "1", "true", "on", "yes", "enable", "enabled":
		return true, nil
	case "0", "false", "off", "no", "disable", "disabled":
		return false, nil
	default:
		return false, fmt.Errorf("%q is not a boolean", raw)
	}
}

// ParseSnowflake validates a platform id. Mentions such as <@123>, <@!123>,
// <@&123> and <#123> are unwrapped.
func ParseSnowflake(raw string) (string, error) {
	id := strings.TrimSpace(raw)
	if strings.HasPrefix(id, "<") && strings.HasSuffix(id, ">") {
		id = strings.TrimSuffix(strings.TrimPrefix(id, "<"), ">")
		id = strings.TrimLeft(id, "@!&#")
	}

	if id == "" {
		return "", fmt.Errorf("empty id")
	}
	if _, err := strconv.ParseUint(id, 10, 64); err != nil {
		return "", fmt.Errorf("%q is not a valid id", raw)
	}
	return id, nil
}
