package util

import (
	"encoding/json"
	"fmt"
)

// PrintPrettyJSON marshals v with two-space indentation and prints it to stdout.
func PrintPrettyJSON(v any) error {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(b))
	return nil
}
