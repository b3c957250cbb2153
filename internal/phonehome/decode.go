package phonehome

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/samber/lo"
)

// installation is one entry of the service's nethservers list.
type installation struct {
	NumInstallation *installCount `json:"num_installation"`
}

type summary struct {
	Nethservers *[]installation `json:"nethservers"`
}

// installCount accepts both "12" and 12 on the wire.
type installCount string

func (c *installCount) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*c = installCount(s)
		return nil
	}
	if bytes.Equal(b, []byte("null")) {
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return err
	}
	*c = installCount(n.String())
	return nil
}

// Decode parses a response body and returns the summed installation count
// and the number of entries it was summed over.
//
// The service double-encodes its payload: the body is a JSON string whose
// content is the JSON document. Any malformed entry fails the whole decode.
func Decode(body []byte) (total int, entries int, err error) {
	var inner string
	if err := json.Unmarshal(body, &inner); err != nil {
		return 0, 0, fmt.Errorf("%w: outer payload is not a JSON string: %w", ErrParse, err)
	}

	var s summary
	if err := json.Unmarshal([]byte(inner), &s); err != nil {
		return 0, 0, fmt.Errorf("%w: inner payload: %w", ErrParse, err)
	}
	if s.Nethservers == nil {
		return 0, 0, fmt.Errorf("%w: missing nethservers", ErrParse)
	}

	list := *s.Nethservers
	counts := make([]int, 0, len(list))
	room := math.MaxInt
	for i, inst := range list {
		n, err := parseCount(inst.NumInstallation)
		if err != nil {
			return 0, 0, fmt.Errorf("%w: nethservers[%d]: %w", ErrParse, i, err)
		}
		if n > room {
			return 0, 0, fmt.Errorf("%w: nethservers[%d]: total overflows int", ErrParse, i)
		}
		room -= n
		counts = append(counts, n)
	}

	return lo.Sum(counts), len(list), nil
}

func parseCount(c *installCount) (int, error) {
	if c == nil {
		return 0, fmt.Errorf("num_installation missing")
	}
	raw := strings.TrimSpace(string(*c))
	if raw == "" {
		return 0, fmt.Errorf("num_installation empty")
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("num_installation %q is not an integer", raw)
	}
	if n < 0 {
		return 0, fmt.Errorf("num_installation %d is negative", n)
	}
	return n, nil
}
