package tracker

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"net/url"
	"strconv"
	"strings"
)

// DecodeJSON reads a JSON object body into loosely typed fields. An empty body is an empty object.
func DecodeJSON(body []byte) (map[string]any, error) {
	fields := map[string]any{}
	if len(bytes.TrimSpace(body)) == 0 {
		return fields, nil
	}

	dec := json.NewDecoder(bytes.NewReader(body))
	dec.UseNumber()
	if err := dec.Decode(&fields); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidBody, err)
	}
	if err := dec.Decode(&struct{}{}); !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("%w: trailing data after object", ErrInvalidBody)
	}
	return fields, nil
}

// DecodeForm reads an urlencoded body, keeping the first value of each key.
func DecodeForm(values url.Values) map[string]any {
	fields := make(map[string]any, len(values))
	for k, v := range values {
		if len(v) > 0 {
			fields[k] = v[0]
		}
	}
	return fields
}

func ParseSubmission(fields map[string]any) (Submission, error) {
	count, err := coerceCount(fields["player_count"])
	if err != nil {
		return Submission{}, err
	}

	return Submission{
		PlayerCount: count,
		RoomName:    optionalString(fields["room_name"]),
		GameVersion: optionalString(fields["game_version"]),
		GameName:    optionalString(fields["game_name"]),
	}, nil
}

func coerceCount(v any) (int, error) {
	var n int64
	switch val := v.(type) {
	case json.Number:
		i, err := val.Int64()
		if err != nil {
			f, ferr := val.Float64()
			if ferr != nil || f != math.Trunc(f) || f > math.MaxInt32 || f < math.MinInt32 {
				return 0, ErrValidation
			}
			i = int64(f)
		}
		n = i
	case string:
		i, err := strconv.ParseInt(strings.TrimSpace(val), 10, 64)
		if err != nil {
			return 0, ErrValidation
		}
		n = i
	default:
		return 0, ErrValidation
	}

	if n < 0 || n > math.MaxInt32 {
		return 0, ErrValidation
	}
	return int(n), nil
}

func optionalString(v any) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return val
	default:
		return fmt.Sprint(val)
	}
}
