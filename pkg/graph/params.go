package graph

import (
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"
)

// Encode splits the params into wire form values and upload sources. Scalars
// become their string form; maps and slices travel as embedded JSON strings
// (structured restriction rules, batch descriptions, and similar arguments
// expect this); *UploadIO values are returned separately so the transport can
// stream them as multipart fields.
func (p Params) Encode() (url.Values, map[string]*UploadIO, error) {
	values := url.Values{}
	files := map[string]*UploadIO{}

	for key, value := range p {
		switch typed := value.(type) {
		case nil:
			continue
		case *UploadIO:
			files[key] = typed
		case string:
			values.Set(key, typed)
		case bool:
			values.Set(key, strconv.FormatBool(typed))
		case int:
			values.Set(key, strconv.Itoa(typed))
		case int64:
			values.Set(key, strconv.FormatInt(typed, 10))
		case float64:
			values.Set(key, strconv.FormatFloat(typed, 'f', -1, 64))
		case fmt.Stringer:
			values.Set(key, typed.String())
		default:
			encoded, err := json.Marshal(typed)
			if err != nil {
				return nil, nil, fmt.Errorf("encoding parameter %q: %w", key, err)
			}

			values.Set(key, string(encoded))
		}
	}

	return values, files, nil
}
