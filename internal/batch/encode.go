package batch

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"
)

// encodeBody frames the sub-requests into a multipart/mixed body using
// the given boundary token. Each part carries an application/http
// payload: a synthetic "METHOD PATH" request line, any custom headers,
// and an optional JSON body.
func encodeBody(boundary string, reqs []SubRequest) ([]byte, error) {
	var b bytes.Buffer

	for i, req := range reqs {
		fmt.Fprintf(&b, "--%s\r\n", boundary)
		b.WriteString("Content-Type: application/http\r\n")
		// Content-ID correlates parts for human inspection only; the
		// decoder relies on part order, not on this value.
		fmt.Fprintf(&b, "Content-ID: <item%d>\r\n", i+1)
		b.WriteString("\r\n")

		fmt.Fprintf(&b, "%s %s\r\n", req.Method, req.Path)

		for _, k := range sortedKeys(req.Headers) {
			fmt.Fprintf(&b, "%s: %s\r\n", k, req.Headers[k])
		}

		if req.Body != nil {
			payload, err := json.Marshal(req.Body)
			if err != nil {
				return nil, fmt.Errorf("failed to serialize body of sub-request %d: %w", i+1, err)
			}
			b.WriteString("Content-Type: application/json\r\n")
			b.WriteString("\r\n")
			b.Write(payload)
			b.WriteString("\r\n")
		} else {
			b.WriteString("\r\n")
		}
	}

	fmt.Fprintf(&b, "--%s--\r\n", boundary)
	return b.Bytes(), nil
}

func sortedKeys(m map[string]string) []string {
	if len(m) == 0 {
		return nil
	}
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
