package batch

import (
	"bufio"
	"encoding/json"
	"io"
	"mime"
	"net/textproto"
	"strconv"
	"strings"
)

// boundaryFromContentType extracts the provider's boundary token from a
// multipart/mixed Content-Type header. The provider generates its own
// token; it is never the one we sent.
func boundaryFromContentType(contentType string) (string, bool) {
	mediaType, params, err := mime.ParseMediaType(contentType)
	if err != nil || !strings.HasPrefix(mediaType, "multipart/") {
		return "", false
	}
	boundary, ok := params["boundary"]
	return boundary, ok && boundary != ""
}

// decodeBody splits a multipart batch response on the provider boundary
// and parses each part into a SubResponse, preserving part order.
// Malformed parts degrade to a SubResponse carrying the raw text rather
// than failing the decode.
func decodeBody(body []byte, boundary string) []SubResponse {
	delim := "--" + boundary
	segments := strings.Split(string(body), delim)

	var parts []SubResponse
	for i, seg := range segments {
		if i == 0 {
			// Preamble before the first boundary.
			continue
		}
		trimmed := strings.TrimLeft(seg, "\r\n")
		if strings.HasPrefix(trimmed, "--") {
			// Terminal boundary marker.
			break
		}
		parts = append(parts, parsePart(trimmed))
	}
	return parts
}

// parsePart parses one part: MIME part headers, a blank line, then a
// nested HTTP response (status line, headers, blank line, body).
func parsePart(seg string) SubResponse {
	r := textproto.NewReader(bufio.NewReader(strings.NewReader(seg)))

	// Part headers (Content-Type: application/http, Content-ID).
	if _, err := r.ReadMIMEHeader(); err != nil && err != io.EOF {
		return SubResponse{RawText: strings.TrimSpace(seg)}
	}

	statusLine, err := r.ReadLine()
	if err != nil {
		return SubResponse{RawText: strings.TrimSpace(seg)}
	}
	code, ok := parseStatusLine(statusLine)
	if !ok {
		return SubResponse{RawText: strings.TrimSpace(seg)}
	}

	header, err := r.ReadMIMEHeader()
	if err != nil && err != io.EOF {
		header = textproto.MIMEHeader{}
	}

	rest, _ := io.ReadAll(r.R)
	bodyText := strings.Trim(string(rest), "\r\n")

	resp := SubResponse{
		StatusCode: code,
		Header:     header,
		RawText:    bodyText,
	}
	if bodyText != "" && json.Valid([]byte(bodyText)) {
		resp.Body = json.RawMessage(bodyText)
	}
	return resp
}

// parseStatusLine extracts the status code from a line like
// "HTTP/1.1 404 Not Found".
func parseStatusLine(line string) (int, bool) {
	fields := strings.SplitN(strings.TrimSpace(line), " ", 3)
	if len(fields) < 2 || !strings.HasPrefix(fields[0], "HTTP/") {
		return 0, false
	}
	code, err := strconv.Atoi(fields[1])
	if err != nil {
		return 0, false
	}
	return code, true
}
