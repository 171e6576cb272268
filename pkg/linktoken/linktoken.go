// Package linktoken encodes the opaque workflow token handed to a scanner
// after a UEMOA QR generation. The token embeds client identifier, amount
// and issuance timestamp; nothing is persisted, the context is rebuilt
// entirely from the token at resolution time.
package linktoken

import (
	"encoding/base64"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// PathPrefix is the URL path template a token is embedded into.
const PathPrefix = "/api/uemoa-workflow/client-info/"

const delimiter = ":"

var (
	// ErrMalformedToken reports a token that cannot be decoded back into a
	// workflow context: bad base64, missing segments, or unparsable
	// amount/timestamp.
	ErrMalformedToken = errors.New("malformed workflow token")

	// ErrInvalidClientInfo reports client info that cannot be embedded.
	// The delimiter is reserved, so client identifiers containing it are
	// rejected outright rather than escaped.
	ErrInvalidClientInfo = errors.New("invalid client info")
)

// Context is the ephemeral payload carried by a workflow link.
type Context struct {
	ClientInfo string
	Amount     decimal.Decimal
	IssuedAt   time.Time
}

// Encode builds the full link path for the given context. The joined
// clientInfo:amount:timestamp string is base64-encoded with the URL-safe
// alphabet so the token survives inside a path segment.
func Encode(clientInfo string, amount decimal.Decimal, issuedAt time.Time) (string, error) {
	if strings.TrimSpace(clientInfo) == "" {
		return "", fmt.Errorf("%w: empty", ErrInvalidClientInfo)
	}
	if strings.Contains(clientInfo, delimiter) {
		return "", fmt.Errorf("%w: must not contain %q", ErrInvalidClientInfo, delimiter)
	}

	joined := clientInfo + delimiter + amount.String() + delimiter + issuedAt.Format(time.RFC3339)
	return PathPrefix + base64.RawURLEncoding.EncodeToString([]byte(joined)), nil
}

// Decode reverses Encode. It accepts either the bare token or the full link
// path. The timestamp segment is everything after the second delimiter, so
// the colons inside an RFC 3339 timestamp survive the round trip.
func Decode(token string) (Context, error) {
	token = strings.TrimPrefix(token, PathPrefix)

	raw, err := base64.RawURLEncoding.DecodeString(token)
	if err != nil {
		return Context{}, fmt.Errorf("%w: %v", ErrMalformedToken, err)
	}

	parts := strings.SplitN(string(raw), delimiter, 3)
	if len(parts) < 3 {
		return Context{}, fmt.Errorf("%w: expected clientInfo%samount%stimestamp", ErrMalformedToken, delimiter, delimiter)
	}

	amount, err := decimal.NewFromString(parts[1])
	if err != nil {
		return Context{}, fmt.Errorf("%w: bad amount %q", ErrMalformedToken, parts[1])
	}

	issuedAt, err := time.Parse(time.RFC3339, parts[2])
	if err != nil {
		return Context{}, fmt.Errorf("%w: bad timestamp %q", ErrMalformedToken, parts[2])
	}

	return Context{ClientInfo: parts[0], Amount: amount, IssuedAt: issuedAt}, nil
}
