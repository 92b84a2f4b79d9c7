// Package credentials contains helpers to read data out of credential tokens
// returned by the wallet sandbox.
package credentials

import (
	"errors"
	"strings"

	"github.com/golang-jwt/jwt/v5"
)

// ErrNoCredentialID is returned when the token carries no recognizable credential identifier.
var ErrNoCredentialID = errors.New("credential token carries no credential identifier")

const cidMarker = "credential/"

// ExtractCID reads the external credential identifier out of a claimed
// credential JWT. The token is treated as opaque: it is decoded without
// signature verification (the sandbox is the trusted source, reached over an
// authenticated channel) and the identifier is the path segment that follows
// "credential/" in the token identifier claim. The "jti" claim is checked
// first, then the "id" field of an embedded "vc" claim set.
func ExtractCID(token string) (string, error) {
	parsed, _, err := jwt.NewParser().ParseUnverified(token, jwt.MapClaims{})
	if err != nil {
		return "", err
	}

	claims, ok := parsed.Claims.(jwt.MapClaims)
	if !ok {
		return "", ErrNoCredentialID
	}

	if jti, ok := claims["jti"].(string); ok {
		if cid, found := cidFromIdentifier(jti); found {
			return cid, nil
		}
	}

	if vc, ok := claims["vc"].(map[string]any); ok {
		if id, ok := vc["id"].(string); ok {
			if cid, found := cidFromIdentifier(id); found {
				return cid, nil
			}
		}
	}

	return "", ErrNoCredentialID
}

// cidFromIdentifier extracts the segment following the credential path marker.
// Anything after a subsequent "/" or "?" does not belong to the identifier.
func cidFromIdentifier(identifier string) (string, bool) {
	idx := strings.LastIndex(identifier, cidMarker)
	if idx < 0 {
		return "", false
	}
	cid := identifier[idx+len(cidMarker):]
	if end := strings.IndexAny(cid, "/?"); end >= 0 {
		cid = cid[:end]
	}
	if cid == "" {
		return "", false
	}
	return cid, true
}
