// Package security provides helpers for safely masking sensitive values in
// logs and diagnostic output.
package security

// MaskSecret masks a client secret or similar credential.
// Short secrets are fully masked; longer ones show the first and last four
// characters.
func MaskSecret(secret string) string {
	if len(secret) <= 8 {
		return "********"
	}
	return secret[:4] + "********" + secret[len(secret)-4:]
}

// MaskGUID masks a GUID, showing only the first and last four characters.
func MaskGUID(guid string) string {
	if len(guid) <= 8 {
		return "****"
	}
	return guid[:4] + "****-****-****-****" + guid[len(guid)-4:]
}

// MaskAccessToken masks a bearer token for display.
// Long tokens show the first eight and last four characters; shorter ones
// show half on each side.
func MaskAccessToken(token string) string {
	if len(token) == 0 {
		return ""
	}
	if len(token) <= 16 {
		return token[:len(token)/2] + "..." + token[len(token)/2:]
	}
	return token[:8] + "..." + token[len(token)-4:]
}
