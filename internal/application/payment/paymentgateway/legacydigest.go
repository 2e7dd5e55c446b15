package paymentgateway

import (
	"crypto/md5"
	"crypto/subtle"
	"encoding/hex"
	"regexp"
)

// The legacy gateway appends "&hash=<md5>" to the callback URL. The digest
// covers everything before "hash=" (including the separating "&") followed
// by the merchant digest key. MD5 is what the gateway speaks; it cannot be
// upgraded from this side.
var (
	legacyHashParam = regexp.MustCompile(`^.*&hash=(?P<hash>.*)$`)
	legacyHashTail  = regexp.MustCompile(`hash=.*$`)
)

// SignLegacyRequest computes the digest field of the outbound payment form.
func SignLegacyRequest(transID, amount, remotePassword string) string {
	return md5Hex(transID + amount + remotePassword)
}

// VerifyLegacyResponse reports whether pathAndQuery carries a valid
// trailing hash for digestKey. A missing hash is simply invalid.
func VerifyLegacyResponse(pathAndQuery, digestKey string) bool {
	m := legacyHashParam.FindStringSubmatch(pathAndQuery)
	if m == nil {
		return false
	}
	provided := m[legacyHashParam.SubexpIndex("hash")]
	signed := legacyHashTail.ReplaceAllString(pathAndQuery, "")
	expected := md5Hex(signed + digestKey)
	return subtle.ConstantTimeCompare([]byte(provided), []byte(expected)) == 1
}

// SignLegacyResponse appends the hash parameter the gateway would add to
// pathAndQuery. pathAndQuery must already contain a query string.
func SignLegacyResponse(pathAndQuery, digestKey string) string {
	signed := pathAndQuery + "&"
	return signed + "hash=" + md5Hex(signed+digestKey)
}

func md5Hex(s string) string {
	sum := md5.Sum([]byte(s))
	return hex.EncodeToString(sum[:])
}
