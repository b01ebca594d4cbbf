// Package idhash derives deterministic record identifiers.
package idhash

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
)

// ComputeMatchID computes a deterministic match_id using SHA256.
// Formula: SHA256(season|team|date|opponent|venue), fields trimmed and
// team/opponent/venue lower-cased. Returns hex-encoded hash (64 characters).
//
// The same fixture appears twice in a season (once in each team's log) and
// yields two ids, since team and opponent swap.
func ComputeMatchID(season, team, date, opponent, venue string) string {
	data := strings.Join([]string{
		strings.TrimSpace(season),
		normalize(team),
		strings.TrimSpace(date),
		normalize(opponent),
		normalize(venue),
	}, "|")

	hash := sha256.Sum256([]byte(data))
	return hex.EncodeToString(hash[:])
}

func normalize(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
