package types

import (
	"crypto/rand"
	"encoding/json"
)

// TokenLength is the number of characters in a game token.
const TokenLength = 5

// tokenCharset is the set of characters tokens are drawn from.
const tokenCharset = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

// GameToken is the short human-enterable code identifying a live game
// (e.g. A3DLM). Stored as a fixed-length byte array so tokens are cheap
// to copy, compare and use as map keys.
type GameToken [TokenLength]byte

// ParseToken checks length and charset of the provided string and
// returns the token value. Returns ErrInvalidToken on any mismatch.
func ParseToken(s string) (GameToken, error) {
	var token GameToken

	if len(s) != TokenLength {
		return token, ErrInvalidToken
	}

	for i := 0; i < TokenLength; i++ {
		c := s[i]
		if (c < 'A' || c > 'Z') && (c < '0' || c > '9') {
			return token, ErrInvalidToken
		}
		token[i] = c
	}

	return token, nil
}

// NewUniqueToken generates a random token that is not already taken.
// Characters are drawn uniformly from the charset using rejection
// sampling over crypto/rand, retrying whole tokens until the provided
// predicate reports the value as free.
func NewUniqueToken(taken func(GameToken) bool) GameToken {
	var token GameToken
	buf := make([]byte, TokenLength*2)

	for {
		filled := 0
		for filled < TokenLength {
			if _, err := rand.Read(buf); err != nil {
				panic("crypto/rand failure: " + err.Error())
			}
			for _, b := range buf {
				// Reject values that would bias the distribution.
				if int(b) >= 256-(256%len(tokenCharset)) {
					continue
				}
				token[filled] = tokenCharset[int(b)%len(tokenCharset)]
				filled++
				if filled == TokenLength {
					break
				}
			}
		}

		if !taken(token) {
			return token
		}
	}
}

func (t GameToken) String() string { return string(t[:]) }

func (t GameToken) MarshalJSON() ([]byte, error) {
	return json.Marshal(t.String())
}

func (t *GameToken) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	parsed, err := ParseToken(s)
	if err != nil {
		return err
	}
	*t = parsed
	return nil
}
