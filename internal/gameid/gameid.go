// Package gameid generates session identifiers.
//
// Ids are UUIDv7 values encoded as 26 lowercase characters of Crockford's
// base32, so they sort by creation time and are short enough to type.
package gameid

import (
	"encoding/binary"
	"fmt"
	"io"
	"math/rand/v2"
	"strings"

	"github.com/google/uuid"
)

// Crockford's base32 alphabet.
const alphabet = "0123456789abcdefghjkmnpqrstvwxyz"

// Generator creates session ids.
type Generator struct {
	random io.Reader
}

// NewGenerator creates a generator whose random bits come from rng. A nil
// rng uses crypto/rand.
func NewGenerator(rng *rand.Rand) *Generator {
	if rng == nil {
		return &Generator{}
	}
	return &Generator{random: rngReader{rng}}
}

// Generate creates a new session id using crypto/rand.
func Generate() string {
	return NewGenerator(nil).Generate()
}

// Generate creates a new session id.
func (g *Generator) Generate() string {
	var (
		id  uuid.UUID
		err error
	)
	if g.random != nil {
		id, err = uuid.NewV7FromReader(g.random)
	} else {
		id, err = uuid.NewV7()
	}
	if err != nil {
		panic("failed to generate session id: " + err.Error())
	}
	return encode(id)
}

// encode writes the 128 bits of id as 26 base32 characters, the first one
// carrying only the top three bits.
func encode(id uuid.UUID) string {
	hi := binary.BigEndian.Uint64(id[:8])
	lo := binary.BigEndian.Uint64(id[8:])

	out := make([]byte, 26)
	for i := 25; i >= 0; i-- {
		out[i] = alphabet[lo&0x1f]
		lo = lo>>5 | hi<<59
		hi >>= 5
	}
	return string(out)
}

// Validate checks that id looks like a generated session id.
func Validate(id string) error {
	if len(id) != 26 {
		return fmt.Errorf("session id must be exactly 26 characters, got %d", len(id))
	}
	if id[0] > '7' {
		return fmt.Errorf("session id first character must be 0-7, got %c", id[0])
	}
	for i, r := range id {
		if !strings.ContainsRune(alphabet, r) {
			return fmt.Errorf("invalid character %c at position %d", r, i)
		}
	}
	return nil
}

type rngReader struct {
	rng *rand.Rand
}

func (r rngReader) Read(p []byte) (int, error) {
	for i := range p {
		p[i] = byte(r.rng.Uint32())
	}
	return len(p), nil
}
