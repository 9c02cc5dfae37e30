package tokengenerator

import (
	"crypto/rand"
	"math/big"
	passwordreset "resetme/internal/core/domain/password_reset"
)

const alphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789"

type Generator struct {
	chars  []byte
	length int
	max    *big.Int
}

func NewGenerator() *Generator {
	return NewGeneratorWithLength(passwordreset.TokenLength)
}

func NewGeneratorWithLength(length int) *Generator {
	if length < 1 {
		panic("Token length must be positive.")
	}
	return &Generator{
		chars:  []byte(alphabet),
		length: length,
		max:    big.NewInt(int64(len(alphabet))),
	}
}

// GenerateToken panics if the system's secure random source fails.
func (g *Generator) GenerateToken() passwordreset.Token {
	b := make([]byte, g.length)
	for i := range b {
		n, err := rand.Int(rand.Reader, g.max)
		if err != nil {
			panic("Could not read from the secure random source: " + err.Error())
		}
		b[i] = g.chars[n.Int64()]
	}
	return passwordreset.Token(b)
}
