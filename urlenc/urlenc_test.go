package urlenc

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRoundTrip(t *testing.T) {
	scripts := []string{
		"",
		"A",
		"A->B",
		"Bob -> Alice : hello",
		`@startuml
actor User
User -> (Login)
note right: ünïcödé 日本語
@enduml`,
		strings.Repeat("class Foo\n", 200),
	}
	for _, script := range scripts {
		encoded, err := Encode(script)
		require.NoError(t, err)

		decoded, err := Decode(encoded)
		require.NoError(t, err)
		assert.Equal(t, script, decoded)
	}
}

func TestEncodeAlphabet(t *testing.T) {
	encoded, err := Encode("@startuml\nBob -> Alice : hello?&/+=\n@enduml")
	require.NoError(t, err)

	assert.Zero(t, len(encoded)%4, "groups are always 4 characters")
	for _, r := range encoded {
		assert.True(t, strings.ContainsRune(alphabet, r), "unexpected rune %q", r)
	}
}

func TestEncodeDeterministic(t *testing.T) {
	a, err := Encode("A -> B")
	require.NoError(t, err)
	b, err := Encode("A -> B")
	require.NoError(t, err)
	assert.Equal(t, a, b)
}

func TestDecodeKnownValue(t *testing.T) {
	decoded, err := Decode("SyfFKj2rKt3CoKnELR1Io4ZDoSa70000")
	require.NoError(t, err)
	assert.Equal(t, "Bob -> Alice : hello", decoded)
}

func TestDecodeInvalid(t *testing.T) {
	_, err := Decode("a+b")
	assert.Error(t, err)

	_, err = Decode("~hzz")
	assert.Error(t, err)
}

func TestHex(t *testing.T) {
	encoded := EncodeHex("A->B")
	assert.Equal(t, "~h412d3e42", encoded)

	decoded, err := Decode(encoded)
	require.NoError(t, err)
	assert.Equal(t, "A->B", decoded)

	_, err = DecodeHex("412d3e42")
	assert.Error(t, err)
}

func TestFromURL(t *testing.T) {
	assert.Equal(t, "SyfFKj2rKt3CoKnELR1Io4ZDoSa70000",
		FromURL("https://www.plantuml.com/plantuml/svg/SyfFKj2rKt3CoKnELR1Io4ZDoSa70000"))
	assert.Equal(t, "abc", FromURL("https://example.org/uml/png/abc/"))
	assert.Equal(t, "abc", FromURL("abc"))
}
