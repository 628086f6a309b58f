package integrity

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func raw(s string) json.RawMessage { return json.RawMessage(s) }

func sampleWorlds() []json.RawMessage {
	return []json.RawMessage{
		raw(`{"id": "wrld_1", "name": "Alpha", "capacity": 16, "tags": ["a", "b"]}`),
		raw(`{
			"id": "wrld_2",
			"name": "Beta <&>",
			"favorites": 3
		}`),
	}
}

func TestCanonicalize_Shape(t *testing.T) {
	got, err := Canonicalize("My Worlds", sampleWorlds())
	require.NoError(t, err)

	want := `{"name":"My Worlds","worlds":[{"id":"wrld_1","name":"Alpha","capacity":16,"tags":["a","b"]},{"id":"wrld_2","name":"Beta <&>","favorites":3}]}`
	assert.Equal(t, want, string(got))
}

func TestCanonicalize_NoHTMLEscapingInName(t *testing.T) {
	got, err := Canonicalize(`a<b>&"c"`, nil)
	require.NoError(t, err)
	assert.Equal(t, `{"name":"a<b>&\"c\"","worlds":[]}`, string(got))
}

// Expected bytes are what JSON.stringify({name, worlds: []}) produces.
func TestCanonicalize_NameMatchesJSONStringify(t *testing.T) {
	name := "Tom & Jerry \u00e9\u4e16 a\u2028b\u2029c \"q\" \\ \n\t\b\f\r \x01\x1f\x7f"
	got, err := Canonicalize(name, nil)
	require.NoError(t, err)

	want := `{"name":"Tom & Jerry ` + "\u00e9\u4e16 a\u2028b\u2029c" + ` \"q\" \\ \n\t\b\f\r \u0001\u001f` + "\x7f" + `","worlds":[]}`
	assert.Equal(t, want, string(got))
	assert.NotContains(t, string(got), `\u2028`)
}

func TestCanonicalize_NameRoundTripsThroughDecoder(t *testing.T) {
	name := "a\u2028b <&> \"\\ \x00"
	got, err := Canonicalize(name, nil)
	require.NoError(t, err)

	var f Folder
	require.NoError(t, json.Unmarshal(got, &f))
	assert.Equal(t, name, f.Name)
}

func TestCanonicalize_WhitespaceInsensitive(t *testing.T) {
	a, err := Canonicalize("n", []json.RawMessage{raw(`{"id":"wrld_1","x":[1,2]}`)})
	require.NoError(t, err)
	b, err := Canonicalize("n", []json.RawMessage{raw("{ \"id\" : \"wrld_1\" ,\n \"x\" : [ 1 , 2 ] }")})
	require.NoError(t, err)
	assert.Equal(t, a, b)
}

func TestCanonicalize_KeyOrderMatters(t *testing.T) {
	a, err := Canonicalize("n", []json.RawMessage{raw(`{"id":"wrld_1","name":"x"}`)})
	require.NoError(t, err)
	b, err := Canonicalize("n", []json.RawMessage{raw(`{"name":"x","id":"wrld_1"}`)})
	require.NoError(t, err)
	assert.NotEqual(t, a, b)
}

func TestCanonicalize_InvalidWorld(t *testing.T) {
	_, err := Canonicalize("n", []json.RawMessage{raw(`{"id":`)})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "world 0")
}

func TestCanonicalize_RoundTripsThroughFolder(t *testing.T) {
	payload, err := Canonicalize("My Worlds", sampleWorlds())
	require.NoError(t, err)

	var f Folder
	require.NoError(t, json.Unmarshal(payload, &f))
	again, err := CanonicalizeFolder(f)
	require.NoError(t, err)
	assert.Equal(t, payload, again)
}

func TestNewSigner_EmptySecret(t *testing.T) {
	_, err := NewSigner(nil)
	require.ErrorIs(t, err, ErrEmptySecret)
}

func TestNewSigner_CopiesSecret(t *testing.T) {
	secret := []byte("top-secret")
	s, err := NewSigner(secret)
	require.NoError(t, err)
	before := s.Sign([]byte("x"))

	for i := range secret {
		secret[i] = 0
	}
	assert.Equal(t, before, s.Sign([]byte("x")))
}

func TestSign_MatchesStdlibHMAC(t *testing.T) {
	s, err := NewSigner([]byte("k"))
	require.NoError(t, err)

	mac := hmac.New(sha256.New, []byte("k"))
	mac.Write([]byte("payload"))
	want := hex.EncodeToString(mac.Sum(nil))

	got := s.Sign([]byte("payload"))
	assert.Equal(t, want, got)
	assert.Len(t, got, CodeLength)
	assert.Equal(t, strings.ToLower(got), got)
}

func TestSign_Deterministic(t *testing.T) {
	s, err := NewSigner([]byte("secret"))
	require.NoError(t, err)
	p, err := Canonicalize("My Worlds", sampleWorlds())
	require.NoError(t, err)

	first := s.Sign(p)
	for i := 0; i < 10; i++ {
		assert.Equal(t, first, s.Sign(p))
	}
}

func TestSign_DependsOnSecret(t *testing.T) {
	a, _ := NewSigner([]byte("one"))
	b, _ := NewSigner([]byte("two"))
	assert.NotEqual(t, a.Sign([]byte("p")), b.Sign([]byte("p")))
}

func TestVerify_DetectsTampering(t *testing.T) {
	s, err := NewSigner([]byte("secret"))
	require.NoError(t, err)
	p, err := Canonicalize("My Worlds", sampleWorlds())
	require.NoError(t, err)
	code := s.Sign(p)

	require.True(t, s.Verify(p, code))

	for i := range p {
		tampered := append([]byte(nil), p...)
		tampered[i] ^= 0x01
		if s.Verify(tampered, code) {
			t.Fatalf("flipping byte %d was not detected", i)
		}
	}
}

func TestVerify_RejectsMalformedCodes(t *testing.T) {
	s, err := NewSigner([]byte("secret"))
	require.NoError(t, err)
	p := []byte(`{"name":"n","worlds":[]}`)
	code := s.Sign(p)

	assert.False(t, s.Verify(p, "deadbeef"))
	assert.False(t, s.Verify(p, ""))
	assert.False(t, s.Verify(p, strings.ToUpper(code)))
	assert.False(t, s.Verify(p, strings.Repeat("z", CodeLength)))
}

func TestSignFolder(t *testing.T) {
	s, err := NewSigner([]byte("secret"))
	require.NoError(t, err)

	payload, code, err := s.SignFolder(Folder{Name: "My Worlds", Worlds: sampleWorlds()})
	require.NoError(t, err)
	assert.True(t, s.Verify(payload, code))

	_, _, err = s.SignFolder(Folder{Name: "x", Worlds: []json.RawMessage{raw(`nope`)}})
	require.Error(t, err)
}
