package models

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeActionVariants(t *testing.T) {
	a, err := DecodeAction([]byte(`{"action":"tap_by_id","identifier":"settings","reasoning":"open settings"}`))
	require.NoError(t, err)
	tap, ok := a.(TapByID)
	require.True(t, ok)
	assert.Equal(t, "settings", tap.Identifier)
	assert.Equal(t, "open settings", a.Reason())

	a, err = DecodeAction([]byte(`{"action":"scroll","direction":"down","amount":3}`))
	require.NoError(t, err)
	assert.Equal(t, Scroll{Direction: "down", Amount: 3}, a)

	a, err = DecodeAction([]byte(`{"action":"wait","duration_ms":250}`))
	require.NoError(t, err)
	assert.Equal(t, 250*time.Millisecond, a.(Wait).Duration)
}

func TestDecodeActionRejectsBadInput(t *testing.T) {
	cases := map[string]string{
		"unknown kind":       `{"action":"teleport"}`,
		"missing kind":       `{"reasoning":"?"}`,
		"missing identifier": `{"action":"tap_by_id"}`,
		"bad direction":      `{"action":"scroll","direction":"sideways"}`,
		"missing button":     `{"action":"press_button"}`,
		"not json":           `tap the button`,
	}
	for name, raw := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := DecodeAction([]byte(raw))
			assert.Error(t, err)
		})
	}
}

func TestEncodeActionCarriesParamsAndReasoning(t *testing.T) {
	// The forbidden-keyword scan runs over this text, so every parameter
	// and the reasoning must survive the round trip.
	s := EncodeAction(TypeText{Text: "hello", Reasoning: "fill the search box"})
	assert.Contains(t, s, `"type_text"`)
	assert.Contains(t, s, "hello")
	assert.Contains(t, s, "fill the search box")

	s = EncodeAction(Swipe{X1: 1, Y1: 2, X2: 3, Y2: 4})
	for _, frag := range []string{`"x1":1`, `"y1":2`, `"x2":3`, `"y2":4`} {
		assert.Contains(t, s, frag)
	}

	decoded, err := DecodeAction([]byte(EncodeAction(Scroll{Direction: "up", Amount: 2, Reasoning: "r"})))
	require.NoError(t, err)
	assert.Equal(t, Scroll{Direction: "up", Amount: 2, Reasoning: "r"}, decoded)
}

func TestActionParams(t *testing.T) {
	p := ActionParams(TapAt{X: 10, Y: 20})
	assert.Equal(t, map[string]any{"x": 10, "y": 20}, p)

	p = ActionParams(Wait{Duration: time.Second})
	assert.Equal(t, map[string]any{"duration_ms": 1000}, p)
}

func TestSnapshotCompactAndCount(t *testing.T) {
	snap := &Snapshot{Root: Node{
		Role: "window",
		Children: []Node{
			{Role: "button", Label: "Settings", Identifier: "settings"},
			{Role: "group", Children: []Node{{Role: "text", Value: "hi"}}},
		},
	}}
	assert.Equal(t, 4, snap.NodeCount())
	c := snap.Compact()
	assert.False(t, strings.ContainsRune(c, '\n'))
	assert.Contains(t, c, `"id":"settings"`)
}
