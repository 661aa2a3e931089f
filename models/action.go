package models

import (
	"encoding/json"
	"fmt"
	"time"
)

// Action kinds as they appear on the wire between the planning service and
// the controller.
const (
	KindTapByID     = "tap_by_id"
	KindTapAt       = "tap_at"
	KindTypeText    = "type_text"
	KindScroll      = "scroll"
	KindSwipe       = "swipe"
	KindPressButton = "press_button"
	KindWait        = "wait"
)

// Action is one UI interaction proposed by the planning service. It is a
// closed set of variants; each carries the planner's free-text reasoning.
// An Action is consumed exactly once and never reused across iterations.
type Action interface {
	Kind() string
	Reason() string

	isAction()
}

type TapByID struct {
	Identifier string
	Reasoning  string
}

type TapAt struct {
	X, Y      int
	Reasoning string
}

type TypeText struct {
	Text      string
	Reasoning string
}

type Scroll struct {
	Direction string // up, down, left, right
	Amount    int    // 0 means backend default
	Reasoning string
}

type Swipe struct {
	X1, Y1, X2, Y2 int
	Reasoning      string
}

type PressButton struct {
	Button    string // e.g. home, back, enter
	Reasoning string
}

type Wait struct {
	Duration  time.Duration
	Reasoning string
}

func (a TapByID) Kind() string     { return KindTapByID }
func (a TapAt) Kind() string       { return KindTapAt }
func (a TypeText) Kind() string    { return KindTypeText }
func (a Scroll) Kind() string      { return KindScroll }
func (a Swipe) Kind() string       { return KindSwipe }
func (a PressButton) Kind() string { return KindPressButton }
func (a Wait) Kind() string        { return KindWait }

func (a TapByID) Reason() string     { return a.Reasoning }
func (a TapAt) Reason() string       { return a.Reasoning }
func (a TypeText) Reason() string    { return a.Reasoning }
func (a Scroll) Reason() string      { return a.Reasoning }
func (a Swipe) Reason() string       { return a.Reasoning }
func (a PressButton) Reason() string { return a.Reasoning }
func (a Wait) Reason() string        { return a.Reasoning }

func (TapByID) isAction()     {}
func (TapAt) isAction()       {}
func (TypeText) isAction()    {}
func (Scroll) isAction()      {}
func (Swipe) isAction()       {}
func (PressButton) isAction() {}
func (Wait) isAction()        {}

// wireAction is the flat JSON shape the planning service emits.
type wireAction struct {
	Action     string `json:"action"`
	Identifier string `json:"identifier,omitempty"`
	Text       string `json:"text,omitempty"`
	Direction  string `json:"direction,omitempty"`
	Amount     int    `json:"amount,omitempty"`
	Button     string `json:"button,omitempty"`
	X          int    `json:"x,omitempty"`
	Y          int    `json:"y,omitempty"`
	X1         int    `json:"x1,omitempty"`
	Y1         int    `json:"y1,omitempty"`
	X2         int    `json:"x2,omitempty"`
	Y2         int    `json:"y2,omitempty"`
	DurationMs int    `json:"duration_ms,omitempty"`
	Reasoning  string `json:"reasoning,omitempty"`
}

// DecodeAction parses the planner's wire form into the matching variant.
// An unknown or missing action kind is an error; the caller decides whether
// to retry the planning call.
func DecodeAction(data []byte) (Action, error) {
	var w wireAction
	if err := json.Unmarshal(data, &w); err != nil {
		return nil, fmt.Errorf("decode action: %w", err)
	}
	switch w.Action {
	case KindTapByID:
		if w.Identifier == "" {
			return nil, fmt.Errorf("decode action: %s requires identifier", KindTapByID)
		}
		return TapByID{Identifier: w.Identifier, Reasoning: w.Reasoning}, nil
	case KindTapAt:
		return TapAt{X: w.X, Y: w.Y, Reasoning: w.Reasoning}, nil
	case KindTypeText:
		return TypeText{Text: w.Text, Reasoning: w.Reasoning}, nil
	case KindScroll:
		switch w.Direction {
		case "up", "down", "left", "right":
		default:
			return nil, fmt.Errorf("decode action: bad scroll direction %q", w.Direction)
		}
		return Scroll{Direction: w.Direction, Amount: w.Amount, Reasoning: w.Reasoning}, nil
	case KindSwipe:
		return Swipe{X1: w.X1, Y1: w.Y1, X2: w.X2, Y2: w.Y2, Reasoning: w.Reasoning}, nil
	case KindPressButton:
		if w.Button == "" {
			return nil, fmt.Errorf("decode action: %s requires button", KindPressButton)
		}
		return PressButton{Button: w.Button, Reasoning: w.Reasoning}, nil
	case KindWait:
		return Wait{Duration: time.Duration(w.DurationMs) * time.Millisecond, Reasoning: w.Reasoning}, nil
	default:
		return nil, fmt.Errorf("decode action: unknown kind %q", w.Action)
	}
}

// EncodeAction renders an action back to its wire form. This is also the
// serialized text the controller scans for forbidden keywords, so it must
// include every parameter and the reasoning.
func EncodeAction(a Action) string {
	w := wireAction{Action: a.Kind(), Reasoning: a.Reason()}
	switch v := a.(type) {
	case TapByID:
		w.Identifier = v.Identifier
	case TapAt:
		w.X, w.Y = v.X, v.Y
	case TypeText:
		w.Text = v.Text
	case Scroll:
		w.Direction, w.Amount = v.Direction, v.Amount
	case Swipe:
		w.X1, w.Y1, w.X2, w.Y2 = v.X1, v.Y1, v.X2, v.Y2
	case PressButton:
		w.Button = v.Button
	case Wait:
		w.DurationMs = int(v.Duration / time.Millisecond)
	}
	b, err := json.Marshal(w)
	if err != nil {
		return a.Kind()
	}
	return string(b)
}

// ActionParams returns the variant's parameters as a generic map for the
// append-only action log.
func ActionParams(a Action) map[string]any {
	switch v := a.(type) {
	case TapByID:
		return map[string]any{"identifier": v.Identifier}
	case TapAt:
		return map[string]any{"x": v.X, "y": v.Y}
	case TypeText:
		return map[string]any{"text": v.Text}
	case Scroll:
		return map[string]any{"direction": v.Direction, "amount": v.Amount}
	case Swipe:
		return map[string]any{"x1": v.X1, "y1": v.Y1, "x2": v.X2, "y2": v.Y2}
	case PressButton:
		return map[string]any{"button": v.Button}
	case Wait:
		return map[string]any{"duration_ms": int(v.Duration / time.Millisecond)}
	default:
		return nil
	}
}
