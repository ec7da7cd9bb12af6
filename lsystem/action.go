package lsystem

import (
	"encoding/json"
	"fmt"

	"meadow/core"
	"meadow/math"
)

type ActionKind int

const (
	// ActionNone marks a symbol that only takes part in rewriting.
	ActionNone ActionKind = iota
	ActionDraw
	ActionMove
	ActionTurn
	ActionPush
	ActionPop
	ActionColor
	ActionWidth
	ActionLeaf
)

// Axis is a turtle-local rotation axis.
type Axis int

const (
	AxisYaw   Axis = iota // local Z
	AxisPitch             // local X
	AxisRoll              // local Y, the heading
)

func (a Axis) vector() math.Vec3 {
	switch a {
	case AxisPitch:
		return math.Vec3Right
	case AxisRoll:
		return math.Vec3Up
	default:
		return math.Vec3Front
	}
}

// Action is what the turtle does when it meets a symbol.
type Action struct {
	Kind ActionKind
	Axis Axis
	// Sign is +1 or -1 for turns.
	Sign float32
	// Angle overrides the config angle when non-zero (degrees).
	Angle float32
	Color core.Color
	// Width sets the turtle width; Scale, when positive, multiplies it instead.
	Width  float32
	Scale  float32
	Radius float32
}

// DefaultActions is the conventional turtle alphabet.
func DefaultActions() map[rune]Action {
	return map[rune]Action{
		'F':  {Kind: ActionDraw},
		'G':  {Kind: ActionDraw},
		'f':  {Kind: ActionMove},
		'+':  {Kind: ActionTurn, Axis: AxisYaw, Sign: 1},
		'-':  {Kind: ActionTurn, Axis: AxisYaw, Sign: -1},
		'&':  {Kind: ActionTurn, Axis: AxisPitch, Sign: 1},
		'^':  {Kind: ActionTurn, Axis: AxisPitch, Sign: -1},
		'\\': {Kind: ActionTurn, Axis: AxisRoll, Sign: 1},
		'/':  {Kind: ActionTurn, Axis: AxisRoll, Sign: -1},
		'|':  {Kind: ActionTurn, Axis: AxisYaw, Sign: 1, Angle: 180},
		'[':  {Kind: ActionPush},
		']':  {Kind: ActionPop},
		'!':  {Kind: ActionWidth, Scale: 0.7},
		'\'': {Kind: ActionColor, Color: core.ColorLeaf},
		'L':  {Kind: ActionLeaf, Radius: 0.05, Color: core.ColorLeaf},
		'X':  {Kind: ActionNone},
		'Y':  {Kind: ActionNone},
	}
}

var actionKinds = map[string]Action{
	"none":  {Kind: ActionNone},
	"draw":  {Kind: ActionDraw},
	"move":  {Kind: ActionMove},
	"yaw":   {Kind: ActionTurn, Axis: AxisYaw},
	"pitch": {Kind: ActionTurn, Axis: AxisPitch},
	"roll":  {Kind: ActionTurn, Axis: AxisRoll},
	"push":  {Kind: ActionPush},
	"pop":   {Kind: ActionPop},
	"color": {Kind: ActionColor},
	"width": {Kind: ActionWidth},
	"leaf":  {Kind: ActionLeaf},
}

type actionJSON struct {
	Kind   string      `json:"kind"`
	Sign   *float32    `json:"sign"`
	Angle  float32     `json:"angle"`
	Color  *core.Color `json:"color"`
	Width  float32     `json:"width"`
	Scale  float32     `json:"scale"`
	Radius float32     `json:"radius"`
}

// UnmarshalJSON reads {"kind": "yaw", "sign": -1, ...}. Sign defaults to +1
// and colors to the leaf color.
func (a *Action) UnmarshalJSON(data []byte) error {
	var doc actionJSON
	if err := json.Unmarshal(data, &doc); err != nil {
		return err
	}
	base, ok := actionKinds[doc.Kind]
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownAction, doc.Kind)
	}
	base.Sign = 1
	if doc.Sign != nil {
		base.Sign = *doc.Sign
	}
	base.Color = core.ColorLeaf
	if doc.Color != nil {
		base.Color = *doc.Color
	}
	base.Angle = doc.Angle
	base.Width = doc.Width
	base.Scale = doc.Scale
	base.Radius = doc.Radius
	*a = base
	return nil
}
