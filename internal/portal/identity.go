// Package portal tracks the two linked portals, their cameras, and the
// per-frame camera math that makes the pair look like continuous space.
package portal

import (
	"fmt"
	"image/color"
)

// Identity is one of the two portal tags.
type Identity uint8

const (
	A Identity = iota
	B
)

// Identities lists every identity in a fixed order.
var Identities = [2]Identity{A, B}

var identityInfo = [2]struct {
	name  string
	color color.NRGBA
}{
	A: {"PortalA", color.NRGBA{153, 179, 204, 255}}, // sRGB(0.6, 0.7, 0.8)
	B: {"PortalB", color.NRGBA{204, 179, 153, 255}}, // sRGB(0.8, 0.7, 0.6)
}

// Valid reports whether id is A or B.
func (id Identity) Valid() bool { return id <= B }

// Other returns the identity id pairs with.
func (id Identity) Other() Identity {
	if id == A {
		return B
	}
	return A
}

// Color is the flat color shown while the portal is unpaired.
func (id Identity) Color() color.NRGBA {
	if !id.Valid() {
		return color.NRGBA{255, 0, 255, 255}
	}
	return identityInfo[id].color
}

func (id Identity) String() string {
	if !id.Valid() {
		return fmt.Sprintf("Identity(%d)", uint8(id))
	}
	return identityInfo[id].name
}
