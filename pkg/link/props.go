package link

import (
	"math"
	"strconv"
)

// Well-known property keys. Occlusion flags are written by the window
// monitor, routing hints by whoever creates the link.
const (
	PropHidden        = "hidden"         // region is not visible at all
	PropCovered       = "covered"        // region is behind another window
	PropOutside       = "outside"        // region lies outside the visible viewport
	PropOnScreen      = "on-screen"      // region is directly visible
	PropCoveringWID   = "covering-wid"   // id of the window covering the region (0 = none)
	PropAlwaysRoute   = "always-route"   // route hidden members of this edge anyway
	PropNoRoute       = "no-route"       // never route to this element
	PropOutsideScroll = "outside-scroll" // region is scrolled out of its scroll area
	PropWidenEnd      = "widen-end"      // render the path end widened
	PropLabel         = "label"          // display name used by renderers
)

// Props is a string-keyed property bag attached to nodes and edges.
// Values are typically bool, integer, float or string. Props is never nil
// on elements created through [NewNode] or [NewHyperEdge].
type Props map[string]any

// Has reports whether key is set.
func (p Props) Has(key string) bool {
	_, ok := p[key]
	return ok
}

// Bool interprets key as a flag. Missing keys, false values, zero numbers,
// and strings that do not parse as true are all false.
func (p Props) Bool(key string) bool {
	switch v := p[key].(type) {
	case bool:
		return v
	case int:
		return v != 0
	case int64:
		return v != 0
	case uint64:
		return v != 0
	case float64:
		return v != 0
	case string:
		b, err := strconv.ParseBool(v)
		return err == nil && b
	}
	return false
}

// Uint returns key as an unsigned integer, or 0 when it is missing, negative,
// or not numeric. Decoders produce int64 (TOML), int (YAML) and float64
// (JSON) for the same field, so all of them are accepted.
func (p Props) Uint(key string) uint64 {
	switch v := p[key].(type) {
	case int:
		if v > 0 {
			return uint64(v)
		}
	case int64:
		if v > 0 {
			return uint64(v)
		}
	case uint32:
		return uint64(v)
	case uint64:
		return v
	case float64:
		if v > 0 && v < math.MaxInt64 {
			return uint64(v)
		}
	case string:
		n, err := strconv.ParseUint(v, 10, 64)
		if err == nil {
			return n
		}
	}
	return 0
}

// String returns key as a string, or "" when it is missing or not a string.
func (p Props) String(key string) string {
	s, _ := p[key].(string)
	return s
}

// Set stores value under key.
func (p Props) Set(key string, value any) { p[key] = value }

// Clone returns a shallow copy of p.
func (p Props) Clone() Props {
	out := make(Props, len(p))
	for k, v := range p {
		out[k] = v
	}
	return out
}
