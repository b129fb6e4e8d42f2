package fragment

import (
	"fmt"
	"math"
	"net/url"
	"strconv"
	"strings"

	"github.com/vk/mapboot/internal/appstate"
)

// Formatter overrides the generic encoding for a single state key. A nil
// Stringify or Parse falls back to the generic passthrough for that
// direction.
type Formatter struct {
	Stringify func(value any) string
	Parse     func(raw string) any
}

// Codec converts between appstate.State and a URL fragment string.
type Codec struct {
	formatters map[string]Formatter
}

// New creates a Codec with an empty formatter registry.
func New() *Codec {
	return &Codec{
		formatters: make(map[string]Formatter),
	}
}

// RegisterFormatter registers a per-key formatter. Registering the same
// key twice is a programmer error.
func (c *Codec) RegisterFormatter(key string, f Formatter) {
	if _, exists := c.formatters[key]; exists {
		panic(fmt.Sprintf("fragment: formatter for key '%s' already registered", key))
	}
	c.formatters[key] = f
}

// readableChars restores the characters that are safe inside a fragment
// and kept unescaped for readability.
var readableChars = strings.NewReplacer("%2F", "/", "%2C", ",", "%3A", ":")

// Stringify encodes a state into a fragment string. The input is never
// mutated. Null-valued keys are dropped. If present, the path segment
// comes first, then the composite map parameter, then the remaining
// keys in lexical order.
func (c *Codec) Stringify(state appstate.State) string {
	work := state.Clone()

	var pathSeg string
	if p, ok := work["path"]; ok {
		pathSeg = readableChars.Replace(url.QueryEscape(scalarString(p)))
		delete(work, "path")
	}

	var mapSeg string
	zoom, zoomOK := coerceNumber(work["zoom"])
	lat, latOK := coerceNumber(work["lat"])
	lon, lonOK := coerceNumber(work["lon"])
	if zoomOK && latOK && lonOK {
		prec := mapPrecision(zoom)
		mapSeg = "map=" + strconv.Itoa(int(zoom)) +
			"/" + strconv.FormatFloat(lat, 'f', prec, 64) +
			"/" + strconv.FormatFloat(lon, 'f', prec, 64)
		delete(work, "zoom")
		delete(work, "lat")
		delete(work, "lon")
	}

	values := url.Values{}
	for k, v := range work {
		if v == nil {
			continue
		}
		s := scalarString(v)
		if f, ok := c.formatters[k]; ok && f.Stringify != nil {
			s = f.Stringify(v)
		}
		values.Set(k, s)
	}

	params := readableChars.Replace(values.Encode())
	if mapSeg != "" {
		if params != "" {
			params = mapSeg + "&" + params
		} else {
			params = mapSeg
		}
	}

	switch {
	case pathSeg == "":
		return params
	case params == "":
		return pathSeg
	default:
		return pathSeg + "&" + params
	}
}

// Parse decodes a fragment string into a state. Leading '#' characters
// are stripped. An empty input yields an empty state; an input with no
// '=' and no '&' is treated entirely as a path. Malformed numeric map
// segments are not validated: downstream consumers receive NaN.
func (c *Codec) Parse(link string) (appstate.State, error) {
	link = strings.TrimLeft(link, "#")
	state := appstate.State{}
	if link == "" {
		return state, nil
	}

	// Exactly one scan: the fragment starts with a bare path segment when
	// there is no '=' at all, or when the first '&' comes before the
	// first '='.
	var rawPath, rawParams string
	eq := strings.IndexByte(link, '=')
	amp := strings.IndexByte(link, '&')
	switch {
	case eq < 0:
		rawPath = link
	case amp >= 0 && amp < eq:
		rawPath, rawParams = link[:amp], link[amp+1:]
	default:
		rawParams = link
	}

	if rawParams != "" {
		values, err := url.ParseQuery(rawParams)
		if err != nil {
			return nil, fmt.Errorf("fragment: parse query %q: %w", rawParams, err)
		}
		for k, vs := range values {
			state[k] = vs[0]
		}
	}

	if rawPath != "" {
		p, err := url.QueryUnescape(rawPath)
		if err != nil {
			return nil, fmt.Errorf("fragment: unescape path %q: %w", rawPath, err)
		}
		state["path"] = p
	}

	if mv, ok := state["map"]; ok {
		if raw := scalarString(mv); raw != "auto" {
			var parts [3]string
			copy(parts[:], strings.SplitN(raw, "/", 3))
			state["zoom"] = parseNumber(parts[0])
			state["lat"] = parseNumber(parts[1])
			state["lon"] = parseNumber(parts[2])
			delete(state, "map")
		}
	}

	for k, f := range c.formatters {
		if f.Parse == nil {
			continue
		}
		if raw, ok := state[k]; ok {
			state[k] = f.Parse(scalarString(raw))
		}
	}

	return state, nil
}

// mapPrecision selects the number of lat/lon decimals for a zoom level.
func mapPrecision(zoom float64) int {
	switch {
	case zoom > 16:
		return 5
	case zoom > 8:
		return 4
	case zoom > 4:
		return 3
	case zoom > 2:
		return 2
	case zoom > 1:
		return 1
	default:
		return 0
	}
}

// scalarString renders a state value with its canonical textual form.
func scalarString(v any) string {
	switch val := v.(type) {
	case string:
		return val
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	case int:
		return strconv.Itoa(val)
	case nil:
		return ""
	default:
		return fmt.Sprintf("%v", val)
	}
}

// coerceNumber reads a state value as a number. Strings are accepted so
// that states re-parsed from a fragment stay composable.
func coerceNumber(v any) (float64, bool) {
	switch val := v.(type) {
	case float64:
		return val, true
	case int:
		return float64(val), true
	case string:
		n, err := strconv.ParseFloat(val, 64)
		if err != nil {
			return math.NaN(), true
		}
		return n, true
	default:
		return 0, false
	}
}

// parseNumber converts a map segment field, yielding NaN on malformed
// input rather than an error.
func parseNumber(s string) float64 {
	n, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return math.NaN()
	}
	return n
}
