package codec

import (
	"math"
	"strconv"
	"strings"

	"extframe/pkg/stream"
)

// Parse failure explanations shown next to the offending value.
const (
	reasonBool   = "Expected a valid boolean value [1, true, yes, 0, false, no]"
	reasonInt    = "Expected a valid number"
	reasonByte   = "Expected a valid number between 0 and 255 inclusive."
	reasonFloat  = "Expected a valid floating point number"
	reasonColor  = "Expected a valid R,G,B color"
	reasonString = "Expected a non-empty value"
)

// Color is an RGB triple.
type Color struct {
	R, G, B uint8
}

// Leptons is a fixed-point distance: 256 leptons make one cell.
type Leptons int32

// LeptonsPerCell converts between cells and leptons.
const LeptonsPerCell = 256

// Cells returns the distance in cells.
func (l Leptons) Cells() float64 { return float64(l) / LeptonsPerCell }

var (
	// Bool accepts 1/true/yes and 0/false/no, case-insensitively.
	Bool Scalar[bool] = Func[bool]{ParseFn: ParseBool, EncodeFn: (*stream.Writer).WriteBool, DecodeFn: (*stream.Reader).ReadBool}
	// Int is a signed 32-bit integer.
	Int Scalar[int32] = Func[int32]{ParseFn: ParseInt, EncodeFn: (*stream.Writer).WriteInt32, DecodeFn: (*stream.Reader).ReadInt32}
	// Byte is an integer restricted to [0,255].
	Byte Scalar[uint8] = Func[uint8]{ParseFn: ParseByte, EncodeFn: (*stream.Writer).WriteUint8, DecodeFn: (*stream.Reader).ReadUint8}
	// Float is a single-precision number.
	Float Scalar[float32] = Func[float32]{ParseFn: parseFloat32, EncodeFn: (*stream.Writer).WriteFloat32, DecodeFn: (*stream.Reader).ReadFloat32}
	// Double is a double-precision number.
	Double Scalar[float64] = Func[float64]{ParseFn: ParseDouble, EncodeFn: (*stream.Writer).WriteFloat64, DecodeFn: (*stream.Reader).ReadFloat64}
	// ColorKind parses exactly three byte components.
	ColorKind Scalar[Color] = Func[Color]{ParseFn: ParseColor, EncodeFn: encodeColor, DecodeFn: decodeColor}
	// LeptonsKind parses a cell distance and stores it in leptons.
	LeptonsKind Scalar[Leptons] = Func[Leptons]{ParseFn: ParseLeptons, EncodeFn: encodeLeptons, DecodeFn: decodeLeptons}
	// String keeps the raw text, used for localized label keys.
	String Scalar[string] = Func[string]{ParseFn: parseString, EncodeFn: (*stream.Writer).WriteString, DecodeFn: (*stream.Reader).ReadString}
)

// ParseBool parses the boolean vocabulary.
func ParseBool(raw string) (bool, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "1", "true", "yes":
		return true, nil
	case "0", "false", "no":
		return false, nil
	}
	return false, &ParseError{Reason: reasonBool}
}

// ParseInt parses a base-10 int32.
func ParseInt(raw string) (int32, error) {
	v, err := strconv.ParseInt(strings.TrimSpace(raw), 10, 32)
	if err != nil {
		return 0, &ParseError{Reason: reasonInt}
	}
	return int32(v), nil
}

// ParseByte parses an integer and range-checks it into [0,255].
func ParseByte(raw string) (uint8, error) {
	v, err := strconv.ParseInt(strings.TrimSpace(raw), 10, 32)
	if err != nil {
		return 0, &ParseError{Reason: reasonInt}
	}
	if v < 0 || v > 255 {
		return 0, &ParseError{Reason: reasonByte}
	}
	return uint8(v), nil
}

// ParseDouble parses a locale-independent float. A trailing percent sign
// scales the value by 1/100.
func ParseDouble(raw string) (float64, error) {
	s := strings.TrimSpace(raw)
	scale := 1.0
	if strings.HasSuffix(s, "%") {
		s = strings.TrimSpace(strings.TrimSuffix(s, "%"))
		scale = 0.01
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, &ParseError{Reason: reasonFloat}
	}
	return v * scale, nil
}

func parseFloat32(raw string) (float32, error) {
	v, err := ParseDouble(raw)
	return float32(v), err
}

// ParseColor parses "R,G,B".
func ParseColor(raw string) (Color, error) {
	parts := strings.Split(raw, ",")
	if len(parts) != 3 {
		return Color{}, &ParseError{Reason: reasonColor}
	}
	var rgb [3]uint8
	for i, p := range parts {
		v, err := strconv.ParseUint(strings.TrimSpace(p), 10, 8)
		if err != nil {
			return Color{}, &ParseError{Reason: reasonColor}
		}
		rgb[i] = uint8(v)
	}
	return Color{R: rgb[0], G: rgb[1], B: rgb[2]}, nil
}

// ParseLeptons parses a distance in cells and converts it to leptons,
// rounding to the nearest lepton.
func ParseLeptons(raw string) (Leptons, error) {
	v, err := ParseDouble(raw)
	if err != nil {
		return 0, err
	}
	l := math.Round(v * LeptonsPerCell)
	if l > math.MaxInt32 || l < math.MinInt32 {
		return 0, &ParseError{Reason: reasonFloat}
	}
	return Leptons(l), nil
}

func parseString(raw string) (string, error) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return "", &ParseError{Reason: reasonString}
	}
	return s, nil
}

func encodeColor(w *stream.Writer, c Color) error {
	for _, b := range [3]uint8{c.R, c.G, c.B} {
		if err := w.WriteUint8(b); err != nil {
			return err
		}
	}
	return nil
}

func decodeColor(r *stream.Reader) (Color, error) {
	var rgb [3]uint8
	for i := range rgb {
		b, err := r.ReadUint8()
		if err != nil {
			return Color{}, err
		}
		rgb[i] = b
	}
	return Color{R: rgb[0], G: rgb[1], B: rgb[2]}, nil
}

func encodeLeptons(w *stream.Writer, l Leptons) error { return w.WriteInt32(int32(l)) }

func decodeLeptons(r *stream.Reader) (Leptons, error) {
	v, err := r.ReadInt32()
	return Leptons(v), err
}
