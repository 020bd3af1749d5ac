package msgpack

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"math"
	"reflect"
	"sort"
	"strconv"
	"strings"
)

// Diagnose renders the first value in data in a human-readable
// diagnostic notation: strings quoted, binary as h'..' hex, extension
// values as ext(type, h'..') and composites in bracket form. Floats
// always carry a decimal point or an exponent, so 1 and 1.0 stay
// distinguishable.
func Diagnose(data []byte) (string, error) {
	s, _, err := DiagnoseFirst(data)
	return s, err
}

// DiagnoseFirst renders the first value in data and returns the
// remaining bytes along with the rendering.
func DiagnoseFirst(data []byte) (string, []byte, error) {
	d := DecodeOptions{OrderedMaps: true, AllowInvalidUTF8: true}.NewDecoder(bytes.NewReader(data))
	d.rawExt = true
	v, err := d.Decode()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return "", nil, &DecodeError{Offset: 0, Err: ErrInsufficientData}
		}
		return "", nil, err
	}
	var b strings.Builder
	writeDiag(&b, v)
	return b.String(), data[d.InputOffset():], nil
}

func writeDiag(b *strings.Builder, v any) {
	switch x := v.(type) {
	case nil:
		b.WriteString("null")
	case bool:
		b.WriteString(strconv.FormatBool(x))
	case int64:
		b.WriteString(strconv.FormatInt(x, 10))
	case uint64:
		b.WriteString(strconv.FormatUint(x, 10))
	case float32:
		b.WriteString(diagFloat(float64(x), 32))
	case float64:
		b.WriteString(diagFloat(x, 64))
	case string:
		b.WriteString(strconv.Quote(x))
	case []byte:
		fmt.Fprintf(b, "h'%x'", x)
	case []any:
		b.WriteByte('[')
		for i, e := range x {
			if i > 0 {
				b.WriteString(", ")
			}
			writeDiag(b, e)
		}
		b.WriteByte(']')
	case *OrderedMap:
		b.WriteByte('{')
		for i, p := range x.Pairs() {
			if i > 0 {
				b.WriteString(", ")
			}
			writeDiag(b, p.Key)
			b.WriteString(": ")
			writeDiag(b, p.Value)
		}
		b.WriteByte('}')
	case map[any]any:
		entries := make([]string, 0, len(x))
		for k, val := range x {
			var e strings.Builder
			writeDiag(&e, k)
			e.WriteString(": ")
			writeDiag(&e, val)
			entries = append(entries, e.String())
		}
		sort.Strings(entries)
		b.WriteByte('{')
		b.WriteString(strings.Join(entries, ", "))
		b.WriteByte('}')
	case Ext:
		fmt.Fprintf(b, "ext(%d, h'%x')", x.Type, x.Data)
	case ExtKey:
		ext := x.Ext()
		fmt.Fprintf(b, "ext(%d, h'%x')", ext.Type, ext.Data)
	default:
		writeDiagReflect(b, v)
	}
}

// writeDiagReflect renders the normalized key forms: byte arrays as
// hex and tuples as lists.
func writeDiagReflect(b *strings.Builder, v any) {
	rv := reflect.ValueOf(v)
	if rv.Kind() == reflect.Array {
		if rv.Type().Elem().Kind() == reflect.Uint8 {
			data := make([]byte, rv.Len())
			reflect.Copy(reflect.ValueOf(data), rv)
			fmt.Fprintf(b, "h'%x'", data)
			return
		}
		b.WriteByte('[')
		for i := 0; i < rv.Len(); i++ {
			if i > 0 {
				b.WriteString(", ")
			}
			writeDiag(b, rv.Index(i).Interface())
		}
		b.WriteByte(']')
		return
	}
	fmt.Fprintf(b, "%v", v)
}

func diagFloat(f float64, bits int) string {
	if math.IsInf(f, 1) {
		return "Infinity"
	}
	if math.IsInf(f, -1) {
		return "-Infinity"
	}
	if math.IsNaN(f) {
		return "NaN"
	}
	s := strconv.FormatFloat(f, 'g', -1, bits)
	if !strings.ContainsAny(s, ".eE") {
		s += ".0"
	}
	return s
}
