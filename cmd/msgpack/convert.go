package main

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"reflect"

	"go.uber.org/zap"
	"golang.org/x/term"

	"github.com/wippyai/msgpack"
)

func readInput(path string) ([]byte, error) {
	if path == "" || path == "-" {
		return io.ReadAll(os.Stdin)
	}
	return os.ReadFile(path)
}

func runDecode(path string, slurp, compact bool) error {
	data, err := readInput(path)
	if err != nil {
		return fmt.Errorf("read input: %w", err)
	}
	msgpack.Logger().Debug("read input", zap.Int("bytes", len(data)))

	dec := msgpack.NewDecoder(bytes.NewReader(data))
	out := json.NewEncoder(os.Stdout)
	if !compact {
		out.SetIndent("", "  ")
	}

	if slurp {
		values := []any{}
		for {
			v, err := dec.Decode()
			if errors.Is(err, io.EOF) {
				break
			}
			if err != nil {
				return err
			}
			values = append(values, jsonValue(v))
		}
		return out.Encode(values)
	}

	v, err := dec.Decode()
	if errors.Is(err, io.EOF) {
		return errors.New("empty input")
	}
	if err != nil {
		return err
	}
	if rest := len(data) - dec.InputOffset(); rest > 0 {
		msgpack.Logger().Debug("trailing bytes after first value", zap.Int("count", rest))
	}
	return out.Encode(jsonValue(v))
}

func runEncode(path string) error {
	data, err := readInput(path)
	if err != nil {
		return fmt.Errorf("read input: %w", err)
	}

	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var v any
	if err := dec.Decode(&v); err != nil {
		return fmt.Errorf("parse JSON: %w", err)
	}

	encoded, err := msgpack.EncodeOptions{SortKeys: true}.Marshal(msgpackValue(v))
	if err != nil {
		return err
	}
	msgpack.Logger().Debug("encoded", zap.Int("bytes", len(encoded)))

	if term.IsTerminal(int(os.Stdout.Fd())) {
		return errors.New("refusing to write binary output to a terminal; redirect stdout")
	}
	_, err = os.Stdout.Write(encoded)
	return err
}

func runDiag(path string) error {
	data, err := readInput(path)
	if err != nil {
		return fmt.Errorf("read input: %w", err)
	}

	rest := data
	for len(rest) > 0 {
		note, r, err := msgpack.DiagnoseFirst(rest)
		if err != nil {
			return err
		}
		fmt.Println(note)
		rest = r
	}
	return nil
}

// jsonValue converts a decoded value into a shape encoding/json can
// marshal: map keys become strings, binary becomes base64 and
// extension values become tagged objects.
func jsonValue(v any) any {
	switch x := v.(type) {
	case map[any]any:
		m := make(map[string]any, len(x))
		for k, val := range x {
			m[keyString(k)] = jsonValue(val)
		}
		return m
	case *msgpack.OrderedMap:
		m := make(map[string]any, x.Len())
		for _, p := range x.Pairs() {
			m[keyString(p.Key)] = jsonValue(p.Value)
		}
		return m
	case []any:
		out := make([]any, len(x))
		for i, e := range x {
			out[i] = jsonValue(e)
		}
		return out
	case []byte:
		return base64.StdEncoding.EncodeToString(x)
	case msgpack.Ext:
		return map[string]any{
			"$ext":  x.Type,
			"$data": base64.StdEncoding.EncodeToString(x.Data),
		}
	case msgpack.ExtKey:
		return jsonValue(x.Ext())
	default:
		// Normalized key forms surface as fixed-size arrays.
		rv := reflect.ValueOf(v)
		if v != nil && rv.Kind() == reflect.Array {
			out := make([]any, rv.Len())
			for i := range out {
				out[i] = jsonValue(rv.Index(i).Interface())
			}
			return out
		}
		return v
	}
}

func keyString(k any) string {
	switch x := k.(type) {
	case string:
		return x
	case []byte:
		return base64.StdEncoding.EncodeToString(x)
	default:
		return fmt.Sprint(k)
	}
}

// msgpackValue converts parsed JSON into encoder-friendly values,
// turning integral numbers back into integers.
func msgpackValue(v any) any {
	switch x := v.(type) {
	case map[string]any:
		m := make(map[string]any, len(x))
		for k, val := range x {
			m[k] = msgpackValue(val)
		}
		return m
	case []any:
		out := make([]any, len(x))
		for i, e := range x {
			out[i] = msgpackValue(e)
		}
		return out
	case json.Number:
		if i, err := x.Int64(); err == nil {
			return i
		}
		f, _ := x.Float64()
		return f
	default:
		return v
	}
}
