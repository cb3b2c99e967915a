package client

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/goccy/go-json"
	"github.com/valyala/fastjson"
)

// Document - Firestore document with its typed values converted to plain ones
// Numbers are float64, timestamps are float64 seconds since epoch.
type Document struct {
	Name   string
	Fields map[string]interface{}
}

// ID - last segment of the document name
func (d *Document) ID() string {
	return d.Name[strings.LastIndex(d.Name, "/")+1:]
}

// DecodeInto - maps the document fields onto a struct using its json tags
func (d *Document) DecodeInto(target interface{}) error {
	return decodeMap(d.Fields, target)
}

func decodeMap(m map[string]interface{}, target interface{}) error {
	data, err := json.Marshal(m)
	if err != nil {
		return err
	}

	return json.Unmarshal(data, target)
}

func toMap(v interface{}) (map[string]interface{}, error) {
	if m, ok := v.(map[string]interface{}); ok {
		return m, nil
	}

	data, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}

	m := map[string]interface{}{}
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, err
	}

	return m, nil
}

// DecodeDocument - parses a document from the REST response
func DecodeDocument(body []byte) (*Document, error) {
	v, err := fastjson.ParseBytes(body)
	if err != nil {
		return nil, fmt.Errorf("unable to parse document: %w", err)
	}

	doc := &Document{
		Name:   string(v.GetStringBytes("name")),
		Fields: map[string]interface{}{},
	}

	if fields := v.Get("fields"); fields != nil {
		doc.Fields, err = decodeFields(fields)
		if err != nil {
			return nil, fmt.Errorf("unable to decode document %v: %w", doc.Name, err)
		}
	}

	return doc, nil
}

func decodeFields(v *fastjson.Value) (map[string]interface{}, error) {
	o, err := v.Object()
	if err != nil {
		return nil, err
	}

	m := make(map[string]interface{}, o.Len())

	var visitErr error
	o.Visit(func(key []byte, fieldValue *fastjson.Value) {
		if visitErr != nil {
			return
		}

		decoded, err := decodeValue(fieldValue)
		if err != nil {
			visitErr = fmt.Errorf("field %v: %w", string(key), err)
			return
		}

		m[string(key)] = decoded
	})

	return m, visitErr
}

func decodeValue(v *fastjson.Value) (interface{}, error) {
	o, err := v.Object()
	if err != nil {
		return nil, err
	}

	var result interface{}
	var resultErr error
	found := false

	o.Visit(func(key []byte, typed *fastjson.Value) {
		if found {
			return
		}
		found = true

		switch string(key) {
		case "nullValue":
			result = nil

		case "booleanValue":
			result, resultErr = typed.Bool()

		case "integerValue":
			// Encoded as a string to keep int64 precision
			if typed.Type() == fastjson.TypeString {
				var i int64
				i, resultErr = strconv.ParseInt(string(typed.GetStringBytes()), 10, 64)
				result = float64(i)
			} else {
				result, resultErr = typed.Float64()
			}

		case "doubleValue":
			if typed.Type() == fastjson.TypeString {
				result, resultErr = strconv.ParseFloat(string(typed.GetStringBytes()), 64)
			} else {
				result, resultErr = typed.Float64()
			}

		case "timestampValue":
			var t time.Time
			t, resultErr = time.Parse(time.RFC3339Nano, string(typed.GetStringBytes()))
			result = float64(t.UnixNano()) / 1e9

		case "stringValue", "bytesValue", "referenceValue":
			result = string(typed.GetStringBytes())

		case "geoPointValue":
			result = map[string]interface{}{
				"latitude":  typed.GetFloat64("latitude"),
				"longitude": typed.GetFloat64("longitude"),
			}

		case "arrayValue":
			values := typed.GetArray("values")
			arr := make([]interface{}, 0, len(values))
			for _, item := range values {
				decoded, err := decodeValue(item)
				if err != nil {
					resultErr = err
					return
				}
				arr = append(arr, decoded)
			}
			result = arr

		case "mapValue":
			fields := typed.Get("fields")
			if fields == nil {
				result = map[string]interface{}{}
				return
			}
			result, resultErr = decodeFields(fields)

		default:
			resultErr = fmt.Errorf("unsupported value type %v", string(key))
		}
	})

	if !found {
		return nil, fmt.Errorf("empty value")
	}

	return result, resultErr
}

// EncodeValue - converts a plain value to the Firestore typed representation
// Structs are converted through their json representation.
func EncodeValue(v interface{}) (map[string]interface{}, error) {
	switch value := v.(type) {
	case nil:
		return map[string]interface{}{"nullValue": nil}, nil
	case bool:
		return map[string]interface{}{"booleanValue": value}, nil
	case int:
		return map[string]interface{}{"integerValue": strconv.Itoa(value)}, nil
	case int64:
		return map[string]interface{}{"integerValue": strconv.FormatInt(value, 10)}, nil
	case float64:
		return map[string]interface{}{"doubleValue": value}, nil
	case string:
		return map[string]interface{}{"stringValue": value}, nil
	case time.Time:
		return map[string]interface{}{"timestampValue": value.UTC().Format(time.RFC3339Nano)}, nil

	case []interface{}:
		values := make([]interface{}, 0, len(value))
		for _, item := range value {
			encoded, err := EncodeValue(item)
			if err != nil {
				return nil, err
			}
			values = append(values, encoded)
		}
		return map[string]interface{}{"arrayValue": map[string]interface{}{"values": values}}, nil

	case map[string]interface{}:
		fields, err := EncodeFields(value)
		if err != nil {
			return nil, err
		}
		return map[string]interface{}{"mapValue": map[string]interface{}{"fields": fields}}, nil
	}

	data, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("unable to encode %T: %w", v, err)
	}

	var plain interface{}
	if err := json.Unmarshal(data, &plain); err != nil {
		return nil, fmt.Errorf("unable to encode %T: %w", v, err)
	}

	return EncodeValue(plain)
}

// EncodeFields - converts a map of plain values to Firestore fields
func EncodeFields(m map[string]interface{}) (map[string]interface{}, error) {
	fields := make(map[string]interface{}, len(m))
	for key, value := range m {
		encoded, err := EncodeValue(value)
		if err != nil {
			return nil, fmt.Errorf("field %v: %w", key, err)
		}
		fields[key] = encoded
	}

	return fields, nil
}

// Patch - field paths (dot separated) and their new values
type Patch map[string]interface{}

// Mask - sorted field paths of the patch
func (p Patch) Mask() []string {
	mask := make([]string, 0, len(p))
	for path := range p {
		mask = append(mask, path)
	}

	sort.Strings(mask)
	return mask
}

// Fields - patch values nested under their paths
func (p Patch) Fields() map[string]interface{} {
	root := map[string]interface{}{}

	for _, path := range p.Mask() {
		segments := strings.Split(path, ".")
		node := root

		for _, segment := range segments[:len(segments)-1] {
			child, ok := node[segment].(map[string]interface{})
			if !ok {
				child = map[string]interface{}{}
				node[segment] = child
			}
			node = child
		}

		node[segments[len(segments)-1]] = p[path]
	}

	return root
}

// EncodeDocumentBody - request body for document create / patch
func EncodeDocumentBody(fields map[string]interface{}) ([]byte, error) {
	encoded, err := EncodeFields(fields)
	if err != nil {
		return nil, err
	}

	return json.Marshal(map[string]interface{}{"fields": encoded})
}
