package transform

import (
	"fmt"

	"gonum.org/v1/gonum/mat"
	"google.golang.org/protobuf/types/known/structpb"
)

// Matrices travel as a list of rows, each a list of numbers.

func encodeMatrix(m *mat.Dense) *structpb.Value {
	if m == nil || m.IsEmpty() {
		return structpb.NewListValue(&structpb.ListValue{})
	}
	r, c := m.Dims()
	rows := make([]*structpb.Value, r)
	for i := 0; i < r; i++ {
		cells := make([]*structpb.Value, c)
		for j := 0; j < c; j++ {
			cells[j] = structpb.NewNumberValue(m.At(i, j))
		}
		rows[i] = structpb.NewListValue(&structpb.ListValue{Values: cells})
	}
	return structpb.NewListValue(&structpb.ListValue{Values: rows})
}

func decodeMatrix(v *structpb.Value) (*mat.Dense, error) {
	list := v.GetListValue()
	if list == nil {
		return nil, fmt.Errorf("%w: want a list of rows", ErrBadMessage)
	}
	rows := list.GetValues()
	if len(rows) == 0 {
		return &mat.Dense{}, nil
	}
	c := len(rows[0].GetListValue().GetValues())
	if c == 0 {
		return nil, fmt.Errorf("%w: empty row", ErrBadMessage)
	}
	data := make([]float64, 0, len(rows)*c)
	for i, row := range rows {
		cells := row.GetListValue().GetValues()
		if len(cells) != c {
			return nil, fmt.Errorf("%w: row %d has %d cells, want %d", ErrBadMessage, i, len(cells), c)
		}
		for _, cell := range cells {
			n, ok := cell.GetKind().(*structpb.Value_NumberValue)
			if !ok {
				return nil, fmt.Errorf("%w: row %d holds a non-number", ErrBadMessage, i)
			}
			data = append(data, n.NumberValue)
		}
	}
	return mat.NewDense(len(rows), c, data), nil
}

func field(s *structpb.Struct, name string) (*structpb.Value, error) {
	v, ok := s.GetFields()[name]
	if !ok {
		return nil, fmt.Errorf("%w: missing %q", ErrBadMessage, name)
	}
	return v, nil
}

func stringField(s *structpb.Struct, name string) (string, error) {
	v, err := field(s, name)
	if err != nil {
		return "", err
	}
	str, ok := v.GetKind().(*structpb.Value_StringValue)
	if !ok || str.StringValue == "" {
		return "", fmt.Errorf("%w: %q must be a non-empty string", ErrBadMessage, name)
	}
	return str.StringValue, nil
}

func matrixField(s *structpb.Struct, name string) (*mat.Dense, error) {
	v, err := field(s, name)
	if err != nil {
		return nil, err
	}
	return decodeMatrix(v)
}
