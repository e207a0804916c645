package transform

import "google.golang.org/protobuf/types/known/structpb"

func structpbValue(v any) (*structpb.Value, error) { return structpb.NewValue(v) }
