package server

import (
	"math"
	"strconv"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"
)

// stringField reads a string field. Integral numbers are accepted and
// formatted in decimal so {"seed": 42} works as well as {"seed": "42"}.
func stringField(s *structpb.Struct, key string) (string, error) {
	v, ok := s.GetFields()[key]
	if !ok {
		return "", nil
	}
	switch k := v.GetKind().(type) {
	case *structpb.Value_NullValue:
		return "", nil
	case *structpb.Value_StringValue:
		return k.StringValue, nil
	case *structpb.Value_NumberValue:
		n := k.NumberValue
		if n < 0 || n != math.Trunc(n) || n > 1<<53 {
			return "", status.Errorf(codes.InvalidArgument, "%s: number must be a non-negative integer below 2^53; pass larger values as strings", key)
		}
		return strconv.FormatUint(uint64(n), 10), nil
	}
	return "", status.Errorf(codes.InvalidArgument, "%s: must be a string", key)
}

// intField reads a non-negative integer field, def when absent.
func intField(s *structpb.Struct, key string, def, limit int) (int, error) {
	v, ok := s.GetFields()[key]
	if !ok {
		return def, nil
	}
	k, ok := v.GetKind().(*structpb.Value_NumberValue)
	if !ok {
		return 0, status.Errorf(codes.InvalidArgument, "%s: must be a number", key)
	}
	n := k.NumberValue
	if n < 0 || n != math.Trunc(n) || n > float64(limit) {
		return 0, status.Errorf(codes.InvalidArgument, "%s: must be an integer in [0, %d]", key, limit)
	}
	return int(n), nil
}

// spawnKeyField reads a list of uint32 spawn indices.
func spawnKeyField(s *structpb.Struct, key string) ([]uint32, error) {
	v, ok := s.GetFields()[key]
	if !ok {
		return nil, nil
	}
	list, ok := v.GetKind().(*structpb.Value_ListValue)
	if !ok {
		return nil, status.Errorf(codes.InvalidArgument, "%s: must be a list", key)
	}
	out := make([]uint32, 0, len(list.ListValue.GetValues()))
	for i, e := range list.ListValue.GetValues() {
		n, ok := e.GetKind().(*structpb.Value_NumberValue)
		if !ok || n.NumberValue < 0 || n.NumberValue > math.MaxUint32 || n.NumberValue != math.Trunc(n.NumberValue) {
			return nil, status.Errorf(codes.InvalidArgument, "%s[%d]: must be an integer in [0, 2^32)", key, i)
		}
		out = append(out, uint32(n.NumberValue))
	}
	return out, nil
}
