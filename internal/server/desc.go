package server

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"
)

// ServiceName is the fully-qualified gRPC service name.
const ServiceName = "bitgen.v1.Generator"

const (
	methodOpen       = "/" + ServiceName + "/Open"
	methodNextUint64 = "/" + ServiceName + "/NextUint64"
	methodNextUint32 = "/" + ServiceName + "/NextUint32"
	methodNextDouble = "/" + ServiceName + "/NextDouble"
	methodNextRaw    = "/" + ServiceName + "/NextRaw"
	methodClose      = "/" + ServiceName + "/Close"
	methodStreamRaw  = "/" + ServiceName + "/StreamRaw"
)

// GeneratorServer is the server API for the Generator service.
//
// Requests and responses are protobuf well-known types so no generated code
// is needed: Open takes a Struct {algorithm, seed, profile, spawn_key} and
// returns the session id; the draw methods take the session id.
type GeneratorServer interface {
	Open(context.Context, *structpb.Struct) (*wrapperspb.StringValue, error)
	NextUint64(context.Context, *wrapperspb.StringValue) (*wrapperspb.UInt64Value, error)
	NextUint32(context.Context, *wrapperspb.StringValue) (*wrapperspb.UInt32Value, error)
	NextDouble(context.Context, *wrapperspb.StringValue) (*wrapperspb.DoubleValue, error)
	NextRaw(context.Context, *wrapperspb.StringValue) (*wrapperspb.UInt64Value, error)
	Close(context.Context, *wrapperspb.StringValue) (*emptypb.Empty, error)
	StreamRaw(*structpb.Struct, grpc.ServerStreamingServer[wrapperspb.BytesValue]) error
}

// RegisterGeneratorServer registers srv on s.
func RegisterGeneratorServer(s grpc.ServiceRegistrar, srv GeneratorServer) {
	s.RegisterService(&GeneratorServiceDesc, srv)
}

// unary builds a method handler that decodes Req and calls call.
func unary[Req any, Res any](name, full string, call func(GeneratorServer, context.Context, *Req) (*Res, error)) grpc.MethodDesc {
	return grpc.MethodDesc{
		MethodName: name,
		Handler: func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
			in := new(Req)
			if err := dec(in); err != nil {
				return nil, err
			}
			if interceptor == nil {
				return call(srv.(GeneratorServer), ctx, in)
			}
			info := &grpc.UnaryServerInfo{Server: srv, FullMethod: full}
			handler := func(ctx context.Context, req any) (any, error) {
				return call(srv.(GeneratorServer), ctx, req.(*Req))
			}
			return interceptor(ctx, in, info, handler)
		},
	}
}

func streamRawHandler(srv any, stream grpc.ServerStream) error {
	m := new(structpb.Struct)
	if err := stream.RecvMsg(m); err != nil {
		return err
	}
	return srv.(GeneratorServer).StreamRaw(m, &grpc.GenericServerStream[structpb.Struct, wrapperspb.BytesValue]{ServerStream: stream})
}

// GeneratorServiceDesc is the grpc.ServiceDesc for the Generator service.
var GeneratorServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*GeneratorServer)(nil),
	Methods: []grpc.MethodDesc{
		unary("Open", methodOpen, GeneratorServer.Open),
		unary("NextUint64", methodNextUint64, GeneratorServer.NextUint64),
		unary("NextUint32", methodNextUint32, GeneratorServer.NextUint32),
		unary("NextDouble", methodNextDouble, GeneratorServer.NextDouble),
		unary("NextRaw", methodNextRaw, GeneratorServer.NextRaw),
		unary("Close", methodClose, GeneratorServer.Close),
	},
	Streams: []grpc.StreamDesc{
		{
			StreamName:    "StreamRaw",
			Handler:       streamRawHandler,
			ServerStreams: true,
		},
	},
	Metadata: "bitgen/v1/generator.proto",
}
