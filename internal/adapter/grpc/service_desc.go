package grpc

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/structpb"
)

// ServiceName is the fully qualified gRPC service name.
const ServiceName = "users.v1.UserService"

// Full method names, as seen by interceptors.
const (
	SignupMethod  = "/" + ServiceName + "/Signup"
	SigninMethod  = "/" + ServiceName + "/Signin"
	FindAllMethod = "/" + ServiceName + "/FindAll"
)

// UserServiceServer is the server API for users.v1.UserService.
// Requests and responses are google.protobuf.Struct messages using the REST field names.
type UserServiceServer interface {
	Signup(context.Context, *structpb.Struct) (*structpb.Struct, error)
	Signin(context.Context, *structpb.Struct) (*structpb.Struct, error)
	FindAll(context.Context, *structpb.Struct) (*structpb.Struct, error)
}

// RegisterUserServiceServer registers srv on s.
func RegisterUserServiceServer(s grpc.ServiceRegistrar, srv UserServiceServer) {
	s.RegisterService(&UserServiceDesc, srv)
}

func unaryHandler(method string, call func(UserServiceServer, context.Context, *structpb.Struct) (*structpb.Struct, error)) grpc.MethodHandler {
	return func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
		in := new(structpb.Struct)
		if err := dec(in); err != nil {
			return nil, err
		}
		if interceptor == nil {
			return call(srv.(UserServiceServer), ctx, in)
		}
		info := &grpc.UnaryServerInfo{
			Server:     srv,
			FullMethod: method,
		}
		handler := func(ctx context.Context, req any) (any, error) {
			return call(srv.(UserServiceServer), ctx, req.(*structpb.Struct))
		}
		return interceptor(ctx, in, info, handler)
	}
}

// UserServiceDesc is the grpc.ServiceDesc for users.v1.UserService.
var UserServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*UserServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "Signup", Handler: unaryHandler(SignupMethod, UserServiceServer.Signup)},
		{MethodName: "Signin", Handler: unaryHandler(SigninMethod, UserServiceServer.Signin)},
		{MethodName: "FindAll", Handler: unaryHandler(FindAllMethod, UserServiceServer.FindAll)},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "users/v1/user_service.proto",
}

// UserServiceClient is the client API for users.v1.UserService.
type UserServiceClient struct {
	cc grpc.ClientConnInterface
}

// NewUserServiceClient creates a client over cc.
func NewUserServiceClient(cc grpc.ClientConnInterface) *UserServiceClient {
	return &UserServiceClient{cc: cc}
}

func (c *UserServiceClient) invoke(ctx context.Context, method string, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, method, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

// Signup calls users.v1.UserService/Signup.
func (c *UserServiceClient) Signup(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	return c.invoke(ctx, SignupMethod, in, opts...)
}

// Signin calls users.v1.UserService/Signin.
func (c *UserServiceClient) Signin(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	return c.invoke(ctx, SigninMethod, in, opts...)
}

// FindAll calls users.v1.UserService/FindAll.
func (c *UserServiceClient) FindAll(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	return c.invoke(ctx, FindAllMethod, in, opts...)
}
