package proto

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/structpb"
)

const (
	CatalogServiceName = "recipe.v1.Catalog"
	listRecipesMethod  = "/" + CatalogServiceName + "/ListRecipes"
)

// CatalogServer is the read side of the recipe API. Messages are well-known
// Struct/ListValue types so no generated stubs are needed.
type CatalogServer interface {
	ListRecipes(ctx context.Context, req *structpb.Struct) (*structpb.ListValue, error)
}

var catalogServiceDesc = grpc.ServiceDesc{
	ServiceName: CatalogServiceName,
	HandlerType: (*CatalogServer)(nil),
	Methods: []grpc.MethodDesc{
		{
			MethodName: "ListRecipes",
			Handler:    listRecipesHandler,
		},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "recipe/v1/catalog.proto",
}

func RegisterCatalogServer(s grpc.ServiceRegistrar, srv CatalogServer) {
	s.RegisterService(&catalogServiceDesc, srv)
}

func listRecipesHandler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	in := new(structpb.Struct)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(CatalogServer).ListRecipes(ctx, in)
	}
	info := &grpc.UnaryServerInfo{
		Server:     srv,
		FullMethod: listRecipesMethod,
	}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(CatalogServer).ListRecipes(ctx, req.(*structpb.Struct))
	}
	return interceptor(ctx, in, info, handler)
}

type CatalogClient struct {
	cc grpc.ClientConnInterface
}

func NewCatalogClient(cc grpc.ClientConnInterface) *CatalogClient {
	return &CatalogClient{cc: cc}
}

func (c *CatalogClient) ListRecipes(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.ListValue, error) {
	out := new(structpb.ListValue)
	if err := c.cc.Invoke(ctx, listRecipesMethod, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}
