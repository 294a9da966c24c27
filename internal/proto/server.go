package proto

import (
	"context"
	"net"
	"strings"

	"github.com/pkg/errors"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/Rogue-Bear-Innovations/recipe-back/internal/config"
	"github.com/Rogue-Bear-Innovations/recipe-back/internal/db"
	"github.com/Rogue-Bear-Innovations/recipe-back/internal/models"
	"github.com/Rogue-Bear-Innovations/recipe-back/internal/service"
)

type userKey struct{}

type (
	CatalogServerImpl struct {
		logger  *zap.SugaredLogger
		users   *service.Users
		recipes *service.Recipes
		server  *grpc.Server
		health  *health.Server
	}

	Deps struct {
		fx.In

		Config  *config.Config
		Logger  *zap.SugaredLogger
		Users   *service.Users
		Recipes *service.Recipes
	}
)

func NewGRPCServer(lc fx.Lifecycle, d Deps) *CatalogServerImpl {
	instance := New(d)

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			lis, err := net.Listen("tcp", d.Config.GRPCListen())
			if err != nil {
				return errors.Wrap(err, "failed to listen")
			}
			go func() {
				if err := instance.Serve(lis); err != nil {
					d.Logger.Fatalw("failed to serve", "error", err)
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			d.Logger.Info("Stopping GRPC server.")
			instance.Stop()
			return nil
		},
	})

	return instance
}

// New registers the catalog and health services without binding a listener.
func New(d Deps) *CatalogServerImpl {
	instance := &CatalogServerImpl{
		logger:  d.Logger,
		users:   d.Users,
		recipes: d.Recipes,
		health:  health.NewServer(),
	}

	instance.server = grpc.NewServer(grpc.UnaryInterceptor(instance.authInterceptor))
	RegisterCatalogServer(instance.server, instance)
	healthpb.RegisterHealthServer(instance.server, instance.health)
	instance.health.SetServingStatus(CatalogServiceName, healthpb.HealthCheckResponse_SERVING)

	return instance
}

func (s *CatalogServerImpl) Serve(lis net.Listener) error {
	return s.server.Serve(lis)
}

func (s *CatalogServerImpl) Stop() {
	s.health.Shutdown()
	s.server.GracefulStop()
}

func (s *CatalogServerImpl) authInterceptor(ctx context.Context, req interface{}, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (interface{}, error) {
	if strings.HasPrefix(info.FullMethod, "/"+healthpb.Health_ServiceDesc.ServiceName+"/") {
		return handler(ctx, req)
	}

	md, _ := metadata.FromIncomingContext(ctx)
	token, ok := parseToken(md.Get("authorization"))
	if !ok {
		return nil, status.Error(codes.Unauthenticated, "authentication credentials were not provided")
	}
	user, err := s.users.Resolve(ctx, token)
	if err != nil {
		return nil, toStatus(err)
	}

	return handler(context.WithValue(ctx, userKey{}, user), req)
}

// ListRecipes accepts {"tags": [..], "ingredients": [..]} and returns the
// caller's recipes in list form.
func (s *CatalogServerImpl) ListRecipes(ctx context.Context, req *structpb.Struct) (*structpb.ListValue, error) {
	user, ok := ctx.Value(userKey{}).(*db.User)
	if !ok {
		return nil, status.Error(codes.Unauthenticated, "no user in context")
	}

	filter := service.RecipeFilter{}
	var err error
	if filter.Tags, err = idList(req, "tags"); err != nil {
		return nil, err
	}
	if filter.Ingredients, err = idList(req, "ingredients"); err != nil {
		return nil, err
	}

	recipes, err := s.recipes.List(ctx, user.ID, filter)
	if err != nil {
		return nil, toStatus(err)
	}

	out := &structpb.ListValue{Values: make([]*structpb.Value, 0, len(recipes))}
	for i := range recipes {
		item, err := recipeStruct(models.NewRecipeResp(&recipes[i], s.recipes.URL))
		if err != nil {
			return nil, toStatus(err)
		}
		out.Values = append(out.Values, structpb.NewStructValue(item))
	}
	return out, nil
}

func idList(req *structpb.Struct, field string) ([]uint64, error) {
	v, ok := req.GetFields()[field]
	if !ok {
		return nil, nil
	}
	list := v.GetListValue()
	if list == nil {
		return nil, status.Errorf(codes.InvalidArgument, "%s must be a list of ids", field)
	}
	ids := make([]uint64, 0, len(list.GetValues()))
	for _, item := range list.GetValues() {
		n, ok := item.GetKind().(*structpb.Value_NumberValue)
		if !ok || n.NumberValue < 1 || n.NumberValue != float64(uint64(n.NumberValue)) {
			return nil, status.Errorf(codes.InvalidArgument, "%s must be a list of ids", field)
		}
		ids = append(ids, uint64(n.NumberValue))
	}
	return ids, nil
}

func recipeStruct(r models.RecipeResp) (*structpb.Struct, error) {
	var image interface{}
	if r.Image != nil {
		image = *r.Image
	}
	return structpb.NewStruct(map[string]interface{}{
		"id":           r.ID,
		"title":        r.Title,
		"time_minutes": r.TimeMinutes,
		"price":        r.Price,
		"link":         r.Link,
		"instructions": r.Instructions,
		"image":        image,
		"tags":         numbers(r.Tags),
		"ingredients":  numbers(r.Ingredients),
	})
}

func numbers(ids []uint64) []interface{} {
	out := make([]interface{}, len(ids))
	for i, id := range ids {
		out[i] = id
	}
	return out
}

func parseToken(values []string) (string, bool) {
	if len(values) == 0 {
		return "", false
	}
	parts := strings.Fields(values[0])
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Token") {
		return "", false
	}
	return parts[1], true
}

func toStatus(err error) error {
	var verr *models.ValidationError
	switch {
	case errors.Is(err, service.ErrUnauthenticated):
		return status.Error(codes.Unauthenticated, "invalid token")
	case errors.Is(err, service.ErrNotFound):
		return status.Error(codes.NotFound, "not found")
	case errors.As(err, &verr):
		return status.Error(codes.InvalidArgument, verr.Error())
	}
	return status.Error(codes.Internal, err.Error())
}
