// Package rpc serves breeding over gRPC. Messages are google.protobuf.Struct
// values carrying the same JSON shapes as the HTTP API, so no generated code
// is needed.
package rpc

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/sirupsen/logrus"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/encoding/protojson"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/xtding233/slimelab/internal/genetics"
	"github.com/xtding233/slimelab/internal/lab"
	"github.com/xtding233/slimelab/internal/ranch"
	"github.com/xtding233/slimelab/internal/store"
	"github.com/xtding233/slimelab/pkg/logger"
)

const ServiceName = "slimelab.v1.Lab"

// LabServer is the server side of slimelab.v1.Lab.
type LabServer interface {
	Breed(context.Context, *structpb.Struct) (*structpb.Struct, error)
	Preview(context.Context, *structpb.Struct) (*structpb.Struct, error)
	Derive(context.Context, *structpb.Struct) (*structpb.Struct, error)
}

var serviceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*LabServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "Breed", Handler: unary("Breed", LabServer.Breed)},
		{MethodName: "Preview", Handler: unary("Preview", LabServer.Preview)},
		{MethodName: "Derive", Handler: unary("Derive", LabServer.Derive)},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "slimelab/v1/lab.proto",
}

func unary(name string, call func(LabServer, context.Context, *structpb.Struct) (*structpb.Struct, error)) grpc.MethodHandler {
	return func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
		in := new(structpb.Struct)
		if err := dec(in); err != nil {
			return nil, err
		}
		if interceptor == nil {
			return call(srv.(LabServer), ctx, in)
		}
		info := &grpc.UnaryServerInfo{Server: srv, FullMethod: "/" + ServiceName + "/" + name}
		handler := func(ctx context.Context, req any) (any, error) {
			return call(srv.(LabServer), ctx, req.(*structpb.Struct))
		}
		return interceptor(ctx, in, info, handler)
	}
}

// Register attaches the lab service to s.
func Register(s *grpc.Server, svc *lab.Service) {
	s.RegisterService(&serviceDesc, &server{svc: svc})
}

// NewServer builds a gRPC server with request logging and the lab service.
func NewServer(svc *lab.Service, opts ...grpc.ServerOption) *grpc.Server {
	opts = append(opts, grpc.ChainUnaryInterceptor(logUnary))
	s := grpc.NewServer(opts...)
	Register(s, svc)
	return s
}

func logUnary(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
	start := time.Now()
	resp, err := handler(ctx, req)
	entry := logger.Log.WithFields(logrus.Fields{
		"method":   info.FullMethod,
		"code":     status.Code(err).String(),
		"duration": time.Since(start).String(),
	})
	if status.Code(err) == codes.Internal {
		entry.WithError(err).Warn("rpc failed")
	} else {
		entry.Debug("rpc")
	}
	return resp, err
}

type server struct {
	svc *lab.Service
}

type breedRequest struct {
	Parent1       string `json:"parent1"`
	Parent2       string `json:"parent2"`
	MutationBoost bool   `json:"mutationBoost"`
}

type previewRequest struct {
	Parent1 string `json:"parent1"`
	Parent2 string `json:"parent2"`
	Count   int    `json:"count"`
}

// DeriveRequest scores a genome without saving anything.
type DeriveRequest struct {
	Traits     genetics.Traits `json:"traits"`
	ComboBonus int             `json:"comboBonus"`
}

type DeriveResponse struct {
	Score    int                `json:"score"`
	Tier     genetics.Tier      `json:"tier"`
	Stars    int                `json:"stars"`
	Element  genetics.Element   `json:"element"`
	Elements []genetics.Element `json:"elements"`
}

func (s *server) Breed(_ context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	var req breedRequest
	if err := fromStruct(in, &req); err != nil {
		return nil, err
	}
	child, err := s.svc.Breed(req.Parent1, req.Parent2, req.MutationBoost)
	if err != nil {
		return nil, toStatus(err)
	}
	return toStruct(child)
}

func (s *server) Preview(_ context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	var req previewRequest
	if err := fromStruct(in, &req); err != nil {
		return nil, err
	}
	if req.Count == 0 {
		req.Count = 3
	}
	out, err := s.svc.Preview(req.Parent1, req.Parent2, req.Count)
	if err != nil {
		return nil, toStatus(err)
	}
	return toStruct(map[string]any{"previews": out})
}

func (s *server) Derive(_ context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	req := DeriveRequest{Traits: genetics.Traits{Size: 1.0}}
	if err := fromStruct(in, &req); err != nil {
		return nil, err
	}
	score, tier, els := genetics.Score(req.Traits, req.ComboBonus, s.svc.Settings().Params.MultiElementBonus)
	return toStruct(DeriveResponse{
		Score:    score,
		Tier:     tier,
		Stars:    genetics.Stars(tier),
		Element:  els[0],
		Elements: els,
	})
}

// fromStruct decodes a Struct through its JSON form.
func fromStruct(in *structpb.Struct, v any) error {
	raw, err := protojson.Marshal(in)
	if err != nil {
		return status.Errorf(codes.InvalidArgument, "encode request: %v", err)
	}
	if err := json.Unmarshal(raw, v); err != nil {
		return status.Errorf(codes.InvalidArgument, "decode request: %v", err)
	}
	return nil
}

func toStruct(v any) (*structpb.Struct, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, status.Errorf(codes.Internal, "encode response: %v", err)
	}
	out := new(structpb.Struct)
	if err := protojson.Unmarshal(raw, out); err != nil {
		return nil, status.Errorf(codes.Internal, "encode response: %v", err)
	}
	return out, nil
}

func toStatus(err error) error {
	switch {
	case errors.Is(err, store.ErrNotFound):
		return status.Error(codes.NotFound, err.Error())
	case lab.IsConflict(err):
		return status.Error(codes.FailedPrecondition, err.Error())
	case errors.Is(err, lab.ErrInvalidInput), errors.Is(err, ranch.ErrSameParent):
		return status.Error(codes.InvalidArgument, err.Error())
	default:
		return status.Error(codes.Internal, err.Error())
	}
}
