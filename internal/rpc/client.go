package rpc

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/xtding233/slimelab/internal/genetics"
)

// Client calls slimelab.v1.Lab.
type Client struct {
	cc grpc.ClientConnInterface
}

func NewClient(cc grpc.ClientConnInterface) *Client {
	return &Client{cc: cc}
}

func (c *Client) invoke(ctx context.Context, method string, req, resp any) error {
	in, err := toStruct(req)
	if err != nil {
		return err
	}
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, "/"+ServiceName+"/"+method, in, out); err != nil {
		return err
	}
	return fromStruct(out, resp)
}

func (c *Client) Breed(ctx context.Context, parent1, parent2 string, boost bool) (*genetics.Slime, error) {
	var out genetics.Slime
	err := c.invoke(ctx, "Breed", breedRequest{Parent1: parent1, Parent2: parent2, MutationBoost: boost}, &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) Preview(ctx context.Context, parent1, parent2 string, count int) ([]*genetics.Slime, error) {
	var out struct {
		Previews []*genetics.Slime `json:"previews"`
	}
	err := c.invoke(ctx, "Preview", previewRequest{Parent1: parent1, Parent2: parent2, Count: count}, &out)
	return out.Previews, err
}

func (c *Client) Derive(ctx context.Context, t genetics.Traits, comboBonus int) (DeriveResponse, error) {
	var out DeriveResponse
	err := c.invoke(ctx, "Derive", DeriveRequest{Traits: t, ComboBonus: comboBonus}, &out)
	return out, err
}
