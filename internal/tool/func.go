package tool

import (
	"context"
	"fmt"

	"github.com/mitchellh/mapstructure"
)

// Validator is implemented by requests with rules beyond the schema.
type Validator interface {
	Validate() error
}

// RunFunc executes a tool with its typed request.
type RunFunc[Req any] func(ctx context.Context, tc Context, req *Req) (string, error)

// PreviewFunc renders the confirmation preview for a typed request.
type PreviewFunc[Req any] func(tc Context, req *Req) (Preview, error)

// Option configures a Tool built by New.
type Option[Req any] func(*funcTool[Req])

// WithPreview attaches a custom confirmation preview.
func WithPreview[Req any](preview PreviewFunc[Req]) Option[Req] {
	return func(f *funcTool[Req]) {
		f.preview = preview
	}
}

// funcTool adapts a typed RunFunc to the Tool interface.
type funcTool[Req any] struct {
	desc    Descriptor
	run     RunFunc[Req]
	preview PreviewFunc[Req]
}

// New builds a Tool from a descriptor and a typed run function.
// Arguments are decoded into Req using its json tags.
func New[Req any](desc Descriptor, run RunFunc[Req], opts ...Option[Req]) Tool {
	f := &funcTool[Req]{desc: desc, run: run}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

func (f *funcTool[Req]) Descriptor() Descriptor {
	return f.desc
}

func (f *funcTool[Req]) Decode(args map[string]any) (any, error) {
	req := new(Req)
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		TagName: "json",
		Result:  req,
	})
	if err != nil {
		return nil, err
	}
	if err := decoder.Decode(args); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidArguments, err)
	}

	if v, ok := any(req).(Validator); ok {
		if err := v.Validate(); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidArguments, err)
		}
	}
	return req, nil
}

func (f *funcTool[Req]) Execute(ctx context.Context, tc Context, req any) (string, error) {
	typed, ok := req.(*Req)
	if !ok {
		return "", fmt.Errorf("%w: unexpected request type %T for %s", ErrInvalidArguments, req, f.desc.Name)
	}
	return f.run(ctx, tc, typed)
}

func (f *funcTool[Req]) Preview(tc Context, req any) (Preview, error) {
	if f.preview == nil {
		return Preview{}, ErrNoPreview
	}
	typed, ok := req.(*Req)
	if !ok {
		return Preview{}, fmt.Errorf("%w: unexpected request type %T for %s", ErrInvalidArguments, req, f.desc.Name)
	}
	return f.preview(tc, typed)
}
