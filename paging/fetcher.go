package paging

import (
	"context"
	"encoding/json"
	"net/url"
	"strconv"
)

// Transport performs one API round-trip and returns the raw JSON body.
type Transport interface {
	Send(ctx context.Context, params url.Values) (json.RawMessage, error)
}

// TransportFunc adapts a function to Transport.
type TransportFunc func(ctx context.Context, params url.Values) (json.RawMessage, error)

func (f TransportFunc) Send(ctx context.Context, params url.Values) (json.RawMessage, error) {
	return f(ctx, params)
}

// Request describes one batch request.
type Request struct {
	Params     url.Values
	LimitParam string
	Limit      int
	Marker     Marker
}

// Values builds the outgoing parameters without touching r.Params.
// Marker keys win over base parameters of the same name.
func (r Request) Values() url.Values {
	out := make(url.Values, len(r.Params)+len(r.Marker)+1)
	for k, vs := range r.Params {
		out[k] = append([]string(nil), vs...)
	}
	if r.LimitParam != "" && r.Limit > 0 {
		out.Set(r.LimitParam, strconv.Itoa(r.Limit))
	}
	r.Marker.Apply(out)
	return out
}

// Batch is one response split into its parts.
type Batch struct {
	Items    []json.RawMessage
	Next     Marker
	Warnings []Warning
}

// Fetcher retrieves one batch.
type Fetcher interface {
	Fetch(ctx context.Context, req Request) (Batch, error)
}

// FetcherFunc adapts a function to Fetcher.
type FetcherFunc func(ctx context.Context, req Request) (Batch, error)

func (f FetcherFunc) Fetch(ctx context.Context, req Request) (Batch, error) {
	return f(ctx, req)
}

// PageFetcher issues exactly one Transport call per Fetch and splits the
// response with an Envelope. Transport errors are returned unchanged.
type PageFetcher struct {
	transport Transport
	envelope  Envelope
}

// NewPageFetcher creates a fetcher. A nil envelope reads query.pages.
func NewPageFetcher(t Transport, env Envelope) *PageFetcher {
	if env == nil {
		env = QueryEnvelope{Generator: true}
	}
	return &PageFetcher{transport: t, envelope: env}
}

func (f *PageFetcher) Fetch(ctx context.Context, req Request) (Batch, error) {
	raw, err := f.transport.Send(ctx, req.Values())
	if err != nil {
		return Batch{}, err
	}

	items, err := f.envelope.Items(raw)
	if err != nil {
		return Batch{}, err
	}
	next, err := f.envelope.Continuation(raw)
	if err != nil {
		return Batch{}, err
	}
	warnings, err := f.envelope.Warnings(raw)
	if err != nil {
		return Batch{}, err
	}

	return Batch{Items: items, Next: next, Warnings: warnings}, nil
}
