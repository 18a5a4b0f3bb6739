package api

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/Adithya-Monish-Kumar-K/Tag-Categorization-Service/internal/catalog"
	"github.com/Adithya-Monish-Kumar-K/Tag-Categorization-Service/internal/categorize"
	apperrors "github.com/Adithya-Monish-Kumar-K/Tag-Categorization-Service/pkg/errors"
	"github.com/Adithya-Monish-Kumar-K/Tag-Categorization-Service/pkg/proto"
	"github.com/Adithya-Monish-Kumar-K/Tag-Categorization-Service/pkg/rpc"
)

// RegisterRPC exposes the read operations of svc as TagService methods.
func RegisterRPC(s *rpc.Server, svc *catalog.Service) {
	s.Register(proto.MethodCategorize, func(ctx context.Context, raw json.RawMessage) (any, error) {
		var req proto.CategorizeRequest
		if err := decodeParams(raw, &req); err != nil {
			return nil, err
		}
		res := svc.Categorize(ctx, categorize.Request{
			Tags:            req.Tags,
			Deduplicate:     req.Deduplicate,
			Mapping:         req.Mapping,
			Order:           req.Order,
			DefaultCategory: req.DefaultCategory,
		})
		return toCategorizeResponse(res), nil
	})

	s.Register(proto.MethodLookup, func(ctx context.Context, raw json.RawMessage) (any, error) {
		var req proto.LookupRequest
		if err := decodeParams(raw, &req); err != nil {
			return nil, err
		}
		rec, ok := svc.Lookup(req.Term)
		if !ok {
			return proto.LookupResponse{}, nil
		}
		return proto.LookupResponse{
			Found:       true,
			Tag:         rec.Tag,
			Category:    rec.Category,
			Subcategory: rec.Subcategory,
			Translation: rec.Translation,
		}, nil
	})

	s.Register(proto.MethodSearch, func(ctx context.Context, raw json.RawMessage) (any, error) {
		var req proto.SearchRequest
		if err := decodeParams(raw, &req); err != nil {
			return nil, err
		}
		if req.Limit < 0 {
			return nil, fmt.Errorf("limit must not be negative: %w", apperrors.ErrInvalidInput)
		}
		matches := svc.Search(ctx, req.Query, int(req.Limit))
		out := proto.SearchResponse{Query: req.Query, Results: make([]proto.SearchResult, 0, len(matches))}
		for _, m := range matches {
			out.Results = append(out.Results, proto.SearchResult{
				Tag:         m.Tag,
				Translation: m.Translation,
				Category:    m.Category,
				Subcategory: m.Subcategory,
			})
		}
		return out, nil
	})
}

func decodeParams(raw json.RawMessage, v any) error {
	if len(raw) == 0 {
		return fmt.Errorf("missing params: %w", apperrors.ErrInvalidInput)
	}
	if err := json.Unmarshal(raw, v); err != nil {
		return fmt.Errorf("decoding params: %v: %w", err, apperrors.ErrInvalidInput)
	}
	return nil
}

func toCategorizeResponse(res *categorize.Result) proto.CategorizeResponse {
	out := proto.CategorizeResponse{Buckets: make([]proto.Bucket, 0, res.Len())}
	for _, name := range res.Order() {
		items, _ := res.Bucket(name)
		b := proto.Bucket{Name: name, Items: make([]proto.Item, 0, len(items))}
		for _, it := range items {
			b.Items = append(b.Items, proto.Item{Tag: it.Tag, Translation: it.Translation})
		}
		out.Buckets = append(out.Buckets, b)
	}
	return out
}
