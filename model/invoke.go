package model

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/hupe1980/tripgraph/core"
	"github.com/hupe1980/tripgraph/internal/util"
)

// ErrNoResponse is returned when a model closes its stream without a final response.
var ErrNoResponse = errors.New("model produced no final response")

// Invoke drains a Generate call and returns the final (non-partial) response.
// Partial chunks are discarded; the first error terminates the call.
func Invoke(ctx context.Context, m Model, req Request) (Response, error) {
	respCh, errCh := m.Generate(ctx, req)

	var (
		final Response
		found bool
	)

	for respCh != nil || errCh != nil {
		select {
		case <-ctx.Done():
			return Response{}, ctx.Err()
		case resp, ok := <-respCh:
			if !ok {
				respCh = nil
				continue
			}
			if !resp.Partial {
				final = resp
				found = true
			}
		case err, ok := <-errCh:
			if !ok {
				errCh = nil
				continue
			}
			if err != nil {
				return Response{}, err
			}
		}
	}

	if !found {
		return Response{}, ErrNoResponse
	}

	return final, nil
}

// InvokeStructured requests a JSON object conforming to schema and validates
// the answer before returning it. Any decoding or validation failure is
// reported as core.ErrMalformedOutput.
func InvokeStructured(ctx context.Context, m Model, req Request, schema ResponseSchema) (map[string]any, error) {
	req.Schema = &schema
	req.Tools = nil

	resp, err := Invoke(ctx, m, req)
	if err != nil {
		return nil, err
	}

	obj, err := StructuredPayload(resp.Content)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", core.ErrMalformedOutput, schema.Name, err)
	}

	if err := util.ValidateParameters(obj, schema.Schema); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", core.ErrMalformedOutput, schema.Name, err)
	}

	return obj, nil
}

// StructuredPayload extracts a JSON object from response content. Providers
// that return structured data natively emit a DataPart; otherwise the text
// parts are parsed.
func StructuredPayload(c core.Content) (map[string]any, error) {
	var text strings.Builder
	for _, p := range c.Parts {
		switch v := p.(type) {
		case core.DataPart:
			return v.Data, nil
		case core.TextPart:
			text.WriteString(v.Text)
		}
	}
	return ParseJSONObject(text.String())
}

// ParseJSONObject parses a JSON object from model text, tolerating a
// surrounding markdown code fence and leading/trailing prose.
func ParseJSONObject(text string) (map[string]any, error) {
	s := strings.TrimSpace(text)
	if s == "" {
		return nil, errors.New("empty output")
	}

	if i := strings.Index(s, "```"); i >= 0 {
		rest := s[i+3:]
		if nl := strings.IndexByte(rest, '\n'); nl >= 0 {
			rest = rest[nl+1:]
		}
		if end := strings.Index(rest, "```"); end >= 0 {
			s = strings.TrimSpace(rest[:end])
		}
	}

	start := strings.IndexByte(s, '{')
	end := strings.LastIndexByte(s, '}')
	if start < 0 || end < start {
		return nil, errors.New("no JSON object found")
	}

	var obj map[string]any
	if err := json.Unmarshal([]byte(s[start:end+1]), &obj); err != nil {
		return nil, err
	}

	return obj, nil
}
