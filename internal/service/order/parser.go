package order

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/curugbadak/pasar-desa/backend/internal/model/chat"
)

// Sentinel markers delimiting the structured order block inside an
// assistant response.
const (
	StartMarker = "<<<ORDER_START>>>"
	EndMarker   = "<<<ORDER_END>>>"
)

var (
	ErrMalformedPayload  = errors.New("malformed order payload")
	ErrInconsistentTotal = errors.New("order total does not match line items")
)

// Result is the outcome of scanning one assistant response.
type Result struct {
	// DisplayText is the response with every complete block removed.
	DisplayText string
	// Proposal is set only when the first block decoded cleanly.
	Proposal *chat.OrderProposal
	// Err explains why a present block produced no proposal.
	Err error
	// Blocks counts complete marker pairs; only the first is decoded.
	Blocks int
}

// Found reports whether the response carried at least one marker pair.
func (r Result) Found() bool {
	return r.Blocks > 0
}

// Extract locates sentinel blocks by exact substring search and strips all
// of them, decoding only the first. Text without a complete marker pair is
// returned unchanged.
func Extract(raw string) Result {
	var (
		display strings.Builder
		first   string
		result  Result
		pos     int
	)
	for {
		start, bodyStart, bodyEnd, next, ok := locate(raw, pos)
		if !ok {
			break
		}
		if result.Blocks == 0 {
			first = raw[bodyStart:bodyEnd]
		}
		display.WriteString(raw[pos:start])
		result.Blocks++
		pos = next
	}
	if result.Blocks == 0 {
		return Result{DisplayText: raw}
	}
	display.WriteString(raw[pos:])
	result.DisplayText = strings.TrimSpace(display.String())

	proposal, err := decode(first)
	if err != nil {
		result.Err = err
		return result
	}
	result.Proposal = proposal
	return result
}

// locate finds the next complete block at or after from. next is the index
// just past the end marker.
func locate(raw string, from int) (start, bodyStart, bodyEnd, next int, ok bool) {
	rel := strings.Index(raw[from:], StartMarker)
	if rel < 0 {
		return 0, 0, 0, 0, false
	}
	start = from + rel
	bodyStart = start + len(StartMarker)
	endRel := strings.Index(raw[bodyStart:], EndMarker)
	if endRel < 0 {
		return 0, 0, 0, 0, false
	}
	bodyEnd = bodyStart + endRel
	return start, bodyStart, bodyEnd, bodyEnd + len(EndMarker), true
}

type linePayload struct {
	Name  string `json:"name"`
	Qty   int    `json:"qty"`
	Price int64  `json:"price"`
}

type objectPayload struct {
	Items []linePayload `json:"items"`
	Total *int64        `json:"total"`
}

// decode parses the enclosed span. The payload is either a bare array of
// lines or an object carrying items and a stated total.
func decode(span string) (*chat.OrderProposal, error) {
	body := unfence(strings.TrimSpace(span))
	if body == "" {
		return nil, fmt.Errorf("%w: empty block", ErrMalformedPayload)
	}

	var lines []linePayload
	var stated *int64
	switch body[0] {
	case '[':
		if err := decodeStrict(body, &lines); err != nil {
			return nil, err
		}
	case '{':
		var obj objectPayload
		if err := decodeStrict(body, &obj); err != nil {
			return nil, err
		}
		lines, stated = obj.Items, obj.Total
	default:
		return nil, fmt.Errorf("%w: expected array or object", ErrMalformedPayload)
	}

	if len(lines) == 0 {
		return nil, fmt.Errorf("%w: no line items", ErrMalformedPayload)
	}

	items := make([]chat.LineItem, 0, len(lines))
	for i, line := range lines {
		name := strings.TrimSpace(line.Name)
		switch {
		case name == "":
			return nil, fmt.Errorf("%w: line %d has no name", ErrMalformedPayload, i)
		case line.Qty < 1:
			return nil, fmt.Errorf("%w: line %d quantity %d", ErrMalformedPayload, i, line.Qty)
		case line.Price < 0:
			return nil, fmt.Errorf("%w: line %d price %d", ErrMalformedPayload, i, line.Price)
		}
		items = append(items, chat.LineItem{Name: name, UnitPrice: line.Price, Quantity: line.Qty})
	}

	if _, ok := chat.CheckedSum(items); !ok {
		return nil, fmt.Errorf("%w: total out of range", ErrMalformedPayload)
	}

	proposal := chat.NewOrderProposal(items)
	if stated != nil && *stated != proposal.Total {
		return nil, fmt.Errorf("%w: stated %d, lines sum to %d", ErrInconsistentTotal, *stated, proposal.Total)
	}
	return proposal, nil
}

// decodeStrict decodes exactly one JSON value and rejects trailing data.
func decodeStrict(body string, v any) error {
	dec := json.NewDecoder(strings.NewReader(body))
	if err := dec.Decode(v); err != nil {
		return fmt.Errorf("%w: %v", ErrMalformedPayload, err)
	}
	var extra json.RawMessage
	if err := dec.Decode(&extra); !errors.Is(err, io.EOF) {
		return fmt.Errorf("%w: trailing data after payload", ErrMalformedPayload)
	}
	return nil
}

// unfence drops a markdown code fence wrapping the whole span.
func unfence(body string) string {
	if !strings.HasPrefix(body, "```") || !strings.HasSuffix(body, "```") || len(body) < 6 {
		return body
	}
	inner := strings.TrimSuffix(body[3:], "```")
	if nl := strings.IndexByte(inner, '\n'); nl >= 0 && !strings.ContainsAny(inner[:nl], "[{") {
		inner = inner[nl+1:]
	}
	return strings.TrimSpace(inner)
}
