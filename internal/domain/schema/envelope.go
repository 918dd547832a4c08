package schema

import (
	"encoding/json"
	"fmt"

	"github.com/peoplekit/hradmin/pkg/utils"
)

// Page is the uniform list shape every envelope normalizes into.
type Page struct {
	Results  []Record `json:"results"`
	Count    int      `json:"count"`
	Next     string   `json:"next,omitempty"`
	Previous string   `json:"previous,omitempty"`
}

// EnvelopeKind tags the response shapes the HR backend is known to emit.
type EnvelopeKind int

const (
	// EnvelopeBareArray is a plain JSON array of records.
	EnvelopeBareArray EnvelopeKind = iota
	// EnvelopeResultsPage is the {results, count, next, previous} page.
	EnvelopeResultsPage
	// EnvelopeSuccessData is the {success, data, pagination} wrapper.
	EnvelopeSuccessData
)

// Envelope is the decoded but not yet normalized list response.
type Envelope struct {
	Kind  EnvelopeKind
	array []Record
	page  resultsPage
	outer successEnvelope
}

type resultsPage struct {
	Results  []Record `json:"results"`
	Count    *int     `json:"count"`
	Next     *string  `json:"next"`
	Previous *string  `json:"previous"`
}

type successEnvelope struct {
	Success    *bool           `json:"success"`
	Data       json.RawMessage `json:"data"`
	Pagination map[string]any  `json:"pagination"`
}

// DetectEnvelope classifies a raw list response by structure. No unchecked
// casts: each probe is a strict decode of the candidate shape.
func DetectEnvelope(raw []byte) (Envelope, error) {
	var arr []Record
	if err := json.Unmarshal(raw, &arr); err == nil {
		return Envelope{Kind: EnvelopeBareArray, array: arr}, nil
	}

	var outer successEnvelope
	if err := json.Unmarshal(raw, &outer); err == nil && outer.Success != nil && len(outer.Data) > 0 {
		return Envelope{Kind: EnvelopeSuccessData, outer: outer}, nil
	}

	var page resultsPage
	if err := json.Unmarshal(raw, &page); err == nil && page.Results != nil {
		return Envelope{Kind: EnvelopeResultsPage, page: page}, nil
	}

	return Envelope{}, fmt.Errorf("unrecognized list response shape: %s", snippet(raw))
}

// Normalize converts the envelope into the uniform Page shape.
func (e Envelope) Normalize() (Page, error) {
	switch e.Kind {
	case EnvelopeBareArray:
		return normalizeBareArray(e.array), nil
	case EnvelopeResultsPage:
		return normalizeResultsPage(e.page), nil
	case EnvelopeSuccessData:
		return normalizeSuccessEnvelope(e.outer)
	default:
		return Page{}, fmt.Errorf("unknown envelope kind %d", e.Kind)
	}
}

// NormalizeList detects and normalizes in one step.
func NormalizeList(raw []byte) (Page, error) {
	env, err := DetectEnvelope(raw)
	if err != nil {
		return Page{}, err
	}
	return env.Normalize()
}

func normalizeBareArray(records []Record) Page {
	if records == nil {
		records = []Record{}
	}
	return Page{Results: records, Count: len(records)}
}

func normalizeResultsPage(p resultsPage) Page {
	out := Page{Results: p.Results}
	if out.Results == nil {
		out.Results = []Record{}
	}
	if p.Count != nil {
		out.Count = *p.Count
	} else {
		out.Count = len(out.Results)
	}
	if p.Next != nil {
		out.Next = *p.Next
	}
	if p.Previous != nil {
		out.Previous = *p.Previous
	}
	return out
}

func normalizeSuccessEnvelope(outer successEnvelope) (Page, error) {
	var records []Record
	if err := json.Unmarshal(outer.Data, &records); err != nil {
		// a single-record payload still normalizes to a one-row page
		var single Record
		if err := json.Unmarshal(outer.Data, &single); err != nil {
			return Page{}, fmt.Errorf("envelope data is neither array nor object: %s", snippet(outer.Data))
		}
		records = []Record{single}
	}

	out := Page{Results: records, Count: len(records)}
	if outer.Pagination != nil {
		if count, ok := outer.Pagination["count"]; ok {
			out.Count = utils.ToInt(count)
		}
		if next, ok := outer.Pagination["next"].(string); ok {
			out.Next = next
		}
		if prev, ok := outer.Pagination["previous"].(string); ok {
			out.Previous = prev
		}
	}
	return out, nil
}

// NormalizeRecord unwraps a single-record response, which arrives either
// bare or inside the {success, data} wrapper.
func NormalizeRecord(raw []byte) (Record, error) {
	var outer successEnvelope
	if err := json.Unmarshal(raw, &outer); err != nil {
		return nil, fmt.Errorf("unrecognized record response shape: %s", snippet(raw))
	}
	if outer.Success != nil && len(outer.Data) > 0 {
		var rec Record
		if err := json.Unmarshal(outer.Data, &rec); err != nil {
			return nil, fmt.Errorf("envelope data is not a record: %s", snippet(outer.Data))
		}
		return rec, nil
	}

	var rec Record
	if err := json.Unmarshal(raw, &rec); err != nil {
		return nil, fmt.Errorf("unrecognized record response shape: %s", snippet(raw))
	}
	return rec, nil
}

// snippet truncates a payload for error messages.
func snippet(raw []byte) string {
	const max = 120
	s := string(raw)
	if len(s) > max {
		return s[:max] + "..."
	}
	return s
}
