package chunker

import "encoding/json"

// PageRef is a page claim attached to a chunk: either a known 1-based page
// number or an explicit "unknown". The storage layer serializes unknown as 0;
// nothing else in the code path touches that sentinel directly.
type PageRef struct {
	n int
}

// PageKnown returns a reference to a known 1-based page. Values below 1
// collapse to unknown rather than producing an impossible claim.
func PageKnown(n int) PageRef {
	if n < 1 {
		return PageRef{}
	}
	return PageRef{n: n}
}

// PageUnknown returns the explicit "page unknown" reference.
func PageUnknown() PageRef {
	return PageRef{}
}

// PageFromSentinel decodes the storage form (0 = unknown).
func PageFromSentinel(n int) PageRef {
	if n <= 0 {
		return PageRef{}
	}
	return PageRef{n: n}
}

// Number returns the page number and whether it is known.
func (p PageRef) Number() (int, bool) {
	return p.n, p.n >= 1
}

func (p PageRef) IsKnown() bool {
	return p.n >= 1
}

// Sentinel returns the storage form: the page number, or 0 when unknown.
func (p PageRef) Sentinel() int {
	return p.n
}

// MarshalJSON encodes the sentinel form, matching the storage convention.
func (p PageRef) MarshalJSON() ([]byte, error) {
	return json.Marshal(p.n)
}

func (p *PageRef) UnmarshalJSON(data []byte) error {
	var n int
	if err := json.Unmarshal(data, &n); err != nil {
		return err
	}
	*p = PageFromSentinel(n)
	return nil
}

// Clamp caps a known page at max. A page claim can never exceed the
// document's real length, whatever upstream estimation produced it.
func (p PageRef) Clamp(max int) PageRef {
	if !p.IsKnown() || max < 1 {
		return p
	}
	if p.n > max {
		return PageRef{n: max}
	}
	return p
}
