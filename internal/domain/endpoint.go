package domain

// EndpointRing hands out endpoints round-robin, wrapping at the end.
type EndpointRing struct {
	endpoints []string
	next      int
}

func NewEndpointRing(endpoints []string) (*EndpointRing, error) {
	if len(endpoints) == 0 {
		return nil, ErrNoPingEndpoints
	}

	copied := make([]string, len(endpoints))
	copy(copied, endpoints)

	return &EndpointRing{endpoints: copied}, nil
}

func (r *EndpointRing) Next() string {
	endpoint := r.endpoints[r.next]
	r.next = (r.next + 1) % len(r.endpoints)
	return endpoint
}

func (r *EndpointRing) Len() int {
	return len(r.endpoints)
}
