package core

import "fmt"

// Registry is the ordered, immutable set of configured venues.
type Registry struct {
	venues []Venue
	byID   map[VenueID]int
}

func NewRegistry(venues ...Venue) (*Registry, error) {
	r := &Registry{
		venues: make([]Venue, 0, len(venues)),
		byID:   make(map[VenueID]int, len(venues)),
	}
	for _, v := range venues {
		if v.ID == "" {
			return nil, fmt.Errorf("venue with router %s has no name", v.Router.Hex())
		}
		if _, dup := r.byID[v.ID]; dup {
			return nil, fmt.Errorf("duplicate venue %q", v.ID)
		}
		r.byID[v.ID] = len(r.venues)
		r.venues = append(r.venues, v)
	}
	return r, nil
}

func (r *Registry) Get(id VenueID) (Venue, bool) {
	i, ok := r.byID[id]
	if !ok {
		return Venue{}, false
	}
	return r.venues[i], true
}

func (r *Registry) All() []Venue {
	out := make([]Venue, len(r.venues))
	copy(out, r.venues)
	return out
}

func (r *Registry) Len() int { return len(r.venues) }
