package adapter

import (
	"fmt"
	"sort"

	"news-crawler/port"
)

// Registry maps website hostnames to their adapters.
type Registry struct {
	adapters map[string]port.SiteAdapter
}

// NewRegistry wires every supported publisher onto the shared fetcher.
func NewRegistry(fetcher *Fetcher) *Registry {
	r := &Registry{adapters: make(map[string]port.SiteAdapter)}
	for _, a := range []port.SiteAdapter{
		NewVnExpressAdapter(fetcher),
		NewVneconomyAdapter(fetcher),
		NewCafeFAdapter(fetcher),
	} {
		r.adapters[a.Website()] = a
	}
	return r
}

func (r *Registry) ForWebsite(website string) (port.SiteAdapter, error) {
	a, ok := r.adapters[website]
	if !ok {
		return nil, fmt.Errorf("unsupported website: %s", website)
	}
	return a, nil
}

// Websites lists the supported hostnames in stable order.
func (r *Registry) Websites() []string {
	out := make([]string, 0, len(r.adapters))
	for w := range r.adapters {
		out = append(out, w)
	}
	sort.Strings(out)
	return out
}

// TopicLister returns the website's adapter when it can seed topics from
// its navigation.
func (r *Registry) TopicLister(website string) (port.TopicLister, error) {
	a, err := r.ForWebsite(website)
	if err != nil {
		return nil, err
	}
	lister, ok := a.(port.TopicLister)
	if !ok {
		return nil, fmt.Errorf("website %s does not expose a topic navigation", website)
	}
	return lister, nil
}
