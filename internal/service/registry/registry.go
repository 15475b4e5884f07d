package registry

import (
	"github.com/patrickmn/go-cache"

	"seventvbot/internal/domain"
	"seventvbot/internal/metrics"
)

// Registry maps trigger text to the emote it is substituted with. Reads run
// concurrently with each other; writes are exclusive. Entries never expire.
type Registry struct {
	emotes *cache.Cache
}

func New() *Registry {
	return &Registry{
		emotes: cache.New(cache.NoExpiration, cache.NoExpiration),
	}
}

func (r *Registry) Get(trigger string) (domain.Emote, bool) {
	v, hit := r.emotes.Get(trigger)
	if !hit {
		return domain.Emote{}, false
	}

	return v.(domain.Emote), true
}

// Upsert stores e under its name, replacing any previous record.
func (r *Registry) Upsert(e domain.Emote) {
	r.emotes.Set(e.Name, e, cache.NoExpiration)
	metrics.RegistrySize.Set(float64(r.emotes.ItemCount()))
}

func (r *Registry) Len() int {
	return r.emotes.ItemCount()
}
