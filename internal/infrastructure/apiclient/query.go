package apiclient

import (
	"net/url"
	"strconv"
	"time"

	"github.com/defm/console/internal/core/domain"
)

// params builds a query string, skipping zero values so the backend
// applies its own defaults.
type params url.Values

func (p params) str(key, v string) params {
	if v != "" {
		url.Values(p).Set(key, v)
	}
	return p
}

func (p params) num(key string, v int64) params {
	if v != 0 {
		url.Values(p).Set(key, strconv.FormatInt(v, 10))
	}
	return p
}

func (p params) boolean(key string, v bool) params {
	url.Values(p).Set(key, strconv.FormatBool(v))
	return p
}

func (p params) flag(key string, v bool) params {
	if v {
		url.Values(p).Set(key, "true")
	}
	return p
}

func (p params) at(key string, v time.Time) params {
	if !v.IsZero() {
		url.Values(p).Set(key, v.UTC().Format(time.RFC3339))
	}
	return p
}

func (p params) page(skip, limit int) params {
	return p.num("skip", int64(skip)).num("limit", int64(limit))
}

func (p params) values() url.Values { return url.Values(p) }

func listQuery(opts domain.ListOptions) url.Values {
	return params{}.page(opts.Skip, opts.Limit).values()
}
