package database

import (
	"strings"
	"time"

	"github.com/bradfitz/gomemcache/memcache"
)

// NewMemcached accepts a comma separated server list. It returns nil when
// addrs is empty.
func NewMemcached(addrs string) *memcache.Client {
	if addrs == "" {
		return nil
	}
	var servers []string
	for _, s := range strings.Split(addrs, ",") {
		if s = strings.TrimSpace(s); s != "" {
			servers = append(servers, s)
		}
	}
	mc := memcache.New(servers...)
	mc.Timeout = 500 * time.Millisecond
	return mc
}
