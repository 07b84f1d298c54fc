package database

import (
	"github.com/bradfitz/gomemcache/memcache"
)

// NewMemcached connects the account lookup cache.
func NewMemcached(server string) *memcache.Client {
	return memcache.New(server)
}
