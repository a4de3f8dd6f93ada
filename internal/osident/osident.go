// Package osident resolves OS user/group identities for the running process
// and provides Cache, a memo of actor name→id lookups. internal/resolve does
// not use Cache; it resolves each actor reference directly as it visits it.
package osident

import (
	"os"

	"golang.org/x/sys/unix"

	"github.com/rootasrole/rar/internal/actor"
)

// Cache memoizes actor.Ref resolutions for the duration of one resolver
// call. Not safe for concurrent use; the resolver is single-threaded
// per spec §5.
type Cache struct {
	users  map[actor.Ref]uint32
	groups map[actor.Ref]uint32
}

// NewCache returns an empty Cache.
func NewCache() *Cache {
	return &Cache{
		users:  make(map[actor.Ref]uint32),
		groups: make(map[actor.Ref]uint32),
	}
}

// ResolveUser resolves a UserRef, caching by its underlying Ref value.
func (c *Cache) ResolveUser(u actor.UserRef) (uint32, bool) {
	if id, ok := c.users[u.Ref]; ok {
		return id, true
	}
	id, ok := u.Resolve()
	if ok {
		c.users[u.Ref] = id
	}
	return id, ok
}

// ResolveGroup resolves a GroupRef, caching by its underlying Ref value.
func (c *Cache) ResolveGroup(g actor.GroupRef) (uint32, bool) {
	if id, ok := c.groups[g.Ref]; ok {
		return id, true
	}
	id, ok := g.Resolve()
	if ok {
		c.groups[g.Ref] = id
	}
	return id, ok
}

// CurrentCredentials builds actor.Credentials for the calling process,
// reading its real uid, full supplementary group list, controlling tty
// device id (if any) and parent pid.
func CurrentCredentials() (actor.Credentials, error) {
	gids, err := unix.Getgroups()
	if err != nil {
		return actor.Credentials{}, err
	}
	list := make([]uint32, 0, len(gids)+1)
	egid := uint32(unix.Getegid())
	list = append(list, egid)
	for _, g := range gids {
		list = append(list, uint32(g))
	}

	cred := actor.Credentials{
		UID:  uint32(unix.Getuid()),
		GIDs: dedup(list),
		PPID: int32(unix.Getppid()),
	}

	if dev, ok := controllingTTY(); ok {
		cred.TTY = &dev
	}
	return cred, nil
}

// controllingTTY returns the device id of the process's controlling
// terminal, if it has one attached to stdin.
func controllingTTY() (uint64, bool) {
	info, err := os.Stdin.Stat()
	if err != nil {
		return 0, false
	}
	if info.Mode()&os.ModeCharDevice == 0 {
		return 0, false
	}
	var stat unix.Stat_t
	if err := unix.Fstat(int(os.Stdin.Fd()), &stat); err != nil {
		return 0, false
	}
	return uint64(stat.Rdev), true
}

func dedup(in []uint32) []uint32 {
	seen := make(map[uint32]struct{}, len(in))
	out := make([]uint32, 0, len(in))
	for _, v := range in {
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	return out
}
