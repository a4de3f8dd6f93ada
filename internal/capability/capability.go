// Package capability holds the fixed table of POSIX capability names the
// resolver understands and the admin-class subset used by the score algebra
// (spec glossary: "Admin-class capability").
package capability

import "strings"

// Name is a POSIX capability constant without its CAP_ prefix, stored
// uppercase (e.g. "SYS_ADMIN").
type Name string

// Set is an unordered collection of capability names.
type Set map[Name]struct{}

// All known Linux capabilities, numbered as in linux/capability.h. The
// policy document stores capabilities by name, not by number; names are
// case-insensitive on input.
var byName = map[Name]int{
	"CHOWN":              0,
	"DAC_OVERRIDE":       1,
	"DAC_READ_SEARCH":    2,
	"FOWNER":             3,
	"FSETID":             4,
	"KILL":               5,
	"SETGID":             6,
	"SETUID":             7,
	"SETPCAP":            8,
	"LINUX_IMMUTABLE":    9,
	"NET_BIND_SERVICE":   10,
	"NET_BROADCAST":      11,
	"NET_ADMIN":          12,
	"NET_RAW":            13,
	"IPC_LOCK":           14,
	"IPC_OWNER":          15,
	"SYS_MODULE":         16,
	"SYS_RAWIO":          17,
	"SYS_CHROOT":         18,
	"SYS_PTRACE":         19,
	"SYS_PACCT":          20,
	"SYS_ADMIN":          21,
	"SYS_BOOT":           22,
	"SYS_NICE":           23,
	"SYS_RESOURCE":       24,
	"SYS_TIME":           25,
	"SYS_TTY_CONFIG":     26,
	"MKNOD":              27,
	"LEASE":              28,
	"AUDIT_WRITE":        29,
	"AUDIT_CONTROL":      30,
	"SETFCAP":            31,
	"MAC_OVERRIDE":       32,
	"MAC_ADMIN":          33,
	"SYSLOG":             34,
	"WAKE_ALARM":         35,
	"BLOCK_SUSPEND":      36,
	"AUDIT_READ":         37,
	"PERFMON":            38,
	"BPF":                39,
	"CHECKPOINT_RESTORE": 40,
}

// AdminClass is the implementation-defined set of capabilities that permit
// arbitrary privilege escalation beyond their nominal scope. Ranked worse
// than any other defined capability by the score algebra (score.CapsMin).
var AdminClass = Set{
	"SYS_ADMIN":       {},
	"SYS_PTRACE":      {},
	"DAC_OVERRIDE":    {},
	"DAC_READ_SEARCH": {},
	"SETUID":          {},
	"SETGID":          {},
	"SYS_MODULE":      {},
	"SYS_RAWIO":       {},
	"SYS_BOOT":        {},
	"NET_ADMIN":       {},
	"NET_RAW":         {},
}

// Parse normalizes a capability name (case-insensitive, optional CAP_
// prefix) and validates it against the known table.
func Parse(raw string) (Name, error) {
	s := strings.ToUpper(strings.TrimSpace(raw))
	s = strings.TrimPrefix(s, "CAP_")
	if _, ok := byName[Name(s)]; !ok {
		return "", &UnknownCapabilityError{Raw: raw}
	}
	return Name(s), nil
}

// Bit returns the capability's bit position in the 64-bit capability vector.
func (n Name) Bit() (uint, bool) {
	v, ok := byName[n]
	return uint(v), ok
}

// IsAdminClass reports whether n is in AdminClass.
func (n Name) IsAdminClass() bool {
	_, ok := AdminClass[n]
	return ok
}

// UnknownCapabilityError is returned by Parse for an unrecognized name.
type UnknownCapabilityError struct {
	Raw string
}

func (e *UnknownCapabilityError) Error() string {
	return "unknown capability: " + e.Raw
}

// All returns a Set containing every known capability (the "All" default
// behavior of spec §3's Capabilities).
func All() Set {
	s := make(Set, len(byName))
	for n := range byName {
		s[n] = struct{}{}
	}
	return s
}

// NewSet builds a Set from a list of raw capability names, validating each.
func NewSet(raws []string) (Set, error) {
	s := make(Set, len(raws))
	for _, raw := range raws {
		n, err := Parse(raw)
		if err != nil {
			return nil, err
		}
		s[n] = struct{}{}
	}
	return s, nil
}

// HasAdminClass reports whether any member of s is in AdminClass.
func (s Set) HasAdminClass() bool {
	for n := range s {
		if n.IsAdminClass() {
			return true
		}
	}
	return false
}

// IsAll reports whether s contains every known capability.
func (s Set) IsAll() bool {
	return len(s) == len(byName)
}

// Union returns a new Set containing every member of a and b.
func Union(a, b Set) Set {
	out := make(Set, len(a)+len(b))
	for n := range a {
		out[n] = struct{}{}
	}
	for n := range b {
		out[n] = struct{}{}
	}
	return out
}

// Difference returns a new Set with every member of b removed from a.
func Difference(a, b Set) Set {
	out := make(Set, len(a))
	for n := range a {
		if _, excluded := b[n]; !excluded {
			out[n] = struct{}{}
		}
	}
	return out
}
