package score

import "github.com/rootasrole/rar/internal/actor"

func groupsLen(setgid *actor.GroupSet) int {
	if setgid == nil {
		return 0
	}
	return setgid.Len()
}

func groupsContainRoot(setgid *actor.GroupSet) bool {
	if setgid == nil {
		return false
	}
	return setgid.ContainsRoot()
}

// SetuserMinFor computes the setuser_min variant for a task's setuid/setgid
// grant, following the table of spec §4.5 exactly.
func SetuserMinFor(setuid *actor.UserRef, setgid *actor.GroupSet, enableRoot bool) SetuserMin {
	n := groupsLen(setgid)
	hasGroups := n > 0
	rootInGroups := groupsContainRoot(setgid)

	if setuid == nil {
		if !hasGroups {
			return SetuserNoSetuidNoSetgid
		}
		if enableRoot && rootInGroups {
			return SetuserSetgidRoot(n)
		}
		return SetuserSetgid(n)
	}

	isRootUID := setuid.IsRoot()

	if !hasGroups {
		if enableRoot && isRootUID {
			return SetuserSetuidRoot
		}
		return SetuserSetuid
	}

	if !enableRoot {
		return SetuserSetuidSetgid(n)
	}

	switch {
	case isRootUID && rootInGroups:
		return SetuserSetuidSetgidRoot(n)
	case isRootUID && !rootInGroups:
		return SetuserSetuidRootSetgid(n)
	case !isRootUID && rootInGroups:
		return SetuserSetuidNotrootSetgidRoot(n)
	default: // !isRootUID && !rootInGroups
		return SetuserSetuidSetgid(n)
	}
}
