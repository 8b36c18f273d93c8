package nativebuf

import (
	"fmt"
	"strings"
)

// Revision selects which GraphicBuffer constructor libui.so exposes.
type Revision int

const (
	// RevisionAuto resolves to a concrete revision from the device API
	// level when the manager is opened.
	RevisionAuto Revision = iota
	// RevisionLegacy covers API 23 and older: a four-argument constructor.
	RevisionLegacy
	// RevisionIntermediate covers API 24 and 25: the constructor also takes
	// a requestor name as std::string.
	RevisionIntermediate
	// RevisionModern covers API 26 and newer, where the constructor is no
	// longer reachable. Use AHardwareBuffer instead.
	RevisionModern
)

// RevisionForAPILevel maps an Android API level to a revision.
func RevisionForAPILevel(level int) (Revision, error) {
	switch {
	case level <= 0:
		return RevisionAuto, fmt.Errorf("nativebuf: invalid API level %d", level)
	case level <= 23:
		return RevisionLegacy, nil
	case level <= 25:
		return RevisionIntermediate, nil
	default:
		return RevisionModern, nil
	}
}

func (r Revision) String() string {
	switch r {
	case RevisionAuto:
		return "auto"
	case RevisionLegacy:
		return "legacy"
	case RevisionIntermediate:
		return "intermediate"
	case RevisionModern:
		return "modern"
	default:
		return fmt.Sprintf("Revision(%d)", int(r))
	}
}

// ParseRevision accepts the names printed by String.
func ParseRevision(s string) (Revision, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "auto":
		return RevisionAuto, nil
	case "legacy":
		return RevisionLegacy, nil
	case "intermediate":
		return RevisionIntermediate, nil
	case "modern":
		return RevisionModern, nil
	default:
		return RevisionAuto, fmt.Errorf("nativebuf: unknown revision %q", s)
	}
}

func (r Revision) MarshalText() ([]byte, error) {
	return []byte(r.String()), nil
}

func (r *Revision) UnmarshalText(text []byte) error {
	v, err := ParseRevision(string(text))
	if err != nil {
		return err
	}
	*r = v
	return nil
}
