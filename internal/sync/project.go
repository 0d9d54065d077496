package sync

import (
	"fmt"
	"strings"
)

// ProjectID is the two-part global project name, `namespace/name`.
type ProjectID struct {
	Namespace string
	Name      string
}

func ParseProjectID(fullName string) (ProjectID, error) {
	ns, name, ok := strings.Cut(fullName, "/")
	if !ok || ns == "" || name == "" {
		return ProjectID{}, fmt.Errorf("invalid project name %q, expected namespace/name", fullName)
	}
	return ProjectID{Namespace: ns, Name: name}, nil
}

func (p ProjectID) FullName() string {
	return p.Namespace + "/" + p.Name
}

func (p ProjectID) String() string {
	return p.FullName()
}

// LocalProjectInfo describes one project registered in the local registry.
type LocalProjectInfo struct {
	ProjectDir    string
	Namespace     string
	Name          string
	LocalVersion  int
	ServerVersion int
}

func (l *LocalProjectInfo) ID() ProjectID {
	return ProjectID{Namespace: l.Namespace, Name: l.Name}
}
