package enums

import "fmt"

// PropertyKind distinguishes the two listing types reviews and media attach to.
type PropertyKind string

const (
	PropertyKindHostel PropertyKind = "hostel"
	PropertyKindMess   PropertyKind = "mess"
)

var validPropertyKinds = []PropertyKind{
	PropertyKindHostel,
	PropertyKindMess,
}

// String implements fmt.Stringer.
func (p PropertyKind) String() string {
	return string(p)
}

// IsValid reports whether the value is a known PropertyKind.
func (p PropertyKind) IsValid() bool {
	for _, candidate := range validPropertyKinds {
		if candidate == p {
			return true
		}
	}
	return false
}

// ParsePropertyKind converts raw input into a PropertyKind.
func ParsePropertyKind(value string) (PropertyKind, error) {
	for _, candidate := range validPropertyKinds {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid property kind %q", value)
}
