package taxonomy

import (
	"context"
	"strings"
)

// StaticCodeResolver validates component codes against a fixed allow
// list. Deployments embedded in a host application replace this with a
// resolver backed by the host's maintenance taxonomy; the static list
// covers the codes the standard rule packs cite.
type StaticCodeResolver struct {
	codes map[string]struct{}
}

// NewStaticCodeResolver creates a resolver over the given codes. With no
// codes it accepts everything, which keeps demo mode permissive.
func NewStaticCodeResolver(codes []string) *StaticCodeResolver {
	r := &StaticCodeResolver{codes: make(map[string]struct{}, len(codes))}
	for _, code := range codes {
		r.codes[strings.ToUpper(strings.TrimSpace(code))] = struct{}{}
	}
	return r
}

// IsKnown reports whether the component code exists in the taxonomy
func (r *StaticCodeResolver) IsKnown(_ context.Context, code string) (bool, error) {
	if len(r.codes) == 0 {
		return true, nil
	}
	_, ok := r.codes[strings.ToUpper(strings.TrimSpace(code))]
	return ok, nil
}

// DefaultComponentCodes lists the component codes cited by the standard
// out-of-service rule packs, loosely following VMRS system groupings.
func DefaultComponentCodes() []string {
	return []string{
		"BRAKE_LINING",
		"BRAKE_CHAMBER",
		"BRAKE_HOSE",
		"PARKING_BRAKE",
		"STEERING_WHEEL",
		"STEERING_COLUMN",
		"TIE_ROD",
		"TIRE_STEER",
		"TIRE_DRIVE",
		"WHEEL_RIM",
		"WHEEL_FASTENER",
		"SUSPENSION_SPRING",
		"SUSPENSION_AIRBAG",
		"FRAME_RAIL",
		"COUPLING_FIFTH_WHEEL",
		"COUPLING_KINGPIN",
		"COUPLING_SAFETY_CHAIN",
		"LIGHTING_HEADLAMP",
		"LIGHTING_STOP_LAMP",
		"LIGHTING_TURN_SIGNAL",
		"EXHAUST_SYSTEM",
		"FUEL_SYSTEM",
		"WINDSHIELD",
		"WIPERS",
		"CARGO_TIEDOWN",
		"CARGO_ANCHOR_POINT",
		"HM_PLACARD",
		"HM_PACKAGE",
		"DRIVER_LICENSE",
		"DRIVER_MEDICAL_CERT",
		"DRIVER_HOS_RECORD",
	}
}
