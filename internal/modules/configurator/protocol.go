package configurator

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	domain "github.com/Spirits-Studio/zakeke-lite/internal/domain/configurator"
)

var (
	ErrDisallowedOrigin = errors.New("origin not allowed")
	ErrUnstructured     = errors.New("message is not a structured object")
)

// NullOrigin is what browsers report for sandboxed or file:// documents.
const NullOrigin = "null"

// OriginPolicy decides which parent origins may talk to a session. With an empty
// allow-list only SelfOrigin and the "null" origin pass.
type OriginPolicy struct {
	allowed    map[string]struct{}
	selfOrigin string
}

func NewOriginPolicy(allowed []string, selfOrigin string) OriginPolicy {
	set := make(map[string]struct{}, len(allowed))
	for _, o := range allowed {
		o = strings.TrimRight(strings.TrimSpace(o), "/")
		if o != "" {
			set[o] = struct{}{}
		}
	}
	return OriginPolicy{allowed: set, selfOrigin: strings.TrimRight(strings.TrimSpace(selfOrigin), "/")}
}

func (p OriginPolicy) Allows(origin string) bool {
	if origin == "" {
		return false
	}
	if len(p.allowed) > 0 {
		_, ok := p.allowed[origin]
		return ok
	}
	return (p.selfOrigin != "" && origin == p.selfOrigin) || origin == NullOrigin
}

// AllowedOrigins lists the explicit allow-list.
func (p OriginPolicy) AllowedOrigins() []string {
	out := make([]string, 0, len(p.allowed))
	for o := range p.allowed {
		out = append(out, o)
	}
	return out
}

// DecodeEnvelope accepts only a JSON object carrying a customMessageType.
func DecodeEnvelope(raw []byte) (domain.InboundEnvelope, error) {
	var env domain.InboundEnvelope
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || trimmed[0] != '{' {
		return env, ErrUnstructured
	}
	if err := json.Unmarshal(trimmed, &env); err != nil {
		return env, fmt.Errorf("%w: %v", ErrUnstructured, err)
	}
	if strings.TrimSpace(env.CustomMessageType) == "" {
		return env, fmt.Errorf("%w: missing customMessageType", ErrUnstructured)
	}
	return env, nil
}
