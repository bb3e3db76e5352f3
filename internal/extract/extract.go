// Package extract recovers structured results from free-form model replies.
//
// A reply is resolved through ordered tiers, each tried only when the
// previous one produced nothing valid:
//
//	TierDirect    the expected key of the first top-level JSON object
//	TierAlias     a known synonym of the expected key
//	TierAnyList   the first other non-empty list in the object
//	TierPattern   line patterns over the raw text (conversations only)
//	TierFallback  a fixed default
//
// Resolution never fails; the worst case is the fallback value.
package extract

// Tier records which stage of resolution produced a result.
type Tier int

const (
	TierDirect Tier = iota + 1
	TierAlias
	TierAnyList
	TierPattern
	TierFallback
)

func (t Tier) String() string {
	switch t {
	case TierDirect:
		return "direct"
	case TierAlias:
		return "alias"
	case TierAnyList:
		return "any_list"
	case TierPattern:
		return "pattern"
	case TierFallback:
		return "fallback"
	}
	return "unknown"
}

// rules describes one output schema to the resolver.
type rules[T any] struct {
	key      string
	aliases  []string
	validate func(v any) (T, bool)
	patterns func(text string) (T, bool)
	fallback func() T
}

// outcome is the resolver's tagged result.
type outcome[T any] struct {
	value T
	tier  Tier
	key   string
	err   error
}

func resolve[T any](text string, r rules[T]) outcome[T] {
	obj, err := parseObject(text)
	if err == nil {
		if v, ok := obj.get(r.key); ok {
			if out, ok := r.validate(v); ok {
				return outcome[T]{value: out, tier: TierDirect, key: r.key}
			}
		}
		if out, key, tier, ok := recoverFromObject(obj, r); ok {
			return outcome[T]{value: out, tier: tier, key: key}
		}
	}

	if r.patterns != nil {
		if out, ok := r.patterns(text); ok {
			return outcome[T]{value: out, tier: TierPattern, err: err}
		}
	}
	return outcome[T]{value: r.fallback(), tier: TierFallback, err: err}
}

// recoverFromObject tries aliases in their fixed order, then the first other
// list-valued key in document order. The alias list is finite, so recovery
// always terminates.
func recoverFromObject[T any](obj object, r rules[T]) (T, string, Tier, bool) {
	var zero T
	skip := map[string]bool{r.key: true}
	for _, alias := range r.aliases {
		skip[alias] = true
		v, ok := obj.get(alias)
		if !ok || !nonEmptyList(v) {
			continue
		}
		if out, ok := r.validate(v); ok {
			return out, alias, TierAlias, true
		}
	}

	for _, f := range obj {
		if skip[f.Key] || !nonEmptyList(f.Value) {
			continue
		}
		if out, ok := r.validate(f.Value); ok {
			return out, f.Key, TierAnyList, true
		}
		break
	}
	return zero, "", 0, false
}

func nonEmptyList(v any) bool {
	l, ok := v.([]any)
	return ok && len(l) > 0
}
