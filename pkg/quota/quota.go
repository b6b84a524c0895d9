package quota

import (
	"context"
	"fmt"
	"math"
	"time"
)

// Unlimited is the finite ceiling a configured limit of -1 resolves to. Kept
// finite so window arithmetic stays total.
const Unlimited int64 = 9_999_999_999_999

// PrincipalLimits is the override pair a directory holds for one API key.
// RequestRate multiplies a window's base allowance; CharLimit, when non-nil,
// replaces the configured character ceiling.
type PrincipalLimits struct {
	RequestRate int64
	CharLimit   *int64
}

// Directory maps API keys to per-principal limit overrides. Implementations
// must be safe for concurrent lookups; a (nil, nil) return means the key is
// unknown and configured defaults apply.
type Directory interface {
	Lookup(ctx context.Context, apiKey string) (*PrincipalLimits, error)
}

// Config carries the static limit tiers a deployment was started with.
// A limit of -1 means unlimited; a limit of 0 disables that tier (except the
// minute tier, which always exists).
type Config struct {
	MinuteLimit      int64
	HourlyLimit      int64
	HourlyDecaySteps int
	HourlyMultiplier int64 // per-step directory scale base, default 60
	DailyLimit       int64
	DailyMultiplier  int64 // directory scale, default 1440
}

const (
	defaultHourlyMultiplier = 60
	defaultDailyMultiplier  = 1440
)

// Rule is one admission tier: a time window plus the data needed to resolve
// its ceiling for the current principal. Rules are built once at startup and
// evaluated concurrently, read-only, on every request.
type Rule struct {
	Window      time.Duration
	windowLabel string
	base        int64   // configured allowance before any scaling
	dirScale    int64   // multiplier applied to a directory RequestRate override
	decay       float64 // long-window decay, 1 for the minute and daily tiers
}

// BuildRules composes the ordered admission tiers from configuration: always
// a minute rule, then one rule per hourly decay step when an hourly limit is
// configured, then a daily rule when a daily limit is configured.
func BuildRules(cfg Config) []Rule {
	hourlyMultiplier := cfg.HourlyMultiplier
	if hourlyMultiplier <= 0 {
		hourlyMultiplier = defaultHourlyMultiplier
	}
	dailyMultiplier := cfg.DailyMultiplier
	if dailyMultiplier <= 0 {
		dailyMultiplier = defaultDailyMultiplier
	}

	rules := []Rule{{
		Window:      time.Minute,
		windowLabel: "minute",
		base:        sentinel(cfg.MinuteLimit),
		dirScale:    1,
		decay:       1,
	}}

	if cfg.HourlyLimit != 0 {
		for n := 1; n <= cfg.HourlyDecaySteps+1; n++ {
			rules = append(rules, Rule{
				Window:      time.Duration(n) * time.Hour,
				windowLabel: fmt.Sprintf("%d hour", n),
				base:        sentinel(cfg.HourlyLimit) * int64(n),
				dirScale:    hourlyMultiplier * int64(n),
				decay:       math.Pow(0.75, float64(n-1)),
			})
		}
	}

	if cfg.DailyLimit != 0 {
		rules = append(rules, Rule{
			Window:      24 * time.Hour,
			windowLabel: "day",
			base:        sentinel(cfg.DailyLimit),
			dirScale:    dailyMultiplier,
			decay:       1,
		})
	}

	return rules
}

// sentinel maps the -1 "unlimited" marker to the finite Unlimited ceiling so
// the rule keeps its label and scaling behavior instead of disappearing.
func sentinel(limit int64) int64 {
	if limit == -1 {
		return Unlimited
	}
	return limit
}

// Resolve computes the rule's effective ceiling for one request. When the
// request carries an API key known to the directory, the principal's request
// rate replaces the configured base allowance, scaled by the rule's window
// multiplier. The result is always at least 1.
func (r Rule) Resolve(ctx context.Context, dir Directory, apiKey string) (int64, error) {
	allowance := r.base
	if dir != nil && apiKey != "" {
		limits, err := dir.Lookup(ctx, apiKey)
		if err != nil {
			return 0, fmt.Errorf("directory lookup: %w", err)
		}
		if limits != nil {
			allowance = limits.RequestRate * r.dirScale
		}
	}

	ceiling := int64(float64(allowance) * r.decay)
	if ceiling < 1 {
		ceiling = 1
	}
	return ceiling, nil
}

// Label renders the human-readable form surfaced on a 429, e.g.
// "80 per minute" or "45 per 2 hour".
func (r Rule) Label(ceiling int64) string {
	return fmt.Sprintf("%d per %s", ceiling, r.windowLabel)
}

// CharLimit resolves the character ceiling for one request: the principal's
// directory override when present, the configured default otherwise. Pure
// lookup, no side effects.
func CharLimit(ctx context.Context, defaultLimit int64, dir Directory, apiKey string) (int64, error) {
	if dir == nil || apiKey == "" {
		return defaultLimit, nil
	}
	limits, err := dir.Lookup(ctx, apiKey)
	if err != nil {
		return 0, fmt.Errorf("directory lookup: %w", err)
	}
	if limits == nil || limits.CharLimit == nil {
		return defaultLimit, nil
	}
	return *limits.CharLimit, nil
}
