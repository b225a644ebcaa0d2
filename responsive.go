package showcase

import (
	"fmt"
	"math"
	"slices"
	"strconv"
	"strings"
)

// LoadStrategy trades image sharpness against bytes transferred.
type LoadStrategy uint8

const (
	// StrategyQuality picks the smallest tier at least as wide as the
	// rendered image.
	StrategyQuality LoadStrategy = iota
	// StrategyBalanced picks the tier nearest to the rendered width.
	StrategyBalanced
	// StrategySpeed picks the largest tier no wider than the rendered image.
	StrategySpeed
)

var strategyNames = [...]string{
	StrategyQuality:  "quality",
	StrategyBalanced: "balanced",
	StrategySpeed:    "speed",
}

func (s LoadStrategy) String() string {
	if int(s) < len(strategyNames) {
		return strategyNames[s]
	}
	return "unknown"
}

// ParseLoadStrategy parses a strategy name, case-insensitively.
func ParseLoadStrategy(name string) (LoadStrategy, error) {
	for i, n := range strategyNames {
		if strings.EqualFold(n, strings.TrimSpace(name)) {
			return LoadStrategy(i), nil
		}
	}
	return 0, fmt.Errorf("unknown load strategy %q", name)
}

// MarshalText implements encoding.TextMarshaler.
func (s LoadStrategy) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (s *LoadStrategy) UnmarshalText(b []byte) error {
	v, err := ParseLoadStrategy(string(b))
	if err != nil {
		return err
	}
	*s = v
	return nil
}

// Condition is the comparison a BreakpointRule applies to the viewport.
type Condition uint8

const (
	CondAlways   Condition = iota // unconditional fallback
	CondMaxWidth                  // viewport width <= breakpoint
	CondMinWidth                  // viewport width >= breakpoint
)

// BreakpointRule pairs a viewport condition with the width tier to load
// when it matches.
type BreakpointRule struct {
	Condition  Condition
	Breakpoint float64 // viewport pixels
	Width      int
}

// Matches reports whether the rule applies to a viewport of the given width.
func (r BreakpointRule) Matches(viewportWidth float64) bool {
	switch r.Condition {
	case CondMaxWidth:
		return viewportWidth <= r.Breakpoint
	case CondMinWidth:
		return viewportWidth >= r.Breakpoint
	default:
		return true
	}
}

// Media returns the rule's condition as a media query, or "" for the
// fallback.
func (r BreakpointRule) Media() string {
	bp := strconv.FormatFloat(r.Breakpoint, 'f', -1, 64)
	switch r.Condition {
	case CondMaxWidth:
		return "(max-width: " + bp + "px)"
	case CondMinWidth:
		return "(min-width: " + bp + "px)"
	default:
		return ""
	}
}

func (r BreakpointRule) String() string {
	if m := r.Media(); m != "" {
		return m + " " + strconv.Itoa(r.Width) + "w"
	}
	return strconv.Itoa(r.Width) + "w"
}

// WidthOptions are the inputs of ResolveWidths.
type WidthOptions struct {
	// Available are the width tiers; order and duplicates do not matter.
	Available []int
	MinWidth  float64
	// MaxWidth bounds the tiers from above; zero or +Inf is unbounded.
	MaxWidth float64
	Strategy LoadStrategy
	// Multiplier is the share of the viewport width the image is rendered
	// at, see ViewportWidthMultiplier. Zero means 1.
	Multiplier float64
}

// Resolution is the output of ResolveWidths.
type Resolution struct {
	// Widths are the tiers within range, ascending.
	Widths []int
	// Rules are evaluated top to bottom; the first match wins.
	Rules []BreakpointRule
	// Warning is non-nil (wrapping ErrNoWidthInRange) when no tier was in
	// range and a fallback tier was chosen instead.
	Warning error
}

// Select returns the width of the first rule matching viewportWidth, or 0
// when there are no rules.
func (r Resolution) Select(viewportWidth float64) int {
	for _, rule := range r.Rules {
		if rule.Matches(viewportWidth) {
			return rule.Width
		}
	}
	return 0
}

// ViewportWidthMultiplier is the share of the viewport width an item is
// rendered at: the player's share of the viewport (1 in fullscreen) times
// the item's own width ratio.
func ViewportWidthMultiplier(m ViewportMetrics, itemWidthRatio float64) float64 {
	player := m.PlayerInViewportWidthRatio
	if m.IsFullscreen || player <= 0 || player > 1 {
		player = 1
	}
	if itemWidthRatio <= 0 || itemWidthRatio > 1 {
		itemWidthRatio = 1
	}
	return player * itemWidthRatio
}

// ResolveWidths filters the available tiers to [MinWidth, MaxWidth] and
// builds the breakpoint rules for the strategy. Breakpoints are expressed
// in viewport pixels: a tier of width w is reached when the viewport is
// w / Multiplier wide.
func ResolveWidths(opts WidthOptions) Resolution {
	all := slices.Clone(opts.Available)
	all = slices.DeleteFunc(all, func(w int) bool { return w <= 0 })
	slices.Sort(all)
	all = slices.Compact(all)
	if len(all) == 0 {
		return Resolution{Warning: fmt.Errorf("no widths available: %w", ErrNoWidthInRange)}
	}

	hi := opts.MaxWidth
	if hi <= 0 {
		hi = math.Inf(1)
	}
	lo := opts.MinWidth
	var res Resolution
	for _, w := range all {
		if float64(w) >= lo && float64(w) <= hi {
			res.Widths = append(res.Widths, w)
		}
	}
	if len(res.Widths) == 0 {
		w := closestWidth(all, lo, hi)
		res.Widths = []int{w}
		res.Warning = fmt.Errorf("widths %v outside [%v, %v], using %d: %w", all, lo, hi, w, ErrNoWidthInRange)
	}

	m := opts.Multiplier
	if m <= 0 {
		m = 1
	}
	res.Rules = buildRules(res.Widths, opts.Strategy, m)
	return res
}

// closestWidth returns the tier closest to the middle of [lo, hi]; an
// unbounded range prefers the largest tier. Ties go to the smaller tier.
func closestWidth(widths []int, lo, hi float64) int {
	if math.IsInf(hi, 1) {
		return widths[len(widths)-1]
	}
	mid := (lo + hi) / 2
	best := widths[0]
	for _, w := range widths[1:] {
		if math.Abs(float64(w)-mid) < math.Abs(float64(best)-mid) {
			best = w
		}
	}
	return best
}

func buildRules(widths []int, strategy LoadStrategy, m float64) []BreakpointRule {
	n := len(widths)
	rules := make([]BreakpointRule, 0, n)
	switch strategy {
	case StrategySpeed:
		for i := n - 1; i > 0; i-- {
			rules = append(rules, BreakpointRule{
				Condition:  CondMinWidth,
				Breakpoint: float64(widths[i]) / m,
				Width:      widths[i],
			})
		}
		rules = append(rules, BreakpointRule{Width: widths[0]})
	case StrategyBalanced:
		for i := 0; i < n-1; i++ {
			rules = append(rules, BreakpointRule{
				Condition:  CondMaxWidth,
				Breakpoint: float64(widths[i]+widths[i+1]) / 2 / m,
				Width:      widths[i],
			})
		}
		rules = append(rules, BreakpointRule{Width: widths[n-1]})
	default:
		for i := 0; i < n-1; i++ {
			rules = append(rules, BreakpointRule{
				Condition:  CondMaxWidth,
				Breakpoint: float64(widths[i]) / m,
				Width:      widths[i],
			})
		}
		rules = append(rules, BreakpointRule{Width: widths[n-1]})
	}
	return rules
}
