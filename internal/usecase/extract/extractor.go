package extract

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/kailas-cloud/furnsearch/internal/domain/catalog"
	"github.com/kailas-cloud/furnsearch/internal/domain/search/filter"
)

type pricePattern struct {
	re       *regexp.Regexp
	kind     PatternType
	variance float64
}

type valueMatcher struct {
	value string
	re    *regexp.Regexp
}

// Extractor turns free text into a filter set. Safe for concurrent use.
type Extractor struct {
	prices   []pricePattern
	matchers map[catalog.Dimension][]valueMatcher
	logger   *zap.Logger
}

// New compiles the price patterns and the catalog matchers.
func New(cfg Config, logger *zap.Logger) (*Extractor, error) {
	patterns := cfg.PricePatterns
	if len(patterns) == 0 {
		patterns = DefaultPricePatterns
	}
	defVariance := cfg.VariancePercent
	if defVariance <= 0 {
		defVariance = DefaultVariancePercent
	}

	e := &Extractor{
		matchers: make(map[catalog.Dimension][]valueMatcher, len(catalog.FilterDimensions)),
		logger:   logger,
	}

	for i, p := range patterns {
		re, err := regexp.Compile("(?i)" + p.Pattern)
		if err != nil {
			return nil, fmt.Errorf("price pattern %d: %w", i, err)
		}
		want := 1
		switch p.Type {
		case PriceRange:
			want = 2
		case PriceMax, PriceMin, PriceApproximate:
		default:
			return nil, fmt.Errorf("price pattern %d: unknown type %q", i, p.Type)
		}
		if re.NumSubexp() < want {
			return nil, fmt.Errorf("price pattern %d: %s needs %d capture groups", i, p.Type, want)
		}
		v := p.VariancePercent
		if v <= 0 {
			v = defVariance
		}
		e.prices = append(e.prices, pricePattern{re: re, kind: p.Type, variance: v / 100})
	}

	for _, d := range catalog.FilterDimensions {
		for _, value := range cfg.Catalog.Values(d) {
			v := strings.TrimSpace(value)
			if v == "" {
				continue
			}
			re, err := regexp.Compile(wholeWord(strings.ToLower(v)))
			if err != nil {
				return nil, fmt.Errorf("catalog %s value %q: %w", d, value, err)
			}
			e.matchers[d] = append(e.matchers[d], valueMatcher{value: value, re: re})
		}
	}

	return e, nil
}

// wholeWord matches a literal bounded by non-letter, non-digit runes.
// RE2's \b only understands ASCII word characters.
func wholeWord(literal string) string {
	return `(?:^|[^\p{L}\p{N}])` + regexp.QuoteMeta(literal) + `(?:$|[^\p{L}\p{N}])`
}

// Extract parses a query into constraints. It never fails: anything that
// does not match is simply absent from the result.
func (e *Extractor) Extract(query string) filter.Set {
	q := strings.ToLower(query)

	var set filter.Set
	e.extractPrice(q, &set)

	for _, d := range catalog.FilterDimensions {
		var found []string
		for _, m := range e.matchers[d] {
			if m.re.MatchString(q) {
				found = append(found, m.value)
			}
		}
		if len(found) > 0 {
			set.SetValues(d, found)
		}
	}
	return set
}

// extractPrice applies the first pattern that matches and parses.
func (e *Extractor) extractPrice(q string, set *filter.Set) {
	for _, p := range e.prices {
		m := p.re.FindStringSubmatch(q)
		if m == nil {
			continue
		}

		first, err := parseAmount(m[1])
		if err != nil {
			e.logger.Debug("Skipping unparseable price match",
				zap.String("match", m[0]), zap.Error(err))
			continue
		}

		switch p.kind {
		case PriceMax:
			set.PriceMax = &first
		case PriceMin:
			set.PriceMin = &first
		case PriceRange:
			second, err := parseAmount(m[2])
			if err != nil {
				e.logger.Debug("Skipping unparseable price range",
					zap.String("match", m[0]), zap.Error(err))
				continue
			}
			if first > second {
				first, second = second, first
			}
			set.PriceMin, set.PriceMax = &first, &second
		case PriceApproximate:
			lo, hi := first*(1-p.variance), first*(1+p.variance)
			if lo < 0 {
				lo = 0
			}
			set.PriceMin, set.PriceMax = &lo, &hi
		}
		return
	}
}

func parseAmount(s string) (float64, error) {
	v, err := strconv.ParseFloat(strings.ReplaceAll(s, ",", ""), 64)
	if err != nil {
		return 0, fmt.Errorf("parse amount %q: %w", s, err)
	}
	return v, nil
}
