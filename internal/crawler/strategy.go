package crawler

import (
	"regexp"
	"strings"

	"github.com/nao1215/cardcrawl/internal/model"
	"github.com/nao1215/cardcrawl/internal/render"
)

// PickFunc turns the raw values of a field into the values a strategy
// contributes. Returning nothing means the strategy did not apply.
type PickFunc func(values []string) []string

// Strategy reads one declared field and interprets it.
type Strategy struct {
	// Name identifies the strategy in logs and tests.
	Name string

	// Field is the selector the strategy reads.
	Field render.Field

	// Pick interprets the raw values. Nil keeps the first value.
	Pick PickFunc
}

// apply runs the strategy against extracted values.
func (s Strategy) apply(v render.Values) []string {
	raw := v.All(s.Field.Name)
	if len(raw) == 0 {
		return nil
	}
	if s.Pick == nil {
		return raw[:1]
	}
	return s.Pick(raw)
}

// Chain is an ordered list of strategies for one card field.
// The first strategy that yields a value wins; when none does, Sentinel
// is used.
type Chain struct {
	Strategies []Strategy
	Sentinel   string
}

// Values returns the values of the first applicable strategy and its name.
// It returns nil and an empty name when no strategy applies.
func (c Chain) Values(v render.Values) ([]string, string) {
	for _, s := range c.Strategies {
		if out := s.apply(v); len(out) > 0 {
			return out, s.Name
		}
	}
	return nil, ""
}

// Value returns the first value of the winning strategy, or Sentinel.
func (c Chain) Value(v render.Values) string {
	values, _ := c.Values(v)
	if len(values) == 0 {
		return c.Sentinel
	}
	return values[0]
}

// Chains holds the chain of every card field.
type Chains struct {
	Name        Chain
	Image       Chain
	Description Chain
	Tier        Chain
	Creators    Chain
}

// Fields returns every field read by any strategy, once per field name,
// in declaration order.
func (c Chains) Fields() []render.Field {
	seen := make(map[string]bool)
	var fields []render.Field
	for _, chain := range []Chain{c.Name, c.Image, c.Description, c.Tier, c.Creators} {
		for _, s := range chain.Strategies {
			if seen[s.Field.Name] {
				continue
			}
			seen[s.Field.Name] = true
			fields = append(fields, s.Field)
		}
	}
	return fields
}

// Card builds the record for id from extracted values.
// Every field is resolved independently; a field that no strategy can
// read falls back to its sentinel, so the result is never nil.
func (c Chains) Card(id string, v render.Values) *model.Card {
	card := &model.Card{
		ID:          id,
		Name:        c.Name.Value(v),
		Image:       c.Image.Value(v),
		Description: c.Description.Value(v),
		Tier:        c.Tier.Value(v),
	}

	creators, _ := c.Creators.Values(v)
	card.Creators = make(model.Creators, 0, len(creators))
	card.Creators = append(card.Creators, creators...)
	return card
}

// Field definitions read by DefaultChains.
var (
	fieldBreadcrumbName = render.Field{
		Name: "name.breadcrumb", Selector: ".breadcrumb-new span[itemprop='name']:nth-child(3)",
	}
	fieldTitle = render.Field{
		Name: "name.title", Selector: ".cardTitle",
	}
	fieldCardName = render.Field{
		Name: "name.field", Selector: ".cardName",
	}
	fieldMetaDescription = render.Field{
		Name: "meta.description", Selector: "meta[name='description']", Attr: "content",
	}
	fieldVideoSource = render.Field{
		Name: "image.video-source", Selector: ".cardData video source", Attr: "src",
	}
	fieldVideo = render.Field{
		Name: "image.video", Selector: ".cardData video", Attr: "src",
	}
	fieldImage = render.Field{
		Name: "image.img", Selector: ".cardData img", Attr: "src",
	}
	fieldBreadcrumbs = render.Field{
		Name: "tier.breadcrumbs", Selector: ".breadcrumb-new span[itemprop='name']", All: true,
	}
	fieldAttributions = render.Field{
		Name: "creators.attributions", Selector: ".user_purchased p", All: true,
	}
)

// nameFromDescription matches descriptions such as "Rem from Re:Zero".
var nameFromDescription = regexp.MustCompile(`^(.+?)\s+from\s`)

// tierPrefix marks the breadcrumb entry holding the tier.
const tierPrefix = "Tier"

// DefaultChains returns the extraction order for card detail pages.
func DefaultChains() Chains {
	return Chains{
		Name: Chain{
			Strategies: []Strategy{
				{Name: "breadcrumb", Field: fieldBreadcrumbName},
				{Name: "title", Field: fieldTitle},
				{Name: "name-field", Field: fieldCardName},
				{Name: "description-pattern", Field: fieldMetaDescription, Pick: PickPattern(nameFromDescription)},
			},
			Sentinel: model.NotAvailable,
		},
		Image: Chain{
			Strategies: []Strategy{
				{Name: "video-source", Field: fieldVideoSource},
				{Name: "video", Field: fieldVideo},
				{Name: "img", Field: fieldImage},
			},
			Sentinel: model.NotAvailable,
		},
		Description: Chain{
			Strategies: []Strategy{
				{Name: "meta-description", Field: fieldMetaDescription, Pick: PickFirstLine},
			},
			Sentinel: model.NotAvailable,
		},
		Tier: Chain{
			Strategies: []Strategy{
				{Name: "breadcrumb-tier", Field: fieldBreadcrumbs, Pick: PickPrefixed(tierPrefix)},
			},
			Sentinel: model.UnknownTier,
		},
		Creators: Chain{
			Strategies: []Strategy{
				{Name: "attributions", Field: fieldAttributions, Pick: PickAfterColon},
			},
			Sentinel: model.AnonymousCreator,
		},
	}
}

// PickFirstLine keeps the first line of the first value.
func PickFirstLine(values []string) []string {
	line := firstLine(values[0])
	if line == "" {
		return nil
	}
	return []string{line}
}

// PickPattern matches re against the first line of the first value and
// keeps its first capture group.
func PickPattern(re *regexp.Regexp) PickFunc {
	return func(values []string) []string {
		m := re.FindStringSubmatch(firstLine(values[0]))
		if len(m) < 2 {
			return nil
		}
		if name := strings.TrimSpace(m[1]); name != "" {
			return []string{name}
		}
		return nil
	}
}

// PickPrefixed finds the first value starting with prefix and keeps the
// remainder, trimmed.
func PickPrefixed(prefix string) PickFunc {
	return func(values []string) []string {
		for _, v := range values {
			if !strings.HasPrefix(v, prefix) {
				continue
			}
			if rest := strings.TrimSpace(strings.TrimPrefix(v, prefix)); rest != "" {
				return []string{rest}
			}
		}
		return nil
	}
}

// PickAfterColon keeps the text after the first colon of every value,
// trimmed, skipping values without a colon or with nothing after it.
func PickAfterColon(values []string) []string {
	var out []string
	for _, v := range values {
		_, after, ok := strings.Cut(v, ":")
		if !ok {
			continue
		}
		if after = strings.TrimSpace(after); after != "" {
			out = append(out, after)
		}
	}
	return out
}

// firstLine returns the first line of s, trimmed.
func firstLine(s string) string {
	line, _, _ := strings.Cut(s, "\n")
	return strings.TrimSpace(line)
}
