// Package crawler reads the card site: listing pages for identifiers and
// detail pages for card attributes.
//
// # Components
//
//   - Walker: loads one listing page and returns the card identifiers it
//     links to, deduplicated in first-seen order
//   - Resolver: loads one detail page and builds a model.Card
//   - Chains: the ordered extraction strategies for every card field
//
// Both components take the render.Session explicitly. The session belongs
// to the caller, and each call opens and closes exactly one page on it.
//
// # Field precedence
//
// Each card field is resolved independently by its Chain. Strategies are
// tried in order and the first one yielding a non-empty value wins; when
// none applies the field gets its sentinel:
//
//	name:        breadcrumb, .cardTitle, .cardName, "<Name> from ..." in the description, "N/A"
//	image:       video source, video, img, "N/A"
//	description: first line of the meta description, "N/A"
//	tier:        breadcrumb starting with "Tier", "Unknown"
//	creators:    attribution text after the first colon, "Anonymous"
//
// # Failure handling
//
// Walker errors wrap ErrPageLoad and are meant to stop the sweep.
// Resolver.Resolve never fails: an unreadable card is logged and
// reported as nil.
//
// # Usage
//
//	walker := crawler.NewWalker("https://shoob.gg/cards?page={page}")
//	resolver := crawler.NewResolver("https://shoob.gg/cards/info/{id}")
//
//	ids, err := walker.DiscoverIDs(ctx, session, 1)
//	for _, id := range ids {
//		if card := resolver.Resolve(ctx, session, id); card != nil {
//			// store card
//		}
//	}
package crawler
