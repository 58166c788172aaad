// Package render loads web pages and extracts named fields from them.
//
// The crawler only needs a small contract from a page renderer: navigate
// to a URL, wait until the page is ready, read fields by CSS selector and
// close the page. Renderer, Session and Page express that contract;
// two backends implement it:
//
//   - BrowserRenderer: headless Chromium via go-rod with stealth evasions,
//     for sites that build their DOM client-side
//   - HTTPRenderer: a plain resty client, for server-rendered pages
//
// Both backends turn the page into HTML and evaluate fields with goquery
// through ExtractDocument, so a Field means the same thing everywhere.
//
// # Usage
//
//	r := render.NewBrowserRenderer(render.WithHeadless(true))
//	session, err := r.Open(ctx)
//	if err != nil {
//		return err
//	}
//	defer session.Close()
//
//	page, err := session.NewPage(ctx)
//	if err != nil {
//		return err
//	}
//	defer page.Close()
//
//	err = page.Load(ctx, "https://example.com/cards/info/1", render.LoadOptions{
//		Timeout:       time.Minute,
//		ReadySelector: ".cardData img",
//		ReadyTimeout:  10 * time.Second,
//	})
//	values, err := page.Extract(ctx, render.Field{Name: "title", Selector: ".cardTitle"})
//
// A Session is not safe for concurrent use.
package render
