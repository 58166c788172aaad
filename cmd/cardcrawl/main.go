// Package main provides the entry point for the cardcrawl CLI.
//
// cardcrawl walks a paginated card catalog, resolves every card's detail
// page and stores the records grouped by tier. A checkpoint of the last
// completed listing page lets an interrupted crawl resume where it stopped.
//
// Usage:
//
//	cardcrawl crawl
//	cardcrawl status
//	cardcrawl card <id>
//
// See --help for all available options.
package main

// main is the entry point for cardcrawl.
func main() {
	Execute()
}
