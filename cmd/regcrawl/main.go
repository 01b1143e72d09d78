// Package main provides the entry point for the regcrawl CLI.
//
// regcrawl builds line-delimited JSON datasets of US state administrative
// regulations by crawling their published hierarchies.
//
// Usage:
//
//	regcrawl crawl <jurisdiction>
//	regcrawl verify <jurisdiction>
//
// See --help for all available options.
package main

// main is the entry point for regcrawl.
func main() {
	Execute()
}
