// Package instagram retrieves a profile's newest posts from upstream.
//
// Upstream offers no stable contract: the same data has been served
// through a JSON API, a GraphQL query and JSON blobs embedded in the
// profile HTML, with several payload layouts across all three. The
// package therefore separates three concerns:
//
//   - Client: raw HTTP with browser-like headers, typed status errors
//     and transport-level retry.
//   - Strategies: one self-contained retrieval attempt per known
//     endpoint (WebProfileStrategy, GraphQLStrategy,
//     ProfileHTMLStrategy), each parsing into the shared envelope and
//     resolving posts from whichever payload shape is present.
//   - Chain: tries strategies in priority order, paces every outbound
//     call, and commits to the first non-empty result. When every
//     strategy fails the chain reports exhaustion; callers treat that
//     as zero new posts.
package instagram
