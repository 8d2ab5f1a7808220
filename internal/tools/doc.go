// Package tools provides the shared leaf tools: client lookup with
// disambiguation, Tavily web search, and verbatim message forwarding.
package tools
