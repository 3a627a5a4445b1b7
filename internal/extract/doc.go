// Package extract defines the entity extraction capability the scanner
// consumes: text in, mapping of entity kind to entity text out.
//
// Design decision: Extraction is an injected interface rather than a
// concrete dependency because the backend is replaceable - an NLP
// service, a local model, or the deterministic regex extractor this
// package ships as the default. The scanner makes no assumptions about
// the implementation beyond the interface contract: tolerate arbitrary
// short strings and return an error rather than panic. Tests use
// deterministic stubs.
package extract
